package clipboard

import (
	"context"
	"fmt"
	"sync"

	"golang.design/x/clipboard"
)

// Native writes through the platform clipboard API. Initialization happens
// once, on first use.
type Native struct {
	once    sync.Once
	initErr error
}

// NewNative creates a Native writer.
func NewNative() *Native {
	return &Native{}
}

// WriteText implements Writer.
func (n *Native) WriteText(ctx context.Context, text string) error {
	n.once.Do(func() {
		n.initErr = initClipboard()
	})
	if n.initErr != nil {
		return fmt.Errorf("native clipboard: %w", n.initErr)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	clipboard.Write(clipboard.FmtText, []byte(text))
	return nil
}

// initClipboard guards against the panic some platforms raise when no
// display is available.
func initClipboard() (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("clipboard init panicked: %v", r)
		}
	}()
	return clipboard.Init()
}
