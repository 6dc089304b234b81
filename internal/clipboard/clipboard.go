// Package clipboard copies text to the system clipboard, falling back from
// the native clipboard API to a short-lived helper process.
package clipboard

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
)

// ErrUnavailable is returned when no clipboard mechanism accepted the text.
var ErrUnavailable = errors.New("clipboard unavailable")

// Writer puts text on a clipboard.
type Writer interface {
	WriteText(ctx context.Context, text string) error
}

// WriterFunc adapts a function to Writer.
type WriterFunc func(ctx context.Context, text string) error

// WriteText implements Writer.
func (f WriterFunc) WriteText(ctx context.Context, text string) error {
	return f(ctx, text)
}

// Copier tries a primary Writer and, if that fails, a fallback.
type Copier struct {
	primary  Writer
	fallback Writer
	logger   *logrus.Logger
}

// NewCopier creates a Copier. Either writer may be nil.
func NewCopier(primary, fallback Writer, logger *logrus.Logger) *Copier {
	if logger == nil {
		logger = logrus.New()
	}
	return &Copier{primary: primary, fallback: fallback, logger: logger}
}

// NewSystemCopier uses the native clipboard with the helper-process fallback.
func NewSystemCopier(logger *logrus.Logger) *Copier {
	return NewCopier(NewNative(), NewCommand(), logger)
}

// Copy writes text using the first mechanism that works. The error wraps
// ErrUnavailable when both fail.
func (c *Copier) Copy(ctx context.Context, text string) error {
	var errs []error

	for _, w := range []Writer{c.primary, c.fallback} {
		if w == nil {
			continue
		}
		err := w.WriteText(ctx, text)
		if err == nil {
			return nil
		}
		c.logger.WithError(err).Debug("Clipboard writer failed")
		errs = append(errs, err)
	}

	return fmt.Errorf("%w: %v", ErrUnavailable, errors.Join(errs...))
}
