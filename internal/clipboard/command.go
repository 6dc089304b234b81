package clipboard

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
)

// Command writes by piping text into a clipboard helper (pbcopy, xclip, xsel,
// wl-copy, clip.exe). The helper process is started, fed and reaped within a
// single WriteText call.
type Command struct {
	candidates [][]string
	lookPath   func(string) (string, error)
}

// NewCommand returns a Command with the helpers known for this platform.
func NewCommand() *Command {
	return NewCommandWith(defaultCandidates(runtime.GOOS), exec.LookPath)
}

// NewCommandWith uses an explicit candidate list; each entry is a program
// followed by its arguments.
func NewCommandWith(candidates [][]string, lookPath func(string) (string, error)) *Command {
	return &Command{candidates: candidates, lookPath: lookPath}
}

func defaultCandidates(goos string) [][]string {
	switch goos {
	case "darwin":
		return [][]string{{"pbcopy"}}
	case "windows":
		return [][]string{{"clip.exe"}}
	default:
		return [][]string{
			{"wl-copy"},
			{"xclip", "-selection", "clipboard"},
			{"xsel", "--clipboard", "--input"},
		}
	}
}

// WriteText implements Writer.
func (c *Command) WriteText(ctx context.Context, text string) error {
	var tried []string

	for _, candidate := range c.candidates {
		if len(candidate) == 0 {
			continue
		}
		path, err := c.lookPath(candidate[0])
		if err != nil {
			continue
		}
		tried = append(tried, candidate[0])

		if err := runHelper(ctx, path, candidate[1:], text); err == nil {
			return nil
		}
	}

	if len(tried) == 0 {
		return errors.New("no clipboard helper found")
	}
	return fmt.Errorf("clipboard helpers failed (tried %s)", strings.Join(tried, ", "))
}

// runHelper runs one helper to completion; the process never outlives ctx.
func runHelper(ctx context.Context, path string, args []string, text string) error {
	cmd := exec.CommandContext(ctx, path, args...)
	cmd.Stdin = strings.NewReader(text)
	return cmd.Run()
}
