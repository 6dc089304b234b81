package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"lyrify/internal/client"

	"github.com/charmbracelet/lipgloss"
)

// ExampleSongs are suggested on shell start.
var ExampleSongs = []string{
	"Bohemian Rhapsody",
	"Imagine John Lennon",
	"Hotel California",
	"Billie Jean",
	"Smells Like Teen Spirit",
}

var (
	bannerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	tagStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
)

const shellHelp = `Type a song to search, or:
  :history   show recent searches
  :N         repeat search N from the history
  :copy      copy the current lyrics
  :clear     clear the history
  :help      show this help
  :quit      exit`

// RunShell reads commands until :quit or end of input.
func (c *CLI) RunShell(ctx context.Context) error {
	fmt.Fprintln(c.out, bannerStyle.Render("lyrify"))
	fmt.Fprintln(c.out, helpStyle.Render(shellHelp))

	tags := make([]string, len(ExampleSongs))
	for i, song := range ExampleSongs {
		tags[i] = tagStyle.Render(song)
	}
	fmt.Fprintln(c.out, helpStyle.Render("Try: ")+strings.Join(tags, helpStyle.Render(" · ")))
	fmt.Fprintln(c.out)

	c.session.LoadHistory()

	for {
		if err := ctx.Err(); err != nil {
			return nil
		}

		fmt.Fprint(c.out, "\n> ")
		line, err := c.in.ReadString('\n')
		if err != nil && line == "" {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		if quit := c.dispatch(ctx, strings.TrimSpace(line)); quit {
			return nil
		}
	}
}

// dispatch runs one shell line and reports whether the shell should exit.
// Session failures are already shown as notifications.
func (c *CLI) dispatch(ctx context.Context, line string) bool {
	var err error

	switch line {
	case "":
		return false
	case ":quit", ":q", ":exit":
		return true
	case ":help":
		fmt.Fprintln(c.out, helpStyle.Render(shellHelp))
	case ":history":
		c.session.LoadHistory()
	case ":clear":
		_, err = c.session.ClearHistory()
	case ":copy":
		err = c.session.CopyLyrics(ctx)
	default:
		if n, ok := historyIndex(line); ok {
			err = c.session.SearchFromHistory(ctx, n-1)
			if errors.Is(err, client.ErrNoHistoryEntry) {
				fmt.Fprintln(c.out, helpStyle.Render(fmt.Sprintf("No history entry %d", n)))
			}
		} else if strings.HasPrefix(line, ":") {
			fmt.Fprintln(c.out, helpStyle.Render("Unknown command "+line+", type :help"))
		} else {
			err = c.session.Search(ctx, line)
		}
	}

	if err != nil {
		c.logger.WithError(err).Debug("Shell command failed")
	}
	return false
}

// historyIndex parses ":N".
func historyIndex(line string) (int, bool) {
	if !strings.HasPrefix(line, ":") {
		return 0, false
	}
	n, err := strconv.Atoi(line[1:])
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}
