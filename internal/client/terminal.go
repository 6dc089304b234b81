package client

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"sync"

	"lyrify/pkg/models"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	artistStyle  = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("246"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	historyStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))

	lyricsStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)

	notificationStyles = map[models.NotificationKind]lipgloss.Style{
		models.NotificationInfo:    lipgloss.NewStyle().Foreground(lipgloss.Color("39")),
		models.NotificationSuccess: lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		models.NotificationError:   lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
	}
)

// TerminalView renders a Session to a terminal. Writes are serialized because
// notification clears arrive from timer goroutines.
type TerminalView struct {
	mu      sync.Mutex
	out     io.Writer
	in      *bufio.Reader
	enabled bool
}

// NewTerminalView writes to out and reads confirmations from in. Share in
// with any other line reader on the same input.
func NewTerminalView(out io.Writer, in *bufio.Reader) *TerminalView {
	return &TerminalView{out: out, in: in, enabled: true}
}

// SetSearchEnabled implements View.
func (v *TerminalView) SetSearchEnabled(enabled bool) {
	v.mu.Lock()
	v.enabled = enabled
	v.mu.Unlock()
}

// SearchEnabled reports whether a new search may be started.
func (v *TerminalView) SearchEnabled() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.enabled
}

// RenderResult implements View.
func (v *TerminalView) RenderResult(d Display) {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(titleStyle.Render(d.Title))
	b.WriteString("\n")
	b.WriteString(artistStyle.Render(d.Artist))
	b.WriteString("\n")

	switch {
	case d.Image.Placeholder:
		b.WriteString(dimStyle.Render("[no album art]"))
		b.WriteString("\n")
	case d.Image.Source != "":
		label := "Album art: "
		if d.Image.Proxied {
			label = "Album art (via proxy): "
		}
		b.WriteString(dimStyle.Render(label + d.Image.Source))
		b.WriteString("\n")
	}

	b.WriteString(lyricsStyle.Render(d.Lyrics))
	b.WriteString("\n")

	v.write(b.String())
}

// RenderHistory implements View.
func (v *TerminalView) RenderHistory(items []HistoryItem) {
	var b strings.Builder
	b.WriteString(dimStyle.Render("Recent searches"))
	b.WriteString("\n")
	for i, item := range items {
		fmt.Fprintf(&b, "%s %s %s\n",
			dimStyle.Render(fmt.Sprintf("%d.", i+1)),
			historyStyle.Render(item.Query),
			dimStyle.Render(item.Date))
	}
	v.write(b.String())
}

// RenderPlaceholder implements View.
func (v *TerminalView) RenderPlaceholder(text string) {
	v.write(dimStyle.Render(text) + "\n")
}

// ShowNotification implements View. Clears are not drawn.
func (v *TerminalView) ShowNotification(n *models.Notification) {
	if n == nil {
		return
	}
	style, ok := notificationStyles[n.Kind]
	if !ok {
		style = notificationStyles[models.NotificationInfo]
	}
	v.write(style.Render(n.Message) + "\n")
}

// Confirm implements View. Anything but y/yes is a no, including EOF.
func (v *TerminalView) Confirm(prompt string) bool {
	v.write(prompt + " [y/N] ")
	line, err := v.in.ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}

func (v *TerminalView) write(s string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	io.WriteString(v.out, s)
}
