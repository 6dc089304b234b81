package client

import (
	"time"

	"lyrify/internal/imageload"
	"lyrify/pkg/models"
)

// Display is a rendered search result, after fallbacks were applied.
type Display struct {
	Title  string
	Artist string
	Lyrics string
	Image  imageload.Resolution
}

// HistoryItem is one row of the rendered history list.
type HistoryItem struct {
	Query string
	Date  string
}

// View is the presentation side of a Session.
type View interface {
	SetSearchEnabled(enabled bool)
	RenderResult(d Display)
	// RenderHistory draws items, newest first. Never called with an empty slice.
	RenderHistory(items []HistoryItem)
	RenderPlaceholder(text string)
	// ShowNotification displays n, or clears the notification area when n is nil.
	ShowNotification(n *models.Notification)
	// Confirm blocks until the user answers prompt.
	Confirm(prompt string) bool
}

// FormatDate renders a history timestamp as MM/DD, HH:MM in local time.
func FormatDate(t time.Time) string {
	return t.Local().Format("01/02, 15:04")
}

func historyItems(entries []models.HistoryEntry) []HistoryItem {
	items := make([]HistoryItem, len(entries))
	for i, e := range entries {
		items[i] = HistoryItem{Query: e.Query, Date: FormatDate(e.Timestamp)}
	}
	return items
}
