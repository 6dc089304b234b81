package models

import "time"

// LyricsResult is the song data returned by the upstream lyrics API.
// Every field is optional; the upstream owns the schema.
type LyricsResult struct {
	Title  string `json:"title,omitempty"`
	Artist string `json:"artist,omitempty"`
	Image  string `json:"image,omitempty"`
	Lyrics string `json:"lyrics,omitempty"`
}

// LyricsPayload is the envelope the upstream returns and the proxy relays.
type LyricsPayload struct {
	Status  bool   `json:"status"`
	Message string `json:"message,omitempty"`
	Data    *struct {
		Response *LyricsResult `json:"response"`
	} `json:"data,omitempty"`
}

// Result returns the nested song data, or nil when the payload does not carry one.
func (p *LyricsPayload) Result() *LyricsResult {
	if p == nil || !p.Status || p.Data == nil {
		return nil
	}
	return p.Data.Response
}

// ErrorResponse is the body of every failed proxy response.
type ErrorResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
}

// HistoryEntry is one persisted past search.
type HistoryEntry struct {
	Query     string    `json:"query"`
	Timestamp time.Time `json:"timestamp"`
}

// NotificationKind classifies a transient user-facing message.
type NotificationKind string

const (
	NotificationInfo    NotificationKind = "info"
	NotificationSuccess NotificationKind = "success"
	NotificationError   NotificationKind = "error"
)

// Notification is the message currently shown to the user.
type Notification struct {
	Message string           `json:"message"`
	Kind    NotificationKind `json:"kind"`
}
