// Package history keeps the bounded list of recent searches and persists it
// through a key/value Storage.
package history

import (
	"encoding/json"
	"fmt"
	"time"

	"lyrify/pkg/models"

	"github.com/sirupsen/logrus"
)

const (
	// StorageKey is the slot the serialized history lives under.
	StorageKey = "lyricsSearchHistory"

	// DefaultLimit is the number of entries kept.
	DefaultLimit = 8
)

// Storage is a string key/value store in the shape of browser local storage.
type Storage interface {
	// GetItem returns the value for key and whether it exists.
	GetItem(key string) (string, bool, error)
	SetItem(key, value string) error
	RemoveItem(key string) error
}

// History is an ordered, newest-first sequence of past searches. It is owned
// by a single client session and is not safe for concurrent use.
type History struct {
	storage Storage
	limit   int
	entries []models.HistoryEntry
	logger  *logrus.Logger
}

// Load restores history from storage. A missing slot yields an empty
// history; so does an unreadable one, which is logged and left in place
// until the next write.
func Load(storage Storage, limit int, logger *logrus.Logger) (*History, error) {
	if limit < 1 {
		limit = DefaultLimit
	}
	if logger == nil {
		logger = logrus.New()
	}

	h := &History{
		storage: storage,
		limit:   limit,
		logger:  logger,
	}

	raw, ok, err := storage.GetItem(StorageKey)
	if err != nil {
		return nil, fmt.Errorf("failed to read history: %w", err)
	}
	if !ok || raw == "" {
		return h, nil
	}

	var entries []models.HistoryEntry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		logger.WithError(err).WithField("key", StorageKey).Warn("Discarding malformed search history")
		return h, nil
	}

	if len(entries) > limit {
		entries = entries[:limit]
	}
	h.entries = entries
	return h, nil
}

// Add inserts query at the front, drops whatever falls past the limit and
// persists the result. Duplicates are kept.
func (h *History) Add(query string, at time.Time) error {
	entry := models.HistoryEntry{
		Query:     query,
		Timestamp: at.UTC().Truncate(time.Millisecond),
	}

	entries := make([]models.HistoryEntry, 0, len(h.entries)+1)
	entries = append(entries, entry)
	entries = append(entries, h.entries...)
	if len(entries) > h.limit {
		entries = entries[:h.limit]
	}
	h.entries = entries

	return h.save()
}

// Clear empties the history and removes the persisted slot.
func (h *History) Clear() error {
	h.entries = nil
	if err := h.storage.RemoveItem(StorageKey); err != nil {
		return fmt.Errorf("failed to remove history: %w", err)
	}
	return nil
}

// Entries returns a copy of the current entries, newest first.
func (h *History) Entries() []models.HistoryEntry {
	out := make([]models.HistoryEntry, len(h.entries))
	copy(out, h.entries)
	return out
}

// At returns the entry at index i.
func (h *History) At(i int) (models.HistoryEntry, bool) {
	if i < 0 || i >= len(h.entries) {
		return models.HistoryEntry{}, false
	}
	return h.entries[i], true
}

// Len returns the number of entries.
func (h *History) Len() int {
	return len(h.entries)
}

// Limit returns the capacity.
func (h *History) Limit() int {
	return h.limit
}

func (h *History) save() error {
	data, err := json.Marshal(h.entries)
	if err != nil {
		return fmt.Errorf("failed to encode history: %w", err)
	}
	if err := h.storage.SetItem(StorageKey, string(data)); err != nil {
		return fmt.Errorf("failed to persist history: %w", err)
	}
	return nil
}
