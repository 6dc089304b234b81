// Package client implements the interactive lyrics session: searching
// through the proxy, rendering results, history, notifications and copying.
package client

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"lyrify/internal/history"
	"lyrify/internal/imageload"
	"lyrify/internal/notify"
	"lyrify/pkg/models"

	"github.com/sirupsen/logrus"
)

// User-facing messages.
const (
	MsgEmptyQuery     = "Please enter a search query"
	MsgSearching      = "Searching..."
	MsgFound          = "Lyrics found!"
	MsgNotFound       = "No lyrics found"
	MsgNoHistory      = "No recent searches"
	MsgConfirmClear   = "Clear all history?"
	MsgHistoryCleared = "History cleared"
	MsgCopied         = "Copied!"
	MsgCopyFailed     = "Could not copy lyrics"
	MsgNothingToCopy  = "No lyrics to copy"

	UnknownTitle  = "Unknown title"
	UnknownArtist = "Unknown artist"
	NoLyrics      = "No lyrics available."
)

var (
	ErrEmptyQuery       = errors.New("empty search query")
	ErrSearchInProgress = errors.New("search already in progress")
	ErrNoLyrics         = errors.New("no lyrics found")
	ErrNothingToCopy    = errors.New("no lyrics to copy")
	ErrNoHistoryEntry   = errors.New("no such history entry")
)

// LyricsSource looks songs up through the proxy.
type LyricsSource interface {
	Lookup(ctx context.Context, query string) (*models.LyricsPayload, error)
}

// ImageResolver turns an album art URL into something displayable.
type ImageResolver interface {
	Resolve(ctx context.Context, imageURL string) imageload.Resolution
}

// Clipboard copies text.
type Clipboard interface {
	Copy(ctx context.Context, text string) error
}

// Options wires a Session. Lyrics, View and History are required.
type Options struct {
	Lyrics            LyricsSource
	Images            ImageResolver
	Clipboard         Clipboard
	View              View
	History           *history.History
	NotificationDelay time.Duration
	Logger            *logrus.Logger
	Now               func() time.Time
}

// Session is one user's lyrics client. Searches are single-flight: a search
// started while another is running is rejected, not queued.
type Session struct {
	lyrics    LyricsSource
	images    ImageResolver
	clipboard Clipboard
	view      View
	notes     *notify.Slot
	logger    *logrus.Logger
	now       func() time.Time

	searching atomic.Bool

	mu      sync.Mutex
	history *history.History
	current *Display
}

// NewSession creates a Session.
func NewSession(opts Options) (*Session, error) {
	if opts.Lyrics == nil {
		return nil, errors.New("lyrics source is required")
	}
	if opts.View == nil {
		return nil, errors.New("view is required")
	}
	if opts.History == nil {
		return nil, errors.New("history is required")
	}
	if opts.Logger == nil {
		opts.Logger = logrus.New()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NotificationDelay <= 0 {
		opts.NotificationDelay = notify.DefaultDelay
	}

	return &Session{
		lyrics:    opts.Lyrics,
		images:    opts.Images,
		clipboard: opts.Clipboard,
		view:      opts.View,
		notes:     notify.NewSlot(opts.NotificationDelay, opts.View.ShowNotification),
		logger:    opts.Logger,
		now:       opts.Now,
		history:   opts.History,
	}, nil
}

// Search looks up query and renders the result. Failures are reported
// through a notification and also returned.
func (s *Session) Search(ctx context.Context, query string) error {
	query = strings.TrimSpace(query)
	if query == "" {
		s.notes.Error(MsgEmptyQuery)
		return ErrEmptyQuery
	}

	if !s.searching.CompareAndSwap(false, true) {
		s.logger.WithField("query", query).Debug("Search rejected, another is running")
		return ErrSearchInProgress
	}
	defer s.searching.Store(false)

	s.view.SetSearchEnabled(false)
	defer s.view.SetSearchEnabled(true)

	s.notes.Info(MsgSearching)

	payload, err := s.lyrics.Lookup(ctx, query)
	if err != nil {
		s.logger.WithError(err).WithField("query", query).Warn("Lyrics lookup failed")
		s.notes.Error(err.Error())
		return err
	}

	result := payload.Result()
	if result == nil {
		msg := payload.Message
		if msg == "" {
			msg = MsgNotFound
		}
		s.notes.Error(msg)
		return fmt.Errorf("%w: %s", ErrNoLyrics, msg)
	}

	display := Display{
		Title:  orDefault(result.Title, UnknownTitle),
		Artist: orDefault(result.Artist, UnknownArtist),
		Lyrics: orDefault(result.Lyrics, NoLyrics),
	}
	if result.Image != "" && s.images != nil {
		display.Image = s.images.Resolve(ctx, result.Image)
	}

	s.mu.Lock()
	s.current = &display
	s.view.RenderResult(display)
	if err := s.history.Add(query, s.now()); err != nil {
		s.logger.WithError(err).Warn("Failed to persist search history")
	}
	s.renderHistoryLocked()
	s.mu.Unlock()

	s.logger.WithFields(logrus.Fields{
		"query":  query,
		"title":  display.Title,
		"artist": display.Artist,
	}).Info("Lyrics found")
	s.notes.Success(MsgFound)
	return nil
}

// SearchFromHistory repeats the search stored at index (0 is newest).
func (s *Session) SearchFromHistory(ctx context.Context, index int) error {
	s.mu.Lock()
	entry, ok := s.history.At(index)
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %d", ErrNoHistoryEntry, index)
	}
	return s.Search(ctx, entry.Query)
}

// LoadHistory renders the current history list.
func (s *Session) LoadHistory() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.renderHistoryLocked()
}

// History returns a copy of the entries, newest first.
func (s *Session) History() []models.HistoryEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.Entries()
}

func (s *Session) renderHistoryLocked() {
	entries := s.history.Entries()
	if len(entries) == 0 {
		s.view.RenderPlaceholder(MsgNoHistory)
		return
	}
	s.view.RenderHistory(historyItems(entries))
}

// ClearHistory asks for confirmation and then empties the history. It
// reports whether the history was cleared.
func (s *Session) ClearHistory() (bool, error) {
	if !s.view.Confirm(MsgConfirmClear) {
		return false, nil
	}

	s.mu.Lock()
	err := s.history.Clear()
	s.renderHistoryLocked()
	s.mu.Unlock()

	if err != nil {
		s.logger.WithError(err).Warn("Failed to remove persisted history")
		s.notes.Error(err.Error())
		return true, err
	}

	s.notes.Success(MsgHistoryCleared)
	return true, nil
}

// CopyLyrics copies the lyrics currently on display.
func (s *Session) CopyLyrics(ctx context.Context) error {
	s.mu.Lock()
	current := s.current
	s.mu.Unlock()

	if current == nil {
		s.notes.Error(MsgNothingToCopy)
		return ErrNothingToCopy
	}
	if s.clipboard == nil {
		s.notes.Error(MsgCopyFailed)
		return errors.New("no clipboard configured")
	}

	if err := s.clipboard.Copy(ctx, current.Lyrics); err != nil {
		s.logger.WithError(err).Warn("Copy to clipboard failed")
		s.notes.Error(MsgCopyFailed)
		return err
	}

	s.notes.Success(MsgCopied)
	return nil
}

// Current returns the rendered result, or nil before the first success.
func (s *Session) Current() *Display {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return nil
	}
	d := *s.current
	return &d
}

// Notification returns the visible notification, or nil.
func (s *Session) Notification() *models.Notification {
	return s.notes.Current()
}

// Searching reports whether a search is running.
func (s *Session) Searching() bool {
	return s.searching.Load()
}

// Close stops pending notification timers.
func (s *Session) Close() {
	s.notes.Close()
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
