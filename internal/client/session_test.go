package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"lyrify/internal/config"
	"lyrify/internal/history"
	"lyrify/internal/imageload"
	"lyrify/internal/server"
	"lyrify/pkg/models"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

// recordingView captures everything a Session renders.
type recordingView struct {
	mu            sync.Mutex
	enabled       []bool
	results       []Display
	history       [][]HistoryItem
	placeholders  []string
	notifications []models.Notification
	confirmAnswer bool
	prompts       []string
}

func (v *recordingView) SetSearchEnabled(enabled bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.enabled = append(v.enabled, enabled)
}

func (v *recordingView) RenderResult(d Display) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.results = append(v.results, d)
}

func (v *recordingView) RenderHistory(items []HistoryItem) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.history = append(v.history, items)
}

func (v *recordingView) RenderPlaceholder(text string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.placeholders = append(v.placeholders, text)
}

func (v *recordingView) ShowNotification(n *models.Notification) {
	if n == nil {
		return
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	v.notifications = append(v.notifications, *n)
}

func (v *recordingView) Confirm(prompt string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.prompts = append(v.prompts, prompt)
	return v.confirmAnswer
}

func (v *recordingView) lastNotification() models.Notification {
	v.mu.Lock()
	defer v.mu.Unlock()
	if len(v.notifications) == 0 {
		return models.Notification{}
	}
	return v.notifications[len(v.notifications)-1]
}

// stubLyrics answers Lookup from a function.
type stubLyrics struct {
	mu      sync.Mutex
	calls   int
	respond func(ctx context.Context, query string) (*models.LyricsPayload, error)
}

func (s *stubLyrics) Lookup(ctx context.Context, query string) (*models.LyricsPayload, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	return s.respond(ctx, query)
}

func (s *stubLyrics) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

type stubClipboard struct {
	text string
	err  error
}

func (c *stubClipboard) Copy(_ context.Context, text string) error {
	if c.err != nil {
		return c.err
	}
	c.text = text
	return nil
}

func found(result models.LyricsResult) *models.LyricsPayload {
	p := &models.LyricsPayload{Status: true}
	p.Data = &struct {
		Response *models.LyricsResult `json:"response"`
	}{Response: &result}
	return p
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

type sessionFixture struct {
	session   *Session
	view      *recordingView
	storage   *history.MemoryStorage
	clipboard *stubClipboard
}

func newFixture(t *testing.T, source LyricsSource, images ImageResolver) *sessionFixture {
	t.Helper()

	storage := history.NewMemoryStorage()
	h, err := history.Load(storage, history.DefaultLimit, quietLogger())
	require.NoError(t, err)

	view := &recordingView{}
	clip := &stubClipboard{}
	s, err := NewSession(Options{
		Lyrics:            source,
		Images:            images,
		Clipboard:         clip,
		View:              view,
		History:           h,
		NotificationDelay: time.Hour,
		Logger:            quietLogger(),
	})
	require.NoError(t, err)
	t.Cleanup(s.Close)

	return &sessionFixture{session: s, view: view, storage: storage, clipboard: clip}
}

func TestSearchEndToEndThroughProxy(t *testing.T) {
	images := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer images.Close()

	var gotSong string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSong = r.URL.Query().Get("song")
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"status":true,"data":{"response":{"title":"Bohemian Rhapsody","artist":"Queen","image":%q,"lyrics":"Is this the real life?"}}}`, images.URL+"/cover.jpg")
	}))
	defer upstream.Close()

	cfg := config.DefaultConfig()
	cfg.Upstream.BaseURL = upstream.URL
	cfg.Server.StaticDir = t.TempDir()
	ls, err := server.NewLyricsServer(cfg, "", quietLogger())
	require.NoError(t, err)
	proxy := httptest.NewServer(ls.Handler())
	defer proxy.Close()

	pc, err := NewProxyClient(proxy.URL, nil)
	require.NoError(t, err)

	resolver := imageload.NewResolver(imageload.Options{ProxyURL: images.URL + "/proxy", Timeout: time.Second}, quietLogger())
	f := newFixture(t, pc, resolver)

	require.NoError(t, f.session.Search(context.Background(), "  Bohemian Rhapsody "))

	require.Equal(t, "Bohemian Rhapsody", gotSong)
	require.Len(t, f.view.results, 1)
	d := f.view.results[0]
	require.Equal(t, "Bohemian Rhapsody", d.Title)
	require.Equal(t, "Queen", d.Artist)
	require.Equal(t, "Is this the real life?", d.Lyrics)
	require.True(t, d.Image.Placeholder)

	entries := f.session.History()
	require.Len(t, entries, 1)
	require.Equal(t, "Bohemian Rhapsody", entries[0].Query)

	raw, ok, err := f.storage.GetItem(history.StorageKey)
	require.NoError(t, err)
	require.True(t, ok)
	require.Contains(t, raw, "Bohemian Rhapsody")

	require.Equal(t, models.Notification{Message: MsgFound, Kind: models.NotificationSuccess}, f.view.lastNotification())
	require.Equal(t, []bool{false, true}, f.view.enabled)
	require.False(t, f.session.Searching())
}

func TestSearchEmptyQuery(t *testing.T) {
	source := &stubLyrics{respond: func(context.Context, string) (*models.LyricsPayload, error) {
		t.Fatal("lookup must not be called")
		return nil, nil
	}}
	f := newFixture(t, source, nil)

	err := f.session.Search(context.Background(), "   ")
	require.ErrorIs(t, err, ErrEmptyQuery)
	require.Equal(t, models.Notification{Message: MsgEmptyQuery, Kind: models.NotificationError}, f.view.lastNotification())
	require.Empty(t, f.view.enabled)
}

func TestSearchProxyStatusError(t *testing.T) {
	proxy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"status":false,"message":"Lyrics service error"}`))
	}))
	defer proxy.Close()

	pc, err := NewProxyClient(proxy.URL, nil)
	require.NoError(t, err)
	f := newFixture(t, pc, nil)

	err = f.session.Search(context.Background(), "Bohemian Rhapsody")
	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	require.Equal(t, http.StatusServiceUnavailable, statusErr.StatusCode)

	require.Equal(t, "Error 503: Service Unavailable", f.view.lastNotification().Message)
	require.Equal(t, models.NotificationError, f.view.lastNotification().Kind)
	require.Empty(t, f.session.History())
	require.Empty(t, f.view.results)
	require.Equal(t, []bool{false, true}, f.view.enabled)
}

func TestSearchNotFoundPayload(t *testing.T) {
	tests := []struct {
		name    string
		payload *models.LyricsPayload
		want    string
	}{
		{"upstream message", &models.LyricsPayload{Status: false, Message: "Song not found"}, "Song not found"},
		{"no message", &models.LyricsPayload{Status: false}, MsgNotFound},
		{"status without data", &models.LyricsPayload{Status: true}, MsgNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			source := &stubLyrics{respond: func(context.Context, string) (*models.LyricsPayload, error) {
				return tt.payload, nil
			}}
			f := newFixture(t, source, nil)

			err := f.session.Search(context.Background(), "nothing")
			require.ErrorIs(t, err, ErrNoLyrics)
			require.Equal(t, models.Notification{Message: tt.want, Kind: models.NotificationError}, f.view.lastNotification())
			require.Empty(t, f.session.History())
		})
	}
}

func TestSearchNetworkError(t *testing.T) {
	source := &stubLyrics{respond: func(context.Context, string) (*models.LyricsPayload, error) {
		return nil, errors.New("connection refused")
	}}
	f := newFixture(t, source, nil)

	require.Error(t, f.session.Search(context.Background(), "x"))
	require.Equal(t, "connection refused", f.view.lastNotification().Message)
	require.Nil(t, f.session.Current())
}

func TestSearchAppliesFallbacks(t *testing.T) {
	source := &stubLyrics{respond: func(context.Context, string) (*models.LyricsPayload, error) {
		return found(models.LyricsResult{}), nil
	}}
	f := newFixture(t, source, nil)

	require.NoError(t, f.session.Search(context.Background(), "x"))
	require.Equal(t, Display{Title: UnknownTitle, Artist: UnknownArtist, Lyrics: NoLyrics}, *f.session.Current())
}

func TestSearchNinthEntryDropsOldest(t *testing.T) {
	source := &stubLyrics{respond: func(_ context.Context, q string) (*models.LyricsPayload, error) {
		return found(models.LyricsResult{Title: q}), nil
	}}
	f := newFixture(t, source, nil)

	for i := 1; i <= 9; i++ {
		require.NoError(t, f.session.Search(context.Background(), fmt.Sprintf("song %d", i)))
	}

	entries := f.session.History()
	require.Len(t, entries, history.DefaultLimit)
	require.Equal(t, "song 9", entries[0].Query)
	require.Equal(t, "song 2", entries[len(entries)-1].Query)

	last := f.view.history[len(f.view.history)-1]
	require.Len(t, last, history.DefaultLimit)
	require.Equal(t, "song 9", last[0].Query)
}

func TestSearchRejectsOverlap(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	source := &stubLyrics{respond: func(_ context.Context, q string) (*models.LyricsPayload, error) {
		close(started)
		<-release
		return found(models.LyricsResult{Title: q}), nil
	}}
	f := newFixture(t, source, nil)

	done := make(chan error, 1)
	go func() {
		done <- f.session.Search(context.Background(), "first")
	}()

	<-started
	require.True(t, f.session.Searching())
	require.ErrorIs(t, f.session.Search(context.Background(), "second"), ErrSearchInProgress)

	close(release)
	require.NoError(t, <-done)

	require.Equal(t, 1, source.callCount())
	entries := f.session.History()
	require.Len(t, entries, 1)
	require.Equal(t, "first", entries[0].Query)
}

func TestSearchFromHistory(t *testing.T) {
	var queries []string
	source := &stubLyrics{respond: func(_ context.Context, q string) (*models.LyricsPayload, error) {
		queries = append(queries, q)
		return found(models.LyricsResult{Title: q}), nil
	}}
	f := newFixture(t, source, nil)

	require.NoError(t, f.session.Search(context.Background(), "Yesterday"))
	require.NoError(t, f.session.Search(context.Background(), "Imagine"))
	require.NoError(t, f.session.SearchFromHistory(context.Background(), 1))

	require.Equal(t, []string{"Yesterday", "Imagine", "Yesterday"}, queries)
	require.Equal(t, "Yesterday", f.session.History()[0].Query)

	require.ErrorIs(t, f.session.SearchFromHistory(context.Background(), 7), ErrNoHistoryEntry)
}

func TestLoadHistoryPlaceholder(t *testing.T) {
	f := newFixture(t, &stubLyrics{}, nil)

	f.session.LoadHistory()
	require.Equal(t, []string{MsgNoHistory}, f.view.placeholders)
	require.Empty(t, f.view.history)
}

func TestClearHistory(t *testing.T) {
	source := &stubLyrics{respond: func(_ context.Context, q string) (*models.LyricsPayload, error) {
		return found(models.LyricsResult{Title: q}), nil
	}}

	t.Run("declined", func(t *testing.T) {
		f := newFixture(t, source, nil)
		require.NoError(t, f.session.Search(context.Background(), "keep me"))

		cleared, err := f.session.ClearHistory()
		require.NoError(t, err)
		require.False(t, cleared)
		require.Equal(t, []string{MsgConfirmClear}, f.view.prompts)
		require.Len(t, f.session.History(), 1)
	})

	t.Run("confirmed", func(t *testing.T) {
		f := newFixture(t, source, nil)
		f.view.confirmAnswer = true
		require.NoError(t, f.session.Search(context.Background(), "drop me"))

		cleared, err := f.session.ClearHistory()
		require.NoError(t, err)
		require.True(t, cleared)
		require.Empty(t, f.session.History())

		_, ok, err := f.storage.GetItem(history.StorageKey)
		require.NoError(t, err)
		require.False(t, ok)

		require.Equal(t, models.Notification{Message: MsgHistoryCleared, Kind: models.NotificationSuccess}, f.view.lastNotification())

		f.session.LoadHistory()
		require.Equal(t, []string{MsgNoHistory, MsgNoHistory}, f.view.placeholders)
	})
}

func TestCopyLyrics(t *testing.T) {
	source := &stubLyrics{respond: func(context.Context, string) (*models.LyricsPayload, error) {
		return found(models.LyricsResult{Lyrics: "Mama, just killed a man"}), nil
	}}

	t.Run("nothing rendered", func(t *testing.T) {
		f := newFixture(t, source, nil)
		require.ErrorIs(t, f.session.CopyLyrics(context.Background()), ErrNothingToCopy)
		require.Equal(t, MsgNothingToCopy, f.view.lastNotification().Message)
	})

	t.Run("copied", func(t *testing.T) {
		f := newFixture(t, source, nil)
		require.NoError(t, f.session.Search(context.Background(), "x"))
		require.NoError(t, f.session.CopyLyrics(context.Background()))
		require.Equal(t, "Mama, just killed a man", f.clipboard.text)
		require.Equal(t, models.Notification{Message: MsgCopied, Kind: models.NotificationSuccess}, f.view.lastNotification())
	})

	t.Run("clipboard unavailable", func(t *testing.T) {
		f := newFixture(t, source, nil)
		f.clipboard.err = errors.New("clipboard unavailable")
		require.NoError(t, f.session.Search(context.Background(), "x"))
		require.Error(t, f.session.CopyLyrics(context.Background()))
		require.Equal(t, models.Notification{Message: MsgCopyFailed, Kind: models.NotificationError}, f.view.lastNotification())
	})
}

func TestNotificationClearsAfterDelay(t *testing.T) {
	storage := history.NewMemoryStorage()
	h, err := history.Load(storage, 0, quietLogger())
	require.NoError(t, err)

	s, err := NewSession(Options{
		Lyrics:            &stubLyrics{},
		View:              &recordingView{},
		History:           h,
		NotificationDelay: 50 * time.Millisecond,
		Logger:            quietLogger(),
	})
	require.NoError(t, err)
	defer s.Close()

	require.ErrorIs(t, s.Search(context.Background(), ""), ErrEmptyQuery)
	require.NotNil(t, s.Notification())
	require.Eventually(t, func() bool { return s.Notification() == nil }, time.Second, 10*time.Millisecond)
}

func TestNewSessionRequiresCollaborators(t *testing.T) {
	h, err := history.Load(history.NewMemoryStorage(), 0, quietLogger())
	require.NoError(t, err)

	_, err = NewSession(Options{View: &recordingView{}, History: h})
	require.Error(t, err)
	_, err = NewSession(Options{Lyrics: &stubLyrics{}, History: h})
	require.Error(t, err)
	_, err = NewSession(Options{Lyrics: &stubLyrics{}, View: &recordingView{}})
	require.Error(t, err)
}

func TestFormatDate(t *testing.T) {
	ts := time.Date(2024, time.March, 7, 9, 5, 0, 0, time.Local)
	require.Equal(t, "03/07, 09:05", FormatDate(ts))
}
