package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"lyrify/pkg/models"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func TestLoadEmpty(t *testing.T) {
	h, err := Load(NewMemoryStorage(), DefaultLimit, quietLogger())
	require.NoError(t, err)
	require.Equal(t, 0, h.Len())
	require.Empty(t, h.Entries())
}

func TestAddPrependsAndPersists(t *testing.T) {
	storage := NewMemoryStorage()
	h, err := Load(storage, DefaultLimit, quietLogger())
	require.NoError(t, err)

	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, h.Add("Yesterday", base))
	require.NoError(t, h.Add("Bohemian Rhapsody", base.Add(time.Minute)))

	entries := h.Entries()
	require.Len(t, entries, 2)
	require.Equal(t, "Bohemian Rhapsody", entries[0].Query)
	require.Equal(t, "Yesterday", entries[1].Query)

	raw, ok, err := storage.GetItem(StorageKey)
	require.NoError(t, err)
	require.True(t, ok)

	var persisted []models.HistoryEntry
	require.NoError(t, json.Unmarshal([]byte(raw), &persisted))
	require.Equal(t, entries, persisted)
	require.Contains(t, raw, `"timestamp":"2024-03-01T12:01:00Z"`)
}

func TestAddKeepsDuplicates(t *testing.T) {
	h, err := Load(NewMemoryStorage(), DefaultLimit, quietLogger())
	require.NoError(t, err)

	now := time.Now()
	require.NoError(t, h.Add("Queen", now))
	require.NoError(t, h.Add("Queen", now))
	require.Equal(t, 2, h.Len())
}

func TestAddTruncatesOldest(t *testing.T) {
	storage := NewMemoryStorage()
	h, err := Load(storage, DefaultLimit, quietLogger())
	require.NoError(t, err)

	now := time.Now()
	for i := 1; i <= 9; i++ {
		require.NoError(t, h.Add(fmt.Sprintf("song %d", i), now.Add(time.Duration(i)*time.Second)))
	}

	require.Equal(t, 8, h.Len())
	first, ok := h.At(0)
	require.True(t, ok)
	require.Equal(t, "song 9", first.Query)
	last, ok := h.At(7)
	require.True(t, ok)
	require.Equal(t, "song 2", last.Query)

	reloaded, err := Load(storage, DefaultLimit, quietLogger())
	require.NoError(t, err)
	require.Equal(t, h.Entries(), reloaded.Entries())
}

func TestClearRemovesSlot(t *testing.T) {
	storage := NewMemoryStorage()
	h, err := Load(storage, DefaultLimit, quietLogger())
	require.NoError(t, err)
	require.NoError(t, h.Add("Queen", time.Now()))

	require.NoError(t, h.Clear())
	require.Equal(t, 0, h.Len())

	_, ok, err := storage.GetItem(StorageKey)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestLoadMalformedYieldsEmpty(t *testing.T) {
	storage := NewMemoryStorage()
	require.NoError(t, storage.SetItem(StorageKey, "{not json"))

	h, err := Load(storage, DefaultLimit, quietLogger())
	require.NoError(t, err)
	require.Equal(t, 0, h.Len())
}

func TestLoadAcceptsBrowserTimestamps(t *testing.T) {
	storage := NewMemoryStorage()
	require.NoError(t, storage.SetItem(StorageKey, `[{"query":"Queen","timestamp":"2024-05-06T07:08:09.123Z"}]`))

	h, err := Load(storage, DefaultLimit, quietLogger())
	require.NoError(t, err)
	entry, ok := h.At(0)
	require.True(t, ok)
	require.Equal(t, "Queen", entry.Query)
	require.Equal(t, 123*time.Millisecond, time.Duration(entry.Timestamp.Nanosecond()))
}

func TestLoadTrimsOversizedSlot(t *testing.T) {
	storage := NewMemoryStorage()
	entries := make([]models.HistoryEntry, 12)
	for i := range entries {
		entries[i] = models.HistoryEntry{Query: fmt.Sprintf("q%d", i), Timestamp: time.Now().UTC()}
	}
	data, err := json.Marshal(entries)
	require.NoError(t, err)
	require.NoError(t, storage.SetItem(StorageKey, string(data)))

	h, err := Load(storage, DefaultLimit, quietLogger())
	require.NoError(t, err)
	require.Equal(t, DefaultLimit, h.Len())
}

type failingStorage struct{ *MemoryStorage }

func (failingStorage) SetItem(string, string) error { return errors.New("disk full") }

func TestAddSurfacesStorageErrors(t *testing.T) {
	h, err := Load(failingStorage{NewMemoryStorage()}, DefaultLimit, quietLogger())
	require.NoError(t, err)
	require.Error(t, h.Add("Queen", time.Now()))
}
