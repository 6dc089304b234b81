package database

import (
	"path/filepath"
	"testing"
	"time"

	"lyrify/internal/history"

	"github.com/sirupsen/logrus"
)

func newTestDatabase(t *testing.T) (*Database, string) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")

	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)

	db, err := NewDatabase(dbPath, logger)
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	return db, dbPath
}

func TestDatabase(t *testing.T) {
	db, _ := newTestDatabase(t)
	defer db.Close()

	t.Run("GetMissingItem", func(t *testing.T) {
		value, ok, err := db.GetItem("missing")
		if err != nil {
			t.Fatalf("GetItem() error: %v", err)
		}
		if ok || value != "" {
			t.Errorf("GetItem() = %q, %v; want empty, false", value, ok)
		}
	})

	t.Run("SetAndGetItem", func(t *testing.T) {
		if err := db.SetItem("greeting", "hello"); err != nil {
			t.Fatalf("SetItem() error: %v", err)
		}

		value, ok, err := db.GetItem("greeting")
		if err != nil {
			t.Fatalf("GetItem() error: %v", err)
		}
		if !ok || value != "hello" {
			t.Errorf("GetItem() = %q, %v; want hello, true", value, ok)
		}
	})

	t.Run("SetItemOverwrites", func(t *testing.T) {
		if err := db.SetItem("greeting", "bonjour"); err != nil {
			t.Fatalf("SetItem() error: %v", err)
		}

		value, _, err := db.GetItem("greeting")
		if err != nil {
			t.Fatalf("GetItem() error: %v", err)
		}
		if value != "bonjour" {
			t.Errorf("GetItem() = %q, want bonjour", value)
		}
	})

	t.Run("RemoveItem", func(t *testing.T) {
		if err := db.RemoveItem("greeting"); err != nil {
			t.Fatalf("RemoveItem() error: %v", err)
		}
		if _, ok, _ := db.GetItem("greeting"); ok {
			t.Error("expected item to be removed")
		}

		// Removing again is a no-op
		if err := db.RemoveItem("greeting"); err != nil {
			t.Errorf("RemoveItem() on missing key error: %v", err)
		}
	})
}

func TestDatabasePersistsHistoryAcrossSessions(t *testing.T) {
	db, dbPath := newTestDatabase(t)

	h, err := history.Load(db, history.DefaultLimit, nil)
	if err != nil {
		t.Fatalf("history.Load() error: %v", err)
	}
	if err := h.Add("Bohemian Rhapsody", time.Now()); err != nil {
		t.Fatalf("Add() error: %v", err)
	}
	if err := db.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}

	reopened, err := NewDatabase(dbPath, nil)
	if err != nil {
		t.Fatalf("Failed to reopen database: %v", err)
	}
	defer reopened.Close()

	restored, err := history.Load(reopened, history.DefaultLimit, nil)
	if err != nil {
		t.Fatalf("history.Load() error: %v", err)
	}
	entry, ok := restored.At(0)
	if !ok || entry.Query != "Bohemian Rhapsody" {
		t.Errorf("restored history = %+v, want Bohemian Rhapsody at index 0", restored.Entries())
	}
}

var _ history.Storage = (*Database)(nil)
