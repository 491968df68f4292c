package testsupport

import (
	"context"
	"testing"

	"scribe/internal/config"
	"scribe/internal/queue"
)

// MustOpenStore opens a queue.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *queue.Store {
	t.Helper()

	store, err := queue.Open(cfg.Paths.WorkDir)
	if err != nil {
		t.Fatalf("queue.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// NewRecording creates a pending recording item for tests using the provided store.
func NewRecording(t testing.TB, store *queue.Store, sourcePath, fingerprint string) *queue.Item {
	t.Helper()

	item, err := store.NewRecording(context.Background(), sourcePath, fingerprint)
	if err != nil {
		t.Fatalf("store.NewRecording: %v", err)
	}
	return item
}
