package testutil

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/HerbHall/netsampler/internal/store"
)

// NewFileStore returns a FileStore rooted in a per-test temp directory.
func NewFileStore(t *testing.T) *store.FileStore {
	t.Helper()
	return store.NewFileStore(t.TempDir(), "", zap.NewNop())
}

// NewSQLiteStore creates an in-memory SQLiteStore for testing.
// The store is automatically closed when the test completes.
func NewSQLiteStore(t *testing.T) *store.SQLiteStore {
	t.Helper()
	db, err := store.OpenSQLite(context.Background(), "", ":memory:", zap.NewNop())
	if err != nil {
		t.Fatalf("testutil.NewSQLiteStore: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}
