package testutil

import (
	"path/filepath"
	"testing"

	"foodhive/internal/database"
	"foodhive/internal/docstore"
)

// NewTestDatabase opens a migrated SQLite database in a temp dir.
func NewTestDatabase(t *testing.T) *database.DB {
	t.Helper()

	db, err := database.NewDB(filepath.Join(t.TempDir(), "foodhive.db"))
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

// NewStore returns an observable document store backed by a test database.
func NewStore(t *testing.T) *docstore.Observable {
	t.Helper()
	return docstore.NewObservable(docstore.NewSQLiteStore(NewTestDatabase(t).SQL))
}
