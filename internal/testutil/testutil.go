// Package testutil provides shared test helpers for setting up note trees
// and databases.
package testutil

import (
	"os"
	"testing"

	"github.com/starford/sowilo/internal/index"
	"github.com/starford/sowilo/internal/storage"
)

// TestDB creates a temporary SQLite database that is automatically cleaned up.
func TestDB(t *testing.T) *index.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "sowilo-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := index.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestTree creates a temporary note tree with a storage provider rooted at it.
func TestTree(t *testing.T) (string, *storage.FS) {
	t.Helper()
	treeDir := t.TempDir()
	store, err := storage.NewFS(treeDir, nil)
	if err != nil {
		t.Fatal(err)
	}
	return treeDir, store
}
