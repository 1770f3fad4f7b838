// Package testutil provides shared test helpers for setting up source
// trees and databases.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jarifuri/org-sql/internal/schema"
	"github.com/jarifuri/org-sql/internal/sqlgen"
	"github.com/jarifuri/org-sql/internal/storage"
	"github.com/jarifuri/org-sql/internal/store"
)

// TestDB creates a temporary SQLite database with the schema applied,
// cleaned up automatically.
func TestDB(t *testing.T) *store.DB {
	t.Helper()
	compiler := sqlgen.New(schema.Default(), sqlgen.SQLite)
	db, err := store.Open(compiler, filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	if err := db.InitSchema(); err != nil {
		t.Fatal(err)
	}
	return db
}

// TestSource creates a temporary org source directory with a
// storage.Provider over it.
func TestSource(t *testing.T) (string, storage.Provider) {
	t.Helper()
	dir := t.TempDir()
	source, err := storage.NewFS(dir, ".org")
	if err != nil {
		t.Fatal(err)
	}
	return dir, source
}

// WriteFile writes an org file under dir, creating subdirectories as
// needed.
func WriteFile(t *testing.T, dir, rel, content string) {
	t.Helper()
	p := filepath.Join(dir, rel)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}
