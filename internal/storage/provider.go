// Package storage defines the source-directory abstraction the sync
// pipeline reads org files through.
package storage

import "github.com/jarifuri/org-sql/internal/syncer"

// Provider is the interface for source file access. The pipeline only
// ever reads; all writes go to the database.
type Provider interface {
	// List returns path, hash, and size for every org file under dir
	// (relative to the source root).
	List(dir string) ([]syncer.FileMeta, error)
	// Read returns the raw bytes of the file at path (relative to the
	// source root).
	Read(path string) ([]byte, error)
}
