// Package store executes compiled SQL against the target database. It
// speaks both supported dialects through database/sql; everything
// dialect-specific is decided upstream by the compiler, so the store
// only chooses the driver and runs text.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/jarifuri/org-sql/internal/sqlgen"
	"github.com/jarifuri/org-sql/internal/syncer"
)

// Store is the database surface the sync pipeline depends on.
type Store interface {
	InitSchema() error
	ExecScript(script string) error
	Files() ([]syncer.FileMeta, error)
	RenameFile(oldPath, newPath string) error
	DeleteFile(path string) error
	Close() error
}

var _ Store = (*DB)(nil)

// DB wraps a sql.DB plus the compiler that produced its statements.
type DB struct {
	conn     *sql.DB
	compiler *sqlgen.Compiler
}

// Open connects to the database named by dsn using the driver matching
// the compiler's dialect. For sqlite the dsn is a file path; journal
// and busy-timeout pragmas are appended unless the caller set any.
func Open(c *sqlgen.Compiler, dsn string) (*DB, error) {
	var driver string
	switch c.Dialect() {
	case sqlgen.SQLite:
		driver = "sqlite3"
		if !strings.Contains(dsn, "?") {
			dsn += "?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on"
		}
	case sqlgen.Postgres:
		driver = "postgres"
	default:
		return nil, fmt.Errorf("store: unsupported dialect %v", c.Dialect())
	}

	conn, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("store: open: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: ping: %w", err)
	}
	return &DB{conn: conn, compiler: c}, nil
}

// InitSchema applies the compiled DDL. Statements use IF NOT EXISTS, so
// reopening an existing database is a no-op.
func (db *DB) InitSchema() error {
	for _, stmt := range db.compiler.CreateSchema() {
		if _, err := db.conn.Exec(stmt); err != nil {
			// Postgres has no CREATE TYPE IF NOT EXISTS; an existing
			// enum type is fine.
			if strings.HasPrefix(stmt, "CREATE TYPE") && strings.Contains(err.Error(), "already exists") {
				continue
			}
			return fmt.Errorf("store: apply schema: %w", err)
		}
	}
	return nil
}

// ExecScript runs one compiled transaction script. The script carries
// its own BEGIN/COMMIT, so it goes through a single Exec without
// parameters and the driver submits it as plain multi-statement text.
// The script is pinned to one connection: a mid-script failure leaves
// that connection inside an open transaction, and the rollback must
// land on the same connection before it returns to the pool.
func (db *DB) ExecScript(script string) error {
	ctx := context.Background()
	conn, err := db.conn.Conn(ctx)
	if err != nil {
		return fmt.Errorf("store: acquire conn: %w", err)
	}
	defer conn.Close()

	if _, err := conn.ExecContext(ctx, script); err != nil {
		_, _ = conn.ExecContext(ctx, "ROLLBACK;")
		return fmt.Errorf("store: exec script: %w", err)
	}
	return nil
}

// Files returns the content identity of every indexed file.
func (db *DB) Files() ([]syncer.FileMeta, error) {
	rows, err := db.conn.Query(`SELECT file_path, file_hash, file_size FROM files`)
	if err != nil {
		return nil, fmt.Errorf("store: list files: %w", err)
	}
	defer rows.Close()

	var out []syncer.FileMeta
	for rows.Next() {
		var f syncer.FileMeta
		if err := rows.Scan(&f.StorePath, &f.Hash, &f.Size); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// RenameFile updates a file's path in place. Foreign keys cascade the
// new path to every referencing row.
func (db *DB) RenameFile(oldPath, newPath string) error {
	stmt, err := db.compiler.Update("files",
		sqlgen.Row{"file_path": newPath},
		sqlgen.Row{"file_path": oldPath})
	if err != nil {
		return fmt.Errorf("store: rename %s: %w", oldPath, err)
	}
	return db.ExecScript(db.compiler.Transaction([]string{stmt}))
}

// DeleteFile removes a file row; cascading deletes take its headlines,
// timestamps, and every other dependent row with it.
func (db *DB) DeleteFile(path string) error {
	stmt, err := db.compiler.Delete("files", sqlgen.Row{"file_path": path})
	if err != nil {
		return fmt.Errorf("store: delete %s: %w", path, err)
	}
	return db.ExecScript(db.compiler.Transaction([]string{stmt}))
}

// Close closes the underlying connection.
func (db *DB) Close() error {
	return db.conn.Close()
}
