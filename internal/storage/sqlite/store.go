// Package sqlite is the default storage backend. A single database file
// holds users, companion state, chat history, conversation memory and
// settings.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/mapleai/maple/internal/storage"
)

// Store implements storage.Store on SQLite.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) a SQLite database, configures WAL mode and applies
// the schema.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one concurrent writer. A single open connection
	// serialises writes and avoids SQLITE_BUSY errors under concurrent
	// load; WAL mode lets readers proceed without blocking the writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	// Wait instead of failing immediately when the connection is held by
	// another goroutine.
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &Store{db: db}, nil
}

// DB exposes the underlying handle for the config layer and backup service.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Stats returns row counts for the health and stats endpoints.
func (s *Store) Stats(ctx context.Context) (*storage.Stats, error) {
	stats := &storage.Stats{}
	for _, q := range []struct {
		query string
		dst   *int
	}{
		{"SELECT COUNT(*) FROM users", &stats.Users},
		{"SELECT COUNT(*) FROM messages", &stats.Messages},
		{"SELECT COUNT(*) FROM companion_states", &stats.Companions},
		{"SELECT COUNT(*) FROM memories", &stats.Memories},
	} {
		if err := s.db.QueryRowContext(ctx, q.query).Scan(q.dst); err != nil {
			return nil, fmt.Errorf("counting rows: %w", err)
		}
	}
	return stats, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

var _ storage.Store = (*Store)(nil)
