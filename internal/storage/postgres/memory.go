package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
	pgvector "github.com/pgvector/pgvector-go"

	"github.com/mapleai/maple/internal/storage"
	"github.com/mapleai/maple/pkg/types"
)

// MemoryStore implements storage.MemoryStore on PostgreSQL. When the pgvector
// extension is installed, recall orders by cosine distance to the query
// embedding; otherwise it degrades to recency, matching the SQLite backend.
type MemoryStore struct {
	db                *sql.DB
	pgvectorAvailable bool
	logger            *slog.Logger
}

// NewMemoryStore opens the database, applies the schema, and probes for
// pgvector. A server without the extension still works with recency recall.
func NewMemoryStore(dsn string, logger *slog.Logger) (*MemoryStore, error) {
	if logger == nil {
		logger = slog.Default()
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening postgres: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging postgres: %w", err)
	}

	s := &MemoryStore{db: db, logger: logger}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("applying schema: %w", err)
	}

	if _, err := db.Exec("CREATE EXTENSION IF NOT EXISTS vector"); err != nil {
		logger.Warn("pgvector extension not available, memory recall degrades to recency", "error", err)
		return s, nil
	}
	if _, err := db.Exec(MigrationPgvector); err != nil {
		logger.Warn("pgvector migration failed, memory recall degrades to recency", "error", err)
		return s, nil
	}
	s.pgvectorAvailable = true
	return s, nil
}

func (s *MemoryStore) Close() error {
	return s.db.Close()
}

// StoreMemory persists one memory entry. The embedding is only written when
// pgvector is available; the row is kept either way so recency recall works.
func (s *MemoryStore) StoreMemory(ctx context.Context, entry *types.MemoryEntry) error {
	if entry == nil || entry.ID == "" || entry.UserID == "" {
		return fmt.Errorf("%w: memory ID and user ID are required", storage.ErrInvalidInput)
	}

	if s.pgvectorAvailable && len(entry.Embedding) > 0 {
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO memories (id, user_id, content, topic, emotion, embedding, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			entry.ID, entry.UserID, entry.Content, entry.Topic,
			string(entry.Emotion), pgvector.NewVector(entry.Embedding), entry.CreatedAt)
		if err != nil {
			return fmt.Errorf("inserting memory: %w", err)
		}
		return nil
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO memories (id, user_id, content, topic, emotion, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		entry.ID, entry.UserID, entry.Content, entry.Topic,
		string(entry.Emotion), entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting memory: %w", err)
	}
	return nil
}

// RecallMemories returns up to limit entries for the user. With an embedding
// and pgvector available, the nearest memories by cosine distance come back
// first; otherwise the most recent ones do.
func (s *MemoryStore) RecallMemories(ctx context.Context, userID, _ string, embedding []float32, limit int) ([]*types.MemoryEntry, error) {
	if limit < 1 {
		limit = 5
	}

	var (
		rows *sql.Rows
		err  error
	)
	if s.pgvectorAvailable && len(embedding) > 0 {
		rows, err = s.db.QueryContext(ctx, `
			SELECT id, user_id, content, topic, emotion, created_at
			FROM memories
			WHERE user_id = $1 AND embedding IS NOT NULL
			ORDER BY embedding <=> $2
			LIMIT $3`, userID, pgvector.NewVector(embedding), limit)
	} else {
		rows, err = s.db.QueryContext(ctx, `
			SELECT id, user_id, content, topic, emotion, created_at
			FROM memories
			WHERE user_id = $1
			ORDER BY created_at DESC, id DESC
			LIMIT $2`, userID, limit)
	}
	if err != nil {
		return nil, fmt.Errorf("querying memories: %w", err)
	}
	defer rows.Close()

	var out []*types.MemoryEntry
	for rows.Next() {
		var entry types.MemoryEntry
		if err := rows.Scan(&entry.ID, &entry.UserID, &entry.Content,
			&entry.Topic, &entry.Emotion, &entry.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning memory: %w", err)
		}
		out = append(out, &entry)
	}
	return out, rows.Err()
}

var _ storage.MemoryStore = (*MemoryStore)(nil)
