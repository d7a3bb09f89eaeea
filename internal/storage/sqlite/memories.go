package sqlite

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mapleai/maple/internal/storage"
	"github.com/mapleai/maple/pkg/types"
)

// StoreMemory persists one memory entry. The embedding, when present, is
// stored as JSON for portability; SQLite recall doesn't use it.
func (s *Store) StoreMemory(ctx context.Context, entry *types.MemoryEntry) error {
	if entry == nil || entry.ID == "" || entry.UserID == "" {
		return fmt.Errorf("%w: memory ID and user ID are required", storage.ErrInvalidInput)
	}

	var embedding []byte
	if len(entry.Embedding) > 0 {
		var err error
		embedding, err = json.Marshal(entry.Embedding)
		if err != nil {
			return fmt.Errorf("encoding embedding: %w", err)
		}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO memories (id, user_id, content, topic, emotion, embedding, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.UserID, entry.Content, entry.Topic,
		string(entry.Emotion), embedding, entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting memory: %w", err)
	}
	return nil
}

// RecallMemories returns the user's most recent entries. The query and
// embedding are ignored here; similarity recall needs the Postgres backend.
func (s *Store) RecallMemories(ctx context.Context, userID, _ string, _ []float32, limit int) ([]*types.MemoryEntry, error) {
	if limit < 1 {
		limit = 5
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, content, topic, emotion, embedding, created_at
		FROM memories
		WHERE user_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying memories: %w", err)
	}
	defer rows.Close()

	var out []*types.MemoryEntry
	for rows.Next() {
		var (
			entry     types.MemoryEntry
			embedding []byte
		)
		if err := rows.Scan(&entry.ID, &entry.UserID, &entry.Content, &entry.Topic,
			&entry.Emotion, &embedding, &entry.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning memory: %w", err)
		}
		if len(embedding) > 0 {
			if err := json.Unmarshal(embedding, &entry.Embedding); err != nil {
				return nil, fmt.Errorf("decoding embedding: %w", err)
			}
		}
		out = append(out, &entry)
	}
	return out, rows.Err()
}
