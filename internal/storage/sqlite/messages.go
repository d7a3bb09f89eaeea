package sqlite

import (
	"context"
	"fmt"

	"github.com/mapleai/maple/internal/storage"
	"github.com/mapleai/maple/pkg/types"
)

// AppendMessage stores one chat message.
func (s *Store) AppendMessage(ctx context.Context, msg *types.ChatMessage) error {
	if msg == nil || msg.ID == "" || msg.UserID == "" {
		return fmt.Errorf("%w: message ID and user ID are required", storage.ErrInvalidInput)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO messages (id, user_id, content, is_user, emotion, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		msg.ID, msg.UserID, msg.Content, msg.IsUser, string(msg.Emotion), msg.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting message: %w", err)
	}
	return nil
}

// ListMessages retrieves a user's chat history, newest first.
func (s *Store) ListMessages(ctx context.Context, userID string, opts storage.ListOptions) ([]*types.ChatMessage, error) {
	opts.Normalize()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, content, is_user, emotion, created_at
		FROM messages
		WHERE user_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ? OFFSET ?`,
		userID, opts.Limit, opts.Offset())
	if err != nil {
		return nil, fmt.Errorf("querying messages: %w", err)
	}
	defer rows.Close()

	var out []*types.ChatMessage
	for rows.Next() {
		var m types.ChatMessage
		if err := rows.Scan(&m.ID, &m.UserID, &m.Content, &m.IsUser, &m.Emotion, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning message: %w", err)
		}
		out = append(out, &m)
	}
	return out, rows.Err()
}

// CountMessages returns the total number of stored messages for a user.
func (s *Store) CountMessages(ctx context.Context, userID string) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM messages WHERE user_id = ?`, userID).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting messages: %w", err)
	}
	return n, nil
}

// ClearMessages deletes a user's entire chat history.
func (s *Store) ClearMessages(ctx context.Context, userID string) error {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM messages WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("clearing messages: %w", err)
	}
	return nil
}
