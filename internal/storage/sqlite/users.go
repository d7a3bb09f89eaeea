package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mapleai/maple/internal/storage"
	"github.com/mapleai/maple/pkg/types"
)

// CreateUser inserts a new user. Email and username are unique.
func (s *Store) CreateUser(ctx context.Context, user *types.User) error {
	if user == nil || user.ID == "" || user.Email == "" {
		return fmt.Errorf("%w: user ID and email are required", storage.ErrInvalidInput)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, email, username, password_hash, full_name, joined_at, last_active_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		user.ID, user.Email, user.Username, user.PasswordHash,
		user.FullName, user.JoinedAt, user.LastActiveAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: email or username taken", storage.ErrAlreadyExists)
		}
		return fmt.Errorf("inserting user: %w", err)
	}
	return nil
}

// GetUser retrieves a user by ID.
func (s *Store) GetUser(ctx context.Context, id string) (*types.User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx, `
		SELECT id, email, username, password_hash, full_name, joined_at, last_active_at
		FROM users WHERE id = ?`, id))
}

// GetUserByEmail retrieves a user by email address.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*types.User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx, `
		SELECT id, email, username, password_hash, full_name, joined_at, last_active_at
		FROM users WHERE email = ?`, email))
}

// UpdateUser modifies an existing user.
func (s *Store) UpdateUser(ctx context.Context, user *types.User) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE users
		SET email = ?, username = ?, password_hash = ?, full_name = ?, last_active_at = ?
		WHERE id = ?`,
		user.Email, user.Username, user.PasswordHash, user.FullName,
		user.LastActiveAt, user.ID)
	if err != nil {
		return fmt.Errorf("updating user: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking update result: %w", err)
	}
	if rows == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// TouchLastActive updates the user's last_active_at timestamp.
func (s *Store) TouchLastActive(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE users SET last_active_at = ? WHERE id = ?`, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("touching last active: %w", err)
	}
	return nil
}

func (s *Store) scanUser(row *sql.Row) (*types.User, error) {
	var u types.User
	err := row.Scan(&u.ID, &u.Email, &u.Username, &u.PasswordHash,
		&u.FullName, &u.JoinedAt, &u.LastActiveAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning user: %w", err)
	}
	return &u, nil
}

// isUniqueViolation detects SQLite unique constraint errors without
// depending on driver-specific error types.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
