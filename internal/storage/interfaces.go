// Package storage provides composable storage interfaces for the Maple
// companion backend.
//
// The storage layer is designed with small, focused interfaces that can be
// implemented independently and composed as needed. SQLite is the default
// backend; conversation memory can also live in Postgres with pgvector for
// similarity recall.
package storage

import (
	"context"

	"github.com/mapleai/maple/pkg/types"
)

// UserStore manages user accounts.
type UserStore interface {
	// CreateUser inserts a new user.
	// Returns ErrAlreadyExists if the email or username is taken.
	CreateUser(ctx context.Context, user *types.User) error

	// GetUser retrieves a user by ID.
	// Returns ErrNotFound if the user doesn't exist.
	GetUser(ctx context.Context, id string) (*types.User, error)

	// GetUserByEmail retrieves a user by email address.
	// Returns ErrNotFound if no user has that email.
	GetUserByEmail(ctx context.Context, email string) (*types.User, error)

	// UpdateUser modifies an existing user.
	// Returns ErrNotFound if the user doesn't exist.
	UpdateUser(ctx context.Context, user *types.User) error

	// TouchLastActive updates the user's last_active_at timestamp.
	TouchLastActive(ctx context.Context, id string) error
}

// CompanionStore manages per-user companion state.
type CompanionStore interface {
	// GetCompanionState retrieves the companion state for a user.
	// Returns ErrNotFound if the user has no companion yet.
	GetCompanionState(ctx context.Context, userID string) (*types.CompanionState, error)

	// SaveCompanionState creates or updates the companion state (upsert
	// semantics keyed by user ID).
	SaveCompanionState(ctx context.Context, state *types.CompanionState) error
}

// MessageStore manages chat history.
type MessageStore interface {
	// AppendMessage stores one chat message.
	AppendMessage(ctx context.Context, msg *types.ChatMessage) error

	// ListMessages retrieves a user's chat history, newest first.
	ListMessages(ctx context.Context, userID string, opts ListOptions) ([]*types.ChatMessage, error)

	// CountMessages returns the total number of stored messages for a user.
	CountMessages(ctx context.Context, userID string) (int, error)

	// ClearMessages deletes a user's entire chat history.
	ClearMessages(ctx context.Context, userID string) error
}

// MemoryStore manages long-term conversation memory entries used to build
// context for reply generation.
type MemoryStore interface {
	// StoreMemory persists one memory entry.
	StoreMemory(ctx context.Context, entry *types.MemoryEntry) error

	// RecallMemories returns up to limit entries relevant to the query for
	// the given user. The SQLite backend recalls by recency; the Postgres
	// backend recalls by embedding similarity when an embedding is supplied.
	RecallMemories(ctx context.Context, userID, query string, embedding []float32, limit int) ([]*types.MemoryEntry, error)
}

// SettingsStore persists key-value settings, both global and per-user.
type SettingsStore interface {
	// GetSetting retrieves a setting value.
	// Returns ErrNotFound if the key is unset.
	GetSetting(ctx context.Context, scope, key string) (string, error)

	// SetSetting upserts a setting value.
	SetSetting(ctx context.Context, scope, key, value string) error
}

// Store composes all storage concerns behind a single backend handle.
type Store interface {
	UserStore
	CompanionStore
	MessageStore
	MemoryStore
	SettingsStore

	// Stats returns row counts for the health and stats endpoints.
	Stats(ctx context.Context) (*Stats, error)

	// Close releases any resources held by the store.
	Close() error
}

// Stats summarizes stored row counts.
type Stats struct {
	Users      int `json:"users"`
	Messages   int `json:"messages"`
	Companions int `json:"companions"`
	Memories   int `json:"memories"`
}
