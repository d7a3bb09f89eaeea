package handlers

import (
	"context"
	"sync"

	"github.com/mapleai/maple/internal/storage"
	"github.com/mapleai/maple/pkg/types"
)

// stubStore is an in-memory storage.Store for handler tests.
type stubStore struct {
	mu       sync.Mutex
	users    map[string]*types.User
	states   map[string]*types.CompanionState
	messages []*types.ChatMessage
	memories []*types.MemoryEntry
	settings map[string]string
}

func newStubStore() *stubStore {
	return &stubStore{
		users:    make(map[string]*types.User),
		states:   make(map[string]*types.CompanionState),
		settings: make(map[string]string),
	}
}

func (s *stubStore) CreateUser(_ context.Context, user *types.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == user.Email || u.Username == user.Username {
			return storage.ErrAlreadyExists
		}
	}
	clone := *user
	s.users[user.ID] = &clone
	return nil
}

func (s *stubStore) GetUser(_ context.Context, id string) (*types.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	clone := *u
	return &clone, nil
}

func (s *stubStore) GetUserByEmail(_ context.Context, email string) (*types.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			clone := *u
			return &clone, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (s *stubStore) UpdateUser(_ context.Context, user *types.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[user.ID]; !ok {
		return storage.ErrNotFound
	}
	clone := *user
	s.users[user.ID] = &clone
	return nil
}

func (s *stubStore) TouchLastActive(_ context.Context, _ string) error { return nil }

func (s *stubStore) GetCompanionState(_ context.Context, userID string) (*types.CompanionState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	state, ok := s.states[userID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	clone := *state
	return &clone, nil
}

func (s *stubStore) SaveCompanionState(_ context.Context, state *types.CompanionState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	clone := *state
	s.states[state.UserID] = &clone
	return nil
}

func (s *stubStore) AppendMessage(_ context.Context, msg *types.ChatMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	clone := *msg
	s.messages = append(s.messages, &clone)
	return nil
}

func (s *stubStore) ListMessages(_ context.Context, userID string, opts storage.ListOptions) ([]*types.ChatMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*types.ChatMessage
	for i := len(s.messages) - 1; i >= 0; i-- {
		if s.messages[i].UserID == userID {
			out = append(out, s.messages[i])
		}
	}
	return out, nil
}

func (s *stubStore) CountMessages(_ context.Context, userID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, m := range s.messages {
		if m.UserID == userID {
			count++
		}
	}
	return count, nil
}

func (s *stubStore) ClearMessages(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.messages[:0]
	for _, m := range s.messages {
		if m.UserID != userID {
			kept = append(kept, m)
		}
	}
	s.messages = kept
	return nil
}

func (s *stubStore) StoreMemory(_ context.Context, entry *types.MemoryEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	clone := *entry
	s.memories = append(s.memories, &clone)
	return nil
}

func (s *stubStore) RecallMemories(_ context.Context, userID, _ string, _ []float32, limit int) ([]*types.MemoryEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*types.MemoryEntry
	for i := len(s.memories) - 1; i >= 0 && len(out) < limit; i-- {
		if s.memories[i].UserID == userID {
			out = append(out, s.memories[i])
		}
	}
	return out, nil
}

func (s *stubStore) GetSetting(_ context.Context, scope, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.settings[scope+"/"+key]
	if !ok {
		return "", storage.ErrNotFound
	}
	return v, nil
}

func (s *stubStore) SetSetting(_ context.Context, scope, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings[scope+"/"+key] = value
	return nil
}

func (s *stubStore) Stats(_ context.Context) (*storage.Stats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return &storage.Stats{
		Users:      len(s.users),
		Messages:   len(s.messages),
		Companions: len(s.states),
		Memories:   len(s.memories),
	}, nil
}

func (s *stubStore) Close() error { return nil }

var _ storage.Store = (*stubStore)(nil)
