package sqlite

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/mapleai/maple/internal/storage"
	"github.com/mapleai/maple/pkg/types"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func seedUser(t *testing.T, store *Store, id, email string) *types.User {
	t.Helper()
	now := time.Now().UTC().Truncate(time.Second)
	user := &types.User{
		ID:           id,
		Email:        email,
		Username:     id,
		PasswordHash: "hash",
		JoinedAt:     now,
		LastActiveAt: now,
	}
	if err := store.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	return user
}

func TestUsers_CreateAndGet(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	user := seedUser(t, store, "user-1", "one@example.com")

	got, err := store.GetUser(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetUser failed: %v", err)
	}
	if got.Email != user.Email || got.Username != user.Username {
		t.Errorf("Got user %+v, want %+v", got, user)
	}

	byEmail, err := store.GetUserByEmail(ctx, user.Email)
	if err != nil {
		t.Fatalf("GetUserByEmail failed: %v", err)
	}
	if byEmail.ID != user.ID {
		t.Errorf("Got ID %q, want %q", byEmail.ID, user.ID)
	}
}

func TestUsers_DuplicateEmail(t *testing.T) {
	store := newTestStore(t)
	seedUser(t, store, "user-1", "dup@example.com")

	dup := &types.User{
		ID:           "user-2",
		Email:        "dup@example.com",
		Username:     "user-2",
		PasswordHash: "hash",
		JoinedAt:     time.Now(),
		LastActiveAt: time.Now(),
	}
	err := store.CreateUser(context.Background(), dup)
	if !errors.Is(err, storage.ErrAlreadyExists) {
		t.Errorf("Expected ErrAlreadyExists, got %v", err)
	}
}

func TestUsers_NotFound(t *testing.T) {
	store := newTestStore(t)

	if _, err := store.GetUser(context.Background(), "missing"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
	if _, err := store.GetUserByEmail(context.Background(), "missing@example.com"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestUsers_TouchLastActive(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	user := seedUser(t, store, "user-1", "one@example.com")

	if err := store.TouchLastActive(ctx, user.ID); err != nil {
		t.Fatalf("TouchLastActive failed: %v", err)
	}

	got, err := store.GetUser(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetUser failed: %v", err)
	}
	if got.LastActiveAt.Before(user.LastActiveAt) {
		t.Errorf("LastActiveAt = %v, want at or after %v", got.LastActiveAt, user.LastActiveAt)
	}
}

func TestCompanionState_UpsertRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	state := types.DefaultCompanionState("user-1", now)
	if err := store.SaveCompanionState(ctx, state); err != nil {
		t.Fatalf("SaveCompanionState failed: %v", err)
	}

	got, err := store.GetCompanionState(ctx, "user-1")
	if err != nil {
		t.Fatalf("GetCompanionState failed: %v", err)
	}
	if got.Energy != state.Energy || got.Mood != state.Mood || got.BondLevel != state.BondLevel {
		t.Errorf("Round trip mismatch: got %+v, want %+v", got, state)
	}
	if got.Personality.Empathy != state.Personality.Empathy {
		t.Errorf("Personality.Empathy = %v, want %v", got.Personality.Empathy, state.Personality.Empathy)
	}

	// Second save for the same user updates in place.
	state.Energy = 40
	state.Mood = types.MoodSleepy
	state.Skills = map[string]int{"chat": 3}
	if err := store.SaveCompanionState(ctx, state); err != nil {
		t.Fatalf("SaveCompanionState upsert failed: %v", err)
	}

	got, err = store.GetCompanionState(ctx, "user-1")
	if err != nil {
		t.Fatalf("GetCompanionState failed: %v", err)
	}
	if got.Energy != 40 || got.Mood != types.MoodSleepy {
		t.Errorf("Upsert not applied: got energy=%d mood=%s", got.Energy, got.Mood)
	}
	if got.Skills["chat"] != 3 {
		t.Errorf("Skills not persisted: %+v", got.Skills)
	}
}

func TestCompanionState_NotFound(t *testing.T) {
	store := newTestStore(t)
	if _, err := store.GetCompanionState(context.Background(), "missing"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestMessages_NewestFirstPagination(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	base := time.Now().UTC().Truncate(time.Second)

	for i := 0; i < 5; i++ {
		msg := &types.ChatMessage{
			ID:        fmt.Sprintf("msg-%d", i),
			UserID:    "user-1",
			Content:   fmt.Sprintf("message %d", i),
			IsUser:    i%2 == 0,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		if err := store.AppendMessage(ctx, msg); err != nil {
			t.Fatalf("AppendMessage failed: %v", err)
		}
	}

	page1, err := store.ListMessages(ctx, "user-1", storage.ListOptions{Page: 1, Limit: 2})
	if err != nil {
		t.Fatalf("ListMessages failed: %v", err)
	}
	if len(page1) != 2 {
		t.Fatalf("Expected 2 messages, got %d", len(page1))
	}
	if page1[0].ID != "msg-4" || page1[1].ID != "msg-3" {
		t.Errorf("Expected newest first, got %q then %q", page1[0].ID, page1[1].ID)
	}

	page2, err := store.ListMessages(ctx, "user-1", storage.ListOptions{Page: 2, Limit: 2})
	if err != nil {
		t.Fatalf("ListMessages page 2 failed: %v", err)
	}
	if len(page2) != 2 || page2[0].ID != "msg-2" {
		t.Errorf("Page 2 mismatch: %+v", page2)
	}

	count, err := store.CountMessages(ctx, "user-1")
	if err != nil {
		t.Fatalf("CountMessages failed: %v", err)
	}
	if count != 5 {
		t.Errorf("Count = %d, want 5", count)
	}
}

func TestMessages_Clear(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for _, userID := range []string{"user-1", "user-2"} {
		msg := &types.ChatMessage{
			ID:        userID + "-msg",
			UserID:    userID,
			Content:   "hello",
			IsUser:    true,
			CreatedAt: time.Now().UTC(),
		}
		if err := store.AppendMessage(ctx, msg); err != nil {
			t.Fatalf("AppendMessage failed: %v", err)
		}
	}

	if err := store.ClearMessages(ctx, "user-1"); err != nil {
		t.Fatalf("ClearMessages failed: %v", err)
	}

	count, err := store.CountMessages(ctx, "user-1")
	if err != nil {
		t.Fatalf("CountMessages failed: %v", err)
	}
	if count != 0 {
		t.Errorf("Count after clear = %d, want 0", count)
	}

	other, err := store.CountMessages(ctx, "user-2")
	if err != nil {
		t.Fatalf("CountMessages failed: %v", err)
	}
	if other != 1 {
		t.Errorf("Other user's count = %d, want 1", other)
	}
}

func TestMemories_RecallByRecency(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	base := time.Now().UTC().Truncate(time.Second)

	for i := 0; i < 4; i++ {
		entry := &types.MemoryEntry{
			ID:        fmt.Sprintf("mem-%d", i),
			UserID:    "user-1",
			Content:   fmt.Sprintf("remembered thing %d", i),
			Topic:     "things",
			Emotion:   types.EmotionJoy,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		if i == 0 {
			entry.Embedding = []float32{0.1, 0.2, 0.3}
		}
		if err := store.StoreMemory(ctx, entry); err != nil {
			t.Fatalf("StoreMemory failed: %v", err)
		}
	}

	recalled, err := store.RecallMemories(ctx, "user-1", "things", nil, 3)
	if err != nil {
		t.Fatalf("RecallMemories failed: %v", err)
	}
	if len(recalled) != 3 {
		t.Fatalf("Expected 3 memories, got %d", len(recalled))
	}
	if recalled[0].ID != "mem-3" {
		t.Errorf("Expected newest memory first, got %q", recalled[0].ID)
	}

	// Embeddings survive the round trip.
	all, err := store.RecallMemories(ctx, "user-1", "", nil, 10)
	if err != nil {
		t.Fatalf("RecallMemories failed: %v", err)
	}
	last := all[len(all)-1]
	if last.ID != "mem-0" || len(last.Embedding) != 3 {
		t.Errorf("Embedding lost: %+v", last)
	}
}

func TestSettings_Upsert(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if _, err := store.GetSetting(ctx, "", "companion_name"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}

	if err := store.SetSetting(ctx, "", "companion_name", "Maple"); err != nil {
		t.Fatalf("SetSetting failed: %v", err)
	}
	if err := store.SetSetting(ctx, "", "companion_name", "Willow"); err != nil {
		t.Fatalf("SetSetting update failed: %v", err)
	}

	value, err := store.GetSetting(ctx, "", "companion_name")
	if err != nil {
		t.Fatalf("GetSetting failed: %v", err)
	}
	if value != "Willow" {
		t.Errorf("Value = %q, want %q", value, "Willow")
	}

	// Scoped settings don't collide with global ones.
	if err := store.SetSetting(ctx, "user-1", "companion_name", "Fern"); err != nil {
		t.Fatalf("SetSetting scoped failed: %v", err)
	}
	value, err = store.GetSetting(ctx, "", "companion_name")
	if err != nil {
		t.Fatalf("GetSetting failed: %v", err)
	}
	if value != "Willow" {
		t.Errorf("Global value clobbered by scoped write: %q", value)
	}
}

func TestStats(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	seedUser(t, store, "user-1", "one@example.com")
	if err := store.SaveCompanionState(ctx, types.DefaultCompanionState("user-1", now)); err != nil {
		t.Fatalf("SaveCompanionState failed: %v", err)
	}
	if err := store.AppendMessage(ctx, &types.ChatMessage{ID: "m1", UserID: "user-1", Content: "hi", IsUser: true, CreatedAt: now}); err != nil {
		t.Fatalf("AppendMessage failed: %v", err)
	}

	stats, err := store.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats.Users != 1 || stats.Companions != 1 || stats.Messages != 1 || stats.Memories != 0 {
		t.Errorf("Stats = %+v", stats)
	}
}
