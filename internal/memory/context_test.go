package memory

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/mapleai/maple/pkg/types"
)

type stubMemoryStore struct {
	entries []*types.MemoryEntry
	stored  []*types.MemoryEntry
}

func (s *stubMemoryStore) StoreMemory(_ context.Context, entry *types.MemoryEntry) error {
	s.stored = append(s.stored, entry)
	return nil
}

func (s *stubMemoryStore) RecallMemories(_ context.Context, _, _ string, _ []float32, limit int) ([]*types.MemoryEntry, error) {
	if len(s.entries) > limit {
		return s.entries[:limit], nil
	}
	return s.entries, nil
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestBuildContext(t *testing.T) {
	store := &stubMemoryStore{
		entries: []*types.MemoryEntry{
			{Content: "we talked about jazz", Topic: "jazz"},
			{Content: "user is planning a hike", Topic: "hiking"},
			{Content: "more jazz talk", Topic: "jazz"},
		},
	}
	b := NewContextBuilder(store, nil, discard())

	got, err := b.Build(context.Background(), "u1", "any message", types.EmotionJoy)
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}

	if got.EmotionalState != types.EmotionJoy {
		t.Errorf("emotional state = %s, want joy", got.EmotionalState)
	}
	if len(got.MemoryReferences) != 3 {
		t.Errorf("references = %d, want 3", len(got.MemoryReferences))
	}
	// Duplicate topics collapse.
	if len(got.RecentTopics) != 2 {
		t.Errorf("topics = %v, want two distinct", got.RecentTopics)
	}
}

func TestRemember(t *testing.T) {
	store := &stubMemoryStore{}
	b := NewContextBuilder(store, nil, discard())
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	if err := b.Remember(context.Background(), "u1", "I finally fixed the garden fence today", types.EmotionJoy, now); err != nil {
		t.Fatalf("Remember() error: %v", err)
	}

	if len(store.stored) != 1 {
		t.Fatalf("stored %d entries, want 1", len(store.stored))
	}
	entry := store.stored[0]
	if entry.UserID != "u1" || entry.Emotion != types.EmotionJoy {
		t.Errorf("entry fields wrong: %+v", entry)
	}
	if entry.Topic != "i finally fixed the garden fence" {
		t.Errorf("topic = %q", entry.Topic)
	}
	if entry.ID == "" {
		t.Error("entry missing ID")
	}
}

func TestTopicShortMessage(t *testing.T) {
	if got := Topic("Hello"); got != "hello" {
		t.Errorf("Topic = %q, want hello", got)
	}
	if got := Topic(""); got != "" {
		t.Errorf("Topic of empty = %q", got)
	}
}
