package chat

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/mapleai/maple/internal/companion"
	"github.com/mapleai/maple/internal/emotion"
	"github.com/mapleai/maple/internal/llm"
	"github.com/mapleai/maple/internal/memory"
	"github.com/mapleai/maple/internal/storage"
	"github.com/mapleai/maple/pkg/types"
)

// stubGenerator returns a fixed reply or error.
type stubGenerator struct {
	reply string
	err   error
	calls int
}

func (s *stubGenerator) Complete(_ context.Context, _ string) (string, error) {
	s.calls++
	return s.reply, s.err
}

func (s *stubGenerator) GetModel() string { return "stub" }

// stubStore backs companion state, messages and memories in memory.
type stubStore struct {
	states   map[string]*types.CompanionState
	messages []*types.ChatMessage
	memories []*types.MemoryEntry
}

func newStubStore() *stubStore {
	return &stubStore{states: make(map[string]*types.CompanionState)}
}

func (s *stubStore) GetCompanionState(_ context.Context, userID string) (*types.CompanionState, error) {
	st, ok := s.states[userID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	cp := *st
	return &cp, nil
}

func (s *stubStore) SaveCompanionState(_ context.Context, state *types.CompanionState) error {
	cp := *state
	s.states[state.UserID] = &cp
	return nil
}

func (s *stubStore) AppendMessage(_ context.Context, msg *types.ChatMessage) error {
	s.messages = append(s.messages, msg)
	return nil
}

func (s *stubStore) ListMessages(_ context.Context, userID string, _ storage.ListOptions) ([]*types.ChatMessage, error) {
	var out []*types.ChatMessage
	for i := len(s.messages) - 1; i >= 0; i-- {
		if s.messages[i].UserID == userID {
			out = append(out, s.messages[i])
		}
	}
	return out, nil
}

func (s *stubStore) ClearMessages(_ context.Context, userID string) error {
	var kept []*types.ChatMessage
	for _, m := range s.messages {
		if m.UserID != userID {
			kept = append(kept, m)
		}
	}
	s.messages = kept
	return nil
}

func (s *stubStore) CountMessages(_ context.Context, userID string) (int, error) {
	n := 0
	for _, m := range s.messages {
		if m.UserID == userID {
			n++
		}
	}
	return n, nil
}

func (s *stubStore) StoreMemory(_ context.Context, entry *types.MemoryEntry) error {
	s.memories = append(s.memories, entry)
	return nil
}

func (s *stubStore) RecallMemories(_ context.Context, _, _ string, _ []float32, limit int) ([]*types.MemoryEntry, error) {
	if len(s.memories) > limit {
		return s.memories[:limit], nil
	}
	return s.memories, nil
}

func newTestOrchestrator(store *stubStore, gen llm.TextGenerator) *Orchestrator {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	o := NewOrchestrator(Config{
		Classifier: emotion.NewClassifier(),
		Engine:     companion.NewEngine(store, logger),
		Generator:  gen,
		Prompts:    llm.NewPromptBuilder(),
		Memories:   memory.NewContextBuilder(store, nil, logger),
		Messages:   store,
		Logger:     logger,
	})
	o.now = func() time.Time { return time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC) }
	return o
}

func TestProcessHappyPath(t *testing.T) {
	store := newStubStore()
	gen := &stubGenerator{reply: "I understand how you feel, that sounds wonderful!"}
	o := newTestOrchestrator(store, gen)

	envelope, err := o.Process(context.Background(), "u1", "I am so happy and excited today")
	if err != nil {
		t.Fatalf("Process() error: %v", err)
	}

	if envelope.UserEmotion != types.EmotionJoy {
		t.Errorf("user emotion = %s, want joy", envelope.UserEmotion)
	}
	if envelope.Fallback {
		t.Error("fallback flagged on a successful generation")
	}
	if envelope.Content != gen.reply {
		t.Errorf("content = %q", envelope.Content)
	}
	if envelope.Resonance <= 0 || envelope.Resonance > 1 {
		t.Errorf("resonance = %f out of range", envelope.Resonance)
	}
	if envelope.Mood == "" {
		t.Error("envelope missing mood")
	}

	// Both sides of the turn persisted, state updated, memory written.
	if len(store.messages) != 2 {
		t.Errorf("stored %d messages, want 2", len(store.messages))
	}
	if !store.messages[0].IsUser || store.messages[1].IsUser {
		t.Error("message order wrong: user first, reply second")
	}
	state := store.states["u1"]
	if state == nil || state.TotalInteractions != 1 {
		t.Errorf("companion state not updated: %+v", state)
	}
	if len(store.memories) != 1 {
		t.Errorf("stored %d memories, want 1", len(store.memories))
	}
}

func TestProcessProviderFailure(t *testing.T) {
	store := newStubStore()
	gen := &stubGenerator{err: errors.New("connection refused")}
	o := newTestOrchestrator(store, gen)

	envelope, err := o.Process(context.Background(), "u1", "tell me about your day")
	if err != nil {
		t.Fatalf("Process() must not fail on provider error: %v", err)
	}

	if !envelope.Fallback {
		t.Error("fallback not flagged")
	}
	if envelope.Content == "" {
		t.Error("fallback envelope missing content")
	}
	if envelope.Resonance < 0 || envelope.Resonance > 1 {
		t.Errorf("resonance = %f out of range", envelope.Resonance)
	}

	// The interaction still counted against state.
	if store.states["u1"].TotalInteractions != 1 {
		t.Error("state not updated on fallback turn")
	}
}

func TestProcessGuestCapsAndSkipsPersistence(t *testing.T) {
	store := newStubStore()
	gen := &stubGenerator{reply: "nice to meet you!"}
	o := newTestOrchestrator(store, gen)

	long := make([]byte, 300)
	for i := range long {
		long[i] = 'a'
	}

	envelope, err := o.ProcessGuest(context.Background(), string(long))
	if err != nil {
		t.Fatalf("ProcessGuest() error: %v", err)
	}
	if envelope.Content != "nice to meet you!" {
		t.Errorf("content = %q", envelope.Content)
	}
	if len(store.messages) != 0 || len(store.states) != 0 || len(store.memories) != 0 {
		t.Error("guest turn must not persist anything")
	}
}

func TestTruncateRunes(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		limit int
		want  string
	}{
		{"shorter than limit", "hello", 10, "hello"},
		{"exactly at limit", "hello", 5, "hello"},
		{"ascii cut", "hello", 3, "hel"},
		{"multi-byte preserved", "héllo wörld", 8, "héllo wö"},
		{"emoji boundary", "hi 😊😊😊", 4, "hi 😊"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := truncateRunes(tt.in, tt.limit)
			if got != tt.want {
				t.Errorf("truncateRunes(%q, %d) = %q, want %q", tt.in, tt.limit, got, tt.want)
			}
			if !utf8.ValidString(got) {
				t.Errorf("truncated string is not valid UTF-8: %q", got)
			}
		})
	}
}

func TestProcessGuestMultiByteCap(t *testing.T) {
	store := newStubStore()
	gen := &stubGenerator{reply: "nice to meet you!"}
	o := newTestOrchestrator(store, gen)

	// 300 runes of a two-byte character; the cap must land on a rune
	// boundary so the classifier never sees a broken sequence.
	long := strings.Repeat("é", 300)

	envelope, err := o.ProcessGuest(context.Background(), long)
	if err != nil {
		t.Fatalf("ProcessGuest() error: %v", err)
	}
	if envelope.Content != "nice to meet you!" {
		t.Errorf("content = %q", envelope.Content)
	}
}

func TestSuggestionsFallback(t *testing.T) {
	store := newStubStore()
	gen := &stubGenerator{err: errors.New("boom")}
	o := newTestOrchestrator(store, gen)

	got := o.Suggestions(context.Background(), "u1")
	if len(got) == 0 {
		t.Fatal("no suggestions returned")
	}
	if got[0] != llm.FallbackSuggestions[0] {
		t.Errorf("expected canned suggestions, got %v", got)
	}
}

func TestSuggestionsParsed(t *testing.T) {
	store := newStubStore()
	gen := &stubGenerator{reply: "• Ask about the garden\n• Plan a trip together"}
	o := newTestOrchestrator(store, gen)

	got := o.Suggestions(context.Background(), "u1")
	if len(got) != 2 || got[0] != "Ask about the garden" {
		t.Errorf("suggestions = %v", got)
	}
}

func TestHistoryNewestFirst(t *testing.T) {
	store := newStubStore()
	gen := &stubGenerator{reply: "hello there"}
	o := newTestOrchestrator(store, gen)

	if _, err := o.Process(context.Background(), "u1", "first message"); err != nil {
		t.Fatal(err)
	}
	if _, err := o.Process(context.Background(), "u1", "second message"); err != nil {
		t.Fatal(err)
	}

	history, err := o.History(context.Background(), "u1", storage.ListOptions{})
	if err != nil {
		t.Fatalf("History() error: %v", err)
	}
	if len(history) != 4 {
		t.Fatalf("history length = %d, want 4", len(history))
	}
	if history[len(history)-1].Content != "first message" {
		t.Error("oldest message not last")
	}
}
