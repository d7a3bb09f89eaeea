// Package memory builds per-turn conversation context from stored memory
// entries and writes new entries after each chat exchange.
package memory

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mapleai/maple/internal/llm"
	"github.com/mapleai/maple/internal/storage"
	"github.com/mapleai/maple/pkg/types"
)

// recallLimit caps how many memories feed one reply prompt.
const recallLimit = 5

// topicWordLimit caps how many leading words of a message become its topic.
const topicWordLimit = 6

// ContextBuilder assembles ConversationContext for the orchestrator and
// persists memory entries after each turn. The embedder is optional: without
// one, recall degrades to whatever ordering the store provides (recency for
// SQLite).
type ContextBuilder struct {
	store    storage.MemoryStore
	embedder llm.EmbeddingGenerator
	logger   *slog.Logger
}

// NewContextBuilder creates a builder. embedder may be nil.
func NewContextBuilder(store storage.MemoryStore, embedder llm.EmbeddingGenerator, logger *slog.Logger) *ContextBuilder {
	if logger == nil {
		logger = slog.Default()
	}
	return &ContextBuilder{store: store, embedder: embedder, logger: logger}
}

// Build assembles the context for one turn: recalled memories become topic
// history and prompt references. Embedding failures are logged and recall
// proceeds without a vector; a turn never fails because memory is degraded.
func (b *ContextBuilder) Build(ctx context.Context, userID, message string, lastEmotion types.Emotion) (*types.ConversationContext, error) {
	embedding := b.embed(ctx, message)

	entries, err := b.store.RecallMemories(ctx, userID, message, embedding, recallLimit)
	if err != nil {
		return nil, fmt.Errorf("recalling memories: %w", err)
	}

	convCtx := &types.ConversationContext{EmotionalState: lastEmotion}
	seen := make(map[string]bool)
	for _, entry := range entries {
		if entry.Topic != "" && !seen[entry.Topic] {
			seen[entry.Topic] = true
			// Most recent last, matching prompt expectations.
			convCtx.RecentTopics = append([]string{entry.Topic}, convCtx.RecentTopics...)
		}
		convCtx.MemoryReferences = append(convCtx.MemoryReferences, entry.Content)
	}

	return convCtx, nil
}

// Remember stores one turn as a memory entry: the user message summarized
// with the companion's read of it.
func (b *ContextBuilder) Remember(ctx context.Context, userID, message string, emotion types.Emotion, now time.Time) error {
	entry := &types.MemoryEntry{
		ID:        uuid.NewString(),
		UserID:    userID,
		Content:   message,
		Topic:     Topic(message),
		Emotion:   emotion,
		Embedding: b.embed(ctx, message),
		CreatedAt: now,
	}

	if err := b.store.StoreMemory(ctx, entry); err != nil {
		return fmt.Errorf("storing memory: %w", err)
	}
	return nil
}

func (b *ContextBuilder) embed(ctx context.Context, text string) []float32 {
	if b.embedder == nil {
		return nil
	}
	vec, err := b.embedder.Embed(ctx, text)
	if err != nil {
		b.logger.Warn("embedding failed, recalling without vector", "error", err)
		return nil
	}
	return vec
}

// Topic derives a short topic tag from a message: its leading words,
// lowercased, capped at six.
func Topic(message string) string {
	words := strings.Fields(strings.ToLower(message))
	if len(words) > topicWordLimit {
		words = words[:topicWordLimit]
	}
	return strings.Join(words, " ")
}
