// Package chat orchestrates one conversation turn: emotion classification,
// companion state update, reply generation, and the emotional scoring of the
// result. Provider failures degrade to canned replies; a turn that reached
// the state engine always produces a well-formed envelope.
package chat

import (
	"context"
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/mapleai/maple/internal/companion"
	"github.com/mapleai/maple/internal/emotion"
	"github.com/mapleai/maple/internal/llm"
	"github.com/mapleai/maple/internal/memory"
	"github.com/mapleai/maple/internal/storage"
	"github.com/mapleai/maple/pkg/types"
)

// guestMessageLimit caps unauthenticated chat input length, in runes.
const guestMessageLimit = 100

// Orchestrator wires the collaborators for a chat turn. The companion engine
// serializes state mutations per user internally; the LLM call happens after
// the engine releases its lock, so a slow provider never blocks other state
// updates for the same user.
type Orchestrator struct {
	classifier *emotion.Classifier
	engine     *companion.Engine
	generator  llm.TextGenerator
	prompts    *llm.PromptBuilder
	memories   *memory.ContextBuilder
	messages   storage.MessageStore
	pool       []string
	logger     *slog.Logger

	// now is swappable in tests.
	now func() time.Time
}

// Config collects the orchestrator's collaborators.
type Config struct {
	Classifier *emotion.Classifier
	Engine     *companion.Engine
	Generator  llm.TextGenerator
	Prompts    *llm.PromptBuilder
	Memories   *memory.ContextBuilder
	Messages   storage.MessageStore
	Logger     *slog.Logger

	// FallbackPool overrides the built-in canned replies when set.
	FallbackPool []string
}

// NewOrchestrator creates a chat orchestrator.
func NewOrchestrator(cfg Config) *Orchestrator {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Orchestrator{
		classifier: cfg.Classifier,
		engine:     cfg.Engine,
		generator:  cfg.Generator,
		prompts:    cfg.Prompts,
		memories:   cfg.Memories,
		messages:   cfg.Messages,
		pool:       cfg.FallbackPool,
		logger:     cfg.Logger,
		now:        time.Now,
	}
}

// Process runs one authenticated chat turn and returns the reply envelope.
// It errors only on storage or state-engine failure; generation problems are
// absorbed into a fallback reply.
func (o *Orchestrator) Process(ctx context.Context, userID, message string) (*types.ReplyEnvelope, error) {
	userEmotion, _ := o.classifier.Classify(message)

	convCtx, err := o.memories.Build(ctx, userID, message, userEmotion)
	if err != nil {
		o.logger.Warn("memory recall failed, continuing without context",
			"user_id", userID, "error", err)
		convCtx = &types.ConversationContext{EmotionalState: userEmotion}
	}

	// State update first, under the engine's per-user lock. If generation
	// fails afterwards, the interaction still counts.
	state, err := o.engine.RecordChat(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("recording chat interaction: %w", err)
	}

	envelope := o.generate(ctx, message, state, convCtx, userEmotion)
	envelope.Mood = state.Mood

	now := o.now().UTC()
	if err := o.persistTurn(ctx, userID, message, userEmotion, envelope, now); err != nil {
		return nil, err
	}

	if err := o.memories.Remember(ctx, userID, message, userEmotion, now); err != nil {
		o.logger.Warn("storing conversation memory failed", "user_id", userID, "error", err)
	}

	return envelope, nil
}

// ProcessGuest runs an unauthenticated turn: no state, no persistence, input
// capped at 100 characters.
func (o *Orchestrator) ProcessGuest(ctx context.Context, message string) (*types.ReplyEnvelope, error) {
	message = truncateRunes(message, guestMessageLimit)

	userEmotion, _ := o.classifier.Classify(message)
	envelope := o.generate(ctx, message, nil, nil, userEmotion)
	envelope.Mood = types.MoodHappy
	return envelope, nil
}

// History returns the user's stored messages, newest first.
func (o *Orchestrator) History(ctx context.Context, userID string, opts storage.ListOptions) ([]*types.ChatMessage, error) {
	return o.messages.ListMessages(ctx, userID, opts)
}

// ClearHistory deletes the user's entire chat history.
func (o *Orchestrator) ClearHistory(ctx context.Context, userID string) error {
	return o.messages.ClearMessages(ctx, userID)
}

// generate produces a reply and scores it. Provider failures are logged and
// replaced with a deterministic canned reply.
func (o *Orchestrator) generate(
	ctx context.Context,
	message string,
	state *types.CompanionState,
	convCtx *types.ConversationContext,
	userEmotion types.Emotion,
) *types.ReplyEnvelope {
	fallback := false
	prompt := o.prompts.BuildReplyPrompt(message, state, convCtx, userEmotion)

	content, err := o.generator.Complete(ctx, prompt)
	if err != nil || content == "" {
		if err != nil {
			o.logger.Warn("reply generation failed, using fallback",
				"model", o.generator.GetModel(), "error", err)
		}
		content = llm.FallbackReplyFromPool(message, o.pool)
		fallback = true
	}

	replyEmotion, _ := o.classifier.Classify(content)

	return &types.ReplyEnvelope{
		Content:     content,
		Emotion:     replyEmotion,
		UserEmotion: userEmotion,
		Resonance:   emotion.Resonance(userEmotion, replyEmotion),
		Traits:      emotion.TraitAlignment(content),
		Fallback:    fallback,
		CreatedAt:   o.now().UTC(),
	}
}

// persistTurn stores both sides of the exchange.
func (o *Orchestrator) persistTurn(
	ctx context.Context,
	userID, message string,
	userEmotion types.Emotion,
	envelope *types.ReplyEnvelope,
	now time.Time,
) error {
	userMsg := &types.ChatMessage{
		ID:        uuid.NewString(),
		UserID:    userID,
		Content:   message,
		IsUser:    true,
		Emotion:   userEmotion,
		CreatedAt: now,
	}
	if err := o.messages.AppendMessage(ctx, userMsg); err != nil {
		return fmt.Errorf("storing user message: %w", err)
	}

	reply := &types.ChatMessage{
		ID:        uuid.NewString(),
		UserID:    userID,
		Content:   envelope.Content,
		IsUser:    false,
		Emotion:   envelope.Emotion,
		CreatedAt: now,
	}
	if err := o.messages.AppendMessage(ctx, reply); err != nil {
		return fmt.Errorf("storing companion reply: %w", err)
	}

	return nil
}

// truncateRunes cuts s to at most limit runes without splitting a multi-byte
// sequence.
func truncateRunes(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	n := 0
	for i := range s {
		if n == limit {
			return s[:i]
		}
		n++
	}
	return s
}
