package chat

import (
	"context"

	"github.com/mapleai/maple/internal/llm"
	"github.com/mapleai/maple/pkg/types"
)

// Suggestions generates conversation starters tailored to the user's
// companion state and recent topics. Any failure along the way degrades to
// the canned suggestion list; this endpoint never errors on provider trouble.
func (o *Orchestrator) Suggestions(ctx context.Context, userID string) []string {
	state, err := o.engine.State(ctx, userID)
	if err != nil {
		o.logger.Warn("loading state for suggestions failed", "user_id", userID, "error", err)
		return llm.FallbackSuggestions
	}

	convCtx, err := o.memories.Build(ctx, userID, "", types.EmotionNeutral)
	if err != nil {
		convCtx = nil
	}

	prompt := o.prompts.BuildSuggestionPrompt(state, convCtx)
	text, err := o.generator.Complete(ctx, prompt)
	if err != nil {
		o.logger.Warn("suggestion generation failed, using fallback",
			"model", o.generator.GetModel(), "error", err)
		return llm.FallbackSuggestions
	}

	suggestions := llm.ParseSuggestions(text)
	if len(suggestions) == 0 {
		return llm.FallbackSuggestions
	}
	return suggestions
}
