package main

import (
	"github.com/mapleai/maple/internal/emotion"
	"github.com/mapleai/maple/internal/llm"
	"github.com/mapleai/maple/internal/persona"
)

// emotionClassifier returns the active pack's classifier, or the defaults
// when no pack is loaded.
func emotionClassifier(m *persona.Manager) *emotion.Classifier {
	if pack := m.Active(); pack != nil {
		return pack.Classifier()
	}
	return emotion.NewClassifier()
}

// promptBuilder returns a builder using the active pack's system prompt.
func promptBuilder(m *persona.Manager) *llm.PromptBuilder {
	if pack := m.Active(); pack != nil && pack.SystemPrompt != "" {
		return llm.NewPromptBuilderWithSystem(pack.SystemPrompt)
	}
	return llm.NewPromptBuilder()
}

// fallbackPool returns the active pack's canned replies; nil keeps the
// built-in pool.
func fallbackPool(m *persona.Manager) []string {
	if pack := m.Active(); pack != nil && len(pack.FallbackReplies) > 0 {
		return pack.FallbackReplies
	}
	return nil
}
