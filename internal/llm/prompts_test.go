package llm

import (
	"strings"
	"testing"
	"time"

	"github.com/mapleai/maple/pkg/types"
)

func TestBuildReplyPromptSections(t *testing.T) {
	b := NewPromptBuilder()
	state := types.DefaultCompanionState("u1", time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC))
	state.Mood = types.MoodPlayful
	state.Energy = 42

	convCtx := &types.ConversationContext{
		RecentTopics:     []string{"hiking", "music", "cooking"},
		EmotionalState:   types.EmotionJoy,
		MemoryReferences: []string{"user loves jazz"},
	}

	prompt := b.BuildReplyPrompt("shall we cook tonight?", state, convCtx, types.EmotionJoy)

	for _, want := range []string{
		"Mood: playful",
		"Energy: 42/100",
		"hiking, music, cooking",
		"user loves jazz",
		"User's Current Emotion: joy",
		"User: shall we cook tonight?",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestBuildReplyPromptOmitsNilSections(t *testing.T) {
	b := NewPromptBuilder()

	prompt := b.BuildReplyPrompt("hello", nil, nil, types.EmotionNeutral)

	if strings.Contains(prompt, "Personality Profile") {
		t.Error("state section present without state")
	}
	if strings.Contains(prompt, "Conversation Context") {
		t.Error("context section present without context")
	}
	if strings.Contains(prompt, "Current Emotion") {
		t.Error("neutral emotion should not emit an emotion section")
	}
	if !strings.Contains(prompt, "User: hello") {
		t.Error("user message missing")
	}
}

func TestBuildReplyPromptCapsTopics(t *testing.T) {
	b := NewPromptBuilder()
	convCtx := &types.ConversationContext{
		RecentTopics: []string{"a", "b", "c", "d", "e", "f", "g"},
	}

	prompt := b.BuildReplyPrompt("hi", nil, convCtx, "")

	if strings.Contains(prompt, "a, b, c, d, e, f, g") {
		t.Error("topics not capped to the most recent five")
	}
	if !strings.Contains(prompt, "c, d, e, f, g") {
		t.Error("most recent five topics missing")
	}
}

func TestBuildSuggestionPromptDefaults(t *testing.T) {
	b := NewPromptBuilder()

	prompt := b.BuildSuggestionPrompt(nil, nil)
	if !strings.Contains(prompt, "New conversation") {
		t.Error("missing default topics placeholder")
	}
	if !strings.Contains(prompt, "Bond level: 0/100") {
		t.Error("missing default bond level")
	}
}

func TestCustomSystemPrompt(t *testing.T) {
	b := NewPromptBuilderWithSystem("You are Birch, a stoic forest spirit.")

	prompt := b.BuildReplyPrompt("hi", nil, nil, "")
	if !strings.Contains(prompt, "Birch") {
		t.Error("custom system framing not used")
	}
	if strings.Contains(prompt, "You are Maple") {
		t.Error("default framing leaked into custom builder")
	}
}
