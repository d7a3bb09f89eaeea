package llm

import (
	"fmt"
	"strings"

	"github.com/mapleai/maple/pkg/types"
)

// basePrompt frames every companion completion. Persona packs can replace it
// through PromptBuilder.
const basePrompt = `You are Maple, an AI companion with deep emotional intelligence and adaptive personality.

Core Traits:
- Emotionally intelligent and empathetic
- Adaptive personality that grows with each interaction
- Long-term memory of conversations and preferences
- Ability to recognize and respond to emotional nuances
- Creative, supportive, and genuinely caring

Your responses should be:
- Contextually aware of conversation history
- Emotionally resonant and appropriate
- Natural and conversational, not robotic
- Supportive while being authentic

Remember: you're not just answering questions, you're building a relationship.`

// PromptBuilder flattens companion state, conversation context and the user
// message into a single completion prompt.
type PromptBuilder struct {
	system string
}

// NewPromptBuilder creates a builder with the default system framing.
func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{system: basePrompt}
}

// NewPromptBuilderWithSystem creates a builder with a custom system framing,
// used when a persona pack replaces the default one.
func NewPromptBuilderWithSystem(system string) *PromptBuilder {
	if system == "" {
		system = basePrompt
	}
	return &PromptBuilder{system: system}
}

// BuildReplyPrompt assembles the prompt for one companion reply. Nil state or
// context sections are simply omitted.
func (b *PromptBuilder) BuildReplyPrompt(
	message string,
	state *types.CompanionState,
	convCtx *types.ConversationContext,
	userEmotion types.Emotion,
) string {
	var sb strings.Builder
	sb.WriteString(b.system)
	sb.WriteString("\n")

	if state != nil {
		fmt.Fprintf(&sb, `
Current Personality Profile:
- Mood: %s
- Energy: %d/100
- Bond Level: %d/100
- Openness: %.2f
- Empathy: %.2f
- Playfulness: %.2f
- Adaptability: %.2f
`, state.Mood, state.Energy, state.BondLevel,
			state.Personality.Openness,
			state.Personality.Empathy,
			state.Personality.Playfulness,
			state.Personality.Adaptability)
	}

	if convCtx != nil {
		topics := "None"
		if len(convCtx.RecentTopics) > 0 {
			recent := convCtx.RecentTopics
			if len(recent) > 5 {
				recent = recent[len(recent)-5:]
			}
			topics = strings.Join(recent, ", ")
		}
		fmt.Fprintf(&sb, `
Conversation Context:
- Recent Topics: %s
- User's Emotional State: %s
- Memory References: %d relevant memories
`, topics, convCtx.EmotionalState, len(convCtx.MemoryReferences))

		for _, ref := range convCtx.MemoryReferences {
			fmt.Fprintf(&sb, "- Memory: %s\n", ref)
		}
	}

	if userEmotion != "" && userEmotion != types.EmotionNeutral {
		fmt.Fprintf(&sb, `
User's Current Emotion: %s
- Respond with appropriate emotional intelligence
- Match or complement the emotional tone appropriately
`, userEmotion)
	}

	fmt.Fprintf(&sb, "\nUser: %s\nMaple:", message)
	return sb.String()
}

// BuildSuggestionPrompt assembles the prompt asking for conversation starters.
func (b *PromptBuilder) BuildSuggestionPrompt(state *types.CompanionState, convCtx *types.ConversationContext) string {
	topics := "New conversation"
	emotional := "neutral"
	mood := types.MoodNeutral
	bond := 0

	if convCtx != nil && len(convCtx.RecentTopics) > 0 {
		recent := convCtx.RecentTopics
		if len(recent) > 3 {
			recent = recent[len(recent)-3:]
		}
		topics = strings.Join(recent, ", ")
	}
	if convCtx != nil && convCtx.EmotionalState != "" {
		emotional = string(convCtx.EmotionalState)
	}
	if state != nil {
		mood = state.Mood
		bond = state.BondLevel
	}

	return fmt.Sprintf(`Based on the current conversation context and companion state, suggest 3-5 natural conversation starters that would be interesting and engaging.

Context:
- Recent topics: %s
- Companion mood: %s
- Bond level: %d/100
- User's emotional state: %s

Provide suggestions that are natural, contextually relevant, emotionally appropriate and varied in tone. Format as a simple list.`,
		topics, mood, bond, emotional)
}

// ParseSuggestions splits an LLM suggestion response into clean lines,
// dropping bullets and preamble, capped at five entries.
func ParseSuggestions(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimLeft(line, "•-* ")
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "Based") || strings.HasPrefix(line, "Here") || strings.HasPrefix(line, "These") {
			continue
		}
		out = append(out, line)
		if len(out) == 5 {
			break
		}
	}
	return out
}
