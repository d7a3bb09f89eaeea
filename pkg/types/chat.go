package types

import "time"

// ChatMessage is a persisted chat history entry. Both sides of a turn are
// stored: one row for the user message, one for the companion reply.
type ChatMessage struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Content   string    `json:"content"`
	IsUser    bool      `json:"is_user"`
	Emotion   Emotion   `json:"emotion,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ReplyEnvelope is the result of one chat turn: the generated reply plus the
// emotional metadata computed around it. It is always well-formed; provider
// failures degrade to a fallback reply rather than an error.
type ReplyEnvelope struct {
	Content     string             `json:"content"`
	Emotion     Emotion            `json:"emotion"`
	UserEmotion Emotion            `json:"user_emotion"`
	Resonance   float64            `json:"resonance"`
	Traits      map[string]float64 `json:"traits,omitempty"`
	Fallback    bool               `json:"fallback"`
	Mood        Mood               `json:"mood"`
	CreatedAt   time.Time          `json:"created_at"`
}

// ConversationContext is the ephemeral per-request view of a user's recent
// conversation. It is rebuilt from the memory store on every turn and is not
// persisted by the orchestrator itself.
type ConversationContext struct {
	// RecentTopics is ordered most-recent-last and bounded in length.
	RecentTopics []string `json:"recent_topics,omitempty"`

	// EmotionalState is the last known user emotion.
	EmotionalState Emotion `json:"emotional_state,omitempty"`

	// MemoryReferences holds short memory summaries relevant to the turn,
	// injected into the reply prompt.
	MemoryReferences []string `json:"memory_references,omitempty"`
}

// MemoryEntry is one stored conversation memory: a short summary of an
// interaction, optionally carrying an embedding for semantic recall.
type MemoryEntry struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Content   string    `json:"content"`
	Topic     string    `json:"topic,omitempty"`
	Emotion   Emotion   `json:"emotion,omitempty"`
	Embedding []float32 `json:"embedding,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
