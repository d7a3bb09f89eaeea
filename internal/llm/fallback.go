package llm

import (
	"hash/fnv"
	"strings"
)

// fallbackPool holds the canned replies used when no provider is reachable.
// Selection hashes the user message so the same input always picks the same
// reply.
var fallbackPool = []string{
	"I'm here to listen and chat with you about anything on your mind.",
	"That's really interesting! I'd love to hear more about your thoughts on that.",
	"I appreciate you sharing that with me. How does that make you feel?",
	"You know, I've been thinking about our conversations lately, and I really enjoy getting to know you better.",
	"I'm having a small technical hiccup, but I'm still here for you! What would you like to talk about?",
}

var (
	fallbackSadWords   = []string{"sad", "upset", "down", "depressed"}
	fallbackHappyWords = []string{"happy", "excited", "great", "awesome"}
)

const (
	fallbackSadReply      = "I can hear that you're going through a tough time. I'm here to listen and support you however I can. 💙"
	fallbackHappyReply    = "I love hearing the joy in your message! It makes me happy too. Tell me more about what's making you feel so great! 😊"
	fallbackQuestionReply = "That's a great question! I'm processing a lot right now, but I'd love to explore that topic with you."
)

// FallbackReply returns a deterministic canned reply for the given user
// message: keyword overrides for sad, happy and question messages, otherwise
// a hash-selected entry from the pool.
func FallbackReply(message string) string {
	return FallbackReplyFromPool(message, fallbackPool)
}

// FallbackReplyFromPool is FallbackReply over a custom pool, used when a
// persona pack supplies its own canned replies. An empty pool falls back to
// the built-in one.
func FallbackReplyFromPool(message string, pool []string) string {
	if len(pool) == 0 {
		pool = fallbackPool
	}

	lower := strings.ToLower(message)
	for _, w := range fallbackSadWords {
		if strings.Contains(lower, w) {
			return fallbackSadReply
		}
	}
	for _, w := range fallbackHappyWords {
		if strings.Contains(lower, w) {
			return fallbackHappyReply
		}
	}
	if strings.Contains(message, "?") {
		return fallbackQuestionReply
	}

	h := fnv.New32a()
	h.Write([]byte(message))
	return pool[int(h.Sum32())%len(pool)]
}

// FallbackSuggestions are the canned conversation starters returned when
// suggestion generation is unavailable.
var FallbackSuggestions = []string{
	"What's been the highlight of your day so far?",
	"I've been thinking about our last conversation...",
	"Want to try something creative together?",
	"How are you feeling right now?",
	"Tell me something that made you smile recently",
}
