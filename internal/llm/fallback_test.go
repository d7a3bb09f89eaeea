package llm

import (
	"strings"
	"testing"
)

func TestFallbackReplyDeterministic(t *testing.T) {
	first := FallbackReply("tell me about the weather on mars")
	for i := 0; i < 5; i++ {
		if got := FallbackReply("tell me about the weather on mars"); got != first {
			t.Fatalf("fallback reply not deterministic: %q vs %q", first, got)
		}
	}

	found := false
	for _, p := range fallbackPool {
		if p == first {
			found = true
		}
	}
	if !found {
		t.Errorf("reply %q not from the pool", first)
	}
}

func TestFallbackReplyOverrides(t *testing.T) {
	tests := []struct {
		name    string
		message string
		want    string
	}{
		{"sad keyword", "I feel so down today", fallbackSadReply},
		{"happy keyword", "today was awesome", fallbackHappyReply},
		{"question", "what do you think of this?", fallbackQuestionReply},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FallbackReply(tt.message); got != tt.want {
				t.Errorf("FallbackReply(%q) = %q, want %q", tt.message, got, tt.want)
			}
		})
	}
}

func TestFallbackReplySadBeatsQuestion(t *testing.T) {
	// Keyword overrides are checked before the question mark.
	if got := FallbackReply("why am I so sad?"); got != fallbackSadReply {
		t.Errorf("expected sad override, got %q", got)
	}
}

func TestFallbackReplyFromPoolCustom(t *testing.T) {
	pool := []string{"only one"}
	if got := FallbackReplyFromPool("anything at all", pool); got != "only one" {
		t.Errorf("custom pool ignored, got %q", got)
	}
	if got := FallbackReplyFromPool("anything at all", nil); got == "" {
		t.Error("empty pool should fall back to the built-in pool")
	}
}

func TestParseSuggestions(t *testing.T) {
	text := `Based on the context, here are some ideas:
• What's been the highlight of your day?
- Want to try something creative?

* How are you feeling right now?
Tell me a story
Another one
One too many`

	got := ParseSuggestions(text)
	if len(got) != 5 {
		t.Fatalf("got %d suggestions, want 5", len(got))
	}
	if got[0] != "What's been the highlight of your day?" {
		t.Errorf("bullet not stripped: %q", got[0])
	}
	for _, s := range got {
		if strings.HasPrefix(s, "Based") {
			t.Errorf("preamble not dropped: %q", s)
		}
	}
}
