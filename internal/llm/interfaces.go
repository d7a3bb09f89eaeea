// Package llm provides the text-generation providers used for companion
// replies, behind a small completion interface so the orchestrator never
// cares which vendor is wired in. All providers wrap their HTTP calls in a
// circuit breaker.
package llm

import "context"

// TextGenerator is the interface for LLM text completion.
// Companion prompts use single-string completion style (not chat turns);
// the prompt builder flattens state, context and history into one string.
type TextGenerator interface {
	Complete(ctx context.Context, prompt string) (string, error)
	GetModel() string
}

// EmbeddingGenerator is the interface for generating vector embeddings,
// used by the Postgres memory store for similarity recall.
// Returns float32 slices matching pgvector's element type.
type EmbeddingGenerator interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	GetModel() string
}
