package ai

import (
	"context"

	"github.com/poiesic/askit/core"
)

// Embedder generates vector embeddings from text for semantic similarity search.
// Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	// The returned vector represents the semantic meaning of the text.
	// Returns an error if the embedding generation fails.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in a batch.
	// Batch processing is more efficient than calling EmbedText multiple times.
	// The returned slice contains embeddings in the same order as the input texts.
	// Returns an error if any embedding generation fails.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// AnswerRequest carries everything the generation call needs: the raw query,
// the ranked retrieval context, and prior conversation turns.
type AnswerRequest struct {
	Query   string
	Context []*core.ScoredResult
	History []string
}

// AnswerEventKind distinguishes the events an answer stream can yield.
type AnswerEventKind int

const (
	// AnswerPartial carries an incremental chunk of answer text.
	AnswerPartial AnswerEventKind = iota + 1
	// AnswerComplete is the terminal success event carrying the full answer.
	AnswerComplete
	// AnswerFailed is the terminal failure event.
	AnswerFailed
)

// AnswerEvent is one event on an answer stream. Exactly one terminal event
// (AnswerComplete or AnswerFailed) is sent, after which the channel is closed.
type AnswerEvent struct {
	Kind   AnswerEventKind
	Chunk  string       // set for AnswerPartial
	Answer *core.Answer // set for AnswerComplete
	Err    error        // set for AnswerFailed
}

// Generator produces natural-language answers from a query and retrieval
// context. Implementations must be thread-safe for concurrent use.
type Generator interface {
	// GenerateAnswer produces a complete answer in one call.
	GenerateAnswer(ctx context.Context, req *AnswerRequest) (*core.Answer, error)

	// StreamAnswer produces an answer incrementally. The returned channel
	// yields AnswerPartial events followed by exactly one terminal event,
	// then closes. Canceling ctx aborts the stream; the terminal event is
	// AnswerFailed with the context error.
	StreamAnswer(ctx context.Context, req *AnswerRequest) (<-chan AnswerEvent, error)
}

// AIProvider aggregates AI services for convenient initialization and lifecycle management.
// A provider creates and manages Embedder and Generator instances,
// ensuring they share configuration and resources appropriately.
type AIProvider interface {
	// Embedder returns the text embedding service.
	// The returned Embedder is safe for concurrent use.
	Embedder() Embedder

	// Generator returns the answer generation service.
	// The returned Generator is safe for concurrent use.
	Generator() Generator

	// Close releases resources held by the provider and its services.
	// After Close is called, the provider and its services should not be used.
	Close() error
}
