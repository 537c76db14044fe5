package cache

import "github.com/poiesic/askit/core"

const (
	// DefaultEmbeddingCapacity bounds the embedding cache. Embeddings are the
	// most expensive computation in the system, and queries repeat often.
	DefaultEmbeddingCapacity = 256

	// DefaultResultCapacity bounds the ranked-result cache.
	DefaultResultCapacity = 64
)

// Layer bundles the two independent retrieval caches: one for embeddings
// keyed by normalized text, one for final ranked result sets keyed by
// (query, options). A Layer is constructed explicitly and injected into the
// retrieval service so tests can supply isolated, deterministic instances.
//
// Entries carry no TTL; staleness is bounded by process lifetime and capacity
// pressure. Clear accompanies corpus edits.
type Layer struct {
	embeddings *LRU[string, []float32]
	results    *LRU[string, []*core.ScoredResult]
}

// Option configures a Layer.
type Option func(*layerOptions)

type layerOptions struct {
	embeddingCapacity int
	resultCapacity    int
}

// WithEmbeddingCapacity overrides the embedding cache capacity.
func WithEmbeddingCapacity(capacity int) Option {
	return func(o *layerOptions) {
		o.embeddingCapacity = capacity
	}
}

// WithResultCapacity overrides the result cache capacity.
func WithResultCapacity(capacity int) Option {
	return func(o *layerOptions) {
		o.resultCapacity = capacity
	}
}

// NewLayer creates a cache layer with the default capacities.
func NewLayer(opts ...Option) *Layer {
	options := &layerOptions{
		embeddingCapacity: DefaultEmbeddingCapacity,
		resultCapacity:    DefaultResultCapacity,
	}
	for _, opt := range opts {
		opt(options)
	}

	return &Layer{
		embeddings: NewLRU[string, []float32](options.embeddingCapacity),
		results:    NewLRU[string, []*core.ScoredResult](options.resultCapacity),
	}
}

// GetEmbedding returns the cached embedding for text, if present.
func (l *Layer) GetEmbedding(text string) ([]float32, bool) {
	return l.embeddings.Get(EmbeddingKey(text))
}

// SetEmbedding caches the embedding for text.
func (l *Layer) SetEmbedding(text string, embedding []float32) {
	l.embeddings.Set(EmbeddingKey(text), embedding)
}

// GetResults returns the cached ranked results for a result key, if present.
func (l *Layer) GetResults(key string) ([]*core.ScoredResult, bool) {
	return l.results.Get(key)
}

// SetResults caches the ranked results for a result key.
func (l *Layer) SetResults(key string, results []*core.ScoredResult) {
	l.results.Set(key, results)
}

// Clear empties both caches. Call after corpus edits.
func (l *Layer) Clear() {
	l.embeddings.Clear()
	l.results.Clear()
}
