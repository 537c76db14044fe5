package retrieval

import (
	"context"
	"log/slog"
	"math"
	"sync"

	"github.com/poiesic/askit/ai"
	"github.com/poiesic/askit/cache"
)

// DefaultFallbackDimension sizes fallback vectors when the corpus dimension
// is unknown (e.g. an empty corpus).
const DefaultFallbackDimension = 384

// EmbeddingProvider turns text into a fixed-length vector and never fails:
// remote embedding errors are logged and silently substituted with a
// deterministic local approximation. The degraded path is invisible to
// callers, so downstream code must not special-case it.
type EmbeddingProvider struct {
	embedder ai.Embedder
	caches   *cache.Layer
	logger   *slog.Logger

	mu          sync.Mutex
	dimension   int
	dimensionFn func(ctx context.Context) (int, error)
}

// ProviderOption configures an EmbeddingProvider.
type ProviderOption func(*EmbeddingProvider)

// WithProviderLogger sets a custom logger.
// Default is slog.Default().
func WithProviderLogger(logger *slog.Logger) ProviderOption {
	return func(p *EmbeddingProvider) {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
	}
}

// WithFallbackDimension sets the dimensionality of fallback vectors.
// It should match the corpus's fixed embedding dimension so degraded-mode
// vectors remain comparable against stored embeddings.
func WithFallbackDimension(dimension int) ProviderOption {
	return func(p *EmbeddingProvider) {
		if dimension > 0 {
			p.dimension = dimension
		}
	}
}

// WithFallbackDimensionSource sets a lookup for the corpus's fixed embedding
// dimension, consulted lazily the first time a fallback vector is needed.
// KnowledgeRepository.Dimension fits here directly. A source that reports 0
// (empty corpus) is retried on the next fallback; an explicit
// WithFallbackDimension takes precedence.
func WithFallbackDimensionSource(fn func(ctx context.Context) (int, error)) ProviderOption {
	return func(p *EmbeddingProvider) {
		p.dimensionFn = fn
	}
}

// NewEmbeddingProvider creates an embedding provider.
// The cache layer may be nil, in which case no caching happens.
func NewEmbeddingProvider(embedder ai.Embedder, caches *cache.Layer, opts ...ProviderOption) (*EmbeddingProvider, error) {
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	p := &EmbeddingProvider{
		embedder: embedder,
		caches:   caches,
		logger:   slog.Default().With("component", "embedding-provider"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Embed returns a vector for the text. Cached embeddings are returned
// directly; otherwise the remote embedder is consulted, and on failure the
// deterministic fallback vector is substituted. Only genuine remote vectors
// populate the cache, so a later successful call upgrades a degraded query.
func (p *EmbeddingProvider) Embed(ctx context.Context, text string) []float32 {
	if p.caches != nil {
		if vec, ok := p.caches.GetEmbedding(text); ok {
			return vec
		}
	}

	vec, err := p.embedder.EmbedText(ctx, text)
	if err != nil || len(vec) == 0 {
		p.logger.Warn("remote embedding failed, using deterministic fallback", "err", err)
		return FallbackVector(text, p.fallbackDimension(ctx))
	}

	if p.caches != nil {
		p.caches.SetEmbedding(text, vec)
	}
	return vec
}

// fallbackDimension resolves the dimensionality for fallback vectors. A
// value fixed via option wins; otherwise the dimension source is consulted
// and its first non-zero answer is remembered, so the lookup runs at most
// once against a populated corpus.
func (p *EmbeddingProvider) fallbackDimension(ctx context.Context) int {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.dimension > 0 {
		return p.dimension
	}
	if p.dimensionFn != nil {
		dim, err := p.dimensionFn(ctx)
		if err != nil {
			p.logger.Warn("corpus dimension lookup failed", "err", err)
		} else if dim > 0 {
			p.dimension = dim
			return dim
		}
	}
	return DefaultFallbackDimension
}

// FallbackVector derives a deterministic vector from the text's character
// codes plus a low-amplitude positional perturbation. The same text always
// produces the same vector, so caching and repeated queries stay coherent
// even in degraded mode.
func FallbackVector(text string, dimension int) []float32 {
	if dimension <= 0 {
		dimension = DefaultFallbackDimension
	}

	vec := make([]float32, dimension)
	if len(text) == 0 {
		return vec
	}

	runes := []rune(text)
	for i := 0; i < dimension; i++ {
		r := runes[i%len(runes)]
		base := float64(r%97) / 97.0
		perturbation := 0.01 * math.Sin(float64(i)*0.7)
		vec[i] = float32(base + perturbation)
	}

	return NormalizeVector(vec)
}
