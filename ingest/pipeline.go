package ingest

import (
	"context"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/askit/ai"
	"github.com/poiesic/askit/core"
	"github.com/poiesic/askit/retrieval"
	"github.com/poiesic/askit/storage"
)

// Embedding retry defaults.
const (
	DefaultMaxAttempts = 3
	DefaultBaseDelay   = 500 * time.Millisecond
)

// Pipeline orchestrates ingestion of knowledge entries. Entries are stored
// immediately; embedding generation runs asynchronously on a worker pool so
// a slow embedding endpoint never blocks the write path.
type Pipeline struct {
	repo        storage.KnowledgeRepository
	embedder    ai.Embedder
	pool        *ants.Pool
	maxAttempts int
	baseDelay   time.Duration
	pending     sync.WaitGroup
	logger      *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the worker pool size for concurrent processing.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}

		if p.pool != nil {
			p.pool.Release()
		}

		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		p.pool = pool
		return nil
	}
}

// WithRetry configures the embedding retry policy.
func WithRetry(maxAttempts int, baseDelay time.Duration) Option {
	return func(p *Pipeline) error {
		if maxAttempts <= 0 {
			return ErrInvalidMaxAttempts
		}
		p.maxAttempts = maxAttempts
		p.baseDelay = baseDelay
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// NewPipeline creates a new ingestion pipeline.
func NewPipeline(
	repo storage.KnowledgeRepository,
	embedder ai.Embedder,
	opts ...Option,
) (*Pipeline, error) {
	if repo == nil {
		return nil, ErrKnowledgeRepositoryRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}

	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		repo:        repo,
		embedder:    embedder,
		pool:        pool,
		maxAttempts: DefaultMaxAttempts,
		baseDelay:   DefaultBaseDelay,
		logger:      slog.Default(),
	}

	// Apply options (may override defaults)
	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}

	return p, nil
}

// Ingest validates and stores entries, then generates embeddings for them
// asynchronously. Entries already carrying an embedding are stored as-is.
// Errors during async embedding are logged but do not fail the ingestion.
func (p *Pipeline) Ingest(ctx context.Context, entries ...*core.KnowledgeEntry) ([]*core.KnowledgeEntry, error) {
	for _, entry := range entries {
		if err := core.ValidateEntry(entry); err != nil {
			return nil, err
		}
	}

	added, err := p.repo.AddEntries(ctx, entries...)
	if err != nil {
		return nil, err
	}

	// Collect entries still missing an embedding
	ids := make([]core.ID, 0, len(added))
	for _, entry := range added {
		if len(entry.Embedding) == 0 {
			ids = append(ids, entry.Id)
		}
	}
	if len(ids) == 0 {
		return added, nil
	}

	p.pending.Add(1)
	submitErr := p.pool.Submit(func() {
		defer p.pending.Done()
		if err := p.embedAndStore(context.Background(), ids...); err != nil {
			p.logger.Error("error generating embeddings", "err", err)
		}
	})
	if submitErr != nil {
		p.pending.Done()
		p.logger.Error("error submitting embedding job, running inline", "err", submitErr)
		if err := p.embedAndStore(ctx, ids...); err != nil {
			p.logger.Error("error generating embeddings", "err", err)
		}
	}

	return added, nil
}

// Wait blocks until all in-flight embedding jobs have finished. Useful for
// batch tools that must not exit with embeddings still pending.
func (p *Pipeline) Wait() {
	p.pending.Wait()
}

// Reembed replaces an entry's content and regenerates its embedding. The
// content and embedding update land in a single transaction so readers never
// observe new text with a stale vector.
func (p *Pipeline) Reembed(ctx context.Context, id core.ID, newContent string) error {
	if newContent == "" {
		return core.ErrEmptyContent
	}

	entry, err := p.repo.GetEntry(ctx, id)
	if err != nil {
		return err
	}

	vec, err := p.embed(ctx, entry.Title+" "+newContent)
	if err != nil {
		return err
	}

	entry.Content = newContent
	entry.Embedding = vec
	_, err = p.repo.UpdateEntries(ctx, entry)
	return err
}

// embedAndStore fetches the entries, embeds their text in one batch call and
// writes the vectors back.
func (p *Pipeline) embedAndStore(ctx context.Context, ids ...core.ID) error {
	entries, err := p.repo.GetEntries(ctx, ids...)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return nil
	}

	texts := make([]string, len(entries))
	for i, entry := range entries {
		texts[i] = entry.Title + " " + entry.Content
	}

	var vectors [][]float32
	err = RetryWithBackoff(ctx, func() error {
		var embedErr error
		vectors, embedErr = p.embedder.EmbedTexts(ctx, texts)
		return embedErr
	}, p.maxAttempts, p.baseDelay)
	if err != nil {
		return err
	}
	if len(vectors) != len(entries) {
		return ErrEmbeddingCountMismatch
	}

	for i, entry := range entries {
		entry.Embedding = retrieval.NormalizeVector(vectors[i])
	}

	_, err = p.repo.UpdateEntries(ctx, entries...)
	return err
}

func (p *Pipeline) embed(ctx context.Context, text string) ([]float32, error) {
	var vec []float32
	err := RetryWithBackoff(ctx, func() error {
		var embedErr error
		vec, embedErr = p.embedder.EmbedText(ctx, text)
		return embedErr
	}, p.maxAttempts, p.baseDelay)
	if err != nil {
		return nil, err
	}
	return retrieval.NormalizeVector(vec), nil
}

// Release releases resources including the worker pool.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	if p.pool != nil {
		p.pool.Release()
	}
}
