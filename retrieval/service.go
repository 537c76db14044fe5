package retrieval

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/askit/cache"
	"github.com/poiesic/askit/core"
	"github.com/poiesic/askit/storage"
)

// Default retrieval options.
const (
	DefaultTopK      = 3
	DefaultThreshold = 0.1
)

// Options controls a single retrieval call.
//
// The zero value is usable: DefaultOptions values are filled in for unset
// fields, and when both UseVector and UseKeyword are false, both paths are
// enabled (disabling every path would make the call pointless).
//
// The zero-as-unset convention means a literal 0 cannot be requested for
// Threshold or the weight pair. Pass a negative Threshold to disable the
// similarity cutoff entirely, and silence a path through UseVector or
// UseKeyword rather than a zero weight.
type Options struct {
	Language        string
	Category        core.Category
	TopK            int
	Threshold       float64
	VectorWeight    float64
	KeywordWeight   float64
	UseVector       bool
	UseKeyword      bool
	IncludeInactive bool
}

// DefaultOptions returns the standard retrieval options.
func DefaultOptions() Options {
	return Options{
		TopK:          DefaultTopK,
		Threshold:     DefaultThreshold,
		VectorWeight:  DefaultVectorWeight,
		KeywordWeight: DefaultKeywordWeight,
		UseVector:     true,
		UseKeyword:    true,
	}
}

func (o Options) normalized() Options {
	if o.TopK <= 0 {
		o.TopK = DefaultTopK
	}
	if o.Threshold == 0 {
		o.Threshold = DefaultThreshold
	}
	if o.VectorWeight == 0 && o.KeywordWeight == 0 {
		o.VectorWeight = DefaultVectorWeight
		o.KeywordWeight = DefaultKeywordWeight
	}
	if !o.UseVector && !o.UseKeyword {
		o.UseVector = true
		o.UseKeyword = true
	}
	return o
}

// canonical renders the options in a fixed field order, so logically
// identical option sets always produce the same cache key.
func (o Options) canonical() string {
	return fmt.Sprintf("lang=%s|cat=%s|topk=%d|th=%.4f|vw=%.3f|kw=%.3f|uv=%t|uk=%t|inactive=%t",
		o.Language, o.Category, o.TopK, o.Threshold,
		o.VectorWeight, o.KeywordWeight, o.UseVector, o.UseKeyword, o.IncludeInactive)
}

// Service is the retrieval façade: it orchestrates embedding, vector and
// keyword search, hybrid ranking, and the cache layer.
//
// Retrieval never fails: a broken path degrades to the other one, and total
// failure yields an empty result list, so the conversation flow upstream is
// never blocked on retrieval.
type Service struct {
	repo     storage.KnowledgeRepository
	provider *EmbeddingProvider
	keyword  *KeywordScorer
	ranker   *HybridRanker
	caches   *cache.Layer
	pool     *ants.Pool
	logger   *slog.Logger
}

// Option configures a Service.
type Option func(*Service) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// WithPoolSize sets the worker pool size for the concurrent search branches.
// Default is runtime.NumCPU() / 2, with a minimum of 2.
func WithPoolSize(size int) Option {
	return func(s *Service) error {
		if size < 2 {
			size = 2
		}
		if s.pool != nil {
			s.pool.Release()
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		s.pool = pool
		return nil
	}
}

// NewService creates a retrieval service.
func NewService(
	repo storage.KnowledgeRepository,
	provider *EmbeddingProvider,
	caches *cache.Layer,
	opts ...Option,
) (*Service, error) {
	if repo == nil {
		return nil, ErrKnowledgeRepositoryRequired
	}
	if provider == nil {
		return nil, ErrEmbedderRequired
	}
	if caches == nil {
		return nil, ErrCacheLayerRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 2 {
		poolSize = 2
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	s := &Service{
		repo:     repo,
		provider: provider,
		keyword:  NewKeywordScorer(),
		ranker:   NewHybridRanker(),
		caches:   caches,
		pool:     pool,
		logger:   slog.Default(),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(s); err != nil {
			s.Release()
			return nil, err
		}
	}

	return s, nil
}

// Release frees the worker pool. The service should not be used afterwards.
func (s *Service) Release() {
	if s.pool != nil {
		s.pool.Release()
	}
}

// Retrieve returns the ranked results for a query.
func (s *Service) Retrieve(ctx context.Context, query string, opts Options) []*core.ScoredResult {
	return s.RetrieveWithMonitor(ctx, query, opts, nil)
}

// RetrieveWithMonitor returns the ranked results for a query, reporting
// progress through the monitor.
func (s *Service) RetrieveWithMonitor(ctx context.Context, query string, opts Options, monitor RetrievalMonitor) []*core.ScoredResult {
	if monitor == nil {
		monitor = &noopMonitor{}
	}

	monitor.Start(query)
	opts = opts.normalized()

	// 1. Result cache
	key := cache.ResultKey(query, opts.canonical())
	if cached, ok := s.caches.GetResults(key); ok {
		monitor.CacheHit(key)
		monitor.Finish(cached)
		return cached
	}

	// 2. Corpus snapshot
	entries, err := s.repo.ListEntries(ctx, storage.Filter{
		Language:        opts.Language,
		Category:        opts.Category,
		IncludeInactive: opts.IncludeInactive,
	})
	if err != nil {
		s.logger.Error("error reading corpus snapshot, returning no results", "err", err)
		monitor.Degraded("corpus", err.Error())
		return []*core.ScoredResult{}
	}
	if len(entries) == 0 {
		monitor.Finish(nil)
		return []*core.ScoredResult{}
	}

	// 3. Vector and keyword search run concurrently: they are independent,
	// and the embedding call is the slow part of the vector branch.
	var (
		wg             sync.WaitGroup
		vectorResults  []*core.ScoredResult
		keywordResults []*core.ScoredResult
	)

	if opts.UseVector {
		wg.Add(1)
		s.submit(func() {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					s.logger.Error("vector search panicked, degrading to keyword-only", "panic", r)
					monitor.Degraded("vector", fmt.Sprint(r))
				}
			}()

			vec := s.provider.Embed(ctx, query)
			monitor.AfterEmbedding(len(vec))

			index := NewVectorIndex(entries)
			vectorResults = index.Query(vec, opts.Threshold, opts.TopK)
			monitor.AfterVectorSearch(resultIDs(vectorResults))
		})
	}

	if opts.UseKeyword {
		wg.Add(1)
		s.submit(func() {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					s.logger.Error("keyword search panicked, degrading to vector-only", "panic", r)
					monitor.Degraded("keyword", fmt.Sprint(r))
				}
			}()

			keywordResults = s.keyword.Score(query, entries)
			monitor.AfterKeywordSearch(resultIDs(keywordResults))
		})
	}

	wg.Wait()

	// 4. Merge, truncate, cache
	results := s.ranker.Merge(vectorResults, keywordResults, Weights{
		Vector:  opts.VectorWeight,
		Keyword: opts.KeywordWeight,
	})
	if len(results) > opts.TopK {
		results = results[:opts.TopK]
	}

	s.caches.SetResults(key, results)
	monitor.Finish(results)
	return results
}

// submit runs fn on the worker pool, falling back to inline execution if the
// pool rejects it (e.g. released during shutdown).
func (s *Service) submit(fn func()) {
	if err := s.pool.Submit(fn); err != nil {
		fn()
	}
}

func resultIDs(results []*core.ScoredResult) []core.ID {
	ids := make([]core.ID, 0, len(results))
	for _, result := range results {
		ids = append(ids, result.Entry.Id)
	}
	return ids
}
