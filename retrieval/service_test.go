package retrieval

import (
	"context"
	"testing"

	"github.com/poiesic/askit/ai/mock"
	"github.com/poiesic/askit/cache"
	"github.com/poiesic/askit/core"
	"github.com/poiesic/askit/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T, embedder *mock.MockEmbedder, entries ...*core.KnowledgeEntry) *Service {
	t.Helper()

	repo, backend, err := badger.NewMemoryRepository()
	require.NoError(t, err)
	t.Cleanup(func() { backend.Close() })

	if len(entries) > 0 {
		_, err = repo.AddEntries(context.Background(), entries...)
		require.NoError(t, err)
	}

	caches := cache.NewLayer()
	provider, err := NewEmbeddingProvider(embedder, caches)
	require.NoError(t, err)

	service, err := NewService(repo, provider, caches)
	require.NoError(t, err)
	t.Cleanup(service.Release)

	return service
}

func fixedEmbedder(vec []float32) *mock.MockEmbedder {
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return vec, nil
	}
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		out := make([][]float32, len(texts))
		for i := range texts {
			out[i] = vec
		}
		return out, nil
	}
	return embedder
}

func TestService_RequiresDependencies(t *testing.T) {
	repo, backend, err := badger.NewMemoryRepository()
	require.NoError(t, err)
	defer backend.Close()

	caches := cache.NewLayer()
	provider, err := NewEmbeddingProvider(mock.NewMockEmbedder(), caches)
	require.NoError(t, err)

	_, err = NewService(nil, provider, caches)
	assert.ErrorIs(t, err, ErrKnowledgeRepositoryRequired)

	_, err = NewService(repo, nil, caches)
	assert.ErrorIs(t, err, ErrEmbedderRequired)

	_, err = NewService(repo, provider, nil)
	assert.ErrorIs(t, err, ErrCacheLayerRequired)
}

func TestService_HybridRetrieval(t *testing.T) {
	entry := &core.KnowledgeEntry{
		Title:     "Skills",
		Content:   "React, TypeScript and Go",
		Category:  core.CategorySkills,
		Tags:      []string{"react"},
		Language:  "en",
		Embedding: []float32{1, 0, 0},
		IsActive:  true,
	}
	service := newTestService(t, fixedEmbedder([]float32{1, 0, 0}), entry)

	opts := DefaultOptions()
	opts.Language = "en"

	results := service.Retrieve(context.Background(), "What are David's technical skills?", opts)
	require.Len(t, results, 1)

	result := results[0]
	assert.Equal(t, "Skills", result.Entry.Title)
	assert.Equal(t, core.ProvenanceHybrid, result.Provenance,
		"both paths matched, so provenance is hybrid")
	assert.Greater(t, result.VectorScore, 0.0)
	assert.Greater(t, result.KeywordScore, 0.0)
	assert.Greater(t, result.HybridScore, 0.0)
	assert.Contains(t, result.MatchedKeywords, "skills")
}

func TestService_EmptyCorpusReturnsEmpty(t *testing.T) {
	service := newTestService(t, fixedEmbedder([]float32{1, 0, 0}))

	results := service.Retrieve(context.Background(), "anything at all", DefaultOptions())
	assert.NotNil(t, results)
	assert.Empty(t, results)
}

func TestService_BelowThresholdReturnsEmpty(t *testing.T) {
	entry := &core.KnowledgeEntry{
		Title:     "Gardening",
		Content:   "Roses and tulips",
		Category:  core.CategoryGeneral,
		Language:  "en",
		Embedding: []float32{0, 1, 0},
		IsActive:  true,
	}
	// Query vector orthogonal to the entry, query keywords absent from it.
	service := newTestService(t, fixedEmbedder([]float32{1, 0, 0}), entry)

	results := service.Retrieve(context.Background(), "quantum computing", DefaultOptions())
	assert.Empty(t, results)
}

func TestService_NegativeThresholdDisablesCutoff(t *testing.T) {
	entry := &core.KnowledgeEntry{
		Title:     "Gardening",
		Content:   "Roses and tulips",
		Category:  core.CategoryGeneral,
		Language:  "en",
		Embedding: []float32{0, 1, 0},
		IsActive:  true,
	}
	service := newTestService(t, fixedEmbedder([]float32{1, 0, 0}), entry)

	// A zero threshold means "use the default", so include-all is requested
	// with a negative value.
	opts := DefaultOptions()
	opts.Threshold = -1
	opts.UseKeyword = false

	results := service.Retrieve(context.Background(), "quantum computing", opts)
	require.Len(t, results, 1)
	assert.Equal(t, "Gardening", results[0].Entry.Title)
	assert.InDelta(t, 0.0, results[0].VectorScore, 1e-9)
}

func TestService_ResultCacheHit(t *testing.T) {
	entry := &core.KnowledgeEntry{
		Title:     "Skills",
		Content:   "React and Go",
		Category:  core.CategorySkills,
		Language:  "en",
		Embedding: []float32{1, 0, 0},
		IsActive:  true,
	}
	embedder := fixedEmbedder([]float32{1, 0, 0})
	service := newTestService(t, embedder, entry)

	opts := DefaultOptions()
	first := service.Retrieve(context.Background(), "skills", opts)
	second := service.Retrieve(context.Background(), "skills", opts)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, embedder.CallCount(),
		"the second retrieval must be served from the result cache")
}

func TestService_TopKTruncation(t *testing.T) {
	entries := []*core.KnowledgeEntry{}
	for i := 0; i < 5; i++ {
		entries = append(entries, &core.KnowledgeEntry{
			Title:     "Skills",
			Content:   "React and Go",
			Category:  core.CategorySkills,
			Language:  "en",
			Embedding: []float32{1, 0, float32(i) * 0.01},
			IsActive:  true,
		})
	}
	// Titles must differ or the content-derived IDs collide.
	for i, entry := range entries {
		entry.Title = entry.Title + " " + string(rune('A'+i))
	}

	service := newTestService(t, fixedEmbedder([]float32{1, 0, 0}), entries...)

	opts := DefaultOptions()
	opts.TopK = 2
	results := service.Retrieve(context.Background(), "skills", opts)
	assert.Len(t, results, 2)
}

func TestService_VectorPanicDegradesToKeyword(t *testing.T) {
	entry := &core.KnowledgeEntry{
		Title:     "Skills",
		Content:   "React and Go",
		Category:  core.CategorySkills,
		Language:  "en",
		Embedding: []float32{1, 0, 0},
		IsActive:  true,
	}
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		panic("embedder blew up")
	}
	service := newTestService(t, embedder, entry)

	results := service.Retrieve(context.Background(), "skills", DefaultOptions())
	require.Len(t, results, 1, "keyword path alone should still produce the match")
	assert.Equal(t, core.ProvenanceKeyword, results[0].Provenance)
}

func TestService_KeywordOnlyDisablesVector(t *testing.T) {
	entry := &core.KnowledgeEntry{
		Title:     "Skills",
		Content:   "React and Go",
		Category:  core.CategorySkills,
		Language:  "en",
		Embedding: []float32{1, 0, 0},
		IsActive:  true,
	}
	embedder := fixedEmbedder([]float32{1, 0, 0})
	service := newTestService(t, embedder, entry)

	opts := DefaultOptions()
	opts.UseVector = false
	results := service.Retrieve(context.Background(), "skills", opts)

	require.Len(t, results, 1)
	assert.Equal(t, core.ProvenanceKeyword, results[0].Provenance)
	assert.Zero(t, embedder.CallCount(), "vector path disabled means no embedding call")
}
