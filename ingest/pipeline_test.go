package ingest

import (
	"context"
	"math"
	"testing"

	"github.com/poiesic/askit/ai/mock"
	"github.com/poiesic/askit/core"
	"github.com/poiesic/askit/storage"
	"github.com/poiesic/askit/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPipeline(t *testing.T, embedder *mock.MockEmbedder) (*Pipeline, storage.KnowledgeRepository) {
	t.Helper()

	repo, backend, err := badger.NewMemoryRepository()
	require.NoError(t, err)
	t.Cleanup(func() { backend.Close() })

	pipeline, err := NewPipeline(repo, embedder)
	require.NoError(t, err)
	t.Cleanup(pipeline.Release)

	return pipeline, repo
}

func pendingEntry(title string) *core.KnowledgeEntry {
	return &core.KnowledgeEntry{
		Title:    title,
		Content:  "content for " + title,
		Category: core.CategoryGeneral,
		Language: "en",
		IsActive: true,
	}
}

func TestNewPipeline_RequiresDependencies(t *testing.T) {
	repo, backend, err := badger.NewMemoryRepository()
	require.NoError(t, err)
	defer backend.Close()

	_, err = NewPipeline(nil, mock.NewMockEmbedder())
	assert.ErrorIs(t, err, ErrKnowledgeRepositoryRequired)

	_, err = NewPipeline(repo, nil)
	assert.ErrorIs(t, err, ErrEmbedderRequired)
}

func TestIngest_StoresAndEmbedsAsync(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	embedder.Dimension = 8
	pipeline, repo := newTestPipeline(t, embedder)

	added, err := pipeline.Ingest(context.Background(), pendingEntry("Skills"), pendingEntry("Projects"))
	require.NoError(t, err)
	require.Len(t, added, 2)

	pipeline.Wait()

	for _, entry := range added {
		got, err := repo.GetEntry(context.Background(), entry.Id)
		require.NoError(t, err)
		require.Len(t, got.Embedding, 8)

		var norm float64
		for _, x := range got.Embedding {
			norm += float64(x) * float64(x)
		}
		assert.InDelta(t, 1.0, math.Sqrt(norm), 1e-4, "stored embeddings are normalized")
	}
}

func TestIngest_RejectsInvalidEntry(t *testing.T) {
	pipeline, _ := newTestPipeline(t, mock.NewMockEmbedder())

	bad := pendingEntry("Skills")
	bad.Category = "nonsense"
	_, err := pipeline.Ingest(context.Background(), bad)
	assert.ErrorIs(t, err, core.ErrInvalidCategory)
}

func TestIngest_KeepsProvidedEmbedding(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	pipeline, repo := newTestPipeline(t, embedder)

	entry := pendingEntry("Skills")
	entry.Embedding = []float32{1, 0, 0}

	added, err := pipeline.Ingest(context.Background(), entry)
	require.NoError(t, err)
	pipeline.Wait()

	got, err := repo.GetEntry(context.Background(), added[0].Id)
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 0, 0}, got.Embedding)
	assert.Zero(t, embedder.CallCount(), "pre-embedded entries skip the embedding call")
}

func TestReembed_UpdatesContentAndVectorTogether(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return []float32{0, 2, 0}, nil
	}
	pipeline, repo := newTestPipeline(t, embedder)

	entry := pendingEntry("Skills")
	entry.Embedding = []float32{1, 0, 0}
	added, err := pipeline.Ingest(context.Background(), entry)
	require.NoError(t, err)
	pipeline.Wait()

	require.NoError(t, pipeline.Reembed(context.Background(), added[0].Id, "revised content"))

	got, err := repo.GetEntry(context.Background(), added[0].Id)
	require.NoError(t, err)
	assert.Equal(t, "revised content", got.Content)
	assert.Equal(t, []float32{0, 1, 0}, got.Embedding, "replacement vector is normalized")
}

func TestReembed_RejectsEmptyContent(t *testing.T) {
	pipeline, _ := newTestPipeline(t, mock.NewMockEmbedder())
	err := pipeline.Reembed(context.Background(), 1, "")
	assert.ErrorIs(t, err, core.ErrEmptyContent)
}

func TestReembed_MissingEntry(t *testing.T) {
	pipeline, _ := newTestPipeline(t, mock.NewMockEmbedder())
	err := pipeline.Reembed(context.Background(), 98765, "new content")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
