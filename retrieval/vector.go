package retrieval

import (
	"math"
	"sort"

	"github.com/poiesic/askit/core"
)

// VectorIndex scores knowledge entries against a query vector by cosine
// similarity. The corpus is small (tens to low hundreds of entries), so the
// index is an exhaustive scan over a snapshot; no ANN structure is needed.
type VectorIndex struct {
	entries []*core.KnowledgeEntry
}

// NewVectorIndex creates an index over a corpus snapshot.
// The snapshot's order is preserved for stable tie-breaking.
func NewVectorIndex(entries []*core.KnowledgeEntry) *VectorIndex {
	return &VectorIndex{entries: entries}
}

// Query returns entries whose cosine similarity to vec meets threshold,
// sorted descending and truncated to topK (topK <= 0 means no truncation).
// Entries below the threshold are excluded entirely. Ties keep the
// snapshot's original order.
func (idx *VectorIndex) Query(vec []float32, threshold float64, topK int) []*core.ScoredResult {
	results := make([]*core.ScoredResult, 0, len(idx.entries))
	for _, entry := range idx.entries {
		if len(entry.Embedding) == 0 {
			continue
		}
		similarity := CosineSimilarity(vec, entry.Embedding)
		if similarity < threshold {
			continue
		}
		results = append(results, &core.ScoredResult{
			Entry:       entry,
			VectorScore: similarity,
			Provenance:  core.ProvenanceVector,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].VectorScore > results[j].VectorScore
	})

	if topK > 0 && len(results) > topK {
		results = results[:topK]
	}
	return results
}

// CosineSimilarity computes dot(a,b) / (|a|*|b|) in float64.
// Returns 0 whenever either vector has zero magnitude, so a zero vector
// never divides by zero and never matches anything.
func CosineSimilarity(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}

	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	for i := n; i < len(a); i++ {
		normA += float64(a[i]) * float64(a[i])
	}
	for i := n; i < len(b); i++ {
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// NormalizeVector normalizes a vector to unit length.
// Returns a new vector. If the input is a zero vector, returns a zero vector.
func NormalizeVector(v []float32) []float32 {
	if len(v) == 0 {
		return v
	}

	var magnitude float32
	for _, val := range v {
		magnitude += val * val
	}
	magnitude = float32(math.Sqrt(float64(magnitude)))

	result := make([]float32, len(v))
	if magnitude == 0 {
		return result
	}
	for i, val := range v {
		result[i] = val / magnitude
	}
	return result
}
