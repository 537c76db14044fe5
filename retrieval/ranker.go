package retrieval

import (
	"sort"

	"github.com/poiesic/askit/core"
)

// Default blend weights for hybrid scoring.
const (
	DefaultVectorWeight  = 0.6
	DefaultKeywordWeight = 0.4

	// categoryBonus is a small flat bonus for categorized entries, a
	// deliberate diversity nudge rather than a similarity signal.
	categoryBonus = 0.05
)

// Weights configures the hybrid blend.
type Weights struct {
	Vector  float64
	Keyword float64
}

// DefaultWeights returns the standard 0.6/0.4 vector/keyword blend.
func DefaultWeights() Weights {
	return Weights{Vector: DefaultVectorWeight, Keyword: DefaultKeywordWeight}
}

// HybridRanker merges vector and keyword result sets into one ranked list.
type HybridRanker struct{}

// NewHybridRanker creates a hybrid ranker.
func NewHybridRanker() *HybridRanker {
	return &HybridRanker{}
}

// Merge combines the two result sets keyed by entry id, computes each entry's
// hybrid score as the weighted sum of its available component scores plus the
// category bonus, and sorts descending. Truncation to topK is left to the
// caller. Provenance derives from which component scores are non-zero.
func (r *HybridRanker) Merge(vectorResults, keywordResults []*core.ScoredResult, weights Weights) []*core.ScoredResult {
	merged := make(map[core.ID]*core.ScoredResult, len(vectorResults)+len(keywordResults))
	order := make([]core.ID, 0, len(vectorResults)+len(keywordResults))

	for _, result := range vectorResults {
		merged[result.Entry.Id] = &core.ScoredResult{
			Entry:       result.Entry,
			VectorScore: result.VectorScore,
		}
		order = append(order, result.Entry.Id)
	}

	for _, result := range keywordResults {
		if existing, ok := merged[result.Entry.Id]; ok {
			existing.KeywordScore = result.KeywordScore
			existing.MatchedKeywords = result.MatchedKeywords
			continue
		}
		merged[result.Entry.Id] = &core.ScoredResult{
			Entry:           result.Entry,
			KeywordScore:    result.KeywordScore,
			MatchedKeywords: result.MatchedKeywords,
		}
		order = append(order, result.Entry.Id)
	}

	results := make([]*core.ScoredResult, 0, len(merged))
	for _, id := range order {
		result := merged[id]

		result.HybridScore = result.VectorScore*weights.Vector + result.KeywordScore*weights.Keyword
		if result.Entry.Category != "" {
			result.HybridScore += categoryBonus
		}

		switch {
		case result.VectorScore > 0 && result.KeywordScore > 0:
			result.Provenance = core.ProvenanceHybrid
		case result.KeywordScore > 0:
			result.Provenance = core.ProvenanceKeyword
		default:
			result.Provenance = core.ProvenanceVector
		}

		results = append(results, result)
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].HybridScore > results[j].HybridScore
	})

	return results
}
