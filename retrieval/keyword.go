package retrieval

import (
	"math"
	"sort"

	"github.com/poiesic/askit/core"
)

// BM25-style constants. avgDocLength is a configured approximation rather
// than a live corpus statistic: corpus-wide document-frequency stats are not
// tracked, and the corpus is small enough that a fixed value behaves well.
const (
	bm25K1       = 1.5
	bm25B        = 0.75
	avgDocLength = 100.0
)

// KeywordScorer computes a sparse keyword-relevance score per document.
type KeywordScorer struct{}

// NewKeywordScorer creates a keyword scorer.
func NewKeywordScorer() *KeywordScorer {
	return &KeywordScorer{}
}

// Score ranks entries by a BM25-like relevance to the query.
// Entries with no matching keyword are excluded. Matched keywords are
// recorded on each result for UI transparency.
func (s *KeywordScorer) Score(query string, entries []*core.KnowledgeEntry) []*core.ScoredResult {
	keywords := extractKeywords(query)
	if len(keywords) == 0 {
		return nil
	}

	results := make([]*core.ScoredResult, 0, len(entries))
	for _, entry := range entries {
		tokens := tokenize(entry.Title + " " + entry.Content)
		if len(tokens) == 0 {
			continue
		}
		frequencies := termFrequencies(tokens)
		docLength := float64(len(tokens))

		score := 0.0
		var matched []string
		for _, keyword := range keywords {
			tf := float64(frequencies[keyword])
			if tf == 0 {
				continue
			}
			// Self-information approximation of idf from the document-side
			// term frequency alone; kept for scoring parity with the
			// original ranking behavior.
			idf := math.Log(1.0 + 1.0/(tf+1.0))
			score += idf * tf * (bm25K1 + 1) / (tf + bm25K1*(1-bm25B+bm25B*(docLength/avgDocLength)))
			matched = append(matched, keyword)
		}

		if score == 0 {
			continue
		}

		results = append(results, &core.ScoredResult{
			Entry:           entry,
			KeywordScore:    score,
			MatchedKeywords: matched,
			Provenance:      core.ProvenanceKeyword,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].KeywordScore > results[j].KeywordScore
	})

	return results
}
