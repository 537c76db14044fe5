package retrieval

import "strings"

// Base stop words filtered from both queries and documents.
var stopWords = map[string]bool{
	"the": true, "and": true, "are": true, "was": true, "were": true,
	"for": true, "not": true, "with": true, "you": true, "this": true,
	"but": true, "from": true, "that": true, "have": true, "has": true,
	"his": true, "her": true, "its": true,
	"what": true, "who": true, "how": true, "when": true, "where": true,
	"why": true, "which": true, "does": true, "can": true,
}

// Conversational stop words additionally removed from the query side so that
// casual phrasing ("tell me about ...") doesn't pollute term matching.
var queryStopWords = map[string]bool{
	"tell": true, "show": true, "give": true, "about": true, "please": true,
	"list": true, "describe": true, "explain": true, "want": true,
	"know": true, "like": true, "your": true, "some": true, "more": true,
	"info": true, "information": true,
}

// tokenize splits text into terms: lowercase, punctuation trimmed, tokens of
// length <= 2 and base stop words discarded.
func tokenize(text string) []string {
	words := strings.Fields(text)
	filtered := make([]string, 0, len(words))

	for _, word := range words {
		cleaned := strings.ToLower(strings.Trim(word, ".,!?;:'\"-()[]{}/"))
		if len(cleaned) <= 2 {
			continue
		}
		if stopWords[cleaned] {
			continue
		}
		filtered = append(filtered, cleaned)
	}

	return filtered
}

// extractKeywords tokenizes a query and strips the conversational stop words
// on top of the base filtering.
func extractKeywords(query string) []string {
	tokens := tokenize(query)
	keywords := make([]string, 0, len(tokens))
	for _, token := range tokens {
		if queryStopWords[token] {
			continue
		}
		keywords = append(keywords, token)
	}
	return keywords
}

// termFrequencies counts term occurrences in a document's token stream.
func termFrequencies(tokens []string) map[string]int {
	counts := make(map[string]int, len(tokens))
	for _, token := range tokens {
		counts[token]++
	}
	return counts
}
