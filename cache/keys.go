package cache

import (
	"encoding/hex"
	"strings"

	"github.com/go-crypt/x/blake2b"
)

// Cache keys are BLAKE2b digests over normalized inputs so that trivially
// different spellings of the same request ("What is Go? " vs "what is go?")
// collide onto the same entry. Callers supply option sets as a canonical
// fixed-field-order rendering; see retrieval.Options.
//
// normalize lower-cases and trims the input text.
func normalize(text string) string {
	return strings.ToLower(strings.TrimSpace(text))
}

// hashKey derives a stable hex key from the given parts.
func hashKey(parts ...string) string {
	h, _ := blake2b.New(16, nil)
	for _, part := range parts {
		h.Write([]byte(part))
		h.Write([]byte{0}) // separator so ("ab","c") != ("a","bc")
	}
	return hex.EncodeToString(h.Sum(nil))
}

// EmbeddingKey derives the embedding-cache key for a piece of text.
func EmbeddingKey(text string) string {
	return hashKey("emb", normalize(text))
}

// ResultKey derives the result-cache key for a query and a canonical
// rendering of its retrieval options.
func ResultKey(query, options string) string {
	return hashKey("res", normalize(query), options)
}
