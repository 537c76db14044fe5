package core

//go:generate go run ../cmd/musgen

import (
	"encoding/binary"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for domain entities.
// It is generated from entry content so that re-seeding a corpus
// produces stable identifiers.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// Category classifies a knowledge entry. The set is closed: retrieval
// filters and the reveal step planner both key off these values.
type Category string

const (
	CategoryGeneral    Category = "general"
	CategoryProjects   Category = "projects"
	CategorySkills     Category = "skills"
	CategoryExperience Category = "experience"
	CategoryEducation  Category = "education"
	CategoryContact    Category = "contact"
)

// Categories lists all valid category values.
var Categories = []Category{
	CategoryGeneral,
	CategoryProjects,
	CategorySkills,
	CategoryExperience,
	CategoryEducation,
	CategoryContact,
}

// ValidCategory reports whether c is one of the closed category set.
func ValidCategory(c Category) bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// KnowledgeEntry is a single piece of the curated knowledge corpus.
// Inactive entries are excluded from retrieval but retained for audit.
// Once embedded, an entry's content and vector change only together,
// through the repository's atomic re-embed update.
type KnowledgeEntry struct {
	Id         ID
	Title      string
	Content    string
	Category   Category
	Tags       []string
	Language   string // ISO code, e.g. "en"
	Embedding  []float32
	IsActive   bool
	InsertedAt time.Time // When the entry was inserted into the corpus
	UpdatedAt  time.Time // When the entry was last updated
}

// EntryID derives the content-based ID for an entry from its language and title.
func EntryID(language, title string) ID {
	return IDFromContent(language + ":" + title)
}

// Provenance records which retrieval path produced a scored result.
type Provenance int

const (
	// ProvenanceVector means only vector similarity matched the entry.
	ProvenanceVector Provenance = iota + 1
	// ProvenanceKeyword means only keyword relevance matched the entry.
	ProvenanceKeyword
	// ProvenanceHybrid means both paths matched the entry.
	ProvenanceHybrid
)

// String returns the provenance name used in logs and CLI output.
func (p Provenance) String() string {
	switch p {
	case ProvenanceVector:
		return "vector"
	case ProvenanceKeyword:
		return "keyword"
	case ProvenanceHybrid:
		return "hybrid"
	default:
		return "unknown"
	}
}

// ScoredResult wraps a knowledge entry reference with its retrieval scores.
// VectorScore is cosine similarity in [0,1] (0 when the vector path did not
// match). KeywordScore is a non-negative BM25-like value, unbounded above.
type ScoredResult struct {
	Entry           *KnowledgeEntry
	VectorScore     float64
	KeywordScore    float64
	HybridScore     float64
	MatchedKeywords []string
	Provenance      Provenance
}

// ReasoningStep is one element of the reveal sequence shown while an
// answer is being produced. The last step of any sequence is the
// completion step and must not be shown before the answer is ready.
type ReasoningStep struct {
	Icon string // symbolic tag, e.g. "search", "rank", "done"
	Text string // human-readable label
}

// Answer is the final response produced by the generation call.
type Answer struct {
	Text         string
	Sources      []ID
	Suggestions  []string
	ResponseTime time.Duration
}
