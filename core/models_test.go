package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIDFromContent_Deterministic(t *testing.T) {
	a := IDFromContent("some content")
	b := IDFromContent("some content")
	assert.Equal(t, a, b, "same content must always produce the same ID")
}

func TestIDFromContent_Distinct(t *testing.T) {
	a := IDFromContent("content one")
	b := IDFromContent("content two")
	assert.NotEqual(t, a, b)
}

func TestEntryID_LanguageScoped(t *testing.T) {
	en := EntryID("en", "Skills")
	de := EntryID("de", "Skills")
	assert.NotEqual(t, en, de, "same title in different languages must get different IDs")
	assert.Equal(t, en, EntryID("en", "Skills"))
}

func TestValidCategory(t *testing.T) {
	for _, category := range []Category{
		CategoryGeneral, CategoryProjects, CategorySkills,
		CategoryExperience, CategoryEducation, CategoryContact,
	} {
		assert.True(t, ValidCategory(category), "%s should be valid", category)
	}
	assert.False(t, ValidCategory(Category("nonsense")))
	assert.False(t, ValidCategory(Category("")))
}

func TestValidateEntry_Valid(t *testing.T) {
	entry := &KnowledgeEntry{
		Title:    "Skills",
		Content:  "React, Go, TypeScript",
		Category: CategorySkills,
		Language: "en",
	}
	assert.NoError(t, ValidateEntry(entry))
}

func TestValidateEntry_Invalid(t *testing.T) {
	base := KnowledgeEntry{
		Title:    "Skills",
		Content:  "React",
		Category: CategorySkills,
		Language: "en",
	}

	missingTitle := base
	missingTitle.Title = ""
	assert.ErrorIs(t, ValidateEntry(&missingTitle), ErrEmptyTitle)

	missingContent := base
	missingContent.Content = ""
	assert.ErrorIs(t, ValidateEntry(&missingContent), ErrEmptyContent)

	badCategory := base
	badCategory.Category = "unknown"
	assert.ErrorIs(t, ValidateEntry(&badCategory), ErrInvalidCategory)

	missingLanguage := base
	missingLanguage.Language = ""
	assert.ErrorIs(t, ValidateEntry(&missingLanguage), ErrEmptyLanguage)

	assert.ErrorIs(t, ValidateEntry(nil), ErrInvalidEntry)
}

func TestProvenance_String(t *testing.T) {
	assert.Equal(t, "vector", ProvenanceVector.String())
	assert.Equal(t, "keyword", ProvenanceKeyword.String())
	assert.Equal(t, "hybrid", ProvenanceHybrid.String())
}

func TestKnowledgeEntryMUS_RoundTrip(t *testing.T) {
	entry := KnowledgeEntry{
		Id:        EntryID("en", "Skills"),
		Title:     "Skills",
		Content:   "React, Go, TypeScript",
		Category:  CategorySkills,
		Tags:      []string{"frontend", "backend"},
		Language:  "en",
		Embedding: []float32{0.1, 0.2, 0.3},
		IsActive:  true,
	}

	buf := make([]byte, KnowledgeEntryMUS.Size(entry))
	n := KnowledgeEntryMUS.Marshal(entry, buf)
	require.Equal(t, len(buf), n)

	decoded, read, err := KnowledgeEntryMUS.Unmarshal(buf)
	require.NoError(t, err)
	assert.Equal(t, n, read)
	assert.Equal(t, entry.Id, decoded.Id)
	assert.Equal(t, entry.Title, decoded.Title)
	assert.Equal(t, entry.Category, decoded.Category)
	assert.Equal(t, entry.Tags, decoded.Tags)
	assert.Equal(t, entry.Embedding, decoded.Embedding)
	assert.Equal(t, entry.IsActive, decoded.IsActive)
}
