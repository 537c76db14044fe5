package storage

import (
	"context"

	"github.com/poiesic/askit/core"
)

// Filter narrows which corpus entries a snapshot read returns.
// Zero values mean "no constraint" for Language and Category.
type Filter struct {
	Language        string
	Category        core.Category
	IncludeInactive bool
}

// KnowledgeRepository provides operations for the curated knowledge corpus.
// Implementations must be thread-safe and support concurrent access.
// Retrieval reads a snapshot per call; no streaming updates are assumed.
type KnowledgeRepository interface {
	// AddEntries adds one or more knowledge entries to storage.
	// For entries with ID=0, derives the content-based ID from language and
	// title. Sets InsertedAt/UpdatedAt timestamps. Rejects entries whose
	// embedding dimensionality differs from the corpus's fixed dimension.
	// Returns the entries with IDs and timestamps populated.
	AddEntries(ctx context.Context, entries ...*core.KnowledgeEntry) ([]*core.KnowledgeEntry, error)

	// UpdateEntries updates existing entries. Content and embedding are
	// replaced together in a single transaction, so a reader never observes
	// new content with a stale vector. Updates the UpdatedAt timestamp.
	// Returns ErrNotFound if any entry doesn't exist.
	UpdateEntries(ctx context.Context, entries ...*core.KnowledgeEntry) ([]*core.KnowledgeEntry, error)

	// DeleteEntries removes entries by their IDs.
	// Also removes associated indices.
	// Returns ErrNotFound if any entry doesn't exist.
	DeleteEntries(ctx context.Context, ids ...core.ID) error

	// GetEntry retrieves a single entry by ID.
	// Returns ErrNotFound if the entry doesn't exist.
	GetEntry(ctx context.Context, id core.ID) (*core.KnowledgeEntry, error)

	// GetEntries retrieves multiple entries by their IDs.
	// Returns only the entries that exist (no error for missing entries).
	GetEntries(ctx context.Context, ids ...core.ID) ([]*core.KnowledgeEntry, error)

	// ListEntries returns a snapshot of entries matching the filter, in
	// stable insertion order. Inactive entries are excluded unless
	// filter.IncludeInactive is set.
	ListEntries(ctx context.Context, filter Filter) ([]*core.KnowledgeEntry, error)

	// Count returns the number of stored entries, active and inactive.
	Count(ctx context.Context) (int, error)

	// Dimension returns the corpus's fixed embedding dimensionality, or 0 if
	// no embedded entry has been stored yet.
	Dimension(ctx context.Context) (int, error)

	// WithTransaction executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	// Close closes the storage backend and releases resources.
	Close() error
}
