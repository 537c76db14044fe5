package badger

import (
	"context"
	"encoding/binary"
	"sort"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/askit/core"
	"github.com/poiesic/askit/storage"
)

// KnowledgeRepository implements storage.KnowledgeRepository for BadgerDB.
type KnowledgeRepository struct {
	backend *Backend
}

var _ storage.KnowledgeRepository = (*KnowledgeRepository)(nil)

// NewKnowledgeRepository creates a new KnowledgeRepository.
//
// Returns storage.KnowledgeRepository interface to enforce abstraction.
func NewKnowledgeRepository(backend *Backend) (storage.KnowledgeRepository, error) {
	return newKnowledgeRepository(backend)
}

func newKnowledgeRepository(backend *Backend) (*KnowledgeRepository, error) {
	if backend == nil {
		return nil, storage.ErrStorageClosed
	}
	return &KnowledgeRepository{backend: backend}, nil
}

// Close releases repository resources. The backend is closed separately.
func (r *KnowledgeRepository) Close() error {
	return nil
}

// WithTransaction executes a function within a transaction.
func (r *KnowledgeRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		if err := fn(ctx); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// AddEntries adds one or more knowledge entries to storage.
func (r *KnowledgeRepository) AddEntries(ctx context.Context, entries ...*core.KnowledgeEntry) ([]*core.KnowledgeEntry, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, entry := range entries {
			if err := core.ValidateEntry(entry); err != nil {
				return err
			}

			if entry.Id == 0 {
				entry.Id = core.EntryID(entry.Language, entry.Title)
			}

			dim, err := r.readDimension(tx)
			if err != nil {
				return err
			}
			if err := core.ValidateEmbeddingDimension(entry.Embedding, dim); err != nil {
				return err
			}

			entry.InsertedAt = time.Now().UTC()
			entry.UpdatedAt = entry.InsertedAt

			if err := r.writeEntry(tx, entry); err != nil {
				return err
			}

			if dim == 0 && len(entry.Embedding) > 0 {
				if err := r.writeDimension(tx, len(entry.Embedding)); err != nil {
					return err
				}
			}
		}
		return tx.Commit()
	}, true)

	return entries, err
}

// UpdateEntries updates existing entries. Content and embedding land in the
// same transaction, so readers never see new content with a stale vector.
func (r *KnowledgeRepository) UpdateEntries(ctx context.Context, entries ...*core.KnowledgeEntry) ([]*core.KnowledgeEntry, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, entry := range entries {
			old, err := r.readEntry(tx, makeEntryKey(entry.Id))
			if err != nil {
				return err
			}
			if old == nil {
				return storage.ErrNotFound
			}

			dim, err := r.readDimension(tx)
			if err != nil {
				return err
			}
			if err := core.ValidateEmbeddingDimension(entry.Embedding, dim); err != nil {
				return err
			}

			entry.InsertedAt = old.InsertedAt
			entry.UpdatedAt = time.Now().UTC()

			// Update category index if the category changed
			if old.Category != entry.Category {
				if err := tx.Delete(makeCategoryKey(old.Category, old.Id)); err != nil {
					return err
				}
			}

			if err := r.writeEntry(tx, entry); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)

	return entries, err
}

// DeleteEntries removes entries by their IDs.
func (r *KnowledgeRepository) DeleteEntries(ctx context.Context, ids ...core.ID) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			key := makeEntryKey(id)

			entry, err := r.readEntry(tx, key)
			if err != nil {
				return err
			}
			if entry == nil {
				return storage.ErrNotFound
			}

			if err := tx.Delete(makeCategoryKey(entry.Category, entry.Id)); err != nil {
				return err
			}
			if err := tx.Delete(key); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// GetEntry retrieves a single entry by ID.
func (r *KnowledgeRepository) GetEntry(ctx context.Context, id core.ID) (*core.KnowledgeEntry, error) {
	var result *core.KnowledgeEntry
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = r.readEntry(tx, makeEntryKey(id))
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// GetEntries retrieves multiple entries by their IDs.
// Missing entries are skipped without error.
func (r *KnowledgeRepository) GetEntries(ctx context.Context, ids ...core.ID) ([]*core.KnowledgeEntry, error) {
	results := make([]*core.KnowledgeEntry, 0, len(ids))
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			entry, err := r.readEntry(tx, makeEntryKey(id))
			if err != nil {
				return err
			}
			if entry != nil {
				results = append(results, entry)
			}
		}
		return nil
	}, false)
	return results, err
}

// ListEntries returns a snapshot of entries matching the filter, ordered by
// insertion time so downstream scoring ties break deterministically.
// Category filters walk the category index instead of scanning the whole
// corpus.
func (r *KnowledgeRepository) ListEntries(ctx context.Context, filter storage.Filter) ([]*core.KnowledgeEntry, error) {
	var results []*core.KnowledgeEntry

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		if filter.Category != "" {
			var err error
			results, err = r.listByCategory(tx, filter)
			return err
		}

		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(entryPrefix)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			item := iter.Item()

			var entry *core.KnowledgeEntry
			err := item.Value(func(val []byte) error {
				var err error
				entry, err = storage.UnmarshalEntry(val)
				return err
			})
			if err != nil {
				return err
			}
			if entry == nil {
				continue
			}

			if !entry.IsActive && !filter.IncludeInactive {
				continue
			}
			if filter.Language != "" && entry.Language != filter.Language {
				continue
			}
			if filter.Category != "" && entry.Category != filter.Category {
				continue
			}

			results = append(results, entry)
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].InsertedAt.Equal(results[j].InsertedAt) {
			return results[i].Id < results[j].Id
		}
		return results[i].InsertedAt.Before(results[j].InsertedAt)
	})

	return results, nil
}

// listByCategory resolves IDs from the category index, then loads each
// primary record and applies the remaining filter fields.
func (r *KnowledgeRepository) listByCategory(tx *badger.Txn, filter storage.Filter) ([]*core.KnowledgeEntry, error) {
	prefix := makePartialCategoryKey(filter.Category)

	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix
	opts.PrefetchValues = false
	iter := tx.NewIterator(opts)
	defer iter.Close()

	var results []*core.KnowledgeEntry
	for iter.Rewind(); iter.Valid(); iter.Next() {
		key := iter.Item().Key()
		if len(key) != len(prefix)+8 {
			continue
		}
		id := core.ID(binary.BigEndian.Uint64(key[len(prefix):]))

		entry, err := r.readEntry(tx, makeEntryKey(id))
		if err != nil {
			return nil, err
		}
		if entry == nil {
			continue
		}
		if !entry.IsActive && !filter.IncludeInactive {
			continue
		}
		if filter.Language != "" && entry.Language != filter.Language {
			continue
		}
		results = append(results, entry)
	}
	return results, nil
}

// Count returns the number of stored entries, active and inactive.
func (r *KnowledgeRepository) Count(ctx context.Context) (int, error) {
	count := 0
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(entryPrefix)
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			count++
		}
		return nil
	}, false)
	return count, err
}

// Dimension returns the corpus's fixed embedding dimensionality, or 0 if no
// embedded entry has been stored yet.
func (r *KnowledgeRepository) Dimension(ctx context.Context) (int, error) {
	dim := 0
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		dim, err = r.readDimension(tx)
		return err
	}, false)
	return dim, err
}

func (r *KnowledgeRepository) writeEntry(tx *badger.Txn, entry *core.KnowledgeEntry) error {
	if err := tx.Set(makeEntryKey(entry.Id), storage.MarshalEntry(entry)); err != nil {
		return err
	}
	return tx.Set(makeCategoryKey(entry.Category, entry.Id), storage.MarshalID(entry.Id))
}

func (r *KnowledgeRepository) readEntry(tx *badger.Txn, key []byte) (*core.KnowledgeEntry, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var entry *core.KnowledgeEntry
	err = item.Value(func(val []byte) error {
		var err error
		entry, err = storage.UnmarshalEntry(val)
		return err
	})
	return entry, err
}

func (r *KnowledgeRepository) readDimension(tx *badger.Txn) (int, error) {
	item, err := tx.Get(makeDimensionKey())
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return 0, nil
		}
		return 0, err
	}

	dim := 0
	err = item.Value(func(val []byte) error {
		if len(val) >= 8 {
			dim = int(binary.BigEndian.Uint64(val))
		}
		return nil
	})
	return dim, err
}

func (r *KnowledgeRepository) writeDimension(tx *badger.Txn, dim int) error {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, uint64(dim))
	return tx.Set(makeDimensionKey(), buf)
}
