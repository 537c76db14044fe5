package badger

import (
	"encoding/binary"
	"fmt"

	"github.com/poiesic/askit/core"
)

// Key prefixes for different data types
const (
	entryPrefix         = "knowent"
	entryCategoryPrefix = "knowcat"
	entryMetaDimension  = "knowdim"
)

// makeEntryKey generates a key for a knowledge entry by ID.
func makeEntryKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", entryPrefix, id))
}

// makeCategoryKey generates a composite key for the category index.
// Format: prefix:category:id
func makeCategoryKey(category core.Category, id core.ID) []byte {
	prefix := entryCategoryPrefix + ":" + string(category) + ":"
	prefixBytes := []byte(prefix)
	buf := make([]byte, len(prefixBytes)+8)
	offset := copy(buf, prefixBytes)
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// makePartialCategoryKey generates a partial key for category scans.
func makePartialCategoryKey(category core.Category) []byte {
	return []byte(entryCategoryPrefix + ":" + string(category) + ":")
}

// makeDimensionKey generates the key holding the corpus's fixed embedding
// dimension, recorded when the first embedded entry is stored.
func makeDimensionKey() []byte {
	return []byte(entryMetaDimension)
}
