// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package core

import "fmt"

// ValidateEntry validates a KnowledgeEntry according to domain rules.
//
// Validation rules:
//   - Title and Content must not be empty
//   - Category must belong to the closed category set
//   - Language must not be empty
//
// NOT validated (populated by the ingest pipeline):
//   - Embedding (can be empty until the entry is embedded; dimensionality is
//     checked by the repository against the corpus's fixed dimension)
//   - ID (0 is valid before content-based assignment)
func ValidateEntry(entry *KnowledgeEntry) error {
	if entry == nil {
		return fmt.Errorf("%w: entry is nil", ErrInvalidEntry)
	}

	if entry.Title == "" {
		return fmt.Errorf("%w: %w", ErrInvalidEntry, ErrEmptyTitle)
	}

	if entry.Content == "" {
		return fmt.Errorf("%w: %w", ErrInvalidEntry, ErrEmptyContent)
	}

	if !ValidCategory(entry.Category) {
		return fmt.Errorf("%w: %w: %q", ErrInvalidEntry, ErrInvalidCategory, entry.Category)
	}

	if entry.Language == "" {
		return fmt.Errorf("%w: %w", ErrInvalidEntry, ErrEmptyLanguage)
	}

	return nil
}

// ValidateEmbeddingDimension checks an embedding against the corpus's fixed
// dimension. A dimension of 0 disables the check (corpus not yet sized).
func ValidateEmbeddingDimension(embedding []float32, dimension int) error {
	if dimension <= 0 || len(embedding) == 0 {
		return nil
	}
	if len(embedding) != dimension {
		return fmt.Errorf("%w: got %d, want %d", ErrDimensionMismatch, len(embedding), dimension)
	}
	return nil
}
