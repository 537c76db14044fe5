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


// Package storage provides the storage abstraction layer for the knowledge corpus.
//
// This package defines the repository interface that decouples storage
// implementation from the retrieval engine. Retrieval only ever reads a
// snapshot of entries per call; creation and editing go through the ingest
// pipeline and the re-embed update.
//
// # Constructor Return Type Pattern
//
// Public constructors return the storage.KnowledgeRepository interface to
// enforce abstraction and enable alternative backends:
//
//	repo, err := badger.NewKnowledgeRepository(backend)
//
// # Usage
//
//	backend, err := badger.OpenBackend("/path/to/db", false)
//	repo, err := badger.NewKnowledgeRepository(backend)
//	defer repo.Close()
//
// Use in tests with in-memory storage:
//
//	repo, backend, err := badger.NewMemoryRepository()
//	defer func() { repo.Close(); backend.Close() }()
//
// # Thread Safety
//
// All repository implementations must be thread-safe and support
// concurrent access from multiple goroutines.
package storage
