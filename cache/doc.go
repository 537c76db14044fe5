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


// Package cache provides the bounded caches behind the retrieval engine.
//
// Two independent least-recently-used caches are bundled in a Layer: an
// embedding cache keyed by normalized input text, and a result cache keyed by
// (query, options). Capacity is fixed at construction; a cache never exceeds
// it, and inserting beyond capacity evicts the least-recently-accessed entry
// first. Both Get and Set count as an access.
//
// Layers are explicitly constructed and injected rather than shared through
// package-level state, so tests can run against isolated instances.
package cache
