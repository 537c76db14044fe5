// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package retrieval implements hybrid knowledge retrieval: dense vector
// similarity and BM25-style keyword matching, blended into a single ranked
// result list.
//
// The two search paths run concurrently and fail independently. A path that
// errors or panics drops out of the blend; if both fail the caller gets an
// empty list rather than an error, so retrieval never blocks the surrounding
// conversation flow.
package retrieval
