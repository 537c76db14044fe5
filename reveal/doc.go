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

// Package reveal drives the progressive "reasoning" display that runs while
// a real answer is generated in the background.
//
// A Controller paces reasoning steps on timers and races them against the
// asynchronous answer: it fast-forwards when the answer arrives early, waits
// when it arrives late, and holds the final step back until the answer is
// actually ready. Every session finalizes exactly once; a thirty second
// safety timeout guarantees forward progress even when the generation call
// stalls.
package reveal
