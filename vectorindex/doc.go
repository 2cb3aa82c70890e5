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


// Package vectorindex holds fragments with their embeddings and answers
// nearest-neighbor queries by cosine distance.
//
// An Index is built from parallel slices of vectors and fragments, grown by
// merging, and persisted to a BadgerDB directory together with a manifest
// naming the embedding model. Entries keep insertion order; a fragment whose
// identity (core.Fragment.Key) is already present replaces the existing
// entry in place.
//
// Search is exact: every entry is scored. Ties are broken by insertion
// order so results are deterministic.
package vectorindex
