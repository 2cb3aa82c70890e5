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


// Package search retrieves the index fragments most relevant to a query.
//
// The Searcher embeds the query with the same embedding client used at
// ingestion time and runs a nearest-neighbour search over the vector index.
// Hits are ordered by cosine distance, nearest first, with ties kept in
// insertion order.
//
// A SearchMonitor observes each stage. Fragments that contain every
// non-stop word of the query are reported as verbatim hits; this is a
// diagnostic signal only and does not change the ranking.
package search
