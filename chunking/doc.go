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


// Package chunking splits text into bounded, overlapping fragments.
//
// The splitter works through a priority list of separators (paragraph,
// line, sentence, word) and falls back to cutting at character level. It
// never trims or drops content: every fragment is a contiguous substring of
// the input, and consecutive fragments either touch or overlap. Reassemble
// strips the overlap again and returns the original text.
//
// Sizes are measured in characters (runes), not bytes.
//
//	s, err := chunking.NewSplitter(chunking.WithChunkSize(2000), chunking.WithChunkOverlap(200))
//	spans := s.SplitSpans(rowText)
package chunking
