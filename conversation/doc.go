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


// Package conversation answers questions about ingested data in a
// multi-turn session.
//
// For each question the Engine retrieves the nearest fragments from the
// vector index, places their contents in a system message after the analyst
// instruction, replays earlier turns as human and assistant messages and
// asks the completer for an answer. When retrieval finds nothing a fixed
// fallback sentence is returned without calling the completer.
//
// Follow-up questions can optionally be condensed into standalone questions
// before retrieval, so that "and the south district?" retrieves rows about
// the south district rather than the previous topic.
//
// An Engine owns its conversation memory and never modifies the index.
// Memory is guarded by a mutex so a presentation layer may call the engine
// from handler goroutines.
package conversation
