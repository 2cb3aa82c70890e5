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


// Package ai provides abstractions for the AI services used by tabula.
//
// The package defines the two model collaborators the rest of the module
// depends on:
//
//   - Embedder: turns text into vectors for the index
//   - Completer: produces the answer for a chat message list
//   - AIProvider: aggregates both for initialization and shutdown
//
// # Implementation Packages
//
//   - ai/langchain: adapters over langchaingo embedders and models, plus
//     provider error classification
//   - ai/openai: OpenAI and OpenAI-compatible servers
//   - ai/ollama: native Ollama servers
//   - ai/mock: test doubles for unit testing without external services
//
// Public constructors in the implementation packages return interface types.
// The mock constructors return concrete types so tests can inspect call
// counts and inject failures.
//
// # Usage Example
//
//	cfg := ai.NewConfig(ai.WithProvider(ai.ProviderOllama), ai.WithHost("http://localhost:11434"))
//	provider, err := ollama.NewProvider(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer provider.Close()
//
//	vec, err := provider.Embedder().EmbedText(ctx, "district: North")
//	answer, err := provider.Completer().Complete(ctx, []ai.Message{ai.HumanMessage("hello")})
package ai
