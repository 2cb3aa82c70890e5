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


// Package langchain adapts langchaingo embedders and chat models to the
// ai.Embedder and ai.Completer interfaces.
//
// Every error leaving this package is classified: rate limits, timeouts,
// 408/429/5xx responses and network failures wrap core.ErrTransientProvider
// so the retry policy may resend the request; everything else wraps
// core.ErrProvider.
package langchain
