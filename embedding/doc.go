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


// Package embedding wraps an ai.Embedder with batching, bounded concurrency
// and retry.
//
// A call to Client.Embed is split into provider requests of at most
// MaxRequestSize texts. Requests run on an ants worker pool, each under its
// own retry budget, and the results are reassembled in input order. Every
// response is checked for length and dimensionality before it is accepted.
//
// # Usage
//
//	client, err := embedding.NewClient(provider.Embedder(),
//	    embedding.WithRetryPolicy(retry.DefaultPolicy()),
//	    embedding.WithMaxRequestSize(100),
//	)
//	if err != nil {
//	    return err
//	}
//	defer client.Release()
//
//	vectors, err := client.Embed(ctx, texts)
package embedding
