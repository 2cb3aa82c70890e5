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


package embedding

import (
	"errors"
	"fmt"

	"github.com/poiesic/tabula/core"
)

var (
	// ErrEmbedderRequired is returned when no embedder is supplied.
	ErrEmbedderRequired = fmt.Errorf("%w: embedder required", core.ErrConfiguration)

	// ErrInvalidRequestSize is returned for a request size below 1.
	ErrInvalidRequestSize = fmt.Errorf("%w: max request size must be at least 1", core.ErrConfiguration)

	// ErrInvalidConcurrency is returned for a concurrency below 1.
	ErrInvalidConcurrency = fmt.Errorf("%w: concurrency must be at least 1", core.ErrConfiguration)

	// ErrResultMismatch is returned when a response has the wrong number of vectors.
	ErrResultMismatch = errors.New("embedding result count mismatch")

	// ErrDimensionMismatch is returned when a vector has the wrong length.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
)
