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


package ingestion

import (
	"fmt"

	"github.com/poiesic/tabula/core"
)

var (
	// ErrClientRequired is returned when an embedding client is not provided.
	ErrClientRequired = fmt.Errorf("%w: embedding client required", core.ErrConfiguration)

	// ErrSplitterRequired is returned when a chunk splitter is not provided.
	ErrSplitterRequired = fmt.Errorf("%w: chunk splitter required", core.ErrConfiguration)

	// ErrNoFiles is returned when Ingest is called without any paths.
	ErrNoFiles = fmt.Errorf("%w: no input files", core.ErrConfiguration)

	// ErrInvalidBatchSize is returned for a batch size below one.
	ErrInvalidBatchSize = fmt.Errorf("%w: batch size must be positive", core.ErrConfiguration)

	// ErrInvalidReadChunkSize is returned for a read chunk size below one.
	ErrInvalidReadChunkSize = fmt.Errorf("%w: read chunk size must be positive", core.ErrConfiguration)

	// ErrInvalidCooldown is returned for a negative cooldown.
	ErrInvalidCooldown = fmt.Errorf("%w: cooldown cannot be negative", core.ErrConfiguration)
)
