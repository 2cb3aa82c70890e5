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


package conversation

import (
	"fmt"

	"github.com/poiesic/tabula/core"
)

var (
	// ErrIndexRequired is returned when a vector index is not provided.
	ErrIndexRequired = fmt.Errorf("%w: vector index required", core.ErrConfiguration)

	// ErrClientRequired is returned when an embedding client is not provided.
	ErrClientRequired = fmt.Errorf("%w: embedding client required", core.ErrConfiguration)

	// ErrCompleterRequired is returned when a completer is not provided.
	ErrCompleterRequired = fmt.Errorf("%w: completer required", core.ErrConfiguration)

	// ErrInvalidTopK is returned for a retrieval depth below one.
	ErrInvalidTopK = fmt.Errorf("%w: top k must be positive", core.ErrConfiguration)
)
