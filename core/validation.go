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


package core

import (
	"fmt"
	"math"
)

// ValidateFragment validates a Fragment according to domain rules.
//
// Validation rules:
//   - Content must not be empty
//   - SourceFile must not be empty
//   - RowIndex, ChunkIndex, SplitIndex and SplitOffset must not be negative
func ValidateFragment(fragment *Fragment) error {
	if fragment == nil {
		return fmt.Errorf("%w: fragment is nil", ErrInvalidFragment)
	}

	if fragment.Content == "" {
		return fmt.Errorf("%w: %w", ErrInvalidFragment, ErrEmptyContent)
	}

	md := fragment.Metadata
	if md.SourceFile == "" {
		return fmt.Errorf("%w: %w", ErrInvalidFragment, ErrEmptySourceFile)
	}

	if md.RowIndex < 0 || md.ChunkIndex < 0 || md.SplitIndex < 0 || md.SplitOffset < 0 {
		return fmt.Errorf("%w: %w", ErrInvalidFragment, ErrNegativeIndex)
	}

	return nil
}

// ValidateVector checks that an embedding vector is non-empty and finite.
func ValidateVector(vector []float32) error {
	if len(vector) == 0 {
		return fmt.Errorf("%w: vector is empty", ErrInvalidVector)
	}
	for i, v := range vector {
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return fmt.Errorf("%w: component %d is not finite", ErrInvalidVector, i)
		}
	}
	return nil
}
