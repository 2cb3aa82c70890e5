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
	"errors"
	"fmt"
)

// Domain validation errors
var (
	// ErrInvalidFragment indicates a Fragment failed validation.
	ErrInvalidFragment = errors.New("invalid fragment")

	// ErrInvalidVector indicates an embedding vector failed validation.
	ErrInvalidVector = errors.New("invalid vector")

	// ErrEmptyContent indicates the Content field is empty.
	ErrEmptyContent = errors.New("content cannot be empty")

	// ErrEmptySourceFile indicates fragment metadata has no source file.
	ErrEmptySourceFile = errors.New("source file cannot be empty")

	// ErrNegativeIndex indicates a negative row, chunk or split index.
	ErrNegativeIndex = errors.New("index cannot be negative")

	// ErrInvalidQuery indicates an empty or malformed user query.
	ErrInvalidQuery = errors.New("invalid query")
)

// Provider and pipeline errors
var (
	// ErrTransientProvider indicates a retryable provider failure such as
	// rate limiting, timeouts or network errors.
	ErrTransientProvider = errors.New("transient provider error")

	// ErrProvider indicates a provider failure that retrying will not fix,
	// for example rejected credentials or malformed input.
	ErrProvider = errors.New("provider error")

	// ErrConfiguration indicates invalid configuration or input that makes
	// the operation impossible. It is never retried.
	ErrConfiguration = errors.New("configuration error")
)

// Transient marks err as retryable. A nil err stays nil.
func Transient(err error) error {
	if err == nil || errors.Is(err, ErrTransientProvider) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrTransientProvider, err)
}

// Permanent marks err as a non-retryable provider failure. A nil err stays nil.
func Permanent(err error) error {
	if err == nil || errors.Is(err, ErrProvider) || errors.Is(err, ErrConfiguration) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrProvider, err)
}

// IsTransient reports whether err is worth retrying.
func IsTransient(err error) bool {
	return errors.Is(err, ErrTransientProvider)
}

// PartialIngestionError reports a file that failed after some of its
// fragments were already merged into the index.
type PartialIngestionError struct {
	File     string
	Ingested int // fragments merged before the failure
	Err      error
}

func (e *PartialIngestionError) Error() string {
	return fmt.Sprintf("ingestion of %s stopped after %d fragments: %v", e.File, e.Ingested, e.Err)
}

func (e *PartialIngestionError) Unwrap() error {
	return e.Err
}
