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


// Package storage provides the persistence abstraction for vector index
// snapshots.
//
// This package defines the repository interface that decouples the on-disk
// format from the index itself, together with the mus-go binary codecs for
// manifests and entries. The BadgerDB implementation lives in storage/badger.
//
// # Snapshots
//
// A snapshot is a manifest plus the ordered list of entries of one index.
// Saving a snapshot replaces the previous one; readers observe either the
// old or the new snapshot, never a mix.
//
// # Usage
//
//	repo, err := badger.NewIndexRepository(backend)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer repo.Close()
//
//	err = repo.SaveSnapshot(ctx, manifest, entries)
//
// Use in tests with in-memory storage:
//
//	repo, backend, err := badger.NewMemoryIndexRepository()
//
// # Context Support
//
// All repository methods accept context.Context; long iterations check it
// between items.
package storage
