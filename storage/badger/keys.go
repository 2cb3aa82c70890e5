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


package badger

import (
	"encoding/binary"
	"fmt"
)

const (
	indexGenerationKey  = "idxgen"
	indexManifestPrefix = "idxman"
	indexEntryPrefix    = "idxent"
)

// makeManifestKey generates the manifest key of a snapshot generation.
// The trailing separator keeps it usable as a prefix for DropPrefix.
func makeManifestKey(generation uint64) []byte {
	return []byte(fmt.Sprintf("%s:%d:", indexManifestPrefix, generation))
}

// makeEntryPrefix generates the common prefix of a generation's entries.
// Format: prefix:generation:
func makeEntryPrefix(generation uint64) []byte {
	return []byte(fmt.Sprintf("%s:%d:", indexEntryPrefix, generation))
}

// makeEntryKey generates the key of one entry.
// Format: prefix:generation:position
func makeEntryKey(generation uint64, position int) []byte {
	prefix := makeEntryPrefix(generation)
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	// Write in BigEndian order so lexicographic sort matches insertion order
	binary.BigEndian.PutUint64(buf[offset:], uint64(position))
	return buf
}

func encodeGeneration(generation uint64) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, generation)
	return buf
}

func decodeGeneration(data []byte) (uint64, error) {
	if len(data) != 8 {
		return 0, fmt.Errorf("generation is %d bytes, want 8", len(data))
	}
	return binary.BigEndian.Uint64(data), nil
}
