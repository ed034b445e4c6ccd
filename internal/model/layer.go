// Copyright 2026 The fscheck Authors.
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

package model

// layer is one of {disk, cache}: its own inode table and its own entry map.
// The cache layer overlays the disk layer (empty slot => consult disk;
// Tombstone => absent; otherwise => cached value), grounded on
// fs/inode/dir.go's type-cache-over-GCS-listing overlay
// (filterMissingChildDirs consults a local cache before the authoritative
// GCS listing, the same shape as cache-over-disk here).
type layer struct {
	inodes  *inodeTable
	entries *entryMap
}

func newLayer() *layer {
	return &layer{inodes: newInodeTable(), entries: newEntryMap()}
}

func (l *layer) clone() *layer {
	return &layer{inodes: l.inodes.clone(), entries: l.entries.clone()}
}
