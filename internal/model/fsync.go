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

// This file implements C5, the fsync/crash engine: per-inode fsync, the
// automatic metadata fsync every successful operation performs, and
// lose_unfsynced_writes (modelled crash + recovery). Has no teacher
// analogue — GCS has no local page cache to lose — and is built directly
// from spec.md §4.5 and invariant I4.

// fsyncInode promotes inode n's cached contents to disk, or, if the cached
// link_count is zero, destroys it in both layers. Grounded on
// fs/inode/lookup_count.go's destroy-at-zero idiom (lookupCount.Dec).
func (s *State) fsyncInode(n InodeNumber) {
	cached, ok := s.cache.inodes.get(n)
	if !ok {
		return
	}
	if cached.LinkCount == 0 {
		s.cache.inodes.delete(n)
		s.disk.inodes.delete(n)
		return
	}
	s.disk.inodes.put(n, cached.clone())
	s.cache.inodes.delete(n)
}

// fsyncMetadata promotes every cache entry into disk: a non-tombstone cache
// entry replaces any disk entry at its path; a tombstone removes the disk
// entry at its path. Inodes are untouched. Every successful state-mutating
// operation performs this automatically (§4.4), modelling lazyfs's
// write-through-metadata, write-back-data policy.
func (s *State) fsyncMetadata() {
	paths := append([]Path(nil), s.cache.entries.paths...)
	for _, p := range paths {
		e, ok := s.cache.entries.get(p)
		if !ok {
			continue
		}
		if e.IsTombstone() {
			s.disk.entries.delete(p)
		} else {
			s.disk.entries.put(p, e)
		}
		s.cache.entries.delete(p)
	}
}

// loseUnfsyncedWrites discards the entire cache layer, then heals disk to
// satisfy I1: any disk Link whose inode no longer exists on disk gets a
// fresh empty inode, and every inode's link_count is rebuilt from the
// multiset of disk-link references, with zero-count inodes removed (I4).
func (s *State) loseUnfsyncedWrites() {
	s.cache = newLayer()

	counts := map[InodeNumber]uint32{}
	for _, p := range s.disk.entries.paths {
		e, ok := s.disk.entries.get(p)
		if !ok || !e.IsLink() {
			continue
		}
		if _, ok := s.disk.inodes.get(e.Inode); !ok {
			s.disk.inodes.put(e.Inode, Inode{})
		}
		counts[e.Inode]++
	}

	for n := range s.disk.inodes.byNumber {
		if counts[n] == 0 {
			s.disk.inodes.delete(n)
			continue
		}
	}
	for n, c := range counts {
		in, _ := s.disk.inodes.get(n)
		in.LinkCount = c
		s.disk.inodes.put(n, in)
	}
}
