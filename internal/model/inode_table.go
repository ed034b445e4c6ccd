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

// This file implements C2 (the inode table) as methods on *State: alloc,
// lookup (cache-then-disk), update, and link-count adjustment. fsync(n) —
// listed in both C2 and C5 by spec.md, since it is one operation viewed
// from two components — lives in fsync.go alongside the rest of the crash
// engine.

// allocInode allocates a fresh inode number, places initial in the cache
// layer with the given starting contents, and returns the number.
func (s *State) allocInode(initial Inode) InodeNumber {
	n := s.NextInodeNumber
	s.NextInodeNumber++
	s.cache.inodes.put(n, initial)
	return n
}

// lookupInode resolves n by consulting the cache layer first, then disk.
func (s *State) lookupInode(n InodeNumber) (Inode, bool) {
	if in, ok := s.cache.inodes.get(n); ok {
		return in, true
	}
	return s.disk.inodes.get(n)
}

// updateInode applies f to the current contents of n (copy-on-write from
// disk into cache if n is only present on disk) and stores the result in
// the cache layer.
//
// REQUIRES: n exists in cache or disk (NoSuchInode otherwise).
func (s *State) updateInode(n InodeNumber, f func(Inode) Inode) error {
	cur, ok := s.lookupInode(n)
	if !ok {
		return NewError(NoSuchInode, nil)
	}
	s.cache.inodes.put(n, f(cur))
	return nil
}

// adjustLinkCount adds delta to n's link_count in the cache layer. If n is
// missing everywhere and strict is true, it fails with NoSuchInode; if
// strict is false, the adjustment is silently ignored (used when §3's
// dangling-link healing has already destroyed the inode).
func (s *State) adjustLinkCount(n InodeNumber, delta int32, strict bool) error {
	cur, ok := s.lookupInode(n)
	if !ok {
		if strict {
			return NewError(NoSuchInode, nil)
		}
		return nil
	}
	next := int32(cur.LinkCount) + delta
	if next < 0 {
		next = 0
	}
	cur.LinkCount = uint32(next)
	s.cache.inodes.put(n, cur)
	return nil
}
