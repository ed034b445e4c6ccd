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

// This file implements C3, the entry store: cache-over-disk overlay lookup
// of path -> entry, with tombstones and directory traversal. Grounded on
// fs/inode/dir.go's DeleteChildFile/CreateChildFile (parent-must-be-a-
// directory checks) and ReadEntries (flat-map child scanning).

// lookupEntry resolves path through the overlay with no side effects: cache
// wins when present (including a Tombstone, which resolves to "absent");
// otherwise disk is consulted. This is the (absent, tombstoned-in-cache,
// present) three-way distinction spec.md §9 calls out explicitly.
func (s *State) lookupEntry(p Path) (Entry, bool) {
	if e, ok := s.cache.entries.get(p); ok {
		if e.IsTombstone() {
			return Entry{}, false
		}
		return e, true
	}
	if e, ok := s.disk.entries.get(p); ok {
		return e, true
	}
	return Entry{}, false
}

// getEntry is lookupEntry plus C3's additional contract: on a miss, the
// parent must resolve to a directory, or the lookup fails with NotDir
// instead of merely reporting absence.
func (s *State) getEntry(p Path) (Entry, bool, error) {
	if e, ok := s.lookupEntry(p); ok {
		return e, true, nil
	}
	if len(p) > 0 {
		parent, ok := s.lookupEntry(p.Parent())
		if ok && !parent.IsDir() {
			return Entry{}, false, NewError(NotDir, p.Parent())
		}
	}
	return Entry{}, false, nil
}

// putEntry sets the cache entry at p. A nil entry stores a Tombstone. The
// parent of p must exist and be a directory in the overlay (DoesNotExist /
// NotDir otherwise). Link-count bookkeeping: decrementing the old resolved
// entry's inode if it was a Link, incrementing the new entry's inode if it
// is one. If the entry being replaced is a Dir and the new entry is not,
// every descendant of the old directory (in either layer) is stamped with
// a Tombstone, per §4.3.
func (s *State) putEntry(p Path, newEntry *Entry) error {
	if len(p) > 0 {
		parentEntry, ok := s.lookupEntry(p.Parent())
		if !ok {
			return NewError(DoesNotExist, p.Parent())
		}
		if !parentEntry.IsDir() {
			return NewError(NotDir, p.Parent())
		}
	}

	old, hadOld := s.lookupEntry(p)

	if hadOld && old.IsLink() {
		if err := s.adjustLinkCount(old.Inode, -1, false); err != nil {
			return err
		}
	}
	if newEntry != nil && newEntry.IsLink() {
		if err := s.adjustLinkCount(newEntry.Inode, 1, true); err != nil {
			return err
		}
	}

	if newEntry == nil {
		s.cache.entries.put(p, TombstoneEntry())
	} else {
		s.cache.entries.put(p, *newEntry)
	}

	replacingDirWithNonDir := hadOld && old.IsDir() && (newEntry == nil || !newEntry.IsDir())
	if replacingDirWithNonDir {
		for _, desc := range s.descendantsOf(p) {
			e, _ := s.lookupEntry(desc)
			if e.IsLink() {
				_ = s.adjustLinkCount(e.Inode, -1, false)
			}
			s.cache.entries.put(desc, TombstoneEntry())
		}
	}

	return nil
}

// descendantsOf returns every path in either layer that is a strict
// descendant of p, deduplicated and sorted. disk.entries.descendants and
// cache.entries.descendants are each already sorted, so this is a
// straight merge rather than a dedup-through-a-map that would leave the
// result in nondeterministic order.
func (s *State) descendantsOf(p Path) []Path {
	disk := s.disk.entries.descendants(p)
	cache := s.cache.entries.descendants(p)

	out := make([]Path, 0, len(disk)+len(cache))
	i, j := 0, 0
	for i < len(disk) && j < len(cache) {
		switch c := Compare(disk[i], cache[j]); {
		case c < 0:
			out = append(out, disk[i])
			i++
		case c > 0:
			out = append(out, cache[j])
			j++
		default:
			out = append(out, disk[i])
			i++
			j++
		}
	}
	out = append(out, disk[i:]...)
	out = append(out, cache[j:]...)
	return out
}

// children returns the union of disk descendants and non-tombstoned cache
// descendants of p that are direct children, minus tombstoned paths.
func (s *State) children(p Path) []Path {
	seen := map[string]bool{}
	var out []Path
	add := func(d Path) {
		if !IsDirectChild(p, d) {
			return
		}
		key := pathKey(d)
		if seen[key] {
			return
		}
		if e, ok := s.lookupEntry(d); ok {
			_ = e
			seen[key] = true
			out = append(out, d)
		}
	}
	for _, d := range s.disk.entries.descendants(p) {
		add(d)
	}
	for _, d := range s.cache.entries.descendants(p) {
		add(d)
	}
	return out
}
