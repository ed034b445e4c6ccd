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

import "strings"

// Path is an ordered sequence of path components. The empty sequence
// denotes the root. Paths are values: callers must not mutate a Path
// returned from this package in place.
type Path []string

// Root is the empty path, naming the filesystem root.
var Root = Path(nil)

// String renders p for logging, e.g. "/a/b" or "/" for the root.
func (p Path) String() string {
	if len(p) == 0 {
		return "/"
	}
	return "/" + strings.Join(p, "/")
}

// Equal reports whether p and q name the same path.
func (p Path) Equal(q Path) bool {
	return Compare(p, q) == 0
}

// Child returns a new path with name appended.
//
// REQUIRES: name != ""
func (p Path) Child(name string) Path {
	out := make(Path, len(p)+1)
	copy(out, p)
	out[len(p)] = name
	return out
}

// Last returns the final component of p.
//
// REQUIRES: len(p) > 0
func (p Path) Last() string {
	return p[len(p)-1]
}

// Parent returns p with its last component removed.
//
// REQUIRES: len(p) > 0
func (p Path) Parent() Path {
	return p[:len(p)-1]
}

// Clone returns an independent copy of p.
func (p Path) Clone() Path {
	out := make(Path, len(p))
	copy(out, p)
	return out
}

// Compare implements the total order over paths: lexicographic
// component-by-component comparison, with a shared prefix broken by length
// (the shorter path sorts first). Returns a negative number, zero, or a
// positive number as p is less than, equal to, or greater than q.
func Compare(p, q Path) int {
	n := len(p)
	if len(q) < n {
		n = len(q)
	}
	for i := 0; i < n; i++ {
		if p[i] != q[i] {
			if p[i] < q[i] {
				return -1
			}
			return 1
		}
	}
	return len(p) - len(q)
}

// IsChild reports whether child is a strict descendant of parent at any
// depth (parent is a proper prefix of child).
func IsChild(parent, child Path) bool {
	if len(child) <= len(parent) {
		return false
	}
	for i := range parent {
		if parent[i] != child[i] {
			return false
		}
	}
	return true
}

// IsDirectChild reports whether child is an immediate child of parent.
func IsDirectChild(parent, child Path) bool {
	return len(child) == len(parent)+1 && IsChild(parent, child)
}

// RelativeTo returns the path of child relative to parent.
//
// REQUIRES: IsChild(parent, child)
func RelativeTo(parent, child Path) Path {
	rel := make(Path, len(child)-len(parent))
	copy(rel, child[len(parent):])
	return rel
}

// Join appends rel's components onto the end of base, returning a new path.
func Join(base, rel Path) Path {
	out := make(Path, 0, len(base)+len(rel))
	out = append(out, base...)
	out = append(out, rel...)
	return out
}
