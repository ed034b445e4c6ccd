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

// Package shrink implements rose-tree shrinking of a failing operation
// history down to a locally minimal one, by binary bisection and
// single-operation deletion. There's no teacher analogue for this; it's
// built directly from spec.md §4.8 (the candidate-stack design note in §9
// rules out materializing the whole lazy tree up front, since a history is
// ~1000 ops and the tree would be exponential).
package shrink

import "github.com/fscheck/fscheck/internal/model"

// Predicate reports whether a candidate history still reproduces the
// failure being shrunk. Building a Predicate that accounts for SUT flake
// (the scour parameter) is Scour's job.
type Predicate func(history []model.Op) bool

// Children returns h's candidates per §4.8: for |h| >= 4, the two halves of
// a binary bisection, then h with each single index removed; for |h| < 4,
// only the deletion candidates. The empty history has no children.
func Children(h []model.Op) [][]model.Op {
	n := len(h)
	if n == 0 {
		return nil
	}

	var out [][]model.Op
	if n >= 4 {
		mid := n / 2
		out = append(out, cloneSlice(h[:mid]), cloneSlice(h[mid:]))
	}
	for i := 0; i < n; i++ {
		c := make([]model.Op, 0, n-1)
		c = append(c, h[:i]...)
		c = append(c, h[i+1:]...)
		out = append(out, c)
	}
	return out
}

func cloneSlice(h []model.Op) []model.Op {
	return append([]model.Op(nil), h...)
}

// Shrink repeatedly replaces h with the first still-failing child it finds,
// per §4.8's "try the first child; if it still fails, recurse into its
// children; if it passes, try the next child", until no child of the
// current history fails. The result is locally minimal under the
// subvector order: every child of the returned history passes.
//
// Because Children always returns candidates no longer than h (bisection
// halves and single-element deletions), this process can never enlarge the
// history — the monotonicity property §8 calls out.
func Shrink(h []model.Op, failing Predicate) []model.Op {
	for {
		next, ok := shrinkOnce(h, failing)
		if !ok {
			return h
		}
		h = next
	}
}

func shrinkOnce(h []model.Op, failing Predicate) ([]model.Op, bool) {
	for _, c := range Children(h) {
		if failing(c) {
			return c, true
		}
	}
	return nil, false
}

// Scour wraps a single-execution predicate (true means "this run failed")
// into the §4.8 nondeterminism-tolerant rule: a history counts as failing
// if any of k re-executions fails, and passing only if all k pass. k <= 1
// behaves like run unwrapped.
func Scour(k int, run func(history []model.Op) bool) Predicate {
	if k < 1 {
		k = 1
	}
	return func(h []model.Op) bool {
		for i := 0; i < k; i++ {
			if run(h) {
				return true
			}
		}
		return false
	}
}
