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

package engine

import (
	"github.com/google/uuid"
	"github.com/jacobsa/syncutil"

	"github.com/fscheck/fscheck/internal/check"
	"github.com/fscheck/fscheck/internal/history"
	"github.com/fscheck/fscheck/internal/model"
)

// Result is one trial's outcome. Divergence is nil for a trial that found
// no failure; Minimal and FailingEvents are only populated once a failing
// trial has been run through the shrinker.
type Result struct {
	RunID      uuid.UUID
	TrialIndex int
	Seed       int64
	Divergence *check.Divergence

	// Minimal is the shrunk operation sequence that still reproduces the
	// divergence, and FailingEvents its corresponding actual history.
	Minimal       []model.Op
	FailingEvents []history.Event
}

// ResultTable is the engine's in-memory record of every trial result,
// written by the trial loop and read concurrently by the results server
// (SPEC_FULL.md §C.2). Grounded on fs/inode/dir.go's
// syncutil.NewInvariantMutex(d.checkInvariants) idiom: a mutex that
// validates a structural invariant on every Lock/Unlock cycle when
// invariant checking is enabled, rather than a bare sync.Mutex.
type ResultTable struct {
	mu      syncutil.InvariantMutex
	results []Result
}

// NewResultTable returns an empty table with invariant checking wired up.
func NewResultTable() *ResultTable {
	t := &ResultTable{}
	t.mu = syncutil.NewInvariantMutex(t.checkInvariants)
	return t
}

func (t *ResultTable) checkInvariants() {
	seen := make(map[int]bool, len(t.results))
	for _, r := range t.results {
		if r.TrialIndex < 0 {
			panic("engine: result table contains a negative trial index")
		}
		if seen[r.TrialIndex] {
			panic("engine: result table contains a duplicate trial index")
		}
		seen[r.TrialIndex] = true
	}
}

// Add appends r to the table.
func (t *ResultTable) Add(r Result) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.results = append(t.results, r)
}

// Snapshot returns a copy of every result recorded so far, safe to read
// without further synchronization.
func (t *ResultTable) Snapshot() []Result {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Result, len(t.results))
	copy(out, t.results)
	return out
}

// Failures filters Snapshot down to trials that found a divergence.
func (t *ResultTable) Failures() []Result {
	var out []Result
	for _, r := range t.Snapshot() {
		if r.Divergence != nil {
			out = append(out, r)
		}
	}
	return out
}
