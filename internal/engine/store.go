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
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/fscheck/fscheck/internal/history"
)

// Summary is the on-disk record of one run, read back by the "serve"
// subcommand's results index (SPEC_FULL.md §C.2: "a minimal net/http
// handler listing completed runs (id, outcome, minimal history length)").
type Summary struct {
	RunID         string `json:"run_id"`
	TrialIndex    int    `json:"trial_index"`
	Seed          int64  `json:"seed"`
	Outcome       string `json:"outcome"` // "pass" or "fail"
	MinimalLength int    `json:"minimal_length"`
	Divergence    *DivergenceSummary `json:"divergence,omitempty"`
}

// DivergenceSummary is the serializable subset of check.Divergence a
// results index can render without reconstructing model.State.
type DivergenceSummary struct {
	Index    int    `json:"index"`
	Expected string `json:"expected"`
	Actual   string `json:"actual"`
}

// Save writes r's summary (and, for a failing run, its minimized
// history.edn) under dir/<run-id>/, the layout the serve subcommand reads
// back.
func Save(dir string, r Result) error {
	runDir := filepath.Join(dir, r.RunID.String())
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		return fmt.Errorf("engine: creating run directory %s: %w", runDir, err)
	}

	summary := Summary{
		RunID:         r.RunID.String(),
		TrialIndex:    r.TrialIndex,
		Seed:          r.Seed,
		Outcome:       "pass",
		MinimalLength: len(r.Minimal),
	}
	if r.Divergence != nil {
		summary.Outcome = "fail"
		summary.Divergence = &DivergenceSummary{
			Index:    r.Divergence.Index,
			Expected: fmt.Sprintf("%+v", r.Divergence.Expected),
			Actual:   fmt.Sprintf("%+v", r.Divergence.Actual),
		}
	}

	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return fmt.Errorf("engine: marshalling summary: %w", err)
	}
	if err := os.WriteFile(filepath.Join(runDir, "summary.json"), data, 0o644); err != nil {
		return fmt.Errorf("engine: writing summary.json: %w", err)
	}

	if r.Divergence != nil && len(r.FailingEvents) > 0 {
		f, err := os.Create(filepath.Join(runDir, "history.edn"))
		if err != nil {
			return fmt.Errorf("engine: creating history.edn: %w", err)
		}
		defer f.Close()
		if err := history.WriteLog(f, r.FailingEvents); err != nil {
			return fmt.Errorf("engine: writing history.edn: %w", err)
		}
	}

	return nil
}

// SaveAll calls Save for every result in results, continuing past
// individual failures and returning the first error encountered, if any.
func SaveAll(dir string, results []Result) error {
	var firstErr error
	for _, r := range results {
		if err := Save(dir, r); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// ListSummaries reads back every summary.json under dir, sorted in lexical
// run-id order. Run ids are UUIDv4 and carry no time ordering, so this is
// not the order the runs were written in (SPEC_FULL.md §C.2 only promises
// a listing, not a time-sorted one).
func ListSummaries(dir string) ([]Summary, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("engine: reading results directory %s: %w", dir, err)
	}

	var out []Summary
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, e.Name(), "summary.json"))
		if err != nil {
			continue // not a run directory; skip
		}
		var s Summary
		if err := json.Unmarshal(data, &s); err != nil {
			continue
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RunID < out[j].RunID })
	return out, nil
}
