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

// Package engine implements C9, the loop that drives the generator, the
// checker, and the shrinker against a system under test, and collects
// results. Grounded on spec.md §4.9 for the propagation policy and on
// §2's "C9 runs it through C7... and against the external SUT. If the SUT
// trace diverges... C8 produces smaller candidate histories" data flow.
package engine

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/fscheck/fscheck/internal/check"
	"github.com/fscheck/fscheck/internal/genhist"
	"github.com/fscheck/fscheck/internal/history"
	"github.com/fscheck/fscheck/internal/model"
	"github.com/fscheck/fscheck/internal/shrink"
	"github.com/fscheck/fscheck/internal/sut"
)

// Config controls one quickcheck run: how many trials to attempt, how big
// each generated history is, and how hard to work to confirm a failure
// before trusting it.
type Config struct {
	Trials              int // default 200, per §4.9
	HistoryLength       int // per-trial history length, §4.6
	MaxDataBytes        int
	Seed                int64 // base seed; trial i uses Seed+int64(i)
	Scour               int   // re-execution count for flaky-SUT tolerance, §4.8
	LoseUnfsyncedWrites bool
	Concurrency         int
	TimeLimit           time.Duration // 0 means no limit

	// CheckInvariants and ExitOnInvariantViolation are forwarded to
	// check.Options on every trial; see cfg.Debug.ExitOnInvariantViolation.
	CheckInvariants          bool
	ExitOnInvariantViolation bool
}

// DefaultConfig returns the engine's stated defaults (§4.9, §4.6, §4.8).
func DefaultConfig() Config {
	return Config{
		Trials:        200,
		HistoryLength: 1000,
		MaxDataBytes:  4,
		Scour:         1,
		Concurrency:   1,
	}
}

// Engine owns a SUT factory (a fresh SUT per trial, since each trial needs
// an isolated working directory/mount) and the shared result table.
type Engine struct {
	cfg    Config
	newSUT func(trialIndex int) sut.SUT
	log    *slog.Logger
	Results *ResultTable
}

// New returns an Engine that constructs a fresh SUT per trial via newSUT.
func New(cfg Config, newSUT func(trialIndex int) sut.SUT, log *slog.Logger) *Engine {
	if log == nil {
		log = slog.Default()
	}
	return &Engine{cfg: cfg, newSUT: newSUT, log: log, Results: NewResultTable()}
}

// Run executes trials, each generating a history, running it against the
// SUT, and checking it against the model, until one diverges, ctx is
// cancelled, TimeLimit elapses, or cfg.Trials trials have passed without a
// divergence. Per §4.9: "on first failing trial, enter the shrinker until
// a locally minimal failing history is found" — Run stops dispatching new
// trials the moment one diverges, shrinks that single failure, and
// returns; it never lets the worker pool run every trial regardless of
// outcome.
func (e *Engine) Run(ctx context.Context) error {
	if e.cfg.TimeLimit > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.cfg.TimeLimit)
		defer cancel()
	}

	concurrency := e.cfg.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}

	// dispatchCtx governs only which trial indices still get handed out;
	// it is cancelled as soon as a trial diverges, but runTrial/shrinkFailure
	// keep using ctx so an in-progress shrink isn't aborted by that signal.
	dispatchCtx, stopDispatch := context.WithCancel(ctx)
	defer stopDispatch()

	var found atomic.Bool

	trials := make(chan int)
	go func() {
		defer close(trials)
		for i := 0; i < e.cfg.Trials; i++ {
			select {
			case trials <- i:
			case <-dispatchCtx.Done():
				return
			}
		}
	}()

	var wg sync.WaitGroup
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range trials {
				if dispatchCtx.Err() != nil {
					return
				}
				if e.runTrial(ctx, i, &found) {
					stopDispatch()
				}
			}
		}()
	}
	wg.Wait()

	return ctx.Err()
}

// runTrial runs one trial and records its Result. It returns true only if
// this trial was the first to diverge (found transitions false->true),
// in which case it has also shrunk the failure before returning; the
// caller should stop dispatching further trials when it returns true.
// Trials that diverge after another trial already claimed found are
// logged and discarded rather than shrunk, so Results never accumulates
// more than one failure even when concurrency > 1.
func (e *Engine) runTrial(ctx context.Context, trialIndex int, found *atomic.Bool) bool {
	seed := e.cfg.Seed + int64(trialIndex)
	runID := uuid.New()

	genCfg := genhist.Config{
		Seed:                seed,
		Length:              e.cfg.HistoryLength,
		LoseUnfsyncedWrites: e.cfg.LoseUnfsyncedWrites,
		MaxDataBytes:        e.cfg.MaxDataBytes,
	}
	invocations := genhist.New(genCfg).Generate()
	ops := make([]model.Op, len(invocations))
	for i, inv := range invocations {
		ops[i] = inv.Op
	}

	events, divergence := e.runAndCheck(ctx, trialIndex, ops)
	if divergence == nil {
		e.Results.Add(Result{RunID: runID, TrialIndex: trialIndex, Seed: seed})
		return false
	}

	if !found.CompareAndSwap(false, true) {
		e.log.Warn("trial diverged after another trial already claimed the failure; discarding", "trial", trialIndex, "run_id", runID)
		return false
	}

	e.log.Warn("trial found a divergence; shrinking", "trial", trialIndex, "run_id", runID, "index", divergence.Index)

	minimal, minimalEvents := e.shrinkFailure(ctx, trialIndex, ops)
	if minimalEvents == nil {
		// No shrink candidate failed, so the original history is the
		// minimal one and its own run's events are the failing events.
		minimalEvents = events
	}
	e.Results.Add(Result{
		RunID:         runID,
		TrialIndex:    trialIndex,
		Seed:          seed,
		Divergence:    divergence,
		Minimal:       minimal,
		FailingEvents: minimalEvents,
	})
	return true
}

// runAndCheck executes ops against a fresh SUT and replays the resulting
// actual history through the model, returning the first divergence found
// (nil if none).
func (e *Engine) runAndCheck(ctx context.Context, trialIndex int, ops []model.Op) ([]history.Event, *check.Divergence) {
	s := e.newSUT(trialIndex)
	events, err := Execute(ctx, s, ops)
	if err != nil {
		e.log.Error("SUT setup/teardown failed", "trial", trialIndex, "error", err)
		return nil, nil
	}
	result := check.RunWithOptions(nil, events, check.Options{
		CheckInvariants:          e.cfg.CheckInvariants,
		ExitOnInvariantViolation: e.cfg.ExitOnInvariantViolation,
	})
	if result.Valid {
		return events, nil
	}
	return events, result.Divergence
}

// shrinkFailure runs the §4.8 shrinker: a candidate history is "failing"
// if any of scour-many re-executions against a fresh SUT diverges from the
// model, and passing only if every one of them matches it.
func (e *Engine) shrinkFailure(ctx context.Context, trialIndex int, ops []model.Op) ([]model.Op, []history.Event) {
	var lastEvents []history.Event

	failing := shrink.Scour(e.cfg.Scour, func(candidate []model.Op) bool {
		events, divergence := e.runAndCheck(ctx, trialIndex, candidate)
		if divergence != nil {
			lastEvents = events
		}
		return divergence != nil
	})

	minimal := shrink.Shrink(ops, failing)
	return minimal, lastEvents
}
