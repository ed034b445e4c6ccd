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

// Package check implements the replay checker: it walks an actual history
// (the events a SUT run produced) through the model and reports the
// earliest index at which the two disagree. Grounded directly on spec.md's
// §4.7 replay algorithm; there's no teacher analogue (gcsfuse has no
// concept of a reference model to check an execution against).
package check

import (
	"fmt"
	"reflect"

	"github.com/fscheck/fscheck/internal/history"
	"github.com/fscheck/fscheck/internal/model"
)

// Result is the outcome of checking one actual history against the model.
type Result struct {
	Valid      bool
	Divergence *Divergence
}

// Divergence describes the first point where the model's view of an
// operation's outcome disagrees with what the SUT actually produced.
type Divergence struct {
	Index           int
	TraceUpToIndex  []history.Event
	ModelStateBefore *model.State
	ModelStateAfter  *model.State
	Expected        history.Event // what the model says should have happened
	Actual          history.Event // what the SUT's history says did happen
	// Violation is set instead of Expected when this divergence came from
	// Options.CheckInvariants finding a broken model invariant rather than
	// a model/SUT disagreement.
	Violation error
}

type pending struct {
	op          model.Op
	invokeEvent history.Event
}

// Run replays actual against a fresh model seeded from initial (or
// model.NewState() if initial is nil), invoke by invoke, and returns the
// first divergence found, if any. Equivalent to RunWithOptions with the
// zero Options (no invariant checking).
func Run(initial *model.State, actual []history.Event) Result {
	return RunWithOptions(initial, actual, Options{})
}

// Options controls optional, more expensive checking RunWithOptions can
// perform alongside the replay.
type Options struct {
	// CheckInvariants runs State.CheckInvariants after every applied
	// operation (§3's I1, I3 and I5), not just at divergence points. Off by
	// default since it walks every entry and inode in the state.
	CheckInvariants bool
	// ExitOnInvariantViolation panics with the invariant error the moment
	// CheckInvariants finds one, instead of folding it into the returned
	// Result — the same cfg.Debug.ExitOnInvariantViolation flag referenced
	// by model.State.CheckInvariants's doc comment. Useful interactively,
	// where a hard stop next to the offending operation beats a Result a
	// caller has to go looking for.
	ExitOnInvariantViolation bool
}

// RunWithOptions is Run with optional invariant checking (see Options).
//
// Per §4.7: on invoke, the pending op is remembered; on ok/fail, the
// pending op is applied to the model and the model's completion is
// compared — as a rendered event, ignoring Time and Index, which are
// opaque bookkeeping the model never produces — against the SUT's actual
// event. Info/timeout events pass through unchecked: §5 treats them as
// indeterminate, neither confirming nor refuting the model.
func RunWithOptions(initial *model.State, actual []history.Event, opts Options) Result {
	state := initial
	if state == nil {
		state = model.NewState()
	}

	pendingByID := make(map[int]pending)
	var trace []history.Event

	for i, actualEvent := range actual {
		trace = append(trace, actualEvent)

		switch actualEvent.Type {
		case history.Invoke:
			op, err := history.ToOp(actualEvent.F, actualEvent.Value)
			if err != nil {
				// An invoke the model's vocabulary can't even parse is
				// itself a divergence: the model has no opinion to compare,
				// so treat it as disagreeing with everything downstream.
				return Result{Valid: false, Divergence: &Divergence{
					Index:          i,
					TraceUpToIndex: trace,
					Actual:         actualEvent,
				}}
			}
			pendingByID[actualEvent.ID] = pending{op: op, invokeEvent: actualEvent}

		case history.Info:
			// Indeterminate: neither applied to the model nor compared.

		case history.OK, history.Fail:
			p, ok := pendingByID[actualEvent.ID]
			if !ok {
				// A completion with no matching invoke can't happen in a
				// well-formed history; surface it as a divergence rather
				// than panicking.
				return Result{Valid: false, Divergence: &Divergence{
					Index:          i,
					TraceUpToIndex: trace,
					Actual:         actualEvent,
				}}
			}
			delete(pendingByID, actualEvent.ID)

			before := state
			next, completion := model.Apply(state, p.op)
			expected := renderCompletion(actualEvent, p.op, completion)

			if !sameOutcome(expected, actualEvent) {
				return Result{Valid: false, Divergence: &Divergence{
					Index:            i,
					TraceUpToIndex:   trace,
					ModelStateBefore: before,
					ModelStateAfter:  next,
					Expected:         expected,
					Actual:           actualEvent,
				}}
			}
			state = next

			if opts.CheckInvariants {
				if err := state.CheckInvariants(); err != nil {
					if opts.ExitOnInvariantViolation {
						panic(fmt.Sprintf("invariant violation after event %d: %v", i, err))
					}
					return Result{Valid: false, Divergence: &Divergence{
						Index:            i,
						TraceUpToIndex:   trace,
						ModelStateBefore: before,
						ModelStateAfter:  next,
						Actual:           actualEvent,
						Violation:        err,
					}}
				}
			}
		}
	}

	return Result{Valid: true}
}

// renderCompletion builds the event the model expects at the position of
// actualEvent, preserving actualEvent's Time/Index/ID/Process/F fields (§4.7
// says those are carried over unchecked) and filling in Type/Value/Error
// from the model's completion.
func renderCompletion(actualEvent history.Event, op model.Op, c model.Completion) history.Event {
	out := actualEvent
	if c.OK {
		out.Type = history.OK
		out.Value = history.OKValue(op, c)
		out.Error = ""
	} else {
		out.Type = history.Fail
		out.Value = nil
		out.Error = history.ErrorName(c.Err)
	}
	return out
}

func sameOutcome(expected, actual history.Event) bool {
	if expected.Type != actual.Type {
		return false
	}
	if expected.Type == history.Fail {
		return expected.Error == actual.Error
	}
	return reflect.DeepEqual(expected.Value, actual.Value)
}
