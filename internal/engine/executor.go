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
	"context"

	"github.com/fscheck/fscheck/internal/history"
	"github.com/fscheck/fscheck/internal/model"
	"github.com/fscheck/fscheck/internal/sut"
)

// Execute drives s through ops in order, producing the actual history
// (§4.7's input to the checker): one invoke event and one ok/fail/info
// event per operation. Time is a logical per-event counter, not a wall
// clock — §4.7 only relies on event order, never on time's absolute value.
//
// A SUT-level error (as opposed to a modelled failure completion) is
// wrapped as an info event rather than propagated, per §4.9's "the
// engine's own errors... are wrapped as info/timeout events and treated
// opaquely by the checker" — a SUT process crash shouldn't abort the run,
// it should show up as an indeterminate event in the trace.
func Execute(ctx context.Context, s sut.SUT, ops []model.Op) ([]history.Event, error) {
	if err := s.Setup(ctx); err != nil {
		return nil, err
	}
	defer s.Teardown(ctx)

	events := make([]history.Event, 0, len(ops)*2)
	var clock int64

	for id, op := range ops {
		f := history.OpName(op.Kind)
		events = append(events, history.Event{
			ID: id, Type: history.Invoke, F: f, Value: history.FromOp(op),
			Time: clock, Index: len(events),
		})
		clock++

		completion, err := s.Apply(ctx, op)
		switch {
		case err != nil:
			events = append(events, history.Event{
				ID: id, Type: history.Info, F: f, Error: err.Error(),
				Time: clock, Index: len(events),
			})
		case completion.OK:
			events = append(events, history.Event{
				ID: id, Type: history.OK, F: f, Value: history.OKValue(op, completion),
				Time: clock, Index: len(events),
			})
		default:
			events = append(events, history.Event{
				ID: id, Type: history.Fail, F: f, Error: history.ErrorName(completion.Err),
				Time: clock, Index: len(events),
			})
		}
		clock++

		if ctx.Err() != nil {
			break
		}
	}

	return events, nil
}

// OpsOf extracts the operation payload from a sequence of invoke events —
// the inverse direction of Execute, used to feed a replayed or shrunk
// history back through the executor.
func OpsOf(events []history.Event) ([]model.Op, error) {
	var out []model.Op
	for _, e := range events {
		if e.Type != history.Invoke {
			continue
		}
		op, err := history.ToOp(e.F, e.Value)
		if err != nil {
			return nil, err
		}
		out = append(out, op)
	}
	return out, nil
}
