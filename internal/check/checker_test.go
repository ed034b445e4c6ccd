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

package check

import (
	"testing"

	"github.com/fscheck/fscheck/internal/history"
	"github.com/fscheck/fscheck/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func invoke(id int, op model.Op) history.Event {
	return history.Event{ID: id, Type: history.Invoke, F: history.OpName(op.Kind), Value: history.FromOp(op), Index: id * 2}
}

func okEvent(id int, f string, value any) history.Event {
	return history.Event{ID: id, Type: history.OK, F: f, Value: value, Index: id*2 + 1}
}

func failEvent(id int, f string, errName string) history.Event {
	return history.Event{ID: id, Type: history.Fail, F: f, Error: errName, Index: id*2 + 1}
}

func TestRunValidHistory(t *testing.T) {
	events := []history.Event{
		invoke(0, model.Op{Kind: model.OpTouch, Path: model.Path{"a"}}),
		okEvent(0, "touch", []any{"a"}),
		invoke(1, model.Op{Kind: model.OpWrite, Path: model.Path{"a"}, Data: []byte{0xab}}),
		okEvent(1, "write", []any{[]any{"a"}, "ab"}),
		invoke(2, model.Op{Kind: model.OpRead, Path: model.Path{"a"}}),
		okEvent(2, "read", []any{[]any{"a"}, "ab"}),
	}

	result := Run(nil, events)
	assert.True(t, result.Valid)
	assert.Nil(t, result.Divergence)
}

func TestRunDetectsDivergenceOnWrongOutcome(t *testing.T) {
	events := []history.Event{
		invoke(0, model.Op{Kind: model.OpRead, Path: model.Path{"missing"}}),
		// The SUT claims this read succeeded, but the model (an empty
		// filesystem) says it must fail does_not_exist.
		okEvent(0, "read", []any{[]any{"missing"}, ""}),
	}

	result := Run(nil, events)
	require.False(t, result.Valid)
	require.NotNil(t, result.Divergence)
	assert.Equal(t, 1, result.Divergence.Index)
	assert.Equal(t, history.Fail, result.Divergence.Expected.Type)
	assert.Equal(t, "does_not_exist", result.Divergence.Expected.Error)
}

func TestRunDetectsDivergenceOnWrongErrorKind(t *testing.T) {
	events := []history.Event{
		invoke(0, model.Op{Kind: model.OpMkdir, Path: model.Path{"a"}}),
		okEvent(0, "mkdir", []any{"a"}),
		invoke(1, model.Op{Kind: model.OpMkdir, Path: model.Path{"a"}}),
		// The model says mkdir on an existing dir fails "exists"; claim
		// "not_dir" instead so the checker must flag the mismatch.
		failEvent(1, "mkdir", "not_dir"),
	}

	result := Run(nil, events)
	require.False(t, result.Valid)
	require.NotNil(t, result.Divergence)
	assert.Equal(t, 3, result.Divergence.Index)
	assert.Equal(t, "exists", result.Divergence.Expected.Error)
	assert.Equal(t, "not_dir", result.Divergence.Actual.Error)
}

func TestRunWithOptionsCheckInvariantsPassesOnWellFormedHistory(t *testing.T) {
	events := []history.Event{
		invoke(0, model.Op{Kind: model.OpTouch, Path: model.Path{"a"}}),
		okEvent(0, "touch", []any{"a"}),
		invoke(1, model.Op{Kind: model.OpLn, Path: model.Path{"a"}, To: model.Path{"b"}}),
		okEvent(1, "ln", []any{[]any{"a"}, []any{"b"}}),
		invoke(2, model.Op{Kind: model.OpRm, Path: model.Path{"a"}}),
		okEvent(2, "rm", []any{"a"}),
	}

	result := RunWithOptions(nil, events, Options{CheckInvariants: true})
	assert.True(t, result.Valid)
	assert.Nil(t, result.Divergence)
}

func TestRunIgnoresInfoEvents(t *testing.T) {
	events := []history.Event{
		invoke(0, model.Op{Kind: model.OpTouch, Path: model.Path{"a"}}),
		{ID: 0, Type: history.Info, F: "touch", Index: 1},
		okEvent(0, "touch", []any{"a"}),
	}

	result := Run(nil, events)
	assert.True(t, result.Valid)
}
