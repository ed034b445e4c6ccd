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

// Package history implements the wire surface between the generator, the
// model, and the SUT (§6): the Event type, the operation vocabulary
// encoding, and the history.edn event log format. No library in the
// example pack speaks EDN (it's a Clojure-native format spec.md §6 and §8
// name directly), so the encoder/decoder here is a small hand-written leaf,
// not a generic library replacement — justified stdlib use.
package history

import (
	"encoding/hex"
	"fmt"

	"github.com/fscheck/fscheck/internal/model"
)

// Type is one of invoke/ok/fail/info, matching §6's event log format and
// §5's opaque info/timeout events.
type Type string

const (
	Invoke Type = "invoke"
	OK     Type = "ok"
	Fail   Type = "fail"
	Info   Type = "info"
)

// Event is one line of a history: a single-process (process is always 0 in
// this repo — §5 is explicit the scheduling model is single-threaded)
// invoke, ok, fail, or info/timeout record.
type Event struct {
	ID      int    // stable per-operation identity, for invoke/complete pairing (§4.6)
	Process int    // always 0; kept for wire-format fidelity with the jepsen-style event shape
	Type    Type
	F       string // operation name, e.g. "read", "mv" (§6)
	Value   any    // shape depends on F; see FromOp and OKValue
	Time    int64  // logical per-event clock value; the checker never compares it
	Index   int    // position in the full actual history
	Error   string // error kind name when Type == Fail; the SUT's error message when Type == Info
}

// FromOp renders op's invocation value in the §6 wire shape.
func FromOp(op model.Op) any {
	switch op.Kind {
	case model.OpRead:
		return []any{pathValue(op.Path), nil}
	case model.OpTouch, model.OpRm, model.OpFsync, model.OpMkdir:
		return pathValue(op.Path)
	case model.OpWrite, model.OpAppend:
		return []any{pathValue(op.Path), hex.EncodeToString(op.Data)}
	case model.OpMv, model.OpLn:
		return []any{pathValue(op.Path), pathValue(op.To)}
	case model.OpTruncate:
		return []any{pathValue(op.Path), op.Delta}
	case model.OpLoseUnfsyncedWrites:
		return nil
	default:
		panic(fmt.Sprintf("history: unhandled op kind %v", op.Kind))
	}
}

// OKValue renders op's completion c in the §6 wire shape. §6 says every
// op's ok-value is "unchanged" (equal to its invoke value) except read,
// whose invoke value carries a nil placeholder for data it hadn't read
// yet — OKValue fills that in from c instead of echoing the invoke value
// verbatim.
func OKValue(op model.Op, c model.Completion) any {
	if op.Kind == model.OpRead {
		return []any{pathValue(c.Path), hex.EncodeToString(c.Data)}
	}
	return FromOp(op)
}

func pathValue(p model.Path) []any {
	out := make([]any, len(p))
	for i, c := range p {
		out[i] = c
	}
	return out
}
