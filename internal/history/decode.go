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

package history

import (
	"encoding/hex"
	"fmt"

	"github.com/fscheck/fscheck/internal/model"
)

var opByName = map[string]model.OpKind{
	"read":                  model.OpRead,
	"touch":                 model.OpTouch,
	"write":                 model.OpWrite,
	"append":                model.OpAppend,
	"rm":                    model.OpRm,
	"mkdir":                 model.OpMkdir,
	"ln":                    model.OpLn,
	"mv":                    model.OpMv,
	"truncate":              model.OpTruncate,
	"fsync":                 model.OpFsync,
	"lose_unfsynced_writes": model.OpLoseUnfsyncedWrites,
}

// ToOp decodes an invoke event's F/Value pair back into a model.Op — the
// inverse of FromOp. Used by the checker to replay a captured or generated
// invoke event against the model.
func ToOp(f string, value any) (model.Op, error) {
	kind, ok := opByName[f]
	if !ok {
		return model.Op{}, fmt.Errorf("history: unknown operation %q", f)
	}

	switch kind {
	case model.OpTouch, model.OpRm, model.OpFsync, model.OpMkdir:
		path, err := toPath(value)
		if err != nil {
			return model.Op{}, err
		}
		return model.Op{Kind: kind, Path: path}, nil

	case model.OpRead:
		pair, err := toPair(value)
		if err != nil {
			return model.Op{}, err
		}
		path, err := toPath(pair[0])
		if err != nil {
			return model.Op{}, err
		}
		return model.Op{Kind: kind, Path: path}, nil

	case model.OpWrite, model.OpAppend:
		pair, err := toPair(value)
		if err != nil {
			return model.Op{}, err
		}
		path, err := toPath(pair[0])
		if err != nil {
			return model.Op{}, err
		}
		data, err := toHexBytes(pair[1])
		if err != nil {
			return model.Op{}, err
		}
		return model.Op{Kind: kind, Path: path, Data: data}, nil

	case model.OpMv, model.OpLn:
		pair, err := toPair(value)
		if err != nil {
			return model.Op{}, err
		}
		from, err := toPath(pair[0])
		if err != nil {
			return model.Op{}, err
		}
		to, err := toPath(pair[1])
		if err != nil {
			return model.Op{}, err
		}
		return model.Op{Kind: kind, Path: from, To: to}, nil

	case model.OpTruncate:
		pair, err := toPair(value)
		if err != nil {
			return model.Op{}, err
		}
		path, err := toPath(pair[0])
		if err != nil {
			return model.Op{}, err
		}
		delta, err := toInt64(pair[1])
		if err != nil {
			return model.Op{}, err
		}
		return model.Op{Kind: kind, Path: path, Delta: delta}, nil

	case model.OpLoseUnfsyncedWrites:
		return model.Op{Kind: kind}, nil

	default:
		return model.Op{}, fmt.Errorf("history: unhandled op kind %v", kind)
	}
}

func toPair(v any) ([2]any, error) {
	arr, ok := v.([]any)
	if !ok || len(arr) != 2 {
		return [2]any{}, fmt.Errorf("history: expected a 2-element value, got %#v", v)
	}
	return [2]any{arr[0], arr[1]}, nil
}

func toPath(v any) (model.Path, error) {
	arr, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("history: expected a path array, got %#v", v)
	}
	out := make(model.Path, len(arr))
	for i, c := range arr {
		s, ok := c.(string)
		if !ok {
			return nil, fmt.Errorf("history: expected a path component string, got %#v", c)
		}
		out[i] = s
	}
	return out, nil
}

func toHexBytes(v any) ([]byte, error) {
	s, ok := v.(string)
	if !ok {
		return nil, fmt.Errorf("history: expected a hex string, got %#v", v)
	}
	return hex.DecodeString(s)
}

func toInt64(v any) (int64, error) {
	switch x := v.(type) {
	case int64:
		return x, nil
	case int:
		return int64(x), nil
	default:
		return 0, fmt.Errorf("history: expected an integer, got %#v", v)
	}
}
