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

import "github.com/fscheck/fscheck/internal/model"

// OpName returns the §6 wire name for kind, e.g. "lose_unfsynced_writes".
func OpName(kind model.OpKind) string {
	switch kind {
	case model.OpRead:
		return "read"
	case model.OpTouch:
		return "touch"
	case model.OpWrite:
		return "write"
	case model.OpAppend:
		return "append"
	case model.OpRm:
		return "rm"
	case model.OpMkdir:
		return "mkdir"
	case model.OpLn:
		return "ln"
	case model.OpMv:
		return "mv"
	case model.OpTruncate:
		return "truncate"
	case model.OpFsync:
		return "fsync"
	case model.OpLoseUnfsyncedWrites:
		return "lose_unfsynced_writes"
	default:
		return "unknown"
	}
}

// ErrorName returns the §7 wire name for kind, e.g. "does_not_exist".
func ErrorName(kind model.ErrorKind) string {
	return kind.String()
}
