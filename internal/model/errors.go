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

package model

import "fmt"

// ErrorKind is the closed taxonomy of failures an operation can raise (§7).
// Two kinds, CannotDissocRoot and NoSuchInode, are internal assertions that
// must never surface past an operation boundary in a well-formed history;
// they exist so invariant violations fail loud in debug builds instead of
// corrupting state silently.
type ErrorKind int

const (
	DoesNotExist ErrorKind = iota
	Exists
	NotDir
	NotFile
	NotEmpty
	SameFile
	CannotOverwriteDirWithNonDir
	CannotOverwriteNonDirWithDir
	CannotMoveInsideSelf
	CannotDissocRoot // internal; never surfaces
	NoSuchInode      // internal assertion; never surfaces in well-formed histories
)

var errorKindNames = map[ErrorKind]string{
	DoesNotExist:                 "does_not_exist",
	Exists:                       "exists",
	NotDir:                       "not_dir",
	NotFile:                      "not_file",
	NotEmpty:                     "not_empty",
	SameFile:                     "same_file",
	CannotOverwriteDirWithNonDir: "cannot_overwrite_dir_with_non_dir",
	CannotOverwriteNonDirWithDir: "cannot_overwrite_non_dir_with_dir",
	CannotMoveInsideSelf:         "cannot_move_inside_self",
	CannotDissocRoot:             "cannot_dissoc_root",
	NoSuchInode:                  "no_such_inode",
}

func (k ErrorKind) String() string {
	if s, ok := errorKindNames[k]; ok {
		return s
	}
	return "unknown_error"
}

// Error is the failure value raised by an operation and caught at the
// operation boundary (§7's propagation policy: caught, rendered as a
// failure completion, state reverted).
type Error struct {
	Kind ErrorKind
	Path Path // the path the error pertains to, for diagnostics only
}

func (e *Error) Error() string {
	if len(e.Path) == 0 {
		return e.Kind.String()
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Path)
}

// NewError constructs an *Error for kind at path.
func NewError(kind ErrorKind, path Path) *Error {
	return &Error{Kind: kind, Path: path}
}

// KindOf reports the ErrorKind carried by err if it is a *Error, and ok.
func KindOf(err error) (ErrorKind, bool) {
	if e, ok := err.(*Error); ok {
		return e.Kind, true
	}
	return 0, false
}
