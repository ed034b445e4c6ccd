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

// Package sut defines the thin adapter interface (§6) the checker drives
// the system under test through, and ships one concrete implementation,
// dirsut, operating directly on a real directory. Grounded on
// fs/inode.Inode's interface-first shape: a small interface with several
// independent concrete implementations.
package sut

import (
	"context"

	"github.com/fscheck/fscheck/internal/model"
)

// SUT is implemented by each filesystem driver the checker can cross-check
// the model against. Per spec.md §1/§6, the shell-out driver and the
// lazyfs adapter (FUSE mount lifecycle and lose_unfsynced_writes named
// pipe) are external collaborators; this repo owns this interface and the
// one in-repo implementation, Dir (dirsut.go).
type SUT interface {
	// Setup prepares the SUT for a run (e.g. mkdir -p the working
	// directory, or mount a FUSE filesystem).
	Setup(ctx context.Context) error

	// Apply runs op against the SUT and returns its observed completion.
	// Implementations must map OS-level errors to model.ErrorKind per
	// §6's error-message table.
	Apply(ctx context.Context, op model.Op) (model.Completion, error)

	// Teardown releases any resources Setup acquired (unmount, remove the
	// working directory).
	Teardown(ctx context.Context) error
}
