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

package sut

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/fscheck/fscheck/internal/model"
)

// Dir is the one concrete SUT adapter this repo ships: a reference
// implementation operating directly on a real directory via Go's os
// package, rather than shelling out to touch/mv/cat (spec.md's §1 notes
// the shelling-out driver as an external collaborator; this adapter
// exists purely so the checker and engine are exercisable end-to-end
// without lazyfs). It does not model a page cache, so
// lose_unfsynced_writes is unsupported here — a real crash-consistency
// run targets the lazyfs adapter, which is out of scope per §1.
type Dir struct {
	Root string
}

var _ SUT = (*Dir)(nil)

func (d *Dir) Setup(ctx context.Context) error {
	return os.MkdirAll(d.Root, 0o755)
}

func (d *Dir) Teardown(ctx context.Context) error {
	return os.RemoveAll(d.Root)
}

func (d *Dir) resolve(p model.Path) string {
	parts := append([]string{d.Root}, []string(p)...)
	return filepath.Join(parts...)
}

func (d *Dir) Apply(ctx context.Context, op model.Op) (model.Completion, error) {
	switch op.Kind {
	case model.OpRead:
		return d.read(op.Path)
	case model.OpTouch:
		return d.touch(op.Path)
	case model.OpWrite:
		return d.write(op.Path, op.Data)
	case model.OpAppend:
		return d.append(op.Path, op.Data)
	case model.OpRm:
		return d.rm(op.Path)
	case model.OpMkdir:
		return d.mkdir(op.Path)
	case model.OpLn:
		return d.ln(op.Path, op.To)
	case model.OpMv:
		return d.mv(op.Path, op.To)
	case model.OpTruncate:
		return d.truncate(op.Path, op.Delta)
	case model.OpFsync:
		return d.fsync(op.Path)
	case model.OpLoseUnfsyncedWrites:
		return model.Completion{}, errors.New("dirsut: lose_unfsynced_writes is not supported by the dir adapter; use lazyfs")
	default:
		return model.Completion{}, fmt.Errorf("dirsut: unhandled op kind %v", op.Kind)
	}
}

func (d *Dir) read(p model.Path) (model.Completion, error) {
	data, err := os.ReadFile(d.resolve(p))
	if err != nil {
		return classify(err, p)
	}
	return model.Completion{OK: true, Path: p, Data: data}, nil
}

func (d *Dir) touch(p model.Path) (model.Completion, error) {
	full := d.resolve(p)
	if _, err := os.Stat(full); err == nil {
		return model.Completion{OK: true}, nil
	}
	f, err := os.OpenFile(full, os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return classify(err, p)
	}
	f.Close()
	return model.Completion{OK: true}, nil
}

func (d *Dir) write(p model.Path, data []byte) (model.Completion, error) {
	if err := os.WriteFile(d.resolve(p), data, 0o644); err != nil {
		return classify(err, p)
	}
	return model.Completion{OK: true}, nil
}

func (d *Dir) append(p model.Path, data []byte) (model.Completion, error) {
	f, err := os.OpenFile(d.resolve(p), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return classify(err, p)
	}
	defer f.Close()
	if _, err := f.Write(data); err != nil {
		return classify(err, p)
	}
	return model.Completion{OK: true}, nil
}

func (d *Dir) rm(p model.Path) (model.Completion, error) {
	full := d.resolve(p)
	info, err := os.Stat(full)
	if err != nil {
		return classify(err, p)
	}
	if info.IsDir() {
		err = os.RemoveAll(full)
	} else {
		err = os.Remove(full)
	}
	if err != nil {
		return classify(err, p)
	}
	return model.Completion{OK: true}, nil
}

func (d *Dir) mkdir(p model.Path) (model.Completion, error) {
	if err := os.Mkdir(d.resolve(p), 0o755); err != nil {
		return classify(err, p)
	}
	return model.Completion{OK: true}, nil
}

func (d *Dir) ln(from, to model.Path) (model.Completion, error) {
	dest := to
	if info, err := os.Stat(d.resolve(to)); err == nil && info.IsDir() {
		dest = to.Child(from.Last())
	}
	if err := os.Link(d.resolve(from), d.resolve(dest)); err != nil {
		return classify(err, dest)
	}
	return model.Completion{OK: true}, nil
}

func (d *Dir) mv(from, to model.Path) (model.Completion, error) {
	dest := to
	if info, err := os.Stat(d.resolve(to)); err == nil && info.IsDir() {
		dest = to.Child(from.Last())
	}
	if err := os.Rename(d.resolve(from), d.resolve(dest)); err != nil {
		return classify(err, dest)
	}
	return model.Completion{OK: true}, nil
}

func (d *Dir) truncate(p model.Path, delta int64) (model.Completion, error) {
	full := d.resolve(p)
	info, err := os.Stat(full)
	var oldSize int64
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return classify(err, p)
		}
		f, createErr := os.OpenFile(full, os.O_CREATE|os.O_EXCL, 0o644)
		if createErr != nil {
			return classify(createErr, p)
		}
		f.Close()
	} else {
		oldSize = info.Size()
	}

	newSize := oldSize + delta
	if newSize < 0 {
		newSize = 0
	}
	if err := os.Truncate(full, newSize); err != nil {
		return classify(err, p)
	}
	return model.Completion{OK: true}, nil
}

func (d *Dir) fsync(p model.Path) (model.Completion, error) {
	full := d.resolve(p)
	info, err := os.Stat(full)
	if err != nil {
		return classify(err, p)
	}
	if info.IsDir() {
		return model.Completion{OK: true}, nil
	}
	f, err := os.OpenFile(full, os.O_RDWR, 0o644)
	if err != nil {
		return classify(err, p)
	}
	defer f.Close()
	if err := f.Sync(); err != nil {
		return model.Completion{}, err
	}
	return model.Completion{OK: true}, nil
}

// classify maps an OS-level error onto the §6/§7 error vocabulary: missing
// and existing files via errors.Is, then the lower-case Go error-message
// substrings "is a directory", "not a directory", "directory not empty",
// "are the same file" and "invalid argument" (taken as moving a directory
// inside itself). Any other error is returned as-is.
func classify(err error, p model.Path) (model.Completion, error) {
	if errors.Is(err, fs.ErrNotExist) {
		return model.Completion{OK: false, Err: model.DoesNotExist}, nil
	}
	if errors.Is(err, fs.ErrExist) {
		return model.Completion{OK: false, Err: model.Exists}, nil
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "is a directory"):
		return model.Completion{OK: false, Err: model.NotFile}, nil
	case strings.Contains(msg, "not a directory"):
		return model.Completion{OK: false, Err: model.NotDir}, nil
	case strings.Contains(msg, "directory not empty"):
		return model.Completion{OK: false, Err: model.NotEmpty}, nil
	case strings.Contains(msg, "are the same file"):
		return model.Completion{OK: false, Err: model.SameFile}, nil
	case strings.Contains(msg, "invalid argument"):
		// Linux rename(2) returns EINVAL for both "dest inside source"
		// and a handful of unrelated cases; §6 only promises this one
		// mapping, so that's the one made here.
		return model.Completion{OK: false, Err: model.CannotMoveInsideSelf}, nil
	}
	return model.Completion{}, err
}
