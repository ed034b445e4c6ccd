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

// This file implements C4, the filesystem operations. Each operation is a
// case of the OpKind enum (spec.md §9's "dynamic dispatch of operations"
// note: a tagged variant with an exhaustive match, not a class hierarchy),
// dispatched by Apply. Grounded on fs/inode/dir.go's per-operation methods
// (CreateChildFile, DeleteChildFile, LookUpChild) for the
// exists/absent/parent-is-dir shape of the checks; the rename/hard-link
// edge cases (mv, ln) have no teacher analogue, since GCS objects have
// neither hard links nor atomic rename, and are built directly from
// spec.md §4.4.

// OpKind names one of the operations the generator, checker, and SUT agree
// on (§6's operation vocabulary).
type OpKind int

const (
	OpRead OpKind = iota
	OpTouch
	OpWrite
	OpAppend
	OpRm
	OpMkdir
	OpLn
	OpMv
	OpTruncate
	OpFsync
	OpLoseUnfsyncedWrites
)

func (k OpKind) String() string {
	switch k {
	case OpRead:
		return "read"
	case OpTouch:
		return "touch"
	case OpWrite:
		return "write"
	case OpAppend:
		return "append"
	case OpRm:
		return "rm"
	case OpMkdir:
		return "mkdir"
	case OpLn:
		return "ln"
	case OpMv:
		return "mv"
	case OpTruncate:
		return "truncate"
	case OpFsync:
		return "fsync"
	case OpLoseUnfsyncedWrites:
		return "lose_unfsynced_writes"
	default:
		return "unknown_op"
	}
}

// Op is one invocation: a kind plus whichever payload fields that kind
// uses (§6's operation vocabulary table).
type Op struct {
	Kind  OpKind
	Path  Path  // touch, write, append, read, rm, mkdir, fsync, truncate, ln/mv "from"
	To    Path  // ln, mv "to"
	Data  []byte
	Delta int64 // truncate
}

// Completion is an operation's outcome: ok (optionally carrying a value,
// for read) or a failure carrying an ErrorKind.
type Completion struct {
	OK    bool
	Err   ErrorKind
	Path  Path   // echoed path, e.g. read's [path, data] ok-value
	Data  []byte // read's data
}

func ok() Completion                 { return Completion{OK: true} }
func okRead(p Path, d []byte) Completion { return Completion{OK: true, Path: p, Data: d} }
func fail(kind ErrorKind) Completion { return Completion{OK: false, Err: kind} }

// Apply runs op against s, returning the resulting state (s itself if op
// failed — §4.4's "state is reverted to pre-operation") and the completion.
func Apply(s *State, op Op) (*State, Completion) {
	next := s.Clone()
	var err error

	switch op.Kind {
	case OpRead:
		return applyRead(s, op) // read never mutates state
	case OpTouch:
		err = applyTouch(next, op.Path)
	case OpWrite:
		err = applyWrite(next, op.Path, op.Data)
	case OpAppend:
		err = applyAppend(next, op.Path, op.Data)
	case OpRm:
		err = applyRm(next, op.Path)
	case OpMkdir:
		err = applyMkdir(next, op.Path)
	case OpLn:
		err = applyLn(next, op.Path, op.To)
	case OpMv:
		err = applyMv(next, op.Path, op.To)
	case OpTruncate:
		err = applyTruncate(next, op.Path, op.Delta)
	case OpFsync:
		err = applyFsync(next, op.Path)
	case OpLoseUnfsyncedWrites:
		next.loseUnfsyncedWrites()
		return next, ok()
	default:
		panic("model: unknown op kind")
	}

	if err != nil {
		kind, isModelErr := KindOf(err)
		if !isModelErr {
			panic(err) // a non-*Error error is a bug, not a modelled failure
		}
		return s, fail(kind)
	}

	next.fsyncMetadata()
	return next, ok()
}

func applyTouch(s *State, p Path) error {
	if _, found := s.lookupEntry(p); found {
		return nil // no-op ok
	}
	n := s.allocInode(Inode{})
	return s.putEntry(p, entryPtr(LinkEntry(n)))
}

func applyWrite(s *State, p Path, data []byte) error {
	existing, found := s.lookupEntry(p)
	if found && existing.IsDir() {
		return NewError(NotFile, p)
	}

	var n InodeNumber
	if found && existing.IsLink() {
		n = existing.Inode
	} else {
		n = s.allocInode(Inode{})
	}
	if err := s.updateInode(n, func(in Inode) Inode {
		in.Data = append([]byte(nil), data...)
		return in
	}); err != nil {
		return err
	}
	if found && existing.IsLink() {
		return nil // entry already points at n; no entry-store change needed
	}
	return s.putEntry(p, entryPtr(LinkEntry(n)))
}

func applyAppend(s *State, p Path, data []byte) error {
	existing, found := s.lookupEntry(p)
	if found && existing.IsDir() {
		return NewError(NotFile, p)
	}

	var n InodeNumber
	if found && existing.IsLink() {
		n = existing.Inode
	} else {
		n = s.allocInode(Inode{})
	}
	if err := s.updateInode(n, func(in Inode) Inode {
		in.Data = append(append([]byte(nil), in.Data...), data...)
		return in
	}); err != nil {
		return err
	}
	if found && existing.IsLink() {
		return nil
	}
	return s.putEntry(p, entryPtr(LinkEntry(n)))
}

func applyRead(s *State, op Op) (*State, Completion) {
	e, found, err := s.getEntry(op.Path)
	if err != nil {
		kind, _ := KindOf(err)
		return s, fail(kind)
	}
	if !found {
		return s, fail(DoesNotExist)
	}
	if !e.IsLink() {
		return s, fail(NotFile)
	}
	in, ok := s.lookupInode(e.Inode)
	if !ok {
		// Dangling link: a prior cache loss destroyed the inode before
		// this link was healed. Reads return empty bytes (§4.4).
		return s, okRead(op.Path, nil)
	}
	return s, okRead(op.Path, append([]byte(nil), in.Data...))
}

func applyRm(s *State, p Path) error {
	if len(p) == 0 {
		return NewError(CannotDissocRoot, p)
	}
	if _, found := s.lookupEntry(p); !found {
		return NewError(DoesNotExist, p)
	}
	return s.putEntry(p, nil)
}

func applyMkdir(s *State, p Path) error {
	if _, found := s.lookupEntry(p); found {
		return NewError(Exists, p)
	}
	if _, _, err := s.getEntry(p); err != nil {
		return err
	}
	return s.putEntry(p, entryPtr(DirEntry()))
}

func applyLn(s *State, from, to Path) error {
	// getEntry, not lookupEntry: a from-path whose parent is not a
	// directory (e.g. "ln a/a a" when "a" is a file) must fail NotDir,
	// per §8 example E4 — lookupEntry alone would only report "absent".
	fromEntry, found, err := s.getEntry(from)
	if err != nil {
		return err
	}
	if !found || !fromEntry.IsLink() {
		return NewError(NotFile, from)
	}

	dest := to
	if toEntry, ok := s.lookupEntry(to); ok && toEntry.IsDir() {
		dest = to.Child(from.Last())
	}

	if _, found := s.lookupEntry(dest); found {
		return NewError(Exists, dest)
	}
	return s.putEntry(dest, entryPtr(LinkEntry(fromEntry.Inode)))
}

func applyMv(s *State, from, to Path) error {
	err := applyMvInner(s, from, to)
	if me, isModelErr := err.(*Error); isModelErr && me.Kind == NotDir {
		// §4.4: any NotDir raised inside mv is coerced to DoesNotExist,
		// the reference error of shell mv (resolved Open Question, §9).
		return NewError(DoesNotExist, me.Path)
	}
	return err
}

func applyMvInner(s *State, from, to Path) error {
	dest := to
	if toEntry, ok := s.lookupEntry(to); ok && toEntry.IsDir() {
		dest = to.Child(from.Last())
	}

	if len(dest) > 0 {
		parentEntry, ok := s.lookupEntry(dest.Parent())
		if !ok {
			return NewError(DoesNotExist, dest.Parent())
		}
		if !parentEntry.IsDir() {
			return NewError(NotDir, dest.Parent())
		}
	}

	fromEntry, found := s.lookupEntry(from)
	if !found {
		return NewError(DoesNotExist, from)
	}

	if dest.Equal(from) {
		return NewError(SameFile, dest)
	}

	destEntry, destFound := s.lookupEntry(dest)
	if destFound {
		if fromEntry.IsLink() && destEntry.IsLink() && fromEntry.Inode == destEntry.Inode {
			return NewError(SameFile, dest)
		}
		if destEntry.IsDir() && !fromEntry.IsDir() {
			return NewError(CannotOverwriteDirWithNonDir, dest)
		}
		if !destEntry.IsDir() && fromEntry.IsDir() {
			return NewError(CannotOverwriteNonDirWithDir, dest)
		}
		if destEntry.IsDir() && len(s.children(dest)) > 0 {
			return NewError(NotEmpty, dest)
		}
	}

	if IsChild(from, dest) {
		return NewError(CannotMoveInsideSelf, dest)
	}

	// Collect from's descendants (relative paths) before from is deleted.
	type relocation struct {
		rel   Path
		entry Entry
	}
	var relocations []relocation
	for _, d := range s.descendantsOf(from) {
		e, _ := s.lookupEntry(d)
		relocations = append(relocations, relocation{rel: RelativeTo(from, d), entry: e})
	}

	if err := s.putEntry(from, nil); err != nil {
		return err
	}
	if err := s.putEntry(dest, &fromEntry); err != nil {
		return err
	}
	for _, r := range relocations {
		entry := r.entry
		if err := s.putEntry(Join(dest, r.rel), &entry); err != nil {
			return err
		}
	}

	return nil
}

func applyTruncate(s *State, p Path, delta int64) error {
	existing, found := s.lookupEntry(p)
	if found && existing.IsDir() {
		return NewError(NotFile, p)
	}

	var n InodeNumber
	if found && existing.IsLink() {
		n = existing.Inode
	} else {
		n = s.allocInode(Inode{})
	}

	if err := s.updateInode(n, func(in Inode) Inode {
		oldSize := int64(len(in.Data))
		newSize := oldSize + delta
		if newSize < 0 {
			newSize = 0
		}
		out := make([]byte, newSize)
		keep := oldSize
		if keep > newSize {
			keep = newSize
		}
		copy(out, in.Data[:keep])
		in.Data = out
		return in
	}); err != nil {
		return err
	}

	if found && existing.IsLink() {
		return nil
	}
	return s.putEntry(p, entryPtr(LinkEntry(n)))
}

func applyFsync(s *State, p Path) error {
	e, found, err := s.getEntry(p)
	if err != nil {
		return err
	}
	if !found {
		return NewError(DoesNotExist, p)
	}
	if e.IsDir() {
		return nil // metadata is always fsynced automatically
	}
	if !e.IsLink() {
		return NewError(NotFile, p)
	}
	s.fsyncInode(e.Inode)
	return nil
}

func entryPtr(e Entry) *Entry { return &e }
