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

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func p(names ...string) Path { return Path(names) }

func hex(s string) []byte {
	out := make([]byte, len(s)/2)
	for i := range out {
		var b byte
		for _, c := range s[i*2 : i*2+2] {
			b <<= 4
			switch {
			case c >= '0' && c <= '9':
				b |= byte(c - '0')
			case c >= 'a' && c <= 'f':
				b |= byte(c-'a') + 10
			}
		}
		out[i] = b
	}
	return out
}

// runOK applies op and requires it to succeed, returning the new state.
func runOK(t *testing.T, s *State, op Op) *State {
	t.Helper()
	next, c := Apply(s, op)
	require.True(t, c.OK, "expected ok, got fail(%s)", c.Err)
	return next
}

// runFail applies op and requires it to fail with kind.
func runFail(t *testing.T, s *State, op Op, kind ErrorKind) *State {
	t.Helper()
	next, c := Apply(s, op)
	require.False(t, c.OK, "expected fail(%s), got ok", kind)
	assert.Equal(t, kind, c.Err)
	return next
}

// E1 — touch / read / rm / read.
func TestE1TouchReadRmRead(t *testing.T) {
	s := NewState()
	s = runOK(t, s, Op{Kind: OpTouch, Path: p("a")})

	_, c := Apply(s, Op{Kind: OpRead, Path: p("a")})
	require.True(t, c.OK)
	assert.Empty(t, c.Data)

	s = runOK(t, s, Op{Kind: OpRm, Path: p("a")})
	runFail(t, s, Op{Kind: OpRead, Path: p("a")}, DoesNotExist)
}

// E2 — write then crash: metadata survives, data lost.
func TestE2WriteThenCrash(t *testing.T) {
	s := NewState()
	s = runOK(t, s, Op{Kind: OpWrite, Path: p("b"), Data: hex("00")})
	s = runOK(t, s, Op{Kind: OpLoseUnfsyncedWrites})

	_, c := Apply(s, Op{Kind: OpRead, Path: p("b")})
	require.True(t, c.OK)
	assert.Empty(t, c.Data)
}

// E3 — write, fsync, crash: data survives.
func TestE3WriteFsyncCrash(t *testing.T) {
	s := NewState()
	s = runOK(t, s, Op{Kind: OpWrite, Path: p("a"), Data: hex("1a")})

	_, c := Apply(s, Op{Kind: OpRead, Path: p("a")})
	require.True(t, c.OK)
	assert.Equal(t, hex("1a"), c.Data)

	s = runOK(t, s, Op{Kind: OpFsync, Path: p("a")})
	s = runOK(t, s, Op{Kind: OpLoseUnfsyncedWrites})

	_, c = Apply(s, Op{Kind: OpRead, Path: p("a")})
	require.True(t, c.OK)
	assert.Equal(t, hex("1a"), c.Data)
}

// E4 — "ln a/a a" must fail NotDir.
func TestE4LnIntoNonDirParentFailsNotDir(t *testing.T) {
	s := NewState()
	s = runOK(t, s, Op{Kind: OpTouch, Path: p("a")})
	runFail(t, s, Op{Kind: OpLn, Path: p("a", "a"), To: p("a")}, NotDir)
}

// E5 — mv onto non-empty dir rejected.
func TestE5MvOntoNonEmptyDirRejected(t *testing.T) {
	s := NewState()
	s = runOK(t, s, Op{Kind: OpMkdir, Path: p("a")})
	s = runOK(t, s, Op{Kind: OpMkdir, Path: p("a", "b")})
	s = runOK(t, s, Op{Kind: OpTruncate, Path: p("b"), Delta: 0})
	s = runOK(t, s, Op{Kind: OpMv, Path: p("b"), To: p("a", "b")})
	s = runOK(t, s, Op{Kind: OpMkdir, Path: p("b")})
	runFail(t, s, Op{Kind: OpMv, Path: p("b"), To: p("a")}, NotEmpty)
}

// E6 — extend via truncate after crash preserves data and zero-pads.
func TestE6TruncateAfterCrashZeroPads(t *testing.T) {
	s := NewState()
	s = runOK(t, s, Op{Kind: OpAppend, Path: p("a"), Data: hex("12")})
	s = runOK(t, s, Op{Kind: OpFsync, Path: p("a")})
	s = runOK(t, s, Op{Kind: OpLoseUnfsyncedWrites})

	_, c := Apply(s, Op{Kind: OpRead, Path: p("a")})
	require.True(t, c.OK)
	assert.Equal(t, hex("12"), c.Data)

	s = runOK(t, s, Op{Kind: OpTruncate, Path: p("a"), Delta: 2})
	_, c = Apply(s, Op{Kind: OpRead, Path: p("a")})
	require.True(t, c.OK)
	assert.Equal(t, hex("120000"), c.Data)
}

func TestLnPropagatesAndRmSeversOneLink(t *testing.T) {
	s := NewState()
	s = runOK(t, s, Op{Kind: OpWrite, Path: p("a"), Data: hex("ab")})
	s = runOK(t, s, Op{Kind: OpLn, Path: p("a"), To: p("b")})

	s = runOK(t, s, Op{Kind: OpWrite, Path: p("b"), Data: hex("cd")})
	_, c := Apply(s, Op{Kind: OpRead, Path: p("a")})
	require.True(t, c.OK)
	assert.Equal(t, hex("cd"), c.Data, "write through one link must be visible through the other")

	s = runOK(t, s, Op{Kind: OpRm, Path: p("a")})
	_, c = Apply(s, Op{Kind: OpRead, Path: p("b")})
	require.True(t, c.OK)
	assert.Equal(t, hex("cd"), c.Data, "rm of one link must not affect the other")
}

func TestMkdirRmRestoresEntryStore(t *testing.T) {
	s := NewState()
	before := s.Clone()
	s = runOK(t, s, Op{Kind: OpMkdir, Path: p("a")})
	s = runOK(t, s, Op{Kind: OpRm, Path: p("a")})

	require.NoError(t, s.CheckInvariants())
	_, foundBefore := before.lookupEntry(p("a"))
	_, foundAfter := s.lookupEntry(p("a"))
	assert.False(t, foundBefore)
	assert.False(t, foundAfter)
}

func TestLoseUnfsyncedWritesIsIdempotent(t *testing.T) {
	s := NewState()
	s = runOK(t, s, Op{Kind: OpWrite, Path: p("a"), Data: hex("ab")})
	s = runOK(t, s, Op{Kind: OpLoseUnfsyncedWrites})
	once := s.Clone()
	s = runOK(t, s, Op{Kind: OpLoseUnfsyncedWrites})
	assert.Equal(t, once.disk.entries.paths, s.disk.entries.paths)
	assert.Equal(t, len(once.disk.inodes.byNumber), len(s.disk.inodes.byNumber))
}

// TestRandomHistoriesPreserveInvariants runs many short seeded random
// histories over the small {"a","b"} path domain and checks invariants
// after every single step, the property-test idiom spec.md §8 calls for.
func TestRandomHistoriesPreserveInvariants(t *testing.T) {
	paths := []Path{p("a"), p("b"), p("a", "a"), p("a", "b"), p("b", "a"), p("b", "b")}
	rng := rand.New(rand.NewSource(42))

	for trial := 0; trial < 200; trial++ {
		s := NewState()
		for step := 0; step < 40; step++ {
			op := randomOp(rng, paths)
			next, _ := Apply(s, op)
			s = next
			if err := s.CheckInvariants(); err != nil {
				t.Fatalf("trial %d step %d: invariant violated after %v: %v", trial, step, op, err)
			}
		}
	}
}

func randomOp(rng *rand.Rand, paths []Path) Op {
	pick := func() Path { return paths[rng.Intn(len(paths))] }
	data := func() []byte {
		b := make([]byte, rng.Intn(3))
		rng.Read(b)
		return b
	}
	switch rng.Intn(10) {
	case 0:
		return Op{Kind: OpRead, Path: pick()}
	case 1:
		return Op{Kind: OpTouch, Path: pick()}
	case 2:
		return Op{Kind: OpWrite, Path: pick(), Data: data()}
	case 3:
		return Op{Kind: OpAppend, Path: pick(), Data: data()}
	case 4:
		return Op{Kind: OpMkdir, Path: pick()}
	case 5:
		return Op{Kind: OpMv, Path: pick(), To: pick()}
	case 6:
		return Op{Kind: OpRm, Path: pick()}
	case 7:
		return Op{Kind: OpLn, Path: pick(), To: pick()}
	case 8:
		return Op{Kind: OpTruncate, Path: pick(), Delta: int64(rng.Intn(5) - 2)}
	default:
		return Op{Kind: OpFsync, Path: pick()}
	}
}
