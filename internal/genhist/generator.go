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

// Package genhist implements C6, the history generator: a deterministically
// seeded, weighted-random generator of operation sequences over a small
// bounded path domain. Grounded on fs/fstesting/common.go and
// fs/fstesting/local_modifications.go, which drive a mounted filesystem
// through seeded math/rand-generated operation sequences by hand; this
// package generalizes that ad hoc idiom into a declarative weighted
// grammar, per spec.md §9's design note.
package genhist

import (
	"math/rand"

	"github.com/fscheck/fscheck/internal/model"
)

// weightedOp pairs an OpKind with its selection weight (§4.6's table).
type weightedOp struct {
	kind   model.OpKind
	weight int
}

// Config controls generation: the seed, history length, payload size, and whether
// lose_unfsynced_writes is eligible for selection (it is only emitted when
// the engine was invoked with --lose-unfsynced-writes, since many SUTs
// cannot service it at all).
type Config struct {
	Seed                  int64
	Length                int  // history length; §4.6 says "scaled by approximately 1000"
	LoseUnfsyncedWrites   bool // enable the lose_unfsynced_writes op (§4.6)
	MaxDataBytes          int  // upper bound on generated write/append payload size
}

// DefaultConfig returns the engine's default generation parameters: a
// 1000-operation history, lose_unfsynced_writes disabled (opt-in via
// --lose-unfsynced-writes per §6), and small data payloads.
func DefaultConfig(seed int64) Config {
	return Config{Seed: seed, Length: 1000, LoseUnfsyncedWrites: false, MaxDataBytes: 4}
}

// pathDomain enumerates every path the generator may target: every
// non-empty sequence of 1 or 2 components drawn from {"a", "b"} (§4.6).
// Bounding the domain this tightly is deliberate — it forces generated
// operations to collide and interact instead of touching disjoint subtrees.
func pathDomain() []model.Path {
	letters := []string{"a", "b"}
	var out []model.Path
	for _, a := range letters {
		out = append(out, model.Path{a})
	}
	for _, a := range letters {
		for _, b := range letters {
			out = append(out, model.Path{a, b})
		}
	}
	return out
}

func weightTable(cfg Config) []weightedOp {
	table := []weightedOp{
		{model.OpRead, 5},
		{model.OpTouch, 1},
		{model.OpAppend, 1},
		{model.OpWrite, 1},
		{model.OpMkdir, 1},
		{model.OpMv, 1},
		{model.OpRm, 1},
		{model.OpLn, 1},
		{model.OpTruncate, 1},
		{model.OpFsync, 1},
	}
	if cfg.LoseUnfsyncedWrites {
		table = append(table, weightedOp{model.OpLoseUnfsyncedWrites, 1})
	}
	return table
}

// Generator produces operation histories from cfg, using a single
// rand.Rand seeded from cfg.Seed so that a (seed, config) pair always
// reproduces the same history; the path domain is the fixed pathDomain().
type Generator struct {
	cfg    Config
	rng    *rand.Rand
	paths  []model.Path
	table  []weightedOp
	total  int
	nextID int
}

// New returns a Generator for cfg.
func New(cfg Config) *Generator {
	table := weightTable(cfg)
	total := 0
	for _, w := range table {
		total += w.weight
	}
	return &Generator{
		cfg:   cfg,
		rng:   rand.New(rand.NewSource(cfg.Seed)),
		paths: pathDomain(),
		table: table,
		total: total,
	}
}

// Invocation is one generated operation: a stable ID (so the checker can
// pair this invocation with its eventual completion) plus the Op itself.
type Invocation struct {
	ID int
	Op model.Op
}

// Generate produces a full history of cfg.Length invocations.
func (g *Generator) Generate() []Invocation {
	out := make([]Invocation, g.cfg.Length)
	for i := range out {
		out[i] = g.next()
	}
	return out
}

func (g *Generator) next() Invocation {
	id := g.nextID
	g.nextID++
	return Invocation{ID: id, Op: g.randomOp()}
}

func (g *Generator) randomOp() model.Op {
	kind := g.pickKind()
	switch kind {
	case model.OpRead, model.OpTouch, model.OpRm, model.OpMkdir, model.OpFsync:
		return model.Op{Kind: kind, Path: g.pickPath()}
	case model.OpWrite, model.OpAppend:
		return model.Op{Kind: kind, Path: g.pickPath(), Data: g.randomData()}
	case model.OpMv, model.OpLn:
		return model.Op{Kind: kind, Path: g.pickPath(), To: g.pickPath()}
	case model.OpTruncate:
		return model.Op{Kind: kind, Path: g.pickPath(), Delta: g.randomDelta()}
	case model.OpLoseUnfsyncedWrites:
		return model.Op{Kind: kind}
	default:
		panic("genhist: unhandled op kind in weight table")
	}
}

func (g *Generator) pickKind() model.OpKind {
	r := g.rng.Intn(g.total)
	for _, w := range g.table {
		if r < w.weight {
			return w.kind
		}
		r -= w.weight
	}
	return g.table[len(g.table)-1].kind
}

func (g *Generator) pickPath() model.Path {
	return g.paths[g.rng.Intn(len(g.paths))]
}

// randomData returns generator-produced bytes. The spec requires the
// generator to emit only hex-encodable bytes for determinism; any []byte
// value qualifies, since the hex encoding happens at the wire boundary
// (internal/history), not here.
func (g *Generator) randomData() []byte {
	n := g.rng.Intn(g.cfg.MaxDataBytes + 1)
	b := make([]byte, n)
	g.rng.Read(b)
	return b
}

// randomDelta occasionally produces negative deltas (shrinking a file) as
// well as positive ones (growing it), exercising both branches of
// truncate's signed-delta semantics (§4.4, §9).
func (g *Generator) randomDelta() int64 {
	return int64(g.rng.Intn(9) - 4)
}
