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

package genhist

import (
	"testing"

	"github.com/fscheck/fscheck/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateIsDeterministicForASeed(t *testing.T) {
	cfg := Config{Seed: 42, Length: 200, MaxDataBytes: 4}
	a := New(cfg).Generate()
	b := New(cfg).Generate()
	require.Equal(t, len(a), len(b))
	for i := range a {
		assert.Equal(t, a[i], b[i])
	}
}

func TestGenerateProducesStableSequentialIDs(t *testing.T) {
	invocations := New(Config{Seed: 1, Length: 50, MaxDataBytes: 2}).Generate()
	for i, inv := range invocations {
		assert.Equal(t, i, inv.ID)
	}
}

func TestGenerateNeverEmitsLoseUnfsyncedWritesUnlessEnabled(t *testing.T) {
	cfg := Config{Seed: 7, Length: 2000, MaxDataBytes: 4, LoseUnfsyncedWrites: false}
	for _, inv := range New(cfg).Generate() {
		assert.NotEqual(t, model.OpLoseUnfsyncedWrites, inv.Op.Kind)
	}
}

func TestGenerateEmitsLoseUnfsyncedWritesWhenEnabled(t *testing.T) {
	cfg := Config{Seed: 7, Length: 2000, MaxDataBytes: 4, LoseUnfsyncedWrites: true}
	found := false
	for _, inv := range New(cfg).Generate() {
		if inv.Op.Kind == model.OpLoseUnfsyncedWrites {
			found = true
			break
		}
	}
	assert.True(t, found, "expected at least one lose_unfsynced_writes op across 2000 draws")
}

func TestGeneratedPathsStayWithinTheBoundedDomain(t *testing.T) {
	cfg := DefaultConfig(3)
	cfg.Length = 500
	for _, inv := range New(cfg).Generate() {
		for _, p := range []model.Path{inv.Op.Path, inv.Op.To} {
			if p == nil {
				continue
			}
			assert.LessOrEqual(t, len(p), 2)
			for _, c := range p {
				assert.Contains(t, []string{"a", "b"}, c)
			}
		}
	}
}

func TestDefaultConfigMatchesHistoryLengthScale(t *testing.T) {
	cfg := DefaultConfig(9)
	assert.Equal(t, 1000, cfg.Length)
	assert.False(t, cfg.LoseUnfsyncedWrites)
}
