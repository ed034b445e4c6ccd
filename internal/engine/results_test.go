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

package engine

import (
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/fscheck/fscheck/internal/check"
)

func TestResultTableConcurrentAddAndSnapshot(t *testing.T) {
	table := NewResultTable()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			table.Add(Result{RunID: uuid.New(), TrialIndex: i})
		}(i)
	}
	wg.Wait()

	assert.Len(t, table.Snapshot(), 50)
}

func TestResultTableFailuresFiltersValidTrials(t *testing.T) {
	table := NewResultTable()
	table.Add(Result{TrialIndex: 0})
	table.Add(Result{TrialIndex: 1, Divergence: &check.Divergence{Index: 3}})
	table.Add(Result{TrialIndex: 2})

	failures := table.Failures()
	assert.Len(t, failures, 1)
	assert.Equal(t, 1, failures[0].TrialIndex)
}
