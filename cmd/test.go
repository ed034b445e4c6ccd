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

package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/fscheck/fscheck/internal/check"
	"github.com/fscheck/fscheck/internal/engine"
	"github.com/fscheck/fscheck/internal/genhist"
	"github.com/fscheck/fscheck/internal/history"
	"github.com/fscheck/fscheck/internal/logger"
	"github.com/fscheck/fscheck/internal/model"
	"github.com/fscheck/fscheck/internal/sut"
)

var testCmd = &cobra.Command{
	Use:   "test",
	Short: "Run a single fixed-duration trial against the configured SUT (no shrinking)",
	RunE:  runTest,
}

func runTest(cmd *cobra.Command, args []string) error {
	c := Config

	var ops []model.Op
	if c.History != "" {
		ops = opsFromHistoryFile(c.History)
		if ops == nil {
			return fmt.Errorf("test: %s contained no invoke events to replay", c.History)
		}
	} else {
		seed := c.Seed
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		gen := genhist.New(genhist.Config{
			Seed:                seed,
			Length:              1000,
			LoseUnfsyncedWrites: c.LoseUnfsyncedWrites,
			MaxDataBytes:        4,
		})
		invocations := gen.Generate()
		ops = make([]model.Op, len(invocations))
		for i, inv := range invocations {
			ops[i] = inv.Op
		}
	}

	ctx := cmd.Context()
	if c.TimeLimitSeconds > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(c.TimeLimitSeconds)*time.Second)
		defer cancel()
	}

	s := &sut.Dir{Root: filepath.Join(c.Dir, "test")}
	events, err := engine.Execute(ctx, s, ops)
	if err != nil {
		return fmt.Errorf("test: SUT setup/teardown: %w", err)
	}

	result := check.RunWithOptions(nil, events, check.Options{
		CheckInvariants:          c.Debug.ExitOnInvariantViolation,
		ExitOnInvariantViolation: c.Debug.ExitOnInvariantViolation,
	})

	if c.Out != "" {
		r := engine.Result{RunID: uuid.New(), Seed: c.Seed, Divergence: result.Divergence}
		if !result.Valid {
			r.FailingEvents = events
		}
		if err := engine.Save(c.Out, r); err != nil {
			return fmt.Errorf("test: saving result to %s: %w", c.Out, err)
		}
	}

	if result.Valid {
		logger.Infof("test: %d operations, no divergence", len(ops))
		return nil
	}

	if result.Divergence.Violation != nil {
		logger.Warnf("test: invariant violated at index %d: %v", result.Divergence.Index, result.Divergence.Violation)
		return fmt.Errorf("test: invariant violated at index %d: %w", result.Divergence.Index, result.Divergence.Violation)
	}

	logger.Warnf("test: diverged at index %d", result.Divergence.Index)
	return fmt.Errorf("test: diverged at index %d: expected %+v, got %+v", result.Divergence.Index, result.Divergence.Expected, result.Divergence.Actual)
}

// opsFromHistoryFile reads a captured history.edn (§6's event log format)
// and extracts its invoke events for the test subcommand to replay. Only
// the test subcommand reads --history; quickcheck always generates its
// histories and does not replay or shrink a captured one.
func opsFromHistoryFile(path string) []model.Op {
	f, err := os.Open(path)
	if err != nil {
		logger.Errorf("test: opening --history %s: %v", path, err)
		return nil
	}
	defer f.Close()

	events, err := history.ReadInvocations(f)
	if err != nil {
		logger.Errorf("test: decoding --history %s: %v", path, err)
		return nil
	}
	ops, err := engine.OpsOf(events)
	if err != nil {
		logger.Errorf("test: decoding operations from --history %s: %v", path, err)
		return nil
	}
	return ops
}
