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
	"fmt"
	"math/rand"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/fscheck/fscheck/cfg"
	"github.com/fscheck/fscheck/internal/engine"
	"github.com/fscheck/fscheck/internal/logger"
	"github.com/fscheck/fscheck/internal/sut"
)

var quickcheckCmd = &cobra.Command{
	Use:   "quickcheck",
	Short: "Generate-and-shrink loop: run trials until one diverges, then minimize it (§4.9)",
	RunE:  runQuickcheck,
}

// newSUTFactory returns a per-trial SUT constructor for the configured
// --db driver, each trial getting its own isolated working subdirectory so
// concurrent trials never collide. --db=lazyfs is rejected by cfg.Validate
// before this is ever called (§1: lazyfs mount lifecycle is an external
// collaborator).
func newSUTFactory(c cfg.Config) func(trialIndex int) sut.SUT {
	return func(trialIndex int) sut.SUT {
		return &sut.Dir{Root: filepath.Join(c.Dir, fmt.Sprintf("trial-%d", trialIndex))}
	}
}

func runQuickcheck(cmd *cobra.Command, args []string) error {
	c := Config

	seed := c.Seed
	if seed == 0 {
		seed = rand.New(rand.NewSource(time.Now().UnixNano())).Int63()
	}

	econf := engine.DefaultConfig()
	econf.Trials = c.Trials
	econf.Scour = c.QuickcheckScour
	econf.LoseUnfsyncedWrites = c.LoseUnfsyncedWrites
	econf.Concurrency = c.Concurrency
	econf.Seed = seed
	if c.TimeLimitSeconds > 0 {
		econf.TimeLimit = time.Duration(c.TimeLimitSeconds) * time.Second
	}
	econf.CheckInvariants = c.Debug.ExitOnInvariantViolation
	econf.ExitOnInvariantViolation = c.Debug.ExitOnInvariantViolation

	newSUT := newSUTFactory(c)

	eng := engine.New(econf, newSUT, logger.Slog())

	logger.Infof("quickcheck: starting %d trials (seed=%d, scour=%d, db=%s)", econf.Trials, seed, econf.Scour, c.Db)

	if err := eng.Run(cmd.Context()); err != nil && cmd.Context().Err() == nil {
		return fmt.Errorf("quickcheck: %w", err)
	}

	all := eng.Results.Snapshot()
	if c.Out != "" {
		if err := engine.SaveAll(c.Out, all); err != nil {
			return fmt.Errorf("quickcheck: saving results to %s: %w", c.Out, err)
		}
	}

	failures := eng.Results.Failures()
	if len(failures) == 0 {
		logger.Infof("quickcheck: %d trials passed, no divergence found", len(all))
		return nil
	}

	first := failures[0]
	logger.Warnf("quickcheck: trial %d diverged at index %d; minimized to %d operations", first.TrialIndex, first.Divergence.Index, len(first.Minimal))
	if c.Out != "" {
		logger.Infof("quickcheck: wrote results to %s", filepath.Join(c.Out, first.RunID.String()))
	}

	return fmt.Errorf("quickcheck: found a divergence in trial %d (seed %d)", first.TrialIndex, first.Seed)
}
