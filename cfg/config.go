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

// Package cfg holds the configuration surface shared by every fscheck
// subcommand: flag binding (pflag), file-plus-flag merging (viper), and
// validation. Adapted from the teacher's cfg package — same
// pflag/viper/yaml.v3 stack, same BindFlags-then-Validate shape — but
// reduced to the flags §6 and §A.1 of SPEC_FULL.md actually name.
package cfg

import (
	"fmt"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Db names which SUT driver a run targets.
type Db string

const (
	DbDir    Db = "dir"
	DbLazyfs Db = "lazyfs"
)

// Debug mirrors the teacher's cfg.DebugConfig: a single flag gating the
// model's expensive whole-state invariant walk.
type Debug struct {
	ExitOnInvariantViolation bool `yaml:"exit-on-invariant-violation" mapstructure:"exit-on-invariant-violation"`
}

// Config is the merged view of CLI flags and an optional YAML file
// (SPEC_FULL.md §A.1). Every subcommand (quickcheck/test/serve) reads the
// same struct; fields a given subcommand ignores are simply left at their
// default.
type Config struct {
	Db                  Db     `yaml:"db" mapstructure:"db"`
	Dir                 string `yaml:"dir" mapstructure:"dir"`
	Version             string `yaml:"version" mapstructure:"version"`
	History             string `yaml:"history" mapstructure:"history"`
	QuickcheckScour     int    `yaml:"quickcheck-scour" mapstructure:"quickcheck-scour"`
	LoseUnfsyncedWrites bool   `yaml:"lose-unfsynced-writes" mapstructure:"lose-unfsynced-writes"`
	TimeLimitSeconds    int    `yaml:"time-limit" mapstructure:"time-limit"`
	Concurrency         int    `yaml:"concurrency" mapstructure:"concurrency"`
	Seed                int64  `yaml:"seed" mapstructure:"seed"`
	Trials              int    `yaml:"trials" mapstructure:"trials"`
	Out                 string `yaml:"out" mapstructure:"out"`
	Addr                string `yaml:"addr" mapstructure:"addr"`

	Debug Debug `yaml:"debug" mapstructure:"debug"`
}

// Defaults returns SPEC_FULL.md §C.1's stated defaults: scour=1,
// time-limit=0 (unbounded), trials=200 (§4.9), dir adapter, 1000-length
// histories are a genhist concern, not a cfg one.
func Defaults() Config {
	return Config{
		Db:              DbDir,
		Dir:             "./fscheck-work",
		QuickcheckScour: 1,
		Trials:          200,
		Concurrency:     1,
		Addr:            "localhost:8787",
	}
}

// BindFlags registers the run flags on flagSet (every flag SPEC_FULL.md
// §A.1 names except --config, which cmd's root command registers itself,
// plus --addr and --debug_invariants) and binds each into viper under the
// matching key, the same
// flagSet.StringP/viper.BindPFlag pairing the teacher's cfg.BindFlags uses
// per flag.
func BindFlags(flagSet *pflag.FlagSet) error {
	d := Defaults()

	flagSet.StringP("db", "", string(d.Db), "SUT driver to cross-check the model against: dir or lazyfs.")
	if err := viper.BindPFlag("db", flagSet.Lookup("db")); err != nil {
		return err
	}

	flagSet.StringP("dir", "", d.Dir, "Working directory the SUT adapter operates on.")
	if err := viper.BindPFlag("dir", flagSet.Lookup("dir")); err != nil {
		return err
	}

	flagSet.StringP("version", "", "", "lazyfs version string (passed through to the lazyfs adapter).")
	if err := viper.BindPFlag("version", flagSet.Lookup("version")); err != nil {
		return err
	}

	flagSet.StringP("history", "", "", "Path to a captured history.edn for the test subcommand to replay instead of generating one; quickcheck ignores it.")
	if err := viper.BindPFlag("history", flagSet.Lookup("history")); err != nil {
		return err
	}

	flagSet.IntP("quickcheck-scour", "", d.QuickcheckScour, "Re-executions of a shrink candidate before trusting its pass/fail verdict (§4.8).")
	if err := viper.BindPFlag("quickcheck-scour", flagSet.Lookup("quickcheck-scour")); err != nil {
		return err
	}

	flagSet.BoolP("lose-unfsynced-writes", "", d.LoseUnfsyncedWrites, "Let the generator emit lose_unfsynced_writes operations.")
	if err := viper.BindPFlag("lose-unfsynced-writes", flagSet.Lookup("lose-unfsynced-writes")); err != nil {
		return err
	}

	flagSet.IntP("time-limit", "", d.TimeLimitSeconds, "Wall-clock seconds to run before stopping; 0 means unbounded.")
	if err := viper.BindPFlag("time-limit", flagSet.Lookup("time-limit")); err != nil {
		return err
	}

	flagSet.IntP("concurrency", "", d.Concurrency, "Number of trials to run concurrently.")
	if err := viper.BindPFlag("concurrency", flagSet.Lookup("concurrency")); err != nil {
		return err
	}

	flagSet.Int64P("seed", "", 0, "Base PRNG seed; trial i uses seed+i. 0 picks a random base seed.")
	if err := viper.BindPFlag("seed", flagSet.Lookup("seed")); err != nil {
		return err
	}

	flagSet.IntP("trials", "", d.Trials, "Number of trials to attempt before giving up without a failure (§4.9).")
	if err := viper.BindPFlag("trials", flagSet.Lookup("trials")); err != nil {
		return err
	}

	flagSet.StringP("out", "", "", "Directory to write the minimal failing history.edn to, if a trial fails.")
	if err := viper.BindPFlag("out", flagSet.Lookup("out")); err != nil {
		return err
	}

	flagSet.StringP("addr", "", d.Addr, "Listen address for the serve subcommand's results index.")
	if err := viper.BindPFlag("addr", flagSet.Lookup("addr")); err != nil {
		return err
	}

	flagSet.BoolP("debug_invariants", "", false, "Exit when an internal model invariant is violated.")
	if err := viper.BindPFlag("debug.exit-on-invariant-violation", flagSet.Lookup("debug_invariants")); err != nil {
		return err
	}

	return nil
}

// Validate rejects out-of-range or unrecognized values, the way the
// teacher's cfg.validateConfig rejects a malformed Config before mount
// proceeds.
func Validate(c *Config) error {
	if c.Db != DbDir && c.Db != DbLazyfs {
		return fmt.Errorf("cfg: unrecognized --db %q, want %q or %q", c.Db, DbDir, DbLazyfs)
	}
	if c.QuickcheckScour < 1 {
		return fmt.Errorf("cfg: --quickcheck-scour must be >= 1, got %d", c.QuickcheckScour)
	}
	if c.TimeLimitSeconds < 0 {
		return fmt.Errorf("cfg: --time-limit must be >= 0, got %d", c.TimeLimitSeconds)
	}
	if c.Concurrency < 1 {
		return fmt.Errorf("cfg: --concurrency must be >= 1, got %d", c.Concurrency)
	}
	if c.Trials < 1 {
		return fmt.Errorf("cfg: --trials must be >= 1, got %d", c.Trials)
	}
	if c.Db == DbLazyfs {
		return fmt.Errorf("cfg: --db=lazyfs is not implemented by this repo (mounting and lifecycle of lazyfs is an external collaborator, spec.md §1)")
	}
	return nil
}

// Load merges bound flags with an optional YAML file (when --config is
// given) and unmarshals the result into a fresh Config, the same
// flag-then-file-then-unmarshal order the teacher's cfg.Load follows.
func Load(configFile string) (Config, error) {
	if configFile != "" {
		viper.SetConfigFile(configFile)
		if err := viper.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("cfg: reading config file %s: %w", configFile, err)
		}
	}

	c := Defaults()
	if err := viper.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("cfg: unmarshalling config: %w", err)
	}
	return c, nil
}

// Dump renders c as YAML, the format --config files are written in. Used
// by `fscheck quickcheck --print-config` (and by tests) to show the fully
// merged flag+file configuration a run will actually use.
func Dump(c Config) (string, error) {
	out, err := yaml.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("cfg: marshalling config to yaml: %w", err)
	}
	return string(out), nil
}
