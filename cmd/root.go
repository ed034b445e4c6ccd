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

// Package cmd wires the CLI surface (§6): quickcheck, test, and serve
// subcommands on a cobra root command, adapted from the teacher's
// cmd.Execute() entry point but retargeted at fscheck's own flags (§A.1).
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/fscheck/fscheck/cfg"
)

var (
	cfgFile     string
	printConfig bool
	bindErr     error
	Config      cfg.Config
)

var rootCmd = &cobra.Command{
	Use:   "fscheck",
	Short: "Property-based crash-consistency checker for POSIX-like filesystems",
	Long: `fscheck generates random filesystem operation histories, cross-checks
them against a purely-functional reference model and a real filesystem
under test, and shrinks any divergence to a minimal reproducer.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if bindErr != nil {
			return bindErr
		}
		c, err := cfg.Load(cfgFile)
		if err != nil {
			return err
		}
		if err := cfg.Validate(&c); err != nil {
			return err
		}
		Config = c

		if printConfig {
			dump, err := cfg.Dump(c)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), dump)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Path to a YAML config file merged under CLI flags.")
	rootCmd.PersistentFlags().BoolVar(&printConfig, "print-config", false, "Print the fully merged flag+file configuration as YAML before running.")
	bindErr = cfg.BindFlags(rootCmd.PersistentFlags())
	viper.SetEnvPrefix("FSCHECK")
	viper.AutomaticEnv()

	rootCmd.AddCommand(quickcheckCmd)
	rootCmd.AddCommand(testCmd)
	rootCmd.AddCommand(serveCmd)
}

// Execute runs the root command; main.go's sole job is to call this and
// translate a non-nil error into a nonzero exit code.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
