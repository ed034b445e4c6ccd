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
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommandRegistersSubcommands(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	assert.True(t, names["quickcheck"])
	assert.True(t, names["test"])
	assert.True(t, names["serve"])
}

func TestBindFlagsSucceeds(t *testing.T) {
	require.NoError(t, bindErr)
}

func TestPrintConfigFlagEmitsYAML(t *testing.T) {
	dir := t.TempDir()
	rootCmd.SetArgs([]string{"--print-config", "--dir", dir, "--trials", "1", "test"})
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)

	// "test" runs a single real trial against a dir SUT rooted at a temp
	// directory; this asserts only that --print-config's YAML dump was
	// written before the subcommand ran, not on the trial's outcome.
	_ = rootCmd.Execute()

	assert.Contains(t, out.String(), "trials: 1")
}
