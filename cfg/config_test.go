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

package cfg

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateAcceptsDefaults(t *testing.T) {
	c := Defaults()
	assert.NoError(t, Validate(&c))
}

func TestValidateRejectsUnknownDb(t *testing.T) {
	c := Defaults()
	c.Db = "smb"
	assert.Error(t, Validate(&c))
}

func TestValidateRejectsLazyfs(t *testing.T) {
	c := Defaults()
	c.Db = DbLazyfs
	assert.Error(t, Validate(&c))
}

func TestValidateRejectsLowScour(t *testing.T) {
	c := Defaults()
	c.QuickcheckScour = 0
	assert.Error(t, Validate(&c))
}

func TestValidateRejectsNegativeTimeLimit(t *testing.T) {
	c := Defaults()
	c.TimeLimitSeconds = -1
	assert.Error(t, Validate(&c))
}

func TestValidateRejectsZeroConcurrency(t *testing.T) {
	c := Defaults()
	c.Concurrency = 0
	assert.Error(t, Validate(&c))
}

func TestValidateRejectsZeroTrials(t *testing.T) {
	c := Defaults()
	c.Trials = 0
	assert.Error(t, Validate(&c))
}
