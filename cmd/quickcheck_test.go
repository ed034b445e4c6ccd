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
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fscheck/fscheck/cfg"
	"github.com/fscheck/fscheck/internal/sut"
)

func TestNewSUTFactoryIsolatesTrialDirectories(t *testing.T) {
	c := cfg.Defaults()
	c.Dir = t.TempDir()
	factory := newSUTFactory(c)

	a := factory(0).(*sut.Dir)
	b := factory(1).(*sut.Dir)

	assert.NotEqual(t, a.Root, b.Root)
	assert.Contains(t, a.Root, "trial-0")
	assert.Contains(t, b.Root, "trial-1")
}
