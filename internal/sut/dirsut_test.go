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

package sut

import (
	"context"
	"testing"

	"github.com/fscheck/fscheck/internal/model"
	"github.com/stretchr/testify/require"
)

func TestDirTouchWriteRead(t *testing.T) {
	ctx := context.Background()
	d := &Dir{Root: t.TempDir()}
	require.NoError(t, d.Setup(ctx))
	defer d.Teardown(ctx)

	c, err := d.Apply(ctx, model.Op{Kind: model.OpWrite, Path: model.Path{"a"}, Data: []byte{0x1a}})
	require.NoError(t, err)
	require.True(t, c.OK)

	c, err = d.Apply(ctx, model.Op{Kind: model.OpRead, Path: model.Path{"a"}})
	require.NoError(t, err)
	require.True(t, c.OK)
	require.Equal(t, []byte{0x1a}, c.Data)
}

func TestDirReadMissingFailsDoesNotExist(t *testing.T) {
	ctx := context.Background()
	d := &Dir{Root: t.TempDir()}
	require.NoError(t, d.Setup(ctx))
	defer d.Teardown(ctx)

	c, err := d.Apply(ctx, model.Op{Kind: model.OpRead, Path: model.Path{"missing"}})
	require.NoError(t, err)
	require.False(t, c.OK)
	require.Equal(t, model.DoesNotExist, c.Err)
}

func TestDirMkdirTwiceFailsExists(t *testing.T) {
	ctx := context.Background()
	d := &Dir{Root: t.TempDir()}
	require.NoError(t, d.Setup(ctx))
	defer d.Teardown(ctx)

	_, err := d.Apply(ctx, model.Op{Kind: model.OpMkdir, Path: model.Path{"a"}})
	require.NoError(t, err)
	c, err := d.Apply(ctx, model.Op{Kind: model.OpMkdir, Path: model.Path{"a"}})
	require.NoError(t, err)
	require.False(t, c.OK)
	require.Equal(t, model.Exists, c.Err)
}
