// Copyright 2025 KrakLabs
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// For commercial licensing, contact: licensing@kraklabs.com
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package testing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFakeProvider_List(t *testing.T) {
	fp := NewFakeProvider(map[string]string{
		"recipes/foo/foo.bb":    "SUMMARY = \"foo\"\n",
		"recipes/foo/foo.inc":   "DEPENDS = \"bar\"\n",
		"recipes/bar/bar.bb":    "SUMMARY = \"bar\"\n",
		"recipes/foo/build.log": "ignored\n",
	})

	stats, err := fp.List(context.Background(), "recipes/foo", []string{"**/*.log"})
	require.NoError(t, err)
	require.Len(t, stats, 2)
	assert.Equal(t, "recipes/foo/foo.bb", stats[0].Path)
	assert.Equal(t, "recipes/foo/foo.inc", stats[1].Path)
}

func TestNewFakeProvider_ReadFile(t *testing.T) {
	fp := NewFakeProvider(map[string]string{
		"a.h": "#define FOO 1\n",
	})

	got, err := fp.ReadFile(context.Background(), "a.h")
	require.NoError(t, err)
	assert.Equal(t, "#define FOO 1\n", got)

	_, err = fp.ReadFile(context.Background(), "missing.h")
	assert.Error(t, err, "ReadFile on unseeded path should error")
}

func TestNewFakeProvider_WriteFileAndTouch(t *testing.T) {
	fp := NewFakeProvider(map[string]string{"a.dts": "/ {};\n"})
	ctx := context.Background()

	before, err := fp.List(ctx, "a.dts", nil)
	require.NoError(t, err)
	require.Len(t, before, 1)
	originalMTime := before[0].MTime

	require.NoError(t, fp.WriteFile(ctx, "b.dts", []byte("/ { x; };\n")))
	exists, err := fp.PathExists(ctx, "b.dts")
	require.NoError(t, err)
	assert.True(t, exists)

	fp.Touch("a.dts")
	after, err := fp.List(ctx, "a.dts", nil)
	require.NoError(t, err)
	require.Len(t, after, 1)
	assert.Greater(t, after[0].MTime, originalMTime, "Touch did not advance MTime")
}

func TestNewMemStore(t *testing.T) {
	s := NewMemStore(t)
	require.NotNil(t, s)
	stats, err := s.GetStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Files, "fresh store should start empty")
}
