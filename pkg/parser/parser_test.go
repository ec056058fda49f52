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

package parser

import (
	"testing"

	"github.com/bspindex/bspidx/pkg/model"
)

func TestForKind(t *testing.T) {
	cases := []struct {
		kind    model.FileKind
		wantOK  bool
		wantTyp Parser
	}{
		{model.FileKindRecipe, true, RecipeParser{}},
		{model.FileKindConfig, true, RecipeParser{}},
		{model.FileKindHeader, true, HeaderParser{}},
		{model.FileKindDTS, true, DeviceTreeParser{}},
		{model.FileKindSource, false, nil},
		{model.FileKindOther, false, nil},
	}
	for _, c := range cases {
		p, ok := ForKind(c.kind)
		if ok != c.wantOK {
			t.Errorf("ForKind(%q) ok = %v, want %v", c.kind, ok, c.wantOK)
		}
		if ok && p != c.wantTyp {
			t.Errorf("ForKind(%q) = %#v, want %#v", c.kind, p, c.wantTyp)
		}
	}
}

func TestCountLines(t *testing.T) {
	cases := []struct {
		in   string
		want int
	}{
		{"", 1},
		{"one line", 1},
		{"line1\nline2", 2},
		{"line1\nline2\n", 3},
	}
	for _, c := range cases {
		if got := countLines([]byte(c.in)); got != c.want {
			t.Errorf("countLines(%q) = %d, want %d", c.in, got, c.want)
		}
	}
}
