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

package query

import "testing"

func TestResolveIncludeTarget(t *testing.T) {
	tests := []struct {
		name        string
		line        string
		currentFile string
		projectRoot string
		want        string
		wantOK      bool
	}{
		{
			name:        "c include relative to current file's directory",
			line:        `#include "board.h"`,
			currentFile: "include/soc.h",
			want:        "include/board.h",
			wantOK:      true,
		},
		{
			name:        "c include with angle brackets",
			line:        `#include <linux/types.h>`,
			currentFile: "drivers/foo.c",
			want:        "drivers/linux/types.h",
			wantOK:      true,
		},
		{
			name:        "device tree include directive",
			line:        `/include/ "am33xx.dtsi"`,
			currentFile: "boards/beagle.dts",
			want:        "boards/am33xx.dtsi",
			wantOK:      true,
		},
		{
			name:        "bitbake require",
			line:        "require common.inc",
			currentFile: "recipes/foo.bb",
			want:        "recipes/common.inc",
			wantOK:      true,
		},
		{
			name:        "bitbake include",
			line:        "include optional.inc",
			currentFile: "recipes/foo.bb",
			want:        "recipes/optional.inc",
			wantOK:      true,
		},
		{
			name:        "inherit resolves under projectRoot/classes",
			line:        "inherit autotools",
			currentFile: "recipes/foo.bb",
			projectRoot: "/proj",
			want:        "/proj/classes/autotools.bbclass",
			wantOK:      true,
		},
		{
			name:        "inherit with a variable reference is unresolvable",
			line:        "inherit ${SOME_CLASS}",
			currentFile: "recipes/foo.bb",
			wantOK:      false,
		},
		{
			name:        "absolute require target passes through unchanged",
			line:        "require /opt/meta/common.inc",
			currentFile: "recipes/foo.bb",
			want:        "/opt/meta/common.inc",
			wantOK:      true,
		},
		{
			name:        "plain assignment is not an include line",
			line:        `SUMMARY = "a recipe"`,
			currentFile: "recipes/foo.bb",
			wantOK:      false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := resolveIncludeTarget(tt.line, tt.currentFile, tt.projectRoot)
			if ok != tt.wantOK {
				t.Fatalf("resolveIncludeTarget() ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("resolveIncludeTarget() = %q, want %q", got, tt.want)
			}
		})
	}
}
