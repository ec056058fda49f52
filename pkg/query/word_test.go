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

func TestExtractWord(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		line     int
		col      int
		wantText string
		wantCtx  Context
		wantOK   bool
	}{
		{
			name:     "plain identifier",
			text:     "SRC_URI = \"foo\"\n",
			line:     0,
			col:      2,
			wantText: "SRC_URI",
			wantCtx:  ContextNone,
			wantOK:   true,
		},
		{
			name:     "phandle reference wins over label_ref",
			text:     "interrupt-parent = <&uart1>;\n",
			line:     0,
			col:      23,
			wantText: "&uart1",
			wantCtx:  ContextPhandle,
			wantOK:   true,
		},
		{
			name:     "label reference outside phandle brackets",
			text:     "&uart1 {\n\tstatus = \"okay\";\n};\n",
			line:     0,
			col:      3,
			wantText: "&uart1",
			wantCtx:  ContextLabelRef,
			wantOK:   true,
		},
		{
			name:     "include context from a require line",
			text:     "require common.inc\n",
			line:     0,
			col:      10,
			wantText: "common",
			wantCtx:  ContextInclude,
			wantOK:   true,
		},
		{
			name:   "no word at a blank column",
			text:   "   \n",
			line:   0,
			col:    1,
			wantOK: false,
		},
		{
			name:   "line out of range",
			text:   "FOO\n",
			line:   5,
			col:    0,
			wantOK: false,
		},
		{
			name:     "column past end of line clamps",
			text:     "FOO\n",
			line:     0,
			col:      100,
			wantText: "FOO",
			wantCtx:  ContextNone,
			wantOK:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractWord(tt.text, tt.line, tt.col)
			if ok != tt.wantOK {
				t.Fatalf("ExtractWord() ok = %v, want %v", ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if got.Text != tt.wantText || got.Context != tt.wantCtx {
				t.Errorf("ExtractWord() = %+v, want Text=%q Context=%q", got, tt.wantText, tt.wantCtx)
			}
		})
	}
}
