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

import (
	"regexp"
	"strings"
)

// Context classifies the word a position resolved to.
type Context string

const (
	ContextNone     Context = ""
	ContextPhandle  Context = "phandle"
	ContextLabelRef Context = "label_ref"
	ContextInclude  Context = "include"
)

// Word is the identifier at a buffer position, plus the syntactic context
// it was found in.
type Word struct {
	Text    string
	Context Context
}

var (
	phandleRefRe  = regexp.MustCompile(`<&(\w+)[^>]*>`)
	includeLineRe = regexp.MustCompile(`#include|/include/|require|inherit`)
)

func isWordByte(b byte) bool {
	return b == '_' || ('a' <= b && b <= 'z') || ('A' <= b && b <= 'Z') || ('0' <= b && b <= '9')
}

// ExtractWord computes the word at (line, col) in text, both 0-based: a
// `<&IDENT …>` phandle reference straddling the column wins outright;
// otherwise the run of `[\w&]`/`\w` characters around the column is the
// word, with label_ref/include context layered on afterward. Returns false
// if nothing is extractable.
func ExtractWord(text string, line, col int) (Word, bool) {
	lines := strings.Split(text, "\n")
	if line < 0 || line >= len(lines) {
		return Word{}, false
	}
	l := lines[line]
	if col < 0 {
		col = 0
	}
	if col > len(l) {
		col = len(l)
	}

	for _, span := range phandleRefRe.FindAllStringIndex(l, -1) {
		if col < span[0] || col > span[1] {
			continue
		}
		m := phandleRefRe.FindStringSubmatch(l[span[0]:span[1]])
		if m != nil {
			return Word{Text: "&" + m[1], Context: ContextPhandle}, true
		}
	}

	start := col
	for start > 0 && (isWordByte(l[start-1]) || l[start-1] == '&') {
		start--
	}
	end := col
	for end < len(l) && isWordByte(l[end]) {
		end++
	}
	if start == end {
		return Word{}, false
	}
	word := l[start:end]

	ctx := ContextNone
	if strings.HasPrefix(word, "&") {
		ctx = ContextLabelRef
	}
	if includeLineRe.MatchString(l) {
		ctx = ContextInclude
	}
	return Word{Text: word, Context: ctx}, true
}
