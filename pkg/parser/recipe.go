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
	"regexp"
	"strings"

	"github.com/bspindex/bspidx/pkg/model"
)

// assignRe matches `NAME[:override] OP "value"` lines in a BitBake recipe
// or a bitbake.conf-style config file. OP is captured separately since its
// set is fixed but not a single character.
var assignRe = regexp.MustCompile(`^([A-Z_][A-Z0-9_]*(?:[:_][A-Za-z0-9_]+)*)\s*(\?\?=|\?=|:=|\+=|\.=|_append|_prepend|:append|:prepend|=)\s*(.*)$`)

var requireRe = regexp.MustCompile(`^(require|include)\s+(\S+)\s*$`)
var inheritRe = regexp.MustCompile(`^inherit\s+(.+)$`)

// RecipeParser handles BitBake recipes (.bb, .bbappend, .inc) and
// bitbake.conf-style configuration files.
type RecipeParser struct{}

func (RecipeParser) Parse(fileID int64, path string, content []byte) (*Result, error) {
	lines := strings.Split(string(content), "\n")
	res := newResult(countLines(content))

	var pending strings.Builder
	pendingStartLine := 0

	flushPending := func(lineNum int) {
		if pending.Len() == 0 {
			return
		}
		joined := pending.String()
		pending.Reset()
		emitAssignment(res, fileID, joined, pendingStartLine)
		_ = lineNum
	}

	for i, raw := range lines {
		lineNum := i + 1
		line := raw

		if pending.Len() > 0 {
			// continuing a backslash-joined logical line
			trimmed := strings.TrimRight(line, "\r")
			if strings.HasSuffix(strings.TrimRight(trimmed, " \t"), "\\") {
				cont := strings.TrimSuffix(strings.TrimRight(trimmed, " \t"), "\\")
				pending.WriteString(" ")
				pending.WriteString(strings.TrimSpace(cont))
				continue
			}
			pending.WriteString(" ")
			pending.WriteString(strings.TrimSpace(trimmed))
			flushPending(lineNum)
			continue
		}

		trimmed := strings.TrimSpace(strings.TrimRight(line, "\r"))
		if trimmed == "" {
			continue
		}
		if strings.HasPrefix(trimmed, "#") {
			continue
		}

		if strings.HasSuffix(trimmed, "\\") {
			body := strings.TrimSuffix(trimmed, "\\")
			pending.Reset()
			pending.WriteString(strings.TrimSpace(body))
			pendingStartLine = lineNum
			continue
		}

		if m := requireRe.FindStringSubmatch(trimmed); m != nil {
			kind := model.IncludeKindInclude
			if m[1] == "require" {
				kind = model.IncludeKindRequire
			}
			res.Includes = append(res.Includes, model.Include{
				FromFileID: fileID,
				ToPath:     m[2],
				Kind:       kind,
				Line:       lineNum,
			})
			continue
		}

		if m := inheritRe.FindStringSubmatch(trimmed); m != nil {
			for _, cls := range strings.Fields(m[1]) {
				if strings.HasPrefix(cls, "$") {
					continue
				}
				res.Includes = append(res.Includes, model.Include{
					FromFileID: fileID,
					ToPath:     "classes/" + cls + ".bbclass",
					Kind:       model.IncludeKindInherit,
					Line:       lineNum,
				})
			}
			continue
		}

		if m := assignRe.FindStringSubmatch(trimmed); m != nil {
			emitAssignment(res, fileID, trimmed, lineNum)
		}
	}
	// a trailing backslash continuation with no terminating line is
	// malformed input; flush whatever was gathered rather than drop it.
	flushPending(len(lines))

	return res, nil
}

func emitAssignment(res *Result, fileID int64, line string, lineNum int) {
	m := assignRe.FindStringSubmatch(line)
	if m == nil {
		return
	}
	name := m[1]
	value := strings.TrimSpace(m[3])
	value = strings.Trim(value, `"`)
	res.Symbols = append(res.Symbols, model.Symbol{
		Name:   name,
		Value:  value,
		Kind:   model.SymbolKindVariable,
		FileID: fileID,
		Line:   lineNum,
	})
}
