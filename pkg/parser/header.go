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

var defineRe = regexp.MustCompile(`^#\s*define\s+([A-Za-z_][A-Za-z0-9_]*)(?:\s+(.*))?$`)
var includeRe = regexp.MustCompile(`^#\s*include\s*[<"]([^>"]+)[>"]`)

// HeaderParser handles C headers (.h), extracting #define and #include
// directives. It does not evaluate the preprocessor: conditionals
// (#ifdef/#if/#endif) are not tracked.
type HeaderParser struct{}

func (HeaderParser) Parse(fileID int64, path string, content []byte) (*Result, error) {
	lines := strings.Split(string(content), "\n")
	res := newResult(countLines(content))

	var pending strings.Builder
	pendingStartLine := 0
	pendingName := ""

	flush := func() {
		if pendingName == "" {
			return
		}
		res.Symbols = append(res.Symbols, model.Symbol{
			Name:   pendingName,
			Value:  stripCComments(pending.String()),
			Kind:   model.SymbolKindDefine,
			FileID: fileID,
			Line:   pendingStartLine,
		})
		pendingName = ""
		pending.Reset()
	}

	for i, raw := range lines {
		lineNum := i + 1
		line := strings.TrimRight(raw, "\r")

		if pendingName != "" {
			trimmed := strings.TrimRight(line, " \t")
			if strings.HasSuffix(trimmed, "\\") {
				pending.WriteString(" ")
				pending.WriteString(strings.TrimSpace(strings.TrimSuffix(trimmed, "\\")))
				continue
			}
			pending.WriteString(" ")
			pending.WriteString(strings.TrimSpace(trimmed))
			flush()
			continue
		}

		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		if m := includeRe.FindStringSubmatch(trimmed); m != nil {
			res.Includes = append(res.Includes, model.Include{
				FromFileID: fileID,
				ToPath:     m[1],
				Kind:       model.IncludeKindCInclude,
				Line:       lineNum,
			})
			continue
		}

		if m := defineRe.FindStringSubmatch(trimmed); m != nil {
			value := ""
			if len(m) > 2 {
				value = m[2]
			}
			if strings.HasSuffix(strings.TrimRight(value, " \t"), "\\") {
				pendingName = m[1]
				pendingStartLine = lineNum
				pending.Reset()
				pending.WriteString(strings.TrimSpace(strings.TrimSuffix(strings.TrimRight(value, " \t"), "\\")))
				continue
			}
			res.Symbols = append(res.Symbols, model.Symbol{
				Name:   m[1],
				Value:  stripCComments(value),
				Kind:   model.SymbolKindDefine,
				FileID: fileID,
				Line:   lineNum,
			})
		}
	}
	flush()

	return res, nil
}

// stripCComments removes /* ... */ block comments (no nesting, C doesn't
// allow it) and // line comments, then trims the result.
func stripCComments(s string) string {
	for {
		start := strings.Index(s, "/*")
		if start < 0 {
			break
		}
		end := strings.Index(s[start:], "*/")
		if end < 0 {
			s = s[:start]
			break
		}
		s = s[:start] + s[start+end+2:]
	}
	if idx := strings.Index(s, "//"); idx >= 0 {
		s = s[:idx]
	}
	return strings.TrimSpace(s)
}
