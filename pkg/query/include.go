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
	"path"
	"regexp"
	"strings"
)

var (
	cIncludeRe  = regexp.MustCompile(`#include\s*[<"]([^>"]+)[>"]`)
	dtIncludeRe = regexp.MustCompile(`/include/\s*"([^"]+)"`)
	requireRe   = regexp.MustCompile(`^\s*(require|include)\s+(\S+)`)
	inheritRe   = regexp.MustCompile(`^\s*inherit\s+(\S+)`)
)

// resolveIncludeTarget extracts the raw target path named by line, one of
// `#include`, `/include/`, `require`/`include`, or `inherit`, and resolves
// it relative to currentFile's directory (absolute targets pass through
// unchanged; `inherit NAME` maps to `classes/NAME.bbclass` under
// projectRoot). Resolution never walks the filesystem — callers treat the
// result as an opaque location, not a verified existing file.
func resolveIncludeTarget(line, currentFile, projectRoot string) (string, bool) {
	if m := cIncludeRe.FindStringSubmatch(line); m != nil {
		return joinRelative(currentFile, m[1]), true
	}
	if m := dtIncludeRe.FindStringSubmatch(line); m != nil {
		return joinRelative(currentFile, m[1]), true
	}
	if m := requireRe.FindStringSubmatch(line); m != nil {
		return joinRelative(currentFile, m[2]), true
	}
	if m := inheritRe.FindStringSubmatch(line); m != nil {
		cls := strings.TrimSuffix(strings.TrimSpace(m[1]), ".bbclass")
		if strings.HasPrefix(cls, "$") {
			return "", false
		}
		return path.Join(projectRoot, "classes", cls+".bbclass"), true
	}
	return "", false
}

func joinRelative(currentFile, target string) string {
	if path.IsAbs(target) {
		return path.Clean(target)
	}
	return path.Clean(path.Join(path.Dir(currentFile), target))
}
