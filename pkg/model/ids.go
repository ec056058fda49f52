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

package model

import "path/filepath"

// NormalizePath cleans a path for consistent identity comparisons: it
// strips a leading "./", cleans redundant separators, converts to forward
// slashes, and drops a leading slash so absolute and relative forms of the
// same path compare equal.
func NormalizePath(path string) string {
	if len(path) >= 2 && path[0:2] == "./" {
		path = path[2:]
	}
	path = filepath.Clean(path)
	path = filepath.ToSlash(path)
	if len(path) > 0 && path[0] == '/' {
		path = path[1:]
	}
	return path
}

// ClassifyFile infers a FileKind from a path's extension.
func ClassifyFile(path string) FileKind {
	switch filepath.Ext(path) {
	case ".bb", ".bbappend", ".inc":
		return FileKindRecipe
	case ".h", ".hpp":
		return FileKindHeader
	case ".dts", ".dtsi":
		return FileKindDTS
	case ".conf":
		return FileKindConfig
	case ".c", ".cc", ".cpp":
		return FileKindSource
	default:
		return FileKindOther
	}
}
