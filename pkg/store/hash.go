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

package store

import (
	"fmt"
	"path/filepath"

	"github.com/cespare/xxhash/v2"
)

// ProjectHash returns a stable 32-bit hash of the absolute project root,
// rendered in base-16, matching the persisted-state naming scheme
// `project_<hash>.db`. Only the low 32 bits of the 64-bit xxhash digest are
// used; 32 bits of entropy is ample for a per-project filename and keeps
// the name short.
func ProjectHash(projectRoot string) string {
	clean := filepath.Clean(projectRoot)
	clean = filepath.ToSlash(clean)
	sum := xxhash.Sum64String(clean)
	return fmt.Sprintf("%08x", uint32(sum))
}

// DBFileName returns the per-project database filename used under the
// application-local indexes directory.
func DBFileName(projectRoot string) string {
	return "project_" + ProjectHash(projectRoot) + ".db"
}
