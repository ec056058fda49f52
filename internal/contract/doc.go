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

// Package contract holds the soft limits the indexing controller enforces
// before handing a file to a parser — currently just a maximum file size,
// so that a single generated or vendored blob that slipped past the
// exclude-glob list can't blow up parser memory for the rest of a run.
//
// # Configuration via Environment
//
//	export BSPIDX_SOFT_LIMIT_BYTES=33554432  # 32 MiB
//
// If unset or invalid, DefaultSoftLimitBytes (64 MiB) applies.
package contract
