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

// Package testing provides shared test helpers for bspidx's engine tests:
// an in-memory content.Provider seeded with an in-memory file tree, and a
// store.Store constructor backed by pkg/store/memory, so that
// pkg/indexing, pkg/query, and pkg/engine tests don't each hand-roll the
// same fixtures.
//
// # Quick Start
//
//	func TestMyFeature(t *testing.T) {
//	    fp := testing.NewFakeProvider(map[string]string{
//	        "a.dtsi": "uart0: serial@401C8000 {\n\tstatus = \"disabled\";\n};\n",
//	    })
//	    st := testing.NewMemStore(t)
//	    // drive pkg/indexing.Controller or pkg/query.Engine against fp/st
//	}
package testing
