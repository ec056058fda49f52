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

// Package query answers code-intelligence requests (C6) against the
// indexed store, optionally accelerated by the cache tier and falling
// through to a live host-side scan when the store has nothing useful to
// say. Every entry point takes a buffer's current text directly rather
// than trusting the store's copy, since the editor's buffer may hold
// unsaved edits the index hasn't seen yet.
package query

import (
	"github.com/bspindex/bspidx/pkg/cache"
	"github.com/bspindex/bspidx/pkg/content"
	"github.com/bspindex/bspidx/pkg/store"
)

// FindReferencesLimit bounds the number of results FindReferences returns.
const FindReferencesLimit = 100

// Engine answers queries against one project's store. Cache and Provider
// are both optional: a nil Cache skips result memoization, a nil Provider
// disables the live-scan fallback in Search. ProjectRoot anchors
// `inherit NAME` resolution to `<project_root>/classes/NAME.bbclass`.
type Engine struct {
	Store       store.Store
	Cache       *cache.Tier
	Provider    content.Provider
	ProjectRoot string
}

// New constructs a query Engine. cache and provider may be nil.
func New(st store.Store, ct *cache.Tier, provider content.Provider, projectRoot string) *Engine {
	return &Engine{Store: st, Cache: ct, Provider: provider, ProjectRoot: projectRoot}
}
