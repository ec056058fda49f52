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

// Package parser extracts structured records from a single source file's
// bytes. Every parser here is a pure, line-oriented function: it never
// consults another file, never blocks, and is resilient to malformed
// input — a bad line is skipped, not fatal.
package parser

import "github.com/bspindex/bspidx/pkg/model"

// Result is the record batch produced by parsing one file. DTNode/DTProperty
// batches use ordinal-relative ids (NodeOrdinal, ParentOrdinal) instead of
// store-assigned ids; the caller remaps them after insertion.
type Result struct {
	Symbols     []model.Symbol
	Includes    []model.Include
	DTNodes     []DTNodeRecord
	DTProps     []DTPropRecord
	GPIOPins    []model.GPIOPin
}

// DTNodeRecord is a DTNode before the store has assigned it an id. Ordinal
// is this node's position in DTNodes (0-based); ParentOrdinal is -1 for a
// root node, otherwise the ordinal of its parent within the same batch.
type DTNodeRecord struct {
	model.DTNode
	Ordinal       int
	ParentOrdinal int
}

// DTPropRecord is a DTProperty attached to a node by ordinal rather than by
// store-assigned node id.
type DTPropRecord struct {
	model.DTProperty
	NodeOrdinal int
}

// Parser extracts a Result from one file's content. FileID identifies the
// owning File record; Parse never needs any other file's content.
type Parser interface {
	Parse(fileID int64, path string, content []byte) (*Result, error)
}

// ForKind selects the Parser appropriate for a FileKind. It returns nil,
// false for kinds with no structural parser (source/other): the controller
// still records a File row for these, it simply emits no child records.
func ForKind(kind model.FileKind) (Parser, bool) {
	switch kind {
	case model.FileKindRecipe, model.FileKindConfig:
		return RecipeParser{}, true
	case model.FileKindHeader:
		return HeaderParser{}, true
	case model.FileKindDTS:
		return DeviceTreeParser{}, true
	default:
		return nil, false
	}
}

// newResult pre-sizes a Result from a rough line-count estimate so that
// append() rarely reallocates on realistically-sized BSP source files.
func newResult(estimatedLines int) *Result {
	guess := estimatedLines / 8
	if guess < 4 {
		guess = 4
	}
	return &Result{
		Symbols:  make([]model.Symbol, 0, guess),
		Includes: make([]model.Include, 0, guess/4+1),
	}
}

func countLines(content []byte) int {
	n := 1
	for _, b := range content {
		if b == '\n' {
			n++
		}
	}
	return n
}
