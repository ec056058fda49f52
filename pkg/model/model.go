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

// Package model defines the record types shared by the parsers, the store,
// the cache tier and the query layer.
//
// Records are plain structs with synthetic int64 ids assigned by the store;
// DTNode.ParentID is an id, never a pointer, so the in-memory representation
// of a device-tree stays acyclic even though the tree it describes is not.
package model

// FileKind classifies a File by how its content is parsed.
type FileKind string

const (
	FileKindRecipe FileKind = "recipe"
	FileKindHeader FileKind = "header"
	FileKindDTS    FileKind = "dts"
	FileKindConfig FileKind = "config"
	FileKindSource FileKind = "source"
	FileKindOther  FileKind = "other"
)

// File is one indexed source file. Path is the canonical (cleaned,
// slash-normalized) identity; it is unique within a store.
type File struct {
	ID    int64
	Path  string
	Name  string
	Kind  FileKind
	Size  int64
	MTime float64 // seconds since epoch, fractional
	Hash  string  // optional content hash, empty if not computed
}

// SymbolKind classifies a Symbol.
type SymbolKind string

const (
	SymbolKindDefine   SymbolKind = "define"
	SymbolKindFunction SymbolKind = "function"
	SymbolKindVariable SymbolKind = "variable"
	SymbolKindNode     SymbolKind = "node"
	SymbolKindLabel    SymbolKind = "label"
	SymbolKindLabelRef SymbolKind = "label_ref"
)

// Symbol is a named, located record extracted from a file. Value is
// optional and may be long (e.g. a recipe variable's right-hand side);
// it participates in the full-text index alongside Name.
type Symbol struct {
	ID     int64
	Name   string
	Value  string
	Kind   SymbolKind
	FileID int64
	Line   int // 1-based
}

// IncludeKind classifies an Include edge.
type IncludeKind string

const (
	IncludeKindRequire   IncludeKind = "require"
	IncludeKindInclude   IncludeKind = "include"
	IncludeKindCInclude  IncludeKind = "#include"
	IncludeKindInherit   IncludeKind = "inherit"
	IncludeKindDTInclude IncludeKind = "dt_include"
)

// Include is a directed edge from a file to a target path, stored as
// written; resolution to a concrete file happens at query time.
type Include struct {
	ID         int64
	FromFileID int64
	ToPath     string
	Kind       IncludeKind
	Line       int
}

// DTNode is a device-tree node. Label need not be unique across files:
// override sites (`&label { ... };`) reuse the base node's label and are
// modeled as their own DTNode with Path "&label" and ParentID 0.
type DTNode struct {
	ID        int64
	FileID    int64
	Path      string // slash-separated, e.g. /soc/uart@401C8000
	Name      string
	Label     string // optional
	Address   string // optional, hex digits without "0x"
	ParentID  int64  // 0 means no parent (arena-style, not a pointer)
	StartLine int
	EndLine   int
}

// DTProperty belongs to exactly one DTNode, in the same file as that node.
type DTProperty struct {
	ID     int64
	NodeID int64
	Name   string
	Value  string
	Line   int
}

// GPIODirection classifies a GPIOPin's signal direction.
type GPIODirection string

const (
	GPIODirectionIn    GPIODirection = "in"
	GPIODirectionOut   GPIODirection = "out"
	GPIODirectionInOut GPIODirection = "inout"
	GPIODirectionNone  GPIODirection = ""
)

// GPIOPin is one `<&ctrl pin [flags]>` reference scanned out of a
// gpio-named device-tree property.
type GPIOPin struct {
	ID         int64
	FileID     int64
	Controller string // referenced node label
	Pin        int
	Label      string // optional, human label
	Function   string // optional function tag
	Direction  GPIODirection
	Line       int
}

// Location is an opaque, possibly-unresolved pointer at a position in a
// file, returned by goto_definition/find_references/hover.
type Location struct {
	Path      string
	StartLine int
	StartCol  int
	EndLine   int
	EndCol    int
}

// Stats summarizes the record counts in a store.
type Stats struct {
	Files    int
	Symbols  int
	Includes int
	DTNodes  int
	GPIOPins int
}
