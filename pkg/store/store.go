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

// Package store provides the persistent, transactional, full-text-searchable
// record store (C3) behind the indexing and query layers. Two
// implementations satisfy the same Store interface: package sqlite (backed
// by modernc.org/sqlite, a single file per project) and package memory (an
// in-memory hash-map fallback with the same semantics). The embedder can
// choose memory at construction time; pkg/engine also falls back to it at
// runtime when the sqlite file cannot be opened.
package store

import (
	"context"

	"github.com/bspindex/bspidx/pkg/model"
)

// FileMTime is one row of the store's path→mtime view, used by the index
// controller to compute added/modified/deleted sets.
type FileMTime struct {
	Path  string
	MTime float64
}

// Store is the persistent relational + full-text record store described by
// the indexed-store component. All mutating calls are synchronous: the
// store is logically single-writer, so callers should not assume
// concurrent mutation is safe across goroutines without external
// serialization (the index controller provides that serialization).
type Store interface {
	// Close releases the underlying connection/handles.
	Close() error

	// InsertFile upserts a File record by path and returns its id.
	InsertFile(ctx context.Context, f model.File) (int64, error)
	// GetFile returns the File record for id, or (nil, nil) if absent.
	GetFile(ctx context.Context, id int64) (*model.File, error)
	// DeleteFile removes a file and all of its owned records (Symbol,
	// Include, DTNode, GPIOPin, and DTProperty via the file's DTNodes), in
	// an order that respects the application-enforced ownership even
	// though no foreign-key constraint exists.
	DeleteFile(ctx context.Context, path string) error
	// DeleteSymbolsByFile removes only the Symbol rows owned by a file,
	// used before re-parsing a modified file.
	DeleteSymbolsByFile(ctx context.Context, fileID int64) error
	// DeleteIncludesByFile removes only the Include rows owned by a file,
	// used before re-parsing a modified file.
	DeleteIncludesByFile(ctx context.Context, fileID int64) error
	// DeleteDTNodesByFile removes only the DTNode rows owned by a file
	// (and, transitively, the DTProperty rows owned by those nodes), used
	// before re-parsing a modified file.
	DeleteDTNodesByFile(ctx context.Context, fileID int64) error
	// DeleteDTPropertiesByFile removes only the DTProperty rows whose
	// owning DTNode belongs to a file, used before re-parsing a modified
	// file. DeleteDTNodesByFile already cascades to these; this is exposed
	// separately so a caller can clear properties ahead of nodes if it
	// ever needs that ordering.
	DeleteDTPropertiesByFile(ctx context.Context, fileID int64) error
	// DeleteGPIOPinsByFile removes only the GPIOPin rows owned by a file,
	// used before re-parsing a modified file.
	DeleteGPIOPinsByFile(ctx context.Context, fileID int64) error

	InsertSymbols(ctx context.Context, batch []model.Symbol) error
	InsertIncludes(ctx context.Context, batch []model.Include) error
	// InsertDTNodes assigns and returns ids in the same order as batch.
	InsertDTNodes(ctx context.Context, batch []model.DTNode) ([]int64, error)
	InsertDTProperties(ctx context.Context, batch []model.DTProperty) error
	InsertGPIOPins(ctx context.Context, batch []model.GPIOPin) error

	FileMTimes(ctx context.Context) ([]FileMTime, error)

	FindSymbolExact(ctx context.Context, name string) (*model.Symbol, error)
	FindAllReferences(ctx context.Context, name string, limit int) ([]model.Symbol, error)
	FindDTNodeByLabel(ctx context.Context, label string) (*model.DTNode, error)
	FindDTLabelReferences(ctx context.Context, label string, limit int) ([]model.DTNode, error)
	// FindGPIOPinsByLabel returns every GPIOPin whose human label matches,
	// used by hover's GPIO tabular-dump case.
	FindGPIOPinsByLabel(ctx context.Context, label string) ([]model.GPIOPin, error)
	SearchSymbols(ctx context.Context, query string, limit int) ([]model.Symbol, error)
	SearchFiles(ctx context.Context, query string, limit int) ([]model.File, error)
	DirectoryExists(ctx context.Context, prefix string) (bool, error)
	FilesInDirectory(ctx context.Context, prefix string, limit int) ([]model.File, error)
	FilesIncluding(ctx context.Context, path string) ([]string, error)

	GetStats(ctx context.Context) (model.Stats, error)
	GetMetadata(ctx context.Context, key string) (string, bool, error)
	SetMetadata(ctx context.Context, key, value string) error

	// Checkpoint flushes write-ahead buffers into the main store file.
	Checkpoint(ctx context.Context) error
	// ClearAll removes every record from every table without deleting the
	// store file itself.
	ClearAll(ctx context.Context) error

	// Transaction runs fn inside a single atomic unit; fn's error rolls
	// the transaction back. Nested calls are not supported.
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error

	// Path returns the filesystem path backing this store, or "" for an
	// in-memory store.
	Path() string
}
