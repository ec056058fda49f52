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

package cache

import (
	"context"
	"time"

	"github.com/bspindex/bspidx/pkg/model"
	"github.com/bspindex/bspidx/pkg/parser"
)

// Budgets for the four caches. Every cache, file-content included, is
// capped by entry count only; no byte-size ceiling is applied to the
// cached values.
const (
	FileContentSize = 500
	FileContentTTL  = 30 * time.Minute

	ASTSize = 200
	ASTTTL  = 60 * time.Minute

	SearchSize = 1000
	SearchTTL  = 5 * time.Minute

	SymbolSize = 5000
	SymbolTTL  = 60 * time.Minute

	prunePeriod = 2 * time.Minute
)

// Tier bundles the four named caches and the background pruner that
// started at construction and stopped at Close, per the design note
// against scheduling global/init-time timers.
type Tier struct {
	FileContent *TTLCache[string, string]
	AST         *TTLCache[string, *parser.Result]
	Search      *TTLCache[string, SearchResult]
	Symbol      *TTLCache[string, model.Symbol]

	cancel context.CancelFunc
	done   chan struct{}
}

// SearchResult is the value type cached under a query descriptor: either
// Symbols or Files populated, never both.
type SearchResult struct {
	Symbols []model.Symbol
	Files   []model.File
}

// New constructs the tier and starts its pruning goroutine, stopped by
// Close.
func New() (*Tier, error) {
	fc, err := NewTTLCache[string, string](FileContentSize, FileContentTTL)
	if err != nil {
		return nil, err
	}
	ast, err := NewTTLCache[string, *parser.Result](ASTSize, ASTTTL)
	if err != nil {
		return nil, err
	}
	search, err := NewTTLCache[string, SearchResult](SearchSize, SearchTTL)
	if err != nil {
		return nil, err
	}
	sym, err := NewTTLCache[string, model.Symbol](SymbolSize, SymbolTTL)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	t := &Tier{
		FileContent: fc,
		AST:         ast,
		Search:      search,
		Symbol:      sym,
		cancel:      cancel,
		done:        make(chan struct{}),
	}
	go t.pruneLoop(ctx)
	return t, nil
}

func (t *Tier) pruneLoop(ctx context.Context) {
	defer close(t.done)
	ticker := time.NewTicker(prunePeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.FileContent.Prune()
			t.AST.Prune()
			t.Search.Prune()
			t.Symbol.Prune()
		}
	}
}

// Close stops the pruning goroutine and waits for it to exit.
func (t *Tier) Close() {
	t.cancel()
	<-t.done
}

// ClearAll empties every cache, used on a full re-index.
func (t *Tier) ClearAll() {
	t.FileContent.Clear()
	t.AST.Clear()
	t.Search.Clear()
	t.Symbol.Clear()
}

// InvalidateFile drops the file-content and ast entries for path, used on
// a per-file re-index. Search and symbol caches are left alone: their TTL
// makes them eventually consistent.
func (t *Tier) InvalidateFile(path string) {
	t.FileContent.Remove(path)
	t.AST.Remove(path)
}

// TierStats reports Stats for every named cache.
type TierStats struct {
	FileContent Stats
	AST         Stats
	Search      Stats
	Symbol      Stats
}

func (t *Tier) Stats() TierStats {
	return TierStats{
		FileContent: t.FileContent.Stats(),
		AST:         t.AST.Stats(),
		Search:      t.Search.Stats(),
		Symbol:      t.Symbol.Stats(),
	}
}
