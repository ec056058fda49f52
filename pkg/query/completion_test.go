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
	"context"
	"testing"

	"github.com/bspindex/bspidx/pkg/cache"
	"github.com/bspindex/bspidx/pkg/model"
	"github.com/bspindex/bspidx/pkg/store/memory"
)

func TestCompletions_DTNodeLabel(t *testing.T) {
	s := memory.New()
	ctx := context.Background()
	fileID, _ := s.InsertFile(ctx, model.File{Path: "a.dts"})
	if err := s.InsertSymbols(ctx, []model.Symbol{
		{Name: "uart1", Kind: model.SymbolKindNode, FileID: fileID},
	}); err != nil {
		t.Fatalf("InsertSymbols: %v", err)
	}

	e := &Engine{Store: s}
	got, err := e.Completions(ctx, "board.dts", "foo = <&uart\n", 0, 12)
	if err != nil {
		t.Fatalf("Completions: %v", err)
	}
	if len(got) != 1 || got[0].Label != "&uart1" {
		t.Fatalf("Completions = %+v, want a single &uart1 proposal", got)
	}
}

func TestCompletions_RecipeVariable(t *testing.T) {
	e := &Engine{Store: memory.New()}
	got, err := e.Completions(context.Background(), "foo.bb", "SRC_U = \"\"\n", 0, 5)
	if err != nil {
		t.Fatalf("Completions: %v", err)
	}
	if len(got) != 1 || got[0].Label != "SRC_URI" {
		t.Fatalf("Completions = %+v, want a single SRC_URI proposal", got)
	}
}

func TestCompletions_BitBakeTask(t *testing.T) {
	e := &Engine{Store: memory.New()}
	got, err := e.Completions(context.Background(), "foo.bb", "addtask do_comp\n", 0, 15)
	if err != nil {
		t.Fatalf("Completions: %v", err)
	}
	if len(got) != 1 || got[0].Label != "do_compile" {
		t.Fatalf("Completions = %+v, want a single do_compile proposal", got)
	}
}

func TestCompletions_InheritClass(t *testing.T) {
	e := &Engine{Store: memory.New()}
	got, err := e.Completions(context.Background(), "foo.bb", "inherit auto\n", 0, 12)
	if err != nil {
		t.Fatalf("Completions: %v", err)
	}
	if len(got) != 1 || got[0].Label != "autotools" {
		t.Fatalf("Completions = %+v, want a single autotools proposal", got)
	}
}

func TestCompletions_IndexedSymbolFallback(t *testing.T) {
	s := memory.New()
	ctx := context.Background()
	fileID, _ := s.InsertFile(ctx, model.File{Path: "a.h"})
	if err := s.InsertSymbols(ctx, []model.Symbol{
		{Name: "MAX_GPIOS", Kind: model.SymbolKindDefine, FileID: fileID},
	}); err != nil {
		t.Fatalf("InsertSymbols: %v", err)
	}

	e := &Engine{Store: s}
	got, err := e.Completions(ctx, "b.h", "MAX_G\n", 0, 5)
	if err != nil {
		t.Fatalf("Completions: %v", err)
	}
	if len(got) != 1 || got[0].Label != "MAX_GPIOS" {
		t.Fatalf("Completions = %+v, want a single MAX_GPIOS proposal", got)
	}
}

func TestCompletions_CacheHitSkipsStore(t *testing.T) {
	ct, err := cache.New()
	if err != nil {
		t.Fatalf("cache.New: %v", err)
	}
	defer ct.Close()

	ct.Search.Put("completions:bb:XYZ", cache.SearchResult{
		Symbols: []model.Symbol{{Name: "CACHED_RESULT_X", Value: "from cache", Line: 0}},
	})

	e := &Engine{Store: memory.New(), Cache: ct}
	got, err := e.Completions(context.Background(), "foo.bb", "XYZ\n", 0, 3)
	if err != nil {
		t.Fatalf("Completions: %v", err)
	}
	if len(got) != 1 || got[0].Label != "CACHED_RESULT_X" {
		t.Fatalf("Completions = %+v, want the cached proposal", got)
	}
}
