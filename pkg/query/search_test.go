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
	"os"
	"path/filepath"
	"testing"

	"github.com/bspindex/bspidx/pkg/cache"
	"github.com/bspindex/bspidx/pkg/content"
	"github.com/bspindex/bspidx/pkg/model"
	"github.com/bspindex/bspidx/pkg/store/memory"
)

func TestSearchSymbols_CachesResult(t *testing.T) {
	s := memory.New()
	ctx := context.Background()
	fileID, _ := s.InsertFile(ctx, model.File{Path: "a.h"})
	if err := s.InsertSymbols(ctx, []model.Symbol{{Name: "MAX_GPIO", FileID: fileID}}); err != nil {
		t.Fatalf("InsertSymbols: %v", err)
	}

	ct, err := cache.New()
	if err != nil {
		t.Fatalf("cache.New: %v", err)
	}
	defer ct.Close()

	e := &Engine{Store: s, Cache: ct}
	first, err := e.SearchSymbols(ctx, "MAX_GPIO", 10)
	if err != nil {
		t.Fatalf("SearchSymbols: %v", err)
	}
	if len(first) != 1 {
		t.Fatalf("SearchSymbols = %+v, want 1", first)
	}

	// Delete the backing symbol directly from the store; a cache hit should
	// still return the stale result instead of consulting the now-empty
	// store, proving the Put happened under the expected key.
	if err := s.DeleteFile(ctx, "a.h"); err != nil {
		t.Fatalf("DeleteFile: %v", err)
	}
	second, err := e.SearchSymbols(ctx, "MAX_GPIO", 10)
	if err != nil {
		t.Fatalf("SearchSymbols (cached): %v", err)
	}
	if len(second) != 1 {
		t.Fatalf("SearchSymbols (cached) = %+v, want the cached 1 result despite the deletion", second)
	}
}

func TestSearchFiles_NoProviderSkipsLiveScan(t *testing.T) {
	e := &Engine{Store: memory.New()}
	got, err := e.SearchFiles(context.Background(), "/root", "anything", 10)
	if err != nil {
		t.Fatalf("SearchFiles: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("SearchFiles = %+v, want no results (no indexed hits, no provider)", got)
	}
}

func TestSearchFiles_LiveScanFallbackWhenIndexIsSparse(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "recipe.bb"), []byte("NEEDLE_TOKEN\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if err := os.WriteFile(filepath.Join(root, "other.bb"), []byte("unrelated\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	e := &Engine{Store: memory.New(), Provider: content.Local{}}
	got, err := e.SearchFiles(context.Background(), root, "NEEDLE_TOKEN", 10)
	if err != nil {
		t.Fatalf("SearchFiles: %v", err)
	}
	if len(got) != 1 || got[0].Path != "recipe.bb" {
		t.Fatalf("SearchFiles = %+v, want just recipe.bb via the live scan", got)
	}
}

func TestMergeFiles_DedupesByPath(t *testing.T) {
	indexed := []model.File{{Path: "a.bb"}, {Path: "b.bb"}}
	live := []model.File{{Path: "b.bb"}, {Path: "c.bb"}}
	got := mergeFiles(indexed, live, 0)
	if len(got) != 3 {
		t.Fatalf("mergeFiles = %+v, want 3 de-duplicated entries", got)
	}
}

func TestMergeFiles_RespectsLimit(t *testing.T) {
	indexed := []model.File{{Path: "a.bb"}, {Path: "b.bb"}, {Path: "c.bb"}}
	got := mergeFiles(indexed, nil, 2)
	if len(got) != 2 {
		t.Fatalf("mergeFiles = %+v, want truncation to 2", got)
	}
}

func TestShellQuote_EscapesSingleQuotes(t *testing.T) {
	got := shellQuote(`it's`)
	want := `'it'"'"'s'`
	if got != want {
		t.Errorf("shellQuote(%q) = %q, want %q", `it's`, got, want)
	}
}
