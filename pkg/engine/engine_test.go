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

package engine

import (
	"context"
	"testing"
	"time"

	"github.com/bspindex/bspidx/internal/config"
	bsptesting "github.com/bspindex/bspidx/internal/testing"
)

func newTestEngine(t *testing.T, files map[string]string) *Engine {
	t.Helper()
	e, err := New(Options{
		ProjectRoot: "/proj",
		ProjectID:   "proj",
		InMemory:    true,
		Provider:    bsptesting.NewFakeProvider(files),
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() {
		if err := e.Close(); err != nil {
			t.Errorf("Close: %v", err)
		}
	})
	return e
}

func TestNew_RequiresProjectRoot(t *testing.T) {
	if _, err := New(Options{InMemory: true}); err == nil {
		t.Fatal("New with no ProjectRoot should fail")
	}
}

func TestNew_DefaultsProjectIDFromRoot(t *testing.T) {
	e, err := New(Options{ProjectRoot: "/srv/myproj", InMemory: true})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer e.Close()
	if e.ProjectID() != "myproj" {
		t.Errorf("ProjectID() = %q, want myproj", e.ProjectID())
	}
}

func TestStartIndexing_RunsAndReportsStatus(t *testing.T) {
	e := newTestEngine(t, map[string]string{
		"recipes/foo.bb": "SUMMARY = \"foo\"\n",
	})
	ctx := context.Background()

	started, err := e.StartIndexing(ctx, false, nil)
	if err != nil {
		t.Fatalf("StartIndexing: %v", err)
	}
	if !started {
		t.Fatal("StartIndexing should have started a run")
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if !e.GetStatus().Indexing {
			break
		}
		time.Sleep(time.Millisecond)
	}

	status := e.GetStatus()
	if status.Indexing {
		t.Fatal("indexing run never completed")
	}
	if status.LastResult.Added != 1 {
		t.Errorf("LastResult.Added = %d, want 1", status.LastResult.Added)
	}
	if status.LastError != "" {
		t.Errorf("LastError = %q, want empty", status.LastError)
	}

	stats, err := e.GetStats(ctx)
	if err != nil {
		t.Fatalf("GetStats: %v", err)
	}
	if stats.Files != 1 {
		t.Errorf("Stats.Files = %d, want 1", stats.Files)
	}
}

func TestStartIndexing_BusyGuardReturnsFalse(t *testing.T) {
	e := newTestEngine(t, map[string]string{"a.bb": "SUMMARY = \"a\"\n"})
	e.mu.Lock()
	e.running = true
	e.mu.Unlock()

	started, err := e.StartIndexing(context.Background(), false, nil)
	if err != nil {
		t.Fatalf("StartIndexing: %v", err)
	}
	if started {
		t.Fatal("StartIndexing should report false while a run is already active")
	}

	e.mu.Lock()
	e.running = false
	e.mu.Unlock()
}

func TestClearIndex_EmptiesStoreAndCache(t *testing.T) {
	e := newTestEngine(t, map[string]string{"a.bb": "SUMMARY = \"a\"\n"})
	ctx := context.Background()
	if _, err := e.StartIndexing(ctx, false, nil); err != nil {
		t.Fatalf("StartIndexing: %v", err)
	}
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) && e.GetStatus().Indexing {
		time.Sleep(time.Millisecond)
	}

	ok, err := e.ClearIndex(ctx)
	if err != nil || !ok {
		t.Fatalf("ClearIndex = %v, %v", ok, err)
	}
	stats, err := e.GetStats(ctx)
	if err != nil {
		t.Fatalf("GetStats: %v", err)
	}
	if stats.Files != 0 {
		t.Errorf("Stats.Files after ClearIndex = %d, want 0", stats.Files)
	}
}

func TestPublish_InMemoryStoreRejected(t *testing.T) {
	e := newTestEngine(t, nil)
	if _, err := e.Publish(context.Background(), "alice"); err == nil {
		t.Fatal("Publish with an in-memory store should fail")
	}
}

func TestAdopt_InMemoryStoreRejected(t *testing.T) {
	e := newTestEngine(t, nil)
	if _, err := e.Adopt(context.Background()); err == nil {
		t.Fatal("Adopt with an in-memory store should fail")
	}
}

func TestGetPublishedMeta_NothingPublished(t *testing.T) {
	root := t.TempDir()
	e, err := New(Options{ProjectRoot: root, InMemory: true})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer e.Close()

	meta, err := e.GetPublishedMeta()
	if err != nil {
		t.Fatalf("GetPublishedMeta: %v", err)
	}
	if meta != nil {
		t.Errorf("GetPublishedMeta = %+v, want nil", meta)
	}
}

func TestQueryForwarding_GotoDefinitionAfterIndexing(t *testing.T) {
	e := newTestEngine(t, map[string]string{
		"include/a.h": "#define MAX_GPIO 64\n",
	})
	ctx := context.Background()
	if _, err := e.StartIndexing(ctx, false, nil); err != nil {
		t.Fatalf("StartIndexing: %v", err)
	}
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) && e.GetStatus().Indexing {
		time.Sleep(time.Millisecond)
	}

	loc, err := e.GotoDefinition(ctx, "other.h", "x = MAX_GPIO\n", 0, 5)
	if err != nil {
		t.Fatalf("GotoDefinition: %v", err)
	}
	if loc == nil || loc.Path != "include/a.h" {
		t.Fatalf("GotoDefinition = %+v, want include/a.h", loc)
	}

	sym, err := e.FindDefinitionByName(ctx, "MAX_GPIO")
	if err != nil {
		t.Fatalf("FindDefinitionByName: %v", err)
	}
	if sym == nil || sym.Name != "MAX_GPIO" {
		t.Fatalf("FindDefinitionByName = %+v", sym)
	}
}

func TestClearCachesAndCacheStats(t *testing.T) {
	e := newTestEngine(t, nil)
	if ok := e.ClearCaches(); !ok {
		t.Error("ClearCaches() = false, want true")
	}
	_ = e.CacheStats()
}

func TestLoadFromConfig(t *testing.T) {
	cfg := config.Default("proj")
	cfg.Indexing.Exclude = []string{"vendor/**"}
	cfg.DataDir = t.TempDir()

	e, err := LoadFromConfig(cfg, "/proj", nil)
	if err != nil {
		t.Fatalf("LoadFromConfig: %v", err)
	}
	defer e.Close()
	if e.ProjectID() != "proj" {
		t.Errorf("ProjectID() = %q, want proj", e.ProjectID())
	}
}
