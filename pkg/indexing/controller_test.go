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

package indexing

import (
	"context"
	"sync"
	"testing"

	bsptesting "github.com/bspindex/bspidx/internal/testing"
)

func newTestController(t *testing.T, files map[string]string) (*Controller, *bsptesting.FakeProvider) {
	t.Helper()
	fp := bsptesting.NewFakeProvider(files)
	s := bsptesting.NewMemStore(t)
	c := New(Config{Provider: fp, Store: s})
	return c, fp
}

func TestController_TryRun_IndexesAddedFiles(t *testing.T) {
	c, _ := newTestController(t, map[string]string{
		"recipes/foo/foo.bb": "SUMMARY = \"foo\"\nDEPENDS = \"zlib\"\n",
		"include/a.h":        "#define FOO 1\n",
	})

	result, err := c.TryRun(context.Background(), "", nil)
	if err != nil {
		t.Fatalf("TryRun: %v", err)
	}
	if result.Added != 2 || result.FilesProcessed != 2 || result.ParseErrors != 0 {
		t.Fatalf("Result = %+v, want Added=2 FilesProcessed=2 ParseErrors=0", result)
	}

	stats, err := c.store.GetStats(context.Background())
	if err != nil {
		t.Fatalf("GetStats: %v", err)
	}
	if stats.Files != 2 {
		t.Errorf("Stats.Files = %d, want 2", stats.Files)
	}
	if stats.Symbols == 0 {
		t.Errorf("expected at least one symbol to have been parsed out, Stats = %+v", stats)
	}
}

func TestController_TryRun_IsIncremental(t *testing.T) {
	c, fp := newTestController(t, map[string]string{
		"recipes/foo/foo.bb": "SUMMARY = \"foo\"\n",
	})
	ctx := context.Background()

	first, err := c.TryRun(ctx, "", nil)
	if err != nil {
		t.Fatalf("first TryRun: %v", err)
	}
	if first.Added != 1 {
		t.Fatalf("first run Added = %d, want 1", first.Added)
	}

	second, err := c.TryRun(ctx, "", nil)
	if err != nil {
		t.Fatalf("second TryRun: %v", err)
	}
	if second.Added != 0 || second.Modified != 0 || second.FilesProcessed != 0 {
		t.Fatalf("second run (nothing changed) = %+v, want all zero", second)
	}

	fp.Touch("recipes/foo/foo.bb")
	third, err := c.TryRun(ctx, "", nil)
	if err != nil {
		t.Fatalf("third TryRun: %v", err)
	}
	if third.Modified != 1 || third.FilesProcessed != 1 {
		t.Fatalf("third run (touched file) = %+v, want Modified=1 FilesProcessed=1", third)
	}
}

// TestController_TryRun_TouchedDTSHasNoStaleRecords re-indexes a .dts file
// whose content is unchanged (only its mtime is bumped, as a git checkout
// or touch would do) and asserts GetStats() is identical afterward: if the
// previous version's Include/DTNode/DTProperty/GPIOPin rows aren't cleared
// before the re-parse commits, the second run's counts would double,
// violating I4.
func TestController_TryRun_TouchedDTSHasNoStaleRecords(t *testing.T) {
	c, fp := newTestController(t, map[string]string{
		"soc.dts": `#include "common.dtsi"
/ {
	gpio0: gpio@0 {
	};
	uart0: serial@401C8000 {
		status = "okay";
		pinctrl-gpios = <&gpio0 5 0>;
	};
};
`,
	})
	ctx := context.Background()

	if _, err := c.TryRun(ctx, "", nil); err != nil {
		t.Fatalf("first TryRun: %v", err)
	}
	first, err := c.store.GetStats(ctx)
	if err != nil {
		t.Fatalf("GetStats after first run: %v", err)
	}
	if first.DTNodes == 0 || first.GPIOPins == 0 || first.Includes == 0 {
		t.Fatalf("first run did not produce DT/Include/GPIO records: %+v", first)
	}

	fp.Touch("soc.dts")
	second, err := c.TryRun(ctx, "", nil)
	if err != nil {
		t.Fatalf("second TryRun: %v", err)
	}
	if second.Modified != 1 || second.FilesProcessed != 1 {
		t.Fatalf("second run (touched file) = %+v, want Modified=1 FilesProcessed=1", second)
	}

	after, err := c.store.GetStats(ctx)
	if err != nil {
		t.Fatalf("GetStats after second run: %v", err)
	}
	if after != first {
		t.Fatalf("GetStats changed after re-indexing an unchanged file: before=%+v after=%+v", first, after)
	}
}

func TestController_TryRun_DetectsDeletion(t *testing.T) {
	c, _ := newTestController(t, map[string]string{
		"recipes/foo/foo.bb": "SUMMARY = \"foo\"\n",
	})
	ctx := context.Background()
	if _, err := c.TryRun(ctx, "", nil); err != nil {
		t.Fatalf("first TryRun: %v", err)
	}

	// Replace the file map with one that no longer contains the recipe.
	c.provider = bsptesting.NewFakeProvider(map[string]string{})

	result, err := c.TryRun(ctx, "", nil)
	if err != nil {
		t.Fatalf("second TryRun: %v", err)
	}
	if result.Deleted != 1 {
		t.Fatalf("Result.Deleted = %d, want 1", result.Deleted)
	}
	stats, _ := c.store.GetStats(ctx)
	if stats.Files != 0 {
		t.Errorf("Stats.Files = %d, want 0 after deletion", stats.Files)
	}
}

func TestController_TryRun_BusyGuard(t *testing.T) {
	c, _ := newTestController(t, map[string]string{
		"recipes/foo/foo.bb": "SUMMARY = \"foo\"\n",
	})

	c.running = 1 // simulate an in-flight run without actually blocking one
	_, err := c.TryRun(context.Background(), "", nil)
	if err != ErrBusyIndexing {
		t.Fatalf("TryRun while busy = %v, want ErrBusyIndexing", err)
	}
}

func TestController_TryRun_ReportsParseErrorsNotFatal(t *testing.T) {
	// Lower the soft limit so one seeded file trips contract.CheckFileSize's
	// rejection, which processFile surfaces as a non-fatal per-file error.
	t.Setenv("BSPIDX_SOFT_LIMIT_BYTES", "16")

	c, _ := newTestController(t, map[string]string{
		"recipes/huge.bb": "SUMMARY = \"this line alone exceeds sixteen bytes\"\n",
		"recipes/ok.bb":   "x",
	})

	result, err := c.TryRun(context.Background(), "", nil)
	if err != nil {
		t.Fatalf("TryRun: %v", err)
	}
	if result.FilesProcessed != 2 {
		t.Fatalf("FilesProcessed = %d, want 2 (both attempted)", result.FilesProcessed)
	}
	if result.ParseErrors != 1 {
		t.Fatalf("ParseErrors = %d, want 1 (the oversized file)", result.ParseErrors)
	}
}

func TestController_ProgressEventsAreOrdered(t *testing.T) {
	c, _ := newTestController(t, map[string]string{
		"recipes/foo/foo.bb": "SUMMARY = \"foo\"\n",
		"recipes/bar/bar.bb": "SUMMARY = \"bar\"\n",
	})

	var mu sync.Mutex
	var phases []Phase
	_, err := c.TryRun(context.Background(), "", func(e Event) {
		mu.Lock()
		defer mu.Unlock()
		phases = append(phases, e.Phase)
	})
	if err != nil {
		t.Fatalf("TryRun: %v", err)
	}
	if len(phases) < 2 {
		t.Fatalf("expected at least init and done phases, got %+v", phases)
	}
	if phases[0] != PhaseInit {
		t.Errorf("first phase = %q, want init", phases[0])
	}
	if phases[len(phases)-1] != PhaseDone {
		t.Errorf("last phase = %q, want done", phases[len(phases)-1])
	}
}

func TestController_CheckpointWrittenAndClearedOnSuccess(t *testing.T) {
	dir := t.TempDir()
	cm := NewCheckpointManager(dir)
	fp := bsptesting.NewFakeProvider(map[string]string{
		"recipes/foo/foo.bb": "SUMMARY = \"foo\"\n",
	})
	s := bsptesting.NewMemStore(t)
	c := New(Config{Provider: fp, Store: s, ProjectID: "proj1", Checkpoints: cm})

	if _, err := c.TryRun(context.Background(), "", nil); err != nil {
		t.Fatalf("TryRun: %v", err)
	}

	cp, err := cm.Load("proj1")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cp != nil {
		t.Errorf("checkpoint should be cleared after a successful run, got %+v", cp)
	}
}

func TestController_ExcludeGlobsAppendToDefaults(t *testing.T) {
	fp := bsptesting.NewFakeProvider(map[string]string{
		"recipes/foo.bb":     "SUMMARY = \"foo\"\n",
		"vendor/skip/foo.bb": "SUMMARY = \"skip\"\n",
	})
	s := bsptesting.NewMemStore(t)
	c := New(Config{Provider: fp, Store: s, ExcludeGlobs: []string{"vendor/**"}})

	result, err := c.TryRun(context.Background(), "", nil)
	if err != nil {
		t.Fatalf("TryRun: %v", err)
	}
	if result.Added != 1 {
		t.Fatalf("Added = %d, want 1 (vendor/** excluded)", result.Added)
	}

	stats, err := s.GetStats(context.Background())
	if err != nil {
		t.Fatalf("GetStats: %v", err)
	}
	if stats.Files != 1 {
		t.Fatalf("Stats.Files = %d, want 1", stats.Files)
	}
}
