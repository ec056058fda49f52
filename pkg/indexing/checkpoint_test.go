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
	"path/filepath"
	"testing"
)

func TestCheckpointManager_LoadMissingIsNilNil(t *testing.T) {
	cm := NewCheckpointManager(t.TempDir())
	cp, err := cm.Load("proj1")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cp != nil {
		t.Fatalf("Load(missing) = %+v, want nil", cp)
	}
}

func TestCheckpointManager_SaveLoadRoundTrip(t *testing.T) {
	cm := NewCheckpointManager(t.TempDir())
	cp := &Checkpoint{
		ProjectID:      "proj1",
		FilesTotal:     100,
		FilesProcessed: 42,
		ParseErrors:    2,
		LastFile:       "recipes/foo/foo.bb",
		StartTime:      "2026-01-01T00:00:00Z",
		LastUpdateTime: "2026-01-01T00:01:00Z",
	}
	if err := cm.Save(cp); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := cm.Load("proj1")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got == nil || *got != *cp {
		t.Fatalf("Load = %+v, want %+v", got, cp)
	}
}

func TestCheckpointManager_SaveOverwrites(t *testing.T) {
	cm := NewCheckpointManager(t.TempDir())
	_ = cm.Save(&Checkpoint{ProjectID: "proj1", FilesProcessed: 1})
	_ = cm.Save(&Checkpoint{ProjectID: "proj1", FilesProcessed: 2})

	got, err := cm.Load("proj1")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.FilesProcessed != 2 {
		t.Fatalf("FilesProcessed = %d, want 2", got.FilesProcessed)
	}
}

func TestCheckpointManager_Clear(t *testing.T) {
	cm := NewCheckpointManager(t.TempDir())
	_ = cm.Save(&Checkpoint{ProjectID: "proj1"})

	if err := cm.Clear("proj1"); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	got, err := cm.Load("proj1")
	if err != nil {
		t.Fatalf("Load after Clear: %v", err)
	}
	if got != nil {
		t.Fatalf("Load after Clear = %+v, want nil", got)
	}

	// Clearing a project with no checkpoint is a no-op, not an error.
	if err := cm.Clear("proj-never-saved"); err != nil {
		t.Errorf("Clear(never-saved): %v", err)
	}
}

func TestCheckpointManager_SeparateProjectsDontCollide(t *testing.T) {
	dir := t.TempDir()
	cm := NewCheckpointManager(dir)
	_ = cm.Save(&Checkpoint{ProjectID: "a", FilesProcessed: 1})
	_ = cm.Save(&Checkpoint{ProjectID: "b", FilesProcessed: 2})

	a, _ := cm.Load("a")
	b, _ := cm.Load("b")
	if a.FilesProcessed != 1 || b.FilesProcessed != 2 {
		t.Fatalf("a = %+v, b = %+v", a, b)
	}

	if a.ProjectID == b.ProjectID {
		t.Fatalf("expected distinct checkpoint files under %s", dir)
	}
	if filepath.Base(cm.path("a")) == filepath.Base(cm.path("b")) {
		t.Fatalf("checkpoint filenames collide: %s", cm.path("a"))
	}
}
