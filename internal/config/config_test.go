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

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default("myproject")
	if cfg.ProjectID != "myproject" {
		t.Errorf("ProjectID = %q, want myproject", cfg.ProjectID)
	}
	if cfg.Indexing.BatchTarget != 100 || cfg.Indexing.Concurrency != 6 {
		t.Errorf("Indexing defaults = %+v", cfg.Indexing)
	}
	if cfg.ContentProvider.Type != "local" {
		t.Errorf("ContentProvider.Type = %q, want local", cfg.ContentProvider.Type)
	}
}

func TestValidate_RequiresProjectID(t *testing.T) {
	cfg := &Config{}
	if err := cfg.Validate(); err == nil {
		t.Fatal("Validate() with no ProjectID should fail")
	}
}

func TestValidate_FillsZeroedDefaults(t *testing.T) {
	cfg := &Config{ProjectID: "p"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if cfg.Indexing.BatchTarget != 100 {
		t.Errorf("BatchTarget = %d, want 100", cfg.Indexing.BatchTarget)
	}
	if cfg.Indexing.Concurrency != 6 {
		t.Errorf("Concurrency = %d, want 6", cfg.Indexing.Concurrency)
	}
	if cfg.ContentProvider.Type != "local" {
		t.Errorf("ContentProvider.Type = %q, want local", cfg.ContentProvider.Type)
	}
}

func TestValidate_PreservesExplicitValues(t *testing.T) {
	cfg := &Config{
		ProjectID: "p",
		Indexing:  IndexingConfig{BatchTarget: 50, Concurrency: 2},
		ContentProvider: ContentProviderConfig{
			Type: "remote",
		},
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if cfg.Indexing.BatchTarget != 50 || cfg.Indexing.Concurrency != 2 {
		t.Errorf("Indexing = %+v, explicit values should survive", cfg.Indexing)
	}
	if cfg.ContentProvider.Type != "remote" {
		t.Errorf("ContentProvider.Type = %q, want remote", cfg.ContentProvider.Type)
	}
}

func TestPath(t *testing.T) {
	got := Path("/srv/proj")
	want := filepath.Join("/srv/proj", DotDir, FileName)
	if got != want {
		t.Errorf("Path() = %q, want %q", got, want)
	}
}

func TestSaveAndLoad_RoundTrip(t *testing.T) {
	root := t.TempDir()
	cfg := Default("myproject")
	cfg.Indexing.Exclude = []string{"vendor/**"}

	if err := Save(root, cfg, false); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := Load(Path(root))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.ProjectID != "myproject" {
		t.Errorf("Loaded ProjectID = %q, want myproject", got.ProjectID)
	}
	if len(got.Indexing.Exclude) != 1 || got.Indexing.Exclude[0] != "vendor/**" {
		t.Errorf("Loaded Indexing.Exclude = %+v", got.Indexing.Exclude)
	}
}

func TestSave_RefusesToOverwriteWithoutForce(t *testing.T) {
	root := t.TempDir()
	cfg := Default("p")
	if err := Save(root, cfg, false); err != nil {
		t.Fatalf("first Save: %v", err)
	}
	if err := Save(root, cfg, false); err == nil {
		t.Fatal("second Save without force should fail")
	}
	if err := Save(root, cfg, true); err != nil {
		t.Fatalf("Save with force: %v", err)
	}
}

func TestLoad_MissingProjectIDFails(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, DotDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte("data_dir: /tmp/x\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	if _, err := Load(Path(root)); err == nil {
		t.Fatal("Load with no project_id should fail")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("Load(missing file) should fail")
	}
}
