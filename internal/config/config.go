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

// Package config loads and validates the per-project YAML configuration
// (".bsp-index/project.yaml") that drives indexing and the content
// provider: a single YAML file under a dotdir at the project root holding
// the fields this engine's components actually consume.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DotDir is the project-root-relative directory holding the config file
// and, later, the published index (see pkg/publish).
const DotDir = ".bsp-index"

// FileName is the config file's name within DotDir.
const FileName = "project.yaml"

// IndexingConfig controls the index controller's change-detection and
// dispatch behavior.
type IndexingConfig struct {
	// Exclude holds additional doublestar glob patterns to skip, beyond
	// the built-in .git/tmp-work/sstate-cache/downloads exclusions.
	Exclude []string `yaml:"exclude,omitempty"`
	// BatchTarget is stored in project.yaml but is not read by the index
	// controller or the content provider.
	BatchTarget int `yaml:"batch_target,omitempty"`
	// MaxFileSize is stored in project.yaml but is not read by the index
	// controller; the size limit it applies comes from contract.CheckFileSize.
	MaxFileSize int64 `yaml:"max_file_size,omitempty"`
	// Concurrency bounds the in-flight parse/commit dispatcher.
	Concurrency int `yaml:"concurrency,omitempty"`
}

// ContentProviderConfig selects and configures the content provider.
type ContentProviderConfig struct {
	// Type is "local" (direct filesystem access) or "remote" (a
	// remote-shell transport implementing the same Provider interface).
	Type string `yaml:"type,omitempty"`
	// Root is stored in project.yaml but is not read when a project is
	// opened; the indexed tree is always the project root holding .bsp-index.
	Root string `yaml:"root,omitempty"`
}

// Config is the parsed project.yaml.
type Config struct {
	// ProjectID names this project for the per-project store filename
	// hash and for publish/adopt bookkeeping.
	ProjectID string `yaml:"project_id"`
	// DataDir overrides the default per-project store location
	// (<user-config-dir>/bspidx/indexes/project_<hash>.db).
	DataDir string `yaml:"data_dir,omitempty"`

	Indexing        IndexingConfig        `yaml:"indexing,omitempty"`
	ContentProvider ContentProviderConfig `yaml:"content_provider,omitempty"`
}

// Default returns a Config with the engine's built-in defaults applied.
func Default(projectID string) *Config {
	return &Config{
		ProjectID: projectID,
		Indexing: IndexingConfig{
			BatchTarget: 100,
			Concurrency: 6,
		},
		ContentProvider: ContentProviderConfig{
			Type: "local",
		},
	}
}

// Path returns the config file path for a project root.
func Path(projectRoot string) string {
	return filepath.Join(projectRoot, DotDir, FileName)
}

// Load reads and parses project.yaml. If path is empty, it resolves to
// Path(".") (the config for the current directory).
func Load(path string) (*Config, error) {
	if path == "" {
		path = Path(".")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg := Default("")
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that required fields are present and fills in
// zero-valued optional fields with defaults.
func (c *Config) Validate() error {
	if c.ProjectID == "" {
		return fmt.Errorf("project_id is required")
	}
	if c.Indexing.BatchTarget <= 0 {
		c.Indexing.BatchTarget = 100
	}
	if c.Indexing.Concurrency <= 0 {
		c.Indexing.Concurrency = 6
	}
	if c.ContentProvider.Type == "" {
		c.ContentProvider.Type = "local"
	}
	return nil
}

// Save writes cfg as YAML to projectRoot's DotDir, creating the directory
// if necessary. It does not overwrite an existing file unless force is
// true.
func Save(projectRoot string, cfg *Config, force bool) error {
	dir := filepath.Join(projectRoot, DotDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}

	path := filepath.Join(dir, FileName)
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists at %s (use --force to overwrite)", path)
		}
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
