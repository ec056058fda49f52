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

// Package bootstrap implements three project lifecycle operations:
// creating a new project's project.yaml and registering it (used by the
// CLI's init command), opening an existing project's engine, and listing
// every project this host has ever initialized.
package bootstrap

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/bspindex/bspidx/internal/config"
	"github.com/bspindex/bspidx/pkg/engine"
)

// ProjectConfig holds the parameters for initializing or opening a project.
type ProjectConfig struct {
	// ProjectID is the logical project identifier.
	ProjectID string
	// ProjectRoot is the absolute path to the source tree being indexed.
	ProjectRoot string
	// DataDir overrides the default <user-config-dir>/bspidx/indexes
	// location for the store file.
	DataDir string
	// InMemory selects the degraded-mode store instead of persistent
	// sqlite, mainly useful for tests and CI sandboxes with no durable
	// filesystem.
	InMemory bool
}

// ProjectInfo summarizes an initialized or opened project.
type ProjectInfo struct {
	ProjectID   string
	ProjectRoot string
	DataDir     string
}

// InitProject initializes a new project: it writes project.yaml under
// <ProjectRoot>/.bsp-index (refusing to overwrite one that already exists
// unless force is true) and registers the project root in this host's
// project registry so ListProjects can find it later. It does not start
// indexing; callers run Engine.StartIndexing once OpenProject returns.
func InitProject(cfg ProjectConfig, force bool, logger *slog.Logger) (*ProjectInfo, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.ProjectID == "" {
		return nil, fmt.Errorf("project_id is required")
	}
	if cfg.ProjectRoot == "" {
		return nil, fmt.Errorf("project_root is required")
	}

	root, err := filepath.Abs(cfg.ProjectRoot)
	if err != nil {
		return nil, fmt.Errorf("resolve project root: %w", err)
	}

	logger.Info("bootstrap.project.init.start",
		"project_id", cfg.ProjectID,
		"project_root", root,
	)

	yamlCfg := config.Default(cfg.ProjectID)
	yamlCfg.DataDir = cfg.DataDir
	if err := config.Save(root, yamlCfg, force); err != nil {
		return nil, fmt.Errorf("write project.yaml: %w", err)
	}

	if err := registerProject(cfg.ProjectID, root); err != nil {
		logger.Warn("bootstrap.registry.warning", "err", err)
	}

	logger.Info("bootstrap.project.init.success",
		"project_id", cfg.ProjectID,
		"project_root", root,
	)

	return &ProjectInfo{ProjectID: cfg.ProjectID, ProjectRoot: root, DataDir: cfg.DataDir}, nil
}

// OpenProject opens an existing project: it loads project.yaml from
// ProjectRoot and wires an engine.Engine from it. The caller owns the
// returned Engine and must call its Close when done.
func OpenProject(cfg ProjectConfig, logger *slog.Logger) (*engine.Engine, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.ProjectRoot == "" {
		return nil, fmt.Errorf("project_root is required")
	}

	root, err := filepath.Abs(cfg.ProjectRoot)
	if err != nil {
		return nil, fmt.Errorf("resolve project root: %w", err)
	}

	yamlCfg, err := config.Load(config.Path(root))
	if err != nil {
		return nil, fmt.Errorf("project not found at %s (run 'bspidx init' first): %w", root, err)
	}
	if cfg.DataDir != "" {
		yamlCfg.DataDir = cfg.DataDir
	}

	logger.Debug("bootstrap.project.open", "project_id", yamlCfg.ProjectID, "project_root", root)

	e, err := engine.LoadFromConfig(yamlCfg, root, logger)
	if err != nil {
		return nil, fmt.Errorf("open engine: %w", err)
	}
	if cfg.InMemory {
		// InMemory can't be threaded through LoadFromConfig (it isn't a
		// project.yaml field); rebuild Options directly instead.
		_ = e.Close()
		e, err = engine.New(engine.Options{
			ProjectRoot:  root,
			ProjectID:    yamlCfg.ProjectID,
			InMemory:     true,
			ExcludeGlobs: yamlCfg.Indexing.Exclude,
			MaxInFlight:  yamlCfg.Indexing.Concurrency,
			Logger:       logger,
		})
		if err != nil {
			return nil, fmt.Errorf("open in-memory engine: %w", err)
		}
	}

	return e, nil
}

// registryPath is the path to this host's list of known projects.
func registryPath() (string, error) {
	udd, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve user config dir: %w", err)
	}
	return filepath.Join(udd, "bspidx", "projects.json"), nil
}

// registryEntry is one ListProjects row, persisted to registryPath.
type registryEntry struct {
	ProjectID   string `json:"project_id"`
	ProjectRoot string `json:"project_root"`
}

func readRegistry(path string) ([]registryEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var entries []registryEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse registry %s: %w", path, err)
	}
	return entries, nil
}

// registerProject adds (or updates) projectRoot's entry in the registry,
// deduplicating by ProjectRoot, and writes the file back atomically.
func registerProject(projectID, projectRoot string) error {
	path, err := registryPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create registry dir: %w", err)
	}

	entries, err := readRegistry(path)
	if err != nil {
		return err
	}

	found := false
	for i, e := range entries {
		if e.ProjectRoot == projectRoot {
			entries[i].ProjectID = projectID
			found = true
			break
		}
	}
	if !found {
		entries = append(entries, registryEntry{ProjectID: projectID, ProjectRoot: projectRoot})
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal registry: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write registry: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("rename registry: %w", err)
	}
	return nil
}

// ListProjects returns every project this host has initialized, in
// registration order. Projects whose project.yaml has since been deleted
// are still listed; callers that care should confirm with OpenProject.
func ListProjects() ([]ProjectInfo, error) {
	path, err := registryPath()
	if err != nil {
		return nil, err
	}
	entries, err := readRegistry(path)
	if err != nil {
		return nil, err
	}

	infos := make([]ProjectInfo, 0, len(entries))
	for _, e := range entries {
		infos = append(infos, ProjectInfo{ProjectID: e.ProjectID, ProjectRoot: e.ProjectRoot})
	}
	return infos, nil
}
