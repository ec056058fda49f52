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

// Package publish implements the publication channel: exporting the
// local store file into the source tree for team-wide reuse, and adopting
// a teammate's published file in its place. Both operations are idempotent.
package publish

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bspindex/bspidx/internal/config"
	"github.com/bspindex/bspidx/pkg/model"
	"github.com/bspindex/bspidx/pkg/store"
)

// SchemaVersion is stamped into the published meta.json. Adopt does not
// compare it against anything, so a version mismatch is neither surfaced
// nor rejected.
const SchemaVersion = "1"

// IndexFileName is the published store file's name under the dotdir.
const IndexFileName = "index.db"

// MetaFileName is the sibling metadata file's name.
const MetaFileName = "meta.json"

// Meta is the sibling meta.json schema describing a published store.
type Meta struct {
	LastSaved       time.Time  `json:"lastSaved"`
	SavedBy         string     `json:"savedBy"`
	IndexerVersion  string     `json:"indexerVersion"`
	Stats           model.Stats `json:"stats"`
	ElapsedSeconds  float64    `json:"elapsed,omitempty"`
	SchemaVersion   string     `json:"schemaVersion"`
}

// dotDir returns <projectRoot>/.bsp-index, creating it if absent.
func dotDir(projectRoot string) (string, error) {
	dir := filepath.Join(projectRoot, config.DotDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create %s: %w", dir, err)
	}
	return dir, nil
}

// Publish checkpoints s, copies its backing file to
// <projectRoot>/.bsp-index/index.db, and writes a sibling meta.json
// describing the snapshot. savedBy identifies the publisher (e.g. a user
// or host name); elapsed is the duration of the indexing run that produced
// this snapshot, if known (zero if not applicable).
func Publish(ctx context.Context, s store.Store, projectRoot, savedBy, indexerVersion string, elapsed time.Duration) error {
	if s.Path() == "" {
		return fmt.Errorf("publish: store has no backing file (in-memory store cannot be published)")
	}
	if err := s.Checkpoint(ctx); err != nil {
		return fmt.Errorf("checkpoint before publish: %w", err)
	}

	dir, err := dotDir(projectRoot)
	if err != nil {
		return err
	}

	stats, err := s.GetStats(ctx)
	if err != nil {
		return fmt.Errorf("stats before publish: %w", err)
	}

	if err := copyFileAtomic(s.Path(), filepath.Join(dir, IndexFileName)); err != nil {
		return fmt.Errorf("copy store file: %w", err)
	}

	meta := Meta{
		LastSaved:      time.Now(),
		SavedBy:        savedBy,
		IndexerVersion: indexerVersion,
		Stats:          stats,
		ElapsedSeconds: elapsed.Seconds(),
		SchemaVersion:  SchemaVersion,
	}
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal meta: %w", err)
	}
	if err := writeFileAtomic(filepath.Join(dir, MetaFileName), data); err != nil {
		return fmt.Errorf("write meta: %w", err)
	}
	return nil
}

// GetPublishedMeta reads <projectRoot>/.bsp-index/meta.json without
// touching the store. It tolerates a missing file by returning (nil, nil).
func GetPublishedMeta(projectRoot string) (*Meta, error) {
	path := filepath.Join(projectRoot, config.DotDir, MetaFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var meta Meta
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &meta, nil
}

// Adopt reads the published index file and its sibling meta.json (missing
// meta.json is tolerated) and copies it to localPath, the file the caller's
// store is (or will be) opened against. The caller is responsible for
// closing any currently-open store against localPath before calling Adopt
// and reopening it afterward — Adopt itself only replaces bytes on disk,
// since it must be safe to call before any local indexing has ever
// happened (localPath may not exist yet).
func Adopt(projectRoot, localPath string) (*Meta, error) {
	published := filepath.Join(projectRoot, config.DotDir, IndexFileName)
	if _, err := os.Stat(published); err != nil {
		return nil, fmt.Errorf("no published index at %s: %w", published, err)
	}

	meta, err := GetPublishedMeta(projectRoot)
	if err != nil {
		return nil, err
	}

	if dir := filepath.Dir(localPath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create %s: %w", dir, err)
		}
	}
	if err := copyFileAtomic(published, localPath); err != nil {
		return nil, fmt.Errorf("adopt published index: %w", err)
	}
	return meta, nil
}

func copyFileAtomic(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return writeFileAtomic(dst, data)
}

func writeFileAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}
