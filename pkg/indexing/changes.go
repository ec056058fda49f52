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
	"path/filepath"
	"strings"

	"github.com/bspindex/bspidx/pkg/model"
)

// detectChanges walks root through the content provider and diffs the
// result against the store's path→mtime view, producing three disjoint
// sets: files present on disk but not in the store (added), files present
// in both whose mtime disagrees (modified), and files present in the
// store but no longer on disk (deleted). Files outside indexedExtensions
// or matching an exclusion glob are skipped entirely, including for
// deletion detection purposes. onDisk carries each candidate's real mtime
// (from the content provider, not wall-clock time) so processFile can
// stamp the File row with the mtime that was actually compared, satisfying
// I6 and keeping the next run's diff meaningful.
func (c *Controller) detectChanges(ctx context.Context, root string) (added, modified, deleted []string, onDisk map[string]float64, err error) {
	stats, err := c.provider.List(ctx, root, c.excludeGlobs)
	if err != nil {
		return nil, nil, nil, nil, err
	}

	onDisk = make(map[string]float64, len(stats))
	for _, s := range stats {
		rel, relErr := filepath.Rel(root, s.Path)
		if relErr != nil {
			rel = s.Path
		}
		rel = model.NormalizePath(rel)
		if !indexedExtensions[strings.ToLower(filepath.Ext(rel))] {
			continue
		}
		onDisk[rel] = s.MTime
	}

	known, err := c.store.FileMTimes(ctx)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	inStore := make(map[string]float64, len(known))
	for _, k := range known {
		inStore[k.Path] = k.MTime
	}

	for path, mtime := range onDisk {
		prev, existed := inStore[path]
		switch {
		case !existed:
			added = append(added, path)
		case mtime > prev:
			modified = append(modified, path)
		}
	}
	for path := range inStore {
		if _, stillExists := onDisk[path]; !stillExists {
			deleted = append(deleted, path)
		}
	}
	return added, modified, deleted, onDisk, nil
}
