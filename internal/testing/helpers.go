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

package testing

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/bspindex/bspidx/pkg/content"
	"github.com/bspindex/bspidx/pkg/store"
	"github.com/bspindex/bspidx/pkg/store/memory"
)

// FakeProvider is an in-memory content.Provider backed by a fixed file map,
// seeded once at construction. It never errors on List/ReadFile for seeded
// paths, which keeps indexing and query tests focused on the logic under
// test rather than on I/O plumbing.
type FakeProvider struct {
	mu    sync.Mutex
	files map[string]string
	mtime map[string]float64
}

// NewFakeProvider builds a FakeProvider over files, a map of path to file
// content. Every file is given a distinct, deterministic MTime (its index
// in a sorted path ordering), so change detection in repeated test runs is
// reproducible.
func NewFakeProvider(files map[string]string) *FakeProvider {
	fp := &FakeProvider{
		files: make(map[string]string, len(files)),
		mtime: make(map[string]float64, len(files)),
	}
	paths := make([]string, 0, len(files))
	for p, c := range files {
		fp.files[p] = c
		paths = append(paths, p)
	}
	sort.Strings(paths)
	for i, p := range paths {
		fp.mtime[p] = float64(i + 1)
	}
	return fp
}

var _ content.Provider = (*FakeProvider)(nil)

// List returns every seeded path under root (as a prefix match) whose
// suffix doesn't match any of excludeGlobs.
func (f *FakeProvider) List(ctx context.Context, root string, excludeGlobs []string) ([]content.FileStat, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	prefix := strings.TrimSuffix(root, "/")
	var out []content.FileStat
	for p := range f.files {
		if prefix != "" && prefix != "." && !strings.HasPrefix(p, prefix+"/") && p != prefix {
			continue
		}
		excluded := false
		for _, g := range excludeGlobs {
			if ok, _ := doublestar.Match(g, p); ok {
				excluded = true
				break
			}
		}
		if excluded {
			continue
		}
		out = append(out, content.FileStat{Path: p, MTime: f.mtime[p]})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}

// Exec is unsupported: no test in this repo exercises the host-search
// fallback through FakeProvider.
func (f *FakeProvider) Exec(ctx context.Context, command string, timeout int) (content.ExecResult, error) {
	return content.ExecResult{}, fmt.Errorf("fakeprovider: Exec not supported")
}

// ReadFile returns the seeded content for path.
func (f *FakeProvider) ReadFile(ctx context.Context, path string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.files[path]
	if !ok {
		return "", fmt.Errorf("fakeprovider: no such file %s", path)
	}
	return c, nil
}

// ReadFileBytes returns the seeded content for path as bytes.
func (f *FakeProvider) ReadFileBytes(ctx context.Context, path string) ([]byte, error) {
	s, err := f.ReadFile(ctx, path)
	if err != nil {
		return nil, err
	}
	return []byte(s), nil
}

// WriteFile seeds or overwrites path, bumping its MTime past every other
// seeded file so the next List sees it as the most recently touched.
func (f *FakeProvider) WriteFile(ctx context.Context, path string, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	max := 0.0
	for _, m := range f.mtime {
		if m > max {
			max = m
		}
	}
	f.files[path] = string(data)
	f.mtime[path] = max + 1
	return nil
}

// PathExists reports whether path was seeded (or later written).
func (f *FakeProvider) PathExists(ctx context.Context, path string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.files[path]
	return ok, nil
}

// Touch bumps path's MTime so the next change-detection pass treats it as
// modified, without altering its content. It is a no-op if path isn't
// seeded.
func (f *FakeProvider) Touch(path string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.files[path]; !ok {
		return
	}
	max := 0.0
	for _, m := range f.mtime {
		if m > max {
			max = m
		}
	}
	f.mtime[path] = max + 1
}

// NewMemStore builds an in-memory store.Store (pkg/store/memory) and
// registers its Close with t.Cleanup.
func NewMemStore(t *testing.T) store.Store {
	t.Helper()
	s := memory.New()
	t.Cleanup(func() {
		_ = s.Close()
	})
	return s
}
