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
	"fmt"
	"strings"

	"github.com/bspindex/bspidx/pkg/cache"
	"github.com/bspindex/bspidx/pkg/model"
)

// liveScanThreshold is the "very few hits" cutoff past which a live
// host-side scan is not attempted as a search fall-through.
const liveScanThreshold = 3

// SearchSymbols runs the indexed FTS-vs-substring search, caching the
// result under the raw query. It never falls through to a live scan:
// symbols have no live-scan equivalent, only file content does.
func (e *Engine) SearchSymbols(ctx context.Context, query string, limit int) ([]model.Symbol, error) {
	key := "sym:" + query
	if e.Cache != nil {
		if cached, ok := e.Cache.Search.Get(key); ok {
			return cached.Symbols, nil
		}
	}
	syms, err := e.Store.SearchSymbols(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	if e.Cache != nil {
		e.Cache.Search.Put(key, cache.SearchResult{Symbols: syms})
	}
	return syms, nil
}

// SearchFiles runs the indexed substring file search and, when the index
// returns nothing or very little and a live Provider is configured, augments
// the result with a host-side recursive grep of file contents under root,
// whose matching file paths are merged in — deduplicated by path.
func (e *Engine) SearchFiles(ctx context.Context, root, query string, limit int) ([]model.File, error) {
	key := "file:" + query
	if e.Cache != nil {
		if cached, ok := e.Cache.Search.Get(key); ok {
			return cached.Files, nil
		}
	}

	files, err := e.Store.SearchFiles(ctx, query, limit)
	if err != nil {
		return nil, err
	}

	if e.Provider != nil && (len(files) == 0 || len(files) < liveScanThreshold) {
		if live, err := e.liveScanFiles(ctx, root, query); err == nil {
			files = mergeFiles(files, live, limit)
		}
	}

	if e.Cache != nil {
		e.Cache.Search.Put(key, cache.SearchResult{Files: files})
	}
	return files, nil
}

// liveScanFiles shells out to a recursive grep of file contents under root,
// returning the paths of matching files,
// via the same Exec channel the server-side indexer fast path uses — the
// query layer never talks to the host through any other route.
func (e *Engine) liveScanFiles(ctx context.Context, root, query string) ([]model.File, error) {
	cmd := fmt.Sprintf("grep -rl -- %s %s 2>/dev/null | head -n 50", shellQuote(query), shellQuote(root))
	res, err := e.Provider.Exec(ctx, cmd, 10)
	if err != nil {
		return nil, err
	}
	var out []model.File
	for _, line := range strings.Split(strings.TrimSpace(res.Stdout), "\n") {
		if line == "" {
			continue
		}
		out = append(out, model.File{
			Path: model.NormalizePath(strings.TrimPrefix(line, root)),
			Name: line[strings.LastIndexByte(line, '/')+1:],
			Kind: model.ClassifyFile(line),
		})
	}
	return out, nil
}

func mergeFiles(indexed, live []model.File, limit int) []model.File {
	seen := make(map[string]bool, len(indexed))
	out := make([]model.File, 0, len(indexed)+len(live))
	for _, f := range indexed {
		if !seen[f.Path] {
			seen[f.Path] = true
			out = append(out, f)
		}
	}
	for _, f := range live {
		if !seen[f.Path] {
			seen[f.Path] = true
			out = append(out, f)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// shellQuote wraps s in single quotes for embedding in a shell command
// line, escaping any single quote it contains.
func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'"'"'`) + "'"
}
