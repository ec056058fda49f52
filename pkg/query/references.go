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
	"sort"
	"strings"
)

// Reference is one located use of a symbol, resolved to a concrete file
// path (unlike model.Symbol/model.DTNode, which only carry a file id).
type Reference struct {
	Path string
	Line int
}

// FindReferences resolves the word at (line, col) and returns the union of
// DTNode label references and Symbol name matches (bare name and, for a
// label/phandle word, the underlying label), de-duplicated by (file, line)
// and sorted by path then line, bounded to FindReferencesLimit.
func (e *Engine) FindReferences(ctx context.Context, path, text string, line, col int) ([]Reference, error) {
	w, ok := ExtractWord(text, line, col)
	if !ok {
		return nil, nil
	}

	name := w.Text
	label := strings.TrimPrefix(w.Text, "&")

	var refs []Reference
	seen := make(map[Reference]bool)
	add := func(p string, ln int) {
		r := Reference{Path: p, Line: ln}
		if !seen[r] {
			seen[r] = true
			refs = append(refs, r)
		}
	}

	nodes, err := e.Store.FindDTLabelReferences(ctx, label, FindReferencesLimit)
	if err != nil {
		return nil, err
	}
	for _, n := range nodes {
		if f, err := e.Store.GetFile(ctx, n.FileID); err == nil && f != nil {
			add(f.Path, n.StartLine)
		}
	}

	names := []string{name}
	if name != label {
		names = append(names, label)
	}
	budget := FindReferencesLimit
	for _, n := range names {
		syms, err := e.Store.FindAllReferences(ctx, n, budget)
		if err != nil {
			return nil, err
		}
		for _, sym := range syms {
			if f, err := e.Store.GetFile(ctx, sym.FileID); err == nil && f != nil {
				add(f.Path, sym.Line)
			}
		}
	}

	sort.Slice(refs, func(i, j int) bool {
		if refs[i].Path != refs[j].Path {
			return refs[i].Path < refs[j].Path
		}
		return refs[i].Line < refs[j].Line
	})
	if len(refs) > FindReferencesLimit {
		refs = refs[:FindReferencesLimit]
	}
	return refs, nil
}
