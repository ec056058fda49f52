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
	"strings"

	"github.com/bspindex/bspidx/pkg/model"
)

// GotoDefinition resolves the word at (line, col) in text to a location,
// trying DT label, then exact Symbol, then (for include-shaped lines) the
// textually resolved include target, in that order.
// Returns (nil, nil) when nothing resolves.
func (e *Engine) GotoDefinition(ctx context.Context, path, text string, line, col int) (*model.Location, error) {
	w, ok := ExtractWord(text, line, col)
	if !ok {
		return nil, nil
	}

	if w.Context == ContextPhandle || w.Context == ContextLabelRef {
		label := strings.TrimPrefix(w.Text, "&")
		node, err := e.Store.FindDTNodeByLabel(ctx, label)
		if err != nil {
			return nil, err
		}
		if node != nil {
			return e.locationForFile(ctx, node.FileID, node.StartLine, 0)
		}
		// pkg/parser/devicetree.go always stores label-kind symbols with
		// the "&" prefix (Name: "&" + ref[1]), so the lookup must use
		// w.Text (which already carries it), not the stripped label.
		sym, err := e.findSymbolCached(ctx, w.Text)
		if err != nil {
			return nil, err
		}
		if sym != nil && sym.Kind == model.SymbolKindLabel {
			return e.locationForFile(ctx, sym.FileID, sym.Line, 0)
		}
		return nil, nil
	}

	sym, err := e.findSymbolCached(ctx, w.Text)
	if err != nil {
		return nil, err
	}
	if sym != nil {
		return e.locationForFile(ctx, sym.FileID, sym.Line, 0)
	}

	if w.Context == ContextInclude {
		lines := strings.Split(text, "\n")
		if line >= 0 && line < len(lines) {
			if target, ok := resolveIncludeTarget(lines[line], path, e.ProjectRoot); ok {
				return &model.Location{Path: target, StartLine: 1}, nil
			}
		}
	}

	return nil, nil
}

// locationForFile resolves fileID to its File record and builds a Location
// pointing at (startLine, startCol).
func (e *Engine) locationForFile(ctx context.Context, fileID int64, startLine, startCol int) (*model.Location, error) {
	f, err := e.Store.GetFile(ctx, fileID)
	if err != nil {
		return nil, err
	}
	if f == nil {
		return nil, nil
	}
	return &model.Location{Path: f.Path, StartLine: startLine, StartCol: startCol, EndLine: startLine}, nil
}

// findSymbolCached looks up a Symbol by exact name, consulting the symbol
// cache first (keyed by the bare name) and populating it on a store hit.
func (e *Engine) findSymbolCached(ctx context.Context, name string) (*model.Symbol, error) {
	if e.Cache != nil {
		if sym, ok := e.Cache.Symbol.Get(name); ok {
			return &sym, nil
		}
	}
	sym, err := e.Store.FindSymbolExact(ctx, name)
	if err != nil || sym == nil {
		return sym, err
	}
	if e.Cache != nil {
		e.Cache.Symbol.Put(name, *sym)
	}
	return sym, nil
}
