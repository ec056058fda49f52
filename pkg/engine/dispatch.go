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

package engine

import (
	"context"
	"encoding/json"
	"fmt"
)

// dispatchPositionParams is the params shape for every method that takes a
// file path, its current buffer text, and a 0-based (line, col) position:
// goto_definition, find_references, hover, completions.
type dispatchPositionParams struct {
	Path string `json:"path"`
	Text string `json:"text"`
	Line int    `json:"line"`
	Col  int    `json:"col"`
}

// dispatchSearchParams is the params shape for search_symbols/search_files.
type dispatchSearchParams struct {
	Query string `json:"query"`
	Limit int    `json:"limit,omitempty"`
}

// Dispatch answers one Query API request by method name, decoding params
// from raw JSON and returning a value ready for the caller to re-encode.
// It exists so that any RPC host — the CLI's --json mode, a future
// language-server or socket daemon — can drive the engine's method set
// without hand-writing its own method-name switch, the same way
// internal/output's JSON helpers give the CLI one encoding convention
// instead of each subcommand rolling its own.
//
// Dispatch does not itself read request/response framing off a transport;
// callers own that (HTTP body, stdin line, etc.) and pass the decoded
// params straight through.
func (e *Engine) Dispatch(ctx context.Context, method string, params json.RawMessage) (any, error) {
	switch method {
	case "start_indexing":
		var p struct {
			Root        string `json:"root"`
			FullReindex bool   `json:"full_reindex"`
		}
		if err := unmarshalParams(params, &p); err != nil {
			return nil, err
		}
		return e.StartIndexing(ctx, p.FullReindex, nil)

	case "cancel_indexing":
		return e.CancelIndexing(), nil

	case "get_status":
		return e.GetStatus(), nil

	case "get_stats":
		return e.GetStats(ctx)

	case "clear_index":
		return e.ClearIndex(ctx)

	case "publish":
		var p struct {
			SavedBy string `json:"saved_by"`
		}
		if err := unmarshalParams(params, &p); err != nil {
			return nil, err
		}
		return e.Publish(ctx, p.SavedBy)

	case "adopt":
		return e.Adopt(ctx)

	case "get_published_meta":
		return e.GetPublishedMeta()

	case "goto_definition":
		p, err := decodePositionParams(params)
		if err != nil {
			return nil, err
		}
		return e.GotoDefinition(ctx, p.Path, p.Text, p.Line, p.Col)

	case "find_references":
		p, err := decodePositionParams(params)
		if err != nil {
			return nil, err
		}
		return e.FindReferences(ctx, p.Path, p.Text, p.Line, p.Col)

	case "hover":
		p, err := decodePositionParams(params)
		if err != nil {
			return nil, err
		}
		return e.Hover(ctx, p.Path, p.Text, p.Line, p.Col)

	case "completions":
		p, err := decodePositionParams(params)
		if err != nil {
			return nil, err
		}
		return e.Completions(ctx, p.Path, p.Text, p.Line, p.Col)

	case "search_symbols":
		var p dispatchSearchParams
		if err := unmarshalParams(params, &p); err != nil {
			return nil, err
		}
		return e.SearchSymbols(ctx, p.Query, p.Limit)

	case "find_definition_by_name":
		var p struct {
			Name string `json:"name"`
		}
		if err := unmarshalParams(params, &p); err != nil {
			return nil, err
		}
		return e.FindDefinitionByName(ctx, p.Name)

	case "search_files":
		var p dispatchSearchParams
		if err := unmarshalParams(params, &p); err != nil {
			return nil, err
		}
		return e.SearchFiles(ctx, p.Query, p.Limit)

	case "directory_exists":
		var p struct {
			Path string `json:"path"`
		}
		if err := unmarshalParams(params, &p); err != nil {
			return nil, err
		}
		return e.DirectoryExists(ctx, p.Path)

	case "clear_caches":
		return e.ClearCaches(), nil

	case "cache_stats":
		return e.CacheStats(), nil

	default:
		return nil, fmt.Errorf("engine: unknown method %q", method)
	}
}

func decodePositionParams(raw json.RawMessage) (dispatchPositionParams, error) {
	var p dispatchPositionParams
	err := unmarshalParams(raw, &p)
	return p, err
}

func unmarshalParams(raw json.RawMessage, v any) error {
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("engine: decode params: %w", err)
	}
	return nil
}
