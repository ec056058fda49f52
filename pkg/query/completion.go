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
	"sort"
	"strings"

	"github.com/bspindex/bspidx/pkg/cache"
	"github.com/bspindex/bspidx/pkg/model"
)

// Completion is one ranked proposal. Rank orders context-matched proposals
// (0) before plain indexed-symbol proposals (1); ties keep discovery order.
type Completion struct {
	Label  string
	Detail string
	Rank   int
}

const completionCacheTTLBucket = "completions"

// Completions returns ranked proposals for the prefix ending at (line,
// col): DT-specific proposals for device-tree files, recipe-specific
// proposals for recipe/config files, and — once the prefix is at least two
// characters — indexed Symbol names matching it, always. Results are
// de-duplicated by label.
func (e *Engine) Completions(ctx context.Context, path, text string, line, col int) ([]Completion, error) {
	lines := strings.Split(text, "\n")
	if line < 0 || line >= len(lines) {
		return nil, nil
	}
	l := lines[line]
	if col < 0 {
		col = 0
	}
	if col > len(l) {
		col = len(l)
	}
	start := col
	for start > 0 && (isWordByte(l[start-1]) || l[start-1] == '&') {
		start--
	}
	prefix := l[start:col]

	if e.Cache != nil {
		key := completionCacheTTLBucket + ":" + path[strings.LastIndexByte(path, '.')+1:] + ":" + prefix
		if cached, ok := e.Cache.Search.Get(key); ok {
			return completionsFromSearchResult(cached, prefix), nil
		}
	}

	seen := make(map[string]bool)
	var out []Completion
	add := func(label, detail string, rank int) {
		if seen[label] {
			return
		}
		seen[label] = true
		out = append(out, Completion{Label: label, Detail: detail, Rank: rank})
	}

	kind := model.ClassifyFile(path)
	bare := strings.TrimPrefix(prefix, "&")

	switch kind {
	case model.FileKindDTS:
		if strings.HasPrefix(prefix, "&") || strings.Contains(l, "<&") {
			if bare != "" {
				syms, err := e.Store.SearchSymbols(ctx, bare, 50)
				if err != nil {
					return nil, err
				}
				for _, s := range syms {
					if s.Kind == model.SymbolKindNode && strings.HasPrefix(s.Name, bare) {
						add("&"+s.Name, "DT node label", 0)
					}
				}
			}
		}
		for name := range dtProperties {
			if strings.HasPrefix(name, prefix) {
				add(name, dtProperties[name].Description, 0)
			}
		}
		if strings.Contains(l, "status") && strings.Contains(l, "=") {
			add(`"okay"`, "enable this node", 0)
			add(`"disabled"`, "disable this node", 0)
		}

	case model.FileKindRecipe, model.FileKindConfig:
		for name := range recipeVariables {
			if strings.HasPrefix(name, prefix) {
				add(name, recipeVariables[name].Description, 0)
			}
		}
		if strings.HasPrefix(prefix, "do_") || strings.Contains(l, "addtask") || strings.Contains(l, "deltask") {
			for _, t := range taskNames {
				if strings.HasPrefix(t, prefix) {
					add(t, "BitBake task", 0)
				}
			}
		}
		if strings.Contains(l, "inherit") {
			for _, c := range classNames {
				if strings.HasPrefix(c, prefix) {
					add(c, "bbclass", 0)
				}
			}
		}
	}

	if len(prefix) >= 2 {
		syms, err := e.Store.SearchSymbols(ctx, prefix, 50)
		if err != nil {
			return nil, err
		}
		for _, s := range syms {
			if strings.HasPrefix(s.Name, prefix) {
				add(s.Name, fmt.Sprintf("%s symbol", s.Kind), 1)
			}
		}
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Rank < out[j].Rank })

	if e.Cache != nil {
		key := completionCacheTTLBucket + ":" + path[strings.LastIndexByte(path, '.')+1:] + ":" + prefix
		e.Cache.Search.Put(key, searchResultFromCompletions(out))
	}
	return out, nil
}

// completionsFromSearchResult / searchResultFromCompletions round-trip
// Completion lists through cache.SearchResult's Symbols field so the
// completion cache can reuse the tier's existing search cache instead of a
// fifth bespoke cache type.
func searchResultFromCompletions(cs []Completion) cache.SearchResult {
	var sr cache.SearchResult
	for _, c := range cs {
		sr.Symbols = append(sr.Symbols, model.Symbol{Name: c.Label, Value: c.Detail, Line: c.Rank})
	}
	return sr
}

func completionsFromSearchResult(sr cache.SearchResult, prefix string) []Completion {
	out := make([]Completion, 0, len(sr.Symbols))
	for _, s := range sr.Symbols {
		out = append(out, Completion{Label: s.Name, Detail: s.Value, Rank: s.Line})
	}
	return out
}
