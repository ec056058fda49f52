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

	"github.com/bspindex/bspidx/pkg/model"
)

// HoverKind classifies a Hover result's shape, letting a host render each
// kind with a dedicated widget instead of dumping raw text.
type HoverKind string

const (
	HoverDTNode    HoverKind = "dt_node"
	HoverDTProp    HoverKind = "dt_property"
	HoverSymbol    HoverKind = "symbol"
	HoverRecipeVar HoverKind = "recipe_variable"
	HoverGPIO      HoverKind = "gpio"
	HoverInclude   HoverKind = "include"
)

// Hover is a structured description for the word under the cursor.
type Hover struct {
	Kind  HoverKind
	Title string
	Lines []string
}

// Hover resolves the word at (line, col) to a structured description,
// trying each hover case in order and returning the first match.
func (e *Engine) Hover(ctx context.Context, path, text string, line, col int) (*Hover, error) {
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
			return e.dtNodeHover(ctx, node)
		}
	}

	if wk, ok := dtProperties[w.Text]; ok {
		return &Hover{
			Kind:  HoverDTProp,
			Title: w.Text,
			Lines: []string{wk.Description, wk.Example},
		}, nil
	}

	sym, err := e.findSymbolCached(ctx, w.Text)
	if err != nil {
		return nil, err
	}
	if sym != nil {
		return e.symbolHover(ctx, sym)
	}

	if wk, ok := recipeVariables[w.Text]; ok {
		return &Hover{
			Kind:  HoverRecipeVar,
			Title: w.Text,
			Lines: []string{wk.Description, wk.Example},
		}, nil
	}

	if pins, err := e.Store.FindGPIOPinsByLabel(ctx, w.Text); err == nil && len(pins) > 0 {
		return gpioHover(w.Text, pins), nil
	}

	if w.Context == ContextInclude {
		lines := strings.Split(text, "\n")
		if line >= 0 && line < len(lines) {
			return &Hover{Kind: HoverInclude, Title: w.Text, Lines: []string{strings.TrimSpace(lines[line])}}, nil
		}
	}

	return nil, nil
}

func (e *Engine) dtNodeHover(ctx context.Context, node *model.DTNode) (*Hover, error) {
	f, err := e.Store.GetFile(ctx, node.FileID)
	if err != nil {
		return nil, err
	}
	refs, err := e.Store.FindDTLabelReferences(ctx, node.Label, 1000)
	if err != nil {
		return nil, err
	}
	filePath := ""
	if f != nil {
		filePath = f.Path
	}
	return &Hover{
		Kind:  HoverDTNode,
		Title: node.Label,
		Lines: []string{
			fmt.Sprintf("node: %s", node.Name),
			fmt.Sprintf("path: %s", node.Path),
			fmt.Sprintf("address: %s", node.Address),
			fmt.Sprintf("location: %s:%d", filePath, node.StartLine),
			fmt.Sprintf("references: %d", len(refs)),
		},
	}, nil
}

func (e *Engine) symbolHover(ctx context.Context, sym *model.Symbol) (*Hover, error) {
	f, err := e.Store.GetFile(ctx, sym.FileID)
	if err != nil {
		return nil, err
	}
	filePath := ""
	if f != nil {
		filePath = f.Path
	}
	return &Hover{
		Kind:  HoverSymbol,
		Title: sym.Name,
		Lines: []string{
			fmt.Sprintf("kind: %s", sym.Kind),
			fmt.Sprintf("value: %s", formatSymbolValue(sym)),
			fmt.Sprintf("location: %s:%d", filePath, sym.Line),
		},
	}, nil
}

func formatSymbolValue(sym *model.Symbol) string {
	switch sym.Kind {
	case model.SymbolKindDefine:
		return sym.Value
	case model.SymbolKindVariable:
		if len(sym.Value) > 120 {
			return sym.Value[:120] + "…"
		}
		return sym.Value
	default:
		return sym.Value
	}
}

func gpioHover(label string, pins []model.GPIOPin) *Hover {
	lines := make([]string, 0, len(pins)+1)
	lines = append(lines, "controller\tpin\tfunction\tdirection\tline")
	for _, p := range pins {
		lines = append(lines, fmt.Sprintf("%s\t%d\t%s\t%s\t%d", p.Controller, p.Pin, p.Function, p.Direction, p.Line))
	}
	return &Hover{Kind: HoverGPIO, Title: label, Lines: lines}
}
