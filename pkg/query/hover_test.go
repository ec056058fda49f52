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
	"testing"

	"github.com/bspindex/bspidx/pkg/model"
	"github.com/bspindex/bspidx/pkg/store/memory"
)

func TestHover_DTNode(t *testing.T) {
	s := memory.New()
	ctx := context.Background()
	fileID, _ := s.InsertFile(ctx, model.File{Path: "a.dts"})
	if _, err := s.InsertDTNodes(ctx, []model.DTNode{
		{FileID: fileID, Path: "/soc/uart1", Name: "uart1", Label: "uart1", Address: "401C8000", StartLine: 5},
	}); err != nil {
		t.Fatalf("InsertDTNodes: %v", err)
	}

	e := &Engine{Store: s}
	h, err := e.Hover(ctx, "b.dts", "interrupt-parent = <&uart1>;\n", 0, 23)
	if err != nil {
		t.Fatalf("Hover: %v", err)
	}
	if h == nil || h.Kind != HoverDTNode || h.Title != "uart1" {
		t.Fatalf("Hover = %+v, want dt_node uart1", h)
	}
}

func TestHover_WellKnownDTProperty(t *testing.T) {
	e := &Engine{Store: memory.New()}
	h, err := e.Hover(context.Background(), "a.dts", "compatible = \"ti,am335x-uart\";\n", 0, 2)
	if err != nil {
		t.Fatalf("Hover: %v", err)
	}
	if h == nil || h.Kind != HoverDTProp || h.Title != "compatible" {
		t.Fatalf("Hover = %+v, want dt_property compatible", h)
	}
}

func TestHover_Symbol(t *testing.T) {
	s := memory.New()
	ctx := context.Background()
	fileID, _ := s.InsertFile(ctx, model.File{Path: "a.h"})
	if err := s.InsertSymbols(ctx, []model.Symbol{
		{Name: "FOO", Kind: model.SymbolKindDefine, Value: "1", FileID: fileID, Line: 3},
	}); err != nil {
		t.Fatalf("InsertSymbols: %v", err)
	}

	e := &Engine{Store: s}
	h, err := e.Hover(ctx, "b.h", "x = FOO\n", 0, 5)
	if err != nil {
		t.Fatalf("Hover: %v", err)
	}
	if h == nil || h.Kind != HoverSymbol || h.Title != "FOO" {
		t.Fatalf("Hover = %+v, want symbol FOO", h)
	}
}

func TestHover_WellKnownRecipeVariable(t *testing.T) {
	e := &Engine{Store: memory.New()}
	h, err := e.Hover(context.Background(), "a.bb", "SRC_URI = \"git://example.com/repo.git\"\n", 0, 2)
	if err != nil {
		t.Fatalf("Hover: %v", err)
	}
	if h == nil || h.Kind != HoverRecipeVar || h.Title != "SRC_URI" {
		t.Fatalf("Hover = %+v, want recipe_variable SRC_URI", h)
	}
}

func TestHover_GPIO(t *testing.T) {
	s := memory.New()
	ctx := context.Background()
	fileID, _ := s.InsertFile(ctx, model.File{Path: "a.dts"})
	if err := s.InsertGPIOPins(ctx, []model.GPIOPin{
		{FileID: fileID, Controller: "gpio1", Pin: 7, Label: "led1", Direction: model.GPIODirectionOut, Line: 4},
	}); err != nil {
		t.Fatalf("InsertGPIOPins: %v", err)
	}

	e := &Engine{Store: s}
	h, err := e.Hover(ctx, "a.dts", "led1-gpios = <&gpio1 7 0>;\n", 0, 1)
	if err != nil {
		t.Fatalf("Hover: %v", err)
	}
	if h == nil || h.Kind != HoverGPIO || h.Title != "led1" {
		t.Fatalf("Hover = %+v, want gpio led1", h)
	}
	if len(h.Lines) != 2 {
		t.Fatalf("Hover.Lines = %+v, want header + 1 pin row", h.Lines)
	}
}

func TestHover_IncludeLine(t *testing.T) {
	e := &Engine{Store: memory.New()}
	h, err := e.Hover(context.Background(), "a.bb", "require common.inc\n", 0, 10)
	if err != nil {
		t.Fatalf("Hover: %v", err)
	}
	if h == nil || h.Kind != HoverInclude {
		t.Fatalf("Hover = %+v, want include", h)
	}
}

func TestHover_NoMatchReturnsNilNil(t *testing.T) {
	e := &Engine{Store: memory.New()}
	h, err := e.Hover(context.Background(), "a.bb", "TOTALLY_UNKNOWN_VAR = 1\n", 0, 3)
	if err != nil {
		t.Fatalf("Hover: %v", err)
	}
	if h != nil {
		t.Errorf("Hover = %+v, want nil", h)
	}
}
