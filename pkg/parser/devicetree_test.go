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

package parser

import (
	"testing"

	"github.com/bspindex/bspidx/pkg/model"
)

func TestDeviceTreeParser_NestedNodes(t *testing.T) {
	content := `/ {
	soc {
		uart1: serial@401C8000 {
			status = "okay";
		};
	};
};
`
	res, err := DeviceTreeParser{}.Parse(1, "a.dts", []byte(content))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(res.DTNodes) != 2 {
		t.Fatalf("got %d nodes, want 2: %+v", len(res.DTNodes), res.DTNodes)
	}
	soc := res.DTNodes[0]
	if soc.Path != "/soc" || soc.ParentOrdinal != -1 {
		t.Errorf("soc node = %+v", soc)
	}
	uart := res.DTNodes[1]
	if uart.Path != "/soc/serial@401C8000" {
		t.Errorf("uart path = %q", uart.Path)
	}
	if uart.Label != "uart1" || uart.Address != "401C8000" {
		t.Errorf("uart node = %+v", uart)
	}
	if uart.ParentOrdinal != 0 {
		t.Errorf("uart ParentOrdinal = %d, want 0", uart.ParentOrdinal)
	}
	if len(res.DTProps) != 1 || res.DTProps[0].Name != "status" || res.DTProps[0].Value != `"okay"` {
		t.Errorf("unexpected props: %+v", res.DTProps)
	}
	if res.DTProps[0].NodeOrdinal != 1 {
		t.Errorf("prop NodeOrdinal = %d, want 1", res.DTProps[0].NodeOrdinal)
	}
}

func TestDeviceTreeParser_LabelDefineAndSymbol(t *testing.T) {
	content := `/ {
	uart1: serial@1000 {
	};
};
`
	res, err := DeviceTreeParser{}.Parse(1, "a.dts", []byte(content))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	var found bool
	for _, s := range res.Symbols {
		if s.Name == "uart1" && s.Kind == model.SymbolKindNode {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a node symbol named uart1, got %+v", res.Symbols)
	}
}

func TestDeviceTreeParser_Override(t *testing.T) {
	content := "&uart1 {\n\tstatus = \"okay\";\n};\n"
	res, err := DeviceTreeParser{}.Parse(1, "a.dts", []byte(content))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(res.DTNodes) != 1 || res.DTNodes[0].Path != "&uart1" {
		t.Fatalf("unexpected nodes: %+v", res.DTNodes)
	}
	var found bool
	for _, s := range res.Symbols {
		if s.Name == "&uart1" && s.Kind == model.SymbolKindLabelRef {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a label_ref symbol for &uart1, got %+v", res.Symbols)
	}
}

func TestDeviceTreeParser_LabelReferenceInValue(t *testing.T) {
	content := `/ {
	node1 {
		interrupt-parent = <&gic>;
	};
};
`
	res, err := DeviceTreeParser{}.Parse(1, "a.dts", []byte(content))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	var found bool
	for _, s := range res.Symbols {
		if s.Name == "&gic" && s.Kind == model.SymbolKindLabel {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a label symbol for &gic, got %+v", res.Symbols)
	}
}

func TestDeviceTreeParser_GPIOTuple(t *testing.T) {
	content := `/ {
	node1 {
		reset-gpios = <&gpio1 5 0>;
	};
};
`
	res, err := DeviceTreeParser{}.Parse(1, "a.dts", []byte(content))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(res.GPIOPins) != 1 {
		t.Fatalf("got %d gpio pins, want 1: %+v", len(res.GPIOPins), res.GPIOPins)
	}
	pin := res.GPIOPins[0]
	if pin.Controller != "gpio1" || pin.Pin != 5 {
		t.Errorf("unexpected pin: %+v", pin)
	}
	if pin.Direction != model.GPIODirectionOut {
		t.Errorf("Direction = %q, want out (reset- prefix)", pin.Direction)
	}
}

func TestDeviceTreeParser_Include(t *testing.T) {
	content := "#include \"imx6q-pinfunc.h\"\n/include/ \"imx6qdl.dtsi\"\n"
	res, err := DeviceTreeParser{}.Parse(1, "a.dts", []byte(content))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(res.Includes) != 2 {
		t.Fatalf("got %d includes, want 2: %+v", len(res.Includes), res.Includes)
	}
	if res.Includes[0].Kind != model.IncludeKindCInclude {
		t.Errorf("includes[0].Kind = %q", res.Includes[0].Kind)
	}
	if res.Includes[1].Kind != model.IncludeKindDTInclude || res.Includes[1].ToPath != "imx6qdl.dtsi" {
		t.Errorf("includes[1] = %+v", res.Includes[1])
	}
}

func TestInferGPIODirection(t *testing.T) {
	cases := []struct {
		prop string
		want model.GPIODirection
	}{
		{"input-gpios", model.GPIODirectionIn},
		{"output-gpios", model.GPIODirectionOut},
		{"enable-gpios", model.GPIODirectionOut},
		{"reset-gpios", model.GPIODirectionOut},
		{"cd-gpios", model.GPIODirectionNone},
	}
	for _, c := range cases {
		if got := inferGPIODirection(c.prop); got != c.want {
			t.Errorf("inferGPIODirection(%q) = %q, want %q", c.prop, got, c.want)
		}
	}
}
