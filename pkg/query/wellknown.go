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

// wellKnown is a canonical description plus a short usage example, used by
// hover and completions for identifiers the engine recognizes without
// needing an indexed definition.
type wellKnown struct {
	Description string
	Example     string
}

// dtProperties are the device-tree property names common enough across
// BSP trees to describe without a definition site.
var dtProperties = map[string]wellKnown{
	"compatible":    {"Driver match string(s) for this node.", `compatible = "ti,am335x-uart";`},
	"reg":           {"Address/size pairs in the parent's address space.", "reg = <0x401C8000 0x2000>;"},
	"status":        {"Whether the node is enabled.", `status = "okay";`},
	"interrupts":    {"Interrupt specifier(s) for this node.", "interrupts = <72>;"},
	"interrupt-parent": {"Phandle of the interrupt controller.", "interrupt-parent = <&intc>;"},
	"clocks":        {"Phandle(s) plus clock specifier cells.", "clocks = <&clk_48mhz>;"},
	"clock-names":   {"Names matching the clocks list, in order.", `clock-names = "fck";`},
	"gpios":         {"GPIO specifier(s): phandle, pin, flags.", "gpios = <&gpio1 7 0>;"},
	"pinctrl-names": {"Named pin-control states for this node.", `pinctrl-names = "default";`},
	"pinctrl-0":     {"Phandle(s) to the pinmux state for index 0.", "pinctrl-0 = <&uart0_pins>;"},
	"#address-cells": {"Address cell count for this node's children.", "#address-cells = <1>;"},
	"#size-cells":   {"Size cell count for this node's children.", "#size-cells = <1>;"},
	"label":         {"Human-readable label distinct from the phandle label.", `label = "user-led";`},
}

// recipeVariables are BitBake variables common enough to describe without
// an indexed assignment.
var recipeVariables = map[string]wellKnown{
	"SRC_URI":      {"Fetch locations for the recipe's sources.", `SRC_URI = "git://example.com/repo.git;branch=main"`},
	"LICENSE":      {"SPDX or recipe-local license identifier.", `LICENSE = "MIT"`},
	"DEPENDS":      {"Build-time dependencies.", `DEPENDS = "zlib openssl"`},
	"RDEPENDS:${PN}": {"Runtime dependencies of the built package.", `RDEPENDS:${PN} = "glibc"`},
	"PV":           {"Package version.", `PV = "1.2.3"`},
	"PR":           {"Package revision, bumped on recipe-only changes.", `PR = "r1"`},
	"S":            {"Unpacked source directory.", `S = "${WORKDIR}/git"`},
	"FILESEXTRAPATHS": {"Additional directories searched for SRC_URI local files.", `FILESEXTRAPATHS:prepend := "${THISDIR}/files:"`},
	"EXTRA_OECONF": {"Extra arguments passed to autoconf-based configure.", `EXTRA_OECONF = "--disable-tests"`},
	"IMAGE_INSTALL": {"Packages installed into an image recipe.", `IMAGE_INSTALL:append = " my-package"`},
}

// taskNames are well-known BitBake tasks proposed when a word starts with
// do_ or the line mentions addtask/deltask.
var taskNames = []string{
	"do_fetch", "do_unpack", "do_patch", "do_configure", "do_compile",
	"do_install", "do_package", "do_populate_sysroot", "do_deploy", "do_rootfs",
}

// className are well-known bbclass names proposed on an `inherit` line.
var classNames = []string{
	"autotools", "cmake", "kernel", "kernel-yocto", "systemd",
	"pkgconfig", "useradd", "update-rc.d", "allarch", "native",
}
