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

package model

import "testing"

func TestNormalizePath(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"./recipes/foo.bb", "recipes/foo.bb"},
		{"/recipes/foo.bb", "recipes/foo.bb"},
		{"recipes//foo.bb", "recipes/foo.bb"},
		{"recipes/../recipes/foo.bb", "recipes/foo.bb"},
		{"foo.bb", "foo.bb"},
		{"", "."},
	}
	for _, c := range cases {
		if got := NormalizePath(c.in); got != c.want {
			t.Errorf("NormalizePath(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestClassifyFile(t *testing.T) {
	cases := []struct {
		path string
		want FileKind
	}{
		{"recipes-core/busybox/busybox_1.36.bb", FileKindRecipe},
		{"recipes-core/busybox/busybox.inc", FileKindRecipe},
		{"meta/recipes/foo.bbappend", FileKindRecipe},
		{"include/linux/gpio.h", FileKindHeader},
		{"include/cpp/thing.hpp", FileKindHeader},
		{"arch/arm/boot/dts/imx6q.dts", FileKindDTS},
		{"arch/arm/boot/dts/imx6q-pinfunc.dtsi", FileKindDTS},
		{"conf/bitbake.conf", FileKindConfig},
		{"drivers/gpio/gpio-core.c", FileKindSource},
		{"drivers/gpio/gpio-core.cpp", FileKindSource},
		{"README.md", FileKindOther},
	}
	for _, c := range cases {
		if got := ClassifyFile(c.path); got != c.want {
			t.Errorf("ClassifyFile(%q) = %q, want %q", c.path, got, c.want)
		}
	}
}
