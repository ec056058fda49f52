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
	"regexp"
	"strconv"
	"strings"

	"github.com/bspindex/bspidx/pkg/model"
)

var (
	dtIncludeRe  = regexp.MustCompile(`^#\s*include\s*[<"]([^>"]+)[>"]`)
	dtIncludeRe2 = regexp.MustCompile(`^/include/\s*"([^"]+)"`)
	// node header: optional "label:", then name (dashes/commas allowed),
	// optional "@address", then "{". Also matches an override reference
	// "&label {".
	dtNodeHeaderRe = regexp.MustCompile(`^(?:([A-Za-z_][A-Za-z0-9_]*)\s*:\s*)?(&?[A-Za-z0-9_,.\-]+)(?:@([0-9A-Fa-f]+))?\s*\{`)
	dtPropertyRe   = regexp.MustCompile(`^([#?A-Za-z_][A-Za-z0-9_,\-]*)\s*(?:=\s*(.*?))?;`)
	dtLabelRefRe   = regexp.MustCompile(`&([A-Za-z_][A-Za-z0-9_]*)`)
	dtGPIOTupleRe  = regexp.MustCompile(`<\s*&([A-Za-z_][A-Za-z0-9_]*)\s+([0-9]+)(?:\s+([0-9A-Fa-fxX]+))?\s*>`)
)

type dtFrame struct {
	ordinal int
	path    string
}

// DeviceTreeParser handles device-tree source files (.dts, .dtsi). It
// maintains a node stack so that nested nodes resolve a parent-relative
// path without ever building an in-memory tree (nodes are emitted flat,
// addressed by ordinal, and remapped to ids by the caller).
type DeviceTreeParser struct{}

func (DeviceTreeParser) Parse(fileID int64, path string, content []byte) (*Result, error) {
	lines := strings.Split(string(content), "\n")
	res := newResult(countLines(content))

	var stack []dtFrame

	currentNodeOrdinal := func() (int, bool) {
		if len(stack) == 0 {
			return 0, false
		}
		return stack[len(stack)-1].ordinal, true
	}

	for i, raw := range lines {
		lineNum := i + 1
		trimmed := strings.TrimSpace(strings.TrimRight(raw, "\r"))
		if trimmed == "" || strings.HasPrefix(trimmed, "//") {
			continue
		}
		if strings.HasPrefix(trimmed, "/*") {
			continue // block comments spanning lines are not tracked; best-effort
		}

		if m := dtIncludeRe.FindStringSubmatch(trimmed); m != nil {
			res.Includes = append(res.Includes, model.Include{
				FromFileID: fileID,
				ToPath:     m[1],
				Kind:       model.IncludeKindCInclude,
				Line:       lineNum,
			})
			continue
		}
		if m := dtIncludeRe2.FindStringSubmatch(trimmed); m != nil {
			res.Includes = append(res.Includes, model.Include{
				FromFileID: fileID,
				ToPath:     m[1],
				Kind:       model.IncludeKindDTInclude,
				Line:       lineNum,
			})
			continue
		}

		if trimmed == "};" || trimmed == "}" {
			if len(stack) > 0 {
				top := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				res.DTNodes[top.ordinal].EndLine = lineNum
			}
			continue
		}

		if m := dtNodeHeaderRe.FindStringSubmatch(trimmed); m != nil && looksLikeNodeHeader(trimmed) {
			label := m[1]
			name := m[2]
			address := m[3]

			parentOrdinal := -1
			parentPath := ""
			if po, ok := currentNodeOrdinal(); ok {
				parentOrdinal = po
				parentPath = res.DTNodes[po].Path
			}

			isOverride := strings.HasPrefix(name, "&")
			var nodePath string
			if isOverride {
				nodePath = name
			} else if parentPath == "" || parentPath == "/" {
				nodePath = "/" + name
			} else {
				nodePath = parentPath + "/" + name
			}
			if address != "" && !isOverride {
				nodePath = nodePath + "@" + address
			}

			ordinal := len(res.DTNodes)
			res.DTNodes = append(res.DTNodes, DTNodeRecord{
				DTNode: model.DTNode{
					FileID:    fileID,
					Path:      nodePath,
					Name:      name,
					Label:     label,
					Address:   address,
					StartLine: lineNum,
					EndLine:   lineNum,
				},
				Ordinal:       ordinal,
				ParentOrdinal: parentOrdinal,
			})
			stack = append(stack, dtFrame{ordinal: ordinal, path: nodePath})

			if isOverride {
				res.Symbols = append(res.Symbols, model.Symbol{
					Name:   name,
					Kind:   model.SymbolKindLabelRef,
					FileID: fileID,
					Line:   lineNum,
				})
			} else if label != "" {
				res.Symbols = append(res.Symbols, model.Symbol{
					Name:   label,
					Kind:   model.SymbolKindNode,
					FileID: fileID,
					Line:   lineNum,
				})
			}
			continue
		}

		nodeOrdinal, inNode := currentNodeOrdinal()
		if !inNode {
			continue
		}

		if m := dtPropertyRe.FindStringSubmatch(trimmed); m != nil {
			propName := m[1]
			value := strings.TrimSpace(m[2])

			res.DTProps = append(res.DTProps, DTPropRecord{
				DTProperty: model.DTProperty{
					Name:  propName,
					Value: value,
					Line:  lineNum,
				},
				NodeOrdinal: nodeOrdinal,
			})

			for _, ref := range dtLabelRefRe.FindAllStringSubmatch(value, -1) {
				res.Symbols = append(res.Symbols, model.Symbol{
					Name:   "&" + ref[1],
					Kind:   model.SymbolKindLabel,
					FileID: fileID,
					Line:   lineNum,
				})
			}

			if strings.Contains(strings.ToLower(propName), "gpio") {
				direction := inferGPIODirection(propName)
				for _, tuple := range dtGPIOTupleRe.FindAllStringSubmatch(value, -1) {
					pin, err := strconv.Atoi(tuple[2])
					if err != nil {
						continue
					}
					res.GPIOPins = append(res.GPIOPins, model.GPIOPin{
						FileID:     fileID,
						Controller: tuple[1],
						Pin:        pin,
						Function:   propName,
						Direction:  direction,
						Line:       lineNum,
					})
				}
			}
		}
	}

	return res, nil
}

// looksLikeNodeHeader filters false positives of dtNodeHeaderRe against
// property assignments that happen to contain "{" inside a string value
// (rare, but cheaper to guard here than to make the regex pathological).
func looksLikeNodeHeader(trimmed string) bool {
	eq := strings.Index(trimmed, "=")
	brace := strings.Index(trimmed, "{")
	if eq == -1 {
		return true
	}
	return brace != -1 && brace < eq
}

func inferGPIODirection(propName string) model.GPIODirection {
	lower := strings.ToLower(propName)
	switch {
	case strings.Contains(lower, "input"):
		return model.GPIODirectionIn
	case strings.Contains(lower, "output"), strings.Contains(lower, "enable"), strings.Contains(lower, "reset"):
		return model.GPIODirectionOut
	default:
		return model.GPIODirectionNone
	}
}
