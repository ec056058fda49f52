// Copyright 2025 KrakLabs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/bspindex/bspidx/internal/output"
	"github.com/bspindex/bspidx/internal/ui"
)

// runQuery dispatches 'bspidx query <subcommand> ...' to one of the Query
// API operations against the current project's engine.
//
// Subcommands:
//
//	goto-def <path> <line> <col>   Resolve the word at a position to its definition
//	refs     <path> <line> <col>   Find references to the word at a position
//	hover    <path> <line> <col>   Describe the word at a position
//	complete <path> <line> <col>   List completion proposals at a position
//	search-symbols <term>          Full-text search over symbol names
//	search-files   <term>          Full-text search over file paths/content
func runQuery(args []string, configPath string, globals GlobalFlags) {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "Usage: bspidx query <goto-def|refs|hover|complete|search-symbols|search-files> ...")
		os.Exit(1)
	}

	sub := args[0]
	rest := args[1:]

	e, err := openEngine(configPath, globals)
	if err != nil {
		ui.Errorf("%v", err)
		os.Exit(1)
	}
	defer func() { _ = e.Close() }()

	root, err := resolveProjectRoot(configPath)
	if err != nil {
		ui.Errorf("%v", err)
		os.Exit(1)
	}

	ctx := context.Background()

	switch sub {
	case "goto-def":
		path, text, line, col := readPositionalArgs(rest, root)
		loc, err := e.GotoDefinition(ctx, path, text, line, col)
		emitQueryResult(globals, loc, err, func() {
			if loc == nil {
				fmt.Println("No definition found.")
				return
			}
			fmt.Printf("%s:%d:%d\n", loc.Path, loc.StartLine, loc.StartCol)
		})
	case "refs":
		path, text, line, col := readPositionalArgs(rest, root)
		refs, err := e.FindReferences(ctx, path, text, line, col)
		emitQueryResult(globals, refs, err, func() {
			if len(refs) == 0 {
				fmt.Println("No references found.")
				return
			}
			for _, r := range refs {
				fmt.Printf("%s:%d\n", r.Path, r.Line)
			}
		})
	case "hover":
		path, text, line, col := readPositionalArgs(rest, root)
		h, err := e.Hover(ctx, path, text, line, col)
		emitQueryResult(globals, h, err, func() {
			if h == nil {
				fmt.Println("No hover information.")
				return
			}
			fmt.Printf("[%s] %s\n", h.Kind, h.Title)
			for _, line := range h.Lines {
				fmt.Println("  " + line)
			}
		})
	case "complete":
		path, text, line, col := readPositionalArgs(rest, root)
		cs, err := e.Completions(ctx, path, text, line, col)
		emitQueryResult(globals, cs, err, func() {
			for _, c := range cs {
				fmt.Printf("%-30s %s\n", c.Label, c.Detail)
			}
		})
	case "search-symbols":
		if len(rest) < 1 {
			ui.Errorf("search-symbols requires a search term")
			os.Exit(1)
		}
		syms, err := e.SearchSymbols(ctx, rest[0], 50)
		emitQueryResult(globals, syms, err, func() {
			for _, s := range syms {
				fmt.Printf("%-8s %s\n", s.Kind, s.Name)
			}
		})
	case "search-files":
		if len(rest) < 1 {
			ui.Errorf("search-files requires a search term")
			os.Exit(1)
		}
		files, err := e.SearchFiles(ctx, rest[0], 50)
		emitQueryResult(globals, files, err, func() {
			for _, f := range files {
				fmt.Println(f.Path)
			}
		})
	default:
		ui.Errorf("unknown query subcommand %q", sub)
		os.Exit(1)
	}
}

// readPositionalArgs parses "<path> <line> <col>" from a query subcommand's
// remaining args and reads path's current on-disk text relative to root.
func readPositionalArgs(args []string, root string) (path, text string, line, col int) {
	fs := flag.NewFlagSet("query-position", flag.ExitOnError)
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	if fs.NArg() != 3 {
		ui.Errorf("expected <path> <line> <col>")
		os.Exit(1)
	}
	path = fs.Arg(0)
	line, err1 := strconv.Atoi(fs.Arg(1))
	col, err2 := strconv.Atoi(fs.Arg(2))
	if err1 != nil || err2 != nil {
		ui.Errorf("line and col must be integers")
		os.Exit(1)
	}

	data, err := os.ReadFile(filepath.Join(root, path))
	if err != nil {
		ui.Errorf("read %s: %v", path, err)
		os.Exit(1)
	}
	return path, string(data), line, col
}

// emitQueryResult writes result as JSON (when --json is set) or calls
// printHuman to render it as text, exiting non-zero if err is non-nil.
func emitQueryResult(globals GlobalFlags, result any, err error, printHuman func()) {
	if err != nil {
		if globals.JSON {
			_ = output.JSONError(err)
		} else {
			ui.Errorf("%v", err)
		}
		os.Exit(1)
	}
	if globals.JSON {
		_ = output.JSON(result)
		return
	}
	printHuman()
}
