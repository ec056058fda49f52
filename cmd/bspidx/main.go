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

// Package main implements the bspidx CLI: a standalone driver for the BSP
// indexing and query engine (pkg/engine).
//
// Usage:
//
//	bspidx init                   Create .bsp-index/project.yaml
//	bspidx index                  Index the current project
//	bspidx status [--json]        Show index status and record counts
//	bspidx query <subcommand>     Run a definition/reference/hover/search query
//	bspidx publish                Export the local index for teammates
//	bspidx adopt                  Replace the local index with a published one
//	bspidx reset --yes            Delete local index data
//	bspidx install-hook           Install a git post-commit reindex hook
//	bspidx completion <shell>     Print a shell completion script
//	bspidx serve                  Run a persistent query daemon over HTTP
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bspindex/bspidx/internal/config"
	"github.com/bspindex/bspidx/pkg/engine"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// GlobalFlags carries the options parsed before the subcommand name.
type GlobalFlags struct {
	JSON     bool
	NoColor  bool
	Quiet    bool
	InMemory bool
}

func main() {
	var (
		showVersion = flag.Bool("version", false, "Show version and exit")
		configPath  = flag.String("config", "", "Path to .bsp-index/project.yaml (default: ./.bsp-index/project.yaml)")
		jsonOut     = flag.Bool("json", false, "Output machine-readable JSON where supported")
		noColor     = flag.Bool("no-color", false, "Disable colored output")
		quiet       = flag.Bool("quiet", false, "Suppress progress output")
		inMemory    = flag.Bool("in-memory", false, "Use the degraded in-memory store instead of the persistent one")
	)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `bspidx - BSP source indexing and query engine (standalone CLI)

Usage:
  bspidx <command> [options]

Commands:
  init          Create .bsp-index/project.yaml configuration
  index         Index the current project
  status        Show index status and record counts
  query         Run a definition/reference/hover/search query
  publish       Export the local index for teammates
  adopt         Replace the local index with a teammate's published one
  reset         Delete local index data (destructive!)
  install-hook  Install a git post-commit hook that reindexes automatically
  completion    Print a shell completion script
  serve         Run a persistent query daemon over HTTP

Global Options:
  --config      Path to .bsp-index/project.yaml
  --json        Output JSON where the command supports it
  --no-color    Disable colored output
  --quiet       Suppress progress output
  --in-memory   Use the degraded in-memory store
  --version     Show version and exit

Examples:
  bspidx init
  bspidx index --full
  bspidx status --json
  bspidx query search-symbols uart
  bspidx query goto-def arch/arm/boot/dts/board.dts 42 10

`)
	}

	flag.Parse()

	if *showVersion {
		fmt.Printf("bspidx version %s\n", version)
		fmt.Printf("commit: %s\n", commit)
		fmt.Printf("built: %s\n", date)
		os.Exit(0)
	}

	globals := GlobalFlags{JSON: *jsonOut, NoColor: *noColor, Quiet: *quiet, InMemory: *inMemory}

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(1)
	}

	command := args[0]
	cmdArgs := args[1:]

	switch command {
	case "init":
		runInit(cmdArgs, globals)
	case "index":
		runIndex(cmdArgs, *configPath, globals)
	case "status":
		runStatus(cmdArgs, *configPath, globals)
	case "query":
		runQuery(cmdArgs, *configPath, globals)
	case "publish":
		runPublish(cmdArgs, *configPath, globals)
	case "adopt":
		runAdopt(cmdArgs, *configPath, globals)
	case "reset":
		runReset(cmdArgs, *configPath, globals)
	case "install-hook":
		runInstallHook(cmdArgs)
	case "completion":
		runCompletion(cmdArgs)
	case "serve":
		runServe(cmdArgs, *configPath, globals)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		flag.Usage()
		os.Exit(1)
	}
}

// resolveProjectRoot returns the project root a CLI command should operate
// on: the directory two levels above configPath if one was given (it names
// <root>/.bsp-index/project.yaml), otherwise the current directory.
func resolveProjectRoot(configPath string) (string, error) {
	if configPath != "" {
		return filepath.Dir(filepath.Dir(configPath)), nil
	}
	return os.Getwd()
}

// openEngine resolves the project root, loads its project.yaml, and wires
// an Engine. Callers must Close the returned Engine.
func openEngine(configPath string, globals GlobalFlags) (*engine.Engine, error) {
	root, err := resolveProjectRoot(configPath)
	if err != nil {
		return nil, fmt.Errorf("resolve project root: %w", err)
	}
	cfg, err := config.Load(config.Path(root))
	if err != nil {
		return nil, fmt.Errorf("project not found at %s (run 'bspidx init' first): %w", root, err)
	}
	return engine.New(engine.Options{
		ProjectRoot:  root,
		ProjectID:    cfg.ProjectID,
		DataDir:      cfg.DataDir,
		InMemory:     globals.InMemory,
		ExcludeGlobs: cfg.Indexing.Exclude,
		MaxInFlight:  cfg.Indexing.Concurrency,
	})
}
