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

	"github.com/bspindex/bspidx/internal/output"
	"github.com/bspindex/bspidx/internal/ui"
)

// ResetResult is the JSON shape for 'bspidx reset --json'.
type ResetResult struct {
	Cleared bool `json:"cleared"`
}

// runReset executes the 'reset' CLI command, clearing all indexed records
// and caches for the current project to prepare for a clean full re-index.
//
// Flags:
//   - --yes: confirm the reset (required)
//   - --json: print the result as JSON instead of text
func runReset(args []string, configPath string, globals GlobalFlags) {
	fs := flag.NewFlagSet("reset", flag.ExitOnError)
	confirm := fs.Bool("yes", false, "Confirm the reset (required)")
	jsonOutput := fs.Bool("json", globals.JSON, "Print the result as JSON")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: bspidx reset --yes

Clears all indexed records and caches for the current project.
This is useful before a full re-index to ensure a clean slate.

WARNING: This operation is destructive and cannot be undone!

Options:
`)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	if !*confirm {
		if *jsonOutput {
			_ = output.JSONError(fmt.Errorf("you must pass --yes to confirm the reset"))
		} else {
			ui.Error("you must pass --yes to confirm the reset")
			fmt.Fprintln(os.Stderr, "This will delete all indexed records for this project.")
		}
		os.Exit(1)
	}

	e, err := openEngine(configPath, globals)
	if err != nil {
		if *jsonOutput {
			_ = output.JSONError(err)
		} else {
			ui.Errorf("%v", err)
		}
		os.Exit(1)
	}
	defer func() { _ = e.Close() }()

	cleared, err := e.ClearIndex(context.Background())
	if err != nil {
		if *jsonOutput {
			_ = output.JSONError(err)
		} else {
			ui.Errorf("reset failed: %v", err)
		}
		os.Exit(1)
	}
	if !cleared {
		if *jsonOutput {
			_ = output.JSONError(fmt.Errorf("reset skipped: indexing is currently running"))
		} else {
			ui.Warning("reset skipped: indexing is currently running")
		}
		os.Exit(1)
	}

	e.ClearCaches()

	if *jsonOutput {
		_ = output.JSON(ResetResult{Cleared: true})
		return
	}

	ui.Success("Reset complete. All indexed records have been deleted.")
	fmt.Println()
	fmt.Println("Next steps:")
	fmt.Println("  bspidx index --full    Reindex the project")
}
