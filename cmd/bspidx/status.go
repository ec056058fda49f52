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

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/bspindex/bspidx/internal/output"
	"github.com/bspindex/bspidx/internal/ui"
	"github.com/bspindex/bspidx/pkg/model"
)

// StatusResult is the JSON shape for 'bspidx status --json'.
type StatusResult struct {
	ProjectID string      `json:"project_id"`
	Indexing  bool        `json:"indexing"`
	LastRunAt time.Time   `json:"last_run_at,omitempty"`
	LastError string      `json:"error,omitempty"`
	Stats     model.Stats `json:"stats"`
}

// runStatus executes the 'status' CLI command, reporting whether indexing
// is active and the authoritative record counts in the store.
//
// Flags:
//   - --json: Output as JSON
func runStatus(args []string, configPath string, globals GlobalFlags) {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	jsonOutput := fs.Bool("json", globals.JSON, "Output as JSON")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: bspidx status [options]

Shows whether indexing is active and the current record counts.

Options:
`)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
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

	status := e.GetStatus()
	stats, err := e.GetStats(context.Background())
	if err != nil {
		if *jsonOutput {
			_ = output.JSONError(err)
		} else {
			ui.Errorf("get stats: %v", err)
		}
		os.Exit(1)
	}

	result := StatusResult{
		ProjectID: e.ProjectID(),
		Indexing:  status.Indexing,
		LastRunAt: status.LastRunAt,
		LastError: status.LastError,
		Stats:     stats,
	}

	if *jsonOutput {
		_ = output.JSON(result)
		return
	}
	printStatus(result)
}

func printStatus(r StatusResult) {
	ui.Header("BSP Index Status")
	fmt.Printf("%s %s\n", ui.Label("Project ID:"), r.ProjectID)
	if r.Indexing {
		ui.Info("Indexing is currently running.")
	} else if !r.LastRunAt.IsZero() {
		fmt.Printf("%s %s\n", ui.Label("Last run:"), r.LastRunAt.Format(time.RFC3339))
	}
	if r.LastError != "" {
		ui.Warningf("Last run error: %s", r.LastError)
	}
	fmt.Println()

	ui.SubHeader("Records:")
	fmt.Printf("  Files:     %s\n", ui.CountText(r.Stats.Files))
	fmt.Printf("  Symbols:   %s\n", ui.CountText(r.Stats.Symbols))
	fmt.Printf("  Includes:  %s\n", ui.CountText(r.Stats.Includes))
	fmt.Printf("  DT nodes:  %s\n", ui.CountText(r.Stats.DTNodes))
	fmt.Printf("  GPIO pins: %s\n", ui.CountText(r.Stats.GPIOPins))
}
