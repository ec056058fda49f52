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
	"os/user"

	"github.com/bspindex/bspidx/internal/output"
	"github.com/bspindex/bspidx/internal/ui"
)

// runPublish executes the 'publish' CLI command, writing the local index
// and its metadata to the project's shared .bsp-index directory (index.db
// plus meta.json) so teammates can adopt it without re-indexing from scratch.
//
// Flags:
//   - --json: Output as JSON
func runPublish(args []string, configPath string, globals GlobalFlags) {
	fs := flag.NewFlagSet("publish", flag.ExitOnError)
	jsonOutput := fs.Bool("json", globals.JSON, "Output as JSON")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: bspidx publish [options]

Publishes the local index so teammates can adopt it via 'bspidx adopt'
instead of indexing the project from scratch.

Options:
`)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	e, err := openEngine(configPath, globals)
	if err != nil {
		failPublish(*jsonOutput, err)
	}
	defer func() { _ = e.Close() }()

	savedBy := currentUser()
	published, err := e.Publish(context.Background(), savedBy)
	if err != nil {
		failPublish(*jsonOutput, err)
	}
	if !published {
		failPublish(*jsonOutput, fmt.Errorf("publish skipped: indexing is currently running"))
	}

	meta, err := e.GetPublishedMeta()
	if err != nil {
		failPublish(*jsonOutput, err)
	}

	if *jsonOutput {
		_ = output.JSON(meta)
		return
	}
	ui.Successf("Published index for %s (%d files, %d symbols)", e.ProjectID(), meta.Stats.Files, meta.Stats.Symbols)
}

// runAdopt executes the 'adopt' CLI command, replacing the local index
// with a previously published one from the project's shared directory.
//
// Flags:
//   - --json: Output as JSON
func runAdopt(args []string, configPath string, globals GlobalFlags) {
	fs := flag.NewFlagSet("adopt", flag.ExitOnError)
	jsonOutput := fs.Bool("json", globals.JSON, "Output as JSON")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: bspidx adopt [options]

Replaces the local index with a published one, skipping a full re-index.

Options:
`)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	e, err := openEngine(configPath, globals)
	if err != nil {
		failPublish(*jsonOutput, err)
	}
	defer func() { _ = e.Close() }()

	adopted, err := e.Adopt(context.Background())
	if err != nil {
		failPublish(*jsonOutput, err)
	}
	if !adopted {
		failPublish(*jsonOutput, fmt.Errorf("adopt skipped: indexing is currently running"))
	}

	meta, err := e.GetPublishedMeta()
	if err != nil {
		failPublish(*jsonOutput, err)
	}

	if *jsonOutput {
		_ = output.JSON(meta)
		return
	}
	ui.Successf("Adopted index published by %s at %s (%d files, %d symbols)",
		meta.SavedBy, meta.LastSaved.Format("2006-01-02 15:04:05"), meta.Stats.Files, meta.Stats.Symbols)
}

func failPublish(jsonOutput bool, err error) {
	if jsonOutput {
		_ = output.JSONError(err)
	} else {
		ui.Errorf("%v", err)
	}
	os.Exit(1)
}

// currentUser returns a best-effort identifier for the 'published by' field,
// falling back to $USER and finally "unknown".
func currentUser() string {
	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username
	}
	if name := os.Getenv("USER"); name != "" {
		return name
	}
	return "unknown"
}
