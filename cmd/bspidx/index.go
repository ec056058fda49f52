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
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bspindex/bspidx/internal/config"
	"github.com/bspindex/bspidx/internal/output"
	"github.com/bspindex/bspidx/internal/ui"
	"github.com/bspindex/bspidx/pkg/engine"
	"github.com/bspindex/bspidx/pkg/indexing"
)

// runIndex executes the 'index' CLI command: runs one incremental (or, with
// --full, from-scratch) indexing pass over the current project.
//
// Flags:
//   - --full: clear the index and caches before indexing
//   - --debug: enable debug logging
//   - --metrics-addr: HTTP listen address for Prometheus metrics (disabled if empty)
//   - --json: print the completed run's summary as JSON instead of text
func runIndex(args []string, configPath string, globals GlobalFlags) {
	fs := flag.NewFlagSet("index", flag.ExitOnError)
	full := fs.Bool("full", false, "Clear the index and caches before indexing")
	debug := fs.Bool("debug", false, "Enable debug logging")
	metricsAddr := fs.String("metrics-addr", "", "HTTP listen address for Prometheus metrics (empty to disable)")
	jsonOutput := fs.Bool("json", globals.JSON, "Print the completed run's summary as JSON")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: bspidx index [options]

Indexes the current project using .bsp-index/project.yaml.

Options:
`)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	logLevel := slog.LevelInfo
	if *debug {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)

	var registerer prometheus.Registerer
	if *metricsAddr != "" {
		reg := prometheus.NewRegistry()
		registerer = reg
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
			srv := &http.Server{Addr: *metricsAddr, Handler: mux}
			logger.Info("metrics.http.start", "addr", *metricsAddr, "path", "/metrics")
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Warn("metrics.http.error", "err", err)
			}
		}()
	}

	root, err := resolveProjectRoot(configPath)
	if err != nil {
		ui.Errorf("%v", err)
		os.Exit(1)
	}
	cfg, err := config.Load(config.Path(root))
	if err != nil {
		ui.Errorf("project not found at %s (run 'bspidx init' first): %v", root, err)
		os.Exit(1)
	}

	e, err := engine.New(engine.Options{
		ProjectRoot:       root,
		ProjectID:         cfg.ProjectID,
		DataDir:           cfg.DataDir,
		InMemory:          globals.InMemory,
		ExcludeGlobs:      cfg.Indexing.Exclude,
		MaxInFlight:       cfg.Indexing.Concurrency,
		MetricsRegisterer: registerer,
		Logger:            logger,
	})
	if err != nil {
		ui.Errorf("%v", err)
		os.Exit(1)
	}
	defer func() { _ = e.Close() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		logger.Info("shutdown.signal", "signal", sig.String())
		cancel()
	}()

	globals.JSON = *jsonOutput
	progCfg := NewProgressConfig(globals)
	var bar *progressDriver

	started, err := e.StartIndexing(ctx, *full, func(ev indexing.Event) {
		if bar == nil {
			bar = newProgressDriver(progCfg, ev)
		}
		bar.update(ev)
	})
	if err != nil {
		ui.Errorf("start indexing: %v", err)
		os.Exit(1)
	}
	if !started {
		ui.Warning("indexing is already running")
		os.Exit(0)
	}

	for {
		time.Sleep(100 * time.Millisecond)
		status := e.GetStatus()
		if !status.Indexing {
			if bar != nil {
				bar.finish()
			}
			if *jsonOutput {
				_ = output.JSON(status.LastResult)
			} else {
				printResult(status)
			}
			if status.LastError != "" {
				os.Exit(1)
			}
			return
		}
	}
}

// printResult prints the completed run's summary to stdout.
func printResult(status engine.Status) {
	r := status.LastResult
	fmt.Println()
	fmt.Println("=== Indexing Complete ===")
	fmt.Printf("Files processed: %d (added %d, modified %d, deleted %d)\n", r.FilesProcessed, r.Added, r.Modified, r.Deleted)
	if r.ParseErrors > 0 {
		fmt.Printf("Parse errors:    %d\n", r.ParseErrors)
	}
	if r.Cancelled {
		fmt.Println("Run was cancelled before completion.")
	}
	fmt.Printf("Duration:        %s\n", r.Duration)
	if status.LastError != "" {
		fmt.Printf("Error:           %s\n", status.LastError)
	}
	fmt.Println()
}
