// Copyright 2025 KrakLabs
// SPDX-License-Identifier: AGPL-3.0-or-later

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	flag "github.com/spf13/pflag"

	bspidxerrors "github.com/bspindex/bspidx/internal/errors"
	"github.com/bspindex/bspidx/internal/ui"
	"github.com/bspindex/bspidx/pkg/engine"
	"github.com/bspindex/bspidx/pkg/indexing"
)

// runServe executes the 'serve' CLI command: a persistent HTTP daemon that
// keeps a project's Engine open and answers query requests without paying
// the per-invocation cost of opening the store. Unlike the rest of the CLI
// (which parses one request and exits), serve runs until it receives a
// termination signal or is stopped with --stop.
//
// Flags:
//   - --addr: listen address (default 127.0.0.1:7711)
//   - --reindex-interval: background incremental reindex period (0 disables)
//   - --stop: stop a running daemon for this project instead of starting one
//   - --timeout: how long --stop waits for the daemon to exit
func runServe(args []string, configPath string, globals GlobalFlags) {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	addr := fs.String("addr", "127.0.0.1:7711", "HTTP listen address")
	reindexInterval := fs.Duration("reindex-interval", 0, "Background incremental reindex period (0 disables)")
	stop := fs.Bool("stop", false, "Stop a running daemon for this project")
	timeout := fs.Duration("timeout", 30*time.Second, "How long --stop waits for the daemon to exit")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: bspidx serve [options]

Runs a persistent query daemon over HTTP, keeping the project's index open
so repeated 'bspidx query' style lookups skip the per-process store-open cost.

Options:
`)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	root, err := resolveProjectRoot(configPath)
	if err != nil {
		bspidxerrors.FatalError(bspidxerrors.NewInputError("Cannot resolve project root", err.Error(), "Run from inside the project, or pass --config"), globals.JSON)
	}

	if *stop {
		if err := stopDaemon(root, *timeout); err != nil {
			bspidxerrors.FatalError(err, globals.JSON)
		}
		ui.Success("Daemon stopped")
		return
	}

	e, err := openEngine(configPath, globals)
	if err != nil {
		bspidxerrors.FatalError(bspidxerrors.NewStoreError("Cannot open project", err.Error(), "Run 'bspidx init' first", err), globals.JSON)
	}
	defer func() { _ = e.Close() }()

	pidPath, err := writePIDFile(root)
	if err != nil {
		bspidxerrors.FatalError(bspidxerrors.NewInternalError("Cannot write pidfile", err.Error(), "Check permissions on your user config directory", err), globals.JSON)
	}
	defer func() { _ = os.Remove(pidPath) }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		slog.Info("serve.shutdown.signal")
		cancel()
	}()

	if *reindexInterval > 0 {
		go runBackgroundReindex(ctx, e, *reindexInterval)
	}

	srv := newQueryServer(e, root)
	httpSrv := &http.Server{Addr: *addr, Handler: srv}

	go func() {
		<-ctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		_ = httpSrv.Shutdown(shutdownCtx)
	}()

	ui.Successf("Serving queries for %s on http://%s", e.ProjectID(), *addr)
	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		bspidxerrors.FatalError(bspidxerrors.NewTransportError("HTTP server failed", err.Error(), "Check that --addr is free", err), globals.JSON)
	}
}

// runBackgroundReindex runs an incremental index pass every interval until
// ctx is cancelled, logging but not exiting on error so a transient failure
// doesn't take the whole daemon down.
func runBackgroundReindex(ctx context.Context, e *engine.Engine, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			started, err := e.StartIndexing(ctx, false, func(indexing.Event) {})
			if err != nil {
				slog.Warn("serve.reindex.error", "err", err)
				continue
			}
			if !started {
				slog.Debug("serve.reindex.skipped", "reason", "already running")
			}
		}
	}
}

// queryServer is the HTTP handler for the serve daemon's query endpoints.
type queryServer struct {
	mux     *http.ServeMux
	engine  *engine.Engine
	root    string
	started time.Time
}

func newQueryServer(e *engine.Engine, root string) *queryServer {
	s := &queryServer{mux: http.NewServeMux(), engine: e, root: root, started: time.Now()}
	s.mux.HandleFunc("/healthz", s.handleHealth)
	s.mux.HandleFunc("/status", s.handleStatus)
	s.mux.HandleFunc("/goto-def", s.handlePosition(func(ctx context.Context, path, text string, line, col int) (any, error) {
		return e.GotoDefinition(ctx, path, text, line, col)
	}))
	s.mux.HandleFunc("/refs", s.handlePosition(func(ctx context.Context, path, text string, line, col int) (any, error) {
		return e.FindReferences(ctx, path, text, line, col)
	}))
	s.mux.HandleFunc("/hover", s.handlePosition(func(ctx context.Context, path, text string, line, col int) (any, error) {
		return e.Hover(ctx, path, text, line, col)
	}))
	s.mux.HandleFunc("/complete", s.handlePosition(func(ctx context.Context, path, text string, line, col int) (any, error) {
		return e.Completions(ctx, path, text, line, col)
	}))
	s.mux.HandleFunc("/search-symbols", s.handleSearch(func(ctx context.Context, q string, limit int) (any, error) {
		return e.SearchSymbols(ctx, q, limit)
	}))
	s.mux.HandleFunc("/search-files", s.handleSearch(func(ctx context.Context, q string, limit int) (any, error) {
		return e.SearchFiles(ctx, q, limit)
	}))
	return s
}

func (s *queryServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *queryServer) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "uptime": time.Since(s.started).String()})
}

func (s *queryServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	status := s.engine.GetStatus()
	stats, err := s.engine.GetStats(r.Context())
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, StatusResult{
		ProjectID: s.engine.ProjectID(),
		Indexing:  status.Indexing,
		LastRunAt: status.LastRunAt,
		LastError: status.LastError,
		Stats:     stats,
	})
}

// handlePosition builds a handler for endpoints that accept a file path and
// a 0-based line/column, reading the file's current text from disk.
func (s *queryServer) handlePosition(fn func(ctx context.Context, path, text string, line, col int) (any, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		path := q.Get("path")
		line, err1 := strconv.Atoi(q.Get("line"))
		col, err2 := strconv.Atoi(q.Get("col"))
		if path == "" || err1 != nil || err2 != nil {
			writeJSONError(w, http.StatusBadRequest, fmt.Errorf("expected ?path=&line=&col="))
			return
		}
		data, err := os.ReadFile(filepath.Join(s.root, path)) //nolint:gosec // G304: path is relative to the project root by design
		if err != nil {
			writeJSONError(w, http.StatusNotFound, err)
			return
		}
		result, err := fn(r.Context(), path, string(data), line, col)
		if err != nil {
			writeJSONError(w, http.StatusInternalServerError, err)
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}

func (s *queryServer) handleSearch(fn func(ctx context.Context, q string, limit int) (any, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query().Get("q")
		if q == "" {
			writeJSONError(w, http.StatusBadRequest, fmt.Errorf("expected ?q="))
			return
		}
		limit := 50
		if l := r.URL.Query().Get("limit"); l != "" {
			if n, err := strconv.Atoi(l); err == nil && n > 0 {
				limit = n
			}
		}
		result, err := fn(r.Context(), q, limit)
		if err != nil {
			writeJSONError(w, http.StatusInternalServerError, err)
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

// pidFilePath returns the path of the daemon's pidfile for the project root,
// mirroring the atomic-registry location used by internal/bootstrap.
func pidFilePath(root string) (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	base := filepath.Join(dir, "bspidx", "serve")
	if err := os.MkdirAll(base, 0o755); err != nil {
		return "", err
	}
	return filepath.Join(base, fmt.Sprintf("%x.pid", hashPath(root))), nil
}

func hashPath(root string) uint32 {
	var h uint32 = 2166136261
	for i := 0; i < len(root); i++ {
		h ^= uint32(root[i])
		h *= 16777619
	}
	return h
}

func writePIDFile(root string) (string, error) {
	path, err := pidFilePath(root)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, []byte(strconv.Itoa(os.Getpid())), 0o644); err != nil { //nolint:gosec // G306: pidfile, not sensitive
		return "", err
	}
	return path, nil
}

// stopDaemon reads the pidfile for root, sends SIGTERM, and waits up to
// timeout for the process (and its pidfile) to go away.
func stopDaemon(root string, timeout time.Duration) error {
	path, err := pidFilePath(root)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(path) //nolint:gosec // G304: path is derived from UserConfigDir, not user input
	if err != nil {
		if os.IsNotExist(err) {
			return bspidxerrors.NewNotFoundError("No daemon running", "No pidfile found for this project", "Start one with 'bspidx serve'")
		}
		return err
	}
	pid, err := strconv.Atoi(string(data))
	if err != nil {
		return fmt.Errorf("corrupt pidfile %s: %w", path, err)
	}

	proc, err := os.FindProcess(pid)
	if err != nil {
		return err
	}
	if err := proc.Signal(syscall.SIGTERM); err != nil {
		if errors.Is(err, os.ErrProcessDone) {
			_ = os.Remove(path)
			return nil
		}
		return fmt.Errorf("signal pid %d: %w", pid, err)
	}

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return nil
		}
		time.Sleep(100 * time.Millisecond)
	}
	return fmt.Errorf("daemon did not stop within %s", timeout)
}
