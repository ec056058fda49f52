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

// Package engine is the top-level facade wiring the content provider
// through the publication channel behind a single Query API, so that any
// host — a CLI, a desktop shell, a language server — can drive the
// indexing and query engine through one boundary without depending on its
// internal package layout.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/bspindex/bspidx/internal/config"
	"github.com/bspindex/bspidx/pkg/cache"
	"github.com/bspindex/bspidx/pkg/content"
	"github.com/bspindex/bspidx/pkg/indexing"
	"github.com/bspindex/bspidx/pkg/model"
	"github.com/bspindex/bspidx/pkg/publish"
	"github.com/bspindex/bspidx/pkg/query"
	"github.com/bspindex/bspidx/pkg/store"
	"github.com/bspindex/bspidx/pkg/store/memory"
	"github.com/bspindex/bspidx/pkg/store/sqlite"
)

// Version is stamped into published metadata; callers (e.g. cmd/bspidx's
// main.go) may override it via ldflags at build time.
var Version = "dev"

// Options configures a new Engine.
type Options struct {
	// ProjectRoot is the absolute path of the source tree being indexed.
	ProjectRoot string
	// ProjectID names the project for store-file hashing and publish
	// bookkeeping; defaults to filepath.Base(ProjectRoot) when empty.
	ProjectID string
	// DataDir overrides the default <user-config-dir>/bspidx/indexes location.
	DataDir string
	// InMemory selects the degraded-mode fallback store instead of the
	// persistent sqlite-backed one. Chosen by the caller at construction
	// time, not as a runtime accident.
	InMemory bool
	// Provider is the C1 content provider; content.Local{} wrapped in
	// content.NewGated is used when nil.
	Provider content.Provider
	// ExcludeGlobs are extra doublestar patterns for change detection.
	ExcludeGlobs []string
	// MaxInFlight bounds the indexing dispatcher's parallelism.
	MaxInFlight int
	// MetricsRegisterer optionally exposes indexing counters; nil skips
	// metrics entirely.
	MetricsRegisterer prometheus.Registerer
	// Logger receives structured progress/error logs; slog.Default() is
	// used when nil.
	Logger *slog.Logger
}

// Engine wires every component and exposes the Query API table. It is
// safe for concurrent use by multiple goroutines: indexing is internally
// single-flight (pkg/indexing.Controller.TryRun), the store serializes its
// own writes, and the cache tier uses per-cache locking.
type Engine struct {
	opts     Options
	st       store.Store
	ct       *cache.Tier
	provider content.Provider
	ctrl     *indexing.Controller
	qe       *query.Engine

	mu         sync.Mutex
	lastResult indexing.Result
	lastRunAt  time.Time
	lastRunErr string
	running    bool
}

// New constructs and wires an Engine. The returned Engine's Close must be
// called to release the store handle and stop the cache pruner.
func New(opts Options) (*Engine, error) {
	if opts.ProjectRoot == "" {
		return nil, fmt.Errorf("engine: ProjectRoot is required")
	}
	if opts.ProjectID == "" {
		opts.ProjectID = filepath.Base(opts.ProjectRoot)
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	st, err := openStore(opts)
	if err != nil {
		return nil, err
	}

	ct, err := cache.New()
	if err != nil {
		_ = st.Close()
		return nil, fmt.Errorf("engine: cache tier: %w", err)
	}

	provider := opts.Provider
	if provider == nil {
		provider = content.NewGated(content.Local{})
	}

	var metrics *indexing.Metrics
	if opts.MetricsRegisterer != nil {
		metrics = indexing.NewMetrics(opts.MetricsRegisterer)
	}

	var checkpoints *indexing.CheckpointManager
	if !opts.InMemory {
		if dir, err := checkpointDir(opts); err == nil {
			checkpoints = indexing.NewCheckpointManager(dir)
		}
	}

	ctrl := indexing.New(indexing.Config{
		Provider:     provider,
		Store:        st,
		Cache:        ct,
		Metrics:      metrics,
		Logger:       opts.Logger,
		ExcludeGlobs: opts.ExcludeGlobs,
		MaxInFlight:  opts.MaxInFlight,
		ProjectID:    opts.ProjectID,
		Checkpoints:  checkpoints,
	})

	qe := query.New(st, ct, provider, opts.ProjectRoot)

	return &Engine{
		opts:     opts,
		st:       st,
		ct:       ct,
		provider: provider,
		ctrl:     ctrl,
		qe:       qe,
	}, nil
}

// checkpointDir resolves the directory a Controller should write its
// progress checkpoint into: the same data directory the persistent store
// lives in (so both live or both go away with --in-memory/reset).
func checkpointDir(opts Options) (string, error) {
	dataDir := opts.DataDir
	if dataDir == "" {
		udd, err := os.UserConfigDir()
		if err != nil {
			return "", err
		}
		dataDir = filepath.Join(udd, "bspidx", "indexes")
	}
	return dataDir, nil
}

func openStore(opts Options) (store.Store, error) {
	if opts.InMemory {
		return memory.New(), nil
	}

	dataDir := opts.DataDir
	if dataDir == "" {
		udd, err := os.UserConfigDir()
		if err != nil {
			return nil, fmt.Errorf("engine: resolve data dir: %w", err)
		}
		dataDir = filepath.Join(udd, "bspidx", "indexes")
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("engine: create data dir: %w", err)
	}

	dbPath := filepath.Join(dataDir, store.DBFileName(opts.ProjectRoot))
	st, err := sqlite.Open(dbPath)
	if err != nil {
		// Degraded-mode fallback: the persistent backend could not be
		// loaded at runtime. Semantics match; performance and ranking
		// precision may not.
		opts.Logger.Warn("engine.store.degraded", "err", err, "path", dbPath)
		return memory.New(), nil
	}
	return st, nil
}

// Close releases the store and stops the cache pruner.
func (e *Engine) Close() error {
	e.ct.Close()
	return e.st.Close()
}

// StartIndexing begins one indexing run in the background. It returns
// (true, nil) if a run was started, or (false, nil) immediately if a run
// is already active (BusyIndexing — not an error to the caller). onProgress
// may be nil.
func (e *Engine) StartIndexing(ctx context.Context, fullReindex bool, onProgress indexing.ProgressFunc) (bool, error) {
	e.mu.Lock()
	if e.running {
		e.mu.Unlock()
		return false, nil
	}
	e.running = true
	e.mu.Unlock()

	if fullReindex {
		if err := e.st.ClearAll(ctx); err != nil {
			e.mu.Lock()
			e.running = false
			e.mu.Unlock()
			return false, fmt.Errorf("clear index: %w", err)
		}
		e.ct.ClearAll()
	}

	go func() {
		defer func() {
			e.mu.Lock()
			e.running = false
			e.mu.Unlock()
		}()
		result, err := e.ctrl.TryRun(ctx, e.opts.ProjectRoot, onProgress)
		e.mu.Lock()
		e.lastResult = result
		e.lastRunAt = time.Now()
		if err != nil {
			e.lastRunErr = err.Error()
		} else {
			e.lastRunErr = ""
		}
		e.mu.Unlock()
	}()
	return true, nil
}

// CancelIndexing requests the active run stop; it is a no-op if none is
// active.
func (e *Engine) CancelIndexing() bool {
	e.ctrl.Cancel()
	return true
}

// Status is returned by GetStatus.
type Status struct {
	Indexing   bool
	LastRunAt  time.Time
	LastResult indexing.Result
	LastError  string
}

// GetStatus reports whether a run is active and summarizes the last
// completed one.
func (e *Engine) GetStatus() Status {
	e.mu.Lock()
	defer e.mu.Unlock()
	return Status{
		Indexing:   e.running,
		LastRunAt:  e.lastRunAt,
		LastResult: e.lastResult,
		LastError:  e.lastRunErr,
	}
}

// GetStats reports the authoritative record counts.
func (e *Engine) GetStats(ctx context.Context) (model.Stats, error) {
	return e.st.GetStats(ctx)
}

// ClearIndex empties the store and every cache without deleting the store
// file itself.
func (e *Engine) ClearIndex(ctx context.Context) (bool, error) {
	if err := e.st.ClearAll(ctx); err != nil {
		return false, err
	}
	e.ct.ClearAll()
	return true, nil
}

// Publish checkpoints and exports the store to the project tree.
func (e *Engine) Publish(ctx context.Context, savedBy string) (bool, error) {
	var elapsed time.Duration
	e.mu.Lock()
	elapsed = e.lastResult.Duration
	e.mu.Unlock()
	if err := publish.Publish(ctx, e.st, e.opts.ProjectRoot, savedBy, Version, elapsed); err != nil {
		return false, err
	}
	return true, nil
}

// Adopt replaces the local store wholesale with a teammate's published
// one, then closes and reopens the store handle against the new file.
func (e *Engine) Adopt(ctx context.Context) (bool, error) {
	path := e.st.Path()
	if path == "" {
		return false, fmt.Errorf("adopt: in-memory store has no backing file to replace")
	}
	if err := e.st.Close(); err != nil {
		return false, fmt.Errorf("adopt: close store: %w", err)
	}
	if _, err := publish.Adopt(e.opts.ProjectRoot, path); err != nil {
		return false, err
	}
	st, err := sqlite.Open(path)
	if err != nil {
		return false, fmt.Errorf("adopt: reopen store: %w", err)
	}
	e.st = st
	e.qe = query.New(st, e.ct, e.provider, e.opts.ProjectRoot)
	e.ct.ClearAll()
	return true, nil
}

// GetPublishedMeta reads the sibling meta.json without touching the store.
func (e *Engine) GetPublishedMeta() (*publish.Meta, error) {
	return publish.GetPublishedMeta(e.opts.ProjectRoot)
}

// GotoDefinition, FindReferences, Hover, Completions, SearchSymbols,
// SearchFiles, DirectoryExists, and FindDefinitionByName forward directly
// to the query.Engine; see pkg/query for their semantics.

func (e *Engine) GotoDefinition(ctx context.Context, path, text string, line, col int) (*model.Location, error) {
	return e.qe.GotoDefinition(ctx, path, text, line, col)
}

func (e *Engine) FindReferences(ctx context.Context, path, text string, line, col int) ([]query.Reference, error) {
	return e.qe.FindReferences(ctx, path, text, line, col)
}

func (e *Engine) Hover(ctx context.Context, path, text string, line, col int) (*query.Hover, error) {
	return e.qe.Hover(ctx, path, text, line, col)
}

func (e *Engine) Completions(ctx context.Context, path, text string, line, col int) ([]query.Completion, error) {
	return e.qe.Completions(ctx, path, text, line, col)
}

func (e *Engine) SearchSymbols(ctx context.Context, q string, limit int) ([]model.Symbol, error) {
	return e.qe.SearchSymbols(ctx, q, limit)
}

func (e *Engine) SearchFiles(ctx context.Context, q string, limit int) ([]model.File, error) {
	return e.qe.SearchFiles(ctx, e.opts.ProjectRoot, q, limit)
}

func (e *Engine) DirectoryExists(ctx context.Context, path string) (bool, error) {
	return e.st.DirectoryExists(ctx, path)
}

// FindDefinitionByName looks up a Symbol by exact name, independent of any
// buffer position — used by hosts that already know the name (e.g. an
// outline view) rather than resolving a word at a cursor.
func (e *Engine) FindDefinitionByName(ctx context.Context, name string) (*model.Symbol, error) {
	return e.st.FindSymbolExact(ctx, name)
}

// ClearCaches empties every cache without touching the store.
func (e *Engine) ClearCaches() bool {
	e.ct.ClearAll()
	return true
}

// CacheStats reports per-cache hit/miss/size counters.
func (e *Engine) CacheStats() cache.TierStats {
	return e.ct.Stats()
}

// ProjectID returns the configured project identifier.
func (e *Engine) ProjectID() string { return e.opts.ProjectID }

// LoadFromConfig is a convenience constructor that turns a parsed
// internal/config.Config plus a project root into engine Options and
// calls New.
func LoadFromConfig(cfg *config.Config, projectRoot string, logger *slog.Logger) (*Engine, error) {
	return New(Options{
		ProjectRoot:  projectRoot,
		ProjectID:    cfg.ProjectID,
		DataDir:      cfg.DataDir,
		ExcludeGlobs: cfg.Indexing.Exclude,
		MaxInFlight:  cfg.Indexing.Concurrency,
		Logger:       logger,
	})
}
