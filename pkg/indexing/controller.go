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

package indexing

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/bspindex/bspidx/internal/contract"
	"github.com/bspindex/bspidx/pkg/cache"
	"github.com/bspindex/bspidx/pkg/content"
	"github.com/bspindex/bspidx/pkg/model"
	"github.com/bspindex/bspidx/pkg/parser"
	"github.com/bspindex/bspidx/pkg/store"
)

// defaultExcludeGlobs are the scratch/VCS directories never indexed,
// regardless of caller configuration.
var defaultExcludeGlobs = []string{
	".git/**",
	"tmp/work/**",
	"sstate-cache/**",
	"downloads/**",
	"tmp/deploy/**",
	"tmp/stamps/**",
}

// indexedExtensions are the candidate extensions for change detection.
var indexedExtensions = map[string]bool{
	".bb": true, ".bbappend": true, ".inc": true, ".conf": true,
	".h": true, ".dts": true, ".dtsi": true,
}

// RemoteIndexer is the server-side fast path: when the content provider
// can execute code on the host owning the files, a standalone indexer
// binary may be deployed and run there, and its resulting database
// adopted instead of dispatching files locally. No concrete
// implementation ships in this engine; it depends on the remote-shell
// transport, which is out of scope.
type RemoteIndexer interface {
	// Run deploys and executes the remote indexer against root, then
	// returns the path (on the content provider's host) of the resulting
	// database file, ready to be adopted.
	Run(ctx context.Context, root string) (dbPath string, err error)
}

// Config configures one Controller.
type Config struct {
	Provider      content.Provider
	Store         store.Store
	Cache         *cache.Tier // optional; nil disables cache invalidation hooks
	Metrics       *Metrics    // optional
	Logger        *slog.Logger
	ExcludeGlobs  []string // appended to defaultExcludeGlobs
	MaxInFlight   int      // bounded-parallel dispatcher width; 0 uses a sane default
	RemoteIndexer RemoteIndexer

	// ProjectID and Checkpoints are both optional; when Checkpoints is nil,
	// no progress checkpoint is written for this project's runs.
	ProjectID   string
	Checkpoints *CheckpointManager
}

// Controller drives one project's incremental indexing. A Controller is
// not safe to Run concurrently with itself — use TryRun's BusyIndexing
// guard to enforce single-flight execution.
type Controller struct {
	provider     content.Provider
	store        store.Store
	cache        *cache.Tier
	metrics      *Metrics
	logger       *slog.Logger
	excludeGlobs []string
	maxInFlight  int64
	remote       RemoteIndexer
	projectID    string
	checkpoints  *CheckpointManager

	running int32 // atomic guard for the single-flight rule
	cancel  atomic.Bool
}

// Result summarizes one completed or cancelled run.
type Result struct {
	Added, Modified, Deleted int
	FilesProcessed           int
	ParseErrors              int
	Cancelled                bool
	Duration                 time.Duration
}

// ErrBusyIndexing is returned by TryRun when another run is already
// in-flight on this Controller.
var ErrBusyIndexing = fmt.Errorf("indexing: already running")

func New(cfg Config) *Controller {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	maxInFlight := int64(cfg.MaxInFlight)
	if maxInFlight <= 0 {
		maxInFlight = 6
	}
	return &Controller{
		provider:     cfg.Provider,
		store:        cfg.Store,
		cache:        cfg.Cache,
		metrics:      cfg.Metrics,
		logger:       cfg.Logger,
		excludeGlobs: append(append([]string{}, defaultExcludeGlobs...), cfg.ExcludeGlobs...),
		maxInFlight:  maxInFlight,
		remote:       cfg.RemoteIndexer,
		projectID:    cfg.ProjectID,
		checkpoints:  cfg.Checkpoints,
	}
}

// Cancel requests the in-flight run stop scheduling new work. It is a
// no-op if no run is active.
func (c *Controller) Cancel() {
	c.cancel.Store(true)
}

// TryRun runs one indexing pass over root, or returns ErrBusyIndexing
// immediately if another run is already active.
func (c *Controller) TryRun(ctx context.Context, root string, onProgress ProgressFunc) (Result, error) {
	if !atomic.CompareAndSwapInt32(&c.running, 0, 1) {
		return Result{}, ErrBusyIndexing
	}
	defer atomic.StoreInt32(&c.running, 0)
	c.cancel.Store(false)

	if onProgress == nil {
		onProgress = noopProgress
	}

	if c.remote != nil {
		return c.runRemote(ctx, root, onProgress)
	}
	return c.runLocal(ctx, root, onProgress)
}

func (c *Controller) runRemote(ctx context.Context, root string, onProgress ProgressFunc) (Result, error) {
	start := time.Now()
	onProgress(Event{Phase: PhaseInit, Message: "remote indexing"})
	// The remote path is a pure optimization: its output must be
	// indistinguishable from a local run up to the metadata schema
	// version, so adopting it is delegated to pkg/publish.Adopt by the
	// caller once Run returns a path; the controller only records timing
	// and completion here.
	if _, err := c.remote.Run(ctx, root); err != nil {
		onProgress(Event{Phase: PhaseError, Message: err.Error()})
		return Result{Duration: time.Since(start)}, err
	}
	onProgress(Event{Phase: PhaseDone, Message: "remote indexing complete"})
	return Result{Duration: time.Since(start)}, nil
}

func (c *Controller) runLocal(ctx context.Context, root string, onProgress ProgressFunc) (Result, error) {
	start := time.Now()
	onProgress(Event{Phase: PhaseInit, Message: "scanning " + root})

	added, modified, deleted, onDisk, err := c.detectChanges(ctx, root)
	if err != nil {
		onProgress(Event{Phase: PhaseError, Message: err.Error()})
		return Result{}, err
	}

	result := Result{Added: len(added), Modified: len(modified), Deleted: len(deleted)}

	for _, path := range deleted {
		if c.cancelRequested() {
			break
		}
		if err := c.store.DeleteFile(ctx, path); err != nil {
			c.logger.Warn("indexing.delete.error", "path", path, "err", err)
			continue
		}
		if c.cache != nil {
			c.cache.InvalidateFile(path)
		}
	}

	toProcess := append(append([]string{}, added...), modified...)
	total := len(toProcess)
	onProgress(Event{Phase: PhaseFiles, Current: 0, Total: total})

	var processed int32
	var parseErrors int32
	var mu sync.Mutex
	var lastReport time.Time
	var lastCheckpoint time.Time
	checkpointStart := nowRFC3339()

	sem := semaphore.NewWeighted(c.maxInFlight)
	var wg sync.WaitGroup

	for _, path := range toProcess {
		if c.cancelRequested() {
			break
		}
		if err := sem.Acquire(ctx, 1); err != nil {
			break
		}
		wg.Add(1)
		go func(path string) {
			defer wg.Done()
			defer sem.Release(1)

			if err := c.processFile(ctx, path, onDisk[path], modifiedSet(modified)[path]); err != nil {
				atomic.AddInt32(&parseErrors, 1)
				if c.metrics != nil {
					c.metrics.ParseErrors.Inc()
				}
				c.logger.Warn("indexing.file.error", "path", path, "err", err)
			} else if c.metrics != nil {
				c.metrics.FilesIndexed.Inc()
			}

			n := atomic.AddInt32(&processed, 1)
			mu.Lock()
			if time.Since(lastReport) > 200*time.Millisecond || int(n) == total {
				onProgress(Event{Phase: PhaseFiles, Current: int(n), Total: total})
				lastReport = time.Now()
			}
			if c.checkpoints != nil && (time.Since(lastCheckpoint) > 2*time.Second || int(n) == total) {
				c.saveCheckpoint(checkpointStart, path, total, int(n), int(atomic.LoadInt32(&parseErrors)))
				lastCheckpoint = time.Now()
			}
			mu.Unlock()
		}(path)
	}
	wg.Wait()

	result.FilesProcessed = int(processed)
	result.ParseErrors = int(parseErrors)

	if c.cancelRequested() {
		result.Cancelled = true
		result.Duration = time.Since(start)
		onProgress(Event{Phase: PhaseCancelled, Current: int(processed), Total: total})
		return result, nil
	}

	now := time.Now()
	_ = c.store.SetMetadata(ctx, "last_index_time", now.Format(time.RFC3339))
	_ = c.store.SetMetadata(ctx, "project_path", root)

	if c.checkpoints != nil {
		if err := c.checkpoints.Clear(c.projectID); err != nil {
			c.logger.Warn("indexing.checkpoint.clear_error", "err", err)
		}
	}

	result.Duration = time.Since(start)
	onProgress(Event{
		Phase:   PhaseDone,
		Current: result.FilesProcessed,
		Total:   total,
		Message: fmt.Sprintf("%d files, %d errors", result.FilesProcessed, result.ParseErrors),
	})
	return result, nil
}

// saveCheckpoint persists run progress so an operator inspecting
// checkpoint-<project>.json after a killed process can see how far the
// run got; it does not gate what the next run reprocesses, since
// detectChanges already recomputes that from the store's own file records.
func (c *Controller) saveCheckpoint(startTime, lastFile string, total, processed, parseErrors int) {
	cp := &Checkpoint{
		ProjectID:      c.projectID,
		FilesTotal:     total,
		FilesProcessed: processed,
		ParseErrors:    parseErrors,
		LastFile:       lastFile,
		StartTime:      startTime,
		LastUpdateTime: nowRFC3339(),
	}
	if err := c.checkpoints.Save(cp); err != nil {
		c.logger.Warn("indexing.checkpoint.save_error", "err", err)
	}
}

func (c *Controller) cancelRequested() bool { return c.cancel.Load() }

func modifiedSet(modified []string) map[string]bool {
	m := make(map[string]bool, len(modified))
	for _, p := range modified {
		m[p] = true
	}
	return m
}

// processFile reads, upserts, parses, and commits one file. mtime is the
// on-disk modification time detectChanges observed for path, stored
// verbatim on the File row (per I6, it must be >= the mtime observed at
// the start of the commit that writes it — using the provider's own
// reading, rather than wall-clock time, is what keeps the next run's diff
// against this value meaningful). It is safe to run concurrently with
// other calls to processFile (the store serializes writes internally); it
// is not safe to run concurrently with detectChanges or with the delete
// loop over the same project.
func (c *Controller) processFile(ctx context.Context, path string, mtime float64, wasModified bool) error {
	text, err := c.provider.ReadFile(ctx, path)
	if err != nil {
		return fmt.Errorf("read file: %w", err)
	}
	raw := []byte(text)

	if err := contract.CheckFileSize(path, int64(len(raw))); err != nil {
		return fmt.Errorf("skip oversized file: %w", err)
	}

	if c.cache != nil {
		c.cache.FileContent.Put(path, text)
	}

	kind := model.ClassifyFile(path)
	f := model.File{
		Path:  path,
		Name:  baseName(path),
		Kind:  kind,
		Size:  int64(len(raw)),
		MTime: mtime,
	}

	fileID, err := c.store.InsertFile(ctx, f)
	if err != nil {
		return fmt.Errorf("upsert file: %w", err)
	}
	if wasModified {
		// Clear every record kind the previous parse of this file owned,
		// in the same order DeleteFile uses (properties before the nodes
		// that own them), so the re-parse below starts from a clean slate
		// and no stale Include/DTNode/DTProperty/GPIOPin rows survive
		// alongside the new ones.
		if err := c.store.DeleteDTPropertiesByFile(ctx, fileID); err != nil {
			return fmt.Errorf("delete stale dt properties: %w", err)
		}
		if err := c.store.DeleteSymbolsByFile(ctx, fileID); err != nil {
			return fmt.Errorf("delete stale symbols: %w", err)
		}
		if err := c.store.DeleteIncludesByFile(ctx, fileID); err != nil {
			return fmt.Errorf("delete stale includes: %w", err)
		}
		if err := c.store.DeleteDTNodesByFile(ctx, fileID); err != nil {
			return fmt.Errorf("delete stale dt nodes: %w", err)
		}
		if err := c.store.DeleteGPIOPinsByFile(ctx, fileID); err != nil {
			return fmt.Errorf("delete stale gpio pins: %w", err)
		}
	}
	if c.cache != nil {
		c.cache.InvalidateFile(path)
	}

	p, ok := parser.ForKind(kind)
	if !ok {
		return nil // source/other: a File row with no child records is still valid
	}
	res, err := p.Parse(fileID, path, raw)
	if err != nil {
		return fmt.Errorf("parse: %w", err)
	}
	if c.cache != nil {
		c.cache.AST.Put(path, res)
	}

	start := time.Now()
	err = c.commit(ctx, fileID, res)
	if c.metrics != nil {
		c.metrics.CommitDuration.Observe(time.Since(start).Seconds())
	}
	return err
}

// commit submits one file's record batches inside a single transaction.
// DTNodes are inserted one ordinal at a time, in parser order, because the
// parser guarantees a node's parent is emitted before it (a node is only
// pushed onto the device-tree parser's stack after its opening brace is
// seen) — so each node's ParentOrdinal already has a resolved store id by
// the time that node is inserted. DTProperty batches are submitted last,
// once every NodeOrdinal they reference has a real node_id.
func (c *Controller) commit(ctx context.Context, fileID int64, res *parser.Result) error {
	return c.store.Transaction(ctx, func(ctx context.Context) error {
		if err := c.store.InsertSymbols(ctx, res.Symbols); err != nil {
			return err
		}
		if err := c.store.InsertIncludes(ctx, res.Includes); err != nil {
			return err
		}
		if len(res.DTNodes) > 0 {
			ids := make([]int64, len(res.DTNodes))
			for _, n := range res.DTNodes {
				node := n.DTNode
				node.FileID = fileID
				if n.ParentOrdinal >= 0 && n.ParentOrdinal < len(ids) {
					node.ParentID = ids[n.ParentOrdinal]
				}
				got, err := c.store.InsertDTNodes(ctx, []model.DTNode{node})
				if err != nil {
					return err
				}
				ids[n.Ordinal] = got[0]
			}

			props := make([]model.DTProperty, len(res.DTProps))
			for i, p := range res.DTProps {
				props[i] = p.DTProperty
				if p.NodeOrdinal >= 0 && p.NodeOrdinal < len(ids) {
					props[i].NodeID = ids[p.NodeOrdinal]
				}
			}
			if err := c.store.InsertDTProperties(ctx, props); err != nil {
				return err
			}
		}
		if err := c.store.InsertGPIOPins(ctx, res.GPIOPins); err != nil {
			return err
		}
		return nil
	})
}

func baseName(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' {
			return path[i+1:]
		}
	}
	return path
}
