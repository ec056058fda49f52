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

package content

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/semaphore"
)

// Gated wraps a Provider with the C1 resource policy: a concurrency
// semaphore, a minimum inter-request spacing, and retry-with-backoff on
// channel-level errors (structurally classified via IsTemporary, never by
// matching substrings in an error message).
type Gated struct {
	inner   Provider
	sem     *semaphore.Weighted
	spacing time.Duration
	retries int

	lastMu   chan struct{} // 1-buffered, used as a mutex around lastAt
	lastAt   time.Time
}

// DefaultBudget and DefaultSpacing match the concurrency budget and
// inter-request spacing the concurrency model calls for: "on the order of
// 6-8" in-flight requests and "tens of milliseconds" between them.
const (
	DefaultBudget  = 8
	DefaultSpacing = 20 * time.Millisecond
	DefaultRetries = 3
)

// NewGated wraps inner with the default budget/spacing/retry policy.
func NewGated(inner Provider) *Gated {
	return &Gated{
		inner:   inner,
		sem:     semaphore.NewWeighted(DefaultBudget),
		spacing: DefaultSpacing,
		retries: DefaultRetries,
		lastMu:  make(chan struct{}, 1),
	}
}

// acquire gates entry and enforces the minimum spacing between the
// previous request's start and this one's.
func (g *Gated) acquire(ctx context.Context) (func(), error) {
	if err := g.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}

	g.lastMu <- struct{}{}
	wait := time.Duration(0)
	if !g.lastAt.IsZero() {
		elapsed := time.Since(g.lastAt)
		if elapsed < g.spacing {
			wait = g.spacing - elapsed
		}
	}
	g.lastAt = time.Now().Add(wait)
	<-g.lastMu

	if wait > 0 {
		timer := time.NewTimer(wait)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			g.sem.Release(1)
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	return func() { g.sem.Release(1) }, nil
}

// withRetry retries op up to g.retries times on a temporary error, with a
// linear back-off (matching the Transport error class's "retried up to 3
// times with linear-back-off" policy).
func withRetry(ctx context.Context, retries int, op func() error) error {
	var lastErr error
	for attempt := 0; attempt < retries; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !IsTemporary(lastErr) && !errors.Is(lastErr, context.DeadlineExceeded) {
			return lastErr
		}
		if attempt == retries-1 {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt+1) * 100 * time.Millisecond):
		}
	}
	return lastErr
}

func (g *Gated) List(ctx context.Context, root string, excludeGlobs []string) ([]FileStat, error) {
	release, err := g.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()
	var out []FileStat
	err = withRetry(ctx, g.retries, func() error {
		var innerErr error
		out, innerErr = g.inner.List(ctx, root, excludeGlobs)
		return innerErr
	})
	return out, err
}

func (g *Gated) Exec(ctx context.Context, command string, timeout int) (ExecResult, error) {
	release, err := g.acquire(ctx)
	if err != nil {
		return ExecResult{}, err
	}
	defer release()
	var out ExecResult
	err = withRetry(ctx, g.retries, func() error {
		var innerErr error
		out, innerErr = g.inner.Exec(ctx, command, timeout)
		return innerErr
	})
	return out, err
}

func (g *Gated) ReadFile(ctx context.Context, path string) (string, error) {
	release, err := g.acquire(ctx)
	if err != nil {
		return "", err
	}
	defer release()
	var out string
	err = withRetry(ctx, g.retries, func() error {
		var innerErr error
		out, innerErr = g.inner.ReadFile(ctx, path)
		return innerErr
	})
	return out, err
}

func (g *Gated) ReadFileBytes(ctx context.Context, path string) ([]byte, error) {
	release, err := g.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()
	var out []byte
	err = withRetry(ctx, g.retries, func() error {
		var innerErr error
		out, innerErr = g.inner.ReadFileBytes(ctx, path)
		return innerErr
	})
	return out, err
}

func (g *Gated) WriteFile(ctx context.Context, path string, data []byte) error {
	release, err := g.acquire(ctx)
	if err != nil {
		return err
	}
	defer release()
	return withRetry(ctx, g.retries, func() error {
		return g.inner.WriteFile(ctx, path, data)
	})
}

func (g *Gated) PathExists(ctx context.Context, path string) (bool, error) {
	release, err := g.acquire(ctx)
	if err != nil {
		return false, err
	}
	defer release()
	var out bool
	err = withRetry(ctx, g.retries, func() error {
		var innerErr error
		out, innerErr = g.inner.PathExists(ctx, path)
		return innerErr
	})
	return out, err
}

var _ Provider = (*Gated)(nil)
