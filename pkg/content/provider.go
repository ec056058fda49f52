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

// Package content defines the file-content provider contract (C1) — the
// one external collaborator this engine depends on for enumerating,
// reading, and writing files on whatever host holds the source tree — plus
// a local-filesystem implementation sufficient to run and test the engine
// standalone. A production remote-shell transport is out of scope; it only
// needs to satisfy this interface.
package content

import "context"

// ExecResult is the captured outcome of Exec.
type ExecResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// FileStat is one file's path and modification time, as returned by List.
type FileStat struct {
	Path  string
	MTime float64
}

// Provider is the content provider contract. Implementations may be
// local (this package's Local) or remote; the index controller and query
// layer never care which.
type Provider interface {
	// List enumerates files under root whose extension is in the
	// exclude-aware allowlist the caller applies; candidates beyond that
	// are the provider's concern only insofar as excludeGlobs spares it
	// the work of walking scratch directories.
	List(ctx context.Context, root string, excludeGlobs []string) ([]FileStat, error)
	// Exec runs an opaque shell command with a timeout and returns its
	// captured output; used for the live host-side search fallback and
	// the server-side fast-path indexer.
	Exec(ctx context.Context, command string, timeout int) (ExecResult, error)
	// ReadFile reads a file as UTF-8 text.
	ReadFile(ctx context.Context, path string) (string, error)
	// ReadFileBytes reads a file as raw bytes, used when adopting a
	// published index.
	ReadFileBytes(ctx context.Context, path string) ([]byte, error)
	// WriteFile creates or overwrites a file.
	WriteFile(ctx context.Context, path string, data []byte) error
	// PathExists reports whether path is present on the host.
	PathExists(ctx context.Context, path string) (bool, error)
}

// Temporary is satisfied by errors that a retrying caller should retry,
// matching the stdlib net.Error convention. Errors that don't implement it
// (including a plain NotFound) are not retried — structural classification
// per the engine's retry policy, not substring matching on error text.
type Temporary interface {
	Temporary() bool
}

// IsTemporary reports whether err implements Temporary and returns true.
// Context deadline and cancellation errors are not recognized here; the
// retry loop checks context.DeadlineExceeded on its own.
func IsTemporary(err error) bool {
	if err == nil {
		return false
	}
	if t, ok := err.(Temporary); ok {
		return t.Temporary()
	}
	return false
}
