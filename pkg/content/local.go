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
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/bmatcuk/doublestar/v4"
)

// notFoundError carries the NotFound discriminant the contract calls for;
// it deliberately does not implement Temporary, so IsTemporary(err) is
// false and a retrying caller gives up immediately.
type notFoundError struct {
	path string
}

func (e *notFoundError) Error() string { return fmt.Sprintf("not found: %s", e.path) }

// IsNotFound reports whether err is the NotFound discriminant.
func IsNotFound(err error) bool {
	_, ok := err.(*notFoundError)
	return ok
}

// Local is a Provider backed directly by the filesystem this process runs
// on. It is the reference implementation used by the CLI and by tests; a
// remote-shell transport is a separate Provider implementation and only
// needs to satisfy the same interface.
type Local struct{}

func (Local) List(ctx context.Context, root string, excludeGlobs []string) ([]FileStat, error) {
	var out []FileStat
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil // a single unreadable entry is skipped, not fatal
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			rel = path
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if matchesAny(excludeGlobs, rel) {
				return filepath.SkipDir
			}
			return nil
		}
		if matchesAny(excludeGlobs, rel) {
			return nil
		}
		info, statErr := d.Info()
		if statErr != nil {
			return nil
		}
		out = append(out, FileStat{
			Path:  path,
			MTime: float64(info.ModTime().UnixNano()) / 1e9,
		})
		return nil
	})
	if err != nil && err != ctx.Err() {
		return out, err
	}
	return out, ctx.Err()
}

func matchesAny(globs []string, rel string) bool {
	for _, g := range globs {
		if ok, _ := doublestar.Match(g, rel); ok {
			return true
		}
	}
	return false
}

func (Local) Exec(ctx context.Context, command string, timeout int) (ExecResult, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Duration(timeout)*time.Second)
	defer cancel()

	cmd := exec.CommandContext(ctx, "sh", "-c", command)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	code := 0
	if exitErr, ok := err.(*exec.ExitError); ok {
		code = exitErr.ExitCode()
		err = nil
	}
	return ExecResult{Stdout: stdout.String(), Stderr: stderr.String(), ExitCode: code}, err
}

func (Local) ReadFile(ctx context.Context, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", &notFoundError{path: path}
		}
		return "", err
	}
	return string(data), nil
}

func (Local) ReadFileBytes(ctx context.Context, path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &notFoundError{path: path}
		}
		return nil, err
	}
	return data, nil
}

func (Local) WriteFile(ctx context.Context, path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0o644)
}

func (Local) PathExists(ctx context.Context, path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

var _ Provider = Local{}
