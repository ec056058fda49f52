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
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const postCommitHookContent = `#!/bin/sh
# bspidx auto-index hook - queues incremental indexing for this commit
# Installed by: bspidx install-hook
# Remove with: bspidx install-hook --remove

bspidx --quiet index 2>/dev/null &
`

const hookMarker = "# bspidx auto-index hook"

// runInstallHook executes the 'install-hook' CLI command, managing a git
// post-commit hook that triggers incremental indexing after each commit.
//
// Flags:
//   - --force: Overwrite existing hook
//   - --remove: Remove the hook instead of installing
func runInstallHook(args []string) {
	fs := flag.NewFlagSet("install-hook", flag.ExitOnError)
	force := fs.Bool("force", false, "Overwrite existing hook")
	remove := fs.Bool("remove", false, "Remove the hook instead of installing")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: bspidx install-hook [options]

Installs a git post-commit hook that automatically reindexes the project
in the background after each commit.

Options:
`)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	gitDir, err := findGitDir()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	hookPath := filepath.Join(gitDir, "hooks", "post-commit")

	if *remove {
		if err := removeHook(hookPath); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Git hook removed successfully.")
		return
	}

	if err := installHook(hookPath, *force); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Git hook installed: %s\n", hookPath)
}

// findGitDir walks up from the current working directory looking for .git,
// resolving the ".git" worktree-file indirection if present.
func findGitDir() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}

	dir := cwd
	for {
		gitPath := filepath.Join(dir, ".git")
		if info, err := os.Stat(gitPath); err == nil {
			if info.IsDir() {
				return gitPath, nil
			}
			content, err := os.ReadFile(gitPath)
			if err != nil {
				return "", fmt.Errorf("cannot read .git file: %w", err)
			}
			var gitdir string
			if _, err := fmt.Sscanf(string(content), "gitdir: %s", &gitdir); err == nil {
				if filepath.IsAbs(gitdir) {
					return gitdir, nil
				}
				return filepath.Join(dir, gitdir), nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", fmt.Errorf("not a git repository (or any of the parent directories)")
}

// installHook writes the bspidx post-commit hook to hookPath. If a hook
// already exists and force is false, it refuses to overwrite anything that
// isn't already a bspidx hook.
func installHook(hookPath string, force bool) error {
	hookDir := filepath.Dir(hookPath)
	if err := os.MkdirAll(hookDir, 0o755); err != nil {
		return fmt.Errorf("cannot create hooks directory: %w", err)
	}

	if _, err := os.Stat(hookPath); err == nil {
		if !force {
			content, err := os.ReadFile(hookPath)
			if err == nil && containsHookMarker(string(content)) {
				fmt.Println("bspidx hook already installed. Use --force to reinstall.")
				return nil
			}
			return fmt.Errorf("hook already exists at %s\nUse --force to overwrite", hookPath)
		}
	}

	if err := os.WriteFile(hookPath, []byte(postCommitHookContent), 0o755); err != nil { //nolint:gosec // G306: hook must be executable
		return fmt.Errorf("cannot write hook: %w", err)
	}
	return nil
}

// removeHook deletes hookPath only if it carries the bspidx marker, to
// avoid clobbering a hook the user wrote themselves.
func removeHook(hookPath string) error {
	content, err := os.ReadFile(hookPath)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("no hook found at %s", hookPath)
		}
		return fmt.Errorf("cannot read hook: %w", err)
	}

	if !containsHookMarker(string(content)) {
		return fmt.Errorf("hook at %s was not installed by bspidx\nManually remove it if needed", hookPath)
	}

	if err := os.Remove(hookPath); err != nil {
		return fmt.Errorf("cannot remove hook: %w", err)
	}
	return nil
}

func containsHookMarker(content string) bool {
	return strings.Contains(content, hookMarker)
}

// IsHookInstalled reports whether the bspidx git hook is currently installed
// for the repository containing the current working directory.
func IsHookInstalled() bool {
	gitDir, err := findGitDir()
	if err != nil {
		return false
	}
	content, err := os.ReadFile(filepath.Join(gitDir, "hooks", "post-commit"))
	if err != nil {
		return false
	}
	return containsHookMarker(string(content))
}
