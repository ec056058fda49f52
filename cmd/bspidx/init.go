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
	"bufio"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bspindex/bspidx/internal/bootstrap"
	"github.com/bspindex/bspidx/internal/ui"
)

// initFlags holds parsed flags for the init command.
type initFlags struct {
	force, nonInteractive, noHook, withHook bool
	projectID                               string
}

// runInit executes the 'init' CLI command, creating .bsp-index/project.yaml
// and registering the project with this host.
//
// Flags:
//   - --force: Overwrite existing configuration
//   - -y: Non-interactive mode, use all defaults
//   - --project-id: Project identifier (default: directory name)
//   - --no-hook / --hook: Skip or force git post-commit hook installation
func runInit(args []string, globals GlobalFlags) {
	flags := parseInitFlags(args)

	cwd, err := os.Getwd()
	if err != nil {
		ui.Errorf("cannot get current directory: %v", err)
		os.Exit(1)
	}

	if flags.projectID == "" {
		flags.projectID = filepath.Base(cwd)
	}

	reader := bufio.NewReader(os.Stdin)
	if !flags.nonInteractive {
		fmt.Println("BSP Index Project Configuration")
		fmt.Println("===============================")
		fmt.Println()
		flags.projectID = prompt(reader, "Project ID", flags.projectID)
		fmt.Println()
	}

	info, err := bootstrap.InitProject(bootstrap.ProjectConfig{
		ProjectID:   flags.projectID,
		ProjectRoot: cwd,
	}, flags.force, nil)
	if err != nil {
		ui.Errorf("%v", err)
		os.Exit(1)
	}
	ui.Successf("Created %s", filepath.Join(info.ProjectRoot, ".bsp-index", "project.yaml"))
	addToGitignore(cwd)

	handleHookInstallation(reader, flags)
	printNextSteps(flags.noHook)
}

func parseInitFlags(args []string) initFlags {
	fs := flag.NewFlagSet("init", flag.ExitOnError)
	var f initFlags
	fs.BoolVar(&f.force, "force", false, "Overwrite existing configuration")
	fs.BoolVar(&f.nonInteractive, "y", false, "Non-interactive mode (use defaults)")
	fs.StringVar(&f.projectID, "project-id", "", "Project identifier")
	fs.BoolVar(&f.noHook, "no-hook", false, "Skip git hook installation")
	fs.BoolVar(&f.withHook, "hook", false, "Install git hook without prompting (for scripts)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: bspidx init [options]

Creates .bsp-index/project.yaml configuration.

Examples:
  bspidx init                 Interactive setup
  bspidx init -y              Use all defaults
  bspidx init --hook          Also install git hook

Options:
`)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	return f
}

func handleHookInstallation(reader *bufio.Reader, f initFlags) {
	if f.noHook {
		return
	}
	shouldInstall := f.withHook
	if !f.withHook && !f.nonInteractive {
		fmt.Println()
		answer := strings.ToLower(strings.TrimSpace(prompt(reader, "Install git hook for auto-indexing? (Y/n)", "y")))
		shouldInstall = answer != "n" && answer != "no"
	} else if f.nonInteractive {
		shouldInstall = true
	}
	if !shouldInstall {
		return
	}

	gitDir, err := findGitDir()
	if err != nil {
		ui.Warningf("cannot find .git directory: %v", err)
		return
	}
	hookPath := filepath.Join(gitDir, "hooks", "post-commit")
	if err := installHook(hookPath, false); err != nil {
		ui.Warningf("cannot install git hook: %v", err)
		return
	}
	ui.Successf("Git hook installed: %s", hookPath)
}

func printNextSteps(noHook bool) {
	fmt.Println()
	fmt.Println("Next steps:")
	fmt.Println("  1. Review .bsp-index/project.yaml if needed")
	fmt.Println("  2. Run 'bspidx index' to index the project")
	fmt.Println("  3. Run 'bspidx status' to verify indexing")
	if noHook {
		fmt.Println()
		fmt.Println("Tip: Run 'bspidx install-hook' to enable auto-indexing on each commit")
	}
}

// prompt displays an interactive prompt and reads a line from stdin,
// returning defaultValue if the user presses Enter without typing anything.
func prompt(reader *bufio.Reader, label, defaultValue string) string {
	if defaultValue != "" {
		fmt.Printf("%s [%s]: ", label, defaultValue)
	} else {
		fmt.Printf("%s: ", label)
	}
	input, _ := reader.ReadString('\n')
	input = strings.TrimSpace(input)
	if input == "" {
		return defaultValue
	}
	return input
}

// addToGitignore adds .bsp-index/ to the project's .gitignore if absent.
func addToGitignore(dir string) {
	gitignorePath := filepath.Join(dir, ".gitignore")

	content, err := os.ReadFile(gitignorePath) //nolint:gosec // G304: path built from repo dir
	if err != nil {
		return
	}

	lines := strings.Split(string(content), "\n")
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == ".bsp-index/" || line == ".bsp-index" || line == "/.bsp-index/" || line == "/.bsp-index" {
			return
		}
	}

	f, err := os.OpenFile(gitignorePath, os.O_APPEND|os.O_WRONLY, 0o600) //nolint:gosec // G304: path built from repo dir
	if err != nil {
		return
	}
	defer func() { _ = f.Close() }()

	if len(content) > 0 && content[len(content)-1] != '\n' {
		_, _ = f.WriteString("\n")
	}
	_, _ = f.WriteString("\n# bspidx index\n.bsp-index/\n")
	fmt.Println("Added .bsp-index/ to .gitignore")
}
