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

	"github.com/bspindex/bspidx/internal/errors"
)

// bashCompletionTemplate is the bash completion script for bspidx.
const bashCompletionTemplate = `#!/bin/bash

# Bash completion script for bspidx (BSP Index)
# Installation:
#   source <(bspidx completion bash)
#   Or add to ~/.bashrc:
#   echo 'source <(bspidx completion bash)' >> ~/.bashrc

_bspidx_completion() {
    local cur prev commands
    commands="init index status query publish adopt reset install-hook completion serve"

    cur="${COMP_WORDS[COMP_CWORD]}"
    prev="${COMP_WORDS[COMP_CWORD-1]}"

    if [[ ${cur} == -* ]] ; then
        COMPREPLY=( $(compgen -W "--version --config --json --no-color --quiet --in-memory" -- ${cur}) )
        return 0
    fi

    if [ $COMP_CWORD -eq 1 ]; then
        COMPREPLY=( $(compgen -W "${commands}" -- ${cur}) )
        return 0
    fi

    local cmd="${COMP_WORDS[1]}"
    case "${cmd}" in
        index)
            if [[ ${cur} == -* ]] ; then
                COMPREPLY=( $(compgen -W "--full --debug --metrics-addr" -- ${cur}) )
            fi
            ;;
        status)
            if [[ ${cur} == -* ]] ; then
                COMPREPLY=( $(compgen -W "--json" -- ${cur}) )
            fi
            ;;
        query)
            if [ $COMP_CWORD -eq 2 ]; then
                COMPREPLY=( $(compgen -W "goto-def refs hover complete search-symbols search-files" -- ${cur}) )
            fi
            ;;
        reset)
            if [[ ${cur} == -* ]] ; then
                COMPREPLY=( $(compgen -W "--yes" -- ${cur}) )
            fi
            ;;
        install-hook)
            if [[ ${cur} == -* ]] ; then
                COMPREPLY=( $(compgen -W "--force --remove" -- ${cur}) )
            fi
            ;;
        serve)
            if [[ ${cur} == -* ]] ; then
                COMPREPLY=( $(compgen -W "--addr --reindex-interval --stop --timeout" -- ${cur}) )
            fi
            ;;
        completion)
            if [ $COMP_CWORD -eq 2 ]; then
                COMPREPLY=( $(compgen -W "bash zsh fish" -- ${cur}) )
            fi
            ;;
    esac
}

complete -F _bspidx_completion bspidx
`

// zshCompletionTemplate is the zsh completion script for bspidx.
const zshCompletionTemplate = `#compdef bspidx

# Zsh completion script for bspidx (BSP Index)
# Installation:
#   1. Ensure compinit is loaded (add to ~/.zshrc if not present):
#      autoload -U compinit; compinit
#   2. Save this script to a directory in your fpath:
#      bspidx completion zsh > "${fpath[1]}/_bspidx"
#   3. Reload completions:
#      rm -f ~/.zcompdump; compinit

_bspidx() {
    local -a commands
    commands=(
        'init:Create .bsp-index/project.yaml configuration'
        'index:Index the current project'
        'status:Show project status'
        'query:Query the index (definitions, references, hover, search)'
        'publish:Publish the local index for sharing'
        'adopt:Adopt a published index'
        'reset:Reset local project data'
        'install-hook:Install git post-commit hook'
        'completion:Generate shell completion script'
        'serve:Run a persistent query daemon over HTTP'
    )

    _arguments -C \
        '(- *)--version[Show version and exit]' \
        '--config[Path to .bsp-index/project.yaml]:config file:_files -g "*.yaml"' \
        '--json[Output machine-readable JSON]' \
        '--no-color[Disable colored output]' \
        '--quiet[Suppress progress output]' \
        '--in-memory[Use the degraded in-memory store]' \
        '1: :->command' \
        '*:: :->args'

    case $state in
        command)
            _describe 'command' commands
            ;;
        args)
            case $words[1] in
                index)
                    _arguments \
                        '--full[Clear the index and caches before indexing]' \
                        '--debug[Enable debug logging]' \
                        '--metrics-addr[Prometheus metrics address]:address:'
                    ;;
                status)
                    _arguments '--json[Output as JSON]'
                    ;;
                query)
                    _arguments '1:subcommand:(goto-def refs hover complete search-symbols search-files)'
                    ;;
                reset)
                    _arguments '--yes[Confirm the reset]'
                    ;;
                install-hook)
                    _arguments \
                        '--force[Overwrite existing hook]' \
                        '--remove[Remove the hook]'
                    ;;
                completion)
                    _arguments '1:shell:(bash zsh fish)'
                    ;;
                serve)
                    _arguments \
                        '--addr[HTTP listen address]:address:' \
                        '--reindex-interval[Background reindex period]:duration:' \
                        '--stop[Stop a running daemon]' \
                        '--timeout[How long --stop waits]:duration:'
                    ;;
            esac
            ;;
    esac
}

_bspidx
`

// fishCompletionTemplate is the fish completion script for bspidx.
const fishCompletionTemplate = `# Fish completion script for bspidx (BSP Index)
# Installation:
#   1. Load completions for current session:
#      bspidx completion fish | source
#   2. Install permanently:
#      bspidx completion fish > ~/.config/fish/completions/bspidx.fish

complete -c bspidx -f -n "__fish_use_subcommand" -a "init" -d "Create .bsp-index/project.yaml configuration"
complete -c bspidx -f -n "__fish_use_subcommand" -a "index" -d "Index the current project"
complete -c bspidx -f -n "__fish_use_subcommand" -a "status" -d "Show project status"
complete -c bspidx -f -n "__fish_use_subcommand" -a "query" -d "Query the index"
complete -c bspidx -f -n "__fish_use_subcommand" -a "publish" -d "Publish the local index for sharing"
complete -c bspidx -f -n "__fish_use_subcommand" -a "adopt" -d "Adopt a published index"
complete -c bspidx -f -n "__fish_use_subcommand" -a "reset" -d "Reset local project data (destructive!)"
complete -c bspidx -f -n "__fish_use_subcommand" -a "install-hook" -d "Install git post-commit hook"
complete -c bspidx -f -n "__fish_use_subcommand" -a "completion" -d "Generate shell completion script"
complete -c bspidx -f -n "__fish_use_subcommand" -a "serve" -d "Run a persistent query daemon over HTTP"

complete -c bspidx -l version -d "Show version and exit"
complete -c bspidx -l config -d "Path to .bsp-index/project.yaml" -r
complete -c bspidx -l json -d "Output machine-readable JSON"
complete -c bspidx -l no-color -d "Disable colored output"
complete -c bspidx -l quiet -d "Suppress progress output"
complete -c bspidx -l in-memory -d "Use the degraded in-memory store"

complete -c bspidx -n "__fish_seen_subcommand_from index" -l full -d "Clear the index and caches before indexing"
complete -c bspidx -n "__fish_seen_subcommand_from index" -l debug -d "Enable debug logging"
complete -c bspidx -n "__fish_seen_subcommand_from index" -l metrics-addr -d "Prometheus metrics address" -r

complete -c bspidx -n "__fish_seen_subcommand_from status" -l json -d "Output as JSON"

complete -c bspidx -n "__fish_seen_subcommand_from query" -f -a "goto-def refs hover complete search-symbols search-files"

complete -c bspidx -n "__fish_seen_subcommand_from reset" -l yes -d "Confirm the reset"

complete -c bspidx -n "__fish_seen_subcommand_from install-hook" -l force -d "Overwrite existing hook"
complete -c bspidx -n "__fish_seen_subcommand_from install-hook" -l remove -d "Remove the hook"

complete -c bspidx -n "__fish_seen_subcommand_from completion" -f -a "bash" -d "Generate bash completion script"
complete -c bspidx -n "__fish_seen_subcommand_from completion" -f -a "zsh" -d "Generate zsh completion script"
complete -c bspidx -n "__fish_seen_subcommand_from completion" -f -a "fish" -d "Generate fish completion script"

complete -c bspidx -n "__fish_seen_subcommand_from serve" -l addr -d "HTTP listen address" -r
complete -c bspidx -n "__fish_seen_subcommand_from serve" -l reindex-interval -d "Background reindex period" -r
complete -c bspidx -n "__fish_seen_subcommand_from serve" -l stop -d "Stop a running daemon"
complete -c bspidx -n "__fish_seen_subcommand_from serve" -l timeout -d "How long --stop waits" -r
`

// runCompletion executes the 'completion' CLI command, generating a
// shell-specific completion script for bash, zsh, or fish to stdout.
func runCompletion(args []string) {
	fs := flag.NewFlagSet("completion", flag.ExitOnError)

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: bspidx completion <shell>

Generates a shell completion script for bash, zsh, or fish.

Examples:
  source <(bspidx completion bash)
  bspidx completion zsh > "${fpath[1]}/_bspidx"
  bspidx completion fish | source
`)
	}
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	if fs.NArg() != 1 {
		errors.FatalError(errors.NewInputError(
			"Invalid arguments",
			"The completion command requires exactly one argument: the shell name",
			"Run 'bspidx completion bash', 'bspidx completion zsh', or 'bspidx completion fish'",
		), false)
	}

	switch fs.Arg(0) {
	case "bash":
		fmt.Print(bashCompletionTemplate)
	case "zsh":
		fmt.Print(zshCompletionTemplate)
	case "fish":
		fmt.Print(fishCompletionTemplate)
	default:
		errors.FatalError(errors.NewInputError(
			"Unsupported shell",
			fmt.Sprintf("Shell '%s' is not supported. Valid options: bash, zsh, fish", fs.Arg(0)),
			"Run 'bspidx completion bash', 'bspidx completion zsh', or 'bspidx completion fish'",
		), false)
	}
}
