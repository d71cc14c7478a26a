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
	stderrors "errors"
	"fmt"
	"io"
	"os"

	flag "github.com/spf13/pflag"

	"github.com/kraklabs/lmi/internal/errors"
)

const bashCompletionTemplate = `#!/bin/bash

# Bash completion script for lmi
# Installation:
#   source <(lmi completion bash)
#   Or add to ~/.bashrc:
#   echo 'source <(lmi completion bash)' >> ~/.bashrc

_lmi_completion() {
    local cur prev commands globals
    commands="ingest init inspect completion help"
    globals="--config --no-color --quiet -q --json --version"

    cur="${COMP_WORDS[COMP_CWORD]}"
    prev="${COMP_WORDS[COMP_CWORD-1]}"

    case "${prev}" in
        --config|--output|-o|--metrics-file)
            COMPREPLY=( $(compgen -f -- ${cur}) )
            return 0
            ;;
        --input|-i|--dir)
            COMPREPLY=( $(compgen -d -- ${cur}) )
            return 0
            ;;
    esac

    if [ $COMP_CWORD -eq 1 ]; then
        if [[ ${cur} == -* ]] ; then
            COMPREPLY=( $(compgen -W "${globals}" -- ${cur}) )
        else
            COMPREPLY=( $(compgen -W "${commands}" -- ${cur}) )
        fi
        return 0
    fi

    local cmd="${COMP_WORDS[1]}"
    case "${cmd}" in
        ingest)
            if [[ ${cur} == -* ]] ; then
                COMPREPLY=( $(compgen -W "--input --output --include --exclude --max-file-size --debug --metrics-file ${globals}" -- ${cur}) )
            fi
            ;;
        init)
            if [[ ${cur} == -* ]] ; then
                COMPREPLY=( $(compgen -W "--force --dir --input --output ${globals}" -- ${cur}) )
            fi
            ;;
        inspect)
            if [[ ${cur} == -* ]] ; then
                COMPREPLY=( $(compgen -W "--head ${globals}" -- ${cur}) )
            else
                COMPREPLY=( $(compgen -f -X '!*.parquet' -- ${cur}) )
            fi
            ;;
        completion)
            if [ $COMP_CWORD -eq 2 ]; then
                COMPREPLY=( $(compgen -W "bash zsh fish" -- ${cur}) )
            fi
            ;;
    esac
}

complete -F _lmi_completion lmi
`

const zshCompletionTemplate = `#compdef lmi

# Zsh completion script for lmi
# Installation:
#   1. Ensure compinit is loaded (add to ~/.zshrc if not present):
#      autoload -U compinit; compinit
#   2. Save this script to a directory in your fpath:
#      lmi completion zsh > "${fpath[1]}/_lmi"
#   3. Reload completions:
#      rm -f ~/.zcompdump; compinit

_lmi() {
    local -a commands globals
    commands=(
        'ingest:Consolidate raw CSV files into one dataset'
        'init:Create .lmi/project.yaml and the data directories'
        'inspect:Describe a written dataset'
        'completion:Generate shell completion script'
    )
    globals=(
        '--config[Path to project.yaml]:config file:_files -g "*.yaml"'
        '--no-color[Disable colored output]'
        '(-q --quiet)'{-q,--quiet}'[Suppress progress and informational output]'
        '--json[Output as JSON]'
    )

    _arguments -C \
        '(- *)--version[Show version and exit]' \
        $globals \
        '1: :->command' \
        '*:: :->args'

    case $state in
        command)
            _describe 'command' commands
            ;;
        args)
            case $words[1] in
                ingest)
                    _arguments \
                        $globals \
                        '(-i --input)'{-i,--input}'[Input directory]:directory:_directories' \
                        '(-o --output)'{-o,--output}'[Parquet file to write]:file:_files' \
                        '--include[Base-name glob selecting source files]:glob:' \
                        '*--exclude[Glob of relative paths to skip]:glob:' \
                        '--max-file-size[Skip larger files (bytes)]:bytes:' \
                        '--debug[Enable debug logging]' \
                        '--metrics-file[Write Prometheus metrics to file]:file:_files'
                    ;;
                init)
                    _arguments \
                        $globals \
                        '--force[Overwrite existing configuration]' \
                        '--dir[Workspace directory]:directory:_directories' \
                        '--input[Input directory]:directory:_directories' \
                        '--output[Output file]:file:_files'
                    ;;
                inspect)
                    _arguments \
                        $globals \
                        '(-n --head)'{-n,--head}'[Also show the first N rows]:rows:' \
                        '1:dataset:_files -g "*.parquet"'
                    ;;
                completion)
                    _arguments \
                        '1:shell:(bash zsh fish)'
                    ;;
            esac
            ;;
    esac
}

_lmi
`

const fishCompletionTemplate = `# Fish completion script for lmi
# Installation:
#   1. Load completions for current session:
#      lmi completion fish | source
#   2. Install permanently:
#      lmi completion fish > ~/.config/fish/completions/lmi.fish

# Commands
complete -c lmi -f -n "__fish_use_subcommand" -a "ingest" -d "Consolidate raw CSV files into one dataset"
complete -c lmi -f -n "__fish_use_subcommand" -a "init" -d "Create .lmi/project.yaml and the data directories"
complete -c lmi -f -n "__fish_use_subcommand" -a "inspect" -d "Describe a written dataset"
complete -c lmi -f -n "__fish_use_subcommand" -a "completion" -d "Generate shell completion script"

# Global flags
complete -c lmi -l version -d "Show version and exit"
complete -c lmi -l config -d "Path to project.yaml" -r
complete -c lmi -l no-color -d "Disable colored output"
complete -c lmi -s q -l quiet -d "Suppress progress and informational output"
complete -c lmi -l json -d "Output as JSON"

# ingest command flags
complete -c lmi -n "__fish_seen_subcommand_from ingest" -s i -l input -d "Input directory" -r -a "(__fish_complete_directories)"
complete -c lmi -n "__fish_seen_subcommand_from ingest" -s o -l output -d "Parquet file to write" -r
complete -c lmi -n "__fish_seen_subcommand_from ingest" -l include -d "Base-name glob selecting source files" -r
complete -c lmi -n "__fish_seen_subcommand_from ingest" -l exclude -d "Glob of relative paths to skip" -r
complete -c lmi -n "__fish_seen_subcommand_from ingest" -l max-file-size -d "Skip larger files (bytes)" -r
complete -c lmi -n "__fish_seen_subcommand_from ingest" -l debug -d "Enable debug logging"
complete -c lmi -n "__fish_seen_subcommand_from ingest" -l metrics-file -d "Write Prometheus metrics to file" -r

# init command flags
complete -c lmi -n "__fish_seen_subcommand_from init" -l force -d "Overwrite existing configuration"
complete -c lmi -n "__fish_seen_subcommand_from init" -l dir -d "Workspace directory" -r -a "(__fish_complete_directories)"
complete -c lmi -n "__fish_seen_subcommand_from init" -l input -d "Input directory" -r
complete -c lmi -n "__fish_seen_subcommand_from init" -l output -d "Output file" -r

# inspect command flags
complete -c lmi -n "__fish_seen_subcommand_from inspect" -s n -l head -d "Also show the first N rows" -r

# completion command arguments
complete -c lmi -n "__fish_seen_subcommand_from completion" -f -a "bash" -d "Generate bash completion script"
complete -c lmi -n "__fish_seen_subcommand_from completion" -f -a "zsh" -d "Generate zsh completion script"
complete -c lmi -n "__fish_seen_subcommand_from completion" -f -a "fish" -d "Generate fish completion script"
`

// completionScripts maps shell names to their completion scripts.
var completionScripts = map[string]string{
	"bash": bashCompletionTemplate,
	"zsh":  zshCompletionTemplate,
	"fish": fishCompletionTemplate,
}

// runCompletion executes the 'completion' command, writing a completion
// script for bash, zsh or fish to stdout.
//
// Usage:
//
//	lmi completion [bash|zsh|fish]
//
// Examples:
//
//	source <(lmi completion bash)           Load bash completions in current shell
//	lmi completion zsh > "${fpath[1]}/_lmi" Install zsh completions permanently
//	lmi completion fish | source            Load fish completions in current shell
func runCompletion(args []string) error {
	fs := flag.NewFlagSet("completion", flag.ContinueOnError)

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: lmi completion <shell>

Generate shell completion scripts for bash, zsh, or fish.

Arguments:
  shell    Shell type: bash, zsh, or fish (required)

Examples:
  source <(lmi completion bash)
  lmi completion bash > /etc/bash_completion.d/lmi
  lmi completion zsh > "${fpath[1]}/_lmi"
  lmi completion fish > ~/.config/fish/completions/lmi.fish

After installing completions, restart your shell or source your rc file.

`)
	}

	if err := fs.Parse(args); err != nil {
		if stderrors.Is(err, flag.ErrHelp) {
			return err
		}
		return usageError(err)
	}

	if fs.NArg() != 1 {
		return errors.NewInputError(
			"Invalid arguments",
			"The completion command requires exactly one argument: the shell name",
			"Run 'lmi completion bash', 'lmi completion zsh', or 'lmi completion fish'",
			nil,
		)
	}

	shell := fs.Arg(0)
	script, ok := completionScripts[shell]
	if !ok {
		return errors.NewInputError(
			"Unsupported shell",
			fmt.Sprintf("Shell '%s' is not supported. Valid options: bash, zsh, fish", shell),
			"Run 'lmi completion bash', 'lmi completion zsh', or 'lmi completion fish'",
			nil,
		)
	}
	_, err := io.WriteString(stdout, script)
	return err
}
