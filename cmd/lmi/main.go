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

// Package main implements the lmi CLI, which consolidates monthly job
// posting CSV exports into a single Parquet dataset.
//
// Usage:
//
//	lmi                            Ingest with the configured defaults
//	lmi ingest [options]           Ingest data/raw into data/processed
//	lmi init                       Create .lmi/project.yaml and data dirs
//	lmi inspect [file] [--json]    Describe a written dataset
//	lmi completion bash|zsh|fish   Print a shell completion script
package main

import (
	stderrors "errors"
	"fmt"
	"io"
	"os"

	flag "github.com/spf13/pflag"

	"github.com/kraklabs/lmi/internal/errors"
	"github.com/kraklabs/lmi/internal/ui"
)

// Version information (set via ldflags during build)
var (
	version = "dev"     // Version string
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// GlobalFlags holds options accepted before or after any command.
type GlobalFlags struct {
	// Config is the path to a project.yaml file.
	Config string

	// NoColor disables ANSI colors.
	NoColor bool

	// Quiet suppresses progress bars and informational output.
	Quiet bool

	// JSON switches command output to JSON on stdout. Implies Quiet for
	// everything except the JSON document itself.
	JSON bool

	// Version prints build information and exits.
	Version bool
}

// bindGlobalFlags registers the global options on fs, keeping any value
// already parsed as the default.
func bindGlobalFlags(fs *flag.FlagSet, g *GlobalFlags) {
	fs.StringVar(&g.Config, "config", g.Config, "Path to project.yaml (default: ./.lmi/project.yaml)")
	fs.BoolVar(&g.NoColor, "no-color", g.NoColor, "Disable colored output")
	fs.BoolVarP(&g.Quiet, "quiet", "q", g.Quiet, "Suppress progress and informational output")
	fs.BoolVar(&g.JSON, "json", g.JSON, "Output as JSON")
}

const usageText = `LMI - Labour Market Information ingestion

lmi scans a directory of monthly job posting exports, decodes each file
with the first encoding that works, aligns every table to a common
schema, and writes one combined Parquet dataset.

Usage:
  lmi [global options] [command] [options]

Commands:
  ingest        Consolidate raw CSV files (default when no command is given)
  init          Create .lmi/project.yaml and the data directories
  inspect       Describe a written dataset
  completion    Generate shell completion script (bash|zsh|fish)

Global Options:
  --config      Path to project.yaml
  --no-color    Disable colored output
  -q, --quiet   Suppress progress and informational output
  --json        Output as JSON
  --version     Show version and exit

Examples:
  lmi                                Ingest data/raw into data/processed/job_postings.parquet
  lmi ingest --input exports/2023    Ingest another directory
  lmi ingest --exclude 'archive/**'  Skip a subtree
  lmi inspect --json                 Describe the dataset as JSON
  lmi completion bash                Generate bash completion script

Environment Variables:
  LMI_INPUT_DIR      Input directory (default: data/raw)
  LMI_OUTPUT_FILE    Output file (default: data/processed/job_postings.parquet)
  LMI_LOG_LEVEL      debug, info, warn or error (default: info)
  LMI_CONFIG         Path to project.yaml
  LMI_MAX_FILE_SIZE_BYTES  Skip larger source files (default: 0, no limit)

Variables may also be set in a .env file in the working directory.

For detailed command help: lmi <command> --help

`

func main() {
	os.Exit(run(os.Args[1:], os.Stderr))
}

// run parses global flags, dispatches to a command and returns the process
// exit code. Errors are reported on stderr.
func run(args []string, stderr io.Writer) int {
	var globals GlobalFlags

	fs := flag.NewFlagSet("lmi", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.SetInterspersed(false)
	bindGlobalFlags(fs, &globals)
	fs.BoolVar(&globals.Version, "version", false, "Show version and exit")
	fs.Usage = func() { fmt.Fprint(stderr, usageText) }

	if err := fs.Parse(args); err != nil {
		if stderrors.Is(err, flag.ErrHelp) {
			return errors.ExitSuccess
		}
		return errors.Report(stderr, usageError(err), false, globals.NoColor)
	}

	if globals.Version {
		fmt.Fprintf(ui.Writer(), "lmi version %s\n", version)
		fmt.Fprintf(ui.Writer(), "commit: %s\n", commit)
		fmt.Fprintf(ui.Writer(), "built: %s\n", date)
		return errors.ExitSuccess
	}

	command := "ingest"
	cmdArgs := fs.Args()
	if len(cmdArgs) > 0 {
		command, cmdArgs = cmdArgs[0], cmdArgs[1:]
	}

	var err error
	switch command {
	case "ingest":
		err = runIngest(cmdArgs, &globals)
	case "init":
		err = runInit(cmdArgs, &globals)
	case "inspect":
		err = runInspect(cmdArgs, &globals)
	case "completion":
		err = runCompletion(cmdArgs)
	case "help":
		fs.Usage()
		return errors.ExitSuccess
	default:
		fmt.Fprintf(stderr, "Unknown command: %s\n", command)
		fs.Usage()
		return errors.ExitInput
	}

	if stderrors.Is(err, flag.ErrHelp) {
		return errors.ExitSuccess
	}
	return errors.Report(stderr, err, globals.JSON, globals.NoColor)
}

// setupOutput applies color and verbosity settings for a command.
func setupOutput(globals *GlobalFlags) {
	if globals.NoColor {
		ui.InitColors(true)
	}
	if globals.JSON || globals.Quiet {
		ui.SetOutput(io.Discard)
	}
}

func usageError(err error) error {
	return errors.NewInputError(
		"Invalid command line",
		err.Error(),
		"Run 'lmi --help' for usage",
		err,
	)
}
