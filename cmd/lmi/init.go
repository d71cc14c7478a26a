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
	"log/slog"
	"os"

	flag "github.com/spf13/pflag"

	"github.com/kraklabs/lmi/internal/bootstrap"
	"github.com/kraklabs/lmi/internal/errors"
	"github.com/kraklabs/lmi/internal/output"
	"github.com/kraklabs/lmi/internal/ui"
)

// initFlags holds parsed flags for the init command.
type initFlags struct {
	force  bool
	dir    string
	input  string
	output string
}

// runInit executes the 'lmi init' command.
//
// It creates .lmi/project.yaml with default settings and the input and
// output directories. Running it again is safe; an existing configuration
// is kept unless --force is given.
func runInit(args []string, globals *GlobalFlags) error {
	var f initFlags

	fs := flag.NewFlagSet("init", flag.ContinueOnError)
	bindGlobalFlags(fs, globals)
	fs.BoolVar(&f.force, "force", false, "Overwrite existing configuration")
	fs.StringVar(&f.dir, "dir", ".", "Workspace directory")
	fs.StringVar(&f.input, "input", "", "Input directory to record in the configuration")
	fs.StringVar(&f.output, "output", "", "Output file to record in the configuration")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: lmi init [options]

Creates .lmi/project.yaml and the data/raw and data/processed directories.

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  lmi init
  lmi init --input exports --output build/postings.parquet
  lmi init --force                 # Rewrite project.yaml with defaults
`)
	}

	if err := fs.Parse(args); err != nil {
		if stderrors.Is(err, flag.ErrHelp) {
			return err
		}
		return usageError(err)
	}

	setupOutput(globals)

	cfg := bootstrap.DefaultWorkspaceConfig()
	if f.input != "" {
		cfg.InputDir = f.input
	}
	if f.output != "" {
		cfg.OutputFile = f.output
	}

	logger := slog.New(slog.NewTextHandler(logOutput, &slog.HandlerOptions{Level: slog.LevelWarn}))
	info, err := bootstrap.InitWorkspace(bootstrap.WorkspaceOptions{
		Root:   f.dir,
		Force:  f.force,
		Config: &cfg,
	}, logger)
	if err != nil {
		return errors.NewWriteError(
			"Cannot initialize workspace",
			err.Error(),
			"Check permissions for "+f.dir,
			err,
		)
	}

	if globals.JSON {
		return output.JSONTo(stdout, info)
	}

	if info.ConfigWritten {
		ui.Successf("Created %s", info.ConfigPath)
	} else {
		ui.Infof("Kept existing %s (use --force to overwrite)", info.ConfigPath)
	}
	for _, dir := range info.CreatedDirs {
		ui.Successf("Created %s", dir)
	}
	fmt.Fprintln(ui.Writer())
	fmt.Fprintln(ui.Writer(), "Next steps:")
	fmt.Fprintf(ui.Writer(), "  1. Copy monthly CSV exports into %s\n", info.InputDir)
	fmt.Fprintln(ui.Writer(), "  2. Run: lmi ingest")
	fmt.Fprintln(ui.Writer(), "  3. Check the result: lmi inspect")
	return nil
}
