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
	"io/fs"
	"os"
	"sort"

	flag "github.com/spf13/pflag"

	"github.com/kraklabs/lmi/internal/errors"
	"github.com/kraklabs/lmi/internal/output"
	"github.com/kraklabs/lmi/internal/ui"
	"github.com/kraklabs/lmi/pkg/dataset"
	"github.com/kraklabs/lmi/pkg/storage"
)

// InspectResult is the JSON form of 'lmi inspect'.
type InspectResult struct {
	*storage.ArtifactInfo
	Head [][]string `json:"head,omitempty"`
}

// runInspect executes the 'lmi inspect' command.
//
// It describes a dataset written by 'lmi ingest': row count, column types,
// null counts and run metadata. The file defaults to the configured output.
func runInspect(args []string, globals *GlobalFlags) error {
	var head int

	flags := flag.NewFlagSet("inspect", flag.ContinueOnError)
	bindGlobalFlags(flags, globals)
	flags.IntVarP(&head, "head", "n", 0, "Also show the first N rows")

	flags.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: lmi inspect [file] [options]

Describes a Parquet dataset written by 'lmi ingest'. Without a file
argument the configured output file is used.

Options:
`)
		flags.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  lmi inspect
  lmi inspect out/2023.parquet --head 5
  lmi inspect --json
`)
	}

	if err := flags.Parse(args); err != nil {
		if stderrors.Is(err, flag.ErrHelp) {
			return err
		}
		return usageError(err)
	}
	if flags.NArg() > 1 {
		return usageError(fmt.Errorf("expected at most one file, got %d", flags.NArg()))
	}
	if head < 0 {
		return usageError(fmt.Errorf("--head must not be negative"))
	}

	setupOutput(globals)

	path := flags.Arg(0)
	if path == "" {
		settings, err := LoadSettings(globals.Config)
		if err != nil {
			return err
		}
		path = settings.Ingestion.OutputFile
	}

	info, err := storage.Inspect(path)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return errors.NewNotFoundError(
				"Dataset not found",
				err.Error(),
				"Run 'lmi ingest' first or pass the file to inspect",
				err,
			)
		}
		return errors.NewInputError(
			"Cannot read dataset",
			err.Error(),
			"Make sure the file is a Parquet file written by lmi",
			err,
		)
	}

	result := InspectResult{ArtifactInfo: info}
	if head > 0 {
		t, err := storage.ReadTable(path)
		if err != nil {
			return errors.NewInputError("Cannot read dataset rows", err.Error(), "", err)
		}
		result.Head = headRows(t, head)
	}

	if globals.JSON {
		return output.JSONTo(stdout, result)
	}
	printInspect(result)
	return nil
}

// headRows renders the first n rows of t as text, header first.
func headRows(t *dataset.Table, n int) [][]string {
	if n > t.NumRows() {
		n = t.NumRows()
	}
	rows := make([][]string, 0, n+1)
	rows = append(rows, t.Names())
	for i := 0; i < n; i++ {
		cells := t.Row(i)
		row := make([]string, len(cells))
		for j, v := range cells {
			row[j] = dataset.FormatValue(v)
		}
		rows = append(rows, row)
	}
	return rows
}

func printInspect(r InspectResult) {
	ui.Header(r.Path)
	tbl := output.NewTable(ui.Writer())
	tbl.Row(ui.Label("Rows"), r.Rows)
	tbl.Row(ui.Label("Columns"), len(r.Columns))
	tbl.Row(ui.Label("Size"), fmt.Sprintf("%d bytes", r.Size))
	if r.RunID != "" {
		tbl.Row(ui.Label("Run ID"), r.RunID)
	}
	_ = tbl.Flush()

	fmt.Fprintln(ui.Writer())
	tbl = output.NewTable(ui.Writer(), "COLUMN", "TYPE", "NULLS")
	for _, c := range r.Columns {
		tbl.Row(c.Name, c.Type, c.Nulls)
	}
	_ = tbl.Flush()

	if extra := extraMetadata(r.Metadata); len(extra) > 0 {
		fmt.Fprintln(ui.Writer())
		tbl = output.NewTable(ui.Writer(), "KEY", "VALUE")
		for _, k := range extra {
			tbl.Row(k, r.Metadata[k])
		}
		_ = tbl.Flush()
	}

	if len(r.Head) > 0 {
		fmt.Fprintln(ui.Writer())
		cells := make([]any, len(r.Head[0]))
		tbl = output.NewTable(ui.Writer(), r.Head[0]...)
		for _, row := range r.Head[1:] {
			for i, v := range row {
				cells[i] = v
			}
			tbl.Row(cells...)
		}
		_ = tbl.Flush()
	}
}

// extraMetadata lists metadata keys other than the ones shown elsewhere.
func extraMetadata(meta map[string]string) []string {
	keys := make([]string, 0, len(meta))
	for k := range meta {
		if k == storage.MetaRunID || k == storage.MetaColumnOrder {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
