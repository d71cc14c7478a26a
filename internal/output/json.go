// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

// Package output provides machine- and human-readable result writers for
// LMI CLI commands.
//
// Commands that support --json write their result struct with JSON:
//
//	result := &IngestSummary{Rows: 1204, FilesLoaded: 12}
//	if err := output.JSON(result); err != nil {
//	    errors.FatalError(err, true)
//	}
//
// Human-readable output uses Table for aligned two-or-more column listings:
//
//	tbl := output.NewTable(os.Stdout, "COLUMN", "TYPE", "NULLS")
//	tbl.Row("job_title", "string", 0)
//	tbl.Flush()
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
)

// JSON writes data as pretty-printed JSON to stdout.
func JSON(data any) error {
	return JSONTo(os.Stdout, data)
}

// JSONTo writes data as pretty-printed JSON with 2-space indentation to w.
func JSONTo(w io.Writer, data any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		return fmt.Errorf("JSON encoding failed: %w", err)
	}
	return nil
}

// Table writes aligned columns separated by two spaces.
type Table struct {
	tw *tabwriter.Writer
}

// NewTable creates a table on w. A header row is written when headers are
// given.
func NewTable(w io.Writer, headers ...string) *Table {
	t := &Table{tw: tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)}
	if len(headers) > 0 {
		cells := make([]any, len(headers))
		for i, h := range headers {
			cells[i] = h
		}
		t.Row(cells...)
	}
	return t
}

// Row appends a row. Cells are rendered with fmt.Sprint.
func (t *Table) Row(cells ...any) {
	parts := make([]string, len(cells))
	for i, c := range cells {
		parts[i] = fmt.Sprint(c)
	}
	_, _ = fmt.Fprintln(t.tw, strings.Join(parts, "\t"))
}

// Flush writes buffered rows.
func (t *Table) Flush() error {
	return t.tw.Flush()
}
