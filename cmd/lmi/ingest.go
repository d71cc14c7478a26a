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
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"syscall"

	flag "github.com/spf13/pflag"

	"github.com/kraklabs/lmi/internal/errors"
	"github.com/kraklabs/lmi/internal/output"
	"github.com/kraklabs/lmi/internal/ui"
	"github.com/kraklabs/lmi/pkg/ingestion"
	"github.com/kraklabs/lmi/pkg/storage"
)

// stdout receives command results. Tests replace it.
var stdout io.Writer = os.Stdout

// logOutput receives structured logs. Tests replace it.
var logOutput io.Writer = os.Stderr

// ingestFlags are the options specific to the ingest command.
type ingestFlags struct {
	input       string
	output      string
	include     string
	exclude     []string
	maxFileSize int64
	debug       bool
	metricsFile string
}

// IngestSummary is the JSON form of a completed run.
type IngestSummary struct {
	RunID           string         `json:"run_id"`
	OutputFile      string         `json:"output_file"`
	FilesDiscovered int            `json:"files_discovered"`
	FilesLoaded     int            `json:"files_loaded"`
	FilesFailed     int            `json:"files_failed"`
	FilesEmpty      int            `json:"files_empty"`
	Failed          []string       `json:"failed_files,omitempty"`
	Rows            int            `json:"rows"`
	Columns         int            `json:"columns"`
	Encodings       map[string]int `json:"encodings"`
	Skipped         map[string]int `json:"skipped,omitempty"`
	DurationMS      int64          `json:"duration_ms"`
}

// runIngest executes the 'lmi ingest' command.
//
// It resolves configuration, discovers source files, decodes each one with
// the first candidate encoding that parses, and writes the combined dataset.
// SIGINT and SIGTERM cancel the run before the output is replaced.
func runIngest(args []string, globals *GlobalFlags) error {
	var f ingestFlags

	fs := flag.NewFlagSet("ingest", flag.ContinueOnError)
	bindGlobalFlags(fs, globals)
	fs.StringVarP(&f.input, "input", "i", "", "Directory scanned recursively for CSV files")
	fs.StringVarP(&f.output, "output", "o", "", "Parquet file to write")
	fs.StringVar(&f.include, "include", "", "Base-name glob selecting source files (default: *.csv)")
	fs.StringArrayVar(&f.exclude, "exclude", nil, "Glob of relative paths to skip (repeatable)")
	fs.Int64Var(&f.maxFileSize, "max-file-size", 0, "Skip files larger than this many bytes (0 = no limit)")
	fs.BoolVar(&f.debug, "debug", false, "Enable debug logging")
	fs.StringVar(&f.metricsFile, "metrics-file", "", "Write Prometheus metrics to this file after the run")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: lmi ingest [options]

Consolidates every matching CSV file under the input directory into one
Parquet dataset. Files that cannot be decoded are logged and skipped.
Runs are idempotent: the output file is replaced on every run.

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  lmi ingest
  lmi ingest --input exports/2023 --output out/2023.parquet
  lmi ingest --exclude 'archive/**' --exclude '**/draft_*'
  lmi ingest --metrics-file /var/lib/node_exporter/lmi.prom
`)
	}

	if err := fs.Parse(args); err != nil {
		if stderrors.Is(err, flag.ErrHelp) {
			return err
		}
		return usageError(err)
	}
	if fs.NArg() > 0 {
		return usageError(fmt.Errorf("unexpected arguments: %v", fs.Args()))
	}

	setupOutput(globals)

	settings, err := LoadSettings(globals.Config)
	if err != nil {
		return err
	}
	cfg := settings.Ingestion
	f.apply(fs, &cfg)

	logLevel := settings.LogLevel
	if f.debug {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(logOutput, &slog.HandlerOptions{Level: logLevel}))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metrics := ingestion.NewMetrics()
	opts := []ingestion.Option{ingestion.WithMetrics(metrics)}
	if bar := NewProgressBar(NewProgressConfig(*globals), 0, "Decoding files"); bar != nil {
		opts = append(opts, ingestion.WithProgress(bar))
	}

	pipeline, err := ingestion.NewPipeline(cfg, logger, opts...)
	if err != nil {
		return errors.NewConfigError("Invalid ingestion configuration", err.Error(), "Check flags, environment and project.yaml", err)
	}

	ui.Infof("Scanning %s", cfg.InputDir)
	result, runErr := pipeline.Run(ctx)

	if f.metricsFile != "" {
		if err := metrics.WriteTextfile(f.metricsFile); err != nil {
			logger.Warn("metrics.textfile.error", "path", f.metricsFile, "err", err)
		} else {
			logger.Debug("metrics.textfile.written", "path", f.metricsFile)
		}
	}

	if runErr != nil {
		return ingestError(runErr, cfg)
	}

	summary := newIngestSummary(result)
	if globals.JSON {
		return output.JSONTo(stdout, summary)
	}
	printIngestSummary(summary)
	return nil
}

// apply copies explicitly set flags over cfg.
func (f *ingestFlags) apply(fs *flag.FlagSet, cfg *ingestion.Config) {
	if fs.Changed("input") {
		cfg.InputDir = f.input
	}
	if fs.Changed("output") {
		cfg.OutputFile = f.output
	}
	if fs.Changed("include") {
		cfg.IncludePattern = f.include
	}
	if fs.Changed("exclude") {
		cfg.ExcludeGlobs = append(cfg.ExcludeGlobs, f.exclude...)
	}
	if fs.Changed("max-file-size") {
		cfg.MaxFileSizeBytes = f.maxFileSize
	}
}

// ingestError maps pipeline failures onto user errors and exit codes.
func ingestError(err error, cfg ingestion.Config) error {
	switch {
	case stderrors.Is(err, context.Canceled):
		return errors.NewInterruptedError("Ingestion interrupted", err)
	case stderrors.Is(err, ingestion.ErrDiscovery):
		return errors.NewNotFoundError(
			"No source files found",
			err.Error(),
			fmt.Sprintf("Place CSV exports under %s or pass --input", cfg.InputDir),
			err,
		)
	case stderrors.Is(err, ingestion.ErrNoValidData):
		return errors.NewInputError(
			"No valid data",
			err.Error(),
			"Check the file encodings or run with --debug to see per-file errors",
			err,
		)
	case stderrors.Is(err, storage.ErrWrite):
		return errors.NewWriteError(
			"Cannot write dataset",
			err.Error(),
			fmt.Sprintf("Check permissions for %s or pass --output", cfg.OutputFile),
			err,
		)
	default:
		return errors.NewInternalError("Ingestion failed", err.Error(), "", err)
	}
}

func newIngestSummary(r *ingestion.IngestionResult) IngestSummary {
	return IngestSummary{
		RunID:           r.RunID,
		OutputFile:      r.OutputFile,
		FilesDiscovered: r.FilesDiscovered,
		FilesLoaded:     r.FilesLoaded,
		FilesFailed:     r.FilesFailed,
		FilesEmpty:      r.FilesEmpty,
		Failed:          r.Failed,
		Rows:            r.Rows,
		Columns:         r.Columns,
		Encodings:       r.EncodingCounts,
		Skipped:         r.SkipReasons,
		DurationMS:      r.TotalDuration.Milliseconds(),
	}
}

func printIngestSummary(s IngestSummary) {
	ui.Successf("Wrote %s rows x %d columns to %s", ui.CountText(s.Rows), s.Columns, s.OutputFile)
	fmt.Fprintln(ui.Writer())

	ui.Header("Files")
	tbl := output.NewTable(ui.Writer())
	tbl.Row(ui.Label("Discovered"), s.FilesDiscovered)
	tbl.Row(ui.Label("Loaded"), s.FilesLoaded)
	tbl.Row(ui.Label("Empty"), s.FilesEmpty)
	tbl.Row(ui.Label("Failed"), s.FilesFailed)
	for _, reason := range sortedKeys(s.Skipped) {
		tbl.Row(ui.Label("Skipped ("+reason+")"), s.Skipped[reason])
	}
	_ = tbl.Flush()

	if len(s.Encodings) > 0 {
		fmt.Fprintln(ui.Writer())
		ui.Header("Encodings")
		tbl = output.NewTable(ui.Writer())
		for _, enc := range sortedKeys(s.Encodings) {
			tbl.Row(ui.Label(enc), s.Encodings[enc])
		}
		_ = tbl.Flush()
	}

	for _, path := range s.Failed {
		ui.Warningf("Could not decode %s", path)
	}
	fmt.Fprintln(ui.Writer())
	fmt.Fprintln(ui.Writer(), ui.DimText(fmt.Sprintf("run %s in %dms", s.RunID, s.DurationMS)))
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
