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

package ingestion

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/kraklabs/lmi/pkg/dataset"
	"github.com/kraklabs/lmi/pkg/storage"
)

// Progress receives one tick per processed file once the file count is
// known. *progressbar.ProgressBar satisfies it.
type Progress interface {
	ChangeMax(max int)
	Add(n int) error
	Finish() error
}

// Pipeline discovers, decodes, combines and persists source files.
type Pipeline struct {
	config     Config
	logger     *slog.Logger
	metrics    *Metrics
	discoverer *Discoverer
	decoder    *Decoder
	sink       storage.Sink
	progress   Progress
}

// IngestionResult summarizes a run.
type IngestionResult struct {
	// RunID identifies the run in logs and in the artifact metadata.
	RunID string

	// FilesDiscovered is the number of files matched by discovery.
	FilesDiscovered int

	// FilesLoaded is the number of files that decoded into at least one row.
	FilesLoaded int

	// FilesFailed is the number of files no candidate encoding could parse.
	FilesFailed int

	// FilesEmpty is the number of files that decoded but held no rows.
	FilesEmpty int

	// Failed lists the relative paths of files that failed to decode.
	Failed []string

	// Rows and Columns describe the combined dataset.
	Rows    int
	Columns int

	// EncodingCounts maps encoding name to the number of files it decoded.
	EncodingCounts map[string]int

	// SkipReasons maps discovery skip reasons to counts.
	SkipReasons map[string]int

	// OutputFile is where the dataset was written; empty if not persisted.
	OutputFile string

	DiscoverDuration time.Duration
	DecodeDuration   time.Duration
	WriteDuration    time.Duration
	TotalDuration    time.Duration
}

// Option customizes a Pipeline.
type Option func(*Pipeline)

// WithSink replaces the default Parquet sink.
func WithSink(s storage.Sink) Option {
	return func(p *Pipeline) { p.sink = s }
}

// WithMetrics records metrics on m instead of a private registry.
func WithMetrics(m *Metrics) Option {
	return func(p *Pipeline) { p.metrics = m }
}

// WithProgress reports per-file progress to pr.
func WithProgress(pr Progress) Option {
	return func(p *Pipeline) { p.progress = pr }
}

// NewPipeline creates a pipeline for cfg.
func NewPipeline(cfg Config, logger *slog.Logger, opts ...Option) (*Pipeline, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	p := &Pipeline{config: cfg, logger: logger}
	for _, opt := range opts {
		opt(p)
	}
	if p.metrics == nil {
		p.metrics = NewMetrics()
	}
	if p.sink == nil {
		p.sink = storage.NewParquetSink(logger)
	}

	decoder, err := NewDecoder(cfg, p.metrics, logger)
	if err != nil {
		return nil, fmt.Errorf("create decoder: %w", err)
	}
	p.decoder = decoder
	p.discoverer = NewDiscoverer(cfg, p.metrics, logger)
	return p, nil
}

// Metrics returns the pipeline's metrics.
func (p *Pipeline) Metrics() *Metrics {
	return p.metrics
}

// Discover lists the source files under the configured input directory.
func (p *Pipeline) Discover() (*DiscoverResult, error) {
	return p.discoverer.Discover(p.config.InputDir)
}

// IngestAll discovers and decodes every source file and returns the
// combined dataset without persisting it.
//
// It fails with ErrDiscovery when nothing is found and with ErrNoValidData
// when every file fails to decode. Files are processed one at a time in
// sorted path order.
func (p *Pipeline) IngestAll(ctx context.Context) (*dataset.Table, *IngestionResult, error) {
	return p.ingest(ctx, &IngestionResult{RunID: uuid.NewString()})
}

func (p *Pipeline) ingest(ctx context.Context, result *IngestionResult) (*dataset.Table, *IngestionResult, error) {
	discoverStart := time.Now()
	found, err := p.Discover()
	result.DiscoverDuration = time.Since(discoverStart)
	p.metrics.observe("discover", result.DiscoverDuration)
	if err != nil {
		return nil, result, err
	}
	result.FilesDiscovered = len(found.Files)
	result.SkipReasons = found.SkipReasons
	result.EncodingCounts = make(map[string]int)

	p.logger.Info("ingest.decode.start", "run_id", result.RunID, "files", len(found.Files))
	decodeStart := time.Now()
	if p.progress != nil {
		p.progress.ChangeMax(len(found.Files))
		defer func() { _ = p.progress.Finish() }()
	}

	tables := make([]*dataset.Table, 0, len(found.Files))
	for _, f := range found.Files {
		if err := ctx.Err(); err != nil {
			return nil, result, err
		}

		t, enc := p.decoder.Decode(f.FullPath)
		p.tick()

		switch {
		case enc == "":
			result.FilesFailed++
			result.Failed = append(result.Failed, f.Path)
		case t.Empty():
			result.EncodingCounts[enc]++
			result.FilesEmpty++
			p.metrics.empty()
			p.logger.Debug("ingest.file.empty", "file", f.Path, "encoding", enc)
		default:
			result.EncodingCounts[enc]++
			result.FilesLoaded++
			tables = append(tables, t)
		}
	}

	result.DecodeDuration = time.Since(decodeStart)
	p.metrics.observe("decode", result.DecodeDuration)

	if len(tables) == 0 {
		return nil, result, fmt.Errorf("%w: none of %d files could be loaded, check file encodings or integrity",
			ErrNoValidData, len(found.Files))
	}

	combined := dataset.Concat(tables...)
	result.Rows = combined.NumRows()
	result.Columns = combined.NumCols()
	p.metrics.combined(result.Rows, result.Columns)

	p.logger.Info("ingest.combined",
		"run_id", result.RunID,
		"rows", result.Rows,
		"columns", result.Columns,
		"files", len(tables),
	)
	return combined, result, nil
}

// Run executes the full pipeline: discover, decode, combine and persist to
// the configured output file.
func (p *Pipeline) Run(ctx context.Context) (*IngestionResult, error) {
	start := time.Now()
	result := &IngestionResult{RunID: uuid.NewString()}
	p.logger.Info("ingest.start", "run_id", result.RunID, "input", p.config.InputDir, "output", p.config.OutputFile)

	combined, result, err := p.ingest(ctx, result)
	if err != nil {
		result.TotalDuration = time.Since(start)
		return result, err
	}

	writeStart := time.Now()
	meta := storage.Metadata{
		RunID:       result.RunID,
		ColumnOrder: combined.Names(),
		Extra: map[string]string{
			"lmi.source_files": strconv.Itoa(result.FilesLoaded),
		},
	}
	if err := p.sink.Persist(ctx, combined, p.config.OutputFile, meta); err != nil {
		result.TotalDuration = time.Since(start)
		return result, fmt.Errorf("persist dataset: %w", err)
	}
	result.OutputFile = p.config.OutputFile
	result.WriteDuration = time.Since(writeStart)
	p.metrics.observe("write", result.WriteDuration)

	result.TotalDuration = time.Since(start)
	p.metrics.observe("total", result.TotalDuration)

	p.logger.Info("ingest.complete",
		"run_id", result.RunID,
		"files_loaded", result.FilesLoaded,
		"files_failed", result.FilesFailed,
		"rows", result.Rows,
		"columns", result.Columns,
		"output", result.OutputFile,
		"total_duration_ms", result.TotalDuration.Milliseconds(),
	)
	return result, nil
}

func (p *Pipeline) tick() {
	if p.progress != nil {
		_ = p.progress.Add(1)
	}
}
