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
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/kraklabs/lmi/pkg/dataset"
)

// Decoder turns one source file into a normalized table.
type Decoder struct {
	encodings  []TextEncoding
	delimiter  rune
	normalizer *Normalizer
	logger     *slog.Logger
	metrics    *Metrics
}

// NewDecoder creates a decoder trying the configured encodings in order.
func NewDecoder(cfg Config, metrics *Metrics, logger *slog.Logger) (*Decoder, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	encs, err := resolveEncodings(cfg.Encodings)
	if err != nil {
		return nil, err
	}
	return &Decoder{
		encodings:  encs,
		delimiter:  cfg.Delimiter,
		normalizer: NewNormalizer(cfg.RequiredColumns, metrics, logger),
		logger:     logger,
		metrics:    metrics,
	}, nil
}

// Decode reads path and parses it with the first encoding that succeeds.
//
// The result is normalized and carries the source_file (base name) and
// source_month (period of the stem) columns. Decode never returns an
// error: a file that cannot be read or parsed under any encoding is
// logged and yields an empty table, so one bad file cannot abort a run.
// The second return value names the encoding used, or is empty.
func (d *Decoder) Decode(path string) (*dataset.Table, string) {
	name := filepath.Base(path)

	raw, err := os.ReadFile(path)
	if err != nil {
		d.logger.Error("ingest.file.read_error", "file", name, "path", path, "err", err)
		d.metrics.failed()
		return dataset.New(), ""
	}

	for _, enc := range d.encodings {
		text, err := enc.Decode(raw)
		if err != nil {
			d.logger.Debug("ingest.file.encoding_rejected", "file", name, "encoding", enc.Name, "err", err)
			continue
		}
		t, err := ParseCSV(text, d.delimiter)
		if err != nil {
			d.logger.Debug("ingest.file.parse_rejected", "file", name, "encoding", enc.Name, "err", err)
			continue
		}

		d.logger.Info("ingest.file.loaded", "file", name, "encoding", enc.Name, "rows", t.NumRows())
		d.metrics.loaded(enc.Name)

		t = d.normalizer.Normalize(t, name)
		t.SetConstColumn(SourceFileColumn, name)
		t.SetConstColumn(SourceMonthColumn, ExtractPeriod(stem(name), d.logger))
		return t, enc.Name
	}

	d.logger.Error("ingest.file.undecodable", "file", name, "path", path, "tried", len(d.encodings))
	d.metrics.failed()
	return dataset.New(), ""
}

// stem strips the extension; dot files such as ".csv" keep their name.
func stem(name string) string {
	if s := strings.TrimSuffix(name, filepath.Ext(name)); s != "" {
		return s
	}
	return name
}
