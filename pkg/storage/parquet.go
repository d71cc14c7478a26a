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

package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/parquet-go/parquet-go"

	"github.com/kraklabs/lmi/pkg/dataset"
)

// rowBatchSize is the number of rows handed to the writer at a time.
const rowBatchSize = 1024

// ParquetSink writes datasets as Snappy-compressed Parquet files.
//
// Every column is OPTIONAL so null cells are stored as Parquet nulls.
// Int columns map to INT64, float columns to DOUBLE, and string or
// all-null columns to UTF-8 BYTE_ARRAY. Parquet groups order fields by
// name, so the logical column order is kept as a JSON array in the
// MetaColumnOrder key/value entry.
type ParquetSink struct {
	logger *slog.Logger
}

// NewParquetSink creates a Parquet sink.
func NewParquetSink(logger *slog.Logger) *ParquetSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &ParquetSink{logger: logger}
}

// Persist implements Sink. The file is written to a temporary name in the
// destination directory and renamed into place.
func (s *ParquetSink) Persist(ctx context.Context, t *dataset.Table, dest string, meta Metadata) error {
	if t.NumCols() == 0 {
		return fmt.Errorf("%w: dataset has no columns", ErrWrite)
	}

	dir := filepath.Dir(dest)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("%w: create output dir %s: %w", ErrWrite, dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(dest)+".*.tmp")
	if err != nil {
		return fmt.Errorf("%w: create temp file in %s: %w", ErrWrite, dir, err)
	}
	tmpPath := tmp.Name()
	cleanup := func() {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
	}

	if err := writeParquet(ctx, tmp, t, meta); err != nil {
		cleanup()
		return fmt.Errorf("%w: encode %s: %w", ErrWrite, dest, err)
	}
	if err := tmp.Sync(); err != nil {
		cleanup()
		return fmt.Errorf("%w: sync %s: %w", ErrWrite, tmpPath, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("%w: close %s: %w", ErrWrite, tmpPath, err)
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("%w: chmod %s: %w", ErrWrite, tmpPath, err)
	}
	if err := os.Rename(tmpPath, dest); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("%w: rename to %s: %w", ErrWrite, dest, err)
	}

	s.logger.Info("storage.parquet.saved", "path", dest, "rows", t.NumRows(), "columns", t.NumCols())
	return nil
}

// parquetSchema builds a flat schema for t and returns, for each table
// column, its leaf index in the schema.
func parquetSchema(t *dataset.Table) (*parquet.Schema, []int) {
	group := make(parquet.Group, t.NumCols())
	for _, c := range t.Columns() {
		group[c.Name] = parquet.Compressed(parquet.Optional(leafNode(c.Kind)), &parquet.Snappy)
	}
	schema := parquet.NewSchema("job_postings", group)

	leafIndex := make(map[string]int, t.NumCols())
	for i, path := range schema.Columns() {
		leafIndex[path[0]] = i
	}
	order := make([]int, t.NumCols())
	for i, c := range t.Columns() {
		order[i] = leafIndex[c.Name]
	}
	return schema, order
}

func leafNode(k dataset.Kind) parquet.Node {
	switch k {
	case dataset.KindInt:
		return parquet.Int(64)
	case dataset.KindFloat:
		return parquet.Leaf(parquet.DoubleType)
	default:
		return parquet.String()
	}
}

func writeParquet(ctx context.Context, f *os.File, t *dataset.Table, meta Metadata) error {
	schema, leaf := parquetSchema(t)

	order := meta.ColumnOrder
	if order == nil {
		order = t.Names()
	}
	orderJSON, err := json.Marshal(order)
	if err != nil {
		return fmt.Errorf("encode column order: %w", err)
	}

	opts := []parquet.WriterOption{
		schema,
		parquet.KeyValueMetadata(MetaColumnOrder, string(orderJSON)),
	}
	if meta.RunID != "" {
		opts = append(opts, parquet.KeyValueMetadata(MetaRunID, meta.RunID))
	}
	for k, v := range meta.Extra {
		opts = append(opts, parquet.KeyValueMetadata(k, v))
	}

	w := parquet.NewWriter(f, opts...)
	cols := t.Columns()
	batch := make([]parquet.Row, 0, rowBatchSize)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if _, err := w.WriteRows(batch); err != nil {
			return fmt.Errorf("write rows: %w", err)
		}
		batch = batch[:0]
		return nil
	}

	for r := 0; r < t.NumRows(); r++ {
		row := make(parquet.Row, len(cols))
		for i, c := range cols {
			row[leaf[i]] = parquetValue(c.Values[r], leaf[i])
		}
		batch = append(batch, row)
		if len(batch) == rowBatchSize {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := flush(); err != nil {
				return err
			}
		}
	}
	if err := flush(); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close writer: %w", err)
	}
	return nil
}

// parquetValue converts a cell for an OPTIONAL leaf: definition level 0
// is null, 1 is present.
func parquetValue(v any, column int) parquet.Value {
	switch x := v.(type) {
	case nil:
		return parquet.NullValue().Level(0, 0, column)
	case int64:
		return parquet.Int64Value(x).Level(0, 1, column)
	case float64:
		return parquet.DoubleValue(x).Level(0, 1, column)
	case string:
		return parquet.ByteArrayValue([]byte(x)).Level(0, 1, column)
	default:
		return parquet.ByteArrayValue([]byte(dataset.FormatValue(x))).Level(0, 1, column)
	}
}
