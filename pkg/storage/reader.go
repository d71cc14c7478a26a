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
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/parquet-go/parquet-go"

	"github.com/kraklabs/lmi/pkg/dataset"
)

// ColumnInfo describes one column of a stored artifact.
type ColumnInfo struct {
	Name  string `json:"name"`
	Type  string `json:"type"`
	Nulls int64  `json:"nulls"`
}

// ArtifactInfo summarizes a stored artifact.
type ArtifactInfo struct {
	Path     string            `json:"path"`
	Size     int64             `json:"size_bytes"`
	Rows     int64             `json:"rows"`
	RunID    string            `json:"run_id,omitempty"`
	Columns  []ColumnInfo      `json:"columns"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Inspect reads the schema, row count, null counts and key/value metadata
// of a Parquet artifact. Columns are reported in logical order.
func Inspect(path string) (*ArtifactInfo, error) {
	t, meta, size, err := readParquet(path)
	if err != nil {
		return nil, err
	}

	info := &ArtifactInfo{
		Path:     path,
		Size:     size,
		Rows:     int64(t.NumRows()),
		RunID:    meta[MetaRunID],
		Metadata: meta,
	}
	for _, c := range t.Columns() {
		var nulls int64
		for _, v := range c.Values {
			if v == nil {
				nulls++
			}
		}
		info.Columns = append(info.Columns, ColumnInfo{Name: c.Name, Type: c.Kind.String(), Nulls: nulls})
	}
	return info, nil
}

// ReadTable loads a Parquet artifact written by ParquetSink back into a
// table, restoring the logical column order.
func ReadTable(path string) (*dataset.Table, error) {
	t, _, _, err := readParquet(path)
	return t, err
}

func readParquet(path string) (*dataset.Table, map[string]string, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, 0, fmt.Errorf("open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	st, err := f.Stat()
	if err != nil {
		return nil, nil, 0, fmt.Errorf("stat %s: %w", path, err)
	}
	pf, err := parquet.OpenFile(f, st.Size())
	if err != nil {
		return nil, nil, 0, fmt.Errorf("read parquet %s: %w", path, err)
	}

	meta := make(map[string]string)
	for _, kv := range pf.Metadata().KeyValueMetadata {
		meta[kv.Key] = kv.Value
	}

	leaves := pf.Schema().Columns()
	names := make([]string, len(leaves))
	kinds := make([]dataset.Kind, len(leaves))
	for i, leafPath := range leaves {
		names[i] = leafPath[0]
		leaf, _ := pf.Schema().Lookup(leafPath...)
		kinds[i] = kindOf(leaf.Node.Type())
	}

	values := make([][]any, len(leaves))
	for i := range values {
		values[i] = make([]any, 0, pf.NumRows())
	}

	buf := make([]parquet.Row, rowBatchSize)
	for _, rg := range pf.RowGroups() {
		if err := readRowGroup(rg, buf, values); err != nil {
			return nil, nil, 0, fmt.Errorf("read rows %s: %w", path, err)
		}
	}

	order, err := logicalOrder(names, meta[MetaColumnOrder])
	if err != nil {
		return nil, nil, 0, fmt.Errorf("read %s: %w", path, err)
	}

	t := dataset.WithRows(int(pf.NumRows()))
	for _, i := range order {
		kind := kinds[i]
		if allNull(values[i]) {
			kind = dataset.KindNull
		}
		if err := t.AddColumn(&dataset.Column{Name: names[i], Kind: kind, Values: values[i]}); err != nil {
			return nil, nil, 0, fmt.Errorf("rebuild %s: %w", path, err)
		}
	}
	return t, meta, st.Size(), nil
}

func readRowGroup(rg parquet.RowGroup, buf []parquet.Row, values [][]any) error {
	rows := rg.Rows()
	defer func() { _ = rows.Close() }()

	for {
		n, err := rows.ReadRows(buf)
		for _, row := range buf[:n] {
			for _, v := range row {
				values[v.Column()] = append(values[v.Column()], cellOf(v))
			}
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

func cellOf(v parquet.Value) any {
	if v.IsNull() {
		return nil
	}
	switch v.Kind() {
	case parquet.Int64:
		return v.Int64()
	case parquet.Double:
		return v.Double()
	default:
		return string(v.ByteArray())
	}
}

func kindOf(t parquet.Type) dataset.Kind {
	switch t.Kind() {
	case parquet.Int64:
		return dataset.KindInt
	case parquet.Double:
		return dataset.KindFloat
	default:
		return dataset.KindString
	}
}

// logicalOrder returns leaf indexes in the recorded column order. Columns
// missing from the record keep their physical order after the recorded ones.
// An empty record keeps the physical order; a malformed one is an error.
func logicalOrder(names []string, recorded string) ([]int, error) {
	var recordedNames []string
	if recorded != "" {
		if err := json.Unmarshal([]byte(recorded), &recordedNames); err != nil {
			return nil, fmt.Errorf("decode %s metadata: %w", MetaColumnOrder, err)
		}
	}
	pos := make(map[string]int, len(recordedNames))
	for i, name := range recordedNames {
		pos[name] = i
	}
	order := make([]int, len(names))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		pa, okA := pos[names[order[a]]]
		pb, okB := pos[names[order[b]]]
		switch {
		case okA && okB:
			return pa < pb
		default:
			return okA && !okB
		}
	})
	return order, nil
}

func allNull(values []any) bool {
	for _, v := range values {
		if v != nil {
			return false
		}
	}
	return len(values) > 0
}
