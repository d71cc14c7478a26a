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
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraklabs/lmi/internal/errors"
	"github.com/kraklabs/lmi/pkg/dataset"
	"github.com/kraklabs/lmi/pkg/storage"
)

// ingestFixtures runs a successful ingest and returns the output path.
func ingestFixtures(t *testing.T) string {
	t.Helper()
	raw, out := writeFixtures(t)
	code, cli := runCLI(t, "-q", "ingest", "--input", raw, "--output", out)
	require.Equal(t, errors.ExitSuccess, code, cli.stderr.String())
	return out
}

func TestInspect_JSON(t *testing.T) {
	isolate(t)
	out := ingestFixtures(t)

	code, cli := runCLI(t, "inspect", out, "--json", "--head", "2")
	require.Equal(t, errors.ExitSuccess, code, cli.stderr.String())

	var result struct {
		Path    string               `json:"path"`
		Rows    int64                `json:"rows"`
		RunID   string               `json:"run_id"`
		Columns []storage.ColumnInfo `json:"columns"`
		Head    [][]string           `json:"head"`
	}
	require.NoError(t, json.Unmarshal(cli.stdout.Bytes(), &result))
	assert.Equal(t, out, result.Path)
	assert.Equal(t, int64(3), result.Rows)
	assert.NotEmpty(t, result.RunID)
	require.Len(t, result.Columns, 9)
	assert.Equal(t, "job_title", result.Columns[0].Name)

	require.Len(t, result.Head, 3, "header plus two rows")
	assert.Equal(t, "job_title", result.Head[0][0])
	assert.Equal(t, "Cook", result.Head[1][0])
}

func TestInspect_DefaultsToConfiguredOutput(t *testing.T) {
	root := isolate(t)
	out := ingestFixtures(t)
	writeProjectConfig(t, root, "output_file: "+filepath.ToSlash(out)+"\n")

	code, cli := runCLI(t, "--no-color", "inspect")
	require.Equal(t, errors.ExitSuccess, code, cli.stderr.String())

	text := cli.ui.String()
	assert.Contains(t, text, out)
	assert.Contains(t, text, "COLUMN")
	assert.Contains(t, text, "source_month")
	assert.Contains(t, text, "lmi.source_files")
}

func TestInspect_Errors(t *testing.T) {
	root := isolate(t)
	bogus := filepath.Join(root, "bogus.parquet")
	require.NoError(t, os.WriteFile(bogus, []byte("not parquet"), 0644))

	tests := []struct {
		name string
		args []string
		want int
	}{
		{"missing file", []string{"inspect", filepath.Join(root, "absent.parquet")}, errors.ExitNotFound},
		{"default output missing", []string{"inspect"}, errors.ExitNotFound},
		{"not parquet", []string{"inspect", bogus}, errors.ExitInput},
		{"too many args", []string{"inspect", bogus, bogus}, errors.ExitInput},
		{"negative head", []string{"inspect", bogus, "--head", "-1"}, errors.ExitInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _ := runCLI(t, tt.args...)
			assert.Equal(t, tt.want, code)
		})
	}
}

func TestHeadRows(t *testing.T) {
	tbl := dataset.New()
	require.NoError(t, tbl.AddColumn(&dataset.Column{Name: "a", Kind: dataset.KindInt, Values: []any{int64(1), nil}}))
	require.NoError(t, tbl.AddColumn(&dataset.Column{Name: "b", Kind: dataset.KindString, Values: []any{"x", "y"}}))

	assert.Equal(t, [][]string{{"a", "b"}, {"1", "x"}, {"", "y"}}, headRows(tbl, 10))
	assert.Equal(t, [][]string{{"a", "b"}, {"1", "x"}}, headRows(tbl, 1))
}
