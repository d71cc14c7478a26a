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
	"encoding/json"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraklabs/lmi/internal/errors"
	lmitest "github.com/kraklabs/lmi/internal/testing"
	"github.com/kraklabs/lmi/pkg/ingestion"
	"github.com/kraklabs/lmi/pkg/storage"
)

const (
	januaryCSV  = "job_title,city,vacancies\nCook,Halifax,2\nWelder,Regina,1\n"
	februaryCSV = "job_title,city,vacancies\nCuisinier,Montréal,3\n"
)

// writeFixtures creates two monthly exports and returns the raw dir and
// the output path.
func writeFixtures(t *testing.T) (string, string) {
	t.Helper()
	raw := lmitest.SetupRawDir(t)
	lmitest.WriteCSV(t, raw, "postings_2023-01.csv", "utf-8", januaryCSV)
	lmitest.WriteCSV(t, raw, "2023/postings_2023-02.csv", "latin-1", februaryCSV)
	return raw, filepath.Join(t.TempDir(), "processed", "job_postings.parquet")
}

func TestIngest_JSON(t *testing.T) {
	isolate(t)
	raw, out := writeFixtures(t)

	code, cli := runCLI(t, "ingest", "--json", "--input", raw, "--output", out)
	require.Equal(t, errors.ExitSuccess, code, cli.stderr.String())
	assert.Empty(t, cli.ui.String(), "JSON mode prints nothing else")

	var summary IngestSummary
	require.NoError(t, json.Unmarshal(cli.stdout.Bytes(), &summary))
	assert.NotEmpty(t, summary.RunID)
	assert.Equal(t, out, summary.OutputFile)
	assert.Equal(t, 2, summary.FilesDiscovered)
	assert.Equal(t, 2, summary.FilesLoaded)
	assert.Zero(t, summary.FilesFailed)
	assert.Equal(t, 3, summary.Rows)
	assert.Equal(t, len(ingestion.DefaultRequiredColumns)+2, summary.Columns)
	assert.Equal(t, map[string]int{"utf-8": 1, "windows-1252": 1}, summary.Encodings)

	tbl := lmitest.ReadArtifact(t, out)
	assert.Equal(t, 3, tbl.NumRows())
	assert.Equal(t, []any{"2023-01", "2023-01", "2023-02"}, tbl.Column(ingestion.SourceMonthColumn).Values)
	assert.Equal(t, "Montréal", tbl.Column("city").Values[2])
}

func TestIngest_HumanOutput(t *testing.T) {
	isolate(t)
	raw, out := writeFixtures(t)
	lmitest.WriteFile(t, raw, "broken_2023-03.csv", nil)

	code, cli := runCLI(t, "--no-color", "ingest", "-i", raw, "-o", out)
	require.Equal(t, errors.ExitSuccess, code, cli.stderr.String())

	text := cli.ui.String()
	assert.Contains(t, text, "Wrote 3 rows x 9 columns to "+out)
	assert.Contains(t, text, "Encodings")
	assert.Contains(t, text, "windows-1252")
	assert.Contains(t, text, "Could not decode broken_2023-03.csv")
	assert.Empty(t, cli.stdout.String())
}

func TestIngest_MetricsFile(t *testing.T) {
	isolate(t)
	raw, out := writeFixtures(t)
	metricsPath := filepath.Join(t.TempDir(), "lmi.prom")

	code, cli := runCLI(t, "-q", "ingest", "--input", raw, "--output", out, "--metrics-file", metricsPath)
	require.Equal(t, errors.ExitSuccess, code, cli.stderr.String())

	data, err := os.ReadFile(metricsPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "lmi_ingest_files_discovered_total 2")
	assert.Contains(t, string(data), `lmi_ingest_files_loaded_total{encoding="windows-1252"} 1`)
}

func TestIngest_Exclude(t *testing.T) {
	isolate(t)
	raw, out := writeFixtures(t)

	code, cli := runCLI(t, "--json", "ingest", "--input", raw, "--output", out, "--exclude", "2023/**")
	require.Equal(t, errors.ExitSuccess, code, cli.stderr.String())

	var summary IngestSummary
	require.NoError(t, json.Unmarshal(cli.stdout.Bytes(), &summary))
	assert.Equal(t, 1, summary.FilesDiscovered)
	assert.Equal(t, 2, summary.Rows)
}

func TestIngest_DefaultCommandUsesWorkspace(t *testing.T) {
	root := isolate(t)

	code, cli := runCLI(t, "init")
	require.Equal(t, errors.ExitSuccess, code, cli.stderr.String())
	lmitest.WriteCSV(t, filepath.Join(root, "data", "raw"), "postings_2023-01.csv", "utf-8", januaryCSV)

	code, cli = runCLI(t, "--quiet")
	require.Equal(t, errors.ExitSuccess, code, cli.stderr.String())

	tbl := lmitest.ReadArtifact(t, filepath.Join(root, "data", "processed", "job_postings.parquet"))
	assert.Equal(t, 2, tbl.NumRows())
}

func TestIngest_Failures(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(t *testing.T) []string
		wantCode int
		wantText string
	}{
		{
			name: "missing input directory",
			setup: func(t *testing.T) []string {
				return []string{"--input", filepath.Join(t.TempDir(), "absent")}
			},
			wantCode: errors.ExitNotFound,
			wantText: "No source files found",
		},
		{
			name: "no matching files",
			setup: func(t *testing.T) []string {
				raw := lmitest.SetupRawDir(t)
				lmitest.WriteFile(t, raw, "notes.txt", []byte("hello"))
				return []string{"--input", raw}
			},
			wantCode: errors.ExitNotFound,
			wantText: "No source files found",
		},
		{
			name: "nothing decodes",
			setup: func(t *testing.T) []string {
				raw := lmitest.SetupRawDir(t)
				lmitest.WriteFile(t, raw, "a_2023-01.csv", nil)
				lmitest.WriteFile(t, raw, "b_2023-02.csv", nil)
				return []string{"--input", raw}
			},
			wantCode: errors.ExitInput,
			wantText: "No valid data",
		},
		{
			name: "output not writable",
			setup: func(t *testing.T) []string {
				raw, _ := writeFixtures(t)
				blocker := lmitest.WriteFile(t, t.TempDir(), "blocker", []byte("x"))
				return []string{"--input", raw, "--output", filepath.Join(blocker, "out.parquet")}
			},
			wantCode: errors.ExitWrite,
			wantText: "Cannot write dataset",
		},
		{
			name: "invalid delimiter in config",
			setup: func(t *testing.T) []string {
				root, err := os.Getwd()
				require.NoError(t, err)
				writeProjectConfig(t, root, "delimiter: ab\n")
				return nil
			},
			wantCode: errors.ExitConfig,
			wantText: "Invalid LMI configuration",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			args := append([]string{"--no-color", "ingest", "-q"}, tt.setup(t)...)

			code, cli := runCLI(t, args...)
			assert.Equal(t, tt.wantCode, code)
			assert.Contains(t, cli.stderr.String(), tt.wantText)
		})
	}
}

func TestIngest_JSONError(t *testing.T) {
	isolate(t)
	code, cli := runCLI(t, "--json", "ingest", "--input", filepath.Join(t.TempDir(), "absent"))
	require.Equal(t, errors.ExitNotFound, code)

	var report errors.ErrorJSON
	require.NoError(t, json.Unmarshal(cli.stderr.Bytes(), &report))
	assert.Equal(t, "No source files found", report.Error)
	assert.Equal(t, errors.ExitNotFound, report.ExitCode)
	assert.Empty(t, cli.stdout.String())
}

func TestIngestError(t *testing.T) {
	cfg := ingestion.DefaultConfig()
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"canceled", fmt.Errorf("persist dataset: %w: encode: %w", storage.ErrWrite, context.Canceled), errors.ExitInterrupted},
		{"discovery", fmt.Errorf("%w: no files", ingestion.ErrDiscovery), errors.ExitNotFound},
		{"no valid data", fmt.Errorf("%w: none of 2 files", ingestion.ErrNoValidData), errors.ExitInput},
		{"write", fmt.Errorf("persist dataset: %w: rename", storage.ErrWrite), errors.ExitWrite},
		{"unexpected", stderrors.New("boom"), errors.ExitInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ingestError(tt.err, cfg)

			var ue *errors.UserError
			require.True(t, stderrors.As(got, &ue))
			assert.Equal(t, tt.want, ue.ExitCode)
			assert.ErrorIs(t, got, tt.err)
		})
	}
}
