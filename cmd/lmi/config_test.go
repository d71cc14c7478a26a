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
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraklabs/lmi/internal/bootstrap"
	"github.com/kraklabs/lmi/internal/errors"
	"github.com/kraklabs/lmi/pkg/ingestion"
)

func writeProjectConfig(t *testing.T, root, body string) string {
	t.Helper()
	path := bootstrap.ConfigPath(root)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoadSettings_Defaults(t *testing.T) {
	isolate(t)

	s, err := LoadSettings("")
	require.NoError(t, err)

	def := ingestion.DefaultConfig()
	assert.Equal(t, def.InputDir, s.Ingestion.InputDir)
	assert.Equal(t, def.OutputFile, s.Ingestion.OutputFile)
	assert.Equal(t, slog.LevelInfo, s.LogLevel)
	assert.Empty(t, s.ConfigPath)
}

func TestLoadSettings_WorkspaceConfig(t *testing.T) {
	root := isolate(t)
	writeProjectConfig(t, root, `version: "1"
input_dir: exports
output_file: build/postings.parquet
exclude: ["archive/**"]
delimiter: semicolon
log_level: debug
`)

	s, err := LoadSettings("")
	require.NoError(t, err)

	assert.Equal(t, bootstrap.ConfigPath("."), s.ConfigPath)
	assert.Equal(t, "exports", s.Ingestion.InputDir)
	assert.Equal(t, filepath.Join("build", "postings.parquet"), s.Ingestion.OutputFile)
	assert.Equal(t, []string{"archive/**"}, s.Ingestion.ExcludeGlobs)
	assert.Equal(t, ';', s.Ingestion.Delimiter)
	assert.Equal(t, slog.LevelDebug, s.LogLevel)
}

func TestLoadSettings_Precedence(t *testing.T) {
	root := isolate(t)
	writeProjectConfig(t, root, "input_dir: from-file\noutput_file: from-file.parquet\nlog_level: debug\n")
	require.NoError(t, os.WriteFile(filepath.Join(root, dotEnvFile),
		[]byte("LMI_INPUT_DIR=from-dotenv\nLMI_OUTPUT_FILE=from-dotenv.parquet\n"), 0644))
	t.Setenv(envOutputFile, "from-env.parquet")
	t.Setenv(envLogLevel, "error")
	t.Setenv(envMaxFileSize, "2048")

	s, err := LoadSettings("")
	require.NoError(t, err)
	assert.Equal(t, int64(2048), s.Ingestion.MaxFileSizeBytes)

	assert.Equal(t, "from-dotenv", s.Ingestion.InputDir, ".env overrides the config file")
	assert.Equal(t, "from-env.parquet", s.Ingestion.OutputFile, "process environment overrides .env")
	assert.Equal(t, slog.LevelError, s.LogLevel)
}

func TestLoadSettings_ExplicitConfig(t *testing.T) {
	root := isolate(t)
	other := filepath.Join(root, "elsewhere", "lmi.yaml")
	require.NoError(t, os.MkdirAll(filepath.Dir(other), 0755))
	require.NoError(t, os.WriteFile(other, []byte("input_dir: raw\n"), 0644))

	s, err := LoadSettings(other)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "elsewhere", "raw"), s.Ingestion.InputDir,
		"relative paths resolve against the directory holding the file")

	t.Setenv(envConfig, other)
	s, err = LoadSettings("")
	require.NoError(t, err)
	assert.Equal(t, other, s.ConfigPath)
}

func TestLoadSettings_Errors(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T, root string)
		path  string
	}{
		{
			name: "missing explicit config",
			path: "nope.yaml",
		},
		{
			name: "unknown key",
			setup: func(t *testing.T, root string) {
				writeProjectConfig(t, root, "input_directory: raw\n")
			},
		},
		{
			name: "bad delimiter",
			setup: func(t *testing.T, root string) {
				writeProjectConfig(t, root, "delimiter: ab\n")
			},
		},
		{
			name: "bad log level in env",
			setup: func(t *testing.T, root string) {
				t.Setenv(envLogLevel, "chatty")
			},
		},
		{
			name: "bad size limit in env",
			setup: func(t *testing.T, root string) {
				t.Setenv(envMaxFileSize, "lots")
			},
		},
		{
			name: "malformed .env",
			setup: func(t *testing.T, root string) {
				require.NoError(t, os.WriteFile(filepath.Join(root, dotEnvFile), []byte("LMI_INPUT_DIR='unterminated\n"), 0644))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := isolate(t)
			if tt.setup != nil {
				tt.setup(t, root)
			}
			_, err := LoadSettings(tt.path)
			require.Error(t, err)

			var ue *errors.UserError
			require.True(t, stderrors.As(err, &ue))
			assert.Equal(t, errors.ExitConfig, ue.ExitCode)
		})
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"debug", slog.LevelDebug, false},
		{"INFO", slog.LevelInfo, false},
		{" warn ", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"loud", slog.LevelInfo, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseLogLevel(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWorkspaceRoot(t *testing.T) {
	assert.Equal(t, "proj", workspaceRoot(filepath.Join("proj", ".lmi", "project.yaml")))
	assert.Equal(t, filepath.Join("etc", "lmi"), workspaceRoot(filepath.Join("etc", "lmi", "config.yaml")))
}
