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

	"github.com/kraklabs/lmi/internal/bootstrap"
	"github.com/kraklabs/lmi/internal/errors"
)

func TestInit_CreatesWorkspace(t *testing.T) {
	root := isolate(t)

	code, cli := runCLI(t, "--no-color", "init")
	require.Equal(t, errors.ExitSuccess, code, cli.stderr.String())

	assert.FileExists(t, filepath.Join(root, bootstrap.ConfigDir, bootstrap.ConfigFile))
	assert.DirExists(t, filepath.Join(root, "data", "raw"))
	assert.DirExists(t, filepath.Join(root, "data", "processed"))
	assert.Contains(t, cli.ui.String(), "Created "+bootstrap.ConfigPath("."))
	assert.Contains(t, cli.ui.String(), "Run: lmi ingest")
}

func TestInit_KeepsExistingConfig(t *testing.T) {
	root := isolate(t)
	path := writeProjectConfig(t, root, "input_dir: exports\n")

	code, cli := runCLI(t, "--no-color", "init")
	require.Equal(t, errors.ExitSuccess, code, cli.stderr.String())
	assert.Contains(t, cli.ui.String(), "Kept existing")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "input_dir: exports\n", string(data))

	code, cli = runCLI(t, "init", "--force", "--json")
	require.Equal(t, errors.ExitSuccess, code, cli.stderr.String())

	var info bootstrap.WorkspaceInfo
	require.NoError(t, json.Unmarshal(cli.stdout.Bytes(), &info))
	assert.True(t, info.ConfigWritten)

	cfg, err := bootstrap.LoadWorkspaceConfig(path)
	require.NoError(t, err)
	assert.Equal(t, bootstrap.DefaultWorkspaceConfig().InputDir, cfg.InputDir)
}

func TestInit_CustomPaths(t *testing.T) {
	root := isolate(t)
	ws := filepath.Join(root, "ws")

	code, cli := runCLI(t, "init", "--dir", ws, "--input", "exports", "--output", "build/postings.parquet", "--json")
	require.Equal(t, errors.ExitSuccess, code, cli.stderr.String())

	var info bootstrap.WorkspaceInfo
	require.NoError(t, json.Unmarshal(cli.stdout.Bytes(), &info))
	assert.Equal(t, filepath.Join(ws, "exports"), info.InputDir)
	assert.Equal(t, filepath.Join(ws, "build"), info.OutputDir)
	assert.DirExists(t, info.InputDir)

	cfg, err := bootstrap.LoadWorkspaceConfig(bootstrap.ConfigPath(ws))
	require.NoError(t, err)
	assert.Equal(t, "exports", cfg.InputDir)
	assert.Equal(t, "build/postings.parquet", cfg.OutputFile)
}

func TestInit_Unwritable(t *testing.T) {
	root := isolate(t)
	blocker := filepath.Join(root, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

	code, cli := runCLI(t, "--no-color", "init", "--dir", blocker)
	assert.Equal(t, errors.ExitWrite, code)
	assert.Contains(t, cli.stderr.String(), "Cannot initialize workspace")
}
