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
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/kraklabs/lmi/internal/bootstrap"
	"github.com/kraklabs/lmi/internal/errors"
	"github.com/kraklabs/lmi/pkg/ingestion"
)

// Environment variables read by the CLI. Values from a .env file in the
// working directory are used when the variable is not set in the process
// environment.
const (
	envInputDir    = "LMI_INPUT_DIR"
	envOutputFile  = "LMI_OUTPUT_FILE"
	envLogLevel    = "LMI_LOG_LEVEL"
	envConfig      = "LMI_CONFIG"
	envMaxFileSize = "LMI_MAX_FILE_SIZE_BYTES"
)

// dotEnvFile is loaded from the working directory when present.
const dotEnvFile = ".env"

// Settings is the resolved configuration for a command.
//
// Precedence, highest first: command-line flags, environment, the
// .lmi/project.yaml file, built-in defaults. Flags are applied by the
// individual commands on top of what LoadSettings returns.
type Settings struct {
	// Ingestion is the pipeline configuration.
	Ingestion ingestion.Config

	// LogLevel is the minimum level for structured logs.
	LogLevel slog.Level

	// ConfigPath is the configuration file that was loaded, if any.
	ConfigPath string
}

// envLookup resolves variables from the process environment first and a
// parsed .env file second.
type envLookup struct {
	dotenv map[string]string
}

func newEnvLookup(dir string) (envLookup, error) {
	path := filepath.Join(dir, dotEnvFile)
	if _, err := os.Stat(path); err != nil {
		return envLookup{}, nil
	}
	values, err := godotenv.Read(path)
	if err != nil {
		return envLookup{}, fmt.Errorf("read %s: %w", path, err)
	}
	return envLookup{dotenv: values}, nil
}

func (e envLookup) get(key string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return e.dotenv[key]
}

// LoadSettings resolves defaults, the configuration file and environment.
//
// configPath is the --config flag value. When empty, LMI_CONFIG is used,
// then ./.lmi/project.yaml if it exists. An explicitly named file that does
// not exist is an error.
func LoadSettings(configPath string) (*Settings, error) {
	env, err := newEnvLookup(".")
	if err != nil {
		return nil, errors.NewConfigError(
			"Cannot read .env file",
			err.Error(),
			"Fix the syntax of .env or remove it",
			err,
		)
	}

	s := &Settings{
		Ingestion: ingestion.DefaultConfig(),
		LogLevel:  slog.LevelInfo,
	}

	explicit := configPath != ""
	if !explicit {
		configPath = env.get(envConfig)
		explicit = configPath != ""
	}
	if !explicit {
		configPath = bootstrap.ConfigPath(".")
	}

	if _, statErr := os.Stat(configPath); statErr == nil {
		wc, err := bootstrap.LoadWorkspaceConfig(configPath)
		if err != nil {
			return nil, errors.NewConfigError(
				"Cannot load LMI configuration",
				err.Error(),
				"Fix the file or run 'lmi init --force' to recreate it",
				err,
			)
		}
		if err := wc.Apply(&s.Ingestion, workspaceRoot(configPath)); err != nil {
			return nil, errors.NewConfigError("Invalid LMI configuration", err.Error(), "Check "+configPath, err)
		}
		if wc.LogLevel != "" {
			if s.LogLevel, err = parseLogLevel(wc.LogLevel); err != nil {
				return nil, errors.NewConfigError("Invalid log level", err.Error(), "Use debug, info, warn or error", err)
			}
		}
		s.ConfigPath = configPath
	} else if explicit {
		return nil, errors.NewConfigError(
			"Configuration file not found",
			fmt.Sprintf("%s does not exist", configPath),
			"Run 'lmi init' or pass an existing file with --config",
			statErr,
		)
	}

	if v := env.get(envInputDir); v != "" {
		s.Ingestion.InputDir = v
	}
	if v := env.get(envOutputFile); v != "" {
		s.Ingestion.OutputFile = v
	}
	if v := env.get(envMaxFileSize); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n < 0 {
			return nil, errors.NewConfigError(
				"Invalid file size limit",
				fmt.Sprintf("%s=%q is not a non-negative integer", envMaxFileSize, v),
				"Use a byte count such as 104857600, or 0 for no limit",
				err,
			)
		}
		s.Ingestion.MaxFileSizeBytes = n
	}
	if v := env.get(envLogLevel); v != "" {
		if s.LogLevel, err = parseLogLevel(v); err != nil {
			return nil, errors.NewConfigError(
				"Invalid log level",
				fmt.Sprintf("%s=%q: %v", envLogLevel, v, err),
				"Use debug, info, warn or error",
				err,
			)
		}
	}
	return s, nil
}

// workspaceRoot returns the directory relative config paths resolve
// against: the parent of .lmi for a workspace config, otherwise the
// directory holding the file.
func workspaceRoot(configPath string) string {
	dir := filepath.Dir(configPath)
	if filepath.Base(dir) == bootstrap.ConfigDir {
		return filepath.Dir(dir)
	}
	return dir
}

func parseLogLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
	return level, nil
}
