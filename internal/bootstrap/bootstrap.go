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

package bootstrap

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"gopkg.in/yaml.v3"

	"github.com/kraklabs/lmi/pkg/ingestion"
)

// Workspace layout constants.
const (
	// ConfigDir holds workspace configuration, relative to the workspace root.
	ConfigDir = ".lmi"

	// ConfigFile is the workspace configuration file name.
	ConfigFile = "project.yaml"

	// ConfigVersion is written to new configuration files.
	ConfigVersion = "1"
)

// ConfigPath returns the configuration file path for a workspace root.
func ConfigPath(root string) string {
	return filepath.Join(root, ConfigDir, ConfigFile)
}

// WorkspaceConfig is the on-disk form of .lmi/project.yaml.
//
// Every field is optional; empty values fall back to ingestion defaults.
// Relative paths are resolved against the workspace root.
type WorkspaceConfig struct {
	Version          string   `yaml:"version"`
	InputDir         string   `yaml:"input_dir,omitempty"`
	OutputFile       string   `yaml:"output_file,omitempty"`
	Include          string   `yaml:"include,omitempty"`
	Exclude          []string `yaml:"exclude,omitempty"`
	RequiredColumns  []string `yaml:"required_columns,omitempty"`
	Encodings        []string `yaml:"encodings,omitempty"`
	MaxFileSizeBytes int64    `yaml:"max_file_size_bytes,omitempty"`
	Delimiter        string   `yaml:"delimiter,omitempty"`
	LogLevel         string   `yaml:"log_level,omitempty"`
}

// DefaultWorkspaceConfig returns the configuration written by InitWorkspace.
func DefaultWorkspaceConfig() WorkspaceConfig {
	def := ingestion.DefaultConfig()
	return WorkspaceConfig{
		Version:         ConfigVersion,
		InputDir:        filepath.ToSlash(def.InputDir),
		OutputFile:      filepath.ToSlash(def.OutputFile),
		Include:         def.IncludePattern,
		RequiredColumns: def.RequiredColumns,
		Encodings:       def.Encodings,
		Delimiter:       string(def.Delimiter),
		LogLevel:        "info",
	}
}

// LoadWorkspaceConfig reads and decodes a configuration file. Unknown keys
// are rejected.
func LoadWorkspaceConfig(path string) (*WorkspaceConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg WorkspaceConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if cfg.Version != "" && cfg.Version != ConfigVersion {
		return nil, fmt.Errorf("unsupported config version %q in %s", cfg.Version, path)
	}
	return &cfg, nil
}

// Save writes the configuration as YAML, creating parent directories.
func (c WorkspaceConfig) Save(path string) error {
	if c.Version == "" {
		c.Version = ConfigVersion
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Apply overlays the non-empty fields of c onto cfg. Relative paths are
// joined to root.
func (c WorkspaceConfig) Apply(cfg *ingestion.Config, root string) error {
	if c.InputDir != "" {
		cfg.InputDir = resolvePath(root, c.InputDir)
	}
	if c.OutputFile != "" {
		cfg.OutputFile = resolvePath(root, c.OutputFile)
	}
	if c.Include != "" {
		cfg.IncludePattern = c.Include
	}
	if len(c.Exclude) > 0 {
		cfg.ExcludeGlobs = append([]string(nil), c.Exclude...)
	}
	if len(c.RequiredColumns) > 0 {
		cfg.RequiredColumns = append([]string(nil), c.RequiredColumns...)
	}
	if len(c.Encodings) > 0 {
		cfg.Encodings = append([]string(nil), c.Encodings...)
	}
	if c.MaxFileSizeBytes != 0 {
		cfg.MaxFileSizeBytes = c.MaxFileSizeBytes
	}
	if c.Delimiter != "" {
		d, err := ParseDelimiter(c.Delimiter)
		if err != nil {
			return err
		}
		cfg.Delimiter = d
	}
	return nil
}

// ParseDelimiter accepts a single character or the names "tab", "comma",
// "semicolon" and "pipe".
func ParseDelimiter(s string) (rune, error) {
	switch strings.ToLower(s) {
	case "tab", `\t`:
		return '\t', nil
	case "comma":
		return ',', nil
	case "semicolon":
		return ';', nil
	case "pipe":
		return '|', nil
	}
	if utf8.RuneCountInString(s) != 1 {
		return 0, fmt.Errorf("delimiter must be a single character, got %q", s)
	}
	r, _ := utf8.DecodeRuneInString(s)
	if err := ingestion.CheckDelimiter(r); err != nil {
		return 0, err
	}
	return r, nil
}

func resolvePath(root, p string) string {
	p = filepath.FromSlash(p)
	if filepath.IsAbs(p) || root == "" {
		return p
	}
	return filepath.Join(root, p)
}

// WorkspaceOptions controls InitWorkspace.
type WorkspaceOptions struct {
	// Root is the workspace directory. Defaults to the current directory.
	Root string

	// Force overwrites an existing configuration file.
	Force bool

	// Config is written to the configuration file. Zero value uses
	// DefaultWorkspaceConfig.
	Config *WorkspaceConfig
}

// WorkspaceInfo describes an initialized workspace.
type WorkspaceInfo struct {
	Root          string   `json:"root"`
	ConfigPath    string   `json:"config_path"`
	ConfigWritten bool     `json:"config_written"`
	CreatedDirs   []string `json:"created_dirs,omitempty"`
	InputDir      string   `json:"input_dir"`
	OutputDir     string   `json:"output_dir"`
}

// InitWorkspace creates the input and output directories and the
// configuration file for a workspace.
// This function is idempotent: calling it multiple times is safe. An
// existing configuration file is kept unless Force is set.
func InitWorkspace(opts WorkspaceOptions, logger *slog.Logger) (*WorkspaceInfo, error) {
	if logger == nil {
		logger = slog.Default()
	}
	root := opts.Root
	if root == "" {
		root = "."
	}
	cfg := DefaultWorkspaceConfig()
	if opts.Config != nil {
		cfg = *opts.Config
	}

	info := &WorkspaceInfo{
		Root:       root,
		ConfigPath: ConfigPath(root),
		InputDir:   resolvePath(root, orDefault(cfg.InputDir, DefaultWorkspaceConfig().InputDir)),
		OutputDir:  filepath.Dir(resolvePath(root, orDefault(cfg.OutputFile, DefaultWorkspaceConfig().OutputFile))),
	}

	logger.Info("bootstrap.workspace.init.start", "root", root, "force", opts.Force)

	for _, dir := range []string{info.InputDir, info.OutputDir} {
		created, err := ensureDir(dir)
		if err != nil {
			return nil, err
		}
		if created {
			info.CreatedDirs = append(info.CreatedDirs, dir)
		}
	}

	_, err := os.Stat(info.ConfigPath)
	switch {
	case err == nil && !opts.Force:
		logger.Debug("bootstrap.workspace.config.exists", "path", info.ConfigPath)
	case err == nil || os.IsNotExist(err):
		if err := cfg.Save(info.ConfigPath); err != nil {
			return nil, err
		}
		info.ConfigWritten = true
	default:
		return nil, fmt.Errorf("stat config: %w", err)
	}

	logger.Info("bootstrap.workspace.init.success",
		"root", root,
		"config_written", info.ConfigWritten,
		"created_dirs", len(info.CreatedDirs),
	)
	return info, nil
}

func ensureDir(dir string) (bool, error) {
	st, err := os.Stat(dir)
	if err == nil {
		if !st.IsDir() {
			return false, fmt.Errorf("%s exists and is not a directory", dir)
		}
		return false, nil
	}
	if !os.IsNotExist(err) {
		return false, fmt.Errorf("stat %s: %w", dir, err)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return false, fmt.Errorf("create %s: %w", dir, err)
	}
	return true, nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
