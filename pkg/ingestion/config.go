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
	"fmt"
	"path/filepath"
	"unicode/utf8"
)

// Provenance columns injected into every decoded table.
const (
	SourceFileColumn  = "source_file"
	SourceMonthColumn = "source_month"
)

// UnknownPeriod is returned when no period token can be found in a file name.
const UnknownPeriod = "unknown"

// DefaultRequiredColumns is the schema every output row exposes, possibly null.
var DefaultRequiredColumns = []string{
	"job_title",
	"noc",
	"naics",
	"province",
	"city",
	"vacancies",
	"salary",
}

// Config configures a Pipeline. It is passed in at construction and never
// read from package state.
type Config struct {
	// InputDir is scanned recursively for source files.
	InputDir string

	// OutputFile is the columnar artifact written at the end of a run.
	OutputFile string

	// IncludePattern is matched against each file's base name (case-sensitive).
	IncludePattern string

	// ExcludeGlobs are matched against paths relative to InputDir.
	ExcludeGlobs []string

	// RequiredColumns are guaranteed present in every decoded table.
	RequiredColumns []string

	// Encodings is the ordered list of candidate encoding names.
	Encodings []string

	// MaxFileSizeBytes skips larger files. Zero disables the limit.
	MaxFileSizeBytes int64

	// Delimiter is the CSV field separator.
	Delimiter rune
}

// DefaultConfig returns the configuration used when nothing is overridden.
func DefaultConfig() Config {
	return Config{
		InputDir:        filepath.Join("data", "raw"),
		OutputFile:      filepath.Join("data", "processed", "job_postings.parquet"),
		IncludePattern:  "*.csv",
		RequiredColumns: append([]string(nil), DefaultRequiredColumns...),
		Encodings:       append([]string(nil), DefaultEncodings...),
		Delimiter:       ',',
	}
}

// Validate checks the configuration and fills zero values with defaults.
func (c *Config) Validate() error {
	def := DefaultConfig()
	if c.InputDir == "" {
		c.InputDir = def.InputDir
	}
	if c.OutputFile == "" {
		c.OutputFile = def.OutputFile
	}
	if c.IncludePattern == "" {
		c.IncludePattern = def.IncludePattern
	}
	if len(c.RequiredColumns) == 0 {
		c.RequiredColumns = def.RequiredColumns
	}
	if len(c.Encodings) == 0 {
		c.Encodings = def.Encodings
	}
	if c.Delimiter == 0 {
		c.Delimiter = def.Delimiter
	}
	if err := CheckDelimiter(c.Delimiter); err != nil {
		return err
	}
	if c.MaxFileSizeBytes < 0 {
		return fmt.Errorf("max file size must not be negative: %d", c.MaxFileSizeBytes)
	}
	if _, err := filepath.Match(c.IncludePattern, ""); err != nil {
		return fmt.Errorf("invalid include pattern %q: %w", c.IncludePattern, err)
	}
	for _, name := range c.Encodings {
		if _, err := LookupEncoding(name); err != nil {
			return err
		}
	}
	c.RequiredColumns = append([]string(nil), c.RequiredColumns...)
	seen := make(map[string]bool, len(c.RequiredColumns))
	for i, col := range c.RequiredColumns {
		col = normalizeName(col)
		if col == "" {
			return fmt.Errorf("required column %d is blank", i)
		}
		if seen[col] {
			return fmt.Errorf("required column %q listed twice", col)
		}
		seen[col] = true
		c.RequiredColumns[i] = col
	}
	return nil
}

// CheckDelimiter reports whether r can separate CSV fields.
func CheckDelimiter(r rune) error {
	if r == '"' || r == '\r' || r == '\n' || r == utf8.RuneError || !utf8.ValidRune(r) {
		return fmt.Errorf("invalid delimiter %q", r)
	}
	return nil
}
