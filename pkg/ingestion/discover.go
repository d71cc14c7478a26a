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
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
)

// Sentinel errors for run-level failures. Per-file problems never surface
// as errors; they are logged and the file is left out.
var (
	// ErrDiscovery means the input directory is missing or holds no source files.
	ErrDiscovery = errors.New("discovery failed")

	// ErrNoValidData means every discovered file failed to decode.
	ErrNoValidData = errors.New("no valid data")
)

// Skip reasons recorded in DiscoverResult.SkipReasons.
const (
	SkipExcluded    = "excluded"
	SkipExcludedDir = "excluded_dir"
	SkipTooLarge    = "too_large"
)

// SourceFile is a discovered input file.
type SourceFile struct {
	Path     string // Relative path from the input directory, slash separated
	FullPath string
	Size     int64
}

// DiscoverResult lists the files found under the input directory.
type DiscoverResult struct {
	RootPath    string
	Files       []SourceFile
	SkipReasons map[string]int
}

// Discoverer walks the input directory for source files.
type Discoverer struct {
	include     string
	exclude     []string
	maxFileSize int64
	logger      *slog.Logger
	metrics     *Metrics
}

// NewDiscoverer creates a discoverer from cfg.
func NewDiscoverer(cfg Config, metrics *Metrics, logger *slog.Logger) *Discoverer {
	if logger == nil {
		logger = slog.Default()
	}
	include := cfg.IncludePattern
	if include == "" {
		include = DefaultConfig().IncludePattern
	}
	return &Discoverer{
		include:     include,
		exclude:     cfg.ExcludeGlobs,
		maxFileSize: cfg.MaxFileSizeBytes,
		logger:      logger,
		metrics:     metrics,
	}
}

// Discover recursively collects files under root whose base name matches
// the include pattern, sorted by relative path.
//
// It fails with ErrDiscovery when root does not exist, is not a directory,
// or yields no files.
func (d *Discoverer) Discover(root string) (*DiscoverResult, error) {
	info, err := os.Stat(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: input directory %s does not exist", ErrDiscovery, root)
		}
		return nil, fmt.Errorf("%w: stat %s: %v", ErrDiscovery, root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: input path %s is not a directory", ErrDiscovery, root)
	}

	d.logger.Info("ingest.discover.start", "root", root, "pattern", d.include)

	files, skipReasons, err := d.walk(root)
	if err != nil {
		return nil, fmt.Errorf("%w: walk %s: %v", ErrDiscovery, root, err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: no files matching %s found in %s", ErrDiscovery, d.include, root)
	}

	// Directory order is platform dependent.
	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })

	d.metrics.discovered(len(files))
	d.logger.Info("ingest.discover.complete", "files", len(files), "skipped", skipReasons)

	return &DiscoverResult{RootPath: root, Files: files, SkipReasons: skipReasons}, nil
}

func (d *Discoverer) walk(root string) ([]SourceFile, map[string]int, error) {
	var files []SourceFile
	skipReasons := make(map[string]int)

	skip := func(reason string) {
		skipReasons[reason]++
		d.metrics.skipped(reason)
	}

	err := filepath.WalkDir(root, func(p string, entry fs.DirEntry, err error) error {
		if err != nil {
			if p == root {
				return err
			}
			d.logger.Warn("ingest.discover.walk_error", "path", p, "err", err)
			return nil
		}

		rel, err := filepath.Rel(root, p)
		if err != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if entry.IsDir() {
			if p != root && d.excluded(rel) {
				skip(SkipExcludedDir)
				return filepath.SkipDir
			}
			return nil
		}

		if ok, _ := path.Match(d.include, entry.Name()); !ok {
			return nil
		}
		if d.excluded(rel) {
			skip(SkipExcluded)
			return nil
		}

		// Stat follows symlinks to files.
		info, err := os.Stat(p)
		if err != nil || !info.Mode().IsRegular() {
			return nil
		}
		if d.maxFileSize > 0 && info.Size() > d.maxFileSize {
			skip(SkipTooLarge)
			d.logger.Warn("ingest.discover.skip_large_file", "path", rel, "size", info.Size(), "limit", d.maxFileSize)
			return nil
		}

		files = append(files, SourceFile{Path: rel, FullPath: p, Size: info.Size()})
		return nil
	})

	return files, skipReasons, err
}

func (d *Discoverer) excluded(rel string) bool {
	for _, pattern := range d.exclude {
		if matchesGlob(rel, pattern) {
			return true
		}
	}
	return false
}

// matchesGlob matches a slash separated path against a glob pattern.
//
// Segments support the path.Match syntax (*, ?, [a-z]); a "**" segment
// matches any number of segments including none. Patterns are unanchored:
// "archive/**" also matches "2023/archive/jan.csv".
func matchesGlob(rel, pattern string) bool {
	pattern = strings.Trim(filepath.ToSlash(pattern), "/")
	if pattern == "" {
		return false
	}
	patSegs := append([]string{"**"}, strings.Split(pattern, "/")...)
	return matchSegments(strings.Split(rel, "/"), patSegs)
}

func matchSegments(pathSegs, patSegs []string) bool {
	if len(patSegs) == 0 {
		return len(pathSegs) == 0
	}
	if patSegs[0] == "**" {
		for i := 0; i <= len(pathSegs); i++ {
			if matchSegments(pathSegs[i:], patSegs[1:]) {
				return true
			}
		}
		return false
	}
	if len(pathSegs) == 0 {
		return false
	}
	if ok, err := path.Match(patSegs[0], pathSegs[0]); err != nil || !ok {
		return false
	}
	return matchSegments(pathSegs[1:], patSegs[1:])
}
