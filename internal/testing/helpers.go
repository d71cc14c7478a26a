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

package testing

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"

	"github.com/kraklabs/lmi/pkg/dataset"
	"github.com/kraklabs/lmi/pkg/storage"
)

// SetupRawDir creates a temporary input directory for source files.
// The directory is removed when the test finishes.
//
// Example:
//
//	func TestMyFeature(t *testing.T) {
//	    raw := testing.SetupRawDir(t)
//	    testing.WriteCSV(t, raw, "postings_2023-01.csv", "utf-8", "job_title,noc\nCook,63200\n")
//	}
func SetupRawDir(t *testing.T) string {
	t.Helper()

	dir := filepath.Join(t.TempDir(), "raw")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("failed to create raw dir: %v", err)
	}
	return dir
}

// EncodeText encodes content with the named encoding.
//
// Supported names are "utf-8", "utf-8-sig" (with byte order mark),
// "utf-16" (little endian with byte order mark), "windows-1252" and
// "latin-1". Characters the target encoding cannot represent fail the test.
func EncodeText(t *testing.T, encodingName, content string) []byte {
	t.Helper()

	var enc encoding.Encoding
	switch encodingName {
	case "utf-8":
		return []byte(content)
	case "utf-8-sig":
		enc = unicode.UTF8BOM
	case "utf-16":
		enc = unicode.UTF16(unicode.LittleEndian, unicode.UseBOM)
	case "windows-1252":
		enc = charmap.Windows1252
	case "latin-1":
		enc = charmap.ISO8859_1
	default:
		t.Fatalf("unsupported fixture encoding %q", encodingName)
	}

	out, err := enc.NewEncoder().Bytes([]byte(content))
	if err != nil {
		t.Fatalf("failed to encode fixture as %s: %v", encodingName, err)
	}
	return out
}

// WriteCSV writes content to dir/name in the named encoding and returns the
// full path. Parent directories of name are created as needed.
//
// Example:
//
//	testing.WriteCSV(t, raw, "b_2023-02.csv", "latin-1", "job_title,city\nCuisinier,Montréal\n")
func WriteCSV(t *testing.T, dir, name, encodingName, content string) string {
	t.Helper()
	return WriteFile(t, dir, name, EncodeText(t, encodingName, content))
}

// WriteFile writes raw bytes to dir/name and returns the full path.
func WriteFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()

	path := filepath.Join(dir, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("failed to create fixture dir: %v", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("failed to write fixture %s: %v", name, err)
	}
	return path
}

// ReadArtifact loads a Parquet artifact written by the pipeline.
func ReadArtifact(t *testing.T, path string) *dataset.Table {
	t.Helper()

	tbl, err := storage.ReadTable(path)
	if err != nil {
		t.Fatalf("failed to read artifact %s: %v", path, err)
	}
	return tbl
}

// LogBuffer collects log output for assertions. It is safe for concurrent use.
type LogBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

// Write implements io.Writer.
func (b *LogBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

// String returns everything logged so far.
func (b *LogBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// Contains reports whether any logged line contains all of the fragments.
func (b *LogBuffer) Contains(fragments ...string) bool {
	for _, line := range strings.Split(b.String(), "\n") {
		ok := line != ""
		for _, f := range fragments {
			if !strings.Contains(line, f) {
				ok = false
				break
			}
		}
		if ok {
			return true
		}
	}
	return false
}

// Count returns the number of logged lines containing fragment.
func (b *LogBuffer) Count(fragment string) int {
	n := 0
	for _, line := range strings.Split(b.String(), "\n") {
		if strings.Contains(line, fragment) {
			n++
		}
	}
	return n
}

// CaptureLogger returns a debug-level text logger writing to a buffer.
//
// Example:
//
//	logger, logs := testing.CaptureLogger(t)
//	pipeline, _ := ingestion.NewPipeline(cfg, logger)
//	...
//	assert.True(t, logs.Contains("level=ERROR", "bad.csv"))
func CaptureLogger(t *testing.T) (*slog.Logger, *LogBuffer) {
	t.Helper()

	buf := &LogBuffer{}
	logger := slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return logger, buf
}
