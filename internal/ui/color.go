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

// Package ui provides console output helpers for the LMI CLI.
//
// Messages go to a single writer (stdout by default) so commands can be
// silenced with --quiet or redirected in tests. Colors respect the
// --no-color flag and the NO_COLOR environment variable.
//
// Color usage:
//   - Red: Errors, failed files
//   - Yellow: Warnings, skipped files
//   - Green: Success
//   - Cyan: Counts and informational messages
//   - Bold: Headers and labels
//   - Dim: Paths
package ui

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/fatih/color"
)

var (
	// Red is used for error messages and failures.
	Red = color.New(color.FgRed)

	// Yellow is used for warnings.
	Yellow = color.New(color.FgYellow)

	// Green is used for success messages.
	Green = color.New(color.FgGreen)

	// Cyan is used for informational messages and counts.
	Cyan = color.New(color.FgCyan)

	// Bold is used for headers and labels.
	Bold = color.New(color.Bold)

	// Dim is used for paths and other secondary details.
	Dim = color.New(color.Faint)
)

var (
	mu  sync.Mutex
	out io.Writer = os.Stdout
)

// InitColors disables color output when noColor is set.
func InitColors(noColor bool) {
	color.NoColor = noColor
}

// SetOutput redirects all messages to w and returns the previous writer.
// Passing io.Discard silences the CLI.
func SetOutput(w io.Writer) io.Writer {
	mu.Lock()
	defer mu.Unlock()
	prev := out
	out = w
	return prev
}

func printLine(c *color.Color, text string) {
	mu.Lock()
	defer mu.Unlock()
	_, _ = c.Fprintln(out, text)
}

// Success prints a green message with a checkmark prefix.
//
// Example output: "✓ Wrote 1,204 rows to data/processed/job_postings.parquet"
func Success(msg string) { printLine(Green, "✓ "+msg) }

// Successf is the formatted form of Success.
func Successf(format string, args ...any) { Success(fmt.Sprintf(format, args...)) }

// Warning prints a yellow message with a warning prefix.
//
// Example output: "⚠ 2 files could not be decoded"
func Warning(msg string) { printLine(Yellow, "⚠ "+msg) }

// Warningf is the formatted form of Warning.
func Warningf(format string, args ...any) { Warning(fmt.Sprintf(format, args...)) }

// Error prints a red message with an X prefix.
func Error(msg string) { printLine(Red, "✗ "+msg) }

// Errorf is the formatted form of Error.
func Errorf(format string, args ...any) { Error(fmt.Sprintf(format, args...)) }

// Info prints a cyan message with an info prefix.
func Info(msg string) { printLine(Cyan, "ℹ "+msg) }

// Infof is the formatted form of Info.
func Infof(format string, args ...any) { Info(fmt.Sprintf(format, args...)) }

// Header prints a bold header with an underline separator.
//
// Example output:
//
//	Ingestion Summary
//	=================
func Header(text string) {
	mu.Lock()
	defer mu.Unlock()
	_, _ = Bold.Fprintln(out, text)
	_, _ = fmt.Fprintln(out, strings.Repeat("=", len([]rune(text))))
}

// Plain prints an uncolored line.
func Plain(text string) {
	mu.Lock()
	defer mu.Unlock()
	_, _ = fmt.Fprintln(out, text)
}

// Writer returns the current output writer.
func Writer() io.Writer {
	mu.Lock()
	defer mu.Unlock()
	return out
}

// Label returns a bold label for inline use.
func Label(text string) string {
	return Bold.Sprint(text)
}

// DimText returns dim text for paths and secondary details.
func DimText(text string) string {
	return Dim.Sprint(text)
}

// CountText returns a cyan count value.
func CountText(count int) string {
	return Cyan.Sprint(count)
}
