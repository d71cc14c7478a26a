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
	"io"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
	"golang.org/x/term"
)

// Bar width bounds in cells. Narrow terminals shrink the bar so the count
// and timing suffix stay on one line.
const (
	maxBarWidth = 40
	minBarWidth = 10
	barOverhead = 60
)

// ProgressConfig determines if and how progress should be displayed.
type ProgressConfig struct {
	// Enabled indicates whether progress bars should be shown.
	// Disabled when --json or -q is used, or when stderr is not a TTY.
	Enabled bool

	// Writer is where progress output goes (always os.Stderr).
	Writer io.Writer

	// NoColor disables colored output in progress bars.
	NoColor bool

	// Width is the bar width in cells.
	Width int
}

// NewProgressConfig creates a progress configuration based on global flags
// and TTY detection.
func NewProgressConfig(globals GlobalFlags) ProgressConfig {
	fd := os.Stderr.Fd()
	tty := isatty.IsTerminal(fd)

	return ProgressConfig{
		Enabled: tty && !globals.Quiet && !globals.JSON,
		Writer:  os.Stderr,
		NoColor: globals.NoColor,
		Width:   barWidth(fd, tty),
	}
}

func barWidth(fd uintptr, tty bool) int {
	if !tty {
		return maxBarWidth
	}
	cols, _, err := term.GetSize(int(fd))
	if err != nil {
		return maxBarWidth
	}
	return clampWidth(cols - barOverhead)
}

func clampWidth(w int) int {
	switch {
	case w > maxBarWidth:
		return maxBarWidth
	case w < minBarWidth:
		return minBarWidth
	default:
		return w
	}
}

// NewProgressBar creates a progress bar with consistent styling.
// Returns nil if progress is disabled, allowing callers to safely check for nil.
//
// The pipeline sets the real total with ChangeMax once discovery finishes.
func NewProgressBar(cfg ProgressConfig, total int64, description string) *progressbar.ProgressBar {
	if !cfg.Enabled {
		return nil
	}

	width := cfg.Width
	if width == 0 {
		width = maxBarWidth
	}

	return progressbar.NewOptions64(total,
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWriter(cfg.Writer),
		progressbar.OptionShowCount(),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetWidth(width),
		progressbar.OptionEnableColorCodes(!cfg.NoColor),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
}
