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
	"testing"

	"github.com/stretchr/testify/assert"

	lmitest "github.com/kraklabs/lmi/internal/testing"
)

func TestExtractPeriod(t *testing.T) {
	tests := []struct {
		stem string
		want string
	}{
		{"job_postings_2023-01", "2023-01"},
		{"2023-01", "2023-01"},
		{"report_2023-01_final-x", "2023-01"},
		{"final-x_2023-01", "final-x"},
		{"ab-2023", "ab-2023"},
		{"é-2023a", "é-2023a"},
		{"report_final", UnknownPeriod},
		{"report_2023-1", UnknownPeriod},
		{"report_2023-001", UnknownPeriod},
		{"2023_01", UnknownPeriod},
		{"", UnknownPeriod},
	}
	for _, tt := range tests {
		t.Run(tt.stem, func(t *testing.T) {
			logger, _ := lmitest.CaptureLogger(t)
			assert.Equal(t, tt.want, ExtractPeriod(tt.stem, logger))
		})
	}
}

func TestExtractPeriod_WarnsOnUnknown(t *testing.T) {
	logger, logs := lmitest.CaptureLogger(t)

	ExtractPeriod("postings", logger)
	assert.True(t, logs.Contains("level=WARN", "ingest.period.unknown", "stem=postings"))

	ExtractPeriod("postings_2024-06", logger)
	assert.Equal(t, 1, logs.Count("ingest.period.unknown"))
}

func TestExtractPeriod_NilLogger(t *testing.T) {
	assert.Equal(t, UnknownPeriod, ExtractPeriod("postings", nil))
}
