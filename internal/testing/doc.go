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

// Package testing provides test helpers for ingestion tests.
//
// # Quick Start
//
// Create an input directory and seed it with encoded CSV files:
//
//	func TestMyFeature(t *testing.T) {
//	    raw := testing.SetupRawDir(t)
//	    testing.WriteCSV(t, raw, "a_2023-01.csv", "utf-8", "job_title,noc\nCook,63200\n")
//	    testing.WriteCSV(t, raw, "b_2023-02.csv", "utf-16", "job_title,city\nCuisinier,Québec\n")
//
//	    // Run the pipeline against raw...
//	}
//
// # Fixtures
//
//   - SetupRawDir: Temporary input directory
//   - EncodeText: Encode text as utf-8, utf-8-sig, utf-16, windows-1252 or latin-1
//   - WriteCSV: Write an encoded CSV fixture
//   - WriteFile: Write raw bytes, e.g. binary garbage
//   - ReadArtifact: Load a written Parquet artifact
//
// # Logs
//
// CaptureLogger returns a debug-level logger and a LogBuffer for asserting
// on structured log lines:
//
//	logger, logs := testing.CaptureLogger(t)
//	...
//	assert.True(t, logs.Contains("level=WARN", "ingest.period.unknown"))
//
// Import the package under an alias to avoid clashing with the standard
// library:
//
//	import lmitest "github.com/kraklabs/lmi/internal/testing"
package testing
