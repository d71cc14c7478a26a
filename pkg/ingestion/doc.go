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

// Package ingestion provides the job posting ingestion pipeline for LMI.
//
// The ingestion package discovers raw CSV exports, decodes each one under a
// list of candidate text encodings, normalizes the schema, and combines all
// files into a single dataset that is persisted as a columnar artifact.
//
// # Pipeline Overview
//
// A run processes files in four stages:
//
//  1. Discovery: Recursively find files matching the include pattern
//  2. Decoding: Try utf-8, utf-16, windows-1252 and latin-1 in order
//  3. Normalization: Lowercase column names and fill required columns
//  4. Combination: Concatenate tables and write them through a storage.Sink
//
// Per-file failures never abort a run. A file that cannot be decoded is
// logged at error level and left out; the run only fails when discovery
// finds nothing (ErrDiscovery), when no file yields rows (ErrNoValidData),
// or when the artifact cannot be written (storage.ErrWrite).
//
// # Provenance
//
// Every decoded row carries two extra columns:
//   - source_file: base name of the file it came from
//   - source_month: the first "_"-separated token of the file stem that is
//     seven characters long and contains a hyphen, or "unknown"
//
// # Quick Start
//
//	cfg := ingestion.DefaultConfig()
//	cfg.InputDir = "data/raw"
//
//	pipeline, err := ingestion.NewPipeline(cfg, logger)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	result, err := pipeline.Run(ctx)
//	if errors.Is(err, ingestion.ErrNoValidData) {
//	    // every file failed to decode
//	}
//	fmt.Printf("%d rows from %d files\n", result.Rows, result.FilesLoaded)
//
// # Metrics
//
// Each pipeline records Prometheus metrics on its own registry. Use
// Metrics().WriteTextfile to export them for the node exporter textfile
// collector.
package ingestion
