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

// Package storage persists combined job posting datasets.
//
// The Sink interface decouples the ingestion pipeline from the on-disk
// format. ParquetSink is the default implementation: it writes a
// Snappy-compressed Parquet file through a temporary file and an atomic
// rename, so readers never observe a partially written artifact.
//
// # Quick Start
//
//	sink := storage.NewParquetSink(logger)
//	err := sink.Persist(ctx, table, "data/processed/job_postings.parquet", storage.Metadata{
//	    RunID:       runID,
//	    ColumnOrder: table.Names(),
//	})
//	if errors.Is(err, storage.ErrWrite) {
//	    // destination not writable
//	}
//
// # Reading Artifacts
//
// Inspect reports the row count, column types, null counts and key/value
// metadata of an artifact. ReadTable loads it back into a dataset.Table with
// the logical column order restored.
package storage
