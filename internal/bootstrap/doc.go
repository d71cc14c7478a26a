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

// Package bootstrap handles LMI workspace initialization and configuration.
//
// A workspace is a directory holding the raw input directory, the processed
// output directory and an optional .lmi/project.yaml configuration file.
//
// # Initialization Workflow
//
//	info, err := bootstrap.InitWorkspace(bootstrap.WorkspaceOptions{Root: "."}, logger)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("Drop CSV exports into %s\n", info.InputDir)
//
// # Idempotency
//
// InitWorkspace is idempotent: existing directories are left alone and an
// existing configuration file is only replaced when Force is set.
//
// # Configuration
//
// The configuration file mirrors ingestion.Config:
//
//	version: "1"
//	input_dir: data/raw
//	output_file: data/processed/job_postings.parquet
//	include: "*.csv"
//	exclude:
//	  - archive/**
//	required_columns: [job_title, noc, naics, province, city, vacancies, salary]
//	encodings: [utf-8, utf-16, windows-1252, latin-1]
//	max_file_size_bytes: 0
//	delimiter: ","
//	log_level: info
//
// Load it with LoadWorkspaceConfig and overlay it on the defaults with
// WorkspaceConfig.Apply.
package bootstrap
