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

package storage

import (
	"context"
	"errors"

	"github.com/kraklabs/lmi/pkg/dataset"
)

// ErrWrite is wrapped by every failure to create or write an artifact.
var ErrWrite = errors.New("write failed")

// Metadata keys stored alongside the data.
const (
	MetaRunID       = "lmi.run_id"
	MetaColumnOrder = "lmi.column_order"
)

// Metadata describes the run that produced an artifact.
type Metadata struct {
	// RunID identifies the ingestion run.
	RunID string

	// ColumnOrder is the logical column order of the dataset. Formats that
	// reorder columns physically use it to restore the original order.
	ColumnOrder []string

	// Extra holds additional key/value pairs.
	Extra map[string]string
}

// Sink persists a combined dataset.
type Sink interface {
	// Persist writes t to dest, creating parent directories as needed and
	// replacing any existing file. Failures wrap ErrWrite.
	Persist(ctx context.Context, t *dataset.Table, dest string, meta Metadata) error
}
