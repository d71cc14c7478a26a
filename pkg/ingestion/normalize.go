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
	"log/slog"
	"strings"

	"github.com/kraklabs/lmi/pkg/dataset"
)

// Normalizer reconciles a decoded table with the required schema.
type Normalizer struct {
	required []string
	logger   *slog.Logger
	metrics  *Metrics
}

// NewNormalizer creates a normalizer for the given required columns.
// The names are expected to be normalized already (see Config.Validate).
func NewNormalizer(required []string, metrics *Metrics, logger *slog.Logger) *Normalizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Normalizer{
		required: required,
		logger:   logger,
		metrics:  metrics,
	}
}

// Normalize rewrites column names to their trimmed lower-case form and
// appends an all-null column for every required column that is absent.
//
// Existing columns are never removed or reordered. Applying Normalize a
// second time changes nothing. source names the table's origin in the
// warning logged for each missing column.
func (n *Normalizer) Normalize(t *dataset.Table, source string) *dataset.Table {
	t.RenameColumns(normalizeName)

	// Names that collide only after folding get the parser's suffixes.
	for i, name := range uniqueNames(t.Names()) {
		t.Columns()[i].Name = name
	}

	for _, col := range n.required {
		if t.HasColumn(col) {
			continue
		}
		n.logger.Warn("ingest.schema.missing_column", "column", col, "source", source, "fill", "null")
		n.metrics.missingColumn(col)
		t.AddNullColumn(col)
	}
	return t
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
