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

// Package dataset provides the in-memory table that flows through the
// ingestion pipeline.
//
// A Table is a list of named columns of equal length. Cells are nil for
// null, or int64, float64 or string depending on the column Kind. Null is
// a first-class value: it is never encoded as an empty string or zero, so
// a column that is absent from a source file stays distinguishable from a
// column that is present but blank.
//
// Concat stacks tables row-wise with a union of their columns:
//
//	combined := dataset.Concat(january, february)
//	fmt.Println(combined.NumRows(), combined.Names())
package dataset
