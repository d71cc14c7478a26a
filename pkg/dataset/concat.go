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

package dataset

// Concat stacks tables row-wise.
//
// The result's columns are the union of the inputs' columns in order of
// first appearance. Rows keep their per-table order and tables keep their
// argument order. Cells for columns a table lacks are null. When the same
// column has different kinds across tables the kinds are unified: null
// yields to anything, int widens to float, and any other mix becomes
// string.
func Concat(tables ...*Table) *Table {
	var order []string
	kinds := make(map[string]Kind)
	total := 0

	for _, t := range tables {
		total += t.NumRows()
		for _, c := range t.Columns() {
			k, seen := kinds[c.Name]
			if !seen {
				order = append(order, c.Name)
				kinds[c.Name] = c.Kind
				continue
			}
			kinds[c.Name] = unify(k, c.Kind)
		}
	}

	out := WithRows(total)
	for _, name := range order {
		kind := kinds[name]
		values := make([]any, 0, total)
		for _, t := range tables {
			src := t.Column(name)
			if src == nil {
				values = append(values, make([]any, t.NumRows())...)
				continue
			}
			for _, v := range src.Values {
				values = append(values, convert(v, kind))
			}
		}
		out.columns = append(out.columns, &Column{Name: name, Kind: kind, Values: values})
	}
	return out
}

func unify(a, b Kind) Kind {
	switch {
	case a == b:
		return a
	case a == KindNull:
		return b
	case b == KindNull:
		return a
	case (a == KindInt && b == KindFloat) || (a == KindFloat && b == KindInt):
		return KindFloat
	default:
		return KindString
	}
}

func convert(v any, to Kind) any {
	if v == nil {
		return nil
	}
	switch to {
	case KindFloat:
		if i, ok := v.(int64); ok {
			return float64(i)
		}
	case KindString:
		if _, ok := v.(string); !ok {
			return FormatValue(v)
		}
	}
	return v
}
