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
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/kraklabs/lmi/pkg/dataset"
)

var (
	errNoColumns = errors.New("no columns to parse")
	errBinary    = errors.New("binary content")
)

// naTokens are cell values read as null, matching the defaults of common
// dataframe CSV readers.
var naTokens = map[string]bool{
	"":         true,
	"#N/A":     true,
	"#N/A N/A": true,
	"#NA":      true,
	"-1.#IND":  true,
	"-1.#QNAN": true,
	"-NaN":     true,
	"-nan":     true,
	"1.#IND":   true,
	"1.#QNAN":  true,
	"<NA>":     true,
	"N/A":      true,
	"NA":       true,
	"NULL":     true,
	"NaN":      true,
	"None":     true,
	"n/a":      true,
	"nan":      true,
	"null":     true,
}

// ParseCSV parses decoded CSV text into a table.
//
// The first record is the header. A quote inside an unquoted field is
// kept as a literal character. Short records are padded with null;
// records wider than the header are an error. Blank header names become
// "Unnamed: <i>" and repeated names get ".1", ".2" suffixes. Each column's
// kind is inferred from its non-null cells.
func ParseCSV(text string, delimiter rune) (*dataset.Table, error) {
	text = strings.TrimPrefix(text, "\ufeff")
	if err := checkText(text); err != nil {
		return nil, err
	}

	r := csv.NewReader(strings.NewReader(text))
	r.Comma = delimiter
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	header, err := r.Read()
	if err == io.EOF {
		return nil, errNoColumns
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	for i, h := range header {
		if strings.TrimSpace(h) == "" {
			header[i] = fmt.Sprintf("Unnamed: %d", i)
		}
	}
	header = uniqueNames(header)

	cells := make([][]string, len(header))
	nulls := make([][]bool, len(header))
	line := 1
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read record: %w", err)
		}
		line++
		if len(record) > len(header) {
			return nil, fmt.Errorf("line %d: expected %d fields, saw %d", line, len(header), len(record))
		}
		for i := range header {
			if i < len(record) && !naTokens[record[i]] {
				cells[i] = append(cells[i], record[i])
				nulls[i] = append(nulls[i], false)
				continue
			}
			cells[i] = append(cells[i], "")
			nulls[i] = append(nulls[i], true)
		}
	}

	t := dataset.New()
	for i, name := range header {
		if err := t.AddColumn(inferColumn(name, cells[i], nulls[i])); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// maxControlRatio is the share of control characters above which decoded
// text is treated as binary.
const maxControlRatio = 0.05

// checkText rejects text containing NUL, or more than maxControlRatio
// control characters other than tab, LF and CR. A stray form feed or
// SUB in an otherwise textual export is kept.
func checkText(text string) error {
	var runes, controls int
	for i, r := range text {
		runes++
		switch {
		case r == 0:
			return fmt.Errorf("%w: NUL at offset %d", errBinary, i)
		case r == '\t' || r == '\n' || r == '\r':
		case r < 0x20 || r == 0x7f:
			controls++
		}
	}
	if controls > 0 && float64(controls) > maxControlRatio*float64(runes) {
		return fmt.Errorf("%w: %d control characters in %d", errBinary, controls, runes)
	}
	return nil
}

// uniqueNames suffixes repeated names so every name is distinct.
func uniqueNames(names []string) []string {
	out := make([]string, len(names))
	taken := make(map[string]bool, len(names))
	for _, n := range names {
		taken[n] = true
	}
	counts := make(map[string]int, len(names))
	used := make(map[string]bool, len(names))
	for i, n := range names {
		if !used[n] {
			used[n] = true
			out[i] = n
			continue
		}
		for {
			counts[n]++
			candidate := n + "." + strconv.Itoa(counts[n])
			if !taken[candidate] && !used[candidate] {
				n = candidate
				break
			}
		}
		used[n] = true
		out[i] = n
	}
	return out
}

func inferColumn(name string, raw []string, nulls []bool) *dataset.Column {
	kind := dataset.KindNull
	for i, s := range raw {
		if nulls[i] {
			continue
		}
		switch kind {
		case dataset.KindNull, dataset.KindInt:
			if _, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64); err == nil {
				kind = dataset.KindInt
				continue
			}
			if _, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
				kind = dataset.KindFloat
				continue
			}
			kind = dataset.KindString
		case dataset.KindFloat:
			if _, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err != nil {
				kind = dataset.KindString
			}
		}
		if kind == dataset.KindString {
			break
		}
	}

	values := make([]any, len(raw))
	for i, s := range raw {
		if nulls[i] {
			continue
		}
		switch kind {
		case dataset.KindInt:
			v, _ := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
			values[i] = v
		case dataset.KindFloat:
			v, _ := strconv.ParseFloat(strings.TrimSpace(s), 64)
			values[i] = v
		default:
			values[i] = s
		}
	}
	return &dataset.Column{Name: name, Kind: kind, Values: values}
}
