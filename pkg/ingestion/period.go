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
	"unicode/utf8"
)

// periodTokenLen is the length of a YYYY-MM token.
const periodTokenLen = 7

// ExtractPeriod returns the period token encoded in a file stem.
//
// The stem is split on underscores and the first part that contains a
// hyphen and is exactly seven characters (runes) long is returned, e.g.
// "job_postings_2023-01" yields "2023-01". The token is not checked
// against the calendar, so "ab-2023" is accepted too. When no part
// qualifies a warning is logged and UnknownPeriod is returned.
func ExtractPeriod(stem string, logger *slog.Logger) string {
	for _, part := range strings.Split(stem, "_") {
		if strings.Contains(part, "-") && utf8.RuneCountInString(part) == periodTokenLen {
			return part
		}
	}

	if logger == nil {
		logger = slog.Default()
	}
	logger.Warn("ingest.period.unknown", "stem", stem)
	return UnknownPeriod
}
