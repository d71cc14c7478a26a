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
	"bytes"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// Encoding names accepted in Config.Encodings.
const (
	EncodingUTF8        = "utf-8"
	EncodingUTF16       = "utf-16"
	EncodingWindows1252 = "windows-1252"
	EncodingLatin1      = "latin-1"
)

// DefaultEncodings is the order in which encodings are attempted.
var DefaultEncodings = []string{
	EncodingUTF8,
	EncodingUTF16,
	EncodingWindows1252,
	EncodingLatin1,
}

// errUndecodable is wrapped by every byte-level decoding failure.
var errUndecodable = errors.New("invalid byte sequence")

// TextEncoding decodes raw file bytes into UTF-8 text, failing instead of
// substituting replacement characters.
type TextEncoding struct {
	Name   string
	decode func([]byte) (string, error)
}

// Decode converts b to UTF-8.
func (e TextEncoding) Decode(b []byte) (string, error) {
	s, err := e.decode(b)
	if err != nil {
		return "", fmt.Errorf("%s: %w", e.Name, err)
	}
	return s, nil
}

// LookupEncoding returns the encoding registered under name. Common
// aliases such as "utf8", "cp1252" and "iso-8859-1" are accepted.
func LookupEncoding(name string) (TextEncoding, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "utf-8", "utf8":
		return TextEncoding{Name: EncodingUTF8, decode: decodeUTF8}, nil
	case "utf-16", "utf16":
		return TextEncoding{Name: EncodingUTF16, decode: decodeUTF16}, nil
	case "windows-1252", "cp1252":
		return TextEncoding{Name: EncodingWindows1252, decode: decodeWindows1252}, nil
	case "latin-1", "latin1", "iso-8859-1":
		return TextEncoding{Name: EncodingLatin1, decode: decodeLatin1}, nil
	default:
		return TextEncoding{}, fmt.Errorf("unsupported encoding %q", name)
	}
}

// resolveEncodings maps names to encodings, preserving order.
func resolveEncodings(names []string) ([]TextEncoding, error) {
	encs := make([]TextEncoding, 0, len(names))
	for _, name := range names {
		enc, err := LookupEncoding(name)
		if err != nil {
			return nil, err
		}
		encs = append(encs, enc)
	}
	return encs, nil
}

func decodeUTF8(b []byte) (string, error) {
	if !utf8.Valid(b) {
		return "", errUndecodable
	}
	return decodeWith(unicode.UTF8BOM, b)
}

// decodeUTF16 requires a byte order mark. Without one almost any even
// length input decodes, which would hide single-byte files behind noise.
func decodeUTF16(b []byte) (string, error) {
	s, err := decodeWith(unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM), b)
	if err != nil {
		return "", err
	}
	if len(b)%2 != 0 || strings.ContainsRune(s, utf8.RuneError) {
		return "", errUndecodable
	}
	return s, nil
}

// windows1252Undefined are the code points cp1252 leaves unassigned.
var windows1252Undefined = []byte{0x81, 0x8D, 0x8F, 0x90, 0x9D}

func decodeWindows1252(b []byte) (string, error) {
	for _, c := range windows1252Undefined {
		if bytes.IndexByte(b, c) >= 0 {
			return "", fmt.Errorf("%w: undefined byte 0x%02X", errUndecodable, c)
		}
	}
	return decodeWith(charmap.Windows1252, b)
}

func decodeLatin1(b []byte) (string, error) {
	return decodeWith(charmap.ISO8859_1, b)
}

func decodeWith(enc encoding.Encoding, b []byte) (string, error) {
	out, err := enc.NewDecoder().Bytes(b)
	if err != nil {
		return "", fmt.Errorf("%w: %v", errUndecodable, err)
	}
	return string(out), nil
}
