// Respawn - Gaming Wellbeing Data Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/respawn

package dataset

import (
	"errors"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

// ErrInvalidUTF8 is returned by the strict UTF-8 decoder.
var ErrInvalidUTF8 = errors.New("invalid UTF-8 byte sequence")

// Encoding is a named text decoding into UTF-8.
type Encoding struct {
	Name string
	enc  encoding.Encoding // nil means strict UTF-8
}

// Supported encodings. Latin-1 and ISO-8859-1 share a code page; both names
// are kept because survey exports label themselves either way.
var (
	UTF8        = Encoding{Name: "utf-8"}
	Latin1      = Encoding{Name: "latin-1", enc: charmap.ISO8859_1}
	Windows1252 = Encoding{Name: "windows-1252", enc: charmap.Windows1252}
	ISO88591    = Encoding{Name: "iso-8859-1", enc: charmap.ISO8859_1}
)

// FallbackEncodings is the probe order for survey exports.
func FallbackEncodings() []Encoding {
	return []Encoding{UTF8, Latin1, Windows1252, ISO88591}
}

// Decode converts raw bytes to UTF-8.
func (e Encoding) Decode(raw []byte) ([]byte, error) {
	if e.enc == nil {
		if !utf8.Valid(raw) {
			return nil, ErrInvalidUTF8
		}
		return raw, nil
	}
	return e.enc.NewDecoder().Bytes(raw)
}

// String implements fmt.Stringer.
func (e Encoding) String() string { return e.Name }
