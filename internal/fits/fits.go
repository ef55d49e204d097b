// Copyright (C) 2020 Markus L. Noga
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

// Package fits reads multi-axis FITS images as a block-pixel source.
// The header is kept as the raw sequence of 80-character records so callers
// can translate keywords verbatim; the mandatory shape keys are parsed out.
// Spec here:   https://fits.gsfc.nasa.gov/standard40/fits_standard40aa-le.pdf
// Primer here: https://fits.gsfc.nasa.gov/fits_primer.html
package fits

import (
	"fmt"
	"strconv"
	"strings"
)

const blockSize = 2880   // block size of FITS header and data units
const RecordSize = 80    // line size of a FITS header
const bufLen = 16 * 1024 // input buffer length for reading pixel data

// Header holds the raw card images of the primary header, END excluded,
// in file order.
type Header struct {
	Records []string
	Length  int64 // header size in bytes including the END block padding
}

// KeyValue splits a header record into its keyword and raw value field.
// The value runs from the '=' sign to the last '/', if any, with surrounding
// whitespace dropped. Records without an '=' sign return ok=false. COMMENT
// and HISTORY cards get no special treatment: they return ok=true when their
// text contains an '='.
func KeyValue(record string) (name, value string, ok bool) {
	eq := strings.IndexByte(record, '=')
	if eq < 0 {
		return "", "", false
	}
	name = strings.TrimSpace(record[:eq])
	value = record[eq+1:]
	if slash := strings.LastIndexByte(value, '/'); slash >= 0 {
		value = value[:slash]
	}
	return name, strings.TrimSpace(value), true
}

// IntValue returns the integer value of the first record with the given
// keyword.
func (h *Header) IntValue(key string) (int64, error) {
	for _, record := range h.Records {
		name, value, ok := KeyValue(record)
		if !ok || name != key {
			continue
		}
		val, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("header key %s has non-integer value %q", key, value)
		}
		return val, nil
	}
	return 0, fmt.Errorf("header does not contain key %s", key)
}

// logicalValue returns the boolean value of the first record with the given
// keyword, false if absent.
func (h *Header) logicalValue(key string) bool {
	for _, record := range h.Records {
		name, value, ok := KeyValue(record)
		if ok && name == key {
			return len(value) > 0 && (value[0] == 'T' || value[0] == 't')
		}
	}
	return false
}
