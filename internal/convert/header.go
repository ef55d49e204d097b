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

package convert

import (
	"fmt"
	"io"
	"strings"

	"github.com/mlnoga/hdfconvert/internal/fits"
	"github.com/mlnoga/hdfconvert/internal/hdf5"
)

const schemaVersion = "0.1"
const converterName = "hdf_convert"
const converterVersion = "0.1.4"

// attributeValue extracts the attribute value from a header record's raw
// value field: surrounding single quotes are stripped, and the remainder
// trimmed again.
func attributeValue(value string) string {
	if len(value) >= 2 && value[0] == '\'' && value[len(value)-1] == '\'' {
		return strings.TrimSpace(value[1 : len(value)-1])
	}
	return value
}

// TranslateHeader writes the converter's fixed metadata attributes and then
// copies the input header records onto the output root group as scalar string
// attributes. COMMENT and HISTORY cards and records without an '=' sign are
// dropped. The first occurrence of a keyword wins; duplicates produce a
// warning and keep the first value.
func TranslateHeader(records []string, root *hdf5.Group, logWriter io.Writer) error {
	fixed := [][2]string{
		{"SCHEMA_VERSION", schemaVersion},
		{"HDF5_CONVERTER", converterName},
		{"HDF5_CONVERTER_VERSION", converterVersion},
	}
	for _, kv := range fixed {
		if err := root.WriteStringAttribute(kv[0], kv[1]); err != nil {
			return err
		}
	}

	for _, record := range records {
		if strings.HasPrefix(record, "COMMENT") || strings.HasPrefix(record, "HISTORY") {
			continue
		}
		name, value, ok := fits.KeyValue(record)
		if !ok || name == "" {
			continue
		}
		if root.HasAttribute(name) {
			fmt.Fprintf(logWriter, "Warning: Skipping duplicate attribute '%s'\n", name)
			continue
		}
		if err := root.WriteStringAttribute(name, attributeValue(value)); err != nil {
			return err
		}
	}
	return nil
}
