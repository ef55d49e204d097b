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

package fits

import (
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"testing"
)

// card formats one 80-character header record.
func card(name, value string) string {
	return fmt.Sprintf("%-8s= %-70s", name, value)[:RecordSize]
}

// rawCard pads free-form text, e.g. COMMENT records, to one record.
func rawCard(text string) string {
	return fmt.Sprintf("%-80s", text)[:RecordSize]
}

// WriteTestFile builds a minimal FITS file with the given shape, extra
// header cards and big-endian FP32 pixel payload.
func WriteTestFile(path string, bitpix int, naxisn []int64, extra []string, data []float32) error {
	cards := []string{
		card("SIMPLE", "T"),
		card("BITPIX", fmt.Sprintf("%d", bitpix)),
		card("NAXIS", fmt.Sprintf("%d", len(naxisn))),
	}
	for i, naxis := range naxisn {
		cards = append(cards, card(fmt.Sprintf("NAXIS%d", i+1), fmt.Sprintf("%d", naxis)))
	}
	cards = append(cards, extra...)
	cards = append(cards, rawCard("END"))

	var buf []byte
	for _, c := range cards {
		buf = append(buf, c...)
	}
	for len(buf)%blockSize != 0 {
		buf = append(buf, ' ')
	}
	for _, v := range data {
		buf = binary.BigEndian.AppendUint32(buf, math.Float32bits(v))
	}
	for len(buf)%blockSize != 0 {
		buf = append(buf, 0)
	}
	return os.WriteFile(path, buf, 0666)
}

func TestOpenParsesShape(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shape.fits")
	data := make([]float32, 2*3*4)
	for i := range data {
		data[i] = float32(i)
	}
	extra := []string{
		card("OBJECT", "'NGC 1068     '"),
		rawCard("COMMENT hello"),
	}
	if err := WriteTestFile(path, -32, []int64{2, 3, 4}, extra, data); err != nil {
		t.Fatal(err)
	}

	f, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	if f.Bitpix != -32 {
		t.Errorf("bitpix=%d; want -32", f.Bitpix)
	}
	if len(f.Naxisn) != 3 || f.Naxisn[0] != 2 || f.Naxisn[1] != 3 || f.Naxisn[2] != 4 {
		t.Errorf("naxisn=%v; want [2 3 4]", f.Naxisn)
	}
	if f.CubeSize() != 24 {
		t.Errorf("cube size=%d; want 24", f.CubeSize())
	}
	// 3 mandatory + 3 axis + 2 extra cards; END terminates the scan
	if len(f.Header.Records) != 8 {
		t.Errorf("header records=%d; want 8", len(f.Header.Records))
	}
}

func TestReadCubePerPolarization(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pol.fits")
	data := make([]float32, 2*2*2*2)
	for i := range data {
		data[i] = float32(i)
	}
	data[5] = float32(math.NaN())
	if err := WriteTestFile(path, -32, []int64{2, 2, 2, 2}, nil, data); err != nil {
		t.Fatal(err)
	}

	f, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	dst := make([]float32, 8)
	for s := int64(0); s < 2; s++ {
		if err := f.ReadCube(s, dst); err != nil {
			t.Fatal(err)
		}
		for i, got := range dst {
			want := data[int(s)*8+i]
			if want != want {
				if got == got {
					t.Errorf("s=%d pixel %d=%g; want NaN", s, i, got)
				}
				continue
			}
			if got != want {
				t.Errorf("s=%d pixel %d=%g; want %g", s, i, got, want)
			}
		}
	}

	if err := f.ReadCube(0, make([]float32, 3)); err == nil {
		t.Errorf("ReadCube with wrong destination size did not fail")
	}
}

func TestOpenRejectsNonFITS(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.fits")
	buf := make([]byte, blockSize)
	for i := range buf {
		buf[i] = ' '
	}
	copy(buf, rawCard("END"))
	if err := os.WriteFile(path, buf, 0666); err != nil {
		t.Fatal(err)
	}
	if _, err := Open(path); err == nil {
		t.Errorf("Open accepted a file without SIMPLE=T")
	}
}

func TestKeyValue(t *testing.T) {
	tcs := []struct {
		record      string
		name, value string
		ok          bool
	}{
		{card("NAXIS", "3 / number of axes"), "NAXIS", "3", true},
		{card("OBJECT", "'NGC 1068     '"), "OBJECT", "'NGC 1068     '", true},
		{rawCard("COMMENT hello"), "", "", false},
		{card("SLASHES", "a/b/c / note"), "SLASHES", "a/b/c", true},
	}
	for _, tc := range tcs {
		name, value, ok := KeyValue(tc.record)
		if ok != tc.ok || name != tc.name || value != tc.value {
			t.Errorf("KeyValue(%q)=%q,%q,%v; want %q,%q,%v",
				tc.record, name, value, ok, tc.name, tc.value, tc.ok)
		}
	}
}
