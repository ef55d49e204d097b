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
	"io"
	"math"
	"os"
	"strconv"
	"strings"
)

// File is an open FITS image. It keeps the underlying file handle so pixel
// cubes can be read per polarization with seeks into the data unit.
type File struct {
	Name   string
	Header Header
	Bitpix int64   // bits per pixel value; negative values are floating point
	Naxisn []int64 // axis extents, most quickly varying dimension first (X,Y,...)

	f         *os.File
	dataStart int64 // byte offset of the primary data unit
}

// Open reads the primary header of the named FITS file and parses the
// mandatory shape keywords. Pixel data is not read.
func Open(fileName string) (*File, error) {
	osf, err := os.Open(fileName)
	if err != nil {
		return nil, err
	}
	f := &File{Name: fileName, f: osf}
	if err := f.readHeader(); err != nil {
		osf.Close()
		return nil, err
	}
	return f, nil
}

// Close releases the underlying file handle.
func (f *File) Close() error { return f.f.Close() }

// CubeSize returns the pixel count of one polarization's cube, i.e. the
// product of the first three axis extents.
func (f *File) CubeSize() int64 {
	n := int64(1)
	for i, naxis := range f.Naxisn {
		if i > 2 {
			break
		}
		n *= naxis
	}
	return n
}

// readHeader reads 2880-byte header blocks until the END record, retaining
// every card image, and parses SIMPLE, BITPIX and the NAXIS keys.
func (f *File) readHeader() error {
	buf := make([]byte, blockSize)
	end := false
	for !end {
		if _, err := io.ReadFull(f.f, buf); err != nil {
			return fmt.Errorf("reading header block: %w", err)
		}
		f.Header.Length += blockSize

		for lineNo := 0; lineNo < blockSize/RecordSize; lineNo++ {
			record := string(buf[lineNo*RecordSize : (lineNo+1)*RecordSize])
			if strings.TrimRight(record[:8], " ") == "END" {
				end = true
				break
			}
			f.Header.Records = append(f.Header.Records, record)
		}
	}
	f.dataStart = f.Header.Length

	if !f.Header.logicalValue("SIMPLE") {
		return fmt.Errorf("not a valid FITS file; SIMPLE=T missing in header")
	}
	var err error
	if f.Bitpix, err = f.Header.IntValue("BITPIX"); err != nil {
		return err
	}
	naxis, err := f.Header.IntValue("NAXIS")
	if err != nil {
		return err
	}
	if naxis < 0 || naxis > 999 {
		return fmt.Errorf("invalid NAXIS value %d", naxis)
	}
	f.Naxisn = make([]int64, naxis)
	for i := int64(1); i <= naxis; i++ {
		name := "NAXIS" + strconv.FormatInt(i, 10)
		if f.Naxisn[i-1], err = f.Header.IntValue(name); err != nil {
			return err
		}
	}
	return nil
}

// ReadCube reads the FP32 pixel cube of polarization s into dst, which must
// hold exactly one cube. Pixels are converted from FITS big-endian byte
// order; NaN values pass through unchanged.
func (f *File) ReadCube(s int64, dst []float32) error {
	cube := f.CubeSize()
	if int64(len(dst)) != cube {
		return fmt.Errorf("destination holds %d pixels, cube has %d", len(dst), cube)
	}
	if _, err := f.f.Seek(f.dataStart+s*cube*4, io.SeekStart); err != nil {
		return fmt.Errorf("seeking to polarization %d: %w", s, err)
	}

	buf := make([]byte, bufLen)
	dataIndex := 0
	for dataIndex < len(dst) {
		bytesToRead := (len(dst) - dataIndex) * 4
		if bytesToRead > bufLen {
			bytesToRead = bufLen
		}
		if _, err := io.ReadFull(f.f, buf[:bytesToRead]); err != nil {
			return fmt.Errorf("reading pixel data: %w", err)
		}
		for i := 0; i < bytesToRead; i += 4 {
			dst[dataIndex+(i>>2)] = math.Float32frombits(binary.BigEndian.Uint32(buf[i:]))
		}
		dataIndex += bytesToRead >> 2
	}
	return nil
}
