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

// Package convert runs the FITS to HDF5 conversion pipeline: it translates
// the header onto the output root group, then per polarization reads one
// cube into memory, computes the transposed copy, the per-slice, per-profile
// and per-cube statistics and the histograms while the pixels are hot, and
// writes the pixel hyperslabs. Statistics datasets are written once at the
// end, and the output becomes visible only through an atomic rename.
//
// The conversion holds the full cube in memory: peak use is about
// 2*depth*height*width*4 bytes for the standard and rotated cubes, roughly
// 16 GiB for a 4K x 4K x 128 cube. Machines without that much physical
// memory cannot convert such files.
package convert

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/pbnjay/memory"

	"github.com/mlnoga/hdfconvert/internal/cube"
	"github.com/mlnoga/hdfconvert/internal/fits"
	"github.com/mlnoga/hdfconvert/internal/hdf5"
)

// Options tunes a conversion run. The zero value selects one worker per
// core and bounds the buffer footprint by physical memory.
type Options struct {
	Workers  int    // parallelism of the statistics passes; 0 = NumCPU
	MaxBytes uint64 // buffer memory bound; 0 = physical memory
}

// OutputName derives the output file name from the input name: a trailing
// .fits suffix is replaced, case-insensitively, by .hdf5; otherwise .hdf5
// is appended.
func OutputName(inputName string) string {
	const suffix = ".fits"
	if len(inputName) > len(suffix) && strings.EqualFold(inputName[len(inputName)-len(suffix):], suffix) {
		return inputName[:len(inputName)-len(suffix)] + ".hdf5"
	}
	return inputName + ".hdf5"
}

// throughput formats a phase duration as seconds plus data rate.
func throughput(bytes int64, elapsed time.Duration) string {
	secs := elapsed.Seconds()
	if secs <= 0 {
		secs = 1e-9
	}
	return fmt.Sprintf("%.3g seconds (%s/s)", secs, humanize.Bytes(uint64(float64(bytes)/secs)))
}

// Run converts the named FITS file into the named HDF5 file. The output is
// written under outputName+".tmp" and renamed on success; on failure the
// temporary file stays behind for inspection and the error wraps one of the
// kinds in errors.go.
func Run(inputName, outputName string, opt Options, logWriter io.Writer) error {
	tStart := time.Now()
	fmt.Fprintf(logWriter, "Converting FITS file %s to HDF5 file %s\n", inputName, outputName)

	in, err := fits.Open(inputName)
	if err != nil {
		if _, ok := err.(*os.PathError); ok {
			return fmt.Errorf("%w: %s", ErrInputOpenFailed, err)
		}
		return fmt.Errorf("%w: %s", ErrHeaderReadFailed, err)
	}
	defer in.Close()

	if in.Bitpix != -32 {
		return fmt.Errorf("%w: input has BITPIX %d", ErrUnsupportedPixelType, in.Bitpix)
	}
	if len(in.Naxisn) < 2 || len(in.Naxisn) > 4 {
		return fmt.Errorf("%w: input has %d axes", ErrUnsupportedRank, len(in.Naxisn))
	}
	dims := cube.NewDims(in.Naxisn)

	tempOutputName := outputName + ".tmp"
	out, err := hdf5.Create(tempOutputName)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrOutputCreateFailed, err)
	}
	defer out.Close()

	root, err := out.CreateGroup("0")
	if err != nil {
		return fmt.Errorf("%w: %s", ErrOutputCreateFailed, err)
	}
	defer root.Close()

	if err := TranslateHeader(in.Header.Records, root, logWriter); err != nil {
		return fmt.Errorf("%w: %s", ErrOutputWriteFailed, err)
	}

	cds, err := createCubeDatasets(root, dims)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrOutputCreateFailed, err)
	}
	defer cds.close()

	maxBytes := opt.MaxBytes
	if maxBytes == 0 {
		maxBytes = memory.TotalMemory()
	}
	fmt.Fprintf(logWriter, "Allocating %s of memory...", humanize.IBytes(cube.BytesRequired(dims)))
	tStartAlloc := time.Now()
	buffers, err := cube.NewBuffers(dims, opt.Workers, maxBytes)
	if err != nil {
		fmt.Fprintln(logWriter)
		return fmt.Errorf("%w: %s", ErrOutOfMemory, err)
	}
	defer buffers.Release()
	fmt.Fprintf(logWriter, "Done in %.3g seconds\n", time.Since(tStartAlloc).Seconds())

	cubeBytes := dims.CubeSize() * 4
	for s := int64(0); s < dims.Stokes; s++ {
		fmt.Fprintf(logWriter, "Reading Stokes %d dataset...", s)
		tStartRead := time.Now()
		if err := in.ReadCube(s, buffers.Standard); err != nil {
			fmt.Fprintln(logWriter)
			return fmt.Errorf("%w: %s", ErrInputOpenFailed, err)
		}
		fmt.Fprintf(logWriter, "Done in %s\n", throughput(cubeBytes, time.Since(tStartRead)))

		fmt.Fprintf(logWriter, "Processing Stokes %d dataset...", s)
		tStartProcess := time.Now()
		buffers.SliceStats(s)
		buffers.ConsolidateXYZ(s)
		buffers.ProfileStats(s)
		buffers.Histograms(s)
		fmt.Fprintf(logWriter, "Done in %s\n", throughput(cubeBytes, time.Since(tStartProcess)))

		fmt.Fprintf(logWriter, "Writing Stokes %d dataset...", s)
		tStartWrite := time.Now()
		if err := cds.writeCubes(buffers, s); err != nil {
			fmt.Fprintln(logWriter)
			return fmt.Errorf("%w: %s", ErrOutputWriteFailed, err)
		}
		written := cubeBytes
		if dims.Depth > 1 {
			written *= 2
		}
		fmt.Fprintf(logWriter, "Done in %s\n", throughput(written, time.Since(tStartWrite)))
	}

	buffers.ReduceXYZHistograms()
	if err := writeStatistics(root, buffers); err != nil {
		return fmt.Errorf("%w: %s", ErrOutputWriteFailed, err)
	}

	cds.close()
	root.Close()
	if err := out.Close(); err != nil {
		return fmt.Errorf("%w: %s", ErrOutputWriteFailed, err)
	}
	if err := os.Rename(tempOutputName, outputName); err != nil {
		return fmt.Errorf("%w: %s", ErrOutputWriteFailed, err)
	}

	fmt.Fprintf(logWriter, "FITS file converted in %.3g seconds\n", time.Since(tStart).Seconds())
	return nil
}
