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

// Package cube holds one polarization's pixel volume in memory and computes
// the transposed copy, the per-slice, per-profile and per-cube statistics,
// and the histograms that the output file carries for visualization.
package cube

import (
	"math"
)

// Dims resolves the raw FITS axis lengths into the semantic cube shape and
// the dimension vectors of the output datasets. Axis ordering is FITS-native:
// X (width) varies fastest, then Y (height), then Z (depth, spectral), with
// polarization slowest. Axes absent from the input stay absent from the
// output datasets to preserve rank.
type Dims struct {
	N      int   // number of input axes, 2..4
	Width  int64 // X extent
	Height int64 // Y extent
	Depth  int64 // Z extent, 1 if N<3
	Stokes int64 // polarization extent, 1 if N<4
	Bins   int64 // histogram bin count, shared between XY and XYZ histograms
}

// NewDims derives the cube shape from the input axis lengths.
// naxisn must hold between 2 and 4 axis extents, fastest-varying first.
func NewDims(naxisn []int64) Dims {
	d := Dims{N: len(naxisn), Width: naxisn[0], Height: naxisn[1], Depth: 1, Stokes: 1}
	if d.N >= 3 {
		d.Depth = naxisn[2]
	}
	if d.N == 4 {
		d.Stokes = naxisn[3]
	}
	d.Bins = int64(math.Sqrt(float64(d.Width*d.Height)) + 0.5)
	return d
}

// CubeSize returns the number of pixels in one polarization's cube.
func (d Dims) CubeSize() int64 { return d.Depth * d.Height * d.Width }

// Standard returns the DATA dataset dimensions, [S? D? H W].
func (d Dims) Standard() []uint64 {
	return d.prepend(uint64(d.Height), uint64(d.Width))
}

// Swizzled returns the SwizzledData dataset dimensions, [S? W H D?].
func (d Dims) Swizzled() []uint64 {
	dims := []uint64{uint64(d.Width), uint64(d.Height)}
	if d.N >= 3 {
		dims = append(dims, uint64(d.Depth))
	}
	if d.N == 4 {
		dims = append([]uint64{uint64(d.Stokes)}, dims...)
	}
	return dims
}

// SwizzledName returns the name of the transposed dataset, ZYX or ZYXW.
func (d Dims) SwizzledName() string {
	if d.N == 4 {
		return "ZYXW"
	}
	return "ZYX"
}

// XYStats returns the per-slice statistics dataset dimensions, [S? D?].
func (d Dims) XYStats() []uint64 { return d.prepend() }

// XYHistogram returns the per-slice histogram dataset dimensions, [S? D? B].
func (d Dims) XYHistogram() []uint64 { return d.prepend(uint64(d.Bins)) }

// ZStats returns the per-profile statistics dataset dimensions, [S? H W].
func (d Dims) ZStats() []uint64 {
	dims := []uint64{uint64(d.Height), uint64(d.Width)}
	if d.N == 4 {
		dims = append([]uint64{uint64(d.Stokes)}, dims...)
	}
	return dims
}

// XYZStats returns the per-cube statistics dataset dimensions, [S?].
func (d Dims) XYZStats() []uint64 {
	if d.N == 4 {
		return []uint64{uint64(d.Stokes)}
	}
	return nil
}

// XYZHistogram returns the per-cube histogram dataset dimensions, [S? B].
func (d Dims) XYZHistogram() []uint64 {
	if d.N == 4 {
		return []uint64{uint64(d.Stokes), uint64(d.Bins)}
	}
	return []uint64{uint64(d.Bins)}
}

// CubeSlab returns the hyperslab start and count selecting polarization s
// in the DATA dataset, [1? D? H W] with the polarization
// axis fixed to s.
func (d Dims) CubeSlab(s int64) (start, count []uint64) {
	count = []uint64{uint64(d.Height), uint64(d.Width)}
	start = []uint64{0, 0}
	if d.N >= 3 {
		count = append([]uint64{uint64(d.Depth)}, count...)
		start = append([]uint64{0}, start...)
	}
	if d.N == 4 {
		count = append([]uint64{1}, count...)
		start = append([]uint64{uint64(s)}, start...)
	}
	return start, count
}

// SwizzledSlab returns the hyperslab start and count selecting polarization s
// in the SwizzledData dataset, [1? W H D].
func (d Dims) SwizzledSlab(s int64) (start, count []uint64) {
	count = []uint64{uint64(d.Width), uint64(d.Height), uint64(d.Depth)}
	start = []uint64{0, 0, 0}
	if d.N == 4 {
		count = append([]uint64{1}, count...)
		start = append([]uint64{uint64(s)}, start...)
	}
	return start, count
}

// prepend builds a dimension vector with the depth and polarization axes
// added in front when the input carries them.
func (d Dims) prepend(tail ...uint64) []uint64 {
	dims := append([]uint64(nil), tail...)
	if d.N >= 3 {
		dims = append([]uint64{uint64(d.Depth)}, dims...)
	}
	if d.N == 4 {
		dims = append([]uint64{uint64(d.Stokes)}, dims...)
	}
	return dims
}
