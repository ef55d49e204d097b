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

package cube

import (
	"fmt"
	"math"
	"runtime"
)

// Buffers owns the standard cube, the rotated cube, and all statistics and
// histogram accumulators for one conversion run. The standard cube holds one
// polarization at a time; the statistics arrays span all polarizations so
// they can be written once at the end of the run.
//
// Index conventions, with i over Z, j over Y, k over X:
//
//	Standard[i*(H*W) + j*W + k]
//	Rotated [k*(D*H) + j*D + i]
type Buffers struct {
	Dims    Dims
	Workers int

	Standard []float32 // one polarization's cube, X fastest
	Rotated  []float32 // same pixels Z fastest, nil when Depth==1

	MinXY  []float32 // per slice, Stokes*Depth
	MaxXY  []float32
	MeanXY []float32
	NanXY  []int64
	HistXY []int64 // per slice, Stokes*Depth*Bins

	MinZ  []float32 // per spatial pixel, Stokes*Height*Width; Depth>1 only
	MaxZ  []float32
	MeanZ []float32
	NanZ  []int64

	MinXYZ         []float32 // per polarization, Stokes; Depth>1 only
	MaxXYZ         []float32
	MeanXYZ        []float32
	NanXYZ         []int64
	PartialHistXYZ []int64 // per slice, Stokes*Depth*Bins; Depth>1 only
	HistXYZ        []int64 // per polarization, Stokes*Bins; Depth>1 only
}

// BytesRequired returns the peak buffer footprint for the given shape.
func BytesRequired(d Dims) uint64 {
	cube := uint64(d.CubeSize()) * 4
	bytes := cube                                  // standard cube
	bytes += uint64(d.Stokes*d.Depth) * (3*4 + 8)  // XY stats
	bytes += uint64(d.Stokes*d.Depth*d.Bins) * 8   // XY histograms
	if d.Depth > 1 {
		bytes += cube                                    // rotated cube
		bytes += uint64(d.Stokes*d.Height*d.Width) * (3*4 + 8) // Z stats
		bytes += uint64(d.Stokes) * (3*4 + 8)                  // XYZ stats
		bytes += uint64(d.Stokes*(d.Depth+1)*d.Bins) * 8       // XYZ histograms
	}
	return bytes
}

// NewBuffers allocates all buffers for the given shape, drawing large arrays
// from the pools. maxBytes bounds the peak footprint; 0 means unbounded.
// workers bounds the parallelism of the statistics passes; 0 means one per core.
func NewBuffers(d Dims, workers int, maxBytes uint64) (*Buffers, error) {
	if required := BytesRequired(d); maxBytes > 0 && required > maxBytes {
		return nil, fmt.Errorf("conversion needs %d bytes of memory, limit is %d", required, maxBytes)
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	b := &Buffers{Dims: d, Workers: workers}
	slices, bins := int(d.Stokes*d.Depth), int(d.Bins)

	b.Standard = poolFloat32.get(int(d.CubeSize()))
	b.MinXY = poolFloat32.get(slices)
	b.MaxXY = poolFloat32.get(slices)
	b.MeanXY = poolFloat32.get(slices)
	b.NanXY = poolInt64.get(slices)
	b.HistXY = poolInt64.get(slices * bins)
	clear(b.HistXY)

	if d.Depth > 1 {
		plane := int(d.Stokes * d.Height * d.Width)
		b.Rotated = poolFloat32.get(int(d.CubeSize()))
		b.MinZ = poolFloat32.get(plane)
		b.MaxZ = poolFloat32.get(plane)
		b.MeanZ = poolFloat32.get(plane)
		b.NanZ = poolInt64.get(plane)
		for i := range b.MinZ {
			b.MinZ[i] = math.MaxFloat32
			b.MaxZ[i] = -math.MaxFloat32
		}
		stokes := int(d.Stokes)
		b.MinXYZ = poolFloat32.get(stokes)
		b.MaxXYZ = poolFloat32.get(stokes)
		b.MeanXYZ = poolFloat32.get(stokes)
		b.NanXYZ = poolInt64.get(stokes)
		clear(b.MeanXYZ)
		b.PartialHistXYZ = poolInt64.get(slices * bins)
		b.HistXYZ = poolInt64.get(stokes * bins)
		clear(b.PartialHistXYZ)
		clear(b.HistXYZ)
	}
	return b, nil
}

// Release returns all buffers to the pools. The receiver must not be used
// afterwards.
func (b *Buffers) Release() {
	poolFloat32.put(b.Standard)
	poolFloat32.put(b.MinXY)
	poolFloat32.put(b.MaxXY)
	poolFloat32.put(b.MeanXY)
	poolInt64.put(b.NanXY)
	poolInt64.put(b.HistXY)
	if b.Rotated != nil {
		poolFloat32.put(b.Rotated)
		poolFloat32.put(b.MinZ)
		poolFloat32.put(b.MaxZ)
		poolFloat32.put(b.MeanZ)
		poolInt64.put(b.NanZ)
		poolFloat32.put(b.MinXYZ)
		poolFloat32.put(b.MaxXYZ)
		poolFloat32.put(b.MeanXYZ)
		poolInt64.put(b.NanXYZ)
		poolInt64.put(b.PartialHistXYZ)
		poolInt64.put(b.HistXYZ)
	}
	*b = Buffers{}
}
