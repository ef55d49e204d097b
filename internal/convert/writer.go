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
	"github.com/mlnoga/hdfconvert/internal/cube"
	"github.com/mlnoga/hdfconvert/internal/hdf5"
)

// cubeDatasets holds the open handles of the pixel datasets, which are
// created up front so each polarization can be written incrementally.
type cubeDatasets struct {
	data     *hdf5.Dataset
	swizzled *hdf5.Dataset // nil when the cube has a single slice
}

func (c *cubeDatasets) close() {
	if c.swizzled != nil {
		c.swizzled.Close()
	}
	if c.data != nil {
		c.data.Close()
	}
}

// createCubeDatasets creates the DATA dataset and, when the cube has depth,
// the SwizzledData group with its ZYX / ZYXW dataset.
func createCubeDatasets(root *hdf5.Group, d cube.Dims) (*cubeDatasets, error) {
	cds := &cubeDatasets{}
	var err error
	if cds.data, err = root.CreateDataset("DATA", hdf5.Float32LE, d.Standard()); err != nil {
		return nil, err
	}
	if d.Depth > 1 {
		swizzledGroup, err := root.CreateGroup("SwizzledData")
		if err != nil {
			cds.close()
			return nil, err
		}
		defer swizzledGroup.Close()
		if cds.swizzled, err = swizzledGroup.CreateDataset(d.SwizzledName(), hdf5.Float32LE, d.Swizzled()); err != nil {
			cds.close()
			return nil, err
		}
	}
	return cds, nil
}

// writeCubes writes the standard and rotated cube of polarization s into
// their hyperslabs of the pixel datasets.
func (c *cubeDatasets) writeCubes(b *cube.Buffers, s int64) error {
	start, count := b.Dims.CubeSlab(s)
	if err := c.data.WriteHyperslabFloat32(b.Standard, start, count); err != nil {
		return err
	}
	if c.swizzled != nil {
		start, count = b.Dims.SwizzledSlab(s)
		if err := c.swizzled.WriteHyperslabFloat32(b.Rotated, start, count); err != nil {
			return err
		}
	}
	return nil
}

// statsSet writes one Statistics subgroup holding MIN, MAX and MEAN as FP32,
// NAN_COUNT as int64, and optionally HISTOGRAM as int64.
type statsSet struct {
	min, max, mean []float32
	nanCount       []int64
	statsDims      []uint64
	histogram      []int64 // nil for the Z group
	histogramDims  []uint64
}

func (set *statsSet) write(parent *hdf5.Group, name string) error {
	group, err := parent.CreateGroup(name)
	if err != nil {
		return err
	}
	defer group.Close()

	floats := []struct {
		name string
		data []float32
	}{{"MIN", set.min}, {"MAX", set.max}, {"MEAN", set.mean}}
	for _, f := range floats {
		ds, err := group.CreateDataset(f.name, hdf5.Float32LE, set.statsDims)
		if err != nil {
			return err
		}
		err = ds.WriteFloat32(f.data)
		ds.Close()
		if err != nil {
			return err
		}
	}

	ds, err := group.CreateDataset("NAN_COUNT", hdf5.Int64LE, set.statsDims)
	if err != nil {
		return err
	}
	err = ds.WriteInt64(set.nanCount)
	ds.Close()
	if err != nil {
		return err
	}

	if set.histogram != nil {
		ds, err := group.CreateDataset("HISTOGRAM", hdf5.Int64LE, set.histogramDims)
		if err != nil {
			return err
		}
		err = ds.WriteInt64(set.histogram)
		ds.Close()
		if err != nil {
			return err
		}
	}
	return nil
}

// writeStatistics materializes the Statistics group from the accumulated
// buffers: XY always, XYZ and Z only when the cube has depth.
func writeStatistics(root *hdf5.Group, b *cube.Buffers) error {
	d := b.Dims
	statsGroup, err := root.CreateGroup("Statistics")
	if err != nil {
		return err
	}
	defer statsGroup.Close()

	xy := statsSet{
		min: b.MinXY, max: b.MaxXY, mean: b.MeanXY, nanCount: b.NanXY,
		statsDims: d.XYStats(),
		histogram: b.HistXY, histogramDims: d.XYHistogram(),
	}
	if err := xy.write(statsGroup, "XY"); err != nil {
		return err
	}
	if d.Depth <= 1 {
		return nil
	}

	xyz := statsSet{
		min: b.MinXYZ, max: b.MaxXYZ, mean: b.MeanXYZ, nanCount: b.NanXYZ,
		statsDims: d.XYZStats(),
		histogram: b.HistXYZ, histogramDims: d.XYZHistogram(),
	}
	if err := xyz.write(statsGroup, "XYZ"); err != nil {
		return err
	}

	z := statsSet{
		min: b.MinZ, max: b.MaxZ, mean: b.MeanZ, nanCount: b.NanZ,
		statsDims: d.ZStats(),
	}
	return z.write(statsGroup, "Z")
}
