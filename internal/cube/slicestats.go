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
	"math"
)

// SliceStats computes min, max, mean and NaN count for every Z slice of the
// standard cube, and simultaneously writes the rotated cube so the pixels are
// read only once. Slices are processed in parallel; each goroutine owns one Z
// coordinate, so all rotated-cube and statistics writes go to disjoint
// positions and no locking is needed. s is the current polarization.
func (b *Buffers) SliceStats(s int64) {
	d := b.Dims
	w, h, depth := int(d.Width), int(d.Height), int(d.Depth)
	plane := w * h

	sem := make(chan bool, b.Workers)
	for i := 0; i < depth; i++ {
		sem <- true
		go func(i int) {
			defer func() { <-sem }()

			minVal := float32(math.MaxFloat32)
			maxVal := float32(-math.MaxFloat32)
			sum := float64(0)
			nanCount := int64(0)

			slice := b.Standard[i*plane : (i+1)*plane]
			if b.Rotated == nil {
				for _, val := range slice {
					if val == val {
						if val < minVal {
							minVal = val
						}
						if val > maxVal {
							maxVal = val
						}
						sum += float64(val)
					} else {
						nanCount++
					}
				}
			} else {
				// Transpose unconditionally, NaNs included
				for j := 0; j < h; j++ {
					row := slice[j*w : (j+1)*w]
					for k, val := range row {
						b.Rotated[k*depth*h+j*depth+i] = val
						if val == val {
							if val < minVal {
								minVal = val
							}
							if val > maxVal {
								maxVal = val
							}
							sum += float64(val)
						} else {
							nanCount++
						}
					}
				}
			}

			idx := int(s)*depth + i
			if nanCount != int64(plane) {
				b.MinXY[idx] = minVal
				b.MaxXY[idx] = maxVal
				b.MeanXY[idx] = float32(sum / float64(int64(plane)-nanCount))
			} else {
				nan := float32(math.NaN())
				b.MinXY[idx] = nan
				b.MaxXY[idx] = nan
				b.MeanXY[idx] = nan
			}
			b.NanXY[idx] = nanCount
		}(i)
	}
	for i := 0; i < cap(sem); i++ {
		sem <- true
	}
}

// ConsolidateXYZ reduces the per-slice statistics of polarization s into the
// whole-cube statistics. Slices that are entirely NaN contribute only their
// NaN count. When the whole cube is NaN, min and max stay NaN and the mean
// stays zero. No-op when the cube has a single slice.
func (b *Buffers) ConsolidateXYZ(s int64) {
	d := b.Dims
	if d.Depth <= 1 {
		return
	}
	depth := int(d.Depth)
	plane := d.Height * d.Width
	base := int(s) * depth

	xyzMin := b.MinXY[base]
	xyzMax := b.MaxXY[base]
	xyzSum := float64(0)
	xyzNanCount := int64(0)

	for i := 0; i < depth; i++ {
		meanVal := b.MeanXY[base+i]
		nanCount := b.NanXY[base+i]
		if meanVal == meanVal {
			xyzSum += float64(meanVal) * float64(plane-nanCount)
			if v := b.MinXY[base+i]; xyzMin != xyzMin || v < xyzMin {
				xyzMin = v
			}
			if v := b.MaxXY[base+i]; xyzMax != xyzMax || v > xyzMax {
				xyzMax = v
			}
		}
		xyzNanCount += nanCount
	}

	b.MinXYZ[s] = xyzMin
	b.MaxXYZ[s] = xyzMax
	b.NanXYZ[s] = xyzNanCount
	if xyzNanCount != d.CubeSize() {
		b.MeanXYZ[s] = float32(xyzSum / float64(d.CubeSize()-xyzNanCount))
	}
}
