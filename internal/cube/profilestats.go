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

// ProfileStats computes min, max, mean and NaN count along the Z profile of
// every spatial (Y,X) pixel of polarization s. Rows of Y are processed in
// parallel; each goroutine publishes only to its own row's positions.
// No-op when the cube has a single slice.
func (b *Buffers) ProfileStats(s int64) {
	d := b.Dims
	if d.Depth <= 1 {
		return
	}
	w, h, depth := int(d.Width), int(d.Height), int(d.Depth)
	plane := w * h

	sem := make(chan bool, b.Workers)
	for j := 0; j < h; j++ {
		sem <- true
		go func(j int) {
			defer func() { <-sem }()

			for k := 0; k < w; k++ {
				minVal := float32(math.MaxFloat32)
				maxVal := float32(-math.MaxFloat32)
				sum := float64(0)
				nanCount := int64(0)

				for i := 0; i < depth; i++ {
					val := b.Standard[i*plane+j*w+k]
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

				idx := int(s)*plane + j*w + k
				if nanCount != int64(depth) {
					b.MinZ[idx] = minVal
					b.MaxZ[idx] = maxVal
					b.MeanZ[idx] = float32(sum / float64(int64(depth)-nanCount))
				} else {
					nan := float32(math.NaN())
					b.MinZ[idx] = nan
					b.MaxZ[idx] = nan
					b.MeanZ[idx] = nan
				}
				b.NanZ[idx] = nanCount
			}
		}(j)
	}
	for i := 0; i < cap(sem); i++ {
		sem <- true
	}
}
