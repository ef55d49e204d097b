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

// Histograms fills the per-slice XY histograms of polarization s, and the
// per-slice partial XYZ histograms when the cube has depth. Both binnings
// share a single read of the cube: XY bins span the slice's own value range,
// XYZ bins span the whole cube's range from ConsolidateXYZ, which must have
// run first. Slices whose range is degenerate (all NaN, or min==max)
// contribute no counts and their histogram rows stay zero.
//
// Slices are processed in parallel; each goroutine increments only its own
// slice's histogram rows.
func (b *Buffers) Histograms(s int64) {
	d := b.Dims
	depth, plane, bins := int(d.Depth), int(d.Height*d.Width), int(d.Bins)

	cubeMin, cubeMax := float64(0), float64(0)
	if d.Depth > 1 {
		cubeMin = float64(b.MinXYZ[s])
		cubeMax = float64(b.MaxXYZ[s])
	}
	cubeRange := cubeMax - cubeMin

	sem := make(chan bool, b.Workers)
	for i := 0; i < depth; i++ {
		sem <- true
		go func(i int) {
			defer func() { <-sem }()

			sliceMin := float64(b.MinXY[int(s)*depth+i])
			sliceMax := float64(b.MaxXY[int(s)*depth+i])
			sliceRange := sliceMax - sliceMin
			if sliceMin != sliceMin || sliceMax != sliceMax || sliceRange == 0 {
				return
			}

			histXY := b.HistXY[(int(s)*depth+i)*bins : (int(s)*depth+i+1)*bins]
			var histXYZ []int64
			if d.Depth > 1 {
				histXYZ = b.PartialHistXYZ[(int(s)*depth+i)*bins : (int(s)*depth+i+1)*bins]
			}

			for _, val := range b.Standard[i*plane : (i+1)*plane] {
				if val != val {
					continue
				}
				bin := int(float64(bins) * (float64(val) - sliceMin) / sliceRange)
				if bin > bins-1 {
					bin = bins - 1
				}
				histXY[bin]++

				if histXYZ != nil {
					bin = int(float64(bins) * (float64(val) - cubeMin) / cubeRange)
					if bin > bins-1 {
						bin = bins - 1
					}
					histXYZ[bin]++
				}
			}
		}(i)
	}
	for i := 0; i < cap(sem); i++ {
		sem <- true
	}
}

// ReduceXYZHistograms sums the per-slice partial XYZ histograms into the
// final per-polarization XYZ histograms. Must run after the histogram pass
// of every polarization has completed. No-op when the cube has a single slice.
func (b *Buffers) ReduceXYZHistograms() {
	d := b.Dims
	if d.Depth <= 1 {
		return
	}
	depth, bins := int(d.Depth), int(d.Bins)
	for s := 0; s < int(d.Stokes); s++ {
		final := b.HistXYZ[s*bins : (s+1)*bins]
		for i := 0; i < depth; i++ {
			partial := b.PartialHistXYZ[(s*depth+i)*bins : (s*depth+i+1)*bins]
			for j, count := range partial {
				final[j] += count
			}
		}
	}
}
