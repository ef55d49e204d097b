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
	"math/rand"
	"testing"

	"github.com/valyala/fastrand"
)

// A uniform slice over [0,1) with width*height=10000 produces 100 bins with
// roughly height*width/bins counts each.
func TestHistogramUniformSlice(t *testing.T) {
	b := newTestBuffers(t, []int64{100, 100})
	plane := 100 * 100
	for i := range b.Standard {
		b.Standard[i] = float32(i) / float32(plane)
	}

	b.SliceStats(0)
	b.Histograms(0)

	if b.Dims.Bins != 100 {
		t.Fatalf("bins=%d; want 100", b.Dims.Bins)
	}
	wantPerBin := int64(plane) / b.Dims.Bins
	for i, count := range b.HistXY {
		if count < wantPerBin-2 || count > wantPerBin+2 {
			t.Errorf("bin %d count=%d; want %d +-2", i, count, wantPerBin)
		}
	}
}

// Histogram counts are conserved: every finite pixel of a non-degenerate
// slice lands in exactly one bin, for the XY and XYZ binnings alike.
func TestHistogramConservation(t *testing.T) {
	w, h, d := 16, 8, 5
	b := newTestBuffers(t, []int64{int64(w), int64(h), int64(d)})
	rng := rand.New(rand.NewSource(7))
	for i := range b.Standard {
		if rng.Intn(10) == 0 {
			b.Standard[i] = nan32()
		} else {
			b.Standard[i] = float32(rng.NormFloat64())
		}
	}

	b.SliceStats(0)
	b.ConsolidateXYZ(0)
	b.Histograms(0)
	b.ReduceXYZHistograms()

	plane := int64(w * h)
	bins := int(b.Dims.Bins)
	var wantTotal int64
	for z := 0; z < d; z++ {
		var sum int64
		for _, count := range b.HistXY[z*bins : (z+1)*bins] {
			sum += count
		}
		if want := plane - b.NanXY[z]; sum != want {
			t.Errorf("slice %d histogram sum=%d; want %d", z, sum, want)
		}
		wantTotal += plane - b.NanXY[z]
	}

	// the final XYZ histogram is the sum of the partials, and conserves
	// the finite pixel count of the whole cube
	var xyzSum int64
	for j, count := range b.HistXYZ {
		var partial int64
		for z := 0; z < d; z++ {
			partial += b.PartialHistXYZ[z*bins+j]
		}
		if partial != count {
			t.Errorf("bin %d: partial sum=%d, final=%d", j, partial, count)
		}
		xyzSum += count
	}
	if xyzSum != wantTotal {
		t.Errorf("XYZ histogram sum=%d; want %d", xyzSum, wantTotal)
	}
	if want := int64(w*h*d) - wantTotal; b.NanXYZ[0] != want {
		t.Errorf("cube nan count=%d; want %d", b.NanXYZ[0], want)
	}
}

// A slice whose maximum is hit exactly lands in the last bin, not past it.
func TestHistogramMaxClamp(t *testing.T) {
	b := newTestBuffers(t, []int64{2, 2})
	copy(b.Standard, []float32{0, 1, 2, 3})

	b.SliceStats(0)
	b.Histograms(0)

	// bins=2, range [0,3]: pixels 2 and 3 belong to the last bin, with the
	// maximum clamped down instead of landing past the end
	bins := int(b.Dims.Bins)
	if got := b.HistXY[bins-1]; got != 2 {
		t.Errorf("last bin=%d; want 2", got)
	}
	var sum int64
	for _, count := range b.HistXY {
		sum += count
	}
	if sum != 4 {
		t.Errorf("histogram sum=%d; want 4", sum)
	}
}

// All-NaN slices are degenerate and leave their histogram row zero.
func TestHistogramAllNaNSlice(t *testing.T) {
	b := newTestBuffers(t, []int64{3, 3, 2})
	for i := 0; i < 9; i++ {
		b.Standard[i] = nan32()
	}
	for i := 9; i < 18; i++ {
		b.Standard[i] = float32(i)
	}

	b.SliceStats(0)
	b.ConsolidateXYZ(0)
	b.Histograms(0)

	bins := int(b.Dims.Bins)
	for i, count := range b.HistXY[:bins] {
		if count != 0 {
			t.Errorf("all-NaN slice bin %d=%d; want 0", i, count)
		}
	}
	var sum int64
	for _, count := range b.HistXY[bins:] {
		sum += count
	}
	if sum != 9 {
		t.Errorf("finite slice histogram sum=%d; want 9", sum)
	}
}

func BenchmarkSliceStats(bench *testing.B) {
	d := NewDims([]int64{512, 512, 16})
	b, err := NewBuffers(d, 0, 0)
	if err != nil {
		bench.Fatal(err)
	}
	defer b.Release()
	var rng fastrand.RNG
	for i := range b.Standard {
		b.Standard[i] = float32(rng.Uint32()) * (1.0 / (1 << 32))
	}

	bench.SetBytes(d.CubeSize() * 4)
	bench.ResetTimer()
	for n := 0; n < bench.N; n++ {
		b.SliceStats(0)
	}
}

func BenchmarkHistograms(bench *testing.B) {
	d := NewDims([]int64{512, 512, 16})
	b, err := NewBuffers(d, 0, 0)
	if err != nil {
		bench.Fatal(err)
	}
	defer b.Release()
	var rng fastrand.RNG
	for i := range b.Standard {
		b.Standard[i] = float32(rng.Uint32()) * (1.0 / (1 << 32))
	}
	b.SliceStats(0)
	b.ConsolidateXYZ(0)

	bench.SetBytes(d.CubeSize() * 4)
	bench.ResetTimer()
	for n := 0; n < bench.N; n++ {
		b.Histograms(0)
	}
}
