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
	"reflect"
	"testing"
)

type dimsTestCase struct {
	naxisn       []int64
	bins         int64
	standard     []uint64
	swizzled     []uint64
	swizzledName string
	xyStats      []uint64
	xyHistogram  []uint64
	zStats       []uint64
	xyzStats     []uint64
	xyzHistogram []uint64
}

func TestNewDims(t *testing.T) {
	tcs := []dimsTestCase{
		{
			naxisn:       []int64{4, 4},
			bins:         4,
			standard:     []uint64{4, 4},
			swizzled:     []uint64{4, 4},
			swizzledName: "ZYX",
			xyStats:      nil,
			xyHistogram:  []uint64{4},
			zStats:       []uint64{4, 4},
			xyzStats:     nil,
			xyzHistogram: []uint64{4},
		},
		{
			naxisn:       []int64{5, 4, 3},
			bins:         4, // round(sqrt(20))
			standard:     []uint64{3, 4, 5},
			swizzled:     []uint64{5, 4, 3},
			swizzledName: "ZYX",
			xyStats:      []uint64{3},
			xyHistogram:  []uint64{3, 4},
			zStats:       []uint64{4, 5},
			xyzStats:     nil,
			xyzHistogram: []uint64{4},
		},
		{
			naxisn:       []int64{100, 100, 8, 2},
			bins:         100,
			standard:     []uint64{2, 8, 100, 100},
			swizzled:     []uint64{2, 100, 100, 8},
			swizzledName: "ZYXW",
			xyStats:      []uint64{2, 8},
			xyHistogram:  []uint64{2, 8, 100},
			zStats:       []uint64{2, 100, 100},
			xyzStats:     []uint64{2},
			xyzHistogram: []uint64{2, 100},
		},
	}

	for _, tc := range tcs {
		d := NewDims(tc.naxisn)
		if d.Bins != tc.bins {
			t.Errorf("naxisn=%v bins=%d; want %d", tc.naxisn, d.Bins, tc.bins)
		}
		checks := []struct {
			name string
			got  []uint64
			want []uint64
		}{
			{"standard", d.Standard(), tc.standard},
			{"swizzled", d.Swizzled(), tc.swizzled},
			{"xyStats", d.XYStats(), tc.xyStats},
			{"xyHistogram", d.XYHistogram(), tc.xyHistogram},
			{"zStats", d.ZStats(), tc.zStats},
			{"xyzStats", d.XYZStats(), tc.xyzStats},
			{"xyzHistogram", d.XYZHistogram(), tc.xyzHistogram},
		}
		for _, c := range checks {
			if !reflect.DeepEqual(c.got, c.want) {
				t.Errorf("naxisn=%v %s=%v; want %v", tc.naxisn, c.name, c.got, c.want)
			}
		}
		if name := d.SwizzledName(); name != tc.swizzledName {
			t.Errorf("naxisn=%v swizzledName=%s; want %s", tc.naxisn, name, tc.swizzledName)
		}
	}
}

func TestCubeSlab(t *testing.T) {
	d := NewDims([]int64{5, 4, 3, 2})
	start, count := d.CubeSlab(1)
	if !reflect.DeepEqual(start, []uint64{1, 0, 0, 0}) || !reflect.DeepEqual(count, []uint64{1, 3, 4, 5}) {
		t.Errorf("CubeSlab(1)=%v,%v; want [1 0 0 0],[1 3 4 5]", start, count)
	}

	start, count = d.SwizzledSlab(1)
	if !reflect.DeepEqual(start, []uint64{1, 0, 0, 0}) || !reflect.DeepEqual(count, []uint64{1, 5, 4, 3}) {
		t.Errorf("SwizzledSlab(1)=%v,%v; want [1 0 0 0],[1 5 4 3]", start, count)
	}

	d = NewDims([]int64{5, 4, 3})
	start, count = d.CubeSlab(0)
	if !reflect.DeepEqual(start, []uint64{0, 0, 0}) || !reflect.DeepEqual(count, []uint64{3, 4, 5}) {
		t.Errorf("CubeSlab(0)=%v,%v; want [0 0 0],[3 4 5]", start, count)
	}
}
