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
	"runtime"
	"sync"
)

// Pools of constant sized arrays, to reduce allocation overhead when several
// conversions run back to back in one process. Returned arrays carry stale
// contents; callers must initialize what they read.

type sizedPool[T any] struct {
	sync.RWMutex
	m map[int]*sync.Pool
}

func (p *sizedPool[T]) pool(size int) *sync.Pool {
	p.RLock()
	pool := p.m[size]
	p.RUnlock()
	if pool == nil {
		pool = &sync.Pool{
			New: func() interface{} {
				return make([]T, size)
			},
		}
		p.Lock()
		p.m[size] = pool
		p.Unlock()
	}
	return pool
}

func (p *sizedPool[T]) get(size int) []T {
	return p.pool(size).Get().([]T)
}

func (p *sizedPool[T]) put(arr []T) {
	p.pool(cap(arr)).Put(arr[:cap(arr)])
}

var poolFloat32 = sizedPool[float32]{m: make(map[int]*sync.Pool)}
var poolInt64 = sizedPool[int64]{m: make(map[int]*sync.Pool)}

// ClearPools drops all pooled arrays and triggers garbage collection.
func ClearPools() {
	poolFloat32 = sizedPool[float32]{m: make(map[int]*sync.Pool)}
	poolInt64 = sizedPool[int64]{m: make(map[int]*sync.Pool)}
	runtime.GC()
}
