// Copyright 2024-2026 The helios Authors
// This file is part of the helios library.
//
// The helios library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The helios library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the helios library. If not, see <http://www.gnu.org/licenses/>.

package vm

import (
	"sync"

	"github.com/holiman/uint256"
)

// Per-transaction allocations (words, scratch buffers, return data) are pool
// backed so a busy executor stays off the garbage collector's hot path. The
// pools are the Go rendition of a transaction-scoped arena: frames take what
// they need and give it back on termination.

// Uint256Pool is a pool of *uint256.Int to reduce allocations in hot paths.
var Uint256Pool = &sync.Pool{
	New: func() interface{} {
		return new(uint256.Int)
	},
}

// GetUint256 gets a *uint256.Int from the pool.
func GetUint256() *uint256.Int {
	return Uint256Pool.Get().(*uint256.Int)
}

// PutUint256 returns a *uint256.Int to the pool after clearing it.
func PutUint256(v *uint256.Int) {
	if v != nil {
		v.Clear()
		Uint256Pool.Put(v)
	}
}

// returnDataPool recycles the output buffers handed across frame boundaries.
var returnDataPool = &sync.Pool{
	New: func() interface{} {
		b := make([]byte, 0, 64)
		return &b
	},
}

// GetReturnData gets a zero-length byte slice with some capacity.
func GetReturnData() []byte {
	bp := returnDataPool.Get().(*[]byte)
	return (*bp)[:0]
}

// PutReturnData returns a buffer to the pool.
func PutReturnData(b []byte) {
	if cap(b) == 0 {
		return
	}
	b = b[:0]
	returnDataPool.Put(&b)
}
