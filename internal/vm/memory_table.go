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
	"github.com/helioschain/helios/internal/vm/stack"
)

func memoryKeccak256(stk *stack.Stack) (uint64, bool) {
	return calcMemSize64(stk.Back(0), stk.Back(1))
}

func memoryCallDataCopy(stk *stack.Stack) (uint64, bool) {
	return calcMemSize64(stk.Back(0), stk.Back(2))
}

func memoryReturnDataCopy(stk *stack.Stack) (uint64, bool) {
	return calcMemSize64(stk.Back(0), stk.Back(2))
}

func memoryCodeCopy(stk *stack.Stack) (uint64, bool) {
	return calcMemSize64(stk.Back(0), stk.Back(2))
}

func memoryExtCodeCopy(stk *stack.Stack) (uint64, bool) {
	return calcMemSize64(stk.Back(1), stk.Back(3))
}

func memoryMLoad(stk *stack.Stack) (uint64, bool) {
	return calcMemSize64WithUint(stk.Back(0), 32)
}

func memoryMStore8(stk *stack.Stack) (uint64, bool) {
	return calcMemSize64WithUint(stk.Back(0), 1)
}

func memoryMStore(stk *stack.Stack) (uint64, bool) {
	return calcMemSize64WithUint(stk.Back(0), 32)
}

func memoryMcopy(stk *stack.Stack) (uint64, bool) {
	mStart := stk.Back(0) // stack[0]: dest
	if stk.Back(1).Gt(mStart) {
		mStart = stk.Back(1) // stack[1]: source
	}
	return calcMemSize64(mStart, stk.Back(2)) // stack[2]: length
}

func memoryCreate(stk *stack.Stack) (uint64, bool) {
	return calcMemSize64(stk.Back(1), stk.Back(2))
}

func memoryCreate2(stk *stack.Stack) (uint64, bool) {
	return calcMemSize64(stk.Back(1), stk.Back(2))
}

func memoryCall(stk *stack.Stack) (uint64, bool) {
	x, overflow := calcMemSize64(stk.Back(5), stk.Back(6))
	if overflow {
		return 0, true
	}
	y, overflow := calcMemSize64(stk.Back(3), stk.Back(4))
	if overflow {
		return 0, true
	}
	if x > y {
		return x, false
	}
	return y, false
}

func memoryDelegateCall(stk *stack.Stack) (uint64, bool) {
	x, overflow := calcMemSize64(stk.Back(4), stk.Back(5))
	if overflow {
		return 0, true
	}
	y, overflow := calcMemSize64(stk.Back(2), stk.Back(3))
	if overflow {
		return 0, true
	}
	if x > y {
		return x, false
	}
	return y, false
}

func memoryStaticCall(stk *stack.Stack) (uint64, bool) {
	x, overflow := calcMemSize64(stk.Back(4), stk.Back(5))
	if overflow {
		return 0, true
	}
	y, overflow := calcMemSize64(stk.Back(2), stk.Back(3))
	if overflow {
		return 0, true
	}
	if x > y {
		return x, false
	}
	return y, false
}

func memoryReturn(stk *stack.Stack) (uint64, bool) {
	return calcMemSize64(stk.Back(0), stk.Back(1))
}

func memoryRevert(stk *stack.Stack) (uint64, bool) {
	return calcMemSize64(stk.Back(0), stk.Back(1))
}

func memoryLog(stk *stack.Stack) (uint64, bool) {
	return calcMemSize64(stk.Back(0), stk.Back(1))
}
