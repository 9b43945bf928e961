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

// Package stack implements the 256-bit word stack of an execution frame.
// Instances are pooled; return them with ReturnNormalStack when the frame
// terminates.
package stack

import (
	"fmt"
	"sync"

	"github.com/holiman/uint256"
)

var stackPool = sync.Pool{
	New: func() any {
		return &Stack{data: make([]uint256.Int, 0, 16)}
	},
}

// Stack is an object for basic stack operations. Items popped to the stack
// are expected not to be changed and modified.
type Stack struct {
	data []uint256.Int
}

// New returns a pooled, empty stack.
func New() *Stack {
	stack, ok := stackPool.Get().(*Stack)
	if !ok {
		panic("stack pool returned wrong type")
	}
	return stack
}

// ReturnNormalStack clears s and hands it back to the pool.
func ReturnNormalStack(s *Stack) {
	s.data = s.data[:0]
	stackPool.Put(s)
}

// Data returns the underlying slice, bottom first.
func (st *Stack) Data() []uint256.Int {
	return st.data
}

// Push appends d to the top of the stack.
func (st *Stack) Push(d *uint256.Int) {
	// NOTE push limit (1024) is checked in baseCheck
	st.data = append(st.data, *d)
}

// PushN appends every given word in order.
func (st *Stack) PushN(ds ...uint256.Int) {
	st.data = append(st.data, ds...)
}

// Pop removes and returns the top element.
func (st *Stack) Pop() (ret uint256.Int) {
	ret = st.data[len(st.data)-1]
	st.data = st.data[:len(st.data)-1]
	return
}

// Cap returns the capacity of the underlying slice.
func (st *Stack) Cap() int {
	return cap(st.data)
}

// Swap exchanges the top of the stack with the n'th element from the top.
func (st *Stack) Swap(n int) {
	st.data[st.Len()-n], st.data[st.Len()-1] = st.data[st.Len()-1], st.data[st.Len()-n]
}

// Dup duplicates the n'th element from the top onto the top.
func (st *Stack) Dup(n int) {
	st.Push(&st.data[st.Len()-n])
}

// Peek returns a pointer to the top element without removing it.
func (st *Stack) Peek() *uint256.Int {
	return &st.data[st.Len()-1]
}

// Back returns the n'th item in stack counted from the top.
func (st *Stack) Back(n int) *uint256.Int {
	return &st.data[st.Len()-n-1]
}

// Reset empties the stack in place.
func (st *Stack) Reset() {
	st.data = st.data[:0]
}

// Len returns the number of elements on the stack.
func (st *Stack) Len() int {
	return len(st.data)
}

// Print dumps the stack for interactive debugging.
func (st *Stack) Print() {
	fmt.Println("### stack ###")
	if len(st.data) > 0 {
		for i, val := range st.data {
			fmt.Printf("%-3d  %s\n", i, val.Hex())
		}
	} else {
		fmt.Println("-- empty --")
	}
	fmt.Println("#############")
}
