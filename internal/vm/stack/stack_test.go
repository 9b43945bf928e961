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

package stack

import (
	"testing"

	"github.com/holiman/uint256"
)

// fill pushes 1..n (bottom to top) and returns the stack.
func fill(n int) *Stack {
	s := New()
	for i := 1; i <= n; i++ {
		s.Push(uint256.NewInt(uint64(i)))
	}
	return s
}

func TestLIFOOrder(t *testing.T) {
	s := fill(5)
	defer ReturnNormalStack(s)

	for want := 5; want >= 1; want-- {
		got := s.Pop()
		if got.Uint64() != uint64(want) {
			t.Fatalf("Pop = %d, want %d", got.Uint64(), want)
		}
	}
	if s.Len() != 0 {
		t.Errorf("stack should be empty, len=%d", s.Len())
	}
	t.Logf("✓ pops come back in reverse push order")
}

func TestPushCopiesValue(t *testing.T) {
	s := New()
	defer ReturnNormalStack(s)

	v := uint256.NewInt(7)
	s.Push(v)
	// Mutating the pushed pointer afterwards must not change the stack:
	// Push stores the word by value.
	v.SetUint64(99)

	if s.Peek().Uint64() != 7 {
		t.Errorf("stack top = %d, want 7 (Push must copy)", s.Peek().Uint64())
	}
	t.Logf("✓ Push stores by value, not by reference")
}

func TestPeekAliasesTop(t *testing.T) {
	s := fill(1)
	defer ReturnNormalStack(s)

	// Opcode handlers write results through Peek; the write must land in
	// the stack slot itself.
	s.Peek().SetUint64(42)
	got := s.Pop()
	if got.Uint64() != 42 {
		t.Errorf("Pop after Peek-write = %d, want 42", got.Uint64())
	}
	t.Logf("✓ Peek returns a live pointer into the top slot")
}

func TestBackIndexing(t *testing.T) {
	s := fill(4) // bottom [1 2 3 4] top
	defer ReturnNormalStack(s)

	for n := 0; n < 4; n++ {
		want := uint64(4 - n)
		if got := s.Back(n).Uint64(); got != want {
			t.Errorf("Back(%d) = %d, want %d", n, got, want)
		}
	}
	// Back(0) and Peek agree: gas functions read operands via Back before
	// the execution function pops them.
	if s.Back(0) != s.Peek() {
		t.Error("Back(0) should alias Peek")
	}
	t.Logf("✓ Back counts from the top, aliasing live slots")
}

func TestSwapOpcodeSemantics(t *testing.T) {
	// SWAPn exchanges the top with the n+1'th item; the jump table calls
	// Swap(n+1). SWAP1 on [.. a b] gives [.. b a].
	s := fill(3) // [1 2 3]
	defer ReturnNormalStack(s)

	s.Swap(2) // SWAP1
	if s.Back(0).Uint64() != 2 || s.Back(1).Uint64() != 3 {
		t.Errorf("after SWAP1: top=%d second=%d, want 2 3", s.Back(0).Uint64(), s.Back(1).Uint64())
	}

	s.Swap(3) // SWAP2: exchanges top with third
	if s.Back(0).Uint64() != 1 || s.Back(2).Uint64() != 2 {
		t.Errorf("after SWAP2: top=%d third=%d, want 1 2", s.Back(0).Uint64(), s.Back(2).Uint64())
	}
	t.Logf("✓ Swap matches the SWAPn opcode contract")
}

func TestSwap16Boundary(t *testing.T) {
	s := fill(17)
	defer ReturnNormalStack(s)

	s.Swap(17) // SWAP16
	if s.Back(0).Uint64() != 1 {
		t.Errorf("SWAP16 top = %d, want 1", s.Back(0).Uint64())
	}
	if s.Back(16).Uint64() != 17 {
		t.Errorf("SWAP16 17th = %d, want 17", s.Back(16).Uint64())
	}
	t.Logf("✓ the deepest swap reaches 16 items down")
}

func TestDupOpcodeSemantics(t *testing.T) {
	s := fill(3) // [1 2 3]
	defer ReturnNormalStack(s)

	s.Dup(2) // DUP2 duplicates the second item from the top
	if s.Len() != 4 {
		t.Fatalf("len after DUP2 = %d, want 4", s.Len())
	}
	if s.Back(0).Uint64() != 2 {
		t.Errorf("DUP2 pushed %d, want 2", s.Back(0).Uint64())
	}
	// The duplicate is an independent word.
	s.Peek().SetUint64(77)
	if s.Back(2).Uint64() != 2 {
		t.Error("DUP must copy, not alias, the source slot")
	}
	t.Logf("✓ Dup copies the n'th item onto the top")
}

func TestPushNBulk(t *testing.T) {
	s := New()
	defer ReturnNormalStack(s)

	s.PushN(*uint256.NewInt(10), *uint256.NewInt(20), *uint256.NewInt(30))
	if s.Len() != 3 {
		t.Fatalf("len = %d, want 3", s.Len())
	}
	v1, v2, v3 := s.Pop(), s.Pop(), s.Pop()
	if v1.Uint64() != 30 || v2.Uint64() != 20 || v3.Uint64() != 10 {
		t.Error("PushN must preserve argument order bottom-to-top")
	}
	t.Logf("✓ PushN appends in order")
}

func TestDataBottomFirst(t *testing.T) {
	s := fill(3)
	defer ReturnNormalStack(s)

	d := s.Data()
	for i, want := range []uint64{1, 2, 3} {
		if d[i].Uint64() != want {
			t.Errorf("Data()[%d] = %d, want %d", i, d[i].Uint64(), want)
		}
	}
	t.Logf("✓ Data exposes the slice bottom first (tracer capture order)")
}

func TestGrowthBeyondInitialCapacity(t *testing.T) {
	// Fresh stacks start with capacity 16; the interpreter enforces the
	// 1024 limit, the stack itself must simply keep growing.
	s := New()
	defer ReturnNormalStack(s)

	for i := 0; i < 1024; i++ {
		s.Push(uint256.NewInt(uint64(i)))
	}
	if s.Len() != 1024 {
		t.Fatalf("len = %d, want 1024", s.Len())
	}
	if s.Cap() < 1024 {
		t.Errorf("cap = %d, should have grown past 1024", s.Cap())
	}
	if s.Back(1023).Uint64() != 0 || s.Back(0).Uint64() != 1023 {
		t.Error("deep stack lost values while growing")
	}
	t.Logf("✓ the stack grows to the protocol depth without help")
}

func TestPoolReturnsEmptyStacks(t *testing.T) {
	s := fill(8)
	ReturnNormalStack(s)

	// Whatever instance the pool hands out next must look freshly made.
	s2 := New()
	defer ReturnNormalStack(s2)
	if s2.Len() != 0 {
		t.Errorf("pooled stack not cleared, len=%d", s2.Len())
	}
	t.Logf("✓ ReturnNormalStack clears before pooling")
}

func TestResetKeepsCapacity(t *testing.T) {
	s := fill(64)
	defer ReturnNormalStack(s)

	capBefore := s.Cap()
	s.Reset()
	if s.Len() != 0 {
		t.Errorf("len after Reset = %d", s.Len())
	}
	if s.Cap() != capBefore {
		t.Errorf("Reset changed capacity %d -> %d", capBefore, s.Cap())
	}
	t.Logf("✓ Reset truncates in place")
}

func TestMaxWordSurvives(t *testing.T) {
	s := New()
	defer ReturnNormalStack(s)

	max := new(uint256.Int).SetAllOne()
	s.Push(max)
	got := s.Pop()
	if !got.Eq(max) {
		t.Error("2^256-1 mangled by push/pop")
	}
	t.Logf("✓ full-width words round-trip")
}

func BenchmarkPushPop(b *testing.B) {
	s := New()
	defer ReturnNormalStack(s)
	v := uint256.NewInt(1)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s.Push(v)
		s.Pop()
	}
}

func BenchmarkDupSwap(b *testing.B) {
	s := fill(16)
	defer ReturnNormalStack(s)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s.Dup(16)
		s.Swap(17)
		s.Pop()
	}
}

func BenchmarkPoolCycle(b *testing.B) {
	for i := 0; i < b.N; i++ {
		s := New()
		ReturnNormalStack(s)
	}
}
