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
	"math"
	"testing"

	"github.com/holiman/uint256"
)

func TestCallGas6364Rule(t *testing.T) {
	// Post-Tangerine, the forwarded gas can never exceed
	// floor(63/64 * (available - base)), whatever the caller requests.
	huge := new(uint256.Int).SetAllOne()
	for _, available := range []uint64{700, 1000, 64_000, 1_000_000, 30_000_000} {
		base := uint64(100)
		got, err := callGas(true, available, base, huge)
		if err != nil {
			t.Fatalf("callGas(%d): %v", available, err)
		}
		ceiling := available - base
		ceiling -= ceiling / 64
		if got != ceiling {
			t.Errorf("available %d: forwarded %d, want cap %d", available, got, ceiling)
		}
	}
	t.Logf("✓ requested gas is clipped to the 63/64 ceiling")
}

func TestCallGasRequestBelowCeiling(t *testing.T) {
	// A modest request passes through untouched on both sides of the fork.
	got, err := callGas(true, 100_000, 0, uint256.NewInt(5_000))
	if err != nil || got != 5_000 {
		t.Errorf("eip150 small request = %d (%v), want 5000", got, err)
	}
	got, err = callGas(false, 100_000, 0, uint256.NewInt(5_000))
	if err != nil || got != 5_000 {
		t.Errorf("frontier small request = %d (%v), want 5000", got, err)
	}
	t.Logf("✓ requests under the ceiling are honored exactly")
}

func TestCallGasFrontierOverflow(t *testing.T) {
	// Pre-Tangerine there is no ceiling to fall back to; an over-wide
	// request is a gas-uint overflow.
	if _, err := callGas(false, 100_000, 0, new(uint256.Int).SetAllOne()); err != ErrGasUintOverflow {
		t.Errorf("err = %v, want ErrGasUintOverflow", err)
	}
	t.Logf("✓ pre-fork wide requests overflow instead of clipping")
}

func TestSafeArithmeticBoundaries(t *testing.T) {
	if v, over := safeAdd(math.MaxUint64-1, 1); over || v != math.MaxUint64 {
		t.Errorf("safeAdd at the edge = %d, %v", v, over)
	}
	if _, over := safeAdd(math.MaxUint64, 1); !over {
		t.Error("safeAdd must flag wraparound")
	}
	if v, over := safeMul(math.MaxUint64/3, 3); over || v != math.MaxUint64-math.MaxUint64%3 {
		t.Errorf("safeMul below the edge = %d, %v", v, over)
	}
	if _, over := safeMul(math.MaxUint64/3+1, 3); !over {
		t.Error("safeMul must flag wraparound")
	}
	if v, over := safeMul(0, math.MaxUint64); over || v != 0 {
		t.Error("zero factor never overflows")
	}
	t.Logf("✓ safeAdd/safeMul police the uint64 boundary")
}

func TestToWordSizeCeiling(t *testing.T) {
	// Word counts round up; the saturation clause keeps the copy-gas
	// multiplication from wrapping on adversarial sizes.
	cases := map[uint64]uint64{
		0:                      0,
		1:                      1,
		31:                     1,
		32:                     1,
		33:                     2,
		4096:                   128,
		math.MaxUint64 - 30:    math.MaxUint64/32 + 1,
		math.MaxUint64:         math.MaxUint64/32 + 1,
	}
	for size, want := range cases {
		if got := toWordSize(size); got != want {
			t.Errorf("toWordSize(%d) = %d, want %d", size, got, want)
		}
	}
	if ToWordSize(33) != toWordSize(33) {
		t.Error("exported wrapper diverged")
	}
	t.Logf("✓ toWordSize rounds up and saturates")
}

func TestCalcMemSizeZeroLengthRule(t *testing.T) {
	// A zero-length access never expands memory, no matter the offset.
	// This is what lets CALL pass wild ret offsets with retSize 0.
	size, overflow := calcMemSize64(new(uint256.Int).SetAllOne(), new(uint256.Int))
	if overflow || size != 0 {
		t.Errorf("zero length with huge offset = %d, %v", size, overflow)
	}

	// Non-zero length with an overflowing offset is rejected.
	_, overflow = calcMemSize64(new(uint256.Int).SetAllOne(), uint256.NewInt(1))
	if !overflow {
		t.Error("offset overflow with live length must be flagged")
	}

	// offset+length wrapping the uint64 is flagged too.
	_, overflow = calcMemSize64WithUint(uint256.NewInt(math.MaxUint64), 2)
	if !overflow {
		t.Error("sum wraparound must be flagged")
	}

	size, overflow = calcMemSize64(uint256.NewInt(64), uint256.NewInt(32))
	if overflow || size != 96 {
		t.Errorf("plain access = %d, %v, want 96", size, overflow)
	}
	t.Logf("✓ memory sizing follows the zero-length and overflow rules")
}

func TestGetDataPadding(t *testing.T) {
	src := []byte{0xde, 0xad, 0xbe, 0xef}

	// CALLDATALOAD-style read straddling the end pads with zeroes.
	got := getData(src, 2, 4)
	if len(got) != 4 || got[0] != 0xbe || got[1] != 0xef || got[2] != 0 || got[3] != 0 {
		t.Errorf("straddling read = %x", got)
	}
	// Entirely past the end is all zeroes of the requested size.
	got = getData(src, 100, 3)
	if len(got) != 3 || !allZero(got) {
		t.Errorf("past-end read = %x", got)
	}
	// A 256-bit offset beyond uint64 clamps to "past the end".
	got = getDataBig(src, new(uint256.Int).SetAllOne(), 2)
	if len(got) != 2 || !allZero(got) {
		t.Errorf("huge-offset read = %x", got)
	}
	t.Logf("✓ data reads zero-pad to the requested size")
}

func TestGasTierConstants(t *testing.T) {
	// The tier ladder is referenced all over the jump tables; keep it
	// pinned to the protocol values.
	tiers := []struct {
		name string
		got  uint64
		want uint64
	}{
		{"quick", GasQuickStep, 2},
		{"fastest", GasFastestStep, 3},
		{"fast", GasFastStep, 5},
		{"mid", GasMidStep, 8},
		{"slow", GasSlowStep, 10},
		{"ext", GasExtStep, 20},
	}
	for _, tier := range tiers {
		if tier.got != tier.want {
			t.Errorf("%s tier = %d, want %d", tier.name, tier.got, tier.want)
		}
	}
	t.Logf("✓ gas tier ladder intact")
}

func BenchmarkCallGas(b *testing.B) {
	req := uint256.NewInt(1_000_000)
	for i := 0; i < b.N; i++ {
		callGas(true, 30_000_000, 700, req) //nolint:errcheck
	}
}

func BenchmarkToWordSize(b *testing.B) {
	for i := 0; i < b.N; i++ {
		toWordSize(uint64(i))
	}
}
