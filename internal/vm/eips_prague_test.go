// Copyright 2024-2026 The helios Authors
// This file is part of the helios library.
//
// Tests for the Prague fork: EIP-7702 delegation designators.

package vm

import (
	"bytes"
	"testing"

	"github.com/holiman/uint256"

	"github.com/helioschain/helios/common/types"
	"github.com/helioschain/helios/params"
)

func TestHasDelegation(t *testing.T) {
	addr := types.HexToAddress("0x1111111111111111111111111111111111111111")
	designator := AddressToDelegation(addr)

	if !HasDelegation(designator) {
		t.Error("23-byte 0xef0100-prefixed code should be a delegation")
	}
	if HasDelegation(designator[:22]) {
		t.Error("truncated designator should not parse")
	}
	if HasDelegation(append(designator, 0x00)) {
		t.Error("over-long designator should not parse")
	}
	if HasDelegation([]byte{0xef, 0x00, 0x00}) {
		t.Error("wrong prefix should not parse")
	}

	t.Logf("✓ HasDelegation recognizes exactly 0xef0100||address")
}

func TestParseDelegation(t *testing.T) {
	addr := types.HexToAddress("0x2222222222222222222222222222222222222222")
	designator := AddressToDelegation(addr)

	parsed, ok := ParseDelegation(designator)
	if !ok {
		t.Fatal("designator should parse")
	}
	if parsed != addr {
		t.Errorf("parsed address = %s, want %s", parsed, addr)
	}

	if _, ok := ParseDelegation([]byte{0x60, 0x00}); ok {
		t.Error("ordinary code should not parse as delegation")
	}

	t.Logf("✓ ParseDelegation extracts the delegate address")
}

func TestDelegatedCallExecutesInDelegatorContext(t *testing.T) {
	// Delegate code returns ADDRESS, so the output tells us whose context
	// the code ran in.
	delegateCode := []byte{0x30, 0x60, 0x00, 0x52, 0x60, 0x20, 0x60, 0x00, 0xf3}
	delegate := types.HexToAddress("0x00000000000000000000000000000000000000f1")
	eoa := types.HexToAddress("0x00000000000000000000000000000000000000f2")
	caller := types.HexToAddress("0x000000000000000000000000000000000000aaaa")

	evm, ibs := newTestEVM(t, params.Prague)
	ibs.CreateAccount(delegate, true)
	ibs.SetCode(delegate, delegateCode)
	ibs.CreateAccount(eoa, false)
	ibs.SetCode(eoa, AddressToDelegation(delegate))
	prepareTx(ibs, params.Prague, caller, &eoa)

	ret, _, err := evm.Call(AccountRef(caller), eoa, nil, 100000, new(uint256.Int), false)
	if err != nil {
		t.Fatalf("delegated call failed: %v", err)
	}
	want := eoa.Hash()
	if !bytes.Equal(ret, want.Bytes()) {
		t.Errorf("ADDRESS inside delegated code = %x, want the delegator %x", ret, want)
	}
	t.Logf("✓ delegated code runs in the delegator's context")
}

func TestDelegationNotFollowedTransitively(t *testing.T) {
	// a delegates to b, b delegates to c. Calling a must execute b's code
	// literally (the designator bytes run as code and hit the invalid 0xef
	// opcode), never c's.
	c := types.HexToAddress("0x00000000000000000000000000000000000000f5")
	b := types.HexToAddress("0x00000000000000000000000000000000000000f4")
	a := types.HexToAddress("0x00000000000000000000000000000000000000f3")
	caller := types.HexToAddress("0x000000000000000000000000000000000000aaaa")

	evm, ibs := newTestEVM(t, params.Prague)
	ibs.CreateAccount(c, true)
	ibs.SetCode(c, []byte{0x00})
	ibs.CreateAccount(b, false)
	ibs.SetCode(b, AddressToDelegation(c))
	ibs.CreateAccount(a, false)
	ibs.SetCode(a, AddressToDelegation(b))
	prepareTx(ibs, params.Prague, a, &a)

	_, _, err := evm.Call(AccountRef(caller), a, nil, 100000, new(uint256.Int), false)
	if err == nil {
		t.Fatal("transitive delegation must not be followed; executing the designator bytes should fail")
	}
	t.Logf("✓ delegation resolves once, not transitively (got: %v)", err)
}

func TestDelegationPreGateIgnored(t *testing.T) {
	// Before Prague the designator is plain (invalid) code.
	delegate := types.HexToAddress("0x00000000000000000000000000000000000000f6")
	eoa := types.HexToAddress("0x00000000000000000000000000000000000000f7")
	caller := types.HexToAddress("0x000000000000000000000000000000000000aaaa")

	evm, ibs := newTestEVM(t, params.Cancun)
	ibs.CreateAccount(delegate, true)
	ibs.SetCode(delegate, []byte{0x00})
	ibs.CreateAccount(eoa, false)
	ibs.SetCode(eoa, AddressToDelegation(delegate))
	prepareTx(ibs, params.Cancun, caller, &eoa)

	_, _, err := evm.Call(AccountRef(caller), eoa, nil, 100000, new(uint256.Int), false)
	if err == nil {
		t.Fatal("pre-Prague, designator bytes should execute literally and fail on 0xef")
	}
	t.Logf("✓ delegation gated on the Prague fork")
}
