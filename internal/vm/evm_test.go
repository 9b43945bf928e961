// Copyright 2024-2026 The helios Authors
// This file is part of the helios library.
//
// End-to-end tests of the call/create orchestrator against the journaled
// state model.

package vm

import (
	"bytes"
	"errors"
	"testing"

	"github.com/holiman/uint256"

	"github.com/helioschain/helios/common/crypto"
	"github.com/helioschain/helios/common/types"
	"github.com/helioschain/helios/internal/vm/evmtypes"
	"github.com/helioschain/helios/modules/state"
	"github.com/helioschain/helios/params"
)

func newTestEVM(t *testing.T, hardfork params.Hardfork) (*EVM, *state.IntraBlockState) {
	t.Helper()
	ibs := state.New(state.NewMemoryReader())
	rules := params.RulesForHardfork(hardfork, 1)
	chainConfig := params.ConfigForHardfork(hardfork, 1)
	blockCtx := evmtypes.BlockContext{
		CanTransfer: CanTransfer,
		Transfer:    Transfer,
		GetHash:     func(n uint64) types.Hash { return types.Hash{} },
		Coinbase:    types.HexToAddress("0xc0ffee0000000000000000000000000000000000"),
		BlockNumber: 1,
		Time:        1714000000,
		GasLimit:    30_000_000,
		Difficulty:  uint256.NewInt(0),
		BaseFee:     uint256.NewInt(7),
		BlobBaseFee: uint256.NewInt(1),
	}
	txCtx := evmtypes.TxContext{
		Origin:   types.HexToAddress("0x000000000000000000000000000000000000aaaa"),
		GasPrice: uint256.NewInt(1),
	}
	evm := NewEVMWithRules(blockCtx, txCtx, ibs, rules, chainConfig, Config{})
	return evm, ibs
}

func prepareTx(ibs *state.IntraBlockState, hardfork params.Hardfork, origin types.Address, dst *types.Address) {
	rules := params.RulesForHardfork(hardfork, 1)
	ibs.Prepare(rules, origin, types.HexToAddress("0xc0ffee0000000000000000000000000000000000"),
		dst, ActivePrecompiles(rules), nil, nil)
}

func TestCallSimpleAddition(t *testing.T) {
	// PUSH1 5, PUSH1 3, ADD, PUSH1 0, MSTORE, PUSH1 32, PUSH1 0, RETURN
	code := []byte{0x60, 0x05, 0x60, 0x03, 0x01, 0x60, 0x00, 0x52, 0x60, 0x20, 0x60, 0x00, 0xf3}
	contractAddr := types.HexToAddress("0x00000000000000000000000000000000000000c1")
	caller := types.HexToAddress("0x000000000000000000000000000000000000aaaa")

	evm, ibs := newTestEVM(t, params.Prague)
	ibs.CreateAccount(contractAddr, true)
	ibs.SetCode(contractAddr, code)
	prepareTx(ibs, params.Prague, caller, &contractAddr)

	ret, gasLeft, err := evm.Call(AccountRef(caller), contractAddr, nil, 30000, new(uint256.Int), false)
	if err != nil {
		t.Fatalf("Call failed: %v", err)
	}
	if len(ret) != 32 {
		t.Fatalf("expected 32-byte output, got %d bytes", len(ret))
	}
	want := uint256.NewInt(8).Bytes32()
	if !bytes.Equal(ret, want[:]) {
		t.Errorf("output = %x, want %x", ret, want)
	}
	// 7 PUSH/ADD/MSTORE/RETURN constant costs at 3 gas each, plus one word
	// of memory expansion (3 gas).
	wantUsed := uint64(7*3 + 3)
	if used := 30000 - gasLeft; used != wantUsed {
		t.Errorf("gas used = %d, want %d", used, wantUsed)
	}
	t.Logf("✓ simple addition returns 8 with exact gas accounting")
}

func TestCallRevertPropagation(t *testing.T) {
	// Inner: PUSH1 0x42, PUSH1 0, MSTORE, PUSH1 32, PUSH1 0, REVERT
	inner := []byte{0x60, 0x42, 0x60, 0x00, 0x52, 0x60, 0x20, 0x60, 0x00, 0xfd}
	innerAddr := types.HexToAddress("0x00000000000000000000000000000000000000d1")
	caller := types.HexToAddress("0x000000000000000000000000000000000000aaaa")

	evm, ibs := newTestEVM(t, params.Prague)
	ibs.CreateAccount(innerAddr, true)
	ibs.SetCode(innerAddr, inner)
	prepareTx(ibs, params.Prague, caller, &innerAddr)

	ret, gasLeft, err := evm.Call(AccountRef(caller), innerAddr, nil, 50000, new(uint256.Int), false)
	if !errors.Is(err, ErrExecutionReverted) {
		t.Fatalf("expected ErrExecutionReverted, got %v", err)
	}
	if gasLeft == 0 {
		t.Error("revert should return unspent gas")
	}
	if len(ret) != 32 || ret[31] != 0x42 {
		t.Errorf("revert data = %x, want 0x42 in lowest position", ret)
	}
	t.Logf("✓ revert returns data and unspent gas")
}

func TestCallRevertObservedByCaller(t *testing.T) {
	inner := []byte{0x60, 0x42, 0x60, 0x00, 0x52, 0x60, 0x20, 0x60, 0x00, 0xfd}
	innerAddr := types.HexToAddress("0x00000000000000000000000000000000000000d1")
	caller := types.HexToAddress("0x000000000000000000000000000000000000aaaa")
	outerAddr := types.HexToAddress("0x00000000000000000000000000000000000000d2")

	// Outer: CALL inner, store the status word at 0, RETURNDATASIZE at 32,
	// RETURNDATACOPY to 64, return 96 bytes.
	var outer []byte
	outer = append(outer, 0x60, 0x20) // retSize
	outer = append(outer, 0x60, 0x00) // retOffset
	outer = append(outer, 0x60, 0x00) // inSize
	outer = append(outer, 0x60, 0x00) // inOffset
	outer = append(outer, 0x60, 0x00) // value
	outer = append(outer, 0x73)       // PUSH20 inner address
	outer = append(outer, innerAddr.Bytes()...)
	outer = append(outer, 0x61, 0xff, 0xff) // PUSH2 0xffff gas
	outer = append(outer, 0xf1)             // CALL
	outer = append(outer, 0x60, 0x00, 0x52) // MSTORE status at 0
	outer = append(outer, 0x3d)             // RETURNDATASIZE
	outer = append(outer, 0x60, 0x20, 0x52) // MSTORE at 32
	outer = append(outer, 0x60, 0x20)       // length
	outer = append(outer, 0x60, 0x00)       // dataOffset
	outer = append(outer, 0x60, 0x40)       // memOffset
	outer = append(outer, 0x3e)             // RETURNDATACOPY
	outer = append(outer, 0x60, 0x60, 0x60, 0x00, 0xf3) // RETURN 96 bytes

	evm, ibs := newTestEVM(t, params.Prague)
	ibs.CreateAccount(innerAddr, true)
	ibs.SetCode(innerAddr, inner)
	ibs.CreateAccount(outerAddr, true)
	ibs.SetCode(outerAddr, outer)
	prepareTx(ibs, params.Prague, caller, &outerAddr)

	ret, _, err := evm.Call(AccountRef(caller), outerAddr, nil, 200000, new(uint256.Int), false)
	if err != nil {
		t.Fatalf("outer call failed: %v", err)
	}
	if len(ret) != 96 {
		t.Fatalf("expected 96-byte output, got %d", len(ret))
	}
	status := new(uint256.Int).SetBytes(ret[0:32])
	if !status.IsZero() {
		t.Error("CALL to reverting contract should push 0")
	}
	rds := new(uint256.Int).SetBytes(ret[32:64])
	if rds.Uint64() != 32 {
		t.Errorf("RETURNDATASIZE = %d, want 32", rds.Uint64())
	}
	if ret[95] != 0x42 {
		t.Errorf("revert data byte = %#x, want 0x42", ret[95])
	}
	t.Logf("✓ caller observes failed CALL with revert data")
}

func TestCreate2DeterminismAndCollision(t *testing.T) {
	caller := types.HexToAddress("0x0000000000000000000000000000000000000001")
	initCode := []byte{0x00} // STOP
	salt := new(uint256.Int)

	evm, ibs := newTestEVM(t, params.Prague)
	ibs.AddBalance(caller, uint256.NewInt(1))
	prepareTx(ibs, params.Prague, caller, nil)

	wantAddr := crypto.CreateAddress2(caller, salt.Bytes32(), crypto.Keccak256Hash(initCode))

	_, addr, _, err := evm.Create2(AccountRef(caller), initCode, 100000, new(uint256.Int), salt)
	if err != nil {
		t.Fatalf("first CREATE2 failed: %v", err)
	}
	if addr != wantAddr {
		t.Errorf("created address = %s, want %s", addr, wantAddr)
	}

	_, _, _, err = evm.Create2(AccountRef(caller), initCode, 100000, new(uint256.Int), salt)
	if !errors.Is(err, ErrContractAddressCollision) {
		t.Errorf("second CREATE2 should collide, got %v", err)
	}
	t.Logf("✓ CREATE2 address is deterministic and re-creation collides")
}

func TestCreateAddressDerivation(t *testing.T) {
	caller := types.HexToAddress("0x00000000000000000000000000000000000000be")
	evm, ibs := newTestEVM(t, params.Prague)
	prepareTx(ibs, params.Prague, caller, nil)

	nonce := ibs.GetNonce(caller)
	want := crypto.CreateAddress(caller, nonce)
	_, addr, _, err := evm.Create(AccountRef(caller), []byte{0x00}, 100000, new(uint256.Int))
	if err != nil {
		t.Fatalf("CREATE failed: %v", err)
	}
	if addr != want {
		t.Errorf("created address = %s, want %s", addr, want)
	}
	if ibs.GetNonce(caller) != nonce+1 {
		t.Error("creator nonce should be bumped")
	}
	t.Logf("✓ CREATE derives keccak(rlp(sender, nonce))[12:]")
}

func TestCreateRejects0xEFCode(t *testing.T) {
	// PUSH1 0xef, PUSH1 0, MSTORE8, PUSH1 2, PUSH1 0, RETURN -> deploys 0xef00
	initCode := []byte{0x60, 0xef, 0x60, 0x00, 0x53, 0x60, 0x02, 0x60, 0x00, 0xf3}
	caller := types.HexToAddress("0x00000000000000000000000000000000000000aa")

	evm, ibs := newTestEVM(t, params.London)
	prepareTx(ibs, params.London, caller, nil)

	nonce := ibs.GetNonce(caller)
	_, _, gasLeft, err := evm.Create(AccountRef(caller), initCode, 100000, new(uint256.Int))
	if !errors.Is(err, ErrInvalidCode) {
		t.Fatalf("expected ErrInvalidCode, got %v", err)
	}
	if gasLeft != 0 {
		t.Errorf("EIP-3541 failure should consume all gas, left %d", gasLeft)
	}
	if ibs.GetNonce(caller) != nonce+1 {
		t.Error("creator nonce stays incremented after failed deployment")
	}
	t.Logf("✓ EIP-3541 rejects deployed code starting with 0xef")
}

func TestCreatedCodeTooLarge(t *testing.T) {
	// Returns 24577 zero bytes: PUSH3 0x006001 PUSH1 0 RETURN
	initCode := []byte{0x62, 0x00, 0x60, 0x01, 0x60, 0x00, 0xf3}
	caller := types.HexToAddress("0x00000000000000000000000000000000000000ab")

	evm, ibs := newTestEVM(t, params.London)
	prepareTx(ibs, params.London, caller, nil)

	_, _, _, err := evm.Create(AccountRef(caller), initCode, 10_000_000, new(uint256.Int))
	if !errors.Is(err, ErrMaxCodeSizeExceeded) {
		t.Fatalf("expected ErrMaxCodeSizeExceeded, got %v", err)
	}
	t.Logf("✓ EIP-170 caps deployed code at 24576 bytes")
}

func TestInitCodeTooLarge(t *testing.T) {
	caller := types.HexToAddress("0x00000000000000000000000000000000000000ac")
	evm, ibs := newTestEVM(t, params.Shanghai)
	prepareTx(ibs, params.Shanghai, caller, nil)

	big := make([]byte, params.MaxInitCodeSize+1)
	_, _, _, err := evm.Create(AccountRef(caller), big, 10_000_000, new(uint256.Int))
	if !errors.Is(err, ErrMaxInitCodeSizeExceeded) {
		t.Fatalf("expected ErrMaxInitCodeSizeExceeded, got %v", err)
	}
	t.Logf("✓ EIP-3860 bounds initcode size")
}

func TestStaticCallWriteProtection(t *testing.T) {
	// PUSH1 1, PUSH1 0, SSTORE
	code := []byte{0x60, 0x01, 0x60, 0x00, 0x55}
	contractAddr := types.HexToAddress("0x00000000000000000000000000000000000000e1")
	caller := types.HexToAddress("0x000000000000000000000000000000000000aaaa")

	evm, ibs := newTestEVM(t, params.Prague)
	ibs.CreateAccount(contractAddr, true)
	ibs.SetCode(contractAddr, code)
	prepareTx(ibs, params.Prague, caller, &contractAddr)

	_, _, err := evm.StaticCall(AccountRef(caller), contractAddr, nil, 100000)
	if !errors.Is(err, ErrWriteProtection) {
		t.Fatalf("expected ErrWriteProtection, got %v", err)
	}
	var v uint256.Int
	slot := types.Hash{}
	ibs.GetState(contractAddr, &slot, &v)
	if !v.IsZero() {
		t.Error("storage must be unchanged after static violation")
	}
	t.Logf("✓ static frames refuse SSTORE and leave state unchanged")
}

func TestInsufficientBalanceFailsBeforeExecution(t *testing.T) {
	contractAddr := types.HexToAddress("0x00000000000000000000000000000000000000e2")
	caller := types.HexToAddress("0x000000000000000000000000000000000000aaab")

	evm, ibs := newTestEVM(t, params.Prague)
	ibs.CreateAccount(contractAddr, true)
	ibs.SetCode(contractAddr, []byte{0x00})
	prepareTx(ibs, params.Prague, caller, &contractAddr)

	_, gasLeft, err := evm.Call(AccountRef(caller), contractAddr, nil, 100000, uint256.NewInt(1), false)
	if !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}
	if gasLeft != 100000 {
		t.Errorf("value-transfer precheck should not burn gas, left %d", gasLeft)
	}
	t.Logf("✓ value transfer fails before execution without burning gas")
}

func TestCallDepthLimit(t *testing.T) {
	// Self-recursive: CALL self with all remaining gas, then STOP.
	contractAddr := types.HexToAddress("0x00000000000000000000000000000000000000e3")
	caller := types.HexToAddress("0x000000000000000000000000000000000000aaac")

	var code []byte
	code = append(code, 0x60, 0x00) // retSize
	code = append(code, 0x60, 0x00) // retOffset
	code = append(code, 0x60, 0x00) // inSize
	code = append(code, 0x60, 0x00) // inOffset
	code = append(code, 0x60, 0x00) // value
	code = append(code, 0x30)       // ADDRESS
	code = append(code, 0x5a)       // GAS
	code = append(code, 0xf1)       // CALL
	code = append(code, 0x00)       // STOP

	evm, ibs := newTestEVM(t, params.Prague)
	ibs.CreateAccount(contractAddr, true)
	ibs.SetCode(contractAddr, code)
	prepareTx(ibs, params.Prague, caller, &contractAddr)

	// 2^40 gas keeps roughly 1e5 gas alive after 1024 rounds of the 63/64
	// rule, so the recursion bottoms out at the depth limit rather than on
	// gas; every frame still terminates cleanly because a failed inner call
	// just pushes 0.
	_, _, err := evm.Call(AccountRef(caller), contractAddr, nil, 1<<40, new(uint256.Int), false)
	if err != nil {
		t.Fatalf("recursive call tower should succeed, got %v", err)
	}
	t.Logf("✓ call depth is bounded without surfacing an error")
}

func TestSelfdestruct6780OnlySameTx(t *testing.T) {
	// Pre-existing contract that self-destructs to the caller.
	code := []byte{0x33, 0xff} // CALLER, SELFDESTRUCT
	contractAddr := types.HexToAddress("0x00000000000000000000000000000000000000e4")
	caller := types.HexToAddress("0x000000000000000000000000000000000000aaad")

	reader := state.NewMemoryReader()
	reader.SetCode(contractAddr, code)
	reader.SetBalance(contractAddr, uint256.NewInt(1000))
	ibs := state.New(reader)

	rules := params.RulesForHardfork(params.Prague, 1)
	chainConfig := params.ConfigForHardfork(params.Prague, 1)
	blockCtx := evmtypes.BlockContext{
		CanTransfer: CanTransfer,
		Transfer:    Transfer,
		GetHash:     func(n uint64) types.Hash { return types.Hash{} },
		BlockNumber: 1,
		GasLimit:    30_000_000,
	}
	evm := NewEVMWithRules(blockCtx, evmtypes.TxContext{Origin: caller, GasPrice: new(uint256.Int)}, ibs, rules, chainConfig, Config{})
	prepareTx(ibs, params.Prague, caller, &contractAddr)

	_, _, err := evm.Call(AccountRef(caller), contractAddr, nil, 100000, new(uint256.Int), false)
	if err != nil {
		t.Fatalf("call failed: %v", err)
	}
	// Balance swept to the beneficiary...
	if ibs.GetBalance(caller).Uint64() != 1000 {
		t.Errorf("beneficiary balance = %d, want 1000", ibs.GetBalance(caller).Uint64())
	}
	// ...but the pre-existing account survives the transaction.
	deleted := ibs.FinalizeTx(rules)
	if len(deleted) != 0 {
		t.Errorf("pre-existing account must not be deleted under EIP-6780, got %v", deleted)
	}
	if len(ibs.GetCode(contractAddr)) == 0 {
		t.Error("code should survive a 6780 selfdestruct of a pre-existing account")
	}
	t.Logf("✓ EIP-6780 restricts deletion to same-transaction creations")
}

func TestPrecompileDispatch(t *testing.T) {
	caller := types.HexToAddress("0x000000000000000000000000000000000000aaae")
	identity := types.BytesToAddress([]byte{4})

	evm, ibs := newTestEVM(t, params.Prague)
	prepareTx(ibs, params.Prague, caller, &identity)

	input := []byte("echo")
	ret, gasLeft, err := evm.Call(AccountRef(caller), identity, input, 1000, new(uint256.Int), false)
	if err != nil {
		t.Fatalf("identity precompile failed: %v", err)
	}
	if !bytes.Equal(ret, input) {
		t.Errorf("identity output = %x, want %x", ret, input)
	}
	// 15 + 3*ceil(4/32) = 18
	if used := 1000 - gasLeft; used != 18 {
		t.Errorf("identity gas used = %d, want 18", used)
	}
	t.Logf("✓ precompile addresses bypass the interpreter")
}

func TestPrecompileOutOfGas(t *testing.T) {
	caller := types.HexToAddress("0x000000000000000000000000000000000000aaaf")
	identity := types.BytesToAddress([]byte{4})

	evm, ibs := newTestEVM(t, params.Prague)
	prepareTx(ibs, params.Prague, caller, &identity)

	_, gasLeft, err := evm.Call(AccountRef(caller), identity, []byte("echo"), 10, new(uint256.Int), false)
	if !errors.Is(err, ErrOutOfGas) {
		t.Fatalf("expected ErrOutOfGas, got %v", err)
	}
	if gasLeft != 0 {
		t.Errorf("precompile OOG consumes the forwarded gas, left %d", gasLeft)
	}
	t.Logf("✓ precompile gas shortfall is out-of-gas")
}
