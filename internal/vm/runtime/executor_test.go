// Copyright 2024-2026 The helios Authors
// This file is part of the helios library.
//
// Tests of the async-capable executor: yield/resume, refund capping and the
// transaction lifecycle.

package runtime

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"

	"github.com/helioschain/helios/common/types"
	"github.com/helioschain/helios/internal/vm"
	"github.com/helioschain/helios/modules/state"
	"github.com/helioschain/helios/params"
)

// missingBackend answers only what it was seeded with; everything else is a
// miss and suspends execution.
type missingBackend struct {
	known map[state.DataRequest]state.DataValue
}

func newMissingBackend() *missingBackend {
	return &missingBackend{known: make(map[state.DataRequest]state.DataValue)}
}

func (m *missingBackend) seed(req state.DataRequest, val state.DataValue) {
	m.known[req] = val
}

func (m *missingBackend) TryGet(req state.DataRequest) (state.DataValue, bool) {
	val, ok := m.known[req]
	return val, ok
}

func seedAccount(b *missingBackend, addr types.Address, balance uint64, nonce uint64, code []byte) {
	b.seed(state.DataRequest{Kind: state.BalanceData, Addr: addr}, state.DataValue{Word: *uint256.NewInt(balance)})
	b.seed(state.DataRequest{Kind: state.NonceData, Addr: addr}, state.DataValue{U64: nonce})
	b.seed(state.DataRequest{Kind: state.CodeData, Addr: addr}, state.DataValue{Bytes: code})
}

var (
	testCaller   = types.HexToAddress("0x000000000000000000000000000000000000aaaa")
	testContract = types.HexToAddress("0x00000000000000000000000000000000000000c1")
)

func baseRequest(kind CallKind, code []byte, gas uint64) ExecutionRequest {
	return ExecutionRequest{
		Hardfork:    params.Prague,
		ChainID:     1,
		Coinbase:    types.HexToAddress("0xc0ffee0000000000000000000000000000000000"),
		BlockNumber: 1,
		Time:        1714000000,
		GasLimit:    30_000_000,
		BaseFee:     uint256.NewInt(7),
		Origin:      testCaller,
		GasPrice:    uint256.NewInt(1),
		Kind:        kind,
		Caller:      testCaller,
		Target:      testContract,
		Input:       nil,
		Gas:         gas,
	}
}

func TestExecutorSimpleAddition(t *testing.T) {
	// PUSH1 5, PUSH1 3, ADD, PUSH1 0, MSTORE, PUSH1 32, PUSH1 0, RETURN
	code := []byte{0x60, 0x05, 0x60, 0x03, 0x01, 0x60, 0x00, 0x52, 0x60, 0x20, 0x60, 0x00, 0xf3}
	backend := newMissingBackend()
	seedAccount(backend, testCaller, 0, 0, nil)
	seedAccount(backend, testContract, 0, 1, code)

	exec := NewExecutor(baseRequest(KindCall, nil, 30000), backend)
	out := exec.Start()

	done, ok := out.(*Done)
	require.True(t, ok, "synchronous backend should not yield")
	res := done.Result
	require.True(t, res.Success, "err: %v", res.Err)
	want := uint256.NewInt(8).Bytes32()
	require.Equal(t, want[:], res.Output)
	require.Equal(t, uint64(24), res.GasUsed)
	require.Equal(t, uint64(30000-24), res.GasLeft)
}

func TestExecutorYieldAndResume(t *testing.T) {
	// PUSH1 0, SLOAD, PUSH1 0, MSTORE, PUSH1 32, PUSH1 0, RETURN
	code := []byte{0x60, 0x00, 0x54, 0x60, 0x00, 0x52, 0x60, 0x20, 0x60, 0x00, 0xf3}
	backend := newMissingBackend()
	seedAccount(backend, testCaller, 0, 0, nil)
	seedAccount(backend, testContract, 0, 1, code)
	// Storage slot 0 deliberately NOT seeded.

	exec := NewExecutor(baseRequest(KindCall, nil, 100000), backend)
	out := exec.Start()

	yield, ok := out.(*Yield)
	require.True(t, ok, "missing storage read should suspend")
	require.Equal(t, state.StorageData, yield.Request.Kind)
	require.Equal(t, testContract, yield.Request.Addr)
	require.Equal(t, types.Hash{}, yield.Request.Slot)

	out = yield.Resume(state.DataValue{Word: *uint256.NewInt(0xbeef)})
	done, ok := out.(*Done)
	require.True(t, ok, "resume should run to completion")
	res := done.Result
	require.True(t, res.Success, "err: %v", res.Err)
	require.Equal(t, uint64(0xbeef), new(uint256.Int).SetBytes(res.Output).Uint64())

	// 3 (PUSH1) + 2100 (cold SLOAD) + 3+3 (PUSH1, MSTORE) + 3 (mem)
	// + 3+3 (PUSH1, PUSH1) = 2118; no duplicate charge on the retried read.
	require.Equal(t, uint64(2118), res.GasUsed)
}

func TestExecutorMultipleYields(t *testing.T) {
	// BALANCE of an address, then SLOAD: two distinct misses.
	// PUSH20 addr, BALANCE, POP, PUSH1 0, SLOAD, STOP
	other := types.HexToAddress("0x00000000000000000000000000000000000000d7")
	var code []byte
	code = append(code, 0x73)
	code = append(code, other.Bytes()...)
	code = append(code, 0x31, 0x50, 0x60, 0x00, 0x54, 0x00)

	backend := newMissingBackend()
	seedAccount(backend, testCaller, 0, 0, nil)
	seedAccount(backend, testContract, 0, 1, code)

	exec := NewExecutor(baseRequest(KindCall, nil, 100000), backend)
	out := exec.Start()

	yields := 0
	for {
		switch o := out.(type) {
		case *Yield:
			yields++
			out = o.Resume(state.DataValue{})
		case *Done:
			require.True(t, o.Result.Success, "err: %v", o.Result.Err)
			// Loading the foreign account touches nonce and balance, the
			// storage slot misses separately.
			require.Equal(t, 3, yields)
			return
		}
	}
}

func TestExecutorRefundCapOnClear(t *testing.T) {
	// Clear pre-set slot 0 (PUSH1 0, PUSH1 0, SSTORE), then burn gas with a
	// keccak loop to make room for the refund under the cap.
	var code []byte
	code = append(code, 0x60, 0x00, 0x60, 0x00, 0x55) // SSTORE(0, 0)
	// KECCAK256 over 256 bytes, 40 times: burns ~ (30+6*8+mem) each.
	for i := 0; i < 40; i++ {
		code = append(code, 0x61, 0x01, 0x00, 0x60, 0x00, 0x20, 0x50) // PUSH2 256, PUSH1 0, KECCAK256, POP
	}
	code = append(code, 0x00) // STOP

	backend := newMissingBackend()
	seedAccount(backend, testCaller, 0, 0, nil)
	seedAccount(backend, testContract, 0, 1, code)
	backend.seed(state.DataRequest{Kind: state.StorageData, Addr: testContract, Slot: types.Hash{}},
		state.DataValue{Word: *uint256.NewInt(1)})

	exec := NewExecutor(baseRequest(KindCall, nil, 100000), backend)
	out := exec.Start()
	done, ok := out.(*Done)
	require.True(t, ok)
	res := done.Result
	require.True(t, res.Success, "err: %v", res.Err)

	// London+: the clear earns 4800 but the cap is gasUsed/5.
	require.LessOrEqual(t, res.Refund, (res.GasUsed+res.Refund)/params.RefundQuotientEIP3529)
	require.NotZero(t, res.Refund)

	// The slot is cleared in the dirty dump.
	require.Contains(t, res.DirtyStorage, testContract)
}

func TestExecutorRevertResult(t *testing.T) {
	// PUSH1 0x42, PUSH1 0, MSTORE, PUSH1 32, PUSH1 0, REVERT
	code := []byte{0x60, 0x42, 0x60, 0x00, 0x52, 0x60, 0x20, 0x60, 0x00, 0xfd}
	backend := newMissingBackend()
	seedAccount(backend, testCaller, 0, 0, nil)
	seedAccount(backend, testContract, 0, 1, code)

	exec := NewExecutor(baseRequest(KindCall, nil, 50000), backend)
	out := exec.Start()
	done, ok := out.(*Done)
	require.True(t, ok)
	res := done.Result
	require.False(t, res.Success)
	require.ErrorIs(t, res.Err, vm.ErrExecutionReverted)
	require.Len(t, res.Output, 32)
	require.Equal(t, byte(0x42), res.Output[31])
	require.NotZero(t, res.GasLeft, "revert hands back unspent gas")
}

func TestExecutorCreate(t *testing.T) {
	// Initcode: STOP (deploys empty code).
	backend := newMissingBackend()
	seedAccount(backend, testCaller, 0, 0, nil)

	req := baseRequest(KindCreate, nil, 100000)
	req.Input = []byte{0x00}

	// The created address derives from caller+nonce; its account reads miss
	// until resumed with zero values.
	exec := NewExecutor(req, backend)
	out := exec.Start()
	for {
		if y, ok := out.(*Yield); ok {
			out = y.Resume(state.DataValue{})
			continue
		}
		break
	}
	done, ok := out.(*Done)
	require.True(t, ok)
	res := done.Result
	require.True(t, res.Success, "err: %v", res.Err)
	require.NotNil(t, res.CreatedAddress)
}

func TestExecutorTraceCapture(t *testing.T) {
	code := []byte{0x60, 0x01, 0x60, 0x02, 0x01, 0x00} // PUSH1 1, PUSH1 2, ADD, STOP
	backend := newMissingBackend()
	seedAccount(backend, testCaller, 0, 0, nil)
	seedAccount(backend, testContract, 0, 1, code)

	req := baseRequest(KindCall, nil, 30000)
	req.Trace = true

	exec := NewExecutor(req, backend)
	out := exec.Start()
	done, ok := out.(*Done)
	require.True(t, ok)
	res := done.Result
	require.True(t, res.Success)
	require.Len(t, res.StructLogs, 4, "one record per executed opcode")
	require.Equal(t, "PUSH1", res.StructLogs[0].OpName())
	require.Equal(t, "ADD", res.StructLogs[2].OpName())
	require.Equal(t, 1, res.StructLogs[0].Depth)
}

func TestExecutorStaticCall(t *testing.T) {
	// SSTORE under a static frame fails and consumes the forwarded gas.
	code := []byte{0x60, 0x01, 0x60, 0x00, 0x55}
	backend := newMissingBackend()
	seedAccount(backend, testCaller, 0, 0, nil)
	seedAccount(backend, testContract, 0, 1, code)
	// The SSTORE gas function reads the slot before the static check runs.
	backend.seed(state.DataRequest{Kind: state.StorageData, Addr: testContract, Slot: types.Hash{}},
		state.DataValue{})

	exec := NewExecutor(baseRequest(KindStaticCall, nil, 30000), backend)
	out := exec.Start()
	done, ok := out.(*Done)
	require.True(t, ok)
	res := done.Result
	require.False(t, res.Success)
	require.ErrorIs(t, res.Err, vm.ErrWriteProtection)
	require.Zero(t, res.GasLeft)
}

func TestExecutorDoubleStart(t *testing.T) {
	backend := newMissingBackend()
	seedAccount(backend, testCaller, 0, 0, nil)
	seedAccount(backend, testContract, 0, 1, nil)

	exec := NewExecutor(baseRequest(KindCall, nil, 30000), backend)
	out := exec.Start()
	_, ok := out.(*Done)
	require.True(t, ok)

	out = exec.Start()
	done, ok := out.(*Done)
	require.True(t, ok)
	require.False(t, done.Result.Success)
	require.Error(t, done.Result.Err)
}
