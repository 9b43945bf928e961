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

package runtime

import (
	"math/big"

	"github.com/VictoriaMetrics/metrics"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/helioschain/helios/common/block"
	"github.com/helioschain/helios/common/types"
	"github.com/helioschain/helios/internal/vm"
	"github.com/helioschain/helios/internal/vm/evmtypes"
	"github.com/helioschain/helios/log"
	"github.com/helioschain/helios/modules/state"
	"github.com/helioschain/helios/params"
)

var (
	execStartedCounter = metrics.NewCounter(`helios_executor_transactions_total`)
	execYieldCounter   = metrics.NewCounter(`helios_executor_yields_total`)
	execRevertCounter  = metrics.NewCounter(`helios_executor_reverts_total`)
	execFailCounter    = metrics.NewCounter(`helios_executor_failures_total`)
)

// CallKind selects one of the six entry variants of an execution request.
type CallKind int

const (
	KindCall CallKind = iota
	KindCallCode
	KindDelegateCall
	KindStaticCall
	KindCreate
	KindCreate2
)

// ExecutionRequest is the public entry point of the engine: one top-level
// call or creation under a named hardfork.
type ExecutionRequest struct {
	Hardfork params.Hardfork
	ChainID  uint64

	// Block context.
	Coinbase    types.Address
	BlockNumber uint64
	Time        uint64
	GasLimit    uint64
	BaseFee     *uint256.Int
	Difficulty  *uint256.Int
	PrevRanDao  *types.Hash
	BlobBaseFee *uint256.Int
	GetHashFn   func(n uint64) types.Hash

	// Transaction context.
	Origin     types.Address
	GasPrice   *uint256.Int
	BlobHashes []types.Hash

	// Call parameters.
	Kind   CallKind
	Caller types.Address
	Target types.Address // unused for creates
	Value  *uint256.Int
	Input  []byte // calldata, or initcode for creates
	Salt   *uint256.Int
	Gas    uint64

	// EIP-2930 access list and EIP-7702 authorities, pre-warmed.
	AccessList  evmtypes.AccessList
	Authorities []types.Address

	// Tracing.
	Trace       bool
	TraceConfig *vm.LogConfig

	// EVMConfig carries interpreter tunables (step limit, extra EIPs).
	EVMConfig vm.Config
}

// ExecutionResult is what a finished execution reports back, together with
// the dirty keys a stateful backend needs to commit.
type ExecutionResult struct {
	Success        bool
	GasLeft        uint64
	GasUsed        uint64
	Refund         uint64 // refund granted after the EIP-3529 cap
	Output         []byte
	Logs           []*block.Log
	Selfdestructs  []types.Address
	CreatedAddress *types.Address
	Err            error

	DirtyAccounts []types.Address
	DirtyStorage  map[types.Address][]types.Hash

	StructLogs []vm.StructLog
}

// Outcome is the sum type returned by Start and Resume: execution either
// finished (Done) or suspended on a missing datum (Yield).
type Outcome interface {
	outcome()
}

// Done wraps the final result.
type Done struct {
	Result *ExecutionResult
}

func (*Done) outcome() {}

// Yield reports a suspended execution: the backend could not answer Request
// synchronously. Supply the value with Resume; no state is rolled back in
// the meantime, so a yield is never a revert.
type Yield struct {
	Request state.DataRequest

	exec *Executor
}

func (*Yield) outcome() {}

// Resume hands the requested value to the suspended execution and runs it to
// its next suspension or completion. The read that missed retries against
// the now-populated cache, so nothing is charged twice.
func (y *Yield) Resume(value state.DataValue) Outcome {
	return y.exec.resume(value)
}

// Executor drives one transaction over a miss-capable backend. The
// interpreter runs on its own goroutine; the goroutine parks whenever the
// backend misses, keeping every frame, pc and memory intact across the
// suspension. Exactly one of the two sides runs at any time, so execution
// stays cooperatively single-threaded.
type Executor struct {
	req     ExecutionRequest
	backend state.TryReader

	reqCh  chan state.DataRequest
	valCh  chan state.DataValue
	doneCh chan *ExecutionResult

	started  bool
	finished bool
}

// NewExecutor prepares an executor over the given backend. A fully
// synchronous backend (e.g. state.MemoryReader) never yields.
func NewExecutor(req ExecutionRequest, backend state.TryReader) *Executor {
	return &Executor{
		req:     req,
		backend: backend,
		reqCh:   make(chan state.DataRequest),
		valCh:   make(chan state.DataValue),
		doneCh:  make(chan *ExecutionResult, 1),
	}
}

// Start begins execution and runs to the first suspension or completion.
func (e *Executor) Start() Outcome {
	if e.started {
		return &Done{Result: &ExecutionResult{
			Success: false,
			Err:     errors.New("executor already started"),
		}}
	}
	e.started = true
	execStartedCounter.Inc()

	fetch := func(req state.DataRequest) state.DataValue {
		if val, ok := e.backend.TryGet(req); ok {
			return val
		}
		// Park the interpreter goroutine until the embedder resumes.
		e.reqCh <- req
		return <-e.valCh
	}
	reader := state.NewAsyncReader(fetch)

	go e.run(reader)
	return e.wait()
}

func (e *Executor) resume(value state.DataValue) Outcome {
	if !e.started || e.finished {
		return &Done{Result: &ExecutionResult{
			Success: false,
			Err:     errors.New("resume on idle executor"),
		}}
	}
	e.valCh <- value
	return e.wait()
}

// wait blocks until the interpreter goroutine either suspends or completes.
func (e *Executor) wait() Outcome {
	select {
	case req := <-e.reqCh:
		execYieldCounter.Inc()
		log.Debug("execution suspended on state read",
			"kind", req.Kind.String(), "addr", req.Addr, "slot", req.Slot)
		return &Yield{Request: req, exec: e}
	case res := <-e.doneCh:
		e.finished = true
		return &Done{Result: res}
	}
}

// run executes the whole transaction on the worker goroutine.
func (e *Executor) run(reader state.Reader) {
	defer func() {
		if r := recover(); r != nil {
			log.Error("executor worker panic", "panic", r)
			e.doneCh <- &ExecutionResult{
				Success: false,
				Err:     errors.Errorf("execution panic: %v", r),
			}
		}
	}()

	req := e.req
	rules := params.RulesForHardfork(req.Hardfork, req.ChainID)
	chainConfig := params.ConfigForHardfork(req.Hardfork, int64(req.ChainID))

	ibs := state.New(reader)

	var dst *types.Address
	if req.Kind == KindCall || req.Kind == KindCallCode ||
		req.Kind == KindDelegateCall || req.Kind == KindStaticCall {
		target := req.Target
		dst = &target
	}
	ibs.Prepare(rules, req.Origin, req.Coinbase, dst,
		vm.ActivePrecompiles(rules), req.AccessList, req.Authorities)

	value := req.Value
	if value == nil {
		value = new(uint256.Int)
	}
	gasPrice := req.GasPrice
	if gasPrice == nil {
		gasPrice = new(uint256.Int)
	}

	blockCtx := evmtypes.BlockContext{
		CanTransfer: vm.CanTransfer,
		Transfer:    vm.Transfer,
		GetHash:     req.GetHashFn,
		Coinbase:    req.Coinbase,
		BlockNumber: req.BlockNumber,
		Time:        req.Time,
		GasLimit:    req.GasLimit,
		Difficulty:  req.Difficulty,
		BaseFee:     req.BaseFee,
		PrevRanDao:  req.PrevRanDao,
		BlobBaseFee: req.BlobBaseFee,
	}
	if blockCtx.GetHash == nil {
		blockCtx.GetHash = func(n uint64) types.Hash {
			return types.BytesToHash(new(big.Int).SetUint64(n).Bytes())
		}
	}
	txCtx := evmtypes.TxContext{
		Origin:     req.Origin,
		GasPrice:   gasPrice,
		BlobHashes: req.BlobHashes,
	}

	vmConfig := req.EVMConfig
	var tracer *vm.StructLogger
	if req.Trace {
		tracer = vm.NewStructLogger(req.TraceConfig)
		vmConfig.Debug = true
		vmConfig.Tracer = tracer
	}

	evm := vm.NewEVMWithRules(blockCtx, txCtx, ibs, rules, chainConfig, vmConfig)

	caller := vm.AccountRef(req.Caller)

	var (
		output  []byte
		gasLeft uint64
		created *types.Address
		err     error
	)
	switch req.Kind {
	case KindCall:
		output, gasLeft, err = evm.Call(caller, req.Target, req.Input, req.Gas, value, false)
	case KindCallCode:
		output, gasLeft, err = evm.CallCode(caller, req.Target, req.Input, req.Gas, value)
	case KindDelegateCall:
		// A top-level delegate call synthesizes the parent frame the opcode
		// path would normally provide.
		parent := vm.NewContract(caller, caller, value, req.Gas, vmConfig.SkipAnalysis)
		output, gasLeft, err = evm.DelegateCall(parent, req.Target, req.Input, req.Gas)
	case KindStaticCall:
		output, gasLeft, err = evm.StaticCall(caller, req.Target, req.Input, req.Gas)
	case KindCreate:
		var addr types.Address
		output, addr, gasLeft, err = evm.Create(caller, req.Input, req.Gas, value)
		if err == nil {
			created = &addr
		}
	case KindCreate2:
		salt := req.Salt
		if salt == nil {
			salt = new(uint256.Int)
		}
		var addr types.Address
		output, addr, gasLeft, err = evm.Create2(caller, req.Input, req.Gas, value, salt)
		if err == nil {
			created = &addr
		}
	default:
		err = errors.Errorf("unknown call kind %d", req.Kind)
	}

	gasUsed := req.Gas - gasLeft

	// EIP-3529 refund cap: gas_used/5 after London, gas_used/2 before.
	quotient := params.RefundQuotient
	if rules.IsLondon {
		quotient = params.RefundQuotientEIP3529
	}
	// The counter itself is journalled: anything accumulated inside a
	// reverted scope has already been rolled back with the rest of the
	// state, so no special-casing is needed here.
	refund := ibs.GetRefund()
	if capped := gasUsed / quotient; refund > capped {
		refund = capped
	}
	if err == nil {
		gasLeft += refund
		gasUsed -= refund
	}
	if err == vm.ErrExecutionReverted {
		execRevertCounter.Inc()
	} else if err != nil {
		execFailCounter.Inc()
	}

	logs := ibs.GetLogs()
	deleted := ibs.FinalizeTx(rules)

	res := &ExecutionResult{
		Success:        err == nil,
		GasLeft:        gasLeft,
		GasUsed:        gasUsed,
		Refund:         refund,
		Output:         output,
		Logs:           logs,
		Selfdestructs:  deleted,
		CreatedAddress: created,
		Err:            err,
		DirtyAccounts:  ibs.DirtyAccounts(),
		DirtyStorage:   ibs.DirtyStorage(),
	}
	if err != nil {
		res.Logs = nil
	}
	if tracer != nil {
		res.StructLogs = tracer.StructLogs()
	}
	e.doneCh <- res
}
