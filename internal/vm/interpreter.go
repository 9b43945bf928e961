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
	"errors"

	"github.com/helioschain/helios/common/crypto"
	"github.com/helioschain/helios/common/types"
	"github.com/helioschain/helios/internal/vm/stack"
	"github.com/helioschain/helios/params"
)

// DefaultStepLimit caps the number of opcodes a single frame may execute.
// Runaway loops hit this before they can wedge an embedder that supplied a
// very large gas budget.
const DefaultStepLimit = 10_000_000

// errStopToken is an internal sentinel: a clean halt (STOP, RETURN,
// SELFDESTRUCT) travels through the run loop as this error and is cleared
// before Run returns.
var errStopToken = errors.New("stop token")

// Config are the configuration options for the Interpreter.
type Config struct {
	Debug         bool      // Enables debugging
	Tracer        EVMLogger // Opcode logger
	NoRecursion   bool      // Disables call, callcode, delegate call and create
	NoBaseFee     bool      // Forces the EIP-1559 baseFee to 0 (needed for 0 price calls)
	SkipAnalysis  bool      // Whether we can skip jumpdest analysis (e.g. trusted pre-verified code)
	TraceJumpDest bool      // Print transaction hashes where jumpdest analysis was useful
	NoReceipts    bool      // Do not calculate receipts
	ReadOnly      bool      // Do no perform any block finalisation
	StatelessExec bool      // true is certain conditions are met, controls if legacy state checks are performed
	RestoreState  bool      // Revert all changes made to the state (useful for constant system calls)

	ExtraEips []int // Additional EIPS that are to be enabled

	// StepLimit overrides DefaultStepLimit when non-zero.
	StepLimit uint64
}

// HasEip3860 reports whether initcode metering is active, either via the
// Shanghai rules or an explicit extra EIP.
func (vmConfig *Config) HasEip3860(rules *params.Rules) bool {
	for _, eip := range vmConfig.ExtraEips {
		if eip == 3860 {
			return true
		}
	}
	return rules.IsShanghai
}

// ScopeContext contains the things that are per-call, such as stack and
// memory, but not transients like pc and gas.
type ScopeContext struct {
	Memory   *Memory
	Stack    *stack.Stack
	Contract *Contract
}

// newKeccakState returns a fresh keccak hasher for the interpreter.
func newKeccakState() crypto.KeccakState {
	return crypto.NewKeccakState()
}

// VM carries the per-execution interpreter state shared by every frame:
// the owning EVM, the call depth, the static flag and the return-data
// buffer of the most recent inner call.
type VM struct {
	evm VMInterpreter

	depth      int    // The current call depth
	readOnly   bool   // Whether to throw on stateful modifications
	returnData []byte // Last CALL's return data for subsequent reuse
}

// setReadonly arms the static flag if it is not already set and returns the
// matching disarm function; nested static frames get a no-op so the flag
// survives until the outermost static frame exits.
func (vm *VM) setReadonly(outerReadonly bool) func() {
	if outerReadonly && !vm.readOnly {
		vm.readOnly = true
		return vm.disableReadonly
	}
	return vm.noop
}

func (vm *VM) getReadonly() bool {
	return vm.readOnly
}

func (vm *VM) disableReadonly() {
	vm.readOnly = false
}

func (vm *VM) noop() {}

// Interpreter is the narrow face of the interpreter the orchestrator uses.
type Interpreter interface {
	// Run loops and evaluates the contract's code with the given input data
	Run(contract *Contract, input []byte, readOnly bool) ([]byte, error)
	// Depth returns the current call stack's depth
	Depth() int
}

// EVMInterpreter represents an EVM interpreter.
type EVMInterpreter struct {
	VM
	jt *JumpTable // EVM instruction table

	hasher    crypto.KeccakState // Keccak256 hasher instance shared across opcodes
	hasherBuf types.Hash         // Keccak256 hasher result array shared across opcodes

	stepLimit uint64 // Per-frame opcode budget
}

// NewEVMInterpreter returns a new instance of the Interpreter.
func NewEVMInterpreter(evm VMInterpreter, cfg Config) *EVMInterpreter {
	var jt *JumpTable
	switch {
	case evm.ChainRules().IsPrague:
		jt = &pragueInstructionSet
	case evm.ChainRules().IsCancun:
		jt = &cancunInstructionSet
	case evm.ChainRules().IsShanghai:
		jt = &shanghaiInstructionSet
	case evm.ChainRules().IsParis:
		jt = &parisInstructionSet
	case evm.ChainRules().IsLondon:
		jt = &londonInstructionSet
	case evm.ChainRules().IsBerlin:
		jt = &berlinInstructionSet
	case evm.ChainRules().IsIstanbul:
		jt = &istanbulInstructionSet
	case evm.ChainRules().IsConstantinople:
		jt = &constantinopleInstructionSet
	case evm.ChainRules().IsByzantium:
		jt = &byzantiumInstructionSet
	case evm.ChainRules().IsSpuriousDragon:
		jt = &spuriousDragonInstructionSet
	case evm.ChainRules().IsTangerine:
		jt = &tangerineWhistleInstructionSet
	case evm.ChainRules().IsHomestead:
		jt = &homesteadInstructionSet
	default:
		jt = &frontierInstructionSet
	}
	if len(cfg.ExtraEips) > 0 {
		jt = copyJumpTable(jt)
		for i, eip := range cfg.ExtraEips {
			if err := EnableEIP(eip, jt); err != nil {
				// Disable it, so caller can check if it's activated or not
				cfg.ExtraEips = append(cfg.ExtraEips[:i], cfg.ExtraEips[i+1:]...)
			}
		}
	}
	stepLimit := cfg.StepLimit
	if stepLimit == 0 {
		stepLimit = DefaultStepLimit
	}
	return &EVMInterpreter{
		VM:        VM{evm: evm},
		jt:        jt,
		stepLimit: stepLimit,
	}
}

// Depth returns the current call depth.
func (in *EVMInterpreter) Depth() int {
	return in.depth
}

// SetReturnData installs buf as the last call's return data buffer.
func (in *EVMInterpreter) SetReturnData(buf []byte) {
	in.returnData = buf
}

// Run loops and evaluates the contract's code with the given input data and
// returns the return byte-slice and an error if one occurred.
//
// It's important to note that any errors returned by the interpreter should
// be considered a revert-and-consume-all-gas operation except for
// ErrExecutionReverted which means revert-and-keep-gas-left.
func (in *EVMInterpreter) Run(contract *Contract, input []byte, readOnly bool) (ret []byte, err error) {
	// Increment the call depth which is restricted to 1024
	in.depth++
	defer func() { in.depth-- }()

	// Make sure the readOnly is only set if we aren't in readOnly yet.
	// This also makes sure that the readOnly flag isn't removed for child calls.
	restoreReadonly := in.setReadonly(readOnly)
	defer restoreReadonly()

	// Reset the previous call's return data. It's unimportant to preserve the old buffer
	// as every returning call will return new data anyway.
	in.returnData = nil

	// Don't bother with the execution if there's no code.
	if len(contract.Code) == 0 {
		return nil, nil
	}

	var (
		op          OpCode // current opcode
		mem         = NewMemory()
		locStack    = stack.New()
		callContext = &ScopeContext{
			Memory:   mem,
			Stack:    locStack,
			Contract: contract,
		}
		// For optimisation reason we're using uint64 as the program counter.
		// It's theoretically possible to go above 2^64. The YP defines the PC
		// to be uint256. Practically much less so feasible.
		pc    = uint64(0) // program counter
		cost  uint64
		steps uint64

		// copies used by tracer
		pcCopy  uint64 // needed for the deferred EVMLogger
		gasCopy uint64 // for EVMLogger to log gas remaining before execution
		logged  bool   // deferred EVMLogger should ignore already logged steps
		res     []byte // result of the opcode execution function
		debug   = in.evm.Config().Debug && in.evm.Config().Tracer != nil
	)

	// Don't move this deferred function, it's placed before the capturestate-deferred method,
	// so that it gets executed _after_: the capturestate needs the stacks before
	// they are returned to the pools
	defer func() {
		stack.ReturnNormalStack(locStack)
	}()
	contract.Input = input

	if debug {
		defer func() {
			if err != nil {
				if !logged {
					in.evm.Config().Tracer.CaptureState(pcCopy, op, gasCopy, cost, callContext, in.returnData, in.depth, err)
				} else {
					in.evm.Config().Tracer.CaptureFault(pcCopy, op, gasCopy, cost, callContext, in.depth, err)
				}
			}
		}()
	}
	// The Interpreter main run loop (contextual). This loop runs until either an
	// explicit STOP, RETURN or SELFDESTRUCT is executed, an error occurred during
	// the execution of one of the operations or until the done flag is set by the
	// parent context.
	for {
		steps++
		if steps > in.stepLimit {
			return nil, ErrExecutionTimeout
		}
		if in.evm.Cancelled() {
			return nil, ErrExecutionTimeout
		}
		if debug {
			// Capture pre-execution values for tracing.
			logged, pcCopy, gasCopy = false, pc, contract.Gas
		}
		// Get the operation from the jump table and validate the stack to ensure there are
		// enough stack items available to perform the operation.
		op = contract.GetOp(pc)
		operation := in.jt[op]
		cost = operation.constantGas // For tracing
		// Validate stack
		if sLen := locStack.Len(); sLen < operation.numPop {
			return nil, &ErrStackUnderflow{stackLen: sLen, required: operation.numPop}
		} else if sLen-operation.numPop+operation.numPush > int(params.StackLimit) {
			return nil, &ErrStackOverflow{stackLen: sLen, limit: int(params.StackLimit)}
		}
		if !contract.UseGas(cost) {
			return nil, ErrOutOfGas
		}
		if operation.dynamicGas != nil {
			// All ops with a dynamic memory usage also has a dynamic gas cost.
			var memorySize uint64
			// calculate the new memory size and expand the memory to fit
			// the operation
			// Memory check needs to be done prior to evaluating the dynamic gas portion,
			// to detect calculation overflows
			if operation.memorySize != nil {
				memSize, overflow := operation.memorySize(locStack)
				if overflow {
					return nil, ErrGasUintOverflow
				}
				// memory is expanded in words of 32 bytes. Gas
				// is also calculated in words.
				if memorySize, overflow = safeMul(toWordSize(memSize), 32); overflow {
					return nil, ErrGasUintOverflow
				}
			}
			// Consume the gas and return an error if not enough gas is available.
			// cost is explicitly set so that the capture state defer method can get the proper cost
			var dynamicCost uint64
			dynamicCost, err = operation.dynamicGas(in.evm, contract, locStack, mem, memorySize)
			cost += dynamicCost // for tracing
			if err != nil {
				return nil, err
			}
			if !contract.UseGas(dynamicCost) {
				return nil, ErrOutOfGas
			}
			if memorySize > 0 {
				mem.Resize(memorySize)
			}
		}
		if debug {
			in.evm.Config().Tracer.CaptureState(pc, op, gasCopy, cost, callContext, in.returnData, in.depth, err)
			logged = true
		}
		// execute the operation
		res, err = operation.execute(&pc, in, callContext)
		if err != nil {
			break
		}
		pc++
	}

	if err == errStopToken {
		err = nil // clear stop token error
	}

	return res, err
}
