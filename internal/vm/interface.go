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
	"github.com/holiman/uint256"

	"github.com/helioschain/helios/common/types"
	"github.com/helioschain/helios/internal/vm/evmtypes"
	"github.com/helioschain/helios/params"
)

// IntraBlockState is re-exported so opcode handlers and orchestration code in
// this package can name the state accessor without importing evmtypes.
type IntraBlockState = evmtypes.IntraBlockState

// VMInterpreter is the interface the interpreter needs from its owning EVM:
// chain rules, state, execution context and call-gas bookkeeping.
type VMInterpreter interface {
	// VMCaller provides call/create operations
	VMCaller

	// ChainRules returns the active chain rules
	ChainRules() *params.Rules

	// ChainConfig returns the chain configuration
	ChainConfig() *params.ChainConfig

	// IntraBlockState returns the state accessor
	IntraBlockState() evmtypes.IntraBlockState

	// Context returns the block context
	Context() evmtypes.BlockContext

	// TxContext returns the transaction context
	TxContext() evmtypes.TxContext

	// Config returns the VM configuration
	Config() Config

	// SetCallGasTemp stashes the gas computed for an upcoming CALL-family
	// opcode between its gas function and its execution function.
	SetCallGasTemp(gas uint64)

	// CallGasTemp returns the stashed call gas.
	CallGasTemp() uint64

	// Cancelled returns true if the VM operation was cancelled
	Cancelled() bool

	// Reset resets the VM with a new transaction context
	Reset(txCtx evmtypes.TxContext, ibs evmtypes.IntraBlockState)
}

// VMInterface is an alias for VMInterpreter used by tracers.
type VMInterface = VMInterpreter

// VMCaller is the interface for EVM execution engine call operations.
// This interface enables:
//   - Dependency injection for testing
//   - Instrumentation and tracing without modifying core EVM
type VMCaller interface {
	// Call executes a contract call.
	// Parameters:
	//   - caller: The account initiating the call
	//   - addr: The contract address to call
	//   - input: The call data (function selector + arguments)
	//   - gas: Gas limit for the call
	//   - value: Ether value to transfer
	//   - bailout: If true, don't fail on insufficient balance (trace_call compatibility)
	// Returns:
	//   - ret: Return data from the contract
	//   - leftOverGas: Unused gas
	//   - err: Error if execution failed
	Call(caller ContractRef, addr types.Address, input []byte, gas uint64, value *uint256.Int, bailout bool) (ret []byte, leftOverGas uint64, err error)

	// CallCode executes a contract's code with the caller's storage and
	// the caller's address as msg.sender, carrying its own value.
	CallCode(caller ContractRef, addr types.Address, input []byte, gas uint64, value *uint256.Int) (ret []byte, leftOverGas uint64, err error)

	// DelegateCall executes a contract's code with the caller's storage and context.
	// msg.sender and msg.value are inherited from the caller.
	DelegateCall(caller ContractRef, addr types.Address, input []byte, gas uint64) (ret []byte, leftOverGas uint64, err error)

	// StaticCall executes a read-only contract call.
	// Any state modification will cause the call to fail.
	StaticCall(caller ContractRef, addr types.Address, input []byte, gas uint64) (ret []byte, leftOverGas uint64, err error)

	// Create deploys a new contract with CREATE address derivation.
	Create(caller ContractRef, code []byte, gas uint64, endowment *uint256.Int) (ret []byte, contractAddr types.Address, leftOverGas uint64, err error)

	// Create2 deploys a new contract with CREATE2 address derivation.
	// The address is deterministic based on sender, salt, and init code hash.
	Create2(caller ContractRef, code []byte, gas uint64, endowment *uint256.Int, salt *uint256.Int) (ret []byte, contractAddr types.Address, leftOverGas uint64, err error)
}

// VMContext provides read-only access to EVM execution context.
// Use this interface when you only need to query VM state.
type VMContext interface {
	Context() evmtypes.BlockContext
	TxContext() evmtypes.TxContext
	ChainConfig() *params.ChainConfig
	ChainRules() *params.Rules
	IntraBlockState() evmtypes.IntraBlockState
}

// VMExecutor combines VM execution with context access.
type VMExecutor interface {
	VMCaller
	VMContext
}

// VMResetter allows resetting VM state between transactions.
type VMResetter interface {
	Reset(txCtx evmtypes.TxContext, ibs evmtypes.IntraBlockState)

	// ResetBetweenBlocks resets the VM for a new block
	ResetBetweenBlocks(blockCtx evmtypes.BlockContext, txCtx evmtypes.TxContext, ibs evmtypes.IntraBlockState, vmConfig Config, chainRules *params.Rules)
}

// VMCanceller allows cancelling VM execution.
type VMCanceller interface {
	// Cancel cancels any running EVM operation
	Cancel()

	// Cancelled returns true if Cancel has been called
	Cancelled() bool
}

// FullVM is the complete EVM interface combining all capabilities.
type FullVM interface {
	VMExecutor
	VMResetter
	VMCanceller
}

// =============================================================================
// Compile-time interface compliance checks
// =============================================================================

var (
	_ VMCaller      = (*EVM)(nil)
	_ VMContext     = (*EVM)(nil)
	_ VMExecutor    = (*EVM)(nil)
	_ VMResetter    = (*EVM)(nil)
	_ VMCanceller   = (*EVM)(nil)
	_ FullVM        = (*EVM)(nil)
	_ VMInterpreter = (*EVM)(nil)
)
