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
	"sync/atomic"

	"github.com/holiman/uint256"

	"github.com/helioschain/helios/common/crypto"
	"github.com/helioschain/helios/common/types"
	"github.com/helioschain/helios/internal/vm/evmtypes"
	"github.com/helioschain/helios/params"
)

// emptyCodeHash is used by create to ensure deployment is disallowed to
// already deployed contract addresses (relevant after the account abstraction).
var emptyCodeHash = crypto.Keccak256Hash(nil)

// CanTransfer checks whether there are enough funds in the address' account
// to make a transfer. This does not take the necessary gas in to account to
// make the transfer valid.
func CanTransfer(db evmtypes.IntraBlockState, addr types.Address, amount *uint256.Int) bool {
	return !db.GetBalance(addr).Lt(amount)
}

// Transfer subtracts amount from sender and adds amount to recipient using
// the given Db. The bailout flag skips the debit, which trace_call-style
// embedders use to simulate unfunded senders.
func Transfer(db evmtypes.IntraBlockState, sender, recipient types.Address, amount *uint256.Int, bailout bool) {
	if !bailout {
		db.SubBalance(sender, amount)
	}
	db.AddBalance(recipient, amount)
}

// PrecompileLookup resolves a precompiled contract for an address, or nil.
// The default lookup is the fork-keyed address map in contracts.go; the
// precompiles registry package provides an injectable alternative.
type PrecompileLookup func(addr types.Address) (PrecompiledContract, bool)

// EVM is the Ethereum Virtual Machine base object and provides the necessary
// tools to run a contract on the given state with the provided context. It
// should be noted that any error generated through any of the calls should be
// considered a revert-state-and-consume-all-gas operation, no checks on
// specific errors should ever be performed. The interpreter makes sure that
// any errors generated are to be considered faulty code.
//
// The EVM should never be reused and is not thread safe.
type EVM struct {
	context         evmtypes.BlockContext
	txContext       evmtypes.TxContext
	intraBlockState evmtypes.IntraBlockState

	// chainConfig contains information about the current chain
	chainConfig *params.ChainConfig
	// chain rules contains the chain rules for the current epoch
	chainRules *params.Rules

	config      Config
	interpreter *EVMInterpreter

	// abort is used to abort the EVM calling operations
	abort atomic.Bool

	// callGasTemp holds the gas available for the current call. This is needed because the
	// available gas is calculated in gasCall* according to the 63/64 rule and later
	// applied in opCall*.
	callGasTemp uint64

	// precompileLookup overrides the built-in fork-keyed precompile maps
	// when non-nil.
	precompileLookup PrecompileLookup
}

// NewEVM returns a new EVM. The returned EVM is not thread safe and should
// only ever be used by a single thread.
func NewEVM(blockCtx evmtypes.BlockContext, txCtx evmtypes.TxContext, ibs evmtypes.IntraBlockState,
	chainConfig *params.ChainConfig, vmConfig Config) *EVM {
	evm := &EVM{
		context:         blockCtx,
		txContext:       txCtx,
		intraBlockState: ibs,
		chainConfig:     chainConfig,
		chainRules:      chainConfig.Rules(blockCtx.BlockNumber),
		config:          vmConfig,
	}
	evm.interpreter = NewEVMInterpreter(evm, vmConfig)
	return evm
}

// NewEVMWithRules is NewEVM for callers that select feature gates by
// hardfork rather than block height.
func NewEVMWithRules(blockCtx evmtypes.BlockContext, txCtx evmtypes.TxContext, ibs evmtypes.IntraBlockState,
	rules *params.Rules, chainConfig *params.ChainConfig, vmConfig Config) *EVM {
	evm := &EVM{
		context:         blockCtx,
		txContext:       txCtx,
		intraBlockState: ibs,
		chainConfig:     chainConfig,
		chainRules:      rules,
		config:          vmConfig,
	}
	evm.interpreter = NewEVMInterpreter(evm, vmConfig)
	return evm
}

// SetPrecompileLookup installs a custom precompile resolver (see the
// precompiles registry package).
func (evm *EVM) SetPrecompileLookup(lookup PrecompileLookup) {
	evm.precompileLookup = lookup
}

// Reset resets the EVM with a new transaction context.
// This is not threadsafe and should only be done very cautiously.
func (evm *EVM) Reset(txCtx evmtypes.TxContext, ibs evmtypes.IntraBlockState) {
	evm.txContext = txCtx
	evm.intraBlockState = ibs

	// ensure the evm is reset to be used again
	evm.abort.Store(false)
}

// ResetBetweenBlocks resets the EVM for a new block.
func (evm *EVM) ResetBetweenBlocks(blockCtx evmtypes.BlockContext, txCtx evmtypes.TxContext,
	ibs evmtypes.IntraBlockState, vmConfig Config, chainRules *params.Rules) {
	evm.context = blockCtx
	evm.txContext = txCtx
	evm.intraBlockState = ibs
	evm.config = vmConfig
	evm.chainRules = chainRules

	evm.interpreter = NewEVMInterpreter(evm, vmConfig)

	evm.abort.Store(false)
}

// Cancel cancels any running EVM operation. This may be called concurrently
// and it's safe to be called multiple times.
func (evm *EVM) Cancel() {
	evm.abort.Store(true)
}

// Cancelled returns true if Cancel has been called.
func (evm *EVM) Cancelled() bool {
	return evm.abort.Load()
}

// CallGasTemp returns the stashed call gas.
func (evm *EVM) CallGasTemp() uint64 {
	return evm.callGasTemp
}

// SetCallGasTemp stashes gas between a CALL gas function and its execution.
func (evm *EVM) SetCallGasTemp(gas uint64) {
	evm.callGasTemp = gas
}

// Config returns the VM configuration.
func (evm *EVM) Config() Config {
	return evm.config
}

// ChainConfig returns the environment's chain configuration.
func (evm *EVM) ChainConfig() *params.ChainConfig {
	return evm.chainConfig
}

// ChainRules returns the active chain rules.
func (evm *EVM) ChainRules() *params.Rules {
	return evm.chainRules
}

// Context returns the block context.
func (evm *EVM) Context() evmtypes.BlockContext {
	return evm.context
}

// TxContext returns the transaction context.
func (evm *EVM) TxContext() evmtypes.TxContext {
	return evm.txContext
}

// IntraBlockState returns the state accessor.
func (evm *EVM) IntraBlockState() evmtypes.IntraBlockState {
	return evm.intraBlockState
}

// Interpreter returns the current interpreter.
func (evm *EVM) Interpreter() *EVMInterpreter {
	return evm.interpreter
}

// Depth returns the current call stack depth.
func (evm *EVM) Depth() int {
	return evm.interpreter.Depth()
}

// precompile resolves an address against the active precompile set.
func (evm *EVM) precompile(addr types.Address) (PrecompiledContract, bool) {
	if evm.precompileLookup != nil {
		return evm.precompileLookup(addr)
	}
	p, ok := activePrecompiles(evm.chainRules)[addr]
	return p, ok
}

// callKind distinguishes the four call variants inside the shared call path.
type callKind int

const (
	kindCall callKind = iota
	kindCallCode
	kindDelegateCall
	kindStaticCall
)

// call is the common orchestration path of the CALL family: depth check,
// value transfer, snapshotting, precompile dispatch, EIP-7702 delegation
// resolution and interpreter entry.
func (evm *EVM) call(kind callKind, caller ContractRef, addr types.Address, input []byte, gasLimit uint64,
	value *uint256.Int, bailout bool) (ret []byte, leftOverGas uint64, err error) {
	if evm.config.NoRecursion && evm.interpreter.Depth() > 0 {
		return nil, gasLimit, nil
	}
	// Fail if we're trying to execute above the call depth limit
	if evm.interpreter.Depth() >= int(params.CallCreateDepth) {
		return nil, gasLimit, ErrDepth
	}
	if kind == kindCall || kind == kindCallCode {
		// Fail if we're trying to transfer more than the available balance
		if !value.IsZero() && !evm.context.CanTransfer(evm.intraBlockState, caller.Address(), value) {
			if !bailout {
				return nil, gasLimit, ErrInsufficientBalance
			}
		}
	}
	p, isPrecompile := evm.precompile(addr)

	var code []byte
	if !isPrecompile {
		code = evm.intraBlockState.GetCode(addr)
	}

	if evm.config.Debug && evm.config.Tracer != nil {
		if evm.interpreter.Depth() == 0 {
			evm.config.Tracer.CaptureStart(evm, caller.Address(), addr, isPrecompile, false, input, gasLimit, value, code)
			defer func(startGas uint64) {
				evm.config.Tracer.CaptureEnd(ret, startGas-leftOverGas, err)
			}(gasLimit)
		} else {
			evm.config.Tracer.CaptureEnter(callKindToOp(kind), caller.Address(), addr, isPrecompile, false, input, gasLimit, value, code)
			defer func(startGas uint64) {
				evm.config.Tracer.CaptureExit(ret, startGas-leftOverGas, err)
			}(gasLimit)
		}
	}

	snapshot := evm.intraBlockState.Snapshot()

	if kind == kindCall {
		if !evm.intraBlockState.Exist(addr) {
			if !isPrecompile && evm.chainRules.IsSpuriousDragon && value.IsZero() {
				// Calling a non-existing account (no value), don't do anything.
				return nil, gasLimit, nil
			}
			evm.intraBlockState.CreateAccount(addr, false)
		}
		evm.context.Transfer(evm.intraBlockState, caller.Address(), addr, value, bailout)
	} else if kind == kindCallCode {
		// No account creation, no transfer: the callee's code runs in the
		// caller's storage with the caller's balance.
	}

	if isPrecompile {
		ret, gasLimit, err = RunPrecompiledContract(p, input, gasLimit)
	} else if len(code) == 0 {
		// If the account has no code, we can abort here
		// The depth-check is already done, and precompiles handled above
		ret, err = nil, nil
	} else {
		var (
			codeHash   = evm.intraBlockState.GetCodeHash(addr)
			codeAddr   = addr
			authorized *types.Address
		)
		// EIP-7702: a delegation designator is followed exactly once; the
		// resolution pays the 2929 account-access schedule for the delegate.
		if evm.chainRules.IsPrague {
			if delegated, ok := ParseDelegation(code); ok {
				accessCost := params.WarmStorageReadCostEIP2929
				if !evm.intraBlockState.AddressInAccessList(delegated) {
					evm.intraBlockState.AddAddressToAccessList(delegated)
					accessCost = params.ColdAccountAccessCostEIP2929
				}
				if gasLimit < accessCost {
					evm.intraBlockState.RevertToSnapshot(snapshot)
					return nil, 0, ErrOutOfGas
				}
				gasLimit -= accessCost
				delegator := addr
				authorized = &delegator
				code = evm.intraBlockState.GetCode(delegated)
				codeHash = evm.intraBlockState.GetCodeHash(delegated)
				codeAddr = delegated
			}
		}

		// At this point, we use a copy of address. If we don't, the go
		// compiler will leak the 'contract' to the outer scope, and make
		// allocation for 'contract' even if the actual execution ends on
		// RunPrecompiled above.
		addrCopy := addr
		var contract *Contract
		switch kind {
		case kindCall, kindStaticCall:
			contract = NewContract(caller, AccountRef(addrCopy), value, gasLimit, evm.config.SkipAnalysis)
		case kindCallCode:
			contract = NewContract(caller, AccountRef(caller.Address()), value, gasLimit, evm.config.SkipAnalysis)
		case kindDelegateCall:
			contract = NewContract(caller, AccountRef(caller.Address()), value, gasLimit, evm.config.SkipAnalysis).AsDelegate()
		}
		contract.SetCallCode(&codeAddr, codeHash, code)
		contract.Authorized = authorized
		readOnly := kind == kindStaticCall
		ret, err = run(evm, contract, input, readOnly)
		gasLimit = contract.Gas
	}
	// When an error was returned by the EVM or when setting the creation code
	// above we revert to the snapshot and consume any gas remaining.
	// Additionally, when we're in homestead this also counts for code storage
	// gas errors.
	if err != nil || evm.config.RestoreState {
		evm.intraBlockState.RevertToSnapshot(snapshot)
		if err != ErrExecutionReverted {
			gasLimit = 0
		}
	}
	leftOverGas = gasLimit
	return ret, leftOverGas, err
}

func callKindToOp(kind callKind) OpCode {
	switch kind {
	case kindCallCode:
		return CALLCODE
	case kindDelegateCall:
		return DELEGATECALL
	case kindStaticCall:
		return STATICCALL
	default:
		return CALL
	}
}

// Call executes the contract associated with the addr with the given input as
// parameters. It also handles any necessary value transfer required and takes
// the necessary steps to create accounts and reverses the state in case of an
// execution error or failed value transfer.
func (evm *EVM) Call(caller ContractRef, addr types.Address, input []byte, gas uint64, value *uint256.Int,
	bailout bool) (ret []byte, leftOverGas uint64, err error) {
	return evm.call(kindCall, caller, addr, input, gas, value, bailout)
}

// CallCode executes the contract associated with the addr with the given
// input as parameters. It also handles any necessary value transfer required
// and takes the necessary steps to create accounts and reverses the state in
// case of an execution error or failed value transfer.
//
// CallCode differs from Call in the sense that it executes the given address'
// code with the caller as context.
func (evm *EVM) CallCode(caller ContractRef, addr types.Address, input []byte, gas uint64,
	value *uint256.Int) (ret []byte, leftOverGas uint64, err error) {
	return evm.call(kindCallCode, caller, addr, input, gas, value, false)
}

// DelegateCall executes the contract associated with the addr with the given
// input as parameters. It reverses the state in case of an execution error.
//
// DelegateCall differs from CallCode in the sense that it executes the given
// address' code with the caller as context and the caller is set to the
// caller of the caller.
func (evm *EVM) DelegateCall(caller ContractRef, addr types.Address, input []byte,
	gas uint64) (ret []byte, leftOverGas uint64, err error) {
	// NOTE: caller must, at all times be a contract. It should never happen
	// that caller is something other than a Contract.
	parent := caller.(*Contract)
	// DELEGATECALL inherits value from parent call
	return evm.call(kindDelegateCall, caller, addr, input, gas, parent.value, false)
}

// StaticCall executes the contract associated with the addr with the given
// input as parameters while disallowing any modifications to the state during
// the call. Opcodes that attempt to perform such modifications will result in
// exceptions instead of performing the modifications.
func (evm *EVM) StaticCall(caller ContractRef, addr types.Address, input []byte,
	gas uint64) (ret []byte, leftOverGas uint64, err error) {
	return evm.call(kindStaticCall, caller, addr, input, gas, new(uint256.Int), false)
}

// run runs the given contract and takes care of running precompiles with a
// fallback to the byte code interpreter.
func run(evm *EVM, contract *Contract, input []byte, readOnly bool) ([]byte, error) {
	return evm.interpreter.Run(contract, input, readOnly)
}

// create creates a new contract using code as deployment code.
func (evm *EVM) create(caller ContractRef, codeAndHash *codeAndHash, gasLimit uint64, value *uint256.Int,
	address types.Address) (ret []byte, contractAddr types.Address, leftOverGas uint64, err error) {
	if evm.config.NoRecursion && evm.interpreter.Depth() > 0 {
		return nil, address, gasLimit, nil
	}
	// Depth check execution. Fail if we're trying to execute above the limit.
	if evm.interpreter.Depth() >= int(params.CallCreateDepth) {
		return nil, types.Address{}, gasLimit, ErrDepth
	}
	if !evm.context.CanTransfer(evm.intraBlockState, caller.Address(), value) {
		return nil, types.Address{}, gasLimit, ErrInsufficientBalance
	}
	// EIP-3860: limit and meter initcode. The per-word charge sits in the
	// CREATE gas functions; the hard bound is enforced here so that a direct
	// top-level creation is bounded too.
	if evm.config.HasEip3860(evm.chainRules) && len(codeAndHash.code) > params.MaxInitCodeSize {
		return nil, types.Address{}, gasLimit, ErrMaxInitCodeSizeExceeded
	}
	nonce := evm.intraBlockState.GetNonce(caller.Address())
	if nonce+1 < nonce {
		return nil, types.Address{}, gasLimit, ErrNonceUintOverflow
	}
	evm.intraBlockState.SetNonce(caller.Address(), nonce+1)

	// We add this to the access list _before_ taking a snapshot. Even if the
	// creation fails, the access-list change should not be rolled back.
	if evm.chainRules.IsBerlin {
		evm.intraBlockState.AddAddressToAccessList(address)
	}

	// Ensure there's no existing contract already at the designated address
	contractHash := evm.intraBlockState.GetCodeHash(address)
	if evm.intraBlockState.GetNonce(address) != 0 ||
		(!contractHash.IsZero() && contractHash != emptyCodeHash) {
		return nil, types.Address{}, 0, ErrContractAddressCollision
	}
	if evm.config.Debug && evm.config.Tracer != nil {
		if evm.interpreter.Depth() == 0 {
			evm.config.Tracer.CaptureStart(evm, caller.Address(), address, false, true, codeAndHash.code, gasLimit, value, nil)
			defer func(startGas uint64) {
				evm.config.Tracer.CaptureEnd(ret, startGas-leftOverGas, err)
			}(gasLimit)
		} else {
			evm.config.Tracer.CaptureEnter(CREATE, caller.Address(), address, false, true, codeAndHash.code, gasLimit, value, nil)
			defer func(startGas uint64) {
				evm.config.Tracer.CaptureExit(ret, startGas-leftOverGas, err)
			}(gasLimit)
		}
	}

	// Create a new account on the state
	snapshot := evm.intraBlockState.Snapshot()
	evm.intraBlockState.CreateAccount(address, true)
	if evm.chainRules.IsSpuriousDragon {
		evm.intraBlockState.SetNonce(address, 1)
	}
	evm.context.Transfer(evm.intraBlockState, caller.Address(), address, value, false)

	// Initialise a new contract and set the code that is to be used by the EVM.
	// The contract is a scoped environment for this execution context only.
	contract := NewContract(caller, AccountRef(address), value, gasLimit, evm.config.SkipAnalysis)
	contract.SetCodeOptionalHash(&address, codeAndHash)

	ret, err = run(evm, contract, nil, false)

	// EIP-170: check whether the max code size has been exceeded
	maxCodeSizeExceeded := evm.chainRules.IsSpuriousDragon && len(ret) > params.MaxCodeSize
	// EIP-3541: reject code starting with 0xEF.
	if err == nil && !maxCodeSizeExceeded && evm.chainRules.IsLondon &&
		len(ret) >= 1 && ret[0] == 0xEF {
		err = ErrInvalidCode
	}
	// if the contract creation ran successfully and no errors were returned
	// calculate the gas required to store the code. If the code could not
	// be stored due to not enough gas set an error and let it be handled
	// by the error checking condition below.
	if err == nil && !maxCodeSizeExceeded {
		createDataGas := uint64(len(ret)) * params.CreateDataGas
		if contract.UseGas(createDataGas) {
			evm.intraBlockState.SetCode(address, ret)
		} else {
			err = ErrCodeStoreOutOfGas
		}
	}

	// When an error was returned by the EVM or when setting the creation code
	// above we revert to the snapshot and consume any gas remaining. Additionally
	// when we're in homestead this also counts for code storage gas errors.
	if maxCodeSizeExceeded || (err != nil && (evm.chainRules.IsHomestead || err != ErrCodeStoreOutOfGas)) {
		evm.intraBlockState.RevertToSnapshot(snapshot)
		if err != ErrExecutionReverted {
			contract.UseGas(contract.Gas)
		}
	}
	// Assign err if contract code size exceeds the max while the err is still empty.
	if maxCodeSizeExceeded && err == nil {
		err = ErrMaxCodeSizeExceeded
	}

	leftOverGas = contract.Gas
	return ret, address, leftOverGas, err
}

// Create creates a new contract using code as deployment code.
func (evm *EVM) Create(caller ContractRef, code []byte, gas uint64,
	endowment *uint256.Int) (ret []byte, contractAddr types.Address, leftOverGas uint64, err error) {
	contractAddr = crypto.CreateAddress(caller.Address(), evm.intraBlockState.GetNonce(caller.Address()))
	return evm.create(caller, &codeAndHash{code: code}, gas, endowment, contractAddr)
}

// Create2 creates a new contract using code as deployment code.
//
// The different between Create2 with Create is Create2 uses
// keccak256(0xff ++ msg.sender ++ salt ++ keccak256(init_code))[12:]
// instead of the usual sender-and-nonce-hash as the address where the
// contract is initialized at.
func (evm *EVM) Create2(caller ContractRef, code []byte, gas uint64, endowment *uint256.Int,
	salt *uint256.Int) (ret []byte, contractAddr types.Address, leftOverGas uint64, err error) {
	codeAndHash := &codeAndHash{code: code}
	contractAddr = crypto.CreateAddress2(caller.Address(), salt.Bytes32(), codeAndHash.Hash())
	return evm.create(caller, codeAndHash, gas, endowment, contractAddr)
}
