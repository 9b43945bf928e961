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
	"github.com/helioschain/helios/internal/vm/stack"
	"github.com/helioschain/helios/params"
)

type (
	executionFunc func(pc *uint64, interpreter *EVMInterpreter, scope *ScopeContext) ([]byte, error)
	gasFunc       func(evm VMInterpreter, contract *Contract, stk *stack.Stack, mem *Memory, memorySize uint64) (uint64, error)
	// memorySizeFunc returns the required size, and whether the operation overflowed a uint64
	memorySizeFunc func(stk *stack.Stack) (uint64, bool)
)

type operation struct {
	// execute is the operation function
	execute     executionFunc
	constantGas uint64
	dynamicGas  gasFunc

	// numPop tells how many stack items are required
	numPop int
	// numPush tells how many stack items are pushed back
	numPush int

	// memorySize returns the memory size required for the operation
	memorySize memorySizeFunc
}

// JumpTable contains the EVM opcodes supported at a given fork.
type JumpTable [256]*operation

func validate(jt JumpTable) JumpTable {
	for i, op := range jt {
		if op == nil {
			panic("op " + OpCode(i).String() + " is not set")
		}
	}
	return jt
}

func copyJumpTable(source *JumpTable) *JumpTable {
	dest := *source
	for i, op := range source {
		if op != nil {
			opCopy := *op
			dest[i] = &opCopy
		}
	}
	return &dest
}

// Pre-built instruction sets, oldest fork first. Each later set starts from a
// copy of its ancestor and layers the fork's enable functions on top.
var (
	frontierInstructionSet       = newFrontierInstructionSet()
	homesteadInstructionSet      = newHomesteadInstructionSet()
	tangerineWhistleInstructionSet      = newTangerineWhistleInstructionSet()
	spuriousDragonInstructionSet = newSpuriousDragonInstructionSet()
	byzantiumInstructionSet      = newByzantiumInstructionSet()
	constantinopleInstructionSet = newConstantinopleInstructionSet()
	istanbulInstructionSet       = newIstanbulInstructionSet()
	berlinInstructionSet         = newBerlinInstructionSet()
	londonInstructionSet         = newLondonInstructionSet()
	parisInstructionSet          = newParisInstructionSet()
	shanghaiInstructionSet       = newShanghaiInstructionSet()
	cancunInstructionSet         = newCancunInstructionSet()
	pragueInstructionSet         = newPragueInstructionSet()
)

// newPragueInstructionSet returns the instructions of the Prague fork.
// EIP-7702 introduces no opcode; delegation is resolved by the orchestrator.
func newPragueInstructionSet() JumpTable {
	instructionSet := newCancunInstructionSet()
	validate(instructionSet)
	return instructionSet
}

// newCancunInstructionSet returns Shanghai plus EIP-1153, EIP-4844,
// EIP-5656 and EIP-7516.
func newCancunInstructionSet() JumpTable {
	instructionSet := newShanghaiInstructionSet()
	enable1153(&instructionSet) // TLOAD, TSTORE
	enable4844(&instructionSet) // BLOBHASH
	enable5656(&instructionSet) // MCOPY
	enable7516(&instructionSet) // BLOBBASEFEE
	enable6780(&instructionSet) // SELFDESTRUCT only in same transaction
	validate(instructionSet)
	return instructionSet
}

// newShanghaiInstructionSet returns Paris plus EIP-3855 (PUSH0). EIP-3860
// initcode metering changes the CREATE gas functions.
func newShanghaiInstructionSet() JumpTable {
	instructionSet := newParisInstructionSet()
	enable3855(&instructionSet) // PUSH0
	enable3860(&instructionSet) // initcode metering
	validate(instructionSet)
	return instructionSet
}

// newParisInstructionSet returns London; the DIFFICULTY slot is re-read as
// PREVRANDAO (EIP-4399).
func newParisInstructionSet() JumpTable {
	instructionSet := newLondonInstructionSet()
	enable4399(&instructionSet) // PREVRANDAO
	validate(instructionSet)
	return instructionSet
}

// newLondonInstructionSet returns Berlin plus EIP-3198 (BASEFEE) with the
// EIP-3529 refund schedule applied to SSTORE and SELFDESTRUCT.
func newLondonInstructionSet() JumpTable {
	instructionSet := newBerlinInstructionSet()
	enable3529(&instructionSet) // Reduction in refunds
	enable3198(&instructionSet) // BASEFEE
	validate(instructionSet)
	return instructionSet
}

// newBerlinInstructionSet returns Istanbul with EIP-2929 warm/cold gas
// functions swapped in for the state-touching opcodes.
func newBerlinInstructionSet() JumpTable {
	instructionSet := newIstanbulInstructionSet()
	enable2929(&instructionSet) // Access lists for trie accesses
	validate(instructionSet)
	return instructionSet
}

// newIstanbulInstructionSet returns Constantinople/Petersburg plus EIP-1344
// (CHAINID), EIP-1884 (repricings, SELFBALANCE) and EIP-2200 (net-metered
// SSTORE).
func newIstanbulInstructionSet() JumpTable {
	instructionSet := newConstantinopleInstructionSet()

	enable1344(&instructionSet) // ChainID opcode
	enable1884(&instructionSet) // Reprice reader opcodes
	enable2200(&instructionSet) // Net metered SSTORE

	validate(instructionSet)
	return instructionSet
}

// newConstantinopleInstructionSet returns Byzantium plus SHL, SHR, SAR,
// EXTCODEHASH and CREATE2.
func newConstantinopleInstructionSet() JumpTable {
	instructionSet := newByzantiumInstructionSet()
	instructionSet[SHL] = &operation{
		execute:     opSHL,
		constantGas: GasFastestStep,
		numPop:      2,
		numPush:     1,
	}
	instructionSet[SHR] = &operation{
		execute:     opSHR,
		constantGas: GasFastestStep,
		numPop:      2,
		numPush:     1,
	}
	instructionSet[SAR] = &operation{
		execute:     opSAR,
		constantGas: GasFastestStep,
		numPop:      2,
		numPush:     1,
	}
	instructionSet[EXTCODEHASH] = &operation{
		execute:     opExtCodeHash,
		constantGas: params.ExtcodeHashGasConstantinople,
		numPop:      1,
		numPush:     1,
	}
	instructionSet[CREATE2] = &operation{
		execute:     opCreate2,
		constantGas: params.Create2Gas,
		dynamicGas:  gasCreate2,
		numPop:      4,
		numPush:     1,
		memorySize:  memoryCreate2,
	}
	validate(instructionSet)
	return instructionSet
}

// newByzantiumInstructionSet returns Spurious Dragon plus REVERT,
// RETURNDATASIZE, RETURNDATACOPY and STATICCALL.
func newByzantiumInstructionSet() JumpTable {
	instructionSet := newSpuriousDragonInstructionSet()
	instructionSet[STATICCALL] = &operation{
		execute:     opStaticCall,
		constantGas: params.CallGasEIP150,
		dynamicGas:  gasStaticCall,
		numPop:      6,
		numPush:     1,
		memorySize:  memoryStaticCall,
	}
	instructionSet[RETURNDATASIZE] = &operation{
		execute:     opReturnDataSize,
		constantGas: GasQuickStep,
		numPop:      0,
		numPush:     1,
	}
	instructionSet[RETURNDATACOPY] = &operation{
		execute:     opReturnDataCopy,
		constantGas: GasFastestStep,
		dynamicGas:  gasReturnDataCopy,
		numPop:      3,
		numPush:     0,
		memorySize:  memoryReturnDataCopy,
	}
	instructionSet[REVERT] = &operation{
		execute:    opRevert,
		dynamicGas: gasRevert,
		numPop:     2,
		numPush:    0,
		memorySize: memoryRevert,
	}
	validate(instructionSet)
	return instructionSet
}

// newSpuriousDragonInstructionSet returns Tangerine Whistle with the EXP
// byte price raised by EIP-160.
func newSpuriousDragonInstructionSet() JumpTable {
	instructionSet := newTangerineWhistleInstructionSet()
	instructionSet[EXP].dynamicGas = gasExpEIP160
	validate(instructionSet)
	return instructionSet
}

// newTangerineWhistleInstructionSet returns Homestead with the EIP-150 gas
// repricings for IO-heavy operations.
func newTangerineWhistleInstructionSet() JumpTable {
	instructionSet := newHomesteadInstructionSet()
	instructionSet[BALANCE].constantGas = params.BalanceGasEIP150
	instructionSet[EXTCODESIZE].constantGas = params.ExtcodeSizeGasEIP150
	instructionSet[SLOAD].constantGas = params.SloadGasEIP150
	instructionSet[EXTCODECOPY].constantGas = params.ExtcodeCopyBaseEIP150
	instructionSet[CALL].constantGas = params.CallGasEIP150
	instructionSet[CALLCODE].constantGas = params.CallGasEIP150
	instructionSet[DELEGATECALL].constantGas = params.CallGasEIP150
	validate(instructionSet)
	return instructionSet
}

// newHomesteadInstructionSet returns Frontier plus DELEGATECALL.
func newHomesteadInstructionSet() JumpTable {
	instructionSet := newFrontierInstructionSet()
	instructionSet[DELEGATECALL] = &operation{
		execute:     opDelegateCall,
		dynamicGas:  gasDelegateCall,
		constantGas: params.CallGasFrontier,
		numPop:      6,
		numPush:     1,
		memorySize:  memoryDelegateCall,
	}
	validate(instructionSet)
	return instructionSet
}

// newFrontierInstructionSet returns the genesis instruction set.
func newFrontierInstructionSet() JumpTable {
	tbl := JumpTable{
		STOP: {
			execute:     opStop,
			constantGas: 0,
			numPop:      0,
			numPush:     0,
		},
		ADD: {
			execute:     opAdd,
			constantGas: GasFastestStep,
			numPop:      2,
			numPush:     1,
		},
		MUL: {
			execute:     opMul,
			constantGas: GasFastStep,
			numPop:      2,
			numPush:     1,
		},
		SUB: {
			execute:     opSub,
			constantGas: GasFastestStep,
			numPop:      2,
			numPush:     1,
		},
		DIV: {
			execute:     opDiv,
			constantGas: GasFastStep,
			numPop:      2,
			numPush:     1,
		},
		SDIV: {
			execute:     opSdiv,
			constantGas: GasFastStep,
			numPop:      2,
			numPush:     1,
		},
		MOD: {
			execute:     opMod,
			constantGas: GasFastStep,
			numPop:      2,
			numPush:     1,
		},
		SMOD: {
			execute:     opSmod,
			constantGas: GasFastStep,
			numPop:      2,
			numPush:     1,
		},
		ADDMOD: {
			execute:     opAddmod,
			constantGas: GasMidStep,
			numPop:      3,
			numPush:     1,
		},
		MULMOD: {
			execute:     opMulmod,
			constantGas: GasMidStep,
			numPop:      3,
			numPush:     1,
		},
		EXP: {
			execute:    opExp,
			dynamicGas: gasExpFrontier,
			numPop:     2,
			numPush:    1,
		},
		SIGNEXTEND: {
			execute:     opSignExtend,
			constantGas: GasFastStep,
			numPop:      2,
			numPush:     1,
		},
		LT: {
			execute:     opLt,
			constantGas: GasFastestStep,
			numPop:      2,
			numPush:     1,
		},
		GT: {
			execute:     opGt,
			constantGas: GasFastestStep,
			numPop:      2,
			numPush:     1,
		},
		SLT: {
			execute:     opSlt,
			constantGas: GasFastestStep,
			numPop:      2,
			numPush:     1,
		},
		SGT: {
			execute:     opSgt,
			constantGas: GasFastestStep,
			numPop:      2,
			numPush:     1,
		},
		EQ: {
			execute:     opEq,
			constantGas: GasFastestStep,
			numPop:      2,
			numPush:     1,
		},
		ISZERO: {
			execute:     opIszero,
			constantGas: GasFastestStep,
			numPop:      1,
			numPush:     1,
		},
		AND: {
			execute:     opAnd,
			constantGas: GasFastestStep,
			numPop:      2,
			numPush:     1,
		},
		OR: {
			execute:     opOr,
			constantGas: GasFastestStep,
			numPop:      2,
			numPush:     1,
		},
		XOR: {
			execute:     opXor,
			constantGas: GasFastestStep,
			numPop:      2,
			numPush:     1,
		},
		NOT: {
			execute:     opNot,
			constantGas: GasFastestStep,
			numPop:      1,
			numPush:     1,
		},
		BYTE: {
			execute:     opByte,
			constantGas: GasFastestStep,
			numPop:      2,
			numPush:     1,
		},
		KECCAK256: {
			execute:     opKeccak256,
			constantGas: params.Keccak256Gas,
			dynamicGas:  gasKeccak256,
			numPop:      2,
			numPush:     1,
			memorySize:  memoryKeccak256,
		},
		ADDRESS: {
			execute:     opAddress,
			constantGas: GasQuickStep,
			numPop:      0,
			numPush:     1,
		},
		BALANCE: {
			execute:     opBalance,
			constantGas: params.BalanceGasFrontier,
			numPop:      1,
			numPush:     1,
		},
		ORIGIN: {
			execute:     opOrigin,
			constantGas: GasQuickStep,
			numPop:      0,
			numPush:     1,
		},
		CALLER: {
			execute:     opCaller,
			constantGas: GasQuickStep,
			numPop:      0,
			numPush:     1,
		},
		CALLVALUE: {
			execute:     opCallValue,
			constantGas: GasQuickStep,
			numPop:      0,
			numPush:     1,
		},
		CALLDATALOAD: {
			execute:     opCallDataLoad,
			constantGas: GasFastestStep,
			numPop:      1,
			numPush:     1,
		},
		CALLDATASIZE: {
			execute:     opCallDataSize,
			constantGas: GasQuickStep,
			numPop:      0,
			numPush:     1,
		},
		CALLDATACOPY: {
			execute:     opCallDataCopy,
			constantGas: GasFastestStep,
			dynamicGas:  gasCallDataCopy,
			numPop:      3,
			numPush:     0,
			memorySize:  memoryCallDataCopy,
		},
		CODESIZE: {
			execute:     opCodeSize,
			constantGas: GasQuickStep,
			numPop:      0,
			numPush:     1,
		},
		CODECOPY: {
			execute:     opCodeCopy,
			constantGas: GasFastestStep,
			dynamicGas:  gasCodeCopy,
			numPop:      3,
			numPush:     0,
			memorySize:  memoryCodeCopy,
		},
		GASPRICE: {
			execute:     opGasprice,
			constantGas: GasQuickStep,
			numPop:      0,
			numPush:     1,
		},
		EXTCODESIZE: {
			execute:     opExtCodeSize,
			constantGas: params.ExtcodeSizeGasFrontier,
			numPop:      1,
			numPush:     1,
		},
		EXTCODECOPY: {
			execute:     opExtCodeCopy,
			constantGas: params.ExtcodeCopyBaseFrontier,
			dynamicGas:  gasExtCodeCopy,
			numPop:      4,
			numPush:     0,
			memorySize:  memoryExtCodeCopy,
		},
		BLOCKHASH: {
			execute:     opBlockhash,
			constantGas: params.BlockhashGas,
			numPop:      1,
			numPush:     1,
		},
		COINBASE: {
			execute:     opCoinbase,
			constantGas: GasQuickStep,
			numPop:      0,
			numPush:     1,
		},
		TIMESTAMP: {
			execute:     opTimestamp,
			constantGas: GasQuickStep,
			numPop:      0,
			numPush:     1,
		},
		NUMBER: {
			execute:     opNumber,
			constantGas: GasQuickStep,
			numPop:      0,
			numPush:     1,
		},
		DIFFICULTY: {
			execute:     opDifficulty,
			constantGas: GasQuickStep,
			numPop:      0,
			numPush:     1,
		},
		GASLIMIT: {
			execute:     opGasLimit,
			constantGas: GasQuickStep,
			numPop:      0,
			numPush:     1,
		},
		POP: {
			execute:     opPop,
			constantGas: GasQuickStep,
			numPop:      1,
			numPush:     0,
		},
		MLOAD: {
			execute:     opMload,
			constantGas: GasFastestStep,
			dynamicGas:  gasMLoad,
			numPop:      1,
			numPush:     1,
			memorySize:  memoryMLoad,
		},
		MSTORE: {
			execute:     opMstore,
			constantGas: GasFastestStep,
			dynamicGas:  gasMStore,
			numPop:      2,
			numPush:     0,
			memorySize:  memoryMStore,
		},
		MSTORE8: {
			execute:     opMstore8,
			constantGas: GasFastestStep,
			dynamicGas:  gasMStore8,
			numPop:      2,
			numPush:     0,
			memorySize:  memoryMStore8,
		},
		SLOAD: {
			execute:     opSload,
			constantGas: params.SloadGasFrontier,
			numPop:      1,
			numPush:     1,
		},
		SSTORE: {
			execute:    opSstore,
			dynamicGas: gasSStore,
			numPop:     2,
			numPush:    0,
		},
		JUMP: {
			execute:     opJump,
			constantGas: GasMidStep,
			numPop:      1,
			numPush:     0,
		},
		JUMPI: {
			execute:     opJumpi,
			constantGas: GasSlowStep,
			numPop:      2,
			numPush:     0,
		},
		PC: {
			execute:     opPc,
			constantGas: GasQuickStep,
			numPop:      0,
			numPush:     1,
		},
		MSIZE: {
			execute:     opMsize,
			constantGas: GasQuickStep,
			numPop:      0,
			numPush:     1,
		},
		GAS: {
			execute:     opGas,
			constantGas: GasQuickStep,
			numPop:      0,
			numPush:     1,
		},
		JUMPDEST: {
			execute:     opJumpdest,
			constantGas: params.JumpdestGas,
			numPop:      0,
			numPush:     0,
		},
		CREATE: {
			execute:     opCreate,
			constantGas: params.CreateGas,
			dynamicGas:  gasCreate,
			numPop:      3,
			numPush:     1,
			memorySize:  memoryCreate,
		},
		CALL: {
			execute:     opCall,
			constantGas: params.CallGasFrontier,
			dynamicGas:  gasCall,
			numPop:      7,
			numPush:     1,
			memorySize:  memoryCall,
		},
		CALLCODE: {
			execute:     opCallCode,
			constantGas: params.CallGasFrontier,
			dynamicGas:  gasCallCode,
			numPop:      7,
			numPush:     1,
			memorySize:  memoryCall,
		},
		RETURN: {
			execute:    opReturn,
			dynamicGas: gasReturn,
			numPop:     2,
			numPush:    0,
			memorySize: memoryReturn,
		},
		SELFDESTRUCT: {
			execute:    opSelfdestruct,
			dynamicGas: gasSelfdestruct,
			numPop:     1,
			numPush:    0,
		},
		INVALID: {
			execute: opInvalid,
			numPop:  0,
			numPush: 0,
		},
	}

	// Fill the PUSH, DUP, SWAP and LOG ranges programmatically; they only
	// differ by an index.
	for i := 0; i < 32; i++ {
		tbl[int(PUSH1)+i] = &operation{
			execute:     makePush(uint64(i+1), i+1),
			constantGas: GasFastestStep,
			numPop:      0,
			numPush:     1,
		}
	}
	for i := 0; i < 16; i++ {
		tbl[int(DUP1)+i] = &operation{
			execute:     makeDup(int64(i + 1)),
			constantGas: GasFastestStep,
			numPop:      i + 1,
			numPush:     i + 2,
		}
	}
	for i := 0; i < 16; i++ {
		tbl[int(SWAP1)+i] = &operation{
			execute:     makeSwap(int64(i + 1)),
			constantGas: GasFastestStep,
			numPop:      i + 2,
			numPush:     i + 2,
		}
	}
	for i := 0; i <= 4; i++ {
		tbl[int(LOG0)+i] = &operation{
			execute:    makeLog(i),
			dynamicGas: makeGasLog(uint64(i)),
			numPop:     i + 2,
			numPush:    0,
			memorySize: memoryLog,
		}
	}

	// Fill every undefined slot with an invalid-opcode handler so the
	// interpreter never has to nil-check.
	for i, entry := range tbl {
		if entry == nil {
			op := OpCode(i)
			tbl[i] = &operation{
				execute: makeInvalid(op),
				numPop:  0,
				numPush: 0,
			}
		}
	}

	return tbl
}
