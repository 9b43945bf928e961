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
	"github.com/helioschain/helios/params"
)

// =============================================================================
// EIP-1153: Transient Storage (Cancun)
// https://eips.ethereum.org/EIPS/eip-1153
// =============================================================================

// enable1153 applies EIP-1153 "Transient Storage"
// - Adds TLOAD (0x5c) - transient storage load
// - Adds TSTORE (0x5d) - transient storage store
func enable1153(jt *JumpTable) {
	jt[TLOAD] = &operation{
		execute:     opTload,
		constantGas: params.WarmStorageReadCostEIP2929,
		numPop:      1,
		numPush:     1,
	}

	jt[TSTORE] = &operation{
		execute:     opTstore,
		constantGas: params.WarmStorageReadCostEIP2929,
		numPop:      2,
		numPush:     0,
	}
}

// opTload implements TLOAD (0x5c)
func opTload(pc *uint64, interpreter *EVMInterpreter, scope *ScopeContext) ([]byte, error) {
	loc := scope.Stack.Peek()
	hash := types.Hash(loc.Bytes32())
	val := interpreter.evm.IntraBlockState().GetTransientState(scope.Contract.Address(), hash)
	loc.Set(&val)
	return nil, nil
}

// opTstore implements TSTORE (0x5d)
func opTstore(pc *uint64, interpreter *EVMInterpreter, scope *ScopeContext) ([]byte, error) {
	if interpreter.readOnly {
		return nil, ErrWriteProtection
	}
	loc := scope.Stack.Pop()
	val := scope.Stack.Pop()
	interpreter.evm.IntraBlockState().SetTransientState(scope.Contract.Address(), types.Hash(loc.Bytes32()), val)
	return nil, nil
}

// =============================================================================
// EIP-5656: MCOPY - Memory copying instruction (Cancun)
// https://eips.ethereum.org/EIPS/eip-5656
// =============================================================================

// enable5656 applies EIP-5656 "MCOPY - Memory copying instruction"
// - Adds MCOPY (0x5e) - efficient memory copy
func enable5656(jt *JumpTable) {
	jt[MCOPY] = &operation{
		execute:     opMcopy,
		constantGas: GasFastestStep,
		dynamicGas:  gasMcopy,
		numPop:      3,
		numPush:     0,
		memorySize:  memoryMcopy,
	}
}

// opMcopy implements MCOPY (0x5e)
func opMcopy(pc *uint64, interpreter *EVMInterpreter, scope *ScopeContext) ([]byte, error) {
	var (
		dst    = scope.Stack.Pop()
		src    = scope.Stack.Pop()
		length = scope.Stack.Pop()
	)
	// These values are checked for overflow during memory expansion calculation
	scope.Memory.Copy(dst.Uint64(), src.Uint64(), length.Uint64())
	return nil, nil
}

// =============================================================================
// EIP-4844: Shard Blob Transactions (Cancun)
// https://eips.ethereum.org/EIPS/eip-4844
// =============================================================================

// enable4844 applies EIP-4844 (BLOBHASH opcode)
func enable4844(jt *JumpTable) {
	jt[BLOBHASH] = &operation{
		execute:     opBlobHash,
		constantGas: params.BlobHashGas,
		numPop:      1,
		numPush:     1,
	}
}

// opBlobHash implements the BLOBHASH opcode
func opBlobHash(pc *uint64, interpreter *EVMInterpreter, scope *ScopeContext) ([]byte, error) {
	index := scope.Stack.Peek()
	blobHashes := interpreter.evm.TxContext().BlobHashes
	if index.LtUint64(uint64(len(blobHashes))) {
		blobHash := blobHashes[index.Uint64()]
		index.SetBytes32(blobHash.Bytes())
	} else {
		index.Clear()
	}
	return nil, nil
}

// =============================================================================
// EIP-7516: BLOBBASEFEE opcode (Cancun)
// https://eips.ethereum.org/EIPS/eip-7516
// =============================================================================

// enable7516 applies EIP-7516 (BLOBBASEFEE opcode)
func enable7516(jt *JumpTable) {
	jt[BLOBBASEFEE] = &operation{
		execute:     opBlobBaseFee,
		constantGas: params.BlobBaseFeeGas,
		numPop:      0,
		numPush:     1,
	}
}

// opBlobBaseFee implements the BLOBBASEFEE opcode
func opBlobBaseFee(pc *uint64, interpreter *EVMInterpreter, scope *ScopeContext) ([]byte, error) {
	blobBaseFee := interpreter.evm.Context().BlobBaseFee
	if blobBaseFee == nil {
		scope.Stack.Push(new(uint256.Int))
		return nil, nil
	}
	scope.Stack.Push(new(uint256.Int).Set(blobBaseFee))
	return nil, nil
}
