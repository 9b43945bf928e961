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

// Package evmtypes holds the execution-context value types shared between the
// VM and its embedders.
package evmtypes

import (
	"github.com/holiman/uint256"

	"github.com/helioschain/helios/common"
	"github.com/helioschain/helios/common/block"
	"github.com/helioschain/helios/common/transaction"
	libcommon "github.com/helioschain/helios/common/types"
)

// BlockContext provides the EVM with auxiliary information. Once provided
// it shouldn't be modified.
type BlockContext struct {
	// CanTransfer returns whether the account contains
	// sufficient ether to transfer the value
	CanTransfer CanTransferFunc
	// Transfer transfers ether from one account to the other
	Transfer TransferFunc
	// GetHash returns the hash corresponding to n
	GetHash GetHashFunc

	// Block information
	Coinbase    libcommon.Address // Provides information for COINBASE
	GasLimit    uint64            // Provides information for GASLIMIT
	BlockNumber uint64            // Provides information for NUMBER
	Time        uint64            // Provides information for TIME
	Difficulty  *uint256.Int      // Provides information for DIFFICULTY
	BaseFee     *uint256.Int      // Provides information for BASEFEE
	PrevRanDao  *libcommon.Hash   // Provides information for PREVRANDAO

	// EIP-4844: Blob gas fields (Cancun)
	BlobBaseFee *uint256.Int // Provides information for BLOBBASEFEE
}

// TxContext provides the EVM with information about a transaction.
// All fields can change between transactions.
type TxContext struct {
	// Message information
	TxHash   libcommon.Hash
	Origin   libcommon.Address // Provides information for ORIGIN
	GasPrice *uint256.Int      // Provides information for GASPRICE

	// EIP-4844: Blob transaction fields (Cancun)
	BlobHashes []libcommon.Hash // Versioned blob hashes for BLOBHASH opcode
}

type (
	// CanTransferFunc is the signature of a transfer guard function
	CanTransferFunc func(IntraBlockState, libcommon.Address, *uint256.Int) bool
	// TransferFunc is the signature of a transfer function
	TransferFunc func(IntraBlockState, libcommon.Address, libcommon.Address, *uint256.Int, bool)
	// GetHashFunc returns the nth block hash in the blockchain
	// and is used by the BLOCKHASH EVM op code.
	GetHashFunc func(uint64) libcommon.Hash
)

// IntraBlockState is the EVM's state accessor for the duration of one
// transaction. The interface lives in common (single source of truth); the
// implementation is modules/state.IntraBlockState.
type IntraBlockState = common.StateDB

// Re-export block.Log for convenience.
type Log = block.Log

// Re-export transaction.AccessList for convenience.
type AccessList = transaction.AccessList
