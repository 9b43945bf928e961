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

package common

import (
	"github.com/holiman/uint256"

	"github.com/helioschain/helios/common/block"
	"github.com/helioschain/helios/common/types"
)

// StateDB is the state accessor the EVM executes against for the duration of
// one transaction. It is the single source of truth for the interface; the
// implementation is modules/state.IntraBlockState.
//
// Thread safety: implementations are NOT required to be thread-safe. A
// transaction executes on exactly one goroutine at a time.
type StateDB interface {
	// ========== Account management ==========

	// CreateAccount creates a new account at the given address.
	// contractCreation marks it as created within this transaction, which
	// feeds the EIP-6780 selfdestruct rule.
	CreateAccount(addr types.Address, contractCreation bool)

	// Exist reports whether the given account exists in state.
	// Notably this also returns true for self-destructed accounts.
	Exist(addr types.Address) bool

	// Empty returns whether the account is empty per EIP-161
	// (balance = nonce = code = 0).
	Empty(addr types.Address) bool

	// ========== Balances ==========

	SubBalance(addr types.Address, amount *uint256.Int)
	AddBalance(addr types.Address, amount *uint256.Int)
	GetBalance(addr types.Address) *uint256.Int

	// ========== Nonces ==========

	GetNonce(addr types.Address) uint64
	SetNonce(addr types.Address, nonce uint64)

	// ========== Code ==========

	GetCodeHash(addr types.Address) types.Hash
	GetCode(addr types.Address) []byte
	SetCode(addr types.Address, code []byte)
	GetCodeSize(addr types.Address) int

	// ========== Refund counter ==========

	// AddRefund adds gas to the refund counter.
	AddRefund(gas uint64)
	// SubRefund removes gas from the refund counter. Panics if the counter
	// goes below zero; the EIP-2200 algebra never legitimately does that.
	SubRefund(gas uint64)
	GetRefund() uint64

	// ========== Storage ==========

	// GetCommittedState retrieves the value the slot held when it was first
	// touched in this transaction (the "original" value of EIP-2200).
	GetCommittedState(addr types.Address, key *types.Hash, outValue *uint256.Int)

	// GetState retrieves the current value of the slot.
	GetState(addr types.Address, key *types.Hash, outValue *uint256.Int)

	// SetState writes the slot. Writing zero removes the explicit entry.
	SetState(addr types.Address, key *types.Hash, value uint256.Int)

	// ========== Self-destruct ==========

	// Selfdestruct marks the account self-destructed and clears its balance.
	// Returns false if the account did not exist.
	Selfdestruct(addr types.Address) bool

	// Selfdestruct6780 applies the Cancun rule: the account is only marked
	// for deletion if it was created within this transaction.
	Selfdestruct6780(addr types.Address)

	HasSelfdestructed(addr types.Address) bool

	// WasCreatedInTx reports whether the account was created in the current
	// transaction.
	WasCreatedInTx(addr types.Address) bool

	// ========== Access list (EIP-2929/2930) ==========

	AddressInAccessList(addr types.Address) bool
	SlotInAccessList(addr types.Address, slot types.Hash) (addressOk bool, slotOk bool)

	// AddAddressToAccessList is safe to call even before the Berlin fork.
	AddAddressToAccessList(addr types.Address)
	AddSlotToAccessList(addr types.Address, slot types.Hash)

	// ========== Snapshot / revert ==========

	// Snapshot returns an identifier for the current revision of the state.
	Snapshot() int
	// RevertToSnapshot reverts all state changes made since the revision.
	RevertToSnapshot(revisionID int)

	// ========== Logs ==========

	AddLog(log *block.Log)
	GetLogs() []*block.Log

	// ========== Transient storage (EIP-1153) ==========

	GetTransientState(addr types.Address, key types.Hash) uint256.Int
	SetTransientState(addr types.Address, key types.Hash, value uint256.Int)
}

