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

package state

import (
	"github.com/holiman/uint256"

	"github.com/helioschain/helios/common/types"
)

// journalEntry is a modification entry in the state change journal that can
// be reverted on demand.
type journalEntry interface {
	// revert undoes the changes introduced by this journal entry.
	revert(ibs *IntraBlockState)
}

// journal contains the list of state modifications applied since the last
// state commit. These are tracked to be able to be reverted in the case of
// an execution exception or request for reversal.
type journal struct {
	entries []journalEntry // Current changes tracked by the journal
}

func newJournal() *journal {
	return &journal{}
}

// append inserts a new modification entry to the end of the change journal.
func (j *journal) append(entry journalEntry) {
	j.entries = append(j.entries, entry)
}

// revert undoes a batch of journalled modifications.
func (j *journal) revert(ibs *IntraBlockState, snapshot int) {
	for i := len(j.entries) - 1; i >= snapshot; i-- {
		j.entries[i].revert(ibs)
	}
	j.entries = j.entries[:snapshot]
}

// length returns the current number of entries in the journal.
func (j *journal) length() int {
	return len(j.entries)
}

// reset empties the journal for the next transaction.
func (j *journal) reset() {
	j.entries = j.entries[:0]
}

type (
	// Changes to individual accounts.
	createObjectChange struct {
		account         types.Address
		prevCreatedInTx bool
	}
	balanceChange struct {
		account types.Address
		prev    uint256.Int
	}
	nonceChange struct {
		account types.Address
		prev    uint64
	}
	codeChange struct {
		account  types.Address
		prevCode []byte
	}
	storageChange struct {
		account  types.Address
		key      types.Hash
		prevalue uint256.Int
	}
	selfdestructChange struct {
		account     types.Address
		prev        bool // whether account had already self-destructed
		prevBalance uint256.Int
	}

	// Changes to other state values.
	refundChange struct {
		prev uint64
	}
	addLogChange struct{}
	transientStorageChange struct {
		account  types.Address
		key      types.Hash
		prevalue uint256.Int
	}

	// Changes to the access list.
	accessListAddAccountChange struct {
		address types.Address
	}
	accessListAddSlotChange struct {
		address types.Address
		slot    types.Hash
	}
)

func (ch createObjectChange) revert(ibs *IntraBlockState) {
	// The account image stays cached; only the creation flag rolls back.
	// Balance, nonce and code changes journal their own entries.
	ibs.getObject(ch.account).createdInTx = ch.prevCreatedInTx
}

func (ch balanceChange) revert(ibs *IntraBlockState) {
	ibs.getObject(ch.account).balance = ch.prev
}

func (ch nonceChange) revert(ibs *IntraBlockState) {
	ibs.getObject(ch.account).nonce = ch.prev
}

func (ch codeChange) revert(ibs *IntraBlockState) {
	obj := ibs.getObject(ch.account)
	obj.code = ch.prevCode
	obj.codeLoaded = true
}

func (ch storageChange) revert(ibs *IntraBlockState) {
	ibs.setStorageValue(ch.account, ch.key, ch.prevalue)
}

func (ch selfdestructChange) revert(ibs *IntraBlockState) {
	obj := ibs.getObject(ch.account)
	obj.selfdestructed = ch.prev
	obj.balance = ch.prevBalance
	if !ch.prev {
		ibs.selfdestructs.Remove(ch.account)
	}
}

func (ch refundChange) revert(ibs *IntraBlockState) {
	ibs.refund = ch.prev
}

func (ch addLogChange) revert(ibs *IntraBlockState) {
	ibs.logs = ibs.logs[:len(ibs.logs)-1]
}

func (ch transientStorageChange) revert(ibs *IntraBlockState) {
	ibs.transient.Set(ch.account, ch.key, ch.prevalue)
}

func (ch accessListAddAccountChange) revert(ibs *IntraBlockState) {
	// The warm set restores by set difference: the (addr) entry could only
	// have been journalled when it was not yet present, so dropping it
	// restores the pre-call snapshot. Any slots under the address journal
	// their own entries and revert first.
	ibs.accessList.DeleteAddress(ch.address)
}

func (ch accessListAddSlotChange) revert(ibs *IntraBlockState) {
	ibs.accessList.DeleteSlot(ch.address, ch.slot)
}
