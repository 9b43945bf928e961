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

// Package state implements the per-transaction state model of the execution
// engine: journaled balances, nonces, code, storage with original-value
// tracking, transient storage, the EIP-2929 warm sets, the refund counter,
// logs and the EIP-6780 selfdestruct bookkeeping.
package state

import (
	"fmt"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/holiman/uint256"

	"github.com/helioschain/helios/common"
	"github.com/helioschain/helios/common/block"
	"github.com/helioschain/helios/common/crypto"
	"github.com/helioschain/helios/common/transaction"
	"github.com/helioschain/helios/common/types"
	"github.com/helioschain/helios/params"
)

// stateObject is the in-memory image of one account during a transaction.
type stateObject struct {
	balance        uint256.Int
	nonce          uint64
	code           []byte
	codeLoaded     bool
	createdInTx    bool
	selfdestructed bool
	deleted        bool // set at FinalizeTx for EIP-6780 deletions
}

// IntraBlockState implements common.StateDB against a Reader-backed host.
// All mutations are journalled so any suffix of them can be rolled back to a
// snapshot; reads miss through to the Reader, which may suspend execution
// when the backend is asynchronous.
type IntraBlockState struct {
	reader Reader

	objects map[types.Address]*stateObject

	// storage holds the current value of every slot written in this
	// transaction whose value is non-zero; a written slot whose current
	// value is zero is tracked in dirtySlots only. originStorage caches the
	// value each slot held when first touched (EIP-2200's "original").
	storage       map[types.Address]Storage
	originStorage map[types.Address]Storage
	dirtySlots    map[types.Address]map[types.Hash]struct{}

	transient  transientStorage
	accessList *accessList

	refund uint64
	logs   []*block.Log

	// selfdestructs tracks accounts that executed SELFDESTRUCT; the
	// createdInTx flag on the object decides deletion under EIP-6780.
	selfdestructs mapset.Set[types.Address]

	dirtyAccounts map[types.Address]struct{}

	journal        *journal
	validRevisions []revision
	nextRevisionID int
}

type revision struct {
	id           int
	journalIndex int
}

// New creates an IntraBlockState over the given reader.
func New(reader Reader) *IntraBlockState {
	return &IntraBlockState{
		reader:        reader,
		objects:       make(map[types.Address]*stateObject),
		storage:       make(map[types.Address]Storage),
		originStorage: make(map[types.Address]Storage),
		dirtySlots:    make(map[types.Address]map[types.Hash]struct{}),
		transient:     newTransientStorage(),
		accessList:    newAccessList(),
		selfdestructs: mapset.NewThreadUnsafeSet[types.Address](),
		dirtyAccounts: make(map[types.Address]struct{}),
		journal:       newJournal(),
	}
}

// getObject loads the account image, reading balance and nonce through the
// host on first touch. Code loads lazily.
func (ibs *IntraBlockState) getObject(addr types.Address) *stateObject {
	if obj, ok := ibs.objects[addr]; ok {
		return obj
	}
	obj := &stateObject{
		nonce: ibs.reader.GetNonce(addr),
	}
	obj.balance.Set(ibs.reader.GetBalance(addr))
	ibs.objects[addr] = obj
	return obj
}

func (ibs *IntraBlockState) loadCode(obj *stateObject, addr types.Address) {
	if obj.codeLoaded {
		return
	}
	obj.code = ibs.reader.GetCode(addr)
	obj.codeLoaded = true
}

func (ibs *IntraBlockState) markDirty(addr types.Address) {
	ibs.dirtyAccounts[addr] = struct{}{}
}

// ========== Account management ==========

// CreateAccount creates a new account at the given address. Any pre-existing
// balance is carried over; contractCreation feeds the EIP-6780 rule.
func (ibs *IntraBlockState) CreateAccount(addr types.Address, contractCreation bool) {
	obj := ibs.getObject(addr)
	ibs.journal.append(createObjectChange{account: addr, prevCreatedInTx: obj.createdInTx})
	if contractCreation {
		obj.createdInTx = true
	}
	ibs.markDirty(addr)
}

// Exist reports whether the account is known to the state, including
// self-destructed and freshly created accounts.
func (ibs *IntraBlockState) Exist(addr types.Address) bool {
	obj := ibs.getObject(addr)
	if obj.createdInTx || obj.selfdestructed {
		return true
	}
	return !ibs.Empty(addr)
}

// Empty implements EIP-161: balance = nonce = code = 0.
func (ibs *IntraBlockState) Empty(addr types.Address) bool {
	obj := ibs.getObject(addr)
	if !obj.balance.IsZero() || obj.nonce != 0 {
		return false
	}
	ibs.loadCode(obj, addr)
	return len(obj.code) == 0
}

// ========== Balances ==========

func (ibs *IntraBlockState) SubBalance(addr types.Address, amount *uint256.Int) {
	obj := ibs.getObject(addr)
	ibs.journal.append(balanceChange{account: addr, prev: obj.balance})
	obj.balance.Sub(&obj.balance, amount)
	ibs.markDirty(addr)
}

func (ibs *IntraBlockState) AddBalance(addr types.Address, amount *uint256.Int) {
	obj := ibs.getObject(addr)
	ibs.journal.append(balanceChange{account: addr, prev: obj.balance})
	obj.balance.Add(&obj.balance, amount)
	ibs.markDirty(addr)
}

func (ibs *IntraBlockState) GetBalance(addr types.Address) *uint256.Int {
	obj := ibs.getObject(addr)
	return new(uint256.Int).Set(&obj.balance)
}

// ========== Nonces ==========

func (ibs *IntraBlockState) GetNonce(addr types.Address) uint64 {
	return ibs.getObject(addr).nonce
}

func (ibs *IntraBlockState) SetNonce(addr types.Address, nonce uint64) {
	obj := ibs.getObject(addr)
	ibs.journal.append(nonceChange{account: addr, prev: obj.nonce})
	obj.nonce = nonce
	ibs.markDirty(addr)
}

// ========== Code ==========

func (ibs *IntraBlockState) GetCode(addr types.Address) []byte {
	obj := ibs.getObject(addr)
	ibs.loadCode(obj, addr)
	return obj.code
}

func (ibs *IntraBlockState) GetCodeSize(addr types.Address) int {
	return len(ibs.GetCode(addr))
}

func (ibs *IntraBlockState) GetCodeHash(addr types.Address) types.Hash {
	code := ibs.GetCode(addr)
	if len(code) == 0 {
		if !ibs.Exist(addr) {
			return types.Hash{}
		}
		return emptyCodeHash
	}
	return hashCode(code)
}

func (ibs *IntraBlockState) SetCode(addr types.Address, code []byte) {
	obj := ibs.getObject(addr)
	ibs.loadCode(obj, addr)
	ibs.journal.append(codeChange{account: addr, prevCode: obj.code})
	obj.code = code
	obj.codeLoaded = true
	ibs.markDirty(addr)
}

// ========== Refund counter ==========

func (ibs *IntraBlockState) AddRefund(gas uint64) {
	ibs.journal.append(refundChange{prev: ibs.refund})
	ibs.refund += gas
}

func (ibs *IntraBlockState) SubRefund(gas uint64) {
	ibs.journal.append(refundChange{prev: ibs.refund})
	if gas > ibs.refund {
		panic(fmt.Sprintf("refund counter below zero (gas: %d > refund: %d)", gas, ibs.refund))
	}
	ibs.refund -= gas
}

func (ibs *IntraBlockState) GetRefund() uint64 {
	return ibs.refund
}

// ========== Storage ==========

// getCommitted returns the original value of the slot for this transaction,
// reading through the host and caching the observation on first touch.
func (ibs *IntraBlockState) getCommitted(addr types.Address, key types.Hash) uint256.Int {
	if s, ok := ibs.originStorage[addr]; ok {
		if v, ok := s[key]; ok {
			return v
		}
	}
	v := ibs.reader.GetStorage(addr, key)
	s, ok := ibs.originStorage[addr]
	if !ok {
		s = make(Storage)
		ibs.originStorage[addr] = s
	}
	s[key] = v
	return v
}

func (ibs *IntraBlockState) GetCommittedState(addr types.Address, key *types.Hash, outValue *uint256.Int) {
	v := ibs.getCommitted(addr, *key)
	outValue.Set(&v)
}

func (ibs *IntraBlockState) GetState(addr types.Address, key *types.Hash, outValue *uint256.Int) {
	if marks, ok := ibs.dirtySlots[addr]; ok {
		if _, written := marks[*key]; written {
			if s, ok := ibs.storage[addr]; ok {
				if v, ok := s[*key]; ok {
					outValue.Set(&v)
					return
				}
			}
			// Written and zero: the live map holds no explicit entry.
			outValue.Clear()
			return
		}
	}
	v := ibs.getCommitted(addr, *key)
	outValue.Set(&v)
}

// setStorageValue installs value as the current value of the slot, removing
// the explicit entry when the value is zero.
func (ibs *IntraBlockState) setStorageValue(addr types.Address, key types.Hash, value uint256.Int) {
	s, ok := ibs.storage[addr]
	if !ok {
		s = make(Storage)
		ibs.storage[addr] = s
	}
	if value.IsZero() {
		delete(s, key)
		return
	}
	s[key] = value
}

func (ibs *IntraBlockState) SetState(addr types.Address, key *types.Hash, value uint256.Int) {
	var prev uint256.Int
	ibs.GetState(addr, key, &prev)
	// Record the original value on the first write to the slot.
	ibs.getCommitted(addr, *key)
	if prev.Eq(&value) {
		return
	}
	ibs.journal.append(storageChange{account: addr, key: *key, prevalue: prev})
	marks, ok := ibs.dirtySlots[addr]
	if !ok {
		marks = make(map[types.Hash]struct{})
		ibs.dirtySlots[addr] = marks
	}
	marks[*key] = struct{}{}
	ibs.setStorageValue(addr, *key, value)
}

// ========== Self-destruct ==========

func (ibs *IntraBlockState) Selfdestruct(addr types.Address) bool {
	obj := ibs.getObject(addr)
	if !ibs.Exist(addr) {
		return false
	}
	ibs.journal.append(selfdestructChange{
		account:     addr,
		prev:        obj.selfdestructed,
		prevBalance: obj.balance,
	})
	obj.selfdestructed = true
	obj.balance.Clear()
	ibs.selfdestructs.Add(addr)
	ibs.markDirty(addr)
	return true
}

// Selfdestruct6780 implements the Cancun rule: deletion only happens for
// accounts created within the same transaction. The balance sweep has
// already been performed by the opcode.
func (ibs *IntraBlockState) Selfdestruct6780(addr types.Address) {
	obj := ibs.getObject(addr)
	if obj.createdInTx {
		ibs.Selfdestruct(addr)
	}
}

func (ibs *IntraBlockState) HasSelfdestructed(addr types.Address) bool {
	if obj, ok := ibs.objects[addr]; ok {
		return obj.selfdestructed
	}
	return false
}

func (ibs *IntraBlockState) WasCreatedInTx(addr types.Address) bool {
	if obj, ok := ibs.objects[addr]; ok {
		return obj.createdInTx
	}
	return false
}

// ========== Access list ==========

func (ibs *IntraBlockState) AddressInAccessList(addr types.Address) bool {
	return ibs.accessList.ContainsAddress(addr)
}

func (ibs *IntraBlockState) SlotInAccessList(addr types.Address, slot types.Hash) (addressOk bool, slotOk bool) {
	return ibs.accessList.Contains(addr, slot)
}

func (ibs *IntraBlockState) AddAddressToAccessList(addr types.Address) {
	if ibs.accessList.AddAddress(addr) {
		ibs.journal.append(accessListAddAccountChange{address: addr})
	}
}

func (ibs *IntraBlockState) AddSlotToAccessList(addr types.Address, slot types.Hash) {
	addrChange, slotChange := ibs.accessList.AddSlot(addr, slot)
	if addrChange {
		ibs.journal.append(accessListAddAccountChange{address: addr})
	}
	if slotChange {
		ibs.journal.append(accessListAddSlotChange{address: addr, slot: slot})
	}
}

// Prepare performs the pre-transaction warm-ups and wipes per-transaction
// state: transient storage is cleared, then origin, destination, coinbase
// (EIP-3651), the precompiles, the EIP-2930 access list and the EIP-7702
// authorities are marked warm. Warm-ups are unconditional additions, not
// journalled: they belong to no call frame and never roll back.
func (ibs *IntraBlockState) Prepare(rules *params.Rules, sender, coinbase types.Address, dst *types.Address,
	precompiles []types.Address, list transaction.AccessList, authorities []types.Address) {
	if rules.IsCancun {
		ibs.transient = newTransientStorage()
	}
	if !rules.IsBerlin {
		return
	}
	ibs.accessList.Reset()
	ibs.accessList.AddAddress(sender)
	if dst != nil {
		ibs.accessList.AddAddress(*dst)
		// If it's a create-tx, the destination will be added inside evm.create
	}
	for _, addr := range precompiles {
		ibs.accessList.AddAddress(addr)
	}
	for _, el := range list {
		ibs.accessList.AddAddress(el.Address)
		for _, key := range el.StorageKeys {
			ibs.accessList.AddSlot(el.Address, key)
		}
	}
	if rules.IsShanghai { // EIP-3651: warm coinbase
		ibs.accessList.AddAddress(coinbase)
	}
	if rules.IsPrague { // EIP-7702: warm authorities
		for _, addr := range authorities {
			ibs.accessList.AddAddress(addr)
		}
	}
}

// ========== Snapshot / revert ==========

func (ibs *IntraBlockState) Snapshot() int {
	id := ibs.nextRevisionID
	ibs.nextRevisionID++
	ibs.validRevisions = append(ibs.validRevisions, revision{id, ibs.journal.length()})
	return id
}

func (ibs *IntraBlockState) RevertToSnapshot(revid int) {
	// Find the snapshot in the stack of valid snapshots.
	idx := -1
	for i := len(ibs.validRevisions) - 1; i >= 0; i-- {
		if ibs.validRevisions[i].id == revid {
			idx = i
			break
		}
	}
	if idx == -1 {
		panic(fmt.Errorf("revision id %v cannot be reverted", revid))
	}
	snapshot := ibs.validRevisions[idx].journalIndex

	// Replay the journal to undo changes and remove invalidated snapshots
	ibs.journal.revert(ibs, snapshot)
	ibs.validRevisions = ibs.validRevisions[:idx]
}

// ========== Logs ==========

func (ibs *IntraBlockState) AddLog(l *block.Log) {
	ibs.journal.append(addLogChange{})
	l.Index = uint(len(ibs.logs))
	ibs.logs = append(ibs.logs, l)
}

func (ibs *IntraBlockState) GetLogs() []*block.Log {
	return ibs.logs
}

// ========== Transient storage ==========

func (ibs *IntraBlockState) GetTransientState(addr types.Address, key types.Hash) uint256.Int {
	return ibs.transient.Get(addr, key)
}

func (ibs *IntraBlockState) SetTransientState(addr types.Address, key types.Hash, value uint256.Int) {
	prev := ibs.transient.Get(addr, key)
	if prev.Eq(&value) {
		return
	}
	ibs.journal.append(transientStorageChange{account: addr, key: key, prevalue: prev})
	ibs.transient.Set(addr, key, value)
}

// TransientStorageEmpty reports whether every transient slot is zero; it
// must hold at transaction boundaries.
func (ibs *IntraBlockState) TransientStorageEmpty() bool {
	return ibs.transient.Empty()
}

// ========== Transaction end ==========

// FinalizeTx applies end-of-transaction rules: self-destructed accounts are
// deleted (under Cancun only those created within the transaction ever made
// it into the set), transient storage is wiped, the warm sets and journal
// are reset. It returns the deleted addresses.
func (ibs *IntraBlockState) FinalizeTx(rules *params.Rules) []types.Address {
	var deleted []types.Address
	for _, addr := range ibs.selfdestructs.ToSlice() {
		obj := ibs.objects[addr]
		if obj == nil || !obj.selfdestructed {
			continue
		}
		obj.deleted = true
		obj.balance.Clear()
		obj.nonce = 0
		obj.code = nil
		obj.codeLoaded = true
		// Zero out every slot written this transaction; committed slots of
		// the account die with it on the host side.
		marks, ok := ibs.dirtySlots[addr]
		if !ok {
			marks = make(map[types.Hash]struct{})
			ibs.dirtySlots[addr] = marks
		}
		if s, ok := ibs.storage[addr]; ok {
			for key := range s {
				marks[key] = struct{}{}
				delete(s, key)
			}
		}
		ibs.markDirty(addr)
		deleted = append(deleted, addr)
	}
	ibs.transient = newTransientStorage()
	ibs.accessList.Reset()
	ibs.journal.reset()
	ibs.validRevisions = ibs.validRevisions[:0]
	return deleted
}

// Selfdestructs returns the addresses that executed SELFDESTRUCT during the
// transaction.
func (ibs *IntraBlockState) Selfdestructs() []types.Address {
	return ibs.selfdestructs.ToSlice()
}

// DirtyAccounts returns the addresses whose balance, nonce or code changed.
func (ibs *IntraBlockState) DirtyAccounts() []types.Address {
	out := make([]types.Address, 0, len(ibs.dirtyAccounts))
	for addr := range ibs.dirtyAccounts {
		out = append(out, addr)
	}
	return out
}

// DirtyStorage returns the written slot keys per account.
func (ibs *IntraBlockState) DirtyStorage() map[types.Address][]types.Hash {
	out := make(map[types.Address][]types.Hash, len(ibs.dirtySlots))
	for addr, marks := range ibs.dirtySlots {
		keys := make([]types.Hash, 0, len(marks))
		for key := range marks {
			keys = append(keys, key)
		}
		out[addr] = keys
	}
	return out
}

// CommitTo writes the dirty state through the host's write interface.
func (ibs *IntraBlockState) CommitTo(w Writer) {
	for addr := range ibs.dirtyAccounts {
		obj := ibs.objects[addr]
		if obj == nil {
			continue
		}
		w.SetBalance(addr, new(uint256.Int).Set(&obj.balance))
		w.SetNonce(addr, obj.nonce)
		if obj.codeLoaded {
			w.SetCode(addr, obj.code)
		}
	}
	for addr, marks := range ibs.dirtySlots {
		for key := range marks {
			var v uint256.Int
			k := key
			ibs.GetState(addr, &k, &v)
			w.SetStorage(addr, key, v)
		}
	}
}

// hashCode is the keccak of an account's code; pulled out so the state
// package does not depend on the vm package.
func hashCode(code []byte) types.Hash {
	return crypto.Keccak256Hash(code)
}

var emptyCodeHash = hashCode(nil)

var _ common.StateDB = (*IntraBlockState)(nil)
