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

// Reader is the backing store the state model reads through: the four
// primitive account reads of the host interface. Every operation is total
// from the engine's view; a backend that cannot answer synchronously wraps
// itself in an AsyncReader, which parks the executing goroutine until the
// embedder supplies the value.
type Reader interface {
	GetBalance(addr types.Address) *uint256.Int
	GetNonce(addr types.Address) uint64
	GetCode(addr types.Address) []byte
	GetStorage(addr types.Address, key types.Hash) uint256.Int
}

// Writer receives the commit of the dirty state at transaction end: the four
// primitive account writes of the host interface.
type Writer interface {
	SetBalance(addr types.Address, balance *uint256.Int)
	SetNonce(addr types.Address, nonce uint64)
	SetCode(addr types.Address, code []byte)
	SetStorage(addr types.Address, key types.Hash, value uint256.Int)
}

// ReaderWriter combines both sides of the host interface.
type ReaderWriter interface {
	Reader
	Writer
}

// MemoryReader is an in-memory host, used as the test fixture backend and as
// the commit target of standalone executions.
type MemoryReader struct {
	balances map[types.Address]uint256.Int
	nonces   map[types.Address]uint64
	codes    map[types.Address][]byte
	storage  map[types.Address]map[types.Hash]uint256.Int
}

// NewMemoryReader returns an empty in-memory host.
func NewMemoryReader() *MemoryReader {
	return &MemoryReader{
		balances: make(map[types.Address]uint256.Int),
		nonces:   make(map[types.Address]uint64),
		codes:    make(map[types.Address][]byte),
		storage:  make(map[types.Address]map[types.Hash]uint256.Int),
	}
}

func (m *MemoryReader) GetBalance(addr types.Address) *uint256.Int {
	b := m.balances[addr]
	return new(uint256.Int).Set(&b)
}

func (m *MemoryReader) GetNonce(addr types.Address) uint64 {
	return m.nonces[addr]
}

func (m *MemoryReader) GetCode(addr types.Address) []byte {
	return m.codes[addr]
}

func (m *MemoryReader) GetStorage(addr types.Address, key types.Hash) uint256.Int {
	if s, ok := m.storage[addr]; ok {
		return s[key]
	}
	return uint256.Int{}
}

func (m *MemoryReader) SetBalance(addr types.Address, balance *uint256.Int) {
	m.balances[addr] = *balance
}

func (m *MemoryReader) SetNonce(addr types.Address, nonce uint64) {
	m.nonces[addr] = nonce
}

func (m *MemoryReader) SetCode(addr types.Address, code []byte) {
	m.codes[addr] = code
}

func (m *MemoryReader) SetStorage(addr types.Address, key types.Hash, value uint256.Int) {
	s, ok := m.storage[addr]
	if !ok {
		s = make(map[types.Hash]uint256.Int)
		m.storage[addr] = s
	}
	if value.IsZero() {
		delete(s, key)
		return
	}
	s[key] = value
}

// TryGet answers any request synchronously; the in-memory host never misses.
func (m *MemoryReader) TryGet(req DataRequest) (DataValue, bool) {
	switch req.Kind {
	case BalanceData:
		return DataValue{Word: m.balances[req.Addr]}, true
	case NonceData:
		return DataValue{U64: m.nonces[req.Addr]}, true
	case CodeData:
		return DataValue{Bytes: m.codes[req.Addr]}, true
	case StorageData:
		return DataValue{Word: m.GetStorage(req.Addr, req.Slot)}, true
	default:
		return DataValue{}, true
	}
}

var (
	_ ReaderWriter = (*MemoryReader)(nil)
	_ TryReader    = (*MemoryReader)(nil)
)

// DataKind names the read that missed in an async backend.
type DataKind uint8

const (
	StorageData DataKind = iota
	BalanceData
	CodeData
	NonceData
)

func (k DataKind) String() string {
	switch k {
	case StorageData:
		return "storage"
	case BalanceData:
		return "balance"
	case CodeData:
		return "code"
	case NonceData:
		return "nonce"
	default:
		return "unknown"
	}
}

// DataRequest identifies one missing datum. Slot is only meaningful for
// StorageData.
type DataRequest struct {
	Kind DataKind
	Addr types.Address
	Slot types.Hash
}

// DataValue carries the answer to a DataRequest. Word answers storage and
// balance reads, U64 nonce reads, Bytes code reads.
type DataValue struct {
	Word  uint256.Int
	U64   uint64
	Bytes []byte
}

// TryReader is the miss-capable face of a backend: it answers what it has
// and reports false for data it cannot produce synchronously. A miss
// suspends execution until the embedder resumes with the value.
type TryReader interface {
	TryGet(req DataRequest) (DataValue, bool)
}

// FetchFunc resolves a missing datum. Implementations may block the calling
// goroutine; the executor's implementation parks it until resume.
type FetchFunc func(DataRequest) DataValue

// AsyncReader caches host data and fills misses through a FetchFunc. Cache
// writes happen before the suspended read returns, so the retried read is a
// plain cache hit and nothing is ever charged or mutated twice.
type AsyncReader struct {
	fetch FetchFunc

	balances map[types.Address]uint256.Int
	nonces   map[types.Address]uint64
	codes    map[types.Address][]byte
	storage  map[types.Address]map[types.Hash]uint256.Int
}

// NewAsyncReader returns a reader that resolves misses through fetch.
func NewAsyncReader(fetch FetchFunc) *AsyncReader {
	return &AsyncReader{
		fetch:    fetch,
		balances: make(map[types.Address]uint256.Int),
		nonces:   make(map[types.Address]uint64),
		codes:    make(map[types.Address][]byte),
		storage:  make(map[types.Address]map[types.Hash]uint256.Int),
	}
}

// Prime seeds the cache so a known value never suspends.
func (a *AsyncReader) Prime(req DataRequest, val DataValue) {
	a.store(req, val)
}

func (a *AsyncReader) store(req DataRequest, val DataValue) {
	switch req.Kind {
	case BalanceData:
		a.balances[req.Addr] = val.Word
	case NonceData:
		a.nonces[req.Addr] = val.U64
	case CodeData:
		code := val.Bytes
		if code == nil {
			code = []byte{}
		}
		a.codes[req.Addr] = code
	case StorageData:
		s, ok := a.storage[req.Addr]
		if !ok {
			s = make(map[types.Hash]uint256.Int)
			a.storage[req.Addr] = s
		}
		s[req.Slot] = val.Word
	}
}

func (a *AsyncReader) GetBalance(addr types.Address) *uint256.Int {
	if b, ok := a.balances[addr]; ok {
		return new(uint256.Int).Set(&b)
	}
	req := DataRequest{Kind: BalanceData, Addr: addr}
	val := a.fetch(req)
	a.store(req, val)
	return new(uint256.Int).Set(&val.Word)
}

func (a *AsyncReader) GetNonce(addr types.Address) uint64 {
	if n, ok := a.nonces[addr]; ok {
		return n
	}
	req := DataRequest{Kind: NonceData, Addr: addr}
	val := a.fetch(req)
	a.store(req, val)
	return val.U64
}

func (a *AsyncReader) GetCode(addr types.Address) []byte {
	if c, ok := a.codes[addr]; ok {
		return c
	}
	req := DataRequest{Kind: CodeData, Addr: addr}
	val := a.fetch(req)
	a.store(req, val)
	return a.codes[addr]
}

func (a *AsyncReader) GetStorage(addr types.Address, key types.Hash) uint256.Int {
	if s, ok := a.storage[addr]; ok {
		if v, ok := s[key]; ok {
			return v
		}
	}
	req := DataRequest{Kind: StorageData, Addr: addr, Slot: key}
	val := a.fetch(req)
	a.store(req, val)
	return val.Word
}

var _ Reader = (*AsyncReader)(nil)
