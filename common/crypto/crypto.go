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

// Package crypto wraps the hashing primitives the execution engine needs:
// Keccak256 and the contract address derivations built on top of it.
package crypto

import (
	"hash"
	"sync"

	"github.com/helioschain/helios/common/types"
	"golang.org/x/crypto/sha3"
)

// KeccakState wraps sha3.state. In addition to the usual hash methods, it
// also supports Read to get a variable amount of data from the hash state.
// Read is faster than Sum because it doesn't copy the internal state.
type KeccakState interface {
	hash.Hash
	Read([]byte) (int, error)
}

// keccakPool reuses hasher state across calls. Keccak shows up on the hot
// path of KECCAK256, CREATE2 and jumpdest-analysis caching.
var keccakPool = sync.Pool{
	New: func() any { return sha3.NewLegacyKeccak256().(KeccakState) },
}

// NewKeccakState creates a new KeccakState.
func NewKeccakState() KeccakState {
	return sha3.NewLegacyKeccak256().(KeccakState)
}

// Keccak256 calculates and returns the Keccak256 hash of the input data.
func Keccak256(data ...[]byte) []byte {
	b := make([]byte, 32)
	d := keccakPool.Get().(KeccakState)
	defer keccakPool.Put(d)
	d.Reset()
	for _, b2 := range data {
		d.Write(b2) //nolint:errcheck
	}
	d.Read(b) //nolint:errcheck
	return b
}

// Keccak256Hash calculates and returns the Keccak256 hash of the input data,
// converting it to an internal Hash data structure.
func Keccak256Hash(data ...[]byte) (h types.Hash) {
	d := keccakPool.Get().(KeccakState)
	defer keccakPool.Put(d)
	d.Reset()
	for _, b := range data {
		d.Write(b) //nolint:errcheck
	}
	d.Read(h[:]) //nolint:errcheck
	return h
}

// CreateAddress creates an ethereum address given the address of the creator
// and the creator's nonce: keccak256(rlp([sender, nonce]))[12:].
func CreateAddress(a types.Address, nonce uint64) types.Address {
	return types.BytesToAddress(Keccak256(rlpAddressNonce(a, nonce))[12:])
}

// CreateAddress2 creates an ethereum address given the address bytes, the
// salt and the init code hash: keccak256(0xff ++ sender ++ salt ++ keccak256(init_code))[12:]
// per EIP-1014.
func CreateAddress2(a types.Address, salt, inithash [32]byte) types.Address {
	return types.BytesToAddress(Keccak256([]byte{0xff}, a.Bytes(), salt[:], inithash[:])[12:])
}

// rlpAddressNonce encodes the two-element list [address, nonce]. The engine
// deliberately carries no general RLP codec; the CREATE derivation is the one
// place the wire encoding leaks into address math, and the shapes involved
// (a 20-byte string and an integer) always fit the short forms.
func rlpAddressNonce(a types.Address, nonce uint64) []byte {
	nonceBytes := rlpUint(nonce)
	payloadLen := 1 + types.AddressLength + len(nonceBytes)
	out := make([]byte, 0, 1+payloadLen)
	out = append(out, 0xc0+byte(payloadLen))
	out = append(out, 0x80+types.AddressLength)
	out = append(out, a.Bytes()...)
	out = append(out, nonceBytes...)
	return out
}

func rlpUint(v uint64) []byte {
	switch {
	case v == 0:
		return []byte{0x80}
	case v < 0x80:
		return []byte{byte(v)}
	default:
		var buf [8]byte
		n := 0
		for i := 7; i >= 0; i-- {
			b := byte(v >> (uint(i) * 8))
			if n == 0 && b == 0 {
				continue
			}
			buf[n] = b
			n++
		}
		return append([]byte{0x80 + byte(n)}, buf[:n]...)
	}
}
