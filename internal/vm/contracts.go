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
	"crypto/sha256"

	"golang.org/x/crypto/ripemd160"

	"github.com/helioschain/helios/common/types"
	"github.com/helioschain/helios/params"
)

// PrecompiledContract is the basic interface for native Go contracts. The
// implementation requires a deterministic gas count based on the input size
// of the Run method of the contract.
//
// Heavy precompiles (ecrecover, modexp, the pairing curves, KZG, BLS) are
// external collaborators: embedders register implementations through the
// precompiles registry. The engine ships the cheap byte-shuffling ones.
type PrecompiledContract interface {
	RequiredGas(input []byte) uint64          // RequiredGas calculates the contract gas use
	Run(input []byte) ([]byte, error)         // Run runs the precompiled contract
}

// RunPrecompiledContract runs and evaluates the output of a precompiled
// contract. It returns the returned bytes, the remaining gas and an error if
// the precompile failed or ran out of gas. A precompile reporting a gas need
// beyond the supplied gas is out-of-gas: no partial refunds.
func RunPrecompiledContract(p PrecompiledContract, input []byte, suppliedGas uint64) (ret []byte, remainingGas uint64, err error) {
	gasCost := p.RequiredGas(input)
	if suppliedGas < gasCost {
		return nil, 0, ErrOutOfGas
	}
	suppliedGas -= gasCost
	output, err := p.Run(input)
	return output, suppliedGas, err
}

// unimplemented is the placeholder for the heavy precompiles. It charges the
// published gas schedule and fails execution unless the embedder registered a
// real implementation through the registry. Failing (rather than returning
// garbage) keeps a mis-wired deployment loud.
type unimplemented struct {
	gas func(input []byte) uint64
}

func (c *unimplemented) RequiredGas(input []byte) uint64 { return c.gas(input) }
func (c *unimplemented) Run(input []byte) ([]byte, error) {
	return nil, ErrPrecompileNotImplemented
}

// ecrecover implements the elliptic-curve public key recovery precompile
// contract at 0x01. Signature recovery is an external collaborator; the
// engine carries the address, gas schedule and dispatch only.
type ecrecover struct{ unimplemented }

func newEcrecover() *ecrecover {
	return &ecrecover{unimplemented{gas: func([]byte) uint64 { return 3000 }}}
}

// sha256hash implements the SHA-256 precompiled contract at 0x02.
type sha256hash struct{}

// RequiredGas returns the gas required to execute the pre-compiled contract.
//
// This method does not require any overflow checking as the input size gas
// costs required for anything significant is so high it's impossible to pay
// for.
func (c *sha256hash) RequiredGas(input []byte) uint64 {
	return uint64(len(input)+31)/32*12 + 60
}

func (c *sha256hash) Run(input []byte) ([]byte, error) {
	h := sha256.Sum256(input)
	return h[:], nil
}

// ripemd160hash implements the RIPEMD-160 precompiled contract at 0x03.
type ripemd160hash struct{}

// RequiredGas returns the gas required to execute the pre-compiled contract.
func (c *ripemd160hash) RequiredGas(input []byte) uint64 {
	return uint64(len(input)+31)/32*120 + 600
}

func (c *ripemd160hash) Run(input []byte) ([]byte, error) {
	ripemd := ripemd160.New()
	ripemd.Write(input) //nolint:errcheck
	return leftPad(ripemd.Sum(nil), 32), nil
}

// dataCopy implements the identity precompiled contract at 0x04.
type dataCopy struct{}

// RequiredGas returns the gas required to execute the pre-compiled contract.
func (c *dataCopy) RequiredGas(input []byte) uint64 {
	return uint64(len(input)+31)/32*3 + 15
}

func (c *dataCopy) Run(input []byte) ([]byte, error) {
	return append([]byte{}, input...), nil
}

// bigModExp implements the EIP-198 modexp precompile at 0x05 as an external
// collaborator; the EIP-2565 repricing only changes the gas function.
type bigModExp struct{ unimplemented }

func newBigModExp(eip2565 bool) *bigModExp {
	// The real formula parses the input header; absent a native
	// implementation only the EIP-2565 floor is charged.
	floor := uint64(0)
	if eip2565 {
		floor = 200
	}
	return &bigModExp{unimplemented{gas: func([]byte) uint64 { return floor }}}
}

type bn256Add struct{ unimplemented }
type bn256ScalarMul struct{ unimplemented }
type bn256Pairing struct{ unimplemented }
type blake2F struct{ unimplemented }
type kzgPointEvaluation struct{ unimplemented }
type blsPrecompile struct{ unimplemented }

func newBn256Add(istanbul bool) *bn256Add {
	gas := uint64(500)
	if istanbul {
		gas = 150
	}
	return &bn256Add{unimplemented{gas: func([]byte) uint64 { return gas }}}
}

func newBn256ScalarMul(istanbul bool) *bn256ScalarMul {
	gas := uint64(40000)
	if istanbul {
		gas = 6000
	}
	return &bn256ScalarMul{unimplemented{gas: func([]byte) uint64 { return gas }}}
}

func newBn256Pairing(istanbul bool) *bn256Pairing {
	base, perPoint := uint64(100000), uint64(80000)
	if istanbul {
		base, perPoint = 45000, 34000
	}
	return &bn256Pairing{unimplemented{gas: func(input []byte) uint64 {
		return base + uint64(len(input)/192)*perPoint
	}}}
}

func newBlake2F() *blake2F {
	return &blake2F{unimplemented{gas: func(input []byte) uint64 {
		// The first four bytes encode the round count.
		if len(input) != 213 {
			return 0
		}
		return uint64(input[0])<<24 | uint64(input[1])<<16 | uint64(input[2])<<8 | uint64(input[3])
	}}}
}

func newKzgPointEvaluation() *kzgPointEvaluation {
	return &kzgPointEvaluation{unimplemented{gas: func([]byte) uint64 { return 50000 }}}
}

func newBls(gas uint64) *blsPrecompile {
	return &blsPrecompile{unimplemented{gas: func([]byte) uint64 { return gas }}}
}

func leftPad(slice []byte, l int) []byte {
	if l <= len(slice) {
		return slice
	}
	padded := make([]byte, l)
	copy(padded[l-len(slice):], slice)
	return padded
}

// PrecompiledContractsHomestead contains the default set of pre-compiled
// contracts used in the Frontier and Homestead releases.
var PrecompiledContractsHomestead = map[types.Address]PrecompiledContract{
	types.BytesToAddress([]byte{1}): newEcrecover(),
	types.BytesToAddress([]byte{2}): &sha256hash{},
	types.BytesToAddress([]byte{3}): &ripemd160hash{},
	types.BytesToAddress([]byte{4}): &dataCopy{},
}

// PrecompiledContractsByzantium contains the default set of pre-compiled
// contracts used in the Byzantium release.
var PrecompiledContractsByzantium = map[types.Address]PrecompiledContract{
	types.BytesToAddress([]byte{1}): newEcrecover(),
	types.BytesToAddress([]byte{2}): &sha256hash{},
	types.BytesToAddress([]byte{3}): &ripemd160hash{},
	types.BytesToAddress([]byte{4}): &dataCopy{},
	types.BytesToAddress([]byte{5}): newBigModExp(false),
	types.BytesToAddress([]byte{6}): newBn256Add(false),
	types.BytesToAddress([]byte{7}): newBn256ScalarMul(false),
	types.BytesToAddress([]byte{8}): newBn256Pairing(false),
}

// PrecompiledContractsIstanbul contains the default set of pre-compiled
// contracts used in the Istanbul release.
var PrecompiledContractsIstanbul = map[types.Address]PrecompiledContract{
	types.BytesToAddress([]byte{1}): newEcrecover(),
	types.BytesToAddress([]byte{2}): &sha256hash{},
	types.BytesToAddress([]byte{3}): &ripemd160hash{},
	types.BytesToAddress([]byte{4}): &dataCopy{},
	types.BytesToAddress([]byte{5}): newBigModExp(false),
	types.BytesToAddress([]byte{6}): newBn256Add(true),
	types.BytesToAddress([]byte{7}): newBn256ScalarMul(true),
	types.BytesToAddress([]byte{8}): newBn256Pairing(true),
	types.BytesToAddress([]byte{9}): newBlake2F(),
}

// PrecompiledContractsBerlin contains the default set of pre-compiled
// contracts used in the Berlin release (EIP-2565 modexp repricing).
var PrecompiledContractsBerlin = map[types.Address]PrecompiledContract{
	types.BytesToAddress([]byte{1}): newEcrecover(),
	types.BytesToAddress([]byte{2}): &sha256hash{},
	types.BytesToAddress([]byte{3}): &ripemd160hash{},
	types.BytesToAddress([]byte{4}): &dataCopy{},
	types.BytesToAddress([]byte{5}): newBigModExp(true),
	types.BytesToAddress([]byte{6}): newBn256Add(true),
	types.BytesToAddress([]byte{7}): newBn256ScalarMul(true),
	types.BytesToAddress([]byte{8}): newBn256Pairing(true),
	types.BytesToAddress([]byte{9}): newBlake2F(),
}

// PrecompiledContractsCancun adds the EIP-4844 KZG point evaluation
// precompile at 0x0a.
var PrecompiledContractsCancun = appendPrecompiles(PrecompiledContractsBerlin,
	map[types.Address]PrecompiledContract{
		types.BytesToAddress([]byte{0x0a}): newKzgPointEvaluation(),
	})

// PrecompiledContractsPrague adds the EIP-2537 BLS12-381 precompiles at
// 0x0b..0x11.
var PrecompiledContractsPrague = appendPrecompiles(PrecompiledContractsCancun,
	map[types.Address]PrecompiledContract{
		types.BytesToAddress([]byte{0x0b}): newBls(375),   // G1 add
		types.BytesToAddress([]byte{0x0c}): newBls(12000), // G1 msm
		types.BytesToAddress([]byte{0x0d}): newBls(600),   // G2 add
		types.BytesToAddress([]byte{0x0e}): newBls(22500), // G2 msm
		types.BytesToAddress([]byte{0x0f}): newBls(37700), // pairing check
		types.BytesToAddress([]byte{0x10}): newBls(5500),  // map fp to G1
		types.BytesToAddress([]byte{0x11}): newBls(23800), // map fp2 to G2
	})

func appendPrecompiles(base, extra map[types.Address]PrecompiledContract) map[types.Address]PrecompiledContract {
	out := make(map[types.Address]PrecompiledContract, len(base)+len(extra))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range extra {
		out[k] = v
	}
	return out
}

// Precompile address slices per fork, used for pre-warming and tracing. They
// are filled from the fork maps in map iteration order and are not sorted.
var (
	PrecompiledAddressesHomestead []types.Address
	PrecompiledAddressesByzantium []types.Address
	PrecompiledAddressesIstanbul  []types.Address
	PrecompiledAddressesBerlin    []types.Address
	PrecompiledAddressesCancun    []types.Address
	PrecompiledAddressesPrague    []types.Address
)

func init() {
	for k := range PrecompiledContractsHomestead {
		PrecompiledAddressesHomestead = append(PrecompiledAddressesHomestead, k)
	}
	for k := range PrecompiledContractsByzantium {
		PrecompiledAddressesByzantium = append(PrecompiledAddressesByzantium, k)
	}
	for k := range PrecompiledContractsIstanbul {
		PrecompiledAddressesIstanbul = append(PrecompiledAddressesIstanbul, k)
	}
	for k := range PrecompiledContractsBerlin {
		PrecompiledAddressesBerlin = append(PrecompiledAddressesBerlin, k)
	}
	for k := range PrecompiledContractsCancun {
		PrecompiledAddressesCancun = append(PrecompiledAddressesCancun, k)
	}
	for k := range PrecompiledContractsPrague {
		PrecompiledAddressesPrague = append(PrecompiledAddressesPrague, k)
	}
}

// activePrecompiles returns the precompile map active under the given rules.
func activePrecompiles(rules *params.Rules) map[types.Address]PrecompiledContract {
	switch {
	case rules.IsPrague:
		return PrecompiledContractsPrague
	case rules.IsCancun:
		return PrecompiledContractsCancun
	case rules.IsBerlin:
		return PrecompiledContractsBerlin
	case rules.IsIstanbul:
		return PrecompiledContractsIstanbul
	case rules.IsByzantium:
		return PrecompiledContractsByzantium
	default:
		return PrecompiledContractsHomestead
	}
}

// ActivePrecompiles returns the precompile addresses active under the given
// rules. The executor pre-warms these per EIP-2929.
func ActivePrecompiles(rules *params.Rules) []types.Address {
	switch {
	case rules.IsPrague:
		return PrecompiledAddressesPrague
	case rules.IsCancun:
		return PrecompiledAddressesCancun
	case rules.IsBerlin:
		return PrecompiledAddressesBerlin
	case rules.IsIstanbul:
		return PrecompiledAddressesIstanbul
	case rules.IsByzantium:
		return PrecompiledAddressesByzantium
	default:
		return PrecompiledAddressesHomestead
	}
}

// IsPrecompiled checks if an address is a precompiled contract for the rules.
func IsPrecompiled(addr types.Address, rules *params.Rules) bool {
	_, ok := activePrecompiles(rules)[addr]
	return ok
}
