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

// Package precompiles provides a registry-based approach for managing
// precompiled contracts.
//
// Benefits over the package-level fork maps:
//   - Per-chain configuration and overrides without global state
//   - Native implementations of the heavy precompiles injected by embedders
//   - Improves testability via dependency injection
//
// Usage:
//
//	registry := precompiles.NewRegistry(rules,
//	    precompiles.WithContract(1, myEcrecover))
//	evm.SetPrecompileLookup(registry.Lookup)
package precompiles

import (
	"sort"

	"github.com/helioschain/helios/common/types"
	"github.com/helioschain/helios/internal/vm"
	"github.com/helioschain/helios/params"
)

// PrecompiledContract is re-exported from the vm package for convenience.
type PrecompiledContract = vm.PrecompiledContract

// Registry manages precompiled contracts for a specific chain configuration.
// It is immutable after creation and safe for concurrent use.
type Registry struct {
	contracts map[types.Address]PrecompiledContract
	addresses []types.Address // Sorted list for Addresses()
	rules     *params.Rules
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithContract registers (or overrides) the implementation at the reserved
// address 0x..nn. This is how embedders supply the native crypto
// implementations the engine treats as external collaborators.
func WithContract(addrByte byte, contract PrecompiledContract) RegistryOption {
	return func(r *Registry) {
		r.contracts[types.BytesToAddress([]byte{addrByte})] = contract
	}
}

// NewRegistry creates a precompile registry for the given chain rules,
// starting from the engine's default fork sets.
func NewRegistry(rules *params.Rules, opts ...RegistryOption) *Registry {
	r := &Registry{
		contracts: make(map[types.Address]PrecompiledContract),
		rules:     rules,
	}

	// Seed from the default fork-keyed sets.
	switch {
	case rules.IsPrague:
		r.seed(vm.PrecompiledContractsPrague)
	case rules.IsCancun:
		r.seed(vm.PrecompiledContractsCancun)
	case rules.IsBerlin:
		r.seed(vm.PrecompiledContractsBerlin)
	case rules.IsIstanbul:
		r.seed(vm.PrecompiledContractsIstanbul)
	case rules.IsByzantium:
		r.seed(vm.PrecompiledContractsByzantium)
	default:
		r.seed(vm.PrecompiledContractsHomestead)
	}

	for _, opt := range opts {
		opt(r)
	}

	r.addresses = r.addresses[:0]
	for addr := range r.contracts {
		r.addresses = append(r.addresses, addr)
	}
	sort.Slice(r.addresses, func(i, j int) bool {
		a, b := r.addresses[i], r.addresses[j]
		for k := range a {
			if a[k] != b[k] {
				return a[k] < b[k]
			}
		}
		return false
	})

	return r
}

func (r *Registry) seed(m map[types.Address]PrecompiledContract) {
	for addr, c := range m {
		r.contracts[addr] = c
	}
}

// Lookup resolves the contract at addr. It satisfies vm.PrecompileLookup.
func (r *Registry) Lookup(addr types.Address) (PrecompiledContract, bool) {
	c, ok := r.contracts[addr]
	return c, ok
}

// Contains reports whether addr is a registered precompile.
func (r *Registry) Contains(addr types.Address) bool {
	_, ok := r.contracts[addr]
	return ok
}

// Addresses returns the sorted list of registered precompile addresses; the
// executor pre-warms these per EIP-2929.
func (r *Registry) Addresses() []types.Address {
	return r.addresses
}

// Rules returns the chain rules the registry was built for.
func (r *Registry) Rules() *params.Rules {
	return r.rules
}
