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

package runtime

import (
	"github.com/helioschain/helios/common/types"
	"github.com/helioschain/helios/internal/vm"
	"github.com/helioschain/helios/modules/state"
)

// Execute executes the code using the input as call data during the
// execution. It returns the EVM's return value, the new state and an error
// if it failed.
//
// When cfg.State is nil, Execute runs the given code against a fresh
// in-memory state. A supplied cfg.State is modified in place and is not
// restored afterwards.
func Execute(code, input []byte, cfg *Config) ([]byte, *state.IntraBlockState, error) {
	if cfg == nil {
		cfg = new(Config)
	}
	setDefaults(cfg)

	externalState := cfg.State != nil
	if !externalState {
		if cfg.Reader == nil {
			cfg.Reader = state.NewMemoryReader()
		}
		cfg.State = state.New(cfg.Reader)
	}
	ibs := cfg.State

	address := types.BytesToAddress([]byte("contract"))
	rules := cfg.ChainConfig.Rules(cfg.BlockNumber.Uint64())
	ibs.Prepare(rules, cfg.Origin, cfg.Coinbase, &address,
		vm.ActivePrecompiles(rules), cfg.AccessList, nil)

	ibs.CreateAccount(address, true)
	// set the receiver's (the executing contract) code for execution.
	ibs.SetCode(address, code)

	evm := vm.NewEVM(blockContext(cfg), txContext(cfg), ibs, cfg.ChainConfig, cfg.EVMConfig)
	// Call the code with the given configuration.
	ret, _, err := evm.Call(
		vm.AccountRef(cfg.Origin),
		address,
		input,
		cfg.GasLimit,
		cfg.Value,
		false,
	)
	return ret, ibs, err
}

// Create executes the code using the EVM create method.
func Create(input []byte, cfg *Config, blockNr uint64) ([]byte, types.Address, uint64, error) {
	if cfg == nil {
		cfg = new(Config)
	}
	setDefaults(cfg)

	if cfg.State == nil {
		if cfg.Reader == nil {
			cfg.Reader = state.NewMemoryReader()
		}
		cfg.State = state.New(cfg.Reader)
	}
	ibs := cfg.State

	rules := cfg.ChainConfig.Rules(blockNr)
	ibs.Prepare(rules, cfg.Origin, cfg.Coinbase, nil,
		vm.ActivePrecompiles(rules), cfg.AccessList, nil)

	evm := vm.NewEVM(blockContext(cfg), txContext(cfg), ibs, cfg.ChainConfig, cfg.EVMConfig)

	// Call the code with the given configuration.
	code, address, leftOverGas, err := evm.Create(
		vm.AccountRef(cfg.Origin),
		input,
		cfg.GasLimit,
		cfg.Value,
	)
	return code, address, leftOverGas, err
}

// Call executes the code given by the contract's address. It will return the
// EVM's return value or an error if it failed.
//
// Call, unlike Execute, requires a config and also requires the State field
// to be set.
func Call(address types.Address, input []byte, cfg *Config) ([]byte, uint64, error) {
	setDefaults(cfg)

	ibs := cfg.State
	rules := cfg.ChainConfig.Rules(cfg.BlockNumber.Uint64())
	ibs.Prepare(rules, cfg.Origin, cfg.Coinbase, &address,
		vm.ActivePrecompiles(rules), cfg.AccessList, nil)

	evm := vm.NewEVM(blockContext(cfg), txContext(cfg), ibs, cfg.ChainConfig, cfg.EVMConfig)

	// Call the code with the given configuration.
	ret, leftOverGas, err := evm.Call(
		vm.AccountRef(cfg.Origin),
		address,
		input,
		cfg.GasLimit,
		cfg.Value,
		false,
	)
	return ret, leftOverGas, err
}
