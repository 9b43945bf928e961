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

// Package runtime provides the execution entry points of the engine: the
// synchronous Execute/Call/Create conveniences and the async-capable
// Executor whose outcomes are either Done or Yield.
package runtime

import (
	"math/big"
	"time"

	"github.com/holiman/uint256"

	"github.com/helioschain/helios/common/types"
	"github.com/helioschain/helios/conf"
	"github.com/helioschain/helios/internal/vm"
	"github.com/helioschain/helios/internal/vm/evmtypes"
	"github.com/helioschain/helios/modules/state"
	"github.com/helioschain/helios/params"
)

// Config is a basic type specifying certain configuration flags for running
// the EVM.
type Config struct {
	ChainConfig *params.ChainConfig
	Difficulty  *big.Int
	Origin      types.Address
	Coinbase    types.Address
	BlockNumber *big.Int
	Time        *big.Int
	GasLimit    uint64
	GasPrice    *uint256.Int
	Value       *uint256.Int
	BaseFee     *uint256.Int
	BlobBaseFee *uint256.Int
	BlobHashes  []types.Hash
	AccessList  evmtypes.AccessList
	EVMConfig   vm.Config

	State     *state.IntraBlockState
	Reader    state.Reader
	GetHashFn func(n uint64) types.Hash
}

// EVMConfigFromEngine maps the file-backed engine tunables onto the
// interpreter configuration.
func EVMConfigFromEngine(ec conf.EngineConfig) vm.Config {
	cfg := vm.Config{
		StepLimit: ec.StepLimit,
	}
	if ec.TraceEnabled {
		cfg.Debug = true
		cfg.Tracer = vm.NewStructLogger(&vm.LogConfig{
			DisableMemory: !ec.TraceMemory,
			DisableStack:  !ec.TraceStack,
		})
	}
	return cfg
}

// setDefaults sets defaults on the config.
func setDefaults(cfg *Config) {
	if cfg.ChainConfig == nil {
		cfg.ChainConfig = params.AllForksEnabled(1)
	}
	if cfg.Difficulty == nil {
		cfg.Difficulty = new(big.Int)
	}
	if cfg.Time == nil {
		cfg.Time = big.NewInt(time.Now().Unix())
	}
	if cfg.GasLimit == 0 {
		cfg.GasLimit = ^uint64(0)
	}
	if cfg.GasPrice == nil {
		cfg.GasPrice = new(uint256.Int)
	}
	if cfg.Value == nil {
		cfg.Value = new(uint256.Int)
	}
	if cfg.BlockNumber == nil {
		cfg.BlockNumber = new(big.Int)
	}
	if cfg.GetHashFn == nil {
		cfg.GetHashFn = func(n uint64) types.Hash {
			return types.BytesToHash(new(big.Int).SetUint64(n).Bytes())
		}
	}
}

// blockContext assembles the evmtypes.BlockContext from the config.
func blockContext(cfg *Config) evmtypes.BlockContext {
	var difficulty uint256.Int
	difficulty.SetFromBig(cfg.Difficulty)
	return evmtypes.BlockContext{
		CanTransfer: vm.CanTransfer,
		Transfer:    vm.Transfer,
		GetHash:     cfg.GetHashFn,
		Coinbase:    cfg.Coinbase,
		BlockNumber: cfg.BlockNumber.Uint64(),
		Time:        cfg.Time.Uint64(),
		Difficulty:  &difficulty,
		GasLimit:    cfg.GasLimit,
		BaseFee:     cfg.BaseFee,
		BlobBaseFee: cfg.BlobBaseFee,
	}
}

func txContext(cfg *Config) evmtypes.TxContext {
	return evmtypes.TxContext{
		Origin:     cfg.Origin,
		GasPrice:   cfg.GasPrice,
		BlobHashes: cfg.BlobHashes,
	}
}
