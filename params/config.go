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

// Package params holds the protocol gas schedule and the hardfork
// configuration machinery that selects feature gates, gas tables, refund
// tables and precompile sets.
package params

import (
	"fmt"
	"math/big"
)

// ChainConfig is the set of fork activation heights for a chain. A nil block
// number means the fork never activates. Forks are cumulative: activating a
// later fork implies all earlier ones at the same height.
type ChainConfig struct {
	ChainID *big.Int `json:"chainId" yaml:"chain_id"`

	HomesteadBlock      *big.Int `json:"homesteadBlock,omitempty" yaml:"homestead_block"`
	TangerineBlock      *big.Int `json:"tangerineBlock,omitempty" yaml:"tangerine_block"` // EIP-150
	SpuriousDragonBlock *big.Int `json:"spuriousDragonBlock,omitempty" yaml:"spurious_dragon_block"`
	ByzantiumBlock      *big.Int `json:"byzantiumBlock,omitempty" yaml:"byzantium_block"`
	ConstantinopleBlock *big.Int `json:"constantinopleBlock,omitempty" yaml:"constantinople_block"`
	PetersburgBlock     *big.Int `json:"petersburgBlock,omitempty" yaml:"petersburg_block"`
	IstanbulBlock       *big.Int `json:"istanbulBlock,omitempty" yaml:"istanbul_block"`
	BerlinBlock         *big.Int `json:"berlinBlock,omitempty" yaml:"berlin_block"`
	LondonBlock         *big.Int `json:"londonBlock,omitempty" yaml:"london_block"`
	ParisBlock          *big.Int `json:"parisBlock,omitempty" yaml:"paris_block"`
	ShanghaiBlock       *big.Int `json:"shanghaiBlock,omitempty" yaml:"shanghai_block"`
	CancunBlock         *big.Int `json:"cancunBlock,omitempty" yaml:"cancun_block"`
	PragueBlock         *big.Int `json:"pragueBlock,omitempty" yaml:"prague_block"`
}

// AllForksEnabled returns a config with every supported fork active from
// genesis. This is what tests and the runtime defaults use.
func AllForksEnabled(chainID int64) *ChainConfig {
	zero := big.NewInt(0)
	return &ChainConfig{
		ChainID:             big.NewInt(chainID),
		HomesteadBlock:      zero,
		TangerineBlock:      zero,
		SpuriousDragonBlock: zero,
		ByzantiumBlock:      zero,
		ConstantinopleBlock: zero,
		PetersburgBlock:     zero,
		IstanbulBlock:       zero,
		BerlinBlock:         zero,
		LondonBlock:         zero,
		ParisBlock:          zero,
		ShanghaiBlock:       zero,
		CancunBlock:         zero,
		PragueBlock:         zero,
	}
}

func isForked(s *big.Int, head uint64) bool {
	if s == nil {
		return false
	}
	return s.Uint64() <= head
}

func (c *ChainConfig) IsHomestead(num uint64) bool      { return isForked(c.HomesteadBlock, num) }
func (c *ChainConfig) IsTangerine(num uint64) bool      { return isForked(c.TangerineBlock, num) }
func (c *ChainConfig) IsSpuriousDragon(num uint64) bool { return isForked(c.SpuriousDragonBlock, num) }
func (c *ChainConfig) IsByzantium(num uint64) bool      { return isForked(c.ByzantiumBlock, num) }
func (c *ChainConfig) IsConstantinople(num uint64) bool { return isForked(c.ConstantinopleBlock, num) }
func (c *ChainConfig) IsPetersburg(num uint64) bool     { return isForked(c.PetersburgBlock, num) }
func (c *ChainConfig) IsIstanbul(num uint64) bool       { return isForked(c.IstanbulBlock, num) }
func (c *ChainConfig) IsBerlin(num uint64) bool         { return isForked(c.BerlinBlock, num) }
func (c *ChainConfig) IsLondon(num uint64) bool         { return isForked(c.LondonBlock, num) }
func (c *ChainConfig) IsParis(num uint64) bool          { return isForked(c.ParisBlock, num) }
func (c *ChainConfig) IsShanghai(num uint64) bool       { return isForked(c.ShanghaiBlock, num) }
func (c *ChainConfig) IsCancun(num uint64) bool         { return isForked(c.CancunBlock, num) }
func (c *ChainConfig) IsPrague(num uint64) bool         { return isForked(c.PragueBlock, num) }

// Rules is a one-time interface: a snapshot of the fork flags active at a
// given block, so callers don't thread block numbers everywhere.
type Rules struct {
	ChainID uint64

	IsHomestead      bool
	IsTangerine      bool
	IsSpuriousDragon bool
	IsByzantium      bool
	IsConstantinople bool
	IsPetersburg     bool
	IsIstanbul       bool
	IsBerlin         bool
	IsLondon         bool
	IsParis          bool
	IsShanghai       bool
	IsCancun         bool
	IsPrague         bool
}

// Rules returns the rule set active at the given block number.
func (c *ChainConfig) Rules(num uint64) *Rules {
	chainID := uint64(0)
	if c.ChainID != nil {
		chainID = c.ChainID.Uint64()
	}
	return &Rules{
		ChainID:          chainID,
		IsHomestead:      c.IsHomestead(num),
		IsTangerine:      c.IsTangerine(num),
		IsSpuriousDragon: c.IsSpuriousDragon(num),
		IsByzantium:      c.IsByzantium(num),
		IsConstantinople: c.IsConstantinople(num),
		IsPetersburg:     c.IsPetersburg(num),
		IsIstanbul:       c.IsIstanbul(num),
		IsBerlin:         c.IsBerlin(num),
		IsLondon:         c.IsLondon(num),
		IsParis:          c.IsParis(num),
		IsShanghai:       c.IsShanghai(num),
		IsCancun:         c.IsCancun(num),
		IsPrague:         c.IsPrague(num),
	}
}

// Hardfork names one consensus upgrade. Execution requests select their
// feature gates by hardfork rather than by block height.
type Hardfork int

const (
	Frontier Hardfork = iota
	Homestead
	Tangerine
	SpuriousDragon
	Byzantium
	Constantinople
	Petersburg
	Istanbul
	Berlin
	London
	Paris
	Shanghai
	Cancun
	Prague
)

var hardforkNames = [...]string{
	"Frontier", "Homestead", "Tangerine", "SpuriousDragon", "Byzantium",
	"Constantinople", "Petersburg", "Istanbul", "Berlin", "London", "Paris",
	"Shanghai", "Cancun", "Prague",
}

func (h Hardfork) String() string {
	if h < 0 || int(h) >= len(hardforkNames) {
		return fmt.Sprintf("Hardfork(%d)", int(h))
	}
	return hardforkNames[h]
}

// HardforkByName resolves a fork by its canonical name.
func HardforkByName(name string) (Hardfork, bool) {
	for i, n := range hardforkNames {
		if n == name {
			return Hardfork(i), true
		}
	}
	return Frontier, false
}

// ConfigForHardfork returns a ChainConfig with every fork at or below h
// active from genesis. Forks above h stay nil (never active).
func ConfigForHardfork(h Hardfork, chainID int64) *ChainConfig {
	zero := big.NewInt(0)
	at := func(fork Hardfork) *big.Int {
		if h >= fork {
			return zero
		}
		return nil
	}
	return &ChainConfig{
		ChainID:             big.NewInt(chainID),
		HomesteadBlock:      at(Homestead),
		TangerineBlock:      at(Tangerine),
		SpuriousDragonBlock: at(SpuriousDragon),
		ByzantiumBlock:      at(Byzantium),
		ConstantinopleBlock: at(Constantinople),
		PetersburgBlock:     at(Petersburg),
		IstanbulBlock:       at(Istanbul),
		BerlinBlock:         at(Berlin),
		LondonBlock:         at(London),
		ParisBlock:          at(Paris),
		ShanghaiBlock:       at(Shanghai),
		CancunBlock:         at(Cancun),
		PragueBlock:         at(Prague),
	}
}

// RulesForHardfork returns the rule set of a single named fork. Forks are
// cumulative, so everything at or below h is active.
func RulesForHardfork(h Hardfork, chainID uint64) *Rules {
	return &Rules{
		ChainID:          chainID,
		IsHomestead:      h >= Homestead,
		IsTangerine:      h >= Tangerine,
		IsSpuriousDragon: h >= SpuriousDragon,
		IsByzantium:      h >= Byzantium,
		IsConstantinople: h >= Constantinople,
		IsPetersburg:     h >= Petersburg,
		IsIstanbul:       h >= Istanbul,
		IsBerlin:         h >= Berlin,
		IsLondon:         h >= London,
		IsParis:          h >= Paris,
		IsShanghai:       h >= Shanghai,
		IsCancun:         h >= Cancun,
		IsPrague:         h >= Prague,
	}
}
