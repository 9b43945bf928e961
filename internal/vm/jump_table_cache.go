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
	"sync"

	"github.com/helioschain/helios/params"
)

// Jump tables are immutable once created, so they can be safely shared
// between EVM instances. The cache is keyed by fork flags only; extra EIPs
// are not part of the key, so it hands out the fork's base table.
var jumpTableCache = &jumpTableCacheType{
	tables: make(map[string]*JumpTable),
}

type jumpTableCacheType struct {
	mu     sync.RWMutex
	tables map[string]*JumpTable
}

// GetCachedJumpTable returns a cached jump table for the given rules,
// creating and caching it on first use.
func GetCachedJumpTable(rules *params.Rules) *JumpTable {
	key := jumpTableCacheKey(rules)

	// Fast path: read lock
	jumpTableCache.mu.RLock()
	table, ok := jumpTableCache.tables[key]
	jumpTableCache.mu.RUnlock()
	if ok {
		return table
	}

	// Slow path: create and cache
	jumpTableCache.mu.Lock()
	defer jumpTableCache.mu.Unlock()

	// Double-check after acquiring write lock
	if table, ok = jumpTableCache.tables[key]; ok {
		return table
	}

	table = newJumpTableForRules(rules)
	jumpTableCache.tables[key] = table
	return table
}

// jumpTableCacheKey generates a cache key for the given chain rules.
func jumpTableCacheKey(rules *params.Rules) string {
	key := ""
	if rules.IsHomestead {
		key += "H"
	}
	if rules.IsTangerine {
		key += "TW"
	}
	if rules.IsSpuriousDragon {
		key += "SD"
	}
	if rules.IsByzantium {
		key += "B"
	}
	if rules.IsConstantinople {
		key += "C"
	}
	if rules.IsPetersburg {
		key += "P"
	}
	if rules.IsIstanbul {
		key += "I"
	}
	if rules.IsBerlin {
		key += "Be"
	}
	if rules.IsLondon {
		key += "L"
	}
	if rules.IsParis {
		key += "Pa"
	}
	if rules.IsShanghai {
		key += "S"
	}
	if rules.IsCancun {
		key += "Ca"
	}
	if rules.IsPrague {
		key += "Pr"
	}
	if key == "" {
		key = "frontier"
	}
	return key
}

// newJumpTableForRules creates a new jump table for the given rules.
func newJumpTableForRules(rules *params.Rules) *JumpTable {
	switch {
	case rules.IsPrague:
		return &pragueInstructionSet
	case rules.IsCancun:
		return &cancunInstructionSet
	case rules.IsShanghai:
		return &shanghaiInstructionSet
	case rules.IsParis:
		return &parisInstructionSet
	case rules.IsLondon:
		return &londonInstructionSet
	case rules.IsBerlin:
		return &berlinInstructionSet
	case rules.IsIstanbul:
		return &istanbulInstructionSet
	case rules.IsConstantinople:
		return &constantinopleInstructionSet
	case rules.IsByzantium:
		return &byzantiumInstructionSet
	case rules.IsSpuriousDragon:
		return &spuriousDragonInstructionSet
	case rules.IsTangerine:
		return &tangerineWhistleInstructionSet
	case rules.IsHomestead:
		return &homesteadInstructionSet
	default:
		return &frontierInstructionSet
	}
}
