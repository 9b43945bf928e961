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

// Package block holds the block-level value types the execution engine emits.
package block

import (
	"github.com/helioschain/helios/common/types"
)

// Log represents a contract log event emitted by LOG0..LOG4.
//
// The consensus fields are filled by the state model when the opcode fires;
// the derived fields are filled in by whoever assembles receipts and are of
// no concern to the engine.
type Log struct {
	// Consensus fields:
	// Address of the contract that generated the event.
	Address types.Address
	// Topics holds up to four indexed topics provided by the contract.
	Topics []types.Hash
	// Data holds the non-indexed payload of the log.
	Data []byte

	// Derived fields, populated by the embedding layer:
	BlockNumber uint64
	TxHash      types.Hash
	TxIndex     uint
	Index       uint
}

// Clone returns a deep copy of the log. The engine hands logs out across the
// snapshot boundary, so callers must not be able to alias internal buffers.
func (l *Log) Clone() *Log {
	cp := *l
	cp.Topics = make([]types.Hash, len(l.Topics))
	copy(cp.Topics, l.Topics)
	cp.Data = make([]byte, len(l.Data))
	copy(cp.Data, l.Data)
	return &cp
}
