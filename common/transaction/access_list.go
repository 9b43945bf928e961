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

// Package transaction carries the transaction-supplied inputs the engine
// consumes. Envelope parsing and signature recovery live in the embedding
// layer; by the time values reach this package they are plain data.
package transaction

import (
	"github.com/helioschain/helios/common/types"
)

// AccessList is an EIP-2930 access list: the set of (address, storage slot)
// pairs the transaction pre-declares, pre-warmed for EIP-2929 pricing.
type AccessList []AccessTuple

// AccessTuple is one entry of an AccessList.
type AccessTuple struct {
	Address     types.Address `json:"address"`
	StorageKeys []types.Hash  `json:"storageKeys"`
}

// StorageKeys returns the total number of storage keys in the access list.
func (al AccessList) StorageKeys() int {
	sum := 0
	for _, tuple := range al {
		sum += len(tuple.StorageKeys)
	}
	return sum
}
