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
	"bytes"

	"github.com/helioschain/helios/common/types"
)

// =============================================================================
// EIP-7702: Set EOA account code (Prague)
// https://eips.ethereum.org/EIPS/eip-7702
// =============================================================================

// DelegationPrefix precedes the delegated address in the code of an EOA that
// has authorized delegation. An account whose code is exactly
// 0xef0100 || address executes the delegate's code in its own context.
var DelegationPrefix = []byte{0xef, 0x01, 0x00}

// HasDelegation checks if the code is an EIP-7702 delegation designator.
func HasDelegation(code []byte) bool {
	return len(code) == 23 && bytes.HasPrefix(code, DelegationPrefix)
}

// ParseDelegation parses the delegation address from code.
// Returns the delegated address and true if code is a designator.
func ParseDelegation(code []byte) (types.Address, bool) {
	if !HasDelegation(code) {
		return types.Address{}, false
	}
	return types.BytesToAddress(code[3:23]), true
}

// AddressToDelegation builds the designator code for an address.
func AddressToDelegation(addr types.Address) []byte {
	code := make([]byte, 0, 23)
	code = append(code, DelegationPrefix...)
	code = append(code, addr.Bytes()...)
	return code
}

