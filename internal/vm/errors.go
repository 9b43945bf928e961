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
	"errors"
	"fmt"
)

// The error taxonomy of the engine. Every kind except ErrExecutionReverted
// consumes all remaining gas of the failing frame; ErrExecutionReverted
// returns the unspent portion and carries the revert data as output.
var (
	// Resource errors.
	ErrOutOfGas         = errors.New("out of gas")
	ErrDepth            = errors.New("max call depth exceeded")
	ErrExecutionTimeout = errors.New("execution aborted (timeout)")
	ErrGasUintOverflow  = errors.New("gas uint64 overflow")

	// Context errors.
	ErrWriteProtection    = errors.New("write protection")
	ErrReturnDataOutOfBounds = errors.New("return data out of bounds")

	// Value errors.
	ErrInsufficientBalance = errors.New("insufficient balance for transfer")

	// Create errors.
	ErrContractAddressCollision = errors.New("contract address collision")
	ErrMaxCodeSizeExceeded      = errors.New("max code size exceeded")
	ErrMaxInitCodeSizeExceeded  = errors.New("max initcode size exceeded")
	ErrInvalidCode              = errors.New("invalid code: must not begin with 0xef")
	ErrNonceUintOverflow        = errors.New("nonce uint64 overflow")
	ErrCodeStoreOutOfGas        = errors.New("contract creation code storage out of gas")

	// ErrPrecompileNotImplemented is returned when a reserved precompile
	// address is called but no native implementation was registered.
	ErrPrecompileNotImplemented = errors.New("precompile not implemented")

	// Control errors.
	ErrInvalidJump = errors.New("invalid jump destination")

	// Halting (non-error from the caller's perspective; carries data).
	ErrExecutionReverted = errors.New("execution reverted")
)

// ErrStackUnderflow wraps an error of invalid stack operation: not enough
// stack items to execute the operation.
type ErrStackUnderflow struct {
	stackLen int
	required int
}

func (e *ErrStackUnderflow) Error() string {
	return fmt.Sprintf("stack underflow (%d <=> %d)", e.stackLen, e.required)
}

// ErrStackOverflow wraps an error of invalid stack operation: pushing would
// exceed the stack limit.
type ErrStackOverflow struct {
	stackLen int
	limit    int
}

func (e *ErrStackOverflow) Error() string {
	return fmt.Sprintf("stack limit reached %d (%d)", e.stackLen, e.limit)
}

// ErrInvalidOpCode is returned when an undefined instruction byte is hit.
type ErrInvalidOpCode struct {
	opcode OpCode
}

func (e *ErrInvalidOpCode) Error() string {
	return fmt.Sprintf("invalid opcode: %s", e.opcode)
}

// IsFatalError reports whether err should consume all remaining gas of the
// frame. Only a revert hands gas back.
func IsFatalError(err error) bool {
	return err != nil && !errors.Is(err, ErrExecutionReverted)
}
