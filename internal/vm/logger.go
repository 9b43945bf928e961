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
	"github.com/holiman/uint256"

	"github.com/helioschain/helios/common/types"
)

// EVMLogger is used to collect execution traces from an EVM transaction
// execution. CaptureState is called for each step of the VM with the
// current VM state.
// Note that reference types are actual VM data structures; make copies
// if you need to retain them beyond the current call.
type EVMLogger interface {
	// Top call frame
	CaptureStart(env VMContext, from types.Address, to types.Address, precompile bool, create bool, input []byte, gas uint64, value *uint256.Int, code []byte)
	CaptureEnd(output []byte, usedGas uint64, err error)
	// Rest of call frames
	CaptureEnter(typ OpCode, from types.Address, to types.Address, precompile bool, create bool, input []byte, gas uint64, value *uint256.Int, code []byte)
	CaptureExit(output []byte, usedGas uint64, err error)
	// Opcode level
	CaptureState(pc uint64, op OpCode, gas, cost uint64, scope *ScopeContext, rData []byte, depth int, err error)
	CaptureFault(pc uint64, op OpCode, gas, cost uint64, scope *ScopeContext, depth int, err error)
}

// LogConfig are the configuration options for structured logger the EVM.
type LogConfig struct {
	DisableMemory     bool // disable memory capture
	DisableStack      bool // disable stack capture
	DisableStorage    bool // disable storage capture
	DisableReturnData bool // disable return data capture
	Limit             int  // maximum number of output lines, 0 means unlimited
}

// StructLog is emitted to the EVM each cycle and lists information about the
// current internal state prior to the execution of the statement.
type StructLog struct {
	Pc            uint64        `json:"pc"`
	Op            OpCode        `json:"op"`
	Gas           uint64        `json:"gas"`
	GasCost       uint64        `json:"gasCost"`
	Memory        []byte        `json:"memory"`
	MemorySize    int           `json:"memSize"`
	Stack         []uint256.Int `json:"stack"`
	ReturnData    []byte        `json:"returnData"`
	Depth         int           `json:"depth"`
	RefundCounter uint64        `json:"refund"`
	Err           error         `json:"-"`
}

// OpName formats the operand name in a human-readable format.
func (s *StructLog) OpName() string {
	return s.Op.String()
}

// ErrorString formats the log's error as a string.
func (s *StructLog) ErrorString() string {
	if s.Err != nil {
		return s.Err.Error()
	}
	return ""
}

// StructLogger is an EVM state logger and implements EVMLogger.
//
// StructLogger can capture state based on the given Log configuration and
// also keeps a track record of modified storage which is used in reporting
// snapshots of the contract their storage.
type StructLogger struct {
	cfg LogConfig

	logs   []StructLog
	output []byte
	err    error
	env    VMContext
}

// NewStructLogger returns a new logger.
func NewStructLogger(cfg *LogConfig) *StructLogger {
	logger := &StructLogger{}
	if cfg != nil {
		logger.cfg = *cfg
	}
	return logger
}

// CaptureStart implements the EVMLogger interface to initialize the tracing operation.
func (l *StructLogger) CaptureStart(env VMContext, from, to types.Address, precompile, create bool, input []byte, gas uint64, value *uint256.Int, code []byte) {
	l.env = env
}

// CaptureState logs a new structured log message and pushes it out to the environment.
//
// CaptureState also tracks SLOAD/SSTORE ops to track storage change.
func (l *StructLogger) CaptureState(pc uint64, op OpCode, gas, cost uint64, scope *ScopeContext, rData []byte, depth int, err error) {
	if l.cfg.Limit != 0 && l.cfg.Limit <= len(l.logs) {
		return
	}
	memory := scope.Memory
	stk := scope.Stack

	entry := StructLog{
		Pc:         pc,
		Op:         op,
		Gas:        gas,
		GasCost:    cost,
		MemorySize: memory.Len(),
		Depth:      depth,
		Err:        err,
	}
	if l.env != nil {
		entry.RefundCounter = l.env.IntraBlockState().GetRefund()
	}
	if !l.cfg.DisableMemory {
		entry.Memory = make([]byte, memory.Len())
		copy(entry.Memory, memory.Data())
	}
	if !l.cfg.DisableStack {
		entry.Stack = make([]uint256.Int, stk.Len())
		copy(entry.Stack, stk.Data())
	}
	if !l.cfg.DisableReturnData {
		entry.ReturnData = make([]byte, len(rData))
		copy(entry.ReturnData, rData)
	}
	l.logs = append(l.logs, entry)
}

// CaptureFault implements the EVMLogger interface to trace an execution fault.
func (l *StructLogger) CaptureFault(pc uint64, op OpCode, gas, cost uint64, scope *ScopeContext, depth int, err error) {
	if len(l.logs) > 0 {
		l.logs[len(l.logs)-1].Err = err
	}
}

// CaptureEnd is called after the top-level call finishes.
func (l *StructLogger) CaptureEnd(output []byte, usedGas uint64, err error) {
	l.output = output
	l.err = err
}

// CaptureEnter is called on frame entry.
func (l *StructLogger) CaptureEnter(typ OpCode, from, to types.Address, precompile, create bool, input []byte, gas uint64, value *uint256.Int, code []byte) {
}

// CaptureExit is called on frame exit.
func (l *StructLogger) CaptureExit(output []byte, usedGas uint64, err error) {
}

// StructLogs returns the captured log entries.
func (l *StructLogger) StructLogs() []StructLog { return l.logs }

// Error returns the VM error captured by the trace.
func (l *StructLogger) Error() error { return l.err }

// Output returns the VM return value captured by the trace.
func (l *StructLogger) Output() []byte { return l.output }
