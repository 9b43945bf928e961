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

package params

const (
	// StackLimit is the maximum size of the VM stack allowed.
	StackLimit uint64 = 1024
	// CallCreateDepth is the maximum depth of call/create stack.
	CallCreateDepth uint64 = 1024

	// MaxCodeSize is the maximum bytecode a contract deployment may leave
	// behind (EIP-170).
	MaxCodeSize = 24576
	// MaxInitCodeSize is the maximum initcode a creation may run (EIP-3860).
	MaxInitCodeSize = 2 * MaxCodeSize

	// Quadratic memory expansion parameters: 3*words + words*words/512.
	MemoryGas   uint64 = 3
	QuadCoeffDiv uint64 = 512

	CopyGas     uint64 = 3 // Per-word price of the *COPY family.
	JumpdestGas uint64 = 1

	Keccak256Gas     uint64 = 30
	Keccak256WordGas uint64 = 6

	LogGas      uint64 = 375
	LogTopicGas uint64 = 375
	LogDataGas  uint64 = 8

	ExpGas            uint64 = 10
	ExpByteFrontier   uint64 = 10 // Per exponent byte before Spurious Dragon.
	ExpByteEIP158     uint64 = 50 // Per exponent byte after EIP-160.

	// SLOAD repricings across the fork table.
	SloadGasFrontier uint64 = 50
	SloadGasEIP150   uint64 = 200
	SloadGasEIP1884  uint64 = 800

	BalanceGasFrontier uint64 = 20
	BalanceGasEIP150   uint64 = 400
	BalanceGasEIP1884  uint64 = 700

	ExtcodeSizeGasFrontier uint64 = 20
	ExtcodeSizeGasEIP150   uint64 = 700
	ExtcodeCopyBaseFrontier uint64 = 20
	ExtcodeCopyBaseEIP150   uint64 = 700
	ExtcodeHashGasConstantinople uint64 = 400
	ExtcodeHashGasEIP1884        uint64 = 700

	SelfBalanceGasEIP1884 uint64 = 5 // GasFastStep, EIP-1884.

	// Legacy SSTORE schedule (pre net-metering).
	SstoreSetGas    uint64 = 20000
	SstoreResetGas  uint64 = 5000
	SstoreClearGas  uint64 = 5000
	SstoreRefundGas uint64 = 15000

	// EIP-2200 net-metered SSTORE.
	SstoreSentryGasEIP2200            uint64 = 2300
	SstoreSetGasEIP2200               uint64 = 20000
	SstoreResetGasEIP2200             uint64 = 5000
	SstoreClearsScheduleRefundEIP2200 uint64 = 15000

	// EIP-2929 cold/warm access pricing.
	ColdAccountAccessCostEIP2929 uint64 = 2600
	ColdSloadCostEIP2929         uint64 = 2100
	WarmStorageReadCostEIP2929   uint64 = 100

	// EIP-3529 reduced the clear refund and the refund quotient.
	// 5000 - 2100 + 1900 = 4800.
	SstoreClearsScheduleRefundEIP3529 uint64 = SstoreResetGasEIP2200 - ColdSloadCostEIP2929 + TxAccessListStorageKeyGas
	RefundQuotient        uint64 = 2
	RefundQuotientEIP3529 uint64 = 5

	TxAccessListAddressGas    uint64 = 2400
	TxAccessListStorageKeyGas uint64 = 1900

	// CALL family.
	CallGasFrontier       uint64 = 40
	CallGasEIP150         uint64 = 700
	CallValueTransferGas  uint64 = 9000
	CallNewAccountGas     uint64 = 25000
	CallStipend           uint64 = 2300

	CreateGas     uint64 = 32000
	Create2Gas    uint64 = 32000
	CreateDataGas uint64 = 200 // Per byte of deployed code.
	InitCodeWordGas uint64 = 2 // Per initcode word (EIP-3860).

	SelfdestructGasEIP150    uint64 = 5000
	CreateBySelfdestructGas  uint64 = 25000
	SelfdestructRefundGas    uint64 = 24000

	BlockhashGas uint64 = 20

	// EIP-4844 blob opcodes.
	BlobHashGas    uint64 = 3
	BlobBaseFeeGas uint64 = 2

	// EIP-7702 delegated code resolution surcharge is the plain 2929
	// account-access schedule applied to the delegation target.
	PerAuthBaseCostEIP7702     uint64 = 2500
	PerEmptyAccountCostEIP7702 uint64 = 25000
)
