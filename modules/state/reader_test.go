// Copyright 2024-2026 The helios Authors
// This file is part of the helios library.
//
// Tests of the host readers, including the async cache bridge.

package state

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"

	"github.com/helioschain/helios/common/types"
)

func TestMemoryReaderRoundTrip(t *testing.T) {
	m := NewMemoryReader()
	addr := types.HexToAddress("0x01")
	key := types.HexToHash("0x02")

	m.SetBalance(addr, uint256.NewInt(5))
	m.SetNonce(addr, 9)
	m.SetCode(addr, []byte{0x60})
	m.SetStorage(addr, key, *uint256.NewInt(3))

	require.Equal(t, uint64(5), m.GetBalance(addr).Uint64())
	require.Equal(t, uint64(9), m.GetNonce(addr))
	require.Equal(t, []byte{0x60}, m.GetCode(addr))
	v := m.GetStorage(addr, key)
	require.Equal(t, uint64(3), v.Uint64())

	// Zero storage removes the entry.
	m.SetStorage(addr, key, *new(uint256.Int))
	v = m.GetStorage(addr, key)
	require.True(t, v.IsZero())
	require.NotContains(t, m.storage[addr], key)
}

func TestAsyncReaderFetchesOncePerKey(t *testing.T) {
	addr := types.HexToAddress("0x01")
	key := types.HexToHash("0x02")

	var fetches []DataRequest
	fetch := func(req DataRequest) DataValue {
		fetches = append(fetches, req)
		switch req.Kind {
		case BalanceData:
			return DataValue{Word: *uint256.NewInt(7)}
		case NonceData:
			return DataValue{U64: 3}
		case CodeData:
			return DataValue{Bytes: []byte{0x00}}
		case StorageData:
			return DataValue{Word: *uint256.NewInt(0xbeef)}
		}
		return DataValue{}
	}
	a := NewAsyncReader(fetch)

	require.Equal(t, uint64(7), a.GetBalance(addr).Uint64())
	require.Equal(t, uint64(7), a.GetBalance(addr).Uint64())
	require.Equal(t, uint64(3), a.GetNonce(addr))
	require.Equal(t, []byte{0x00}, a.GetCode(addr))
	v := a.GetStorage(addr, key)
	require.Equal(t, uint64(0xbeef), v.Uint64())
	a.GetStorage(addr, key)

	require.Len(t, fetches, 4, "each key fetched exactly once; retries are cache hits")
}

func TestAsyncReaderPrime(t *testing.T) {
	fetch := func(req DataRequest) DataValue {
		t.Fatalf("primed key must not fetch: %v", req)
		return DataValue{}
	}
	a := NewAsyncReader(fetch)
	addr := types.HexToAddress("0x01")

	a.Prime(DataRequest{Kind: BalanceData, Addr: addr}, DataValue{Word: *uint256.NewInt(11)})
	require.Equal(t, uint64(11), a.GetBalance(addr).Uint64())
}

func TestDataKindString(t *testing.T) {
	require.Equal(t, "storage", StorageData.String())
	require.Equal(t, "balance", BalanceData.String())
	require.Equal(t, "code", CodeData.String())
	require.Equal(t, "nonce", NonceData.String())
}
