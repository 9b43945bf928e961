// Copyright 2024-2026 The helios Authors
// This file is part of the helios library.
//
// Tests of the precompile registry.

package precompiles

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/helioschain/helios/common/types"
	"github.com/helioschain/helios/params"
)

type fakeContract struct {
	gas uint64
	out []byte
}

func (f *fakeContract) RequiredGas(input []byte) uint64 { return f.gas }
func (f *fakeContract) Run(input []byte) ([]byte, error) {
	return f.out, nil
}

func TestRegistryForkSets(t *testing.T) {
	tests := []struct {
		fork  params.Hardfork
		count int
	}{
		{params.Homestead, 4},
		{params.Byzantium, 8},
		{params.Istanbul, 9},
		{params.Berlin, 9},
		{params.Cancun, 10},
		{params.Prague, 17},
	}
	for _, tt := range tests {
		t.Run(tt.fork.String(), func(t *testing.T) {
			r := NewRegistry(params.RulesForHardfork(tt.fork, 1))
			require.Len(t, r.Addresses(), tt.count)
		})
	}
	t.Log("✓ registry sizes track the fork schedule")
}

func TestRegistryLookup(t *testing.T) {
	r := NewRegistry(params.RulesForHardfork(params.Prague, 1))

	identity := types.BytesToAddress([]byte{4})
	c, ok := r.Lookup(identity)
	require.True(t, ok)
	require.NotNil(t, c)
	require.True(t, r.Contains(identity))

	_, ok = r.Lookup(types.BytesToAddress([]byte{0xf0}))
	require.False(t, ok)
	t.Log("✓ lookup resolves registered addresses only")
}

func TestRegistryOverride(t *testing.T) {
	fake := &fakeContract{gas: 1, out: []byte{0xaa}}
	r := NewRegistry(params.RulesForHardfork(params.Prague, 1),
		WithContract(1, fake))

	c, ok := r.Lookup(types.BytesToAddress([]byte{1}))
	require.True(t, ok)
	out, err := c.Run(nil)
	require.NoError(t, err)
	require.Equal(t, []byte{0xaa}, out, "injected implementation replaces the stub")
	t.Log("✓ embedders can inject native implementations")
}

func TestRegistryAddressesSorted(t *testing.T) {
	r := NewRegistry(params.RulesForHardfork(params.Prague, 1))
	addrs := r.Addresses()
	for i := 1; i < len(addrs); i++ {
		prev, cur := addrs[i-1], addrs[i]
		less := false
		for k := range prev {
			if prev[k] != cur[k] {
				less = prev[k] < cur[k]
				break
			}
		}
		require.True(t, less, "addresses must be strictly ascending")
	}
	t.Log("✓ address list is sorted for deterministic pre-warming")
}
