// (c) 2024, Faucet Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package session

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/chainfaucet/faucet/internal/chain"
)

func TestPutGetRoundTrip(t *testing.T) {
	s, err := New(16)
	require.NoError(t, err)

	var salt Salt
	salt[0] = 9
	addr := chain.Address{1, 2, 3}
	s.Put(salt, Entry{Recipient: addr, Difficulty: 20})

	got, ok := s.Get(salt)
	require.True(t, ok)
	require.Equal(t, addr, got.Recipient)
	require.Equal(t, uint(20), got.Difficulty)
}

func TestGetMissingSalt(t *testing.T) {
	s, err := New(16)
	require.NoError(t, err)

	_, ok := s.Get(Salt{})
	require.False(t, ok)
}

func TestCapacityEvictsOldest(t *testing.T) {
	s, err := New(2)
	require.NoError(t, err)

	var a, b, c Salt
	a[0], b[0], c[0] = 1, 2, 3
	s.Put(a, Entry{})
	s.Put(b, Entry{})
	s.Put(c, Entry{}) // evicts a

	_, ok := s.Get(a)
	require.False(t, ok)
	require.Equal(t, 2, s.Len())
}
