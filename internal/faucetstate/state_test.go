// (c) 2024, Faucet Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package faucetstate

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNextPriorityDescendingWave(t *testing.T) {
	s := New(Config{MinPriority: 10, MaxDepth: 4, Multiplier: 100})

	s.Lock()
	defer s.Unlock()

	seen := make(map[PriorityTier]bool)
	var prev PriorityTier
	for i := 0; i < 4; i++ {
		p := s.NextPriority()
		if i > 0 {
			require.Less(t, p, prev, "priority must strictly decrease")
		}
		require.False(t, seen[p], "priority %d produced twice within one wave", p)
		seen[p] = true
		prev = p
	}
}

func TestNextPriorityResetsAtFloor(t *testing.T) {
	s := New(Config{MinPriority: 5, MaxDepth: 2, Multiplier: 100})

	s.Lock()
	first := s.NextPriority() // reseeds: 2*100+5=205
	require.Equal(t, PriorityTier(205), first)
	second := s.NextPriority()
	require.Equal(t, PriorityTier(204), second)
	s.Unlock()

	// Drain until at/below the floor, then confirm it reseeds again.
	s.Lock()
	defer s.Unlock()
	for s.nextPriority > s.minPriority {
		s.NextPriority()
	}
	reseeded := s.NextPriority()
	require.Equal(t, PriorityTier(205), reseeded)
}

func TestLastOutputNilOnConstruction(t *testing.T) {
	s := New(Config{MinPriority: 0, MaxDepth: 1})

	s.Lock()
	require.Nil(t, s.LastOutput())
	s.Unlock()
}
