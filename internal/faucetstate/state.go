// (c) 2024, Faucet Authors. All rights reserved.
// See the file LICENSE for licensing terms.

// Package faucetstate holds the faucet's single mutable piece of
// on-chain state: the last coin produced by a successful dispense
// (usable as the sole input of the next one) and the descending
// priority-tier counter that keeps a chain of dependent transactions
// ordered in the node's mempool.
package faucetstate

import (
	"sync"

	"github.com/chainfaucet/faucet/internal/chain"
)

// PriorityTier is a transaction's ordering key in the node's mempool.
type PriorityTier = uint64

// State is the FaucetState singleton (C3). Its lock spans the
// read-modify-write of LastOutput and NextPriority across the pipeline's
// RPC calls — see the Lock/Unlock methods. Grounded on miner/worker.go's
// worker.mu guarding coinbase/extra mutation across block assembly.
type State struct {
	sync.Mutex

	lastOutput *chain.CoinOutput

	nextPriority uint64
	minPriority  uint64
	maxDepth     uint64
	multiplier   uint64
}

// Config bundles the immutable parameters fixed at construction.
type Config struct {
	MinPriority uint64
	MaxDepth    uint64
	// Multiplier is the K factor in max_depth*K + min_priority used to
	// reseed the priority counter. Defaults to 100 if zero.
	Multiplier uint64
}

// New constructs a FaucetState with no last output and an exhausted
// priority counter (so the first NextPriority call reseeds it).
func New(cfg Config) *State {
	multiplier := cfg.Multiplier
	if multiplier == 0 {
		multiplier = 100
	}
	return &State{
		nextPriority: cfg.MinPriority,
		minPriority:  cfg.MinPriority,
		maxDepth:     cfg.MaxDepth,
		multiplier:   multiplier,
	}
}

// LastOutput returns the change output from the last successful
// dispense, or nil if none is available. The caller must hold the
// State lock.
func (s *State) LastOutput() *chain.CoinOutput {
	return s.lastOutput
}

// SetLastOutput records the change output of a successful submission, or
// clears it (pass nil) to force the next pipeline iteration to re-query
// the node. The caller must hold the State lock.
func (s *State) SetLastOutput(out *chain.CoinOutput) {
	s.lastOutput = out
}

// NextPriority returns the next descending priority tier, reseeding the
// counter to maxDepth*multiplier + minPriority whenever it has dropped to
// or below minPriority — including on the very first call. The caller
// must hold the State lock.
func (s *State) NextPriority() PriorityTier {
	if s.nextPriority <= s.minPriority {
		s.nextPriority = s.maxDepth*s.multiplier + s.minPriority
	}
	current := s.nextPriority
	s.nextPriority--
	return current
}

// MaxDepth returns the node's mempool dependency-chain depth limit.
func (s *State) MaxDepth() uint64 { return s.maxDepth }

// MinPriority returns the configured priority floor.
func (s *State) MinPriority() uint64 { return s.minPriority }
