// (c) 2024, Faucet Authors. All rights reserved.
// See the file LICENSE for licensing terms.

// Package session implements SessionStore (C7): the salt-to-recipient
// mapping used by the PoW admission flow.
package session

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/chainfaucet/faucet/internal/chain"
)

// DefaultCapacity bounds the store so an attacker spamming POST /session
// cannot grow it without limit; spec.md §9 leaves session GC an open
// question, resolved here with a bounded LRU rather than an unbounded
// map or a background sweep (see DESIGN.md).
const DefaultCapacity = 100_000

// Salt identifies a PoW session.
type Salt [32]byte

// Entry is what a salt resolves to: the recipient address fixed at
// POST /session time and the difficulty the client must solve.
type Entry struct {
	Recipient  chain.Address
	Difficulty uint
}

// Store maps salt -> Entry with LRU eviction once Capacity entries are
// held, grounded on the teacher's use of an LRU cache for bounded
// in-memory lookup tables.
type Store struct {
	cache *lru.Cache[Salt, Entry]
}

// New constructs a Store holding at most capacity entries.
func New(capacity int) (*Store, error) {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	c, err := lru.New[Salt, Entry](capacity)
	if err != nil {
		return nil, err
	}
	return &Store{cache: c}, nil
}

// Put records a new session salt.
func (s *Store) Put(salt Salt, entry Entry) {
	s.cache.Add(salt, entry)
}

// Get looks up a session salt, reporting whether it was present. A hit
// does not remove the entry — PoW verification may be retried with a
// fresh nonce against the same salt.
func (s *Store) Get(salt Salt) (Entry, bool) {
	return s.cache.Get(salt)
}

// Len reports the number of live sessions, for diagnostics/metrics.
func (s *Store) Len() int { return s.cache.Len() }
