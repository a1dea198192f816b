// (c) 2024, Faucet Authors. All rights reserved.
// See the file LICENSE for licensing terms.

// Package tracker implements the per-identity rate limit: at most one
// dispense per identity per rolling window, with an explicit in-progress
// marker so two concurrent requests for the same identity can't both pass
// admission while a transaction is in flight.
package tracker

import (
	"container/heap"
	"sync"

	"github.com/chainfaucet/faucet/internal/clock"
	"github.com/chainfaucet/faucet/internal/identity"
)

// entry is one slot in the eviction heap: identity id tracked at unix
// second ts. seq breaks ties between entries with equal timestamps in
// insertion order, matching the "ties broken by insertion order"
// requirement.
type entry struct {
	id  string
	ts  int64
	seq uint64
}

// evictionHeap is a min-heap ordered by (ts, seq), giving O(log n)
// amortized eviction of the oldest entries. Grounded on the teacher's
// container/heap-ordered transaction list in miner/ordering_ext.go.
type evictionHeap []entry

func (h evictionHeap) Len() int { return len(h) }
func (h evictionHeap) Less(i, j int) bool {
	if h[i].ts != h[j].ts {
		return h[i].ts < h[j].ts
	}
	return h[i].seq < h[j].seq
}
func (h evictionHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *evictionHeap) Push(x any)   { *h = append(*h, x.(entry)) }
func (h *evictionHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// Tracker is the DispenseTracker (C2). Its lock only ever guards bounded,
// synchronous map/heap mutations and time comparisons, never a call
// outside this package, so a plain sync.Mutex is correct and fast — it
// must never be held across a blocking NodeClient call.
type Tracker struct {
	mu sync.Mutex

	clock clock.Clock

	served     map[string]int64
	inProgress map[string]struct{}
	queue      evictionHeap
	nextSeq    uint64
}

// New constructs an empty tracker using the given clock.
func New(c clock.Clock) *Tracker {
	return &Tracker{
		clock:      c,
		served:     make(map[string]int64),
		inProgress: make(map[string]struct{}),
	}
}

// MarkInProgress records id as admitted but not yet finalized. No-op if
// id is already in progress.
func (t *Tracker) MarkInProgress(id identity.Identity) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.inProgress[id.Key()] = struct{}{}
}

// RemoveInProgress clears the in-progress marker without touching served.
func (t *Tracker) RemoveInProgress(id identity.Identity) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.inProgress, id.Key())
}

// Track moves id out of in-progress and into served at the current time.
func (t *Tracker) Track(id identity.Identity) {
	t.mu.Lock()
	defer t.mu.Unlock()

	key := id.Key()
	delete(t.inProgress, key)

	now := t.clock.Now()
	t.served[key] = now
	heap.Push(&t.queue, entry{id: key, ts: now, seq: t.nextSeq})
	t.nextSeq++
}

// HasTracked reports whether id has an active served entry.
func (t *Tracker) HasTracked(id identity.Identity) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.served[id.Key()]
	return ok
}

// IsInProgress reports whether id is currently admitted but unfinalized.
func (t *Tracker) IsInProgress(id identity.Identity) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.inProgress[id.Key()]
	return ok
}

// EvictExpired pops every eviction-queue entry older than window,
// deleting the corresponding served entry only if it hasn't been
// refreshed by a later Track call in the meantime.
func (t *Tracker) EvictExpired(window int64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.clock.Now()
	for t.queue.Len() > 0 {
		oldest := t.queue[0]
		if now-oldest.ts <= window {
			break
		}
		heap.Pop(&t.queue)
		if ts, ok := t.served[oldest.id]; ok && ts == oldest.ts {
			delete(t.served, oldest.id)
		}
	}
}

// Admit runs the admission sequence from the spec: evict expired
// entries, then reject if id has already been served or is in flight,
// otherwise mark it in-progress. Returns true if admitted.
func (t *Tracker) Admit(id identity.Identity, window int64) bool {
	t.EvictExpired(window)

	t.mu.Lock()
	defer t.mu.Unlock()

	key := id.Key()
	if _, served := t.served[key]; served {
		return false
	}
	if _, inProgress := t.inProgress[key]; inProgress {
		return false
	}
	t.inProgress[key] = struct{}{}
	return true
}

// Len reports the number of entries in the eviction queue, exposed for
// metrics.
func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.queue.Len()
}
