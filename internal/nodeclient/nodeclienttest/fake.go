// (c) 2024, Faucet Authors. All rights reserved.
// See the file LICENSE for licensing terms.

// Package nodeclienttest provides an in-memory NodeClient fake for
// exercising the dispense pipeline and HTTP surface without a real node.
package nodeclienttest

import (
	"context"
	"sync"

	"github.com/chainfaucet/faucet/internal/chain"
	"github.com/chainfaucet/faucet/internal/nodeclient"
)

// Fake is a NodeClient backed by an in-memory coin set and a fixed fee.
// All of its state is unexported and guarded by a mutex; change it
// through SeedCoins and the Set* helpers, which take the lock.
type Fake struct {
	mu sync.Mutex

	healthy    bool
	coins      map[chain.Address][]chain.CoinOutput
	chainInfo  chain.ChainInfo
	fee        uint64
	sendErr    error
	sent       []*chain.Transaction
	commitResp map[chain.TxID]nodeclient.Status
}

// New returns a healthy fake with the given chain info and flat fee.
func New(info chain.ChainInfo, fee uint64) *Fake {
	return &Fake{
		healthy:    true,
		coins:      make(map[chain.Address][]chain.CoinOutput),
		chainInfo:  info,
		fee:        fee,
		commitResp: make(map[chain.TxID]nodeclient.Status),
	}
}

// SeedCoins registers coins as spendable by their owner.
func (f *Fake) SeedCoins(coins ...chain.CoinOutput) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range coins {
		f.coins[c.Owner] = append(f.coins[c.Owner], c)
	}
}

// SetHealthy toggles the Healthy response.
func (f *Fake) SetHealthy(v bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.healthy = v
}

// SetSendError makes the next and all subsequent Send calls fail.
func (f *Fake) SetSendError(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sendErr = err
}

// SetCommitStatus pre-programs AwaitCommit's response for a given tx id.
func (f *Fake) SetCommitStatus(id chain.TxID, status nodeclient.Status) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.commitResp[id] = status
}

// Sent returns every transaction accepted by Send, in order.
func (f *Fake) Sent() []*chain.Transaction {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*chain.Transaction, len(f.sent))
	copy(out, f.sent)
	return out
}

func (f *Fake) Healthy(ctx context.Context) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.healthy
}

func (f *Fake) SpendableCoins(ctx context.Context, address chain.Address, asset chain.AssetId, atLeast uint64) ([]chain.CoinOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var total uint64
	var picked []chain.CoinOutput
	for _, c := range f.coins[address] {
		if c.Amount == 0 {
			continue
		}
		picked = append(picked, c)
		total += c.Amount
		if total >= atLeast {
			return picked, nil
		}
	}
	return nil, &nodeclient.ResourceError{Address: address, Asset: asset, Want: atLeast}
}

func (f *Fake) ChainInfo(ctx context.Context) (chain.ChainInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.chainInfo, nil
}

func (f *Fake) Send(ctx context.Context, tx *chain.Transaction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent = append(f.sent, tx)
	if _, ok := f.commitResp[tx.ID()]; !ok {
		f.commitResp[tx.ID()] = nodeclient.StatusCommitted
	}
	return nil
}

func (f *Fake) AwaitCommit(ctx context.Context, id chain.TxID) (nodeclient.Status, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	status, ok := f.commitResp[id]
	if !ok {
		return nodeclient.StatusUnknown, nil
	}
	return status, nil
}

func (f *Fake) EstimateFee(ctx context.Context, tx *chain.Transaction) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fee, nil
}
