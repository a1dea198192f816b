// (c) 2024, Faucet Authors. All rights reserved.
// See the file LICENSE for licensing terms.

// Package nodeclient talks to the chain node the faucet dispenses
// against: resolving spendable coins, submitting signed transactions,
// and waiting for their commit status.
package nodeclient

import (
	"context"

	"github.com/chainfaucet/faucet/internal/chain"
)

// Status is the terminal outcome of AwaitCommit.
type Status int

const (
	// StatusUnknown is returned only on a client-side error path; it
	// never represents a real node response.
	StatusUnknown Status = iota
	StatusCommitted
	StatusSqueezedOut
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusCommitted:
		return "committed"
	case StatusSqueezedOut:
		return "squeezed_out"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// NodeClient is the faucet's view of the chain node (C4), unchanged in
// shape from the four RPCs it originally described plus the EstimateFee
// supplement used by the dispense pipeline's fee-estimation step (spec.md §4.4
// describes asking the node to estimate the max fee without naming the
// RPC explicitly; EstimateFee makes that call addressable).
type NodeClient interface {
	// Healthy never returns an error: any failure collapses to false.
	Healthy(ctx context.Context) bool
	// SpendableCoins returns coins owned by address in asset summing to
	// at least atLeast, or a *ResourceError if none are available.
	SpendableCoins(ctx context.Context, address chain.Address, asset chain.AssetId, atLeast uint64) ([]chain.CoinOutput, error)
	// ChainInfo is queried once at startup.
	ChainInfo(ctx context.Context) (chain.ChainInfo, error)
	// Send submits a signed transaction, submit-and-forget. The node may
	// still reject it asynchronously (mempool overflow, bad signature).
	Send(ctx context.Context, tx *chain.Transaction) error
	// AwaitCommit blocks until tx reaches a terminal status. Callers
	// bound this with ctx's deadline.
	AwaitCommit(ctx context.Context, id chain.TxID) (Status, error)
	// EstimateFee prices a draft transaction before it's signed.
	EstimateFee(ctx context.Context, tx *chain.Transaction) (uint64, error)
}

// ResourceError reports that the node could not satisfy a coin-selection
// request, matching spec.md §4.5's ResourceError family.
type ResourceError struct {
	Address chain.Address
	Asset   chain.AssetId
	Want    uint64
}

func (e *ResourceError) Error() string {
	return "insufficient spendable coins for requested amount"
}

// SubmitError reports that Send's node-side submission failed.
type SubmitError struct {
	Reason string
}

func (e *SubmitError) Error() string { return "submit rejected: " + e.Reason }
