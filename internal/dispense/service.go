// (c) 2024, Faucet Authors. All rights reserved.
// See the file LICENSE for licensing terms.

// Package dispense implements DispenseService (C9): the orchestrator
// that gates a request through the tracker, runs the coin-selection and
// signing pipeline against a single chained hot-wallet output, and
// waits for commitment.
package dispense

import (
	"context"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/log"

	"github.com/chainfaucet/faucet/internal/apperror"
	"github.com/chainfaucet/faucet/internal/chain"
	"github.com/chainfaucet/faucet/internal/faucetstate"
	"github.com/chainfaucet/faucet/internal/identity"
	"github.com/chainfaucet/faucet/internal/metrics"
	"github.com/chainfaucet/faucet/internal/nodeclient"
	"github.com/chainfaucet/faucet/internal/tracker"
	"github.com/chainfaucet/faucet/internal/wallet"
)

// Config bundles the pipeline's tunables, sourced from internal/config.
type Config struct {
	DispenseAmount uint64
	Window         time.Duration
	Timeout        time.Duration
	Retries        uint64
}

// Result is returned to the HTTP surface on a successful dispense.
type Result struct {
	Tokens uint64
	TxID   chain.TxID
}

// Service is the DispenseService orchestrator.
type Service struct {
	cfg     Config
	tracker *tracker.Tracker
	state   *faucetstate.State
	signer  *wallet.Signer
	node    nodeclient.NodeClient
	metrics *metrics.Metrics
}

// New constructs a Service bound to its collaborators.
func New(cfg Config, tr *tracker.Tracker, state *faucetstate.State, signer *wallet.Signer, node nodeclient.NodeClient, m *metrics.Metrics) *Service {
	return &Service{cfg: cfg, tracker: tr, state: state, signer: signer, node: node, metrics: m}
}

// TrackerLen reports the current size of the dispense tracker's eviction
// queue, exposed so the HTTP surface can drive the tracker_size gauge.
func (s *Service) TrackerLen() int {
	return s.tracker.Len()
}

// Dispense runs a full admit -> pipeline -> finalize cycle for id
// requesting dispense_amount to recipient, returning the same error
// taxonomy spec.md §7 assigns to each failure mode.
func (s *Service) Dispense(ctx context.Context, id identity.Identity, recipient chain.Address) (*Result, error) {
	if err := s.admit(id); err != nil {
		return nil, err
	}

	succeeded := false
	defer func() {
		if !succeeded {
			s.tracker.RemoveInProgress(id)
		}
	}()

	txID, err := s.runPipeline(ctx, recipient)
	if err != nil {
		return nil, err
	}

	status, err := s.awaitCommit(ctx, txID)
	if err != nil {
		s.metrics.NodeClientErrorsTotal.WithLabelValues("await_commit").Inc()
		return nil, apperror.Wrap(apperror.Internal, "await commit failed", err)
	}
	if status != nodeclient.StatusCommitted {
		return nil, apperror.New(apperror.Internal, fmt.Sprintf("transaction did not commit: %s", status))
	}

	s.tracker.Track(id)
	succeeded = true

	return &Result{Tokens: s.cfg.DispenseAmount, TxID: txID}, nil
}

// admit runs the tracker's pre-lock admission check (spec.md §4.3) as a
// single atomic Admit call so two concurrent requests for the same
// identity can never both pass.
func (s *Service) admit(id identity.Identity) error {
	if !s.tracker.Admit(id, int64(s.cfg.Window/time.Second)) {
		return apperror.New(apperror.TooManyRequests, "already served or in progress")
	}
	return nil
}

func (s *Service) awaitCommit(ctx context.Context, txID chain.TxID) (nodeclient.Status, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()
	return s.node.AwaitCommit(ctx, txID)
}

// runPipeline is the bounded retry loop of spec.md §4.3 steps 1-11.
func (s *Service) runPipeline(ctx context.Context, recipient chain.Address) (chain.TxID, error) {
	retries := s.cfg.Retries
	if retries == 0 {
		retries = 1
	}

	var lastErr error
	for attempt := uint64(0); attempt < retries; attempt++ {
		if attempt > 0 {
			s.metrics.SubmissionRetries.Inc()
		}
		txID, err := s.attemptOnce(ctx, recipient)
		if err == nil {
			return txID, nil
		}
		lastErr = err
		log.Warn("dispense pipeline attempt failed, retrying", "attempt", attempt, "err", err)
	}
	return chain.TxID{}, apperror.Wrap(apperror.Internal, "submission retries exhausted", lastErr)
}

// attemptOnce runs a single pass of the pipeline holding the
// FaucetState lock across the node calls, mirroring the "async-aware
// mutex held across await points" discipline of spec.md §5 — in Go this
// is simply a sync.Mutex held across the goroutine's blocking RPC calls.
func (s *Service) attemptOnce(ctx context.Context, recipient chain.Address) (chain.TxID, error) {
	s.state.Lock()
	defer s.state.Unlock()

	callCtx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	input, err := s.selectInput(callCtx, recipient)
	if err != nil {
		s.state.SetLastOutput(nil)
		return chain.TxID{}, err
	}

	outputs := []chain.Output{
		{Owner: recipient, Amount: s.cfg.DispenseAmount},
		{Owner: recipient, Amount: 0},          // change, node fills in dust
		{Owner: s.signer.Address(), Amount: 0}, // stable fee change placeholder
	}

	priority := s.state.NextPriority()
	tx := s.signer.Build([]chain.CoinOutput{input}, outputs, priority)

	fee, err := s.node.EstimateFee(callCtx, tx)
	if err != nil {
		s.metrics.NodeClientErrorsTotal.WithLabelValues("estimate_fee").Inc()
		s.state.SetLastOutput(nil)
		return chain.TxID{}, apperror.Wrap(apperror.Internal, "estimate fee failed", err)
	}

	if input.Amount < fee+s.cfg.DispenseAmount {
		s.state.SetLastOutput(nil)
		return chain.TxID{}, apperror.New(apperror.Internal, "insufficient input balance after fee")
	}
	stableFeeChange := input.Amount - fee - s.cfg.DispenseAmount
	tx.Outputs[2].Amount = stableFeeChange

	if err := s.signer.Sign(tx); err != nil {
		s.state.SetLastOutput(nil)
		return chain.TxID{}, apperror.Wrap(apperror.Internal, "sign transaction failed", err)
	}

	if err := s.node.Send(callCtx, tx); err != nil {
		s.metrics.NodeClientErrorsTotal.WithLabelValues("send").Inc()
		s.state.SetLastOutput(nil)
		return chain.TxID{}, apperror.Wrap(apperror.Internal, "submit transaction failed", err)
	}

	s.state.SetLastOutput(&chain.CoinOutput{
		UTXOID: chain.UTXOID{TxHash: tx.ID(), OutputIndex: 2},
		Owner:  s.signer.Address(),
		Amount: stableFeeChange,
	})
	return tx.ID(), nil
}

// selectInput implements spec.md §4.3 step 2: reuse the chained change
// output if it still covers the request, otherwise re-query the node.
func (s *Service) selectInput(ctx context.Context, recipient chain.Address) (chain.CoinOutput, error) {
	if last := s.state.LastOutput(); last != nil && last.Amount > s.cfg.DispenseAmount {
		return *last, nil
	}

	headroom := s.cfg.DispenseAmount * s.state.MaxDepth() * 2
	if headroom == 0 {
		headroom = s.cfg.DispenseAmount
	}
	coins, err := s.node.SpendableCoins(ctx, s.signer.Address(), chain.BaseAsset, headroom)
	if err != nil {
		s.metrics.NodeClientErrorsTotal.WithLabelValues("spendable_coins").Inc()
		return chain.CoinOutput{}, apperror.Wrap(apperror.Internal, "query spendable coins failed", err)
	}
	if len(coins) == 0 {
		return chain.CoinOutput{}, apperror.New(apperror.Internal, "no spendable coins available")
	}

	largest := coins[0]
	for _, c := range coins[1:] {
		if c.Amount > largest.Amount {
			largest = c
		}
	}
	return largest, nil
}
