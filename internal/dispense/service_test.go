// (c) 2024, Faucet Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package dispense

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/chainfaucet/faucet/internal/chain"
	"github.com/chainfaucet/faucet/internal/clock"
	"github.com/chainfaucet/faucet/internal/faucetstate"
	"github.com/chainfaucet/faucet/internal/identity"
	"github.com/chainfaucet/faucet/internal/metrics"
	"github.com/chainfaucet/faucet/internal/nodeclient/nodeclienttest"
	"github.com/chainfaucet/faucet/internal/tracker"
	"github.com/chainfaucet/faucet/internal/wallet"
)

func newTestService(t *testing.T) (*Service, *wallet.Signer, *nodeclienttest.Fake) {
	t.Helper()

	hexKey, err := wallet.DevPrivateKeyHex()
	require.NoError(t, err)
	signer, err := wallet.NewSigner(hexKey, 1)
	require.NoError(t, err)

	node := nodeclienttest.New(chain.ChainInfo{MaxDepth: 4}, 10)
	node.SeedCoins(chain.CoinOutput{
		UTXOID: chain.UTXOID{TxHash: [32]byte{1}, OutputIndex: 0},
		Owner:  signer.Address(),
		Amount: 1_000_000,
	})

	state := faucetstate.New(faucetstate.Config{MinPriority: 1, MaxDepth: 4})
	tr := tracker.New(clock.NewMock(0))

	cfg := Config{DispenseAmount: 1000, Window: 24 * time.Hour, Timeout: time.Second, Retries: 3}
	m := metrics.New(prometheus.NewRegistry())
	svc := New(cfg, tr, state, signer, node, m)
	return svc, signer, node
}

func TestDispenseSucceeds(t *testing.T) {
	svc, _, node := newTestService(t)
	recipient := chain.Address{9}

	res, err := svc.Dispense(context.Background(), identity.FromAddress(recipient), recipient)
	require.NoError(t, err)
	require.Equal(t, uint64(1000), res.Tokens)
	require.Len(t, node.Sent(), 1)
}

func TestDispenseRejectsSecondRequestInWindow(t *testing.T) {
	svc, _, _ := newTestService(t)
	recipient := chain.Address{9}
	id := identity.FromAddress(recipient)

	_, err := svc.Dispense(context.Background(), id, recipient)
	require.NoError(t, err)

	_, err = svc.Dispense(context.Background(), id, recipient)
	require.Error(t, err)
}

func TestDispenseRollsBackInProgressOnSendFailure(t *testing.T) {
	svc, _, node := newTestService(t)
	recipient := chain.Address{9}
	id := identity.FromAddress(recipient)

	node.SetSendError(errors.New("mempool full"))

	_, err := svc.Dispense(context.Background(), id, recipient)
	require.Error(t, err)

	require.False(t, svc.tracker.IsInProgress(id), "scope guard must clear in-progress on failure")
	require.False(t, svc.tracker.HasTracked(id), "a failed dispense must not be marked served")
}

func TestDispenseReusesChainedOutputAcrossRequests(t *testing.T) {
	svc, signer, node := newTestService(t)
	first := chain.Address{1}
	second := chain.Address{2}

	_, err := svc.Dispense(context.Background(), identity.FromAddress(first), first)
	require.NoError(t, err)

	node.SeedCoins() // no additional coins; second request must reuse chained change
	_, err = svc.Dispense(context.Background(), identity.FromAddress(second), second)
	require.NoError(t, err)

	sent := node.Sent()
	require.Len(t, sent, 2)
	require.Equal(t, sent[0].ID(), chain.TxID(sent[1].Inputs[0].UTXOID.TxHash))
	require.Equal(t, signer.Address(), sent[1].Inputs[0].Owner)
}
