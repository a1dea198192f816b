// (c) 2024, Faucet Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package nodeclient

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/chainfaucet/faucet/internal/chain"
)

func TestStatusString(t *testing.T) {
	require.Equal(t, "committed", StatusCommitted.String())
	require.Equal(t, "squeezed_out", StatusSqueezedOut.String())
	require.Equal(t, "failed", StatusFailed.String())
	require.Equal(t, "unknown", StatusUnknown.String())
}

func TestResourceErrorMessage(t *testing.T) {
	err := &ResourceError{Address: chain.Address{1}, Asset: chain.BaseAsset, Want: 100}
	require.Contains(t, err.Error(), "insufficient")
}

func TestSubmitErrorMessage(t *testing.T) {
	err := &SubmitError{Reason: "mempool full"}
	require.Contains(t, err.Error(), "mempool full")
}
