// (c) 2024, Faucet Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package chain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTransactionUnsignedByDefault(t *testing.T) {
	tx := &Transaction{}
	require.False(t, tx.Signed())
	require.Equal(t, TxID{}, tx.ID())
}

func TestFinalizeMarksSigned(t *testing.T) {
	tx := &Transaction{}
	id := TxID{1, 2, 3}
	witnesses := [][]byte{{0xaa}}

	tx.Finalize(id, witnesses)

	require.True(t, tx.Signed())
	require.Equal(t, id, tx.ID())
	require.Equal(t, witnesses, tx.Witnesses)
}
