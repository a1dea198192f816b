// (c) 2024, Faucet Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package chain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseAddressHexRoundTrip(t *testing.T) {
	var want Address
	for i := range want {
		want[i] = byte(i)
	}

	got, err := ParseAddress(want.Hex())
	require.NoError(t, err)
	require.Equal(t, want, got)

	// Without the 0x prefix too.
	got, err = ParseAddress(want.Hex()[2:])
	require.NoError(t, err)
	require.Equal(t, want, got)
}

func TestParseAddressBech32RoundTrip(t *testing.T) {
	var want Address
	for i := range want {
		want[i] = byte(255 - i)
	}

	encoded, err := want.Bech32(DefaultHRP)
	require.NoError(t, err)

	got, err := ParseAddress(encoded)
	require.NoError(t, err)
	require.Equal(t, want, got)
}

func TestParseAddressInvalid(t *testing.T) {
	cases := []string{"", "not-an-address", "0x1234", "0x" + string(make([]byte, 63))}
	for _, c := range cases {
		_, err := ParseAddress(c)
		require.Error(t, err)
	}
}
