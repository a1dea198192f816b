// (c) 2024, Faucet Authors. All rights reserved.
// See the file LICENSE for licensing terms.

// Package chain holds the wire-level data types shared by the wallet,
// node client, and HTTP surface: addresses, asset ids, and coin outputs
// on the account/UTXO-style chain the faucet dispenses against.
package chain

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/btcutil/bech32"
)

// AddressLen is the width of an account identifier in bytes.
const AddressLen = 32

// DefaultHRP is the conventional bech32 human-readable part to pass to
// Address.Bech32. ParseAddress accepts a bech32 address with any HRP and
// does not check it.
const DefaultHRP = "fuel"

// Address is a 32-byte account identifier.
type Address [AddressLen]byte

// AssetId is a 32-byte asset identifier. The zero value is the chain's
// base asset.
type AssetId [AddressLen]byte

// BaseAsset is the all-zero asset id dispensed by the faucet by default.
var BaseAsset = AssetId{}

func (a Address) String() string { return a.Hex() }

// Hex renders the address as a "0x"-prefixed lowercase hex string.
func (a Address) Hex() string { return "0x" + hex.EncodeToString(a[:]) }

// Bech32 renders the address using the given human-readable part.
func (a Address) Bech32(hrp string) (string, error) {
	converted, err := bech32.ConvertBits(a[:], 8, 5, true)
	if err != nil {
		return "", fmt.Errorf("convert address bits: %w", err)
	}
	return bech32.Encode(hrp, converted)
}

func (a AssetId) Hex() string { return "0x" + hex.EncodeToString(a[:]) }

func (a AssetId) IsBase() bool { return a == BaseAsset }

// ParseAddress accepts either raw 32-byte hex (with or without a "0x"
// prefix) or a bech32-style human-readable address.
func ParseAddress(s string) (Address, error) {
	var addr Address
	s = strings.TrimSpace(s)
	if s == "" {
		return addr, fmt.Errorf("invalid address")
	}
	if looksLikeHex(s) {
		return parseHexAddress(s)
	}
	if hrp, data, err := bech32.Decode(s); err == nil {
		return bech32ToAddress(hrp, data)
	}
	return addr, fmt.Errorf("invalid address")
}

func looksLikeHex(s string) bool {
	trimmed := strings.TrimPrefix(strings.ToLower(s), "0x")
	if len(trimmed) != AddressLen*2 {
		return false
	}
	_, err := hex.DecodeString(trimmed)
	return err == nil
}

func parseHexAddress(s string) (Address, error) {
	var addr Address
	trimmed := strings.TrimPrefix(strings.ToLower(s), "0x")
	b, err := hex.DecodeString(trimmed)
	if err != nil || len(b) != AddressLen {
		return addr, fmt.Errorf("invalid address")
	}
	copy(addr[:], b)
	return addr, nil
}

func bech32ToAddress(hrp string, data []byte) (Address, error) {
	var addr Address
	_ = hrp
	converted, err := bech32.ConvertBits(data, 5, 8, false)
	if err != nil || len(converted) != AddressLen {
		return addr, fmt.Errorf("invalid address")
	}
	copy(addr[:], converted)
	return addr, nil
}

// UTXOID identifies a single unspent output by the hash of the
// transaction that created it and its index within that transaction.
type UTXOID struct {
	TxHash      [32]byte
	OutputIndex uint16
}

// CoinOutput is a single spendable output owned by an address.
type CoinOutput struct {
	UTXOID UTXOID
	Owner  Address
	Amount uint64
}

// TxID is the identifier of a submitted transaction.
type TxID [32]byte

func (t TxID) Hex() string { return "0x" + hex.EncodeToString(t[:]) }

// ChainInfo is returned by NodeClient.ChainInfo at startup.
type ChainInfo struct {
	ConsensusParams []byte
	MaxDepth        uint64
	BaseAssetID     AssetId
}
