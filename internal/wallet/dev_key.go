// (c) 2024, Faucet Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package wallet

import (
	"encoding/hex"
	"fmt"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/tyler-smith/go-bip39"
)

// DevMnemonic is the fixed, publicly known mnemonic used to derive the
// faucet's wallet key in local development and CI, never in production.
const DevMnemonic = "test test test test test test test test test test test junk"

// DevPrivateKeyHex derives a deterministic hex-encoded private key from
// DevMnemonic by taking the first 32 bytes of its BIP-39 seed. No HD
// (BIP-32/44) derivation is applied, so the key is not the Hardhat/Anvil
// account key that tooling derives from the same mnemonic.
func DevPrivateKeyHex() (string, error) {
	if !bip39.IsMnemonicValid(DevMnemonic) {
		return "", fmt.Errorf("dev mnemonic is invalid")
	}
	seed := bip39.NewSeed(DevMnemonic, "")
	priv, err := crypto.ToECDSA(seed[:32])
	if err != nil {
		return "", fmt.Errorf("derive dev key: %w", err)
	}
	return hex.EncodeToString(crypto.FromECDSA(priv)), nil
}
