// (c) 2024, Faucet Authors. All rights reserved.
// See the file LICENSE for licensing terms.

// Command keygen prints the deterministic development wallet key used
// when WALLET_SECRET_KEY is unset, along with its derived address.
package main

import (
	"fmt"
	"os"

	"github.com/chainfaucet/faucet/internal/wallet"
)

func main() {
	hexKey, err := wallet.DevPrivateKeyHex()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	signer, err := wallet.NewSigner(hexKey, 0)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Printf("secret key: 0x%s\n", hexKey)
	fmt.Printf("address:    %s\n", signer.Address().Hex())
}
