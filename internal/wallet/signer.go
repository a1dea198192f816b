// (c) 2024, Faucet Authors. All rights reserved.
// See the file LICENSE for licensing terms.

// Package wallet holds the faucet's hot-wallet private key and knows how
// to build and sign transfer transactions. It never talks to the network
// directly — fee estimation and submission go through the node client.
package wallet

import (
	"crypto/ecdsa"
	"encoding/binary"
	"fmt"

	"github.com/ethereum/go-ethereum/crypto"

	"github.com/chainfaucet/faucet/internal/chain"
)

// Signer is the WalletSigner (C5): it owns the faucet's private key and
// derives its own address.
type Signer struct {
	priv    *ecdsa.PrivateKey
	address chain.Address
	chainID uint64
}

// NewSigner builds a Signer from a hex-encoded secp256k1 private key
// (with or without a 0x prefix), using the teacher's own go-ethereum
// dependency for key material and signing.
func NewSigner(hexKey string, chainID uint64) (*Signer, error) {
	priv, err := crypto.HexToECDSA(trim0x(hexKey))
	if err != nil {
		return nil, fmt.Errorf("parse wallet secret key: %w", err)
	}
	pub := crypto.FromECDSAPub(&priv.PublicKey)
	// The UTXO address space here is 32 bytes wide (unlike Ethereum's
	// 20-byte accounts), so the owner address is the full Keccak-256
	// digest of the uncompressed public key rather than its trailing 20
	// bytes.
	digest := crypto.Keccak256(pub)
	var addr chain.Address
	copy(addr[:], digest)

	return &Signer{priv: priv, address: addr, chainID: chainID}, nil
}

// Address returns the faucet's own owner address.
func (s *Signer) Address() chain.Address { return s.address }

// Build assembles an unsigned transfer transaction at the given priority
// tier spending inputs and producing outputs.
func (s *Signer) Build(inputs []chain.CoinOutput, outputs []chain.Output, priority uint64) *chain.Transaction {
	return &chain.Transaction{
		Inputs:   inputs,
		Outputs:  outputs,
		Priority: priority,
		ChainID:  s.chainID,
	}
}

// Sign finalizes the draft: it computes the transaction's deterministic
// id from its inputs, outputs, priority, and chain id, then attaches the
// wallet's witness over that id. Calling Sign twice on an unmodified
// draft yields the same id, satisfying the "same build inputs yield the
// same tx_id" contract.
func (s *Signer) Sign(tx *chain.Transaction) error {
	digest := signingDigest(tx)
	sig, err := crypto.Sign(digest, s.priv)
	if err != nil {
		return fmt.Errorf("sign transaction: %w", err)
	}
	var id chain.TxID
	copy(id[:], digest)
	tx.Finalize(id, [][]byte{sig})
	return nil
}

func signingDigest(tx *chain.Transaction) []byte {
	h := crypto.NewKeccakState()
	for _, in := range tx.Inputs {
		h.Write(in.UTXOID.TxHash[:])
		var idxBuf [2]byte
		binary.BigEndian.PutUint16(idxBuf[:], in.UTXOID.OutputIndex)
		h.Write(idxBuf[:])
		h.Write(in.Owner[:])
		var amtBuf [8]byte
		binary.BigEndian.PutUint64(amtBuf[:], in.Amount)
		h.Write(amtBuf[:])
	}
	for _, out := range tx.Outputs {
		h.Write(out.Owner[:])
		var amtBuf [8]byte
		binary.BigEndian.PutUint64(amtBuf[:], out.Amount)
		h.Write(amtBuf[:])
	}
	var priorityBuf [8]byte
	binary.BigEndian.PutUint64(priorityBuf[:], tx.Priority)
	h.Write(priorityBuf[:])
	var chainIDBuf [8]byte
	binary.BigEndian.PutUint64(chainIDBuf[:], tx.ChainID)
	h.Write(chainIDBuf[:])

	digest := make([]byte, 32)
	h.Read(digest)
	return digest
}

func trim0x(s string) string {
	if len(s) > 1 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		return s[2:]
	}
	return s
}
