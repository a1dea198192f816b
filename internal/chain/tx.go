// (c) 2024, Faucet Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package chain

// Output is an unsigned transaction output: a promise to pay Amount of
// the dispense asset to Owner. The node fills in dust/change amounts
// left as zero placeholders by the pipeline.
type Output struct {
	Owner  Address
	Amount uint64
}

// Transaction is a draft or finalized transfer transaction spending
// Inputs and producing Outputs, ordered in the mempool by Priority.
type Transaction struct {
	Inputs   []CoinOutput
	Outputs  []Output
	Priority uint64
	ChainID  uint64

	Witnesses [][]byte
	id        TxID
	signed    bool
}

// ID returns the transaction's identifier. Only valid once signed.
func (tx *Transaction) ID() TxID { return tx.id }

// Signed reports whether Finalize has been called on this draft.
func (tx *Transaction) Signed() bool { return tx.signed }

// Finalize attaches a computed id and witness set to the draft, marking
// it signed. Callers outside this package (signers) use this instead of
// touching the unexported fields directly.
func (tx *Transaction) Finalize(id TxID, witnesses [][]byte) {
	tx.id = id
	tx.Witnesses = witnesses
	tx.signed = true
}
