// (c) 2024, Faucet Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package nodeclient

import (
	"context"
	"encoding/hex"
	"fmt"

	gethrpc "github.com/ethereum/go-ethereum/rpc"

	"github.com/chainfaucet/faucet/internal/chain"
)

// RPCClient is a NodeClient implementation speaking JSON-RPC to the
// chain node over go-ethereum's rpc.Client transport, the same
// dial/CallContext idiom the teacher's own RPC-facing code builds on.
type RPCClient struct {
	rpc *gethrpc.Client
}

// Dial connects to a node's JSON-RPC endpoint (http(s):// or ws(s)://).
func Dial(ctx context.Context, url string) (*RPCClient, error) {
	client, err := gethrpc.DialContext(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("dial node rpc: %w", err)
	}
	return &RPCClient{rpc: client}, nil
}

// Close releases the underlying RPC connection.
func (c *RPCClient) Close() { c.rpc.Close() }

func (c *RPCClient) Healthy(ctx context.Context) bool {
	var ok bool
	if err := c.rpc.CallContext(ctx, &ok, "faucet_health"); err != nil {
		return false
	}
	return ok
}

type coinOutputWire struct {
	TxHash      string `json:"txHash"`
	OutputIndex uint16 `json:"outputIndex"`
	Owner       string `json:"owner"`
	Amount      uint64 `json:"amount"`
}

func (c *RPCClient) SpendableCoins(ctx context.Context, address chain.Address, asset chain.AssetId, atLeast uint64) ([]chain.CoinOutput, error) {
	var wire []coinOutputWire
	err := c.rpc.CallContext(ctx, &wire, "faucet_spendableCoins", address.Hex(), asset.Hex(), atLeast)
	if err != nil {
		return nil, fmt.Errorf("spendable coins: %w", err)
	}
	if len(wire) == 0 {
		return nil, &ResourceError{Address: address, Asset: asset, Want: atLeast}
	}
	coins := make([]chain.CoinOutput, 0, len(wire))
	for _, w := range wire {
		co, err := decodeCoinOutput(w)
		if err != nil {
			return nil, err
		}
		coins = append(coins, co)
	}
	return coins, nil
}

func decodeCoinOutput(w coinOutputWire) (chain.CoinOutput, error) {
	var co chain.CoinOutput
	txHash, err := decode32(w.TxHash)
	if err != nil {
		return co, fmt.Errorf("decode utxo tx hash: %w", err)
	}
	owner, err := chain.ParseAddress(w.Owner)
	if err != nil {
		return co, fmt.Errorf("decode coin owner: %w", err)
	}
	co.UTXOID = chain.UTXOID{TxHash: txHash, OutputIndex: w.OutputIndex}
	co.Owner = owner
	co.Amount = w.Amount
	return co, nil
}

func decode32(s string) ([32]byte, error) {
	var out [32]byte
	b, err := hex.DecodeString(trimHexPrefix(s))
	if err != nil || len(b) != 32 {
		return out, fmt.Errorf("invalid 32-byte hex value %q", s)
	}
	copy(out[:], b)
	return out, nil
}

func trimHexPrefix(s string) string {
	if len(s) > 1 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		return s[2:]
	}
	return s
}

type chainInfoWire struct {
	ConsensusParams []byte `json:"consensusParams"`
	MaxDepth        uint64 `json:"maxDepth"`
	BaseAssetID     string `json:"baseAssetId"`
}

func (c *RPCClient) ChainInfo(ctx context.Context) (chain.ChainInfo, error) {
	var wire chainInfoWire
	if err := c.rpc.CallContext(ctx, &wire, "faucet_chainInfo"); err != nil {
		return chain.ChainInfo{}, fmt.Errorf("chain info: %w", err)
	}
	assetID, err := decode32(wire.BaseAssetID)
	if err != nil {
		return chain.ChainInfo{}, fmt.Errorf("decode base asset id: %w", err)
	}
	return chain.ChainInfo{
		ConsensusParams: wire.ConsensusParams,
		MaxDepth:        wire.MaxDepth,
		BaseAssetID:     chain.AssetId(assetID),
	}, nil
}

func (c *RPCClient) Send(ctx context.Context, tx *chain.Transaction) error {
	var accepted bool
	err := c.rpc.CallContext(ctx, &accepted, "faucet_send", encodeTx(tx))
	if err != nil {
		return fmt.Errorf("send transaction: %w", err)
	}
	if !accepted {
		return &SubmitError{Reason: "node rejected transaction"}
	}
	return nil
}

func (c *RPCClient) AwaitCommit(ctx context.Context, id chain.TxID) (Status, error) {
	var status string
	err := c.rpc.CallContext(ctx, &status, "faucet_awaitCommit", id.Hex())
	if err != nil {
		return StatusUnknown, fmt.Errorf("await commit: %w", err)
	}
	switch status {
	case "committed":
		return StatusCommitted, nil
	case "squeezed_out":
		return StatusSqueezedOut, nil
	default:
		return StatusFailed, nil
	}
}

func (c *RPCClient) EstimateFee(ctx context.Context, tx *chain.Transaction) (uint64, error) {
	var fee uint64
	if err := c.rpc.CallContext(ctx, &fee, "faucet_estimateFee", encodeTx(tx)); err != nil {
		return 0, fmt.Errorf("estimate fee: %w", err)
	}
	return fee, nil
}

type txWire struct {
	Inputs    []coinOutputWire `json:"inputs"`
	Outputs   []outputWire     `json:"outputs"`
	Priority  uint64           `json:"priority"`
	ChainID   uint64           `json:"chainId"`
	Witnesses []string         `json:"witnesses"`
}

type outputWire struct {
	Owner  string `json:"owner"`
	Amount uint64 `json:"amount"`
}

func encodeTx(tx *chain.Transaction) txWire {
	w := txWire{Priority: tx.Priority, ChainID: tx.ChainID}
	for _, in := range tx.Inputs {
		w.Inputs = append(w.Inputs, coinOutputWire{
			TxHash:      "0x" + hex.EncodeToString(in.UTXOID.TxHash[:]),
			OutputIndex: in.UTXOID.OutputIndex,
			Owner:       in.Owner.Hex(),
			Amount:      in.Amount,
		})
	}
	for _, out := range tx.Outputs {
		w.Outputs = append(w.Outputs, outputWire{Owner: out.Owner.Hex(), Amount: out.Amount})
	}
	for _, wit := range tx.Witnesses {
		w.Witnesses = append(w.Witnesses, "0x"+hex.EncodeToString(wit))
	}
	return w
}
