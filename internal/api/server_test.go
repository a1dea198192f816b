// (c) 2024, Faucet Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package api

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/chainfaucet/faucet/internal/authadapter"
	"github.com/chainfaucet/faucet/internal/captcha"
	"github.com/chainfaucet/faucet/internal/chain"
	"github.com/chainfaucet/faucet/internal/clock"
	"github.com/chainfaucet/faucet/internal/dispense"
	"github.com/chainfaucet/faucet/internal/faucetstate"
	"github.com/chainfaucet/faucet/internal/metrics"
	"github.com/chainfaucet/faucet/internal/nodeclient/nodeclienttest"
	"github.com/chainfaucet/faucet/internal/pow"
	"github.com/chainfaucet/faucet/internal/session"
	"github.com/chainfaucet/faucet/internal/tracker"
	"github.com/chainfaucet/faucet/internal/wallet"
	"github.com/prometheus/client_golang/prometheus"
)

func newTestServer(t *testing.T) (*Server, *session.Store, *nodeclienttest.Fake) {
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
	cfg := dispense.Config{DispenseAmount: 1000, Window: 24 * time.Hour, Timeout: time.Second, Retries: 3}
	m := metrics.New(prometheus.NewRegistry())
	svc := dispense.New(cfg, tr, state, signer, node, m)

	sessions, err := session.New(16)
	require.NoError(t, err)

	srv := New(Config{
		DispenseAmount:        1000,
		PowDifficulty:         1,
		Timeout:               time.Second,
		MaxConcurrentRequests: 8,
		MaxDepth:              4,
	}, svc, node, sessions, authadapter.StaticAdapter{"tok": "user-1"}, captcha.NoopVerifier{}, m)

	return srv, sessions, node
}

func TestHandleDispenseInfo(t *testing.T) {
	srv, _, _ := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/dispense", nil)
	rec := httptest.NewRecorder()

	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, float64(1000), body["amount"])
}

func TestHandleHealth(t *testing.T) {
	srv, _, node := newTestServer(t)
	node.SetHealthy(true)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
}

func TestHandleHealthUnhealthyNode(t *testing.T) {
	srv, _, node := newTestServer(t)
	node.SetHealthy(false)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestSessionAndDispenseFlow(t *testing.T) {
	srv, sessions, _ := newTestServer(t)

	addr := chain.Address{7}
	body, _ := json.Marshal(createSessionRequest{Address: addr.Hex()})
	req := httptest.NewRequest(http.MethodPost, "/session", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)

	var sessResp createSessionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sessResp))

	saltBytes, err := hex.DecodeString(sessResp.Salt)
	require.NoError(t, err)
	var salt session.Salt
	copy(salt[:], saltBytes)
	entry, ok := sessions.Get(salt)
	require.True(t, ok)
	require.Equal(t, addr, entry.Recipient)

	var nonce string
	for i := 0; i < 1_000_000; i++ {
		candidate := hex.EncodeToString([]byte{byte(i), byte(i >> 8), byte(i >> 16)})
		if pow.Verify([]byte(sessResp.Salt), candidate, sessResp.Difficulty) {
			nonce = candidate
			break
		}
	}
	require.NotEmpty(t, nonce, "expected to find a low-difficulty PoW solution")

	dispenseBody, _ := json.Marshal(dispenseRequest{Salt: sessResp.Salt, Nonce: nonce})
	dreq := httptest.NewRequest(http.MethodPost, "/dispense", bytes.NewReader(dispenseBody))
	drec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(drec, dreq)

	require.Equal(t, http.StatusCreated, drec.Code)
	var dResp dispenseResponse
	require.NoError(t, json.Unmarshal(drec.Body.Bytes(), &dResp))
	require.Equal(t, "Success", dResp.Status)
	require.Equal(t, uint64(1000), dResp.Tokens)
}

func TestHandleDispenseRejectsUnknownSalt(t *testing.T) {
	srv, _, _ := newTestServer(t)

	body, _ := json.Marshal(dispenseRequest{Salt: hex.EncodeToString(make([]byte, 32)), Nonce: "x"})
	req := httptest.NewRequest(http.MethodPost, "/dispense", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	var errResp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &errResp))
	require.Equal(t, "Salt does not exist", errResp["error"])
}

func TestHandleDispenseRejectsBadPowSolution(t *testing.T) {
	srv, sessions, _ := newTestServer(t)

	addr := chain.Address{7}
	var salt session.Salt
	salt[0] = 1
	sessions.Put(salt, session.Entry{Recipient: addr, Difficulty: 255})

	body, _ := json.Marshal(dispenseRequest{Salt: hex.EncodeToString(salt[:]), Nonce: "wrong-nonce"})
	req := httptest.NewRequest(http.MethodPost, "/dispense", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	var errResp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &errResp))
	require.Equal(t, "Invalid proof of work", errResp["error"])
}

func TestHandleValidateAndRemoveSession(t *testing.T) {
	srv, _, _ := newTestServer(t)

	body, _ := json.Marshal(validateSessionRequest{Value: "tok"})
	req := httptest.NewRequest(http.MethodPost, "/api/session/validate", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	require.Equal(t, "user-1", cookies[0].Value)

	removeReq := httptest.NewRequest(http.MethodPost, "/api/session/remove", nil)
	removeRec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(removeRec, removeReq)
	require.Equal(t, http.StatusOK, removeRec.Code)
}

func TestCORSPreflight(t *testing.T) {
	srv, _, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/dispense", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
