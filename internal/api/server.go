// (c) 2024, Faucet Authors. All rights reserved.
// See the file LICENSE for licensing terms.

// Package api implements HttpSurface (C10): routing, admission
// middleware, CORS, and per-request timeouts in front of the dispense
// pipeline, the session store, and the auth-session endpoints.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/chainfaucet/faucet/internal/authadapter"
	"github.com/chainfaucet/faucet/internal/captcha"
	"github.com/chainfaucet/faucet/internal/chain"
	"github.com/chainfaucet/faucet/internal/dispense"
	"github.com/chainfaucet/faucet/internal/metrics"
	"github.com/chainfaucet/faucet/internal/nodeclient"
	"github.com/chainfaucet/faucet/internal/pow"
	"github.com/chainfaucet/faucet/internal/session"
)

// errUnknownSalt distinguishes "no session exists for this salt" from
// "the session exists but the PoW solution is wrong" — original_source's
// routes/dispense.rs returns a distinct "Salt does not exist" body for
// the former.
var errUnknownSalt = errors.New("salt does not exist")

// Config carries the HTTP surface's own tunables, independent of the
// pipeline's Config.
type Config struct {
	DispenseAmount        uint64
	PowDifficulty         uint
	Timeout               time.Duration
	MaxConcurrentRequests int64
	MaxDepth              uint64
	NodeURL               string
	PublicNodeURL         string
}

// Server wires every endpoint in spec.md §6 onto a net/http.ServeMux.
type Server struct {
	cfg       Config
	service   *dispense.Service
	node      nodeclient.NodeClient
	sessions  *session.Store
	auth      authadapter.AuthAdapter
	captcha   captcha.Verifier
	metrics   *metrics.Metrics
	global    *semaphore.Weighted
	dispenseQ *semaphore.Weighted
	mux       *http.ServeMux
	bootTime  time.Time
}

// New builds a Server and registers its routes.
func New(cfg Config, service *dispense.Service, node nodeclient.NodeClient, sessions *session.Store, auth authadapter.AuthAdapter, verifier captcha.Verifier, m *metrics.Metrics) *Server {
	s := &Server{
		cfg:       cfg,
		service:   service,
		node:      node,
		sessions:  sessions,
		auth:      auth,
		captcha:   verifier,
		metrics:   m,
		global:    semaphore.NewWeighted(cfg.MaxConcurrentRequests),
		dispenseQ: semaphore.NewWeighted(int64(cfg.MaxDepth)),
		mux:       http.NewServeMux(),
		bootTime:  time.Now(),
	}
	s.routes()
	return s
}

// Handler returns the fully wrapped handler (CORS + global admission +
// per-request timeout) ready to hand to an http.Server.
func (s *Server) Handler() http.Handler {
	var h http.Handler = s.mux
	h = s.withGlobalAdmission(h)
	h = withCORS(h)
	h = http.TimeoutHandler(h, s.cfg.Timeout, `{"error":"request timeout"}`)
	return h
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /", s.handleIndex)
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("GET /dispense", s.handleDispenseInfo)
	s.mux.Handle("POST /dispense", s.withDispenseAdmission(http.HandlerFunc(s.handleDispense)))
	s.mux.HandleFunc("POST /session", s.handleCreateSession)
	s.mux.HandleFunc("GET /session", s.handleLookupSession)
	s.mux.HandleFunc("POST /api/session/validate", s.handleValidateSession)
	s.mux.HandleFunc("POST /api/session/remove", s.handleRemoveSession)
}

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// withGlobalAdmission enforces MAX_CONCURRENT_REQUESTS across every
// endpoint, shedding load with 503 when the semaphore is exhausted.
// Grounded on peer/network.go's activeAppRequests semaphore.Weighted
// acquire/release pattern.
func (s *Server) withGlobalAdmission(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.global.TryAcquire(1) {
			writeError(w, http.StatusServiceUnavailable, "server overloaded")
			return
		}
		defer s.global.Release(1)
		next.ServeHTTP(w, r)
	})
}

// withDispenseAdmission applies the dispense endpoint's narrower
// max_depth concurrency cap on top of the global admission middleware.
func (s *Server) withDispenseAdmission(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), s.cfg.Timeout)
		defer cancel()
		if !s.dispenseQ.TryAcquire(1) {
			writeError(w, http.StatusTooManyRequests, "dispense queue full")
			return
		}
		defer s.dispenseQ.Release(1)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func verifyPow(sessions *session.Store, saltHex, nonce string) (chain.Address, bool, error) {
	salt, err := decodeSalt(saltHex)
	if err != nil {
		return chain.Address{}, false, err
	}
	entry, ok := sessions.Get(salt)
	if !ok {
		return chain.Address{}, false, errUnknownSalt
	}
	if !pow.Verify([]byte(saltHex), nonce, entry.Difficulty) {
		return chain.Address{}, false, nil
	}
	return entry.Recipient, true, nil
}
