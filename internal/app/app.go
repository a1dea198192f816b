// (c) 2024, Faucet Authors. All rights reserved.
// See the file LICENSE for licensing terms.

// Package app is AppAssembly (C11): it wires Clock, Tracker,
// FaucetState, WalletSigner, NodeClient, SessionStore, AuthAdapter, and
// the HTTP surface into a runnable process, and owns its start/stop
// lifecycle.
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/chainfaucet/faucet/internal/api"
	"github.com/chainfaucet/faucet/internal/authadapter"
	"github.com/chainfaucet/faucet/internal/captcha"
	"github.com/chainfaucet/faucet/internal/clock"
	"github.com/chainfaucet/faucet/internal/config"
	"github.com/chainfaucet/faucet/internal/dispense"
	"github.com/chainfaucet/faucet/internal/faucetstate"
	"github.com/chainfaucet/faucet/internal/metrics"
	"github.com/chainfaucet/faucet/internal/nodeclient"
	"github.com/chainfaucet/faucet/internal/session"
	"github.com/chainfaucet/faucet/internal/tracker"
	"github.com/chainfaucet/faucet/internal/wallet"
)

// App bundles every long-lived component and the composed HTTP server.
type App struct {
	cfg           *config.Config
	node          *nodeclient.RPCClient
	server        *http.Server
	metrics       *metrics.Metrics
	metricsServer *http.Server
}

// New dials the node, builds every component, and assembles the HTTP
// server. It does not start listening — call Run for that.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	node, err := nodeclient.Dial(ctx, cfg.FuelNodeURL)
	if err != nil {
		return nil, fmt.Errorf("dial node: %w", err)
	}

	infoCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()
	chainInfo, err := node.ChainInfo(infoCtx)
	if err != nil {
		node.Close()
		return nil, fmt.Errorf("fetch chain info: %w", err)
	}

	secretKey := cfg.WalletSecretKey
	if secretKey == "" {
		secretKey, err = wallet.DevPrivateKeyHex()
		if err != nil {
			node.Close()
			return nil, fmt.Errorf("derive dev wallet key: %w", err)
		}
		log.Warn("WALLET_SECRET_KEY unset, using dev key")
	}
	signer, err := wallet.NewSigner(secretKey, 0)
	if err != nil {
		node.Close()
		return nil, fmt.Errorf("build wallet signer: %w", err)
	}
	log.Info("faucet wallet address", "address", signer.Address().Hex())

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	tr := tracker.New(clock.Real())
	state := faucetstate.New(faucetstate.Config{MinPriority: cfg.MinGasPrice, MaxDepth: chainInfo.MaxDepth})

	sessions, err := session.New(session.DefaultCapacity)
	if err != nil {
		node.Close()
		return nil, fmt.Errorf("build session store: %w", err)
	}

	var authAdapter authadapter.AuthAdapter = authadapter.StaticAdapter{}
	if cfg.ClerkSecretKey != "" {
		authAdapter = authadapter.NewClerkAdapter(cfg.ClerkSecretKey)
	}

	var captchaVerifier captcha.Verifier = captcha.NoopVerifier{}
	if cfg.CaptchaSecret != "" {
		captchaVerifier = captcha.NewRecaptchaVerifier(cfg.CaptchaSecret)
	}

	svc := dispense.New(dispense.Config{
		DispenseAmount: cfg.DispenseAmount,
		Window:         cfg.DispenseLimitWindow,
		Timeout:        cfg.Timeout,
		Retries:        cfg.NumberOfRetries,
	}, tr, state, signer, node, m)

	httpServer := api.New(api.Config{
		DispenseAmount:        cfg.DispenseAmount,
		PowDifficulty:         uint(cfg.PowDifficulty),
		Timeout:               cfg.Timeout,
		MaxConcurrentRequests: cfg.MaxConcurrentRequests,
		MaxDepth:              chainInfo.MaxDepth,
		NodeURL:               cfg.FuelNodeURL,
		PublicNodeURL:         cfg.PublicFuelNodeURL,
	}, svc, node, sessions, authAdapter, captchaVerifier, m)

	return &App{
		cfg:     cfg,
		node:    node,
		metrics: m,
		server: &http.Server{
			Addr:    fmt.Sprintf(":%d", cfg.Port),
			Handler: httpServer.Handler(),
		},
		metricsServer: &http.Server{
			Addr:    fmt.Sprintf(":%d", cfg.Port+1),
			Handler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		},
	}, nil
}

// Run starts serving and blocks until ctx is canceled, then shuts down
// both listeners within a bounded grace period, mirroring the
// background-worker + http.Server shutdown sequencing the rate-limiter
// example's main.go uses.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 2)

	go func() {
		log.Info("faucet listening", "addr", a.server.Addr)
		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("http server: %w", err)
			return
		}
		errCh <- nil
	}()
	go func() {
		log.Info("metrics listening", "addr", a.metricsServer.Addr)
		if err := a.metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("metrics server: %w", err)
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			a.Close()
			return err
		}
	}

	return a.Close()
}

// Close shuts both listeners down gracefully and releases the node
// client connection.
func (a *App) Close() error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := a.server.Shutdown(shutdownCtx); err != nil {
		log.Error("http server shutdown error", "err", err)
	}
	if err := a.metricsServer.Shutdown(shutdownCtx); err != nil {
		log.Error("metrics server shutdown error", "err", err)
	}
	a.node.Close()
	return nil
}
