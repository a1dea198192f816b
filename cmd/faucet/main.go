// (c) 2024, Faucet Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ethereum/go-ethereum/log"
	"github.com/urfave/cli/v2"

	"github.com/chainfaucet/faucet/internal/app"
	"github.com/chainfaucet/faucet/internal/applog"
	"github.com/chainfaucet/faucet/internal/config"
)

var (
	humanLoggingFlag = &cli.BoolFlag{
		Name:  "human-logging",
		Usage: "Use a colorized terminal log handler instead of JSON",
	}
	logFilterFlag = &cli.StringFlag{
		Name:  "log-filter",
		Usage: "Log level filter (trace/debug/info/warn/error/crit)",
	}
)

func main() {
	cliApp := &cli.App{
		Name:   "faucet",
		Usage:  "run the token faucet HTTP service",
		Flags:  []cli.Flag{humanLoggingFlag, logFilterFlag},
		Action: run,
	}
	if err := cliApp.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if c.IsSet(humanLoggingFlag.Name) {
		cfg.HumanLogging = c.Bool(humanLoggingFlag.Name)
	}
	if c.IsSet(logFilterFlag.Name) {
		cfg.LogFilter = c.String(logFilterFlag.Name)
	}
	applog.Init(applog.Options{Human: cfg.HumanLogging, Filter: cfg.LogFilter})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	faucet, err := app.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("assemble faucet: %w", err)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Info("shutdown signal received")
		cancel()
	}()

	return faucet.Run(ctx)
}
