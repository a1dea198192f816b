// (c) 2024, Faucet Authors. All rights reserved.
// See the file LICENSE for licensing terms.

// Package applog wires the faucet's structured logging onto
// go-ethereum/log, the same slog-backed logger the teacher's command
// entrypoints configure via log.SetDefault.
package applog

import (
	"log/slog"
	"os"

	"github.com/ethereum/go-ethereum/log"
)

// Options controls how Init configures the default logger.
type Options struct {
	// Human selects a colorized terminal handler; false selects JSON,
	// mirroring spec.md §6's HUMAN_LOGGING toggle.
	Human bool
	// Filter is a go-ethereum log level name (trace/debug/info/warn/error/crit).
	// Empty defaults to info.
	Filter string
}

// Init configures and installs the process-wide default logger,
// returning it for components that want an explicit handle instead of
// calling the package-level log.Info/log.Error helpers.
func Init(opts Options) log.Logger {
	level := log.LevelInfo
	if opts.Filter != "" {
		if parsed, err := log.LvlFromString(opts.Filter); err == nil {
			level = parsed
		}
	}

	var handler slog.Handler
	if opts.Human {
		handler = log.NewTerminalHandlerWithLevel(os.Stderr, level, true)
	} else {
		handler = log.JSONHandlerWithLevel(os.Stderr, level)
	}

	logger := log.NewLogger(handler)
	log.SetDefault(logger)
	return logger
}
