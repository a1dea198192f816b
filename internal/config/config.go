// (c) 2024, Faucet Authors. All rights reserved.
// See the file LICENSE for licensing terms.

// Package config loads the faucet's environment configuration (spec.md
// §6) via viper, the teacher's own config-layer dependency.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

// Config holds every environment-tunable knob the faucet reads at
// startup. Field names mirror spec.md §6's environment variable table.
type Config struct {
	Port                 uint16
	FuelNodeURL          string
	PublicFuelNodeURL    string
	WalletSecretKey      string
	DispenseAmount       uint64
	DispenseLimitWindow  time.Duration
	MinGasPrice          uint64
	Timeout              time.Duration
	PowDifficulty        uint8
	CaptchaSecret        string
	ClerkSecretKey       string
	ClerkPublishableKey  string
	HumanLogging         bool
	LogFilter            string
	NumberOfRetries      uint64
	MaxConcurrentRequests int64
}

// Load reads environment variables into a Config, applying spec.md §6's
// defaults for anything unset.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := map[string]any{
		"port":                     3000,
		"fuel_node_url":            "http://127.0.0.1:4000",
		"dispense_amount":          10_000_000,
		"dispense_limit_interval":  86_400,
		"min_gas_price":            0,
		"timeout_seconds":          30,
		"pow_difficulty":           20,
		"human_logging":            true,
		"number_of_retries":        5,
		"max_concurrent_requests":  1024,
	}
	for key, val := range defaults {
		v.SetDefault(key, val)
	}

	for _, key := range []string{
		"port", "fuel_node_url", "public_fuel_node_url", "wallet_secret_key",
		"dispense_amount", "dispense_limit_interval", "min_gas_price",
		"timeout_seconds", "pow_difficulty", "captcha_secret", "captcha_key",
		"clerk_secret_key", "clerk_pub_key", "human_logging", "log_filter",
		"number_of_retries", "max_concurrent_requests",
	} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	publicURL := v.GetString("public_fuel_node_url")
	if publicURL == "" {
		publicURL = v.GetString("fuel_node_url")
	}

	captchaSecret := v.GetString("captcha_secret")
	if captchaSecret == "" {
		captchaSecret = v.GetString("captcha_key")
	}

	difficulty, err := cast.ToUint8E(v.Get("pow_difficulty"))
	if err != nil {
		return nil, fmt.Errorf("parse POW_DIFFICULTY: %w", err)
	}
	port, err := cast.ToUint16E(v.Get("port"))
	if err != nil {
		return nil, fmt.Errorf("parse PORT: %w", err)
	}

	return &Config{
		Port:                  port,
		FuelNodeURL:           v.GetString("fuel_node_url"),
		PublicFuelNodeURL:     publicURL,
		WalletSecretKey:       v.GetString("wallet_secret_key"),
		DispenseAmount:        v.GetUint64("dispense_amount"),
		DispenseLimitWindow:   time.Duration(v.GetInt64("dispense_limit_interval")) * time.Second,
		MinGasPrice:           v.GetUint64("min_gas_price"),
		Timeout:               time.Duration(v.GetInt64("timeout_seconds")) * time.Second,
		PowDifficulty:         difficulty,
		CaptchaSecret:         captchaSecret,
		ClerkSecretKey:        v.GetString("clerk_secret_key"),
		ClerkPublishableKey:   v.GetString("clerk_pub_key"),
		HumanLogging:          v.GetBool("human_logging"),
		LogFilter:             v.GetString("log_filter"),
		NumberOfRetries:       v.GetUint64("number_of_retries"),
		MaxConcurrentRequests: v.GetInt64("max_concurrent_requests"),
	}, nil
}
