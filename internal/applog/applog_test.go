// (c) 2024, Faucet Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package applog

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInitReturnsUsableLogger(t *testing.T) {
	logger := Init(Options{Human: true, Filter: "debug"})
	require.NotNil(t, logger)
	logger.Info("startup", "component", "applog_test")
}

func TestInitJSONMode(t *testing.T) {
	logger := Init(Options{Human: false})
	require.NotNil(t, logger)
}

func TestInitInvalidFilterFallsBackToInfo(t *testing.T) {
	logger := Init(Options{Human: true, Filter: "not-a-level"})
	require.NotNil(t, logger)
}
