// (c) 2024, Faucet Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/require"
)

func TestDispenseRequestsTotalIncrements(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.DispenseRequestsTotal.WithLabelValues("success").Inc()
	m.DispenseRequestsTotal.WithLabelValues("success").Inc()
	m.DispenseRequestsTotal.WithLabelValues("overloaded").Inc()

	families, err := reg.Gather()
	require.NoError(t, err)

	var found *dto.MetricFamily
	for _, f := range families {
		if f.GetName() == "faucet_dispense_requests_total" {
			found = f
		}
	}
	require.NotNil(t, found)
	require.Len(t, found.Metric, 2)
}

func TestGaugesSettable(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.TrackerSize.Set(5)
	m.SessionStoreSize.Set(3)

	require.Equal(t, float64(5), testGaugeValue(t, m.TrackerSize))
	require.Equal(t, float64(3), testGaugeValue(t, m.SessionStoreSize))
}

func testGaugeValue(t *testing.T, g prometheus.Gauge) float64 {
	t.Helper()
	var metric dto.Metric
	require.NoError(t, g.Write(&metric))
	return metric.GetGauge().GetValue()
}
