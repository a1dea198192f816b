// (c) 2024, Faucet Authors. All rights reserved.
// See the file LICENSE for licensing terms.

// Package metrics holds the faucet's Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics bundles every collector the faucet exposes under /metrics.
type Metrics struct {
	DispenseRequestsTotal *prometheus.CounterVec
	DispenseDurationSecs  prometheus.Histogram
	TrackerSize           prometheus.Gauge
	SessionStoreSize      prometheus.Gauge
	NodeClientErrorsTotal *prometheus.CounterVec
	SubmissionRetries     prometheus.Counter
}

// New registers and returns the faucet's collectors against reg. Pass
// prometheus.NewRegistry() in tests to avoid collisions with the global
// default registry.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		DispenseRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "faucet",
			Name:      "dispense_requests_total",
			Help:      "Total dispense requests by terminal outcome.",
		}, []string{"outcome"}),
		DispenseDurationSecs: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "faucet",
			Name:      "dispense_duration_seconds",
			Help:      "Time from admission to terminal outcome for a dispense request.",
			Buckets:   prometheus.DefBuckets,
		}),
		TrackerSize: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "faucet",
			Name:      "tracker_eviction_queue_size",
			Help:      "Current number of entries pending eviction in the dispense tracker.",
		}),
		SessionStoreSize: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "faucet",
			Name:      "session_store_size",
			Help:      "Current number of live PoW sessions.",
		}),
		NodeClientErrorsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "faucet",
			Name:      "node_client_errors_total",
			Help:      "Total NodeClient call failures by RPC method.",
		}, []string{"method"}),
		SubmissionRetries: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "faucet",
			Name:      "submission_retries_total",
			Help:      "Total transaction resubmissions after a pipeline retry.",
		}),
	}
}
