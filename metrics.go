// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package mcmin

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "mcmin"

// Metrics of compression attempts.
type Metrics struct {
	// Attempts counts finished attempts by algorithm and status.
	Attempts *prometheus.CounterVec

	// Duration of attempts by algorithm.
	Duration *prometheus.HistogramVec

	// Entries is the table size of the last attempt, stage input or output.
	Entries *prometheus.GaugeVec
}

// NewMetrics creates the metrics and registers them with reg,
// a nil reg skips registration.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Attempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "attempts_total",
			Help:      "Number of finished compression attempts",
		}, []string{"algorithm", "status"}),

		Duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "attempt_duration_seconds",
			Help:      "Duration of compression attempts",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
		}, []string{"algorithm"}),

		Entries: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "table_entries",
			Help:      "Table size of the last compression attempt",
		}, []string{"stage"}),
	}

	if reg != nil {
		reg.MustRegister(m.Attempts, m.Duration, m.Entries)
	}
	return m
}

// observe records one finished attempt, nil receivers are no-ops.
func (m *Metrics) observe(res Result, d time.Duration) {
	if m == nil {
		return
	}
	algo := res.Stats.Algorithm.String()

	m.Attempts.WithLabelValues(algo, res.Status.String()).Inc()
	m.Duration.WithLabelValues(algo).Observe(d.Seconds())
	m.Entries.WithLabelValues("input").Set(float64(res.Stats.InputEntries))
	if res.Entries != nil {
		m.Entries.WithLabelValues("output").Set(float64(res.Stats.OutputEntries))
	}
}
