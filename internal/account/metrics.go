// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package account

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts lifecycle outcomes.
type Metrics struct {
	Operations           *prometheus.CounterVec
	NotificationFailures *prometheus.CounterVec
}

// NewMetrics creates the lifecycle metrics and registers them with reg.
// A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Operations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "accounts_operations_total",
				Help: "Total number of account lifecycle operations by operation and result",
			},
			[]string{"operation", "result"},
		),
		NotificationFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "accounts_notification_failures_total",
				Help: "Total number of notifications that could not be delivered, by subject",
			},
			[]string{"subject"},
		),
	}
	if reg != nil {
		reg.MustRegister(m.Operations, m.NotificationFailures)
	}
	return m
}

func (m *Metrics) observe(operation string, err error) {
	result := "ok"
	if err != nil {
		result = KindOf(err).String()
	}
	m.Operations.WithLabelValues(operation, result).Inc()
}

func (m *Metrics) notificationFailed(subject string) {
	m.NotificationFailures.WithLabelValues(subject).Inc()
}
