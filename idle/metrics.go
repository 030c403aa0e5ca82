// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package idle

import (
	"github.com/prometheus/client_golang/prometheus"
)

// GateMetrics is optional. A nil *GateMetrics records nothing.
type GateMetrics struct {
	idleCount         *prometheus.CounterVec
	forcedRepollCount prometheus.Counter
	storeFailureCount prometheus.Counter
}

func NewGateMetrics(registerer prometheus.Registerer) *GateMetrics {
	m := GateMetrics{
		idleCount: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "idle_gate_check_count",
				Help: "Number of idle checks by result",
			},
			[]string{"idle"},
		),
		forcedRepollCount: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "idle_gate_forced_repoll_count",
				Help: "Number of idle checks overridden by the periodic repoll",
			},
		),
		storeFailureCount: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "idle_gate_store_failure_count",
				Help: "Number of idle store reads or writes that failed",
			},
		),
	}

	registerer.MustRegister(m.idleCount)
	registerer.MustRegister(m.forcedRepollCount)
	registerer.MustRegister(m.storeFailureCount)

	return &m
}

func (m *GateMetrics) checked(idle bool) {
	if m == nil {
		return
	}
	label := "false"
	if idle {
		label = "true"
	}
	m.idleCount.WithLabelValues(label).Inc()
}

func (m *GateMetrics) forcedRepoll() {
	if m != nil {
		m.forcedRepollCount.Inc()
	}
}

func (m *GateMetrics) storeFailure() {
	if m != nil {
		m.storeFailureCount.Inc()
	}
}
