// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package tpbta

import (
	"github.com/prometheus/client_golang/prometheus"
)

// ResolverMetrics is optional. A nil *ResolverMetrics records nothing.
type ResolverMetrics struct {
	resolutionCount *prometheus.CounterVec
	cacheHitCount   prometheus.Counter
}

func NewResolverMetrics(registerer prometheus.Registerer) *ResolverMetrics {
	m := ResolverMetrics{
		resolutionCount: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tpbta_resolution_count",
				Help: "Number of tpbta resolutions by kind and outcome",
			},
			[]string{"kind", "outcome"},
		),
		cacheHitCount: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "tpbta_cache_hit_count",
				Help: "Number of exact tpbta lookups served from cache",
			},
		),
	}

	registerer.MustRegister(m.resolutionCount)
	registerer.MustRegister(m.cacheHitCount)

	return &m
}

func (m *ResolverMetrics) resolved(kind string, found bool) {
	if m == nil {
		return
	}
	outcome := "miss"
	if found {
		outcome = "found"
	}
	m.resolutionCount.WithLabelValues(kind, outcome).Inc()
}

func (m *ResolverMetrics) cacheHit() {
	if m != nil {
		m.cacheHitCount.Inc()
	}
}
