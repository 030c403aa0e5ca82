// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package trust

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/luxfi/xchain/cert"
)

// ValidatorMetrics is optional. A nil *ValidatorMetrics records nothing.
type ValidatorMetrics struct {
	acceptedEntryCount prometheus.Counter
	rejectedEntryCount *prometheus.CounterVec
	rootMismatchCount  prometheus.Counter
}

func NewValidatorMetrics(registerer prometheus.Registerer) *ValidatorMetrics {
	m := ValidatorMetrics{
		acceptedEntryCount: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "trust_validated_blockchain_count",
				Help: "Number of blockchain entries that chained up to the local root",
			},
		),
		rejectedEntryCount: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "trust_rejected_blockchain_count",
				Help: "Number of blockchain entries excluded from a validation result",
			},
			[]string{"reason"},
		),
		rootMismatchCount: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "trust_root_mismatch_count",
				Help: "Number of validations aborted by a foreign trust root",
			},
		),
	}

	registerer.MustRegister(m.acceptedEntryCount)
	registerer.MustRegister(m.rejectedEntryCount)
	registerer.MustRegister(m.rootMismatchCount)

	return &m
}

func (m *ValidatorMetrics) accepted() {
	if m != nil {
		m.acceptedEntryCount.Inc()
	}
}

func (m *ValidatorMetrics) rejected(err error) {
	if m != nil {
		m.rejectedEntryCount.WithLabelValues(rejectReason(err)).Inc()
	}
}

func (m *ValidatorMetrics) rootMismatch() {
	if m != nil {
		m.rootMismatchCount.Inc()
	}
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, ErrMissingDomainSpace):
		return "missing_domain_space"
	case errors.Is(err, ErrNotAncestor):
		return "not_ancestor"
	case errors.Is(err, ErrNameMismatch):
		return "name_mismatch"
	case errors.Is(err, ErrIssuerMismatch):
		return "issuer_mismatch"
	case errors.Is(err, ErrParentMismatch):
		return "parent_mismatch"
	case errors.Is(err, ErrNameTypeMismatch):
		return "name_type_mismatch"
	case errors.Is(err, cert.ErrInvalidSignature), errors.Is(err, cert.ErrHashMismatch):
		return "bad_signature"
	default:
		return "malformed"
	}
}
