// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package idle lets polling loops skip work while a scope has seen no
// arrivals. It is a load-shedding hint only: reads and writes race freely and
// every CountLimit-th check reports not idle so a scope is always re-polled
// eventually.
package idle

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultThreshold  = 30 * time.Second
	DefaultCountLimit = 256
)

var ErrInvalidOptions = errors.New("invalid idle gate options")

type Options struct {
	// Threshold is how far the last empty poll must trail the last activity
	// for a scope to be idle. Zero means DefaultThreshold.
	Threshold time.Duration
	// CountLimit must be a power of two. Zero means DefaultCountLimit.
	CountLimit uint32
	// Now defaults to time.Now.
	Now func() time.Time
}

type Gate struct {
	store     Store
	threshold time.Duration
	mask      uint32
	now       func() time.Time
	log       *zap.Logger
	metrics   *GateMetrics

	scopes sync.Map // string -> *Scope
}

func NewGate(store Store, opts Options, log *zap.Logger, metrics *GateMetrics) (*Gate, error) {
	if opts.Threshold == 0 {
		opts.Threshold = DefaultThreshold
	}
	if opts.CountLimit == 0 {
		opts.CountLimit = DefaultCountLimit
	}
	if opts.Threshold < 0 {
		return nil, fmt.Errorf("%w: negative threshold %s", ErrInvalidOptions, opts.Threshold)
	}
	if opts.CountLimit&(opts.CountLimit-1) != 0 {
		return nil, fmt.Errorf("%w: count limit %d is not a power of two", ErrInvalidOptions, opts.CountLimit)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Gate{
		store:     store,
		threshold: opts.Threshold,
		mask:      opts.CountLimit - 1,
		now:       opts.Now,
		log:       log,
		metrics:   metrics,
	}, nil
}

// Scope returns the handle for name, creating it on first use. Handles are
// safe to keep and share.
func (g *Gate) Scope(name string) *Scope {
	if s, ok := g.scopes.Load(name); ok {
		return s.(*Scope)
	}
	s, _ := g.scopes.LoadOrStore(name, &Scope{
		name:        name,
		gate:        g,
		activityKey: name + ":activity",
		emptyKey:    name + ":empty",
	})
	return s.(*Scope)
}

func (g *Gate) MarkActivity(ctx context.Context, scope string) error {
	return g.Scope(scope).MarkActivity(ctx)
}

func (g *Gate) MarkEmptyPoll(ctx context.Context, scope string) error {
	return g.Scope(scope).MarkEmptyPoll(ctx)
}

func (g *Gate) IsIdle(ctx context.Context, scope string) bool {
	return g.Scope(scope).IsIdle(ctx)
}

// Scope is the idle state of one polling scope. Its check counter lives in
// local memory only and wraps freely.
type Scope struct {
	name        string
	gate        *Gate
	activityKey string
	emptyKey    string
	checks      atomic.Uint32
}

func (s *Scope) Name() string {
	return s.name
}

func (s *Scope) MarkActivity(ctx context.Context) error {
	return s.mark(ctx, s.activityKey)
}

func (s *Scope) MarkEmptyPoll(ctx context.Context) error {
	return s.mark(ctx, s.emptyKey)
}

func (s *Scope) mark(ctx context.Context, key string) error {
	if err := s.gate.store.Set(ctx, key, s.gate.now().UnixMilli()); err != nil {
		s.gate.metrics.storeFailure()
		return fmt.Errorf("failed to record %s: %w", key, err)
	}
	return nil
}

// IsIdle reports whether the last empty poll trails the last activity by
// more than the threshold. Store failures and missing empty polls report
// not idle.
func (s *Scope) IsIdle(ctx context.Context) bool {
	if s.checks.Add(1)&s.gate.mask == 0 {
		s.gate.metrics.forcedRepoll()
		s.gate.metrics.checked(false)
		return false
	}
	idle := s.idle(ctx)
	s.gate.metrics.checked(idle)
	return idle
}

func (s *Scope) idle(ctx context.Context) bool {
	lastEmpty, ok, err := s.gate.store.Get(ctx, s.emptyKey)
	if err != nil {
		s.readFailed(err)
		return false
	}
	if !ok {
		return false
	}
	lastActivity, _, err := s.gate.store.Get(ctx, s.activityKey)
	if err != nil {
		s.readFailed(err)
		return false
	}
	return time.Duration(lastEmpty-lastActivity)*time.Millisecond > s.gate.threshold
}

func (s *Scope) readFailed(err error) {
	s.gate.metrics.storeFailure()
	s.gate.log.Warn(
		"Failed to read idle state",
		zap.String("scope", s.name),
		zap.Error(err),
	)
}
