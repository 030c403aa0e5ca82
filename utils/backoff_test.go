// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package utils

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

var errFlaky = errors.New("flaky")

type mockRetryableFn struct {
	counter uint64
	trigger uint64
}

func (m *mockRetryableFn) Run() error {
	if m.counter >= m.trigger {
		return nil
	}
	m.counter++
	return errFlaky
}

func TestWithRetriesTimeout(t *testing.T) {
	t.Run("EnoughRetry", func(t *testing.T) {
		require := require.New(t)

		core, logs := observer.New(zapcore.WarnLevel)
		retryable := &mockRetryableFn{trigger: 2}
		err := WithRetriesTimeout(context.Background(), zap.New(core), retryable.Run, 5*time.Second, "fetch")
		require.NoError(err)
		require.Equal(uint64(2), retryable.counter)
		require.Equal(2, logs.FilterMessage("Operation failed, retrying").Len())
	})
	t.Run("NotEnoughTime", func(t *testing.T) {
		retryable := &mockRetryableFn{trigger: 1_000_000}
		err := WithRetriesTimeout(context.Background(), zap.NewNop(), retryable.Run, 200*time.Millisecond, "fetch")
		require.ErrorIs(t, err, errFlaky)
	})
	t.Run("Permanent", func(t *testing.T) {
		require := require.New(t)

		calls := 0
		err := WithRetriesTimeout(context.Background(), zap.NewNop(), func() error {
			calls++
			return backoff.Permanent(errFlaky)
		}, 5*time.Second, "fetch")
		require.ErrorIs(err, errFlaky)
		require.Equal(1, calls)
	})
	t.Run("Canceled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		retryable := &mockRetryableFn{trigger: 1_000_000}
		err := WithRetriesTimeout(ctx, zap.NewNop(), retryable.Run, 5*time.Second, "fetch")
		require.Error(t, err)
	})
}
