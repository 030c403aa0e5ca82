// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package config

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap/zapcore"
)

const (
	defaultLogLevel         = "info"
	defaultLogMaxSizeMB     = 100
	defaultLogMaxBackups    = 3
	defaultStorageLocation  = "./.trust-storage"
	defaultIdleThreshold    = 30 * time.Second
	defaultIdleCountLimit   = 256
	defaultTpBTACacheTTL    = 5 * time.Minute
	defaultTpBTACacheSize   = 4096
	defaultSyncRetryTimeout = 10 * time.Second
	defaultSyncConcurrency  = 8
)

var ErrInvalidConfig = errors.New("invalid configuration")

// Config is the configuration of the trust core and its tools.
type Config struct {
	LogLevel         string        `mapstructure:"log-level" json:"log-level"`
	LogFile          string        `mapstructure:"log-file" json:"log-file"`
	LogMaxSizeMB     int           `mapstructure:"log-max-size-mb" json:"log-max-size-mb"`
	LogMaxBackups    int           `mapstructure:"log-max-backups" json:"log-max-backups"`
	StorageLocation  string        `mapstructure:"storage-location" json:"storage-location"`
	RedisURL         string        `mapstructure:"redis-url" json:"redis-url"`
	IdleThreshold    time.Duration `mapstructure:"idle-threshold" json:"idle-threshold"`
	IdleCountLimit   uint32        `mapstructure:"idle-count-limit" json:"idle-count-limit"`
	TpBTACacheTTL    time.Duration `mapstructure:"tpbta-cache-ttl" json:"tpbta-cache-ttl"`
	TpBTACacheSize   int           `mapstructure:"tpbta-cache-size" json:"tpbta-cache-size"`
	SyncRetryTimeout time.Duration `mapstructure:"sync-retry-timeout" json:"sync-retry-timeout"`
	SyncConcurrency  int           `mapstructure:"sync-concurrency" json:"sync-concurrency"`
}

// Validate checks that the configuration is well-formed.
func (c *Config) Validate() error {
	if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrInvalidConfig, LogLevelKey, err)
	}
	if c.StorageLocation == "" {
		return fmt.Errorf("%w: %s is empty", ErrInvalidConfig, StorageLocationKey)
	}
	if c.LogFile != "" && (c.LogMaxSizeMB <= 0 || c.LogMaxBackups < 0) {
		return fmt.Errorf("%w: log rotation needs a positive %s", ErrInvalidConfig, LogMaxSizeMBKey)
	}
	if c.IdleCountLimit == 0 || c.IdleCountLimit&(c.IdleCountLimit-1) != 0 {
		return fmt.Errorf("%w: %s %d is not a power of two", ErrInvalidConfig, IdleCountLimitKey, c.IdleCountLimit)
	}
	for key, d := range map[string]time.Duration{
		IdleThresholdKey:    c.IdleThreshold,
		TpBTACacheTTLKey:    c.TpBTACacheTTL,
		SyncRetryTimeoutKey: c.SyncRetryTimeout,
	} {
		if d <= 0 {
			return fmt.Errorf("%w: %s must be positive, got %s", ErrInvalidConfig, key, d)
		}
	}
	if c.TpBTACacheSize <= 0 {
		return fmt.Errorf("%w: %s must be positive", ErrInvalidConfig, TpBTACacheSizeKey)
	}
	if c.SyncConcurrency <= 0 {
		return fmt.Errorf("%w: %s must be positive", ErrInvalidConfig, SyncConcurrencyKey)
	}
	return nil
}
