// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package config

const (
	ConfigFileKey = "config-file"

	LogLevelKey         = "log-level"
	LogFileKey          = "log-file"
	LogMaxSizeMBKey     = "log-max-size-mb"
	LogMaxBackupsKey    = "log-max-backups"
	StorageLocationKey  = "storage-location"
	RedisURLKey         = "redis-url"
	IdleThresholdKey    = "idle-threshold"
	IdleCountLimitKey   = "idle-count-limit"
	TpBTACacheTTLKey    = "tpbta-cache-ttl"
	TpBTACacheSizeKey   = "tpbta-cache-size"
	SyncRetryTimeoutKey = "sync-retry-timeout"
	SyncConcurrencyKey  = "sync-concurrency"
)
