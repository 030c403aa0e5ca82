// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package config

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

func NewConfig(v *viper.Viper) (Config, error) {
	cfg, err := BuildConfig(v)
	if err != nil {
		return cfg, err
	}
	if err = cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("failed to validate configuration: %w", err)
	}
	return cfg, nil
}

// BuildFlagSet declares a flag for every configuration key.
func BuildFlagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet("trust", pflag.ContinueOnError)
	fs.String(ConfigFileKey, "", "Path to an optional JSON config file")
	fs.String(LogLevelKey, defaultLogLevel, "Log level: debug, info, warn or error")
	fs.String(LogFileKey, "", "Also write logs to this rolling file")
	fs.Int(LogMaxSizeMBKey, defaultLogMaxSizeMB, "Size in megabytes at which the log file rolls")
	fs.Int(LogMaxBackupsKey, defaultLogMaxBackups, "Number of rolled log files to keep")
	fs.String(StorageLocationKey, defaultStorageLocation, "Directory of the certificate and tpbta database")
	fs.String(RedisURLKey, "", "Redis URL of the shared idle gate store")
	fs.Duration(IdleThresholdKey, defaultIdleThreshold, "Quiet period after which a scope is idle")
	fs.Uint32(IdleCountLimitKey, defaultIdleCountLimit, "Every n-th idle check forces a poll (power of two)")
	fs.Duration(TpBTACacheTTLKey, defaultTpBTACacheTTL, "Lifetime of cached exact tpbta lookups")
	fs.Int(TpBTACacheSizeKey, defaultTpBTACacheSize, "Number of exact tpbta lookups kept in cache")
	fs.Duration(SyncRetryTimeoutKey, defaultSyncRetryTimeout, "How long certificate lookups are retried")
	fs.Int(SyncConcurrencyKey, defaultSyncConcurrency, "Number of domains fetched concurrently")
	return fs
}

// BuildViper binds fs and the environment. Flag names map to environment
// variables by upper-casing and replacing hyphens with underscores. The
// config file is read only when one is given.
func BuildViper(fs *pflag.FlagSet) (*viper.Viper, error) {
	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	if err := v.BindPFlags(fs); err != nil {
		return nil, err
	}

	if filename := v.GetString(ConfigFileKey); filename != "" {
		v.SetConfigFile(filename)
		v.SetConfigType("json")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", filename, err)
		}
	}
	return v, nil
}

func SetDefaultConfigValues(v *viper.Viper) {
	v.SetDefault(LogLevelKey, defaultLogLevel)
	v.SetDefault(LogMaxSizeMBKey, defaultLogMaxSizeMB)
	v.SetDefault(LogMaxBackupsKey, defaultLogMaxBackups)
	v.SetDefault(StorageLocationKey, defaultStorageLocation)
	v.SetDefault(IdleThresholdKey, defaultIdleThreshold)
	v.SetDefault(IdleCountLimitKey, defaultIdleCountLimit)
	v.SetDefault(TpBTACacheTTLKey, defaultTpBTACacheTTL)
	v.SetDefault(TpBTACacheSizeKey, defaultTpBTACacheSize)
	v.SetDefault(SyncRetryTimeoutKey, defaultSyncRetryTimeout)
	v.SetDefault(SyncConcurrencyKey, defaultSyncConcurrency)
}

// BuildConfig constructs the config using Viper.
// The following precedence order is used. Each item takes precedence over the item below it:
//  1. Flags
//  2. Environment
//  3. Config file
//  4. Defaults
func BuildConfig(v *viper.Viper) (Config, error) {
	SetDefaultConfigValues(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("failed to unmarshal viper config: %w", err)
	}
	return cfg, nil
}
