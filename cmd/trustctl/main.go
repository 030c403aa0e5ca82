// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/luxfi/xchain/config"
	"github.com/luxfi/xchain/logging"
	"github.com/luxfi/xchain/store/badgerdb"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "trustctl",
	Short: "Inspect relayer wire data and the local trust store",
	Long: `trustctl decodes authenticated message packages and PTC proofs, validates
domain certificates held in the local trust store against the root
certificate, and resolves the TpBTA governing a cross-chain lane.`,
	Version:       fmt.Sprintf("%s (built %s)", version, buildDate),
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().AddFlagSet(config.BuildFlagSet())

	rootCmd.AddCommand(decodePackageCmd)
	rootCmd.AddCommand(decodeProofCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(idleCmd)
}

// env carries what every store-backed command needs.
type env struct {
	cfg   config.Config
	log   *zap.Logger
	store *badgerdb.Store
}

func (e *env) Close() {
	if e.store != nil {
		if err := e.store.Close(); err != nil {
			e.log.Warn("Failed to close trust store", zap.Error(err))
		}
	}
	_ = e.log.Sync()
}

func loadConfig(cmd *cobra.Command) (config.Config, *zap.Logger, error) {
	v, err := config.BuildViper(cmd.Flags())
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("couldn't configure flags: %w", err)
	}
	cfg, err := config.NewConfig(v)
	if err != nil {
		return config.Config{}, nil, err
	}
	log, err := logging.NewLogger("trustctl", logging.Options{
		Level:      cfg.LogLevel,
		File:       cfg.LogFile,
		MaxSizeMB:  cfg.LogMaxSizeMB,
		MaxBackups: cfg.LogMaxBackups,
		Console:    os.Stderr,
	})
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("couldn't build logger: %w", err)
	}
	return cfg, log, nil
}

func openEnv(cmd *cobra.Command) (*env, error) {
	cfg, log, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	store, err := badgerdb.Open(cfg.StorageLocation, false, log)
	if err != nil {
		_ = log.Sync()
		return nil, fmt.Errorf("failed to open trust store at %s: %w", cfg.StorageLocation, err)
	}
	return &env{cfg: cfg, log: log, store: store}, nil
}
