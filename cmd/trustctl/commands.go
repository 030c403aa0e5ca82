// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/luxfi/xchain"
	"github.com/luxfi/xchain/cache"
	"github.com/luxfi/xchain/cert"
	"github.com/luxfi/xchain/idle"
	"github.com/luxfi/xchain/inbound"
	"github.com/luxfi/xchain/tpbta"
	"github.com/luxfi/xchain/trust"
	"github.com/luxfi/xchain/trustsync"
	"github.com/luxfi/xchain/wire"
)

var errNoRedis = errors.New("idle state is shared through redis, set --redis-url")

func init() {
	importCmd.Flags().Bool("domain-space", false, "Import the certificates as domain-space certificates")

	validateCmd.Flags().StringSlice("domains", nil, "Domains to validate (comma separated)")
	_ = validateCmd.MarkFlagRequired("domains")

	for _, cmd := range []*cobra.Command{resolveCmd, checkCmd} {
		cmd.Flags().Int64("tpbta-version", tpbta.LatestVersion, "Pinned TpBTA version, -1 for the latest")
	}
	resolveCmd.Flags().String("sender-domain", "", "Sender domain of the lane")
	resolveCmd.Flags().String("sender-id", "", "Hex encoded 32-byte sender identity")
	resolveCmd.Flags().String("receiver-domain", "", "Receiver domain of the lane")
	resolveCmd.Flags().String("receiver-id", "", "Hex encoded 32-byte receiver identity")
	resolveCmd.Flags().Bool("exact", false, "Only look at the given lane, without falling back")
	_ = resolveCmd.MarkFlagRequired("sender-domain")

	idleCmd.Flags().String("scope", "", "Name of the polling scope")
	idleCmd.Flags().Bool("mark-activity", false, "Record activity for the scope")
	idleCmd.Flags().Bool("mark-empty", false, "Record an empty poll for the scope")
	_ = idleCmd.MarkFlagRequired("scope")
}

var decodePackageCmd = &cobra.Command{
	Use:   "decode-package <hex>",
	Short: "Decode an authenticated message package",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := decodeHex(args[0])
		if err != nil {
			return err
		}
		pkg, err := wire.DecodeAuthMsgPackage(raw)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Flags: %s\n", pkg.Flags)
		fmt.Fprintf(out, "Receiver: %x\n", pkg.ReceiverIdentity)
		fmt.Fprintf(out, "Sender Domain: %s\n", pkg.SenderDomain)
		for i := range pkg.Proofs {
			fmt.Fprintf(out, "Pair %d:\n", i)
			if i < len(pkg.Hints) {
				fmt.Fprintf(out, "  Hint: %s\n", pkg.Hints[i])
			}
			fmt.Fprintf(out, "  Proof: %s\n", pkg.Proofs[i])
			if i < len(pkg.AMPackages) {
				fmt.Fprintf(out, "  AM Package: %x\n", pkg.AMPackages[i])
			}
		}
		return nil
	},
}

var decodeProofCmd = &cobra.Command{
	Use:   "decode-proof <hex>",
	Short: "Decode a PTC proof envelope and the message it carries",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := decodeHex(args[0])
		if err != nil {
			return err
		}
		proof, err := wire.DecodeProof(raw)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Error Code: %d\n", proof.ErrorCode)
		fmt.Fprintf(out, "Error Message: %s\n", proof.ErrorMsg)
		fmt.Fprintf(out, "Sender Domain: %s\n", proof.SenderDomain)
		if proof.RequestID != "" {
			fmt.Fprintf(out, "Request: %s (lane %x)\n", proof.RequestID, proof.RequestLane)
		}
		msg, err := proof.AuthMessage()
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "AM Version: %d\n", msg.Version)
		fmt.Fprintf(out, "AM Sender: %s\n", msg.Identity)
		fmt.Fprintf(out, "AM Upper Protocol: %d\n", msg.UpperProtocol)
		fmt.Fprintf(out, "AM Payload: %x\n", msg.Payload)
		return nil
	},
}

var importCmd = &cobra.Command{
	Use:   "import <cert-file>...",
	Short: "Import encoded certificates into the trust store",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		asSpace, _ := cmd.Flags().GetBool("domain-space")
		for _, file := range args {
			raw, err := os.ReadFile(file)
			if err != nil {
				return err
			}
			c, err := cert.Decode(raw)
			if err != nil {
				return fmt.Errorf("failed to decode %s: %w", file, err)
			}
			put := e.store.PutDomainCert
			if asSpace || c.Type == cert.TypeTrustRoot {
				put = e.store.PutDomainSpaceCert
			}
			if err := put(c); err != nil {
				return fmt.Errorf("failed to import %s: %w", file, err)
			}
			e.log.Info("Imported certificate", zap.String("file", file), zap.Stringer("type", c.Type))
		}
		return nil
	},
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate domain certificates from the trust store against the root",
	RunE: func(cmd *cobra.Command, _ []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		domains, _ := cmd.Flags().GetStringSlice("domains")
		result, err := syncTrust(cmd.Context(), e, domains)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for _, domain := range domains {
			verdict := "untrusted"
			if result.Trusted(domain) {
				verdict = "trusted"
			}
			fmt.Fprintf(out, "%s: %s\n", domain, verdict)
		}
		return nil
	},
}

var resolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Resolve the TpBTA governing a lane",
	RunE: func(cmd *cobra.Command, _ []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		lane, err := laneFromFlags(cmd)
		if err != nil {
			return err
		}
		version, _ := cmd.Flags().GetInt64("tpbta-version")
		exact, _ := cmd.Flags().GetBool("exact")

		resolver := newResolver(e)
		var anchor *tpbta.TpBTA
		if exact {
			anchor, err = resolver.ResolveExact(lane, version)
		} else {
			anchor, err = resolver.ResolveMatched(lane, version)
		}
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if anchor == nil {
			fmt.Fprintf(out, "No TpBTA for %s\n", lane)
			return nil
		}
		fmt.Fprintf(out, "TpBTA: %s\n", anchor)
		fmt.Fprintf(out, "  Scope: %s\n", anchor.Scope())
		fmt.Fprintf(out, "  PTC Service: %s\n", anchor.PTCServiceID)
		fmt.Fprintf(out, "  Verify Anchor Version: %d\n", anchor.PTCVerifyAnchorVersion)
		fmt.Fprintf(out, "  Endorse Root: %x\n", anchor.EndorseRoot)
		return nil
	},
}

var checkCmd = &cobra.Command{
	Use:   "check <proof-hex>",
	Short: "Check an inbound proof against the trust store",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := decodeHex(args[0])
		if err != nil {
			return err
		}
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		proof, err := wire.DecodeProof(raw)
		if err != nil {
			return err
		}
		result, err := syncTrust(cmd.Context(), e, []string{proof.SenderDomain})
		if err != nil {
			return err
		}
		version, _ := cmd.Flags().GetInt64("tpbta-version")
		verdict, err := inbound.NewChecker(newResolver(e), result, e.log).CheckVersion(raw, version)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Lane: %s\n", verdict.Lane)
		fmt.Fprintf(out, "Sequence: %d\n", verdict.SDP.Sequence)
		fmt.Fprintf(out, "Sender Trusted: %t\n", verdict.SenderTrusted)
		if verdict.Placeholder {
			fmt.Fprintln(out, "TpBTA: none (placeholder)")
		} else {
			fmt.Fprintf(out, "TpBTA: %s\n", verdict.TpBTA)
		}
		fmt.Fprintf(out, "Accepted: %t\n", verdict.Accepted())
		return nil
	},
}

var idleCmd = &cobra.Command{
	Use:   "idle",
	Short: "Inspect or update the shared idle state of a polling scope",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, log, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		defer func() { _ = log.Sync() }()
		if cfg.RedisURL == "" {
			return errNoRedis
		}
		store, err := idle.DialRedis(cfg.RedisURL, "relayer")
		if err != nil {
			return err
		}
		defer store.Close()

		gate, err := idle.NewGate(store, idle.Options{
			Threshold:  cfg.IdleThreshold,
			CountLimit: cfg.IdleCountLimit,
		}, log, nil)
		if err != nil {
			return err
		}
		name, _ := cmd.Flags().GetString("scope")
		scope := gate.Scope(name)
		ctx := cmd.Context()
		if mark, _ := cmd.Flags().GetBool("mark-activity"); mark {
			if err := scope.MarkActivity(ctx); err != nil {
				return err
			}
		}
		if mark, _ := cmd.Flags().GetBool("mark-empty"); mark {
			if err := scope.MarkEmptyPoll(ctx); err != nil {
				return err
			}
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s idle: %t\n", scope.Name(), scope.IsIdle(ctx))
		return nil
	},
}

func syncTrust(ctx context.Context, e *env, domains []string) (*trust.ValidationResult, error) {
	root, err := e.store.GetDomainSpaceCert(ctx, xchain.RootDomainSpace)
	if err != nil {
		return nil, fmt.Errorf("failed to load root certificate: %w", err)
	}
	syncer := trustsync.NewSyncer(
		e.store,
		trust.NewValidator(e.log, nil),
		trust.NewHolder(nil),
		trustsync.Options{
			Concurrency:  e.cfg.SyncConcurrency,
			RetryTimeout: e.cfg.SyncRetryTimeout,
		},
		e.log,
	)
	result, err := syncer.Sync(ctx, root, domains)
	if result == nil {
		return nil, err
	}
	if err != nil {
		e.log.Warn("Some domains could not be fetched", zap.Error(err))
	}
	return result, nil
}

func newResolver(e *env) *tpbta.Resolver {
	c := cache.NewLRUCache[tpbta.ExactKey, *tpbta.TpBTA](e.cfg.TpBTACacheSize, e.cfg.TpBTACacheTTL)
	return tpbta.NewResolver(e.store, c, e.log, nil)
}

func laneFromFlags(cmd *cobra.Command) (xchain.CrossChainLane, error) {
	senderDomain, _ := cmd.Flags().GetString("sender-domain")
	receiverDomain, _ := cmd.Flags().GetString("receiver-domain")
	lane := xchain.NewChannelLane(senderDomain, receiverDomain)
	if receiverDomain == "" {
		lane = xchain.NewBlockchainLane(senderDomain)
	}
	var err error
	if s, _ := cmd.Flags().GetString("sender-id"); s != "" {
		if lane.SenderID, err = xchain.IdentityFromHex(s); err != nil {
			return lane, err
		}
	}
	if s, _ := cmd.Flags().GetString("receiver-id"); s != "" {
		if lane.ReceiverID, err = xchain.IdentityFromHex(s); err != nil {
			return lane, err
		}
	}
	return lane, lane.Validate()
}

func decodeHex(s string) ([]byte, error) {
	b, err := hex.DecodeString(strings.TrimPrefix(s, "0x"))
	if err != nil {
		return nil, fmt.Errorf("invalid hex input: %w", err)
	}
	return b, nil
}
