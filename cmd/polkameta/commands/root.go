// Copyright 2025 Polkabyte Labs
// SPDX-License-Identifier: LGPL-3.0-only

// Package commands implements the polkameta command line interface:
// inspection, stripping and storage-key derivation for runtime
// metadata blobs.
package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/polkabyte/polkameta/lib/common"
	"github.com/polkabyte/polkameta/lib/metadata"
)

var logger *zap.Logger

// NewRootCommand builds the root command with all subcommands wired.
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "polkameta",
		Short:         "metadata-driven storage addressing for substrate runtimes",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := viper.BindPFlags(cmd.Flags()); err != nil {
				return err
			}
			return setupLogger(viper.GetString("log-level"))
		},
	}

	cmd.PersistentFlags().String("metadata", "", "path to a metadata blob (raw SCALE or 0x-prefixed hex)")
	cmd.PersistentFlags().String("log-level", "info", "log level: debug, info, warn, error")

	cmd.AddCommand(
		newPalletsCommand(),
		newStripCommand(),
		newStorageKeyCommand(),
	)
	return cmd
}

// Execute runs the CLI.
func Execute() error {
	return NewRootCommand().Execute()
}

func setupLogger(level string) error {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("parsing log level: %w", err)
	}
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	logger, err = cfg.Build()
	return err
}

// loadMetadata reads a metadata blob from the --metadata path and
// builds the model. Files containing 0x-prefixed hex (the usual output
// of state_getMetadata) are decoded first.
func loadMetadata(cmd *cobra.Command) (*metadata.Metadata, error) {
	path, err := cmd.Flags().GetString("metadata")
	if err != nil {
		return nil, err
	}
	if path == "" {
		return nil, fmt.Errorf("--metadata is required")
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading metadata blob: %w", err)
	}

	blob := raw
	if trimmed := strings.TrimSpace(string(raw)); strings.HasPrefix(trimmed, "0x") {
		blob, err = common.HexToBytes(trimmed)
		if err != nil {
			return nil, fmt.Errorf("decoding hex metadata blob: %w", err)
		}
	}

	md, err := metadata.FromBlob(blob)
	if err != nil {
		return nil, fmt.Errorf("decoding metadata: %w", err)
	}
	logger.Debug("metadata decoded",
		zap.Uint8("version", md.Version()),
		zap.Int("pallets", len(md.Pallets())),
		zap.Int("types", md.Types().Len()),
	)
	return md, nil
}
