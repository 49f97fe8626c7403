// Copyright 2025 Polkabyte Labs
// SPDX-License-Identifier: LGPL-3.0-only

package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/polkabyte/polkameta/lib/metadata"
)

func newStripCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "strip",
		Short: "strip a metadata blob down to selected pallets and runtime APIs",
		Long: "strip decodes a metadata blob, drops every pallet and runtime API " +
			"not named, prunes the type registry to what the remainder references " +
			"and writes the blob back out in its original wire version.",
		RunE: execStrip,
	}
	cmd.Flags().StringSlice("pallets", nil, "pallet names to keep (default: all)")
	cmd.Flags().StringSlice("apis", nil, "runtime API names to keep (default: all)")
	cmd.Flags().String("output", "", "path for the stripped blob")
	return cmd
}

func execStrip(cmd *cobra.Command, _ []string) error {
	md, err := loadMetadata(cmd)
	if err != nil {
		return err
	}

	output, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}
	if output == "" {
		return fmt.Errorf("--output is required")
	}
	pallets, err := cmd.Flags().GetStringSlice("pallets")
	if err != nil {
		return err
	}
	apis, err := cmd.Flags().GetStringSlice("apis")
	if err != nil {
		return err
	}

	stripped := metadata.Retain(md, keepNamed(pallets), keepNamed(apis))

	wire, err := stripped.ToWire()
	if err != nil {
		return fmt.Errorf("converting back to wire format: %w", err)
	}
	blob, err := wire.Encode()
	if err != nil {
		return fmt.Errorf("encoding stripped metadata: %w", err)
	}
	if err := os.WriteFile(output, blob, 0o600); err != nil {
		return fmt.Errorf("writing stripped blob: %w", err)
	}

	logger.Info("metadata stripped",
		zap.Int("pallets", len(stripped.Pallets())),
		zap.Int("apis", len(stripped.APIs())),
		zap.Int("types", stripped.Types().Len()),
		zap.Int("bytes", len(blob)),
		zap.String("output", output),
	)
	return nil
}

// keepNamed builds a retention predicate: an empty selection keeps
// everything.
func keepNamed(names []string) func(string) bool {
	if len(names) == 0 {
		return func(string) bool { return true }
	}
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return func(name string) bool {
		_, ok := set[name]
		return ok
	}
}
