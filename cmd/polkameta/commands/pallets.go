// Copyright 2025 Polkabyte Labs
// SPDX-License-Identifier: LGPL-3.0-only

package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newPalletsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "pallets",
		Short: "list the pallets of a metadata blob",
		RunE:  execPallets,
	}
}

func execPallets(cmd *cobra.Command, _ []string) error {
	md, err := loadMetadata(cmd)
	if err != nil {
		return err
	}

	for i := range md.Pallets() {
		p := &md.Pallets()[i]

		entries := 0
		if p.Storage() != nil {
			entries = len(p.Storage().Entries())
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%3d  %-24s storage=%-3d calls=%-3d events=%-3d errors=%-3d constants=%d\n",
			p.Index(), p.Name(), entries,
			p.Calls().Len(), p.Events().Len(), p.Errors().Len(),
			len(p.Constants()))
	}

	for i := range md.APIs() {
		api := &md.APIs()[i]
		fmt.Fprintf(cmd.OutOrStdout(), "api  %-24s methods=%d\n", api.Name(), len(api.Methods()))
	}
	return nil
}
