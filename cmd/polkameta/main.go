// Copyright 2025 Polkabyte Labs
// SPDX-License-Identifier: LGPL-3.0-only

package main

import (
	"os"

	"github.com/polkabyte/polkameta/cmd/polkameta/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
