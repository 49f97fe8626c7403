// Copyright 2025 Polkabyte Labs
// SPDX-License-Identifier: LGPL-3.0-only

package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/polkabyte/polkameta/lib/common"
	"github.com/polkabyte/polkameta/lib/metadata"
	"github.com/polkabyte/polkameta/lib/scalevalue"
	"github.com/polkabyte/polkameta/lib/storage"
)

func newStorageKeyCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "storage-key <pallet> <entry>",
		Short: "derive or reverse a storage key",
		Long: "storage-key derives the storage key for a pallet entry. Key field " +
			"values are passed with --key as 0x-prefixed SCALE bytes, one flag per " +
			"field in declared order; fewer fields than the entry's arity yield a " +
			"prefix key. With --parse, an existing key is decoded back into its " +
			"field values instead.",
		Args: cobra.ExactArgs(2),
		RunE: execStorageKey,
	}
	cmd.Flags().StringArray("key", nil, "SCALE-encoded key field value (repeatable)")
	cmd.Flags().String("parse", "", "0x-prefixed storage key to decode instead of encoding")
	return cmd
}

func execStorageKey(cmd *cobra.Command, args []string) error {
	md, err := loadMetadata(cmd)
	if err != nil {
		return err
	}
	pallet, entry := args[0], args[1]

	if parse, _ := cmd.Flags().GetString("parse"); parse != "" {
		raw, err := common.HexToBytes(parse)
		if err != nil {
			return fmt.Errorf("decoding --parse: %w", err)
		}
		values, ok, err := storage.DecodeKey(md, pallet, entry, raw)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%s.%s uses an irreversible hasher, key values cannot be reconstructed", pallet, entry)
		}
		for i, v := range values {
			fmt.Fprintf(cmd.OutOrStdout(), "key[%d] = %s\n", i, v)
		}
		return nil
	}

	keys, err := keyValues(cmd, md, pallet, entry)
	if err != nil {
		return err
	}
	key, err := storage.EncodeKey(md, pallet, entry, keys...)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), common.BytesToHex(key))
	return nil
}

// keyValues decodes the --key flags against the entry's key field
// types, in declared order.
func keyValues(cmd *cobra.Command, md *metadata.Metadata, pallet, entry string) ([]scalevalue.Value, error) {
	raw, err := cmd.Flags().GetStringArray("key")
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, nil
	}

	p, err := md.Pallet(pallet)
	if err != nil {
		return nil, err
	}
	e, err := p.StorageEntry(entry)
	if err != nil {
		return nil, err
	}
	fields, err := storage.HashersAndTypes(e, md.Types())
	if err != nil {
		return nil, err
	}
	if len(raw) > len(fields) {
		return nil, fmt.Errorf("%w: %s.%s takes at most %d --key flags, got %d",
			storage.ErrWrongNumberOfKeys, pallet, entry, len(fields), len(raw))
	}

	values := make([]scalevalue.Value, 0, len(raw))
	for i, hexValue := range raw {
		enc, err := common.HexToBytes(hexValue)
		if err != nil {
			return nil, fmt.Errorf("decoding --key %d: %w", i, err)
		}
		value, n, err := scalevalue.Decode(enc, fields[i].Type, md.Types())
		if err != nil {
			return nil, fmt.Errorf("--key %d does not decode as key field %d of %s.%s: %w",
				i, i, pallet, entry, err)
		}
		if n != len(enc) {
			return nil, fmt.Errorf("--key %d has %d bytes left over after key field %d of %s.%s",
				i, len(enc)-n, i, pallet, entry)
		}
		values = append(values, value)
	}
	return values, nil
}
