// Copyright 2025 Polkabyte Labs
// SPDX-License-Identifier: LGPL-3.0-only

package storage

import (
	"fmt"

	"github.com/polkabyte/polkameta/lib/metadata"
	"github.com/polkabyte/polkameta/lib/scalevalue"
)

// DecodeValue decodes the bytes stored under an entry's key against
// the entry's value type. When no bytes are stored, a Default-modifier
// entry falls back to its declared default; an Optional entry yields
// nil.
func DecodeValue(md *metadata.Metadata, pallet, entry string, data []byte) (scalevalue.Value, error) {
	p, err := md.Pallet(pallet)
	if err != nil {
		return nil, err
	}
	e, err := p.StorageEntry(entry)
	if err != nil {
		return nil, err
	}

	if len(data) == 0 {
		if e.Modifier() == metadata.StorageModifierDefault {
			data = e.DefaultValue()
		} else {
			return nil, nil
		}
	}

	value, n, err := scalevalue.Decode(data, e.ValueType(), md.Types())
	if err != nil {
		return nil, fmt.Errorf("value of %s.%s: %w", pallet, entry, err)
	}
	if n != len(data) {
		return nil, fmt.Errorf("%w: %d bytes left after the value of %s.%s",
			ErrUnexpectedAddressBytes, len(data)-n, pallet, entry)
	}
	return value, nil
}

// EncodeValue encodes a value against an entry's value type, producing
// the bytes stored under the entry's key.
func EncodeValue(md *metadata.Metadata, pallet, entry string, value scalevalue.Value) ([]byte, error) {
	p, err := md.Pallet(pallet)
	if err != nil {
		return nil, err
	}
	e, err := p.StorageEntry(entry)
	if err != nil {
		return nil, err
	}
	enc, err := scalevalue.Encode(value, e.ValueType(), md.Types())
	if err != nil {
		return nil, fmt.Errorf("value of %s.%s: %w", pallet, entry, err)
	}
	return enc, nil
}
