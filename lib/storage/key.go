// Copyright 2025 Polkabyte Labs
// SPDX-License-Identifier: LGPL-3.0-only

// Package storage derives and reverses the byte-exact storage keys a
// runtime uses for its state, from metadata alone: no generated code,
// no per-chain types.
package storage

import (
	"bytes"
	"fmt"

	"github.com/polkabyte/polkameta/lib/common"
	"github.com/polkabyte/polkameta/lib/metadata"
	"github.com/polkabyte/polkameta/lib/registry"
	"github.com/polkabyte/polkameta/lib/scalevalue"
)

// RootLen is the length of every storage key's fixed prefix.
const RootLen = 32

// PalletRoot returns the 16-byte prefix shared by all of a pallet's
// storage keys.
func PalletRoot(pallet string) []byte {
	return common.MustTwox128([]byte(pallet))
}

// KeyRoot returns the fixed 32-byte prefix of one storage entry:
// twox128 of the pallet's storage prefix followed by twox128 of the
// entry name. EncodeKey and DecodeKey pass the prefix declared in the
// pallet's storage metadata, not the pallet name; the two differ on
// chains that renamed a pallet without migrating its state.
func KeyRoot(pallet, entry string) []byte {
	return append(PalletRoot(pallet), common.MustTwox128([]byte(entry))...)
}

// KeyField is one hashed segment of a map entry's storage key: the
// hasher and the type id of the value it covers.
type KeyField struct {
	Hasher metadata.Hasher
	Type   uint32
}

// HashersAndTypes pairs an entry's declared hashers with the key types
// they cover. A single hasher covers the whole key as one unit; n
// hashers require an n-tuple key, one hasher per element. A plain
// entry yields no fields.
func HashersAndTypes(entry *metadata.StorageEntry, types *registry.Registry) ([]KeyField, error) {
	keyType, ok := entry.KeyType()
	if !ok {
		return nil, nil
	}
	hashers := entry.Hashers()

	if len(hashers) == 1 {
		return []KeyField{{Hasher: hashers[0], Type: keyType}}, nil
	}

	ty, ok := types.Resolve(keyType)
	if !ok {
		return nil, fmt.Errorf("%w: id %d", metadata.ErrTypeNotFound, keyType)
	}
	tuple, ok := ty.Def.(registry.DefTuple)
	if !ok {
		return nil, fmt.Errorf("%w: %d hashers over non-tuple key %s",
			ErrWrongNumberOfHashers, len(hashers), entry.Name())
	}
	if len(tuple.Elems) != len(hashers) {
		return nil, fmt.Errorf("%w: %d hashers, %d key fields in %s",
			ErrWrongNumberOfHashers, len(hashers), len(tuple.Elems), entry.Name())
	}

	fields := make([]KeyField, len(hashers))
	for i, h := range hashers {
		fields[i] = KeyField{Hasher: h, Type: tuple.Elems[i]}
	}
	return fields, nil
}

// EncodeKey builds the storage key for the given entry and key values.
// Supplying fewer values than the entry's arity yields a prefix key
// that matches every entry sharing those leading fields; supplying
// more is an error.
func EncodeKey(md *metadata.Metadata, pallet, entry string, keys ...scalevalue.Value) ([]byte, error) {
	p, err := md.Pallet(pallet)
	if err != nil {
		return nil, err
	}
	e, err := p.StorageEntry(entry)
	if err != nil {
		return nil, err
	}

	fields, err := HashersAndTypes(e, md.Types())
	if err != nil {
		return nil, err
	}
	if len(keys) > len(fields) {
		return nil, fmt.Errorf("%w: %s.%s takes at most %d, got %d",
			ErrWrongNumberOfKeys, pallet, entry, len(fields), len(keys))
	}

	key := KeyRoot(p.Storage().Prefix(), e.Name())
	for i, value := range keys {
		enc, err := scalevalue.Encode(value, fields[i].Type, md.Types())
		if err != nil {
			return nil, fmt.Errorf("key field %d of %s.%s: %w", i, pallet, entry, err)
		}
		key = append(key, fields[i].Hasher.Hash(enc)...)
	}
	return key, nil
}

// DecodeKey recovers the key values from a full or prefix storage key.
// The second return reports reversibility: if any declared hasher
// discards its input, no values can be reconstructed and the call
// returns (nil, false, nil), which is an expected outcome rather than
// an error.
func DecodeKey(md *metadata.Metadata, pallet, entry string, key []byte) ([]scalevalue.Value, bool, error) {
	p, err := md.Pallet(pallet)
	if err != nil {
		return nil, false, err
	}
	e, err := p.StorageEntry(entry)
	if err != nil {
		return nil, false, err
	}
	fields, err := HashersAndTypes(e, md.Types())
	if err != nil {
		return nil, false, err
	}

	root := KeyRoot(p.Storage().Prefix(), e.Name())
	if len(key) < RootLen || !bytes.Equal(key[:RootLen], root) {
		return nil, false, fmt.Errorf("%w: key does not start with the %s.%s root",
			ErrUnexpectedAddressBytes, pallet, entry)
	}
	rest := key[RootLen:]

	for _, f := range fields {
		if !f.Hasher.EndsWithKey() {
			return nil, false, nil
		}
	}

	var values []scalevalue.Value
	for _, f := range fields {
		if len(rest) == 0 {
			// A prefix key: the remaining fields were never encoded.
			break
		}
		prefix := f.Hasher.PrefixLen()
		if len(rest) < prefix {
			return nil, false, fmt.Errorf("%w: truncated %s digest in %s.%s",
				ErrUnexpectedAddressBytes, f.Hasher, pallet, entry)
		}
		rest = rest[prefix:]

		value, n, err := scalevalue.Decode(rest, f.Type, md.Types())
		if err != nil {
			return nil, false, fmt.Errorf("%w: key field of %s.%s: %v",
				ErrUnexpectedAddressBytes, pallet, entry, err)
		}
		values = append(values, value)
		rest = rest[n:]
	}

	if len(rest) != 0 {
		return nil, false, fmt.Errorf("%w: %d bytes left after the last key field of %s.%s",
			ErrUnexpectedAddressBytes, len(rest), pallet, entry)
	}
	return values, true, nil
}
