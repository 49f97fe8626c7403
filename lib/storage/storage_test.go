// Copyright 2025 Polkabyte Labs
// SPDX-License-Identifier: LGPL-3.0-only

package storage

import (
	"bytes"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/polkabyte/polkameta/lib/metadata"
	"github.com/polkabyte/polkameta/lib/metadata/frame"
	"github.com/polkabyte/polkameta/lib/registry"
	"github.com/polkabyte/polkameta/lib/scalevalue"
)

// Fixture type ids.
const (
	tyU8 = iota
	tyU32
	tyU64
	tyByteArray32
	tyPair   // (u32, u64)
	tyTriple // (u32, u64, u32)
	tyQuad   // (u32 x 4)
	tyQuint  // (u32 x 5)
	tySix    // (u32 x 6)
	tyDispatchError
	tySystemCall
	tyRuntimeCall
	tyRuntimeEvent
	tyRuntimeError
	tyUnit
	tyRuntime
)

func fixtureTypes() []frame.PortableType {
	prim := func(kind registry.PrimitiveKind) frame.SiTypeDef {
		return frame.SiTypeDef{IsPrimitive: true, Primitive: uint8(kind)}
	}
	tuple := func(elems ...frame.Compact) frame.SiTypeDef {
		return frame.SiTypeDef{IsTuple: true, Tuple: elems}
	}
	oneVariant := func(path ...string) frame.SiType {
		return frame.SiType{
			Path: path,
			Def: frame.SiTypeDef{IsVariant: true, Variant: frame.SiVariantDef{
				Variants: []frame.SiVariant{{Name: "System", Index: 0}},
			}},
		}
	}

	return []frame.PortableType{
		{ID: tyU8, Type: frame.SiType{Def: prim(registry.PrimitiveU8)}},
		{ID: tyU32, Type: frame.SiType{Def: prim(registry.PrimitiveU32)}},
		{ID: tyU64, Type: frame.SiType{Def: prim(registry.PrimitiveU64)}},
		{ID: tyByteArray32, Type: frame.SiType{
			Def: frame.SiTypeDef{IsArray: true, Array: frame.SiArrayDef{Len: 32, Type: tyU8}},
		}},
		{ID: tyPair, Type: frame.SiType{Def: tuple(tyU32, tyU64)}},
		{ID: tyTriple, Type: frame.SiType{Def: tuple(tyU32, tyU64, tyU32)}},
		{ID: tyQuad, Type: frame.SiType{Def: tuple(tyU32, tyU32, tyU32, tyU32)}},
		{ID: tyQuint, Type: frame.SiType{Def: tuple(tyU32, tyU32, tyU32, tyU32, tyU32)}},
		{ID: tySix, Type: frame.SiType{Def: tuple(tyU32, tyU32, tyU32, tyU32, tyU32, tyU32)}},
		{ID: tyDispatchError, Type: frame.SiType{
			Path: []string{"sp_runtime", "DispatchError"},
			Def: frame.SiTypeDef{IsVariant: true, Variant: frame.SiVariantDef{
				Variants: []frame.SiVariant{{Name: "Other", Index: 0}},
			}},
		}},
		{ID: tySystemCall, Type: frame.SiType{
			Path: []string{"frame_system", "pallet", "Call"},
			Def: frame.SiTypeDef{IsVariant: true, Variant: frame.SiVariantDef{
				Variants: []frame.SiVariant{{Name: "remark", Index: 0}},
			}},
		}},
		{ID: tyRuntimeCall, Type: frame.SiType{
			Path: []string{"runtime", "RuntimeCall"},
			Def: frame.SiTypeDef{IsVariant: true, Variant: frame.SiVariantDef{
				Variants: []frame.SiVariant{
					{Name: "System", Index: 0, Fields: []frame.SiField{{Type: tySystemCall}}},
				},
			}},
		}},
		{ID: tyRuntimeEvent, Type: oneVariant("runtime", "RuntimeEvent")},
		{ID: tyRuntimeError, Type: oneVariant("runtime", "RuntimeError")},
		{ID: tyUnit, Type: frame.SiType{Def: tuple()}},
		{ID: tyRuntime, Type: frame.SiType{
			Path: []string{"runtime", "Runtime"},
			Def:  frame.SiTypeDef{IsComposite: true},
		}},
	}
}

func entry(name string, modifier uint8, hashers []metadata.Hasher, key frame.Compact, value frame.Compact, def []byte) frame.StorageEntryMetadata {
	e := frame.StorageEntryMetadata{
		Name:     name,
		Modifier: modifier,
		Default:  def,
	}
	if hashers == nil {
		e.Type = frame.StorageEntryType{IsPlain: true, Plain: value}
		return e
	}
	wire := make([]uint8, len(hashers))
	for i, h := range hashers {
		wire[i] = h.Wire()
	}
	e.Type = frame.StorageEntryType{IsMap: true, Map: frame.MapStorageEntry{
		Hashers: wire,
		Key:     key,
		Value:   value,
	}}
	return e
}

func fixtureMetadata(t *testing.T) *metadata.Metadata {
	t.Helper()

	v15 := &frame.RuntimeMetadataV15{
		Types: fixtureTypes(),
		Pallets: []frame.PalletMetadataV15{
			{
				Name: "System",
				Storage: frame.OptionStorage{HasValue: true, Value: frame.StorageMetadata{
					Prefix: "System",
					Entries: []frame.StorageEntryMetadata{
						entry("Number", frame.StorageModifierDefault, nil, 0, tyU32, []byte{7, 0, 0, 0}),
						entry("Account", frame.StorageModifierOptional,
							[]metadata.Hasher{metadata.HasherBlake2_128Concat}, tyByteArray32, tyU64, nil),
						entry("Irreversible", frame.StorageModifierOptional,
							[]metadata.Hasher{metadata.HasherBlake2_128}, tyU32, tyU32, nil),
						entry("Pairs", frame.StorageModifierOptional,
							[]metadata.Hasher{metadata.HasherBlake2_128Concat, metadata.HasherTwox64Concat},
							tyPair, tyU32, nil),
						entry("Triple", frame.StorageModifierOptional,
							[]metadata.Hasher{metadata.HasherTwox64Concat, metadata.HasherTwox64Concat, metadata.HasherIdentity},
							tyTriple, tyU32, nil),
						entry("Combined", frame.StorageModifierOptional,
							[]metadata.Hasher{metadata.HasherTwox64Concat}, tyPair, tyU32, nil),
						entry("Quad", frame.StorageModifierOptional,
							[]metadata.Hasher{
								metadata.HasherTwox64Concat, metadata.HasherBlake2_128Concat,
								metadata.HasherTwox64Concat, metadata.HasherIdentity,
							},
							tyQuad, tyU32, nil),
						entry("Quint", frame.StorageModifierOptional,
							[]metadata.Hasher{
								metadata.HasherTwox64Concat, metadata.HasherTwox64Concat,
								metadata.HasherIdentity, metadata.HasherBlake2_128Concat,
								metadata.HasherTwox64Concat,
							},
							tyQuint, tyU32, nil),
						entry("Six", frame.StorageModifierOptional,
							[]metadata.Hasher{
								metadata.HasherTwox64Concat, metadata.HasherTwox64Concat,
								metadata.HasherTwox64Concat, metadata.HasherTwox64Concat,
								metadata.HasherTwox64Concat, metadata.HasherTwox64Concat,
							},
							tySix, tyU32, nil),
						entry("Mismatch", frame.StorageModifierOptional,
							[]metadata.Hasher{metadata.HasherTwox64Concat, metadata.HasherIdentity},
							tyU32, tyU32, nil),
					},
				}},
				Calls: frame.OptionPalletCall{HasValue: true, Value: frame.PalletCallMetadata{Type: tySystemCall}},
				Index: 0,
			},
		},
		Extrinsic: frame.ExtrinsicMetadataV15{
			Version:       4,
			AddressType:   tyByteArray32,
			CallType:      tyRuntimeCall,
			SignatureType: tyByteArray32,
			ExtraType:     tyUnit,
		},
		Type: tyRuntime,
		OuterEnums: frame.OuterEnums{
			CallType:  tyRuntimeCall,
			EventType: tyRuntimeEvent,
			ErrorType: tyRuntimeError,
		},
	}

	md, err := metadata.FromV15(v15)
	require.NoError(t, err)
	return md
}

func TestKeyRoot(t *testing.T) {
	t.Parallel()

	root := KeyRoot("System", "Account")
	assert.Equal(t,
		"26aa394eea5630e07c48ae0c9558cef7b99d880ec681799c0cf30e8886371da9",
		hex.EncodeToString(root))
	assert.Equal(t, root[:16], PalletRoot("System"))
}

func TestEncodeKey_AccountLayout(t *testing.T) {
	t.Parallel()

	md := fixtureMetadata(t)

	account := bytes.Repeat([]byte{0xab}, 32)
	key, err := EncodeKey(md, "System", "Account", scalevalue.Bytes(account))
	require.NoError(t, err)

	// root ++ blake2_128(account) ++ account, byte for byte.
	require.Len(t, key, 32+16+32)
	assert.Equal(t, KeyRoot("System", "Account"), key[:32])
	assert.Equal(t, metadata.HasherBlake2_128Concat.Hash(account), key[32:])

	values, ok, err := DecodeKey(md, "System", "Account", key)
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, values, 1)
	assert.Equal(t, scalevalue.Bytes(account), values[0])
}

func TestEncodeDecode_RoundTrip(t *testing.T) {
	t.Parallel()

	md := fixtureMetadata(t)

	tests := []struct {
		entry string
		keys  []scalevalue.Value
	}{
		{"Number", nil},
		{"Account", []scalevalue.Value{scalevalue.Bytes(bytes.Repeat([]byte{9}, 32))}},
		{"Pairs", []scalevalue.Value{scalevalue.Uint(1), scalevalue.Uint(2)}},
		{"Triple", []scalevalue.Value{scalevalue.Uint(1), scalevalue.Uint(2), scalevalue.Uint(3)}},
		{"Combined", []scalevalue.Value{scalevalue.Tuple{scalevalue.Uint(1), scalevalue.Uint(2)}}},
		{"Quad", []scalevalue.Value{
			scalevalue.Uint(1), scalevalue.Uint(2), scalevalue.Uint(3), scalevalue.Uint(4),
		}},
		{"Quint", []scalevalue.Value{
			scalevalue.Uint(1), scalevalue.Uint(2), scalevalue.Uint(3),
			scalevalue.Uint(4), scalevalue.Uint(5),
		}},
		{"Six", []scalevalue.Value{
			scalevalue.Uint(1), scalevalue.Uint(2), scalevalue.Uint(3),
			scalevalue.Uint(4), scalevalue.Uint(5), scalevalue.Uint(6),
		}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.entry, func(t *testing.T) {
			t.Parallel()

			key, err := EncodeKey(md, "System", tt.entry, tt.keys...)
			require.NoError(t, err)

			values, ok, err := DecodeKey(md, "System", tt.entry, key)
			require.NoError(t, err)
			require.True(t, ok)
			require.Len(t, values, len(tt.keys))
			for i := range tt.keys {
				assert.Equal(t, tt.keys[i], values[i], "field %d", i)
			}
		})
	}
}

func TestDecodeKey_Irreversible(t *testing.T) {
	t.Parallel()

	md := fixtureMetadata(t)

	key, err := EncodeKey(md, "System", "Irreversible", scalevalue.Uint(42))
	require.NoError(t, err)

	values, ok, err := DecodeKey(md, "System", "Irreversible", key)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, values)
}

func TestEncodeKey_OrderMatters(t *testing.T) {
	t.Parallel()

	md := fixtureMetadata(t)

	// Each field is hashed independently and appended in declared
	// order, so swapping values moves bytes.
	ab, err := EncodeKey(md, "System", "Pairs", scalevalue.Uint(1), scalevalue.Uint(2))
	require.NoError(t, err)
	ba, err := EncodeKey(md, "System", "Pairs", scalevalue.Uint(2), scalevalue.Uint(1))
	require.NoError(t, err)
	assert.NotEqual(t, ab, ba)
}

func TestEncodeKey_PartialPrefix(t *testing.T) {
	t.Parallel()

	md := fixtureMetadata(t)

	full, err := EncodeKey(md, "System", "Triple",
		scalevalue.Uint(1), scalevalue.Uint(2), scalevalue.Uint(3))
	require.NoError(t, err)

	for arity := 0; arity < 3; arity++ {
		keys := []scalevalue.Value{scalevalue.Uint(1), scalevalue.Uint(2), scalevalue.Uint(3)}[:arity]
		prefix, err := EncodeKey(md, "System", "Triple", keys...)
		require.NoError(t, err)
		assert.True(t, bytes.HasPrefix(full, prefix), "arity %d", arity)
		assert.Less(t, len(prefix), len(full))
	}

	// A prefix key decodes back to the fields it carries.
	prefix, err := EncodeKey(md, "System", "Triple", scalevalue.Uint(1))
	require.NoError(t, err)
	values, ok, err := DecodeKey(md, "System", "Triple", prefix)
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, values, 1)
	assert.Equal(t, scalevalue.Uint(1), values[0])
}

func TestEncodeKey_Errors(t *testing.T) {
	t.Parallel()

	md := fixtureMetadata(t)

	_, err := EncodeKey(md, "System", "Number", scalevalue.Uint(1))
	require.ErrorIs(t, err, ErrWrongNumberOfKeys)

	_, err = EncodeKey(md, "System", "Account",
		scalevalue.Bytes(bytes.Repeat([]byte{1}, 32)), scalevalue.Uint(2))
	require.ErrorIs(t, err, ErrWrongNumberOfKeys)

	_, err = EncodeKey(md, "System", "Mismatch", scalevalue.Uint(1))
	require.ErrorIs(t, err, ErrWrongNumberOfHashers)

	_, err = EncodeKey(md, "Staking", "Ledger")
	require.ErrorIs(t, err, metadata.ErrPalletNotFound)

	_, err = EncodeKey(md, "System", "Missing")
	require.ErrorIs(t, err, metadata.ErrStorageEntryNotFound)
}

func TestDecodeKey_BadBytes(t *testing.T) {
	t.Parallel()

	md := fixtureMetadata(t)

	key, err := EncodeKey(md, "System", "Account", scalevalue.Bytes(bytes.Repeat([]byte{3}, 32)))
	require.NoError(t, err)

	// Trailing bytes after the last field.
	_, _, err = DecodeKey(md, "System", "Account", append(append([]byte(nil), key...), 0xff))
	require.ErrorIs(t, err, ErrUnexpectedAddressBytes)

	// Too short for a root.
	_, _, err = DecodeKey(md, "System", "Account", key[:16])
	require.ErrorIs(t, err, ErrUnexpectedAddressBytes)

	// Right length, wrong root.
	wrong := append([]byte(nil), key...)
	wrong[0] ^= 0xff
	_, _, err = DecodeKey(md, "System", "Account", wrong)
	require.ErrorIs(t, err, ErrUnexpectedAddressBytes)

	// Digest present but the field bytes are truncated.
	_, _, err = DecodeKey(md, "System", "Account", key[:32+16+10])
	require.ErrorIs(t, err, ErrUnexpectedAddressBytes)
}

func TestDecodeValue(t *testing.T) {
	t.Parallel()

	md := fixtureMetadata(t)

	// Stored bytes decode against the value type.
	value, err := DecodeValue(md, "System", "Number", []byte{1, 0, 0, 0})
	require.NoError(t, err)
	assert.Equal(t, scalevalue.Uint(1), value)

	// Nothing stored: Default entries fall back to their default.
	value, err = DecodeValue(md, "System", "Number", nil)
	require.NoError(t, err)
	assert.Equal(t, scalevalue.Uint(7), value)

	// Nothing stored: Optional entries yield no value.
	value, err = DecodeValue(md, "System", "Account", nil)
	require.NoError(t, err)
	assert.Nil(t, value)

	_, err = DecodeValue(md, "System", "Number", []byte{1, 0, 0, 0, 0xff})
	require.ErrorIs(t, err, ErrUnexpectedAddressBytes)

	enc, err := EncodeValue(md, "System", "Number", scalevalue.Uint(1))
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 0, 0, 0}, enc)
}

func TestAddressValidation(t *testing.T) {
	t.Parallel()

	md := fixtureMetadata(t)

	hash, err := md.StorageEntryHash("System", "Account")
	require.NoError(t, err)

	account := scalevalue.Bytes(bytes.Repeat([]byte{5}, 32))
	addr := NewAddress("System", "Account", account).WithValidationHash(hash)

	key, err := EncodeAddress(md, addr)
	require.NoError(t, err)
	want, err := EncodeKey(md, "System", "Account", account)
	require.NoError(t, err)
	assert.Equal(t, want, key)

	// A stale expectation hash is caught before any key is built.
	stale := addr.WithValidationHash([32]byte{1})
	_, err = EncodeAddress(md, stale)
	require.ErrorIs(t, err, metadata.ErrIncompatibleMetadata)

	// Opting out skips the check entirely.
	_, err = EncodeAddress(md, stale.Unvalidated())
	require.NoError(t, err)

	_, ok := NewAddress("System", "Account").ValidationHash()
	assert.False(t, ok)
}
