// Copyright 2025 Polkabyte Labs
// SPDX-License-Identifier: LGPL-3.0-only

package metadata

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/polkabyte/polkameta/lib/metadata/frame"
)

func TestTypeHash_Deterministic(t *testing.T) {
	t.Parallel()

	a, err := FromV15(sampleV15())
	require.NoError(t, err)
	b, err := FromV15(sampleV15())
	require.NoError(t, err)

	for id := uint32(0); id < uint32(a.Types().Len()); id++ {
		ha, err := a.TypeHash(id)
		require.NoError(t, err)
		hb, err := b.TypeHash(id)
		require.NoError(t, err)
		assert.Equal(t, ha, hb, "type %d", id)

		// Second lookup is served from the cache and must agree.
		again, err := a.TypeHash(id)
		require.NoError(t, err)
		assert.Equal(t, ha, again, "type %d", id)
	}

	_, err = a.TypeHash(uint32(a.Types().Len()))
	require.ErrorIs(t, err, ErrTypeNotFound)
}

func TestTypeHash_StructuralNotNominal(t *testing.T) {
	t.Parallel()

	md, err := FromV15(sampleV15())
	require.NoError(t, err)

	// Paths are not part of the shape: AccountId32 hashes like any
	// other single-field wrapper around [u8; 32].
	renamed := sampleV15()
	renamed.Types = append([]frame.PortableType(nil), renamed.Types...)
	cp := renamed.Types[tyAccountID]
	cp.Type.Path = []string{"sp_core", "crypto", "PublicKey"}
	renamed.Types[tyAccountID] = cp

	other, err := FromV15(renamed)
	require.NoError(t, err)

	want, err := md.TypeHash(tyAccountID)
	require.NoError(t, err)
	got, err := other.TypeHash(tyAccountID)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	// A primitive swap is a shape change and must register.
	narrowed := sampleV15()
	narrowed.Types = append([]frame.PortableType(nil), narrowed.Types...)
	cp = narrowed.Types[tyU64]
	cp.Type.Def = frame.SiTypeDef{IsPrimitive: true, Primitive: uint8(5)} // u32
	narrowed.Types[tyU64] = cp

	changed, err := FromV15(narrowed)
	require.NoError(t, err)
	wide, err := md.TypeHash(tyU64)
	require.NoError(t, err)
	narrow, err := changed.TypeHash(tyU64)
	require.NoError(t, err)
	assert.NotEqual(t, wide, narrow)
}

func TestTypeHash_RecursiveTypeTerminates(t *testing.T) {
	t.Parallel()

	v15 := sampleV15()
	nodeID := uint32(len(v15.Types))
	listID := nodeID + 1
	v15.Types = append(v15.Types,
		frame.PortableType{ID: frame.Compact(nodeID), Type: frame.SiType{
			Path: []string{"fixture", "Node"},
			Def: composite(
				named("value", tyU32),
				named("children", listID),
			),
		}},
		frame.PortableType{ID: frame.Compact(listID), Type: frame.SiType{
			Def: frame.SiTypeDef{IsSequence: true, Sequence: frame.SiSequenceDef{Type: frame.Compact(nodeID)}},
		}},
	)

	md, err := FromV15(v15)
	require.NoError(t, err)

	first, err := md.TypeHash(nodeID)
	require.NoError(t, err)
	second, err := md.TypeHash(nodeID)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestStorageEntryHash(t *testing.T) {
	t.Parallel()

	md, err := FromV15(sampleV15())
	require.NoError(t, err)

	want, err := md.StorageEntryHash("System", "Account")
	require.NoError(t, err)

	// Same entry, same metadata: stable.
	again, err := md.StorageEntryHash("System", "Account")
	require.NoError(t, err)
	assert.Equal(t, want, again)

	// A different hasher chain is schema drift.
	drifted := sampleV15()
	drifted.Pallets[0].Storage.Value.Entries[0].Type.Map.Hashers =
		[]uint8{HasherTwox64Concat.Wire()}
	other, err := FromV15(drifted)
	require.NoError(t, err)
	got, err := other.StorageEntryHash("System", "Account")
	require.NoError(t, err)
	assert.NotEqual(t, want, got)

	// So is a different value type.
	widened := sampleV15()
	widened.Pallets[0].Storage.Value.Entries[0].Type.Map.Value = tyU32
	other, err = FromV15(widened)
	require.NoError(t, err)
	got, err = other.StorageEntryHash("System", "Account")
	require.NoError(t, err)
	assert.NotEqual(t, want, got)

	// Entries do not collide with each other.
	number, err := md.StorageEntryHash("System", "Number")
	require.NoError(t, err)
	assert.NotEqual(t, want, number)

	_, err = md.StorageEntryHash("System", "Missing")
	require.ErrorIs(t, err, ErrStorageEntryNotFound)
	_, err = md.StorageEntryHash("Missing", "Account")
	require.ErrorIs(t, err, ErrPalletNotFound)
}

func TestCallAndConstantHashes(t *testing.T) {
	t.Parallel()

	md, err := FromV15(sampleV15())
	require.NoError(t, err)

	remark, err := md.CallHash("System", "remark")
	require.NoError(t, err)
	setHeapPages, err := md.CallHash("System", "set_heap_pages")
	require.NoError(t, err)
	assert.NotEqual(t, remark, setHeapPages)

	_, err = md.CallHash("System", "kill_storage")
	require.ErrorIs(t, err, ErrVariantNotFound)

	blockHashCount, err := md.ConstantHash("System", "BlockHashCount")
	require.NoError(t, err)
	deposit, err := md.ConstantHash("Balances", "ExistentialDeposit")
	require.NoError(t, err)
	assert.NotEqual(t, blockHashCount, deposit)

	_, err = md.ConstantHash("System", "Missing")
	require.ErrorIs(t, err, ErrConstantNotFound)
}

func TestMetadataHash(t *testing.T) {
	t.Parallel()

	md, err := FromV15(sampleV15())
	require.NoError(t, err)

	want, err := md.Hash()
	require.NoError(t, err)

	// Stable across independently built models.
	other, err := FromV15(sampleV15())
	require.NoError(t, err)
	got, err := other.Hash()
	require.NoError(t, err)
	assert.Equal(t, want, got)

	// Per-pallet hashes diverge, and dropping a pallet changes the
	// whole-model hash.
	system, err := md.PalletHash("System")
	require.NoError(t, err)
	balances, err := md.PalletHash("Balances")
	require.NoError(t, err)
	assert.NotEqual(t, system, balances)

	stripped := Retain(md, keepOnly("System"), keepAll)
	strippedHash, err := stripped.Hash()
	require.NoError(t, err)
	assert.NotEqual(t, want, strippedHash)

	// The surviving pallet's own hash is unchanged by retention.
	keptSystem, err := stripped.PalletHash("System")
	require.NoError(t, err)
	assert.Equal(t, system, keptSystem)

	nonce, err := md.RuntimeAPIHash("AccountNonceApi")
	require.NoError(t, err)
	core, err := md.RuntimeAPIHash("Core")
	require.NoError(t, err)
	assert.NotEqual(t, nonce, core)
}
