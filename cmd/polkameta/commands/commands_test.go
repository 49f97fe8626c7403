// Copyright 2025 Polkabyte Labs
// SPDX-License-Identifier: LGPL-3.0-only

package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/polkabyte/polkameta/lib/common"
	"github.com/polkabyte/polkameta/lib/metadata"
	"github.com/polkabyte/polkameta/lib/metadata/frame"
	"github.com/polkabyte/polkameta/lib/registry"
	"github.com/polkabyte/polkameta/lib/scalevalue"
	"github.com/polkabyte/polkameta/lib/storage"
)

// testBlob builds a one-pallet v15 metadata blob and writes it to a
// temp file.
func testBlob(t *testing.T) string {
	t.Helper()

	prim := func(kind registry.PrimitiveKind) frame.SiTypeDef {
		return frame.SiTypeDef{IsPrimitive: true, Primitive: uint8(kind)}
	}
	oneVariant := func(path ...string) frame.SiType {
		return frame.SiType{
			Path: path,
			Def: frame.SiTypeDef{IsVariant: true, Variant: frame.SiVariantDef{
				Variants: []frame.SiVariant{{Name: "System", Index: 0}},
			}},
		}
	}

	v15 := &frame.RuntimeMetadataV15{
		Types: []frame.PortableType{
			{ID: 0, Type: frame.SiType{Def: prim(registry.PrimitiveU32)}},
			{ID: 1, Type: frame.SiType{
				Path: []string{"sp_runtime", "DispatchError"},
				Def: frame.SiTypeDef{IsVariant: true, Variant: frame.SiVariantDef{
					Variants: []frame.SiVariant{{Name: "Other", Index: 0}},
				}},
			}},
			{ID: 2, Type: oneVariant("runtime", "RuntimeCall")},
			{ID: 3, Type: oneVariant("runtime", "RuntimeEvent")},
			{ID: 4, Type: oneVariant("runtime", "RuntimeError")},
			{ID: 5, Type: frame.SiType{Def: frame.SiTypeDef{IsTuple: true}}},
			{ID: 6, Type: frame.SiType{
				Path: []string{"runtime", "Runtime"},
				Def:  frame.SiTypeDef{IsComposite: true},
			}},
		},
		Pallets: []frame.PalletMetadataV15{{
			Name: "System",
			Storage: frame.OptionStorage{HasValue: true, Value: frame.StorageMetadata{
				Prefix: "System",
				Entries: []frame.StorageEntryMetadata{{
					Name:     "Number",
					Modifier: frame.StorageModifierDefault,
					Type: frame.StorageEntryType{IsMap: true, Map: frame.MapStorageEntry{
						Hashers: []uint8{metadata.HasherTwox64Concat.Wire()},
						Key:     0,
						Value:   0,
					}},
					Default: []byte{0, 0, 0, 0},
				}},
			}},
			Index: 0,
		}},
		Extrinsic: frame.ExtrinsicMetadataV15{
			Version:       4,
			AddressType:   0,
			CallType:      2,
			SignatureType: 0,
			ExtraType:     5,
		},
		Type: 6,
		OuterEnums: frame.OuterEnums{
			CallType:  2,
			EventType: 3,
			ErrorType: 4,
		},
	}

	blob, err := (&frame.Decoded{Version: frame.VersionV15, V15: v15}).Encode()
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "metadata.scale")
	require.NoError(t, os.WriteFile(path, blob, 0o600))
	return path
}

func runCommand(t *testing.T, args ...string) string {
	t.Helper()

	var out bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetOut(&out)
	cmd.SetArgs(args)
	require.NoError(t, cmd.Execute())
	return out.String()
}

func TestPalletsCommand(t *testing.T) {
	blob := testBlob(t)

	out := runCommand(t, "pallets", "--metadata", blob)
	assert.Contains(t, out, "System")
	assert.Contains(t, out, "storage=1")
}

func TestStorageKeyCommand(t *testing.T) {
	blobPath := testBlob(t)

	raw, err := os.ReadFile(blobPath)
	require.NoError(t, err)
	md, err := metadata.FromBlob(raw)
	require.NoError(t, err)
	want, err := storage.EncodeKey(md, "System", "Number", scalevalue.Uint(42))
	require.NoError(t, err)

	out := runCommand(t, "storage-key", "System", "Number",
		"--metadata", blobPath, "--key", "0x2a000000")
	assert.Contains(t, out, common.BytesToHex(want))

	parsed := runCommand(t, "storage-key", "System", "Number",
		"--metadata", blobPath, "--parse", common.BytesToHex(want))
	assert.Contains(t, parsed, "42")
}

func TestStripCommand(t *testing.T) {
	blob := testBlob(t)
	output := filepath.Join(t.TempDir(), "stripped.scale")

	runCommand(t, "strip", "--metadata", blob, "--pallets", "System", "--output", output)

	strippedBlob, err := os.ReadFile(output)
	require.NoError(t, err)
	md, err := metadata.FromBlob(strippedBlob)
	require.NoError(t, err)
	assert.Len(t, md.Pallets(), 1)
}
