// Copyright 2025 Polkabyte Labs
// SPDX-License-Identifier: LGPL-3.0-only

package metadata

import (
	"fmt"

	"github.com/polkabyte/polkameta/lib/metadata/frame"
)

// FromV15 builds the model from v15 wire metadata. v15 is the normal
// form: v14 is upgraded into it and v16 carries a superset of it.
func FromV15(m *frame.RuntimeMetadataV15) (*Metadata, error) {
	types, err := frame.ToRegistry(m.Types)
	if err != nil {
		return nil, err
	}

	out := &Metadata{
		version:     frame.VersionV15,
		types:       types,
		runtimeType: uint32(m.Type),
		outerEnums: OuterEnums{
			CallType:  uint32(m.OuterEnums.CallType),
			EventType: uint32(m.OuterEnums.EventType),
			ErrorType: uint32(m.OuterEnums.ErrorType),
		},
	}

	for _, p := range m.Pallets {
		pallet := Pallet{
			name:      p.Name,
			index:     p.Index,
			callType:  optTypeID(p.Calls.HasValue, p.Calls.Value.Type),
			eventType: optTypeID(p.Event.HasValue, p.Event.Value.Type),
			errorType: optTypeID(p.Error.HasValue, p.Error.Value.Type),
			constants: fromConstants(p.Constants),
			docs:      p.Docs,
		}
		if p.Storage.HasValue {
			storage, err := fromStorage(p.Storage.Value)
			if err != nil {
				return nil, fmt.Errorf("pallet %s: %w", p.Name, err)
			}
			pallet.storage = storage
		}
		out.pallets = append(out.pallets, pallet)
	}

	extensions := make([]TransactionExtension, 0, len(m.Extrinsic.SignedExtensions))
	indices := make([]uint32, 0, len(m.Extrinsic.SignedExtensions))
	for i, ext := range m.Extrinsic.SignedExtensions {
		extensions = append(extensions, TransactionExtension{
			Identifier:     ext.Identifier,
			ExtraType:      uint32(ext.Type),
			AdditionalType: uint32(ext.AdditionalSigned),
		})
		indices = append(indices, uint32(i))
	}
	extraType := uint32(m.Extrinsic.ExtraType)
	out.extrinsic = ExtrinsicMetadata{
		supportedVersions: []uint8{m.Extrinsic.Version},
		addressType:       uint32(m.Extrinsic.AddressType),
		signatureType:     uint32(m.Extrinsic.SignatureType),
		extensions:        extensions,
		byVersion: []ExtensionsByVersion{
			{Version: m.Extrinsic.Version, Indices: indices},
		},
		extraType: &extraType,
	}

	for _, api := range m.APIs {
		out.apis = append(out.apis, fromRuntimeAPI(api))
	}

	for _, pair := range m.Custom.Map {
		out.custom = append(out.custom, CustomValue{
			Name:  pair.Key,
			Type:  uint32(pair.Value.Type),
			Value: pair.Value.Value,
		})
	}

	if err := out.finish(); err != nil {
		return nil, err
	}
	return out, nil
}

func optTypeID(has bool, id frame.Compact) *uint32 {
	if !has {
		return nil
	}
	v := uint32(id)
	return &v
}

func fromConstants(in []frame.PalletConstantMetadata) []Constant {
	out := make([]Constant, 0, len(in))
	for _, c := range in {
		out = append(out, Constant{
			Name:  c.Name,
			Type:  uint32(c.Type),
			Value: c.Value,
			Docs:  c.Docs,
		})
	}
	return out
}

func fromStorage(in frame.StorageMetadata) (*StorageMetadata, error) {
	out := &StorageMetadata{prefix: in.Prefix}
	for _, e := range in.Entries {
		entry, err := fromStorageEntry(e.Name, e.Modifier, e.Type, e.Default, e.Docs)
		if err != nil {
			return nil, err
		}
		out.entries = append(out.entries, entry)
	}
	return out, nil
}

func fromStorageEntry(name string, modifier uint8, ty frame.StorageEntryType, def []byte, docs []string) (StorageEntry, error) {
	entry := StorageEntry{
		name:         name,
		modifier:     StorageModifier(modifier),
		defaultValue: def,
		docs:         docs,
	}

	switch {
	case ty.IsPlain:
		entry.valueType = uint32(ty.Plain)
	case ty.IsMap:
		key := uint32(ty.Map.Key)
		entry.keyType = &key
		entry.valueType = uint32(ty.Map.Value)
		for _, wire := range ty.Map.Hashers {
			h, err := HasherFromWire(wire)
			if err != nil {
				return StorageEntry{}, fmt.Errorf("storage entry %s: %w", name, err)
			}
			entry.hashers = append(entry.hashers, h)
		}
	default:
		return StorageEntry{}, fmt.Errorf("storage entry %s has no type arm set", name)
	}
	return entry, nil
}

func fromRuntimeAPI(in frame.RuntimeAPIMetadata) RuntimeAPI {
	out := RuntimeAPI{name: in.Name, docs: in.Docs}
	for _, method := range in.Methods {
		out.methods = append(out.methods, RuntimeAPIMethod{
			Name:   method.Name,
			Inputs: fromAPIParams(method.Inputs),
			Output: uint32(method.Output),
			Docs:   method.Docs,
		})
	}
	return out
}

func fromAPIParams(in []frame.RuntimeAPIMethodParam) []RuntimeAPIParam {
	var out []RuntimeAPIParam
	for _, p := range in {
		out = append(out, RuntimeAPIParam{Name: p.Name, Type: uint32(p.Type)})
	}
	return out
}
