// Copyright 2025 Polkabyte Labs
// SPDX-License-Identifier: LGPL-3.0-only

package metadata

import (
	"fmt"

	"github.com/polkabyte/polkameta/lib/metadata/frame"
)

// FromV16 builds the model from v16 wire metadata. v16 has no top-level
// runtime type id, so it is located in the registry by its ident; its
// absence is a hard error. Deprecation markers are not carried into the
// model.
func FromV16(m *frame.RuntimeMetadataV16) (*Metadata, error) {
	types, err := frame.ToRegistry(m.Types)
	if err != nil {
		return nil, err
	}

	runtimeType, ok := types.FindByIdent("Runtime")
	if !ok {
		return nil, fmt.Errorf("%w: no type with ident Runtime", ErrRuntimeTypeNotFound)
	}

	out := &Metadata{
		version:     frame.VersionV16,
		types:       types,
		runtimeType: runtimeType,
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
			constants: fromConstantsV16(p.Constants),
			docs:      p.Docs,
		}

		if p.Storage.HasValue {
			storage := &StorageMetadata{prefix: p.Storage.Value.Prefix}
			for _, e := range p.Storage.Value.Entries {
				entry, err := fromStorageEntry(e.Name, e.Modifier, e.Type, e.Default, e.Docs)
				if err != nil {
					return nil, fmt.Errorf("pallet %s: %w", p.Name, err)
				}
				storage.entries = append(storage.entries, entry)
			}
			pallet.storage = storage
		}

		for _, at := range p.AssociatedTypes {
			pallet.associatedTypes = append(pallet.associatedTypes, AssociatedType{
				Name: at.Name,
				Type: uint32(at.Type),
				Docs: at.Docs,
			})
		}
		for _, vf := range p.ViewFunctions {
			pallet.viewFunctions = append(pallet.viewFunctions, ViewFunction{
				Name:   vf.Name,
				ID:     vf.ID,
				Inputs: fromAPIParams(vf.Inputs),
				Output: uint32(vf.Output),
				Docs:   vf.Docs,
			})
		}
		out.pallets = append(out.pallets, pallet)
	}

	extensions := make([]TransactionExtension, 0, len(m.Extrinsic.TransactionExtensions))
	for _, ext := range m.Extrinsic.TransactionExtensions {
		extensions = append(extensions, TransactionExtension{
			Identifier:     ext.Identifier,
			ExtraType:      uint32(ext.Type),
			AdditionalType: uint32(ext.Implicit),
		})
	}
	byVersion := make([]ExtensionsByVersion, 0, len(m.Extrinsic.ExtensionsByVersion))
	for _, bv := range m.Extrinsic.ExtensionsByVersion {
		indices := make([]uint32, 0, len(bv.Indices))
		for _, idx := range bv.Indices {
			indices = append(indices, uint32(idx))
		}
		byVersion = append(byVersion, ExtensionsByVersion{Version: bv.Version, Indices: indices})
	}
	out.extrinsic = ExtrinsicMetadata{
		supportedVersions: m.Extrinsic.Versions,
		addressType:       uint32(m.Extrinsic.AddressType),
		signatureType:     uint32(m.Extrinsic.SignatureType),
		extensions:        extensions,
		byVersion:         byVersion,
	}

	for _, api := range m.APIs {
		out.apis = append(out.apis, RuntimeAPI{
			name:    api.Name,
			docs:    api.Docs,
			methods: fromV16Methods(api.Methods),
		})
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

func fromConstantsV16(in []frame.PalletConstantMetadataV16) []Constant {
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

func fromV16Methods(in []frame.RuntimeAPIMethodMetadataV16) []RuntimeAPIMethod {
	var out []RuntimeAPIMethod
	for _, method := range in {
		out = append(out, RuntimeAPIMethod{
			Name:   method.Name,
			Inputs: fromAPIParams(method.Inputs),
			Output: uint32(method.Output),
			Docs:   method.Docs,
		})
	}
	return out
}
