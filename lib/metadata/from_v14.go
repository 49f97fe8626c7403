// Copyright 2025 Polkabyte Labs
// SPDX-License-Identifier: LGPL-3.0-only

package metadata

import (
	"fmt"

	"github.com/polkabyte/polkameta/lib/metadata/frame"
)

// FromV14 builds the model from v14 wire metadata by first upgrading it
// into the v15 normal form. The fields v14 lacks are recovered from the
// registry: the extrinsic part type ids come from the generic
// parameters of the UncheckedExtrinsic type, the outer call and event
// enums are located by ident, and a missing outer error enum is
// synthesized from the pallet error types.
//
// A missing extrinsic parameter is a hard error rather than a silent
// skip: everything downstream of retention assumes the outer call enum
// is known.
func FromV14(m *frame.RuntimeMetadataV14) (*Metadata, error) {
	v15, err := upgradeV14(m)
	if err != nil {
		return nil, err
	}

	md, err := FromV15(v15)
	if err != nil {
		return nil, err
	}

	md.version = frame.VersionV14
	extrinsicType := uint32(m.Extrinsic.Type)
	md.extrinsic.extrinsicType = &extrinsicType
	return md, nil
}

// upgradeV14 bridges v14 wire metadata to v15 without mutating the
// input. The returned value may carry one extra registry entry, the
// synthesized outer error enum.
func upgradeV14(m *frame.RuntimeMetadataV14) (*frame.RuntimeMetadataV15, error) {
	types := append([]frame.PortableType(nil), m.Types...)

	parts, err := extrinsicParts(m)
	if err != nil {
		return nil, err
	}

	callEnum, ok := findVariantByIdent(types, "RuntimeCall")
	if !ok {
		return nil, fmt.Errorf("%w: RuntimeCall", ErrOuterEnumNotFound)
	}
	eventEnum, ok := findVariantByIdent(types, "RuntimeEvent")
	if !ok {
		return nil, fmt.Errorf("%w: RuntimeEvent", ErrOuterEnumNotFound)
	}
	errorEnum, ok := findVariantByIdent(types, "RuntimeError")
	if !ok {
		errorEnum, types = synthesizeErrorEnum(m, types, callEnum)
	}

	pallets := make([]frame.PalletMetadataV15, 0, len(m.Pallets))
	for _, p := range m.Pallets {
		pallets = append(pallets, frame.PalletMetadataV15{
			Name:      p.Name,
			Storage:   p.Storage,
			Calls:     p.Calls,
			Event:     p.Event,
			Constants: p.Constants,
			Error:     p.Error,
			Index:     p.Index,
		})
	}

	return &frame.RuntimeMetadataV15{
		Types:   types,
		Pallets: pallets,
		Extrinsic: frame.ExtrinsicMetadataV15{
			Version:          m.Extrinsic.Version,
			AddressType:      parts.address,
			CallType:         parts.call,
			SignatureType:    parts.signature,
			ExtraType:        parts.extra,
			SignedExtensions: m.Extrinsic.SignedExtensions,
		},
		Type: m.Type,
		OuterEnums: frame.OuterEnums{
			CallType:  callEnum,
			EventType: eventEnum,
			ErrorType: errorEnum,
		},
	}, nil
}

type extrinsicPartIDs struct {
	address   frame.Compact
	call      frame.Compact
	signature frame.Compact
	extra     frame.Compact
}

// extrinsicParts recovers the extrinsic's constituent type ids from the
// generic parameters of its UncheckedExtrinsic type.
func extrinsicParts(m *frame.RuntimeMetadataV14) (extrinsicPartIDs, error) {
	extrinsicID := uint32(m.Extrinsic.Type)
	if extrinsicID >= uint32(len(m.Types)) {
		return extrinsicPartIDs{}, fmt.Errorf("%w: extrinsic type id %d", ErrTypeNotFound, extrinsicID)
	}
	params := m.Types[extrinsicID].Type.Params

	find := func(name string) (frame.Compact, error) {
		for _, p := range params {
			if p.Name == name && p.Type.HasValue {
				return p.Type.Value, nil
			}
		}
		return 0, fmt.Errorf("%w: %s", ErrExtrinsicPartNotFound, name)
	}

	var (
		parts extrinsicPartIDs
		err   error
	)
	if parts.address, err = find("Address"); err != nil {
		return extrinsicPartIDs{}, err
	}
	if parts.call, err = find("Call"); err != nil {
		return extrinsicPartIDs{}, err
	}
	if parts.signature, err = find("Signature"); err != nil {
		return extrinsicPartIDs{}, err
	}
	if parts.extra, err = find("Extra"); err != nil {
		return extrinsicPartIDs{}, err
	}
	return parts, nil
}

// findVariantByIdent returns the id of the first variant type whose
// path ends in the given ident.
func findVariantByIdent(types []frame.PortableType, ident string) (frame.Compact, bool) {
	for _, t := range types {
		path := t.Type.Path
		if len(path) == 0 || path[len(path)-1] != ident {
			continue
		}
		if !t.Type.Def.IsVariant {
			continue
		}
		return t.ID, true
	}
	return 0, false
}

// synthesizeErrorEnum builds an outer error enum from the pallet error
// types and appends it to the registry, mirroring the shape the runtime
// itself would have generated. Its path reuses the call enum's
// namespace.
func synthesizeErrorEnum(
	m *frame.RuntimeMetadataV14,
	types []frame.PortableType,
	callEnum frame.Compact,
) (frame.Compact, []frame.PortableType) {
	var variants []frame.SiVariant
	for _, p := range m.Pallets {
		if !p.Error.HasValue {
			continue
		}
		variants = append(variants, frame.SiVariant{
			Name: p.Name,
			Fields: []frame.SiField{{
				Type:     p.Error.Value.Type,
				TypeName: frame.Some(p.Name + "Error"),
			}},
			Index: p.Index,
		})
	}

	callPath := types[callEnum].Type.Path
	path := append([]string(nil), callPath...)
	if len(path) > 0 {
		path[len(path)-1] = "RuntimeError"
	} else {
		path = []string{"RuntimeError"}
	}

	id := frame.Compact(len(types))
	types = append(types, frame.PortableType{
		ID: id,
		Type: frame.SiType{
			Path: path,
			Def: frame.SiTypeDef{
				IsVariant: true,
				Variant:   frame.SiVariantDef{Variants: variants},
			},
		},
	})
	return id, types
}
