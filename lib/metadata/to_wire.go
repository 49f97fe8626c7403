// Copyright 2025 Polkabyte Labs
// SPDX-License-Identifier: LGPL-3.0-only

package metadata

import (
	"fmt"

	"github.com/polkabyte/polkameta/lib/metadata/frame"
)

// FromWire builds the model from a version-tagged wire value.
func FromWire(d *frame.Decoded) (*Metadata, error) {
	switch {
	case d.V14 != nil:
		return FromV14(d.V14)
	case d.V15 != nil:
		return FromV15(d.V15)
	case d.V16 != nil:
		return FromV16(d.V16)
	default:
		return nil, fmt.Errorf("%w: %d", frame.ErrUnsupportedVersion, d.Version)
	}
}

// FromBlob decodes a raw metadata blob and builds the model from it.
func FromBlob(blob []byte) (*Metadata, error) {
	d, err := frame.Decode(blob)
	if err != nil {
		return nil, err
	}
	return FromWire(d)
}

// ToWire converts the model back into the wire format it was built
// from. Together with retention this supports stripping a blob without
// changing its version.
func (m *Metadata) ToWire() (*frame.Decoded, error) {
	switch m.version {
	case frame.VersionV14:
		v14, err := m.ToV14()
		if err != nil {
			return nil, err
		}
		return &frame.Decoded{Version: frame.VersionV14, V14: v14}, nil
	case frame.VersionV15:
		v15, err := m.ToV15()
		if err != nil {
			return nil, err
		}
		return &frame.Decoded{Version: frame.VersionV15, V15: v15}, nil
	case frame.VersionV16:
		return &frame.Decoded{Version: frame.VersionV16, V16: m.ToV16()}, nil
	default:
		return nil, fmt.Errorf("%w: %d", frame.ErrUnsupportedVersion, m.version)
	}
}

// ToV15 writes the model back out as v15 wire metadata. Models built
// from v16 lack the v15 extrinsic extra type and cannot be downgraded.
func (m *Metadata) ToV15() (*frame.RuntimeMetadataV15, error) {
	if m.extrinsic.extraType == nil {
		return nil, fmt.Errorf("%w: extrinsic extra type unknown", ErrLossyConversion)
	}
	if len(m.extrinsic.supportedVersions) == 0 {
		return nil, fmt.Errorf("%w: no extrinsic version", ErrLossyConversion)
	}

	pallets := make([]frame.PalletMetadataV15, 0, len(m.pallets))
	for i := range m.pallets {
		p := &m.pallets[i]
		pallets = append(pallets, frame.PalletMetadataV15{
			Name:      p.name,
			Storage:   toStorage(p.storage),
			Calls:     toOptCall(p.callType),
			Event:     toOptEvent(p.eventType),
			Constants: toConstants(p.constants),
			Error:     toOptError(p.errorType),
			Index:     p.index,
			Docs:      p.docs,
		})
	}

	extensions := make([]frame.SignedExtensionMetadata, 0, len(m.extrinsic.extensions))
	for _, ext := range m.extrinsic.extensions {
		extensions = append(extensions, frame.SignedExtensionMetadata{
			Identifier:       ext.Identifier,
			Type:             frame.Compact(ext.ExtraType),
			AdditionalSigned: frame.Compact(ext.AdditionalType),
		})
	}

	apis := make([]frame.RuntimeAPIMetadata, 0, len(m.apis))
	for i := range m.apis {
		api := &m.apis[i]
		apis = append(apis, frame.RuntimeAPIMetadata{
			Name:    api.name,
			Methods: toAPIMethods(api.methods),
			Docs:    api.docs,
		})
	}

	return &frame.RuntimeMetadataV15{
		Types:   frame.FromRegistry(&m.types),
		Pallets: pallets,
		Extrinsic: frame.ExtrinsicMetadataV15{
			Version:          m.extrinsic.supportedVersions[0],
			AddressType:      frame.Compact(m.extrinsic.addressType),
			CallType:         frame.Compact(m.outerEnums.CallType),
			SignatureType:    frame.Compact(m.extrinsic.signatureType),
			ExtraType:        frame.Compact(*m.extrinsic.extraType),
			SignedExtensions: extensions,
		},
		Type: frame.Compact(m.runtimeType),
		APIs: apis,
		OuterEnums: frame.OuterEnums{
			CallType:  frame.Compact(m.outerEnums.CallType),
			EventType: frame.Compact(m.outerEnums.EventType),
			ErrorType: frame.Compact(m.outerEnums.ErrorType),
		},
		Custom: toCustom(m.custom),
	}, nil
}

// ToV14 writes the model back out as v14 wire metadata. The fields v14
// never carried (docs, runtime APIs, outer enums, custom values) are
// dropped; a model not built from v14 lacks the extrinsic type id and
// cannot be downgraded.
func (m *Metadata) ToV14() (*frame.RuntimeMetadataV14, error) {
	if m.extrinsic.extrinsicType == nil {
		return nil, fmt.Errorf("%w: extrinsic type unknown", ErrLossyConversion)
	}
	if len(m.extrinsic.supportedVersions) == 0 {
		return nil, fmt.Errorf("%w: no extrinsic version", ErrLossyConversion)
	}

	pallets := make([]frame.PalletMetadataV14, 0, len(m.pallets))
	for i := range m.pallets {
		p := &m.pallets[i]
		pallets = append(pallets, frame.PalletMetadataV14{
			Name:      p.name,
			Storage:   toStorage(p.storage),
			Calls:     toOptCall(p.callType),
			Event:     toOptEvent(p.eventType),
			Constants: toConstants(p.constants),
			Error:     toOptError(p.errorType),
			Index:     p.index,
		})
	}

	extensions := make([]frame.SignedExtensionMetadata, 0, len(m.extrinsic.extensions))
	for _, ext := range m.extrinsic.extensions {
		extensions = append(extensions, frame.SignedExtensionMetadata{
			Identifier:       ext.Identifier,
			Type:             frame.Compact(ext.ExtraType),
			AdditionalSigned: frame.Compact(ext.AdditionalType),
		})
	}

	return &frame.RuntimeMetadataV14{
		Types:   frame.FromRegistry(&m.types),
		Pallets: pallets,
		Extrinsic: frame.ExtrinsicMetadataV14{
			Type:             frame.Compact(*m.extrinsic.extrinsicType),
			Version:          m.extrinsic.supportedVersions[0],
			SignedExtensions: extensions,
		},
		Type: frame.Compact(m.runtimeType),
	}, nil
}

// ToV16 writes the model back out as v16 wire metadata. Deprecation
// markers are not carried in the model, so everything is written as
// current.
func (m *Metadata) ToV16() *frame.RuntimeMetadataV16 {
	pallets := make([]frame.PalletMetadataV16, 0, len(m.pallets))
	for i := range m.pallets {
		p := &m.pallets[i]

		wp := frame.PalletMetadataV16{
			Name:      p.name,
			Constants: toConstantsV16(p.constants),
			Index:     p.index,
			Docs:      p.docs,
		}
		if p.storage != nil {
			storage := frame.StorageMetadataV16{Prefix: p.storage.prefix}
			for j := range p.storage.entries {
				e := &p.storage.entries[j]
				storage.Entries = append(storage.Entries, frame.StorageEntryMetadataV16{
					Name:     e.name,
					Modifier: uint8(e.modifier),
					Type:     toStorageEntryType(e),
					Default:  e.defaultValue,
					Docs:     e.docs,
				})
			}
			wp.Storage = frame.OptionStorageV16{HasValue: true, Value: storage}
		}
		if p.callType != nil {
			wp.Calls = frame.OptionPalletCallV16{HasValue: true, Value: frame.PalletCallMetadataV16{Type: frame.Compact(*p.callType)}}
		}
		if p.eventType != nil {
			wp.Event = frame.OptionPalletEventV16{HasValue: true, Value: frame.PalletEventMetadataV16{Type: frame.Compact(*p.eventType)}}
		}
		if p.errorType != nil {
			wp.Error = frame.OptionPalletErrorV16{HasValue: true, Value: frame.PalletErrorMetadataV16{Type: frame.Compact(*p.errorType)}}
		}
		for _, at := range p.associatedTypes {
			wp.AssociatedTypes = append(wp.AssociatedTypes, frame.PalletAssociatedType{
				Name: at.Name,
				Type: frame.Compact(at.Type),
				Docs: at.Docs,
			})
		}
		for _, vf := range p.viewFunctions {
			wp.ViewFunctions = append(wp.ViewFunctions, frame.PalletViewFunction{
				Name:   vf.Name,
				ID:     vf.ID,
				Inputs: toAPIParams(vf.Inputs),
				Output: frame.Compact(vf.Output),
				Docs:   vf.Docs,
			})
		}
		pallets = append(pallets, wp)
	}

	extensions := make([]frame.TransactionExtensionMetadata, 0, len(m.extrinsic.extensions))
	for _, ext := range m.extrinsic.extensions {
		extensions = append(extensions, frame.TransactionExtensionMetadata{
			Identifier: ext.Identifier,
			Type:       frame.Compact(ext.ExtraType),
			Implicit:   frame.Compact(ext.AdditionalType),
		})
	}
	byVersion := make([]frame.ExtensionsByVersion, 0, len(m.extrinsic.byVersion))
	for _, bv := range m.extrinsic.byVersion {
		indices := make([]frame.Compact, 0, len(bv.Indices))
		for _, idx := range bv.Indices {
			indices = append(indices, frame.Compact(idx))
		}
		byVersion = append(byVersion, frame.ExtensionsByVersion{Version: bv.Version, Indices: indices})
	}

	apis := make([]frame.RuntimeAPIMetadataV16, 0, len(m.apis))
	for i := range m.apis {
		api := &m.apis[i]
		var methods []frame.RuntimeAPIMethodMetadataV16
		for _, method := range api.methods {
			methods = append(methods, frame.RuntimeAPIMethodMetadataV16{
				Name:   method.Name,
				Inputs: toAPIParams(method.Inputs),
				Output: frame.Compact(method.Output),
				Docs:   method.Docs,
			})
		}
		apis = append(apis, frame.RuntimeAPIMetadataV16{
			Name:    api.name,
			Methods: methods,
			Docs:    api.docs,
		})
	}

	return &frame.RuntimeMetadataV16{
		Types:   frame.FromRegistry(&m.types),
		Pallets: pallets,
		Extrinsic: frame.ExtrinsicMetadataV16{
			Versions:              m.extrinsic.supportedVersions,
			AddressType:           frame.Compact(m.extrinsic.addressType),
			SignatureType:         frame.Compact(m.extrinsic.signatureType),
			ExtensionsByVersion:   byVersion,
			TransactionExtensions: extensions,
		},
		APIs: apis,
		OuterEnums: frame.OuterEnums{
			CallType:  frame.Compact(m.outerEnums.CallType),
			EventType: frame.Compact(m.outerEnums.EventType),
			ErrorType: frame.Compact(m.outerEnums.ErrorType),
		},
		Custom: toCustom(m.custom),
	}
}

func toStorage(s *StorageMetadata) frame.OptionStorage {
	if s == nil {
		return frame.OptionStorage{}
	}
	out := frame.StorageMetadata{Prefix: s.prefix}
	for i := range s.entries {
		e := &s.entries[i]
		out.Entries = append(out.Entries, frame.StorageEntryMetadata{
			Name:     e.name,
			Modifier: uint8(e.modifier),
			Type:     toStorageEntryType(e),
			Default:  e.defaultValue,
			Docs:     e.docs,
		})
	}
	return frame.OptionStorage{HasValue: true, Value: out}
}

func toStorageEntryType(e *StorageEntry) frame.StorageEntryType {
	if e.keyType == nil {
		return frame.StorageEntryType{IsPlain: true, Plain: frame.Compact(e.valueType)}
	}
	hashers := make([]uint8, 0, len(e.hashers))
	for _, h := range e.hashers {
		hashers = append(hashers, h.Wire())
	}
	return frame.StorageEntryType{IsMap: true, Map: frame.MapStorageEntry{
		Hashers: hashers,
		Key:     frame.Compact(*e.keyType),
		Value:   frame.Compact(e.valueType),
	}}
}

func toOptCall(id *uint32) frame.OptionPalletCall {
	if id == nil {
		return frame.OptionPalletCall{}
	}
	return frame.OptionPalletCall{HasValue: true, Value: frame.PalletCallMetadata{Type: frame.Compact(*id)}}
}

func toOptEvent(id *uint32) frame.OptionPalletEvent {
	if id == nil {
		return frame.OptionPalletEvent{}
	}
	return frame.OptionPalletEvent{HasValue: true, Value: frame.PalletEventMetadata{Type: frame.Compact(*id)}}
}

func toOptError(id *uint32) frame.OptionPalletError {
	if id == nil {
		return frame.OptionPalletError{}
	}
	return frame.OptionPalletError{HasValue: true, Value: frame.PalletErrorMetadata{Type: frame.Compact(*id)}}
}

func toConstants(in []Constant) []frame.PalletConstantMetadata {
	var out []frame.PalletConstantMetadata
	for _, c := range in {
		out = append(out, frame.PalletConstantMetadata{
			Name:  c.Name,
			Type:  frame.Compact(c.Type),
			Value: c.Value,
			Docs:  c.Docs,
		})
	}
	return out
}

func toConstantsV16(in []Constant) []frame.PalletConstantMetadataV16 {
	var out []frame.PalletConstantMetadataV16
	for _, c := range in {
		out = append(out, frame.PalletConstantMetadataV16{
			Name:  c.Name,
			Type:  frame.Compact(c.Type),
			Value: c.Value,
			Docs:  c.Docs,
		})
	}
	return out
}

func toAPIMethods(in []RuntimeAPIMethod) []frame.RuntimeAPIMethodMetadata {
	var out []frame.RuntimeAPIMethodMetadata
	for _, method := range in {
		out = append(out, frame.RuntimeAPIMethodMetadata{
			Name:   method.Name,
			Inputs: toAPIParams(method.Inputs),
			Output: frame.Compact(method.Output),
			Docs:   method.Docs,
		})
	}
	return out
}

func toAPIParams(in []RuntimeAPIParam) []frame.RuntimeAPIMethodParam {
	var out []frame.RuntimeAPIMethodParam
	for _, p := range in {
		out = append(out, frame.RuntimeAPIMethodParam{Name: p.Name, Type: frame.Compact(p.Type)})
	}
	return out
}

func toCustom(in []CustomValue) frame.CustomMetadata {
	var out frame.CustomMetadata
	for _, cv := range in {
		out.Map = append(out.Map, frame.CustomValuePair{
			Key:   cv.Name,
			Value: frame.CustomValueMetadata{Type: frame.Compact(cv.Type), Value: cv.Value},
		})
	}
	return out
}
