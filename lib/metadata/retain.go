// Copyright 2025 Polkabyte Labs
// SPDX-License-Identifier: LGPL-3.0-only

package metadata

import (
	"fmt"

	"github.com/polkabyte/polkameta/lib/registry"
)

// Retain produces a new model containing only the pallets and runtime
// APIs matching the predicates, with the type registry shrunk to
// exactly what the remainder references. The source is never touched.
//
// The outer call, event and error enums transitively reach every
// pallet, so their variant lists are filtered down to the kept pallet
// names before reachability runs; without that step retention would
// keep the whole type graph.
//
// Retain panics if the rewrite stage meets a type id the reachability
// walk did not keep; that is a defect in this engine, not bad input.
func Retain(src *Metadata, keepPallet, keepAPI func(string) bool) *Metadata {
	working := filterOuterEnums(src, keepPallet)

	keep := make(map[uint32]struct{})
	add := func(id uint32) { keep[id] = struct{}{} }
	addOpt := func(id *uint32) {
		if id != nil {
			add(*id)
		}
	}

	out := &Metadata{version: src.version, outerEnums: src.outerEnums}

	for i := range src.pallets {
		p := &src.pallets[i]
		if !keepPallet(p.name) {
			continue
		}
		out.pallets = append(out.pallets, copyPallet(p))

		if p.storage != nil {
			for j := range p.storage.entries {
				e := &p.storage.entries[j]
				addOpt(e.keyType)
				add(e.valueType)
			}
		}
		addOpt(p.callType)
		addOpt(p.eventType)
		addOpt(p.errorType)
		for _, c := range p.constants {
			add(c.Type)
		}
		for _, vf := range p.viewFunctions {
			for _, in := range vf.Inputs {
				add(in.Type)
			}
			add(vf.Output)
		}
		for _, at := range p.associatedTypes {
			add(at.Type)
		}
	}

	for i := range src.apis {
		api := &src.apis[i]
		if !keepAPI(api.name) {
			continue
		}
		out.apis = append(out.apis, copyAPI(api))
		for _, method := range api.methods {
			for _, in := range method.Inputs {
				add(in.Type)
			}
			add(method.Output)
		}
	}

	out.extrinsic = copyExtrinsic(&src.extrinsic)
	add(src.extrinsic.addressType)
	add(src.extrinsic.signatureType)
	for _, ext := range src.extrinsic.extensions {
		add(ext.ExtraType)
		add(ext.AdditionalType)
	}
	addOpt(src.extrinsic.extrinsicType)
	addOpt(src.extrinsic.extraType)

	add(src.runtimeType)
	add(src.dispatchErrorType)
	add(src.outerEnums.CallType)
	add(src.outerEnums.EventType)
	add(src.outerEnums.ErrorType)

	for _, cv := range src.custom {
		out.custom = append(out.custom, cv)
		add(cv.Type)
	}

	newTypes, remap := working.Retain(func(id uint32) bool {
		_, ok := keep[id]
		return ok
	})
	out.types = newTypes

	rewriteModel(out, remap)
	out.runtimeType = mustRemap(remap, src.runtimeType)

	if err := out.finish(); err != nil {
		// The source model was valid, so a failure here means the
		// engine broke an invariant it was supposed to preserve.
		panic(fmt.Sprintf("metadata: retention produced an inconsistent model: %v", err))
	}
	return out
}

// filterOuterEnums returns a copy of the source registry in which the
// outer enums carry only the variants named after kept pallets.
func filterOuterEnums(src *Metadata, keepPallet func(string) bool) registry.Registry {
	types := append([]registry.Type(nil), src.types.Types()...)

	seen := make(map[uint32]struct{}, 3)
	for _, id := range []uint32{
		src.outerEnums.CallType,
		src.outerEnums.EventType,
		src.outerEnums.ErrorType,
	} {
		if _, done := seen[id]; done || int(id) >= len(types) {
			continue
		}
		seen[id] = struct{}{}

		def, ok := types[id].Def.(registry.DefVariant)
		if !ok {
			continue
		}
		var kept []registry.Variant
		for _, v := range def.Variants {
			if keepPallet(v.Name) {
				kept = append(kept, v)
			}
		}
		types[id].Def = registry.DefVariant{Variants: kept}
	}

	return registry.NewRegistry(types)
}

func mustRemap(remap map[uint32]uint32, id uint32) uint32 {
	newID, ok := remap[id]
	if !ok {
		panic(fmt.Sprintf("metadata: retention did not keep type id %d, this is a bug", id))
	}
	return newID
}

func remapOpt(remap map[uint32]uint32, id *uint32) *uint32 {
	if id == nil {
		return nil
	}
	newID := mustRemap(remap, *id)
	return &newID
}

// rewriteModel rewrites every stored type id in the already-copied
// model through the remap.
func rewriteModel(m *Metadata, remap map[uint32]uint32) {
	for i := range m.pallets {
		p := &m.pallets[i]
		if p.storage != nil {
			for j := range p.storage.entries {
				e := &p.storage.entries[j]
				e.keyType = remapOpt(remap, e.keyType)
				e.valueType = mustRemap(remap, e.valueType)
			}
		}
		p.callType = remapOpt(remap, p.callType)
		p.eventType = remapOpt(remap, p.eventType)
		p.errorType = remapOpt(remap, p.errorType)
		for j := range p.constants {
			p.constants[j].Type = mustRemap(remap, p.constants[j].Type)
		}
		for j := range p.viewFunctions {
			vf := &p.viewFunctions[j]
			for k := range vf.Inputs {
				vf.Inputs[k].Type = mustRemap(remap, vf.Inputs[k].Type)
			}
			vf.Output = mustRemap(remap, vf.Output)
		}
		for j := range p.associatedTypes {
			p.associatedTypes[j].Type = mustRemap(remap, p.associatedTypes[j].Type)
		}
	}

	ext := &m.extrinsic
	ext.addressType = mustRemap(remap, ext.addressType)
	ext.signatureType = mustRemap(remap, ext.signatureType)
	for i := range ext.extensions {
		ext.extensions[i].ExtraType = mustRemap(remap, ext.extensions[i].ExtraType)
		ext.extensions[i].AdditionalType = mustRemap(remap, ext.extensions[i].AdditionalType)
	}
	ext.extrinsicType = remapOpt(remap, ext.extrinsicType)
	ext.extraType = remapOpt(remap, ext.extraType)

	for i := range m.apis {
		api := &m.apis[i]
		for j := range api.methods {
			method := &api.methods[j]
			for k := range method.Inputs {
				method.Inputs[k].Type = mustRemap(remap, method.Inputs[k].Type)
			}
			method.Output = mustRemap(remap, method.Output)
		}
	}

	m.outerEnums.CallType = mustRemap(remap, m.outerEnums.CallType)
	m.outerEnums.EventType = mustRemap(remap, m.outerEnums.EventType)
	m.outerEnums.ErrorType = mustRemap(remap, m.outerEnums.ErrorType)

	for i := range m.custom {
		m.custom[i].Type = mustRemap(remap, m.custom[i].Type)
	}
}

// copyPallet deep-copies the slices retention will rewrite.
func copyPallet(p *Pallet) Pallet {
	out := Pallet{
		name:            p.name,
		index:           p.index,
		callType:        copyOpt(p.callType),
		eventType:       copyOpt(p.eventType),
		errorType:       copyOpt(p.errorType),
		constants:       append([]Constant(nil), p.constants...),
		viewFunctions:   append([]ViewFunction(nil), p.viewFunctions...),
		associatedTypes: append([]AssociatedType(nil), p.associatedTypes...),
		docs:            p.docs,
	}
	for i := range out.viewFunctions {
		out.viewFunctions[i].Inputs = append([]RuntimeAPIParam(nil), out.viewFunctions[i].Inputs...)
	}
	if p.storage != nil {
		storage := &StorageMetadata{
			prefix:  p.storage.prefix,
			entries: append([]StorageEntry(nil), p.storage.entries...),
		}
		for i := range storage.entries {
			storage.entries[i].keyType = copyOpt(storage.entries[i].keyType)
		}
		out.storage = storage
	}
	return out
}

func copyAPI(api *RuntimeAPI) RuntimeAPI {
	out := RuntimeAPI{
		name:    api.name,
		methods: append([]RuntimeAPIMethod(nil), api.methods...),
		docs:    api.docs,
	}
	for i := range out.methods {
		out.methods[i].Inputs = append([]RuntimeAPIParam(nil), out.methods[i].Inputs...)
	}
	return out
}

func copyExtrinsic(ext *ExtrinsicMetadata) ExtrinsicMetadata {
	out := ExtrinsicMetadata{
		supportedVersions: append([]uint8(nil), ext.supportedVersions...),
		addressType:       ext.addressType,
		signatureType:     ext.signatureType,
		extensions:        append([]TransactionExtension(nil), ext.extensions...),
		byVersion:         append([]ExtensionsByVersion(nil), ext.byVersion...),
		extrinsicType:     copyOpt(ext.extrinsicType),
		extraType:         copyOpt(ext.extraType),
	}
	for i := range out.byVersion {
		out.byVersion[i].Indices = append([]uint32(nil), out.byVersion[i].Indices...)
	}
	return out
}

func copyOpt(id *uint32) *uint32 {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}
