// Copyright 2025 Polkabyte Labs
// SPDX-License-Identifier: LGPL-3.0-only

package registry

import (
	"fmt"
)

// Retain returns a new registry containing only the types reachable from
// the ids for which keep returns true, densely renumbered from zero in
// their original relative order, together with the old-id to new-id map.
//
// The reachability walk uses an explicit work list and visited set, so
// self-referential and mutually recursive types terminate. Every type id
// referenced by a surviving type is rewritten to its new id; callers must
// do the same for ids they store elsewhere, using the returned map.
func (r *Registry) Retain(keep func(uint32) bool) (Registry, map[uint32]uint32) {
	visited := make(map[uint32]struct{}, len(r.types))
	var work []uint32

	for id := uint32(0); int(id) < len(r.types); id++ {
		if keep(id) {
			if _, ok := visited[id]; !ok {
				visited[id] = struct{}{}
				work = append(work, id)
			}
		}
	}

	for len(work) > 0 {
		id := work[0]
		work = work[1:]

		ty := &r.types[id]
		for _, ref := range referencedIDs(ty) {
			if _, ok := visited[ref]; ok {
				continue
			}
			if int(ref) >= len(r.types) {
				panic(fmt.Sprintf("registry: type %d references unknown type %d", id, ref))
			}
			visited[ref] = struct{}{}
			work = append(work, ref)
		}
	}

	remap := make(map[uint32]uint32, len(visited))
	newTypes := make([]Type, 0, len(visited))
	for id := uint32(0); int(id) < len(r.types); id++ {
		if _, ok := visited[id]; !ok {
			continue
		}
		remap[id] = uint32(len(newTypes))
		newTypes = append(newTypes, r.types[id])
	}

	for i := range newTypes {
		newTypes[i] = remapType(newTypes[i], uint32(i), remap)
	}

	return Registry{types: newTypes}, remap
}

// referencedIDs returns every type id the given type refers to, through
// its definition and its generic parameter bindings.
func referencedIDs(ty *Type) []uint32 {
	var ids []uint32

	for _, param := range ty.Params {
		if param.Type != nil {
			ids = append(ids, *param.Type)
		}
	}

	switch def := ty.Def.(type) {
	case DefComposite:
		for _, f := range def.Fields {
			ids = append(ids, f.Type)
		}
	case DefVariant:
		for _, v := range def.Variants {
			for _, f := range v.Fields {
				ids = append(ids, f.Type)
			}
		}
	case DefSequence:
		ids = append(ids, def.Elem)
	case DefArray:
		ids = append(ids, def.Elem)
	case DefTuple:
		ids = append(ids, def.Elems...)
	case DefCompact:
		ids = append(ids, def.Inner)
	case DefBitSequence:
		ids = append(ids, def.Store, def.Order)
	case DefPrimitive:
	}

	return ids
}

// remapType deep-copies ty, assigning it newID and rewriting every type
// reference through remap. A reference missing from the map is a bug in
// the reachability walk and fails loudly.
func remapType(ty Type, newID uint32, remap map[uint32]uint32) Type {
	lookup := func(old uint32) uint32 {
		newer, ok := remap[old]
		if !ok {
			panic(fmt.Sprintf("registry: retain did not keep type id %d, this is a bug", old))
		}
		return newer
	}

	out := ty
	out.ID = newID

	if len(ty.Params) > 0 {
		out.Params = make([]TypeParam, len(ty.Params))
		for i, param := range ty.Params {
			out.Params[i] = param
			if param.Type != nil {
				mapped := lookup(*param.Type)
				out.Params[i].Type = &mapped
			}
		}
	}

	switch def := ty.Def.(type) {
	case DefComposite:
		out.Def = DefComposite{Fields: remapFields(def.Fields, lookup)}
	case DefVariant:
		variants := make([]Variant, len(def.Variants))
		for i, v := range def.Variants {
			variants[i] = v
			variants[i].Fields = remapFields(v.Fields, lookup)
		}
		out.Def = DefVariant{Variants: variants}
	case DefSequence:
		out.Def = DefSequence{Elem: lookup(def.Elem)}
	case DefArray:
		out.Def = DefArray{Len: def.Len, Elem: lookup(def.Elem)}
	case DefTuple:
		elems := make([]uint32, len(def.Elems))
		for i, e := range def.Elems {
			elems[i] = lookup(e)
		}
		out.Def = DefTuple{Elems: elems}
	case DefCompact:
		out.Def = DefCompact{Inner: lookup(def.Inner)}
	case DefBitSequence:
		out.Def = DefBitSequence{Store: lookup(def.Store), Order: lookup(def.Order)}
	}

	return out
}

func remapFields(fields []Field, lookup func(uint32) uint32) []Field {
	out := make([]Field, len(fields))
	for i, f := range fields {
		out[i] = f
		out[i].Type = lookup(f.Type)
	}
	return out
}
