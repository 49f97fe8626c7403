// Copyright 2025 Polkabyte Labs
// SPDX-License-Identifier: LGPL-3.0-only

package metadata

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"sort"
	"sync"

	"github.com/polkabyte/polkameta/lib/common"
	"github.com/polkabyte/polkameta/lib/registry"
)

// Structural validation hashes. Every hash is blake2b-256 over a
// kind-tagged byte string, so two models agree on a hash exactly when
// the reachable shape agrees. Paths and docs are excluded: renaming a
// type or editing its docs does not change how data encodes.
const (
	hashKindField     byte = 0
	hashKindVariant   byte = 1
	hashKindTypeDef   byte = 2
	hashKindType      byte = 3
	hashKindPallet    byte = 4
	hashKindExtrinsic byte = 5
	hashKindAPI       byte = 6
)

// Sub-tags for the eight type definition kinds.
const (
	hashDefComposite byte = iota
	hashDefVariant
	hashDefSequence
	hashDefArray
	hashDefTuple
	hashDefPrimitive
	hashDefCompact
	hashDefBitSequence
)

// hashCache memoizes per-type structural hashes. Type hashes walk the
// whole referenced subtree, so recomputing them per lookup would be
// quadratic over a realistic registry.
type hashCache struct {
	mu    sync.Mutex
	types map[uint32][32]byte
}

func newHashCache() *hashCache {
	return &hashCache{types: make(map[uint32][32]byte)}
}

func (c *hashCache) get(id uint32) ([32]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	h, ok := c.types[id]
	return h, ok
}

func (c *hashCache) put(id uint32, h [32]byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.types[id] = h
}

// TypeHash returns the structural hash of the type subtree rooted at id.
func (m *Metadata) TypeHash(id uint32) ([32]byte, error) {
	return m.typeHash(id, make(map[uint32]struct{}))
}

func (m *Metadata) typeHash(id uint32, visited map[uint32]struct{}) ([32]byte, error) {
	topLevel := len(visited) == 0
	if topLevel {
		if h, ok := m.hashes.get(id); ok {
			return h, nil
		}
	}

	// Recursive types terminate on a fixed sentinel: the second visit
	// of an id contributes the bare kind tag. Only a hash computed with
	// an empty visited set describes the full subtree, so only those
	// are cached.
	if _, seen := visited[id]; seen {
		return common.MustBlake2b256([]byte{hashKindType}), nil
	}
	visited[id] = struct{}{}

	ty, ok := m.types.Resolve(id)
	if !ok {
		return [32]byte{}, fmt.Errorf("%w: id %d", ErrTypeNotFound, id)
	}

	defHash, err := m.typeDefHash(ty.Def, visited)
	if err != nil {
		return [32]byte{}, err
	}

	buf := []byte{hashKindType}
	buf = append(buf, defHash[:]...)
	h := common.MustBlake2b256(buf)

	if topLevel {
		m.hashes.put(id, h)
	}
	return h, nil
}

func (m *Metadata) typeDefHash(def registry.TypeDef, visited map[uint32]struct{}) ([32]byte, error) {
	buf := []byte{hashKindTypeDef}

	switch d := def.(type) {
	case registry.DefComposite:
		buf = append(buf, hashDefComposite)
		for i := range d.Fields {
			fh, err := m.fieldHash(&d.Fields[i], visited)
			if err != nil {
				return [32]byte{}, err
			}
			buf = append(buf, fh[:]...)
		}
	case registry.DefVariant:
		buf = append(buf, hashDefVariant)
		// Variant declaration order is not part of the shape; the wire
		// discriminant is. Sort by name so reordered declarations hash
		// the same.
		variants := append([]registry.Variant(nil), d.Variants...)
		sort.Slice(variants, func(i, j int) bool { return variants[i].Name < variants[j].Name })
		for i := range variants {
			vh, err := m.variantHash(&variants[i], visited)
			if err != nil {
				return [32]byte{}, err
			}
			buf = append(buf, vh[:]...)
		}
	case registry.DefSequence:
		buf = append(buf, hashDefSequence)
		eh, err := m.typeHash(d.Elem, visited)
		if err != nil {
			return [32]byte{}, err
		}
		buf = append(buf, eh[:]...)
	case registry.DefArray:
		buf = append(buf, hashDefArray)
		buf = binary.LittleEndian.AppendUint32(buf, d.Len)
		eh, err := m.typeHash(d.Elem, visited)
		if err != nil {
			return [32]byte{}, err
		}
		buf = append(buf, eh[:]...)
	case registry.DefTuple:
		buf = append(buf, hashDefTuple)
		for _, elem := range d.Elems {
			eh, err := m.typeHash(elem, visited)
			if err != nil {
				return [32]byte{}, err
			}
			buf = append(buf, eh[:]...)
		}
	case registry.DefPrimitive:
		buf = append(buf, hashDefPrimitive, byte(d.Kind))
	case registry.DefCompact:
		buf = append(buf, hashDefCompact)
		ih, err := m.typeHash(d.Inner, visited)
		if err != nil {
			return [32]byte{}, err
		}
		buf = append(buf, ih[:]...)
	case registry.DefBitSequence:
		buf = append(buf, hashDefBitSequence)
		sh, err := m.typeHash(d.Store, visited)
		if err != nil {
			return [32]byte{}, err
		}
		oh, err := m.typeHash(d.Order, visited)
		if err != nil {
			return [32]byte{}, err
		}
		buf = append(buf, sh[:]...)
		buf = append(buf, oh[:]...)
	default:
		return [32]byte{}, fmt.Errorf("%w: unknown type definition %T", ErrTypeNotFound, def)
	}

	return common.MustBlake2b256(buf), nil
}

func (m *Metadata) fieldHash(f *registry.Field, visited map[uint32]struct{}) ([32]byte, error) {
	th, err := m.typeHash(f.Type, visited)
	if err != nil {
		return [32]byte{}, err
	}
	buf := appendString([]byte{hashKindField}, f.Name)
	buf = appendString(buf, f.TypeName)
	buf = append(buf, th[:]...)
	return common.MustBlake2b256(buf), nil
}

func (m *Metadata) variantHash(v *registry.Variant, visited map[uint32]struct{}) ([32]byte, error) {
	buf := appendString([]byte{hashKindVariant}, v.Name)
	buf = append(buf, v.Index)
	for i := range v.Fields {
		fh, err := m.fieldHash(&v.Fields[i], visited)
		if err != nil {
			return [32]byte{}, err
		}
		buf = append(buf, fh[:]...)
	}
	return common.MustBlake2b256(buf), nil
}

// StorageEntryHash returns the structural hash of one storage entry:
// its name, modifier, hasher chain, key and value type shapes and
// default bytes. It is the expectation hash storage addresses carry.
func (m *Metadata) StorageEntryHash(pallet, entry string) ([32]byte, error) {
	p, err := m.Pallet(pallet)
	if err != nil {
		return [32]byte{}, err
	}
	e, err := p.StorageEntry(entry)
	if err != nil {
		return [32]byte{}, err
	}
	return m.storageEntryHash(p.storage.prefix, e)
}

func (m *Metadata) storageEntryHash(prefix string, e *StorageEntry) ([32]byte, error) {
	buf := appendString(nil, prefix)
	buf = appendString(buf, e.name)
	buf = append(buf, byte(e.modifier))

	if keyType, ok := e.KeyType(); ok {
		buf = append(buf, 1)
		for _, h := range e.hashers {
			buf = append(buf, h.Wire())
		}
		kh, err := m.typeHash(keyType, make(map[uint32]struct{}))
		if err != nil {
			return [32]byte{}, err
		}
		buf = append(buf, kh[:]...)
	} else {
		buf = append(buf, 0)
	}

	vh, err := m.typeHash(e.valueType, make(map[uint32]struct{}))
	if err != nil {
		return [32]byte{}, err
	}
	buf = append(buf, vh[:]...)
	buf = append(buf, e.defaultValue...)
	return common.MustBlake2b256(buf), nil
}

// CallHash returns the structural hash of one call variant.
func (m *Metadata) CallHash(pallet, call string) ([32]byte, error) {
	p, err := m.Pallet(pallet)
	if err != nil {
		return [32]byte{}, err
	}
	v, ok := p.Calls().ByName(call)
	if !ok {
		return [32]byte{}, fmt.Errorf("%w: %s.%s", ErrVariantNotFound, pallet, call)
	}
	return m.variantHash(v, make(map[uint32]struct{}))
}

// ConstantHash returns the structural hash of one pallet constant.
func (m *Metadata) ConstantHash(pallet, constant string) ([32]byte, error) {
	p, err := m.Pallet(pallet)
	if err != nil {
		return [32]byte{}, err
	}
	c, err := p.Constant(constant)
	if err != nil {
		return [32]byte{}, err
	}
	th, err := m.TypeHash(c.Type)
	if err != nil {
		return [32]byte{}, err
	}
	buf := appendString(nil, c.Name)
	buf = append(buf, c.Value...)
	buf = append(buf, th[:]...)
	return common.MustBlake2b256(buf), nil
}

// RuntimeAPIHash returns the structural hash of one runtime API trait
// with all of its methods.
func (m *Metadata) RuntimeAPIHash(name string) ([32]byte, error) {
	api, err := m.API(name)
	if err != nil {
		return [32]byte{}, err
	}
	buf := appendString([]byte{hashKindAPI}, api.name)
	for _, method := range api.methods {
		buf = appendString(buf, method.Name)
		for _, in := range method.Inputs {
			ih, err := m.TypeHash(in.Type)
			if err != nil {
				return [32]byte{}, err
			}
			buf = appendString(buf, in.Name)
			buf = append(buf, ih[:]...)
		}
		oh, err := m.TypeHash(method.Output)
		if err != nil {
			return [32]byte{}, err
		}
		buf = append(buf, oh[:]...)
	}
	return common.MustBlake2b256(buf), nil
}

// PalletHash returns the structural hash of one pallet: calls, events,
// errors, constants and storage entries, each section behind a
// presence byte.
func (m *Metadata) PalletHash(pallet string) ([32]byte, error) {
	p, err := m.Pallet(pallet)
	if err != nil {
		return [32]byte{}, err
	}
	return m.palletHash(p)
}

func (m *Metadata) palletHash(p *Pallet) ([32]byte, error) {
	buf := appendString([]byte{hashKindPallet}, p.name)

	for _, id := range []*uint32{p.callType, p.eventType, p.errorType} {
		if id == nil {
			buf = append(buf, 0)
			continue
		}
		buf = append(buf, 1)
		th, err := m.TypeHash(*id)
		if err != nil {
			return [32]byte{}, err
		}
		buf = append(buf, th[:]...)
	}

	// Constants and storage entries hash in name order so declaration
	// shuffles do not register as drift.
	constants := append([]Constant(nil), p.constants...)
	sort.Slice(constants, func(i, j int) bool { return constants[i].Name < constants[j].Name })
	for _, c := range constants {
		th, err := m.TypeHash(c.Type)
		if err != nil {
			return [32]byte{}, err
		}
		buf = appendString(buf, c.Name)
		buf = append(buf, c.Value...)
		buf = append(buf, th[:]...)
	}

	if p.storage == nil {
		buf = append(buf, 0)
	} else {
		buf = append(buf, 1)
		entries := append([]StorageEntry(nil), p.storage.entries...)
		sort.Slice(entries, func(i, j int) bool { return entries[i].name < entries[j].name })
		for i := range entries {
			eh, err := m.storageEntryHash(p.storage.prefix, &entries[i])
			if err != nil {
				return [32]byte{}, err
			}
			buf = append(buf, eh[:]...)
		}
	}

	return common.MustBlake2b256(buf), nil
}

// ExtrinsicHash returns the structural hash of the extrinsic metadata.
func (m *Metadata) ExtrinsicHash() ([32]byte, error) {
	e := &m.extrinsic
	buf := append([]byte{hashKindExtrinsic}, e.supportedVersions...)

	ah, err := m.TypeHash(e.addressType)
	if err != nil {
		return [32]byte{}, err
	}
	sh, err := m.TypeHash(e.signatureType)
	if err != nil {
		return [32]byte{}, err
	}
	buf = append(buf, ah[:]...)
	buf = append(buf, sh[:]...)

	for _, ext := range e.extensions {
		xh, err := m.TypeHash(ext.ExtraType)
		if err != nil {
			return [32]byte{}, err
		}
		addh, err := m.TypeHash(ext.AdditionalType)
		if err != nil {
			return [32]byte{}, err
		}
		buf = appendString(buf, ext.Identifier)
		buf = append(buf, xh[:]...)
		buf = append(buf, addh[:]...)
	}
	return common.MustBlake2b256(buf), nil
}

// Hash returns the structural hash of the whole model: all pallets and
// runtime APIs (each set sorted so ordering never matters), the
// extrinsic shape and the outer enum and runtime type shapes.
func (m *Metadata) Hash() ([32]byte, error) {
	palletHashes := make([][32]byte, 0, len(m.pallets))
	for i := range m.pallets {
		h, err := m.palletHash(&m.pallets[i])
		if err != nil {
			return [32]byte{}, err
		}
		palletHashes = append(palletHashes, h)
	}
	sort.Slice(palletHashes, func(i, j int) bool {
		return bytes.Compare(palletHashes[i][:], palletHashes[j][:]) < 0
	})

	apiHashes := make([][32]byte, 0, len(m.apis))
	for i := range m.apis {
		h, err := m.RuntimeAPIHash(m.apis[i].name)
		if err != nil {
			return [32]byte{}, err
		}
		apiHashes = append(apiHashes, h)
	}
	sort.Slice(apiHashes, func(i, j int) bool {
		return bytes.Compare(apiHashes[i][:], apiHashes[j][:]) < 0
	})

	var buf []byte
	for _, h := range palletHashes {
		buf = append(buf, h[:]...)
	}
	for _, h := range apiHashes {
		buf = append(buf, h[:]...)
	}

	eh, err := m.ExtrinsicHash()
	if err != nil {
		return [32]byte{}, err
	}
	buf = append(buf, eh[:]...)

	for _, id := range []uint32{
		m.runtimeType,
		m.outerEnums.CallType,
		m.outerEnums.EventType,
		m.outerEnums.ErrorType,
	} {
		th, err := m.TypeHash(id)
		if err != nil {
			return [32]byte{}, err
		}
		buf = append(buf, th[:]...)
	}

	return common.MustBlake2b256(buf), nil
}

// appendString appends a length-prefixed string, keeping adjacent
// strings from running together in the hashed byte stream.
func appendString(buf []byte, s string) []byte {
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(s)))
	return append(buf, s...)
}
