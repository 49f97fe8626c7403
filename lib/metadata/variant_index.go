// Copyright 2025 Polkabyte Labs
// SPDX-License-Identifier: LGPL-3.0-only

package metadata

import (
	"fmt"

	"github.com/polkabyte/polkameta/lib/registry"
)

// VariantIndex is a prebuilt lookup from an enum's discriminant byte or
// variant name to the variant itself. Pallets carry one per call, event
// and error type so per-byte dispatch never rescans the registry.
type VariantIndex struct {
	variants []registry.Variant
	byIndex  map[uint8]int
	byName   map[string]int
}

// NewVariantIndex builds the index for the given type id. A nil id
// yields an empty index; a non-variant type is an error.
func NewVariantIndex(id *uint32, reg *registry.Registry) (VariantIndex, error) {
	if id == nil {
		return VariantIndex{}, nil
	}

	ty, ok := reg.Resolve(*id)
	if !ok {
		return VariantIndex{}, fmt.Errorf("%w: id %d", ErrTypeNotFound, *id)
	}
	def, ok := ty.Def.(registry.DefVariant)
	if !ok {
		return VariantIndex{}, fmt.Errorf("%w: id %d is %T", ErrVariantTypeExpected, *id, ty.Def)
	}

	vi := VariantIndex{
		variants: def.Variants,
		byIndex:  make(map[uint8]int, len(def.Variants)),
		byName:   make(map[string]int, len(def.Variants)),
	}
	for pos, v := range def.Variants {
		vi.byIndex[v.Index] = pos
		vi.byName[v.Name] = pos
	}
	return vi, nil
}

// ByIndex returns the variant with the given discriminant byte.
func (vi *VariantIndex) ByIndex(index uint8) (*registry.Variant, bool) {
	pos, ok := vi.byIndex[index]
	if !ok {
		return nil, false
	}
	return &vi.variants[pos], true
}

// ByName returns the variant with the given name.
func (vi *VariantIndex) ByName(name string) (*registry.Variant, bool) {
	pos, ok := vi.byName[name]
	if !ok {
		return nil, false
	}
	return &vi.variants[pos], true
}

// Variants returns the indexed variants in declaration order.
func (vi *VariantIndex) Variants() []registry.Variant {
	return vi.variants
}

// Len returns the number of indexed variants.
func (vi *VariantIndex) Len() int {
	return len(vi.variants)
}
