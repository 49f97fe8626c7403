// Copyright 2025 Polkabyte Labs
// SPDX-License-Identifier: LGPL-3.0-only

// Package metadata holds the version-normalized runtime metadata model:
// one immutable value per runtime spec version, built from any of the
// supported wire formats and shared by reference across all consumers.
package metadata

import (
	"fmt"

	"github.com/polkabyte/polkameta/lib/registry"
)

// dispatchErrorPath is the well-known path of the runtime's canonical
// dispatch error type.
var dispatchErrorPath = []string{"sp_runtime", "DispatchError"}

// Metadata is the normalized model. It is immutable once built; all
// mutation-shaped operations (retention) return a new value.
type Metadata struct {
	version uint8
	types   registry.Registry

	pallets        []Pallet
	palletsByName  map[string]int
	palletsByIndex map[uint8]int

	extrinsic         ExtrinsicMetadata
	runtimeType       uint32
	dispatchErrorType uint32

	apis       []RuntimeAPI
	apisByName map[string]int

	outerEnums OuterEnums
	custom     []CustomValue

	hashes *hashCache
}

// Version returns the wire format version this model was built from.
func (m *Metadata) Version() uint8 { return m.version }

// Types returns the model's type registry.
func (m *Metadata) Types() *registry.Registry { return &m.types }

// Pallets returns all pallets in wire order. The slice is shared;
// callers must not modify it.
func (m *Metadata) Pallets() []Pallet { return m.pallets }

// Pallet resolves a pallet by name.
func (m *Metadata) Pallet(name string) (*Pallet, error) {
	pos, ok := m.palletsByName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrPalletNotFound, name)
	}
	return &m.pallets[pos], nil
}

// PalletByIndex resolves a pallet by its wire-level numeric index.
func (m *Metadata) PalletByIndex(index uint8) (*Pallet, error) {
	pos, ok := m.palletsByIndex[index]
	if !ok {
		return nil, fmt.Errorf("%w: index %d", ErrPalletNotFound, index)
	}
	return &m.pallets[pos], nil
}

// Extrinsic returns the extrinsic metadata.
func (m *Metadata) Extrinsic() *ExtrinsicMetadata { return &m.extrinsic }

// RuntimeType returns the Runtime type id.
func (m *Metadata) RuntimeType() uint32 { return m.runtimeType }

// DispatchErrorType returns the sp_runtime::DispatchError type id.
func (m *Metadata) DispatchErrorType() uint32 { return m.dispatchErrorType }

// APIs returns all runtime API traits in wire order.
func (m *Metadata) APIs() []RuntimeAPI { return m.apis }

// API resolves a runtime API trait by name.
func (m *Metadata) API(name string) (*RuntimeAPI, error) {
	pos, ok := m.apisByName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrRuntimeAPINotFound, name)
	}
	return &m.apis[pos], nil
}

// OuterEnums returns the runtime's outer enum type ids.
func (m *Metadata) OuterEnums() OuterEnums { return m.outerEnums }

// Custom returns the metadata's custom values.
func (m *Metadata) Custom() []CustomValue { return m.custom }

// finish wires up the derived indices after the adapter has filled in
// the raw fields. Pallet and API positions must already be final.
func (m *Metadata) finish() error {
	m.palletsByName = make(map[string]int, len(m.pallets))
	m.palletsByIndex = make(map[uint8]int, len(m.pallets))
	for pos := range m.pallets {
		p := &m.pallets[pos]
		m.palletsByName[p.name] = pos
		m.palletsByIndex[p.index] = pos

		var err error
		if p.callIndex, err = NewVariantIndex(p.callType, &m.types); err != nil {
			return fmt.Errorf("pallet %s calls: %w", p.name, err)
		}
		if p.eventIndex, err = NewVariantIndex(p.eventType, &m.types); err != nil {
			return fmt.Errorf("pallet %s events: %w", p.name, err)
		}
		if p.errorIndex, err = NewVariantIndex(p.errorType, &m.types); err != nil {
			return fmt.Errorf("pallet %s errors: %w", p.name, err)
		}

		p.constantsByName = make(map[string]int, len(p.constants))
		for i, c := range p.constants {
			p.constantsByName[c.Name] = i
		}
		if p.storage != nil {
			p.storage.byName = make(map[string]int, len(p.storage.entries))
			for i, e := range p.storage.entries {
				p.storage.byName[e.name] = i
			}
		}
	}

	m.apisByName = make(map[string]int, len(m.apis))
	for pos := range m.apis {
		api := &m.apis[pos]
		m.apisByName[api.name] = pos
		api.methodsByName = make(map[string]int, len(api.methods))
		for i, method := range api.methods {
			api.methodsByName[method.Name] = i
		}
	}

	id, ok := m.types.FindByPath(dispatchErrorPath...)
	if !ok {
		return ErrDispatchErrorTypeNotFound
	}
	m.dispatchErrorType = id

	m.hashes = newHashCache()
	return nil
}
