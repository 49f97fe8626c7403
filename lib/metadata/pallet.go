// Copyright 2025 Polkabyte Labs
// SPDX-License-Identifier: LGPL-3.0-only

package metadata

import (
	"fmt"

	"github.com/polkabyte/polkameta/lib/registry"
)

// Pallet is one runtime module's metadata. Values are built by the
// version adapter and never mutated afterwards.
type Pallet struct {
	name    string
	index   uint8
	storage *StorageMetadata

	callType   *uint32
	callIndex  VariantIndex
	eventType  *uint32
	eventIndex VariantIndex
	errorType  *uint32
	errorIndex VariantIndex

	constants       []Constant
	constantsByName map[string]int

	viewFunctions   []ViewFunction
	associatedTypes []AssociatedType
	docs            []string
}

// Name returns the pallet name.
func (p *Pallet) Name() string { return p.name }

// Index returns the pallet's wire-level numeric index.
func (p *Pallet) Index() uint8 { return p.index }

// Docs returns the pallet documentation lines.
func (p *Pallet) Docs() []string { return p.docs }

// Storage returns the pallet's storage metadata, or nil when the pallet
// declares no storage.
func (p *Pallet) Storage() *StorageMetadata { return p.storage }

// StorageEntry resolves a storage entry by name.
func (p *Pallet) StorageEntry(name string) (*StorageEntry, error) {
	if p.storage == nil {
		return nil, fmt.Errorf("%w: %s.%s", ErrStorageEntryNotFound, p.name, name)
	}
	entry, ok := p.storage.Entry(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s.%s", ErrStorageEntryNotFound, p.name, name)
	}
	return entry, nil
}

// CallType returns the pallet's call enum type id, if it has calls.
func (p *Pallet) CallType() (uint32, bool) {
	return deref(p.callType)
}

// EventType returns the pallet's event enum type id, if it has events.
func (p *Pallet) EventType() (uint32, bool) {
	return deref(p.eventType)
}

// ErrorType returns the pallet's error enum type id, if it has errors.
func (p *Pallet) ErrorType() (uint32, bool) {
	return deref(p.errorType)
}

// Calls returns the variant index over the pallet's call enum.
func (p *Pallet) Calls() *VariantIndex { return &p.callIndex }

// Events returns the variant index over the pallet's event enum.
func (p *Pallet) Events() *VariantIndex { return &p.eventIndex }

// Errors returns the variant index over the pallet's error enum.
func (p *Pallet) Errors() *VariantIndex { return &p.errorIndex }

// Constant resolves a pallet constant by name.
func (p *Pallet) Constant(name string) (*Constant, error) {
	pos, ok := p.constantsByName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s.%s", ErrConstantNotFound, p.name, name)
	}
	return &p.constants[pos], nil
}

// Constants returns the pallet constants in declaration order.
func (p *Pallet) Constants() []Constant { return p.constants }

// ViewFunctions returns the pallet's view functions (v16 onwards).
func (p *Pallet) ViewFunctions() []ViewFunction { return p.viewFunctions }

// AssociatedTypes returns the pallet's associated types (v16 onwards).
func (p *Pallet) AssociatedTypes() []AssociatedType { return p.associatedTypes }

func deref(id *uint32) (uint32, bool) {
	if id == nil {
		return 0, false
	}
	return *id, true
}

// StorageMetadata is the storage section of one pallet: a hashing
// prefix plus the declared entries.
type StorageMetadata struct {
	prefix  string
	entries []StorageEntry
	byName  map[string]int
}

// Prefix returns the storage prefix, usually the pallet name.
func (s *StorageMetadata) Prefix() string { return s.prefix }

// Entries returns the storage entries in declaration order.
func (s *StorageMetadata) Entries() []StorageEntry { return s.entries }

// Entry returns the storage entry with the given name.
func (s *StorageMetadata) Entry(name string) (*StorageEntry, bool) {
	pos, ok := s.byName[name]
	if !ok {
		return nil, false
	}
	return &s.entries[pos], true
}

// Storage entry modifiers.
type StorageModifier uint8

const (
	// StorageModifierOptional means a missing value decodes to nothing.
	StorageModifierOptional StorageModifier = 0
	// StorageModifierDefault means a missing value decodes to the
	// entry's default bytes.
	StorageModifierDefault StorageModifier = 1
)

// StorageEntry is one storage item: a plain value or a map from one or
// more hashed keys to a value.
type StorageEntry struct {
	name         string
	modifier     StorageModifier
	hashers      []Hasher // empty for plain entries
	keyType      *uint32  // nil for plain entries
	valueType    uint32
	defaultValue []byte
	docs         []string
}

// Name returns the entry name.
func (e *StorageEntry) Name() string { return e.name }

// Modifier returns the entry's storage modifier.
func (e *StorageEntry) Modifier() StorageModifier { return e.modifier }

// IsMap reports whether the entry is keyed.
func (e *StorageEntry) IsMap() bool { return e.keyType != nil }

// Hashers returns the entry's declared hasher chain; empty for plain
// entries.
func (e *StorageEntry) Hashers() []Hasher { return e.hashers }

// KeyType returns the entry's key type id, if the entry is a map.
func (e *StorageEntry) KeyType() (uint32, bool) { return deref(e.keyType) }

// ValueType returns the entry's value type id.
func (e *StorageEntry) ValueType() uint32 { return e.valueType }

// DefaultValue returns the SCALE bytes a Default-modifier entry falls
// back to when no value is stored.
func (e *StorageEntry) DefaultValue() []byte { return e.defaultValue }

// Docs returns the entry documentation lines.
func (e *StorageEntry) Docs() []string { return e.docs }

// Constant is a pallet constant: a type id plus its SCALE-encoded
// value, baked into the metadata.
type Constant struct {
	Name  string
	Type  uint32
	Value []byte
	Docs  []string
}

// TransactionExtension is one extrinsic extension: the type carried in
// the extrinsic itself and the type folded into the signed payload.
type TransactionExtension struct {
	Identifier     string
	ExtraType      uint32
	AdditionalType uint32
}

// ExtensionsByVersion maps one supported extrinsic version to the
// positions of the transaction extensions it uses.
type ExtensionsByVersion struct {
	Version uint8
	Indices []uint32
}

// ExtrinsicMetadata describes how extrinsics are built for this
// runtime.
type ExtrinsicMetadata struct {
	supportedVersions []uint8
	addressType       uint32
	signatureType     uint32
	extensions        []TransactionExtension
	byVersion         []ExtensionsByVersion

	// Wire details only older versions carry; kept so a model decoded
	// from those versions can be written back out.
	extrinsicType *uint32
	extraType     *uint32
}

// SupportedVersions returns the extrinsic format versions the runtime
// accepts.
func (e *ExtrinsicMetadata) SupportedVersions() []uint8 { return e.supportedVersions }

// AddressType returns the extrinsic address type id.
func (e *ExtrinsicMetadata) AddressType() uint32 { return e.addressType }

// SignatureType returns the extrinsic signature type id.
func (e *ExtrinsicMetadata) SignatureType() uint32 { return e.signatureType }

// Extensions returns the transaction extensions in declaration order.
func (e *ExtrinsicMetadata) Extensions() []TransactionExtension { return e.extensions }

// ExtensionsForVersion returns the transaction extensions the given
// extrinsic version uses, in order.
func (e *ExtrinsicMetadata) ExtensionsForVersion(version uint8) []TransactionExtension {
	for _, bv := range e.byVersion {
		if bv.Version != version {
			continue
		}
		out := make([]TransactionExtension, 0, len(bv.Indices))
		for _, idx := range bv.Indices {
			if idx < uint32(len(e.extensions)) {
				out = append(out, e.extensions[idx])
			}
		}
		return out
	}
	return nil
}

// RuntimeAPI is one runtime API trait with its callable methods.
type RuntimeAPI struct {
	name          string
	methods       []RuntimeAPIMethod
	methodsByName map[string]int
	docs          []string
}

// Name returns the trait name.
func (a *RuntimeAPI) Name() string { return a.name }

// Docs returns the trait documentation lines.
func (a *RuntimeAPI) Docs() []string { return a.docs }

// Methods returns the trait's methods in declaration order.
func (a *RuntimeAPI) Methods() []RuntimeAPIMethod { return a.methods }

// Method resolves a method by name.
func (a *RuntimeAPI) Method(name string) (*RuntimeAPIMethod, error) {
	pos, ok := a.methodsByName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s.%s", ErrRuntimeAPINotFound, a.name, name)
	}
	return &a.methods[pos], nil
}

// RuntimeAPIMethod is one callable runtime API method.
type RuntimeAPIMethod struct {
	Name   string
	Inputs []RuntimeAPIParam
	Output uint32
	Docs   []string
}

// RuntimeAPIParam is one named method input.
type RuntimeAPIParam struct {
	Name string
	Type uint32
}

// ViewFunction is a pallet view function (v16 onwards).
type ViewFunction struct {
	Name   string
	ID     [32]byte
	Inputs []RuntimeAPIParam
	Output uint32
	Docs   []string
}

// AssociatedType is a pallet associated type binding (v16 onwards).
type AssociatedType struct {
	Name string
	Type uint32
	Docs []string
}

// OuterEnums holds the runtime's outer call, event and error enum type
// ids.
type OuterEnums struct {
	CallType  uint32
	EventType uint32
	ErrorType uint32
}

// CustomValue is one entry of the metadata's custom value map.
type CustomValue struct {
	Name  string
	Type  uint32
	Value []byte
}

// variantOf resolves a variant enum definition for a type id.
func variantOf(reg *registry.Registry, id uint32) (registry.DefVariant, error) {
	ty, ok := reg.Resolve(id)
	if !ok {
		return registry.DefVariant{}, fmt.Errorf("%w: id %d", ErrTypeNotFound, id)
	}
	def, ok := ty.Def.(registry.DefVariant)
	if !ok {
		return registry.DefVariant{}, fmt.Errorf("%w: id %d is %T", ErrVariantTypeExpected, id, ty.Def)
	}
	return def, nil
}
