// Copyright 2025 Polkabyte Labs
// SPDX-License-Identifier: LGPL-3.0-only

// Package frame holds the wire-level metadata structures as the runtime
// emits them, one set per supported metadata version, together with the
// SCALE codecs needed to read and write them.
package frame

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/centrifuge/go-substrate-rpc-client/v4/scale"

	"github.com/polkabyte/polkameta/lib/registry"
)

// Compact is a compact-encoded u32. Type ids and a handful of version
// numbers travel in this form on the wire.
type Compact uint32

func (c *Compact) Decode(decoder scale.Decoder) error {
	v, err := decoder.DecodeUintCompact()
	if err != nil {
		return err
	}
	if !v.IsUint64() || v.Uint64() > 0xffffffff {
		return fmt.Errorf("compact value %s overflows u32", v)
	}
	*c = Compact(v.Uint64())
	return nil
}

func (c Compact) Encode(encoder scale.Encoder) error {
	return encoder.EncodeUintCompact(*new(big.Int).SetUint64(uint64(c)))
}

// OptionString is an Option<String> on the wire.
type OptionString struct {
	HasValue bool
	Value    string
}

func (o *OptionString) Decode(decoder scale.Decoder) error {
	return decoder.DecodeOption(&o.HasValue, &o.Value)
}

func (o OptionString) Encode(encoder scale.Encoder) error {
	return encoder.EncodeOption(o.HasValue, o.Value)
}

// Some wraps a string into a present OptionString.
func Some(s string) OptionString {
	return OptionString{HasValue: true, Value: s}
}

// OptionCompact is an Option<Compact<u32>> on the wire.
type OptionCompact struct {
	HasValue bool
	Value    Compact
}

func (o *OptionCompact) Decode(decoder scale.Decoder) error {
	return decoder.DecodeOption(&o.HasValue, &o.Value)
}

func (o OptionCompact) Encode(encoder scale.Encoder) error {
	return encoder.EncodeOption(o.HasValue, o.Value)
}

// PortableType is one entry of the portable type registry.
type PortableType struct {
	ID   Compact
	Type SiType
}

// SiType is the scale-info description of a single type.
type SiType struct {
	Path   []string
	Params []SiTypeParam
	Def    SiTypeDef
	Docs   []string
}

// SiTypeParam is a generic parameter binding on a type.
type SiTypeParam struct {
	Name string
	Type OptionCompact
}

// SiField is a field of a composite or variant type.
type SiField struct {
	Name     OptionString
	Type     Compact
	TypeName OptionString
	Docs     []string
}

// SiVariant is one variant of an enum type. Index is the discriminant
// byte used on the wire, which need not match the position.
type SiVariant struct {
	Name   string
	Fields []SiField
	Index  uint8
	Docs   []string
}

// Wire tags of the SiTypeDef union.
const (
	typeDefComposite   uint8 = 0
	typeDefVariant     uint8 = 1
	typeDefSequence    uint8 = 2
	typeDefArray       uint8 = 3
	typeDefTuple       uint8 = 4
	typeDefPrimitive   uint8 = 5
	typeDefCompact     uint8 = 6
	typeDefBitSequence uint8 = 7
)

// SiTypeDef is the union of type definition shapes. Exactly one arm is
// populated, selected by the wire tag.
type SiTypeDef struct {
	IsComposite bool
	Composite   SiCompositeDef

	IsVariant bool
	Variant   SiVariantDef

	IsSequence bool
	Sequence   SiSequenceDef

	IsArray bool
	Array   SiArrayDef

	IsTuple bool
	Tuple   []Compact

	IsPrimitive bool
	Primitive   uint8

	IsCompact bool
	Compact   SiCompactDef

	IsBitSequence bool
	BitSequence   SiBitSequenceDef
}

type SiCompositeDef struct {
	Fields []SiField
}

type SiVariantDef struct {
	Variants []SiVariant
}

type SiSequenceDef struct {
	Type Compact
}

type SiArrayDef struct {
	Len  uint32
	Type Compact
}

type SiCompactDef struct {
	Type Compact
}

type SiBitSequenceDef struct {
	BitStoreType Compact
	BitOrderType Compact
}

func (d *SiTypeDef) Decode(decoder scale.Decoder) error {
	tag, err := decoder.ReadOneByte()
	if err != nil {
		return err
	}

	switch tag {
	case typeDefComposite:
		d.IsComposite = true
		return decoder.Decode(&d.Composite)
	case typeDefVariant:
		d.IsVariant = true
		return decoder.Decode(&d.Variant)
	case typeDefSequence:
		d.IsSequence = true
		return decoder.Decode(&d.Sequence)
	case typeDefArray:
		d.IsArray = true
		return decoder.Decode(&d.Array)
	case typeDefTuple:
		d.IsTuple = true
		return decoder.Decode(&d.Tuple)
	case typeDefPrimitive:
		d.IsPrimitive = true
		b, err := decoder.ReadOneByte()
		if err != nil {
			return err
		}
		d.Primitive = b
		return nil
	case typeDefCompact:
		d.IsCompact = true
		return decoder.Decode(&d.Compact)
	case typeDefBitSequence:
		d.IsBitSequence = true
		return decoder.Decode(&d.BitSequence)
	default:
		return fmt.Errorf("unknown type definition tag %d", tag)
	}
}

func (d SiTypeDef) Encode(encoder scale.Encoder) error {
	switch {
	case d.IsComposite:
		if err := encoder.PushByte(typeDefComposite); err != nil {
			return err
		}
		return encoder.Encode(d.Composite)
	case d.IsVariant:
		if err := encoder.PushByte(typeDefVariant); err != nil {
			return err
		}
		return encoder.Encode(d.Variant)
	case d.IsSequence:
		if err := encoder.PushByte(typeDefSequence); err != nil {
			return err
		}
		return encoder.Encode(d.Sequence)
	case d.IsArray:
		if err := encoder.PushByte(typeDefArray); err != nil {
			return err
		}
		return encoder.Encode(d.Array)
	case d.IsTuple:
		if err := encoder.PushByte(typeDefTuple); err != nil {
			return err
		}
		return encoder.Encode(d.Tuple)
	case d.IsPrimitive:
		if err := encoder.PushByte(typeDefPrimitive); err != nil {
			return err
		}
		return encoder.PushByte(d.Primitive)
	case d.IsCompact:
		if err := encoder.PushByte(typeDefCompact); err != nil {
			return err
		}
		return encoder.Encode(d.Compact)
	case d.IsBitSequence:
		if err := encoder.PushByte(typeDefBitSequence); err != nil {
			return err
		}
		return encoder.Encode(d.BitSequence)
	default:
		return errors.New("type definition has no arm set")
	}
}

// ErrSparseRegistry is returned when the portable registry's type ids
// are not the dense sequence 0..n-1 the in-memory registry requires.
var ErrSparseRegistry = errors.New("portable registry ids are not dense")

// ToRegistry converts wire portable types into the in-memory registry.
// Wire ids must be the positional sequence 0..n-1.
func ToRegistry(types []PortableType) (registry.Registry, error) {
	out := make([]registry.Type, 0, len(types))
	for pos, pt := range types {
		if uint32(pt.ID) != uint32(pos) {
			return registry.Registry{}, fmt.Errorf("%w: id %d at position %d", ErrSparseRegistry, pt.ID, pos)
		}
		ty, err := toRegistryType(pt.Type)
		if err != nil {
			return registry.Registry{}, fmt.Errorf("type %d: %w", pt.ID, err)
		}
		out = append(out, ty)
	}
	return registry.NewRegistry(out), nil
}

func toRegistryType(t SiType) (registry.Type, error) {
	var params []registry.TypeParam
	for _, p := range t.Params {
		param := registry.TypeParam{Name: p.Name}
		if p.Type.HasValue {
			id := uint32(p.Type.Value)
			param.Type = &id
		}
		params = append(params, param)
	}

	def, err := toRegistryDef(t.Def)
	if err != nil {
		return registry.Type{}, err
	}

	return registry.Type{
		Path:   registry.Path(t.Path),
		Params: params,
		Def:    def,
		Docs:   t.Docs,
	}, nil
}

func toRegistryDef(d SiTypeDef) (registry.TypeDef, error) {
	switch {
	case d.IsComposite:
		return registry.DefComposite{Fields: toRegistryFields(d.Composite.Fields)}, nil
	case d.IsVariant:
		var variants []registry.Variant
		for _, v := range d.Variant.Variants {
			variants = append(variants, registry.Variant{
				Name:   v.Name,
				Fields: toRegistryFields(v.Fields),
				Index:  v.Index,
				Docs:   v.Docs,
			})
		}
		return registry.DefVariant{Variants: variants}, nil
	case d.IsSequence:
		return registry.DefSequence{Elem: uint32(d.Sequence.Type)}, nil
	case d.IsArray:
		return registry.DefArray{Len: d.Array.Len, Elem: uint32(d.Array.Type)}, nil
	case d.IsTuple:
		var elems []uint32
		for _, e := range d.Tuple {
			elems = append(elems, uint32(e))
		}
		return registry.DefTuple{Elems: elems}, nil
	case d.IsPrimitive:
		if d.Primitive > uint8(registry.PrimitiveI256) {
			return nil, fmt.Errorf("unknown primitive kind %d", d.Primitive)
		}
		return registry.DefPrimitive{Kind: registry.PrimitiveKind(d.Primitive)}, nil
	case d.IsCompact:
		return registry.DefCompact{Inner: uint32(d.Compact.Type)}, nil
	case d.IsBitSequence:
		return registry.DefBitSequence{
			Store: uint32(d.BitSequence.BitStoreType),
			Order: uint32(d.BitSequence.BitOrderType),
		}, nil
	default:
		return nil, errors.New("type definition has no arm set")
	}
}

func toRegistryFields(fields []SiField) []registry.Field {
	var out []registry.Field
	for _, f := range fields {
		out = append(out, registry.Field{
			Name:     f.Name.Value,
			Type:     uint32(f.Type),
			TypeName: f.TypeName.Value,
			Docs:     f.Docs,
		})
	}
	return out
}

// FromRegistry converts an in-memory registry back into wire portable
// types, the inverse of ToRegistry.
func FromRegistry(reg *registry.Registry) []PortableType {
	out := make([]PortableType, 0, reg.Len())
	for _, ty := range reg.Types() {
		out = append(out, PortableType{
			ID:   Compact(ty.ID),
			Type: fromRegistryType(ty),
		})
	}
	return out
}

func fromRegistryType(t registry.Type) SiType {
	var params []SiTypeParam
	for _, p := range t.Params {
		param := SiTypeParam{Name: p.Name}
		if p.Type != nil {
			param.Type = OptionCompact{HasValue: true, Value: Compact(*p.Type)}
		}
		params = append(params, param)
	}

	return SiType{
		Path:   []string(t.Path),
		Params: params,
		Def:    fromRegistryDef(t.Def),
		Docs:   t.Docs,
	}
}

func fromRegistryDef(d registry.TypeDef) SiTypeDef {
	switch def := d.(type) {
	case registry.DefComposite:
		return SiTypeDef{IsComposite: true, Composite: SiCompositeDef{Fields: fromRegistryFields(def.Fields)}}
	case registry.DefVariant:
		var variants []SiVariant
		for _, v := range def.Variants {
			variants = append(variants, SiVariant{
				Name:   v.Name,
				Fields: fromRegistryFields(v.Fields),
				Index:  v.Index,
				Docs:   v.Docs,
			})
		}
		return SiTypeDef{IsVariant: true, Variant: SiVariantDef{Variants: variants}}
	case registry.DefSequence:
		return SiTypeDef{IsSequence: true, Sequence: SiSequenceDef{Type: Compact(def.Elem)}}
	case registry.DefArray:
		return SiTypeDef{IsArray: true, Array: SiArrayDef{Len: def.Len, Type: Compact(def.Elem)}}
	case registry.DefTuple:
		var elems []Compact
		for _, e := range def.Elems {
			elems = append(elems, Compact(e))
		}
		return SiTypeDef{IsTuple: true, Tuple: elems}
	case registry.DefPrimitive:
		return SiTypeDef{IsPrimitive: true, Primitive: uint8(def.Kind)}
	case registry.DefCompact:
		return SiTypeDef{IsCompact: true, Compact: SiCompactDef{Type: Compact(def.Inner)}}
	case registry.DefBitSequence:
		return SiTypeDef{IsBitSequence: true, BitSequence: SiBitSequenceDef{
			BitStoreType: Compact(def.Store),
			BitOrderType: Compact(def.Order),
		}}
	default:
		panic(fmt.Sprintf("frame: unhandled registry definition %T", d))
	}
}

func fromRegistryFields(fields []registry.Field) []SiField {
	var out []SiField
	for _, f := range fields {
		sf := SiField{Type: Compact(f.Type), Docs: f.Docs}
		if f.Name != "" {
			sf.Name = Some(f.Name)
		}
		if f.TypeName != "" {
			sf.TypeName = Some(f.TypeName)
		}
		out = append(out, sf)
	}
	return out
}
