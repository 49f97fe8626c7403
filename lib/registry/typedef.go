// Copyright 2025 Polkabyte Labs
// SPDX-License-Identifier: LGPL-3.0-only

package registry

// TypeDef is the definition of a type. It is a closed set: exactly the
// eight kinds below implement it, mirroring the wire protocol.
type TypeDef interface {
	isTypeDef()
}

// DefComposite is a struct-like type with an ordered list of fields.
type DefComposite struct {
	Fields []Field
}

// DefVariant is a tagged union. Each variant carries a wire discriminant
// and its own field list.
type DefVariant struct {
	Variants []Variant
}

// DefSequence is a variable-length list of Elem, length-prefixed on the wire.
type DefSequence struct {
	Elem uint32
}

// DefArray is a fixed-length list of Elem with no length prefix.
type DefArray struct {
	Len  uint32
	Elem uint32
}

// DefTuple is an anonymous heterogeneous product type.
type DefTuple struct {
	Elems []uint32
}

// DefPrimitive is one of the fixed primitive kinds.
type DefPrimitive struct {
	Kind PrimitiveKind
}

// DefCompact wraps an integer type with the compact encoding.
type DefCompact struct {
	Inner uint32
}

// DefBitSequence is a bit vector with explicit store and order types.
type DefBitSequence struct {
	Store uint32
	Order uint32
}

func (DefComposite) isTypeDef()   {}
func (DefVariant) isTypeDef()     {}
func (DefSequence) isTypeDef()    {}
func (DefArray) isTypeDef()       {}
func (DefTuple) isTypeDef()       {}
func (DefPrimitive) isTypeDef()   {}
func (DefCompact) isTypeDef()     {}
func (DefBitSequence) isTypeDef() {}

// Field is a single named or unnamed member of a composite or variant.
type Field struct {
	Name     string // empty for unnamed fields
	Type     uint32
	TypeName string
	Docs     []string
}

// Variant is a single member of a DefVariant with its wire discriminant.
type Variant struct {
	Name   string
	Fields []Field
	Index  uint8
	Docs   []string
}

// PrimitiveKind enumerates the primitive types of the wire protocol.
type PrimitiveKind uint8

const (
	PrimitiveBool PrimitiveKind = iota
	PrimitiveChar
	PrimitiveStr
	PrimitiveU8
	PrimitiveU16
	PrimitiveU32
	PrimitiveU64
	PrimitiveU128
	PrimitiveU256
	PrimitiveI8
	PrimitiveI16
	PrimitiveI32
	PrimitiveI64
	PrimitiveI128
	PrimitiveI256
)

func (k PrimitiveKind) String() string {
	switch k {
	case PrimitiveBool:
		return "bool"
	case PrimitiveChar:
		return "char"
	case PrimitiveStr:
		return "str"
	case PrimitiveU8:
		return "u8"
	case PrimitiveU16:
		return "u16"
	case PrimitiveU32:
		return "u32"
	case PrimitiveU64:
		return "u64"
	case PrimitiveU128:
		return "u128"
	case PrimitiveU256:
		return "u256"
	case PrimitiveI8:
		return "i8"
	case PrimitiveI16:
		return "i16"
	case PrimitiveI32:
		return "i32"
	case PrimitiveI64:
		return "i64"
	case PrimitiveI128:
		return "i128"
	case PrimitiveI256:
		return "i256"
	default:
		return "unknown"
	}
}
