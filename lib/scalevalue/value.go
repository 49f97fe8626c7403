// Copyright 2025 Polkabyte Labs
// SPDX-License-Identifier: LGPL-3.0-only

// Package scalevalue decodes and encodes SCALE bytes against type ids of
// a portable registry, without compile-time knowledge of the type. It is
// the dynamic counterpart of the reflection-based scale codec: the shape
// of the data is driven entirely by the registry's type descriptions.
package scalevalue

import (
	"fmt"
	"math/big"
	"strings"
)

// Value is a dynamically typed SCALE value. The concrete types below are
// the only implementations.
type Value interface {
	fmt.Stringer
	isValue()
}

// Bool is a boolean value.
type Bool bool

// Char is a single unicode code point (encoded as a little-endian u32).
type Char rune

// Str is a UTF-8 string value.
type Str string

// Uint holds any unsigned integer of up to 64 bits, including compactly
// encoded ones.
type Uint uint64

// Int holds any signed integer of up to 64 bits.
type Int int64

// BigInt holds 128-bit and 256-bit integers.
type BigInt struct {
	Int *big.Int
}

// Bytes is a sequence or array of u8, kept raw rather than element-wise.
type Bytes []byte

// Sequence is a variable-length or fixed-length list of non-u8 elements.
type Sequence []Value

// Tuple is an anonymous product value. Unnamed composites decode to
// tuples as well.
type Tuple []Value

// Composite is a named-field product value.
type Composite struct {
	Fields []CompositeField
}

// CompositeField is a single named field of a Composite or Variant.
type CompositeField struct {
	Name  string
	Value Value
}

// Variant is a value of a tagged-union type.
type Variant struct {
	Name   string
	Index  uint8
	Fields []CompositeField
}

// BitSequence is a bit vector kept as its raw store bytes.
type BitSequence struct {
	NumBits uint32
	Bytes   []byte
}

func (Bool) isValue()        {}
func (Char) isValue()        {}
func (Str) isValue()         {}
func (Uint) isValue()        {}
func (Int) isValue()         {}
func (BigInt) isValue()      {}
func (Bytes) isValue()       {}
func (Sequence) isValue()    {}
func (Tuple) isValue()       {}
func (Composite) isValue()   {}
func (Variant) isValue()     {}
func (BitSequence) isValue() {}

func (v Bool) String() string { return fmt.Sprintf("%t", bool(v)) }
func (v Char) String() string { return fmt.Sprintf("%q", rune(v)) }
func (v Str) String() string  { return fmt.Sprintf("%q", string(v)) }
func (v Uint) String() string { return fmt.Sprintf("%d", uint64(v)) }
func (v Int) String() string  { return fmt.Sprintf("%d", int64(v)) }

func (v BigInt) String() string {
	if v.Int == nil {
		return "0"
	}
	return v.Int.String()
}

func (v Bytes) String() string { return fmt.Sprintf("0x%x", []byte(v)) }

func (v Sequence) String() string { return joinValues("[", "]", v) }
func (v Tuple) String() string    { return joinValues("(", ")", v) }

func (v Composite) String() string {
	parts := make([]string, len(v.Fields))
	for i, f := range v.Fields {
		parts[i] = fmt.Sprintf("%s: %s", f.Name, f.Value)
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

func (v Variant) String() string {
	if len(v.Fields) == 0 {
		return v.Name
	}
	named := v.Fields[0].Name != ""
	parts := make([]string, len(v.Fields))
	for i, f := range v.Fields {
		if named {
			parts[i] = fmt.Sprintf("%s: %s", f.Name, f.Value)
		} else {
			parts[i] = f.Value.String()
		}
	}
	if named {
		return v.Name + "{" + strings.Join(parts, ", ") + "}"
	}
	return v.Name + "(" + strings.Join(parts, ", ") + ")"
}

func (v BitSequence) String() string {
	return fmt.Sprintf("bits(%d, 0x%x)", v.NumBits, v.Bytes)
}

func joinValues(open, closing string, values []Value) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = v.String()
	}
	return open + strings.Join(parts, ", ") + closing
}
