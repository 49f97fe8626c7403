// Copyright 2025 Polkabyte Labs
// SPDX-License-Identifier: LGPL-3.0-only

package scalevalue

import (
	"bytes"
	"errors"
	"fmt"
	"math/big"

	"github.com/centrifuge/go-substrate-rpc-client/v4/scale"

	"github.com/polkabyte/polkameta/lib/registry"
)

var (
	// ErrValueShape is returned when a value does not match the shape of
	// the type it is encoded as.
	ErrValueShape = errors.New("value does not match type")
	// ErrValueRange is returned when a numeric value does not fit the
	// width of the target primitive.
	ErrValueRange = errors.New("value out of range for type")
)

// Encode encodes the value as the given type id, checking the value's
// shape against the type definition as it goes.
func Encode(v Value, id uint32, reg *registry.Registry) ([]byte, error) {
	var buf bytes.Buffer
	e := encoder{enc: scale.NewEncoder(&buf), reg: reg}
	if err := e.encode(v, id, 0); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

type encoder struct {
	enc *scale.Encoder
	reg *registry.Registry
}

func (e *encoder) resolve(id uint32) (*registry.Type, error) {
	ty, ok := e.reg.Resolve(id)
	if !ok {
		return nil, fmt.Errorf("%w: id %d", ErrTypeNotFound, id)
	}
	return ty, nil
}

func (e *encoder) encode(v Value, id uint32, depth int) error {
	if depth > maxDepth {
		return ErrDepthLimit
	}

	ty, err := e.resolve(id)
	if err != nil {
		return err
	}

	switch def := ty.Def.(type) {
	case registry.DefPrimitive:
		return e.encodePrimitive(v, def.Kind)
	case registry.DefCompact:
		return e.encodeCompact(v)
	case registry.DefComposite:
		return e.encodeFields(v, def.Fields, depth)
	case registry.DefVariant:
		return e.encodeVariant(v, def, depth)
	case registry.DefSequence:
		return e.encodeSequence(v, def.Elem, depth)
	case registry.DefArray:
		return e.encodeArray(v, def, depth)
	case registry.DefTuple:
		return e.encodeTuple(v, def.Elems, depth)
	case registry.DefBitSequence:
		return e.encodeBitSequence(v)
	default:
		return fmt.Errorf("unhandled type definition %T for id %d", ty.Def, id)
	}
}

func (e *encoder) encodePrimitive(v Value, kind registry.PrimitiveKind) error {
	switch kind {
	case registry.PrimitiveBool:
		b, ok := v.(Bool)
		if !ok {
			return shapeError(v, kind)
		}
		return e.enc.Encode(bool(b))
	case registry.PrimitiveChar:
		c, ok := v.(Char)
		if !ok {
			return shapeError(v, kind)
		}
		return e.enc.Encode(uint32(c))
	case registry.PrimitiveStr:
		s, ok := v.(Str)
		if !ok {
			return shapeError(v, kind)
		}
		return e.enc.Encode(string(s))
	case registry.PrimitiveU8, registry.PrimitiveU16, registry.PrimitiveU32, registry.PrimitiveU64:
		return e.encodeUint(v, kind)
	case registry.PrimitiveI8, registry.PrimitiveI16, registry.PrimitiveI32, registry.PrimitiveI64:
		return e.encodeInt(v, kind)
	case registry.PrimitiveU128:
		return e.encodeBigUint(v, 16)
	case registry.PrimitiveU256:
		return e.encodeBigUint(v, 32)
	case registry.PrimitiveI128:
		return e.encodeBigInt(v, 16)
	case registry.PrimitiveI256:
		return e.encodeBigInt(v, 32)
	default:
		return fmt.Errorf("unhandled primitive kind %s", kind)
	}
}

// uintValue widens the numeric Value forms to uint64, rejecting negatives
// and oversized big integers.
func uintValue(v Value) (uint64, bool) {
	switch n := v.(type) {
	case Uint:
		return uint64(n), true
	case Int:
		if n < 0 {
			return 0, false
		}
		return uint64(n), true
	case BigInt:
		if n.Int.Sign() < 0 || !n.Int.IsUint64() {
			return 0, false
		}
		return n.Int.Uint64(), true
	default:
		return 0, false
	}
}

func intValue(v Value) (int64, bool) {
	switch n := v.(type) {
	case Int:
		return int64(n), true
	case Uint:
		if uint64(n) > uint64(1)<<63-1 {
			return 0, false
		}
		return int64(n), true
	case BigInt:
		if !n.Int.IsInt64() {
			return 0, false
		}
		return n.Int.Int64(), true
	default:
		return 0, false
	}
}

func (e *encoder) encodeUint(v Value, kind registry.PrimitiveKind) error {
	n, ok := uintValue(v)
	if !ok {
		return shapeError(v, kind)
	}
	switch kind {
	case registry.PrimitiveU8:
		if n > 0xff {
			return rangeError(n, kind)
		}
		return e.enc.PushByte(byte(n))
	case registry.PrimitiveU16:
		if n > 0xffff {
			return rangeError(n, kind)
		}
		return e.enc.Encode(uint16(n))
	case registry.PrimitiveU32:
		if n > 0xffffffff {
			return rangeError(n, kind)
		}
		return e.enc.Encode(uint32(n))
	default:
		return e.enc.Encode(n)
	}
}

func (e *encoder) encodeInt(v Value, kind registry.PrimitiveKind) error {
	n, ok := intValue(v)
	if !ok {
		return shapeError(v, kind)
	}
	switch kind {
	case registry.PrimitiveI8:
		if n < -0x80 || n > 0x7f {
			return rangeError(n, kind)
		}
		return e.enc.Encode(int8(n))
	case registry.PrimitiveI16:
		if n < -0x8000 || n > 0x7fff {
			return rangeError(n, kind)
		}
		return e.enc.Encode(int16(n))
	case registry.PrimitiveI32:
		if n < -0x80000000 || n > 0x7fffffff {
			return rangeError(n, kind)
		}
		return e.enc.Encode(int32(n))
	default:
		return e.enc.Encode(n)
	}
}

func bigValue(v Value) (*big.Int, bool) {
	switch n := v.(type) {
	case BigInt:
		return n.Int, true
	case Uint:
		return new(big.Int).SetUint64(uint64(n)), true
	case Int:
		return big.NewInt(int64(n)), true
	default:
		return nil, false
	}
}

func (e *encoder) encodeBigUint(v Value, size int) error {
	n, ok := bigValue(v)
	if !ok {
		return shapeError(v, "unsigned integer")
	}
	if n.Sign() < 0 || n.BitLen() > size*8 {
		return fmt.Errorf("%w: %s does not fit %d bytes", ErrValueRange, n, size)
	}
	buf := make([]byte, size)
	n.FillBytes(buf)
	reverseBytes(buf)
	return e.enc.Write(buf)
}

func (e *encoder) encodeBigInt(v Value, size int) error {
	n, ok := bigValue(v)
	if !ok {
		return shapeError(v, "signed integer")
	}
	bound := new(big.Int).Lsh(big.NewInt(1), uint(size)*8-1)
	if n.Cmp(bound) >= 0 || n.Cmp(new(big.Int).Neg(bound)) < 0 {
		return fmt.Errorf("%w: %s does not fit %d bytes", ErrValueRange, n, size)
	}
	twos := new(big.Int).Set(n)
	if twos.Sign() < 0 {
		twos.Add(twos, new(big.Int).Lsh(big.NewInt(1), uint(size)*8))
	}
	buf := make([]byte, size)
	twos.FillBytes(buf)
	reverseBytes(buf)
	return e.enc.Write(buf)
}

func (e *encoder) encodeCompact(v Value) error {
	n, ok := bigValue(v)
	if !ok || n.Sign() < 0 {
		return shapeError(v, "compact integer")
	}
	return e.enc.EncodeUintCompact(*n)
}

func (e *encoder) encodeFields(v Value, fields []registry.Field, depth int) error {
	named := len(fields) > 0 && fields[0].Name != ""

	if named {
		composite, ok := v.(Composite)
		if !ok {
			return shapeError(v, "composite")
		}
		if len(composite.Fields) != len(fields) {
			return fmt.Errorf("%w: composite has %d fields, type has %d",
				ErrValueShape, len(composite.Fields), len(fields))
		}
		for i, f := range fields {
			cf := composite.Fields[i]
			if cf.Name != f.Name {
				return fmt.Errorf("%w: field %d is %q, type has %q",
					ErrValueShape, i, cf.Name, f.Name)
			}
			if err := e.encode(cf.Value, f.Type, depth+1); err != nil {
				return err
			}
		}
		return nil
	}

	values, err := tupleValues(v, len(fields))
	if err != nil {
		return err
	}
	for i, f := range fields {
		if err := e.encode(values[i], f.Type, depth+1); err != nil {
			return err
		}
	}
	return nil
}

// tupleValues accepts Tuple, a single bare value for arity 1, or a
// Composite whose field order matches the type's unnamed fields.
func tupleValues(v Value, arity int) ([]Value, error) {
	switch t := v.(type) {
	case Tuple:
		if len(t) != arity {
			return nil, fmt.Errorf("%w: tuple has %d elements, type has %d",
				ErrValueShape, len(t), arity)
		}
		return t, nil
	case Composite:
		if len(t.Fields) != arity {
			return nil, fmt.Errorf("%w: composite has %d fields, type has %d",
				ErrValueShape, len(t.Fields), arity)
		}
		values := make([]Value, arity)
		for i, f := range t.Fields {
			values[i] = f.Value
		}
		return values, nil
	default:
		if arity == 1 {
			return []Value{v}, nil
		}
		return nil, shapeError(v, "tuple")
	}
}

func (e *encoder) encodeVariant(v Value, def registry.DefVariant, depth int) error {
	variant, ok := v.(Variant)
	if !ok {
		return shapeError(v, "variant")
	}

	for _, candidate := range def.Variants {
		if candidate.Name != variant.Name {
			continue
		}
		if err := e.enc.PushByte(candidate.Index); err != nil {
			return err
		}
		if len(variant.Fields) != len(candidate.Fields) {
			return fmt.Errorf("%w: variant %s has %d fields, type has %d",
				ErrValueShape, variant.Name, len(variant.Fields), len(candidate.Fields))
		}
		for i, f := range candidate.Fields {
			if err := e.encode(variant.Fields[i].Value, f.Type, depth+1); err != nil {
				return err
			}
		}
		return nil
	}

	return fmt.Errorf("%w: no variant named %q", ErrValueShape, variant.Name)
}

func (e *encoder) encodeSequence(v Value, elem uint32, depth int) error {
	if b, ok := v.(Bytes); ok {
		if err := e.elemIsU8(elem); err != nil {
			return err
		}
		if err := e.enc.EncodeUintCompact(*new(big.Int).SetUint64(uint64(len(b)))); err != nil {
			return err
		}
		return e.enc.Write(b)
	}

	seq, ok := asList(v)
	if !ok {
		return shapeError(v, "sequence")
	}
	if err := e.enc.EncodeUintCompact(*new(big.Int).SetUint64(uint64(len(seq)))); err != nil {
		return err
	}
	for _, item := range seq {
		if err := e.encode(item, elem, depth+1); err != nil {
			return err
		}
	}
	return nil
}

func (e *encoder) encodeArray(v Value, def registry.DefArray, depth int) error {
	if b, ok := v.(Bytes); ok {
		if err := e.elemIsU8(def.Elem); err != nil {
			return err
		}
		if uint32(len(b)) != def.Len {
			return fmt.Errorf("%w: %d bytes for [u8; %d]", ErrValueShape, len(b), def.Len)
		}
		return e.enc.Write(b)
	}

	seq, ok := asList(v)
	if !ok {
		return shapeError(v, "array")
	}
	if uint32(len(seq)) != def.Len {
		return fmt.Errorf("%w: %d elements for array of %d", ErrValueShape, len(seq), def.Len)
	}
	for _, item := range seq {
		if err := e.encode(item, def.Elem, depth+1); err != nil {
			return err
		}
	}
	return nil
}

func (e *encoder) encodeTuple(v Value, elems []uint32, depth int) error {
	values, err := tupleValues(v, len(elems))
	if err != nil {
		return err
	}
	for i, elem := range elems {
		if err := e.encode(values[i], elem, depth+1); err != nil {
			return err
		}
	}
	return nil
}

func (e *encoder) encodeBitSequence(v Value) error {
	bits, ok := v.(BitSequence)
	if !ok {
		return shapeError(v, "bit sequence")
	}
	if err := e.enc.EncodeUintCompact(*new(big.Int).SetUint64(uint64(bits.NumBits))); err != nil {
		return err
	}
	return e.enc.Write(bits.Bytes)
}

func (e *encoder) elemIsU8(elem uint32) error {
	ty, err := e.resolve(elem)
	if err != nil {
		return err
	}
	if prim, ok := ty.Def.(registry.DefPrimitive); ok && prim.Kind == registry.PrimitiveU8 {
		return nil
	}
	return fmt.Errorf("%w: byte value for non-u8 element", ErrValueShape)
}

func asList(v Value) ([]Value, bool) {
	switch s := v.(type) {
	case Sequence:
		return s, true
	case Tuple:
		return s, true
	default:
		return nil, false
	}
}

func shapeError(v Value, want any) error {
	return fmt.Errorf("%w: %T cannot encode as %v", ErrValueShape, v, want)
}

func rangeError(n any, kind registry.PrimitiveKind) error {
	return fmt.Errorf("%w: %v does not fit %s", ErrValueRange, n, kind)
}
