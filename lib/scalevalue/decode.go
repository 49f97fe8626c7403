// Copyright 2025 Polkabyte Labs
// SPDX-License-Identifier: LGPL-3.0-only

package scalevalue

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math/big"

	"github.com/centrifuge/go-substrate-rpc-client/v4/scale"

	"github.com/polkabyte/polkameta/lib/registry"
)

var (
	// ErrTypeNotFound is returned when a type id does not resolve in the
	// registry the data is decoded against.
	ErrTypeNotFound = errors.New("type not found in registry")
	// ErrBadVariant is returned when a discriminant byte does not match
	// any variant of the target type.
	ErrBadVariant = errors.New("unknown variant discriminant")
	// ErrDepthLimit is returned when decoding recurses deeper than any
	// well-formed value can nest.
	ErrDepthLimit = errors.New("value nesting exceeds depth limit")
	// ErrTruncated is returned when a length prefix claims more bytes
	// than the input holds.
	ErrTruncated = errors.New("input shorter than its declared length")
)

// maxDepth bounds recursion during decoding so a pathological type graph
// (a cycle that consumes no input) cannot overflow the stack.
const maxDepth = 2048

// Decode decodes a value of the given type id from data, returning the
// value and the exact number of bytes consumed. Trailing bytes are not an
// error; the caller decides what the remainder means.
func Decode(data []byte, id uint32, reg *registry.Registry) (Value, int, error) {
	counter := &countingReader{r: bytes.NewReader(data), size: len(data)}
	d := decoder{dec: scale.NewDecoder(counter), reg: reg, counter: counter}
	value, err := d.decode(id, 0)
	if err != nil {
		return nil, counter.n, err
	}
	return value, counter.n, nil
}

// Skip decodes and discards a value of the given type id, returning the
// number of bytes it occupies. Used to measure variable-length fields.
func Skip(data []byte, id uint32, reg *registry.Registry) (int, error) {
	_, n, err := Decode(data, id, reg)
	return n, err
}

type countingReader struct {
	r    io.Reader
	n    int
	size int
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += n
	return n, err
}

func (c *countingReader) remaining() uint64 {
	return uint64(c.size - c.n)
}

type decoder struct {
	dec     *scale.Decoder
	reg     *registry.Registry
	counter *countingReader
}

// readExact allocates and fills a buffer of the declared size, refusing
// sizes the remaining input cannot possibly satisfy. Length prefixes
// come off the wire, so an oversized claim is bad input, not a bug.
func (d *decoder) readExact(size uint64) ([]byte, error) {
	if size > d.counter.remaining() {
		return nil, fmt.Errorf("%w: %d bytes claimed, %d remain",
			ErrTruncated, size, d.counter.remaining())
	}
	buf := make([]byte, size)
	if err := d.dec.Read(buf); err != nil {
		return nil, err
	}
	return buf, nil
}

func (d *decoder) resolve(id uint32) (*registry.Type, error) {
	ty, ok := d.reg.Resolve(id)
	if !ok {
		return nil, fmt.Errorf("%w: id %d", ErrTypeNotFound, id)
	}
	return ty, nil
}

func (d *decoder) decode(id uint32, depth int) (Value, error) {
	if depth > maxDepth {
		return nil, ErrDepthLimit
	}

	ty, err := d.resolve(id)
	if err != nil {
		return nil, err
	}

	switch def := ty.Def.(type) {
	case registry.DefPrimitive:
		return d.decodePrimitive(def.Kind)
	case registry.DefCompact:
		return d.decodeCompact(def.Inner)
	case registry.DefComposite:
		return d.decodeFields(def.Fields, depth)
	case registry.DefVariant:
		return d.decodeVariant(def, depth)
	case registry.DefSequence:
		length, err := d.dec.DecodeUintCompact()
		if err != nil {
			return nil, err
		}
		return d.decodeList(def.Elem, length.Uint64(), depth)
	case registry.DefArray:
		return d.decodeList(def.Elem, uint64(def.Len), depth)
	case registry.DefTuple:
		values := make(Tuple, 0, len(def.Elems))
		for _, elem := range def.Elems {
			v, err := d.decode(elem, depth+1)
			if err != nil {
				return nil, err
			}
			values = append(values, v)
		}
		return values, nil
	case registry.DefBitSequence:
		return d.decodeBitSequence(def)
	default:
		return nil, fmt.Errorf("unhandled type definition %T for id %d", ty.Def, id)
	}
}

func (d *decoder) decodePrimitive(kind registry.PrimitiveKind) (Value, error) {
	switch kind {
	case registry.PrimitiveBool:
		var v bool
		err := d.dec.Decode(&v)
		return Bool(v), err
	case registry.PrimitiveChar:
		var v uint32
		err := d.dec.Decode(&v)
		return Char(v), err
	case registry.PrimitiveStr:
		var v string
		err := d.dec.Decode(&v)
		return Str(v), err
	case registry.PrimitiveU8:
		b, err := d.dec.ReadOneByte()
		return Uint(b), err
	case registry.PrimitiveU16:
		var v uint16
		err := d.dec.Decode(&v)
		return Uint(v), err
	case registry.PrimitiveU32:
		var v uint32
		err := d.dec.Decode(&v)
		return Uint(v), err
	case registry.PrimitiveU64:
		var v uint64
		err := d.dec.Decode(&v)
		return Uint(v), err
	case registry.PrimitiveI8:
		var v int8
		err := d.dec.Decode(&v)
		return Int(v), err
	case registry.PrimitiveI16:
		var v int16
		err := d.dec.Decode(&v)
		return Int(v), err
	case registry.PrimitiveI32:
		var v int32
		err := d.dec.Decode(&v)
		return Int(v), err
	case registry.PrimitiveI64:
		var v int64
		err := d.dec.Decode(&v)
		return Int(v), err
	case registry.PrimitiveU128:
		return d.decodeBigUint(16)
	case registry.PrimitiveU256:
		return d.decodeBigUint(32)
	case registry.PrimitiveI128:
		return d.decodeBigInt(16)
	case registry.PrimitiveI256:
		return d.decodeBigInt(32)
	default:
		return nil, fmt.Errorf("unhandled primitive kind %s", kind)
	}
}

// decodeBigUint reads size little-endian bytes into an unsigned big.Int.
func (d *decoder) decodeBigUint(size int) (Value, error) {
	buf := make([]byte, size)
	if err := d.dec.Read(buf); err != nil {
		return nil, err
	}
	reverseBytes(buf)
	return BigInt{Int: new(big.Int).SetBytes(buf)}, nil
}

// decodeBigInt reads size little-endian bytes as a two's complement
// signed big.Int.
func (d *decoder) decodeBigInt(size int) (Value, error) {
	buf := make([]byte, size)
	if err := d.dec.Read(buf); err != nil {
		return nil, err
	}
	negative := buf[size-1]&0x80 != 0
	reverseBytes(buf)
	v := new(big.Int).SetBytes(buf)
	if negative {
		max := new(big.Int).Lsh(big.NewInt(1), uint(size)*8)
		v.Sub(v, max)
	}
	return BigInt{Int: v}, nil
}

func (d *decoder) decodeCompact(inner uint32) (Value, error) {
	ty, err := d.resolve(inner)
	if err != nil {
		return nil, err
	}

	v, err := d.dec.DecodeUintCompact()
	if err != nil {
		return nil, err
	}

	if prim, ok := ty.Def.(registry.DefPrimitive); ok {
		switch prim.Kind {
		case registry.PrimitiveU128, registry.PrimitiveU256:
			return BigInt{Int: v}, nil
		}
	}
	return Uint(v.Uint64()), nil
}

func (d *decoder) decodeFields(fields []registry.Field, depth int) (Value, error) {
	named := len(fields) > 0 && fields[0].Name != ""

	if !named {
		values := make(Tuple, 0, len(fields))
		for _, f := range fields {
			v, err := d.decode(f.Type, depth+1)
			if err != nil {
				return nil, err
			}
			values = append(values, v)
		}
		return values, nil
	}

	out := Composite{Fields: make([]CompositeField, 0, len(fields))}
	for _, f := range fields {
		v, err := d.decode(f.Type, depth+1)
		if err != nil {
			return nil, err
		}
		out.Fields = append(out.Fields, CompositeField{Name: f.Name, Value: v})
	}
	return out, nil
}

func (d *decoder) decodeVariant(def registry.DefVariant, depth int) (Value, error) {
	discriminant, err := d.dec.ReadOneByte()
	if err != nil {
		return nil, err
	}

	for _, variant := range def.Variants {
		if variant.Index != discriminant {
			continue
		}
		fields := make([]CompositeField, 0, len(variant.Fields))
		for _, f := range variant.Fields {
			v, err := d.decode(f.Type, depth+1)
			if err != nil {
				return nil, err
			}
			fields = append(fields, CompositeField{Name: f.Name, Value: v})
		}
		return Variant{Name: variant.Name, Index: discriminant, Fields: fields}, nil
	}

	return nil, fmt.Errorf("%w: %d", ErrBadVariant, discriminant)
}

func (d *decoder) decodeList(elem uint32, length uint64, depth int) (Value, error) {
	elemTy, err := d.resolve(elem)
	if err != nil {
		return nil, err
	}

	// sequences and arrays of u8 stay raw
	if prim, ok := elemTy.Def.(registry.DefPrimitive); ok && prim.Kind == registry.PrimitiveU8 {
		buf, err := d.readExact(length)
		if err != nil {
			return nil, err
		}
		return Bytes(buf), nil
	}

	var values Sequence
	for i := uint64(0); i < length; i++ {
		v, err := d.decode(elem, depth+1)
		if err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	if values == nil {
		values = Sequence{}
	}
	return values, nil
}

func (d *decoder) decodeBitSequence(def registry.DefBitSequence) (Value, error) {
	storeTy, err := d.resolve(def.Store)
	if err != nil {
		return nil, err
	}

	storeBits := uint64(8)
	if prim, ok := storeTy.Def.(registry.DefPrimitive); ok {
		switch prim.Kind {
		case registry.PrimitiveU8:
			storeBits = 8
		case registry.PrimitiveU16:
			storeBits = 16
		case registry.PrimitiveU32:
			storeBits = 32
		case registry.PrimitiveU64:
			storeBits = 64
		}
	}

	numBits, err := d.dec.DecodeUintCompact()
	if err != nil {
		return nil, err
	}

	bits := numBits.Uint64()
	if bits/8 > d.counter.remaining() {
		return nil, fmt.Errorf("%w: %d bits claimed, %d bytes remain",
			ErrTruncated, bits, d.counter.remaining())
	}
	elements := (bits + storeBits - 1) / storeBits
	buf, err := d.readExact(elements * storeBits / 8)
	if err != nil {
		return nil, err
	}
	return BitSequence{NumBits: uint32(bits), Bytes: buf}, nil
}

func reverseBytes(b []byte) {
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
}
