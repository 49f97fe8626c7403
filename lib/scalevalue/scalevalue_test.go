// Copyright 2025 Polkabyte Labs
// SPDX-License-Identifier: LGPL-3.0-only

package scalevalue

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/polkabyte/polkameta/lib/common"
	"github.com/polkabyte/polkameta/lib/registry"
)

// testRegistry builds a small registry covering every definition kind.
//
//	0  u8
//	1  u32
//	2  u64
//	3  u128
//	4  bool
//	5  str
//	6  Vec<u8>
//	7  Vec<u32>
//	8  [u8; 4]
//	9  (u32, bool)
//	10 AccountInfo { nonce: u32, free: u128 }
//	11 Option<u32> (None=0, Some=1)
//	12 Compact<u32>
//	13 Compact<u128>
//	14 i32
//	15 BitVec<u8, Lsb0>
func testRegistry(t *testing.T) *registry.Registry {
	t.Helper()

	types := []registry.Type{
		{Def: registry.DefPrimitive{Kind: registry.PrimitiveU8}},
		{Def: registry.DefPrimitive{Kind: registry.PrimitiveU32}},
		{Def: registry.DefPrimitive{Kind: registry.PrimitiveU64}},
		{Def: registry.DefPrimitive{Kind: registry.PrimitiveU128}},
		{Def: registry.DefPrimitive{Kind: registry.PrimitiveBool}},
		{Def: registry.DefPrimitive{Kind: registry.PrimitiveStr}},
		{Def: registry.DefSequence{Elem: 0}},
		{Def: registry.DefSequence{Elem: 1}},
		{Def: registry.DefArray{Len: 4, Elem: 0}},
		{Def: registry.DefTuple{Elems: []uint32{1, 4}}},
		{
			Path: registry.Path{"frame_system", "AccountInfo"},
			Def: registry.DefComposite{Fields: []registry.Field{
				{Name: "nonce", Type: 1},
				{Name: "free", Type: 3},
			}},
		},
		{
			Path: registry.Path{"Option"},
			Def: registry.DefVariant{Variants: []registry.Variant{
				{Name: "None", Index: 0},
				{Name: "Some", Index: 1, Fields: []registry.Field{{Type: 1}}},
			}},
		},
		{Def: registry.DefCompact{Inner: 1}},
		{Def: registry.DefCompact{Inner: 3}},
		{Def: registry.DefPrimitive{Kind: registry.PrimitiveI32}},
		{Def: registry.DefBitSequence{Store: 0, Order: 1}},
	}

	reg := registry.NewRegistry(types)
	return &reg
}

func roundTrip(t *testing.T, v Value, id uint32, reg *registry.Registry) Value {
	t.Helper()

	encoded, err := Encode(v, id, reg)
	require.NoError(t, err)

	decoded, n, err := Decode(encoded, id, reg)
	require.NoError(t, err)
	require.Equal(t, len(encoded), n, "decode must consume the whole encoding")
	return decoded
}

func TestDecode_Primitives(t *testing.T) {
	t.Parallel()
	reg := testRegistry(t)

	v, n, err := Decode([]byte{0x2a}, 0, reg)
	require.NoError(t, err)
	assert.Equal(t, Uint(42), v)
	assert.Equal(t, 1, n)

	v, n, err = Decode(common.MustHexToBytes("0x0a000000"), 1, reg)
	require.NoError(t, err)
	assert.Equal(t, Uint(10), v)
	assert.Equal(t, 4, n)

	v, n, err = Decode([]byte{0x01}, 4, reg)
	require.NoError(t, err)
	assert.Equal(t, Bool(true), v)
	assert.Equal(t, 1, n)

	// "hi" = compact(2) ++ bytes
	v, n, err = Decode([]byte{0x08, 'h', 'i'}, 5, reg)
	require.NoError(t, err)
	assert.Equal(t, Str("hi"), v)
	assert.Equal(t, 3, n)
}

func TestDecode_U128LittleEndian(t *testing.T) {
	t.Parallel()
	reg := testRegistry(t)

	data := common.MustHexToBytes("0x0100000000000000000000000000ff00")
	v, n, err := Decode(data, 3, reg)
	require.NoError(t, err)
	require.Equal(t, 16, n)

	want := new(big.Int).Lsh(big.NewInt(0xff), 112)
	want.Add(want, big.NewInt(1))
	bi, ok := v.(BigInt)
	require.True(t, ok)
	assert.Zero(t, want.Cmp(bi.Int))
}

func TestRoundTrip_Compact(t *testing.T) {
	t.Parallel()
	reg := testRegistry(t)

	assert.Equal(t, Uint(0), roundTrip(t, Uint(0), 12, reg))
	assert.Equal(t, Uint(63), roundTrip(t, Uint(63), 12, reg))
	assert.Equal(t, Uint(16384), roundTrip(t, Uint(16384), 12, reg))
	assert.Equal(t, Uint(1<<30), roundTrip(t, Uint(1<<30), 12, reg))

	// compact over a u128 inner type decodes as BigInt
	huge := new(big.Int).Lsh(big.NewInt(1), 100)
	got := roundTrip(t, BigInt{Int: huge}, 13, reg)
	bi, ok := got.(BigInt)
	require.True(t, ok)
	assert.Zero(t, huge.Cmp(bi.Int))
}

func TestRoundTrip_ByteSequences(t *testing.T) {
	t.Parallel()
	reg := testRegistry(t)

	// Vec<u8> decodes to raw bytes, not element-wise values
	got := roundTrip(t, Bytes{1, 2, 3}, 6, reg)
	assert.Equal(t, Bytes{1, 2, 3}, got)

	got = roundTrip(t, Bytes{0xde, 0xad, 0xbe, 0xef}, 8, reg)
	assert.Equal(t, Bytes{0xde, 0xad, 0xbe, 0xef}, got)

	// fixed array length is enforced
	_, err := Encode(Bytes{1, 2}, 8, reg)
	require.ErrorIs(t, err, ErrValueShape)
}

func TestRoundTrip_SequenceAndTuple(t *testing.T) {
	t.Parallel()
	reg := testRegistry(t)

	got := roundTrip(t, Sequence{Uint(1), Uint(2), Uint(3)}, 7, reg)
	assert.Equal(t, Sequence{Uint(1), Uint(2), Uint(3)}, got)

	got = roundTrip(t, Tuple{Uint(7), Bool(true)}, 9, reg)
	assert.Equal(t, Tuple{Uint(7), Bool(true)}, got)
}

func TestRoundTrip_Composite(t *testing.T) {
	t.Parallel()
	reg := testRegistry(t)

	account := Composite{Fields: []CompositeField{
		{Name: "nonce", Value: Uint(5)},
		{Name: "free", Value: BigInt{Int: big.NewInt(1_000_000)}},
	}}

	got := roundTrip(t, account, 10, reg)
	composite, ok := got.(Composite)
	require.True(t, ok)
	require.Len(t, composite.Fields, 2)
	assert.Equal(t, "nonce", composite.Fields[0].Name)
	assert.Equal(t, Uint(5), composite.Fields[0].Value)
	assert.Equal(t, "free", composite.Fields[1].Name)

	// wrong field name is rejected
	bad := Composite{Fields: []CompositeField{
		{Name: "free", Value: Uint(5)},
		{Name: "nonce", Value: Uint(1)},
	}}
	_, err := Encode(bad, 10, reg)
	require.ErrorIs(t, err, ErrValueShape)
}

func TestRoundTrip_Variant(t *testing.T) {
	t.Parallel()
	reg := testRegistry(t)

	none := roundTrip(t, Variant{Name: "None"}, 11, reg)
	v, ok := none.(Variant)
	require.True(t, ok)
	assert.Equal(t, "None", v.Name)
	assert.Equal(t, uint8(0), v.Index)

	some := roundTrip(t, Variant{
		Name:   "Some",
		Fields: []CompositeField{{Value: Uint(99)}},
	}, 11, reg)
	v, ok = some.(Variant)
	require.True(t, ok)
	assert.Equal(t, "Some", v.Name)
	assert.Equal(t, uint8(1), v.Index)
	require.Len(t, v.Fields, 1)
	assert.Equal(t, Uint(99), v.Fields[0].Value)

	_, err := Encode(Variant{Name: "Nope"}, 11, reg)
	require.ErrorIs(t, err, ErrValueShape)

	_, _, err = Decode([]byte{0x07}, 11, reg)
	require.ErrorIs(t, err, ErrBadVariant)
}

func TestRoundTrip_SignedAndBitSequence(t *testing.T) {
	t.Parallel()
	reg := testRegistry(t)

	assert.Equal(t, Int(-12345), roundTrip(t, Int(-12345), 14, reg))

	bits := BitSequence{NumBits: 10, Bytes: []byte{0xff, 0x03}}
	got := roundTrip(t, bits, 15, reg)
	assert.Equal(t, bits, got)
}

func TestEncode_RangeChecks(t *testing.T) {
	t.Parallel()
	reg := testRegistry(t)

	_, err := Encode(Uint(300), 0, reg)
	require.ErrorIs(t, err, ErrValueRange)

	_, err = Encode(Int(-1), 1, reg)
	require.ErrorIs(t, err, ErrValueShape)

	_, err = Encode(Int(1<<40), 14, reg)
	require.ErrorIs(t, err, ErrValueRange)

	toobig := new(big.Int).Lsh(big.NewInt(1), 130)
	_, err = Encode(BigInt{Int: toobig}, 3, reg)
	require.ErrorIs(t, err, ErrValueRange)
}

func TestDecode_ReportsConsumedBytes(t *testing.T) {
	t.Parallel()
	reg := testRegistry(t)

	// trailing bytes are left for the caller
	data := append(common.MustHexToBytes("0x0a000000"), 0xde, 0xad)
	v, n, err := Decode(data, 1, reg)
	require.NoError(t, err)
	assert.Equal(t, Uint(10), v)
	assert.Equal(t, 4, n)

	n, err = Skip(data, 1, reg)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
}

func TestDecode_OversizedLengthClaim(t *testing.T) {
	t.Parallel()
	reg := testRegistry(t)

	compact := func(n *big.Int) []byte {
		data, err := Encode(BigInt{Int: n}, 13, reg)
		require.NoError(t, err)
		return data
	}

	// Vec<u8> whose length prefix claims far more than the input holds
	// must fail cleanly, whatever the claimed size.
	huge := compact(new(big.Int).Lsh(big.NewInt(1), 50))
	_, _, err := Decode(huge, 6, reg)
	require.ErrorIs(t, err, ErrTruncated)

	short := append(compact(big.NewInt(10)), 0x01, 0x02)
	_, _, err = Decode(short, 6, reg)
	require.ErrorIs(t, err, ErrTruncated)

	// same for a bit sequence's bit count
	_, _, err = Decode(compact(new(big.Int).Lsh(big.NewInt(1), 61)), 15, reg)
	require.ErrorIs(t, err, ErrTruncated)
}

func TestDecode_UnknownType(t *testing.T) {
	t.Parallel()
	reg := testRegistry(t)

	_, _, err := Decode([]byte{0x00}, 999, reg)
	require.ErrorIs(t, err, ErrTypeNotFound)
}
