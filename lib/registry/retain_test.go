// Copyright 2025 Polkabyte Labs
// SPDX-License-Identifier: LGPL-3.0-only

package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func u32ptr(v uint32) *uint32 { return &v }

// buildTestRegistry returns a registry with the following graph:
//
//	0: u32
//	1: composite{0}        (wraps u32)
//	2: node{next: 3}       (mutually recursive with 3)
//	3: node{prev: 2}
//	4: sequence of 1
//	5: tuple (0, 4)
//	6: variant{A(0), B(5)}
//	7: u8 (unreachable from 6)
func buildTestRegistry() Registry {
	return NewRegistry([]Type{
		{Def: DefPrimitive{Kind: PrimitiveU32}},
		{Path: Path{"test", "Wrapper"}, Def: DefComposite{Fields: []Field{{Name: "inner", Type: 0}}}},
		{Path: Path{"test", "A"}, Def: DefComposite{Fields: []Field{{Name: "next", Type: 3}}}},
		{Path: Path{"test", "B"}, Def: DefComposite{Fields: []Field{{Name: "prev", Type: 2}}}},
		{Def: DefSequence{Elem: 1}},
		{Def: DefTuple{Elems: []uint32{0, 4}}},
		{Path: Path{"test", "Choice"}, Def: DefVariant{Variants: []Variant{
			{Name: "A", Index: 0, Fields: []Field{{Type: 0}}},
			{Name: "B", Index: 1, Fields: []Field{{Type: 5}}},
		}}},
		{Def: DefPrimitive{Kind: PrimitiveU8}},
	})
}

func TestRetain_Reachability(t *testing.T) {
	t.Parallel()

	r := buildTestRegistry()
	pruned, remap := r.Retain(func(id uint32) bool { return id == 6 })

	// 6 reaches 0, 5, 4, 1 and transitively 0; 2, 3 and 7 are dropped.
	require.Equal(t, 5, pruned.Len())
	assert.Len(t, remap, 5)

	for _, dropped := range []uint32{2, 3, 7} {
		_, ok := remap[dropped]
		assert.False(t, ok, "type %d must not survive", dropped)
	}

	// every id referenced from a surviving type resolves in the pruned registry
	for _, ty := range pruned.Types() {
		for _, ref := range referencedIDs(&ty) {
			_, ok := pruned.Resolve(ref)
			assert.True(t, ok, "dangling reference %d", ref)
		}
	}
}

func TestRetain_DenseBijection(t *testing.T) {
	t.Parallel()

	r := buildTestRegistry()
	pruned, remap := r.Retain(func(id uint32) bool { return id == 6 })

	seen := make(map[uint32]bool)
	for _, newID := range remap {
		require.False(t, seen[newID], "new id %d assigned twice", newID)
		require.Less(t, int(newID), pruned.Len())
		seen[newID] = true
	}
	require.Len(t, seen, pruned.Len())

	// relative order is preserved
	require.Less(t, remap[0], remap[1])
	require.Less(t, remap[1], remap[4])
	require.Less(t, remap[4], remap[5])
	require.Less(t, remap[5], remap[6])
}

func TestRetain_CyclicTypes(t *testing.T) {
	t.Parallel()

	r := buildTestRegistry()

	// retaining either half of the 2 <-> 3 cycle terminates and keeps both
	pruned, remap := r.Retain(func(id uint32) bool { return id == 2 })
	require.Equal(t, 2, pruned.Len())

	a, ok := pruned.Resolve(remap[2])
	require.True(t, ok)
	b, ok := pruned.Resolve(remap[3])
	require.True(t, ok)

	assert.Equal(t, remap[3], a.Def.(DefComposite).Fields[0].Type)
	assert.Equal(t, remap[2], b.Def.(DefComposite).Fields[0].Type)
}

func TestRetain_SelfReferentialType(t *testing.T) {
	t.Parallel()

	r := NewRegistry([]Type{
		{Path: Path{"test", "List"}, Def: DefVariant{Variants: []Variant{
			{Name: "Nil", Index: 0},
			{Name: "Cons", Index: 1, Fields: []Field{{Type: 1}, {Type: 0}}},
		}}},
		{Def: DefPrimitive{Kind: PrimitiveU64}},
	})

	pruned, remap := r.Retain(func(id uint32) bool { return id == 0 })
	require.Equal(t, 2, pruned.Len())

	list, ok := pruned.Resolve(remap[0])
	require.True(t, ok)
	cons := list.Def.(DefVariant).Variants[1]
	assert.Equal(t, remap[0], cons.Fields[1].Type)
}

func TestRetain_DoesNotMutateSource(t *testing.T) {
	t.Parallel()

	r := buildTestRegistry()
	_, _ = r.Retain(func(id uint32) bool { return id == 6 })

	// source registry still resolves its original graph
	wrapper, ok := r.Resolve(1)
	require.True(t, ok)
	assert.Equal(t, uint32(0), wrapper.Def.(DefComposite).Fields[0].Type)

	choice, ok := r.Resolve(6)
	require.True(t, ok)
	assert.Equal(t, uint32(5), choice.Def.(DefVariant).Variants[1].Fields[0].Type)
}

func TestRetain_ParamBindingsWalkedAndRewritten(t *testing.T) {
	t.Parallel()

	r := NewRegistry([]Type{
		{Def: DefPrimitive{Kind: PrimitiveU32}},
		{
			Path:   Path{"test", "Holder"},
			Params: []TypeParam{{Name: "T", Type: u32ptr(0)}},
			Def:    DefComposite{},
		},
	})

	pruned, remap := r.Retain(func(id uint32) bool { return id == 1 })
	require.Equal(t, 2, pruned.Len())

	holder, ok := pruned.Resolve(remap[1])
	require.True(t, ok)
	require.NotNil(t, holder.Params[0].Type)
	assert.Equal(t, remap[0], *holder.Params[0].Type)
}

func TestFindByPath(t *testing.T) {
	t.Parallel()

	r := buildTestRegistry()

	id, ok := r.FindByPath("test", "Choice")
	require.True(t, ok)
	assert.Equal(t, uint32(6), id)

	_, ok = r.FindByPath("test", "Missing")
	assert.False(t, ok)

	id, ok = r.FindByIdent("Wrapper")
	require.True(t, ok)
	assert.Equal(t, uint32(1), id)
}
