// Copyright 2025 Polkabyte Labs
// SPDX-License-Identifier: LGPL-3.0-only

// Package registry implements the portable type registry: a flat,
// numerically-indexed table of type descriptions produced by a
// substrate runtime, with recursive resolution and a prune/remap
// operation used to shrink metadata.
package registry

import (
	"strings"
)

// Registry is a flat table of type descriptions indexed by numeric id.
// A registry is immutable once built; Retain returns a new one.
type Registry struct {
	types []Type
}

// NewRegistry builds a registry from the given types. The position of a
// type in the slice is its id.
func NewRegistry(types []Type) Registry {
	for i := range types {
		types[i].ID = uint32(i)
	}
	return Registry{types: types}
}

// Resolve returns the type description registered under id, or false if
// the id is not present.
func (r *Registry) Resolve(id uint32) (*Type, bool) {
	if int(id) >= len(r.types) {
		return nil, false
	}
	return &r.types[id], true
}

// Types returns the registered type descriptions in id order.
func (r *Registry) Types() []Type {
	return r.types
}

// Len returns the number of registered types.
func (r *Registry) Len() int {
	return len(r.types)
}

// FindByPath returns the id of the first type whose path matches the
// given segments exactly.
func (r *Registry) FindByPath(segments ...string) (uint32, bool) {
	for i := range r.types {
		if r.types[i].Path.Equal(segments) {
			return uint32(i), true
		}
	}
	return 0, false
}

// FindByIdent returns the id of the first type whose path's last segment
// equals ident.
func (r *Registry) FindByIdent(ident string) (uint32, bool) {
	for i := range r.types {
		if r.types[i].Path.Ident() == ident {
			return uint32(i), true
		}
	}
	return 0, false
}

// Type is a single entry in the registry: an optionally namespaced,
// optionally generic type with exactly one definition.
type Type struct {
	ID     uint32
	Path   Path
	Params []TypeParam
	Def    TypeDef
	Docs   []string
}

// Path is the namespaced name of a type, e.g. ["sp_runtime", "DispatchError"].
// An empty path means the type is anonymous (tuples, primitives and the like).
type Path []string

// Equal reports whether the path matches the given segments exactly.
func (p Path) Equal(segments []string) bool {
	if len(p) != len(segments) {
		return false
	}
	for i := range p {
		if p[i] != segments[i] {
			return false
		}
	}
	return true
}

// Ident returns the last path segment, or the empty string for an
// anonymous type.
func (p Path) Ident() string {
	if len(p) == 0 {
		return ""
	}
	return p[len(p)-1]
}

func (p Path) String() string {
	return strings.Join(p, "::")
}

// TypeParam is a generic parameter binding on a type. Type is nil when
// the parameter is unbound (skipped in the concrete instantiation).
type TypeParam struct {
	Name string
	Type *uint32
}
