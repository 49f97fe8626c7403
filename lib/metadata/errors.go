// Copyright 2025 Polkabyte Labs
// SPDX-License-Identifier: LGPL-3.0-only

package metadata

import "errors"

var (
	// ErrPalletNotFound is returned when a pallet name or index does
	// not exist in the metadata.
	ErrPalletNotFound = errors.New("pallet not found")

	// ErrStorageEntryNotFound is returned when a pallet has no storage
	// entry of the requested name.
	ErrStorageEntryNotFound = errors.New("storage entry not found")

	// ErrConstantNotFound is returned when a pallet has no constant of
	// the requested name.
	ErrConstantNotFound = errors.New("constant not found")

	// ErrRuntimeAPINotFound is returned when a runtime API trait or
	// method does not exist in the metadata.
	ErrRuntimeAPINotFound = errors.New("runtime API not found")

	// ErrTypeNotFound is returned when a type id named by the metadata
	// does not resolve in its own registry.
	ErrTypeNotFound = errors.New("type not found in registry")

	// ErrVariantNotFound is returned when a call, event or error
	// discriminant or name has no matching variant.
	ErrVariantNotFound = errors.New("variant not found")

	// ErrVariantTypeExpected is returned when a type expected to be an
	// enum (a call, event or error type) has a different shape.
	ErrVariantTypeExpected = errors.New("variant type expected")

	// ErrDispatchErrorTypeNotFound is returned when the registry has no
	// sp_runtime::DispatchError type. Downstream consumers assume it
	// exists, so its absence fails construction.
	ErrDispatchErrorTypeNotFound = errors.New("sp_runtime::DispatchError type not found")

	// ErrRuntimeTypeNotFound is returned when the runtime type cannot
	// be located.
	ErrRuntimeTypeNotFound = errors.New("runtime type not found")

	// ErrExtrinsicPartNotFound is returned when a v14 extrinsic type is
	// missing one of the generic parameters the upgrade needs.
	ErrExtrinsicPartNotFound = errors.New("extrinsic type parameter not found")

	// ErrOuterEnumNotFound is returned when a v14 registry has no type
	// named RuntimeCall or RuntimeEvent to serve as an outer enum.
	ErrOuterEnumNotFound = errors.New("outer enum type not found")

	// ErrUnknownHasher is returned for a hasher byte outside the wire
	// protocol's closed set.
	ErrUnknownHasher = errors.New("unknown storage hasher")

	// ErrLossyConversion is returned when a downgrade needs a field the
	// model never had (it was introduced by a newer wire version).
	ErrLossyConversion = errors.New("metadata cannot be downgraded without loss")

	// ErrIncompatibleMetadata is returned when a validation hash does
	// not match the live metadata.
	ErrIncompatibleMetadata = errors.New("incompatible metadata")
)
