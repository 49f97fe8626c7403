// Copyright 2025 Polkabyte Labs
// SPDX-License-Identifier: LGPL-3.0-only

package storage

import (
	"fmt"

	"github.com/polkabyte/polkameta/lib/metadata"
	"github.com/polkabyte/polkameta/lib/scalevalue"
)

// Address names one storage location: pallet, entry and zero or more
// key values. An address may carry the structural hash of the entry it
// was written against; encoding such an address first checks the live
// metadata still has that shape, catching schema drift before any
// state is read.
type Address struct {
	pallet         string
	entry          string
	keys           []scalevalue.Value
	validationHash *[32]byte
}

// NewAddress builds an address for the given entry and key values.
func NewAddress(pallet, entry string, keys ...scalevalue.Value) Address {
	return Address{pallet: pallet, entry: entry, keys: keys}
}

// WithValidationHash returns a copy of the address carrying an
// expected structural hash, as produced by Metadata.StorageEntryHash
// against the schema the caller was written for.
func (a Address) WithValidationHash(hash [32]byte) Address {
	a.validationHash = &hash
	return a
}

// Unvalidated returns a copy of the address with no expectation hash,
// for dynamic lookups that accept whatever shape the runtime has.
func (a Address) Unvalidated() Address {
	a.validationHash = nil
	return a
}

// Pallet returns the pallet name.
func (a Address) Pallet() string { return a.pallet }

// Entry returns the storage entry name.
func (a Address) Entry() string { return a.entry }

// Keys returns the key values in declaration order.
func (a Address) Keys() []scalevalue.Value { return a.keys }

// ValidationHash returns the expected structural hash, if one is set.
func (a Address) ValidationHash() ([32]byte, bool) {
	if a.validationHash == nil {
		return [32]byte{}, false
	}
	return *a.validationHash, true
}

// ValidateAddress checks the address's expectation hash against the
// live metadata. An address without a hash always passes.
func ValidateAddress(md *metadata.Metadata, addr Address) error {
	want, ok := addr.ValidationHash()
	if !ok {
		return nil
	}
	got, err := md.StorageEntryHash(addr.pallet, addr.entry)
	if err != nil {
		return err
	}
	if got != want {
		return fmt.Errorf("%w: %s.%s changed shape since this address was built",
			metadata.ErrIncompatibleMetadata, addr.pallet, addr.entry)
	}
	return nil
}

// EncodeAddress validates the address against the metadata and builds
// its storage key.
func EncodeAddress(md *metadata.Metadata, addr Address) ([]byte, error) {
	if err := ValidateAddress(md, addr); err != nil {
		return nil, err
	}
	return EncodeKey(md, addr.pallet, addr.entry, addr.keys...)
}
