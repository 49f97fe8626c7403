// Copyright 2025 Polkabyte Labs
// SPDX-License-Identifier: LGPL-3.0-only

package storage

import "errors"

var (
	// ErrWrongNumberOfKeys is returned when a caller supplies more key
	// values than the storage entry declares fields.
	ErrWrongNumberOfKeys = errors.New("wrong number of storage keys")

	// ErrWrongNumberOfHashers is returned when an entry's declared
	// hasher count does not match its key field count. It indicates a
	// malformed schema, not a caller mistake.
	ErrWrongNumberOfHashers = errors.New("hasher count does not match key fields")

	// ErrUnexpectedAddressBytes is returned when a storage key being
	// decoded is truncated, carries the wrong root, or has bytes left
	// over after the last key field.
	ErrUnexpectedAddressBytes = errors.New("unexpected storage address bytes")
)
