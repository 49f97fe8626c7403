// Copyright 2025 Polkabyte Labs
// SPDX-License-Identifier: LGPL-3.0-only

package metadata

import (
	"fmt"

	"github.com/polkabyte/polkameta/lib/common"
)

// Hasher is one of the seven storage key hashing strategies. The set is
// closed; it is part of the wire protocol.
type Hasher uint8

// Hashers in wire order.
const (
	HasherBlake2_128 Hasher = iota
	HasherBlake2_256
	HasherBlake2_128Concat
	HasherTwox128
	HasherTwox256
	HasherTwox64Concat
	HasherIdentity
)

// HasherFromWire converts the wire byte into a Hasher.
func HasherFromWire(b uint8) (Hasher, error) {
	if b > uint8(HasherIdentity) {
		return 0, fmt.Errorf("%w: %d", ErrUnknownHasher, b)
	}
	return Hasher(b), nil
}

// Wire returns the hasher's wire byte.
func (h Hasher) Wire() uint8 {
	return uint8(h)
}

// Hash applies the hasher to input. For concat hashers the input bytes
// are appended after the digest; for Identity the input passes through
// unchanged.
func (h Hasher) Hash(input []byte) []byte {
	switch h {
	case HasherBlake2_128:
		return mustBlake2b128(input)
	case HasherBlake2_256:
		digest := common.MustBlake2b256(input)
		return digest[:]
	case HasherBlake2_128Concat:
		return append(mustBlake2b128(input), input...)
	case HasherTwox128:
		return common.MustTwox128(input)
	case HasherTwox256:
		return common.MustTwox256(input)
	case HasherTwox64Concat:
		return append(common.MustTwox64(input), input...)
	case HasherIdentity:
		return input
	default:
		panic(fmt.Sprintf("metadata: invalid hasher %d", h))
	}
}

// PrefixLen is the fixed number of digest bytes at the front of this
// hasher's output: the amount a decoder strips before reading the key
// bytes back (for reversible hashers), or the full digest size (for
// irreversible ones).
func (h Hasher) PrefixLen() int {
	switch h {
	case HasherBlake2_128, HasherBlake2_128Concat, HasherTwox128:
		return 16
	case HasherBlake2_256, HasherTwox256:
		return 32
	case HasherTwox64Concat:
		return 8
	case HasherIdentity:
		return 0
	default:
		panic(fmt.Sprintf("metadata: invalid hasher %d", h))
	}
}

// EndsWithKey reports whether the hasher's output ends with the
// original key bytes, making the key recoverable from a storage key.
func (h Hasher) EndsWithKey() bool {
	switch h {
	case HasherBlake2_128Concat, HasherTwox64Concat, HasherIdentity:
		return true
	default:
		return false
	}
}

func (h Hasher) String() string {
	switch h {
	case HasherBlake2_128:
		return "blake2_128"
	case HasherBlake2_256:
		return "blake2_256"
	case HasherBlake2_128Concat:
		return "blake2_128_concat"
	case HasherTwox128:
		return "twox_128"
	case HasherTwox256:
		return "twox_256"
	case HasherTwox64Concat:
		return "twox_64_concat"
	case HasherIdentity:
		return "identity"
	default:
		return fmt.Sprintf("hasher(%d)", uint8(h))
	}
}

func mustBlake2b128(input []byte) []byte {
	out, err := common.Blake2b128(input)
	if err != nil {
		panic(err)
	}
	return out
}
