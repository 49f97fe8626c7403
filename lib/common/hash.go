// Copyright 2025 Polkabyte Labs
// SPDX-License-Identifier: LGPL-3.0-only

package common

import (
	"encoding/binary"

	"github.com/OneOfOne/xxhash"
	"golang.org/x/crypto/blake2b"
)

// Blake2b128 returns the 128-bit blake2b hash of the input data.
func Blake2b128(in []byte) ([]byte, error) {
	h, err := blake2b.New(16, nil)
	if err != nil {
		return nil, err
	}

	_, err = h.Write(in)
	if err != nil {
		return nil, err
	}

	return h.Sum(nil), nil
}

// Blake2b256 returns the 256-bit blake2b hash of the input data.
func Blake2b256(in []byte) ([]byte, error) {
	h, err := blake2b.New256(nil)
	if err != nil {
		return nil, err
	}

	_, err = h.Write(in)
	if err != nil {
		return nil, err
	}

	return h.Sum(nil), nil
}

// MustBlake2b256 returns the 256-bit blake2b hash of the input data.
// It panics if it fails to hash.
func MustBlake2b256(in []byte) [32]byte {
	hash, err := Blake2b256(in)
	if err != nil {
		panic(err)
	}

	var buf [32]byte
	copy(buf[:], hash)
	return buf
}

// Twox64 returns the xx64 hash of the input data.
func Twox64(in []byte) ([]byte, error) {
	hasher := xxhash.NewS64(0)
	_, err := hasher.Write(in)
	if err != nil {
		return nil, err
	}

	hash := make([]byte, 8)
	binary.LittleEndian.PutUint64(hash, hasher.Sum64())
	return hash, nil
}

// Twox128 computes xxHash64 twice with seeds 0 and 1 applied on the given
// byte array, concatenating the two little-endian results.
func Twox128(in []byte) ([]byte, error) {
	hash := make([]byte, 16)
	for seed := uint64(0); seed < 2; seed++ {
		h := xxhash.NewS64(seed)
		_, err := h.Write(in)
		if err != nil {
			return nil, err
		}
		binary.LittleEndian.PutUint64(hash[seed*8:], h.Sum64())
	}
	return hash, nil
}

// Twox256 computes xxHash64 four times with seeds 0 through 3 applied on the
// given byte array, concatenating the four little-endian results.
func Twox256(in []byte) ([]byte, error) {
	hash := make([]byte, 32)
	for seed := uint64(0); seed < 4; seed++ {
		h := xxhash.NewS64(seed)
		_, err := h.Write(in)
		if err != nil {
			return nil, err
		}
		binary.LittleEndian.PutUint64(hash[seed*8:], h.Sum64())
	}
	return hash, nil
}

// MustTwox64 returns the twox64 hash of the input data.
// It panics if it fails to hash.
func MustTwox64(in []byte) []byte {
	hash, err := Twox64(in)
	if err != nil {
		panic(err)
	}
	return hash
}

// MustTwox128 returns the twox128 hash of the input data.
// It panics if it fails to hash.
func MustTwox128(in []byte) []byte {
	hash, err := Twox128(in)
	if err != nil {
		panic(err)
	}
	return hash
}

// MustTwox256 returns the twox256 hash of the input data.
// It panics if it fails to hash.
func MustTwox256(in []byte) []byte {
	hash, err := Twox256(in)
	if err != nil {
		panic(err)
	}
	return hash
}
