// Copyright 2025 Polkabyte Labs
// SPDX-License-Identifier: LGPL-3.0-only

package common

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

// ErrNoPrefix is returned when a hex string does not have a 0x prefix.
var ErrNoPrefix = errors.New("could not byteify non 0x prefixed string")

// HexToBytes turns a 0x prefixed hex string into a byte slice.
func HexToBytes(in string) ([]byte, error) {
	if len(in) < 2 {
		return nil, errors.New("invalid string")
	}
	if !strings.HasPrefix(in, "0x") {
		return nil, ErrNoPrefix
	}
	in = in[2:]
	out, err := hex.DecodeString(in)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// MustHexToBytes turns a 0x prefixed hex string into a byte slice.
// It panics if it cannot decode the string.
func MustHexToBytes(in string) []byte {
	out, err := HexToBytes(in)
	if err != nil {
		panic(err)
	}
	return out
}

// BytesToHex turns a byte slice into a 0x prefixed hex string.
func BytesToHex(in []byte) string {
	return fmt.Sprintf("0x%x", in)
}
