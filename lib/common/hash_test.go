// Copyright 2025 Polkabyte Labs
// SPDX-License-Identifier: LGPL-3.0-only

package common_test

import (
	"testing"

	"github.com/polkabyte/polkameta/lib/common"

	"github.com/stretchr/testify/require"
)

func TestBlake2b128_EmptyInput(t *testing.T) {
	t.Parallel()

	// test case from https://github.com/noot/blake2b_test which uses the
	// blake2-rfp rust crate, matching substrate's blake2_128
	h, err := common.Blake2b128([]byte{})
	require.NoError(t, err)
	require.Equal(t, common.MustHexToBytes("0xcae66941d9efbd404e4d88758ea67670"), h)
}

func TestBlake2b128(t *testing.T) {
	t.Parallel()

	h, err := common.Blake2b128([]byte("static"))
	require.NoError(t, err)
	require.Equal(t, common.MustHexToBytes("0x440973e4e50902f1d0ec97de357eb2fd"), h)
}

func TestBlake2b256_EmptyInput(t *testing.T) {
	t.Parallel()

	h, err := common.Blake2b256([]byte{})
	require.NoError(t, err)
	require.Equal(t,
		common.MustHexToBytes("0x0e5751c026e543b2e8ab2eb06099daa1d1e5df47778f7787faab45cdf12fe3a8"), h)
}

func TestTwox64(t *testing.T) {
	t.Parallel()

	// xxHash64 with seed 0 over the empty input
	h, err := common.Twox64([]byte{})
	require.NoError(t, err)
	require.Equal(t, common.MustHexToBytes("0x99e9d85137db46ef"), h)
}

func TestTwox128_WellKnownPrefixes(t *testing.T) {
	t.Parallel()

	// well-known substrate storage prefixes, checked against
	// https://www.shawntabrizi.com/substrate-known-keys/
	testCases := map[string]string{
		"System":  "0x26aa394eea5630e07c48ae0c9558cef7",
		"Account": "0xb99d880ec681799c0cf30e8886371da9",
	}

	for in, expected := range testCases {
		h, err := common.Twox128([]byte(in))
		require.NoError(t, err)
		require.Equal(t, common.MustHexToBytes(expected), h)
	}
}

func TestTwox256_Length(t *testing.T) {
	t.Parallel()

	h, err := common.Twox256([]byte("some input"))
	require.NoError(t, err)
	require.Len(t, h, 32)

	// the first 16 bytes must agree with the 128-bit variant
	h128, err := common.Twox128([]byte("some input"))
	require.NoError(t, err)
	require.Equal(t, h128, h[:16])
}
