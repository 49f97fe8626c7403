// Copyright 2025 Polkabyte Labs
// SPDX-License-Identifier: LGPL-3.0-only

package frame

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/centrifuge/go-substrate-rpc-client/v4/scale"
)

// Magic is the little-endian "meta" marker every metadata blob starts
// with.
const Magic uint32 = 0x6174656d

// Supported metadata versions.
const (
	VersionV14 uint8 = 14
	VersionV15 uint8 = 15
	VersionV16 uint8 = 16
)

var (
	ErrBadMagic           = errors.New("metadata blob does not start with the meta magic")
	ErrUnsupportedVersion = errors.New("unsupported metadata version")
	ErrTrailingBytes      = errors.New("metadata blob has trailing bytes")
)

// Decoded is a version-tagged wire metadata value. Exactly one of the
// version pointers is set, matching Version.
type Decoded struct {
	Version uint8
	V14     *RuntimeMetadataV14
	V15     *RuntimeMetadataV15
	V16     *RuntimeMetadataV16
}

// Decode parses a full metadata blob: magic, version byte, then the
// version's wire layout. The blob must be consumed exactly.
func Decode(blob []byte) (*Decoded, error) {
	if len(blob) < 5 {
		return nil, fmt.Errorf("%w: blob too short", ErrBadMagic)
	}
	if magic := binary.LittleEndian.Uint32(blob[:4]); magic != Magic {
		return nil, fmt.Errorf("%w: got 0x%08x", ErrBadMagic, magic)
	}

	version := blob[4]
	reader := bytes.NewReader(blob[5:])
	decoder := scale.NewDecoder(reader)

	out := &Decoded{Version: version}
	switch version {
	case VersionV14:
		out.V14 = new(RuntimeMetadataV14)
		if err := decoder.Decode(out.V14); err != nil {
			return nil, fmt.Errorf("decoding v14 metadata: %w", err)
		}
	case VersionV15:
		out.V15 = new(RuntimeMetadataV15)
		if err := decoder.Decode(out.V15); err != nil {
			return nil, fmt.Errorf("decoding v15 metadata: %w", err)
		}
	case VersionV16:
		out.V16 = new(RuntimeMetadataV16)
		if err := decoder.Decode(out.V16); err != nil {
			return nil, fmt.Errorf("decoding v16 metadata: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, version)
	}

	if reader.Len() != 0 {
		return nil, fmt.Errorf("%w: %d bytes left", ErrTrailingBytes, reader.Len())
	}
	return out, nil
}

// Encode writes the metadata back into blob form, magic and version
// byte included.
func (d *Decoded) Encode() ([]byte, error) {
	var buf bytes.Buffer

	header := make([]byte, 5)
	binary.LittleEndian.PutUint32(header, Magic)
	header[4] = d.Version
	buf.Write(header)

	encoder := scale.NewEncoder(&buf)
	switch {
	case d.Version == VersionV14 && d.V14 != nil:
		if err := encoder.Encode(*d.V14); err != nil {
			return nil, fmt.Errorf("encoding v14 metadata: %w", err)
		}
	case d.Version == VersionV15 && d.V15 != nil:
		if err := encoder.Encode(*d.V15); err != nil {
			return nil, fmt.Errorf("encoding v15 metadata: %w", err)
		}
	case d.Version == VersionV16 && d.V16 != nil:
		if err := encoder.Encode(*d.V16); err != nil {
			return nil, fmt.Errorf("encoding v16 metadata: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, d.Version)
	}
	return buf.Bytes(), nil
}
