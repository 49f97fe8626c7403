// Copyright 2025 Polkabyte Labs
// SPDX-License-Identifier: LGPL-3.0-only

package frame

import (
	"errors"
	"fmt"

	"github.com/centrifuge/go-substrate-rpc-client/v4/scale"
)

// RuntimeMetadataV14 is the oldest supported wire layout.
type RuntimeMetadataV14 struct {
	Types     []PortableType
	Pallets   []PalletMetadataV14
	Extrinsic ExtrinsicMetadataV14
	Type      Compact
}

type PalletMetadataV14 struct {
	Name      string
	Storage   OptionStorage
	Calls     OptionPalletCall
	Event     OptionPalletEvent
	Constants []PalletConstantMetadata
	Error     OptionPalletError
	Index     uint8
}

type ExtrinsicMetadataV14 struct {
	Type             Compact
	Version          uint8
	SignedExtensions []SignedExtensionMetadata
}

// SignedExtensionMetadata describes one transaction extension: the type
// carried in the extrinsic ("extra") and the type folded into the
// signed payload ("additional").
type SignedExtensionMetadata struct {
	Identifier       string
	Type             Compact
	AdditionalSigned Compact
}

type PalletCallMetadata struct {
	Type Compact
}

type PalletEventMetadata struct {
	Type Compact
}

type PalletErrorMetadata struct {
	Type Compact
}

type PalletConstantMetadata struct {
	Name  string
	Type  Compact
	Value []byte
	Docs  []string
}

type StorageMetadata struct {
	Prefix  string
	Entries []StorageEntryMetadata
}

// Storage entry modifiers.
const (
	StorageModifierOptional uint8 = 0
	StorageModifierDefault  uint8 = 1
)

type StorageEntryMetadata struct {
	Name     string
	Modifier uint8
	Type     StorageEntryType
	Default  []byte
	Docs     []string
}

// StorageEntryType is either a plain value or a (possibly multi-key) map.
type StorageEntryType struct {
	IsPlain bool
	Plain   Compact

	IsMap bool
	Map   MapStorageEntry
}

type MapStorageEntry struct {
	Hashers []uint8
	Key     Compact
	Value   Compact
}

const (
	storageTypePlain uint8 = 0
	storageTypeMap   uint8 = 1
)

func (s *StorageEntryType) Decode(decoder scale.Decoder) error {
	tag, err := decoder.ReadOneByte()
	if err != nil {
		return err
	}
	switch tag {
	case storageTypePlain:
		s.IsPlain = true
		return decoder.Decode(&s.Plain)
	case storageTypeMap:
		s.IsMap = true
		return decoder.Decode(&s.Map)
	default:
		return fmt.Errorf("unknown storage entry type tag %d", tag)
	}
}

func (s StorageEntryType) Encode(encoder scale.Encoder) error {
	switch {
	case s.IsPlain:
		if err := encoder.PushByte(storageTypePlain); err != nil {
			return err
		}
		return encoder.Encode(s.Plain)
	case s.IsMap:
		if err := encoder.PushByte(storageTypeMap); err != nil {
			return err
		}
		return encoder.Encode(s.Map)
	default:
		return errors.New("storage entry type has no arm set")
	}
}

// Option wrappers for the per-pallet metadata sections.

type OptionStorage struct {
	HasValue bool
	Value    StorageMetadata
}

func (o *OptionStorage) Decode(decoder scale.Decoder) error {
	return decoder.DecodeOption(&o.HasValue, &o.Value)
}

func (o OptionStorage) Encode(encoder scale.Encoder) error {
	return encoder.EncodeOption(o.HasValue, o.Value)
}

type OptionPalletCall struct {
	HasValue bool
	Value    PalletCallMetadata
}

func (o *OptionPalletCall) Decode(decoder scale.Decoder) error {
	return decoder.DecodeOption(&o.HasValue, &o.Value)
}

func (o OptionPalletCall) Encode(encoder scale.Encoder) error {
	return encoder.EncodeOption(o.HasValue, o.Value)
}

type OptionPalletEvent struct {
	HasValue bool
	Value    PalletEventMetadata
}

func (o *OptionPalletEvent) Decode(decoder scale.Decoder) error {
	return decoder.DecodeOption(&o.HasValue, &o.Value)
}

func (o OptionPalletEvent) Encode(encoder scale.Encoder) error {
	return encoder.EncodeOption(o.HasValue, o.Value)
}

type OptionPalletError struct {
	HasValue bool
	Value    PalletErrorMetadata
}

func (o *OptionPalletError) Decode(decoder scale.Decoder) error {
	return decoder.DecodeOption(&o.HasValue, &o.Value)
}

func (o OptionPalletError) Encode(encoder scale.Encoder) error {
	return encoder.EncodeOption(o.HasValue, o.Value)
}
