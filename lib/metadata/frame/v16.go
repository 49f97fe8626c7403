// Copyright 2025 Polkabyte Labs
// SPDX-License-Identifier: LGPL-3.0-only

package frame

import (
	"fmt"

	"github.com/centrifuge/go-substrate-rpc-client/v4/scale"
)

// RuntimeMetadataV16 drops the top-level runtime type id (the Runtime
// type is located by path instead), makes the extrinsic multi-version
// and attaches deprecation information throughout.
type RuntimeMetadataV16 struct {
	Types      []PortableType
	Pallets    []PalletMetadataV16
	Extrinsic  ExtrinsicMetadataV16
	APIs       []RuntimeAPIMetadataV16
	OuterEnums OuterEnums
	Custom     CustomMetadata
}

type PalletMetadataV16 struct {
	Name            string
	Storage         OptionStorageV16
	Calls           OptionPalletCallV16
	Event           OptionPalletEventV16
	Constants       []PalletConstantMetadataV16
	Error           OptionPalletErrorV16
	AssociatedTypes []PalletAssociatedType
	ViewFunctions   []PalletViewFunction
	Index           uint8
	Docs            []string
	Deprecation     ItemDeprecationInfo
}

// ExtrinsicMetadataV16 supports several extrinsic format versions at
// once; each version selects a subset of the transaction extensions by
// position.
type ExtrinsicMetadataV16 struct {
	Versions              []uint8
	AddressType           Compact
	SignatureType         Compact
	ExtensionsByVersion   []ExtensionsByVersion
	TransactionExtensions []TransactionExtensionMetadata
}

// ExtensionsByVersion is one entry of a BTreeMap<u8, Vec<Compact<u32>>>:
// extrinsic version to indices into the transaction extension list.
type ExtensionsByVersion struct {
	Version uint8
	Indices []Compact
}

type TransactionExtensionMetadata struct {
	Identifier string
	Type       Compact
	Implicit   Compact
}

type PalletCallMetadataV16 struct {
	Type        Compact
	Deprecation EnumDeprecationInfo
}

type PalletEventMetadataV16 struct {
	Type        Compact
	Deprecation EnumDeprecationInfo
}

type PalletErrorMetadataV16 struct {
	Type        Compact
	Deprecation EnumDeprecationInfo
}

type PalletConstantMetadataV16 struct {
	Name        string
	Type        Compact
	Value       []byte
	Docs        []string
	Deprecation ItemDeprecationInfo
}

type StorageMetadataV16 struct {
	Prefix  string
	Entries []StorageEntryMetadataV16
}

type StorageEntryMetadataV16 struct {
	Name        string
	Modifier    uint8
	Type        StorageEntryType
	Default     []byte
	Docs        []string
	Deprecation ItemDeprecationInfo
}

type PalletAssociatedType struct {
	Name string
	Type Compact
	Docs []string
}

type PalletViewFunction struct {
	Name        string
	ID          [32]byte
	Inputs      []RuntimeAPIMethodParam
	Output      Compact
	Docs        []string
	Deprecation ItemDeprecationInfo
}

type RuntimeAPIMetadataV16 struct {
	Name        string
	Methods     []RuntimeAPIMethodMetadataV16
	Docs        []string
	Deprecation ItemDeprecationInfo
	Version     Compact
}

type RuntimeAPIMethodMetadataV16 struct {
	Name        string
	Inputs      []RuntimeAPIMethodParam
	Output      Compact
	Docs        []string
	Deprecation ItemDeprecationInfo
}

// Wire tags of ItemDeprecationInfo.
const (
	itemNotDeprecated         uint8 = 0
	itemDeprecatedWithoutNote uint8 = 1
	itemDeprecated            uint8 = 2
)

// ItemDeprecationInfo marks a single item as current or deprecated,
// optionally with a note and a version.
type ItemDeprecationInfo struct {
	IsDeprecated bool
	HasNote      bool
	Note         string
	Since        OptionString
}

func (i *ItemDeprecationInfo) Decode(decoder scale.Decoder) error {
	tag, err := decoder.ReadOneByte()
	if err != nil {
		return err
	}
	switch tag {
	case itemNotDeprecated:
		return nil
	case itemDeprecatedWithoutNote:
		i.IsDeprecated = true
		return nil
	case itemDeprecated:
		i.IsDeprecated = true
		i.HasNote = true
		if err := decoder.Decode(&i.Note); err != nil {
			return err
		}
		return decoder.Decode(&i.Since)
	default:
		return fmt.Errorf("unknown deprecation tag %d", tag)
	}
}

func (i ItemDeprecationInfo) Encode(encoder scale.Encoder) error {
	switch {
	case !i.IsDeprecated:
		return encoder.PushByte(itemNotDeprecated)
	case !i.HasNote:
		return encoder.PushByte(itemDeprecatedWithoutNote)
	default:
		if err := encoder.PushByte(itemDeprecated); err != nil {
			return err
		}
		if err := encoder.Encode(i.Note); err != nil {
			return err
		}
		return encoder.Encode(i.Since)
	}
}

// EnumDeprecationInfo is a BTreeMap<u8, VariantDeprecationInfo>: only
// deprecated variants appear, keyed by discriminant.
type EnumDeprecationInfo struct {
	Variants []VariantDeprecationPair
}

type VariantDeprecationPair struct {
	Index uint8
	Info  VariantDeprecationInfo
}

// Wire tags of VariantDeprecationInfo. Tag 0 is reserved; presence in
// the map already implies deprecation.
const (
	variantDeprecated            uint8 = 1
	variantDeprecatedWithoutNote uint8 = 2
)

type VariantDeprecationInfo struct {
	HasNote bool
	Note    string
	Since   OptionString
}

func (v *VariantDeprecationInfo) Decode(decoder scale.Decoder) error {
	tag, err := decoder.ReadOneByte()
	if err != nil {
		return err
	}
	switch tag {
	case variantDeprecated:
		v.HasNote = true
		if err := decoder.Decode(&v.Note); err != nil {
			return err
		}
		return decoder.Decode(&v.Since)
	case variantDeprecatedWithoutNote:
		return nil
	default:
		return fmt.Errorf("unknown variant deprecation tag %d", tag)
	}
}

func (v VariantDeprecationInfo) Encode(encoder scale.Encoder) error {
	if !v.HasNote {
		return encoder.PushByte(variantDeprecatedWithoutNote)
	}
	if err := encoder.PushByte(variantDeprecated); err != nil {
		return err
	}
	if err := encoder.Encode(v.Note); err != nil {
		return err
	}
	return encoder.Encode(v.Since)
}

// Option wrappers for the v16 pallet sections.

type OptionStorageV16 struct {
	HasValue bool
	Value    StorageMetadataV16
}

func (o *OptionStorageV16) Decode(decoder scale.Decoder) error {
	return decoder.DecodeOption(&o.HasValue, &o.Value)
}

func (o OptionStorageV16) Encode(encoder scale.Encoder) error {
	return encoder.EncodeOption(o.HasValue, o.Value)
}

type OptionPalletCallV16 struct {
	HasValue bool
	Value    PalletCallMetadataV16
}

func (o *OptionPalletCallV16) Decode(decoder scale.Decoder) error {
	return decoder.DecodeOption(&o.HasValue, &o.Value)
}

func (o OptionPalletCallV16) Encode(encoder scale.Encoder) error {
	return encoder.EncodeOption(o.HasValue, o.Value)
}

type OptionPalletEventV16 struct {
	HasValue bool
	Value    PalletEventMetadataV16
}

func (o *OptionPalletEventV16) Decode(decoder scale.Decoder) error {
	return decoder.DecodeOption(&o.HasValue, &o.Value)
}

func (o OptionPalletEventV16) Encode(encoder scale.Encoder) error {
	return encoder.EncodeOption(o.HasValue, o.Value)
}

type OptionPalletErrorV16 struct {
	HasValue bool
	Value    PalletErrorMetadataV16
}

func (o *OptionPalletErrorV16) Decode(decoder scale.Decoder) error {
	return decoder.DecodeOption(&o.HasValue, &o.Value)
}

func (o OptionPalletErrorV16) Encode(encoder scale.Encoder) error {
	return encoder.EncodeOption(o.HasValue, o.Value)
}
