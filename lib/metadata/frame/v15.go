// Copyright 2025 Polkabyte Labs
// SPDX-License-Identifier: LGPL-3.0-only

package frame

// RuntimeMetadataV15 extends v14 with an explicit extrinsic type split,
// runtime API traits, the outer enum ids and a custom value map.
type RuntimeMetadataV15 struct {
	Types      []PortableType
	Pallets    []PalletMetadataV15
	Extrinsic  ExtrinsicMetadataV15
	Type       Compact
	APIs       []RuntimeAPIMetadata
	OuterEnums OuterEnums
	Custom     CustomMetadata
}

type PalletMetadataV15 struct {
	Name      string
	Storage   OptionStorage
	Calls     OptionPalletCall
	Event     OptionPalletEvent
	Constants []PalletConstantMetadata
	Error     OptionPalletError
	Index     uint8
	Docs      []string
}

// ExtrinsicMetadataV15 names the extrinsic's constituent type ids
// directly rather than leaving them buried in the extrinsic type's
// generic parameters.
type ExtrinsicMetadataV15 struct {
	Version          uint8
	AddressType      Compact
	CallType         Compact
	SignatureType    Compact
	ExtraType        Compact
	SignedExtensions []SignedExtensionMetadata
}

type RuntimeAPIMetadata struct {
	Name    string
	Methods []RuntimeAPIMethodMetadata
	Docs    []string
}

type RuntimeAPIMethodMetadata struct {
	Name   string
	Inputs []RuntimeAPIMethodParam
	Output Compact
	Docs   []string
}

type RuntimeAPIMethodParam struct {
	Name string
	Type Compact
}

type OuterEnums struct {
	CallType  Compact
	EventType Compact
	ErrorType Compact
}

// CustomMetadata is a BTreeMap<String, CustomValue> on the wire: a
// compact-prefixed list of pairs, sorted by key.
type CustomMetadata struct {
	Map []CustomValuePair
}

type CustomValuePair struct {
	Key   string
	Value CustomValueMetadata
}

type CustomValueMetadata struct {
	Type  Compact
	Value []byte
}
