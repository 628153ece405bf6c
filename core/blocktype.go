package core

// BlockType is the closed enumeration of block kinds named in spec.md §3.
// Dispatch on BlockType (or, preferably, on the concrete Block
// implementation via a type switch) replaces the source's dynamic
// block-creator registry per spec.md §9.
type BlockType uint8

const (
	BlockTypeUnknown BlockType = iota
	BlockTypeOwnerFreeWhitened
	BlockTypeRandom
	BlockTypeRawData
	BlockTypeFECData
	BlockTypeEphemeralOwnedData
	BlockTypeConstituentBlockList
	BlockTypeExtendedCBL
	BlockTypeSuperCBL
	BlockTypeEncryptedOwnedData
	BlockTypeEncryptedCBL
	BlockTypeMultiEncrypted
	BlockTypeHandle
	BlockTypeParity
)

func (t BlockType) String() string {
	switch t {
	case BlockTypeOwnerFreeWhitened:
		return "OwnerFreeWhitened"
	case BlockTypeRandom:
		return "Random"
	case BlockTypeRawData:
		return "RawData"
	case BlockTypeFECData:
		return "FECData"
	case BlockTypeEphemeralOwnedData:
		return "EphemeralOwnedData"
	case BlockTypeConstituentBlockList:
		return "ConstituentBlockList"
	case BlockTypeExtendedCBL:
		return "ExtendedCBL"
	case BlockTypeSuperCBL:
		return "SuperCBL"
	case BlockTypeEncryptedOwnedData:
		return "EncryptedOwnedData"
	case BlockTypeEncryptedCBL:
		return "EncryptedCBL"
	case BlockTypeMultiEncrypted:
		return "MultiEncrypted"
	case BlockTypeHandle:
		return "Handle"
	case BlockTypeParity:
		return "Parity"
	default:
		return "Unknown"
	}
}

// BlockDataType classifies the semantic content of a block's payload,
// independent of its BlockType framing.
type BlockDataType uint8

const (
	BlockDataTypeRawData BlockDataType = iota
	BlockDataTypeEphemeralStructuredData
	BlockDataTypeEncryptedData
)

func (t BlockDataType) String() string {
	switch t {
	case BlockDataTypeEphemeralStructuredData:
		return "EphemeralStructuredData"
	case BlockDataTypeEncryptedData:
		return "EncryptedData"
	default:
		return "RawData"
	}
}
