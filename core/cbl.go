package core

// cbl.go — Constituent Block List codec, spec.md §3 (wire layout) and §4.G
// (build/parse/validate). The CBL is itself framed as a Block: its header
// and address list are packed into a blockSize buffer and padded with
// cryptographic random bytes, the same way any other typed block is built
// in this package (raw_block.go, encrypted_block.go).

import (
	"encoding/binary"
	"time"
)

const (
	cblMagic       byte = 0xBC
	cblVersion     byte = 1
	cblFlagExtend  byte = 1 << 0
	cblFlagSuper   byte = 1 << 1
	sigLen              = 65
)

// cblFixedHeaderLen is the length, in bytes, of the header up to and
// including flags, before any extended metadata or the signature.
// magic(1) type(1) version(1) crc8(1) creatorId(16) dateCreated(8)
// addressCount(4) originalDataLength(8) tupleSize(1) flags(1)
const cblFixedHeaderLen = 1 + 1 + 1 + 1 + MemberIDSize + 8 + 4 + 8 + 1 + 1

// CBLHeader is the parsed/unparsed form of a CBL's fixed fields, independent
// of its address list and block framing.
type CBLHeader struct {
	BlockType          BlockType
	CreatorID          MemberID
	DateCreated        time.Time
	AddressCount       uint32
	OriginalDataLength uint64
	TupleSize          uint8
	Extended           bool
	Super              bool
	FileName           string
	MimeType           string
	Signature          [sigLen]byte
}

// CBLBuildParams collects the build-time inputs of spec.md §4.G step 1.
type CBLBuildParams struct {
	Creator            Member
	DateCreated        time.Time
	OriginalDataLength uint64
	TupleSize          uint8
	Addresses          []Checksum
	BlockSize          BlockSize
	FileName           string // extended CBL only; "" for a plain CBL
	MimeType           string // extended CBL only
}

// BuildCBL packs, signs and frames a CBL (or, when FileName/MimeType are
// set, an ExtendedCBL) as a Block.
func BuildCBL(p CBLBuildParams) (*ConstituentBlockList, error) {
	extended := p.FileName != "" || p.MimeType != ""
	flags := byte(0)
	if extended {
		flags |= cblFlagExtend
	}
	blockType := BlockTypeConstituentBlockList
	if extended {
		blockType = BlockTypeExtendedCBL
	}

	headerNoSig := packCBLHeaderWithoutSignature(blockType, p.Creator.ID(), p.DateCreated, uint32(len(p.Addresses)), p.OriginalDataLength, p.TupleSize, flags, p.FileName, p.MimeType)

	addressList := packAddressList(p.Addresses)
	toSign := buildToSign(headerNoSig, p.BlockSize, addressList)

	sig, err := p.Creator.Sign(toSign)
	if err != nil {
		return nil, wrapErr(ErrKindCrypto, "cbl.sign_failed", err, nil)
	}

	crc := CRC8(spliceCRC8Placeholder(headerNoSig))

	buf := make([]byte, 0, len(headerNoSig)+sigLen+len(addressList))
	buf = append(buf, headerNoSig...)
	buf[3] = crc
	buf = append(buf, sig[:]...)
	buf = append(buf, addressList...)

	framed, err := padToBlockSize(buf, p.BlockSize)
	if err != nil {
		return nil, err
	}
	base, err := newBaseBlock(framed, p.BlockSize, blockType, BlockDataTypeRawData, true, true, nil)
	if err != nil {
		return nil, err
	}
	return &ConstituentBlockList{
		baseBlock: base,
		header: CBLHeader{
			BlockType:          blockType,
			CreatorID:          p.Creator.ID(),
			DateCreated:        p.DateCreated,
			AddressCount:       uint32(len(p.Addresses)),
			OriginalDataLength: p.OriginalDataLength,
			TupleSize:          p.TupleSize,
			Extended:           extended,
			FileName:           p.FileName,
			MimeType:           p.MimeType,
			Signature:          sig,
		},
		addresses: append([]Checksum(nil), p.Addresses...),
	}, nil
}

// packCBLHeaderWithoutSignature packs every fixed field plus, when present,
// extended metadata — everything up to (not including) the signature. The
// crc8 byte (offset 3) is left zero; callers compute CRC8 over this buffer
// and splice the result in afterward.
func packCBLHeaderWithoutSignature(blockType BlockType, creator MemberID, dateCreated time.Time, addressCount uint32, originalDataLength uint64, tupleSize uint8, flags byte, fileName, mimeType string) []byte {
	buf := make([]byte, cblFixedHeaderLen)
	buf[0] = cblMagic
	buf[1] = byte(blockType)
	buf[2] = cblVersion
	buf[3] = 0 // crc8 placeholder
	copy(buf[4:4+MemberIDSize], creator[:])
	off := 4 + MemberIDSize
	binary.BigEndian.PutUint64(buf[off:off+8], uint64(dateCreated.UnixMilli()))
	off += 8
	binary.BigEndian.PutUint32(buf[off:off+4], addressCount)
	off += 4
	binary.BigEndian.PutUint64(buf[off:off+8], originalDataLength)
	off += 8
	buf[off] = tupleSize
	off++
	buf[off] = flags

	if flags&cblFlagExtend != 0 {
		buf = append(buf, packExtendedMetadata(fileName, mimeType)...)
	}
	return buf
}

func packExtendedMetadata(fileName, mimeType string) []byte {
	out := make([]byte, 0, 2+len(fileName)+2+len(mimeType))
	var lenBuf [2]byte
	binary.BigEndian.PutUint16(lenBuf[:], uint16(len(fileName)))
	out = append(out, lenBuf[:]...)
	out = append(out, fileName...)
	binary.BigEndian.PutUint16(lenBuf[:], uint16(len(mimeType)))
	out = append(out, lenBuf[:]...)
	out = append(out, mimeType...)
	return out
}

func packAddressList(addresses []Checksum) []byte {
	out := make([]byte, 0, len(addresses)*ChecksumSize)
	for _, a := range addresses {
		out = append(out, a[:]...)
	}
	return out
}

// buildToSign assembles headerWithoutSignature ∥ u32BE(blockSize) ∥
// addressList, the exact byte sequence signed and verified (spec.md §4.G
// step 2, §4.G "Signature validation").
func buildToSign(headerNoSig []byte, blockSize BlockSize, addressList []byte) []byte {
	out := make([]byte, 0, len(headerNoSig)+4+len(addressList))
	out = append(out, headerNoSig...)
	var bsBuf [4]byte
	binary.BigEndian.PutUint32(bsBuf[:], uint32(blockSize))
	out = append(out, bsBuf[:]...)
	out = append(out, addressList...)
	return out
}

// spliceCRC8Placeholder returns a copy of header with offset 3 (the crc8
// slot) forced to zero, so CRC8 is computed independent of any stale value.
func spliceCRC8Placeholder(header []byte) []byte {
	out := append([]byte(nil), header...)
	if len(out) > 3 {
		out[3] = 0
	}
	return out
}

// ConstituentBlockList is a built or parsed CBL, framed as a Block.
type ConstituentBlockList struct {
	*baseBlock
	header    CBLHeader
	addresses []Checksum
}

func (c *ConstituentBlockList) Header() CBLHeader     { return c.header }
func (c *ConstituentBlockList) Addresses() []Checksum { return append([]Checksum(nil), c.addresses...) }

// ParseCBL parses a CBL's wire bytes (typically from a ConstituentBlockList
// or ExtendedCBL Block's Data()) into its header and address list.
func ParseCBL(data []byte) (*CBLHeader, []Checksum, error) {
	if len(data) < cblFixedHeaderLen {
		return nil, nil, withParams(ErrInvalidStructure, nil)
	}
	if data[0] != cblMagic {
		return nil, nil, withParams(ErrInvalidStructure, map[string]string{"REASON": "bad_magic"})
	}
	blockType := BlockType(data[1])
	// version := data[2] // reserved for future wire revisions

	var h CBLHeader
	h.BlockType = blockType

	copy(h.CreatorID[:], data[4:4+MemberIDSize])
	off := 4 + MemberIDSize
	millis := int64(binary.BigEndian.Uint64(data[off : off+8]))
	h.DateCreated = time.UnixMilli(millis).UTC()
	off += 8
	h.AddressCount = binary.BigEndian.Uint32(data[off : off+4])
	off += 4
	h.OriginalDataLength = binary.BigEndian.Uint64(data[off : off+8])
	off += 8
	h.TupleSize = data[off]
	off++
	flags := data[off]
	off++
	h.Extended = flags&cblFlagExtend != 0
	h.Super = flags&cblFlagSuper != 0

	if h.Extended {
		if len(data) < off+4 {
			return nil, nil, withParams(ErrInvalidStructure, nil)
		}
		fnLen := int(binary.BigEndian.Uint16(data[off : off+2]))
		off += 2
		if len(data) < off+fnLen+2 {
			return nil, nil, withParams(ErrInvalidStructure, nil)
		}
		h.FileName = string(data[off : off+fnLen])
		off += fnLen
		mtLen := int(binary.BigEndian.Uint16(data[off : off+2]))
		off += 2
		if len(data) < off+mtLen {
			return nil, nil, withParams(ErrInvalidStructure, nil)
		}
		h.MimeType = string(data[off : off+mtLen])
		off += mtLen
	}

	// headerNoSig spans [0, off) — the fixed fields plus any extended
	// metadata, offset 3 (crc8) zeroed for recomputation.
	wantCRC := data[3]
	withoutCRC := append([]byte(nil), data[:off]...)
	withoutCRC[3] = 0
	if CRC8(withoutCRC) != wantCRC {
		return nil, nil, withParams(ErrInvalidStructure, map[string]string{"REASON": "crc_mismatch"})
	}

	if len(data) < off+sigLen {
		return nil, nil, withParams(ErrInvalidStructure, nil)
	}
	copy(h.Signature[:], data[off:off+sigLen])
	off += sigLen

	addrBytes := int(h.AddressCount) * ChecksumSize
	if len(data) < off+addrBytes {
		return nil, nil, withParams(ErrInvalidStructure, nil)
	}
	addresses := make([]Checksum, h.AddressCount)
	for i := 0; i < int(h.AddressCount); i++ {
		copy(addresses[i][:], data[off:off+ChecksumSize])
		off += ChecksumSize
	}

	return &h, addresses, nil
}

// ValidateSignature recomputes toSign from the block's own bytes and
// verifies it against creator's public key. It returns false (no error) on
// a cryptographic verification failure, raises ErrInvalidStructure on
// malformed input, and raises ErrCreatorIDMismatch — fatal, no lenient mode
// — if the parsed creatorId does not exactly match creator.ID() (SPEC_FULL.md
// §3.2).
func ValidateSignature(data []byte, creator Member, blockSize BlockSize) (bool, error) {
	h, addresses, err := ParseCBL(data)
	if err != nil {
		return false, err
	}
	if !constantEqualBytes(h.CreatorID[:], creator.ID().Bytes()) {
		return false, ErrCreatorIDMismatch
	}
	headerNoSig := packCBLHeaderWithoutSignature(h.BlockType, h.CreatorID, h.DateCreated, h.AddressCount, h.OriginalDataLength, h.TupleSize, cblFlagsFromHeader(h), h.FileName, h.MimeType)
	toSign := buildToSign(headerNoSig, blockSize, packAddressList(addresses))
	return creator.Verify(h.Signature, toSign), nil
}

func cblFlagsFromHeader(h *CBLHeader) byte {
	var f byte
	if h.Extended {
		f |= cblFlagExtend
	}
	if h.Super {
		f |= cblFlagSuper
	}
	return f
}

// Bytes returns a MemberID's bytes, used by ValidateSignature's identity
// comparison.
func (id MemberID) Bytes() []byte { return append([]byte(nil), id[:]...) }
