package core

// super_cbl.go — SuperCBL, the hierarchical CBL variant of spec.md §3: its
// address list holds sub-CBL block checksums rather than data-tuple prime
// checksums, letting a file whose address count would exceed a single
// CBL's capacity span a tree of CBLs. Reuses the fixed-header packing,
// signing and CRC machinery from cbl.go; adds its own metadata block
// (depth, totalBlockCount, original-data hash) in the same position
// ExtendedCBL puts fileName/mimeType.

import (
	"encoding/binary"
	"time"
)

// SuperCBLHeader is SuperCBL's parsed fixed-field set.
type SuperCBLHeader struct {
	CreatorID         MemberID
	DateCreated       time.Time
	AddressCount      uint32
	OriginalDataLength uint64
	TupleSize         uint8
	Depth             uint16
	TotalBlockCount   uint32
	OriginalDataHash  Checksum
	Signature         [sigLen]byte
}

// SuperCBLBuildParams collects SuperCBL's build-time inputs.
type SuperCBLBuildParams struct {
	Creator            Member
	DateCreated        time.Time
	OriginalDataLength uint64
	TupleSize          uint8
	Depth              uint16
	TotalBlockCount    uint32
	OriginalDataHash   Checksum
	SubCBLAddresses    []Checksum
	BlockSize          BlockSize
}

// SuperCBL is a built or parsed hierarchical CBL, framed as a Block.
type SuperCBL struct {
	*baseBlock
	header    SuperCBLHeader
	addresses []Checksum
}

func (s *SuperCBL) Header() SuperCBLHeader { return s.header }
func (s *SuperCBL) Addresses() []Checksum  { return append([]Checksum(nil), s.addresses...) }

func packSuperMetadata(depth uint16, totalBlockCount uint32, originalDataHash Checksum) []byte {
	buf := make([]byte, 2+4+ChecksumSize)
	binary.BigEndian.PutUint16(buf[0:2], depth)
	binary.BigEndian.PutUint32(buf[2:6], totalBlockCount)
	copy(buf[6:], originalDataHash[:])
	return buf
}

// BuildSuperCBL packs, signs and frames a SuperCBL as a Block.
func BuildSuperCBL(p SuperCBLBuildParams) (*SuperCBL, error) {
	headerFixed := packCBLHeaderWithoutSignature(BlockTypeSuperCBL, p.Creator.ID(), p.DateCreated, uint32(len(p.SubCBLAddresses)), p.OriginalDataLength, p.TupleSize, cblFlagSuper, "", "")
	headerNoSig := append(headerFixed, packSuperMetadata(p.Depth, p.TotalBlockCount, p.OriginalDataHash)...)

	addressList := packAddressList(p.SubCBLAddresses)
	toSign := buildToSign(headerNoSig, p.BlockSize, addressList)

	sig, err := p.Creator.Sign(toSign)
	if err != nil {
		return nil, wrapErr(ErrKindCrypto, "super_cbl.sign_failed", err, nil)
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
	base, err := newBaseBlock(framed, p.BlockSize, BlockTypeSuperCBL, BlockDataTypeRawData, true, true, nil)
	if err != nil {
		return nil, err
	}
	return &SuperCBL{
		baseBlock: base,
		header: SuperCBLHeader{
			CreatorID:          p.Creator.ID(),
			DateCreated:        p.DateCreated,
			AddressCount:       uint32(len(p.SubCBLAddresses)),
			OriginalDataLength: p.OriginalDataLength,
			TupleSize:          p.TupleSize,
			Depth:              p.Depth,
			TotalBlockCount:    p.TotalBlockCount,
			OriginalDataHash:   p.OriginalDataHash,
			Signature:          sig,
		},
		addresses: append([]Checksum(nil), p.SubCBLAddresses...),
	}, nil
}

// ParseSuperCBL parses a SuperCBL's wire bytes into its header and sub-CBL
// address list.
func ParseSuperCBL(data []byte) (*SuperCBLHeader, []Checksum, error) {
	if len(data) < cblFixedHeaderLen {
		return nil, nil, withParams(ErrInvalidStructure, nil)
	}
	if data[0] != cblMagic || BlockType(data[1]) != BlockTypeSuperCBL {
		return nil, nil, withParams(ErrInvalidStructure, map[string]string{"REASON": "not_a_super_cbl"})
	}

	var h SuperCBLHeader
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
	if flags&cblFlagSuper == 0 {
		return nil, nil, withParams(ErrInvalidStructure, map[string]string{"REASON": "super_flag_unset"})
	}

	if len(data) < off+2+4+ChecksumSize {
		return nil, nil, withParams(ErrInvalidStructure, nil)
	}
	h.Depth = binary.BigEndian.Uint16(data[off : off+2])
	off += 2
	h.TotalBlockCount = binary.BigEndian.Uint32(data[off : off+4])
	off += 4
	copy(h.OriginalDataHash[:], data[off:off+ChecksumSize])
	off += ChecksumSize

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

// ValidateSuperCBLSignature mirrors ValidateSignature for the SuperCBL wire
// format (SPEC_FULL.md §3.2: creator-ID mismatch is fatal, never lenient).
func ValidateSuperCBLSignature(data []byte, creator Member, blockSize BlockSize) (bool, error) {
	h, addresses, err := ParseSuperCBL(data)
	if err != nil {
		return false, err
	}
	if !constantEqualBytes(h.CreatorID[:], creator.ID().Bytes()) {
		return false, ErrCreatorIDMismatch
	}
	headerFixed := packCBLHeaderWithoutSignature(BlockTypeSuperCBL, h.CreatorID, h.DateCreated, h.AddressCount, h.OriginalDataLength, h.TupleSize, cblFlagSuper, "", "")
	headerNoSig := append(headerFixed, packSuperMetadata(h.Depth, h.TotalBlockCount, h.OriginalDataHash)...)
	toSign := buildToSign(headerNoSig, blockSize, packAddressList(addresses))
	return creator.Verify(h.Signature, toSign), nil
}
