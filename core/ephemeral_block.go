package core

import "encoding/binary"

// EphemeralOwnedDataBlock holds a source block owned by a creator, plus the
// original (pre-padding) length needed to trim padding back out on
// recovery (spec.md §3). It is never persisted directly — it exists only
// as an intermediate value inside the tuple engine.
type EphemeralOwnedDataBlock struct {
	*baseBlock
	creator                MemberID
	lengthBeforeEncryption uint64
}

// NewEphemeralOwnedDataBlock builds the source block for one tuple-engine
// step: data is padded to blockSize if shorter, and the true length is
// recorded in a header layer so it survives the pad/unpad round trip
// (spec.md §4.F step 3).
func NewEphemeralOwnedDataBlock(creator MemberID, data []byte, blockSize BlockSize) (*EphemeralOwnedDataBlock, error) {
	trueLen := uint64(len(data))
	framed, err := zeroPadToBlockSize(data, blockSize)
	if err != nil {
		return nil, err
	}
	layer := HeaderLayer{Name: "ephemeral-owned", Data: encodeEphemeralHeader(creator, trueLen)}
	base, err := newBaseBlock(framed, blockSize, BlockTypeEphemeralOwnedData, BlockDataTypeEphemeralStructuredData, true, false, []HeaderLayer{layer})
	if err != nil {
		return nil, err
	}
	return &EphemeralOwnedDataBlock{baseBlock: base, creator: creator, lengthBeforeEncryption: trueLen}, nil
}

func (e *EphemeralOwnedDataBlock) Creator() MemberID             { return e.creator }
func (e *EphemeralOwnedDataBlock) LengthBeforeEncryption() uint64 { return e.lengthBeforeEncryption }

// TrimmedData returns the data with padding removed, restoring the
// original length.
func (e *EphemeralOwnedDataBlock) TrimmedData() []byte {
	full := e.Data()
	if e.lengthBeforeEncryption > uint64(len(full)) {
		return full
	}
	return full[:e.lengthBeforeEncryption]
}

func encodeEphemeralHeader(creator MemberID, length uint64) []byte {
	buf := make([]byte, MemberIDSize+8)
	copy(buf, creator[:])
	binary.BigEndian.PutUint64(buf[MemberIDSize:], length)
	return buf
}
