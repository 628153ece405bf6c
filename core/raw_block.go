package core

// RawDataBlock is an unrestricted, caller-owned block (spec.md §3's
// ownership table: "explicit from(data) / owned by caller").
type RawDataBlock struct {
	*baseBlock
}

// NewRawDataBlock wraps data as a RawDataBlock, padding with cryptographic
// random bytes up to blockSize if data is shorter.
func NewRawDataBlock(data []byte, blockSize BlockSize) (*RawDataBlock, error) {
	framed, err := padToBlockSize(data, blockSize)
	if err != nil {
		return nil, err
	}
	base, err := newBaseBlock(framed, blockSize, BlockTypeRawData, BlockDataTypeRawData, true, true, nil)
	if err != nil {
		return nil, err
	}
	return &RawDataBlock{baseBlock: base}, nil
}
