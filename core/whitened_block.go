package core

// WhitenedBlock is a RawDataBlock whitened by XOR with a length-padded
// random fill (spec.md §3). canEncrypt/canDecrypt/canSign are always false
// for this type — a whitened block carries no cryptographic capability of
// its own, only the ability to be XORed back out by the tuple engine.
type WhitenedBlock struct {
	*baseBlock
	poolID           string
	lengthKnown      bool
	lengthBeforeXor  uint64
}

// NewWhitenedBlock computes other ⊕ randomFill, both of which must already
// be blockSize bytes.
func NewWhitenedBlock(other, randomFill []byte, blockSize BlockSize, poolID string) (*WhitenedBlock, error) {
	if len(other) != int(blockSize) || len(randomFill) != int(blockSize) {
		return nil, withParams(ErrBlockSizeMismatch, nil)
	}
	whitened, err := XOR(other, randomFill)
	if err != nil {
		return nil, err
	}
	base, err := newBaseBlock(whitened, blockSize, BlockTypeOwnerFreeWhitened, BlockDataTypeRawData, true, true, nil)
	if err != nil {
		return nil, err
	}
	return &WhitenedBlock{baseBlock: base, poolID: poolID}, nil
}

func (w *WhitenedBlock) PoolID() string { return w.poolID }

// newWhitenedBlockFromCombined wraps already-folded bytes (the result of
// Tuple.Xor across more than two operands) as a WhitenedBlock, without
// re-deriving them from a two-operand XOR (spec.md §4.F step 6).
func newWhitenedBlockFromCombined(data []byte, blockSize BlockSize, poolID string) (*WhitenedBlock, error) {
	base, err := newBaseBlock(data, blockSize, BlockTypeOwnerFreeWhitened, BlockDataTypeRawData, true, true, nil)
	if err != nil {
		return nil, err
	}
	return &WhitenedBlock{baseBlock: base, poolID: poolID}, nil
}

// newWhitenedBlockFromCombinedWithLength is newWhitenedBlockFromCombined
// plus a carried lengthBeforeEncryption, so the tuple service's inverse
// operation (XorPrimeWhitenedToOwned, spec.md §4.H) can restore the exact
// pre-padding length without consulting anything outside the prime block
// itself.
func newWhitenedBlockFromCombinedWithLength(data []byte, blockSize BlockSize, poolID string, length uint64) (*WhitenedBlock, error) {
	layer := HeaderLayer{Name: "prime-length", Data: encodeUint64(length)}
	base, err := newBaseBlock(data, blockSize, BlockTypeOwnerFreeWhitened, BlockDataTypeRawData, true, true, []HeaderLayer{layer})
	if err != nil {
		return nil, err
	}
	return &WhitenedBlock{baseBlock: base, poolID: poolID, lengthKnown: true, lengthBeforeXor: length}, nil
}

// LengthBeforeXor returns the original (pre-padding) length of the source
// block this prime was folded from, if known — see
// newWhitenedBlockFromCombinedWithLength.
func (w *WhitenedBlock) LengthBeforeXor() (uint64, bool) {
	return w.lengthBeforeXor, w.lengthKnown
}

// CanEncrypt, CanDecrypt and CanSign are always false for a whitened block.
func (w *WhitenedBlock) CanEncrypt() bool { return false }
func (w *WhitenedBlock) CanDecrypt() bool { return false }
func (w *WhitenedBlock) CanSign() bool    { return false }
