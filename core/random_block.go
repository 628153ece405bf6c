package core

import (
	"crypto/rand"
	"io"
)

// RandomBlock is blockSize bytes of uniformly random data, supplied by a
// Pool (spec.md §3). It carries no owner and is never persisted as
// user-meaningful content.
type RandomBlock struct {
	*baseBlock
	poolID string
}

// NewRandomBlock generates a fresh RandomBlock of the given size, unscoped
// to any pool (legacy mode; see spec.md §4.D).
func NewRandomBlock(blockSize BlockSize) (*RandomBlock, error) {
	return NewPoolRandomBlock(blockSize, "")
}

// NewPoolRandomBlock generates a fresh RandomBlock tagged with poolID.
func NewPoolRandomBlock(blockSize BlockSize, poolID string) (*RandomBlock, error) {
	data := make([]byte, int(blockSize))
	if _, err := io.ReadFull(rand.Reader, data); err != nil {
		return nil, wrapErr(ErrKindCrypto, "random_block.generation_failed", err, nil)
	}
	base, err := newBaseBlock(data, blockSize, BlockTypeRandom, BlockDataTypeRawData, true, true, nil)
	if err != nil {
		return nil, err
	}
	return &RandomBlock{baseBlock: base, poolID: poolID}, nil
}

// PoolID returns the pool this block was generated for, or "" for
// legacy/unscoped blocks.
func (r *RandomBlock) PoolID() string { return r.poolID }
