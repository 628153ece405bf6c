package core

// Tuple is the fixed-size k-block reconstruction group of spec.md §3/§4.E:
// one source-or-prime slot plus m random and n whitener companions. The
// same Tuple shape serves both directions of the pipeline — XOR-ing
// [source, randoms…, whiteners…] yields the prime-whitened block; XOR-ing
// [prime, randoms…, whiteners…] (the identical companions) recovers the
// source block, since XOR is its own inverse (spec.md §8 invariant 4).
type Tuple struct {
	blocks []Block
	poolID string // "" means legacy/unscoped (spec.md §4.D "Legacy mode")
}

// poolScoped is implemented by block types that carry a pool affiliation
// (RandomBlock, WhitenedBlock, including a WhitenedBlock prime). Blocks
// that don't implement it (the EphemeralOwnedDataBlock source slot, or a
// RawDataBlock read back from a store) are exempt from the pool-id-match
// check.
type poolScoped interface {
	PoolID() string
}

// NewTuple validates and constructs a Tuple from exactly tupleSize blocks.
// poolID == "" requests legacy mode: mixed-pool blocks are accepted and
// only size uniformity is enforced (spec.md §4.D).
func NewTuple(blocks []Block, tupleSize int, poolID string) (*Tuple, error) {
	if len(blocks) != tupleSize {
		return nil, withParams(ErrInvalidTupleCount, nil)
	}
	if len(blocks) == 0 {
		return nil, withParams(ErrInvalidTupleCount, nil)
	}
	size := blocks[0].BlockSize()
	for _, b := range blocks {
		if b.BlockSize() != size {
			return nil, withParams(ErrBlockSizeMismatch, nil)
		}
	}
	if poolID != "" {
		for _, b := range blocks {
			if ps, ok := b.(poolScoped); ok {
				if ps.PoolID() != poolID {
					return nil, withParams(ErrPoolIDMismatch, map[string]string{"POOL_ID": poolID})
				}
			}
		}
	}
	return &Tuple{blocks: blocks, poolID: poolID}, nil
}

// Blocks returns the tuple's constituent blocks in fixed order.
func (t *Tuple) Blocks() []Block { return append([]Block(nil), t.blocks...) }

// PoolID returns the tuple's pool scope, or "" for legacy tuples.
func (t *Tuple) PoolID() string { return t.poolID }

// Size returns the number of blocks in the tuple.
func (t *Tuple) Size() int { return len(t.blocks) }

// Xor folds all blocks left-to-right via XOR in fixed order, returning
// blockSize raw bytes (spec.md §4.E "xor() → prime").
func (t *Tuple) Xor() ([]byte, error) {
	arrays := make([][]byte, len(t.blocks))
	for i, b := range t.blocks {
		arrays[i] = b.Data()
	}
	return XORMultiple(arrays...)
}

// PrimeChecksum returns the idChecksum of the tuple's first block — the one
// recorded in the CBL's address list (spec.md §4.E).
func (t *Tuple) PrimeChecksum() Checksum {
	return t.blocks[0].IDChecksum()
}
