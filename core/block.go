package core

import (
	"strconv"
	"time"
)

// HeaderLayer is one layer's contribution to a block's header, in
// inheritance order. This replaces the source's deep block-class
// inheritance hierarchy (spec.md §9) with an explicit, immutable slice
// computed once at construction.
type HeaderLayer struct {
	Name string
	Data []byte
}

// Block is the shared contract every typed block satisfies (spec.md §4.C).
// Mutation after construction is forbidden: every accessor returns a copy
// of any backing slice, never the slice itself.
type Block interface {
	Data() []byte
	BlockSize() BlockSize
	BlockType() BlockType
	BlockDataType() BlockDataType
	IDChecksum() Checksum
	DateCreated() time.Time
	CanRead() bool
	CanPersist() bool
	LayerHeaderData() []byte
	FullHeaderData() []byte
	TotalOverhead() int
	Capacity() int
	ValidateSync() error
}

// baseBlock is the common embeddable implementation of Block. Concrete
// block types embed it and add their own fields/accessors.
type baseBlock struct {
	data          []byte
	blockSize     BlockSize
	blockType     BlockType
	blockDataType BlockDataType
	idChecksum    Checksum
	dateCreated   time.Time
	canRead       bool
	canPersist    bool
	headerLayers  []HeaderLayer
}

// newBaseBlock enforces the core invariants at construction time: data is
// exactly blockSize bytes, and idChecksum is the SHA3-512 of that data
// (spec.md §8 invariants 1–2). headerLayers are recorded but do not count
// toward blockSize — a block's wire layout is header-bytes-within-payload
// for CBL/encrypted variants, prepended by the caller that lays out the
// final framed buffer; see cbl.go and encryption.go.
func newBaseBlock(data []byte, blockSize BlockSize, bt BlockType, bdt BlockDataType, canRead, canPersist bool, headerLayers []HeaderLayer) (*baseBlock, error) {
	if !blockSize.Valid() {
		return nil, withParams(ErrInvalidStructure, map[string]string{"BLOCK_SIZE": blockSize.String()})
	}
	if len(data) != int(blockSize) {
		return nil, withParams(ErrDataExceedsBlockSize, map[string]string{
			"LENGTH":   strconv.Itoa(len(data)),
			"EXPECTED": strconv.Itoa(int(blockSize)),
		})
	}
	owned := make([]byte, len(data))
	copy(owned, data)
	return &baseBlock{
		data:          owned,
		blockSize:     blockSize,
		blockType:     bt,
		blockDataType: bdt,
		idChecksum:    ComputeChecksum(owned),
		dateCreated:   time.Now().UTC(),
		canRead:       canRead,
		canPersist:    canPersist,
		headerLayers:  headerLayers,
	}, nil
}

func (b *baseBlock) Data() []byte {
	if !b.canRead {
		return nil
	}
	out := make([]byte, len(b.data))
	copy(out, b.data)
	return out
}

func (b *baseBlock) BlockSize() BlockSize         { return b.blockSize }
func (b *baseBlock) BlockType() BlockType         { return b.blockType }
func (b *baseBlock) BlockDataType() BlockDataType { return b.blockDataType }
func (b *baseBlock) IDChecksum() Checksum         { return b.idChecksum }
func (b *baseBlock) DateCreated() time.Time       { return b.dateCreated }
func (b *baseBlock) CanRead() bool                { return b.canRead }
func (b *baseBlock) CanPersist() bool             { return b.canPersist }

// LayerHeaderData returns this block's own layer header (the last layer
// appended), matching spec.md's per-layer accessor.
func (b *baseBlock) LayerHeaderData() []byte {
	if len(b.headerLayers) == 0 {
		return nil
	}
	return append([]byte(nil), b.headerLayers[len(b.headerLayers)-1].Data...)
}

// FullHeaderData concatenates every layer's header in inheritance order:
// [L0-hdr][L1-hdr]...[Ln-hdr].
func (b *baseBlock) FullHeaderData() []byte {
	var out []byte
	for _, l := range b.headerLayers {
		out = append(out, l.Data...)
	}
	return out
}

func (b *baseBlock) TotalOverhead() int {
	total := 0
	for _, l := range b.headerLayers {
		total += len(l.Data)
	}
	return total
}

func (b *baseBlock) Capacity() int {
	cap := int(b.blockSize) - b.TotalOverhead()
	if cap < 0 {
		return 0
	}
	return cap
}

// ValidateSync recomputes the checksum from data and fails with
// ErrChecksumMismatch unless it matches idChecksum (spec.md §4.C).
func (b *baseBlock) ValidateSync() error {
	if len(b.data) != int(b.blockSize) {
		return ErrDataExceedsBlockSize
	}
	recomputed := ComputeChecksum(b.data)
	if !recomputed.Equal(b.idChecksum) {
		return ErrChecksumMismatch
	}
	return nil
}

// rawDataAccess returns the unrestricted underlying bytes, for internal use
// by XOR/signing code paths that must operate regardless of CanRead (the
// gate is an accessor-path policy, not a data-confidentiality boundary —
// spec.md §4.C).
func (b *baseBlock) rawDataAccess() []byte { return b.data }
