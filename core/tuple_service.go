package core

// tuple_service.go — the higher-level compose/decompose API of spec.md
// §4.H: source→prime-whitened, prime→owned, and the two stream→CBL
// pipelines that tie the generator (F), pool (D) and CBL codec (G)
// together.

import (
	"context"
	"crypto/ecdsa"
	"io"
	"time"
)

// Tuple sizing defaults (spec.md §3: "tupleSize = m+n+1, default 5 = 1
// prime + 2 random + 2 whitener").
const (
	DefaultRandomsPerTuple   = 2
	DefaultWhitenersPerTuple = 2
	DefaultTupleSize         = DefaultRandomsPerTuple + DefaultWhitenersPerTuple + 1

	minRandomBlocks = 16
	maxRandomBlocks = 4096
)

// GetRandomBlockCount is the pool-sizing heuristic of spec.md §4.H: not
// security-critical, only a reasonable default for how many random blocks
// a pool should be stocked with ahead of a stream of the given length.
func GetRandomBlockCount(dataLength uint64) int {
	n := (dataLength + 1023) / 1024 // ceil(dataLength/1024)
	if n < minRandomBlocks {
		return minRandomBlocks
	}
	if n > maxRandomBlocks {
		return maxRandomBlocks
	}
	return int(n)
}

// MakeTupleFromSourceXor xors source with its companions and wraps the
// result as a Tuple whose first block is the prime-whitened block,
// preserving source's lengthBeforeEncryption on the prime (spec.md §4.H).
func MakeTupleFromSourceXor(source *EphemeralOwnedDataBlock, randoms []*RandomBlock, whiteners []Block, poolID string) (*Tuple, error) {
	tupleSize := 1 + len(randoms) + len(whiteners)
	members := make([]Block, 0, tupleSize)
	members = append(members, source)
	for _, r := range randoms {
		members = append(members, r)
	}
	members = append(members, whiteners...)

	combine, err := NewTuple(members, tupleSize, poolID)
	if err != nil {
		return nil, err
	}
	primeBytes, err := combine.Xor()
	if err != nil {
		return nil, err
	}
	prime, err := newWhitenedBlockFromCombinedWithLength(primeBytes, source.BlockSize(), poolID, source.LengthBeforeEncryption())
	if err != nil {
		return nil, err
	}

	emitted := make([]Block, 0, tupleSize)
	emitted = append(emitted, prime)
	for _, r := range randoms {
		emitted = append(emitted, r)
	}
	emitted = append(emitted, whiteners...)
	return NewTuple(emitted, tupleSize, poolID)
}

// XorPrimeWhitenedToOwned is the inverse of MakeTupleFromSourceXor: it
// recovers the source block and restores lengthBeforeEncryption. Fails with
// ErrMissingParameters if prime does not carry length metadata (spec.md
// §4.H).
func XorPrimeWhitenedToOwned(creator MemberID, prime *WhitenedBlock, randoms []*RandomBlock, whiteners []Block) (*EphemeralOwnedDataBlock, error) {
	length, ok := prime.LengthBeforeXor()
	if !ok {
		return nil, ErrMissingParameters
	}

	tupleSize := 1 + len(randoms) + len(whiteners)
	members := make([]Block, 0, tupleSize)
	members = append(members, prime)
	for _, r := range randoms {
		members = append(members, r)
	}
	members = append(members, whiteners...)

	tup, err := NewTuple(members, tupleSize, prime.PoolID())
	if err != nil {
		return nil, err
	}
	recovered, err := tup.Xor()
	if err != nil {
		return nil, err
	}
	if length > uint64(len(recovered)) {
		return nil, withParams(ErrInvalidStructure, nil)
	}
	return NewEphemeralOwnedDataBlock(creator, recovered[:length], prime.BlockSize())
}

// TuplePersistFunc is the caller-supplied persistence sink: every tuple the
// stream pipelines produce, including the CBL's own whitened tuple, is
// handed to this function in strict stream order.
type TuplePersistFunc func(tuple *Tuple, index int) error

// whitenAndPersistBlockAsTuple borrows one more set of companions, whitens
// data as its own tuple, and persists it — used to whiten the CBL block
// itself once the stream pipeline has finished (spec.md §4.H: "the CBL
// block itself is also whitened and persisted as its own tuple").
func whitenAndPersistBlockAsTuple(creator MemberID, data []byte, blockSize BlockSize, pool *Pool, persist TuplePersistFunc, index int) (Checksum, error) {
	source, err := NewEphemeralOwnedDataBlock(creator, data, blockSize)
	if err != nil {
		return Checksum{}, err
	}
	randoms, companions, err := borrowCompanions(pool, DefaultRandomsPerTuple, DefaultWhitenersPerTuple)
	if err != nil {
		return Checksum{}, err
	}
	tup, err := MakeTupleFromSourceXor(source, randoms, companions, pool.ID())
	if err != nil {
		return Checksum{}, err
	}
	if err := persist(tup, index); err != nil {
		return Checksum{}, err
	}
	return tup.PrimeChecksum(), nil
}

// DataStreamToPlaintextTuplesAndCBL runs the stream pipeline to completion,
// persisting every tuple (source data, then the CBL's own whitened tuple)
// via persist, and returns the signed CBL plus the checksum under which its
// whitened form was persisted (spec.md §4.H).
func DataStreamToPlaintextTuplesAndCBL(ctx context.Context, creator Member, blockSize BlockSize, source io.Reader, pool *Pool, persist TuplePersistFunc) (*ConstituentBlockList, Checksum, error) {
	stream := GenerateTuples(ctx, source, creator.ID(), blockSize, DefaultRandomsPerTuple, DefaultWhitenersPerTuple, pool)

	var primes []Checksum
	for {
		item, err, ok := stream.Next()
		if err != nil {
			return nil, Checksum{}, err
		}
		if !ok {
			break
		}
		if err := persist(item.Tuple, item.Index); err != nil {
			return nil, Checksum{}, err
		}
		primes = append(primes, item.Tuple.PrimeChecksum())
	}

	cbl, err := BuildCBL(CBLBuildParams{
		Creator:            creator,
		DateCreated:        time.Now().UTC(),
		OriginalDataLength: stream.OriginalDataLength(),
		TupleSize:          DefaultTupleSize,
		Addresses:          primes,
		BlockSize:          blockSize,
	})
	if err != nil {
		return nil, Checksum{}, err
	}

	cblPrime, err := whitenAndPersistBlockAsTuple(creator.ID(), cbl.Data(), blockSize, pool, persist, len(primes))
	if err != nil {
		return nil, Checksum{}, err
	}
	return cbl, cblPrime, nil
}

// DataStreamToEncryptedTuplesAndCBL is DataStreamToPlaintextTuplesAndCBL,
// but the CBL block is encrypted for recipient via the ECIES adapter (§4.J)
// before it is whitened and persisted (spec.md §4.H).
func DataStreamToEncryptedTuplesAndCBL(ctx context.Context, creator Member, recipient *ecdsa.PublicKey, blockSize BlockSize, source io.Reader, pool *Pool, ecies *ECIESService, persist TuplePersistFunc) (*ConstituentBlockList, Checksum, error) {
	stream := GenerateTuples(ctx, source, creator.ID(), blockSize, DefaultRandomsPerTuple, DefaultWhitenersPerTuple, pool)

	var primes []Checksum
	for {
		item, err, ok := stream.Next()
		if err != nil {
			return nil, Checksum{}, err
		}
		if !ok {
			break
		}
		if err := persist(item.Tuple, item.Index); err != nil {
			return nil, Checksum{}, err
		}
		primes = append(primes, item.Tuple.PrimeChecksum())
	}

	cbl, err := BuildCBL(CBLBuildParams{
		Creator:            creator,
		DateCreated:        time.Now().UTC(),
		OriginalDataLength: stream.OriginalDataLength(),
		TupleSize:          DefaultTupleSize,
		Addresses:          primes,
		BlockSize:          blockSize,
	})
	if err != nil {
		return nil, Checksum{}, err
	}

	encrypted, err := ecies.EncryptFramed(recipient, cbl.Data(), int(blockSize))
	if err != nil {
		return nil, Checksum{}, err
	}
	cblPrime, err := whitenAndPersistBlockAsTuple(creator.ID(), encrypted, blockSize, pool, persist, len(primes))
	if err != nil {
		return nil, Checksum{}, err
	}
	return cbl, cblPrime, nil
}

// BlockHandleTuple is one grouping returned by GetHandleTuples: a prime
// checksum plus its companions, if the store's mapping knows them
// (spec.md §4.G "Handle-tuples lookup").
type BlockHandleTuple struct {
	Index      int
	Prime      Checksum
	Companions []Checksum
}

// GetHandleTuples resolves each address in a CBL's address list to its
// companions via the block store's prime→companions mapping (Open Question
// 1, SPEC_FULL.md §3.1). A store with no recorded mapping for a prime
// yields a BlockHandleTuple with an empty Companions — the legacy-store
// case, where the reader must already hold those checksums externally.
func GetHandleTuples(addresses []Checksum, store BlockStore) []BlockHandleTuple {
	out := make([]BlockHandleTuple, 0, len(addresses))
	for i, prime := range addresses {
		h := BlockHandleTuple{Index: i, Prime: prime}
		if companions, ok := store.GetTupleCompanions(prime); ok {
			h.Companions = companions
		}
		out = append(out, h)
	}
	return out
}

// ResolveHandleTuple fetches the prime block and every known companion from
// store, in [prime, companions...] order. Returns ErrBlockStoreNotFound if
// any member is missing.
func ResolveHandleTuple(h BlockHandleTuple, store BlockStore) ([]Block, error) {
	blocks := make([]Block, 0, 1+len(h.Companions))
	prime, err := store.Get(h.Prime)
	if err != nil {
		return nil, err
	}
	blocks = append(blocks, prime)
	for _, c := range h.Companions {
		b, err := store.Get(c)
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, b)
	}
	return blocks, nil
}

// RecoverStreamFromHandleTuples is the store-agnostic inverse of the stream
// pipeline (spec.md §2 read flow): for each handle tuple it fetches the
// prime and its companions and XORs them back to a full blockSize chunk via
// Tuple.Xor — the same generic fold used going forward, working directly
// off each block's Data() rather than any concrete block type or
// in-memory-only header metadata — then concatenates the chunks in stream
// order and trims the result to originalDataLength once, since only the
// final chunk may be short. Unlike XorPrimeWhitenedToOwned (the single-tuple
// primitive used when prime and companions are still live, in-process
// values carrying lengthBeforeXor), this works against any BlockStore,
// including one that only ever reconstitutes blocks from raw persisted
// bytes (e.g. DiskBlockStore, which hands back generic RawDataBlock
// values).
func RecoverStreamFromHandleTuples(handles []BlockHandleTuple, store BlockStore, originalDataLength uint64) ([]byte, error) {
	out := make([]byte, 0, originalDataLength)
	for _, h := range handles {
		blocks, err := ResolveHandleTuple(h, store)
		if err != nil {
			return nil, err
		}
		tup, err := NewTuple(blocks, len(blocks), "")
		if err != nil {
			return nil, err
		}
		chunk, err := tup.Xor()
		if err != nil {
			return nil, err
		}
		out = append(out, chunk...)
	}
	if uint64(len(out)) < originalDataLength {
		return nil, withParams(ErrInvalidStructure, nil)
	}
	return out[:originalDataLength], nil
}
