package core

// pool.go — whitening pool (PoolScope), spec.md §4.D. Adapted from the
// corpus's network ConnPool (core/connection_pool.go): a mutex-guarded
// collection of reusable resources with Acquire/Release-shaped
// borrow/return semantics (each slice is used as a stack: the most
// recently added or returned block is borrowed first), retargeted from pooled net.Conn values to
// pooled RandomBlock/WhitenedBlock values.

import (
	"sync"

	"github.com/google/uuid"
)

// Pool is a named, process-local collection of RandomBlock and
// WhitenedBlock values supplied to tuples constructed within this pool's
// scope (spec.md §3, §4.D).
type Pool struct {
	id        string
	blockSize BlockSize

	mu        sync.Mutex
	randoms   []*RandomBlock
	whiteners []*WhitenedBlock
	borrowed  map[Checksum]struct{}
}

// NewPool creates a fresh empty pool tagged by a generated ID and blockSize.
func NewPool(blockSize BlockSize) *Pool {
	return NewPoolWithID(uuid.NewString(), blockSize)
}

// NewPoolWithID creates a fresh empty pool with an explicit ID.
func NewPoolWithID(id string, blockSize BlockSize) *Pool {
	return &Pool{
		id:        id,
		blockSize: blockSize,
		borrowed:  make(map[Checksum]struct{}),
	}
}

func (p *Pool) ID() string          { return p.id }
func (p *Pool) BlockSize() BlockSize { return p.blockSize }

// AddRandom inserts a RandomBlock into the pool. Panics on size mismatch —
// this is a programmer error, not a runtime condition (spec.md §4.D).
func (p *Pool) AddRandom(b *RandomBlock) {
	if b.BlockSize() != p.blockSize {
		panic("pool: random block size mismatch")
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.randoms = append(p.randoms, b)
}

// AddWhitened inserts a WhitenedBlock into the pool. Panics on size
// mismatch.
func (p *Pool) AddWhitened(b *WhitenedBlock) {
	if b.BlockSize() != p.blockSize {
		panic("pool: whitened block size mismatch")
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.whiteners = append(p.whiteners, b)
}

// BorrowRandom removes and returns any random block from the pool.
func (p *Pool) BorrowRandom() (*RandomBlock, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.randoms) == 0 {
		return nil, ErrFailedToGetRandom
	}
	n := len(p.randoms)
	b := p.randoms[n-1]
	p.randoms = p.randoms[:n-1]
	p.borrowed[b.IDChecksum()] = struct{}{}
	return b, nil
}

// BorrowWhitener removes and returns a whitened block, or ok=false if the
// pool has none available — the caller falls back to an extra random
// block (spec.md §4.F step 4).
func (p *Pool) BorrowWhitener() (*WhitenedBlock, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.whiteners) == 0 {
		return nil, false
	}
	n := len(p.whiteners)
	b := p.whiteners[n-1]
	p.whiteners = p.whiteners[:n-1]
	p.borrowed[b.IDChecksum()] = struct{}{}
	return b, true
}

// ReturnWhitener returns a previously-borrowed whitener to the pool.
func (p *Pool) ReturnWhitener(b *WhitenedBlock) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.borrowed, b.IDChecksum())
	p.whiteners = append(p.whiteners, b)
}

// ReturnRandom returns a previously-borrowed random block to the pool (used
// when a pipeline is cancelled mid-flight, spec.md §4.F "Cancellation").
func (p *Pool) ReturnRandom(b *RandomBlock) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.borrowed, b.IDChecksum())
	p.randoms = append(p.randoms, b)
}

// IsBorrowed reports whether a block (by checksum) is currently checked out
// from this pool — used by tests verifying invariant 6 (no whitener reused
// across live tuples).
func (p *Pool) IsBorrowed(c Checksum) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.borrowed[c]
	return ok
}

// AvailableCounts reports how many random and whitened blocks remain
// available to borrow.
func (p *Pool) AvailableCounts() (randoms, whiteners int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.randoms), len(p.whiteners)
}

// GetRandomChecksums returns up to n checksums sampled from the pool's
// available random blocks, without removing them — used by tests and
// backward-compatibility paths (spec.md §4.D).
func (p *Pool) GetRandomChecksums(n int) ChecksumSet {
	p.mu.Lock()
	defer p.mu.Unlock()
	set := make(ChecksumSet, n)
	for i := 0; i < n && i < len(p.randoms); i++ {
		set.Add(p.randoms[i].IDChecksum())
	}
	return set
}

// HasEnoughFor reports whether the pool holds at least m+n blocks of the
// matching blockSize available to borrow (spec.md §3's tuple-construction
// precondition).
func (p *Pool) HasEnoughFor(m, n int) bool {
	randoms, whiteners := p.AvailableCounts()
	return randoms+whiteners >= m+n
}
