package core

// store.go — BlockStore (spec.md §6) plus two reference implementations.
// DiskBlockStore's eviction cache is adapted from the corpus's on-disk LRU
// cache (core/storage.go's diskLRU): a mutex-guarded index plus an
// insertion-ordered slice used as an eviction queue, retargeted from
// IPFS-CID-keyed gateway caching to checksum-addressed block caching.

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/sirupsen/logrus"
)

// BlockStore is the storage collaborator consumed by the tuple service and
// CBL codec (spec.md §6). PutTupleCompanions/GetTupleCompanions resolve
// Open Question 1 (SPEC_FULL.md §3.1): a store that wants recoverable
// pool-scoped tuples persists an explicit prime→companions mapping rather
// than relying on an extended CBL wire format.
type BlockStore interface {
	Get(id Checksum) (Block, error)
	Put(b Block) error
	GetRandomBlocks(n int) ([]*RandomBlock, error)
	PutTupleCompanions(prime Checksum, companions []Checksum) error
	GetTupleCompanions(prime Checksum) ([]Checksum, bool)
}

// ErrBlockStoreNotFound is returned by Get for an unknown checksum.
var ErrBlockStoreNotFound = newErr(ErrKindResource, "store.not_found", nil)

// MemoryBlockStore is an in-process BlockStore backed by maps, suitable for
// tests and single-process pipelines.
type MemoryBlockStore struct {
	mu         sync.RWMutex
	blocks     map[Checksum]Block
	companions map[Checksum][]Checksum
	randoms    []*RandomBlock
}

// NewMemoryBlockStore returns an empty MemoryBlockStore.
func NewMemoryBlockStore() *MemoryBlockStore {
	return &MemoryBlockStore{
		blocks:     make(map[Checksum]Block),
		companions: make(map[Checksum][]Checksum),
	}
}

func (s *MemoryBlockStore) Get(id Checksum) (Block, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.blocks[id]
	if !ok {
		return nil, ErrBlockStoreNotFound
	}
	return b, nil
}

func (s *MemoryBlockStore) Put(b Block) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blocks[b.IDChecksum()] = b
	if rb, ok := b.(*RandomBlock); ok {
		s.randoms = append(s.randoms, rb)
	}
	return nil
}

func (s *MemoryBlockStore) GetRandomBlocks(n int) ([]*RandomBlock, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if n > len(s.randoms) {
		return nil, withParams(ErrFailedToGetRandom, nil)
	}
	out := make([]*RandomBlock, n)
	copy(out, s.randoms[:n])
	return out, nil
}

func (s *MemoryBlockStore) PutTupleCompanions(prime Checksum, companions []Checksum) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := make([]Checksum, len(companions))
	copy(cp, companions)
	s.companions[prime] = cp
	return nil
}

func (s *MemoryBlockStore) GetTupleCompanions(prime Checksum) ([]Checksum, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cp, ok := s.companions[prime]
	if !ok {
		return nil, false
	}
	out := make([]Checksum, len(cp))
	copy(out, cp)
	return out, true
}

// diskEntry tracks one cached block's file location for LRU eviction.
type diskEntry struct {
	path string
	size int64
}

// DiskBlockStore is an on-disk BlockStore that evicts in insertion order
// (oldest Put first; Get does not refresh an entry): each block is
// written to dir/<checksum-hex>, with the companion mapping kept in
// memory only (it is not written to dir and is lost when the store is
// dropped).
type DiskBlockStore struct {
	dir    string
	max    int
	logger *logrus.Logger

	mu         sync.Mutex
	index      map[Checksum]*diskEntry
	order      []Checksum
	companions map[Checksum][]Checksum
}

const defaultDiskBlockStoreEntries = 10_000

// NewDiskBlockStore creates (or opens) an on-disk block cache rooted at dir,
// evicting the oldest entry once maxEntries is exceeded. maxEntries <= 0
// uses defaultDiskBlockStoreEntries.
func NewDiskBlockStore(dir string, maxEntries int, logger *logrus.Logger) (*DiskBlockStore, error) {
	if maxEntries <= 0 {
		maxEntries = defaultDiskBlockStoreEntries
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, wrapErr(ErrKindResource, "store.cache_dir_unavailable", err, nil)
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &DiskBlockStore{
		dir:        dir,
		max:        maxEntries,
		logger:     logger,
		index:      make(map[Checksum]*diskEntry),
		companions: make(map[Checksum][]Checksum),
	}, nil
}

func (s *DiskBlockStore) path(id Checksum) string {
	return filepath.Join(s.dir, id.String())
}

func (s *DiskBlockStore) Get(id Checksum) (Block, error) {
	s.mu.Lock()
	_, ok := s.index[id]
	s.mu.Unlock()
	if !ok {
		return nil, ErrBlockStoreNotFound
	}
	data, err := os.ReadFile(s.path(id))
	if err != nil {
		return nil, wrapErr(ErrKindResource, "store.read_failed", err, nil)
	}
	size, ok := SmallestFitting(len(data))
	if !ok {
		return nil, withParams(ErrInvalidStructure, nil)
	}
	return NewRawDataBlock(data, size)
}

func (s *DiskBlockStore) Put(b Block) error {
	id := b.IDChecksum()
	data := b.Data()

	s.mu.Lock()
	if _, ok := s.index[id]; ok {
		s.mu.Unlock()
		return nil
	}
	if len(s.index) >= s.max && len(s.order) > 0 {
		oldest := s.order[0]
		s.order = s.order[1:]
		if ent, ok := s.index[oldest]; ok {
			delete(s.index, oldest)
			_ = os.Remove(ent.path)
		}
	}
	s.mu.Unlock()

	p := s.path(id)
	if err := os.WriteFile(p, data, 0o644); err != nil {
		return wrapErr(ErrKindResource, "store.write_failed", err, nil)
	}

	s.mu.Lock()
	s.index[id] = &diskEntry{path: p, size: int64(len(data))}
	s.order = append(s.order, id)
	s.mu.Unlock()

	s.logger.WithField("checksum", id.String()).Debug("store: block cached")
	return nil
}

func (s *DiskBlockStore) GetRandomBlocks(n int) ([]*RandomBlock, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*RandomBlock, 0, n)
	for _, id := range s.order {
		if len(out) == n {
			break
		}
		ent, ok := s.index[id]
		if !ok {
			continue
		}
		data, err := os.ReadFile(ent.path)
		if err != nil {
			continue
		}
		size, ok := SmallestFitting(len(data))
		if !ok {
			continue
		}
		rb, err := blockToRandomBlock(data, size)
		if err != nil {
			continue
		}
		out = append(out, rb)
	}
	if len(out) < n {
		return nil, withParams(ErrFailedToGetRandom, nil)
	}
	return out, nil
}

func (s *DiskBlockStore) PutTupleCompanions(prime Checksum, companions []Checksum) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := make([]Checksum, len(companions))
	copy(cp, companions)
	s.companions[prime] = cp
	return nil
}

func (s *DiskBlockStore) GetTupleCompanions(prime Checksum) ([]Checksum, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp, ok := s.companions[prime]
	if !ok {
		return nil, false
	}
	out := make([]Checksum, len(cp))
	copy(out, cp)
	return out, true
}

// blockToRandomBlock re-wraps raw on-disk bytes as a RandomBlock for
// GetRandomBlocks callers; the disk store does not distinguish block types
// by content, only by the caller's original Put.
func blockToRandomBlock(data []byte, size BlockSize) (*RandomBlock, error) {
	base, err := newBaseBlock(data, size, BlockTypeRandom, BlockDataTypeRawData, true, true, nil)
	if err != nil {
		return nil, err
	}
	return &RandomBlock{baseBlock: base}, nil
}
