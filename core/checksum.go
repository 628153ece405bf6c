package core

import (
	"crypto/subtle"
	"encoding/hex"
	"strconv"

	"golang.org/x/crypto/sha3"
)

// ChecksumSize is the length in bytes of a block's content address: a
// SHA3-512 digest.
const ChecksumSize = 64

// Checksum is a SHA3-512 digest used as the sole content-addressing key for
// a Block (spec.md §4.A).
type Checksum [ChecksumSize]byte

// ComputeChecksum returns the SHA3-512 digest of data.
func ComputeChecksum(data []byte) Checksum {
	return Checksum(sha3.Sum512(data))
}

// Equal performs a constant-time, branchless comparison over the full 64
// bytes regardless of where the first differing byte falls.
func (c Checksum) Equal(other Checksum) bool {
	return subtle.ConstantTimeCompare(c[:], other[:]) == 1
}

// IsZero reports whether c is the all-zero checksum (never a valid digest
// of any real input with overwhelming probability, used as a sentinel).
func (c Checksum) IsZero() bool {
	var zero Checksum
	return c == zero
}

func (c Checksum) String() string {
	return hex.EncodeToString(c[:])
}

// Bytes returns a copy of the checksum's underlying bytes.
func (c Checksum) Bytes() []byte {
	out := make([]byte, ChecksumSize)
	copy(out, c[:])
	return out
}

// ChecksumFromBytes builds a Checksum from a 64-byte slice.
func ChecksumFromBytes(b []byte) (Checksum, error) {
	var c Checksum
	if len(b) != ChecksumSize {
		return c, withParams(ErrInvalidStructure, map[string]string{"LENGTH": strconv.Itoa(len(b)), "EXPECTED": strconv.Itoa(ChecksumSize)})
	}
	copy(c[:], b)
	return c, nil
}

// ChecksumSet is a de-duplicated collection of checksums, used by pool
// sampling and CBL address-list bookkeeping.
type ChecksumSet map[Checksum]struct{}

func NewChecksumSet(items ...Checksum) ChecksumSet {
	s := make(ChecksumSet, len(items))
	for _, it := range items {
		s[it] = struct{}{}
	}
	return s
}

func (s ChecksumSet) Add(c Checksum)          { s[c] = struct{}{} }
func (s ChecksumSet) Contains(c Checksum) bool { _, ok := s[c]; return ok }

// constantEqualBytes is a constant-time equality check for variable-length
// byte slices, used where identity material (public keys, creator IDs)
// must never be compared via a short-circuiting byte loop.
func constantEqualBytes(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare(a, b) == 1
}
