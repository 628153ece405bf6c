package core

import (
	"crypto/ecdsa"
	"encoding/binary"
)

// EncryptedOwnedDataBlock frames an ECIES envelope (spec.md §4.J) as a
// block. The plaintext length is recorded both in a header layer and in the
// plainLen field; Decrypt reads plainLen to know where ciphertext ends and
// random padding begins.
type EncryptedOwnedDataBlock struct {
	*baseBlock
	plainLen uint64
}

// NewEncryptedOwnedDataBlock encrypts plain for recipient and frames the
// envelope to blockSize.
func NewEncryptedOwnedDataBlock(svc *ECIESService, recipient *ecdsa.PublicKey, plain []byte, blockSize BlockSize) (*EncryptedOwnedDataBlock, error) {
	envelope, err := svc.EncryptFramed(recipient, plain, int(blockSize))
	if err != nil {
		return nil, err
	}
	layer := HeaderLayer{Name: "encrypted-owned-length", Data: encodeUint64(uint64(len(plain)))}
	base, err := newBaseBlock(envelope, blockSize, BlockTypeEncryptedOwnedData, BlockDataTypeEncryptedData, true, true, []HeaderLayer{layer})
	if err != nil {
		return nil, err
	}
	return &EncryptedOwnedDataBlock{baseBlock: base, plainLen: uint64(len(plain))}, nil
}

// Decrypt recovers the plaintext using recipient's private key.
func (e *EncryptedOwnedDataBlock) Decrypt(svc *ECIESService, recipient *ecdsa.PrivateKey) ([]byte, error) {
	return svc.DecryptN(recipient, e.Data(), int(e.plainLen))
}

func (e *EncryptedOwnedDataBlock) PlaintextLength() uint64 { return e.plainLen }

func encodeUint64(v uint64) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, v)
	return buf
}
