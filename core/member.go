package core

import (
	"crypto/ecdsa"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/google/uuid"
)

// MemberIDSize is the length of a Member's identity: a v4 GUID.
const MemberIDSize = 16

// MemberID is the 16-byte identity of a Member (spec.md §6).
type MemberID [MemberIDSize]byte

func (id MemberID) String() string {
	u, _ := uuid.FromBytes(id[:])
	return u.String()
}

// Member is the opaque collaborator this core consumes for signing,
// verification and public-key encryption (spec.md §6). The core never
// issues identities or manages key material beyond this interface.
type Member interface {
	ID() MemberID
	PublicKey() [65]byte
	Sign(msg []byte) ([65]byte, error)
	Verify(sig [65]byte, msg []byte) bool
	EncryptData(plain []byte) ([]byte, error)
	DecryptData(cipherText []byte) ([]byte, error)
}

// LocalMember is a reference Member implementation backed by an in-process
// secp256k1 keypair. It exists for tests and single-process deployments;
// production systems are expected to supply their own Member (spec.md §1
// excludes member-profile persistence and identity issuance from this core).
type LocalMember struct {
	id      MemberID
	priv    *ecdsa.PrivateKey
	ecies   *ECIESService
	pubKey  [65]byte
}

// NewLocalMember generates a fresh secp256k1 keypair and wraps it as a
// Member.
func NewLocalMember() (*LocalMember, error) {
	priv, err := crypto.GenerateKey()
	if err != nil {
		return nil, wrapErr(ErrKindCrypto, "member.keygen_failed", err, nil)
	}
	return NewLocalMemberFromKey(priv)
}

// NewLocalMemberFromKey wraps an existing secp256k1 private key as a Member.
func NewLocalMemberFromKey(priv *ecdsa.PrivateKey) (*LocalMember, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return nil, wrapErr(ErrKindInput, "member.id_generation_failed", err, nil)
	}
	var memberID MemberID
	copy(memberID[:], id[:])

	var pub [65]byte
	copy(pub[:], crypto.FromECDSAPub(&priv.PublicKey))

	return &LocalMember{
		id:     memberID,
		priv:   priv,
		ecies:  NewECIESService(),
		pubKey: pub,
	}, nil
}

func (m *LocalMember) ID() MemberID      { return m.id }
func (m *LocalMember) PublicKey() [65]byte { return m.pubKey }

// Sign produces a 65-byte {R||S||V} ECDSA-recoverable signature over the
// SHA3-512 digest of msg, per spec.md §6.
func (m *LocalMember) Sign(msg []byte) ([65]byte, error) {
	var out [65]byte
	digest := ComputeChecksum(msg)
	// crypto.Sign requires a 32-byte hash; re-hash the 64-byte SHA3-512
	// digest so every byte of it participates, then take the first half.
	hash := ComputeChecksum(digest[:])
	sig, err := crypto.Sign(hash[:32], m.priv)
	if err != nil {
		return out, wrapErr(ErrKindCrypto, "member.sign_failed", err, nil)
	}
	copy(out[:], sig)
	return out, nil
}

// Verify checks sig against msg using the member's own public key.
func (m *LocalMember) Verify(sig [65]byte, msg []byte) bool {
	return VerifyMemberSignature(m.pubKey, sig, msg)
}

// VerifyMemberSignature recovers the signer's public key from sig and
// compares it (and the recomputed digest) against pubKey and msg. It never
// panics on malformed input; it returns false.
func VerifyMemberSignature(pubKey [65]byte, sig [65]byte, msg []byte) bool {
	digest := ComputeChecksum(msg)
	hash := ComputeChecksum(digest[:])
	recovered, err := crypto.SigToPub(hash[:32], sig[:])
	if err != nil {
		return false
	}
	recoveredBytes := crypto.FromECDSAPub(recovered)
	return crypto.VerifySignature(pubKey[:], hash[:32], sig[:64]) && constantEqualBytes(recoveredBytes, pubKey[:])
}

func (m *LocalMember) EncryptData(plain []byte) ([]byte, error) {
	return m.ecies.Encrypt(&m.priv.PublicKey, plain)
}

func (m *LocalMember) DecryptData(cipherText []byte) ([]byte, error) {
	return m.ecies.Decrypt(m.priv, cipherText)
}
