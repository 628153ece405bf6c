package core

// encryption.go adapts github.com/ethereum/go-ethereum/crypto/ecies (ECDH +
// key derivation over secp256k1) together with crypto/aes + crypto/cipher
// GCM for the symmetric payload to implement spec.md §4.J's
// encrypted-owned-data wire format:
//
//	[ ephemeralPublicKey (65 B, 0x04-prefixed) | iv (16 B) | authTag (16 B)
//	| ciphertext | random-fill ]

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/ecdsa"
	"crypto/rand"
	"io"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/crypto/ecies"
)

const (
	ecPubKeyLen   = 65
	gcmIVLen      = 16
	gcmAuthTagLen = 16
	aesKeyLen     = 32
)

// ECIESService performs multi-recipient ECIES envelope encryption over
// secp256k1, per spec.md §4.J.
type ECIESService struct{}

func NewECIESService() *ECIESService { return &ECIESService{} }

// Encrypt produces an unpadded envelope of exactly len(plain)+overhead
// bytes, for callers that don't need block-size framing (e.g.
// Member.EncryptData).
func (s *ECIESService) Encrypt(recipient *ecdsa.PublicKey, plain []byte) ([]byte, error) {
	return s.encryptFramed(recipient, plain, 0)
}

// EncryptFramed is Encrypt but pads with cryptographic random bytes so the
// total envelope is exactly blockSize bytes, matching the
// EncryptedOwnedDataBlock wire layout. It returns ErrDataExceedsBlockSize
// when len(plain)+overhead is larger than blockSize; nothing is truncated.
func (s *ECIESService) EncryptFramed(recipient *ecdsa.PublicKey, plain []byte, blockSize int) ([]byte, error) {
	return s.encryptFramed(recipient, plain, blockSize)
}

func (s *ECIESService) encryptFramed(recipient *ecdsa.PublicKey, plain []byte, blockSize int) ([]byte, error) {
	ephemeralPriv, err := crypto.GenerateKey()
	if err != nil {
		return nil, wrapErr(ErrKindCrypto, "encryption.ephemeral_keygen_failed", err, nil)
	}

	shared, err := deriveSharedSecret(ephemeralPriv, recipient)
	if err != nil {
		return nil, err
	}

	gcm, err := newGCM(shared)
	if err != nil {
		return nil, err
	}

	iv := make([]byte, gcmIVLen)
	if _, err := io.ReadFull(rand.Reader, iv); err != nil {
		return nil, wrapErr(ErrKindCrypto, "encryption.iv_generation_failed", err, nil)
	}

	sealed := gcm.Seal(nil, ivForGCM(iv, gcm.NonceSize()), plain, nil)
	ciphertext := sealed[:len(sealed)-gcmAuthTagLen]
	authTag := sealed[len(sealed)-gcmAuthTagLen:]

	ephemeralPub := crypto.FromECDSAPub(&ephemeralPriv.PublicKey)

	out := make([]byte, 0, ecPubKeyLen+gcmIVLen+gcmAuthTagLen+len(ciphertext))
	out = append(out, ephemeralPub...)
	out = append(out, iv...)
	out = append(out, authTag...)
	out = append(out, ciphertext...)

	if blockSize > 0 {
		if len(out) > blockSize {
			return nil, withParams(ErrDataExceedsBlockSize, nil)
		}
		if len(out) < blockSize {
			pad := make([]byte, blockSize-len(out))
			if _, err := io.ReadFull(rand.Reader, pad); err != nil {
				return nil, wrapErr(ErrKindCrypto, "encryption.padding_failed", err, nil)
			}
			out = append(out, pad...)
		}
	}
	return out, nil
}

// Decrypt extracts the envelope prefix, recomputes the ECDH shared secret
// with the recipient's private key, and AES-256-GCM decrypts with
// authentication-tag verification. The whole remainder after the fixed
// prefix is treated as ciphertext; use DecryptN for a padded envelope.
func (s *ECIESService) Decrypt(recipient *ecdsa.PrivateKey, envelope []byte) ([]byte, error) {
	return s.DecryptN(recipient, envelope, 0)
}

// DecryptN is Decrypt for a padded envelope: cipherLen, when > 0, bounds how
// much of the envelope after the fixed prefix is ciphertext (the remainder
// is random padding); when 0 it behaves exactly like Decrypt.
func (s *ECIESService) DecryptN(recipient *ecdsa.PrivateKey, envelope []byte, cipherLen int) ([]byte, error) {
	if len(envelope) < ecPubKeyLen+gcmIVLen+gcmAuthTagLen {
		return nil, withParams(ErrInvalidStructure, nil)
	}
	ephemeralPubBytes := envelope[:ecPubKeyLen]
	iv := envelope[ecPubKeyLen : ecPubKeyLen+gcmIVLen]
	authTag := envelope[ecPubKeyLen+gcmIVLen : ecPubKeyLen+gcmIVLen+gcmAuthTagLen]
	rest := envelope[ecPubKeyLen+gcmIVLen+gcmAuthTagLen:]
	if cipherLen > 0 {
		if cipherLen > len(rest) {
			return nil, withParams(ErrInvalidStructure, nil)
		}
		rest = rest[:cipherLen]
	}

	ephemeralPub, err := crypto.UnmarshalPubkey(ephemeralPubBytes)
	if err != nil {
		return nil, wrapErr(ErrKindCrypto, "encryption.invalid_ephemeral_key", err, nil)
	}

	shared, err := deriveSharedSecret(recipient, ephemeralPub)
	if err != nil {
		return nil, err
	}

	gcm, err := newGCM(shared)
	if err != nil {
		return nil, err
	}

	sealed := append(append([]byte{}, rest...), authTag...)
	plain, err := gcm.Open(nil, ivForGCM(iv, gcm.NonceSize()), sealed, nil)
	if err != nil {
		return nil, ErrDecryptionFailed
	}
	return plain, nil
}

// deriveSharedSecret runs ECDH between priv and pub via go-ethereum's ecies
// package and derives a 32-byte AES-256 key from the shared X coordinate.
func deriveSharedSecret(priv *ecdsa.PrivateKey, pub *ecdsa.PublicKey) ([]byte, error) {
	eciesPriv := ecies.ImportECDSA(priv)
	eciesPub := ecies.ImportECDSAPublic(pub)
	shared, err := eciesPriv.GenerateShared(eciesPub, aesKeyLen, 0)
	if err != nil {
		return nil, wrapErr(ErrKindCrypto, "encryption.ecdh_failed", err, nil)
	}
	return shared, nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, wrapErr(ErrKindCrypto, "encryption.cipher_init_failed", err, nil)
	}
	gcm, err := cipher.NewGCMWithNonceSize(block, gcmIVLen)
	if err != nil {
		return nil, wrapErr(ErrKindCrypto, "encryption.gcm_init_failed", err, nil)
	}
	return gcm, nil
}

// ivForGCM truncates/pads iv to the GCM's expected nonce size (defensive;
// with NewGCMWithNonceSize(gcmIVLen) they're always equal).
func ivForGCM(iv []byte, nonceSize int) []byte {
	if len(iv) == nonceSize {
		return iv
	}
	out := make([]byte, nonceSize)
	copy(out, iv)
	return out
}

// MultiRecipientHeader stores one ECIES-wrapped symmetric key per recipient,
// for the multi-recipient variant named in spec.md §4.J.
type MultiRecipientHeader struct {
	WrappedKeys map[MemberID][]byte
}

// WrapForRecipients encrypts a freshly generated symmetric key for each
// recipient's public key and returns both the header and the key to use for
// the bulk payload.
func (s *ECIESService) WrapForRecipients(recipients map[MemberID]*ecdsa.PublicKey) (*MultiRecipientHeader, []byte, error) {
	key := make([]byte, aesKeyLen)
	if _, err := io.ReadFull(rand.Reader, key); err != nil {
		return nil, nil, wrapErr(ErrKindCrypto, "encryption.key_generation_failed", err, nil)
	}
	header := &MultiRecipientHeader{WrappedKeys: make(map[MemberID][]byte, len(recipients))}
	for id, pub := range recipients {
		wrapped, err := s.Encrypt(pub, key)
		if err != nil {
			return nil, nil, err
		}
		header.WrappedKeys[id] = wrapped
	}
	return header, key, nil
}

// UnwrapForRecipient recovers the shared symmetric key for one recipient
// from a MultiRecipientHeader.
func (s *ECIESService) UnwrapForRecipient(header *MultiRecipientHeader, id MemberID, priv *ecdsa.PrivateKey) ([]byte, error) {
	wrapped, ok := header.WrappedKeys[id]
	if !ok {
		return nil, withParams(ErrMissingParameters, map[string]string{"GUID": id.String()})
	}
	return s.Decrypt(priv, wrapped)
}
