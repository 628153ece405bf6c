package core

import (
	"crypto/ecdsa"
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
)

func TestECIESEncryptDecryptRoundTrip(t *testing.T) {
	priv, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey failed: %v", err)
	}
	svc := NewECIESService()
	plain := []byte("round trip payload")

	ct, err := svc.Encrypt(&priv.PublicKey, plain)
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}
	pt, err := svc.Decrypt(priv, ct)
	if err != nil {
		t.Fatalf("Decrypt failed: %v", err)
	}
	if string(pt) != string(plain) {
		t.Fatalf("decrypt mismatch: got %q want %q", pt, plain)
	}
}

func TestECIESDecryptFailsWithWrongKey(t *testing.T) {
	priv, _ := crypto.GenerateKey()
	other, _ := crypto.GenerateKey()
	svc := NewECIESService()

	ct, err := svc.Encrypt(&priv.PublicKey, []byte("secret"))
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}
	if _, err := svc.Decrypt(other, ct); err == nil {
		t.Fatalf("expected decryption with wrong key to fail")
	}
}

func TestECIESEncryptFramedPadsToBlockSize(t *testing.T) {
	priv, _ := crypto.GenerateKey()
	svc := NewECIESService()

	const blockSize = 4096
	ct, err := svc.EncryptFramed(&priv.PublicKey, []byte("short"), blockSize)
	if err != nil {
		t.Fatalf("EncryptFramed failed: %v", err)
	}
	if len(ct) != blockSize {
		t.Fatalf("expected envelope length %d, got %d", blockSize, len(ct))
	}
	pt, err := svc.DecryptN(priv, ct, len("short"))
	if err != nil {
		t.Fatalf("DecryptN failed: %v", err)
	}
	if string(pt) != "short" {
		t.Fatalf("decrypt mismatch: got %q", pt)
	}
}

func TestMultiRecipientHeaderRoundTrip(t *testing.T) {
	svc := NewECIESService()
	privA, _ := crypto.GenerateKey()
	privB, _ := crypto.GenerateKey()
	idA := MemberID{1}
	idB := MemberID{2}

	header, key, err := svc.WrapForRecipients(map[MemberID]*ecdsa.PublicKey{
		idA: &privA.PublicKey,
		idB: &privB.PublicKey,
	})
	if err != nil {
		t.Fatalf("WrapForRecipients failed: %v", err)
	}

	gotA, err := svc.UnwrapForRecipient(header, idA, privA)
	if err != nil {
		t.Fatalf("UnwrapForRecipient(A) failed: %v", err)
	}
	if string(gotA) != string(key) {
		t.Fatalf("recipient A derived a different key")
	}

	gotB, err := svc.UnwrapForRecipient(header, idB, privB)
	if err != nil {
		t.Fatalf("UnwrapForRecipient(B) failed: %v", err)
	}
	if string(gotB) != string(key) {
		t.Fatalf("recipient B derived a different key")
	}

	if _, err := svc.UnwrapForRecipient(header, MemberID{9}, privA); err == nil {
		t.Fatalf("expected error for unknown recipient")
	}
}
