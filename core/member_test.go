package core

import "testing"

func TestLocalMemberSignVerify(t *testing.T) {
	m, err := NewLocalMember()
	if err != nil {
		t.Fatalf("NewLocalMember failed: %v", err)
	}
	msg := []byte("a CBL header to sign")
	sig, err := m.Sign(msg)
	if err != nil {
		t.Fatalf("Sign failed: %v", err)
	}
	if !m.Verify(sig, msg) {
		t.Fatalf("expected signature to verify")
	}
}

func TestLocalMemberVerifyRejectsTamperedMessage(t *testing.T) {
	m, err := NewLocalMember()
	if err != nil {
		t.Fatalf("NewLocalMember failed: %v", err)
	}
	msg := []byte("original message")
	sig, err := m.Sign(msg)
	if err != nil {
		t.Fatalf("Sign failed: %v", err)
	}
	if m.Verify(sig, []byte("tampered message")) {
		t.Fatalf("expected verification to fail for tampered message")
	}
}

func TestLocalMemberVerifyRejectsWrongKey(t *testing.T) {
	a, err := NewLocalMember()
	if err != nil {
		t.Fatalf("NewLocalMember failed: %v", err)
	}
	b, err := NewLocalMember()
	if err != nil {
		t.Fatalf("NewLocalMember failed: %v", err)
	}
	msg := []byte("message")
	sig, err := a.Sign(msg)
	if err != nil {
		t.Fatalf("Sign failed: %v", err)
	}
	if b.Verify(sig, msg) {
		t.Fatalf("expected verification against wrong member's key to fail")
	}
}

func TestLocalMemberEncryptDecryptRoundTrip(t *testing.T) {
	m, err := NewLocalMember()
	if err != nil {
		t.Fatalf("NewLocalMember failed: %v", err)
	}
	plain := []byte("secret payload")
	ct, err := m.EncryptData(plain)
	if err != nil {
		t.Fatalf("EncryptData failed: %v", err)
	}
	pt, err := m.DecryptData(ct)
	if err != nil {
		t.Fatalf("DecryptData failed: %v", err)
	}
	if string(pt) != string(plain) {
		t.Fatalf("decrypt mismatch: got %q want %q", pt, plain)
	}
}
