package core

import (
	"bytes"
	"testing"
)

func TestRawDataBlockInvariants(t *testing.T) {
	data := bytes.Repeat([]byte{0x42}, 100)
	b, err := NewRawDataBlock(data, BlockSizeSmall)
	if err != nil {
		t.Fatalf("NewRawDataBlock failed: %v", err)
	}
	if len(b.Data()) != int(BlockSizeSmall) {
		t.Fatalf("expected data length %d, got %d", BlockSizeSmall, len(b.Data()))
	}
	want := ComputeChecksum(b.Data())
	if !b.IDChecksum().Equal(want) {
		t.Fatalf("idChecksum does not match SHA3-512(data)")
	}
	if err := b.ValidateSync(); err != nil {
		t.Fatalf("ValidateSync failed: %v", err)
	}
}

func TestRawDataBlockRejectsOversizedData(t *testing.T) {
	data := make([]byte, int(BlockSizeSmall)+1)
	if _, err := NewRawDataBlock(data, BlockSizeSmall); err == nil {
		t.Fatalf("expected error for oversized data")
	}
}

func TestRandomBlockIsBlockSized(t *testing.T) {
	b, err := NewRandomBlock(BlockSizeTiny)
	if err != nil {
		t.Fatalf("NewRandomBlock failed: %v", err)
	}
	if len(b.Data()) != int(BlockSizeTiny) {
		t.Fatalf("expected %d bytes, got %d", BlockSizeTiny, len(b.Data()))
	}
	if b.BlockType() != BlockTypeRandom {
		t.Fatalf("expected BlockTypeRandom, got %v", b.BlockType())
	}
}

func TestWhitenedBlockXorsCorrectly(t *testing.T) {
	source, _ := NewRawDataBlock(bytes.Repeat([]byte{0x11}, 10), BlockSizeTiny)
	random, _ := NewRandomBlock(BlockSizeTiny)

	w, err := NewWhitenedBlock(source.Data(), random.Data(), BlockSizeTiny, "")
	if err != nil {
		t.Fatalf("NewWhitenedBlock failed: %v", err)
	}
	if w.CanEncrypt() || w.CanDecrypt() || w.CanSign() {
		t.Fatalf("expected whitened block to disallow encrypt/decrypt/sign")
	}

	recovered, err := XOR(w.Data(), random.Data())
	if err != nil {
		t.Fatalf("XOR failed: %v", err)
	}
	if !bytes.Equal(recovered, source.Data()) {
		t.Fatalf("whitening did not invert: got %x want %x", recovered, source.Data())
	}
}

func TestEphemeralOwnedDataBlockTrimsPadding(t *testing.T) {
	creator := MemberID{1, 2, 3}
	payload := []byte("short payload")
	e, err := NewEphemeralOwnedDataBlock(creator, payload, BlockSizeSmall)
	if err != nil {
		t.Fatalf("NewEphemeralOwnedDataBlock failed: %v", err)
	}
	if e.CanPersist() {
		t.Fatalf("ephemeral blocks must not be persistable")
	}
	if !bytes.Equal(e.TrimmedData(), payload) {
		t.Fatalf("trimmed data mismatch: got %q want %q", e.TrimmedData(), payload)
	}
	if e.Creator() != creator {
		t.Fatalf("creator mismatch")
	}
}

func TestBlockValidateSyncDetectsTamper(t *testing.T) {
	b, err := NewRawDataBlock(bytes.Repeat([]byte{0x01}, 10), BlockSizeTiny)
	if err != nil {
		t.Fatalf("NewRawDataBlock failed: %v", err)
	}
	b.data[0] ^= 0xFF
	if err := b.ValidateSync(); err == nil {
		t.Fatalf("expected ValidateSync to detect tamper")
	}
}

func TestHeaderLayeringCapacity(t *testing.T) {
	creator := MemberID{9}
	e, err := NewEphemeralOwnedDataBlock(creator, []byte("x"), BlockSizeTiny)
	if err != nil {
		t.Fatalf("NewEphemeralOwnedDataBlock failed: %v", err)
	}
	if e.TotalOverhead() == 0 {
		t.Fatalf("expected non-zero header overhead")
	}
	if e.Capacity() != int(BlockSizeTiny)-e.TotalOverhead() {
		t.Fatalf("capacity inconsistent with overhead")
	}
}
