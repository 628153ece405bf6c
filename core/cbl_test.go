package core

import (
	"testing"
	"time"
)

func TestBuildAndParseCBLRoundTrip(t *testing.T) {
	creator, err := NewLocalMember()
	if err != nil {
		t.Fatalf("NewLocalMember failed: %v", err)
	}
	addrs := []Checksum{ComputeChecksum([]byte("a")), ComputeChecksum([]byte("b")), ComputeChecksum([]byte("c"))}

	cbl, err := BuildCBL(CBLBuildParams{
		Creator:            creator,
		DateCreated:        time.Now().UTC(),
		OriginalDataLength: 12345,
		TupleSize:          3,
		Addresses:          addrs,
		BlockSize:          BlockSizeSmall,
	})
	if err != nil {
		t.Fatalf("BuildCBL failed: %v", err)
	}

	h, parsedAddrs, err := ParseCBL(cbl.Data())
	if err != nil {
		t.Fatalf("ParseCBL failed: %v", err)
	}
	if h.OriginalDataLength != 12345 {
		t.Fatalf("expected originalDataLength 12345, got %d", h.OriginalDataLength)
	}
	if h.TupleSize != 3 {
		t.Fatalf("expected tupleSize 3, got %d", h.TupleSize)
	}
	if len(parsedAddrs) != len(addrs) {
		t.Fatalf("expected %d addresses, got %d", len(addrs), len(parsedAddrs))
	}
	for i := range addrs {
		if !parsedAddrs[i].Equal(addrs[i]) {
			t.Fatalf("address %d mismatch", i)
		}
	}

	ok, err := ValidateSignature(cbl.Data(), creator, BlockSizeSmall)
	if err != nil {
		t.Fatalf("ValidateSignature errored: %v", err)
	}
	if !ok {
		t.Fatalf("expected signature to validate")
	}
}

func TestValidateSignatureRejectsTamperedAddress(t *testing.T) {
	creator, _ := NewLocalMember()
	addrs := []Checksum{ComputeChecksum([]byte("a")), ComputeChecksum([]byte("b"))}

	cbl, err := BuildCBL(CBLBuildParams{
		Creator:            creator,
		DateCreated:        time.Now().UTC(),
		OriginalDataLength: 10,
		TupleSize:          2,
		Addresses:          addrs,
		BlockSize:          BlockSizeSmall,
	})
	if err != nil {
		t.Fatalf("BuildCBL failed: %v", err)
	}

	tampered := append([]byte(nil), cbl.Data()...)
	h, parsedAddrs, err := ParseCBL(tampered)
	if err != nil {
		t.Fatalf("ParseCBL failed: %v", err)
	}
	_ = h
	_ = parsedAddrs

	// Flip a byte inside the address list region (after the fixed header,
	// signature, well past offset 64).
	tampered[cblFixedHeaderLen+sigLen] ^= 0xFF

	ok, err := ValidateSignature(tampered, creator, BlockSizeSmall)
	if err != nil {
		t.Fatalf("ValidateSignature errored: %v", err)
	}
	if ok {
		t.Fatalf("expected tampered address list to fail signature validation")
	}
}

func TestValidateSignatureRejectsWrongCreator(t *testing.T) {
	creator, _ := NewLocalMember()
	other, _ := NewLocalMember()
	addrs := []Checksum{ComputeChecksum([]byte("a"))}

	cbl, err := BuildCBL(CBLBuildParams{
		Creator:            creator,
		DateCreated:        time.Now().UTC(),
		OriginalDataLength: 1,
		TupleSize:          1,
		Addresses:          addrs,
		BlockSize:          BlockSizeSmall,
	})
	if err != nil {
		t.Fatalf("BuildCBL failed: %v", err)
	}

	_, err = ValidateSignature(cbl.Data(), other, BlockSizeSmall)
	if err == nil {
		t.Fatalf("expected ErrCreatorIDMismatch for wrong creator")
	}
}

func TestBuildExtendedCBLRoundTripsMetadata(t *testing.T) {
	creator, _ := NewLocalMember()
	addrs := []Checksum{ComputeChecksum([]byte("x"))}

	cbl, err := BuildCBL(CBLBuildParams{
		Creator:            creator,
		DateCreated:        time.Now().UTC(),
		OriginalDataLength: 99,
		TupleSize:          1,
		Addresses:          addrs,
		BlockSize:          BlockSizeSmall,
		FileName:           "report.pdf",
		MimeType:           "application/pdf",
	})
	if err != nil {
		t.Fatalf("BuildCBL failed: %v", err)
	}
	if cbl.BlockType() != BlockTypeExtendedCBL {
		t.Fatalf("expected BlockTypeExtendedCBL, got %v", cbl.BlockType())
	}

	h, _, err := ParseCBL(cbl.Data())
	if err != nil {
		t.Fatalf("ParseCBL failed: %v", err)
	}
	if !h.Extended {
		t.Fatalf("expected Extended flag set")
	}
	if h.FileName != "report.pdf" || h.MimeType != "application/pdf" {
		t.Fatalf("extended metadata mismatch: %+v", h)
	}

	ok, err := ValidateSignature(cbl.Data(), creator, BlockSizeSmall)
	if err != nil {
		t.Fatalf("ValidateSignature errored: %v", err)
	}
	if !ok {
		t.Fatalf("expected extended CBL signature to validate")
	}
}

func TestParseCBLRejectsBadMagic(t *testing.T) {
	data := make([]byte, int(BlockSizeSmall))
	if _, _, err := ParseCBL(data); err == nil {
		t.Fatalf("expected error for all-zero (bad magic) input")
	}
}
