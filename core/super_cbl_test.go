package core

import (
	"testing"
	"time"
)

func TestBuildAndParseSuperCBLRoundTrip(t *testing.T) {
	creator, err := NewLocalMember()
	if err != nil {
		t.Fatalf("NewLocalMember failed: %v", err)
	}
	subAddrs := []Checksum{ComputeChecksum([]byte("sub-a")), ComputeChecksum([]byte("sub-b"))}
	dataHash := ComputeChecksum([]byte("original file contents"))

	sc, err := BuildSuperCBL(SuperCBLBuildParams{
		Creator:            creator,
		DateCreated:        time.Now().UTC(),
		OriginalDataLength: 99999,
		TupleSize:          5,
		Depth:              2,
		TotalBlockCount:    42,
		OriginalDataHash:   dataHash,
		SubCBLAddresses:    subAddrs,
		BlockSize:          BlockSizeSmall,
	})
	if err != nil {
		t.Fatalf("BuildSuperCBL failed: %v", err)
	}
	if sc.BlockType() != BlockTypeSuperCBL {
		t.Fatalf("expected BlockTypeSuperCBL, got %v", sc.BlockType())
	}

	h, addrs, err := ParseSuperCBL(sc.Data())
	if err != nil {
		t.Fatalf("ParseSuperCBL failed: %v", err)
	}
	if h.Depth != 2 || h.TotalBlockCount != 42 {
		t.Fatalf("metadata mismatch: %+v", h)
	}
	if !h.OriginalDataHash.Equal(dataHash) {
		t.Fatalf("expected originalDataHash to round-trip")
	}
	if len(addrs) != len(subAddrs) {
		t.Fatalf("expected %d sub-CBL addresses, got %d", len(subAddrs), len(addrs))
	}
	for i := range subAddrs {
		if !addrs[i].Equal(subAddrs[i]) {
			t.Fatalf("sub-CBL address %d mismatch", i)
		}
	}

	ok, err := ValidateSuperCBLSignature(sc.Data(), creator, BlockSizeSmall)
	if err != nil {
		t.Fatalf("ValidateSuperCBLSignature errored: %v", err)
	}
	if !ok {
		t.Fatalf("expected signature to validate")
	}
}

func TestValidateSuperCBLSignatureRejectsWrongCreator(t *testing.T) {
	creator, _ := NewLocalMember()
	other, _ := NewLocalMember()

	sc, err := BuildSuperCBL(SuperCBLBuildParams{
		Creator:            creator,
		DateCreated:        time.Now().UTC(),
		OriginalDataLength: 1,
		TupleSize:          1,
		Depth:              1,
		TotalBlockCount:    1,
		OriginalDataHash:   ComputeChecksum([]byte("x")),
		SubCBLAddresses:    []Checksum{ComputeChecksum([]byte("sub"))},
		BlockSize:          BlockSizeSmall,
	})
	if err != nil {
		t.Fatalf("BuildSuperCBL failed: %v", err)
	}

	_, err = ValidateSuperCBLSignature(sc.Data(), other, BlockSizeSmall)
	if err == nil {
		t.Fatalf("expected ErrCreatorIDMismatch for wrong creator")
	}
}

func TestValidateSuperCBLSignatureRejectsTamperedDepth(t *testing.T) {
	creator, _ := NewLocalMember()

	sc, err := BuildSuperCBL(SuperCBLBuildParams{
		Creator:            creator,
		DateCreated:        time.Now().UTC(),
		OriginalDataLength: 1,
		TupleSize:          1,
		Depth:              1,
		TotalBlockCount:    1,
		OriginalDataHash:   ComputeChecksum([]byte("x")),
		SubCBLAddresses:    []Checksum{ComputeChecksum([]byte("sub"))},
		BlockSize:          BlockSizeSmall,
	})
	if err != nil {
		t.Fatalf("BuildSuperCBL failed: %v", err)
	}

	tampered := append([]byte(nil), sc.Data()...)
	// Flip a byte inside the depth field, just past the fixed CBL header.
	tampered[cblFixedHeaderLen] ^= 0xFF

	if _, err := ValidateSuperCBLSignature(tampered, creator, BlockSizeSmall); err == nil {
		t.Fatalf("expected CRC mismatch for tampered depth field")
	}
}

func TestParseSuperCBLRejectsMissingSuperFlag(t *testing.T) {
	creator, _ := NewLocalMember()
	addrs := []Checksum{ComputeChecksum([]byte("a"))}

	// A plain CBL never sets the super flag.
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

	data := append([]byte(nil), cbl.Data()...)
	data[1] = byte(BlockTypeSuperCBL)
	if _, _, err := ParseSuperCBL(data); err == nil {
		t.Fatalf("expected error for a plain CBL parsed as SuperCBL")
	}
}
