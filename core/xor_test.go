package core

import (
	"bytes"
	"testing"
)

func TestXORRoundTrip(t *testing.T) {
	a := bytes.Repeat([]byte{0x01}, 64)
	b := bytes.Repeat([]byte{0x80}, 64)

	ab, err := XOR(a, b)
	if err != nil {
		t.Fatalf("XOR failed: %v", err)
	}
	want := bytes.Repeat([]byte{0x81}, 64)
	if !bytes.Equal(ab, want) {
		t.Fatalf("XOR mismatch: got %x want %x", ab, want)
	}

	back, err := XOR(ab, b)
	if err != nil {
		t.Fatalf("XOR (inverse) failed: %v", err)
	}
	if !bytes.Equal(back, a) {
		t.Fatalf("XOR self-inverse failed: got %x want %x", back, a)
	}
}

func TestXORLengthMismatch(t *testing.T) {
	_, err := XOR([]byte{1, 2, 3}, []byte{1, 2})
	if err == nil {
		t.Fatalf("expected XorLengthMismatch error")
	}
}

func TestXORZeroIdentity(t *testing.T) {
	a := []byte{0x12, 0x34, 0x56}
	zero := make([]byte, len(a))
	got, err := XOR(a, zero)
	if err != nil {
		t.Fatalf("XOR failed: %v", err)
	}
	if !bytes.Equal(got, a) {
		t.Fatalf("xor(a,0) != a: got %x want %x", got, a)
	}
}

func TestXORSelfZero(t *testing.T) {
	a := []byte{0x12, 0x34, 0x56}
	got, err := XOR(a, a)
	if err != nil {
		t.Fatalf("XOR failed: %v", err)
	}
	for _, b := range got {
		if b != 0 {
			t.Fatalf("xor(a,a) != 0: got %x", got)
		}
	}
}

func TestXORCommutative(t *testing.T) {
	a := []byte{0x01, 0x02, 0x03, 0x04}
	b := []byte{0xAA, 0xBB, 0xCC, 0xDD}
	ab, _ := XOR(a, b)
	ba, _ := XOR(b, a)
	if !bytes.Equal(ab, ba) {
		t.Fatalf("XOR not commutative: %x vs %x", ab, ba)
	}
}

func TestXORAssociative(t *testing.T) {
	a := []byte{0x11, 0x22, 0x33}
	b := []byte{0x44, 0x55, 0x66}
	c := []byte{0x77, 0x88, 0x99}

	ab, _ := XOR(a, b)
	abc1, _ := XOR(ab, c)

	bc, _ := XOR(b, c)
	abc2, _ := XOR(a, bc)

	if !bytes.Equal(abc1, abc2) {
		t.Fatalf("XOR not associative: %x vs %x", abc1, abc2)
	}
}

func TestXORMultipleEmptyRequiresOne(t *testing.T) {
	if _, err := XORMultiple(); err == nil {
		t.Fatalf("expected error for zero arrays")
	}
}

func TestXORMultipleFoldsLeftToRight(t *testing.T) {
	a := []byte{0x01, 0x01}
	b := []byte{0x02, 0x02}
	c := []byte{0x04, 0x04}

	got, err := XORMultiple(a, b, c)
	if err != nil {
		t.Fatalf("XORMultiple failed: %v", err)
	}
	want := []byte{0x07, 0x07}
	if !bytes.Equal(got, want) {
		t.Fatalf("XORMultiple mismatch: got %x want %x", got, want)
	}
}

// FuzzXORInvolution mirrors the corpus's FuzzReverse pattern: xor-ing
// against the same mask twice must return the original input.
func FuzzXORInvolution(f *testing.F) {
	f.Add([]byte("seed"), []byte("mask"))
	f.Fuzz(func(t *testing.T, data, mask []byte) {
		if len(mask) == 0 {
			mask = []byte{0}
		}
		// Normalize to equal length since XOR requires it.
		n := len(data)
		if len(mask) < n {
			padded := make([]byte, n)
			for i := range padded {
				padded[i] = mask[i%len(mask)]
			}
			mask = padded
		} else {
			mask = mask[:n]
		}
		once, err := XOR(data, mask)
		if err != nil {
			t.Fatalf("XOR failed: %v", err)
		}
		twice, err := XOR(once, mask)
		if err != nil {
			t.Fatalf("XOR failed: %v", err)
		}
		if !bytes.Equal(twice, data) {
			t.Fatalf("xor twice mismatch: got %x want %x", twice, data)
		}
	})
}
