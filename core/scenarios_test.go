package core

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
)

// scenarios_test.go — the concrete end-to-end scenarios of spec.md §8
// (S1, S2, S4, S5; S3 lives in xor_test.go, S6 in fec_test.go where only
// the in-core precondition half is unit-testable without a real WASM
// guest module).

func seededBytes(n int, seed byte) []byte {
	out := make([]byte, n)
	x := seed
	for i := range out {
		x = x*31 + 7
		out[i] = x
	}
	return out
}

func runPipeline(t *testing.T, payload []byte) (*ConstituentBlockList, Checksum, *MemoryBlockStore, Member) {
	t.Helper()
	creator, err := NewLocalMember()
	if err != nil {
		t.Fatalf("NewLocalMember failed: %v", err)
	}
	pool := NewPool(BlockSizeSmall)
	fillServicePool(t, pool, 64, 64)

	store := NewMemoryBlockStore()
	persist := func(tup *Tuple, index int) error {
		for _, b := range tup.Blocks() {
			if err := store.Put(b); err != nil {
				return err
			}
		}
		companions := make([]Checksum, 0, tup.Size()-1)
		for _, b := range tup.Blocks()[1:] {
			companions = append(companions, b.IDChecksum())
		}
		return store.PutTupleCompanions(tup.PrimeChecksum(), companions)
	}

	cbl, cblPrime, err := DataStreamToPlaintextTuplesAndCBL(context.Background(), creator, BlockSizeSmall, bytes.NewReader(payload), pool, persist)
	if err != nil {
		t.Fatalf("DataStreamToPlaintextTuplesAndCBL failed: %v", err)
	}
	return cbl, cblPrime, store, creator
}

// recoverAll resolves every handle tuple in the CBL and XORs each back to
// its owned source chunk via the store-agnostic recovery path, concatenating
// and trimming to originalDataLength.
func recoverAll(t *testing.T, cbl *ConstituentBlockList, store BlockStore) []byte {
	t.Helper()
	handles := GetHandleTuples(cbl.Addresses(), store)
	out, err := RecoverStreamFromHandleTuples(handles, store, cbl.Header().OriginalDataLength)
	if err != nil {
		t.Fatalf("RecoverStreamFromHandleTuples failed: %v", err)
	}
	return out
}

func TestScenarioS1RoundTripPlaintextCBL(t *testing.T) {
	payload := seededBytes(12288, 0x42)
	cbl, _, store, creator := runPipeline(t, payload)

	if len(cbl.Addresses()) != 3 {
		t.Fatalf("expected addressCount 3, got %d", len(cbl.Addresses()))
	}
	if cbl.Header().OriginalDataLength != 12288 {
		t.Fatalf("expected originalDataLength 12288, got %d", cbl.Header().OriginalDataLength)
	}
	ok, err := ValidateSignature(cbl.Data(), creator, BlockSizeSmall)
	if err != nil || !ok {
		t.Fatalf("expected CBL signature to validate: ok=%v err=%v", ok, err)
	}

	recovered := recoverAll(t, cbl, store)
	if !bytes.Equal(recovered, payload) {
		t.Fatalf("recovered payload mismatch: got %d bytes want %d bytes", len(recovered), len(payload))
	}
}

func TestScenarioS2ShortLastBlockPadding(t *testing.T) {
	payload := seededBytes(5000, 0x07)
	cbl, _, store, _ := runPipeline(t, payload)

	if len(cbl.Addresses()) != 2 {
		t.Fatalf("expected 2 tuples, got %d", len(cbl.Addresses()))
	}
	if cbl.Header().OriginalDataLength != 5000 {
		t.Fatalf("expected originalDataLength 5000, got %d", cbl.Header().OriginalDataLength)
	}

	recovered := recoverAll(t, cbl, store)
	if len(recovered) != 5000 {
		t.Fatalf("expected trimmed recovery of 5000 bytes, got %d", len(recovered))
	}
	if !bytes.Equal(recovered, payload) {
		t.Fatalf("recovered payload mismatch")
	}
}

func TestScenarioS4SignatureTampering(t *testing.T) {
	payload := seededBytes(4096, 0x99)
	cbl, _, _, creator := runPipeline(t, payload)

	tampered := append([]byte(nil), cbl.Data()...)
	tampered[cblFixedHeaderLen+sigLen] ^= 0xFF

	ok, err := ValidateSignature(tampered, creator, BlockSizeSmall)
	if err != nil {
		t.Fatalf("ValidateSignature errored: %v", err)
	}
	if ok {
		t.Fatalf("expected tampered CBL signature to fail validation")
	}

	// Block-level idChecksum also fails over the tampered bytes.
	recomputed := ComputeChecksum(tampered)
	if recomputed.Equal(cbl.IDChecksum()) {
		t.Fatalf("expected tampering to change the content checksum")
	}
}

func TestScenarioS5PoolScopedTupleRejectsCrossPoolHandles(t *testing.T) {
	alpha := NewPoolWithID("alpha", BlockSizeTiny)
	beta := NewPoolWithID("beta", BlockSizeTiny)

	source, err := NewRawDataBlock(bytes.Repeat([]byte{0x01}, int(BlockSizeTiny)), BlockSizeTiny)
	if err != nil {
		t.Fatalf("NewRawDataBlock failed: %v", err)
	}
	alphaRandom, err := NewPoolRandomBlock(BlockSizeTiny, alpha.ID())
	if err != nil {
		t.Fatalf("NewPoolRandomBlock failed: %v", err)
	}
	betaRandom, err := NewPoolRandomBlock(BlockSizeTiny, beta.ID())
	if err != nil {
		t.Fatalf("NewPoolRandomBlock failed: %v", err)
	}

	if _, err := NewTuple([]Block{source, alphaRandom, betaRandom}, 3, "alpha"); !errors.Is(err, ErrPoolIDMismatch) {
		t.Fatalf("expected ErrPoolIDMismatch, got %v", err)
	}

	// Legacy mode (poolID == "") accepts mixed pools.
	if _, err := NewTuple([]Block{source, alphaRandom, betaRandom}, 3, ""); err != nil {
		t.Fatalf("expected legacy-mode mixed-pool tuple to succeed, got %v", err)
	}
}

// TestScenarioS1DiskBackedRoundTrip runs the same round trip as
// TestScenarioS1RoundTripPlaintextCBL but against a DiskBlockStore, whose
// Get always reconstitutes a generic RawDataBlock from persisted bytes
// rather than handing back the live WhitenedBlock/RandomBlock object that
// was Put. It proves RecoverStreamFromHandleTuples recovers the original
// stream from blocks alone, with no dependence on any concrete block type
// or in-memory-only header metadata surviving the round trip.
func TestScenarioS1DiskBackedRoundTrip(t *testing.T) {
	payload := seededBytes(12288, 0x42)

	creator, err := NewLocalMember()
	if err != nil {
		t.Fatalf("NewLocalMember failed: %v", err)
	}
	pool := NewPool(BlockSizeSmall)
	fillServicePool(t, pool, 64, 64)

	logger := logrus.New()
	logger.SetOutput(io.Discard)
	store, err := NewDiskBlockStore(t.TempDir(), 0, logger)
	if err != nil {
		t.Fatalf("NewDiskBlockStore failed: %v", err)
	}
	persist := func(tup *Tuple, index int) error {
		for _, b := range tup.Blocks() {
			if err := store.Put(b); err != nil {
				return err
			}
		}
		companions := make([]Checksum, 0, tup.Size()-1)
		for _, b := range tup.Blocks()[1:] {
			companions = append(companions, b.IDChecksum())
		}
		return store.PutTupleCompanions(tup.PrimeChecksum(), companions)
	}

	cbl, _, err := DataStreamToPlaintextTuplesAndCBL(context.Background(), creator, BlockSizeSmall, bytes.NewReader(payload), pool, persist)
	if err != nil {
		t.Fatalf("DataStreamToPlaintextTuplesAndCBL failed: %v", err)
	}

	handles := GetHandleTuples(cbl.Addresses(), store)
	recovered, err := RecoverStreamFromHandleTuples(handles, store, cbl.Header().OriginalDataLength)
	if err != nil {
		t.Fatalf("RecoverStreamFromHandleTuples failed: %v", err)
	}
	if !bytes.Equal(recovered, payload) {
		t.Fatalf("recovered payload mismatch: got %d bytes want %d bytes", len(recovered), len(payload))
	}
}
