package core

// fec.go — the pluggable Reed–Solomon FEC façade of spec.md §4.I. No erasure
// algorithm lives in this package; FECCodec only marshals
// (data, shardSize, dataShards, parityShards, availability) into a WASM
// guest module's linear memory and invokes its encode/decode exports,
// generalizing the host/guest wiring of the corpus's HeavyVM
// (core/virtual_machine.go: wasmer.NewEngine/NewStore/NewModule/NewInstance
// plus Exports.GetMemory("memory") read/write-by-pointer) from contract
// execution to erasure-coding shard transforms.
//
// Guest contract: the module exports "memory", "alloc(size i32) -> i32",
// "encode(dataPtr, dataLen, shardSize, dataShards, parityShards,
// parityOnly i32) -> i32" and "decode(dataPtr, dataLen, shardSize,
// dataShards, parityShards, availPtr, availLen i32) -> i32". Both exports
// return a pointer to a length-prefixed result buffer (4-byte
// little-endian length, then payload) allocated via the guest's own
// "alloc", or 0 on failure.

import (
	"encoding/binary"
	"strconv"

	"github.com/wasmerio/wasmer-go/wasmer"
)

// MaxShardSize bounds shardSize for the precondition check named in
// spec.md §4.I; a shard is never larger than the Large block rung (16 MiB).
const MaxShardSize = int(BlockSizeLarge)

// FECCodec wraps one compiled WASM erasure-coding module.
type FECCodec struct {
	instance *wasmer.Instance
	memory   *wasmer.Memory
	alloc    wasmer.NativeFunction
	encode   wasmer.NativeFunction
	decode   wasmer.NativeFunction
}

// NewFECCodec compiles wasmBytes and binds its encode/decode/alloc exports.
func NewFECCodec(wasmBytes []byte) (*FECCodec, error) {
	engine := wasmer.NewEngine()
	store := wasmer.NewStore(engine)
	mod, err := wasmer.NewModule(store, wasmBytes)
	if err != nil {
		return nil, wrapErr(ErrKindFEC, "fec.module_compile_failed", err, nil)
	}
	instance, err := wasmer.NewInstance(mod, wasmer.NewImportObject())
	if err != nil {
		return nil, wrapErr(ErrKindFEC, "fec.instantiate_failed", err, nil)
	}
	memory, err := instance.Exports.GetMemory("memory")
	if err != nil {
		return nil, wrapErr(ErrKindFEC, "fec.memory_export_missing", err, nil)
	}
	alloc, err := instance.Exports.GetFunction("alloc")
	if err != nil {
		return nil, wrapErr(ErrKindFEC, "fec.alloc_export_missing", err, nil)
	}
	encodeFn, err := instance.Exports.GetFunction("encode")
	if err != nil {
		return nil, wrapErr(ErrKindFEC, "fec.encode_export_missing", err, nil)
	}
	decodeFn, err := instance.Exports.GetFunction("decode")
	if err != nil {
		return nil, wrapErr(ErrKindFEC, "fec.decode_export_missing", err, nil)
	}
	return &FECCodec{instance: instance, memory: memory, alloc: alloc, encode: encodeFn, decode: decodeFn}, nil
}

// writeBytes allocates room in the guest's linear memory via the codec's
// own "alloc" export and copies data in, returning the guest pointer.
func (c *FECCodec) writeBytes(data []byte) (int32, error) {
	ret, err := c.alloc(int32(len(data)))
	if err != nil {
		return 0, wrapErr(ErrKindFEC, "fec.alloc_call_failed", err, nil)
	}
	ptr, ok := ret.(int32)
	if !ok {
		return 0, withParams(ErrFecEncodingFailed, map[string]string{"REASON": "alloc_returned_non_i32"})
	}
	copy(c.memory.Data()[ptr:], data)
	return ptr, nil
}

// readLengthPrefixed reads a 4-byte little-endian length followed by that
// many payload bytes, starting at ptr in the guest's linear memory.
func (c *FECCodec) readLengthPrefixed(ptr int32) ([]byte, error) {
	if ptr == 0 {
		return nil, withParams(ErrInvalidStructure, map[string]string{"REASON": "nil_result_pointer"})
	}
	mem := c.memory.Data()
	if int(ptr)+4 > len(mem) {
		return nil, withParams(ErrInvalidStructure, map[string]string{"REASON": "result_pointer_out_of_bounds"})
	}
	n := binary.LittleEndian.Uint32(mem[ptr : ptr+4])
	start := int(ptr) + 4
	end := start + int(n)
	if end > len(mem) {
		return nil, withParams(ErrInvalidStructure, map[string]string{"REASON": "result_length_out_of_bounds"})
	}
	out := make([]byte, n)
	copy(out, mem[start:end])
	return out, nil
}

func boolToI32(b bool) int32 {
	if b {
		return 1
	}
	return 0
}

// Encode splits data into dataShards equal shards of shardSize bytes,
// computes parityShards parity shards, and returns either the full
// interleaved shard set or, when parityOnly is set, just the parity shards
// (spec.md §4.I).
func (c *FECCodec) Encode(data []byte, shardSize, dataShards, parityShards int, parityOnly bool) ([]byte, error) {
	if len(data) == 0 {
		return nil, withParams(ErrFecDataRequired, nil)
	}
	if dataShards <= 0 || parityShards <= 0 {
		return nil, withParams(ErrFecInvalidDataLength, map[string]string{"REASON": "non_positive_shard_count"})
	}
	if shardSize <= 0 || len(data) != shardSize*dataShards {
		return nil, withParams(ErrFecInvalidDataLength, nil)
	}
	if shardSize > MaxShardSize {
		return nil, withParams(ErrFecShardSizeExceeded, map[string]string{"MAX": strconv.Itoa(MaxShardSize)})
	}

	dataPtr, err := c.writeBytes(data)
	if err != nil {
		return nil, err
	}
	ret, err := c.encode(dataPtr, int32(len(data)), int32(shardSize), int32(dataShards), int32(parityShards), boolToI32(parityOnly))
	if err != nil {
		return nil, wrapErr(ErrKindFEC, "fec.encode_call_failed", err, nil)
	}
	resultPtr, ok := ret.(int32)
	if !ok || resultPtr == 0 {
		return nil, withParams(ErrFecEncodingFailed, nil)
	}
	out, err := c.readLengthPrefixed(resultPtr)
	if err != nil {
		return nil, withParams(ErrFecEncodingFailed, nil)
	}
	return out, nil
}

// Decode reconstructs the original dataShards·shardSize bytes from
// interleaved shard data and an availability mask, one bool per shard for
// all dataShards+parityShards shards, data shards first (spec.md §4.I).
func (c *FECCodec) Decode(interleaved []byte, shardSize, dataShards, parityShards int, availability []bool) ([]byte, error) {
	if len(interleaved) == 0 {
		return nil, withParams(ErrFecDataRequired, nil)
	}
	if dataShards <= 0 || parityShards <= 0 {
		return nil, withParams(ErrFecInvalidDataLength, map[string]string{"REASON": "non_positive_shard_count"})
	}
	if shardSize <= 0 {
		return nil, withParams(ErrFecInvalidDataLength, nil)
	}
	if shardSize > MaxShardSize {
		return nil, withParams(ErrFecShardSizeExceeded, map[string]string{"MAX": strconv.Itoa(MaxShardSize)})
	}
	total := dataShards + parityShards
	if len(availability) != total {
		return nil, withParams(ErrFecInvalidDataLength, map[string]string{"REASON": "availability_length_mismatch"})
	}
	available := 0
	availBytes := make([]byte, total)
	for i, ok := range availability {
		if ok {
			available++
			availBytes[i] = 1
		}
	}
	if available < dataShards {
		return nil, withParams(ErrFecNotEnoughShards, map[string]string{"AVAILABLE": strconv.Itoa(available), "REQUIRED": strconv.Itoa(dataShards)})
	}

	dataPtr, err := c.writeBytes(interleaved)
	if err != nil {
		return nil, err
	}
	availPtr, err := c.writeBytes(availBytes)
	if err != nil {
		return nil, err
	}
	ret, err := c.decode(dataPtr, int32(len(interleaved)), int32(shardSize), int32(dataShards), int32(parityShards), availPtr, int32(len(availBytes)))
	if err != nil {
		return nil, wrapErr(ErrKindFEC, "fec.decode_call_failed", err, nil)
	}
	resultPtr, ok := ret.(int32)
	if !ok || resultPtr == 0 {
		return nil, withParams(ErrFecDecodingFailed, nil)
	}
	out, err := c.readLengthPrefixed(resultPtr)
	if err != nil {
		return nil, withParams(ErrFecDecodingFailed, nil)
	}
	return out, nil
}
