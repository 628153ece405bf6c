package core

import "strconv"

// XOR combines two equal-length byte slices. The loop runs over the full
// length of a with no early exit, so its timing does not depend on where
// (or whether) a and b first differ.
func XOR(a, b []byte) ([]byte, error) {
	if len(a) != len(b) {
		return nil, withParams(ErrXorLengthMismatch, map[string]string{
			"LENGTH_A": strconv.Itoa(len(a)),
			"LENGTH_B": strconv.Itoa(len(b)),
		})
	}
	out := make([]byte, len(a))
	for i := range a {
		out[i] = a[i] ^ b[i]
	}
	return out, nil
}

// XORMultiple folds XOR left-to-right across arrays. All arrays must share
// the same length; at least one array is required.
func XORMultiple(arrays ...[]byte) ([]byte, error) {
	if len(arrays) == 0 {
		return nil, ErrXorAtLeastOneRequired
	}
	acc := make([]byte, len(arrays[0]))
	copy(acc, arrays[0])
	for _, next := range arrays[1:] {
		folded, err := XOR(acc, next)
		if err != nil {
			return nil, err
		}
		acc = folded
	}
	return acc, nil
}
