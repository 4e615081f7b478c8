// Package u256 provides the 256-bit word and gas-arithmetic helpers shared by
// every other package in this module. The word type itself is
// github.com/holiman/uint256.Int: it already implements checked, wrapping and
// saturating add/sub/mul/div/mod/exp, signed two's-complement variants and
// shl/shr/sar with correct saturation for shift counts >= 256, so this
// package only adds the small set of EVM-specific helpers layered on top
// (memory expansion cost, word counts, and the u64-saturating conversion
// opcodes like CALL's gas argument need).
package u256

import (
	"math"

	"github.com/holiman/uint256"
)

// Word is the 256-bit value type used throughout the interpreter.
type Word = uint256.Int

// MaxGas is the largest value the signed ExecutionMessage.Gas field can
// hold.
const MaxGas = int64(math.MaxInt64)

// WordCount rounds size up to the nearest multiple of 32 and returns the
// number of 32-byte words, i.e. ceil(size / 32).
func WordCount(size uint64) uint64 {
	if size > math.MaxUint64-31 {
		return math.MaxUint64 / 32
	}
	return (size + 31) / 32
}

// MemoryGasCost computes the EVM memory-expansion cost for a memory of the
// given word count: Gmem(w) = 3*w + floor(w^2/512). The result saturates at
// math.MaxUint64 rather than wrapping, so that callers can detect "would be
// out of gas regardless" by comparing against the remaining gas.
func MemoryGasCost(words uint64) uint64 {
	linear, overflow := mulOverflow(3, words)
	if overflow {
		return math.MaxUint64
	}
	square, overflow := mulOverflow(words, words)
	if overflow {
		return math.MaxUint64
	}
	quadratic := square / 512
	sum, overflow := addOverflow(linear, quadratic)
	if overflow {
		return math.MaxUint64
	}
	return sum
}

func mulOverflow(a, b uint64) (uint64, bool) {
	if a == 0 || b == 0 {
		return 0, false
	}
	r := a * b
	return r, r/a != b
}

func addOverflow(a, b uint64) (uint64, bool) {
	r := a + b
	return r, r < a
}

// ToU64Saturating returns x clamped to [0, math.MaxUint64]. EVMC-facing gas
// and size fields are 64-bit; values that don't fit saturate rather than
// wrap.
func ToU64Saturating(x *Word) uint64 {
	if !x.IsUint64() {
		return math.MaxUint64
	}
	return x.Uint64()
}

// ToBig32 returns the big-endian 32-byte encoding of x.
func ToBig32(x *Word) [32]byte {
	return x.Bytes32()
}

// FromBig32 decodes a big-endian 32-byte buffer into a Word.
func FromBig32(b [32]byte) Word {
	var w Word
	w.SetBytes32(b[:])
	return w
}
