package memory

import (
	"bytes"
	"testing"

	"github.com/evmgo/evmcore/u256"
)

// grow charges-and-resizes the way the interpreter does, returning the gas
// the expansion cost.
func grow(m *Memory, size uint64) uint64 {
	cost := m.ExpansionCost(size)
	m.Resize(size)
	return cost
}

func TestResizeRoundsUpToWord(t *testing.T) {
	m := New()
	m.Resize(1)
	if m.Len() != 32 {
		t.Fatalf("Len() = %d, want 32 after a 1-byte access", m.Len())
	}
	m.Resize(33)
	if m.Len() != 64 {
		t.Fatalf("Len() = %d, want 64 after a 33-byte access", m.Len())
	}
}

func TestZeroSizeNeverExpands(t *testing.T) {
	m := New()
	if gas := grow(m, 0); gas != 0 {
		t.Fatalf("zero-size expansion gas = %d, want 0", gas)
	}
	if m.Len() != 0 {
		t.Fatalf("Len() = %d, want 0 after a zero-size access", m.Len())
	}
}

func TestResizeIdempotentWhenAlreadyLargeEnough(t *testing.T) {
	m := New()
	m.Resize(64)
	if got := grow(m, 32); got != 0 {
		t.Fatalf("re-shrinking access charged gas: %d, want 0", got)
	}
	if m.Len() != 64 {
		t.Fatalf("Len() = %d, want 64 (memory never shrinks)", m.Len())
	}
}

func TestExpansionCostIsIncremental(t *testing.T) {
	m := New()
	first := grow(m, 32) // 1 word: 3*1 + 0 = 3
	if first != 3 {
		t.Fatalf("first expansion to 32 = %d, want 3", first)
	}
	second := grow(m, 64) // grows to 2 words: total cost 3*2+0=6, delta 3
	if second != 3 {
		t.Fatalf("second expansion to 64 = %d, want 3 (incremental)", second)
	}
}

func TestExpansionCostChargesWithoutAllocating(t *testing.T) {
	m := New()
	if cost := m.ExpansionCost(1 << 40); cost == 0 {
		t.Fatal("huge expansion reported as free")
	}
	if m.Len() != 0 {
		t.Fatalf("ExpansionCost allocated: Len() = %d, want 0", m.Len())
	}
}

func TestSetAndGetCopy(t *testing.T) {
	m := New()
	m.Resize(32)
	m.Set(0, 4, []byte{1, 2, 3, 4})

	got := m.GetCopy(0, 4)
	if !bytes.Equal(got, []byte{1, 2, 3, 4}) {
		t.Fatalf("GetCopy = %v, want [1 2 3 4]", got)
	}
}

func TestGetCopyZeroSizeReturnsNil(t *testing.T) {
	m := New()
	m.Resize(32)
	if got := m.GetCopy(0, 0); got != nil {
		t.Fatalf("GetCopy(0,0) = %v, want nil", got)
	}
}

func TestSet32(t *testing.T) {
	m := New()
	m.Resize(32)
	var w u256.Word
	w.SetUint64(0xdeadbeef)
	m.Set32(0, &w)

	got := m.GetCopy(0, 32)
	var back u256.Word
	back.SetBytes(got)
	if back.Uint64() != 0xdeadbeef {
		t.Fatalf("round trip through Set32/GetCopy failed: got %x", got)
	}
}

// MCOPY test cases mirror EIP-5656's overlapping-region requirements.
func TestCopyOverlappingForward(t *testing.T) {
	m := New()
	m.Resize(32)
	m.Set(0, 10, []byte{0, 1, 2, 3, 4, 5, 6, 7, 8, 9})
	// Copy [0:5) to [2:7): destination overlaps source, shifted right.
	m.Copy(2, 0, 5)
	got := m.GetCopy(0, 10)
	want := []byte{0, 1, 0, 1, 2, 3, 4, 7, 8, 9}
	if !bytes.Equal(got, want) {
		t.Fatalf("Copy(dst=2,src=0,len=5) = %v, want %v", got, want)
	}
}

func TestCopyOverlappingBackward(t *testing.T) {
	m := New()
	m.Resize(32)
	m.Set(0, 10, []byte{0, 1, 2, 3, 4, 5, 6, 7, 8, 9})
	// Copy [2:7) to [0:5): destination overlaps source, shifted left.
	m.Copy(0, 2, 5)
	got := m.GetCopy(0, 10)
	want := []byte{2, 3, 4, 5, 6, 5, 6, 7, 8, 9}
	if !bytes.Equal(got, want) {
		t.Fatalf("Copy(dst=0,src=2,len=5) = %v, want %v", got, want)
	}
}

func TestCopyZeroSizeNoPanicOnEmptyMemory(t *testing.T) {
	m := New()
	m.Copy(0, 0, 0) // must not panic even though memory is empty
}

func TestWordCount(t *testing.T) {
	m := New()
	m.Resize(65)
	if got := m.WordCount(); got != 3 {
		t.Fatalf("WordCount() = %d, want 3", got)
	}
}
