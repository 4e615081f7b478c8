package codeanalysis

import (
	"testing"

	"github.com/evmgo/evmcore/opcodes"
)

func TestClassifyPushDataNeverJumpDest(t *testing.T) {
	// PUSH1 0x5b (JUMPDEST byte value used as PUSH data).
	code := []byte{byte(opcodes.PUSH1), byte(opcodes.JUMPDEST), byte(opcodes.JUMPDEST)}
	got := Classify(code)

	if got[0] != Opcode {
		t.Fatalf("pc0 (PUSH1) = %v, want Opcode", got[0])
	}
	if got[1] != DataOrInvalid {
		t.Fatalf("pc1 (push data) = %v, want DataOrInvalid even though the byte value is JUMPDEST", got[1])
	}
	if got[2] != JumpDest {
		t.Fatalf("pc2 (real JUMPDEST) = %v, want JumpDest", got[2])
	}
}

func TestClassifyTruncatedPushAtEndOfCode(t *testing.T) {
	// PUSH32 with only 2 bytes of data before code ends.
	code := []byte{byte(opcodes.PUSH32), 0x01, 0x02}
	got := Classify(code)
	if len(got) != 3 {
		t.Fatalf("len(got) = %d, want 3", len(got))
	}
	if got[0] != Opcode {
		t.Fatalf("pc0 = %v, want Opcode", got[0])
	}
	if got[1] != DataOrInvalid || got[2] != DataOrInvalid {
		t.Fatalf("truncated push data not marked DataOrInvalid: %v", got)
	}
}

func TestClassifyUndefinedOpcode(t *testing.T) {
	code := []byte{0x0c, 0x0d} // both in the unassigned 0x0c-0x0f gap
	got := Classify(code)
	for i, ct := range got {
		if ct != DataOrInvalid {
			t.Fatalf("pc%d = %v, want DataOrInvalid for undefined opcode", i, ct)
		}
	}
}

func TestClassifyAdjacentPushes(t *testing.T) {
	code := []byte{
		byte(opcodes.PUSH2), 0xaa, 0xbb,
		byte(opcodes.PUSH1), 0xcc,
		byte(opcodes.JUMPDEST),
	}
	got := Classify(code)
	want := []CodeByteType{Opcode, DataOrInvalid, DataOrInvalid, Opcode, DataOrInvalid, JumpDest}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("pc%d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestIsValidJumpDest(t *testing.T) {
	code := []byte{byte(opcodes.PUSH1), byte(opcodes.JUMPDEST), byte(opcodes.JUMPDEST)}
	analysis := Classify(code)
	if IsValidJumpDest(analysis, 1) {
		t.Fatalf("pc1 (push data) reported as valid jump dest")
	}
	if !IsValidJumpDest(analysis, 2) {
		t.Fatalf("pc2 (real JUMPDEST) reported as invalid jump dest")
	}
	if IsValidJumpDest(analysis, 99) {
		t.Fatalf("out-of-range pc reported as valid jump dest")
	}
}

func TestAnalyzeFoldsPushDataIntoCell(t *testing.T) {
	code := []byte{
		byte(opcodes.PUSH2), 0xaa, 0xbb,
		byte(opcodes.JUMPDEST),
		byte(opcodes.STOP),
	}
	r := Analyze(code)
	if len(r.Cells) != 3 {
		t.Fatalf("len(cells) = %d, want 3 (PUSH2, JUMPDEST, STOP)", len(r.Cells))
	}
	if r.Cells[0].Op != opcodes.PUSH2 {
		t.Fatalf("cells[0].Op = %v, want PUSH2", r.Cells[0].Op)
	}
	gotData := r.Cells[0].Data.Bytes32()
	if gotData[30] != 0xaa || gotData[31] != 0xbb {
		t.Fatalf("cells[0].Data = %x, want ..aabb", gotData)
	}
	if r.Cells[0].IsNoOp() {
		t.Fatalf("PUSH2 cell should be dispatchable, not a no-op placeholder")
	}
}

func TestPcMapRoundTrip(t *testing.T) {
	code := []byte{
		byte(opcodes.PUSH1), 0x05,
		byte(opcodes.JUMP),
		byte(opcodes.JUMPDEST), // original pc 3
		byte(opcodes.STOP),
	}
	r := Analyze(code)

	for origPC := uint64(0); origPC < uint64(len(code)); origPC++ {
		idx, ok := r.Map.ToRewritten(origPC)
		if !ok {
			continue // PUSH data byte; no cell of its own
		}
		back := r.Map.ToOriginal(idx)
		if back != origPC {
			t.Fatalf("round trip failed: origPC %d -> idx %d -> origPC %d", origPC, idx, back)
		}
	}

	jumpDestIdx, ok := r.Map.ToRewritten(3)
	if !ok {
		t.Fatalf("JUMPDEST at original pc 3 has no rewritten cell")
	}
	if r.Cells[jumpDestIdx].Op != opcodes.JUMPDEST {
		t.Fatalf("cell at mapped index is %v, want JUMPDEST", r.Cells[jumpDestIdx].Op)
	}
}

func TestPcMapRejectsPushDataAsTarget(t *testing.T) {
	code := []byte{byte(opcodes.PUSH1), 0x99}
	r := Analyze(code)
	if _, ok := r.Map.ToRewritten(1); ok {
		t.Fatalf("PUSH immediate byte resolved to a rewritten cell; it should not be a jump target")
	}
}

func TestSkipNoOpsOnUndefinedOpcode(t *testing.T) {
	code := []byte{0x0c, byte(opcodes.STOP)}
	r := Analyze(code)
	if n := SkipNoOps(r.Cells, 0); n != 1 {
		t.Fatalf("SkipNoOps at undefined-opcode cell = %d, want 1", n)
	}
	if n := SkipNoOps(r.Cells, 1); n != 0 {
		t.Fatalf("SkipNoOps at STOP cell = %d, want 0", n)
	}
}

func TestClassificationCacheReturnsSameSlice(t *testing.T) {
	c := NewClassificationCache(4)
	code := []byte{byte(opcodes.PUSH1), 0x01, byte(opcodes.STOP)}
	hash := HashCode(code)

	first := c.GetOrAnalyze(hash, code)
	second := c.GetOrAnalyze(hash, code)
	if &first[0] != &second[0] {
		t.Fatalf("expected cached call to return the same backing array")
	}
}

func TestRewrittenCacheReturnsSamePointer(t *testing.T) {
	c := NewRewrittenCache(4)
	code := []byte{byte(opcodes.PUSH1), 0x01, byte(opcodes.STOP)}
	hash := HashCode(code)

	first := c.GetOrAnalyze(hash, code)
	second := c.GetOrAnalyze(hash, code)
	if first != second {
		t.Fatalf("expected cached call to return the same *Rewritten pointer")
	}
}

func TestCacheCapacity(t *testing.T) {
	c := NewClassificationCache(13)
	if got := c.Capacity(); got != 13 {
		t.Fatalf("Capacity() = %d, want 13", got)
	}
}

func TestCacheEvictsLeastRecentlyUsed(t *testing.T) {
	c := NewClassificationCache(2)
	codes := [][]byte{
		{byte(opcodes.PUSH1), 0x01, byte(opcodes.STOP)},
		{byte(opcodes.PUSH1), 0x02, byte(opcodes.STOP)},
		{byte(opcodes.PUSH1), 0x03, byte(opcodes.STOP)},
	}

	first := c.GetOrAnalyze(HashCode(codes[0]), codes[0])
	c.GetOrAnalyze(HashCode(codes[1]), codes[1])
	c.GetOrAnalyze(HashCode(codes[2]), codes[2]) // evicts codes[0]

	recomputed := c.GetOrAnalyze(HashCode(codes[0]), codes[0])
	if &first[0] == &recomputed[0] {
		t.Fatal("expected eviction to force a recomputation for the oldest entry")
	}
	if len(first) != len(recomputed) {
		t.Fatalf("recomputed analysis differs in length: %d vs %d", len(first), len(recomputed))
	}
	for i := range first {
		if first[i] != recomputed[i] {
			t.Fatalf("recomputed analysis differs at pc %d: %v vs %v", i, first[i], recomputed[i])
		}
	}
}
