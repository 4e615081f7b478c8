package codereader

import (
	"testing"

	"github.com/evmgo/evmcore/codeanalysis"
	"github.com/evmgo/evmcore/opcodes"
)

func TestReaderGetAndNext(t *testing.T) {
	code := []byte{byte(opcodes.PUSH1), 0x05, byte(opcodes.JUMPDEST), byte(opcodes.STOP)}
	analysis := codeanalysis.Classify(code)
	r := NewReader(code, analysis)

	op, err := r.Get()
	if err != nil || op != opcodes.PUSH1 {
		t.Fatalf("Get() = %v, %v; want PUSH1, nil", op, err)
	}
	data := r.GetPushData(1)
	if data.Uint64() != 5 {
		t.Fatalf("GetPushData(1) = %d, want 5", data.Uint64())
	}
	if r.PC() != 2 {
		t.Fatalf("PC() = %d, want 2 after consuming PUSH1+data", r.PC())
	}

	op, err = r.Get()
	if err != nil || op != opcodes.JUMPDEST {
		t.Fatalf("Get() at pc2 = %v, %v; want JUMPDEST, nil", op, err)
	}
}

func TestReaderOutOfRange(t *testing.T) {
	code := []byte{byte(opcodes.STOP)}
	analysis := codeanalysis.Classify(code)
	r := NewReader(code, analysis)
	r.Next()
	if _, err := r.Get(); err != ErrOutOfRange {
		t.Fatalf("Get() past end = %v, want ErrOutOfRange", err)
	}
}

func TestReaderTryJumpRejectsPushData(t *testing.T) {
	code := []byte{byte(opcodes.PUSH1), byte(opcodes.JUMPDEST)}
	analysis := codeanalysis.Classify(code)
	r := NewReader(code, analysis)

	if err := r.TryJump(1); err != ErrInvalidJumpDest {
		t.Fatalf("TryJump(1) = %v, want ErrInvalidJumpDest (lands in PUSH data)", err)
	}
}

func TestReaderTryJumpAcceptsRealJumpDest(t *testing.T) {
	code := []byte{byte(opcodes.PUSH1), 0x00, byte(opcodes.JUMPDEST)}
	analysis := codeanalysis.Classify(code)
	r := NewReader(code, analysis)

	if err := r.TryJump(2); err != nil {
		t.Fatalf("TryJump(2) = %v, want nil", err)
	}
	if r.PC() != 2 {
		t.Fatalf("PC() = %d, want 2", r.PC())
	}
}

func TestReaderGetPushDataPadsTruncatedImmediate(t *testing.T) {
	code := []byte{byte(opcodes.PUSH4), 0xaa} // only 1 of 4 bytes present
	analysis := codeanalysis.Classify(code)
	r := NewReader(code, analysis)
	r.Get()
	data := r.GetPushData(4)
	b := data.Bytes32()
	if b[28] != 0xaa || b[29] != 0 || b[30] != 0 || b[31] != 0 {
		t.Fatalf("GetPushData with truncated immediate = %x, want ..aa000000", b)
	}
}

func TestSteppableReaderWalksCells(t *testing.T) {
	code := []byte{byte(opcodes.PUSH1), 0x2a, byte(opcodes.JUMPDEST), byte(opcodes.STOP)}
	analyzed := codeanalysis.Analyze(code)
	r := NewSteppableReader(analyzed)

	cell, err := r.Get()
	if err != nil || cell.Op != opcodes.PUSH1 {
		t.Fatalf("Get() = %v, %v; want PUSH1 cell", cell, err)
	}
	if cell.Data.Uint64() != 0x2a {
		t.Fatalf("cell.Data = %d, want 0x2a", cell.Data.Uint64())
	}
	if r.PC() != 0 {
		t.Fatalf("PC() = %d, want 0", r.PC())
	}

	r.Next()
	if r.PC() != 2 {
		t.Fatalf("PC() after Next() = %d, want 2 (original JUMPDEST pc)", r.PC())
	}
}

func TestSteppableReaderTryJump(t *testing.T) {
	code := []byte{byte(opcodes.PUSH1), 0x00, byte(opcodes.JUMPDEST), byte(opcodes.STOP)}
	analyzed := codeanalysis.Analyze(code)
	r := NewSteppableReader(analyzed)

	if err := r.TryJump(2); err != nil {
		t.Fatalf("TryJump(2) = %v, want nil", err)
	}
	cell, _ := r.Get()
	if cell.Op != opcodes.JUMPDEST {
		t.Fatalf("cell after TryJump = %v, want JUMPDEST", cell.Op)
	}
}

func TestSteppableReaderTryJumpRejectsPushDataPosition(t *testing.T) {
	code := []byte{byte(opcodes.PUSH1), byte(opcodes.JUMPDEST)}
	analyzed := codeanalysis.Analyze(code)
	r := NewSteppableReader(analyzed)

	if err := r.TryJump(1); err != ErrInvalidJumpDest {
		t.Fatalf("TryJump(1) = %v, want ErrInvalidJumpDest", err)
	}
}

func TestSteppableReaderOutOfRange(t *testing.T) {
	code := []byte{byte(opcodes.STOP)}
	analyzed := codeanalysis.Analyze(code)
	r := NewSteppableReader(analyzed)
	r.Next()
	if _, err := r.Get(); err != ErrOutOfRange {
		t.Fatalf("Get() past end = %v, want ErrOutOfRange", err)
	}
}
