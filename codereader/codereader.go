// Package codereader implements the interpreter's program-counter cursor
// over analyzed code. The two dispatch modes are two concrete types, Reader
// (non-steppable, walks the Classification) and SteppableReader (walks the
// Rewritten cell array), sharing the same small surface
// (Get/Next/TryJump/PC) the interpreter's dispatch loop drives.
package codereader

import (
	"errors"

	"github.com/evmgo/evmcore/codeanalysis"
	"github.com/evmgo/evmcore/opcodes"
	"github.com/evmgo/evmcore/u256"
)

// ErrOutOfRange is returned by Get when the cursor has walked past the end
// of code; the interpreter treats this identically to an explicit STOP.
var ErrOutOfRange = errors.New("codereader: pc out of range")

// ErrInvalidJumpDest is returned by TryJump when the destination is not a
// JUMPDEST that analysis reached through non-PUSH-data bytes.
var ErrInvalidJumpDest = errors.New("codereader: invalid jump destination")

// Reader walks code using the lightweight Classification analysis. This is
// the hot path used by Execute when the host did not request step-by-step
// tracing.
type Reader struct {
	code     []byte
	analysis []codeanalysis.CodeByteType
	pc       uint64
}

// NewReader builds a Reader positioned at pc 0.
func NewReader(code []byte, analysis []codeanalysis.CodeByteType) *Reader {
	return &Reader{code: code, analysis: analysis}
}

// Get returns the opcode at the current pc, or ErrOutOfRange past the end of
// code (which the interpreter's dispatch loop maps to an implicit STOP).
func (r *Reader) Get() (opcodes.OpCode, error) {
	if r.pc >= uint64(len(r.code)) {
		return 0, ErrOutOfRange
	}
	return opcodes.OpCode(r.code[r.pc]), nil
}

// Next advances pc by one byte.
func (r *Reader) Next() {
	r.pc++
}

// PC returns the current program counter.
func (r *Reader) PC() uint64 {
	return r.pc
}

// JumpTo unconditionally repositions the cursor, without the validation
// TryJump performs.
func (r *Reader) JumpTo(pc uint64) {
	r.pc = pc
}

// TryJump validates dest as a JUMP/JUMPI target and repositions the cursor
// to it. It fails if dest is out of range, lands inside a PUSH immediate, or
// is not a JUMPDEST byte.
func (r *Reader) TryJump(dest uint64) error {
	if !codeanalysis.IsValidJumpDest(r.analysis, dest) {
		return ErrInvalidJumpDest
	}
	r.pc = dest
	return nil
}

// GetPushData reads n bytes of PUSH immediate data starting the byte after
// the current pc, left-zero-padded into a 256-bit word, and advances pc past
// both the opcode and its immediate. Truncated immediates at the end of code
// are implicitly zero-padded, matching the EVM's documented PUSH semantics.
func (r *Reader) GetPushData(n int) u256.Word {
	var buf [32]byte
	start := r.pc + 1
	for i := 0; i < n; i++ {
		pos := start + uint64(i)
		if pos < uint64(len(r.code)) {
			buf[32-n+i] = r.code[pos]
		}
	}
	r.pc += uint64(1 + n)
	return u256.FromBig32(buf)
}

// SteppableReader walks code using the Rewritten cell array, so that PC can
// be reported in original-code terms (via PcMap) while dispatch itself
// indexes directly into Cells without re-decoding PUSH immediates.
type SteppableReader struct {
	analyzed *codeanalysis.Rewritten
	idx      int
}

// NewSteppableReader builds a SteppableReader positioned at cell 0.
func NewSteppableReader(analyzed *codeanalysis.Rewritten) *SteppableReader {
	return &SteppableReader{analyzed: analyzed}
}

// Get returns the current cell, or ErrOutOfRange past the end of the cell
// array.
func (r *SteppableReader) Get() (*codeanalysis.OpCell, error) {
	if r.idx >= len(r.analyzed.Cells) {
		return nil, ErrOutOfRange
	}
	return &r.analyzed.Cells[r.idx], nil
}

// Next advances to the next cell, coalescing any run of no-op placeholder
// cells (undefined opcodes that can never themselves be dispatched) in a
// single step.
func (r *SteppableReader) Next() {
	skip := codeanalysis.SkipNoOps(r.analyzed.Cells, r.idx)
	if skip == 0 {
		skip = 1
	}
	r.idx += skip
}

// PC returns the current position translated back into original code-byte
// terms, the form StepResult and host-visible diagnostics use.
func (r *SteppableReader) PC() uint64 {
	return r.analyzed.Map.ToOriginal(r.idx)
}

// TryJump validates an original-code destination and repositions the cursor
// to its rewritten cell.
func (r *SteppableReader) TryJump(dest uint64) error {
	idx, ok := r.analyzed.Map.ToRewritten(dest)
	if !ok {
		return ErrInvalidJumpDest
	}
	if r.analyzed.Cells[idx].Op != opcodes.JUMPDEST {
		return ErrInvalidJumpDest
	}
	r.idx = idx
	return nil
}

// JumpToCell unconditionally repositions the cursor to a rewritten cell
// index, without the validation TryJump performs.
func (r *SteppableReader) JumpToCell(idx int) {
	r.idx = idx
}
