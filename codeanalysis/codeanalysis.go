// Package codeanalysis implements the one-time linear scan over contract
// bytecode that classifies each byte before execution begins. Two flavors
// are produced from the same scan: a lightweight Classification (one
// CodeByteType per code byte, used by the non-steppable dispatch path) and a
// Rewritten analysis (a dense array of OpCell, each pairing a dispatch
// handler slot with its inline PUSH operand, plus a PcMap translating
// between original and rewritten program counters).
package codeanalysis

import (
	"github.com/evmgo/evmcore/opcodes"
	"github.com/evmgo/evmcore/u256"
)

// CodeByteType classifies a single byte position in contract code.
type CodeByteType uint8

const (
	// Opcode marks a byte that begins a defined instruction other than
	// JUMPDEST (PUSHn included; its immediate bytes are DataOrInvalid).
	Opcode CodeByteType = iota
	// JumpDest marks a byte that is a valid JUMP/JUMPI target.
	JumpDest
	// DataOrInvalid marks a byte that is either a PUSH immediate or an
	// undefined opcode. JUMP/JUMPI to such a position must fail.
	DataOrInvalid
)

func (t CodeByteType) String() string {
	switch t {
	case Opcode:
		return "Opcode"
	case JumpDest:
		return "JumpDest"
	case DataOrInvalid:
		return "DataOrInvalid"
	default:
		return "Unknown"
	}
}

// Classify runs the linear classification scan and returns one CodeByteType
// per byte of code. PUSH immediates are always classified DataOrInvalid,
// regardless of what value they hold, so that a JUMPDEST byte sitting inside
// a PUSH's data is never treated as a valid jump target.
func Classify(code []byte) []CodeByteType {
	out := make([]CodeByteType, len(code))
	i := 0
	for i < len(code) {
		b := opcodes.OpCode(code[i])
		switch {
		case b == opcodes.JUMPDEST:
			out[i] = JumpDest
			i++
		default:
			if n, ok := opcodes.IsPush(b); ok {
				out[i] = Opcode
				i++
				end := i + n
				if end > len(code) {
					end = len(code)
				}
				for ; i < end; i++ {
					out[i] = DataOrInvalid
				}
				continue
			}
			if opcodes.IsDefined(b) {
				out[i] = Opcode
			} else {
				out[i] = DataOrInvalid
			}
			i++
		}
	}
	return out
}

// IsValidJumpDest reports whether pc is both in range and classified
// JumpDest by analysis.
func IsValidJumpDest(analysis []CodeByteType, pc uint64) bool {
	return pc < uint64(len(analysis)) && analysis[pc] == JumpDest
}

// OpCell is one entry of a Rewritten analysis: a dense, PUSH-immediate-free
// representation of the code stream. Non-PUSH instructions carry a zero
// Data; PUSH instructions carry their (left-zero-padded) operand pre-parsed
// into a Word so the interpreter never has to re-read code bytes at
// execution time. A cell with Op == opcodes.INVALID and NotReached true
// stands in for an undefined-opcode byte, which can never be a jump target.
type OpCell struct {
	Op         opcodes.OpCode
	Data       u256.Word
	NotReached bool
}

// IsNoOp reports whether this cell is the placeholder for an
// undefined-opcode byte (PUSH immediates have no cells of their own).
func (c *OpCell) IsNoOp() bool {
	return c.NotReached
}

// PcMap translates between the program counter space of the original code
// (what JUMP/JUMPI operate on and what the host sees) and the rewritten
// cell-array index space the interpreter's inner loop actually steps
// through. It is a bijection between the cells and the byte positions that
// start one: every Opcode or JumpDest position in the Classification, plus
// each undefined-opcode byte, which maps to its placeholder cell.
// ToRewritten(pc) is not defined for PUSH-immediate positions.
type PcMap struct {
	// origToCell[pc] gives the rewritten index for original pc, or -1 if pc
	// is not a valid instruction start (PUSH data, or past the end of code).
	origToCell []int32
	// cellToOrig[idx] gives the original pc for rewritten index idx.
	cellToOrig []uint64
}

// ToRewritten maps an original-code program counter to its rewritten cell
// index. ok is false for PUSH-data positions and out-of-range PCs.
func (m *PcMap) ToRewritten(pc uint64) (idx int, ok bool) {
	if pc >= uint64(len(m.origToCell)) {
		return 0, false
	}
	v := m.origToCell[pc]
	if v < 0 {
		return 0, false
	}
	return int(v), true
}

// ToOriginal maps a rewritten cell index back to its original program
// counter. Used to report PC in StepResult and in error diagnostics.
func (m *PcMap) ToOriginal(idx int) uint64 {
	if idx < 0 || idx >= len(m.cellToOrig) {
		return uint64(len(m.origToCell))
	}
	return m.cellToOrig[idx]
}

// Len returns the number of entries in the rewritten cell space.
func (m *PcMap) Len() int {
	return len(m.cellToOrig)
}

// Rewritten is the dense, PUSH-immediate-free analysis of a contract's code:
// one OpCell per reachable instruction, in original-code order, plus the
// PcMap needed to translate JUMP targets into cell indices.
type Rewritten struct {
	Cells []OpCell
	Map   *PcMap
}

// Analyze produces the Rewritten analysis for code. It is the single-pass
// twin of Classify: every reachable instruction becomes exactly one OpCell,
// and PUSH immediates are folded into the preceding PUSH cell's Data instead
// of occupying cells of their own.
func Analyze(code []byte) *Rewritten {
	origToCell := make([]int32, len(code))
	for i := range origToCell {
		origToCell[i] = -1
	}
	cells := make([]OpCell, 0, len(code))
	cellToOrig := make([]uint64, 0, len(code))

	i := 0
	for i < len(code) {
		origPC := uint64(i)
		b := opcodes.OpCode(code[i])

		if n, ok := opcodes.IsPush(b); ok {
			var data [32]byte
			end := i + 1 + n
			if end > len(code) {
				end = len(code)
			}
			copy(data[32-n:], code[i+1:end])
			origToCell[origPC] = int32(len(cells))
			cells = append(cells, OpCell{Op: b, Data: u256.FromBig32(data)})
			cellToOrig = append(cellToOrig, origPC)
			i = end
			continue
		}

		if b == opcodes.JUMPDEST || opcodes.IsDefined(b) {
			origToCell[origPC] = int32(len(cells))
			cells = append(cells, OpCell{Op: b})
			cellToOrig = append(cellToOrig, origPC)
			i++
			continue
		}

		// Undefined opcode: still occupies one cell so execution reaching it
		// dispatches to an explicit invalid-instruction failure, but it is
		// never a valid jump target and carries no data.
		origToCell[origPC] = int32(len(cells))
		cells = append(cells, OpCell{Op: opcodes.INVALID, NotReached: true})
		cellToOrig = append(cellToOrig, origPC)
		i++
	}

	return &Rewritten{
		Cells: cells,
		Map:   &PcMap{origToCell: origToCell, cellToOrig: cellToOrig},
	}
}

// SkipNoOps returns the number of consecutive IsNoOp cells starting at idx,
// i.e. how many cells a steppable dispatch loop may coalesce into a single
// "no-op run" step without affecting observable state. Because Analyze
// folds PUSH data into its owning cell, the only no-op cells are the
// placeholders for undefined-opcode bytes, so the count is the length of a
// run of consecutive undefined bytes.
func SkipNoOps(cells []OpCell, idx int) int {
	n := 0
	for idx+n < len(cells) && cells[idx+n].IsNoOp() {
		n++
	}
	return n
}
