// Copyright 2014 The go-ethereum Authors
// This file is part of the go-ethereum library.
//
// The go-ethereum library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-ethereum library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-ethereum library. If not, see <http://www.gnu.org/licenses/>.

package interpreter

import (
	"github.com/evmgo/evmcore/evmc"
	"github.com/evmgo/evmcore/opcodes"
)

// operation is one jump table entry: the constant/dynamic gas split plus
// stack-bounds metadata the dispatch loop checks before running execute.
type operation struct {
	execute func(f *Frame) error
	// constantGas is charged unconditionally before execute runs.
	constantGas uint64
	// dynamicGas, if set, is evaluated (and charged) after constantGas and
	// before execute; it may also fail the frame outright (e.g. a memory
	// size computation that would overflow gas accounting).
	dynamicGas func(f *Frame) (uint64, error)
	// minStack is the number of operands this opcode requires.
	minStack int
	// stackDelta is pushes minus pops; used to reject an operation that
	// would grow the stack past its 1024-word limit before any mutation
	// happens.
	stackDelta int
	// movesPC is true for opcodes that reposition the cursor themselves
	// (JUMP, JUMPI, PUSH1..32); the dispatch loop skips its own Next() call
	// for these.
	movesPC bool
	// minRevision is the first revision in which this opcode exists; the
	// dispatch loop treats the byte as an undefined instruction under
	// earlier revisions. The zero value (Frontier) means always available.
	minRevision evmc.Revision
}

// jumpTable is revision-agnostic: every opcode this module implements has
// exactly one entry. Availability (e.g. PUSH0) is gated by the entry's
// minRevision, which the dispatch loop checks; revision-dependent costs and
// limits (warm/cold cost, EIP-3860 limits) are decided inside the entry's
// dynamicGas or execute function by consulting f.revision, rather than by
// maintaining a separate jump table per revision.
var jumpTable = make(map[opcodes.OpCode]*operation)

func register(op opcodes.OpCode, o *operation) {
	jumpTable[op] = o
}
