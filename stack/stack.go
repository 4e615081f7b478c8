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

// Package stack implements the EVM's 1024-word operand stack. The
// pool/New/Return shape is carried over from a package-level stackPool
// backing newstack/returnStack, generalized from a fixed uint256 stack into
// the same thing this module already needed.
package stack

import (
	"fmt"
	"sync"

	"github.com/evmgo/evmcore/u256"
)

// Limit is the maximum number of words the stack may hold at once.
const Limit = 1024

// Stack is the interpreter's operand stack: a LIFO of 256-bit words.
type Stack struct {
	data []u256.Word
}

var stackPool = sync.Pool{
	New: func() interface{} {
		return &Stack{data: make([]u256.Word, 0, 16)}
	},
}

// New returns a Stack drawn from a shared pool. Callers must call Return
// when done so the backing array can be reused by a later call frame,
// matching the per-frame newstack/returnStack pairing in a dispatch loop.
func New() *Stack {
	return stackPool.Get().(*Stack)
}

// Return clears s and releases it back to the pool.
func Return(s *Stack) {
	s.data = s.data[:0]
	stackPool.Put(s)
}

// UnderflowError reports that an operation needed more operands than the
// stack held.
type UnderflowError struct {
	Len      int
	Required int
}

func (e *UnderflowError) Error() string {
	return fmt.Sprintf("stack underflow (%d <=> %d)", e.Len, e.Required)
}

// OverflowError reports that an operation would have pushed the stack past
// Limit.
type OverflowError struct {
	Len   int
	Limit int
}

func (e *OverflowError) Error() string {
	return fmt.Sprintf("stack limit reached %d (%d)", e.Len, e.Limit)
}

// Len returns the number of words currently on the stack.
func (s *Stack) Len() int {
	return len(s.data)
}

// Push appends a word to the top of the stack. Callers are responsible for
// checking capacity first (the interpreter's dispatch loop does this once
// per instruction through CheckDepth with the jump table's declared
// stackDelta, rather than checking on every Push).
func (s *Stack) Push(v *u256.Word) {
	s.data = append(s.data, *v)
}

// Pop removes and returns the top word. It panics on an empty stack; callers
// must validate minimum stack size before popping, exactly as the dispatch
// loop validates operation.minStack before invoking operation.execute.
func (s *Stack) Pop() u256.Word {
	n := len(s.data) - 1
	v := s.data[n]
	s.data = s.data[:n]
	return v
}

// Peek returns a pointer to the top word without removing it.
func (s *Stack) Peek() *u256.Word {
	return &s.data[len(s.data)-1]
}

// Back returns a pointer to the word n positions from the top (0 is the top
// itself), used by DUP and by binary/ternary opcodes that need to read
// without an intervening pop.
func (s *Stack) Back(n int) *u256.Word {
	return &s.data[len(s.data)-n-1]
}

// Dup duplicates the word n positions from the top (1-based, as in DUP1..16)
// onto the top of the stack.
func (s *Stack) Dup(n int) {
	s.data = append(s.data, s.data[len(s.data)-n])
}

// Swap exchanges the top word with the word n positions from the top
// (1-based, as in SWAP1..16).
func (s *Stack) Swap(n int) {
	top := len(s.data) - 1
	s.data[top], s.data[top-n] = s.data[top-n], s.data[top]
}

// Data exposes the underlying slice, top-of-stack last, for callers (the
// interpreter's trace hooks, call-argument readers) that need to inspect the
// whole stack rather than pop individual words.
func (s *Stack) Data() []u256.Word {
	return s.data
}

// CheckDepth validates that the stack has at least min words and, after the
// operation completes, would have at most Limit words given a net change of
// delta. It mirrors the single combined bounds check a dispatch loop
// performs via operation.minStack/stackDelta before every dispatch.
func CheckDepth(s *Stack, min, delta int) error {
	if s.Len() < min {
		return &UnderflowError{Len: s.Len(), Required: min}
	}
	if next := s.Len() + delta; next > Limit {
		return &OverflowError{Len: next, Limit: Limit}
	}
	return nil
}
