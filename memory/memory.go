// Copyright 2015 The go-ethereum Authors
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

// Package memory implements the EVM's byte-addressable, zero-extending,
// word-rounded linear memory: Resize/Set/Get/Copy over a single growable
// []byte, with gas accounting layered on top using u256.MemoryGasCost.
package memory

import (
	"github.com/evmgo/evmcore/u256"
)

// Memory is the interpreter's linear byte memory. Its length is always a
// multiple of 32; Resize is the only way to grow it, and growth is always
// rounded up to the next whole word.
type Memory struct {
	store []byte
}

// New returns an empty Memory.
func New() *Memory {
	return &Memory{}
}

// Len returns the current size of memory in bytes.
func (m *Memory) Len() int {
	return len(m.store)
}

// WordCount returns the current size of memory in 32-byte words.
func (m *Memory) WordCount() uint64 {
	return uint64(len(m.store)) / 32
}

// Data returns the whole backing buffer. Callers must not retain slices of
// it across a subsequent Resize, since growth may reallocate.
func (m *Memory) Data() []byte {
	return m.store
}

// ExpansionCost returns the additional gas required to grow memory to at
// least size bytes, rounded up to the next whole word (0 if memory is
// already at least that large). It performs no allocation itself: callers
// charge the cost first and only then Resize, so an absurd size is rejected
// as out-of-gas before any attempt to allocate it. The result saturates
// rather than wrapping for sizes near the uint64 limit.
func (m *Memory) ExpansionCost(size uint64) uint64 {
	if size == 0 || uint64(len(m.store)) >= size {
		return 0
	}
	before := u256.WordCount(uint64(len(m.store)))
	after := u256.WordCount(size)
	return u256.MemoryGasCost(after) - u256.MemoryGasCost(before)
}

// Resize grows memory so that it is at least size bytes long, rounding up
// to the next whole word and zero-filling the new bytes. A zero-length
// access never expands memory, matching the EVM rule that e.g. a
// zero-length copy at a large offset costs nothing beyond the static
// opcode fee. Callers must have charged ExpansionCost(size) first.
func (m *Memory) Resize(size uint64) {
	if size == 0 || uint64(len(m.store)) >= size {
		return
	}
	newStore := make([]byte, u256.WordCount(size)*32)
	copy(newStore, m.store)
	m.store = newStore
}

// Set writes data into memory starting at offset. Memory must already be
// large enough; callers Resize(offset+len(data)) first.
func (m *Memory) Set(offset, size uint64, data []byte) {
	if size == 0 {
		return
	}
	copy(m.store[offset:offset+size], data)
}

// Set32 writes val as a big-endian 32-byte word starting at offset.
func (m *Memory) Set32(offset uint64, val *u256.Word) {
	b := val.Bytes32()
	copy(m.store[offset:offset+32], b[:])
}

// GetCopy returns a fresh copy of the size bytes of memory starting at
// offset. A zero size always returns nil, matching geth's GetCopy.
func (m *Memory) GetCopy(offset, size uint64) []byte {
	if size == 0 {
		return nil
	}
	out := make([]byte, size)
	copy(out, m.store[offset:offset+size])
	return out
}

// GetPtr returns a slice aliasing memory directly, for callers (MLOAD, SHA3,
// and the CALL family's return-data copy) that use the slice before any
// subsequent Resize.
func (m *Memory) GetPtr(offset, size uint64) []byte {
	if size == 0 {
		return nil
	}
	return m.store[offset : offset+size]
}

// Copy implements MCOPY's memory-to-memory copy semantics (EIP-5656):
// correct even when the source and destination regions overlap, in either
// direction.
func (m *Memory) Copy(dst, src, size uint64) {
	if size == 0 {
		return
	}
	copy(m.store[dst:dst+size], m.store[src:src+size])
}
