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

import "github.com/evmgo/evmcore/opcodes"

func init() {
	register(opcodes.SHA3, &operation{
		constantGas: GasSha3,
		minStack:    2,
		stackDelta:  -1,
		dynamicGas: func(f *Frame) (uint64, error) {
			offsetW, sizeW := f.stack.Back(0), f.stack.Back(1)
			offset, size, ok := memRange(offsetW, sizeW)
			if !ok {
				return 0, fail(FailInvalidMemoryAccess)
			}
			words := (size + 31) / 32
			if !f.ensureMemory(offset + size) {
				return 0, fail(FailOutOfGas)
			}
			return words * GasSha3Word, nil
		},
		execute: func(f *Frame) error {
			offsetW := f.stack.Pop()
			sizeW := f.stack.Peek()
			offset, size, ok := memRange(&offsetW, sizeW)
			if !ok {
				return fail(FailInvalidMemoryAccess)
			}
			data := f.mem.GetPtr(offset, size)
			digest := f.hashes.Hash(data)
			*sizeW = digest
			return nil
		},
	})
}
