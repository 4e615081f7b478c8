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
	"github.com/evmgo/evmcore/opcodes"
	"github.com/evmgo/evmcore/u256"
)

func init() {
	for i := 0; i <= 4; i++ {
		registerLog(i)
	}
}

func registerLog(topics int) {
	op := opcodes.LOG0 + opcodes.OpCode(topics)
	register(op, &operation{
		minStack:   2 + topics,
		stackDelta: -(2 + topics),
		dynamicGas: func(f *Frame) (uint64, error) {
			if f.static {
				return 0, fail(FailStaticModeViolation)
			}
			offW, sizeW := f.stack.Back(0), f.stack.Back(1)
			offset, size, ok := memRange(offW, sizeW)
			if !ok {
				return 0, fail(FailInvalidMemoryAccess)
			}
			if !f.ensureMemory(offset + size) {
				return 0, fail(FailOutOfGas)
			}
			return GasLog + uint64(topics)*GasLogTopic + size*GasLogByte, nil
		},
		execute: func(f *Frame) error {
			offW := f.stack.Pop()
			sizeW := f.stack.Pop()
			topicsData := make([]u256.Word, topics)
			for i := 0; i < topics; i++ {
				topicsData[i] = f.stack.Pop()
			}
			offset, size, ok := memRange(&offW, &sizeW)
			if !ok {
				return fail(FailInvalidMemoryAccess)
			}
			data := f.mem.GetCopy(offset, size)
			f.ctx.Host().EmitLog(f.msg.Destination, topicsData, data)
			return nil
		},
	})
}
