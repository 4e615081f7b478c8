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

func init() {
	register(opcodes.AND, &operation{
		constantGas: GasVeryLow,
		minStack:    2,
		stackDelta:  -1,
		execute: func(f *Frame) error {
			x := f.stack.Pop()
			y := f.stack.Peek()
			y.And(&x, y)
			return nil
		},
	})

	register(opcodes.OR, &operation{
		constantGas: GasVeryLow,
		minStack:    2,
		stackDelta:  -1,
		execute: func(f *Frame) error {
			x := f.stack.Pop()
			y := f.stack.Peek()
			y.Or(&x, y)
			return nil
		},
	})

	register(opcodes.XOR, &operation{
		constantGas: GasVeryLow,
		minStack:    2,
		stackDelta:  -1,
		execute: func(f *Frame) error {
			x := f.stack.Pop()
			y := f.stack.Peek()
			y.Xor(&x, y)
			return nil
		},
	})

	register(opcodes.NOT, &operation{
		constantGas: GasVeryLow,
		minStack:    1,
		stackDelta:  0,
		execute: func(f *Frame) error {
			x := f.stack.Peek()
			x.Not(x)
			return nil
		},
	})

	register(opcodes.BYTE, &operation{
		constantGas: GasVeryLow,
		minStack:    2,
		stackDelta:  -1,
		execute: func(f *Frame) error {
			th := f.stack.Pop()
			val := f.stack.Peek()
			val.Byte(&th)
			return nil
		},
	})

	register(opcodes.SHL, &operation{
		constantGas: GasVeryLow,
		minRevision: evmc.Constantinople,
		minStack:    2,
		stackDelta:  -1,
		execute: func(f *Frame) error {
			shift := f.stack.Pop()
			value := f.stack.Peek()
			if shift.LtUint64(256) {
				value.Lsh(value, uint(shift.Uint64()))
			} else {
				value.Clear()
			}
			return nil
		},
	})

	register(opcodes.SHR, &operation{
		constantGas: GasVeryLow,
		minRevision: evmc.Constantinople,
		minStack:    2,
		stackDelta:  -1,
		execute: func(f *Frame) error {
			shift := f.stack.Pop()
			value := f.stack.Peek()
			if shift.LtUint64(256) {
				value.Rsh(value, uint(shift.Uint64()))
			} else {
				value.Clear()
			}
			return nil
		},
	})

	register(opcodes.SAR, &operation{
		constantGas: GasVeryLow,
		minRevision: evmc.Constantinople,
		minStack:    2,
		stackDelta:  -1,
		execute: func(f *Frame) error {
			shift := f.stack.Pop()
			value := f.stack.Peek()
			if shift.GtUint64(256) {
				if value.Sign() >= 0 {
					value.Clear()
				} else {
					value.SetAllOne()
				}
				return nil
			}
			value.SRsh(value, uint(shift.Uint64()))
			return nil
		},
	})
}
