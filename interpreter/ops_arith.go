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
	register(opcodes.STOP, &operation{
		constantGas: GasZero,
		execute: func(f *Frame) error {
			f.status = Stopped
			return nil
		},
	})

	register(opcodes.ADD, &operation{
		constantGas: GasVeryLow,
		minStack:    2,
		stackDelta:  -1,
		execute: func(f *Frame) error {
			x := f.stack.Pop()
			y := f.stack.Peek()
			y.Add(&x, y)
			return nil
		},
	})

	register(opcodes.MUL, &operation{
		constantGas: GasLow,
		minStack:    2,
		stackDelta:  -1,
		execute: func(f *Frame) error {
			x := f.stack.Pop()
			y := f.stack.Peek()
			y.Mul(&x, y)
			return nil
		},
	})

	register(opcodes.SUB, &operation{
		constantGas: GasVeryLow,
		minStack:    2,
		stackDelta:  -1,
		execute: func(f *Frame) error {
			x := f.stack.Pop()
			y := f.stack.Peek()
			y.Sub(&x, y)
			return nil
		},
	})

	register(opcodes.DIV, &operation{
		constantGas: GasLow,
		minStack:    2,
		stackDelta:  -1,
		execute: func(f *Frame) error {
			x := f.stack.Pop()
			y := f.stack.Peek()
			y.Div(&x, y)
			return nil
		},
	})

	register(opcodes.SDIV, &operation{
		constantGas: GasLow,
		minStack:    2,
		stackDelta:  -1,
		execute: func(f *Frame) error {
			x := f.stack.Pop()
			y := f.stack.Peek()
			y.SDiv(&x, y)
			return nil
		},
	})

	register(opcodes.MOD, &operation{
		constantGas: GasLow,
		minStack:    2,
		stackDelta:  -1,
		execute: func(f *Frame) error {
			x := f.stack.Pop()
			y := f.stack.Peek()
			y.Mod(&x, y)
			return nil
		},
	})

	register(opcodes.SMOD, &operation{
		constantGas: GasLow,
		minStack:    2,
		stackDelta:  -1,
		execute: func(f *Frame) error {
			x := f.stack.Pop()
			y := f.stack.Peek()
			y.SMod(&x, y)
			return nil
		},
	})

	register(opcodes.ADDMOD, &operation{
		constantGas: GasMid,
		minStack:    3,
		stackDelta:  -2,
		execute: func(f *Frame) error {
			x := f.stack.Pop()
			y := f.stack.Pop()
			z := f.stack.Peek()
			z.AddMod(&x, &y, z)
			return nil
		},
	})

	register(opcodes.MULMOD, &operation{
		constantGas: GasMid,
		minStack:    3,
		stackDelta:  -2,
		execute: func(f *Frame) error {
			x := f.stack.Pop()
			y := f.stack.Pop()
			z := f.stack.Peek()
			z.MulMod(&x, &y, z)
			return nil
		},
	})

	register(opcodes.EXP, &operation{
		constantGas: GasHigh,
		minStack:    2,
		stackDelta:  -1,
		dynamicGas: func(f *Frame) (uint64, error) {
			exponent := f.stack.Back(1)
			byteLen := uint64((exponent.BitLen() + 7) / 8)
			return byteLen * expByteCost(f.revision), nil
		},
		execute: func(f *Frame) error {
			base := f.stack.Pop()
			exponent := f.stack.Peek()
			exponent.Exp(&base, exponent)
			return nil
		},
	})

	register(opcodes.SIGNEXTEND, &operation{
		constantGas: GasLow,
		minStack:    2,
		stackDelta:  -1,
		execute: func(f *Frame) error {
			back := f.stack.Pop()
			num := f.stack.Peek()
			num.ExtendSign(num, &back)
			return nil
		},
	})

	register(opcodes.LT, &operation{
		constantGas: GasVeryLow,
		minStack:    2,
		stackDelta:  -1,
		execute: func(f *Frame) error {
			x := f.stack.Pop()
			y := f.stack.Peek()
			setBool(y, x.Lt(y))
			return nil
		},
	})

	register(opcodes.GT, &operation{
		constantGas: GasVeryLow,
		minStack:    2,
		stackDelta:  -1,
		execute: func(f *Frame) error {
			x := f.stack.Pop()
			y := f.stack.Peek()
			setBool(y, x.Gt(y))
			return nil
		},
	})

	register(opcodes.SLT, &operation{
		constantGas: GasVeryLow,
		minStack:    2,
		stackDelta:  -1,
		execute: func(f *Frame) error {
			x := f.stack.Pop()
			y := f.stack.Peek()
			setBool(y, x.Slt(y))
			return nil
		},
	})

	register(opcodes.SGT, &operation{
		constantGas: GasVeryLow,
		minStack:    2,
		stackDelta:  -1,
		execute: func(f *Frame) error {
			x := f.stack.Pop()
			y := f.stack.Peek()
			setBool(y, x.Sgt(y))
			return nil
		},
	})

	register(opcodes.EQ, &operation{
		constantGas: GasVeryLow,
		minStack:    2,
		stackDelta:  -1,
		execute: func(f *Frame) error {
			x := f.stack.Pop()
			y := f.stack.Peek()
			setBool(y, x.Eq(y))
			return nil
		},
	})

	register(opcodes.ISZERO, &operation{
		constantGas: GasVeryLow,
		minStack:    1,
		stackDelta:  0,
		execute: func(f *Frame) error {
			x := f.stack.Peek()
			setBool(x, x.IsZero())
			return nil
		},
	})
}

// setBool overwrites z with 1 if b, 0 otherwise, the pattern every
// comparison opcode uses to turn its boolean result back into a u256.
func setBool(z *u256.Word, b bool) {
	if b {
		z.SetOne()
	} else {
		z.Clear()
	}
}
