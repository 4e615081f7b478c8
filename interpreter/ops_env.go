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
	"math"

	"github.com/evmgo/evmcore/evmc"
	"github.com/evmgo/evmcore/opcodes"
	"github.com/evmgo/evmcore/u256"
)

func init() {
	register(opcodes.ADDRESS, &operation{
		constantGas: GasBase,
		stackDelta:  1,
		execute: func(f *Frame) error {
			pushAddress(f.stack, f.msg.Destination)
			return nil
		},
	})

	register(opcodes.BALANCE, &operation{
		constantGas: 0,
		minStack:    1,
		stackDelta:  0,
		dynamicGas: func(f *Frame) (uint64, error) {
			addr := addrFromWord(f.stack.Back(0))
			return balanceCost(f.revision, f.warmAccount(addr)), nil
		},
		execute: func(f *Frame) error {
			addr := popAddress(f.stack)
			bal := f.ctx.Host().GetBalance(addr)
			f.stack.Push(&bal)
			return nil
		},
	})

	register(opcodes.ORIGIN, &operation{
		constantGas: GasBase,
		stackDelta:  1,
		execute: func(f *Frame) error {
			pushAddress(f.stack, f.ctx.TxContext().Origin)
			return nil
		},
	})

	register(opcodes.CALLER, &operation{
		constantGas: GasBase,
		stackDelta:  1,
		execute: func(f *Frame) error {
			pushAddress(f.stack, f.msg.Sender)
			return nil
		},
	})

	register(opcodes.CALLVALUE, &operation{
		constantGas: GasBase,
		stackDelta:  1,
		execute: func(f *Frame) error {
			v := f.msg.Value
			f.stack.Push(&v)
			return nil
		},
	})

	register(opcodes.CALLDATALOAD, &operation{
		constantGas: GasVeryLow,
		minStack:    1,
		stackDelta:  0,
		execute: func(f *Frame) error {
			offW := f.stack.Peek()
			var buf [32]byte
			if offW.IsUint64() {
				off := offW.Uint64()
				for i := 0; i < 32; i++ {
					pos := off + uint64(i)
					if pos < uint64(len(f.msg.Input)) {
						buf[i] = f.msg.Input[pos]
					}
				}
			}
			w := u256.FromBig32(buf)
			*offW = w
			return nil
		},
	})

	register(opcodes.CALLDATASIZE, &operation{
		constantGas: GasBase,
		stackDelta:  1,
		execute: func(f *Frame) error {
			var w u256.Word
			w.SetUint64(uint64(len(f.msg.Input)))
			f.stack.Push(&w)
			return nil
		},
	})

	register(opcodes.CALLDATACOPY, &operation{
		constantGas: GasVeryLow,
		minStack:    3,
		stackDelta:  -3,
		dynamicGas:  copyDynamicGas,
		execute: func(f *Frame) error {
			return execCopy(f, f.msg.Input)
		},
	})

	register(opcodes.CODESIZE, &operation{
		constantGas: GasBase,
		stackDelta:  1,
		execute: func(f *Frame) error {
			var w u256.Word
			w.SetUint64(uint64(len(f.code)))
			f.stack.Push(&w)
			return nil
		},
	})

	register(opcodes.CODECOPY, &operation{
		constantGas: GasVeryLow,
		minStack:    3,
		stackDelta:  -3,
		dynamicGas:  copyDynamicGas,
		execute: func(f *Frame) error {
			return execCopy(f, f.code)
		},
	})

	register(opcodes.GASPRICE, &operation{
		constantGas: GasBase,
		stackDelta:  1,
		execute: func(f *Frame) error {
			p := f.ctx.TxContext().GasPrice
			f.stack.Push(&p)
			return nil
		},
	})

	register(opcodes.EXTCODESIZE, &operation{
		constantGas: 0,
		minStack:    1,
		stackDelta:  0,
		dynamicGas: func(f *Frame) (uint64, error) {
			addr := addrFromWord(f.stack.Back(0))
			return accountAccessCost(f.revision, f.warmAccount(addr)), nil
		},
		execute: func(f *Frame) error {
			addr := popAddress(f.stack)
			var w u256.Word
			w.SetUint64(f.ctx.Host().GetCodeSize(addr))
			f.stack.Push(&w)
			return nil
		},
	})

	register(opcodes.EXTCODEHASH, &operation{
		constantGas: 0,
		minRevision: evmc.Constantinople,
		minStack:    1,
		stackDelta:  0,
		dynamicGas: func(f *Frame) (uint64, error) {
			addr := addrFromWord(f.stack.Back(0))
			return extcodeHashCost(f.revision, f.warmAccount(addr)), nil
		},
		execute: func(f *Frame) error {
			addr := popAddress(f.stack)
			h := f.ctx.Host().GetCodeHash(addr)
			f.stack.Push(&h)
			return nil
		},
	})

	register(opcodes.EXTCODECOPY, &operation{
		constantGas: 0,
		minStack:    4,
		stackDelta:  -4,
		dynamicGas: func(f *Frame) (uint64, error) {
			addr := addrFromWord(f.stack.Back(0))
			destW, sizeW := f.stack.Back(1), f.stack.Back(3)
			dest, size, ok := memRange(destW, sizeW)
			if !ok {
				return 0, fail(FailInvalidMemoryAccess)
			}
			if !f.ensureMemory(dest + size) {
				return 0, fail(FailOutOfGas)
			}
			words := (size + 31) / 32
			return accountAccessCost(f.revision, f.warmAccount(addr)) + words*GasCopy, nil
		},
		execute: func(f *Frame) error {
			addr := popAddress(f.stack)
			destW := f.stack.Pop()
			offW := f.stack.Pop()
			sizeW := f.stack.Pop()
			dest, size, ok := memRange(&destW, &sizeW)
			if !ok {
				return fail(FailInvalidMemoryAccess)
			}
			if size == 0 {
				return nil
			}
			buf := make([]byte, size)
			if offW.IsUint64() {
				f.ctx.Host().CopyCode(addr, offW.Uint64(), buf)
			}
			f.mem.Set(dest, size, buf)
			return nil
		},
	})

	register(opcodes.RETURNDATASIZE, &operation{
		constantGas: GasBase,
		minRevision: evmc.Byzantium,
		stackDelta:  1,
		execute: func(f *Frame) error {
			var w u256.Word
			w.SetUint64(uint64(len(f.returnData)))
			f.stack.Push(&w)
			return nil
		},
	})

	register(opcodes.RETURNDATACOPY, &operation{
		constantGas: GasVeryLow,
		minRevision: evmc.Byzantium,
		minStack:    3,
		stackDelta:  -3,
		dynamicGas: func(f *Frame) (uint64, error) {
			destW, offW, sizeW := f.stack.Back(0), f.stack.Back(1), f.stack.Back(2)
			dest, size, ok := memRange(destW, sizeW)
			if !ok {
				return 0, fail(FailInvalidMemoryAccess)
			}
			if !offW.IsUint64() || offW.Uint64()+size > uint64(len(f.returnData)) {
				return 0, fail(FailInvalidMemoryAccess)
			}
			if !f.ensureMemory(dest + size) {
				return 0, fail(FailOutOfGas)
			}
			words := (size + 31) / 32
			return words * GasCopy, nil
		},
		execute: func(f *Frame) error {
			return execCopy(f, f.returnData)
		},
	})

	register(opcodes.BLOCKHASH, &operation{
		constantGas: 20,
		minStack:    1,
		stackDelta:  0,
		execute: func(f *Frame) error {
			numW := f.stack.Peek()
			var h u256.Word
			if numW.IsUint64() && numW.Uint64() <= math.MaxInt64 {
				h = f.ctx.Host().GetBlockHash(int64(numW.Uint64()))
			}
			*numW = h
			return nil
		},
	})

	register(opcodes.COINBASE, &operation{
		constantGas: GasBase,
		stackDelta:  1,
		execute: func(f *Frame) error {
			pushAddress(f.stack, f.ctx.TxContext().Coinbase)
			return nil
		},
	})

	register(opcodes.TIMESTAMP, &operation{
		constantGas: GasBase,
		stackDelta:  1,
		execute: func(f *Frame) error {
			var w u256.Word
			w.SetUint64(uint64(f.ctx.TxContext().BlockTimestamp))
			f.stack.Push(&w)
			return nil
		},
	})

	register(opcodes.NUMBER, &operation{
		constantGas: GasBase,
		stackDelta:  1,
		execute: func(f *Frame) error {
			var w u256.Word
			w.SetUint64(uint64(f.ctx.TxContext().BlockNumber))
			f.stack.Push(&w)
			return nil
		},
	})

	register(opcodes.PREVRANDAO, &operation{
		constantGas: GasBase,
		stackDelta:  1,
		execute: func(f *Frame) error {
			v := f.ctx.TxContext().BlockPrevRandao
			f.stack.Push(&v)
			return nil
		},
	})

	register(opcodes.GASLIMIT, &operation{
		constantGas: GasBase,
		stackDelta:  1,
		execute: func(f *Frame) error {
			var w u256.Word
			w.SetUint64(uint64(f.ctx.TxContext().BlockGasLimit))
			f.stack.Push(&w)
			return nil
		},
	})

	register(opcodes.CHAINID, &operation{
		constantGas: GasBase,
		minRevision: evmc.Istanbul,
		stackDelta:  1,
		execute: func(f *Frame) error {
			v := f.ctx.TxContext().ChainID
			f.stack.Push(&v)
			return nil
		},
	})

	register(opcodes.SELFBALANCE, &operation{
		constantGas: 0,
		minRevision: evmc.Istanbul,
		stackDelta:  1,
		dynamicGas: func(f *Frame) (uint64, error) {
			return selfBalanceCost(f.revision), nil
		},
		execute: func(f *Frame) error {
			bal := f.ctx.Host().GetBalance(f.msg.Destination)
			f.stack.Push(&bal)
			return nil
		},
	})

	register(opcodes.BASEFEE, &operation{
		constantGas: GasBase,
		minRevision: evmc.London,
		stackDelta:  1,
		execute: func(f *Frame) error {
			v := f.ctx.TxContext().BaseFee
			f.stack.Push(&v)
			return nil
		},
	})

	register(opcodes.BLOBBASEFEE, &operation{
		constantGas: GasBase,
		minRevision: evmc.Cancun,
		stackDelta:  1,
		execute: func(f *Frame) error {
			v := f.ctx.TxContext().BlobBaseFee
			f.stack.Push(&v)
			return nil
		},
	})

	register(opcodes.BLOBHASH, &operation{
		constantGas: GasVeryLow,
		minRevision: evmc.Cancun,
		minStack:    1,
		stackDelta:  0,
		execute: func(f *Frame) error {
			// Versioned blob hashes (EIP-4844) are out of this module's
			// scope (no blob-carrying transaction model); always absent.
			idx := f.stack.Peek()
			idx.Clear()
			return nil
		},
	})
}

// copyDynamicGas is shared by CALLDATACOPY/CODECOPY: 3 gas per word copied
// plus memory expansion.
func copyDynamicGas(f *Frame) (uint64, error) {
	destW, _, sizeW := f.stack.Back(0), f.stack.Back(1), f.stack.Back(2)
	dest, size, ok := memRange(destW, sizeW)
	if !ok {
		return 0, fail(FailInvalidMemoryAccess)
	}
	if !f.ensureMemory(dest + size) {
		return 0, fail(FailOutOfGas)
	}
	words := (size + 31) / 32
	return words * GasCopy, nil
}

// execCopy implements the common CALLDATACOPY/CODECOPY/RETURNDATACOPY body:
// pop (destOffset, srcOffset, size) and copy size bytes from src (zero-
// padded past its end) into memory at destOffset.
func execCopy(f *Frame, src []byte) error {
	destW := f.stack.Pop()
	offW := f.stack.Pop()
	sizeW := f.stack.Pop()
	dest, size, ok := memRange(&destW, &sizeW)
	if !ok {
		return fail(FailInvalidMemoryAccess)
	}
	if size == 0 {
		return nil
	}
	buf := make([]byte, size)
	if offW.IsUint64() {
		off := offW.Uint64()
		for i := uint64(0); i < size; i++ {
			pos := off + i
			if pos < uint64(len(src)) {
				buf[i] = src[pos]
			}
		}
	}
	f.mem.Set(dest, size, buf)
	return nil
}

func addrFromWord(w *u256.Word) [20]byte {
	b := w.Bytes32()
	var addr [20]byte
	copy(addr[:], b[12:])
	return addr
}

// warmAccount marks addr accessed for EIP-2929 purposes and reports whether
// it was already warm (so the access itself was free).
func (f *Frame) warmAccount(addr [20]byte) bool {
	return f.ctx.Host().AccessAccount(addr) == evmc.AccessWarm
}
