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
	"github.com/evmgo/evmcore/u256"
)

func init() {
	register(opcodes.POP, &operation{
		constantGas: GasBase,
		minStack:    1,
		stackDelta:  -1,
		execute: func(f *Frame) error {
			f.stack.Pop()
			return nil
		},
	})

	register(opcodes.MLOAD, &operation{
		constantGas: GasVeryLow,
		minStack:    1,
		stackDelta:  0,
		dynamicGas: func(f *Frame) (uint64, error) {
			offW := f.stack.Back(0)
			if !offW.IsUint64() || offW.Uint64() > maxMemOffset {
				return 0, fail(FailInvalidMemoryAccess)
			}
			if !f.ensureMemory(offW.Uint64() + 32) {
				return 0, fail(FailOutOfGas)
			}
			return 0, nil
		},
		execute: func(f *Frame) error {
			offW := f.stack.Peek()
			off := offW.Uint64()
			var w u256.Word
			w.SetBytes(f.mem.GetPtr(off, 32))
			*offW = w
			return nil
		},
	})

	register(opcodes.MSTORE, &operation{
		constantGas: GasVeryLow,
		minStack:    2,
		stackDelta:  -2,
		dynamicGas: func(f *Frame) (uint64, error) {
			offW := f.stack.Back(0)
			if !offW.IsUint64() || offW.Uint64() > maxMemOffset {
				return 0, fail(FailInvalidMemoryAccess)
			}
			if !f.ensureMemory(offW.Uint64() + 32) {
				return 0, fail(FailOutOfGas)
			}
			return 0, nil
		},
		execute: func(f *Frame) error {
			offW := f.stack.Pop()
			val := f.stack.Pop()
			f.mem.Set32(offW.Uint64(), &val)
			return nil
		},
	})

	register(opcodes.MSTORE8, &operation{
		constantGas: GasVeryLow,
		minStack:    2,
		stackDelta:  -2,
		dynamicGas: func(f *Frame) (uint64, error) {
			offW := f.stack.Back(0)
			if !offW.IsUint64() || offW.Uint64() > maxMemOffset {
				return 0, fail(FailInvalidMemoryAccess)
			}
			if !f.ensureMemory(offW.Uint64() + 1) {
				return 0, fail(FailOutOfGas)
			}
			return 0, nil
		},
		execute: func(f *Frame) error {
			offW := f.stack.Pop()
			val := f.stack.Pop()
			f.mem.Set(offW.Uint64(), 1, []byte{byte(val.Uint64())})
			return nil
		},
	})

	register(opcodes.SLOAD, &operation{
		constantGas: 0,
		minStack:    1,
		stackDelta:  0,
		dynamicGas: func(f *Frame) (uint64, error) {
			key := f.stack.Back(0)
			warm := f.ctx.Host().AccessStorage(f.msg.Destination, *key) == evmc.AccessWarm
			return sloadCost(f.revision, warm), nil
		},
		execute: func(f *Frame) error {
			key := f.stack.Peek()
			v := f.ctx.Host().GetStorage(f.msg.Destination, *key)
			*key = v
			return nil
		},
	})

	register(opcodes.SSTORE, &operation{
		constantGas: 0,
		minStack:    2,
		stackDelta:  -2,
		execute:     execSstore,
	})

	register(opcodes.JUMP, &operation{
		constantGas: GasMid,
		minStack:    1,
		stackDelta:  -1,
		movesPC:     true,
		execute: func(f *Frame) error {
			dest := f.stack.Pop()
			if !dest.IsUint64() {
				return fail(FailBadJumpDestination)
			}
			if err := f.reader.TryJump(dest.Uint64()); err != nil {
				return fail(FailBadJumpDestination)
			}
			return nil
		},
	})

	register(opcodes.JUMPI, &operation{
		constantGas: GasHigh,
		minStack:    2,
		stackDelta:  -2,
		movesPC:     true,
		execute: func(f *Frame) error {
			dest := f.stack.Pop()
			cond := f.stack.Pop()
			if cond.IsZero() {
				f.reader.Next()
				return nil
			}
			if !dest.IsUint64() {
				return fail(FailBadJumpDestination)
			}
			if err := f.reader.TryJump(dest.Uint64()); err != nil {
				return fail(FailBadJumpDestination)
			}
			return nil
		},
	})

	register(opcodes.PC, &operation{
		constantGas: GasBase,
		stackDelta:  1,
		execute: func(f *Frame) error {
			var w u256.Word
			w.SetUint64(f.reader.PC())
			f.stack.Push(&w)
			return nil
		},
	})

	register(opcodes.MSIZE, &operation{
		constantGas: GasBase,
		stackDelta:  1,
		execute: func(f *Frame) error {
			var w u256.Word
			w.SetUint64(uint64(f.mem.Len()))
			f.stack.Push(&w)
			return nil
		},
	})

	register(opcodes.GAS, &operation{
		constantGas: GasBase,
		stackDelta:  1,
		execute: func(f *Frame) error {
			var w u256.Word
			w.SetUint64(uint64(f.gasLeft))
			f.stack.Push(&w)
			return nil
		},
	})

	register(opcodes.JUMPDEST, &operation{
		constantGas: GasJumpdest,
		execute: func(f *Frame) error {
			return nil
		},
	})

	register(opcodes.TLOAD, &operation{
		constantGas: GasTload,
		minRevision: evmc.Cancun,
		minStack:    1,
		stackDelta:  0,
		execute: func(f *Frame) error {
			key := f.stack.Peek()
			v := f.ctx.Host().GetTransientStorage(f.msg.Destination, *key)
			*key = v
			return nil
		},
	})

	register(opcodes.TSTORE, &operation{
		constantGas: GasTstore,
		minRevision: evmc.Cancun,
		minStack:    2,
		stackDelta:  -2,
		execute: func(f *Frame) error {
			if f.static {
				return fail(FailStaticModeViolation)
			}
			key := f.stack.Pop()
			val := f.stack.Pop()
			f.ctx.Host().SetTransientStorage(f.msg.Destination, key, val)
			return nil
		},
	})

	register(opcodes.MCOPY, &operation{
		constantGas: GasVeryLow,
		minRevision: evmc.Cancun,
		minStack:    3,
		stackDelta:  -3,
		dynamicGas: func(f *Frame) (uint64, error) {
			destW, srcW, sizeW := f.stack.Back(0), f.stack.Back(1), f.stack.Back(2)
			dest, size, ok := memRange(destW, sizeW)
			if !ok {
				return 0, fail(FailInvalidMemoryAccess)
			}
			src, _, ok2 := memRange(srcW, sizeW)
			if !ok2 {
				return 0, fail(FailInvalidMemoryAccess)
			}
			top := dest
			if src > top {
				top = src
			}
			if !f.ensureMemory(top + size) {
				return 0, fail(FailOutOfGas)
			}
			words := (size + 31) / 32
			return words * GasCopy, nil
		},
		execute: func(f *Frame) error {
			destW := f.stack.Pop()
			srcW := f.stack.Pop()
			sizeW := f.stack.Pop()
			dest, size, ok := memRange(&destW, &sizeW)
			if !ok {
				return fail(FailInvalidMemoryAccess)
			}
			src, _, ok2 := memRange(&srcW, &sizeW)
			if !ok2 {
				return fail(FailInvalidMemoryAccess)
			}
			f.mem.Copy(dest, src, size)
			return nil
		},
	})

	register(opcodes.PUSH0, &operation{
		constantGas: GasBase,
		minRevision: evmc.Shanghai,
		stackDelta:  1,
		execute: func(f *Frame) error {
			var w u256.Word
			f.stack.Push(&w)
			return nil
		},
	})

	for i := 1; i <= 32; i++ {
		registerPush(i)
	}
	for i := 1; i <= 16; i++ {
		registerDup(i)
		registerSwap(i)
	}
}

func registerPush(n int) {
	op := opcodes.PUSH1 + opcodes.OpCode(n-1)
	register(op, &operation{
		constantGas: GasVeryLow,
		stackDelta:  1,
		movesPC:     true,
		execute: func(f *Frame) error {
			data := f.reader.GetPushData(n)
			f.stack.Push(&data)
			return nil
		},
	})
}

func registerDup(n int) {
	op := opcodes.DUP1 + opcodes.OpCode(n-1)
	register(op, &operation{
		constantGas: GasVeryLow,
		minStack:    n,
		stackDelta:  1,
		execute: func(f *Frame) error {
			f.stack.Dup(n)
			return nil
		},
	})
}

func registerSwap(n int) {
	op := opcodes.SWAP1 + opcodes.OpCode(n-1)
	register(op, &operation{
		constantGas: GasVeryLow,
		minStack:    n + 1,
		stackDelta:  0,
		execute: func(f *Frame) error {
			f.stack.Swap(n)
			return nil
		},
	})
}

// execSstore implements the SSTORE gas and refund schedule. Cost and refund
// depend on the slot's (original, current, new) value triple, which only the
// host sees in full, so the interpreter asks SetStorage for the
// StorageStatus and prices from that rather than maintaining its own shadow
// of the slot's history; gas is charged here, after the status is known,
// instead of through a dynamicGas hook that would have to call SetStorage a
// second time.
func execSstore(f *Frame) error {
	if f.static {
		return fail(FailStaticModeViolation)
	}
	if f.revision.AtLeast(evmc.Istanbul) && f.gasLeft <= SstoreSentryGasEIP2200 {
		return fail(FailOutOfGas)
	}
	key := f.stack.Pop()
	val := f.stack.Pop()

	cold := false
	if f.revision.AtLeast(evmc.Berlin) {
		cold = f.ctx.Host().AccessStorage(f.msg.Destination, key) == evmc.AccessCold
	}

	status := f.ctx.Host().SetStorage(f.msg.Destination, key, val)
	var cost uint64
	if f.revision.AtLeast(evmc.Istanbul) {
		cost = f.sstoreNetMetered(status)
	} else {
		cost = f.sstoreLegacy(status)
	}
	if cold {
		cost += GasColdSload
	}
	if !f.useGas(cost) {
		return fail(FailOutOfGas)
	}
	return nil
}

// sstoreNetMetered prices one SSTORE under EIP-2200 net metering (EIP-2929's
// cold/warm split and EIP-3529's refund reduction layer on through the
// revision-gated helpers), crediting or debiting the refund counter for
// every dirty-slot transition.
func (f *Frame) sstoreNetMetered(status evmc.StorageStatus) uint64 {
	reset := int64(sstoreResetCost(f.revision))
	noop := int64(sstoreNoopCost(f.revision))
	clear := clearRefund(f.revision)

	switch status {
	case evmc.StorageAdded:
		return SstoreSetGasEIP2200
	case evmc.StorageDeleted:
		f.refund(clear)
		return uint64(reset)
	case evmc.StorageModified:
		return uint64(reset)
	case evmc.StorageDeletedAdded:
		// The slot was cleared earlier this transaction; recreating it
		// takes back the clearing refund already credited.
		f.refund(-clear)
	case evmc.StorageModifiedDeleted:
		f.refund(clear)
	case evmc.StorageDeletedRestored:
		// Recreating takes back the clearing refund, and restoring the
		// original value credits the reset cost down to a warm read.
		f.refund(-clear)
		f.refund(reset - noop)
	case evmc.StorageAddedDeleted:
		// The slot's original value was zero, so there is no clearing
		// refund in play; undoing this transaction's own set credits the
		// set cost down to a warm read.
		f.refund(SstoreSetGasEIP2200 - noop)
	case evmc.StorageModifiedRestored:
		f.refund(reset - noop)
	}
	// Every dirty-slot transition and the no-op write settle at the
	// warm-read price.
	return uint64(noop)
}

// sstoreLegacy prices one SSTORE under the pre-Istanbul schedule, where only
// the current value matters: the set price to fill an empty slot, the reset
// price otherwise, with a flat refund whenever a nonzero slot is cleared.
func (f *Frame) sstoreLegacy(status evmc.StorageStatus) uint64 {
	switch status {
	case evmc.StorageAdded, evmc.StorageDeletedAdded, evmc.StorageDeletedRestored:
		return SstoreSetGasEIP2200
	case evmc.StorageDeleted, evmc.StorageModifiedDeleted, evmc.StorageAddedDeleted:
		f.refund(clearRefund(f.revision))
		return SstoreResetGasEIP2200
	default:
		return SstoreResetGasEIP2200
	}
}

// sstoreResetCost is the nonzero->nonzero (or clearing) write cost:
// EIP-2929 discounts the reset by the cold-sload charge it splits out.
func sstoreResetCost(rev evmc.Revision) uint64 {
	if rev.AtLeast(evmc.Berlin) {
		return SstoreResetGasEIP2200 - GasColdSload
	}
	return SstoreResetGasEIP2200
}

// sstoreNoopCost is the price of an SSTORE that leaves the slot's current
// value unchanged, or of any further write to an already-dirty slot. Only
// meaningful under net metering (Istanbul on).
func sstoreNoopCost(rev evmc.Revision) uint64 {
	if rev.AtLeast(evmc.Berlin) {
		return GasWarmStorageRead
	}
	return GasSloadPreBerlin
}

func clearRefund(rev evmc.Revision) int64 {
	if rev.AtLeast(evmc.London) {
		return SstoreClearRefundEIP3529
	}
	return SstoreClearRefundPreEIP3529
}
