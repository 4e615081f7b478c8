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
	"github.com/ethereum/go-ethereum/params"

	"github.com/evmgo/evmcore/evmc"
	"github.com/evmgo/evmcore/opcodes"
	"github.com/evmgo/evmcore/u256"
)

func init() {
	register(opcodes.RETURN, &operation{
		constantGas: GasZero,
		minStack:    2,
		stackDelta:  -2,
		dynamicGas:  returnLikeDynamicGas,
		execute: func(f *Frame) error {
			return execReturn(f, Returned)
		},
	})

	register(opcodes.REVERT, &operation{
		constantGas: GasZero,
		minRevision: evmc.Byzantium,
		minStack:    2,
		stackDelta:  -2,
		dynamicGas:  returnLikeDynamicGas,
		execute: func(f *Frame) error {
			offW := f.stack.Pop()
			sizeW := f.stack.Pop()
			offset, size, ok := memRange(&offW, &sizeW)
			if !ok {
				return fail(FailInvalidMemoryAccess)
			}
			f.output = f.mem.GetCopy(offset, size)
			return errRevert
		},
	})

	register(opcodes.INVALID, &operation{
		execute: func(f *Frame) error {
			return fail(FailInvalidInstruction)
		},
	})

	register(opcodes.SELFDESTRUCT, &operation{
		constantGas: GasSelfdestructEIP150,
		minStack:    1,
		stackDelta:  -1,
		dynamicGas: func(f *Frame) (uint64, error) {
			if f.static {
				return 0, fail(FailStaticModeViolation)
			}
			beneficiary := addrFromWord(f.stack.Back(0))
			var cost uint64
			if f.revision.AtLeast(evmc.Berlin) && !f.warmAccount(beneficiary) {
				cost += GasColdAccountAccess
			}
			if !f.ctx.Host().AccountExists(beneficiary) {
				bal := f.ctx.Host().GetBalance(f.msg.Destination)
				if !bal.IsZero() {
					cost += GasSelfdestructNewAccount
				}
			}
			return cost, nil
		},
		execute: func(f *Frame) error {
			beneficiary := popAddress(f.stack)
			firstTime := f.ctx.Host().Selfdestruct(f.msg.Destination, beneficiary)
			if firstTime && !f.revision.AtLeast(evmc.London) {
				f.refund(int64(params.SelfdestructRefundGas))
			}
			f.status = Stopped
			return nil
		},
	})

	register(opcodes.CREATE, &operation{
		constantGas: GasCreate,
		minStack:    3,
		stackDelta:  -2,
		dynamicGas:  createDynamicGas,
		execute: func(f *Frame) error {
			return execCreate(f, evmc.CallCreate)
		},
	})

	register(opcodes.CREATE2, &operation{
		constantGas: GasCreate,
		minRevision: evmc.Constantinople,
		minStack:    4,
		stackDelta:  -3,
		dynamicGas: func(f *Frame) (uint64, error) {
			base, err := createDynamicGas(f)
			if err != nil {
				return 0, err
			}
			// Hashing the init code for the address derivation costs the
			// keccak word price on top of the shared create costs.
			sizeW := f.stack.Back(2)
			if !sizeW.IsUint64() {
				return 0, fail(FailInvalidMemoryAccess)
			}
			words := (sizeW.Uint64() + 31) / 32
			return base + words*GasSha3Word, nil
		},
		execute: func(f *Frame) error {
			return execCreate(f, evmc.CallCreate2)
		},
	})

	register(opcodes.CALL, &operation{
		minStack:   7,
		stackDelta: -6,
		dynamicGas: func(f *Frame) (uint64, error) {
			return callDynamicGas(f, evmc.CallCall)
		},
		execute: func(f *Frame) error {
			return execCall(f, evmc.CallCall)
		},
	})

	register(opcodes.CALLCODE, &operation{
		minStack:   7,
		stackDelta: -6,
		dynamicGas: func(f *Frame) (uint64, error) {
			return callDynamicGas(f, evmc.CallCallCode)
		},
		execute: func(f *Frame) error {
			return execCall(f, evmc.CallCallCode)
		},
	})

	register(opcodes.DELEGATECALL, &operation{
		minRevision: evmc.Homestead,
		minStack:    6,
		stackDelta:  -5,
		dynamicGas: func(f *Frame) (uint64, error) {
			return callDynamicGas(f, evmc.CallDelegateCall)
		},
		execute: func(f *Frame) error {
			return execCall(f, evmc.CallDelegateCall)
		},
	})

	register(opcodes.STATICCALL, &operation{
		minRevision: evmc.Byzantium,
		minStack:    6,
		stackDelta:  -5,
		dynamicGas: func(f *Frame) (uint64, error) {
			return callDynamicGas(f, callKindStatic)
		},
		execute: func(f *Frame) error {
			return execCall(f, callKindStatic)
		},
	})
}

// callKindStatic is an internal sentinel passed in place of evmc.CallKind
// for STATICCALL, which has no dedicated CallKind value of its own in the
// vocabulary this module mirrors (it is CALL with the static flag forced
// on).
const callKindStatic = evmc.CallKind(100)

func returnLikeDynamicGas(f *Frame) (uint64, error) {
	offW, sizeW := f.stack.Back(0), f.stack.Back(1)
	offset, size, ok := memRange(offW, sizeW)
	if !ok {
		return 0, fail(FailInvalidMemoryAccess)
	}
	if !f.ensureMemory(offset + size) {
		return 0, fail(FailOutOfGas)
	}
	return 0, nil
}

func execReturn(f *Frame, status Status) error {
	offW := f.stack.Pop()
	sizeW := f.stack.Pop()
	offset, size, ok := memRange(&offW, &sizeW)
	if !ok {
		return fail(FailInvalidMemoryAccess)
	}
	f.output = f.mem.GetCopy(offset, size)
	f.status = status
	return nil
}

func createDynamicGas(f *Frame) (uint64, error) {
	if f.static {
		return 0, fail(FailStaticModeViolation)
	}
	offW, sizeW := f.stack.Back(1), f.stack.Back(2)
	offset, size, ok := memRange(offW, sizeW)
	if !ok {
		return 0, fail(FailInvalidMemoryAccess)
	}
	var cost uint64
	if f.revision.AtLeast(evmc.Shanghai) {
		// EIP-3860: bound the init code and charge per word of it.
		if size > MaxInitCodeSize {
			return 0, fail(FailInitCodeSizeLimit)
		}
		cost = (size + 31) / 32 * GasCreateWord
	}
	if !f.ensureMemory(offset + size) {
		return 0, fail(FailOutOfGas)
	}
	return cost, nil
}

func execCreate(f *Frame, kind evmc.CallKind) error {
	value := f.stack.Pop()
	offW := f.stack.Pop()
	sizeW := f.stack.Pop()
	var salt u256.Word
	if kind == evmc.CallCreate2 {
		salt = f.stack.Pop()
	}
	if f.depth+1 >= MaxCallDepth {
		// Depth exhaustion is not a frame failure: the create simply
		// reports address zero and execution continues.
		var zero u256.Word
		f.stack.Push(&zero)
		f.returnData = nil
		return nil
	}
	offset, size, ok := memRange(&offW, &sizeW)
	if !ok {
		return fail(FailInvalidMemoryAccess)
	}
	initCode := f.mem.GetCopy(offset, size)

	msg := evmc.ExecutionMessage{
		Kind:        kind,
		Depth:       f.depth + 1,
		Gas:         f.gasLeft - f.gasLeft/CallGasCapDivisor,
		Sender:      f.msg.Destination,
		Input:       initCode,
		Value:       value,
		CreateSalt:  salt,
		CodeAddress: f.msg.Destination,
	}
	if f.static {
		msg.Flags |= evmc.FlagStatic
	}

	result := f.ctx.Host().Call(msg)
	f.useGas(uint64(msg.Gas - result.GasLeft))
	f.refund(result.GasRefund)
	f.returnData = result.Output

	var pushed u256.Word
	if result.StatusCode == evmc.StatusSuccess && result.CreateAddress != nil {
		f.createAddress = result.CreateAddress
		pushAddress(f.stack, *result.CreateAddress)
		return nil
	}
	f.stack.Push(&pushed)
	return nil
}

func callDynamicGas(f *Frame, kind evmc.CallKind) (uint64, error) {
	// Stack order, top to bottom, is gas, addr, [value], argsOffset,
	// argsSize, retOffset, retSize; CALL/CALLCODE carry the extra value
	// word that DELEGATECALL/STATICCALL don't.
	hasValue := kind == evmc.CallCall || kind == evmc.CallCallCode
	argsOffIdx, argsSizeIdx, retOffIdx, retSizeIdx := 2, 3, 4, 5
	if hasValue {
		argsOffIdx, argsSizeIdx, retOffIdx, retSizeIdx = 3, 4, 5, 6
	}

	addr := addrFromWord(f.stack.Back(1))
	var value u256.Word
	if hasValue {
		value = *f.stack.Back(2)
	}
	if hasValue && f.static && !value.IsZero() {
		return 0, fail(FailStaticModeViolation)
	}

	argsOff, argsSize, ok := memRange(f.stack.Back(argsOffIdx), f.stack.Back(argsSizeIdx))
	if !ok {
		return 0, fail(FailInvalidMemoryAccess)
	}
	retOff, retSize, ok := memRange(f.stack.Back(retOffIdx), f.stack.Back(retSizeIdx))
	if !ok {
		return 0, fail(FailInvalidMemoryAccess)
	}
	top := argsOff + argsSize
	if retOff+retSize > top {
		top = retOff + retSize
	}
	if !f.ensureMemory(top) {
		return 0, fail(FailOutOfGas)
	}

	// The per-call account charge: warm/cold split from Berlin on, a flat
	// fee per call before that.
	var cost uint64
	switch {
	case f.revision.AtLeast(evmc.Berlin):
		cost += accountAccessCost(f.revision, f.warmAccount(addr))
	case f.revision.AtLeast(evmc.TangerineWhistle):
		cost += 700
	default:
		cost += 40
	}
	if hasValue && !value.IsZero() {
		cost += GasCallValue
		if !f.ctx.Host().AccountExists(addr) {
			cost += GasNewAccount
		}
	}
	return cost, nil
}

func execCall(f *Frame, kind evmc.CallKind) error {
	if f.depth+1 >= MaxCallDepth {
		f.popCallArgs(kind)
		var zero u256.Word
		f.stack.Push(&zero)
		f.returnData = nil
		return nil
	}

	gasW, addrW, hasValue := f.stack.Pop(), f.stack.Pop(), kind == evmc.CallCall || kind == evmc.CallCallCode
	addr := addrFromWord(&addrW)

	var value u256.Word
	if hasValue {
		value = f.stack.Pop()
	}
	argsOffW := f.stack.Pop()
	argsSizeW := f.stack.Pop()
	retOffW := f.stack.Pop()
	retSizeW := f.stack.Pop()

	argsOff, argsSize, ok := memRange(&argsOffW, &argsSizeW)
	if !ok {
		return fail(FailInvalidMemoryAccess)
	}
	retOff, retSize, ok2 := memRange(&retOffW, &retSizeW)
	if !ok2 {
		return fail(FailInvalidMemoryAccess)
	}

	requested := u256.ToU64Saturating(&gasW)
	gasGiven := callGasCap(f.gasLeft, requested)
	if hasValue && !value.IsZero() {
		gasGiven += GasCallStipend
	}

	msg := evmc.ExecutionMessage{
		Kind:        effectiveKind(kind),
		Depth:       f.depth + 1,
		Gas:         gasGiven,
		Sender:      f.msg.Destination,
		Destination: addr,
		CodeAddress: addr,
		Input:       f.mem.GetCopy(argsOff, argsSize),
		Value:       value,
	}
	switch kind {
	case evmc.CallDelegateCall:
		msg.Destination = f.msg.Destination
		msg.Sender = f.msg.Sender
		msg.Value = f.msg.Value
	case evmc.CallCallCode:
		msg.Destination = f.msg.Destination
	case callKindStatic:
		msg.Flags |= evmc.FlagStatic
	}
	if f.static {
		msg.Flags |= evmc.FlagStatic
	}

	result := f.ctx.Host().Call(msg)

	spent := gasGiven - result.GasLeft
	if hasValue && !value.IsZero() {
		spent -= GasCallStipend
	}
	if spent < 0 {
		spent = 0
	}
	f.useGas(uint64(spent))
	f.refund(result.GasRefund)
	f.returnData = result.Output

	copy(f.mem.GetPtr(retOff, minU64(retSize, uint64(len(result.Output)))), result.Output)

	var success u256.Word
	if result.StatusCode == evmc.StatusSuccess {
		success.SetOne()
	}
	f.stack.Push(&success)
	return nil
}

// effectiveKind maps the internal callKindStatic sentinel back onto
// evmc.CallCall with the static flag, since CallKind itself has no
// dedicated STATICCALL value.
func effectiveKind(kind evmc.CallKind) evmc.CallKind {
	if kind == callKindStatic {
		return evmc.CallCall
	}
	return kind
}

func (f *Frame) popCallArgs(kind evmc.CallKind) {
	n := 6
	if kind == evmc.CallCall || kind == evmc.CallCallCode {
		n = 7
	}
	for i := 0; i < n; i++ {
		f.stack.Pop()
	}
}

func minU64(a, b uint64) uint64 {
	if a < b {
		return a
	}
	return b
}
