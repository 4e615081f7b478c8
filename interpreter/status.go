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
	"fmt"

	"github.com/evmgo/evmcore/evmc"
)

// Status is a frame's coarse execution state, the last element of its
// (pc, gas_left, gas_refund, stack, memory, return_data, status) tuple.
type Status int

const (
	Running Status = iota
	Stopped
	Returned
	Reverted
	Failed
)

// FailKind distinguishes the reasons a frame can end in Failed.
type FailKind int

const (
	FailNone FailKind = iota
	FailOutOfGas
	FailStackUnderflow
	FailStackOverflow
	FailInvalidInstruction
	FailBadJumpDestination
	FailInvalidMemoryAccess
	FailStaticModeViolation
	FailCallDepthExceeded
	FailInitCodeSizeLimit
	FailContractSizeLimit
	FailInternal
)

func (k FailKind) String() string {
	switch k {
	case FailNone:
		return "none"
	case FailOutOfGas:
		return "out_of_gas"
	case FailStackUnderflow:
		return "stack_underflow"
	case FailStackOverflow:
		return "stack_overflow"
	case FailInvalidInstruction:
		return "invalid_instruction"
	case FailBadJumpDestination:
		return "bad_jump_destination"
	case FailInvalidMemoryAccess:
		return "invalid_memory_access"
	case FailStaticModeViolation:
		return "static_mode_violation"
	case FailCallDepthExceeded:
		return "call_depth_exceeded"
	case FailInitCodeSizeLimit:
		return "init_code_size_limit"
	case FailContractSizeLimit:
		return "contract_size_limit"
	case FailInternal:
		return "internal"
	default:
		return "unknown"
	}
}

// Failure is the error type every opcode handler returns to signal a
// terminal, non-Revert failure. It carries no extra state beyond the kind:
// a failure discards gas_left (zeroed) and refund unconditionally, so there
// is nothing else for callers to recover from it.
type Failure struct {
	Kind FailKind
}

func (f *Failure) Error() string {
	return fmt.Sprintf("evm: %s", f.Kind)
}

func fail(kind FailKind) error {
	return &Failure{Kind: kind}
}

// toEVMCStatus maps a terminated frame's (Status, FailKind) to the EVMC
// status code the host-facing ExecutionResult carries.
func toEVMCStatus(status Status, kind FailKind) evmc.StatusCode {
	switch status {
	case Stopped, Returned:
		return evmc.StatusSuccess
	case Reverted:
		return evmc.StatusRevert
	case Failed:
		switch kind {
		case FailOutOfGas:
			return evmc.StatusOutOfGas
		case FailStackUnderflow:
			return evmc.StatusStackUnderflow
		case FailStackOverflow:
			return evmc.StatusStackOverflow
		case FailInvalidInstruction:
			return evmc.StatusUndefinedInstruction
		case FailBadJumpDestination:
			return evmc.StatusBadJumpDestination
		case FailInvalidMemoryAccess:
			return evmc.StatusInvalidMemoryAccess
		case FailStaticModeViolation:
			return evmc.StatusStaticModeViolation
		case FailCallDepthExceeded:
			return evmc.StatusCallDepthExceeded
		case FailInitCodeSizeLimit, FailContractSizeLimit:
			return evmc.StatusArgumentOutOfRange
		case FailInternal:
			return evmc.StatusInternalError
		default:
			return evmc.StatusFailure
		}
	default:
		return evmc.StatusInternalError
	}
}
