// Package evmc defines the Go-native mirror of the EVMC (Ethereum Client-VM
// Connector) ABI surface this module implements against: the vocabulary
// types (Revision, StatusCode, MessageKind/CallKind, StorageStatus,
// AccessStatus), the message/result structs exchanged between host and VM,
// and the stepping extension. This package holds only data definitions;
// HostInterface and ExecutionContext (the callback surface) live in
// evmchost.
package evmc

import "github.com/evmgo/evmcore/u256"

// Revision identifies an EVM specification revision. Values are ordered so
// that later revisions compare greater, matching the EVMC C header's
// evmc_revision.
type Revision int32

const (
	Frontier Revision = iota
	Homestead
	TangerineWhistle
	SpuriousDragon
	Byzantium
	Constantinople
	Petersburg
	Istanbul
	Berlin
	London
	Paris
	Shanghai
	Cancun
	Prague
)

// AtLeast reports whether rev is the given revision or later.
func (rev Revision) AtLeast(min Revision) bool {
	return rev >= min
}

// StatusCode is the outcome of an Execute call, mirroring evmc_status_code.
type StatusCode int32

const (
	StatusSuccess StatusCode = iota
	StatusFailure
	StatusRevert
	StatusOutOfGas
	StatusInvalidInstruction
	StatusUndefinedInstruction
	StatusStackOverflow
	StatusStackUnderflow
	StatusBadJumpDestination
	StatusInvalidMemoryAccess
	StatusCallDepthExceeded
	StatusStaticModeViolation
	StatusPrecompileFailure
	StatusContractValidationFailure
	StatusArgumentOutOfRange
	StatusWasmUnreachableInstruction
	StatusWasmTrap
	StatusInsufficientBalance
	StatusInternalError
	StatusRejected
	StatusOutOfMemory
)

func (s StatusCode) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusFailure:
		return "failure"
	case StatusRevert:
		return "revert"
	case StatusOutOfGas:
		return "out_of_gas"
	case StatusInvalidInstruction:
		return "invalid_instruction"
	case StatusUndefinedInstruction:
		return "undefined_instruction"
	case StatusStackOverflow:
		return "stack_overflow"
	case StatusStackUnderflow:
		return "stack_underflow"
	case StatusBadJumpDestination:
		return "bad_jump_destination"
	case StatusInvalidMemoryAccess:
		return "invalid_memory_access"
	case StatusCallDepthExceeded:
		return "call_depth_exceeded"
	case StatusStaticModeViolation:
		return "static_mode_violation"
	case StatusPrecompileFailure:
		return "precompile_failure"
	case StatusContractValidationFailure:
		return "contract_validation_failure"
	case StatusArgumentOutOfRange:
		return "argument_out_of_range"
	case StatusInsufficientBalance:
		return "insufficient_balance"
	case StatusInternalError:
		return "internal_error"
	case StatusRejected:
		return "rejected"
	case StatusOutOfMemory:
		return "out_of_memory"
	default:
		return "unknown"
	}
}

// CallKind identifies the kind of a call-family message, mirroring
// evmc_call_kind.
type CallKind int32

const (
	CallCall CallKind = iota
	CallDelegateCall
	CallCallCode
	CallCreate
	CallCreate2
)

// MessageFlags are bit flags on ExecutionMessage, mirroring evmc_flags.
type MessageFlags uint32

const (
	FlagStatic MessageFlags = 1 << iota
)

// StorageStatus describes the effect of an SSTORE, mirroring
// evmc_storage_status. It is computed by the host from the
// original/current/new value triple (EIP-2200/1884) and returned to the
// interpreter so gas and refund can be applied; see evmchost for the
// computation.
type StorageStatus int32

const (
	StorageAssigned StorageStatus = iota
	StorageAdded
	StorageDeleted
	StorageModified
	StorageDeletedAdded
	StorageModifiedDeleted
	StorageDeletedRestored
	StorageAddedDeleted
	StorageModifiedRestored
)

// AccessStatus reports whether an address or storage slot was already in the
// EIP-2929 access list (warm) or is being accessed for the first time this
// transaction (cold).
type AccessStatus int32

const (
	AccessCold AccessStatus = iota
	AccessWarm
)

// ExecutionMessage is the input to Execute: the call/create frame the host
// is asking the VM to run.
type ExecutionMessage struct {
	Kind        CallKind
	Flags       MessageFlags
	Depth       int32
	Gas         int64
	Destination [20]byte
	Sender      [20]byte
	Input       []byte
	Value       u256.Word
	// CreateSalt is only meaningful when Kind == CallCreate2.
	CreateSalt u256.Word
	// CodeAddress is the address whose code is executing; for DELEGATECALL
	// and CALLCODE this differs from Destination.
	CodeAddress [20]byte
	// CodeHash, when the host already knows keccak256 of the code it is
	// asking the VM to run, lets the VM key its analysis cache without
	// re-hashing. Nil means not supplied.
	CodeHash *u256.Word
}

// ExecutionResult is the output of Execute.
type ExecutionResult struct {
	StatusCode    StatusCode
	GasLeft       int64
	GasRefund     int64
	Output        []byte
	CreateAddress *[20]byte
}

// StepStatusCode reports whether a steppable execution is still running,
// mirroring evmc_step_status_code.
type StepStatusCode int32

const (
	StepRunning StepStatusCode = iota
	StepStopped
	StepReturned
	StepReverted
	StepFailed
)

// StepResult is the output of a bounded StepN call: a frozen snapshot of
// interpreter state at the point execution paused.
type StepResult struct {
	StepStatusCode     StepStatusCode
	StatusCode         StatusCode
	Revision           Revision
	PC                 uint64
	GasLeft            int64
	GasRefund          int64
	Output             []byte
	Stack              []u256.Word
	Memory             []byte
	LastCallReturnData []byte
}

// Capabilities are the bit flags GetCapabilities returns, mirroring
// evmc_capabilities.
type Capabilities uint32

const (
	CapabilityEVM1        Capabilities = 1 << 0
	CapabilityEWASM       Capabilities = 1 << 1
	CapabilityPrecompiles Capabilities = 1 << 2
)

// TxContext carries the block/transaction-wide values GetTxContext returns,
// cached for the lifetime of one ExecutionContext since they never change
// mid-call.
type TxContext struct {
	GasPrice        u256.Word
	Origin          [20]byte
	Coinbase        [20]byte
	BlockNumber     int64
	BlockTimestamp  int64
	BlockGasLimit   int64
	BlockPrevRandao u256.Word
	ChainID         u256.Word
	BaseFee         u256.Word
	BlobBaseFee     u256.Word
}

// SetOptionError reports why SetOption rejected a key or value, mirroring
// evmc_set_option_result.
type SetOptionError int32

const (
	SetOptionSuccess SetOptionError = iota
	SetOptionInvalidName
	SetOptionInvalidValue
)
