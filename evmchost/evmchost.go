// Package evmchost defines HostInterface, the callback table an execution
// client implements and the interpreter calls into for all state external to
// the running frame (storage, balances, code, nested calls, logs), plus the
// SSTORE net-gas-metering status helper host implementations share.
package evmchost

import (
	"github.com/evmgo/evmcore/evmc"
	"github.com/evmgo/evmcore/u256"
)

// HostInterface is the set of callbacks the interpreter needs from its
// embedding execution client. One HostInterface instance is handed to
// Execute per call and may be called many times during that one execution;
// implementations need not be safe for concurrent use from multiple
// interpreter instances: each frame's interpreter has exclusive use of its
// host context.
type HostInterface interface {
	// AccountExists reports whether addr has ever been touched (EIP-161:
	// existence also requires non-empty code/nonce/balance post-Spurious
	// Dragon, but that determination is the host's, not the interpreter's).
	AccountExists(addr [20]byte) bool

	// GetStorage returns the current value of a storage slot.
	GetStorage(addr [20]byte, key u256.Word) u256.Word

	// SetStorage writes a storage slot and reports the StorageStatus
	// transition for gas/refund accounting (EIP-2200/1884).
	SetStorage(addr [20]byte, key, value u256.Word) evmc.StorageStatus

	// GetBalance returns the wei balance of addr.
	GetBalance(addr [20]byte) u256.Word

	// GetCodeSize returns the length of addr's code.
	GetCodeSize(addr [20]byte) uint64

	// GetCodeHash returns the keccak256 hash of addr's code, or the zero
	// hash if addr does not exist.
	GetCodeHash(addr [20]byte) u256.Word

	// CopyCode copies min(len(buf), codeSize-offset) bytes of addr's code
	// starting at offset into buf, returning the number of bytes copied.
	CopyCode(addr [20]byte, offset uint64, buf []byte) uint64

	// Selfdestruct records that the executing account should be destroyed,
	// crediting its remaining balance to beneficiary. Returns whether this
	// is the first time this account was marked for destruction this
	// transaction (relevant for EIP-3529 refund accounting).
	Selfdestruct(addr, beneficiary [20]byte) bool

	// GetTxContext returns the block/transaction-wide values. Implementations
	// may compute this once per transaction; ExecutionContext below caches
	// the result for the lifetime of one frame.
	GetTxContext() evmc.TxContext

	// GetBlockHash returns the hash of the block at the given number, or the
	// zero hash if number is out of the 256-block window the EVM exposes.
	GetBlockHash(number int64) u256.Word

	// EmitLog records a LOG0..LOG4 event.
	EmitLog(addr [20]byte, topics []u256.Word, data []byte)

	// AccessAccount marks addr as touched for EIP-2929 purposes and reports
	// whether it was already warm before this call.
	AccessAccount(addr [20]byte) evmc.AccessStatus

	// AccessStorage marks a storage slot as touched for EIP-2929 purposes
	// and reports whether it was already warm.
	AccessStorage(addr [20]byte, key u256.Word) evmc.AccessStatus

	// GetTransientStorage and SetTransientStorage implement EIP-1153: state
	// that lives only for the duration of the top-level transaction and is
	// never part of a trie or subject to gas refunds.
	GetTransientStorage(addr [20]byte, key u256.Word) u256.Word
	SetTransientStorage(addr [20]byte, key, value u256.Word)

	// Call dispatches a nested CALL/CALLCODE/DELEGATECALL/STATICCALL/
	// CREATE/CREATE2 message and returns its result. The host is
	// responsible for depth/value checks that require access to accounts
	// beyond the current frame (e.g. balance sufficiency for value
	// transfers); the interpreter still enforces the 1024 depth limit and
	// the EIP-150 63/64 gas rule itself before calling this.
	Call(msg evmc.ExecutionMessage) evmc.ExecutionResult
}

// ExecutionContext wraps a HostInterface with a TxContext fetched lazily and
// cached for one frame, avoiding a host round trip per
// ORIGIN/TIMESTAMP/CHAINID/etc. opcode.
type ExecutionContext struct {
	host HostInterface
	tx   *evmc.TxContext
}

// NewExecutionContext wraps host for one frame.
func NewExecutionContext(host HostInterface) *ExecutionContext {
	return &ExecutionContext{host: host}
}

// Host returns the underlying HostInterface, for opcodes that call straight
// through without needing the TxContext cache.
func (c *ExecutionContext) Host() HostInterface {
	return c.host
}

// TxContext returns the cached TxContext, fetching it from the host on first
// use.
func (c *ExecutionContext) TxContext() evmc.TxContext {
	if c.tx == nil {
		tx := c.host.GetTxContext()
		c.tx = &tx
	}
	return *c.tx
}

// SStoreStatus computes the EIP-2200/1884 tri-state SSTORE storage status
// from the original (transaction-start), current, and new values of a slot.
// This is the host's responsibility in the EVMC protocol (SetStorage
// returns the status), but the logic is pure and small enough to share: a
// host implementation (including the in-module testhost used by this
// package's tests) calls this instead of re-deriving it.
func SStoreStatus(original, current, value u256.Word) evmc.StorageStatus {
	if current == value {
		return evmc.StorageAssigned
	}
	zero := u256.Word{}
	if original == current {
		if original == zero {
			return evmc.StorageAdded
		}
		if value == zero {
			return evmc.StorageDeleted
		}
		return evmc.StorageModified
	}
	// original != current: the slot was already dirtied earlier in this
	// transaction.
	if original != zero {
		if current == zero {
			if value == original {
				return evmc.StorageDeletedRestored
			}
			return evmc.StorageDeletedAdded
		}
		if value == zero {
			return evmc.StorageModifiedDeleted
		}
	} else if value == zero {
		return evmc.StorageAddedDeleted
	}
	if value == original {
		return evmc.StorageModifiedRestored
	}
	// Dirty writes that match no special transition settle as plain
	// assignment.
	return evmc.StorageAssigned
}
