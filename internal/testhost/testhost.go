// Package testhost is an in-memory evmchost.HostInterface used to exercise
// the interpreter end to end without a real execution client. It plays the
// role an rpc.Client/state-database pairing plays for simulator.Simulator,
// but backed by plain maps instead of a live RPC endpoint and a trie-backed
// state database, and it recurses into interpreter.Execute itself for
// nested calls rather than shelling out to runtime.Execute.
package testhost

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"

	"github.com/evmgo/evmcore/codeanalysis"
	"github.com/evmgo/evmcore/evmc"
	"github.com/evmgo/evmcore/evmchost"
	"github.com/evmgo/evmcore/hashcache"
	"github.com/evmgo/evmcore/interpreter"
	"github.com/evmgo/evmcore/u256"
)

type storageKey struct {
	addr [20]byte
	slot u256.Word
}

// LogEntry records one EmitLog call for assertions in tests.
type LogEntry struct {
	Address [20]byte
	Topics  []u256.Word
	Data    []byte
}

// Host is a mutable, single-threaded in-memory account/storage/log store
// implementing evmchost.HostInterface. Every field is exported so tests can
// seed state directly instead of going through setter methods, mirroring
// the pattern of building a state database by direct account/code/balance/
// storage assignment before simulating.
type Host struct {
	Revision evmc.Revision
	Tx       evmc.TxContext

	Code    map[[20]byte][]byte
	Balance map[[20]byte]u256.Word
	Nonce   map[[20]byte]uint64
	Exists  map[[20]byte]bool

	Storage     map[storageKey]u256.Word
	origStorage map[storageKey]u256.Word
	Transient   map[storageKey]u256.Word

	BlockHashes map[int64]u256.Word

	warmAccounts map[[20]byte]bool
	warmStorage  map[storageKey]bool
	Destructed   map[[20]byte]bool

	Logs []LogEntry

	AnalysisCache *codeanalysis.ClassificationCache
	Hashes        *hashcache.HashCache
}

// New returns a Host with every map initialized and ready to use.
func New(rev evmc.Revision) *Host {
	return &Host{
		Revision:      rev,
		Code:          make(map[[20]byte][]byte),
		Balance:       make(map[[20]byte]u256.Word),
		Nonce:         make(map[[20]byte]uint64),
		Exists:        make(map[[20]byte]bool),
		Storage:       make(map[storageKey]u256.Word),
		origStorage:   make(map[storageKey]u256.Word),
		Transient:     make(map[storageKey]u256.Word),
		BlockHashes:   make(map[int64]u256.Word),
		warmAccounts:  make(map[[20]byte]bool),
		warmStorage:   make(map[storageKey]bool),
		Destructed:    make(map[[20]byte]bool),
		AnalysisCache: codeanalysis.NewClassificationCache(codeanalysis.DefaultCacheSize),
		Hashes:        hashcache.Default(),
	}
}

// SetCode installs addr's code and marks it as existing. It does not touch
// storage; Snapshot records the transaction-start "original" values
// SStoreStatus needs.
func (h *Host) SetCode(addr [20]byte, code []byte) {
	h.Code[addr] = code
	h.Exists[addr] = true
}

// SeedStorage sets a slot's value directly, for tests that need a nonzero
// pre-transaction value to exercise the dirty-slot SSTORE transitions. Call
// before Snapshot.
func (h *Host) SeedStorage(addr [20]byte, key, value u256.Word) {
	h.Storage[storageKey{addr, key}] = value
}

// Snapshot records the current storage contents as the transaction-start
// baseline used for EIP-2200 net-gas metering. Call once after seeding
// initial storage and before executing.
func (h *Host) Snapshot() {
	h.origStorage = make(map[storageKey]u256.Word, len(h.Storage))
	for k, v := range h.Storage {
		h.origStorage[k] = v
	}
}

func (h *Host) AccountExists(addr [20]byte) bool {
	return h.Exists[addr]
}

func (h *Host) GetStorage(addr [20]byte, key u256.Word) u256.Word {
	return h.Storage[storageKey{addr, key}]
}

func (h *Host) SetStorage(addr [20]byte, key, value u256.Word) evmc.StorageStatus {
	k := storageKey{addr, key}
	original := h.origStorage[k]
	current := h.Storage[k]
	status := evmchost.SStoreStatus(original, current, value)
	h.Storage[k] = value
	return status
}

func (h *Host) GetBalance(addr [20]byte) u256.Word {
	return h.Balance[addr]
}

func (h *Host) GetCodeSize(addr [20]byte) uint64 {
	return uint64(len(h.Code[addr]))
}

func (h *Host) GetCodeHash(addr [20]byte) u256.Word {
	code := h.Code[addr]
	if len(code) == 0 {
		return u256.Word{}
	}
	hash := h.Hashes.Hash(code)
	return hash
}

func (h *Host) CopyCode(addr [20]byte, offset uint64, buf []byte) uint64 {
	code := h.Code[addr]
	if offset >= uint64(len(code)) {
		return 0
	}
	return uint64(copy(buf, code[offset:]))
}

func (h *Host) Selfdestruct(addr, beneficiary [20]byte) bool {
	first := !h.Destructed[addr]
	h.Destructed[addr] = true
	bal := h.Balance[addr]
	h.Balance[beneficiary] = u256Add(h.Balance[beneficiary], bal)
	h.Balance[addr] = u256.Word{}
	h.Exists[beneficiary] = true
	return first
}

func (h *Host) GetTxContext() evmc.TxContext {
	return h.Tx
}

func (h *Host) GetBlockHash(number int64) u256.Word {
	return h.BlockHashes[number]
}

func (h *Host) EmitLog(addr [20]byte, topics []u256.Word, data []byte) {
	h.Logs = append(h.Logs, LogEntry{Address: addr, Topics: topics, Data: data})
}

func (h *Host) AccessAccount(addr [20]byte) evmc.AccessStatus {
	if h.warmAccounts[addr] {
		return evmc.AccessWarm
	}
	h.warmAccounts[addr] = true
	return evmc.AccessCold
}

func (h *Host) AccessStorage(addr [20]byte, key u256.Word) evmc.AccessStatus {
	k := storageKey{addr, key}
	if h.warmStorage[k] {
		return evmc.AccessWarm
	}
	h.warmStorage[k] = true
	return evmc.AccessCold
}

func (h *Host) GetTransientStorage(addr [20]byte, key u256.Word) u256.Word {
	return h.Transient[storageKey{addr, key}]
}

func (h *Host) SetTransientStorage(addr [20]byte, key, value u256.Word) {
	h.Transient[storageKey{addr, key}] = value
}

// Call recurses straight into interpreter.Execute, playing the role a real
// execution client plays when the VM asks it to dispatch a nested
// CALL/CREATE: this Host is both caller and callee since tests run a
// single, self-contained account universe.
func (h *Host) Call(msg evmc.ExecutionMessage) evmc.ExecutionResult {
	switch msg.Kind {
	case evmc.CallCreate, evmc.CallCreate2:
		return h.callCreate(msg)
	default:
		return h.callExisting(msg)
	}
}

func (h *Host) callExisting(msg evmc.ExecutionMessage) evmc.ExecutionResult {
	code := h.Code[msg.CodeAddress]
	if len(code) == 0 {
		h.Exists[msg.Destination] = true
		if !msg.Value.IsZero() && msg.Kind == evmc.CallCall {
			h.transfer(msg.Sender, msg.Destination, msg.Value)
		}
		return evmc.ExecutionResult{StatusCode: evmc.StatusSuccess, GasLeft: msg.Gas}
	}
	if msg.Kind == evmc.CallCall && !msg.Value.IsZero() {
		h.transfer(msg.Sender, msg.Destination, msg.Value)
	}
	codeHash := h.Hashes.Hash(code)
	hash := common.Hash(u256.ToBig32(&codeHash))
	return interpreter.Execute(h, h.Hashes, h.AnalysisCache, h.Revision, msg, code, &hash)
}

func (h *Host) callCreate(msg evmc.ExecutionMessage) evmc.ExecutionResult {
	addr := h.deriveCreateAddress(msg)
	if h.Exists[addr] && len(h.Code[addr]) > 0 {
		return evmc.ExecutionResult{StatusCode: evmc.StatusFailure, GasLeft: 0}
	}
	h.Exists[addr] = true
	h.Nonce[msg.Sender]++
	if !msg.Value.IsZero() {
		h.transfer(msg.Sender, addr, msg.Value)
	}

	initMsg := msg
	initMsg.Destination = addr
	initMsg.CodeAddress = addr
	result := interpreter.Execute(h, h.Hashes, h.AnalysisCache, h.Revision, initMsg, msg.Input, nil)
	if result.StatusCode != evmc.StatusSuccess {
		return evmc.ExecutionResult{StatusCode: result.StatusCode, GasLeft: result.GasLeft, Output: result.Output}
	}

	deployed := result.Output
	if h.Revision.AtLeast(evmc.SpuriousDragon) && len(deployed) > interpreter.MaxCodeSize {
		return evmc.ExecutionResult{StatusCode: evmc.StatusFailure}
	}
	if h.Revision.AtLeast(evmc.London) && len(deployed) > 0 && deployed[0] == 0xef {
		// EIP-3541 reserves the 0xEF code prefix.
		return evmc.ExecutionResult{StatusCode: evmc.StatusContractValidationFailure}
	}
	depositCost := int64(len(deployed)) * interpreter.GasCodeDeposit
	if depositCost > result.GasLeft {
		return evmc.ExecutionResult{StatusCode: evmc.StatusOutOfGas}
	}

	h.Code[addr] = deployed
	addrCopy := addr
	return evmc.ExecutionResult{
		StatusCode:    evmc.StatusSuccess,
		GasLeft:       result.GasLeft - depositCost,
		GasRefund:     result.GasRefund,
		CreateAddress: &addrCopy,
	}
}

func (h *Host) deriveCreateAddress(msg evmc.ExecutionMessage) [20]byte {
	if msg.Kind == evmc.CallCreate2 {
		initHash := crypto.Keccak256(msg.Input)
		salt := u256.ToBig32(&msg.CreateSalt)
		data := append([]byte{0xff}, msg.Sender[:]...)
		data = append(data, salt[:]...)
		data = append(data, initHash...)
		digest := crypto.Keccak256(data)
		var addr [20]byte
		copy(addr[:], digest[12:])
		return addr
	}
	nonce := h.Nonce[msg.Sender]
	encoded, _ := rlp.EncodeToBytes([]interface{}{msg.Sender[:], nonce})
	digest := crypto.Keccak256(encoded)
	var addr [20]byte
	copy(addr[:], digest[12:])
	return addr
}

func (h *Host) transfer(from, to [20]byte, value u256.Word) {
	h.Balance[from] = u256Sub(h.Balance[from], value)
	h.Balance[to] = u256Add(h.Balance[to], value)
	h.Exists[to] = true
}

func u256Add(a, b u256.Word) u256.Word {
	var r u256.Word
	r.Add(&a, &b)
	return r
}

func u256Sub(a, b u256.Word) u256.Word {
	var r u256.Word
	r.Sub(&a, &b)
	return r
}
