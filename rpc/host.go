package rpc

import (
	"math/big"

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

// ForkHost is an evmchost.HostInterface backed by a live JSON-RPC endpoint
// pinned at one block. Every value is fetched lazily on first touch and
// cached for the life of the ForkHost, so only the state an execution
// actually reads crosses the network; writes land in the local overlay and
// are never sent back.
type ForkHost struct {
	client *Client
	block  string

	code    map[[20]byte][]byte
	balance map[[20]byte]*big.Int
	storage map[storageKey]u256.Word
	// origStorage holds each slot's as-fetched chain value, the
	// transaction-start baseline SStoreStatus prices against even after
	// the simulation has overwritten the slot locally.
	origStorage map[storageKey]u256.Word

	nonce        map[[20]byte]uint64
	nonceFetched map[[20]byte]bool
	exists       map[[20]byte]bool
	transient    map[storageKey]u256.Word
	blockHashes  map[int64]u256.Word

	warmAccounts map[[20]byte]bool
	warmStorage  map[storageKey]bool

	Logs []LogEntry

	Tx            evmc.TxContext
	Revision      evmc.Revision
	AnalysisCache *codeanalysis.ClassificationCache
	Hashes        *hashcache.HashCache
}

// LogEntry records one EmitLog call.
type LogEntry struct {
	Address [20]byte
	Topics  []u256.Word
	Data    []byte
}

// NewForkHost returns a ForkHost reading through client at the given block:
// a positive hex block number, or "latest" (any other tag, "pending"
// included, is read as "latest").
func NewForkHost(client *Client, block string, rev evmc.Revision, tx evmc.TxContext) *ForkHost {
	return &ForkHost{
		client:        client,
		block:         block,
		code:          make(map[[20]byte][]byte),
		balance:       make(map[[20]byte]*big.Int),
		storage:       make(map[storageKey]u256.Word),
		origStorage:   make(map[storageKey]u256.Word),
		nonce:         make(map[[20]byte]uint64),
		nonceFetched:  make(map[[20]byte]bool),
		exists:        make(map[[20]byte]bool),
		transient:     make(map[storageKey]u256.Word),
		blockHashes:   make(map[int64]u256.Word),
		warmAccounts:  make(map[[20]byte]bool),
		warmStorage:   make(map[storageKey]bool),
		Revision:      rev,
		Tx:            tx,
		AnalysisCache: codeanalysis.NewClassificationCache(codeanalysis.DefaultCacheSize),
		Hashes:        hashcache.Default(),
	}
}

func (h *ForkHost) codeOf(addr [20]byte) []byte {
	if code, ok := h.code[addr]; ok {
		return code
	}
	code, err := h.client.GetCode(common.BytesToAddress(addr[:]).Hex(), h.block)
	if err != nil {
		code = nil
	}
	h.code[addr] = code
	h.exists[addr] = h.exists[addr] || len(code) > 0
	return code
}

func (h *ForkHost) balanceOf(addr [20]byte) *big.Int {
	if bal, ok := h.balance[addr]; ok {
		return bal
	}
	bal, err := h.client.GetBalance(common.BytesToAddress(addr[:]).Hex(), h.block)
	if err != nil {
		bal = big.NewInt(0)
	}
	h.balance[addr] = bal
	h.exists[addr] = h.exists[addr] || bal.Sign() > 0
	return bal
}

// CodeAt returns addr's code, fetching and caching it on first use.
func (h *ForkHost) CodeAt(addr [20]byte) []byte {
	return h.codeOf(addr)
}

func (h *ForkHost) AccountExists(addr [20]byte) bool {
	if h.exists[addr] {
		return true
	}
	return len(h.codeOf(addr)) > 0 || h.balanceOf(addr).Sign() > 0
}

func (h *ForkHost) GetStorage(addr [20]byte, key u256.Word) u256.Word {
	k := storageKey{addr, key}
	if v, ok := h.storage[k]; ok {
		return v
	}

	slot := u256.ToBig32(&key)
	hash, err := h.client.GetStorageAt(common.BytesToAddress(addr[:]).Hex(), common.BytesToHash(slot[:]).Hex(), h.block)
	var v u256.Word
	if err == nil {
		v = u256.FromBig32([32]byte(hash))
	}
	h.storage[k] = v
	h.origStorage[k] = v
	return v
}

func (h *ForkHost) SetStorage(addr [20]byte, key, value u256.Word) evmc.StorageStatus {
	k := storageKey{addr, key}
	current := h.GetStorage(addr, key) // first touch records origStorage[k]
	status := evmchost.SStoreStatus(h.origStorage[k], current, value)
	h.storage[k] = value
	return status
}

func (h *ForkHost) GetBalance(addr [20]byte) u256.Word {
	return u256.FromBig32(bigToBytes32(h.balanceOf(addr)))
}

func (h *ForkHost) GetCodeSize(addr [20]byte) uint64 {
	return uint64(len(h.codeOf(addr)))
}

func (h *ForkHost) GetCodeHash(addr [20]byte) u256.Word {
	code := h.codeOf(addr)
	if len(code) == 0 {
		return u256.Word{}
	}
	return h.Hashes.Hash(code)
}

func (h *ForkHost) CopyCode(addr [20]byte, offset uint64, buf []byte) uint64 {
	code := h.codeOf(addr)
	if offset >= uint64(len(code)) {
		return 0
	}
	return uint64(copy(buf, code[offset:]))
}

func (h *ForkHost) Selfdestruct(addr, beneficiary [20]byte) bool {
	bal := h.balance[addr]
	if bal == nil {
		bal = big.NewInt(0)
	}
	ben := h.balance[beneficiary]
	if ben == nil {
		ben = big.NewInt(0)
	}
	h.balance[beneficiary] = new(big.Int).Add(ben, bal)
	h.balance[addr] = big.NewInt(0)
	h.exists[beneficiary] = true
	return true
}

func (h *ForkHost) GetTxContext() evmc.TxContext {
	return h.Tx
}

func (h *ForkHost) GetBlockHash(number int64) u256.Word {
	if v, ok := h.blockHashes[number]; ok {
		return v
	}
	var v u256.Word
	if hash, err := h.client.GetBlockHash(number); err == nil {
		v = u256.FromBig32([32]byte(hash))
	}
	h.blockHashes[number] = v
	return v
}

func (h *ForkHost) EmitLog(addr [20]byte, topics []u256.Word, data []byte) {
	h.Logs = append(h.Logs, LogEntry{Address: addr, Topics: topics, Data: data})
}

func (h *ForkHost) AccessAccount(addr [20]byte) evmc.AccessStatus {
	if h.warmAccounts[addr] {
		return evmc.AccessWarm
	}
	h.warmAccounts[addr] = true
	return evmc.AccessCold
}

func (h *ForkHost) AccessStorage(addr [20]byte, key u256.Word) evmc.AccessStatus {
	k := storageKey{addr, key}
	if h.warmStorage[k] {
		return evmc.AccessWarm
	}
	h.warmStorage[k] = true
	return evmc.AccessCold
}

func (h *ForkHost) GetTransientStorage(addr [20]byte, key u256.Word) u256.Word {
	return h.transient[storageKey{addr, key}]
}

func (h *ForkHost) SetTransientStorage(addr [20]byte, key, value u256.Word) {
	h.transient[storageKey{addr, key}] = value
}

// Call recurses into interpreter.Execute for nested CALL/CREATE family
// messages, the same shelling-out-through-this-Host pattern testhost.Host
// uses, so a forked simulation exercises the real nested-call depth/gas
// protocol rather than stopping at the first message.
func (h *ForkHost) Call(msg evmc.ExecutionMessage) evmc.ExecutionResult {
	switch msg.Kind {
	case evmc.CallCreate, evmc.CallCreate2:
		return h.callCreate(msg)
	default:
		return h.callExisting(msg)
	}
}

func (h *ForkHost) callExisting(msg evmc.ExecutionMessage) evmc.ExecutionResult {
	code := h.codeOf(msg.CodeAddress)
	if !msg.Value.IsZero() && msg.Kind == evmc.CallCall {
		h.transfer(msg.Sender, msg.Destination, msg.Value)
	}
	if len(code) == 0 {
		h.exists[msg.Destination] = true
		return evmc.ExecutionResult{StatusCode: evmc.StatusSuccess, GasLeft: msg.Gas}
	}
	codeHash := h.Hashes.Hash(code)
	hash := common.Hash(u256.ToBig32(&codeHash))
	return interpreter.Execute(h, h.Hashes, h.AnalysisCache, h.Revision, msg, code, &hash)
}

func (h *ForkHost) callCreate(msg evmc.ExecutionMessage) evmc.ExecutionResult {
	addr := h.deriveCreateAddress(msg)
	h.exists[addr] = true
	h.nonce[msg.Sender]++
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

	h.code[addr] = deployed
	addrCopy := addr
	return evmc.ExecutionResult{
		StatusCode:    evmc.StatusSuccess,
		GasLeft:       result.GasLeft - depositCost,
		GasRefund:     result.GasRefund,
		CreateAddress: &addrCopy,
	}
}

func (h *ForkHost) deriveCreateAddress(msg evmc.ExecutionMessage) [20]byte {
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
	nonce := h.nonceOf(msg.Sender)
	encoded, _ := rlp.EncodeToBytes([]interface{}{msg.Sender[:], nonce})
	digest := crypto.Keccak256(encoded)
	var addr [20]byte
	copy(addr[:], digest[12:])
	return addr
}

// nonceOf seeds an account's nonce from the chain on first use, so CREATE
// address derivation matches what a real transaction at this block would
// produce; the simulation's own increments layer on top.
func (h *ForkHost) nonceOf(addr [20]byte) uint64 {
	if !h.nonceFetched[addr] {
		if n, err := h.client.GetTransactionCount(common.BytesToAddress(addr[:]).Hex(), h.block); err == nil {
			h.nonce[addr] += n
		}
		h.nonceFetched[addr] = true
	}
	return h.nonce[addr]
}

func (h *ForkHost) transfer(from, to [20]byte, value u256.Word) {
	v := u256.ToBig32(&value)
	amount := new(big.Int).SetBytes(v[:])
	h.balance[from] = new(big.Int).Sub(h.balanceOf(from), amount)
	h.balance[to] = new(big.Int).Add(h.balanceOf(to), amount)
	h.exists[to] = true
}

func bigToBytes32(x *big.Int) [32]byte {
	var out [32]byte
	b := x.Bytes()
	copy(out[32-len(b):], b)
	return out
}
