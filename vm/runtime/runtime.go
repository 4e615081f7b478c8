// Copyright 2015 The go-ethereum Authors
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

// Package runtime is a quick-execution convenience layer in the spirit of
// go-ethereum's own core/vm/runtime package: set a few fields, run some
// code, get back return data and gas used, with no RPC endpoint or trie
// commit involved. It builds a testhost.Host, the same fresh in-memory
// account universe the interpreter's own tests use, and drives it through
// vm.Instance.
package runtime

import (
	"math"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/evmgo/evmcore/evmc"
	"github.com/evmgo/evmcore/internal/testhost"
	"github.com/evmgo/evmcore/u256"
	ourVm "github.com/evmgo/evmcore/vm"
)

// Config specifies the block/transaction context Execute runs code under.
type Config struct {
	Revision    evmc.Revision
	Origin      common.Address
	Coinbase    common.Address
	BlockNumber int64
	Time        int64
	GasLimit    uint64
	GasPrice    *big.Int
	Value       *big.Int
	BaseFee     *big.Int
	BlobBaseFee *big.Int
	ChainID     *big.Int
	Random      *common.Hash

	GetHashFn func(n int64) common.Hash
}

// SetDefaults fills in zero-valued fields the same way go-ethereum's own
// runtime.SetDefaults does, so callers can pass a mostly-empty Config and
// get sensible single-transaction semantics.
func SetDefaults(cfg *Config) {
	if cfg.GasLimit == 0 || cfg.GasLimit > math.MaxInt64 {
		// Gas is signed in the message/result types, so the effective
		// ceiling is MaxInt64 rather than MaxUint64.
		cfg.GasLimit = math.MaxInt64
	}
	if cfg.GasPrice == nil {
		cfg.GasPrice = new(big.Int)
	}
	if cfg.Value == nil {
		cfg.Value = new(big.Int)
	}
	if cfg.BaseFee == nil {
		cfg.BaseFee = big.NewInt(875000000)
	}
	if cfg.BlobBaseFee == nil {
		cfg.BlobBaseFee = big.NewInt(1)
	}
	if cfg.ChainID == nil {
		cfg.ChainID = big.NewInt(1)
	}
	if cfg.Revision == 0 {
		// The zero value is Frontier, which nothing reaches through this
		// helper; treat it as "unset" and run under current-fork rules.
		cfg.Revision = evmc.Cancun
	}
	if cfg.GetHashFn == nil {
		cfg.GetHashFn = func(n int64) common.Hash {
			return common.BytesToHash(crypto.Keccak256([]byte(new(big.Int).SetInt64(n).String())))
		}
	}
}

// ExecutionResult is Execute's return value.
type ExecutionResult struct {
	ReturnData []byte
	GasUsed    uint64
	GasRefund  uint64
	Reverted   bool
}

// Execute runs code at address with input as call data, crediting origin
// with originBalance first if it's positive. Every call gets an
// independent scratch environment: nothing persists between Execute calls.
func Execute(address common.Address, originBalance *big.Int, code, input []byte, cfg *Config) (*ExecutionResult, error) {
	if cfg == nil {
		cfg = new(Config)
	}
	SetDefaults(cfg)

	host := testhost.New(cfg.Revision)
	host.Tx = evmc.TxContext{
		GasPrice:        u256.FromBig32(bigBytes32(cfg.GasPrice)),
		Origin:          cfg.Origin,
		Coinbase:        cfg.Coinbase,
		BlockNumber:     cfg.BlockNumber,
		BlockTimestamp:  cfg.Time,
		BlockGasLimit:   int64(cfg.GasLimit),
		ChainID:         u256.FromBig32(bigBytes32(cfg.ChainID)),
		BaseFee:         u256.FromBig32(bigBytes32(cfg.BaseFee)),
		BlobBaseFee:     u256.FromBig32(bigBytes32(cfg.BlobBaseFee)),
	}
	if cfg.Random != nil {
		host.Tx.BlockPrevRandao = u256.FromBig32([32]byte(*cfg.Random))
	}

	if originBalance != nil && originBalance.Sign() > 0 {
		bal := u256.FromBig32(bigBytes32(originBalance))
		host.Balance[cfg.Origin] = bal
	}
	host.SetCode(address, code)
	host.Snapshot()

	vmi := ourVm.New()
	msg := evmc.ExecutionMessage{
		Kind:        evmc.CallCall,
		Gas:         int64(cfg.GasLimit),
		Destination: address,
		Sender:      cfg.Origin,
		Input:       input,
		Value:       u256.FromBig32(bigBytes32(cfg.Value)),
		CodeAddress: address,
	}
	result := vmi.Execute(host, cfg.Revision, msg, code)

	used := uint64(0)
	if msg.Gas > result.GasLeft {
		used = uint64(msg.Gas - result.GasLeft)
	}
	refund := uint64(0)
	if result.GasRefund > 0 {
		refund = uint64(result.GasRefund)
	}

	return &ExecutionResult{
		ReturnData: result.Output,
		GasUsed:    used,
		GasRefund:  refund,
		Reverted:   result.StatusCode == evmc.StatusRevert,
	}, nil
}

func bigBytes32(x *big.Int) [32]byte {
	var out [32]byte
	if x == nil {
		return out
	}
	b := x.Bytes()
	copy(out[32-len(b):], b)
	return out
}
