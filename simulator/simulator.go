// Package simulator runs a transaction against a live chain's state without
// submitting it. The backing state is an rpc.ForkHost rather than a
// trie-backed StateDB, and execution runs through vm.Instance. A bundle
// shares one ForkHost across its transactions so later transactions in the
// bundle observe earlier ones' writes without needing a trie commit in
// between.
package simulator

import (
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/evmgo/evmcore/evmc"
	"github.com/evmgo/evmcore/interpreter"
	"github.com/evmgo/evmcore/rpc"
	"github.com/evmgo/evmcore/u256"
	ourVm "github.com/evmgo/evmcore/vm"
)

// Simulation describes one call to run against forked chain state.
type Simulation struct {
	From        common.Address
	To          common.Address
	BlockNumber *big.Int
	GasLimit    uint64
	GasPrice    *big.Int
	Value       *big.Int
	Input       []byte
	// Code overrides the code read from chain, for simulating against
	// not-yet-deployed bytecode at an arbitrary address.
	Code []byte
	// Revision selects the EVM fork rules Simulate runs under; the zero
	// value (Frontier) is treated as unset and defaults to Cancun.
	// SimulateBundle uses its own rev argument instead.
	Revision evmc.Revision
}

// SimulationResult is the outcome of one Simulate call.
type SimulationResult struct {
	ReturnedData []byte
	GasUsed      uint64
	GasLimit     uint64
	Reverted     bool
}

// Simulator runs Simulations against a JSON-RPC endpoint.
type Simulator struct {
	RPCClt *rpc.Client
	vm     *ourVm.Instance
}

// NewSimulator returns a Simulator reading through rpcClt.
func NewSimulator(rpcClt *rpc.Client) (*Simulator, error) {
	if rpcClt == nil {
		return nil, errors.New("simulator: nil rpc client")
	}
	return &Simulator{RPCClt: rpcClt, vm: ourVm.New()}, nil
}

func blockTag(blockNumber *big.Int) string {
	if blockNumber == nil || blockNumber.Sign() <= 0 {
		return "latest"
	}
	return "0x" + blockNumber.Text(16)
}

// Simulate runs one transaction against a fresh ForkHost pinned at
// simulation.BlockNumber. A single pass is enough: ForkHost memoizes every
// RPC read for the life of one simulation, so re-running against a warmed
// state would buy nothing.
func (s *Simulator) Simulate(simulation Simulation) (*SimulationResult, error) {
	rev := simulation.Revision
	if rev == 0 {
		rev = evmc.Cancun
	}
	host := rpc.NewForkHost(s.RPCClt, blockTag(simulation.BlockNumber), rev, evmc.TxContext{
		GasPrice:    u256.FromBig32(bigBytes32(simulation.GasPrice)),
		Origin:      simulation.From,
		BlockNumber: blockNumberInt64(simulation.BlockNumber),
	})
	return s.run(host, simulation)
}

// SimulateBundle runs simulations sequentially against one shared ForkHost,
// so writes from an earlier transaction are visible to later ones in the
// same bundle.
func (s *Simulator) SimulateBundle(simulations []Simulation, blockNumber *big.Int, rev evmc.Revision) ([]*SimulationResult, error) {
	if len(simulations) == 0 {
		return nil, nil
	}
	host := rpc.NewForkHost(s.RPCClt, blockTag(blockNumber), rev, evmc.TxContext{
		BlockNumber: blockNumberInt64(blockNumber),
	})

	results := make([]*SimulationResult, 0, len(simulations))
	for _, sim := range simulations {
		res, err := s.run(host, sim)
		if err != nil {
			return results, err
		}
		results = append(results, res)
	}
	return results, nil
}

func (s *Simulator) run(host *rpc.ForkHost, simulation Simulation) (*SimulationResult, error) {
	code := simulation.Code
	if len(code) == 0 {
		code = host.CodeAt(simulation.To)
	}

	value := simulation.Value
	if value == nil {
		value = big.NewInt(0)
	}

	msg := evmc.ExecutionMessage{
		Kind:        evmc.CallCall,
		Gas:         int64(simulation.GasLimit),
		Destination: simulation.To,
		Sender:      simulation.From,
		Input:       simulation.Input,
		Value:       u256.FromBig32(bigBytes32(value)),
		CodeAddress: simulation.To,
	}

	result := s.vm.Execute(host, host.Revision, msg, code)

	used := int64(0)
	if msg.Gas > result.GasLeft {
		used = msg.Gas - result.GasLeft
	}
	// Apply the refund the way a transaction-processing host would: capped
	// against gas actually used.
	if refund := result.GasRefund; refund > 0 {
		if maxRefund := used / interpreter.MaxRefundQuotient(host.Revision); refund > maxRefund {
			refund = maxRefund
		}
		used -= refund
	}

	return &SimulationResult{
		ReturnedData: result.Output,
		GasUsed:      uint64(used),
		GasLimit:     simulation.GasLimit,
		Reverted:     result.StatusCode == evmc.StatusRevert,
	}, nil
}

func blockNumberInt64(n *big.Int) int64 {
	if n == nil {
		return 0
	}
	return n.Int64()
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
