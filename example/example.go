package main

import (
	"log"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/evmgo/evmcore/evmc"
	"github.com/evmgo/evmcore/opcodes"
	"github.com/evmgo/evmcore/rpc"
	"github.com/evmgo/evmcore/simulator"
	"github.com/evmgo/evmcore/vm/runtime"
)

func main() {
	simpleRun()
	exampleSimulateBundle()
}

// simpleRun executes a tiny contract entirely in memory via vm/runtime: it
// echoes its calldata word back into storage slot 0, then returns it.
func simpleRun() {
	code := []byte{
		byte(opcodes.PUSH0), byte(opcodes.CALLDATALOAD),
		byte(opcodes.PUSH0), byte(opcodes.SSTORE),
		byte(opcodes.PUSH0), byte(opcodes.SLOAD),
		byte(opcodes.PUSH0), byte(opcodes.MSTORE),
		byte(opcodes.PUSH1), byte(0x20), byte(opcodes.PUSH0), byte(opcodes.RETURN),
	}

	cfg := &runtime.Config{
		Revision: evmc.Cancun,
		GasLimit: 300000,
	}
	input := hexutil.MustDecode(`0x0000000000000000000000000000000000000000000000000000000000000020`)

	result, err := runtime.Execute(common.HexToAddress("0x11"), big.NewInt(0), code, input, cfg)
	if err != nil {
		log.Fatal(err)
	}

	log.Println("-----------------------------------------------------------")
	log.Println(hexutil.Encode(result.ReturnData))
	log.Println(result.GasUsed)
}

// exampleSimulateBundle runs several transactions against state forked from
// a live JSON-RPC endpoint, observing each other's writes in sequence.
func exampleSimulateBundle() {
	rpcEndpoint := "https://eth.llamarpc.com"
	blkNumber := big.NewInt(20219603)

	rpcClt := rpc.NewClient(rpcEndpoint)
	sim, err := simulator.NewSimulator(rpcClt)
	if err != nil {
		log.Fatal(err)
	}

	simulations := []simulator.Simulation{
		{
			From:        common.HexToAddress(""),
			To:          common.HexToAddress(""),
			BlockNumber: blkNumber,
			GasLimit:    300000,
			Value:       big.NewInt(196834),
			Input:       hexutil.MustDecode(``),
			Revision:    evmc.Cancun,
		},
		{
			From:        common.HexToAddress(""),
			To:          common.HexToAddress(""),
			BlockNumber: blkNumber,
			GasLimit:    300000,
			Value:       big.NewInt(0),
			Input:       hexutil.MustDecode(``),
			Revision:    evmc.Cancun,
		},
	}

	results, err := sim.SimulateBundle(simulations, blkNumber, evmc.Cancun)
	if err != nil {
		log.Fatal(err)
	}

	for _, r := range results {
		log.Println("-----------------------------------------------------------")
		log.Println(hexutil.Encode(r.ReturnedData))
		log.Println(r.GasUsed)
	}
}
