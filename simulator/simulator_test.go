package simulator

import (
	"log"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/evmgo/evmcore/evmc"
	"github.com/evmgo/evmcore/opcodes"
	"github.com/evmgo/evmcore/rpc"
)

func TestSimulate(t *testing.T) {
	code := []byte{
		byte(opcodes.PUSH0), byte(opcodes.CALLDATALOAD),
		byte(opcodes.PUSH0), byte(opcodes.SSTORE),
		byte(opcodes.PUSH0), byte(opcodes.SLOAD),
		byte(opcodes.PUSH0), byte(opcodes.MSTORE),
		byte(opcodes.PUSH1), byte(0x20), byte(opcodes.PUSH0), byte(opcodes.RETURN),
	}

	rpcEndpoint := "https://eth.llamarpc.com"
	blkNumber := big.NewInt(1)

	rpcClt := rpc.NewClient(rpcEndpoint)
	sim, err := NewSimulator(rpcClt)
	if err != nil {
		t.Fatal(err)
	}

	contractAddr := common.HexToAddress("0x0000000000000000000000000000000000000011")

	simulation := Simulation{
		From:        common.HexToAddress("0x0000000000000000000000000000000000000000"),
		To:          contractAddr,
		Code:        code,
		BlockNumber: blkNumber,
		GasLimit:    300000,
		Value:       big.NewInt(0),
		Input:       hexutil.MustDecode(`0x0000000000000000000000000000000000000000000000000000000000000020`),
		Revision:    evmc.Cancun,
	}

	result, err := sim.Simulate(simulation)
	if err != nil {
		t.Fatal(err)
	}

	log.Println("-----------------------------------------------------------")
	log.Println(hexutil.Encode(result.ReturnedData))
	log.Println(result.GasUsed)

	val := new(big.Int).SetBytes(result.ReturnedData)
	if val.Cmp(big.NewInt(32)) != 0 {
		t.Fatalf("value: %s i: %d", val, 32)
	}
}

func TestSimulateBundle(t *testing.T) {
	code := []byte{
		byte(opcodes.PUSH0), byte(opcodes.CALLDATALOAD),
		byte(opcodes.PUSH0), byte(opcodes.SLOAD),
		byte(opcodes.ADD),
		byte(opcodes.PUSH0), byte(opcodes.SSTORE),
		byte(opcodes.PUSH0), byte(opcodes.SLOAD),
		byte(opcodes.PUSH0), byte(opcodes.MSTORE),
		byte(opcodes.PUSH1), byte(0x20), byte(opcodes.PUSH0), byte(opcodes.RETURN),
	}

	rpcEndpoint := "https://eth.llamarpc.com"
	blkNumber := big.NewInt(1)

	rpcClt := rpc.NewClient(rpcEndpoint)
	sim, err := NewSimulator(rpcClt)
	if err != nil {
		t.Fatal(err)
	}

	contractAddr := common.HexToAddress("0x0000000000000000000000000000000000000011")

	simulations := []Simulation{
		{
			From:        common.HexToAddress("0x0000000000000000000000000000000000000000"),
			To:          contractAddr,
			Code:        code,
			BlockNumber: blkNumber,
			GasLimit:    300000,
			Value:       big.NewInt(0),
			Input:       hexutil.MustDecode(`0x0000000000000000000000000000000000000000000000000000000000000001`),
		},
		{
			From:        common.HexToAddress("0x0000000000000000000000000000000000000000"),
			To:          contractAddr,
			Code:        code,
			BlockNumber: blkNumber,
			GasLimit:    300000,
			Value:       big.NewInt(0),
			Input:       hexutil.MustDecode(`0x0000000000000000000000000000000000000000000000000000000000000002`),
		},
		{
			From:        common.HexToAddress("0x0000000000000000000000000000000000000000"),
			To:          contractAddr,
			Code:        code,
			BlockNumber: blkNumber,
			GasLimit:    300000,
			Value:       big.NewInt(0),
			Input:       hexutil.MustDecode(`0x0000000000000000000000000000000000000000000000000000000000000003`),
		},
	}

	results, err := sim.SimulateBundle(simulations, blkNumber, evmc.Cancun)
	if err != nil {
		t.Fatal(err)
	}

	for i, r := range results {
		log.Println("-----------------------------------------------------------")
		log.Println(hexutil.Encode(r.ReturnedData))
		log.Println(r.GasUsed)

		val := new(big.Int).SetBytes(r.ReturnedData)
		switch i {
		case 0:
			if val.Cmp(big.NewInt(1)) != 0 {
				t.Fatalf("value: %s i: %d", val, i)
			}
		case 1:
			if val.Cmp(big.NewInt(3)) != 0 {
				t.Fatalf("value: %s i: %d", val, i)
			}
		case 2:
			if val.Cmp(big.NewInt(6)) != 0 {
				t.Fatalf("value: %s i: %d", val, i)
			}
		}
	}
}
