package vm_test

import (
	"testing"

	"github.com/evmgo/evmcore/evmc"
	"github.com/evmgo/evmcore/internal/testhost"
	"github.com/evmgo/evmcore/opcodes"
	"github.com/evmgo/evmcore/vm"
)

func TestExecuteSimpleAdd(t *testing.T) {
	code := []byte{
		byte(opcodes.PUSH1), 2,
		byte(opcodes.PUSH1), 3,
		byte(opcodes.ADD),
		byte(opcodes.PUSH1), 0,
		byte(opcodes.MSTORE),
		byte(opcodes.PUSH1), 32,
		byte(opcodes.PUSH1), 0,
		byte(opcodes.RETURN),
	}

	host := testhost.New(evmc.Cancun)
	addr := [20]byte{0x01}
	host.SetCode(addr, code)
	host.Snapshot()

	instance := vm.New()
	if instance.GetCapabilities()&evmc.CapabilityEVM1 == 0 {
		t.Fatal("GetCapabilities() missing CapabilityEVM1")
	}

	msg := evmc.ExecutionMessage{
		Kind:        evmc.CallCall,
		Gas:         100_000,
		Destination: addr,
		CodeAddress: addr,
	}
	result := instance.Execute(host, evmc.Cancun, msg, code)
	if result.StatusCode != evmc.StatusSuccess {
		t.Fatalf("StatusCode = %v, want StatusSuccess", result.StatusCode)
	}
}

func TestSetOptionLogging(t *testing.T) {
	instance := vm.New()
	if err := instance.SetOption("logging", "true"); err != evmc.SetOptionSuccess {
		t.Fatalf("SetOption(logging, true) = %v, want success", err)
	}
	if err := instance.SetOption("logging", "nonsense"); err != evmc.SetOptionInvalidValue {
		t.Fatalf("SetOption(logging, nonsense) = %v, want SetOptionInvalidValue", err)
	}
}

func TestSetOptionCacheSizes(t *testing.T) {
	instance := vm.New()
	if err := instance.SetOption("code-analysis-cache-size", "64"); err != evmc.SetOptionSuccess {
		t.Fatalf("SetOption(code-analysis-cache-size, 64) = %v, want success", err)
	}
	if err := instance.SetOption("hash-cache-size", "64"); err != evmc.SetOptionSuccess {
		t.Fatalf("SetOption(hash-cache-size, 64) = %v, want success", err)
	}
	if err := instance.SetOption("hash-cache-size", "not-a-number"); err != evmc.SetOptionInvalidValue {
		t.Fatalf("SetOption(hash-cache-size, not-a-number) = %v, want SetOptionInvalidValue", err)
	}
}

func TestSetOptionUnknownKeySucceeds(t *testing.T) {
	instance := vm.New()
	if err := instance.SetOption("some-future-option", "whatever"); err != evmc.SetOptionSuccess {
		t.Fatalf("SetOption(unknown) = %v, want success (forward-compatible no-op)", err)
	}
}

func TestStepN(t *testing.T) {
	code := []byte{
		byte(opcodes.PUSH1), 1,
		byte(opcodes.PUSH1), 2,
		byte(opcodes.ADD),
		byte(opcodes.STOP),
	}
	host := testhost.New(evmc.Cancun)
	addr := [20]byte{0x02}
	host.SetCode(addr, code)
	host.Snapshot()

	instance := vm.New()
	msg := evmc.ExecutionMessage{
		Kind:        evmc.CallCall,
		Gas:         100_000,
		Destination: addr,
		CodeAddress: addr,
	}

	_, step := instance.StepN(host, evmc.Cancun, msg, code, 2)
	if step.StepStatusCode != evmc.StepRunning {
		t.Fatalf("StepStatusCode = %v, want StepRunning", step.StepStatusCode)
	}
}
