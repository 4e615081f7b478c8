// Package vm is the EVMC glue layer: it owns the caches and options an
// embedding host configures once and reuses across many Execute calls, and
// wraps interpreter.Execute/interpreter.NewStepper with the panic-isolation
// an EVMC VM instance owes its host (a Go panic escaping across what would,
// in a real EVMC build, be a C ABI boundary is exactly the "FFI glue must
// not let a panic reach the caller" contract an EVM execution entry point
// observes by returning errors instead of panicking on out-of-gas/stack
// faults). Destroy/Execute/GetCapabilities/SetOption are this module's
// version of the VM descriptor's four function pointers; New creates the
// instance, and StepN is the steppable extension.
package vm

import (
	"fmt"
	"unicode/utf8"

	"github.com/ethereum/go-ethereum/common"
	ethlog "github.com/ethereum/go-ethereum/log"

	"github.com/evmgo/evmcore/codeanalysis"
	"github.com/evmgo/evmcore/evmc"
	"github.com/evmgo/evmcore/evmchost"
	"github.com/evmgo/evmcore/hashcache"
	"github.com/evmgo/evmcore/interpreter"
	"github.com/evmgo/evmcore/u256"
)

// Name and Version are reported to the host the way an EVMC VM descriptor
// reports vm->name and vm->version.
const (
	Name    = "evmcore"
	Version = "0.1.0"
)

// Instance is one configured VM. A single Instance is meant to be shared
// across many Execute/StepN calls from the same embedding host, built once
// and reused for every CALL it processes. It carries one analysis cache per
// flavor: Execute interns Classification analyses, StepN interns Rewritten
// ones.
type Instance struct {
	analysisCache  *codeanalysis.ClassificationCache
	rewrittenCache *codeanalysis.RewrittenCache
	hashes         *hashcache.HashCache
	logging        bool
}

// New returns an Instance with default-sized caches and logging disabled,
// ready to accept SetOption calls before the first Execute.
func New() *Instance {
	return &Instance{
		analysisCache:  codeanalysis.NewClassificationCache(codeanalysis.DefaultCacheSize),
		rewrittenCache: codeanalysis.NewRewrittenCache(codeanalysis.DefaultCacheSize),
		hashes:         hashcache.Default(),
	}
}

// GetCapabilities reports this VM only implements EVM1 semantics; it has no
// EWASM or built-in-precompile support to advertise.
func (vmi *Instance) GetCapabilities() evmc.Capabilities {
	return evmc.CapabilityEVM1
}

// Execute runs one top-level or nested call. Any panic escaping the
// interpreter (an invariant violation, not an expected EVM fault) is
// recovered and reported as StatusInternalError rather than propagated to
// the host. A nil host is a contract violation: Execute panics before the
// recovery is installed, so that panic is not recovered.
func (vmi *Instance) Execute(host evmchost.HostInterface, rev evmc.Revision, msg evmc.ExecutionMessage, code []byte) (result evmc.ExecutionResult) {
	if host == nil {
		panic("evmcore: Execute called with a nil host")
	}
	defer func() {
		if r := recover(); r != nil {
			if vmi.logging {
				ethlog.Error("evmcore: recovered panic in Execute", "panic", r)
			}
			result = evmc.ExecutionResult{StatusCode: evmc.StatusInternalError, GasLeft: 0}
		}
	}()

	codeHash := vmi.codeHash(msg, code)
	if vmi.logging {
		ethlog.Debug("evmcore: execute", "kind", msg.Kind, "depth", msg.Depth, "gas", msg.Gas, "revision", rev)
	}
	return interpreter.ExecuteWithConfig(interpreter.Config{Trace: vmi.logging}, host, vmi.hashes, vmi.analysisCache, rev, msg, code, codeHash)
}

// codeHash returns the analysis-cache key for a call: the hash the host
// supplied with the message when it did, otherwise keccak256 of the code
// bytes. Empty code is not worth caching.
func (vmi *Instance) codeHash(msg evmc.ExecutionMessage, code []byte) *common.Hash {
	if msg.CodeHash != nil {
		ch := common.Hash(u256.ToBig32(msg.CodeHash))
		return &ch
	}
	if len(code) == 0 {
		return nil
	}
	h := vmi.hashes.Hash(code)
	ch := common.Hash(u256.ToBig32(&h))
	return &ch
}

// StepN begins or resumes a bounded-step debugging session. Callers own the
// returned Stepper's lifetime; this method just constructs it, mirroring
// interpreter.NewStepper's contract.
func (vmi *Instance) StepN(host evmchost.HostInterface, rev evmc.Revision, msg evmc.ExecutionMessage, code []byte, steps int) (stepper *interpreter.Stepper, result evmc.StepResult) {
	defer func() {
		if r := recover(); r != nil {
			if vmi.logging {
				ethlog.Error("evmcore: recovered panic in StepN", "panic", r)
			}
			result = evmc.StepResult{StepStatusCode: evmc.StepFailed, StatusCode: evmc.StatusInternalError}
		}
	}()

	s := interpreter.NewStepper(host, vmi.hashes, vmi.rewrittenCache, rev, msg, code, vmi.codeHash(msg, code))
	return s, s.StepN(steps)
}

// SetOption recognizes "logging", "code-analysis-cache-size", and
// "hash-cache-size"; unknown keys succeed as no-ops for forward
// compatibility.
func (vmi *Instance) SetOption(key, value string) evmc.SetOptionError {
	if !utf8.ValidString(key) || !utf8.ValidString(value) {
		return evmc.SetOptionInvalidValue
	}
	switch key {
	case "logging":
		switch value {
		case "true":
			vmi.logging = true
		case "false":
			vmi.logging = false
		default:
			return evmc.SetOptionInvalidValue
		}
		return evmc.SetOptionSuccess

	case "code-analysis-cache-size":
		size, err := parsePositiveInt(value)
		if err != nil {
			return evmc.SetOptionInvalidValue
		}
		vmi.analysisCache = codeanalysis.NewClassificationCache(size)
		vmi.rewrittenCache = codeanalysis.NewRewrittenCache(size)
		return evmc.SetOptionSuccess

	case "hash-cache-size":
		size, err := parsePositiveInt(value)
		if err != nil {
			return evmc.SetOptionInvalidValue
		}
		vmi.hashes = hashcache.New(size)
		return evmc.SetOptionSuccess

	default:
		return evmc.SetOptionSuccess
	}
}

// Destroy releases an Instance's caches. It exists to mirror the VM
// descriptor's destroy function pointer; there is nothing to free beyond
// letting the garbage collector reclaim the caches once dereferenced.
func (vmi *Instance) Destroy() {
	vmi.analysisCache = nil
	vmi.rewrittenCache = nil
	vmi.hashes = nil
}

func parsePositiveInt(s string) (int, error) {
	if s == "" {
		return 0, fmt.Errorf("empty size")
	}
	n := 0
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0, fmt.Errorf("non-integer size %q", s)
		}
		n = n*10 + int(c-'0')
	}
	if n <= 0 {
		return 0, fmt.Errorf("non-positive size %q", s)
	}
	return n, nil
}
