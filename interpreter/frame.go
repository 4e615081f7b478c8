// Copyright 2014 The go-ethereum Authors
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

// Package interpreter is the execution engine: the stack/memory/gas state
// machine and the per-opcode semantics, built on top of
// codereader/stack/memory/codeanalysis/evmchost. A frame struct carries all
// per-call state, a jump table of operations holds constant/dynamic gas and
// stack-bounds metadata, and a single dispatch loop drives execution against
// the evmchost.HostInterface callback table.
package interpreter

import (
	"github.com/ethereum/go-ethereum/common"
	ethlog "github.com/ethereum/go-ethereum/log"

	"github.com/evmgo/evmcore/codeanalysis"
	"github.com/evmgo/evmcore/codereader"
	"github.com/evmgo/evmcore/evmc"
	"github.com/evmgo/evmcore/evmchost"
	"github.com/evmgo/evmcore/hashcache"
	"github.com/evmgo/evmcore/memory"
	"github.com/evmgo/evmcore/opcodes"
	"github.com/evmgo/evmcore/stack"
	"github.com/evmgo/evmcore/u256"
)

// codeCursor is the reader surface the dispatch loop drives. Execute walks
// the Classification flavor via codereader.Reader; the Stepper walks the
// Rewritten cell array via a rewrittenReader. PC is always reported in
// original code-byte offsets regardless of flavor.
type codeCursor interface {
	Get() (opcodes.OpCode, error)
	Next()
	PC() uint64
	TryJump(dest uint64) error
	GetPushData(n int) u256.Word
}

// Frame holds all per-call state: the stack/memory/gas state machine plus
// the handles (host shim, hash cache, code reader) opcode handlers need.
// A Frame lives exactly as long as one interpreter call and never escapes
// it.
type Frame struct {
	ctx      *evmchost.ExecutionContext
	hashes   *hashcache.HashCache
	revision evmc.Revision

	msg  evmc.ExecutionMessage
	code []byte

	reader codeCursor

	stack *stack.Stack
	mem   *memory.Memory

	gasLeft   int64
	gasRefund int64

	// returnData is the output of the most recently completed nested call,
	// read by RETURNDATASIZE/RETURNDATACOPY.
	returnData []byte
	// output is this frame's own RETURN/REVERT payload.
	output []byte

	status   Status
	failKind FailKind

	static bool
	depth  int32
	trace  bool

	createAddress *[20]byte
}

// Config carries per-execution interpreter settings.
type Config struct {
	// Trace emits a structured log line per executed opcode.
	Trace bool
}

// newFrame builds a Frame ready to run from pc 0.
func newFrame(ctx *evmchost.ExecutionContext, hashes *hashcache.HashCache, rev evmc.Revision, msg evmc.ExecutionMessage, code []byte, cursor codeCursor) *Frame {
	if msg.Gas < 0 {
		// A negative budget would wrap the unsigned comparisons in useGas;
		// clamp it so such a frame just runs out of gas immediately.
		msg.Gas = 0
	}
	return &Frame{
		ctx:      ctx,
		hashes:   hashes,
		revision: rev,
		msg:      msg,
		code:     code,
		reader:   cursor,
		stack:    stack.New(),
		mem:      memory.New(),
		gasLeft:  msg.Gas,
		status:   Running,
		static:   msg.Flags&evmc.FlagStatic != 0,
		depth:    msg.Depth,
	}
}

func (f *Frame) release() {
	stack.Return(f.stack)
}

// useGas subtracts cost from gasLeft. On any failure gas_left is reported
// as zero, so an underflow clamps gasLeft to 0 rather than leaving it
// negative.
func (f *Frame) useGas(cost uint64) bool {
	if cost > uint64(f.gasLeft) {
		f.gasLeft = 0
		return false
	}
	f.gasLeft -= int64(cost)
	return true
}

func (f *Frame) refund(delta int64) {
	f.gasRefund += delta
}

// ensureMemory grows memory to at least size bytes, charging the
// incremental expansion cost, and reports whether gas allowed it. The cost
// is charged before any allocation happens, so a huge requested size fails
// as out-of-gas instead of attempting the allocation.
func (f *Frame) ensureMemory(size uint64) bool {
	if !f.useGas(f.mem.ExpansionCost(size)) {
		return false
	}
	f.mem.Resize(size)
	return true
}

// maxMemOffset bounds fixed-width (32-byte word or single-byte) memory
// accesses so that offset+32 cannot wrap around uint64. Any offset beyond
// it would cost far more gas than a block allows anyway.
const maxMemOffset = ^uint64(0) - 32

// memRange validates and returns (offset, size) for a memory access
// described by two stack words, guarding against the size computation
// overflowing before it ever reaches ensureMemory.
func memRange(offsetW, sizeW *u256.Word) (offset, size uint64, ok bool) {
	if sizeW.IsZero() {
		return 0, 0, true
	}
	if !offsetW.IsUint64() || !sizeW.IsUint64() {
		return 0, 0, false
	}
	off, sz := offsetW.Uint64(), sizeW.Uint64()
	if off > off+sz { // overflow
		return 0, 0, false
	}
	return off, sz, true
}

// run drives the frame to completion (or, if maxSteps > 0, for at most
// maxSteps iterations) and returns whether it actually stopped being
// Running (false means maxSteps was exhausted while still Running, the
// steppable-mode suspension case).
func (f *Frame) run(maxSteps int) bool {
	steps := 0
	for f.status == Running {
		if maxSteps > 0 && steps >= maxSteps {
			return false
		}
		f.step()
		steps++
	}
	return true
}

func (f *Frame) step() {
	op, err := f.reader.Get()
	if err == codereader.ErrOutOfRange {
		f.status = Stopped
		return
	}

	if f.trace {
		ethlog.Debug("evm step", "pc", f.reader.PC(), "op", op.String(), "gas", f.gasLeft, "stack", f.stack.Len())
	}

	entry, ok := jumpTable[op]
	if !ok || !f.revision.AtLeast(entry.minRevision) {
		f.terminate(fail(FailInvalidInstruction))
		return
	}

	if serr := stack.CheckDepth(f.stack, entry.minStack, entry.stackDelta); serr != nil {
		switch serr.(type) {
		case *stack.UnderflowError:
			f.terminate(fail(FailStackUnderflow))
		case *stack.OverflowError:
			f.terminate(fail(FailStackOverflow))
		default:
			f.terminate(fail(FailInternal))
		}
		return
	}

	if !f.useGas(entry.constantGas) {
		f.terminate(fail(FailOutOfGas))
		return
	}

	if entry.dynamicGas != nil {
		cost, derr := entry.dynamicGas(f)
		if derr != nil {
			f.terminate(derr)
			return
		}
		if !f.useGas(cost) {
			f.terminate(fail(FailOutOfGas))
			return
		}
	}

	if eerr := entry.execute(f); eerr != nil {
		f.terminate(eerr)
		return
	}

	if !entry.movesPC {
		f.reader.Next()
	}
}

// terminate transitions the frame to its final Failed/Reverted state. Every
// failure other than Revert zeroes gas_left and discards the refund.
func (f *Frame) terminate(err error) {
	if err == errRevert {
		f.status = Reverted
		f.gasRefund = 0
		return
	}
	failure, ok := err.(*Failure)
	if !ok {
		failure = &Failure{Kind: FailInternal}
	}
	f.status = Failed
	f.failKind = failure.Kind
	f.gasLeft = 0
	f.gasRefund = 0
}

// Execute is the interpreter's single entry point: it analyzes (or reuses a
// cached analysis of) code, runs it to completion, and returns the
// host-facing ExecutionResult. codeHash, if non-nil, is used only as the
// analysis-cache key; a nil hash (or a nil cache) means the analysis is
// computed without caching.
func Execute(host evmchost.HostInterface, hashes *hashcache.HashCache, analysisCache *codeanalysis.ClassificationCache, rev evmc.Revision, msg evmc.ExecutionMessage, code []byte, codeHash *common.Hash) evmc.ExecutionResult {
	return ExecuteWithConfig(Config{}, host, hashes, analysisCache, rev, msg, code, codeHash)
}

// ExecuteWithConfig is Execute with explicit interpreter settings; the VM
// instance uses it to thread its logging option down to the step loop.
func ExecuteWithConfig(cfg Config, host evmchost.HostInterface, hashes *hashcache.HashCache, analysisCache *codeanalysis.ClassificationCache, rev evmc.Revision, msg evmc.ExecutionMessage, code []byte, codeHash *common.Hash) evmc.ExecutionResult {
	var analysis []codeanalysis.CodeByteType
	if codeHash != nil && analysisCache != nil {
		analysis = analysisCache.GetOrAnalyze(*codeHash, code)
	} else {
		analysis = codeanalysis.Classify(code)
	}

	ctx := evmchost.NewExecutionContext(host)
	f := newFrame(ctx, hashes, rev, msg, code, codereader.NewReader(code, analysis))
	f.trace = cfg.Trace
	defer f.release()

	if len(code) == 0 {
		f.status = Stopped
	} else {
		f.run(0)
	}

	return f.result()
}

func (f *Frame) result() evmc.ExecutionResult {
	return evmc.ExecutionResult{
		StatusCode:    toEVMCStatus(f.status, f.failKind),
		GasLeft:       f.gasLeft,
		GasRefund:     f.gasRefund,
		Output:        f.output,
		CreateAddress: f.createAddress,
	}
}

// pushAddress and popAddress convert between a 20-byte address and a stack
// word holding it in its low 20 bytes.
func pushAddress(s *stack.Stack, addr [20]byte) {
	var padded [32]byte
	copy(padded[12:], addr[:])
	w := u256.FromBig32(padded)
	s.Push(&w)
}

func popAddress(s *stack.Stack) [20]byte {
	w := s.Pop()
	b := w.Bytes32()
	var addr [20]byte
	copy(addr[:], b[12:])
	return addr
}
