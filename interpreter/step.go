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

package interpreter

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/evmgo/evmcore/codeanalysis"
	"github.com/evmgo/evmcore/codereader"
	"github.com/evmgo/evmcore/evmc"
	"github.com/evmgo/evmcore/evmchost"
	"github.com/evmgo/evmcore/hashcache"
	"github.com/evmgo/evmcore/opcodes"
	"github.com/evmgo/evmcore/u256"
)

// rewrittenReader adapts the Rewritten cell cursor to the dispatch loop's
// codeCursor surface. Opcodes come out of cells, PUSH immediates are served
// from the cell's inline data instead of re-reading code bytes, and runs of
// no-op cells coalesce in Next; PC still reports original code-byte offsets
// through the PcMap.
type rewrittenReader struct {
	r *codereader.SteppableReader
}

func (c *rewrittenReader) Get() (opcodes.OpCode, error) {
	cell, err := c.r.Get()
	if err != nil {
		return 0, err
	}
	return cell.Op, nil
}

func (c *rewrittenReader) Next() {
	c.r.Next()
}

func (c *rewrittenReader) PC() uint64 {
	return c.r.PC()
}

func (c *rewrittenReader) TryJump(dest uint64) error {
	return c.r.TryJump(dest)
}

// GetPushData returns the current PUSH cell's pre-decoded operand and
// advances one cell; the immediate width was folded in at analysis time, so
// n is not needed here.
func (c *rewrittenReader) GetPushData(n int) u256.Word {
	cell, err := c.r.Get()
	if err != nil {
		return u256.Word{}
	}
	c.r.Next()
	return cell.Data
}

// Stepper holds a suspended frame across successive StepN calls. The host
// keeps one alive per in-flight debugging session and drives it forward a
// bounded number of opcodes at a time. Stepping walks the Rewritten cell
// array (one pre-decoded cell per instruction) where Execute walks the
// Classification; host-visible PCs stay original-code offsets in both modes.
type Stepper struct {
	frame *Frame
}

// NewStepper analyzes code into the Rewritten flavor (via rewrittenCache if
// given) and returns a Stepper positioned at the start of execution, not yet
// run.
func NewStepper(host evmchost.HostInterface, hashes *hashcache.HashCache, rewrittenCache *codeanalysis.RewrittenCache, rev evmc.Revision, msg evmc.ExecutionMessage, code []byte, codeHash *common.Hash) *Stepper {
	var analyzed *codeanalysis.Rewritten
	if codeHash != nil && rewrittenCache != nil {
		analyzed = rewrittenCache.GetOrAnalyze(*codeHash, code)
	} else {
		analyzed = codeanalysis.Analyze(code)
	}
	cursor := &rewrittenReader{r: codereader.NewSteppableReader(analyzed)}

	ctx := evmchost.NewExecutionContext(host)
	f := newFrame(ctx, hashes, rev, msg, code, cursor)
	if len(code) == 0 {
		f.status = Stopped
	}
	return &Stepper{frame: f}
}

// Done reports whether the underlying frame has already reached a terminal
// status; StepN on a done Stepper returns immediately.
func (s *Stepper) Done() bool {
	return s.frame.status != Running
}

// StepN runs at most steps opcodes (steps <= 0 means "run to completion")
// and returns a snapshot of the frame's state at the point it paused or
// terminated. The caller must not reuse the Stepper after a terminal
// StepResult (anything but StepRunning) without discarding it, since the
// frame's stack has already been released back to its pool.
func (s *Stepper) StepN(steps int) evmc.StepResult {
	f := s.frame
	if f.status != Running {
		return s.snapshot(f.status == Running)
	}

	maxSteps := steps
	if maxSteps <= 0 {
		maxSteps = 0 // run() treats 0 as unbounded
	}
	finished := f.run(maxSteps)
	result := s.snapshot(!finished)
	if finished {
		f.release()
	}
	return result
}

func (s *Stepper) snapshot(stillRunning bool) evmc.StepResult {
	f := s.frame

	status := evmc.StepRunning
	switch {
	case stillRunning:
		status = evmc.StepRunning
	case f.status == Stopped:
		status = evmc.StepStopped
	case f.status == Returned:
		status = evmc.StepReturned
	case f.status == Reverted:
		status = evmc.StepReverted
	case f.status == Failed:
		status = evmc.StepFailed
	}

	stackCopy := make([]u256.Word, len(f.stack.Data()))
	copy(stackCopy, f.stack.Data())

	memCopy := make([]byte, f.mem.Len())
	copy(memCopy, f.mem.Data())

	return evmc.StepResult{
		StepStatusCode:     status,
		StatusCode:         toEVMCStatus(f.status, f.failKind),
		Revision:           f.revision,
		PC:                 f.reader.PC(),
		GasLeft:            f.gasLeft,
		GasRefund:          f.gasRefund,
		Output:             f.output,
		Stack:              stackCopy,
		Memory:             memCopy,
		LastCallReturnData: f.returnData,
	}
}
