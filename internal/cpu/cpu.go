/*
 * psxcore - R3000A CPU core: fetch/decode/execute, branch delay, exceptions.
 *
 * Copyright (c) 2026, psxcore contributors
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in
 * all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 */

// Package cpu implements the R3000A integer core: the MIPS-I instruction
// subset, the one-slot branch-delay queue, COP0 exception entry/exit, and
// the cache-isolation and unaligned-access (LWL/LWR/SWL/SWR) behaviors.
// The fetch/decode/execute/advance-PC loop runs one instruction per Step,
// with the MIPS-specific branch-delay and exception machinery layered on top.
package cpu

import (
	"errors"

	"github.com/psxcore-dev/psxcore/internal/bus"
	"github.com/psxcore-dev/psxcore/internal/gte"
)

// Bus is the subset of *bus.Bus the CPU needs; kept as an interface so
// tests can substitute a bare region.
type Bus interface {
	Read(vaddr uint32, width int) (uint32, error)
	Write(vaddr uint32, width int, value uint32) error
}

// delaySlot is the one-entry branch-delay queue: a branch/jump sets
// {target, pending=true}; the following instruction (the delay slot)
// always executes first, and only once it retires does PC take target.
type delaySlot struct {
	pending bool
	target  uint32
}

// CPU holds the R3000A integer register file, program counter, HI/LO
// multiply/divide results, COP0, and the attached GTE coprocessor.
type CPU struct {
	GPR [32]uint32
	PC  uint32
	HI  uint32
	LO  uint32

	COP0 *COP0
	GTE  *gte.GTE

	bus   Bus
	delay delaySlot

	// inDelaySlot is true while executing the instruction immediately
	// following a branch/jump, needed for correct EPC adjustment on
	// exceptions raised from within it.
	inDelaySlot bool

	// stalled is set when the last memory access returned ErrNotReady;
	// the instruction is retried next Step without advancing PC.
	stalled bool
}

// New creates a CPU reset to the BIOS entry point (0xBFC0_0000).
func New(b Bus, g *gte.GTE) *CPU {
	c := &CPU{bus: b, COP0: NewCOP0(), GTE: g}
	c.PC = 0xBFC0_0000
	return c
}

func (c *CPU) reg(i uint32) uint32 {
	return c.GPR[i&0x1F]
}

func (c *CPU) setReg(i uint32, v uint32) {
	if i == 0 {
		return
	}
	c.GPR[i&0x1F] = v
}

// errReservedInstruction describes an unrecognized opcode; no code path
// in this package returns it.
var errReservedInstruction = errors.New("cpu: reserved instruction")

// Step executes exactly one instruction: fetch, decode, execute, then
// either commit a branch armed by the *previous* instruction's delay slot
// or simply advance PC, before checking the pending interrupt line. A
// branch/jump instruction arms delay.pending for the following
// instruction to commit; it never resolves within its own Step, since the
// delay-slot instruction must retire first. On ErrNotReady from a bus
// access, PC is left unchanged so the caller re-issues the same fetch
// next Step.
func (c *CPU) Step() error {
	if !c.stalled {
		c.inDelaySlot = c.delay.pending
	}
	committing := c.inDelaySlot
	commitTarget := c.delay.target

	word, err := c.bus.Read(c.PC, 4)
	if err != nil {
		if errors.Is(err, bus.ErrNotReady) {
			c.stalled = true
			return nil
		}
		c.raiseAddressError(ExcAdEL, c.PC)
		return nil
	}
	c.stalled = false

	inst := decode(word)
	nextPC := c.PC + 4

	if committing {
		// Clear the armed branch before execute() runs, so a branch
		// inside the delay slot arms its own fresh delay instead of
		// being clobbered by the commit below.
		c.delay.pending = false
	}

	fetchPC := c.PC
	if err := c.execute(inst); err != nil {
		if errors.Is(err, bus.ErrNotReady) {
			c.stalled = true
			return nil
		}
		// execute() already raised the appropriate COP0 exception and
		// redirected PC; don't also advance/commit below.
		return nil
	}
	// execute() moves PC only when it raises an exception; keep the
	// exception vector rather than advancing or committing a branch.
	if c.PC != fetchPC {
		return nil
	}

	if committing {
		c.PC = commitTarget
	} else {
		c.PC = nextPC
	}
	c.checkInterrupt()
	return nil
}

// setBranch arms the delay slot: the next instruction still executes
// in-line, and PC jumps to target only after it retires.
func (c *CPU) setBranch(target uint32) {
	c.delay.pending = true
	c.delay.target = target
}

// checkInterrupt implements the instruction-boundary check:
// IEc ∧ IM2 ∧ Cause.IP2 raises an interrupt exception.
func (c *CPU) checkInterrupt() {
	if !c.COP0.IEc() {
		return
	}
	if c.COP0.IM()&(1<<2) == 0 {
		return
	}
	if c.COP0.Cause&(1<<10) == 0 {
		return
	}
	c.raiseException(ExcInt, 0)
}

// SetIRQLine lets the interrupt controller drive Cause.IP2 each step.
func (c *CPU) SetIRQLine(pending bool) {
	c.COP0.SetIP2(pending)
}

// raiseException implements the generic exception-entry sequence: save
// EPC (adjusted back one word if in a branch delay slot), set Cause, push
// the KU/IE mode stack, and vector to the BIOS or RAM exception handler.
func (c *CPU) raiseException(exc uint32, copNum uint32) {
	epc := c.PC
	if c.inDelaySlot {
		epc -= 4
	}
	c.COP0.EPC = epc
	c.COP0.SetException(exc, copNum)
	c.COP0.SetBranchDelay(c.inDelaySlot)
	c.COP0.PushModeStack()
	c.delay.pending = false
	if c.COP0.BEV() {
		c.PC = 0xBFC0_0180
	} else {
		c.PC = 0x8000_0080
	}
}

func (c *CPU) raiseAddressError(exc uint32, badAddr uint32) {
	c.COP0.BadVAddr = badAddr
	c.raiseException(exc, 0)
}

// RFE implements the COP0 RFE instruction: pop the KU/IE mode stack and
// discard any pending branch-delay target, since a return from exception
// must not resume a stale branch.
func (c *CPU) rfe() {
	c.COP0.PopModeStack()
	c.delay.pending = false
}
