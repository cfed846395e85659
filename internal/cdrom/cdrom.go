/*
 * psxcore - CDROM front-end: command state machine with response/data FIFOs.
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

// Package cdrom implements the command-dispatched CDROM front-end: the CPU
// selects a register index in STATUS, writes
// command/parameter bytes, and each step() dispatches the pending command
// by opcode through a per-command iteration cursor that models multi-phase
// acknowledge/data/second-response sequences as a resumable,
// iteration-counted state machine.
package cdrom

import "github.com/psxcore-dev/psxcore/internal/bus"

// Interrupt cause numbers pushed alongside each response phase.
const (
	IntNone        = 0
	IntDataReady   = 1
	IntSecondResp  = 2
	IntAcknowledge = 3
	IntNoDisc      = 5
)

// Opcode values.
const (
	CmdGetStat = 0x01
	CmdSetloc  = 0x02
	CmdReadN   = 0x06
	CmdPause   = 0x09
	CmdSetmode = 0x0E
	CmdSeekL   = 0x15
	CmdTest    = 0x19
	CmdGetID   = 0x1A
)

// Backend supplies sector data; a real implementation reads from a disc
// image, a test stub can return canned sectors.
type Backend interface {
	ReadSector(minute, second, frame byte) ([2048]byte, error)
	HasDisc() bool
}

// IRQSink receives the numbered interrupt causes this controller raises;
// in the full system this is the INTC's CDROM source.
type IRQSink interface {
	RaiseCDROM(cause int)
}

type state int

const (
	stateIdle state = iota
	stateSeeking
	stateReading
	statePausing
)

// CDROM owns the response/parameter/data FIFOs and the pending-command
// cursor.
type CDROM struct {
	backend Backend
	irq     IRQSink

	response *bus.FIFO[byte]
	param    *bus.FIFO[byte]
	data     *bus.FIFO[byte]

	pendingOp   int
	iteration   int
	hasPending  bool

	msfM, msfS, msfF byte
	mode             byte

	st state

	sectorDelay int
	biosVersion byte
}

func New(backend Backend, irq IRQSink) *CDROM {
	return &CDROM{
		backend:     backend,
		irq:         irq,
		response:    bus.NewFIFO[byte](16),
		param:       bus.NewFIFO[byte](16),
		data:        bus.NewFIFO[byte](2352),
		biosVersion: 0xC3,
	}
}

// WriteParam pushes one parameter byte (written to the same I/O address
// demultiplexed by STATUS.index).
func (c *CDROM) WriteParam(b byte) error { return c.param.WriteOne(b) }

// WriteCommand latches a new pending command and resets its iteration
// cursor.
func (c *CDROM) WriteCommand(op byte) {
	c.pendingOp = int(op)
	c.iteration = 0
	c.hasPending = true
}

// ReadResponse pops one byte of the response FIFO.
func (c *CDROM) ReadResponse() (byte, error) { return c.response.ReadOne() }

// ReadData pops one byte of the current sector's data FIFO.
func (c *CDROM) ReadData() (byte, error) { return c.data.ReadOne() }

// PullWord implements dmac.Port for DMAC channel 3 draining the data FIFO.
func (c *CDROM) PullWord() (uint32, error) {
	var w uint32
	for i := 0; i < 4; i++ {
		b, err := c.data.ReadOne()
		if err != nil {
			return w, err
		}
		w |= uint32(b) << (8 * i)
	}
	return w, nil
}

func (c *CDROM) PushWord(uint32) error { return nil } // CDROM channel is read-only

func statByte(st state) byte {
	b := byte(0x02) // motor on
	switch st {
	case stateReading:
		b |= 0x20
	case stateSeeking:
		b |= 0x40
	}
	return b
}

// Step dispatches the pending command by its iteration cursor;
// each call advances at most one phase.
func (c *CDROM) Step() {
	c.tickSectorDelay()
	if !c.hasPending {
		return
	}
	switch c.pendingOp {
	case CmdGetStat:
		c.response.WriteOne(statByte(c.st))
		c.raise(IntAcknowledge)
		c.hasPending = false
	case CmdSetloc:
		c.msfF, _ = c.param.ReadOne()
		c.msfS, _ = c.param.ReadOne()
		c.msfM, _ = c.param.ReadOne()
		c.response.WriteOne(statByte(c.st))
		c.raise(IntAcknowledge)
		c.hasPending = false
	case CmdSetmode:
		c.mode, _ = c.param.ReadOne()
		c.response.WriteOne(statByte(c.st))
		c.raise(IntAcknowledge)
		c.hasPending = false
	case CmdReadN:
		c.st = stateReading
		c.sectorDelay = sectorDelayTicks
		c.response.WriteOne(statByte(c.st))
		c.raise(IntAcknowledge)
		c.hasPending = false
	case CmdPause:
		c.stepTwoPhase(func() {
			c.st = statePausing
			c.response.WriteOne(statByte(c.st))
		}, func() {
			c.st = stateIdle
			c.response.WriteOne(statByte(c.st))
			c.raise(IntSecondResp)
		})
	case CmdSeekL:
		c.stepTwoPhase(func() {
			c.st = stateSeeking
			c.response.WriteOne(statByte(c.st))
		}, func() {
			c.st = stateIdle
			c.response.WriteOne(statByte(c.st))
			c.raise(IntSecondResp)
		})
	case CmdTest:
		sub, _ := c.param.ReadOne()
		if sub == 0x20 {
			c.response.WriteOne(0x97)
			c.response.WriteOne(0x01)
			c.response.WriteOne(0x10)
			c.response.WriteOne(0xC2)
		}
		c.raise(IntAcknowledge)
		c.hasPending = false
	case CmdGetID:
		c.stepTwoPhase(func() {
			c.response.WriteOne(statByte(c.st))
		}, func() {
			if c.backend != nil && c.backend.HasDisc() {
				for _, b := range [8]byte{0x02, 0x00, 0x20, 0x00, 'S', 'C', 'E', 'A'} {
					c.response.WriteOne(b)
				}
				c.raiseOverride(IntSecondResp)
			} else {
				c.response.WriteOne(0x08)
				c.raiseOverride(IntNoDisc)
			}
		})
	default:
		c.hasPending = false
	}
}

// stepTwoPhase runs first on iteration 0 (then raises IntAcknowledge) and
// second on iteration 1, then clears the pending command, matching the
// Pause/SeekL/GetID "ack then second-response" shape. The second callback
// raises its own cause (IntSecondResp, or IntNoDisc for GetID without a disc).
func (c *CDROM) stepTwoPhase(first, second func()) {
	switch c.iteration {
	case 0:
		first()
		c.raise(IntAcknowledge)
		c.iteration = 1
	case 1:
		second()
		c.hasPending = false
	}
}

// raise sends the numbered cause via the IRQSink, when one is attached.
func (c *CDROM) raise(cause int) {
	if c.irq != nil {
		c.irq.RaiseCDROM(cause)
	}
}

func (c *CDROM) raiseOverride(cause int) { c.raise(cause) }

// sectorDelayTicks approximates the scheduler-tick delay before a
// requested sector becomes available. True seek-time accuracy is out of
// scope, so a fixed budget is used.
const sectorDelayTicks = 200

func (c *CDROM) tickSectorDelay() {
	if c.st != stateReading || c.sectorDelay <= 0 {
		return
	}
	c.sectorDelay--
	if c.sectorDelay == 0 {
		c.deliverSector()
	}
}

func (c *CDROM) deliverSector() {
	if c.backend == nil {
		return
	}
	sector, err := c.backend.ReadSector(c.msfM, c.msfS, c.msfF)
	if err != nil {
		return
	}
	for _, b := range sector {
		_ = c.data.WriteOne(b)
	}
	c.raise(IntDataReady)
	c.sectorDelay = sectorDelayTicks // keep streaming while in ReadN
}
