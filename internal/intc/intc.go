/*
 * psxcore - Interrupt controller: STAT/MASK aggregation feeding COP0.Cause.IP2.
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

// Package intc implements the PSX interrupt controller: two 16-bit
// registers (STAT, MASK) over 11 sources, aggregated into a single pending
// line consumed by the CPU's COP0.Cause.IP2 bit.
package intc

// Source identifies one of the 11 IRQ lines.
type Source uint

const (
	VBlank Source = iota
	GPU
	CDROM
	DMA
	Timer0
	Timer1
	Timer2
	Controller
	SIO
	SPU
	Lightpen
	numSources
)

// INTC holds the sticky pending register and the mask register.
type INTC struct {
	stat uint16
	mask uint16
}

func New() *INTC { return &INTC{} }

// Raise latches the STAT bit for source. Latching is sticky: it is cleared
// only by the CPU acknowledging with Acknowledge.
func (c *INTC) Raise(source Source) {
	c.stat |= 1 << source
}

// Acknowledge clears every STAT bit that is 0 in clearMask and keeps the
// bits that are 1: the guest writes 0 to a bit to acknowledge it.
func (c *INTC) Acknowledge(clearMask uint16) {
	c.stat &= clearMask
}

// SetMask replaces the MASK register.
func (c *INTC) SetMask(mask uint16) { c.mask = mask }

// Stat returns the raw STAT register.
func (c *INTC) Stat() uint16 { return c.stat }

// Mask returns the raw MASK register.
func (c *INTC) Mask() uint16 { return c.mask }

// Pending reports the aggregate interrupt line: STAT & MASK != 0. This
// value drives COP0.Cause.IP2 at every CPU instruction boundary.
func (c *INTC) Pending() bool {
	return c.stat&c.mask != 0
}

// ReadReg/WriteReg implement the 16-bit-wide register pair for the bus
// front-end (offsets 0 = STAT, 4 = MASK).
func (c *INTC) ReadReg(offset uint32) uint16 {
	switch offset {
	case 0:
		return c.stat
	case 4:
		return c.mask
	default:
		return 0
	}
}

func (c *INTC) WriteReg(offset uint32, value uint16) {
	switch offset {
	case 0:
		c.Acknowledge(value)
	case 4:
		c.SetMask(value)
	}
}
