/*
 * psxcore - DMA controller: 7 fixed channels, 3 sync modes, IRQ aggregation.
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

// Package dmac implements the PSX's 7-channel DMA controller: MDECin,
// MDECout, GPU, CDROM, SPU, PIO and OTC, each running one of three sync
// modes (Continuous, Blocks, LinkedList) against a shared Port. Channel
// bookkeeping and IRQ aggregation follow a "one controller scans all
// subchannels, raises one line" shape, adapted here to the DMAC's fixed
// 7-channel, non-CCW model.
package dmac

import (
	"errors"
	"log/slog"

	"github.com/psxcore-dev/psxcore/internal/bus"
)

// ErrInvalidChannel is returned by Channel for an out-of-range index.
var ErrInvalidChannel = errors.New("dmac: invalid channel index")

// SyncMode selects the CHCR transfer-shape field.
type SyncMode uint8

const (
	SyncContinuous SyncMode = iota
	SyncBlocks
	SyncLinkedList
)

// Direction selects the CHCR transfer-direction field.
type Direction uint8

const (
	ToRAM Direction = iota
	FromRAM
)

// Index names the 7 fixed channels.
type Index int

const (
	MDECin Index = iota
	MDECout
	GPU
	CDROM
	SPU
	PIO
	OTC
	NumChannels
)

// Port is the device-side half of one DMA channel: the DMAC pulls/pushes
// 32-bit words through it, one per Step call, leaving device-specific FIFO
// semantics (GPU command FIFO, SPU transfer buffer, CDROM data FIFO, ...)
// to the owning package.
type Port interface {
	// PullWord supplies the next word for a ToRAM (device-to-memory)
	// transfer.
	PullWord() (uint32, error)
	// PushWord accepts the next word of a FromRAM transfer.
	PushWord(uint32) error
}

// Channel holds one DMA channel's MADR/BCR/CHCR register state and the
// in-flight transfer cursor.
type Channel struct {
	index Index
	port  Port

	madr uint32
	bcr  uint32
	chcr uint32

	active     bool
	remaining  uint32 // words left in the current block
	blockWords uint32 // words per block, Blocks mode
	blocksLeft uint32 // blocks left, Blocks mode
	cursor     uint32
}

// DMAC owns all 7 channels plus the shared DPCR/DICR control registers.
type DMAC struct {
	bus      *bus.Bus
	channels [NumChannels]*Channel
	dpcr     uint32
	dicr     uint32
}

// New creates a DMAC wired to b for OTC-chain and linked-list memory
// access. Ports are attached per-channel with AttachPort.
func New(b *bus.Bus) *DMAC {
	d := &DMAC{bus: b, dpcr: 0x0765_4321}
	for i := range d.channels {
		d.channels[i] = &Channel{index: Index(i)}
	}
	return d
}

// AttachPort wires a channel to its device-side transfer endpoint.
func (d *DMAC) AttachPort(i Index, p Port) {
	d.channels[i].port = p
}

func (d *DMAC) channel(i Index) (*Channel, error) {
	if i < 0 || i >= NumChannels {
		return nil, ErrInvalidChannel
	}
	return d.channels[i], nil
}

// channelEnabled reports whether DPCR's 4-bit priority nibble for channel i
// has its enable bit (bit 3 of the nibble) set.
func (d *DMAC) channelEnabled(i Index) bool {
	shift := uint(i) * 4
	return d.dpcr>>(shift+3)&1 != 0
}

// WriteMADR/WriteBCR/WriteCHCR implement the per-channel register writes;
// writing CHCR with the start bit set (bit 24) begins a transfer.
func (d *DMAC) WriteMADR(i Index, v uint32) error {
	c, err := d.channel(i)
	if err != nil {
		return err
	}
	c.madr = v & 0x00FF_FFFF
	return nil
}

func (d *DMAC) WriteBCR(i Index, v uint32) error {
	c, err := d.channel(i)
	if err != nil {
		return err
	}
	c.bcr = v
	return nil
}

func (d *DMAC) MADR(i Index) uint32 { return d.channels[i].madr }
func (d *DMAC) BCR(i Index) uint32  { return d.channels[i].bcr }
func (d *DMAC) CHCR(i Index) uint32 { return d.channels[i].chcr }

func (d *DMAC) WriteCHCR(i Index, v uint32) error {
	c, err := d.channel(i)
	if err != nil {
		return err
	}
	c.chcr = v
	starting := v&(1<<24) != 0
	if !starting {
		c.active = false
		return nil
	}
	if !d.channelEnabled(i) {
		return nil
	}
	c.start()
	return nil
}

func (c *Channel) syncMode() SyncMode { return SyncMode((c.chcr >> 9) & 0x3) }
func (c *Channel) direction() Direction {
	if c.chcr&1 != 0 {
		return FromRAM
	}
	return ToRAM
}
func (c *Channel) addrStep() int32 {
	if c.chcr&(1<<1) != 0 {
		return -4
	}
	return 4
}

func (c *Channel) start() {
	c.active = true
	c.cursor = c.madr
	switch c.syncMode() {
	case SyncContinuous:
		size := c.bcr & 0xFFFF
		if size == 0 {
			size = 0x1_0000
		}
		c.remaining = size
	case SyncBlocks:
		bs := c.bcr & 0xFFFF
		if bs == 0 {
			bs = 0x1_0000
		}
		ba := (c.bcr >> 16) & 0xFFFF
		c.blockWords = bs
		c.blocksLeft = ba
		c.remaining = bs
	case SyncLinkedList:
		c.remaining = 0 // header word read on first Step
	}
}

// WriteDPCR/WriteDICR set the shared control registers. In DICR, bit 15
// forces the master flag and bit 23 is the master IRQ enable; bits 24-30
// are the per-channel "enable IRQ" flags and bits 16-22 are the
// per-channel "request" (pending) flags, combined into bit 31 (master
// flag) by recomputeMasterFlag.
func (d *DMAC) WriteDPCR(v uint32) { d.dpcr = v }
func (d *DMAC) DPCR() uint32       { return d.dpcr }

func (d *DMAC) WriteDICR(v uint32) {
	// Bits 24-30: per-channel enable, stored as written. Bits 16-22:
	// write-1-to-clear ack.
	keep := v & 0x7FFF_FFFF
	ackMask := (v >> 16) & 0x7F
	cur := (d.dicr >> 16) & 0x7F
	cur &^= ackMask
	d.dicr = (keep &^ 0x007F_0000) | (cur << 16)
	d.recomputeMasterFlag()
}

func (d *DMAC) DICR() uint32 { return d.dicr }

func (d *DMAC) recomputeMasterFlag() {
	forceIRQ := d.dicr&(1<<15) != 0
	masterEnable := d.dicr&(1<<23) != 0
	reqFlags := (d.dicr >> 16) & 0x7F
	enFlags := (d.dicr >> 24) & 0x7F
	anyIRQ := masterEnable && (reqFlags&enFlags) != 0
	if forceIRQ || anyIRQ {
		d.dicr |= 1 << 31
	} else {
		d.dicr &^= 1 << 31
	}
}

// requestIRQ sets channel i's pending bit in DICR, following the same
// "raise, then let the aggregate recompute" shape intc.Raise uses.
func (d *DMAC) requestIRQ(i Index) {
	d.dicr |= 1 << (16 + uint(i))
	d.recomputeMasterFlag()
}

// IRQPending reports DICR's aggregate master flag (bit 31), the line fed
// into the interrupt controller's DMA source.
func (d *DMAC) IRQPending() bool {
	return d.dicr&(1<<31) != 0
}

// perStepWordBudget bounds how many words Step moves per channel per call
// so a 0x1_0000-entry OTC clear cannot monopolize the scheduler's tick budget.
const perStepWordBudget = 16

// Step advances every active channel by up to perStepWordBudget words each
// and reports the total words transferred this call, so the scheduler can
// charge a proportional number of bus cycles.
func (d *DMAC) Step() (int, error) {
	total := 0
	for i := range d.channels {
		c := d.channels[i]
		if !c.active {
			continue
		}
		n, err := d.stepChannel(c)
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

func (d *DMAC) stepChannel(c *Channel) (int, error) {
	switch c.syncMode() {
	case SyncLinkedList:
		return d.stepLinkedList(c)
	default:
		return d.stepBlockLike(c)
	}
}

func (d *DMAC) stepBlockLike(c *Channel) (int, error) {
	n := 0
	for n < perStepWordBudget && c.active {
		if c.remaining == 0 {
			if c.syncMode() == SyncBlocks && c.blocksLeft > 1 {
				c.blocksLeft--
				c.remaining = c.blockWords
				continue
			}
			c.finish(d)
			break
		}
		if err := d.transferWord(c); err != nil {
			return n, err
		}
		n++
		c.remaining--
	}
	return n, nil
}

// transferWord moves one word between the channel's Port and the word at
// c.cursor, then advances cursor by the channel's address step. The OTC
// channel has no Port: it instead writes the standard "next address or
// terminator" chain word for the reverse-order clear used by the BIOS to
// seed the GPU's ordering-table free list.
func (d *DMAC) transferWord(c *Channel) error {
	if c.index == OTC {
		return d.otcStep(c)
	}
	switch c.direction() {
	case ToRAM:
		v, err := c.port.PullWord()
		if err != nil {
			return err
		}
		if err := d.bus.WritePhysical(c.cursor, 4, v); err != nil {
			return err
		}
	case FromRAM:
		v, err := d.bus.ReadPhysical(c.cursor, 4)
		if err != nil {
			return err
		}
		if err := c.port.PushWord(v); err != nil {
			return err
		}
	}
	c.cursor = uint32(int64(c.cursor) + int64(c.addrStep()))
	return nil
}

// otcStep implements the OTC "reverse clear" chain: every step before the
// last writes the address of the previous entry into the current entry,
// then backs up four bytes; the final step instead writes the link
// terminator 0x00FF_FFFF into the current entry.
func (d *DMAC) otcStep(c *Channel) error {
	if c.remaining == 1 {
		return d.bus.WritePhysical(c.cursor, 4, 0x00FF_FFFF)
	}
	prev := (c.cursor - 4) & 0x00FF_FFFF
	if err := d.bus.WritePhysical(c.cursor, 4, prev); err != nil {
		return err
	}
	c.cursor -= 4
	return nil
}

// stepLinkedList walks GPU linked-list chains: each node is
// a header word (low 24 bits = next node address, top byte = payload word
// count) followed by that many payload words pushed to the Port. c.cursor
// tracks the next word to read; c.madr holds the pending next-node address
// once a header has been consumed.
func (d *DMAC) stepLinkedList(c *Channel) (int, error) {
	n := 0
	for n < perStepWordBudget && c.active {
		if c.remaining == 0 {
			if c.cursor&0x0080_0000 != 0 {
				c.finish(d)
				break
			}
			if c.cursor == 0 {
				// next_header_address == 0 is not the documented
				// end-of-list convention (bit 23 set, e.g. 0xFF_FFFF),
				// but real firmware treats it defensively as a null
				// pointer and aborts the chain rather than reading
				// node data from address 0.
				slog.Warn("dmac: linked-list null header pointer, aborting chain", "channel", int(c.index))
				c.finish(d)
				break
			}
			header, err := d.bus.ReadPhysical(c.cursor, 4)
			if err != nil {
				return n, err
			}
			n++
			c.remaining = header >> 24
			c.madr = header & 0x00FF_FFFF
			c.cursor += 4
			continue
		}
		v, err := d.bus.ReadPhysical(c.cursor, 4)
		if err != nil {
			return n, err
		}
		if err := c.port.PushWord(v); err != nil {
			return n, err
		}
		n++
		c.remaining--
		c.cursor += 4
		if c.remaining == 0 {
			c.cursor = c.madr
		}
	}
	return n, nil
}

// finish clears STARTBUSY/busy and raises the channel's IRQ, after any
// mode-specific register writeback: Continuous leaves MADR/BCR
// unchanged; Blocks writes back BCR=0 and MADR=the final transfer
// address; LinkedList writes back MADR=0x00FF_FFFF.
func (c *Channel) finish(d *DMAC) {
	switch c.syncMode() {
	case SyncBlocks:
		c.bcr = 0
		c.madr = c.cursor & 0x00FF_FFFF
	case SyncLinkedList:
		c.madr = 0x00FF_FFFF
	}
	c.active = false
	c.chcr &^= 1 << 24
	c.chcr &^= 1 << 28 // busy flag
	d.requestIRQ(c.index)
}
