/*
 * psxcore - Register cells: level-triggered storage and edge-triggered latches.
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

// Package bus provides the register-cell and FIFO primitives shared by every
// memory-mapped I/O device, plus the physical-address dispatch table that
// routes CPU and DMAC accesses to them.
package bus

import "errors"

// ErrNotReady signals a transient failure: an edge-triggered register is
// latched pending acknowledgement, or an access straddles byte lanes that
// are not uniformly latched/clear. The CPU retries the faulting instruction
// on the next step without advancing PC.
var ErrNotReady = errors.New("bus: not ready")

// ErrBusError signals access to an unmapped address or an unsupported
// width for a mapped region.
var ErrBusError = errors.New("bus: error")

// Register32 is a level-triggered 32-bit storage cell: always readable and
// writable, with bitfield (offset, length) access for sub-word reads/writes
// used throughout the GPU/SPU/DMAC register files.
type Register32 struct {
	value uint32
}

func (r *Register32) Load() uint32 { return r.value }

func (r *Register32) Store(v uint32) { r.value = v }

// LoadMasked returns the bits of value selected by mask, shifted down to bit 0.
func (r *Register32) LoadMasked(mask uint32) uint32 {
	return (r.value & mask) >> trailingZeros(mask)
}

// StoreMasked replaces only the bits selected by mask, leaving the rest
// untouched — used for CHCR/DICR/status-register partial writes.
func (r *Register32) StoreMasked(v, mask uint32) {
	shift := trailingZeros(mask)
	r.value = (r.value &^ mask) | ((v << shift) & mask)
}

func trailingZeros(mask uint32) uint32 {
	if mask == 0 {
		return 0
	}
	var n uint32
	for mask&1 == 0 {
		mask >>= 1
		n++
	}
	return n
}

// EdgeByteRegister is a write-latched byte cell: a write captures a value
// and sets a per-byte latch; a paired read
// acknowledges by clearing the latch and delivering the value. A write while
// the byte is already latched fails with ErrNotReady. The CDROM, DMAC and
// GPU packages keep their registers in plain fields and do not use this
// type.
//
// Modeled directly on libpsx-rs's B8EdgeRegister / update_latches: a byte
// lane must be uniformly in the "write wants it clear" or "read wants it
// set" state before the access is allowed to proceed.
type EdgeByteRegister struct {
	value  uint8
	latch  bool
}

// Write latches value if the byte is currently unlatched (clear).
// Returns ErrNotReady if a previous write has not yet been acknowledged.
func (r *EdgeByteRegister) Write(v uint8) error {
	if r.latch {
		return ErrNotReady
	}
	r.value = v
	r.latch = true
	return nil
}

// Read acknowledges a pending latch, returning the latched value and
// clearing it. Returns ErrNotReady if nothing is latched.
func (r *EdgeByteRegister) Read() (uint8, error) {
	if !r.latch {
		return 0, ErrNotReady
	}
	r.latch = false
	return r.value, nil
}

// Peek returns the latched value and whether it is pending, without
// acknowledging it, for observing a write without consuming it.
func (r *EdgeByteRegister) Peek() (uint8, bool) {
	return r.value, r.latch
}

// Pending reports whether a write is outstanding (unacknowledged).
func (r *EdgeByteRegister) Pending() bool {
	return r.latch
}

// Clear forcibly drops a pending latch without delivering its value —
// used on channel/controller reset.
func (r *EdgeByteRegister) Clear() {
	r.latch = false
	r.value = 0
}

// EdgeWordRegister is the 32-bit analogue of EdgeByteRegister, tracking
// latch state per byte lane so that narrower accesses (byte/halfword) to a
// subset of the word only succeed when every touched lane agrees.
type EdgeWordRegister struct {
	value  uint32
	latch  [4]bool
}

func laneRange(offset, width uint32) (int, int) {
	start := int(offset)
	end := start + int(width)
	if end > 4 {
		end = 4
	}
	return start, end
}

// uniform reports whether every lane in [start,end) has latch state ==
// wantLatched.
func (r *EdgeWordRegister) uniform(start, end int, wantLatched bool) bool {
	for i := start; i < end; i++ {
		if r.latch[i] != wantLatched {
			return false
		}
	}
	return true
}

// WriteAt writes width bytes (1, 2 or 4) at the given byte offset, latching
// those lanes. Fails with ErrNotReady if any touched lane is already
// latched.
func (r *EdgeWordRegister) WriteAt(offset, width uint32, v uint32) error {
	start, end := laneRange(offset, width)
	if !r.uniform(start, end, false) {
		return ErrNotReady
	}
	shift := uint(offset) * 8
	bits := uint(width) * 8
	mask := uint32((uint64(1)<<bits)-1) << shift
	r.value = (r.value &^ mask) | ((v << shift) & mask)
	for i := start; i < end; i++ {
		r.latch[i] = true
	}
	return nil
}

// ReadAt acknowledges width bytes at offset, clearing those lanes. Fails
// with ErrNotReady if any touched lane is not latched.
func (r *EdgeWordRegister) ReadAt(offset, width uint32) (uint32, error) {
	start, end := laneRange(offset, width)
	if !r.uniform(start, end, true) {
		return 0, ErrNotReady
	}
	shift := uint(offset) * 8
	bits := uint(width) * 8
	mask := uint32((uint64(1)<<bits) - 1)
	v := (r.value >> shift) & mask
	for i := start; i < end; i++ {
		r.latch[i] = false
	}
	return v, nil
}

// Clear drops all pending latches and zeroes the value.
func (r *EdgeWordRegister) Clear() {
	r.value = 0
	r.latch = [4]bool{}
}
