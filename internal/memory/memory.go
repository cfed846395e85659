/*
 * psxcore - Main RAM, scratchpad and BIOS ROM.
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

// Package memory implements the three linear byte stores of the bus map:
// 2 MiB main RAM, a 1 KiB scratchpad and a 512 KiB read-only BIOS image.
package memory

import (
	"errors"

	"github.com/psxcore-dev/psxcore/internal/bus"
)

const (
	MainSize       = 2 * 1024 * 1024
	ScratchpadSize = 1024
	BIOSSize       = 512 * 1024
)

// ErrUnaligned names an access that is not naturally aligned for its
// width. The accessors in this package do not check alignment and never
// return it.
var ErrUnaligned = errors.New("memory: unaligned access")

// RAM is the 2 MiB main memory region, mirrored 4x up to 0x0080_0000.
type RAM struct {
	data [MainSize]byte
}

func NewRAM() *RAM { return &RAM{} }

func (m *RAM) Contains(paddr uint32) bool {
	return paddr < bus.MainRAMMirror
}

func (m *RAM) index(paddr uint32) uint32 {
	return paddr % MainSize
}

func (m *RAM) Read(paddr uint32, width int) (uint32, error) {
	return readWidth(m.data[:], m.index(paddr), width)
}

func (m *RAM) Write(paddr uint32, width int, value uint32) error {
	return writeWidth(m.data[:], m.index(paddr), width, value)
}

// ReadRaw copies length bytes starting at addr (no alignment requirement;
// addresses wrap modulo the 2 MiB RAM size) — used by round-trip tests.
func (m *RAM) ReadRaw(addr uint32, length int) []byte {
	start := m.index(addr)
	out := make([]byte, length)
	for i := range out {
		out[i] = m.data[(start+uint32(i))%MainSize]
	}
	return out
}

// WriteRaw is the write counterpart of ReadRaw.
func (m *RAM) WriteRaw(addr uint32, data []byte) {
	start := m.index(addr)
	for i, b := range data {
		m.data[(start+uint32(i))%MainSize] = b
	}
}

// Scratchpad is the 1 KiB fast-RAM region used by the BIOS and games as a
// software-managed data cache.
type Scratchpad struct {
	data [ScratchpadSize]byte
}

func NewScratchpad() *Scratchpad { return &Scratchpad{} }

func (s *Scratchpad) Contains(paddr uint32) bool {
	return paddr >= bus.ScratchpadBase && paddr < bus.ScratchpadBase+bus.ScratchpadSize
}

func (s *Scratchpad) Read(paddr uint32, width int) (uint32, error) {
	return readWidth(s.data[:], paddr-bus.ScratchpadBase, width)
}

func (s *Scratchpad) Write(paddr uint32, width int, value uint32) error {
	return writeWidth(s.data[:], paddr-bus.ScratchpadBase, width, value)
}

// BIOS is the 512 KiB read-only ROM image, loaded at startup.
type BIOS struct {
	data [BIOSSize]byte
}

func NewBIOS() *BIOS { return &BIOS{} }

// Load installs a BIOS image, truncating or zero-padding to BIOSSize.
func (b *BIOS) Load(image []byte) {
	n := copy(b.data[:], image)
	for i := n; i < BIOSSize; i++ {
		b.data[i] = 0
	}
}

func (b *BIOS) Contains(paddr uint32) bool {
	return paddr >= bus.BIOSBase && paddr < bus.BIOSBase+bus.BIOSSize
}

func (b *BIOS) Read(paddr uint32, width int) (uint32, error) {
	return readWidth(b.data[:], paddr-bus.BIOSBase, width)
}

// Write to BIOS is ignored (ROM), matching real hardware; it is not a bus
// error since several BIOSes probe-write it during POST.
func (b *BIOS) Write(_ uint32, _ int, _ uint32) error {
	return nil
}

// readWidth/writeWidth implement little-endian 1/2/4-byte access against a
// flat byte slice, matching the PSX's MIPS-I little-endian convention.
func readWidth(data []byte, offset uint32, width int) (uint32, error) {
	switch width {
	case 1:
		return uint32(data[offset]), nil
	case 2:
		return uint32(data[offset]) | uint32(data[offset+1])<<8, nil
	case 4:
		return uint32(data[offset]) |
			uint32(data[offset+1])<<8 |
			uint32(data[offset+2])<<16 |
			uint32(data[offset+3])<<24, nil
	default:
		return 0, bus.ErrBusError
	}
}

func writeWidth(data []byte, offset uint32, width int, value uint32) error {
	switch width {
	case 1:
		data[offset] = byte(value)
	case 2:
		data[offset] = byte(value)
		data[offset+1] = byte(value >> 8)
	case 4:
		data[offset] = byte(value)
		data[offset+1] = byte(value >> 8)
		data[offset+2] = byte(value >> 16)
		data[offset+3] = byte(value >> 24)
	default:
		return bus.ErrBusError
	}
	return nil
}
