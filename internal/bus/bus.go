/*
 * psxcore - Physical address dispatch: maps a 32-bit address to one region handler.
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

package bus

// Physical memory map.
const (
	MainRAMBase  uint32 = 0x0000_0000
	MainRAMSize  uint32 = 0x0020_0000 // 2 MiB
	MainRAMMirror uint32 = 0x0080_0000 // mirrored 4x up to here

	ScratchpadBase uint32 = 0x1F80_0000
	ScratchpadSize uint32 = 0x0000_0400 // 1 KiB

	IORegBase uint32 = 0x1F80_1000
	IORegSize uint32 = 0x0000_1000

	BIOSBase uint32 = 0x1FC0_0000
	BIOSSize uint32 = 0x0008_0000 // 512 KiB

	CacheControlAddr uint32 = 0xFFFE_0130

	KUSEGEnd uint32 = 0x8000_0000
	KSEG0Base uint32 = 0x8000_0000
	KSEG0End  uint32 = 0xA000_0000
	KSEG1Base uint32 = 0xA000_0000
	KSEG1End  uint32 = 0xC000_0000
)

// Translate maps a virtual (CPU-visible) address to a physical address by
// masking off the KSEG0/KSEG1 segment bits, so both fold to the same
// physical range. Every other address (KUSEG and KSEG2) is masked to its
// low 29 bits.
func Translate(vaddr uint32) uint32 {
	switch {
	case vaddr >= KSEG0Base && vaddr < KSEG0End:
		return vaddr - KSEG0Base
	case vaddr >= KSEG1Base && vaddr < KSEG1End:
		return vaddr - KSEG1Base
	default:
		return vaddr & 0x1FFF_FFFF
	}
}

// Region is a memory-mapped handler installed at a specific address range.
// Read/Write widths are 1, 2 or 4 bytes; a handler that does not support a
// given width returns ErrBusError. NotReady (ErrNotReady) indicates a
// transient failure the CPU must stall and retry on.
type Region interface {
	// Contains reports whether paddr falls in this region.
	Contains(paddr uint32) bool
	// Read returns the value at paddr for the given width in bytes.
	Read(paddr uint32, width int) (uint32, error)
	// Write stores value at paddr for the given width in bytes.
	Write(paddr uint32, width int, value uint32) error
}

// namedRegion pairs a Region with a human-readable name for diagnostics.
type namedRegion struct {
	name   string
	region Region
}

// Bus dispatches CPU and DMAC physical-address accesses to the installed
// regions. Exactly one region claims any given address.
type Bus struct {
	regions []namedRegion
	// Locked marks the bus as owned by an in-flight DMA transfer; CPU
	// accesses to DMALockRange while this is true return ErrNotReady.
	Locked       bool
	DMALockLow   uint32
	DMALockHigh  uint32
}

// NewBus creates an empty dispatch table.
func NewBus() *Bus {
	return &Bus{}
}

// Install registers a region handler under a diagnostic name. Later
// installs take priority on overlap, so the most specific handler can
// claim an address first.
func (b *Bus) Install(name string, r Region) {
	b.regions = append(b.regions, namedRegion{name: name, region: r})
}

func (b *Bus) find(paddr uint32) Region {
	for i := len(b.regions) - 1; i >= 0; i-- {
		if b.regions[i].region.Contains(paddr) {
			return b.regions[i].region
		}
	}
	return nil
}

// dmaLocked reports whether paddr falls inside the range currently locked
// by an in-flight DMA transfer.
func (b *Bus) dmaLocked(paddr uint32) bool {
	return b.Locked && paddr >= b.DMALockLow && paddr < b.DMALockHigh
}

// Read performs a CPU-side read: applies segment translation, bus-lock
// arbitration, then dispatches to the owning region.
func (b *Bus) Read(vaddr uint32, width int) (uint32, error) {
	paddr := Translate(vaddr)
	if b.dmaLocked(paddr) {
		return 0, ErrNotReady
	}
	r := b.find(paddr)
	if r == nil {
		return 0, ErrBusError
	}
	return r.Read(paddr, width)
}

// Write performs a CPU-side write; see Read.
func (b *Bus) Write(vaddr uint32, width int, value uint32) error {
	paddr := Translate(vaddr)
	if b.dmaLocked(paddr) {
		return ErrNotReady
	}
	r := b.find(paddr)
	if r == nil {
		return ErrBusError
	}
	return r.Write(paddr, width, value)
}

// ReadPhysical performs a bus access that bypasses lock arbitration — used
// by the DMAC itself, which owns the lock it set.
func (b *Bus) ReadPhysical(paddr uint32, width int) (uint32, error) {
	r := b.find(paddr)
	if r == nil {
		return 0, ErrBusError
	}
	return r.Read(paddr, width)
}

// WritePhysical is the DMAC-side counterpart of ReadPhysical.
func (b *Bus) WritePhysical(paddr uint32, width int, value uint32) error {
	r := b.find(paddr)
	if r == nil {
		return ErrBusError
	}
	return r.Write(paddr, width, value)
}

// Lock marks [low, high) as DMA-owned, blocking CPU memory access to that
// range until Unlock is called.
func (b *Bus) Lock(low, high uint32) {
	b.Locked = true
	b.DMALockLow = low
	b.DMALockHigh = high
}

// Unlock releases the DMA bus lock.
func (b *Bus) Unlock() {
	b.Locked = false
}
