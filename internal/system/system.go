/*
 * psxcore - System: wires bus, memory, CPU/GTE, DMAC, GPU, SPU, CDROM, INTC.
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

// Package system wires every controller package into one machine: bus
// dispatch, the three memory regions, the CPU/GTE pair, the DMAC's 7
// channels, the GPU and SPU front-ends, the CDROM command processor, and
// the interrupt controller. Step() runs one scheduling quantum in the
// fixed order: DMAC, then GPU/SPU/CDROM front-ends,
// then INTC aggregation feeding the CPU, then the CPU itself — so the CPU
// always observes the memory state the DMAC wrote in the preceding tick.
package system

import (
	"github.com/psxcore-dev/psxcore/internal/bus"
	"github.com/psxcore-dev/psxcore/internal/cdrom"
	"github.com/psxcore-dev/psxcore/internal/cpu"
	"github.com/psxcore-dev/psxcore/internal/dmac"
	"github.com/psxcore-dev/psxcore/internal/gpu"
	"github.com/psxcore-dev/psxcore/internal/gte"
	"github.com/psxcore-dev/psxcore/internal/intc"
	"github.com/psxcore-dev/psxcore/internal/memory"
	"github.com/psxcore-dev/psxcore/internal/spu"
)

// cdromIRQAdapter adapts the CDROM's numbered-cause callback onto the
// shared INTC, translating every cause into the single CDROM source bit.
type cdromIRQAdapter struct {
	intc *intc.INTC
}

func (a *cdromIRQAdapter) RaiseCDROM(int) { a.intc.Raise(intc.CDROM) }

// System owns every controller and the shared bus/memory regions.
type System struct {
	Bus   *bus.Bus
	RAM   *memory.RAM
	Scratch *memory.Scratchpad
	BIOS  *memory.BIOS

	CPU   *cpu.CPU
	GTE   *gte.GTE
	DMAC  *dmac.DMAC
	GPU   *gpu.GPU
	SPU   *spu.SPU
	CDROM *cdrom.CDROM
	INTC  *intc.INTC

	// spuTickAccumulator paces the SPU's fixed 44,100 Hz tick against
	// the variable CPU-cycle budget Step() is called with.
	spuTickAccumulator int
	cyclesPerSPUTick   int
}

// Config selects the pluggable backends; nil backends are valid and
// simply drop their respective output (headless operation, e.g. under
// test).
type Config struct {
	Video       gpu.VideoBackend
	Audio       spu.AudioBackend
	Disc        cdrom.Backend
	BIOSImage   []byte
	CPUClockHz  int
}

// New wires a complete machine. CPUClockHz defaults to the real R3000A
// clock (33.8688 MHz) when zero, used only to pace SPU ticks relative to
// CPU steps.
func New(cfg Config) *System {
	clock := cfg.CPUClockHz
	if clock == 0 {
		clock = 33_868_800
	}

	s := &System{
		RAM:     memory.NewRAM(),
		Scratch: memory.NewScratchpad(),
		BIOS:    memory.NewBIOS(),
		GTE:     gte.New(),
		GPU:     gpu.New(cfg.Video),
		SPU:     spu.New(cfg.Audio),
		INTC:    intc.New(),
	}
	s.BIOS.Load(cfg.BIOSImage)

	s.Bus = bus.NewBus()
	s.Bus.Install("ram", s.RAM)
	s.Bus.Install("scratchpad", s.Scratch)
	s.Bus.Install("bios", s.BIOS)

	s.DMAC = dmac.New(s.Bus)
	s.DMAC.AttachPort(dmac.SPU, s.SPU)

	s.CDROM = cdrom.New(cfg.Disc, &cdromIRQAdapter{intc: s.INTC})
	s.DMAC.AttachPort(dmac.CDROM, s.CDROM)

	s.CPU = cpu.New(s.Bus, s.GTE)

	s.cyclesPerSPUTick = clock / 44_100
	if s.cyclesPerSPUTick < 1 {
		s.cyclesPerSPUTick = 1
	}
	return s
}

// Step runs one scheduling quantum: DMAC drains its active channels, the
// GPU and CDROM front-ends advance, the SPU ticks if enough CPU cycles
// have elapsed to owe it a sample, INTC feeds the aggregate interrupt
// line to COP0, and finally the CPU executes one instruction.
func (s *System) Step() error {
	if _, err := s.DMAC.Step(); err != nil {
		return err
	}
	s.GPU.Step(gpuWordsPerTick)
	s.CDROM.Step()

	s.spuTickAccumulator++
	if s.spuTickAccumulator >= s.cyclesPerSPUTick {
		s.spuTickAccumulator = 0
		s.SPU.Tick()
	}

	s.INTC.SetMask(s.INTC.Mask()) // no-op placeholder for future timer/ctrl sources
	s.CPU.SetIRQLine(s.aggregatePending())
	return s.CPU.Step()
}

// gpuWordsPerTick bounds how many GP0 words the front-end drains per
// scheduling quantum, keeping a single long command from starving the
// CPU's turn.
const gpuWordsPerTick = 8

// aggregatePending ORs the INTC's own pending line with the DMAC's IRQ
// line, both of which feed the single DMA interrupt source bit.
func (s *System) aggregatePending() bool {
	if s.DMAC.IRQPending() {
		s.INTC.Raise(intc.DMA)
	}
	return s.INTC.Pending()
}
