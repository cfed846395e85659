package cpu

import (
	"testing"

	"github.com/psxcore-dev/psxcore/internal/bus"
	"github.com/psxcore-dev/psxcore/internal/gte"
)

// flatBus is a minimal word-addressable RAM used only to exercise the CPU
// in isolation from the full bus/memory stack.
type flatBus struct {
	words map[uint32]uint32
}

func newFlatBus() *flatBus { return &flatBus{words: map[uint32]uint32{}} }

func (b *flatBus) Read(addr uint32, width int) (uint32, error) {
	w := b.words[addr&^3]
	switch width {
	case 4:
		return w, nil
	case 2:
		return (w >> ((addr & 2) * 8)) & 0xFFFF, nil
	case 1:
		return (w >> ((addr & 3) * 8)) & 0xFF, nil
	}
	return 0, bus.ErrBusError
}

func (b *flatBus) Write(addr uint32, width int, v uint32) error {
	switch width {
	case 4:
		b.words[addr&^3] = v
	default:
		cur := b.words[addr&^3]
		shift := (addr & 3) * 8
		mask := uint32(0xFFFF_FFFF)
		if width == 1 {
			mask = 0xFF
		} else if width == 2 {
			mask = 0xFFFF
		}
		b.words[addr&^3] = (cur &^ (mask << shift)) | ((v & mask) << shift)
	}
	return nil
}

func newTestCPU() (*CPU, *flatBus) {
	b := newFlatBus()
	c := New(b, gte.New())
	c.PC = 0
	return c, b
}

func encodeI(op, rs, rt, imm uint32) uint32 {
	return (op << 26) | (rs << 21) | (rt << 16) | (imm & 0xFFFF)
}

func encodeR(rs, rt, rd, shamt, funct uint32) uint32 {
	return (rs << 21) | (rt << 16) | (rd << 11) | (shamt << 6) | funct
}

func TestAddiuAndStep(t *testing.T) {
	c, b := newTestCPU()
	b.words[0] = encodeI(opADDIU, 0, 8, 5) // addiu $t0, $zero, 5
	if err := c.Step(); err != nil {
		t.Fatalf("step: %v", err)
	}
	if c.GPR[8] != 5 {
		t.Fatalf("t0 = %d, want 5", c.GPR[8])
	}
	if c.PC != 4 {
		t.Fatalf("PC = %#x, want 4", c.PC)
	}
}

func TestBranchDelaySlotExecutesThenJumps(t *testing.T) {
	c, b := newTestCPU()
	b.words[0] = encodeI(opBEQ, 0, 0, 2) // beq $zero,$zero, +2 (delay slot at 4, target 4+8=12)
	b.words[4] = encodeI(opADDIU, 0, 9, 7) // addiu $t1, $zero, 7 (delay slot)
	b.words[12] = encodeI(opADDIU, 0, 10, 1)

	if err := c.Step(); err != nil { // executes branch, arms delay slot
		t.Fatalf("step1: %v", err)
	}
	if c.PC != 4 {
		t.Fatalf("PC after branch inst = %#x, want 4 (delay slot)", c.PC)
	}
	if err := c.Step(); err != nil { // executes delay slot, then jumps
		t.Fatalf("step2: %v", err)
	}
	if c.GPR[9] != 7 {
		t.Fatal("delay slot instruction should have executed")
	}
	if c.PC != 12 {
		t.Fatalf("PC after delay slot = %#x, want 12", c.PC)
	}
}

func TestSyscallRaisesExceptionAndSavesEPC(t *testing.T) {
	c, b := newTestCPU()
	c.PC = 0x100
	b.words[0x100] = (0 << 26) | fnSYSCALL // SPECIAL, syscall
	if err := c.Step(); err != nil {
		t.Fatalf("step: %v", err)
	}
	if c.COP0.EPC != 0x100 {
		t.Fatalf("EPC = %#x, want 0x100", c.COP0.EPC)
	}
	if c.PC != 0x8000_0080 {
		t.Fatalf("PC = %#x, want exception vector", c.PC)
	}
	exc := (c.COP0.Cause >> 2) & 0x1F
	if exc != ExcSys {
		t.Fatalf("ExcCode = %d, want ExcSys", exc)
	}
}

func TestOverflowExceptionOnAdd(t *testing.T) {
	c, b := newTestCPU()
	c.GPR[8] = 0x7FFF_FFFF
	c.GPR[9] = 1
	b.words[0] = encodeR(8, 9, 10, 0, fnADD)
	if err := c.Step(); err != nil {
		t.Fatalf("step: %v", err)
	}
	exc := (c.COP0.Cause >> 2) & 0x1F
	if exc != ExcOv {
		t.Fatalf("ExcCode = %d, want ExcOv", exc)
	}
}

func TestLWRAlignedLoadsWholeWord(t *testing.T) {
	c, b := newTestCPU()
	b.words[0x10] = 0x1122_3344
	c.GPR[8] = 0x10
	c.GPR[9] = 0xFFFF_FFFF
	b.words[0] = encodeI(opLWR, 8, 9, 0)
	if err := c.Step(); err != nil {
		t.Fatalf("step: %v", err)
	}
	if c.GPR[9] != 0x1122_3344 {
		t.Fatalf("t1 = %#x after LWR, want 0x11223344", c.GPR[9])
	}
}
