package system

import (
	"testing"

	"github.com/psxcore-dev/psxcore/internal/dmac"
)

// nullPort is a no-op dmac.Port used where a test only cares about the
// DMAC's own bookkeeping (IRQ/channel state), not the transferred data.
type nullPort struct{}

func (nullPort) PullWord() (uint32, error) { return 0, nil }
func (nullPort) PushWord(uint32) error     { return nil }

func TestStepAdvancesCPU(t *testing.T) {
	s := New(Config{BIOSImage: make([]byte, 16)})
	// NOP at the reset vector (0xBFC0_0000, physical 0x1FC0_0000, offset 0).
	pc0 := s.CPU.PC
	if err := s.Step(); err != nil {
		t.Fatalf("step: %v", err)
	}
	if s.CPU.PC == pc0 {
		t.Fatal("PC should advance after a step")
	}
}

func TestDMACIRQFeedsAggregate(t *testing.T) {
	s := New(Config{BIOSImage: make([]byte, 16)})
	s.INTC.SetMask(0xFFFF)
	if s.aggregatePending() {
		t.Fatal("should not be pending with no DMAC IRQ")
	}
	s.DMAC.WriteDPCR(0x0000_0008)   // enable channel 0 (MDECin)
	s.DMAC.WriteDICR(1<<23 | 1<<24) // enable master IRQ and channel 0's IRQ
	s.DMAC.WriteMADR(0, 0)
	s.DMAC.WriteBCR(0, 1)
	s.DMAC.AttachPort(dmac.MDECin, nullPort{})
	s.DMAC.WriteCHCR(0, 1<<24)
	_, _ = s.DMAC.Step()
	_, _ = s.DMAC.Step() // one to transfer the single word, one to notice remaining==0
	if !s.aggregatePending() {
		t.Fatal("expected DMAC completion IRQ to aggregate into INTC")
	}
}
