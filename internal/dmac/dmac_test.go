package dmac

import (
	"testing"

	"github.com/psxcore-dev/psxcore/internal/bus"
	"github.com/psxcore-dev/psxcore/internal/memory"
)

// fifoPort adapts a slice of words into a dmac.Port for tests.
type fifoPort struct {
	in  []uint32
	out []uint32
}

func (p *fifoPort) PullWord() (uint32, error) {
	if len(p.in) == 0 {
		return 0, nil
	}
	v := p.in[0]
	p.in = p.in[1:]
	return v, nil
}

func (p *fifoPort) PushWord(v uint32) error {
	p.out = append(p.out, v)
	return nil
}

func newTestBus() (*bus.Bus, *memory.RAM) {
	b := bus.NewBus()
	ram := memory.NewRAM()
	b.Install("ram", ram)
	return b, ram
}

func TestContinuousToRAM(t *testing.T) {
	b, _ := newTestBus()
	d := New(b)
	d.WriteDPCR(0x0888_8888) // enable all 7 channels
	port := &fifoPort{in: []uint32{1, 2, 3}}
	d.AttachPort(MDECout, port)

	d.WriteMADR(MDECout, 0x1000)
	d.WriteBCR(MDECout, 3)
	d.WriteCHCR(MDECout, 1<<24) // start, ToRAM, continuous, increment

	for transferred := 0; transferred < 3; {
		n, err := d.Step()
		if err != nil {
			t.Fatalf("step: %v", err)
		}
		if n == 0 {
			t.Fatal("no progress")
		}
		transferred += n
	}
	for i, want := range []uint32{1, 2, 3} {
		v, _ := b.ReadPhysical(0x1000+uint32(i*4), 4)
		if v != want {
			t.Fatalf("word %d = %d, want %d", i, v, want)
		}
	}
	if d.CHCR(MDECout)&(1<<24) != 0 {
		t.Fatal("start bit should clear on completion")
	}
}

func TestOTCReverseChain(t *testing.T) {
	b, _ := newTestBus()
	d := New(b)
	d.WriteDPCR(0x0888_8888) // enable all 7 channels
	d.WriteMADR(OTC, 0x0000_001C) // 8-entry table ending at 0x1C
	d.WriteBCR(OTC, 8)
	d.WriteCHCR(OTC, (1<<24)|(1<<1)) // start, decrement address

	for i := 0; i < 100 && d.channels[OTC].active; i++ {
		if _, err := d.Step(); err != nil {
			t.Fatalf("step: %v", err)
		}
	}
	term, _ := b.ReadPhysical(0x0000_0000, 4)
	if term != 0x00FF_FFFF {
		t.Fatalf("terminator = %#x, want 0x00FFFFFF", term)
	}
	second, _ := b.ReadPhysical(0x0000_0004, 4)
	if second != 0x0000_0000 {
		t.Fatalf("entry[1] = %#x, want link to entry[0]", second)
	}
}

func TestBlocksModeWritesBackBCRAndMADR(t *testing.T) {
	b, _ := newTestBus()
	d := New(b)
	d.WriteDPCR(0x0888_8888) // enable all 7 channels
	port := &fifoPort{in: []uint32{1, 2, 3, 4}}
	d.AttachPort(MDECout, port)

	d.WriteMADR(MDECout, 0x2000)
	d.WriteBCR(MDECout, (2<<16)|2) // block amount 2, block size 2 -> 4 words
	d.WriteCHCR(MDECout, (1<<24)|(1<<9))

	for i := 0; i < 100 && d.channels[MDECout].active; i++ {
		if _, err := d.Step(); err != nil {
			t.Fatalf("step: %v", err)
		}
	}
	if d.BCR(MDECout) != 0 {
		t.Fatalf("BCR = %#x, want 0 after Blocks completion", d.BCR(MDECout))
	}
	if want := uint32(0x2000 + 4*4); d.MADR(MDECout) != want {
		t.Fatalf("MADR = %#x, want %#x", d.MADR(MDECout), want)
	}
}

func TestLinkedListWritesBackTerminatorMADR(t *testing.T) {
	b, _ := newTestBus()
	d := New(b)
	d.WriteDPCR(0x0888_8888) // enable all 7 channels
	port := &fifoPort{}
	d.AttachPort(GPU, port)

	b.WritePhysical(0x3000, 4, (2<<24)|0x00FF_FFFF)
	b.WritePhysical(0x3004, 4, 0xAAAA_AAAA)
	b.WritePhysical(0x3008, 4, 0xBBBB_BBBB)

	d.WriteMADR(GPU, 0x3000)
	d.WriteCHCR(GPU, (1<<24)|(2<<9))

	for i := 0; i < 100 && d.channels[GPU].active; i++ {
		if _, err := d.Step(); err != nil {
			t.Fatalf("step: %v", err)
		}
	}
	if len(port.out) != 2 || port.out[0] != 0xAAAA_AAAA || port.out[1] != 0xBBBB_BBBB {
		t.Fatalf("payload words = %#v, want [0xAAAAAAAA 0xBBBBBBBB]", port.out)
	}
	if d.MADR(GPU) != 0x00FF_FFFF {
		t.Fatalf("MADR = %#x, want 0x00FFFFFF after LinkedList completion", d.MADR(GPU))
	}
}

func TestLinkedListNullHeaderAbortsChain(t *testing.T) {
	b, _ := newTestBus()
	d := New(b)
	d.WriteDPCR(0x0888_8888) // enable all 7 channels
	port := &fifoPort{}
	d.AttachPort(GPU, port)

	b.WritePhysical(0x4000, 4, (1<<24)|0x0000_0000) // count=1, next=null
	b.WritePhysical(0x4004, 4, 0xCCCC_CCCC)

	d.WriteMADR(GPU, 0x4000)
	d.WriteCHCR(GPU, (1<<24)|(2<<9))

	for i := 0; i < 100 && d.channels[GPU].active; i++ {
		if _, err := d.Step(); err != nil {
			t.Fatalf("step: %v", err)
		}
	}
	if len(port.out) != 1 || port.out[0] != 0xCCCC_CCCC {
		t.Fatalf("payload words = %#v, want [0xCCCCCCCC]", port.out)
	}
	if d.channels[GPU].active {
		t.Fatal("channel should have aborted on null header pointer")
	}
}

func TestDICRAckClearsBit(t *testing.T) {
	b, _ := newTestBus()
	d := New(b)
	d.requestIRQ(GPU)
	if !d.IRQPending() {
		// master enable defaults off; enable it then re-check
		d.WriteDICR(1 << 23)
		d.requestIRQ(GPU)
	}
	ack := uint32(1) << (16 + uint(GPU))
	d.WriteDICR(ack)
	if d.DICR()&(1<<(16+uint(GPU))) != 0 {
		t.Fatal("GPU request bit should be acknowledged")
	}
}
