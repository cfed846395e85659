package console

import (
	"bytes"
	"strings"
	"testing"

	"github.com/psxcore-dev/psxcore/internal/scheduler"
	"github.com/psxcore-dev/psxcore/internal/system"
)

type noopMachine struct{}

func (noopMachine) Step() error { return nil }

func TestDispatchPauseResume(t *testing.T) {
	var out bytes.Buffer
	sched := scheduler.New(noopMachine{})
	c := New(sched, nil, &out)

	if !c.dispatch("pause") {
		t.Fatal("pause should not end the REPL")
	}
	if !strings.Contains(out.String(), "paused") {
		t.Fatalf("output = %q", out.String())
	}
}

func TestDispatchQuitEndsLoop(t *testing.T) {
	var out bytes.Buffer
	sched := scheduler.New(noopMachine{})
	c := New(sched, nil, &out)
	if c.dispatch("quit") {
		t.Fatal("quit should end the REPL")
	}
}

func TestDispatchUnknownCommand(t *testing.T) {
	var out bytes.Buffer
	sched := scheduler.New(noopMachine{})
	c := New(sched, nil, &out)
	c.dispatch("frobnicate")
	if !strings.Contains(out.String(), "unknown command") {
		t.Fatalf("output = %q", out.String())
	}
}

func TestDispatchIntrospectionWithoutMachine(t *testing.T) {
	var out bytes.Buffer
	sched := scheduler.New(noopMachine{})
	c := New(sched, nil, &out)
	for _, cmd := range []string{"mem 0 4", "irq", "dma gpu", "gpu", "spu 0"} {
		out.Reset()
		c.dispatch(cmd)
		if !strings.Contains(out.String(), "no machine attached") {
			t.Fatalf("%q output = %q", cmd, out.String())
		}
	}
}

func TestDispatchIntrospectionWithMachine(t *testing.T) {
	var out bytes.Buffer
	sys := system.New(system.Config{})
	sched := scheduler.New(sys)
	c := New(sched, sys, &out)

	out.Reset()
	c.dispatch("mem 0x1fc00000 4")
	if !strings.Contains(out.String(), "0x1fc00000") {
		t.Fatalf("mem output = %q", out.String())
	}

	out.Reset()
	c.dispatch("irq")
	if !strings.Contains(out.String(), "STAT=") {
		t.Fatalf("irq output = %q", out.String())
	}

	out.Reset()
	c.dispatch("dma gpu")
	if !strings.Contains(out.String(), "MADR=") {
		t.Fatalf("dma output = %q", out.String())
	}

	out.Reset()
	c.dispatch("gpu")
	if !strings.Contains(out.String(), "STAT=") {
		t.Fatalf("gpu output = %q", out.String())
	}

	out.Reset()
	c.dispatch("spu 0")
	if !strings.Contains(out.String(), "voice 0:") {
		t.Fatalf("spu output = %q", out.String())
	}

	out.Reset()
	c.dispatch("step")
	if !strings.Contains(out.String(), "PC=") {
		t.Fatalf("step output = %q", out.String())
	}
}
