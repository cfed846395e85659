/*
 * psxcore - Interactive debugger console: liner-backed REPL over the scheduler.
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

// Package console implements the interactive front end used to pause,
// resume and inspect a running machine: a liner.State with history and tab
// completion, reading commands in a loop until EOF or a quit/exit command;
// Ctrl-C abandons only the current input line.
package console

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/peterh/liner"
	"golang.org/x/term"

	"github.com/psxcore-dev/psxcore/internal/dmac"
	"github.com/psxcore-dev/psxcore/internal/scheduler"
	"github.com/psxcore-dev/psxcore/internal/spu"
	"github.com/psxcore-dev/psxcore/internal/system"
)

var commandNames = []string{
	"pause", "resume", "reset", "regs", "quit",
	"mem", "step", "irq", "dma", "gpu", "spu",
}

var dmaChannelNames = map[string]dmac.Index{
	"mdecin":  dmac.MDECin,
	"mdecout": dmac.MDECout,
	"gpu":     dmac.GPU,
	"cdrom":   dmac.CDROM,
	"spu":     dmac.SPU,
	"pio":     dmac.PIO,
	"otc":     dmac.OTC,
}

func completer(line string) []string {
	var out []string
	for _, c := range commandNames {
		if strings.HasPrefix(c, line) {
			out = append(out, c)
		}
	}
	return out
}

// Console drives the REPL against a running scheduler.Scheduler.
type Console struct {
	sched *scheduler.Scheduler
	sys   *system.System
	out   io.Writer
}

func New(sched *scheduler.Scheduler, sys *system.System, out io.Writer) *Console {
	return &Console{sched: sched, sys: sys, out: out}
}

// Run reads commands until the user quits or input is exhausted,
// following ConsoleReader's liner setup (Ctrl-C aborts the prompt rather
// than the process, history is appended per accepted line).
func (c *Console) Run() {
	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)
	line.SetCompleter(completer)

	// liner manages raw mode for the duration of each Prompt call itself;
	// this only guards against leaving the terminal in a bad state if the
	// process exits abnormally between prompts.
	if fd := int(os.Stdin.Fd()); term.IsTerminal(fd) {
		if state, err := term.GetState(fd); err == nil {
			defer term.Restore(fd, state)
		}
	}

	for {
		input, err := line.Prompt("psxcore> ")
		if err != nil {
			if err == liner.ErrPromptAborted {
				continue
			}
			return
		}
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		line.AppendHistory(input)
		if !c.dispatch(input) {
			return
		}
	}
}

// dispatch executes one command line, returning false to end Run.
func (c *Console) dispatch(input string) bool {
	fields := strings.Fields(input)
	switch fields[0] {
	case "pause":
		c.sched.Send(scheduler.CmdPause)
		fmt.Fprintln(c.out, "paused")
	case "resume":
		c.sched.Send(scheduler.CmdResume)
		fmt.Fprintln(c.out, "resumed")
	case "reset":
		c.sched.Send(scheduler.CmdReset)
		fmt.Fprintln(c.out, "reset")
	case "regs":
		c.printRegs()
	case "mem":
		c.printMem(fields[1:])
	case "step":
		c.stepOnce()
	case "irq":
		c.printIRQ()
	case "dma":
		c.printDMA(fields[1:])
	case "gpu":
		c.printGPU()
	case "spu":
		c.printSPU(fields[1:])
	case "quit", "exit":
		return false
	default:
		fmt.Fprintf(c.out, "unknown command: %s\n", fields[0])
	}
	return true
}

// printMem dumps len bytes of physical memory starting at addr, both
// parsed as hex (0x-prefix optional). Read-only: failures (unmapped
// regions, bad width) are reported, not retried.
func (c *Console) printMem(args []string) {
	if c.sys == nil {
		fmt.Fprintln(c.out, "no machine attached")
		return
	}
	if len(args) != 2 {
		fmt.Fprintln(c.out, "usage: mem <addr> <len>")
		return
	}
	addr, err := strconv.ParseUint(strings.TrimPrefix(args[0], "0x"), 16, 32)
	if err != nil {
		fmt.Fprintf(c.out, "bad addr: %v\n", err)
		return
	}
	length, err := strconv.Atoi(args[1])
	if err != nil || length <= 0 {
		fmt.Fprintln(c.out, "bad len")
		return
	}
	for i := 0; i < length; i += 4 {
		v, err := c.sys.Bus.ReadPhysical(uint32(addr)+uint32(i), 4)
		if err != nil {
			fmt.Fprintf(c.out, "%#010x: %v\n", uint32(addr)+uint32(i), err)
			return
		}
		fmt.Fprintf(c.out, "%#010x: %#010x\n", uint32(addr)+uint32(i), v)
	}
}

// stepOnce pauses the run loop and executes exactly one machine step for
// the "step" REPL command.
func (c *Console) stepOnce() {
	c.sched.Send(scheduler.CmdPause)
	if err := c.sched.Step(); err != nil {
		fmt.Fprintf(c.out, "step error: %v\n", err)
		return
	}
	c.printRegs()
}

func (c *Console) printIRQ() {
	if c.sys == nil || c.sys.INTC == nil {
		fmt.Fprintln(c.out, "no machine attached")
		return
	}
	fmt.Fprintf(c.out, "STAT=%#06x MASK=%#06x pending=%v\n",
		c.sys.INTC.Stat(), c.sys.INTC.Mask(), c.sys.INTC.Pending())
}

func (c *Console) printDMA(args []string) {
	if c.sys == nil || c.sys.DMAC == nil {
		fmt.Fprintln(c.out, "no machine attached")
		return
	}
	if len(args) != 1 {
		fmt.Fprintln(c.out, "usage: dma <chan> (mdecin|mdecout|gpu|cdrom|spu|pio|otc)")
		return
	}
	idx, ok := dmaChannelNames[strings.ToLower(args[0])]
	if !ok {
		fmt.Fprintf(c.out, "unknown channel: %s\n", args[0])
		return
	}
	fmt.Fprintf(c.out, "MADR=%#010x BCR=%#010x CHCR=%#010x\n",
		c.sys.DMAC.MADR(idx), c.sys.DMAC.BCR(idx), c.sys.DMAC.CHCR(idx))
}

func (c *Console) printGPU() {
	if c.sys == nil || c.sys.GPU == nil {
		fmt.Fprintln(c.out, "no machine attached")
		return
	}
	fmt.Fprintf(c.out, "STAT=%#010x\n", c.sys.GPU.Status())
}

func (c *Console) printSPU(args []string) {
	if c.sys == nil || c.sys.SPU == nil {
		fmt.Fprintln(c.out, "no machine attached")
		return
	}
	if len(args) != 1 {
		fmt.Fprintln(c.out, "usage: spu <voice>")
		return
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n < 0 || n >= spu.NumVoices {
		fmt.Fprintf(c.out, "voice must be 0-%d\n", spu.NumVoices-1)
		return
	}
	v := c.sys.SPU.VoiceState(n)
	fmt.Fprintf(c.out, "voice %d: addr=%#06x phase=%d level=%d active=%v muted=%v\n",
		n, v.CurrentAddr, v.Phase, v.Level, v.Active, v.Muted)
}

func (c *Console) printRegs() {
	if c.sys == nil || c.sys.CPU == nil {
		fmt.Fprintln(c.out, "no machine attached")
		return
	}
	fmt.Fprintf(c.out, "PC=%#010x HI=%#010x LO=%#010x\n", c.sys.CPU.PC, c.sys.CPU.HI, c.sys.CPU.LO)
	for i := 0; i < 32; i += 4 {
		fmt.Fprintf(c.out, "r%-2d=%#010x r%-2d=%#010x r%-2d=%#010x r%-2d=%#010x\n",
			i, c.sys.CPU.GPR[i], i+1, c.sys.CPU.GPR[i+1], i+2, c.sys.CPU.GPR[i+2], i+3, c.sys.CPU.GPR[i+3])
	}
}
