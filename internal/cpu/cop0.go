/*
 * psxcore - COP0 system control coprocessor register file.
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

package cpu

// Cause.Exc codes.
const (
	ExcInt    = 0
	ExcAdEL   = 4 // load address error
	ExcAdES   = 5 // store address error
	ExcSys    = 8
	ExcBp     = 9
	ExcRI     = 10 // reserved instruction
	ExcCpU    = 11 // coprocessor unusable
	ExcOv     = 12 // arithmetic overflow
)

// Status register bit positions (subset relevant to this emulation).
const (
	statusIEc = 0
	statusKUc = 1
	statusIEp = 2
	statusKUp = 3
	statusIEo = 4
	statusKUo = 5
	statusIM  = 8 // 8-bit interrupt mask field, bits 8-15
	statusIsC = 16
	statusBEV = 22
)

// COP0 holds the system control coprocessor's registers. Only the subset
// the BIOS and games actually exercise is modeled: SR
// (Status), Cause, EPC, and the read-only PRId/BadVAddr pair used for
// address-error diagnostics.
type COP0 struct {
	Status   uint32
	Cause    uint32
	EPC      uint32
	BadVAddr uint32
	PRId     uint32
}

func NewCOP0() *COP0 {
	return &COP0{PRId: 0x0000_0002}
}

func (c *COP0) IEc() bool { return c.Status&(1<<statusIEc) != 0 }
func (c *COP0) KUc() bool { return c.Status&(1<<statusKUc) != 0 }
func (c *COP0) IsC() bool { return c.Status&(1<<statusIsC) != 0 }
func (c *COP0) BEV() bool { return c.Status&(1<<statusBEV) != 0 }

// IM returns the 8-bit interrupt mask field; bit 2 (IM2) gates the INTC
// aggregate line.
func (c *COP0) IM() uint8 { return uint8(c.Status >> statusIM) }

// PushModeStack shifts the KU/IE pairs down one level on exception entry:
// KUp←KUc, IEp←IEc; KUo←KUp, IEo←IEp; the new KUc/IEc are left for the
// caller to clear (kernel mode, interrupts disabled).
func (c *COP0) PushModeStack() {
	old := c.Status
	kuc := (old >> statusKUc) & 1
	iec := (old >> statusIEc) & 1
	kup := (old >> statusKUp) & 1
	iep := (old >> statusIEp) & 1
	c.Status &^= (1 << statusKUo) | (1 << statusIEo) | (1 << statusKUp) | (1 << statusIEp) | (1 << statusKUc) | (1 << statusIEc)
	c.Status |= kup << statusKUo
	c.Status |= iep << statusIEo
	c.Status |= kuc << statusKUp
	c.Status |= iec << statusIEp
}

// PopModeStack implements RFE: c←p, p←o, leaving o unchanged.
func (c *COP0) PopModeStack() {
	old := c.Status
	kup := (old >> statusKUp) & 1
	iep := (old >> statusIEp) & 1
	kuo := (old >> statusKUo) & 1
	ieo := (old >> statusIEo) & 1
	c.Status &^= (1 << statusKUc) | (1 << statusIEc) | (1 << statusKUp) | (1 << statusIEp)
	c.Status |= kup << statusKUc
	c.Status |= iep << statusIEc
	c.Status |= kuo << statusKUp
	c.Status |= ieo << statusIEp
}

// SetIP2 reflects the INTC aggregate line into Cause.IP2 (bit 10), checked
// alongside Status.IM2/IEc at every instruction boundary.
func (c *COP0) SetIP2(pending bool) {
	if pending {
		c.Cause |= 1 << 10
	} else {
		c.Cause &^= 1 << 10
	}
}

// SetException stores exc into Cause.ExcCode (bits 2-6) and optionally the
// coprocessor-unusable number (bits 28-29).
func (c *COP0) SetException(exc uint32, copNum uint32) {
	c.Cause = (c.Cause &^ 0x7C) | ((exc << 2) & 0x7C)
	c.Cause = (c.Cause &^ (0x3 << 28)) | ((copNum & 0x3) << 28)
}

// SetBranchDelay records whether the faulting instruction was in a branch
// delay slot (Cause bit 31), which shifts EPC back one instruction on entry.
func (c *COP0) SetBranchDelay(inDelay bool) {
	if inDelay {
		c.Cause |= 1 << 31
	} else {
		c.Cause &^= 1 << 31
	}
}
