/*
 * psxcore - MIPS-I instruction execution.
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

import "github.com/psxcore-dev/psxcore/internal/bus"

// execute dispatches one decoded instruction. Errors other than
// bus.ErrNotReady are never returned: exceptions are raised internally via
// raiseException and reported to the caller as a nil error with PC already
// redirected, matching how Step distinguishes "stall and retry" from
// "exception taken".
func (c *CPU) execute(in instruction) error {
	switch in.op {
	case opSPECIAL:
		return c.execSpecial(in)
	case opBCOND:
		c.execRegimm(in)
	case opJ:
		c.setBranch((c.PC & 0xF000_0000) | (in.target << 2))
	case opJAL:
		c.setReg(31, c.PC+8)
		c.setBranch((c.PC & 0xF000_0000) | (in.target << 2))
	case opBEQ:
		if c.reg(in.rs) == c.reg(in.rt) {
			c.setBranch(c.branchTarget(in))
		}
	case opBNE:
		if c.reg(in.rs) != c.reg(in.rt) {
			c.setBranch(c.branchTarget(in))
		}
	case opBLEZ:
		if int32(c.reg(in.rs)) <= 0 {
			c.setBranch(c.branchTarget(in))
		}
	case opBGTZ:
		if int32(c.reg(in.rs)) > 0 {
			c.setBranch(c.branchTarget(in))
		}
	case opADDI:
		return c.execAddImmediateTrap(in)
	case opADDIU:
		c.setReg(in.rt, c.reg(in.rs)+uint32(in.simm16))
	case opSLTI:
		c.setReg(in.rt, boolToWord(int32(c.reg(in.rs)) < in.simm16))
	case opSLTIU:
		c.setReg(in.rt, boolToWord(c.reg(in.rs) < uint32(in.simm16)))
	case opANDI:
		c.setReg(in.rt, c.reg(in.rs)&in.imm16)
	case opORI:
		c.setReg(in.rt, c.reg(in.rs)|in.imm16)
	case opXORI:
		c.setReg(in.rt, c.reg(in.rs)^in.imm16)
	case opLUI:
		c.setReg(in.rt, in.imm16<<16)
	case opCOP0:
		return c.execCop0(in)
	case opCOP2:
		return c.execCop2(in)
	case opLB:
		return c.execLoad(in, 1, true)
	case opLH:
		return c.execLoad(in, 2, true)
	case opLW:
		return c.execLoad(in, 4, true)
	case opLBU:
		return c.execLoad(in, 1, false)
	case opLHU:
		return c.execLoad(in, 2, false)
	case opLWL:
		return c.execLWL(in)
	case opLWR:
		return c.execLWR(in)
	case opSB:
		return c.execStore(in, 1)
	case opSH:
		return c.execStore(in, 2)
	case opSW:
		return c.execStore(in, 4)
	case opSWL:
		return c.execSWL(in)
	case opSWR:
		return c.execSWR(in)
	case opLWC2:
		return c.execLWC2(in)
	case opSWC2:
		return c.execSWC2(in)
	default:
		c.raiseException(ExcRI, 0)
	}
	return nil
}

func boolToWord(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}

func (c *CPU) branchTarget(in instruction) uint32 {
	return c.PC + 4 + uint32(in.simm16<<2)
}

func (c *CPU) execRegimm(in instruction) {
	cond := false
	link := false
	switch in.rt {
	case rtBLTZ:
		cond = int32(c.reg(in.rs)) < 0
	case rtBGEZ:
		cond = int32(c.reg(in.rs)) >= 0
	case rtBLTZAL:
		cond = int32(c.reg(in.rs)) < 0
		link = true
	case rtBGEZAL:
		cond = int32(c.reg(in.rs)) >= 0
		link = true
	}
	if link {
		c.setReg(31, c.PC+8)
	}
	if cond {
		c.setBranch(c.branchTarget(in))
	}
}

func (c *CPU) execSpecial(in instruction) error {
	switch in.funct {
	case fnSLL:
		c.setReg(in.rd, c.reg(in.rt)<<in.shamt)
	case fnSRL:
		c.setReg(in.rd, c.reg(in.rt)>>in.shamt)
	case fnSRA:
		c.setReg(in.rd, uint32(int32(c.reg(in.rt))>>in.shamt))
	case fnSLLV:
		c.setReg(in.rd, c.reg(in.rt)<<(c.reg(in.rs)&0x1F))
	case fnSRLV:
		c.setReg(in.rd, c.reg(in.rt)>>(c.reg(in.rs)&0x1F))
	case fnSRAV:
		c.setReg(in.rd, uint32(int32(c.reg(in.rt))>>(c.reg(in.rs)&0x1F)))
	case fnJR:
		c.setBranch(c.reg(in.rs))
	case fnJALR:
		target := c.reg(in.rs)
		c.setReg(in.rd, c.PC+8)
		c.setBranch(target)
	case fnSYSCALL:
		c.raiseException(ExcSys, 0)
	case fnBREAK:
		c.raiseException(ExcBp, 0)
	case fnMFHI:
		c.setReg(in.rd, c.HI)
	case fnMTHI:
		c.HI = c.reg(in.rs)
	case fnMFLO:
		c.setReg(in.rd, c.LO)
	case fnMTLO:
		c.LO = c.reg(in.rs)
	case fnMULT:
		p := int64(int32(c.reg(in.rs))) * int64(int32(c.reg(in.rt)))
		c.HI, c.LO = uint32(p>>32), uint32(p)
	case fnMULTU:
		p := uint64(c.reg(in.rs)) * uint64(c.reg(in.rt))
		c.HI, c.LO = uint32(p>>32), uint32(p)
	case fnDIV:
		n, d := int32(c.reg(in.rs)), int32(c.reg(in.rt))
		if d == 0 {
			// Division by zero: undefined result, HI/LO left unchanged.
			return nil
		}
		c.LO, c.HI = uint32(n/d), uint32(n%d)
	case fnDIVU:
		n, d := c.reg(in.rs), c.reg(in.rt)
		if d == 0 {
			return nil
		}
		c.LO, c.HI = n/d, n%d
	case fnADD:
		r, ok := addOverflows(int32(c.reg(in.rs)), int32(c.reg(in.rt)))
		if !ok {
			c.raiseException(ExcOv, 0)
			return nil
		}
		c.setReg(in.rd, uint32(r))
	case fnADDU:
		c.setReg(in.rd, c.reg(in.rs)+c.reg(in.rt))
	case fnSUB:
		r, ok := addOverflows(int32(c.reg(in.rs)), -int32(c.reg(in.rt)))
		if !ok {
			c.raiseException(ExcOv, 0)
			return nil
		}
		c.setReg(in.rd, uint32(r))
	case fnSUBU:
		c.setReg(in.rd, c.reg(in.rs)-c.reg(in.rt))
	case fnAND:
		c.setReg(in.rd, c.reg(in.rs)&c.reg(in.rt))
	case fnOR:
		c.setReg(in.rd, c.reg(in.rs)|c.reg(in.rt))
	case fnXOR:
		c.setReg(in.rd, c.reg(in.rs)^c.reg(in.rt))
	case fnNOR:
		c.setReg(in.rd, ^(c.reg(in.rs) | c.reg(in.rt)))
	case fnSLT:
		c.setReg(in.rd, boolToWord(int32(c.reg(in.rs)) < int32(c.reg(in.rt))))
	case fnSLTU:
		c.setReg(in.rd, boolToWord(c.reg(in.rs) < c.reg(in.rt)))
	default:
		c.raiseException(ExcRI, 0)
	}
	return nil
}

// addOverflows returns a+b and whether it fits in 32-bit signed range,
// used by ADD/ADDI/SUB to detect the arithmetic overflow exception.
func addOverflows(a, b int32) (int32, bool) {
	r := a + b
	if (a >= 0 && b >= 0 && r < 0) || (a < 0 && b < 0 && r >= 0) {
		return r, false
	}
	return r, true
}

func (c *CPU) execAddImmediateTrap(in instruction) error {
	r, ok := addOverflows(int32(c.reg(in.rs)), in.simm16)
	if !ok {
		c.raiseException(ExcOv, 0)
		return nil
	}
	c.setReg(in.rt, uint32(r))
	return nil
}

// isAligned reports whether addr is naturally aligned for width bytes.
func isAligned(addr uint32, width int) bool {
	return addr%uint32(width) == 0
}

func (c *CPU) execLoad(in instruction, width int, signed bool) error {
	addr := c.reg(in.rs) + uint32(in.simm16)
	if !isAligned(addr, width) {
		c.raiseAddressError(ExcAdEL, addr)
		return nil
	}
	if c.COP0.IsC() {
		c.setReg(in.rt, 0)
		return nil
	}
	v, err := c.bus.Read(addr, width)
	if err != nil {
		return c.handleMemErr(err, addr, ExcAdEL)
	}
	if signed {
		v = signExtend(v, width)
	}
	c.setReg(in.rt, v)
	return nil
}

func signExtend(v uint32, width int) uint32 {
	switch width {
	case 1:
		return uint32(int32(int8(v)))
	case 2:
		return uint32(int32(int16(v)))
	default:
		return v
	}
}

func (c *CPU) execStore(in instruction, width int) error {
	addr := c.reg(in.rs) + uint32(in.simm16)
	if !isAligned(addr, width) {
		c.raiseAddressError(ExcAdES, addr)
		return nil
	}
	if c.COP0.IsC() {
		return nil
	}
	err := c.bus.Write(addr, width, c.reg(in.rt))
	if err != nil {
		return c.handleMemErr(err, addr, ExcAdES)
	}
	return nil
}

func (c *CPU) handleMemErr(err error, addr uint32, excOnOther uint32) error {
	if err == bus.ErrNotReady {
		return err
	}
	c.raiseAddressError(excOnOther, addr)
	return nil
}

// execLWL/execLWR/execSWL/execSWR implement the unaligned word
// load/store pair: each moves only the bytes on one side of the address's
// alignment boundary, merging with the register's existing contents.
func (c *CPU) execLWL(in instruction) error {
	addr := c.reg(in.rs) + uint32(in.simm16)
	base := addr &^ 3
	word, err := c.bus.Read(base, 4)
	if err != nil {
		return c.handleMemErr(err, addr, ExcAdEL)
	}
	shift := (addr & 3) * 8
	mask := uint32(0xFFFF_FFFF) << (24 - shift)
	merged := (c.reg(in.rt) &^ mask) | ((word << (24 - shift)) & mask)
	c.setReg(in.rt, merged)
	return nil
}

func (c *CPU) execLWR(in instruction) error {
	addr := c.reg(in.rs) + uint32(in.simm16)
	base := addr &^ 3
	word, err := c.bus.Read(base, 4)
	if err != nil {
		return c.handleMemErr(err, addr, ExcAdEL)
	}
	shift := (addr & 3) * 8
	mask := uint32(0xFFFF_FFFF) >> shift
	merged := (c.reg(in.rt) &^ mask) | ((word >> shift) & mask)
	c.setReg(in.rt, merged)
	return nil
}

func (c *CPU) execSWL(in instruction) error {
	addr := c.reg(in.rs) + uint32(in.simm16)
	base := addr &^ 3
	word, err := c.bus.Read(base, 4)
	if err != nil {
		return c.handleMemErr(err, addr, ExcAdES)
	}
	shift := (addr & 3) * 8
	mask := uint32(0xFFFF_FFFF) >> (24 - shift)
	merged := (word &^ mask) | ((c.reg(in.rt) >> (24 - shift)) & mask)
	return c.handleMemErr(c.bus.Write(base, 4, merged), addr, ExcAdES)
}

func (c *CPU) execSWR(in instruction) error {
	addr := c.reg(in.rs) + uint32(in.simm16)
	base := addr &^ 3
	word, err := c.bus.Read(base, 4)
	if err != nil {
		return c.handleMemErr(err, addr, ExcAdES)
	}
	shift := (addr & 3) * 8
	mask := uint32(0xFFFF_FFFF) << shift
	merged := (word &^ mask) | ((c.reg(in.rt) << shift) & mask)
	return c.handleMemErr(c.bus.Write(base, 4, merged), addr, ExcAdES)
}

func (c *CPU) execCop0(in instruction) error {
	switch in.rs {
	case copMF:
		c.setReg(in.rt, c.readCop0(in.rd))
	case copMT:
		c.writeCop0(in.rd, c.reg(in.rt))
	default:
		if in.rs >= copCO && in.funct == 0x10 {
			c.rfe()
			return nil
		}
		c.raiseException(ExcRI, 0)
	}
	return nil
}

func (c *CPU) readCop0(reg uint32) uint32 {
	switch reg {
	case 12:
		return c.COP0.Status
	case 13:
		return c.COP0.Cause
	case 14:
		return c.COP0.EPC
	case 8:
		return c.COP0.BadVAddr
	case 15:
		return c.COP0.PRId
	default:
		return 0
	}
}

func (c *CPU) writeCop0(reg uint32, v uint32) {
	switch reg {
	case 12:
		c.COP0.Status = v
	case 13:
		c.COP0.Cause = (c.COP0.Cause &^ 0x300) | (v & 0x300)
	case 14:
		c.COP0.EPC = v
	}
}

// execCop2 dispatches MFC2/MTC2/CFC2/CTC2 and GTE function opcodes.
func (c *CPU) execCop2(in instruction) error {
	if c.GTE == nil {
		c.raiseException(ExcCpU, 2)
		return nil
	}
	switch in.rs {
	case copMF:
		c.setReg(in.rt, c.GTE.ReadData(in.rd))
	case copCF:
		c.setReg(in.rt, c.GTE.ReadControl(in.rd))
	case copMT:
		c.GTE.WriteData(in.rd, c.reg(in.rt))
	case copCT:
		c.GTE.WriteControl(in.rd, c.reg(in.rt))
	default:
		sf := in.raw&(1<<19) != 0
		_ = c.GTE.Execute(in.raw&0x3F, sf)
	}
	return nil
}

func (c *CPU) execLWC2(in instruction) error {
	addr := c.reg(in.rs) + uint32(in.simm16)
	if !isAligned(addr, 4) {
		c.raiseAddressError(ExcAdEL, addr)
		return nil
	}
	v, err := c.bus.Read(addr, 4)
	if err != nil {
		return c.handleMemErr(err, addr, ExcAdEL)
	}
	if c.GTE != nil {
		c.GTE.WriteData(in.rt, v)
	}
	return nil
}

func (c *CPU) execSWC2(in instruction) error {
	addr := c.reg(in.rs) + uint32(in.simm16)
	if !isAligned(addr, 4) {
		c.raiseAddressError(ExcAdES, addr)
		return nil
	}
	var v uint32
	if c.GTE != nil {
		v = c.GTE.ReadData(in.rt)
	}
	return c.handleMemErr(c.bus.Write(addr, 4, v), addr, ExcAdES)
}
