/*
 * psxcore - MIPS-I instruction word decode.
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

// instruction is a decoded MIPS-I word, holding every field a handler
// might need regardless of the instruction's actual format.
type instruction struct {
	raw    uint32
	op     uint32 // bits 26-31
	rs     uint32 // bits 21-25
	rt     uint32 // bits 16-20
	rd     uint32 // bits 11-15
	shamt  uint32 // bits 6-10
	funct  uint32 // bits 0-5
	imm16  uint32 // bits 0-15, zero-extended
	simm16 int32  // bits 0-15, sign-extended
	target uint32 // bits 0-25, for J/JAL
}

func decode(word uint32) instruction {
	imm16 := word & 0xFFFF
	return instruction{
		raw:    word,
		op:     word >> 26,
		rs:     (word >> 21) & 0x1F,
		rt:     (word >> 16) & 0x1F,
		rd:     (word >> 11) & 0x1F,
		shamt:  (word >> 6) & 0x1F,
		funct:  word & 0x3F,
		imm16:  imm16,
		simm16: int32(int16(imm16)),
		target: word & 0x03FF_FFFF,
	}
}

// Primary opcode field values (bits 26-31).
const (
	opSPECIAL = 0x00
	opBCOND   = 0x01
	opJ       = 0x02
	opJAL     = 0x03
	opBEQ     = 0x04
	opBNE     = 0x05
	opBLEZ    = 0x06
	opBGTZ    = 0x07
	opADDI    = 0x08
	opADDIU   = 0x09
	opSLTI    = 0x0A
	opSLTIU   = 0x0B
	opANDI    = 0x0C
	opORI     = 0x0D
	opXORI    = 0x0E
	opLUI     = 0x0F
	opCOP0    = 0x10
	opCOP2    = 0x12
	opLB      = 0x20
	opLH      = 0x21
	opLWL     = 0x22
	opLW      = 0x23
	opLBU     = 0x24
	opLHU     = 0x25
	opLWR     = 0x26
	opSB      = 0x28
	opSH      = 0x29
	opSWL     = 0x2A
	opSW      = 0x2B
	opSWR     = 0x2E
	opLWC2    = 0x32
	opSWC2    = 0x3A
)

// SPECIAL function field values (bits 0-5, when op == opSPECIAL).
const (
	fnSLL     = 0x00
	fnSRL     = 0x02
	fnSRA     = 0x03
	fnSLLV    = 0x04
	fnSRLV    = 0x06
	fnSRAV    = 0x07
	fnJR      = 0x08
	fnJALR    = 0x09
	fnSYSCALL = 0x0C
	fnBREAK   = 0x0D
	fnMFHI    = 0x10
	fnMTHI    = 0x11
	fnMFLO    = 0x12
	fnMTLO    = 0x13
	fnMULT    = 0x18
	fnMULTU   = 0x19
	fnDIV     = 0x1A
	fnDIVU    = 0x1B
	fnADD     = 0x20
	fnADDU    = 0x21
	fnSUB     = 0x22
	fnSUBU    = 0x23
	fnAND     = 0x24
	fnOR      = 0x25
	fnXOR     = 0x26
	fnNOR     = 0x27
	fnSLT     = 0x2A
	fnSLTU    = 0x2B
)

// REGIMM rt field values (bits 16-20, when op == opBCOND).
const (
	rtBLTZ   = 0x00
	rtBGEZ   = 0x01
	rtBLTZAL = 0x10
	rtBGEZAL = 0x11
)

// COP0/COP2 rs field values for MFCn/MTCn/CFCn/CTCn/BCn/co-function dispatch.
const (
	copMF  = 0x00
	copCF  = 0x02
	copMT  = 0x04
	copCT  = 0x06
	copCO  = 0x10 // rs >= 16 selects a coprocessor function (e.g. RFE, GTE op)
)
