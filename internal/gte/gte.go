/*
 * psxcore - COP2/GTE: fixed-point 3D geometry transform coprocessor.
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

// Package gte implements COP2, the PSX's fixed-point geometry transform
// engine: perspective transforms, lighting/color
// interpolation, and the screen-space FIFOs the GPU front-end consumes.
// Matrices and vectors use 12 fractional bits; translation vectors are
// i32; all intermediate arithmetic is carried in 64-bit lanes and
// saturated to the destination width on writeback, with sticky error bits
// recorded in FLAG.
package gte

// Data registers, CFC2/CTC2 layout (subset actually read/written by the
// BIOS and the opcodes below; not every one
// of the 64 control/data registers is modeled bit-for-bit).
type GTE struct {
	V  [3]Vector3 // V0, V1, V2
	RGBC [4]uint8   // R, G, B, code
	OTZ  int16

	IR0 int32
	IR  [3]int32 // IR1-3

	SXY [3][2]int16 // screen XY FIFO, depth 3 (SX, SY pairs)
	SXYP[2]int16    // current SXYP mirror (SXY2 duplicate on write)
	SZ   [4]uint16  // screen Z FIFO, depth 4

	RGBFIFO [3][4]uint8 // color FIFO, depth 3

	MAC0 int32
	MAC  [3]int32 // MAC1-3

	LZCS int32
	LZCR int32

	// Control registers.
	RT  Matrix3 // rotation matrix
	TR  [3]int32
	L   Matrix3 // light matrix
	BK  [3]int32
	C   Matrix3 // color matrix
	FC  [3]int32
	OFX, OFY int32
	H        uint16
	DQA      int16
	DQB      int32
	ZSF3, ZSF4 int16

	Flag uint32
}

type Vector3 struct{ X, Y, Z int16 }

// Matrix3 is a 3x3 matrix of 12-fraction-bit fixed-point elements.
type Matrix3 [3][3]int16

func New() *GTE { return &GTE{} }

// sat64 saturates v to [lo, hi], setting flagBit in Flag when clamped.
func (g *GTE) sat64(v int64, lo, hi int64, flagBit uint32) int64 {
	if v < lo {
		g.Flag |= flagBit
		return lo
	}
	if v > hi {
		g.Flag |= flagBit
		return hi
	}
	return v
}

// Flag bit positions (saturation/overflow across IR/MAC/SXY/SZ).
const (
	flagIR0Sat  = 1 << 12
	flagSZ3Sat  = 1 << 18
	flagSZ2Sat  = 1 << 19
	flagSZ1Sat  = 1 << 20
	flagSZ0Sat  = 1 << 21
	flagSX2Sat  = 1 << 14
	flagSY2Sat  = 1 << 13
	flagIR3Sat  = 1 << 22
	flagIR2Sat  = 1 << 23
	flagIR1Sat  = 1 << 24
	flagMAC1Ovf = 1 << 30
	flagMAC2Ovf = 1 << 29
	flagMAC3Ovf = 1 << 28
	flagErrBit  = 1 << 31
)

// finishFlag ORs in the overall sticky error bit (31) whenever any of
// error bits 23..30 is set, once at the end of each opcode.
func (g *GTE) finishFlag() {
	if g.Flag&0x7F80_0000 != 0 {
		g.Flag |= flagErrBit
	}
}

func clampI16(v int64) (int16, bool) {
	if v < -0x8000 {
		return -0x8000, true
	}
	if v > 0x7FFF {
		return 0x7FFF, true
	}
	return int16(v), false
}

func clampU16(v int64) (uint16, bool) {
	if v < 0 {
		return 0, true
	}
	if v > 0xFFFF {
		return 0xFFFF, true
	}
	return uint16(v), false
}

func clampU8(v int64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 0xFF {
		return 0xFF
	}
	return uint8(v)
}

// pushSZ appends a new screen-Z value to the 4-deep FIFO, dropping SZ0.
func (g *GTE) pushSZ(v uint16) {
	g.SZ[0] = g.SZ[1]
	g.SZ[1] = g.SZ[2]
	g.SZ[2] = g.SZ[3]
	g.SZ[3] = v
}

// pushSXY appends a new screen XY pair to the 3-deep FIFO, dropping SXY0.
func (g *GTE) pushSXY(x, y int16) {
	g.SXY[0] = g.SXY[1]
	g.SXY[1] = g.SXY[2]
	g.SXY[2] = [2]int16{x, y}
}

// pushRGB appends a new interpolated color to the 3-deep FIFO, dropping
// RGBFIFO0; the code byte (RGBC[3]) is carried through unchanged.
func (g *GTE) pushRGB(r, gg, b uint8) {
	g.RGBFIFO[0] = g.RGBFIFO[1]
	g.RGBFIFO[1] = g.RGBFIFO[2]
	g.RGBFIFO[2] = [4]uint8{r, gg, b, g.RGBC[3]}
}
