/*
 * psxcore - GTE opcode execution: RTPS/RTPT, NCDS/NCDT, MVMVA, NCLIP, AVSZ3/4.
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

package gte

import "errors"

// ErrUnimplementedOp flags an opcode outside the subset modeled here.
var ErrUnimplementedOp = errors.New("gte: unimplemented opcode")

// opcode bit layout (bits 0-5 of the COP2 imm25 field).
const (
	opRTPS  = 0x01
	opNCLIP = 0x06
	opAVSZ3 = 0x2D
	opAVSZ4 = 0x2E
	opMVMVA = 0x12
	opNCDS  = 0x13
	opRTPT  = 0x30
	opNCDT  = 0x16
)

// Execute decodes and runs one GTE opcode, given the raw 25-bit COP2
// function field from the CPU's COP2 instruction word.
func (g *GTE) Execute(fn uint32, sf bool) error {
	g.Flag = 0
	switch fn & 0x3F {
	case opRTPS:
		g.rtp(0, sf, true)
	case opRTPT:
		g.rtp(0, sf, true)
		g.rtp(1, sf, true)
		g.rtp(2, sf, true)
	case opNCLIP:
		g.nclip()
	case opAVSZ3:
		g.avsz3()
	case opAVSZ4:
		g.avsz4()
	case opMVMVA:
		g.mvmva(fn, sf)
	case opNCDS:
		g.ncds(0)
	case opNCDT:
		g.ncds(0)
		g.ncds(1)
		g.ncds(2)
	default:
		return ErrUnimplementedOp
	}
	g.finishFlag()
	return nil
}

func sar(v int64, shift uint) int64 { return v >> shift }

// transform multiplies matrix m by vector v, adds 32-bit translation t,
// optionally shifts right by 12 (sf), and writes the result into MAC1-3 /
// IR1-3 with saturation. This is RTPS's core transform, generalized
// for reuse by MVMVA.
func (g *GTE) transform(m Matrix3, v Vector3, t [3]int32, sf bool) (mac [3]int64) {
	shift := uint(0)
	if sf {
		shift = 12
	}
	for row := 0; row < 3; row++ {
		acc := int64(t[row]) << 12
		acc += int64(m[row][0]) * int64(v.X)
		acc += int64(m[row][1]) * int64(v.Y)
		acc += int64(m[row][2]) * int64(v.Z)
		mac[row] = sar(acc, shift)
	}
	return mac
}

// rtp performs the perspective transform of V[idx] into the screen XY/Z
// FIFOs (RTPS for idx 0 alone, RTPT iterating idx 0-2).
func (g *GTE) rtp(idx int, sf bool, pushDepth bool) {
	mac := g.transform(g.RT, g.V[idx], g.TR, sf)

	for i := 0; i < 3; i++ {
		clamped := g.sat64(mac[i], -(1 << 31), (1<<31)-1, mac31FlagBit(i))
		mac[i] = clamped
	}
	g.MAC[0], g.MAC[1], g.MAC[2] = int32(mac[0]), int32(mac[1]), int32(mac[2])

	ir1, of1 := clampI16sat(mac[0], true)
	ir2, of2 := clampI16sat(mac[1], true)
	ir3, of3 := clampI16sat(mac[2], true)
	if of1 {
		g.Flag |= flagIR1Sat
	}
	if of2 {
		g.Flag |= flagIR2Sat
	}
	if of3 {
		g.Flag |= flagIR3Sat
	}
	g.IR[0], g.IR[1], g.IR[2] = int32(ir1), int32(ir2), int32(ir3)

	sz, satZ := clampU16(mac[2] >> 2)
	if satZ {
		g.Flag |= flagSZ3Sat
	}
	if pushDepth {
		g.pushSZ(sz)
	}

	// Screen coordinates: SX = MAC0-fallthrough of (IR1*H/SZ3)+OFX >> 16.
	var sx, sy int64
	if sz != 0 {
		divided := divideUNR(uint32(g.H), sz)
		sx = (int64(divided)*int64(ir1) + int64(g.OFX)) >> 16
		sy = (int64(divided)*int64(ir2) + int64(g.OFY)) >> 16
	}
	sxC, satX := clampI16(sx)
	syC, satY := clampI16(sy)
	if satX {
		g.Flag |= flagSX2Sat
	}
	if satY {
		g.Flag |= flagSY2Sat
	}
	g.pushSXY(sxC, syC)

	// DQA/DQB interpolation factor, used by callers that need depth cue;
	// stored in MAC0 per hardware behavior for RTPS/RTPT.
	if sz != 0 {
		depthCue := (int64(g.DQB) + int64(g.DQA)*int64(divideUNR(uint32(g.H), sz))) >> 8
		g.MAC0 = int32(g.sat64(depthCue, -(1<<31), (1<<31)-1, flagMAC1Ovf))
	}
}

func mac31FlagBit(i int) uint32 {
	switch i {
	case 0:
		return flagMAC1Ovf
	case 1:
		return flagMAC2Ovf
	default:
		return flagMAC3Ovf
	}
}

func clampI16sat(v int64, lm bool) (int16, bool) {
	lo := int64(-0x8000)
	if lm {
		lo = 0
	}
	if v < lo {
		return int16(lo), true
	}
	if v > 0x7FFF {
		return 0x7FFF, true
	}
	return int16(v), false
}

// divideUNR approximates the hardware's Unsigned Newton-Raphson divider:
// projection_factor = min(0x1FFFF, (H*0x20000)/SZ) via integer division. Exact
// UNR reciprocal table behavior on edge divisors is not reproduced.
func divideUNR(h uint32, sz uint16) uint32 {
	if sz == 0 {
		return 0x1FFFF
	}
	q := (uint64(h) << 17) / uint64(sz)
	if q > 0x1FFFF {
		return 0x1FFFF
	}
	return uint32(q)
}

// nclip computes MAC0 = cross product Z-component of the three screen XY
// points, used by callers for back-face culling.
func (g *GTE) nclip() {
	x0, y0 := int64(g.SXY[0][0]), int64(g.SXY[0][1])
	x1, y1 := int64(g.SXY[1][0]), int64(g.SXY[1][1])
	x2, y2 := int64(g.SXY[2][0]), int64(g.SXY[2][1])
	v := x0*y1 + x1*y2 + x2*y0 - x0*y2 - x1*y0 - x2*y1
	g.MAC0 = int32(g.sat64(v, -(1 << 31), (1<<31)-1, flagMAC1Ovf))
}

// avsz3/avsz4 average the screen-Z FIFO entries weighted by ZSF3/ZSF4
// into OTZ, used to bucket primitives into the GPU's ordering table.
func (g *GTE) avsz3() {
	sum := int64(g.SZ[1]) + int64(g.SZ[2]) + int64(g.SZ[3])
	v := sum * int64(g.ZSF3)
	g.MAC0 = int32(g.sat64(v, -(1 << 31), (1<<31)-1, flagMAC1Ovf))
	otz, sat := clampU16(v >> 12)
	if sat {
		g.Flag |= flagSZ3Sat
	}
	g.OTZ = int16(otz)
}

func (g *GTE) avsz4() {
	sum := int64(g.SZ[0]) + int64(g.SZ[1]) + int64(g.SZ[2]) + int64(g.SZ[3])
	v := sum * int64(g.ZSF4)
	g.MAC0 = int32(g.sat64(v, -(1 << 31), (1<<31)-1, flagMAC1Ovf))
	otz, sat := clampU16(v >> 12)
	if sat {
		g.Flag |= flagSZ3Sat
	}
	g.OTZ = int16(otz)
}

// mvmva selects among {rotation, light, color, reserved} matrices,
// {V0, V1, V2, IR} vectors and {TR, BK, FC, none} translations using the
// bit fields of the 25-bit function word. The FC translation path is
// documented as bugged on real hardware: the accumulated MAC is written
// to IR truncated to its low 16 bits rather than clamped and flagged
// like every other path, so this is preserved rather than corrected.
func (g *GTE) mvmva(fn uint32, sf bool) {
	mx := (fn >> 17) & 0x3
	vx := (fn >> 15) & 0x3
	tx := (fn >> 13) & 0x3

	var m Matrix3
	switch mx {
	case 0:
		m = g.RT
	case 1:
		m = g.L
	case 2:
		m = g.C
	default:
		m = Matrix3{} // reserved: zero matrix on real hardware
	}

	var v Vector3
	switch vx {
	case 0:
		v = g.V[0]
	case 1:
		v = g.V[1]
	case 2:
		v = g.V[2]
	default:
		v = Vector3{int16(g.IR[0]), int16(g.IR[1]), int16(g.IR[2])}
	}

	var t [3]int32
	switch tx {
	case 0:
		t = g.TR
	case 1:
		t = g.BK
	case 2:
		t = g.FC
	default:
		t = [3]int32{}
	}

	mac := g.transform(m, v, t, sf)
	g.MAC[0], g.MAC[1], g.MAC[2] = int32(mac[0]), int32(mac[1]), int32(mac[2])
	if tx == 2 {
		// FC-translation bug: the final saturate-and-flag clamp never
		// runs; IR1-3 get MAC1-3's low 16 bits straight, sign included.
		g.IR[0] = int32(int16(mac[0]))
		g.IR[1] = int32(int16(mac[1]))
		g.IR[2] = int32(int16(mac[2]))
		return
	}
	ir1, _ := clampI16sat(mac[0], false)
	ir2, _ := clampI16sat(mac[1], false)
	ir3, _ := clampI16sat(mac[2], false)
	g.IR[0], g.IR[1], g.IR[2] = int32(ir1), int32(ir2), int32(ir3)
}

// ncds applies the light matrix to V[idx], adds the background color,
// applies the color matrix, multiplies by RGBC and interpolates toward
// the far color by IR0, pushing the result to the RGB FIFO.
func (g *GTE) ncds(idx int) {
	lv := g.transform(g.L, g.V[idx], [3]int32{}, true)
	ir := Vector3{
		clampI16First(lv[0]),
		clampI16First(lv[1]),
		clampI16First(lv[2]),
	}
	cv := g.transform(g.C, ir, g.BK, true)

	r := (int64(g.RGBC[0]) * cv[0]) >> 4
	gg := (int64(g.RGBC[1]) * cv[1]) >> 4
	b := (int64(g.RGBC[2]) * cv[2]) >> 4

	fr := int64(g.FC[0]) - r
	fg := int64(g.FC[1]) - gg
	fb := int64(g.FC[2]) - b

	ir0 := int64(g.IR0)
	r += (fr * ir0) >> 12
	gg += (fg * ir0) >> 12
	b += (fb * ir0) >> 12

	g.pushRGB(clampU8(r>>4), clampU8(gg>>4), clampU8(b>>4))
}

func clampI16First(v int64) int16 {
	c, _ := clampI16(v)
	return c
}
