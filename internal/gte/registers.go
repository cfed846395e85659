/*
 * psxcore - GTE data/control register file access for MFC2/MTC2/CFC2/CTC2.
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

func u32(v int32) uint32 { return uint32(v) }

// ReadData implements MFC2: the 32 general data registers.
func (g *GTE) ReadData(i uint32) uint32 {
	switch i {
	case 0:
		return uint32(uint16(g.V[0].X)) | uint32(uint16(g.V[0].Y))<<16
	case 1:
		return uint32(int32(g.V[0].Z))
	case 2:
		return uint32(uint16(g.V[1].X)) | uint32(uint16(g.V[1].Y))<<16
	case 3:
		return uint32(int32(g.V[1].Z))
	case 4:
		return uint32(uint16(g.V[2].X)) | uint32(uint16(g.V[2].Y))<<16
	case 5:
		return uint32(int32(g.V[2].Z))
	case 6:
		return uint32(g.RGBC[0]) | uint32(g.RGBC[1])<<8 | uint32(g.RGBC[2])<<16 | uint32(g.RGBC[3])<<24
	case 7:
		return uint32(g.OTZ)
	case 8:
		return u32(g.IR0)
	case 9:
		return u32(g.IR[0])
	case 10:
		return u32(g.IR[1])
	case 11:
		return u32(g.IR[2])
	case 12:
		return uint32(uint16(g.SXY[0][0])) | uint32(uint16(g.SXY[0][1]))<<16
	case 13:
		return uint32(uint16(g.SXY[1][0])) | uint32(uint16(g.SXY[1][1]))<<16
	case 14, 15:
		return uint32(uint16(g.SXY[2][0])) | uint32(uint16(g.SXY[2][1]))<<16
	case 16:
		return uint32(g.SZ[0])
	case 17:
		return uint32(g.SZ[1])
	case 18:
		return uint32(g.SZ[2])
	case 19:
		return uint32(g.SZ[3])
	case 20, 21, 22:
		rgb := g.RGBFIFO[i-20]
		return uint32(rgb[0]) | uint32(rgb[1])<<8 | uint32(rgb[2])<<16 | uint32(rgb[3])<<24
	case 24:
		return u32(g.MAC0)
	case 25:
		return u32(g.MAC[0])
	case 26:
		return u32(g.MAC[1])
	case 27:
		return u32(g.MAC[2])
	case 31:
		return u32(g.LZCR)
	default:
		return 0
	}
}

// WriteData implements MTC2, the write counterpart of ReadData.
func (g *GTE) WriteData(i uint32, v uint32) {
	switch i {
	case 0:
		g.V[0].X, g.V[0].Y = int16(v), int16(v>>16)
	case 1:
		g.V[0].Z = int16(v)
	case 2:
		g.V[1].X, g.V[1].Y = int16(v), int16(v>>16)
	case 3:
		g.V[1].Z = int16(v)
	case 4:
		g.V[2].X, g.V[2].Y = int16(v), int16(v>>16)
	case 5:
		g.V[2].Z = int16(v)
	case 6:
		g.RGBC[0], g.RGBC[1], g.RGBC[2], g.RGBC[3] = uint8(v), uint8(v>>8), uint8(v>>16), uint8(v>>24)
	case 7:
		g.OTZ = int16(v)
	case 8:
		g.IR0 = int32(int16(v))
	case 9:
		g.IR[0] = int32(int16(v))
	case 10:
		g.IR[1] = int32(int16(v))
	case 11:
		g.IR[2] = int32(int16(v))
	case 16:
		g.SZ[0] = uint16(v)
	case 17:
		g.SZ[1] = uint16(v)
	case 18:
		g.SZ[2] = uint16(v)
	case 19:
		g.SZ[3] = uint16(v)
	case 24:
		g.MAC0 = int32(v)
	case 25:
		g.MAC[0] = int32(v)
	case 26:
		g.MAC[1] = int32(v)
	case 27:
		g.MAC[2] = int32(v)
	case 30:
		g.LZCS = int32(v)
		g.LZCR = countLeadingBits(g.LZCS)
	}
}

// countLeadingBits implements LZCS/LZCR: the count of leading bits
// matching the sign bit of LZCS.
func countLeadingBits(v int32) int32 {
	if v >= 0 {
		u := uint32(v)
		n := int32(0)
		for bit := 31; bit >= 0 && u&(1<<uint(bit)) == 0; bit-- {
			n++
		}
		return n
	}
	u := ^uint32(v)
	n := int32(0)
	for bit := 31; bit >= 0 && u&(1<<uint(bit)) == 0; bit-- {
		n++
	}
	return n
}

// ReadControl implements CFC2: the 32 control registers.
func (g *GTE) ReadControl(i uint32) uint32 {
	switch i {
	case 0:
		return packMatrixRow(g.RT[0][0], g.RT[0][1])
	case 1:
		return packMatrixRow(g.RT[0][2], g.RT[1][0])
	case 2:
		return packMatrixRow(g.RT[1][1], g.RT[1][2])
	case 3:
		return packMatrixRow(g.RT[2][0], g.RT[2][1])
	case 4:
		return uint32(int32(g.RT[2][2]))
	case 5:
		return u32(g.TR[0])
	case 6:
		return u32(g.TR[1])
	case 7:
		return u32(g.TR[2])
	case 8:
		return packMatrixRow(g.L[0][0], g.L[0][1])
	case 9:
		return packMatrixRow(g.L[0][2], g.L[1][0])
	case 10:
		return packMatrixRow(g.L[1][1], g.L[1][2])
	case 11:
		return packMatrixRow(g.L[2][0], g.L[2][1])
	case 12:
		return uint32(int32(g.L[2][2]))
	case 13:
		return u32(g.BK[0])
	case 14:
		return u32(g.BK[1])
	case 15:
		return u32(g.BK[2])
	case 16:
		return packMatrixRow(g.C[0][0], g.C[0][1])
	case 17:
		return packMatrixRow(g.C[0][2], g.C[1][0])
	case 18:
		return packMatrixRow(g.C[1][1], g.C[1][2])
	case 19:
		return packMatrixRow(g.C[2][0], g.C[2][1])
	case 20:
		return uint32(int32(g.C[2][2]))
	case 21:
		return u32(g.FC[0])
	case 22:
		return u32(g.FC[1])
	case 23:
		return u32(g.FC[2])
	case 24:
		return u32(g.OFX)
	case 25:
		return u32(g.OFY)
	case 26:
		return uint32(g.H)
	case 27:
		return uint32(g.DQA)
	case 28:
		return u32(g.DQB)
	case 29:
		return uint32(g.ZSF3)
	case 30:
		return uint32(g.ZSF4)
	case 31:
		return g.Flag
	default:
		return 0
	}
}

// WriteControl implements CTC2, the write counterpart of ReadControl.
func (g *GTE) WriteControl(i uint32, v uint32) {
	switch i {
	case 0:
		g.RT[0][0], g.RT[0][1] = int16(v), int16(v>>16)
	case 1:
		g.RT[0][2], g.RT[1][0] = int16(v), int16(v>>16)
	case 2:
		g.RT[1][1], g.RT[1][2] = int16(v), int16(v>>16)
	case 3:
		g.RT[2][0], g.RT[2][1] = int16(v), int16(v>>16)
	case 4:
		g.RT[2][2] = int16(v)
	case 5:
		g.TR[0] = int32(v)
	case 6:
		g.TR[1] = int32(v)
	case 7:
		g.TR[2] = int32(v)
	case 8:
		g.L[0][0], g.L[0][1] = int16(v), int16(v>>16)
	case 9:
		g.L[0][2], g.L[1][0] = int16(v), int16(v>>16)
	case 10:
		g.L[1][1], g.L[1][2] = int16(v), int16(v>>16)
	case 11:
		g.L[2][0], g.L[2][1] = int16(v), int16(v>>16)
	case 12:
		g.L[2][2] = int16(v)
	case 13:
		g.BK[0] = int32(v)
	case 14:
		g.BK[1] = int32(v)
	case 15:
		g.BK[2] = int32(v)
	case 16:
		g.C[0][0], g.C[0][1] = int16(v), int16(v>>16)
	case 17:
		g.C[0][2], g.C[1][0] = int16(v), int16(v>>16)
	case 18:
		g.C[1][1], g.C[1][2] = int16(v), int16(v>>16)
	case 19:
		g.C[2][0], g.C[2][1] = int16(v), int16(v>>16)
	case 20:
		g.C[2][2] = int16(v)
	case 21:
		g.FC[0] = int32(v)
	case 22:
		g.FC[1] = int32(v)
	case 23:
		g.FC[2] = int32(v)
	case 24:
		g.OFX = int32(v)
	case 25:
		g.OFY = int32(v)
	case 26:
		g.H = uint16(v)
	case 27:
		g.DQA = int16(v)
	case 28:
		g.DQB = int32(v)
	case 29:
		g.ZSF3 = int16(v)
	case 30:
		g.ZSF4 = int16(v)
	case 31:
		g.Flag = v
	}
}

func packMatrixRow(a, b int16) uint32 {
	return uint32(uint16(a)) | uint32(uint16(b))<<16
}
