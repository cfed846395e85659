/*
 * psxcore - GPU front-end: GP0/GP1 command FIFOs and primitive extraction.
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

// Package gpu implements the GP0/GP1 command front-end: a FIFO drains
// into a command-assembly buffer, dispatches by top-byte
// opcode once enough words have accumulated, and either mutates drawing
// state or emits a primitive record to an attached VideoBackend. VRAM
// itself is kept as a flat 16bpp store and left for the backend to
// interpret: a raw store, deferring to the presentation layer.
package gpu

import "github.com/psxcore-dev/psxcore/internal/bus"

// RenderKind selects how a primitive's color/texture fields are sourced.
type RenderKind int

const (
	Shaded RenderKind = iota
	TextureBlending
	RawTexture
)

// TransparencyKind selects the GP0(E6) semi-transparency blend mode, or
// Opaque when the primitive does not request blending.
type TransparencyKind int

const (
	Opaque TransparencyKind = iota
	Average
	Additive
	Subtractive
	AdditiveQuarter
)

type Vertex struct {
	X, Y       int16
	R, G, B    uint8
	TexU, TexV uint8
}

type TrianglesParams struct {
	Vertices      []Vertex
	Kind          RenderKind
	Transparency  TransparencyKind
	TexPage, Clut uint16
	MaskBit       bool
}

type RectangleParams struct {
	X, Y, W, H    int16
	R, G, B       uint8
	Kind          RenderKind
	Transparency  TransparencyKind
	TexPage, Clut uint16
	MaskBit       bool
}

type WriteFramebufferParams struct {
	X, Y, W, H int16
	Pixels     []uint16
}

type ReadFramebufferParams struct {
	X, Y, W, H int16
}

// VideoBackend is the pure-sink collaborator that actually rasterizes.
// The core module depends only on this interface; concrete
// implementations (e.g. an Ebitengine-backed renderer) live outside it.
type VideoBackend interface {
	DrawTriangles(TrianglesParams)
	DrawRectangle(RectangleParams)
	WriteFramebuffer(WriteFramebufferParams)
	ReadFramebuffer(ReadFramebufferParams) []uint16
}

// drawState holds the GP0(E1..E6)-controlled rendering configuration.
type drawState struct {
	texPage        uint16
	texWindow      uint32
	drawAreaLeft   int16
	drawAreaTop    int16
	drawAreaRight  int16
	drawAreaBottom int16
	drawOffsetX    int16
	drawOffsetY    int16
	maskSet        bool
	maskCheck      bool
}

// GPU owns the GP0/GP1 FIFOs, the command-assembly buffer, and drawing
// state. Step drains one word per call from the GP0 FIFO budget handed to
// it by the scheduler.
type GPU struct {
	backend VideoBackend

	gp0 *bus.FIFO[uint32]
	gpuread *bus.FIFO[uint32]

	assembly    []uint32
	wantLen     int
	haveVarLen  bool

	state   drawState
	status  uint32
	gp1Busy bool
}

func New(backend VideoBackend) *GPU {
	return &GPU{
		backend: backend,
		gp0:     bus.NewFIFO[uint32](64),
		gpuread: bus.NewFIFO[uint32](16),
		status:  0x1C00_0000,
	}
}

// WriteGP0 is the CPU/DMAC-side entry point for pushing one GP0 word.
func (g *GPU) WriteGP0(word uint32) error {
	return g.gp0.WriteOne(word)
}

// ReadGPUREAD pops one word queued by a CPU-to-VRAM readback (GP0(0xC0)).
func (g *GPU) ReadGPUREAD() uint32 {
	v, err := g.gpuread.ReadOne()
	if err != nil {
		return g.status // real hardware returns stale GPUREAD/status mix; approximate with status
	}
	return v
}

// Status returns the GPUSTAT register.
func (g *GPU) Status() uint32 { return g.status }

// commandLength returns the fixed word count for opcode, or 0 if the
// command has a variable/data-dependent length (handled specially).
func commandLength(opcode byte) int {
	switch {
	case opcode == 0x00:
		return 1
	case opcode >= 0x20 && opcode <= 0x2F:
		return polyLength(opcode)
	case opcode >= 0x30 && opcode <= 0x3F:
		return polyLength(opcode)
	case opcode >= 0x60 && opcode <= 0x6F:
		return rectLength(opcode)
	case opcode >= 0x70 && opcode <= 0x7F:
		return rectLength(opcode)
	case opcode == 0xA0 || opcode == 0xC0:
		return 3 // header; payload length computed once header is known
	case opcode >= 0xE1 && opcode <= 0xE6:
		return 1
	default:
		return 1
	}
}

func polyLength(opcode byte) int {
	quad := opcode&0x08 != 0
	textured := opcode&0x04 != 0
	gouraud := opcode&0x10 != 0
	verts := 3
	if quad {
		verts = 4
	}
	n := 1 // command+color word
	per := 1
	if textured {
		per++
	}
	if gouraud {
		per++ // extra color word per vertex after the first
	}
	n += verts * per
	if gouraud {
		n-- // first vertex's color is the command word itself
	}
	return n
}

func rectLength(opcode byte) int {
	n := 1
	variable := (opcode>>3)&0x3 == 0
	if variable {
		n++ // explicit width/height word
	}
	if opcode&0x01 != 0 {
		n++ // texcoord word
	}
	n++ // vertex position word
	return n
}

// Step drains up to budget words from GP0 into the command assembler,
// dispatching completed commands.
func (g *GPU) Step(budget int) {
	for i := 0; i < budget; i++ {
		word, err := g.gp0.ReadOne()
		if err != nil {
			return
		}
		g.feed(word)
	}
}

func (g *GPU) feed(word uint32) {
	if len(g.assembly) == 0 {
		opcode := byte(word >> 24)
		g.wantLen = commandLength(opcode)
	}
	g.assembly = append(g.assembly, word)

	opcode := byte(g.assembly[0] >> 24)
	if (opcode == 0xA0 || opcode == 0xC0) && len(g.assembly) == 3 && !g.haveVarLen {
		hw := g.assembly[2]
		width, height := hw&0xFFFF, hw>>16
		if width == 0 {
			width = 1
		}
		if height == 0 {
			height = 1
		}
		payload := (width*height + 1) / 2
		g.wantLen = 3 + int(payload)
		g.haveVarLen = true
	}

	if len(g.assembly) >= g.wantLen {
		g.dispatch(opcode, g.assembly)
		g.assembly = g.assembly[:0]
		g.haveVarLen = false
	}
}

func (g *GPU) dispatch(opcode byte, words []uint32) {
	switch {
	case opcode >= 0x20 && opcode <= 0x3F:
		g.dispatchPolygon(opcode, words)
	case opcode >= 0x60 && opcode <= 0x7F:
		g.dispatchRectangle(opcode, words)
	case opcode == 0xA0:
		g.dispatchWriteFramebuffer(words)
	case opcode == 0xC0:
		g.dispatchReadFramebuffer(words)
	case opcode >= 0xE1 && opcode <= 0xE6:
		g.dispatchState(opcode, words[0])
	}
}

func (g *GPU) dispatchState(opcode byte, word uint32) {
	switch opcode {
	case 0xE1:
		g.state.texPage = uint16(word & 0x3FFF)
		g.status = (g.status &^ 0x7FF) | (word & 0x7FF)
	case 0xE2:
		g.state.texWindow = word
	case 0xE3:
		g.state.drawAreaLeft = int16(word & 0x3FF)
		g.state.drawAreaTop = int16((word >> 10) & 0x3FF)
	case 0xE4:
		g.state.drawAreaRight = int16(word & 0x3FF)
		g.state.drawAreaBottom = int16((word >> 10) & 0x3FF)
	case 0xE5:
		g.state.drawOffsetX = signExtend11(word & 0x7FF)
		g.state.drawOffsetY = signExtend11((word >> 11) & 0x7FF)
	case 0xE6:
		g.state.maskSet = word&1 != 0
		g.state.maskCheck = word&2 != 0
	}
}

func signExtend11(v uint32) int16 {
	if v&0x400 != 0 {
		return int16(v | 0xF800)
	}
	return int16(v)
}

func (g *GPU) dispatchPolygon(opcode byte, words []uint32) {
	quad := opcode&0x08 != 0
	textured := opcode&0x04 != 0
	gouraud := opcode&0x10 != 0
	kind := Shaded
	if textured {
		kind = TextureBlending
	}
	nverts := 3
	if quad {
		nverts = 4
	}
	verts := make([]Vertex, 0, nverts)
	r, gr, b := byte(words[0]>>16), byte(words[0]>>8), byte(words[0])
	idx := 1
	for i := 0; i < nverts; i++ {
		if gouraud && i > 0 {
			c := words[idx]
			r, gr, b = byte(c>>16), byte(c>>8), byte(c)
			idx++
		}
		pos := words[idx]
		idx++
		v := Vertex{X: int16(int32(pos<<16) >> 16), Y: int16(int32(pos) >> 16), R: r, G: gr, B: b}
		if textured {
			tc := words[idx]
			idx++
			v.TexU, v.TexV = byte(tc), byte(tc>>8)
		}
		verts = append(verts, v)
	}
	if g.backend != nil {
		g.backend.DrawTriangles(TrianglesParams{
			Vertices: verts,
			Kind:     kind,
			TexPage:  g.state.texPage,
			MaskBit:  g.state.maskSet,
		})
	}
}

func (g *GPU) dispatchRectangle(opcode byte, words []uint32) {
	r, gr, b := byte(words[0]>>16), byte(words[0]>>8), byte(words[0])
	idx := 1
	pos := words[idx]
	idx++
	x, y := int16(int32(pos<<16)>>16), int16(int32(pos)>>16)

	var u, v byte
	textured := opcode&0x01 != 0
	if textured {
		tc := words[idx]
		idx++
		u, v = byte(tc), byte(tc>>8)
	}

	sizeSel := (opcode >> 3) & 0x3
	var w, h int16
	switch sizeSel {
	case 1:
		w, h = 1, 1
	case 2:
		w, h = 8, 8
	case 3:
		w, h = 16, 16
	default:
		sz := words[idx]
		w, h = int16(sz&0xFFFF), int16(sz>>16)
	}

	kind := Shaded
	if textured {
		kind = TextureBlending
	}
	if g.backend != nil {
		g.backend.DrawRectangle(RectangleParams{
			X: x, Y: y, W: w, H: h,
			R: r, G: gr, B: b,
			Kind:    kind,
			TexPage: g.state.texPage,
			MaskBit: g.state.maskSet,
		})
		_ = u
		_ = v
	}
}

func (g *GPU) dispatchWriteFramebuffer(words []uint32) {
	pos, size := words[1], words[2]
	x, y := int16(pos&0xFFFF), int16(pos>>16)
	w, h := int16(size&0xFFFF), int16(size>>16)
	pixels := make([]uint16, 0, len(words[3:])*2)
	for _, word := range words[3:] {
		pixels = append(pixels, uint16(word), uint16(word>>16))
	}
	if g.backend != nil {
		g.backend.WriteFramebuffer(WriteFramebufferParams{X: x, Y: y, W: w, H: h, Pixels: pixels})
	}
}

func (g *GPU) dispatchReadFramebuffer(words []uint32) {
	pos, size := words[1], words[2]
	x, y := int16(pos&0xFFFF), int16(pos>>16)
	w, h := int16(size&0xFFFF), int16(size>>16)
	var pixels []uint16
	if g.backend != nil {
		pixels = g.backend.ReadFramebuffer(ReadFramebufferParams{X: x, Y: y, W: w, H: h})
	}
	for i := 0; i+1 < len(pixels); i += 2 {
		word := uint32(pixels[i]) | uint32(pixels[i+1])<<16
		_ = g.gpuread.WriteOne(word)
	}
}

// WriteGP1 handles the display-control register: reset (00), command
// buffer reset (01), IRQ ack (02), display enable (03), DMA direction (04)
// and video mode (08). GP1(00) additionally resets the GP0(E1..E6) drawing
// state. Display area and horizontal/vertical range commands (05-07) are
// ignored.
func (g *GPU) WriteGP1(word uint32) {
	opcode := byte(word >> 24)
	switch opcode {
	case 0x00:
		g.state = drawState{}
		g.status = 0x1C00_0000
	case 0x01:
		for !g.gp0.Empty() {
			_, _ = g.gp0.ReadOne()
		}
		g.assembly = g.assembly[:0]
	case 0x02:
		g.status &^= 1 << 24 // ack IRQ
	case 0x03:
		if word&1 != 0 {
			g.status |= 1 << 23
		} else {
			g.status &^= 1 << 23
		}
	case 0x04:
		g.status = (g.status &^ (0x3 << 29)) | ((word & 0x3) << 29)
	case 0x08:
		g.status = (g.status &^ 0x7E_0000) | ((word & 0x3F) << 17)
	}
}
