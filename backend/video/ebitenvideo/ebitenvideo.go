//go:build !headless

/*
 * psxcore - optional ebiten-backed VideoBackend adapter.
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

// Package ebitenvideo implements gpu.VideoBackend on top of Ebitengine,
// following the IntuitionEngine example's EbitenOutput: a window backed
// by an RGBA frame buffer, guarded by a mutex because primitives arrive
// from the emulation goroutine while ebiten's own loop calls Draw from
// its own goroutine. Rasterization itself (triangle fill, texture
// sampling) happens on the CPU into the frame buffer; ebiten only blits
// the result. Kept behind the "!headless" build tag so the core module's
// tests never require a display.
package ebitenvideo

import (
	"image/color"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/psxcore-dev/psxcore/internal/gpu"
)

const (
	vramWidth  = 1024
	vramHeight = 512
)

// Output presents PSX framebuffer contents through an ebiten window. It
// implements gpu.VideoBackend and ebiten.Game simultaneously: the GPU
// calls the former from the emulation thread, ebiten's loop drives the
// latter on the main thread.
type Output struct {
	mu   sync.RWMutex
	vram [vramWidth * vramHeight]uint16

	img    *ebiten.Image
	scale  int
	closed bool
}

// New constructs a window-backed Output. Call Run to start ebiten's loop;
// Run blocks until the window is closed, so it must run on the host's
// main goroutine.
func New(scale int) *Output {
	if scale <= 0 {
		scale = 1
	}
	return &Output{img: ebiten.NewImage(vramWidth, vramHeight), scale: scale}
}

// Run starts the ebiten loop. Must be called from the main goroutine.
func (o *Output) Run(title string) error {
	ebiten.SetWindowSize(vramWidth*o.scale, vramHeight*o.scale)
	ebiten.SetWindowTitle(title)
	return ebiten.RunGame(o)
}

// DrawTriangles implements gpu.VideoBackend by rasterizing a triangle, or
// a quad as the triangle pair (v0,v1,v2) and (v1,v2,v3), directly into the
// VRAM buffer. Each triangle is flat-shaded with its first vertex's color;
// per-vertex (Gouraud) colors are not interpolated.
func (o *Output) DrawTriangles(p gpu.TrianglesParams) {
	o.mu.Lock()
	defer o.mu.Unlock()
	for i := 0; i+2 < len(p.Vertices); i += 3 {
		o.fillTriangle(p.Vertices[i], p.Vertices[i+1], p.Vertices[i+2])
	}
	if len(p.Vertices) == 4 {
		o.fillTriangle(p.Vertices[1], p.Vertices[2], p.Vertices[3])
	}
}

// DrawRectangle implements gpu.VideoBackend for GP0 rectangle primitives.
func (o *Output) DrawRectangle(p gpu.RectangleParams) {
	o.mu.Lock()
	defer o.mu.Unlock()
	col := rgb15(p.R, p.G, p.B)
	for y := 0; y < int(p.H); y++ {
		for x := 0; x < int(p.W); x++ {
			o.plot(int(p.X)+x, int(p.Y)+y, col)
		}
	}
}

// WriteFramebuffer implements gpu.VideoBackend for CPU-to-VRAM copies.
func (o *Output) WriteFramebuffer(p gpu.WriteFramebufferParams) {
	o.mu.Lock()
	defer o.mu.Unlock()
	w, h := int(p.W), int(p.H)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			idx := y*w + x
			if idx >= len(p.Pixels) {
				return
			}
			o.plot(int(p.X)+x, int(p.Y)+y, p.Pixels[idx])
		}
	}
}

// ReadFramebuffer implements gpu.VideoBackend for VRAM-to-CPU readback.
func (o *Output) ReadFramebuffer(p gpu.ReadFramebufferParams) []uint16 {
	o.mu.RLock()
	defer o.mu.RUnlock()
	out := make([]uint16, 0, int(p.W)*int(p.H))
	for y := 0; y < int(p.H); y++ {
		for x := 0; x < int(p.W); x++ {
			out = append(out, o.at(int(p.X)+x, int(p.Y)+y))
		}
	}
	return out
}

func (o *Output) plot(x, y int, c uint16) {
	if x < 0 || y < 0 || x >= vramWidth || y >= vramHeight {
		return
	}
	o.vram[y*vramWidth+x] = c
}

func (o *Output) at(x, y int) uint16 {
	if x < 0 || y < 0 || x >= vramWidth || y >= vramHeight {
		return 0
	}
	return o.vram[y*vramWidth+x]
}

// fillTriangle rasterizes with a scanline barycentric fill, flat-shading
// from the first vertex's color (Gouraud interpolation is left for a
// future pass once texture blending lands).
func (o *Output) fillTriangle(a, b, c gpu.Vertex) {
	ax, ay := int(a.X), int(a.Y)
	bx, by := int(b.X), int(b.Y)
	cx, cy := int(c.X), int(c.Y)
	minX, maxX := clampX(min3(ax, bx, cx)), clampX(max3(ax, bx, cx))
	minY, maxY := clampY(min3(ay, by, cy)), clampY(max3(ay, by, cy))
	col := rgb15(a.R, a.G, a.B)

	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			if pointInTriangle(x, y, ax, ay, bx, by, cx, cy) {
				o.plot(x, y, col)
			}
		}
	}
}

func pointInTriangle(px, py, ax, ay, bx, by, cx, cy int) bool {
	d1 := sign(px, py, ax, ay, bx, by)
	d2 := sign(px, py, bx, by, cx, cy)
	d3 := sign(px, py, cx, cy, ax, ay)
	hasNeg := d1 < 0 || d2 < 0 || d3 < 0
	hasPos := d1 > 0 || d2 > 0 || d3 > 0
	return !(hasNeg && hasPos)
}

func sign(px, py, ax, ay, bx, by int) int {
	return (px-bx)*(ay-by) - (ax-bx)*(py-by)
}

func min3(a, b, c int) int {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}

func max3(a, b, c int) int {
	m := a
	if b > m {
		m = b
	}
	if c > m {
		m = c
	}
	return m
}

func clampX(v int) int {
	if v < 0 {
		return 0
	}
	if v >= vramWidth {
		return vramWidth - 1
	}
	return v
}

func clampY(v int) int {
	if v < 0 {
		return 0
	}
	if v >= vramHeight {
		return vramHeight - 1
	}
	return v
}

func rgb15(r, g, b uint8) uint16 {
	return uint16(r>>3) | uint16(g>>3)<<5 | uint16(b>>3)<<10
}

// Update implements ebiten.Game; the PSX state machine drives itself, so
// there is nothing to advance here.
func (o *Output) Update() error {
	return nil
}

// Draw implements ebiten.Game, blitting the VRAM buffer to the screen.
func (o *Output) Draw(screen *ebiten.Image) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	for y := 0; y < vramHeight; y++ {
		for x := 0; x < vramWidth; x++ {
			v := o.vram[y*vramWidth+x]
			screen.Set(x, y, color.RGBA{
				R: uint8(v&0x1F) << 3,
				G: uint8((v>>5)&0x1F) << 3,
				B: uint8((v>>10)&0x1F) << 3,
				A: 0xFF,
			})
		}
	}
}

// Layout implements ebiten.Game with a fixed PSX VRAM logical size.
func (o *Output) Layout(_, _ int) (int, int) {
	return vramWidth, vramHeight
}
