//go:build !headless

package ebitenvideo

import (
	"testing"

	"github.com/psxcore-dev/psxcore/internal/gpu"
)

func TestDrawRectangleFillsRegion(t *testing.T) {
	o := New(1)
	o.DrawRectangle(gpu.RectangleParams{X: 2, Y: 2, W: 3, H: 2, R: 0xF8, G: 0, B: 0})
	want := rgb15(0xF8, 0, 0)
	if got := o.at(2, 2); got != want {
		t.Fatalf("at(2,2) = %#x, want %#x", got, want)
	}
	if got := o.at(4, 3); got != want {
		t.Fatalf("at(4,3) = %#x, want %#x", got, want)
	}
	if got := o.at(5, 2); got != 0 {
		t.Fatalf("at(5,2) = %#x, want 0 (outside rect)", got)
	}
}

func TestWriteThenReadFramebufferRoundTrips(t *testing.T) {
	o := New(1)
	pixels := []uint16{0x1111, 0x2222, 0x3333, 0x4444}
	o.WriteFramebuffer(gpu.WriteFramebufferParams{X: 0, Y: 0, W: 2, H: 2, Pixels: pixels})
	got := o.ReadFramebuffer(gpu.ReadFramebufferParams{X: 0, Y: 0, W: 2, H: 2})
	for i, v := range pixels {
		if got[i] != v {
			t.Fatalf("pixel %d = %#x, want %#x", i, got[i], v)
		}
	}
}

func TestDrawTrianglesFillsInteriorPoint(t *testing.T) {
	o := New(1)
	o.DrawTriangles(gpu.TrianglesParams{Vertices: []gpu.Vertex{
		{X: 0, Y: 0, R: 0x00, G: 0xF8, B: 0x00},
		{X: 20, Y: 0, R: 0x00, G: 0xF8, B: 0x00},
		{X: 0, Y: 20, R: 0x00, G: 0xF8, B: 0x00},
	}})
	if got := o.at(2, 2); got == 0 {
		t.Fatal("expected interior point to be shaded")
	}
	if got := o.at(19, 19); got != 0 {
		t.Fatalf("expected point outside triangle to stay blank, got %#x", got)
	}
}
