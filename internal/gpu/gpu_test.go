package gpu

import "testing"

type recordingBackend struct {
	triangles []TrianglesParams
	rects     []RectangleParams
}

func (r *recordingBackend) DrawTriangles(p TrianglesParams)     { r.triangles = append(r.triangles, p) }
func (r *recordingBackend) DrawRectangle(p RectangleParams)     { r.rects = append(r.rects, p) }
func (r *recordingBackend) WriteFramebuffer(WriteFramebufferParams) {}
func (r *recordingBackend) ReadFramebuffer(ReadFramebufferParams) []uint16 { return nil }

func TestFlatTriangleDispatch(t *testing.T) {
	backend := &recordingBackend{}
	g := New(backend)
	// opcode 0x20: monochrome opaque triangle, 3 vertices, no gouraud/texture.
	cmd := uint32(0x20)<<24 | 0x00FF00
	_ = g.WriteGP0(cmd)
	_ = g.WriteGP0(0x0000_0010) // vertex0 (x=16,y=0)
	_ = g.WriteGP0(0x0010_0000) // vertex1 (x=0,y=16)
	_ = g.WriteGP0(0x0010_0010) // vertex2 (x=16,y=16)
	g.Step(10)

	if len(backend.triangles) != 1 {
		t.Fatalf("got %d triangles, want 1", len(backend.triangles))
	}
	tri := backend.triangles[0]
	if len(tri.Vertices) != 3 {
		t.Fatalf("got %d vertices, want 3", len(tri.Vertices))
	}
	if tri.Vertices[0].G != 0xFF {
		t.Fatalf("green = %#x, want 0xFF", tri.Vertices[0].G)
	}
}

func TestDrawingAreaStateUpdates(t *testing.T) {
	g := New(nil)
	_ = g.WriteGP0(uint32(0xE3)<<24 | 100 | (50 << 10))
	g.Step(1)
	if g.state.drawAreaLeft != 100 || g.state.drawAreaTop != 50 {
		t.Fatalf("draw area = (%d,%d)", g.state.drawAreaLeft, g.state.drawAreaTop)
	}
}

func TestGP1Reset(t *testing.T) {
	g := New(nil)
	_ = g.WriteGP0(uint32(0xE3)<<24 | 5)
	g.Step(1)
	g.WriteGP1(0x00 << 24)
	if g.state.drawAreaLeft != 0 {
		t.Fatal("GP1(00) should reset draw state")
	}
}
