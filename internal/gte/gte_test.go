package gte

import "testing"

func TestAvsz4Averages(t *testing.T) {
	g := New()
	g.SZ = [4]uint16{100, 200, 300, 400}
	g.ZSF4 = 4096 // 1.0 in 12-fraction fixed point
	if err := g.Execute(opAVSZ4, false); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if g.OTZ != 1000 {
		t.Fatalf("OTZ = %d, want 1000", g.OTZ)
	}
}

func TestNclipCrossProduct(t *testing.T) {
	g := New()
	g.SXY[0] = [2]int16{0, 0}
	g.SXY[1] = [2]int16{10, 0}
	g.SXY[2] = [2]int16{0, 10}
	if err := g.Execute(opNCLIP, false); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if g.MAC0 != 100 {
		t.Fatalf("MAC0 = %d, want 100", g.MAC0)
	}
}

func TestDataRegisterRoundTrip(t *testing.T) {
	g := New()
	g.WriteData(0, 0x0002_0001)
	if g.V[0].X != 1 || g.V[0].Y != 2 {
		t.Fatalf("V0 = %v", g.V[0])
	}
	if g.ReadData(0) != 0x0002_0001 {
		t.Fatalf("readback = %#x", g.ReadData(0))
	}
}

func TestControlRegisterRoundTrip(t *testing.T) {
	g := New()
	g.WriteControl(5, 0x1000)
	if g.TR[0] != 0x1000 {
		t.Fatalf("TR[0] = %d", g.TR[0])
	}
	if g.ReadControl(5) != 0x1000 {
		t.Fatalf("readback = %#x", g.ReadControl(5))
	}
}

func TestRTPSPushesFIFOs(t *testing.T) {
	g := New()
	g.RT[0][0], g.RT[1][1], g.RT[2][2] = 4096, 4096, 4096 // identity
	g.H = 100
	g.OFX, g.OFY = 0, 0
	g.V[0] = Vector3{10, 20, 100}
	if err := g.Execute(opRTPS, true); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if g.SZ[3] == 0 {
		t.Fatal("SZ3 should be populated")
	}
}
