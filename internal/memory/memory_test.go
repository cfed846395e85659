package memory

import "testing"

func TestRAMRoundTrip(t *testing.T) {
	m := NewRAM()
	b := []byte{0x11, 0x22, 0x33, 0x44, 0x55}
	m.WriteRaw(0x1000, b)
	got := m.ReadRaw(0x1000, len(b))
	for i := range b {
		if got[i] != b[i] {
			t.Fatalf("byte %d: got %#x want %#x", i, got[i], b[i])
		}
	}
}

func TestRAMWordAccess(t *testing.T) {
	m := NewRAM()
	if err := m.Write(0x100, 4, 0xDEADBEEF); err != nil {
		t.Fatalf("write: %v", err)
	}
	v, err := m.Read(0x100, 4)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if v != 0xDEADBEEF {
		t.Fatalf("got %#x want 0xDEADBEEF", v)
	}
	// Byte-level halves should match little-endian decomposition.
	lo, _ := m.Read(0x100, 2)
	hi, _ := m.Read(0x102, 2)
	if lo != 0xBEEF || hi != 0xDEAD {
		t.Fatalf("lo=%#x hi=%#x", lo, hi)
	}
}

func TestRAMMirrored(t *testing.T) {
	m := NewRAM()
	_ = m.Write(0x10, 4, 0x12345678)
	v, _ := m.Read(MainSize+0x10, 4)
	if v != 0x12345678 {
		t.Fatalf("mirrored read = %#x", v)
	}
}

func TestBIOSLoadAndReadOnly(t *testing.T) {
	b := NewBIOS()
	img := make([]byte, 16)
	img[0] = 0xAB
	b.Load(img)
	v, err := b.Read(0x1FC0_0000, 1)
	if err != nil || v != 0xAB {
		t.Fatalf("got %#x, %v", v, err)
	}
	if err := b.Write(0x1FC0_0000, 1, 0xFF); err != nil {
		t.Fatalf("write should be a silent no-op: %v", err)
	}
	v, _ = b.Read(0x1FC0_0000, 1)
	if v != 0xAB {
		t.Fatalf("BIOS write should not change ROM contents, got %#x", v)
	}
}

func TestScratchpadRange(t *testing.T) {
	s := NewScratchpad()
	if !s.Contains(0x1F80_0000) || s.Contains(0x1F80_0400) {
		t.Fatal("scratchpad range mismatch")
	}
	_ = s.Write(0x1F80_0010, 4, 42)
	v, _ := s.Read(0x1F80_0010, 4)
	if v != 42 {
		t.Fatalf("got %d", v)
	}
}
