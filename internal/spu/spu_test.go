package spu

import "testing"

type capturingBackend struct {
	calls int
	lastLen int
}

func (c *capturingBackend) PushFrames(left, right []int16) {
	c.calls++
	c.lastLen = len(left)
}

func TestKeyOnResetsVoiceState(t *testing.T) {
	s := New(nil)
	s.Voices[0].startAddr = 0x100
	s.KeyOn(1 << 0)
	if s.Voices[0].currentAddr != 0x100 {
		t.Fatalf("currentAddr = %#x, want 0x100", s.Voices[0].currentAddr)
	}
	if s.Voices[0].phase != PhaseAttack {
		t.Fatal("key-on should enter Attack phase")
	}
	if !s.Voices[0].active {
		t.Fatal("key-on should mark voice active")
	}
}

func TestKeyOffEntersRelease(t *testing.T) {
	s := New(nil)
	s.KeyOn(1)
	s.KeyOff(1)
	if s.Voices[0].phase != PhaseRelease {
		t.Fatal("key-off should enter Release phase")
	}
}

func TestTickFlushesBufferToBackend(t *testing.T) {
	backend := &capturingBackend{}
	s := New(backend)
	for i := 0; i < BufferSize; i++ {
		s.Tick()
	}
	if backend.calls != 1 {
		t.Fatalf("calls = %d, want 1", backend.calls)
	}
	if backend.lastLen != BufferSize {
		t.Fatalf("frame len = %d, want %d", backend.lastLen, BufferSize)
	}
}

func TestADPCMDecodeProducesSamples(t *testing.T) {
	s := New(nil)
	// Header: shift=0, filter=0; 14 data bytes of alternating nibbles.
	s.ram[0] = 0x00
	s.ram[1] = 0x00
	for i := 0; i < 14; i++ {
		s.ram[2+i] = 0x12
	}
	v := &s.Voices[0]
	v.sampleRate = 0x1000 // advance one block entry per tick
	v.currentAddr = 0
	v.active = true
	v.phase = PhaseAttack
	s.decodeBlock(v)
	if v.decoded[0] == 0 && v.decoded[1] == 0 {
		t.Fatal("decode should produce non-trivial samples")
	}
}

func TestDMAWriteAdvancesTransferAddress(t *testing.T) {
	s := New(nil)
	s.SetTransferMode(TransferDMAWrite)
	s.SetTransferAddress(0)
	_ = s.PushWord(0xAABBCCDD)
	if s.transferAddr != 4 {
		t.Fatalf("transferAddr = %d, want 4", s.transferAddr)
	}
	if s.ram[0] != 0xDD || s.ram[3] != 0xAA {
		t.Fatal("bytes should be written little-endian")
	}
}
