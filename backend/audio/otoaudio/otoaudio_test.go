//go:build !headless

package otoaudio

import "testing"

func TestReadDrainsRingThenPadsSilence(t *testing.T) {
	p := &Player{}
	p.PushFrames([]int16{1, 2}, []int16{-1, -2})

	buf := make([]byte, 12)
	n, err := p.Read(buf)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if n != len(buf) {
		t.Fatalf("n = %d, want %d", n, len(buf))
	}
	if buf[0] != 1 || buf[1] != 0 {
		t.Fatalf("first left sample = %v", buf[0:2])
	}
	for i := 8; i < 12; i++ {
		if buf[i] != 0 {
			t.Fatalf("expected silence padding at %d, got %d", i, buf[i])
		}
	}
}

func TestPushFramesAccumulatesAcrossCalls(t *testing.T) {
	p := &Player{}
	p.PushFrames([]int16{1}, []int16{2})
	p.PushFrames([]int16{3}, []int16{4})
	if len(p.ring) != 8 {
		t.Fatalf("ring len = %d, want 8", len(p.ring))
	}
}
