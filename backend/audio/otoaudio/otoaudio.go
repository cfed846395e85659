//go:build !headless

/*
 * psxcore - optional oto-backed AudioBackend adapter.
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

// Package otoaudio implements spu.AudioBackend on top of ebitengine/oto,
// the same playback library the IntuitionEngine example repo wires up for
// its sound chips. oto pulls samples through an io.Reader on its own
// goroutine, so Player buffers PushFrames output in a byte ring and lets
// Read drain it, mirroring OtoPlayer's chip-polling Read method but fed by
// a push rather than a lock-free ring read. Kept behind the "!headless"
// build tag so the core module's tests never need a functioning audio
// device.
package otoaudio

import (
	"sync"

	"github.com/ebitengine/oto/v3"
)

const sampleRate = 44_100

// Player streams interleaved stereo int16 frames to the host's default
// audio device.
type Player struct {
	ctx    *oto.Context
	player *oto.Player

	mu   sync.Mutex
	ring []byte
}

// New opens the default audio device at the SPU's fixed 44.1kHz rate and
// starts the player pulling from Player's internal ring.
func New() (*Player, error) {
	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 2,
		Format:       oto.FormatSignedInt16LE,
	})
	if err != nil {
		return nil, err
	}
	<-ready

	p := &Player{ctx: ctx}
	p.player = ctx.NewPlayer(p)
	p.player.Play()
	return p, nil
}

// PushFrames implements spu.AudioBackend: interleaves left/right int16
// frames and appends them to the ring oto's playback goroutine drains.
func (p *Player) PushFrames(left, right []int16) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i := range left {
		p.ring = append(p.ring, byte(left[i]), byte(left[i]>>8), byte(right[i]), byte(right[i]>>8))
	}
}

// Read implements io.Reader for oto.Player: it drains the ring, padding
// with silence when the SPU hasn't produced enough samples yet rather
// than blocking oto's callback goroutine.
func (p *Player) Read(buf []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	n := copy(buf, p.ring)
	p.ring = p.ring[n:]
	for i := n; i < len(buf); i++ {
		buf[i] = 0
	}
	return len(buf), nil
}

// Close stops playback.
func (p *Player) Close() error {
	return p.player.Close()
}
