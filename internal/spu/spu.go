/*
 * psxcore - SPU: 24-voice ADPCM/ADSR mixer at 44,100 Hz.
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

// Package spu implements the 24-voice ADPCM sample mixer:
// per-voice key-on/off latches, ADPCM block decode with the standard
// 5-coefficient filter table, pitch-counter interpolation, a 4-phase ADSR
// envelope, and the volume chain down to a stereo frame pushed to an
// attached AudioBackend once BufferSize frames have accumulated.
package spu

import "github.com/psxcore-dev/psxcore/internal/bus"

const (
	NumVoices  = 24
	RAMSize    = 512 * 1024
	BufferSize = 256
)

// filterTable holds the (k0, k1) predictor coefficients, Q6 fixed point,
// selected by an ADPCM block header's filter nibble.
var filterTable = [5][2]int32{
	{0, 0},
	{60, 0},
	{115, -52},
	{98, -55},
	{122, -60},
}

// TransferMode selects the SPU's RAM access path.
type TransferMode uint8

const (
	TransferStop TransferMode = iota
	TransferManualWrite
	TransferDMAWrite
	TransferDMARead
)

// ADSRPhase enumerates the envelope state machine.
type ADSRPhase int

const (
	PhaseOff ADSRPhase = iota
	PhaseAttack
	PhaseDecay
	PhaseSustain
	PhaseRelease
)

// AudioBackend is the pure-sink collaborator that actually plays audio.
type AudioBackend interface {
	PushFrames(left, right []int16)
}

// Voice holds one of the 24 ADPCM channels' decode, pitch and envelope
// state.
type Voice struct {
	startAddr  uint32
	repeatAddr uint32
	currentAddr uint32

	sampleRate uint16
	pitchCounter uint32 // 16.12 fixed point

	decoded   [28]int16
	history   [2]int32 // previous two decoded samples, for the ADPCM predictor
	history4  [4]int32 // most recent 4 interpolated-source samples

	loopEnd    bool
	loopRepeat bool

	phase        ADSRPhase
	level        int32 // current ADSR level, 0..0x7FFF
	adsr         ADSRConfig

	volLeft, volRight int32

	keyOn, keyOff bool
	active        bool
	muted         bool
}

// ADSRConfig holds the 4-phase envelope's rate/direction/mode parameters
// as packed into the SPU's ADSR1/ADSR2 registers.
type ADSRConfig struct {
	AttackShift, AttackStep   int32
	AttackExponential         bool
	DecayShift                int32
	SustainLevel              int32
	SustainShift, SustainStep int32
	SustainDirection          int32 // +1 increase, -1 decrease
	SustainExponential        bool
	ReleaseShift              int32
	ReleaseExponential        bool
}

// SPU owns the voice array, the shared RAM image, and the transfer/mixer
// registers.
type SPU struct {
	backend AudioBackend
	ram     [RAMSize]byte

	Voices [NumVoices]Voice

	transferMode TransferMode
	transferAddr uint32
	dataFIFO     *bus.FIFO[uint32]

	mainVolLeft, mainVolRight int32
	unmute                    bool

	frameLeft, frameRight []int16
}

func New(backend AudioBackend) *SPU {
	return &SPU{
		backend:  backend,
		dataFIFO: bus.NewFIFO[uint32](32),
		unmute:   true,
	}
}

// VoiceState is a read-only snapshot of one voice's playback/envelope
// state, for introspection outside the package.
type VoiceState struct {
	CurrentAddr uint32
	Phase       ADSRPhase
	Level       int32
	Active      bool
	Muted       bool
}

// VoiceState reports voice i's current playback state. i must be in
// [0, NumVoices).
func (s *SPU) VoiceState(i int) VoiceState {
	v := &s.Voices[i]
	return VoiceState{
		CurrentAddr: v.currentAddr,
		Phase:       v.phase,
		Level:       v.level,
		Active:      v.active,
		Muted:       v.muted,
	}
}

// KeyOn latches key-on for the voices selected by mask, resetting their
// decode/envelope state.
func (s *SPU) KeyOn(mask uint32) {
	for i := 0; i < NumVoices; i++ {
		if mask&(1<<i) == 0 {
			continue
		}
		v := &s.Voices[i]
		v.currentAddr = v.startAddr
		v.pitchCounter = 0
		v.history = [2]int32{}
		v.history4 = [4]int32{}
		v.phase = PhaseAttack
		v.level = 0
		v.active = true
	}
}

// KeyOff latches key-off, transitioning the selected voices to Release.
func (s *SPU) KeyOff(mask uint32) {
	for i := 0; i < NumVoices; i++ {
		if mask&(1<<i) == 0 {
			continue
		}
		s.Voices[i].phase = PhaseRelease
	}
}

// SetTransferMode selects the SPU RAM access path.
func (s *SPU) SetTransferMode(m TransferMode) { s.transferMode = m }

// SetTransferAddress sets the current SPU RAM cursor for manual/DMA transfers.
func (s *SPU) SetTransferAddress(addr uint32) { s.transferAddr = addr & (RAMSize - 1) }

// PushWord implements dmac.Port for the SPU's DmaWrite transfer mode: the
// DMAC channel drains into SPU RAM at the current transfer address,
// incrementing per word.
func (s *SPU) PushWord(v uint32) error {
	if s.transferMode != TransferDMAWrite {
		return nil
	}
	s.ram[s.transferAddr] = byte(v)
	s.ram[(s.transferAddr+1)%RAMSize] = byte(v >> 8)
	s.ram[(s.transferAddr+2)%RAMSize] = byte(v >> 16)
	s.ram[(s.transferAddr+3)%RAMSize] = byte(v >> 24)
	s.transferAddr = (s.transferAddr + 4) % RAMSize
	return nil
}

// PullWord implements dmac.Port for DmaRead mode.
func (s *SPU) PullWord() (uint32, error) {
	if s.transferMode != TransferDMARead {
		return 0, nil
	}
	v := uint32(s.ram[s.transferAddr]) |
		uint32(s.ram[(s.transferAddr+1)%RAMSize])<<8 |
		uint32(s.ram[(s.transferAddr+2)%RAMSize])<<16 |
		uint32(s.ram[(s.transferAddr+3)%RAMSize])<<24
	s.transferAddr = (s.transferAddr + 4) % RAMSize
	return v, nil
}

// Tick advances the mixer by one sample period (1/44100s), decoding,
// interpolating, enveloping and mixing every active voice, then flushing
// a stereo frame to the backend once BufferSize accumulates.
func (s *SPU) Tick() {
	var mixL, mixR int32
	for i := range s.Voices {
		v := &s.Voices[i]
		if !v.active {
			continue
		}
		sample := s.advanceVoice(v)
		envLevel := v.runADSR()
		scaled := (sample * envLevel) >> 15
		mixL += (scaled * v.volLeft) >> 15
		mixR += (scaled * v.volRight) >> 15
	}
	if !s.unmute {
		mixL, mixR = 0, 0
	}
	mixL = (mixL * s.mainVolLeft) >> 15
	mixR = (mixR * s.mainVolRight) >> 15

	s.frameLeft = append(s.frameLeft, clampS16(mixL))
	s.frameRight = append(s.frameRight, clampS16(mixR))
	if len(s.frameLeft) >= BufferSize {
		if s.backend != nil {
			s.backend.PushFrames(s.frameLeft, s.frameRight)
		}
		s.frameLeft = nil
		s.frameRight = nil
	}
}

func clampS16(v int32) int16 {
	if v > 0x7FFF {
		return 0x7FFF
	}
	if v < -0x8000 {
		return -0x8000
	}
	return int16(v)
}

// advanceVoice decodes new ADPCM blocks as needed, advances the pitch
// counter, and returns one interpolated mono sample.
func (s *SPU) advanceVoice(v *Voice) int32 {
	blockPos := v.pitchCounter >> 12
	if blockPos >= 28 {
		s.decodeBlock(v)
		v.pitchCounter &= 0xFFF
		blockPos = 0
	}
	idx := int(blockPos)
	sample := int32(v.decoded[idx])

	frac := v.pitchCounter & 0xFFF
	v.pitchCounter += uint32(v.sampleRate)

	// Linear blend between the current sample and its successor using the
	// fractional pitch position; the hardware's 4-tap Gaussian
	// interpolation is not performed and history4 is not read.
	var next int32
	if idx+1 < 28 {
		next = int32(v.decoded[idx+1])
	} else {
		next = sample
	}
	return sample + ((next-sample)*int32(frac))>>12
}

// decodeBlock reads the next 16-byte ADPCM block from SPU RAM at
// v.currentAddr, applies the predictor filter, and fills v.decoded.
func (s *SPU) decodeBlock(v *Voice) {
	addr := v.currentAddr % RAMSize
	header := s.ram[addr]
	flags := s.ram[(addr+1)%RAMSize]
	shift := header & 0xF
	filter := (header >> 4) & 0x7
	if int(filter) >= len(filterTable) {
		filter = 0
	}
	k0, k1 := filterTable[filter][0], filterTable[filter][1]

	loopStart := flags&0x04 != 0
	loopEnd := flags&0x01 != 0
	loopRepeat := flags&0x02 != 0
	if loopStart {
		v.repeatAddr = v.currentAddr
	}

	old, older := v.history[0], v.history[1]
	for i := 0; i < 14; i++ {
		b := s.ram[(addr+2+uint32(i))%RAMSize]
		for half := 0; half < 2; half++ {
			var nibble int32
			if half == 0 {
				nibble = int32(int8(b<<4) >> 4)
			} else {
				nibble = int32(int8(b) >> 4)
			}
			raw := (nibble << 12) >> shift
			predicted := raw + (old*k0+older*k1+32)>>6
			if predicted > 32767 {
				predicted = 32767
			} else if predicted < -32768 {
				predicted = -32768
			}
			sampleIdx := i*2 + half
			v.decoded[sampleIdx] = int16(predicted)
			older = old
			old = predicted
		}
	}
	v.history[0], v.history[1] = old, older

	v.loopEnd = loopEnd
	v.loopRepeat = loopRepeat
	if loopEnd {
		v.currentAddr = v.repeatAddr
		if !loopRepeat {
			v.phase = PhaseRelease
		}
	} else {
		v.currentAddr += 16
	}
}

// runADSR advances the voice's envelope by one tick per the
// wait_cycles/step_value formula, and returns the
// current level.
func (v *Voice) runADSR() int32 {
	switch v.phase {
	case PhaseAttack:
		stepEnvelope(&v.level, v.adsr.AttackShift, v.adsr.AttackStep, 1, v.adsr.AttackExponential && v.level >= 0x6000)
		if v.level >= 0x7FFF {
			v.level = 0x7FFF
			v.phase = PhaseDecay
		}
	case PhaseDecay:
		exp := v.level > 0
		stepScaledDown(&v.level, v.adsr.DecayShift, v.level)
		_ = exp
		if v.level <= v.adsr.SustainLevel {
			v.level = v.adsr.SustainLevel
			v.phase = PhaseSustain
		}
	case PhaseSustain:
		if v.adsr.SustainDirection > 0 {
			stepEnvelope(&v.level, v.adsr.SustainShift, v.adsr.SustainStep, 1, v.adsr.SustainExponential && v.level >= 0x6000)
		} else {
			if v.adsr.SustainExponential {
				stepScaledDown(&v.level, v.adsr.SustainShift, v.level)
			} else {
				stepEnvelope(&v.level, v.adsr.SustainShift, v.adsr.SustainStep, -1, false)
			}
		}
		clampLevel(&v.level)
	case PhaseRelease:
		if v.adsr.ReleaseExponential {
			stepScaledDown(&v.level, v.adsr.ReleaseShift, v.level)
		} else {
			stepEnvelope(&v.level, v.adsr.ReleaseShift, 1, -1, false)
		}
		if v.level <= 0 {
			v.level = 0
			v.active = false
		}
	}
	return v.level
}

func clampLevel(level *int32) {
	if *level > 0x7FFF {
		*level = 0x7FFF
	}
	if *level < 0 {
		*level = 0
	}
}

// stepEnvelope implements the common linear step formula:
// wait_cycles = 1 << max(0, shift-11); step_value = base_step << max(0,
// 11-shift); quadruple wait_cycles in exponential-up mode above 0x6000 is
// approximated here by quartering the effective step instead, since this
// model runs one envelope update per audio tick rather than modeling the
// wait-cycle counter explicitly.
func stepEnvelope(level *int32, shift, baseStep, direction int32, exponentialUpSlow bool) {
	step := baseStep << max0(11-shift)
	if exponentialUpSlow {
		step /= 4
	}
	*level += direction * step
	clampLevel(level)
}

// stepScaledDown implements exponential-down mode: step is scaled by
// current_level/0x8000 before applying.
func stepScaledDown(level *int32, shift int32, current int32) {
	step := int32(1) << max0(11-shift)
	scaled := (step * current) >> 15
	if scaled < 1 {
		scaled = 1
	}
	*level -= scaled
	clampLevel(level)
}

func max0(v int32) int32 {
	if v < 0 {
		return 0
	}
	return v
}
