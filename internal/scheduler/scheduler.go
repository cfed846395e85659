/*
 * psxcore - Cooperative scheduler driving the system one step at a time.
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

// Package scheduler runs the single-threaded cooperative driver: step the
// machine once per quantum, with suspension points only at step()
// boundaries. The loop shape — a running flag, a done channel, a
// control-message channel serviced with a non-blocking select — drives
// one system.Step() per quantum.
package scheduler

import (
	"errors"
	"sync"
	"time"
)

// Machine is the minimal surface the scheduler drives; *system.System
// satisfies it.
type Machine interface {
	Step() error
}

// Command values accepted on the control channel.
type Command int

const (
	CmdPause Command = iota
	CmdResume
	CmdReset
)

// Scheduler owns the run loop goroutine and its lifecycle.
type Scheduler struct {
	machine Machine

	wg      sync.WaitGroup
	done    chan struct{}
	control chan Command
	errOnce sync.Once
	lastErr error
	mu      sync.Mutex

	running bool
}

func New(m Machine) *Scheduler {
	return &Scheduler{
		machine: m,
		done:    make(chan struct{}),
		control: make(chan Command, 4),
		running: true,
	}
}

// Start launches the run loop in its own goroutine. Controller-internal
// errors stop forward progress; CPU exceptions never
// surface here since they are handled inside the CPU as normal guest
// control flow.
func (s *Scheduler) Start() {
	s.wg.Add(1)
	go s.run()
}

func (s *Scheduler) run() {
	defer s.wg.Done()
	for {
		select {
		case <-s.done:
			return
		case cmd := <-s.control:
			s.handleCommand(cmd)
			continue
		default:
		}

		if !s.isRunning() {
			time.Sleep(time.Millisecond)
			continue
		}

		if err := s.machine.Step(); err != nil {
			s.errOnce.Do(func() { s.lastErr = err })
			s.setRunning(false)
		}
	}
}

func (s *Scheduler) handleCommand(cmd Command) {
	switch cmd {
	case CmdPause:
		s.setRunning(false)
	case CmdResume:
		s.setRunning(true)
	case CmdReset:
		s.lastErr = nil
		s.setRunning(true)
	}
}

func (s *Scheduler) isRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *Scheduler) setRunning(v bool) {
	s.mu.Lock()
	s.running = v
	s.mu.Unlock()
}

// Send posts a control command onto the non-blocking control channel.
func (s *Scheduler) Send(cmd Command) {
	select {
	case s.control <- cmd:
	default:
	}
}

// Step runs the machine exactly once, synchronously. The run loop only
// touches machine while isRunning() is true, so this is safe to call from
// another goroutine as long as the caller has paused first with
// Send(CmdPause).
func (s *Scheduler) Step() error {
	return s.machine.Step()
}

// Err returns the error that halted the machine, if any.
func (s *Scheduler) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// ErrShutdownTimeout is returned by Stop if the run loop does not exit
// within its grace period.
var ErrShutdownTimeout = errors.New("scheduler: shutdown timed out")

// Stop signals the run loop to exit and waits up to one second for it.
func (s *Scheduler) Stop() error {
	close(s.done)
	waitCh := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(waitCh)
	}()
	select {
	case <-waitCh:
		return nil
	case <-time.After(time.Second):
		return ErrShutdownTimeout
	}
}
