package scheduler

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

type countingMachine struct {
	steps int64
	failAfter int64
}

func (m *countingMachine) Step() error {
	n := atomic.AddInt64(&m.steps, 1)
	if m.failAfter > 0 && n >= m.failAfter {
		return errors.New("boom")
	}
	return nil
}

func TestSchedulerRunsAndStops(t *testing.T) {
	m := &countingMachine{}
	s := New(m)
	s.Start()
	time.Sleep(20 * time.Millisecond)
	if err := s.Stop(); err != nil {
		t.Fatalf("stop: %v", err)
	}
	if atomic.LoadInt64(&m.steps) == 0 {
		t.Fatal("machine should have stepped at least once")
	}
}

func TestSchedulerHaltsOnError(t *testing.T) {
	m := &countingMachine{failAfter: 3}
	s := New(m)
	s.Start()
	time.Sleep(20 * time.Millisecond)
	if s.Err() == nil {
		t.Fatal("expected scheduler to record the machine's error")
	}
	_ = s.Stop()
}

func TestPauseStopsForwardProgress(t *testing.T) {
	m := &countingMachine{}
	s := New(m)
	s.Start()
	time.Sleep(5 * time.Millisecond)
	s.Send(CmdPause)
	time.Sleep(5 * time.Millisecond)
	n1 := atomic.LoadInt64(&m.steps)
	time.Sleep(10 * time.Millisecond)
	n2 := atomic.LoadInt64(&m.steps)
	if n2 != n1 {
		t.Fatalf("steps advanced while paused: %d -> %d", n1, n2)
	}
	_ = s.Stop()
}

func TestStepWhilePausedAdvancesExactlyOnce(t *testing.T) {
	m := &countingMachine{}
	s := New(m)
	s.Start()
	time.Sleep(5 * time.Millisecond)
	s.Send(CmdPause)
	time.Sleep(5 * time.Millisecond)

	before := atomic.LoadInt64(&m.steps)
	if err := s.Step(); err != nil {
		t.Fatalf("step: %v", err)
	}
	after := atomic.LoadInt64(&m.steps)
	if after != before+1 {
		t.Fatalf("steps = %d, want %d", after, before+1)
	}

	time.Sleep(10 * time.Millisecond)
	if atomic.LoadInt64(&m.steps) != after {
		t.Fatal("run loop advanced after the manual step while still paused")
	}
	_ = s.Stop()
}
