package cdrom

import "testing"

type fakeBackend struct{ disc bool }

func (f *fakeBackend) HasDisc() bool { return f.disc }
func (f *fakeBackend) ReadSector(m, s, fr byte) ([2048]byte, error) {
	var sec [2048]byte
	sec[0] = m
	return sec, nil
}

type recordingIRQ struct{ causes []int }

func (r *recordingIRQ) RaiseCDROM(cause int) { r.causes = append(r.causes, cause) }

func TestGetStatAcknowledges(t *testing.T) {
	irq := &recordingIRQ{}
	c := New(&fakeBackend{disc: true}, irq)
	c.WriteCommand(CmdGetStat)
	c.Step()
	if len(irq.causes) != 1 || irq.causes[0] != IntAcknowledge {
		t.Fatalf("causes = %v", irq.causes)
	}
	b, err := c.ReadResponse()
	if err != nil {
		t.Fatalf("response: %v", err)
	}
	if b&0x02 == 0 {
		t.Fatal("motor-on bit should be set")
	}
}

func TestGetIDTwoPhaseWithDisc(t *testing.T) {
	irq := &recordingIRQ{}
	c := New(&fakeBackend{disc: true}, irq)
	c.WriteCommand(CmdGetID)
	c.Step()
	c.Step()
	if len(irq.causes) != 2 {
		t.Fatalf("causes = %v, want 2 phases", irq.causes)
	}
	if irq.causes[0] != IntAcknowledge || irq.causes[1] != IntSecondResp {
		t.Fatalf("causes = %v", irq.causes)
	}
}

func TestGetIDNoDisc(t *testing.T) {
	irq := &recordingIRQ{}
	c := New(&fakeBackend{disc: false}, irq)
	c.WriteCommand(CmdGetID)
	c.Step()
	c.Step()
	if irq.causes[1] != IntNoDisc {
		t.Fatalf("second phase cause = %d, want IntNoDisc", irq.causes[1])
	}
}

func TestReadNDeliversSectorAfterDelay(t *testing.T) {
	irq := &recordingIRQ{}
	c := New(&fakeBackend{disc: true}, irq)
	c.WriteCommand(CmdReadN)
	c.Step() // acknowledge, begin reading
	for i := 0; i < sectorDelayTicks; i++ {
		c.Step()
	}
	if len(irq.causes) < 2 || irq.causes[len(irq.causes)-1] != IntDataReady {
		t.Fatalf("causes = %v, want trailing IntDataReady", irq.causes)
	}
	b, err := c.ReadData()
	if err != nil {
		t.Fatalf("data: %v", err)
	}
	_ = b
}
