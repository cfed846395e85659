package biosdb

import "testing"

func TestIdentifyKnownImage(t *testing.T) {
	data := make([]byte, 0, 500)
	for i := 0; i < 20; i++ {
		data = append(data, []byte("PSXCORE-TEST-BIOS-FIXTURE")...)
	}
	e, ok := Identify(data)
	if !ok {
		t.Fatal("expected known fixture image to be identified")
	}
	if e.Name != "test-fixture" {
		t.Fatalf("Name = %q, want test-fixture", e.Name)
	}
}

func TestIdentifyUnknownImage(t *testing.T) {
	_, ok := Identify([]byte("not a real bios image"))
	if ok {
		t.Fatal("unknown image should not match the table")
	}
}
