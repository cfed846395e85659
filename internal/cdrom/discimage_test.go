package cdrom

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTestImage(t *testing.T, sectors int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.bin")
	buf := make([]byte, sectors*rawSectorSize)
	for s := 0; s < sectors; s++ {
		for i := 0; i < userDataSize; i++ {
			buf[s*rawSectorSize+userDataOffset+i] = byte(s)
		}
	}
	if err := os.WriteFile(path, buf, 0o644); err != nil {
		t.Fatalf("write test image: %v", err)
	}
	return path
}

func TestReadSectorAtPregapBoundary(t *testing.T) {
	img, err := OpenDiscImage(writeTestImage(t, 4))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer img.Close()

	// MSF 00:02:00 is LBA 0, the first addressable sector after the pregap.
	data, err := img.ReadSector(0x00, 0x02, 0x00)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if data[0] != 0 {
		t.Fatalf("sector 0 marker = %d, want 0", data[0])
	}
}

func TestReadSectorPastEndFails(t *testing.T) {
	img, err := OpenDiscImage(writeTestImage(t, 1))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer img.Close()

	if _, err := img.ReadSector(0x00, 0x02, 0x10); err == nil {
		t.Fatal("expected error reading past end of image")
	}
}

func TestMsfToLBAConvertsBCD(t *testing.T) {
	if got := msfToLBA(0x00, 0x02, 0x00); got != 0 {
		t.Fatalf("lba = %d, want 0", got)
	}
	if got := msfToLBA(0x01, 0x00, 0x00); got != 60*75-150 {
		t.Fatalf("lba = %d, want %d", got, 60*75-150)
	}
}
