package corelog

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestHandleWritesFileAlways(t *testing.T) {
	var file, stderr bytes.Buffer
	h := NewHandler(&file, &stderr, false)
	logger := slog.New(h)
	logger.Info("booted", "pc", "0xbfc00000")

	if !strings.Contains(file.String(), "booted") {
		t.Fatalf("file output = %q", file.String())
	}
	if !strings.Contains(file.String(), "pc=0xbfc00000") {
		t.Fatalf("file output = %q", file.String())
	}
	if stderr.Len() != 0 {
		t.Fatal("stderr should stay empty with debug off")
	}
}

func TestSetDebugEnablesStderrEcho(t *testing.T) {
	var file, stderr bytes.Buffer
	h := NewHandler(&file, &stderr, false)
	h.SetDebug(true)
	logger := slog.New(h)
	logger.Info("tick")
	if stderr.Len() == 0 {
		t.Fatal("stderr should receive output once debug is enabled")
	}
}

func TestWithGroupQualifiesAttrs(t *testing.T) {
	var file bytes.Buffer
	h := NewHandler(&file, nil, false)
	grouped := h.WithGroup("dmac").WithAttrs([]slog.Attr{slog.Int("channel", 2)})
	r := slog.NewRecord(time.Now(), slog.LevelInfo, "transfer", 0)
	if err := grouped.Handle(context.Background(), r); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if !strings.Contains(file.String(), "dmac.channel=2") {
		t.Fatalf("output = %q", file.String())
	}
}
