/*
 * psxcore - slog handler: single-line file+stderr tee with a debug toggle.
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

// Package corelog wraps slog.Handler to join time, level, message and
// attributes onto one line, writing to a log file and, while debug mode
// is on, echoing to stderr as well, for this emulator's controller
// packages' trace lines.
package corelog

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// Handler tees formatted log lines to a file and, conditionally, stderr.
type Handler struct {
	file   io.Writer
	stderr io.Writer
	debug  *atomic.Bool
	attrs  []slog.Attr
	group  string
	mu     *sync.Mutex
}

// NewHandler creates a Handler writing to file, echoing to stderr only
// while debug is true. debug is shared across derived handlers (WithAttrs,
// WithGroup) so SetDebug toggles every one at once.
func NewHandler(file io.Writer, stderr io.Writer, debug bool) *Handler {
	b := &atomic.Bool{}
	b.Store(debug)
	return &Handler{file: file, stderr: stderr, debug: b, mu: &sync.Mutex{}}
}

// SetDebug toggles stderr echoing at runtime.
func (h *Handler) SetDebug(v bool) { h.debug.Store(v) }

func (h *Handler) Enabled(context.Context, slog.Level) bool { return true }

func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	next.attrs = append(append([]slog.Attr{}, h.attrs...), attrs...)
	return &next
}

func (h *Handler) WithGroup(name string) slog.Handler {
	next := *h
	if next.group == "" {
		next.group = name
	} else {
		next.group = next.group + "." + name
	}
	return &next
}

func (h *Handler) Handle(_ context.Context, r slog.Record) error {
	var b strings.Builder
	b.WriteString(r.Time.Format(time.RFC3339))
	b.WriteByte(' ')
	b.WriteString(r.Level.String())
	b.WriteByte(' ')
	b.WriteString(r.Message)
	for _, a := range h.attrs {
		fmt.Fprintf(&b, " %s=%v", qualify(h.group, a.Key), a.Value)
	}
	r.Attrs(func(a slog.Attr) bool {
		fmt.Fprintf(&b, " %s=%v", qualify(h.group, a.Key), a.Value)
		return true
	})
	b.WriteByte('\n')
	line := b.String()

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.file != nil {
		io.WriteString(h.file, line)
	}
	if h.debug.Load() && h.stderr != nil {
		io.WriteString(h.stderr, line)
	}
	return nil
}

func qualify(group, key string) string {
	if group == "" {
		return key
	}
	return group + "." + key
}
