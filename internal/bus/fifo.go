/*
 * psxcore - Bounded ring-buffer FIFO shared by the GPU, SPU and CDROM front ends.
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

package bus

import "errors"

// ErrFifoEmpty and ErrFifoFull are the two transient conditions a FIFO can
// report. Callers (the DMAC in particular) treat both as "retry next step",
// never as a fatal bus error.
var (
	ErrFifoEmpty = errors.New("fifo: empty")
	ErrFifoFull  = errors.New("fifo: full")
)

// FIFO is a bounded single-producer/single-consumer ring buffer. Capacity is
// fixed at construction, matching the GP0 command FIFO (64 words), the SPU
// voice buffers and the CDROM parameter/response/data FIFOs.
type FIFO[T any] struct {
	buf   []T
	head  int // next slot to read
	count int
}

// NewFIFO allocates a FIFO with the given fixed capacity.
func NewFIFO[T any](capacity int) *FIFO[T] {
	if capacity <= 0 {
		capacity = 1
	}
	return &FIFO[T]{buf: make([]T, capacity)}
}

// Len returns the number of items currently queued.
func (f *FIFO[T]) Len() int {
	return f.count
}

// Cap returns the fixed capacity.
func (f *FIFO[T]) Cap() int {
	return len(f.buf)
}

// Empty reports whether the FIFO holds no items.
func (f *FIFO[T]) Empty() bool {
	return f.count == 0
}

// Full reports whether the FIFO is at capacity.
func (f *FIFO[T]) Full() bool {
	return f.count == len(f.buf)
}

// Clear discards all queued items.
func (f *FIFO[T]) Clear() {
	f.head = 0
	f.count = 0
}

// WriteOne pushes a single item, failing with ErrFifoFull on overflow.
func (f *FIFO[T]) WriteOne(v T) error {
	if f.Full() {
		return ErrFifoFull
	}
	tail := (f.head + f.count) % len(f.buf)
	f.buf[tail] = v
	f.count++
	return nil
}

// ReadOne pops a single item, failing with ErrFifoEmpty on underflow.
func (f *FIFO[T]) ReadOne() (T, error) {
	var zero T
	if f.Empty() {
		return zero, ErrFifoEmpty
	}
	v := f.buf[f.head]
	f.head = (f.head + 1) % len(f.buf)
	f.count--
	return v, nil
}

// PeekFront returns the next item without removing it.
func (f *FIFO[T]) PeekFront() (T, error) {
	var zero T
	if f.Empty() {
		return zero, ErrFifoEmpty
	}
	return f.buf[f.head], nil
}

// WriteBulk pushes as many items as fit, returning the count actually
// written and ErrFifoFull if the slice did not fully fit.
func (f *FIFO[T]) WriteBulk(vs []T) (int, error) {
	n := 0
	for _, v := range vs {
		if err := f.WriteOne(v); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

// ReadBulk pops up to max items, returning fewer if the FIFO drains first.
func (f *FIFO[T]) ReadBulk(max int) []T {
	out := make([]T, 0, max)
	for range max {
		v, err := f.ReadOne()
		if err != nil {
			break
		}
		out = append(out, v)
	}
	return out
}
