//go:build !headless

/*
 * psxcore - Main process.
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

package main

import (
	"log/slog"

	"github.com/psxcore-dev/psxcore/backend/audio/otoaudio"
	"github.com/psxcore-dev/psxcore/backend/video/ebitenvideo"
	"github.com/psxcore-dev/psxcore/internal/gpu"
	"github.com/psxcore-dev/psxcore/internal/spu"
)

// attachBackends wires the real oto/ebiten backends unless headless was
// requested, returning a cleanup func that closes whatever it opened.
// The ebiten window must be driven from the main goroutine, so the
// caller runs it after starting the scheduler on its own goroutine.
func attachBackends(headless bool, logger *slog.Logger, video *gpu.VideoBackend, audio *spu.AudioBackend) func() {
	if headless {
		return func() {}
	}

	player, err := otoaudio.New()
	if err != nil {
		logger.Error("audio backend unavailable, continuing muted", "err", err.Error())
	} else {
		*audio = player
	}

	out := ebitenvideo.New(2)
	*video = out
	go func() {
		if err := out.Run("psxcore"); err != nil {
			logger.Error("video backend exited", "err", err.Error())
		}
	}()

	return func() {
		if player != nil {
			player.Close()
		}
	}
}
