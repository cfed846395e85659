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
	"os"
	"os/signal"
	"syscall"

	getopt "github.com/pborman/getopt/v2"

	"github.com/psxcore-dev/psxcore/internal/biosdb"
	"github.com/psxcore-dev/psxcore/internal/cdrom"
	"github.com/psxcore-dev/psxcore/internal/config"
	"github.com/psxcore-dev/psxcore/internal/console"
	"github.com/psxcore-dev/psxcore/internal/corelog"
	"github.com/psxcore-dev/psxcore/internal/gpu"
	"github.com/psxcore-dev/psxcore/internal/scheduler"
	"github.com/psxcore-dev/psxcore/internal/spu"
	"github.com/psxcore-dev/psxcore/internal/system"
)

func main() {
	optConfig := getopt.StringLong("config", 'c', "psxcore.toml", "Configuration file")
	optLogFile := getopt.StringLong("log", 'l', "", "Log file")
	optDebug := getopt.BoolLong("debug", 'd', "Echo log lines to stderr")
	optHeadless := getopt.BoolLong("headless", 0, "Run without video/audio backends")
	optInteractive := getopt.BoolLong("interactive", 'i', "Start the debugger console")
	optHelp := getopt.BoolLong("help", 'h', "Help")
	getopt.Parse()

	if *optHelp {
		getopt.Usage()
		os.Exit(0)
	}

	var file *os.File
	if *optLogFile != "" {
		var err error
		file, err = os.Create(*optLogFile)
		if err != nil {
			os.Stderr.WriteString("psxcore: " + err.Error() + "\n")
			os.Exit(1)
		}
	}
	handler := corelog.NewHandler(file, os.Stderr, *optDebug)
	logger := slog.New(handler)
	slog.SetDefault(logger)
	logger.Info("psxcore started")

	if _, err := os.Stat(*optConfig); os.IsNotExist(err) {
		logger.Error("configuration file not found", "path", *optConfig)
		os.Exit(1)
	}

	var cpuClockHz int
	config.RegisterComponent("cpu", func(cfg config.ComponentConfig) error {
		if hz, ok := cfg.Raw["clock_hz"].(int64); ok {
			cpuClockHz = int(hz)
		}
		return nil
	})

	doc, err := config.Load(*optConfig)
	if err != nil {
		logger.Error(err.Error())
		os.Exit(1)
	}
	if doc.Debug {
		handler.SetDebug(true)
	}

	var bios []byte
	if doc.BIOSPath != "" {
		bios, err = os.ReadFile(doc.BIOSPath)
		if err != nil {
			logger.Error("failed to read BIOS image", "path", doc.BIOSPath, "err", err.Error())
			os.Exit(1)
		}
		if e, ok := biosdb.Identify(bios); ok {
			logger.Info("BIOS image identified", "name", e.Name, "region", e.Region, "version", e.Version)
		} else {
			logger.Warn("BIOS image not in known-dump table", "path", doc.BIOSPath)
		}
	}

	var disc cdrom.Backend
	if doc.DiscPath != "" {
		img, err := cdrom.OpenDiscImage(doc.DiscPath)
		if err != nil {
			logger.Error("failed to open disc image", "path", doc.DiscPath, "err", err.Error())
			os.Exit(1)
		}
		defer img.Close()
		disc = img
	}

	var video gpu.VideoBackend
	var audio spu.AudioBackend
	closeBackends := attachBackends(*optHeadless, logger, &video, &audio)
	defer closeBackends()

	sys := system.New(system.Config{
		Video:      video,
		Audio:      audio,
		Disc:       disc,
		BIOSImage:  bios,
		CPUClockHz: cpuClockHz,
	})

	sched := scheduler.New(sys)
	sched.Start()
	logger.Info("machine running")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	if *optInteractive {
		c := console.New(sched, sys, os.Stdout)
		go func() {
			c.Run()
			sigChan <- syscall.SIGTERM
		}()
	}

	<-sigChan
	logger.Info("shutting down")
	if err := sched.Stop(); err != nil {
		logger.Error("scheduler stop", "err", err.Error())
	}
	if err := config.Save(*optConfig+".snapshot.toml", doc); err != nil {
		logger.Error("failed to write config snapshot", "err", err.Error())
	}
	logger.Info("stopped")
}
