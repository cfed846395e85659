/*
 * psxcore - Component configuration: TOML-backed, string-keyed component
 * registry.
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

// Package config loads the machine's startup configuration from a TOML
// file and dispatches named sections to whichever component registered
// interest in them, via a struct-tag-bound TOML document.
package config

import (
	"fmt"
	"os"
	"sync"

	"github.com/BurntSushi/toml"
)

// ComponentConfig is the generic bag of settings for one [component.*]
// TOML table; callers type-assert or re-decode the Raw map into their own
// struct via toml.PrimitiveDecode-free plain map access.
type ComponentConfig struct {
	Name string
	Raw  map[string]any
}

// ComponentFunc receives a component's settings at load time.
type ComponentFunc func(cfg ComponentConfig) error

var (
	registryMu sync.Mutex
	registry   = map[string]ComponentFunc{}
)

// RegisterComponent associates a component name (the TOML table name
// under [component]) with the function invoked when the config file
// contains a section for it.
func RegisterComponent(name string, fn ComponentFunc) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[name] = fn
}

// Document is the top-level shape of a machine config file.
type Document struct {
	BIOSPath string                    `toml:"bios_path"`
	DiscPath string                    `toml:"disc_path"`
	LogPath  string                    `toml:"log_path"`
	Debug    bool                      `toml:"debug"`
	Component map[string]map[string]any `toml:"component"`
}

// Load reads and parses path, then invokes every registered component
// whose name appears under [component.<name>].
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	var doc Document
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	registryMu.Lock()
	defer registryMu.Unlock()
	for name, fn := range registry {
		raw, ok := doc.Component[name]
		if !ok {
			continue
		}
		if err := fn(ComponentConfig{Name: name, Raw: raw}); err != nil {
			return nil, fmt.Errorf("config: component %q: %w", name, err)
		}
	}
	return &doc, nil
}
