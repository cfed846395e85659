package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDispatchesToRegisteredComponent(t *testing.T) {
	var gotName string
	var gotSize any
	RegisterComponent("ram_test_component", func(cfg ComponentConfig) error {
		gotName = cfg.Name
		gotSize = cfg.Raw["size_kib"]
		return nil
	})

	dir := t.TempDir()
	path := filepath.Join(dir, "machine.toml")
	contents := `
bios_path = "bios.bin"
debug = true

[component.ram_test_component]
size_kib = 2048
`
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	doc, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if doc.BIOSPath != "bios.bin" || !doc.Debug {
		t.Fatalf("doc = %+v", doc)
	}
	if gotName != "ram_test_component" {
		t.Fatalf("gotName = %q", gotName)
	}
	if gotSize != int64(2048) {
		t.Fatalf("gotSize = %v (%T)", gotSize, gotSize)
	}
}

func TestSaveRestoreRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "snapshot.toml")

	doc := &Document{
		BIOSPath: "scph5501.bin",
		DiscPath: "game.bin",
		Debug:    true,
	}
	if err := Save(path, doc); err != nil {
		t.Fatalf("save: %v", err)
	}

	restored, err := Restore(path)
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	if restored.BIOSPath != doc.BIOSPath || restored.DiscPath != doc.DiscPath || restored.Debug != doc.Debug {
		t.Fatalf("restored = %+v, want %+v", restored, doc)
	}
}
