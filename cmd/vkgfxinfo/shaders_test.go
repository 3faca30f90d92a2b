package main

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadSpirvDecodesLittleEndianWords(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.spv")

	want := []uint32{0x07230203, 0x00010000, 0xdeadbeef}
	raw := make([]byte, len(want)*4)
	for i, w := range want {
		binary.LittleEndian.PutUint32(raw[i*4:], w)
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	got, err := loadSpirv(path)
	if err != nil {
		t.Fatalf("loadSpirv() error = %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("loadSpirv() returned %d words, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("word %d = %#x, want %#x", i, got[i], want[i])
		}
	}
}

func TestLoadSpirvMissingFile(t *testing.T) {
	_, err := loadSpirv(filepath.Join(t.TempDir(), "missing.spv"))
	if err == nil {
		t.Fatalf("loadSpirv() error = nil, want non-nil")
	}
}
