package registry

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func touch(t *testing.T, dir, name string, size int) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), make([]byte, size), 0o644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
}

func TestLocate_PrefersGGUF(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "b.GGUF", 3) // case-insensitive
	touch(t, dir, "a.gguf", 2)
	touch(t, dir, "model.safetensors", 10)
	touch(t, dir, "config.json", 1)
	w, err := Locate(dir)
	if err != nil {
		t.Fatalf("locate: %v", err)
	}
	if w.Format != FormatGGUF || len(w.Files) != 2 {
		t.Fatalf("unexpected: %+v", w)
	}
	if w.Files[0].Name != "a.gguf" || w.ModelPath() != filepath.Join(dir, "a.gguf") {
		t.Fatalf("want a.gguf first, got %+v", w.Files)
	}
	if w.Size() != 5 {
		t.Fatalf("size = %d", w.Size())
	}
}

func TestLocate_SafetensorsUsesDir(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "model-00002-of-00002.safetensors", 1)
	touch(t, dir, "model-00001-of-00002.safetensors", 1)
	touch(t, dir, "pytorch_model.bin", 1)
	w, err := Locate(dir)
	if err != nil {
		t.Fatalf("locate: %v", err)
	}
	if w.Format != FormatSafetensors || w.ModelPath() != dir || len(w.Files) != 2 {
		t.Fatalf("unexpected: %+v", w)
	}
}

func TestLocate_Empty(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "README.md", 1)
	if _, err := Locate(dir); !errors.Is(err, ErrNoWeights) {
		t.Fatalf("expected ErrNoWeights, got %v", err)
	}
	if _, err := Locate(filepath.Join(dir, "missing")); err == nil {
		t.Fatalf("expected read dir error")
	}
}

func TestLocate_ExpandHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	sub := filepath.Join(home, "models")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	touch(t, sub, "x.gguf", 1)
	w, err := Locate("~/models")
	if err != nil {
		t.Fatalf("locate: %v", err)
	}
	if len(w.Files) != 1 || w.Files[0].Name != "x.gguf" {
		t.Fatalf("unexpected: %+v", w)
	}
}
