package registry

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"batchgen/internal/common/fsutil"
)

// ErrNoWeights is returned when a model directory holds no loadable weights.
var ErrNoWeights = errors.New("no model weights found")

// Format names the on-disk weight layout.
type Format string

const (
	FormatGGUF        Format = "gguf"
	FormatSafetensors Format = "safetensors"
)

// File is one weight file on disk.
type File struct {
	Name string
	Path string
	Size int64
}

// Weights describes the model found in a directory.
type Weights struct {
	Dir    string
	Format Format
	Files  []File
}

// Size returns the total size of the weight files in bytes.
func (w Weights) Size() int64 {
	var n int64
	for _, f := range w.Files {
		n += f.Size
	}
	return n
}

// ModelPath returns what a runtime should load: the single .gguf file for
// llama.cpp, or the directory for safetensors checkpoints served by vLLM.
func (w Weights) ModelPath() string {
	if w.Format == FormatGGUF && len(w.Files) > 0 {
		return w.Files[0].Path
	}
	return w.Dir
}

// Locate scans dir (non-recursively) for weight files. GGUF files take
// precedence over safetensors shards; among several GGUF files the first by
// name is loaded.
func Locate(dir string) (Weights, error) {
	abs, err := fsutil.AbsDir(dir)
	if err != nil {
		return Weights{}, err
	}
	entries, err := os.ReadDir(abs)
	if err != nil {
		return Weights{}, fmt.Errorf("read dir: %w", err)
	}
	var gguf, st []File
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		info, err := e.Info()
		if err != nil {
			continue
		}
		f := File{Name: name, Path: filepath.Join(abs, name), Size: info.Size()}
		switch strings.ToLower(filepath.Ext(name)) {
		case ".gguf":
			gguf = append(gguf, f)
		case ".safetensors":
			st = append(st, f)
		}
	}
	byName := func(fs []File) {
		sort.Slice(fs, func(i, j int) bool { return fs[i].Name < fs[j].Name })
	}
	switch {
	case len(gguf) > 0:
		byName(gguf)
		return Weights{Dir: abs, Format: FormatGGUF, Files: gguf}, nil
	case len(st) > 0:
		byName(st)
		return Weights{Dir: abs, Format: FormatSafetensors, Files: st}, nil
	}
	return Weights{}, fmt.Errorf("%w in %s", ErrNoWeights, abs)
}
