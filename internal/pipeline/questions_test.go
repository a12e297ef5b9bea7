package pipeline

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestReadQuestions(t *testing.T) {
	in := "# coding\nHow do I allocate memory in C?\n\n  What is the product of 9 and 8?  \n#skip\n"
	qs, err := ReadQuestions(strings.NewReader(in))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(qs) != 2 || qs[0] != "How do I allocate memory in C?" || qs[1] != "What is the product of 9 and 8?" {
		t.Fatalf("unexpected: %#v", qs)
	}
}

func TestLoadQuestions(t *testing.T) {
	qs, err := LoadQuestions("")
	if err != nil || len(qs) != len(DefaultQuestions) {
		t.Fatalf("defaults: %v %v", qs, err)
	}
	qs[0] = "mutated"
	if DefaultQuestions[0] == "mutated" {
		t.Fatalf("LoadQuestions must copy the defaults")
	}

	p := filepath.Join(t.TempDir(), "q.txt")
	if err := os.WriteFile(p, []byte("a\nb\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	qs, err = LoadQuestions(p)
	if err != nil || len(qs) != 2 {
		t.Fatalf("file: %v %v", qs, err)
	}
	if _, err := LoadQuestions(filepath.Join(t.TempDir(), "missing.txt")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
