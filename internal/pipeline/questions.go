package pipeline

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// DefaultQuestions is the built-in batch submitted when no question file is given.
var DefaultQuestions = []string{
	"Describe the city of the future, considering advances in technology, environmental changes, and societal shifts.",
}

// ReadQuestions reads one question per line. Blank lines and lines starting
// with '#' are skipped.
func ReadQuestions(r io.Reader) ([]string, error) {
	var out []string
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read questions: %w", err)
	}
	return out, nil
}

// LoadQuestions returns DefaultQuestions when path is empty, otherwise the
// questions read from the file ("-" reads stdin).
func LoadQuestions(path string) ([]string, error) {
	if path == "" {
		out := make([]string, len(DefaultQuestions))
		copy(out, DefaultQuestions)
		return out, nil
	}
	if path == "-" {
		return ReadQuestions(os.Stdin)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open questions: %w", err)
	}
	defer f.Close()
	return ReadQuestions(f)
}
