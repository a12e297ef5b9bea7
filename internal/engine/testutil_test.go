package engine

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

// fakeRuntime is a lightweight in-memory runtime used for tests.
type fakeRuntime struct {
	loadErr    error
	genErr     error
	reverse    bool     // return outputs in reverse order
	override   []Output // returned verbatim when non-nil
	calls      int
	receivedMP string
	lastCfg    SamplingConfig
	closed     bool
}

func (f *fakeRuntime) Name() string { return "fake" }

func (f *fakeRuntime) Load(ctx context.Context, modelPath string, opts LoadOptions) (Session, error) {
	f.receivedMP = modelPath
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	return &fakeSession{f: f}, nil
}

type fakeSession struct{ f *fakeRuntime }

// Generate answers each prompt with its upper-cased text and counts one token
// per whitespace-separated word.
func (s *fakeSession) Generate(ctx context.Context, prompts []string, cfg SamplingConfig) ([]Output, error) {
	s.f.calls++
	s.f.lastCfg = cfg
	if s.f.genErr != nil {
		return nil, s.f.genErr
	}
	if s.f.override != nil {
		return s.f.override, nil
	}
	outs := make([]Output, 0, len(prompts))
	for i, p := range prompts {
		text := strings.ToUpper(p)
		outs = append(outs, Output{Index: i, Text: text, Tokens: len(strings.Fields(text)), FinishReason: "stop"})
	}
	if s.f.reverse {
		for i, j := 0, len(outs)-1; i < j; i, j = i+1, j-1 {
			outs[i], outs[j] = outs[j], outs[i]
		}
	}
	return outs, nil
}

func (s *fakeSession) Close() error {
	s.f.closed = true
	return nil
}

var errBoom = errors.New("boom")

// testCtx returns a context with a short timeout, canceled on test cleanup.
func testCtx(t *testing.T) context.Context {
	t.Helper()
	c, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)
	return c
}

func ptr[T any](v T) *T { return &v }
