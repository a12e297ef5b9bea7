package engine

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
)

// Handle owns a loaded model for the lifetime of the process. It is acquired
// with Open and released with Close; Generate calls are serialized.
type Handle struct {
	mu        sync.Mutex
	runtime   string
	modelPath string
	sess      Session
	loadedAt  time.Time
}

// Open loads modelPath through rt and returns a handle to it.
func Open(ctx context.Context, rt Runtime, modelPath string, opts LoadOptions) (*Handle, error) {
	if rt == nil {
		return nil, ErrEngineUnavailable("no runtime configured", nil)
	}
	if strings.TrimSpace(modelPath) == "" {
		return nil, ErrEngineUnavailable("model path is empty", nil)
	}
	sess, err := rt.Load(ctx, modelPath, opts)
	if err != nil {
		if IsEngineUnavailable(err) {
			return nil, err
		}
		return nil, ErrEngineUnavailable(fmt.Sprintf("load %s via %s", modelPath, rt.Name()), err)
	}
	if sess == nil {
		return nil, ErrEngineUnavailable(fmt.Sprintf("runtime %s returned no session", rt.Name()), nil)
	}
	return &Handle{runtime: rt.Name(), modelPath: modelPath, sess: sess, loadedAt: time.Now()}, nil
}

// Runtime returns the name of the runtime backing the handle.
func (h *Handle) Runtime() string { return h.runtime }

// ModelPath returns the path the handle was opened with.
func (h *Handle) ModelPath() string { return h.modelPath }

// Ready reports whether the handle still holds a loaded model.
func (h *Handle) Ready() bool {
	if h == nil {
		return false
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.sess != nil
}

// Generate submits prompts as a single batch and returns one Completion per
// prompt, index-aligned with the input. The batch either succeeds for every
// prompt or fails as a whole.
func (h *Handle) Generate(ctx context.Context, prompts []string, cfg SamplingConfig) ([]Completion, error) {
	if h == nil {
		return nil, ErrEngineUnavailable("nil handle", nil)
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.sess == nil {
		return nil, ErrEngineUnavailable("model handle is closed", nil)
	}
	if err := cfg.Validate(); err != nil {
		return nil, ErrGenerationFailed("rejected sampling config", err)
	}
	if len(prompts) == 0 {
		return []Completion{}, nil
	}

	start := time.Now()
	outs, err := h.sess.Generate(ctx, prompts, cfg)
	if err != nil {
		observeBatch(h.runtime, outcomeError, time.Since(start), 0)
		if IsGenerationFailed(err) || IsEngineUnavailable(err) {
			return nil, err
		}
		return nil, ErrGenerationFailed(fmt.Sprintf("batch of %d prompts", len(prompts)), err)
	}
	comps, err := align(prompts, outs)
	if err != nil {
		observeBatch(h.runtime, outcomeError, time.Since(start), 0)
		return nil, err
	}
	total := 0
	for _, c := range comps {
		total += c.Tokens
	}
	observeBatch(h.runtime, outcomeOK, time.Since(start), total)
	return comps, nil
}

// Close releases the model. It is safe to call more than once.
func (h *Handle) Close() error {
	if h == nil {
		return nil
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.sess == nil {
		return nil
	}
	err := h.sess.Close()
	h.sess = nil
	return err
}

// align places runtime outputs at the index of the prompt they belong to.
func align(prompts []string, outs []Output) ([]Completion, error) {
	if len(outs) != len(prompts) {
		return nil, ErrGenerationFailed(fmt.Sprintf("runtime returned %d outputs for %d prompts", len(outs), len(prompts)), nil)
	}
	comps := make([]Completion, len(prompts))
	seen := make([]bool, len(prompts))
	for _, o := range outs {
		if o.Index < 0 || o.Index >= len(prompts) {
			return nil, ErrGenerationFailed(fmt.Sprintf("output index %d out of range", o.Index), nil)
		}
		if seen[o.Index] {
			return nil, ErrGenerationFailed(fmt.Sprintf("duplicate output for prompt %d", o.Index), nil)
		}
		if o.Tokens < 0 {
			return nil, ErrGenerationFailed(fmt.Sprintf("negative token count for prompt %d", o.Index), nil)
		}
		seen[o.Index] = true
		comps[o.Index] = Completion{
			Index:        o.Index,
			Prompt:       prompts[o.Index],
			Text:         o.Text,
			Tokens:       o.Tokens,
			FinishReason: o.FinishReason,
		}
	}
	return comps, nil
}
