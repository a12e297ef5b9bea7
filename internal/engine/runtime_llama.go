//go:build llama

package engine

import (
	"context"
	"errors"
	"strings"

	llama "github.com/go-skynet/go-llama.cpp"
)

// llamaBuilt indicates this binary was compiled with real llama support.
var llamaBuilt = true

// llamaRuntime holds the defaults used to initialize a model.
type llamaRuntime struct {
	threads int
}

// NewLlamaRuntime returns the in-process llama.cpp runtime. threads is the
// fallback used when LoadOptions.Threads is unset.
func NewLlamaRuntime(threads int) Runtime {
	return &llamaRuntime{threads: threads}
}

func (r *llamaRuntime) Name() string { return "llama" }

// llamaSession owns the loaded model.
type llamaSession struct {
	model   *llama.LLama
	threads int
}

func (r *llamaRuntime) Load(ctx context.Context, modelPath string, opts LoadOptions) (Session, error) {
	if strings.TrimSpace(modelPath) == "" {
		return nil, errors.New("model path is empty")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	mo := []llama.ModelOption{
		llama.SetContext(zn(opts.ContextSize, 4096)),
	}
	if opts.GPULayers > 0 {
		mo = append(mo, llama.SetGPULayers(opts.GPULayers), llama.EnableF16Memory)
	}
	m, err := llama.New(modelPath, mo...)
	if err != nil {
		return nil, err
	}
	return &llamaSession{model: m, threads: zn(opts.Threads, r.threads)}, nil
}

// Generate runs the prompts one after another through the loaded model;
// llama.cpp owns any batching below this call. Tokens are counted through the
// token callback, which fires once per generated token.
func (s *llamaSession) Generate(ctx context.Context, prompts []string, cfg SamplingConfig) ([]Output, error) {
	if s.model == nil {
		return nil, errors.New("llama model not initialized")
	}
	po := mapSamplingToPredictOptions(cfg, s.threads)
	outs := make([]Output, 0, len(prompts))
	for i, p := range prompts {
		n := 0
		s.model.SetTokenCallback(func(tok string) bool {
			select {
			case <-ctx.Done():
				return false
			default:
			}
			n++
			return true
		})
		text, err := s.model.Predict(p, po...)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, err
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		reason := "stop"
		if n >= cfg.MaxTokens {
			reason = "length"
		}
		outs = append(outs, Output{Index: i, Text: text, Tokens: n, FinishReason: reason})
	}
	return outs, nil
}

func (s *llamaSession) Close() error {
	if s.model != nil {
		s.model.Free()
		s.model = nil
	}
	return nil
}

func zn(v, def int) int {
	if v > 0 {
		return v
	}
	return def
}

// mapSamplingToPredictOptions converts the sampling config into go-llama.cpp
// options. Unset optional fields keep the library defaults.
func mapSamplingToPredictOptions(cfg SamplingConfig, threads int) []llama.PredictOption {
	po := []llama.PredictOption{
		llama.SetTokens(max(1, cfg.MaxTokens)),
		llama.SetThreads(max(1, threads)),
	}
	if cfg.Temperature != nil {
		po = append(po, llama.SetTemperature(float32(*cfg.Temperature)))
	}
	if cfg.TopP != nil {
		po = append(po, llama.SetTopP(float32(*cfg.TopP)))
	}
	if cfg.PresencePenalty != nil {
		po = append(po, llama.SetPresencePenalty(float32(*cfg.PresencePenalty)))
	}
	if cfg.Seed != nil {
		po = append(po, llama.SetSeed(int(*cfg.Seed)))
	}
	if len(cfg.Stop) > 0 {
		po = append(po, llama.SetStopWords(cfg.Stop...))
	}
	return po
}
