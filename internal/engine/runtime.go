package engine

import "context"

// Runtime abstracts the inference engine that owns batching, GPU memory and
// decoding. Concrete implementations (llama.cpp, an OpenAI-compatible server)
// satisfy this interface.
type Runtime interface {
	// Name identifies the runtime in logs and metrics.
	Name() string
	// Load acquires the model at modelPath and returns a session bound to it.
	Load(ctx context.Context, modelPath string, opts LoadOptions) (Session, error)
}

// Session is a loaded model. It lives for the process lifetime and is
// released with Close.
type Session interface {
	// Generate runs all prompts as one batch. Implementations return one
	// Output per prompt; Output.Index identifies the prompt it belongs to and
	// outputs may come back in any order.
	Generate(ctx context.Context, prompts []string, cfg SamplingConfig) ([]Output, error)
	// Close releases any resources associated with the session.
	Close() error
}

// LoadOptions captures runtime-level settings applied when acquiring a model.
type LoadOptions struct {
	// Model is the name the runtime knows the weights by (served model name
	// for OpenAI-compatible servers). Defaults to the model path.
	Model string
	// Quantization is informational, e.g. "awq" or "q4_k_m": both runtimes
	// infer the quantization from the weights themselves. It is logged at
	// load time only.
	Quantization string
	// ContextSize bounds prompt+completion tokens (llama.cpp only).
	ContextSize int
	// Threads used for CPU work (llama.cpp only).
	Threads int
	// GPULayers offloaded to the GPU (llama.cpp only).
	GPULayers int
}

// Output is the raw per-prompt result produced by a runtime.
type Output struct {
	Index        int
	Text         string
	Tokens       int
	FinishReason string
}

// Completion is a generated answer paired with the prompt it came from.
type Completion struct {
	Index        int    `json:"index"`
	Prompt       string `json:"prompt"`
	Text         string `json:"text"`
	Tokens       int    `json:"tokens"`
	FinishReason string `json:"finish_reason,omitempty"`
}
