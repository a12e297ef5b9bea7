// Package engine provides the generation client: a long-lived model Handle
// that submits batches of prompts to an inference runtime and returns
// index-aligned completions. It is structured into small files by concern:
//
//   - runtime.go: Runtime/Session interfaces and the data types they exchange.
//   - handle.go: Handle lifecycle (Open/Close) and the batched Generate call.
//   - sampling.go: SamplingConfig, its defaults and validation.
//   - errors.go: EngineUnavailable and GenerationFailed error types.
//   - metrics.go: Prometheus collectors for batches and generated tokens.
//   - runtime_openai.go: OpenAI-compatible completions server (vLLM).
//
// Build tags and runtimes:
//
//   - In-process llama (standard):
//     Uses the go-llama.cpp bindings. Enabled with `-tags=llama`.
//     Files: runtime_llama.go, llama_cgo.go (linker rpath hints).
//     A no-CGO stub exists when the tag is not set: runtime_llama_stub.go.
//
// External packages should use Open, Handle.Generate and Handle.Close only.
package engine

import "fmt"

// LlamaBuilt reports whether the binary was compiled with llama.cpp support.
func LlamaBuilt() bool { return llamaBuilt }

// NewRuntime returns the runtime registered under name.
func NewRuntime(name string, threads int, oa OpenAIOptions) (Runtime, error) {
	switch name {
	case "llama", "":
		return NewLlamaRuntime(threads), nil
	case "openai", "vllm":
		return NewOpenAIRuntime(oa), nil
	default:
		return nil, fmt.Errorf("unknown runtime %q (want llama|openai)", name)
	}
}
