//go:build !llama

package engine

// This file provides a no-CGO stub for the llama runtime. It is compiled when
// the 'llama' build tag is NOT set, keeping default builds and CI CGO-free.

import "context"

var llamaBuilt = false

type llamaRuntime struct {
	threads int
}

// NewLlamaRuntime returns a runtime that refuses to load models because llama
// support was not compiled in.
func NewLlamaRuntime(threads int) Runtime {
	return &llamaRuntime{threads: threads}
}

func (r *llamaRuntime) Name() string { return "llama" }

func (r *llamaRuntime) Load(ctx context.Context, modelPath string, opts LoadOptions) (Session, error) {
	return nil, ErrEngineUnavailable("llama support not built (missing 'llama' build tag)", nil)
}
