package types

// GenerateRequest is the payload of POST /generate. Every question is
// formatted with the server's prompt template and the whole list is
// submitted as one batch.
type GenerateRequest struct {
	// Questions to answer. Required; an empty list yields an empty batch.
	// example: ["Describe the city of the future."]
	Questions []string `json:"questions" example:"Describe the city of the future."`
	// Maximum number of new tokens per question. Server default when omitted.
	// example: 256
	MaxTokens *int `json:"max_tokens,omitempty" example:"256"`
	// Sampling temperature; 0 is greedy.
	// example: 0.7
	Temperature *float64 `json:"temperature,omitempty" example:"0.7"`
	// Nucleus sampling probability in (0,1].
	// example: 0.9
	TopP *float64 `json:"top_p,omitempty" example:"0.9"`
	// Presence penalty in [-2,2].
	// example: 0.5
	PresencePenalty *float64 `json:"presence_penalty,omitempty" example:"0.5"`
	// Random seed for reproducibility.
	// example: 42
	Seed *int64 `json:"seed,omitempty" example:"42"`
	// Optional stop sequences.
	// example: ["</s>"]
	Stop []string `json:"stop,omitempty"`
}

// GenerateResponse is returned by POST /generate.
type GenerateResponse struct {
	// One entry per question, in request order.
	Completions []Completion `json:"completions"`
	// Throughput of the batch.
	Report Report `json:"report"`
}

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	// Error message.
	// example: invalid JSON body
	Error string `json:"error" example:"invalid JSON body"`
	// HTTP status code.
	// example: 400
	Code int `json:"code" example:"400"`
}

// StatusResponse is returned by GET /status.
type StatusResponse struct {
	// Runtime backing the loaded model.
	// example: llama
	Runtime string `json:"runtime" example:"llama"`
	// Path of the loaded weights.
	// example: /model/mistral-7b-instruct.Q4_K_M.gguf
	ModelPath string `json:"model_path" example:"/model/mistral-7b-instruct.Q4_K_M.gguf"`
	// Prompt template applied to questions.
	// example: mistral-instruct
	Template string `json:"template" example:"mistral-instruct"`
	// Overall state: ready or closed.
	// example: ready
	State string `json:"state" example:"ready"`
	// Batches waiting for or holding the generation slot.
	// example: 1
	QueueLen int `json:"queue_len" example:"1"`
	// Maximum queued batches before backpressure triggers.
	// example: 8
	MaxQueueDepth int `json:"max_queue_depth" example:"8"`
	// Batches served since start.
	// example: 12
	BatchesTotal uint64 `json:"batches_total" example:"12"`
	// Tokens generated since start.
	// example: 24000
	TokensTotal uint64 `json:"tokens_total" example:"24000"`
	// Last error observed (if any).
	LastError string `json:"last_error,omitempty"`
	// Uptime of the server in seconds.
	// example: 3600
	UptimeSeconds int64 `json:"uptime_seconds" example:"3600"`
}
