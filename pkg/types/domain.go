package types

// Completion is one generated answer.
type Completion struct {
	// Position of the question in the request.
	// example: 0
	Index int `json:"index" example:"0"`
	// The question as submitted.
	// example: Describe the city of the future.
	Question string `json:"question" example:"Describe the city of the future."`
	// Formatted prompt sent to the model.
	Prompt string `json:"prompt"`
	// Generated text.
	Text string `json:"text"`
	// Tokens generated for this question.
	// example: 512
	Tokens int `json:"tokens" example:"512"`
	// Why generation stopped (stop, length), when the runtime reports it.
	// example: stop
	FinishReason string `json:"finish_reason,omitempty" example:"stop"`
}

// Report summarizes the throughput of one batch.
type Report struct {
	// Total generated tokens.
	// example: 2048
	Tokens int `json:"tokens" example:"2048"`
	// Wall-clock seconds spent in generation.
	// example: 12.5
	ElapsedSeconds float64 `json:"elapsed_seconds" example:"12.5"`
	// Tokens per second; null when the rate is undefined (empty batch or
	// zero elapsed time).
	// example: 163.8
	TokensPerSecond *float64 `json:"tokens_per_second" example:"163.8"`
}
