package engine

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// OpenAIOptions configures the runtime that talks to an OpenAI-compatible
// completions server such as vLLM's.
type OpenAIOptions struct {
	BaseURL string
	APIKey  string
	// Timeout bounds a whole batch request. Zero means no client-side limit.
	Timeout    time.Duration
	HTTPClient *http.Client
}

type openAIRuntime struct {
	opts OpenAIOptions
}

// NewOpenAIRuntime returns a runtime backed by an OpenAI-compatible server.
// The server owns the weights; Load only verifies that it serves the model.
func NewOpenAIRuntime(opts OpenAIOptions) Runtime {
	return &openAIRuntime{opts: opts}
}

func (r *openAIRuntime) Name() string { return "openai" }

type openAISession struct {
	client openai.Client
	model  string
}

func (r *openAIRuntime) Load(ctx context.Context, modelPath string, opts LoadOptions) (Session, error) {
	if strings.TrimSpace(r.opts.BaseURL) == "" {
		return nil, errors.New("openai runtime requires a base URL")
	}
	reqOpts := []option.RequestOption{
		option.WithBaseURL(r.opts.BaseURL),
		// batches are all-or-nothing; the SDK must not retry behind our back
		option.WithMaxRetries(0),
	}
	if r.opts.APIKey != "" {
		reqOpts = append(reqOpts, option.WithAPIKey(r.opts.APIKey))
	} else {
		reqOpts = append(reqOpts, option.WithAPIKey("EMPTY"))
	}
	if r.opts.HTTPClient != nil {
		reqOpts = append(reqOpts, option.WithHTTPClient(r.opts.HTTPClient))
	}
	if r.opts.Timeout > 0 {
		reqOpts = append(reqOpts, option.WithRequestTimeout(r.opts.Timeout))
	}
	model := opts.Model
	if model == "" {
		model = modelPath
	}
	client := openai.NewClient(reqOpts...)

	// The server must already serve the model; fail the load otherwise.
	page, err := client.Models.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list models: %w", err)
	}
	found := false
	for _, m := range page.Data {
		if m.ID == model {
			found = true
			break
		}
	}
	if !found {
		return nil, fmt.Errorf("model %q not served at %s", model, r.opts.BaseURL)
	}
	return &openAISession{client: client, model: model}, nil
}

// Generate sends every prompt in one completions request. logprobs=0 makes
// the server return the generated tokens of each choice, which gives an exact
// per-prompt token count.
func (s *openAISession) Generate(ctx context.Context, prompts []string, cfg SamplingConfig) ([]Output, error) {
	params := openai.CompletionNewParams{
		Model:     openai.CompletionNewParamsModel(s.model),
		Prompt:    openai.CompletionNewParamsPromptUnion{OfArrayOfStrings: prompts},
		MaxTokens: openai.Int(int64(cfg.MaxTokens)),
		Logprobs:  openai.Int(0),
	}
	if cfg.Temperature != nil {
		params.Temperature = openai.Float(*cfg.Temperature)
	}
	if cfg.TopP != nil {
		params.TopP = openai.Float(*cfg.TopP)
	}
	if cfg.PresencePenalty != nil {
		params.PresencePenalty = openai.Float(*cfg.PresencePenalty)
	}
	if cfg.Seed != nil {
		params.Seed = openai.Int(*cfg.Seed)
	}
	if len(cfg.Stop) > 0 {
		params.Stop = openai.CompletionNewParamsStopUnion{OfStringArray: cfg.Stop}
	}
	resp, err := s.client.Completions.New(ctx, params)
	if err != nil {
		return nil, err
	}
	return choiceOutputs(resp)
}

// choiceOutputs converts completion choices to outputs. Per-choice token
// counts come from the returned logprobs tokens; a single-choice response
// without them falls back to usage. Counts that cannot be established, or
// that disagree with the reported usage, fail the batch.
func choiceOutputs(resp *openai.Completion) ([]Output, error) {
	usage := int(resp.Usage.CompletionTokens)
	hasUsage := resp.JSON.Usage.Valid()
	outs := make([]Output, 0, len(resp.Choices))
	sum := 0
	for _, ch := range resp.Choices {
		n := len(ch.Logprobs.Tokens)
		if n == 0 && ch.Text != "" {
			if len(resp.Choices) != 1 || !hasUsage {
				return nil, fmt.Errorf("choice %d: server returned no logprobs tokens; per-prompt token count unknown", ch.Index)
			}
			n = usage
		}
		sum += n
		outs = append(outs, Output{
			Index:        int(ch.Index),
			Text:         ch.Text,
			Tokens:       n,
			FinishReason: string(ch.FinishReason),
		})
	}
	if hasUsage && sum != usage {
		return nil, fmt.Errorf("token count mismatch: choices carry %d tokens, usage reports %d", sum, usage)
	}
	return outs, nil
}

func (s *openAISession) Close() error { return nil }
