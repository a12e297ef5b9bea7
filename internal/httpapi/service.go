package httpapi

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"batchgen/internal/engine"
	"batchgen/internal/pipeline"
	"batchgen/internal/prompt"
	"batchgen/pkg/types"
)

// Backend is the loaded model the service generates with. *engine.Handle
// satisfies it.
type Backend interface {
	pipeline.Generator
	Ready() bool
	Runtime() string
	ModelPath() string
}

// BatchOptions configures a BatchService.
type BatchOptions struct {
	Formatter prompt.Formatter
	Backend   Backend
	// Sampling holds the defaults a request may override field by field.
	Sampling      engine.SamplingConfig
	Observer      pipeline.Observer
	MaxQueueDepth int
	MaxWait       time.Duration
}

// BatchService runs one pipeline invocation per request against a shared
// backend.
type BatchService struct {
	opts    BatchOptions
	adm     *admission
	started time.Time

	batches atomic.Uint64
	tokens  atomic.Uint64

	mu      sync.Mutex
	lastErr string
}

// NewBatchService returns a service bound to opts.Backend.
func NewBatchService(opts BatchOptions) *BatchService {
	return &BatchService{
		opts:    opts,
		adm:     newAdmission(opts.MaxQueueDepth, opts.MaxWait),
		started: time.Now(),
	}
}

// Generate formats req.Questions, runs them as one batch and reports the
// throughput of that batch.
func (s *BatchService) Generate(ctx context.Context, req types.GenerateRequest) (types.GenerateResponse, error) {
	cfg := mergeSampling(s.opts.Sampling, req)
	if err := cfg.Validate(); err != nil {
		return types.GenerateResponse{}, invalidRequestError{cause: err}
	}

	release, err := s.adm.begin(ctx)
	defer release()
	if err != nil {
		return types.GenerateResponse{}, err
	}

	runner := pipeline.Runner{
		Formatter: s.opts.Formatter,
		Generator: s.opts.Backend,
		Sampling:  cfg,
		Observer:  s.opts.Observer,
	}
	res, err := runner.Run(ctx, req.Questions)
	if err != nil {
		s.mu.Lock()
		s.lastErr = err.Error()
		s.mu.Unlock()
		return types.GenerateResponse{}, err
	}
	s.batches.Add(1)
	s.tokens.Add(uint64(res.Report.Tokens))

	out := types.GenerateResponse{
		Completions: make([]types.Completion, len(res.Completions)),
		Report: types.Report{
			Tokens:          res.Report.Tokens,
			ElapsedSeconds:  res.Report.Seconds(),
			TokensPerSecond: res.Report.RatePtr(),
		},
	}
	for i, c := range res.Completions {
		out.Completions[i] = types.Completion{
			Index:        c.Index,
			Question:     req.Questions[c.Index],
			Prompt:       c.Prompt,
			Text:         c.Text,
			Tokens:       c.Tokens,
			FinishReason: c.FinishReason,
		}
	}
	return out, nil
}

// Ready reports whether the backend still holds a loaded model.
func (s *BatchService) Ready() bool {
	return s.opts.Backend != nil && s.opts.Backend.Ready()
}

// Status summarizes the service for GET /status.
func (s *BatchService) Status() types.StatusResponse {
	st := types.StatusResponse{
		Template:      s.opts.Formatter.Template.Name,
		State:         "closed",
		QueueLen:      s.adm.depth(),
		MaxQueueDepth: cap(s.adm.queueCh),
		BatchesTotal:  s.batches.Load(),
		TokensTotal:   s.tokens.Load(),
		UptimeSeconds: int64(time.Since(s.started).Seconds()),
	}
	if s.opts.Backend != nil {
		st.Runtime = s.opts.Backend.Runtime()
		st.ModelPath = s.opts.Backend.ModelPath()
	}
	if s.Ready() {
		st.State = "ready"
	}
	s.mu.Lock()
	st.LastError = s.lastErr
	s.mu.Unlock()
	return st
}

// mergeSampling overlays the request's set fields on the defaults.
func mergeSampling(base engine.SamplingConfig, req types.GenerateRequest) engine.SamplingConfig {
	cfg := base
	if req.MaxTokens != nil {
		cfg.MaxTokens = *req.MaxTokens
	}
	if req.Temperature != nil {
		cfg.Temperature = req.Temperature
	}
	if req.TopP != nil {
		cfg.TopP = req.TopP
	}
	if req.PresencePenalty != nil {
		cfg.PresencePenalty = req.PresencePenalty
	}
	if req.Seed != nil {
		cfg.Seed = req.Seed
	}
	if req.Stop != nil {
		cfg.Stop = req.Stop
	}
	return cfg
}
