// Package pipeline drives one batch of questions through formatting,
// generation and throughput accounting.
package pipeline

import (
	"context"
	"time"

	"batchgen/internal/engine"
	"batchgen/internal/prompt"
	"batchgen/internal/throughput"
)

// Generator is the generation client the runner submits batches to.
// *engine.Handle satisfies it.
type Generator interface {
	Generate(ctx context.Context, prompts []string, cfg engine.SamplingConfig) ([]engine.Completion, error)
}

// Result is everything one invocation produced.
type Result struct {
	Completions []engine.Completion
	Report      throughput.Report
}

// Runner wires the formatter, generator and accountant together. Observer is
// optional; Clock defaults to time.Now.
type Runner struct {
	Formatter prompt.Formatter
	Generator Generator
	Sampling  engine.SamplingConfig
	Observer  Observer
	Clock     func() time.Time
}

// Run formats every question, submits them as a single batch and measures
// throughput around that call. A generation failure is returned unchanged and
// nothing is reported for the invocation.
func (r *Runner) Run(ctx context.Context, questions []string) (Result, error) {
	now := r.Clock
	if now == nil {
		now = time.Now
	}
	obs := r.Observer
	if obs == nil {
		obs = NopObserver{}
	}

	prompts := r.Formatter.FormatAll(questions)
	start := now()
	comps, err := r.Generator.Generate(ctx, prompts, r.Sampling)
	if err != nil {
		return Result{}, err
	}
	end := now()
	if comps == nil {
		comps = []engine.Completion{}
	}

	for _, c := range comps {
		obs.OnCompletion(c)
	}
	rep := throughput.Measure(comps, start, end)
	obs.OnReport(rep)
	return Result{Completions: comps, Report: rep}, nil
}
