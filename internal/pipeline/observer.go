package pipeline

import (
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"batchgen/internal/engine"
	"batchgen/internal/throughput"
)

// Observer receives the results of an invocation for display or export.
// It sees data only after the batch returned and cannot alter it.
type Observer interface {
	OnCompletion(c engine.Completion)
	OnReport(r throughput.Report)
}

// NopObserver discards everything.
type NopObserver struct{}

func (NopObserver) OnCompletion(engine.Completion) {}
func (NopObserver) OnReport(throughput.Report)     {}

// MultiObserver fans out to each observer in order.
type MultiObserver []Observer

func (m MultiObserver) OnCompletion(c engine.Completion) {
	for _, o := range m {
		o.OnCompletion(c)
	}
}

func (m MultiObserver) OnReport(r throughput.Report) {
	for _, o := range m {
		o.OnReport(r)
	}
}

// ConsoleObserver prints each prompt followed by its completion, then the
// batch totals, in a human-readable layout.
type ConsoleObserver struct {
	W io.Writer
}

func (o ConsoleObserver) OnCompletion(c engine.Completion) {
	fmt.Fprintf(o.W, "%s%s\n\n\n", c.Prompt, c.Text)
}

func (o ConsoleObserver) OnReport(r throughput.Report) {
	fmt.Fprintf(o.W, "Generated %d tokens\n", r.Tokens)
	fmt.Fprintf(o.W, "[DONE] %s\n", r)
}

// LogObserver emits one structured line per completion (debug) and one for
// the report (info).
type LogObserver struct {
	Log zerolog.Logger
}

func (o LogObserver) OnCompletion(c engine.Completion) {
	o.Log.Debug().
		Int("index", c.Index).
		Int("tokens", c.Tokens).
		Str("finish_reason", c.FinishReason).
		Str("prompt", c.Prompt).
		Str("text", c.Text).
		Msg("completion")
}

func (o LogObserver) OnReport(r throughput.Report) {
	ev := o.Log.Info().
		Int("tokens", r.Tokens).
		Dur("elapsed", r.Elapsed).
		Bool("rate_defined", r.RateDefined)
	if r.RateDefined {
		ev = ev.Float64("tokens_per_second", r.Rate)
	}
	ev.Msg("batch done")
}
