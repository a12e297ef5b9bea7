// Package throughput reduces a completed batch into token and rate totals.
package throughput

import (
	"fmt"
	"math"
	"time"

	"batchgen/internal/engine"
)

// Report summarizes one batch. It is derived per call and never persisted.
type Report struct {
	Tokens  int           `json:"tokens"`
	Elapsed time.Duration `json:"elapsed_ns"`
	// Rate is tokens per second. Meaningful only when RateDefined is true;
	// otherwise it is +Inf for a non-empty batch and 0 for an empty one.
	Rate        float64 `json:"-"`
	RateDefined bool    `json:"rate_defined"`
}

// Measure sums generated tokens and divides by the wall-clock time between
// start and end. An empty batch, or a zero or negative interval (clock
// resolution), leaves the rate undefined instead of dividing by it.
func Measure(comps []engine.Completion, start, end time.Time) Report {
	total := 0
	for _, c := range comps {
		total += c.Tokens
	}
	r := Report{Tokens: total, Elapsed: end.Sub(start)}
	if len(comps) == 0 || r.Elapsed <= 0 {
		if total > 0 {
			r.Rate = math.Inf(1)
		}
		return r
	}
	r.Rate = float64(total) / r.Elapsed.Seconds()
	r.RateDefined = true
	return r
}

// Seconds returns the elapsed time in seconds.
func (r Report) Seconds() float64 { return r.Elapsed.Seconds() }

// RatePtr returns the rate, or nil when it is undefined. JSON encoders cannot
// represent +Inf, so wire types use this.
func (r Report) RatePtr() *float64 {
	if !r.RateDefined {
		return nil
	}
	v := r.Rate
	return &v
}

func (r Report) String() string {
	if !r.RateDefined {
		return fmt.Sprintf("%d tokens generated in %.2fs (rate undefined)", r.Tokens, r.Seconds())
	}
	return fmt.Sprintf("%d tokens generated in %.2fs (%.0f tok/s)", r.Tokens, r.Seconds(), r.Rate)
}
