package engine

import (
	"fmt"
	"strings"
)

// DefaultMaxTokens is the generation length bound applied when none is configured.
const DefaultMaxTokens = 2000

// SamplingConfig holds the generation knobs passed to a runtime for one batch.
//
// Only MaxTokens carries a value by default. The optional fields are nil
// unless the deployer sets them, in which case the runtime's own default is
// used; nothing here guesses production values for them.
type SamplingConfig struct {
	// MaxTokens bounds the number of generated tokens per prompt. Must be > 0.
	MaxTokens int `json:"max_tokens" yaml:"max_tokens" toml:"max_tokens" default:"2000"`
	// Temperature scales the logits before sampling; 0 is greedy.
	Temperature *float64 `json:"temperature,omitempty" yaml:"temperature,omitempty" toml:"temperature,omitempty"`
	// TopP restricts sampling to the smallest token set with cumulative probability >= TopP.
	TopP *float64 `json:"top_p,omitempty" yaml:"top_p,omitempty" toml:"top_p,omitempty"`
	// PresencePenalty penalizes tokens that already appeared in the output.
	PresencePenalty *float64 `json:"presence_penalty,omitempty" yaml:"presence_penalty,omitempty" toml:"presence_penalty,omitempty"`
	// Seed fixes the sampler RNG for reproducible output.
	Seed *int64 `json:"seed,omitempty" yaml:"seed,omitempty" toml:"seed,omitempty"`
	// Stop ends generation for a prompt when any sequence is produced.
	Stop []string `json:"stop,omitempty" yaml:"stop,omitempty" toml:"stop,omitempty"`
}

// DefaultSampling returns the configuration used when the caller supplies none.
func DefaultSampling() SamplingConfig {
	return SamplingConfig{MaxTokens: DefaultMaxTokens}
}

// Validate checks ranges of the set fields.
func (c SamplingConfig) Validate() error {
	if c.MaxTokens <= 0 {
		return fmt.Errorf("%w: max_tokens must be positive, got %d", ErrInvalidSampling, c.MaxTokens)
	}
	if c.Temperature != nil && *c.Temperature < 0 {
		return fmt.Errorf("%w: temperature must be >= 0, got %g", ErrInvalidSampling, *c.Temperature)
	}
	if c.TopP != nil && (*c.TopP <= 0 || *c.TopP > 1) {
		return fmt.Errorf("%w: top_p must be in (0,1], got %g", ErrInvalidSampling, *c.TopP)
	}
	if c.PresencePenalty != nil && (*c.PresencePenalty < -2 || *c.PresencePenalty > 2) {
		return fmt.Errorf("%w: presence_penalty must be in [-2,2], got %g", ErrInvalidSampling, *c.PresencePenalty)
	}
	for i, s := range c.Stop {
		if s == "" {
			return fmt.Errorf("%w: stop[%d] is empty", ErrInvalidSampling, i)
		}
	}
	return nil
}

// String renders only the fields that are set.
func (c SamplingConfig) String() string {
	parts := []string{fmt.Sprintf("max_tokens=%d", c.MaxTokens)}
	if c.Temperature != nil {
		parts = append(parts, fmt.Sprintf("temperature=%g", *c.Temperature))
	}
	if c.TopP != nil {
		parts = append(parts, fmt.Sprintf("top_p=%g", *c.TopP))
	}
	if c.PresencePenalty != nil {
		parts = append(parts, fmt.Sprintf("presence_penalty=%g", *c.PresencePenalty))
	}
	if c.Seed != nil {
		parts = append(parts, fmt.Sprintf("seed=%d", *c.Seed))
	}
	if len(c.Stop) > 0 {
		parts = append(parts, fmt.Sprintf("stop=%q", c.Stop))
	}
	return strings.Join(parts, " ")
}
