package engine

import "errors"

// engineUnavailableError signals that no usable model handle exists: the
// runtime failed to load the weights, the runtime was not built in, or the
// handle has been closed. The HTTP layer maps it to 503.
type engineUnavailableError struct {
	msg   string
	cause error
}

func (e engineUnavailableError) Error() string {
	if e.cause != nil {
		return "engine unavailable: " + e.msg + ": " + e.cause.Error()
	}
	return "engine unavailable: " + e.msg
}

func (e engineUnavailableError) Unwrap() error { return e.cause }

// ErrEngineUnavailable constructs an engineUnavailableError wrapping cause (may be nil).
func ErrEngineUnavailable(msg string, cause error) error {
	return engineUnavailableError{msg: msg, cause: cause}
}

// IsEngineUnavailable reports whether err indicates a missing or unloaded model handle.
func IsEngineUnavailable(err error) bool {
	var e engineUnavailableError
	return errors.As(err, &e)
}

// generationFailedError signals that a batched generation call failed as a
// whole. No partial results accompany it.
type generationFailedError struct {
	msg   string
	cause error
}

func (e generationFailedError) Error() string {
	if e.cause != nil {
		return "generation failed: " + e.msg + ": " + e.cause.Error()
	}
	return "generation failed: " + e.msg
}

func (e generationFailedError) Unwrap() error { return e.cause }

// ErrGenerationFailed constructs a generationFailedError wrapping cause (may be nil).
func ErrGenerationFailed(msg string, cause error) error {
	return generationFailedError{msg: msg, cause: cause}
}

// IsGenerationFailed reports whether err indicates a failed batch.
func IsGenerationFailed(err error) bool {
	var e generationFailedError
	return errors.As(err, &e)
}

// ErrInvalidSampling is wrapped by GenerationFailed when the sampling
// configuration is rejected before reaching the runtime.
var ErrInvalidSampling = errors.New("invalid sampling config")
