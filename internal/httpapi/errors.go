package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"batchgen/internal/engine"
	"batchgen/pkg/types"
)

// HTTPError allows services to provide an HTTP status code for an error.
type HTTPError interface {
	error
	StatusCode() int
}

// tooBusyError is returned when the admission queue cannot take a batch
// within the configured wait.
type tooBusyError struct {
	reason string
}

func (e tooBusyError) Error() string { return fmt.Sprintf("server too busy: %s", e.reason) }

// IsTooBusy reports whether err is a backpressure rejection.
func IsTooBusy(err error) bool {
	var e tooBusyError
	return errors.As(err, &e)
}

// invalidRequestError rejects a well-formed body with unusable values.
type invalidRequestError struct{ cause error }

func (e invalidRequestError) Error() string   { return e.cause.Error() }
func (e invalidRequestError) Unwrap() error   { return e.cause }
func (e invalidRequestError) StatusCode() int { return http.StatusUnprocessableEntity }

// statusFor maps service errors to HTTP status codes.
func statusFor(err error) int {
	var he HTTPError
	switch {
	case IsTooBusy(err):
		return http.StatusTooManyRequests
	case errors.As(err, &he):
		return he.StatusCode()
	case engine.IsEngineUnavailable(err):
		return http.StatusServiceUnavailable
	case errors.Is(err, engine.ErrInvalidSampling):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// writeJSONError writes a consistent JSON error payload.
func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(types.ErrorResponse{Error: msg, Code: status})
}
