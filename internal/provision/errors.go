package provision

import (
	"errors"
	"fmt"
)

// provisioningFailedError signals that model weights could not be fetched:
// bad credential, network failure or unknown repository.
type provisioningFailedError struct {
	repo  string
	msg   string
	cause error
}

func (e provisioningFailedError) Error() string {
	s := fmt.Sprintf("provisioning %s failed: %s", e.repo, e.msg)
	if e.cause != nil {
		s += ": " + e.cause.Error()
	}
	return s
}

func (e provisioningFailedError) Unwrap() error { return e.cause }

// ErrProvisioningFailed constructs a provisioningFailedError.
func ErrProvisioningFailed(repo, msg string, cause error) error {
	return provisioningFailedError{repo: repo, msg: msg, cause: cause}
}

// IsProvisioningFailed reports whether err indicates a failed weight fetch.
func IsProvisioningFailed(err error) bool {
	var e provisioningFailedError
	return errors.As(err, &e)
}

// statusError carries a non-2xx hub response.
type statusError struct {
	url    string
	status int
}

func (e statusError) Error() string { return fmt.Sprintf("GET %s: HTTP %d", e.url, e.status) }

// permanent reports whether retrying cannot change the outcome.
func (e statusError) permanent() bool {
	switch e.status {
	case 400, 401, 403, 404, 410:
		return true
	}
	return false
}
