package core

import (
	"errors"
	"fmt"
)

// ErrNotFound is a sentinel error for "not found" cases
var ErrNotFound = errors.New("not found")

// IsNotFoundError checks if an error is a "not found" error
func IsNotFoundError(err error) bool {
	return err != nil && errors.Is(err, ErrNotFound)
}

// ConfigError indicates required configuration was missing. It is raised
// before any network call is attempted.
type ConfigError struct {
	Missing string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("missing required configuration: %s", e.Missing)
}

// UpstreamError carries a non-2xx response from the upstream API, including
// the raw error body. It is never retried by callers.
type UpstreamError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream returned status %d: %s", e.StatusCode, e.Body)
}

// NetworkError wraps a transport-level failure (DNS, timeout, connection
// reset), kept distinct from upstream HTTP errors.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error during %s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}
