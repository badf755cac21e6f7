// internal/upstream/errors.go
package upstream

import (
	"errors"
	"fmt"
	"net/http"
)

// Failure taxonomy for backend calls. Handlers flatten these to the short
// error codes in the response envelope; the raw backend body stays in the
// logs and is never forwarded to clients.

// ConfigError means the relay itself is not configured to reach the backend.
// It surfaces on first use rather than at startup so the process stays up
// for health checks.
type ConfigError struct {
	Missing string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("backend not configured: %s missing", e.Missing)
}

// TimeoutError means the per-call deadline elapsed before the backend
// answered. The mutation may or may not have been applied upstream.
type TimeoutError struct {
	Action string
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("backend call %s timed out", e.Action)
}

// TransportError covers network failures other than the deadline (refused
// connection, DNS, reset).
type TransportError struct {
	Action string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("backend call %s failed: %v", e.Action, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// HTTPError is a non-2xx response. Body is truncated and for logging only.
type HTTPError struct {
	Action string
	Status int
	Body   string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("backend call %s returned HTTP %d", e.Action, e.Status)
}

// FormatError is a 2xx response whose body is not valid JSON.
type FormatError struct {
	Action string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("backend call %s returned a non-JSON body", e.Action)
}

// RejectedError is well-formed JSON that does not mark ok:true. Reason is
// the backend's own error text, kept for logging only.
type RejectedError struct {
	Action string
	Reason string
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("backend rejected %s: %s", e.Action, e.Reason)
}

// Classify maps a backend failure to the HTTP status and short error code
// of the client-facing envelope.
func Classify(err error) (int, string) {
	var (
		configErr    *ConfigError
		timeoutErr   *TimeoutError
		transportErr *TransportError
		formatErr    *FormatError
		rejectedErr  *RejectedError
	)
	switch {
	case errors.As(err, &configErr):
		return http.StatusBadGateway, "not_configured"
	case errors.As(err, &timeoutErr), errors.As(err, &transportErr):
		return http.StatusBadGateway, "fetch_failed"
	case errors.As(err, &formatErr):
		return http.StatusBadGateway, "bad_upstream_response"
	case errors.As(err, &rejectedErr):
		return http.StatusBadGateway, "upstream_rejected"
	default:
		return http.StatusBadGateway, "upstream_error"
	}
}
