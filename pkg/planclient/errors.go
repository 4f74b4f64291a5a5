package planclient

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthorized is returned when the service rejects the bearer token (401/403).
	ErrUnauthorized = errors.New("planclient: unauthorized")

	// ErrDecode is returned when a response body is not a valid plan status payload.
	ErrDecode = errors.New("planclient: failed to decode response")

	// ErrCircuitOpen is returned while the circuit breaker rejects calls.
	ErrCircuitOpen = errors.New("planclient: circuit breaker open")

	// ErrInvalidBaseURL is returned by New for an unparsable or relative base URL.
	ErrInvalidBaseURL = errors.New("planclient: invalid base URL")

	// ErrRequestFailed wraps transport failures that exhausted all attempts.
	ErrRequestFailed = errors.New("planclient: request failed")
)

// StatusError reports a non-2xx response that has no more specific mapping.
type StatusError struct {
	Code int
	Body []byte
}

func (e *StatusError) Error() string {
	const maxBody = 256
	body := e.Body
	if len(body) > maxBody {
		body = body[:maxBody]
	}
	return fmt.Sprintf("planclient: unexpected status %d: %s", e.Code, body)
}
