package bridge

import (
	"errors"
	"fmt"
)

var (
	// ErrNotConnected is returned by queries issued before a successful
	// discovery.
	ErrNotConnected = errors.New("delphi bridge not connected: call Discover or configure a port")

	// ErrUnavailable is returned by Manager when no listening port passes
	// the bridge signature check.
	ErrUnavailable = errors.New("delphi bridge not available: ensure the target app has the UI test exposer enabled")

	// ErrBridgeLost marks a request whose connection failed and whose
	// re-discovery found nothing. The application either crashed or
	// stopped serving.
	ErrBridgeLost = errors.New("delphi bridge lost")
)

// StatusError is a non-2xx response from the bridge.
type StatusError struct {
	URL  string
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("bridge GET %s: HTTP %d: %s", e.URL, e.Code, e.Body)
	}
	return fmt.Sprintf("bridge GET %s: HTTP %d", e.URL, e.Code)
}

// LostError wraps the original connectivity error of a request that could
// not be recovered. It matches both ErrBridgeLost and the original error
// under errors.Is.
type LostError struct {
	URL string
	Err error
}

func (e *LostError) Error() string {
	return fmt.Sprintf("%s at %s and re-discovery failed: %v", ErrBridgeLost, e.URL, e.Err)
}

func (e *LostError) Unwrap() []error {
	return []error{ErrBridgeLost, e.Err}
}
