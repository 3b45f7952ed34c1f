// Package common defines the error taxonomy shared by all layers of the
// authentication SDK. Sentinel values are matched with errors.Is; typed
// errors carry a payload and are matched with errors.As.
package common

import (
	"errors"
	"fmt"
)

var (
	// ErrNoToken means no usable credential is available locally.
	ErrNoToken = errors.New("no auth token available")

	// ErrNotConfigured is a programmer error: an authentication operation
	// was invoked before the one-time Configure call.
	ErrNotConfigured = errors.New("auth module is not configured")

	// ErrAlreadyConfigured is a programmer error: Configure was called twice
	// without an intervening Reset.
	ErrAlreadyConfigured = errors.New("auth module is already configured")

	// ErrOffline means the device is definitively offline and the request
	// was not attempted.
	ErrOffline = errors.New("no internet connection")
)

// NetworkError covers transport-level failures: unreachable hosts, dropped
// connections, 5xx responses, and malformed response bodies.
type NetworkError struct {
	Message string
	Err     error
}

func (e *NetworkError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("network error: %s: %v", e.Message, e.Err)
	}
	return fmt.Sprintf("network error: %s", e.Message)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// TimeoutError means a deadline was exceeded, either client-side or reported
// by the server as 504.
type TimeoutError struct {
	Message string
	Err     error
}

func (e *TimeoutError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("timeout: %s: %v", e.Message, e.Err)
	}
	return fmt.Sprintf("timeout: %s", e.Message)
}

func (e *TimeoutError) Unwrap() error { return e.Err }

// APIError means the server understood and rejected the request.
type APIError struct {
	StatusCode int
	Message    string
	Code       string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("api error %d (%s): %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

// ValidationError is a structured per-field rejection, typically HTTP 422.
// Errors that are not scoped to a field are bucketed under "general".
type ValidationError struct {
	Message     string
	FieldErrors map[string][]string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s", e.Message)
}

// GeneralErrorKey is the synthetic field name for errors the server did not
// scope to a specific field.
const GeneralErrorKey = "general"
