// Package transport implements the HTTP client of the SDK: bearer-token
// header management, connectivity probing, typed error classification, and
// bounded exponential retry of transient failures.
//
// The retryability contract: connection-level socket failures, client-side
// deadline expiry, and HTTP 5xx are retryable; HTTP 4xx and malformed
// response bodies are terminal. 504 maps to a TimeoutError, other 5xx to a
// NetworkError.
package transport

import "context"

// Client issues JSON requests against the configured base URL.
//
// SetToken/ClearToken mutate the Authorization header applied to all
// subsequent calls. Both are safe for concurrent use with in-flight
// requests.
type Client interface {
	Post(ctx context.Context, endpoint string, body any) (map[string]any, error)
	Get(ctx context.Context, endpoint string) (map[string]any, error)
	SetToken(token string)
	ClearToken()
}
