package transport

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strings"

	"github.com/avikshith-np/questions-auth-module-app-sub000/internal/common"
)

// retryableMessages are the socket-level failure fragments that mark a
// transport error as transient. Anything else at the socket level is a
// terminal NetworkError.
var retryableMessages = []string{
	"connection refused",
	"timed out",
	"unreachable",
	"connection reset",
	"broken pipe",
}

// classifyTransportError maps a failed http.Client.Do into the taxonomy and
// reports whether the failure is retryable.
func classifyTransportError(err error) (error, bool) {
	if errors.Is(err, context.DeadlineExceeded) {
		return &common.TimeoutError{Message: "request deadline exceeded", Err: err}, true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &common.TimeoutError{Message: "request deadline exceeded", Err: err}, true
	}

	msg := err.Error()
	for _, fragment := range retryableMessages {
		if strings.Contains(msg, fragment) {
			return &common.NetworkError{Message: "connection failed", Err: err}, true
		}
	}
	return &common.NetworkError{Message: "request failed", Err: err}, false
}

// classifyStatus maps a non-2xx response into the taxonomy and reports
// retryability. 5xx is transient (504 as a timeout); 4xx is a terminal
// server verdict, with 422 carrying structured field errors.
func classifyStatus(status int, body []byte) (error, bool) {
	payload := map[string]any{}
	_ = json.Unmarshal(body, &payload) // best effort; error bodies may not be JSON

	message := extractMessage(payload, http.StatusText(status))

	switch {
	case status == http.StatusGatewayTimeout:
		return &common.TimeoutError{Message: message}, true
	case status >= 500:
		return &common.NetworkError{Message: message}, true
	case status == http.StatusUnprocessableEntity:
		if raw, ok := payload["errors"]; ok {
			return &common.ValidationError{
				Message:     message,
				FieldErrors: NormalizeFieldErrors(raw),
			}, false
		}
	}

	code, _ := payload["code"].(string)
	return &common.APIError{StatusCode: status, Message: message, Code: code}, false
}

// extractMessage digs a human-readable message out of loosely shaped error
// payloads.
func extractMessage(payload map[string]any, fallback string) string {
	for _, key := range []string{"detail", "message", "error"} {
		if s, ok := payload[key].(string); ok && s != "" {
			return s
		}
	}
	return fallback
}
