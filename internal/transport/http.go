package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"

	"github.com/avikshith-np/questions-auth-module-app-sub000/internal/common"
	"github.com/avikshith-np/questions-auth-module-app-sub000/internal/logging"
)

// HTTPClient is the Client implementation over net/http.
type HTTPClient struct {
	baseURL    string
	headers    map[string]string
	timeout    time.Duration
	maxRetries uint64
	baseDelay  time.Duration
	checker    Checker
	httpClient *http.Client
	log        logging.Logger

	mu    sync.RWMutex
	token string
}

type Option func(*HTTPClient)

// WithTimeout sets the per-attempt deadline. Each retry gets a fresh
// window; the timeout is not cumulative across attempts.
func WithTimeout(d time.Duration) Option {
	return func(c *HTTPClient) { c.timeout = d }
}

// WithRetries configures how many times a retryable failure is retried
// (total attempts = retries+1) and the base of the exponential backoff.
func WithRetries(retries int, baseDelay time.Duration) Option {
	return func(c *HTTPClient) {
		if retries < 0 {
			retries = 0
		}
		c.maxRetries = uint64(retries)
		c.baseDelay = baseDelay
	}
}

// WithChecker installs a connectivity checker consulted before every
// attempt.
func WithChecker(ch Checker) Option {
	return func(c *HTTPClient) { c.checker = ch }
}

// WithDefaultHeaders attaches headers to every request.
func WithDefaultHeaders(h map[string]string) Option {
	return func(c *HTTPClient) { c.headers = h }
}

func WithLogger(log logging.Logger) Option {
	return func(c *HTTPClient) { c.log = log }
}

// WithHTTPClient replaces the underlying http.Client (test seam).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *HTTPClient) { c.httpClient = hc }
}

func New(baseURL string, opts ...Option) *HTTPClient {
	c := &HTTPClient{
		baseURL:    baseURL,
		timeout:    10 * time.Second,
		maxRetries: 2,
		baseDelay:  500 * time.Millisecond,
		checker:    OptimisticChecker{},
		httpClient: &http.Client{},
		log:        logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *HTTPClient) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

func (c *HTTPClient) ClearToken() {
	c.SetToken("")
}

func (c *HTTPClient) currentToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *HTTPClient) Post(ctx context.Context, endpoint string, body any) (map[string]any, error) {
	return c.do(ctx, http.MethodPost, endpoint, body)
}

func (c *HTTPClient) Get(ctx context.Context, endpoint string) (map[string]any, error) {
	return c.do(ctx, http.MethodGet, endpoint, nil)
}

// do runs the attempt loop. Retryable outcomes are re-attempted with
// exponential backoff (baseDelay, 2×baseDelay, 4×baseDelay, ...) up to
// maxRetries retries; exhaustion surfaces the last classified error. A
// definitive offline verdict aborts immediately with ErrOffline, including
// between attempts, so a connectivity loss during backoff stops the loop.
func (c *HTTPClient) do(ctx context.Context, method, endpoint string, body any) (map[string]any, error) {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
	}

	var out map[string]any
	attempt := 0

	backoff := retry.WithMaxRetries(c.maxRetries, retry.NewExponential(c.baseDelay))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++

		if online, err := c.checker.Online(ctx); err == nil && !online {
			return common.ErrOffline
		}

		res, err := c.attempt(ctx, method, endpoint, payload)
		if err != nil {
			c.log.Debug(ctx, "request attempt failed",
				"method", method, "endpoint", endpoint, "attempt", attempt, "error", err)
			return err
		}
		out = res
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// attempt issues one HTTP call with a fresh timeout window and classifies
// the outcome. Retryable failures are wrapped with retry.RetryableError so
// the loop in do re-attempts them.
func (c *HTTPClient) attempt(ctx context.Context, method, endpoint string, payload []byte) (map[string]any, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	target, err := url.JoinPath(c.baseURL, endpoint)
	if err != nil {
		return nil, fmt.Errorf("build request url: %w", err)
	}

	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reqBody)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", uuid.NewString())
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	if tok := c.currentToken(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		classified, retryable := classifyTransportError(err)
		if retryable {
			return nil, retry.RetryableError(classified)
		}
		return nil, classified
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, retry.RetryableError(&common.NetworkError{Message: "read response body", Err: err})
	}

	if resp.StatusCode >= 400 {
		classified, retryable := classifyStatus(resp.StatusCode, raw)
		if retryable {
			return nil, retry.RetryableError(classified)
		}
		return nil, classified
	}

	// Empty success bodies (204, or empty 200) decode to an empty object.
	if resp.StatusCode == http.StatusNoContent || len(bytes.TrimSpace(raw)) == 0 {
		return map[string]any{}, nil
	}

	var decoded map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, &common.NetworkError{Message: "malformed response body", Err: err}
	}
	return decoded, nil
}
