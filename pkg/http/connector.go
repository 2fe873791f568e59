package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/avast/retry-go/v4"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

type Connector struct {
	baseURL      string
	httpClient   *http.Client
	logger       *zap.Logger
	retryOptions []retry.Option
}

type ConnectorConfig struct {
	BaseURL string
	Logger  *zap.Logger
	// RetryOptions enable retries of network failures and 5xx/429 responses
	RetryOptions []retry.Option
}

func NewConnector(config *ConnectorConfig, options ...HttpOpts) *Connector {
	return &Connector{
		baseURL:      config.BaseURL,
		httpClient:   newClient(options...),
		logger:       config.Logger,
		retryOptions: config.RetryOptions,
	}
}

type RequestOpt func(*requestConfig)

type requestConfig struct {
	headers     map[string]string
	overrideURL string
}

func WithHeader(key, value string) RequestOpt {
	return func(c *requestConfig) {
		if c.headers == nil {
			c.headers = make(map[string]string)
		}
		c.headers[key] = value
	}
}

func WithURL(url string) RequestOpt {
	return func(c *requestConfig) {
		c.overrideURL = url
	}
}

// DoRequest sends reqBody as JSON and decodes a JSON response into respBody.
// With retry options configured, retryable failures are attempted again.
func (c *Connector) DoRequest(ctx context.Context, method, endpoint string, reqBody, respBody any, opts ...RequestOpt) error {
	cfg := &requestConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	url := c.baseURL + endpoint
	if cfg.overrideURL != "" {
		url = cfg.overrideURL
	}

	var payload []byte
	if reqBody != nil {
		data, err := json.Marshal(reqBody)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		payload = data
		ctx = context.WithValue(ctx, payloadContextKey{}, payload)
	}

	if len(c.retryOptions) == 0 {
		return c.do(ctx, method, url, payload, respBody, cfg.headers)
	}

	retryOpts := append([]retry.Option{}, c.retryOptions...)
	retryOpts = append(retryOpts,
		retry.Context(ctx),
		retry.LastErrorOnly(true),
		retry.RetryIf(IsRetryable),
		retry.OnRetry(func(n uint, err error) {
			ctxzap.Warn(ctx, "retrying HTTP request",
				zap.String("method", method),
				zap.String("url", url),
				zap.Uint("attempt", n+1),
				zap.Error(err),
			)
		}),
	)

	return retry.Do(func() error {
		return c.do(ctx, method, url, payload, respBody, cfg.headers)
	}, retryOpts...)
}

func (c *Connector) do(
	ctx context.Context, method, url string, payload []byte, respBody any, headers map[string]string,
) error {
	var bodyReader io.Reader
	if payload != nil {
		bodyReader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return retry.Unrecoverable(fmt.Errorf("create request: %w", err))
	}

	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return &NetworkError{Err: fmt.Errorf("read response body: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &HTTPError{
			StatusCode: resp.StatusCode,
			Message:    string(bodyBytes),
		}
	}

	if respBody != nil && len(bodyBytes) > 0 {
		if err := json.Unmarshal(bodyBytes, respBody); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}

	return nil
}

// IsRetryable reports whether err is a network failure or a 5xx/429 response
func IsRetryable(err error) bool {
	var netErr *NetworkError
	if errors.As(err, &netErr) {
		return !errors.Is(netErr.Err, context.Canceled)
	}

	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode >= http.StatusInternalServerError || httpErr.StatusCode == http.StatusTooManyRequests
	}

	return false
}

// HTTPError represents an HTTP error response
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// NetworkError represents a network-level error (connection, timeout, etc.)
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: %v", e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}
