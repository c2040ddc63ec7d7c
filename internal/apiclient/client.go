// Package apiclient talks to the campaign REST API.
//
// Hosted backends sleep when idle, so the first request after a pause often times out or meets a gateway error.
// Such a request is replayed once after a delay.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/myrjola/masks/internal/errors"
)

const (
	// EnvAPIURL overrides the base URL of the API.
	EnvAPIURL            = "MASKS_API_URL"
	DefaultProductionURL = "https://masks-coc-backend.onrender.com/api"
	DefaultLocalURL      = "http://localhost:3000/api"

	DefaultTimeout    = 10 * time.Second
	DefaultRetryDelay = 5 * time.Second

	// maxRetries bounds the replays of a single call.
	maxRetries = 1

	maxErrorBody = 4096
)

// ResolveBaseURL returns MASKS_API_URL when set, else the hosted API in production and the local one otherwise.
func ResolveBaseURL(lookupEnv func(string) (string, bool), production bool) string {
	if v, ok := lookupEnv(EnvAPIURL); ok && strings.TrimSpace(v) != "" {
		return strings.TrimRight(strings.TrimSpace(v), "/")
	}
	if production {
		return DefaultProductionURL
	}
	return DefaultLocalURL
}

// StatusError is returned for responses outside the 2xx range.
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
	// Message is the "error" field of the response body, or the raw body when it isn't JSON.
	Message string
}

func (e *StatusError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.StatusCode, msg)
}

// Temporary reports whether the status is a gateway error of a backend that is still starting.
func (e *StatusError) Temporary() bool {
	switch e.StatusCode {
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	retryDelay time.Duration
	logger     *slog.Logger
}

type Option func(*Client)

// WithTimeout bounds every single attempt. It replaces the timeout of a client given with WithHTTPClient.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

func WithRetryDelay(d time.Duration) Option {
	return func(c *Client) {
		c.retryDelay = d
	}
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		timeout := c.httpClient.Timeout
		c.httpClient = hc
		if hc.Timeout == 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// New creates a client for the API at baseURL, e.g., "http://localhost:3000/api".
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: DefaultTimeout},
		retryDelay: DefaultRetryDelay,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// call sends the request and decodes a JSON response into out unless out is nil.
//
// The request is replayed with the same method, path and body at most maxRetries times after retryDelay when the
// attempt timed out or the backend answered 502, 503 or 504.
func (c *Client) call(ctx context.Context, method, path string, body any, out any) error {
	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return errors.Wrap(err, "marshal request body", slog.String("path", path))
		}
	}

	for attempt := 0; ; attempt++ {
		err := c.send(ctx, method, c.baseURL+path, payload, out)
		if err == nil {
			return nil
		}
		if attempt >= maxRetries || !c.retryable(ctx, err) {
			return err
		}
		c.logger.LogAttrs(ctx, slog.LevelWarn, "retrying request",
			slog.String("method", method),
			slog.String("path", path),
			slog.Int("attempt", attempt+1),
			slog.Duration("delay", c.retryDelay),
			errors.SlogError(err))
		select {
		case <-ctx.Done():
			return errors.Wrap(ctx.Err(), "wait for retry", slog.String("path", path))
		case <-time.After(c.retryDelay):
		}
	}
}

func (c *Client) retryable(ctx context.Context, err error) bool {
	// The caller gave up. Replaying would fail the same way.
	if ctx.Err() != nil {
		return false
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Temporary()
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded)
}

func (c *Client) send(ctx context.Context, method, url string, payload []byte, out any) error {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return errors.Wrap(err, "create request", slog.String("url", url))
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrap(err, "send request", slog.String("method", method), slog.String("url", url))
	}
	defer resp.Body.Close()
	c.logger.LogAttrs(ctx, slog.LevelDebug, "api response",
		slog.String("method", method),
		slog.String("url", url),
		slog.Int("status", resp.StatusCode),
		slog.Duration("duration", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{
			Method:     method,
			Path:       strings.TrimPrefix(url, c.baseURL),
			StatusCode: resp.StatusCode,
			Message:    errorMessage(raw),
		}
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err = json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrap(err, "decode response", slog.String("url", url))
	}
	return nil
}

func errorMessage(raw []byte) string {
	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &body); err == nil {
		if body.Error != "" {
			return body.Error
		}
		if body.Message != "" {
			return body.Message
		}
	}
	return strings.TrimSpace(string(raw))
}
