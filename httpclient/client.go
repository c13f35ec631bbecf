package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/orderdesk/go-chatbot-client/internal/apierrors"
)

const (
	defaultTimeout       = 30 * time.Second
	defaultRetryAttempts = 3
	retryBackoff         = 500 * time.Millisecond

	// Responses larger than this are not expected from the backend.
	maxResponseBytes = 4 << 20
)

// TokenSource supplies the bearer token for outgoing requests. The token is
// read per request at call time, so there is no shared mutable header to
// race on during login/logout.
type TokenSource interface {
	Token() string
}

// Client is the single shared HTTP client for all API services. The base URL
// and timeout are fixed at construction; authentication is injected into
// each request from the TokenSource.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenSource
	retries int
}

// Option configures the Client.
type Option func(*Client)

// WithTimeout overrides the default 30s request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.http.Timeout = timeout
	}
}

// WithRetryAttempts sets how many times idempotent requests are retried
// after a transport failure.
func WithRetryAttempts(attempts int) Option {
	return func(c *Client) {
		c.retries = attempts
	}
}

// WithTokenSource sets the source consulted for the Authorization header.
func WithTokenSource(tokens TokenSource) Option {
	return func(c *Client) {
		c.tokens = tokens
	}
}

// WithHTTPClient substitutes the underlying http.Client (primarily for
// testing).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// New creates a client for the given base URL.
func New(baseURL string, options ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: defaultTimeout},
		retries: defaultRetryAttempts,
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

// GetJSON issues a GET and decodes a 2xx JSON body into out (skipped when
// out is nil). Transport failures are retried up to the configured attempts;
// non-2xx responses map through the error taxonomy.
func (c *Client) GetJSON(ctx context.Context, path string, out any) error {
	return c.doJSON(ctx, http.MethodGet, path, nil, out)
}

// PostJSON issues a POST with a JSON body and decodes a 2xx JSON response
// into out (skipped when out is nil). POSTs are never retried.
func (c *Client) PostJSON(ctx context.Context, path string, body any, out any) error {
	var payload []byte
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return errors.Wrap(err, "[Client.PostJSON] marshal request body")
		}
		payload = data
	} else {
		payload = []byte("{}")
	}
	return c.doJSON(ctx, http.MethodPost, path, payload, out)
}

func (c *Client) doJSON(ctx context.Context, method, path string, body []byte, out any) error {
	resp, respBody, err := c.send(ctx, method, path, body)
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return apierrors.FromResponse(resp.StatusCode, respBody)
	}

	if out == nil || len(respBody) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return errors.Wrapf(err, "[Client.doJSON] decode %s %s response", method, path)
	}
	return nil
}

func (c *Client) send(ctx context.Context, method, path string, body []byte) (*http.Response, []byte, error) {
	attempts := 1
	if method == http.MethodGet && c.retries > 0 {
		attempts = c.retries
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return nil, nil, apierrors.Network(ctx.Err())
			case <-time.After(time.Duration(attempt-1) * retryBackoff):
			}
			log.Debug().Str("method", method).Str("path", path).Int("attempt", attempt).Msg("Retrying request")
		}

		resp, respBody, err := c.roundTrip(ctx, method, path, body)
		if err == nil {
			return resp, respBody, nil
		}
		lastErr = err
	}
	return nil, nil, apierrors.Network(lastErr)
}

func (c *Client) roundTrip(ctx context.Context, method, path string, body []byte) (*http.Response, []byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, nil, errors.Wrap(err, "[Client.roundTrip] build request")
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.New().String())
	if c.tokens != nil {
		if token := c.tokens.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "[Client.roundTrip] %s %s", method, path)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, nil, errors.Wrapf(err, "[Client.roundTrip] read %s %s response", method, path)
	}
	return resp, respBody, nil
}
