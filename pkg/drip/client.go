// Package drip is a small client for the Drip usage-metering API. It covers
// the endpoints the health and scenario harnesses exercise: health, usage
// tracking, run recording and the incremental run lifecycle.
package drip

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Version is the client version reported in the User-Agent header.
const Version = "1.2.0"

// DefaultBaseURL is used when Config.BaseURL is empty.
const DefaultBaseURL = "https://api.drip.re/v1"

// HTTPClient abstracts HTTP requests for testability.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Config configures a Client.
type Config struct {
	APIKey  string        // required
	BaseURL string        // default: DefaultBaseURL
	Timeout time.Duration // request timeout (default: 30s)
}

// KeyType classifies an API key by its prefix.
type KeyType int

const (
	KeyUnknown KeyType = iota
	KeySecret
	KeyPublic
)

func (k KeyType) String() string {
	switch k {
	case KeySecret:
		return "secret key (sk_*)"
	case KeyPublic:
		return "public key (pk_*)"
	default:
		return "unknown key type"
	}
}

// Client talks to the Drip API. It is safe to reuse across calls.
type Client struct {
	apiKey  string
	baseURL string
	http    HTTPClient
	log     *zap.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the default net/http client.
func WithHTTPClient(c HTTPClient) Option {
	return func(cl *Client) { cl.http = c }
}

// WithLogger enables request logging.
func WithLogger(l *zap.Logger) Option {
	return func(cl *Client) { cl.log = l }
}

// NewClient validates cfg and returns a ready Client.
func NewClient(cfg Config, opts ...Option) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, &Error{Code: codeMissingAPIKey, Message: "API key is required (set DRIP_API_KEY)"}
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	c := &Client{
		apiKey:  cfg.APIKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.log.Debug("drip client initialized",
		zap.String("base_url", c.baseURL),
		zap.Stringer("key_type", c.KeyType()),
	)
	return c, nil
}

// BaseURL returns the effective API base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// KeyType reports which kind of key the client authenticates with.
func (c *Client) KeyType() KeyType {
	switch {
	case strings.HasPrefix(c.apiKey, "sk_"):
		return KeySecret
	case strings.HasPrefix(c.apiKey, "pk_"):
		return KeyPublic
	default:
		return KeyUnknown
	}
}

// do sends a JSON request and returns the status and raw body. Non-2xx
// statuses are turned into *Error unless accept lists them.
func (c *Client) do(ctx context.Context, method, path string, in any, accept ...int) (int, []byte, error) {
	var body io.Reader = http.NoBody
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return 0, nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "drip-go/"+Version)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		// Cancellation belongs to the caller, not the API.
		if ctxErr := ctx.Err(); ctxErr != nil {
			return 0, nil, ctxErr
		}
		c.log.Debug("request failed", zap.String("method", method), zap.String("path", path), zap.Error(err))
		return 0, nil, &Error{Message: "request failed", Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, &Error{StatusCode: resp.StatusCode, Message: "failed to read response", Err: err}
	}

	c.log.Debug("request completed",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)),
	)

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp.StatusCode, respBody, nil
	}
	for _, s := range accept {
		if resp.StatusCode == s {
			return resp.StatusCode, respBody, nil
		}
	}
	return resp.StatusCode, respBody, newStatusError(resp.StatusCode, respBody)
}

// call performs a request and decodes the JSON response into out.
func (c *Client) call(ctx context.Context, method, path string, in, out any) error {
	_, body, err := c.do(ctx, method, path, in)
	if err != nil {
		return err
	}
	if out == nil || len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &Error{Message: "failed to decode response", Err: err}
	}
	return nil
}
