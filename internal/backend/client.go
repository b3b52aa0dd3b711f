// Package backend talks to the BuyTown REST API.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const requestIDHeader = "X-Request-ID"

type Client struct {
	baseURL string
	http    *http.Client
	creds   *Credentials
	logger  *zap.Logger
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.logger = l }
}

func NewClient(baseURL string, creds *Credentials, opts ...Option) *Client {
	if creds == nil {
		creds = NewCredentials()
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
		creds:   creds,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Credentials exposes the shared authorization slot.
func (c *Client) Credentials() *Credentials {
	return c.creds
}

func (c *Client) url(path string) string {
	return c.baseURL + "/" + strings.TrimLeft(path, "/")
}

// Do sends a JSON request and decodes a JSON answer into out (if non-nil). The
// shared credentials are attached unless the caller passes an explicit bearer.
func (c *Client) Do(ctx context.Context, method, path string, body, out any) error {
	return c.do(ctx, method, path, "", body, out)
}

func (c *Client) do(ctx context.Context, method, path, bearer string, body, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.url(path), reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := c.send(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{Status: resp.StatusCode, Message: errorMessage(resp.StatusCode, raw)}
	}
	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// send attaches the default authorization and a request id, then performs the call.
func (c *Client) send(req *http.Request) (*http.Response, error) {
	if req.Header.Get("Authorization") == "" {
		if auth := c.creds.Authorization(); auth != "" {
			req.Header.Set("Authorization", auth)
		}
	}
	if req.Header.Get(requestIDHeader) == "" {
		req.Header.Set(requestIDHeader, uuid.NewString())
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug("backend call failed",
			zap.String("method", req.Method),
			zap.String("url", req.URL.Redacted()),
			zap.Error(err))
		return nil, fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	c.logger.Debug("backend call",
		zap.String("method", req.Method),
		zap.String("url", req.URL.Redacted()),
		zap.Int("status", resp.StatusCode),
		zap.Duration("took", time.Since(start)),
		zap.String("request_id", req.Header.Get(requestIDHeader)))
	return resp, nil
}

var hopHeaders = []string{
	"Connection", "Keep-Alive", "Proxy-Authenticate", "Proxy-Authorization",
	"Te", "Trailer", "Transfer-Encoding", "Upgrade", "Authorization", "Cookie", "Host",
}

// Forward replays an inbound request against the backend at path. Inbound
// credentials are dropped; the shared credentials are used instead.
func (c *Client) Forward(ctx context.Context, in *http.Request, path string) (*http.Response, error) {
	target := c.url(path)
	if in.URL.RawQuery != "" {
		target += "?" + in.URL.RawQuery
	}
	out, err := http.NewRequestWithContext(ctx, in.Method, target, in.Body)
	if err != nil {
		return nil, fmt.Errorf("build forward request: %w", err)
	}
	out.Header = in.Header.Clone()
	for _, h := range hopHeaders {
		out.Header.Del(h)
	}
	out.ContentLength = in.ContentLength
	return c.send(out)
}
