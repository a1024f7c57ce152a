// Package netlify executes HTTP-shaped requests against the Netlify REST API
// and reduces failed calls to one readable message.
package netlify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/golovatskygroup/mcp-netlify/internal/config"
)

// Request is one outbound API call. Path is relative to the client's base URL.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Body   any
}

// Result is the outcome of exactly one API call: a completed exchange with
// any status code, or a transport failure (Err != nil, StatusCode == 0).
type Result struct {
	StatusCode int
	Body       []byte
	Err        error
}

// OK reports whether the call completed with a 2xx status.
func (r Result) OK() bool {
	return r.Err == nil && r.StatusCode >= 200 && r.StatusCode < 300
}

// Client is stateless; its configuration is fixed at construction and safe
// to share between concurrent calls.
type Client struct {
	baseURL string
	c       *http.Client
}

// Options tweaks NewClient. Zero values use config defaults.
type Options struct {
	BaseURL   string
	Token     string
	Timeout   time.Duration
	UserAgent string
	Transport http.RoundTripper
}

// NewClient builds a client from the process configuration.
func NewClient(cfg *config.Config) *Client {
	return NewClientWithOptions(Options{
		BaseURL:   cfg.BaseURL,
		Token:     cfg.AccessToken,
		Timeout:   cfg.Timeout,
		UserAgent: cfg.UserAgent,
	})
}

func NewClientWithOptions(o Options) *Client {
	if o.BaseURL == "" {
		o.BaseURL = config.DefaultBaseURL
	}
	if o.Timeout <= 0 {
		o.Timeout = config.DefaultTimeout
	}
	if o.UserAgent == "" {
		o.UserAgent = config.DefaultUserAgent
	}
	return &Client{
		baseURL: strings.TrimRight(o.BaseURL, "/"),
		c: &http.Client{
			Timeout:   o.Timeout,
			Transport: newAuthTransport(o.Transport, o.Token, o.UserAgent),
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

// BaseURL returns the API root every request path is joined to.
func (c *Client) BaseURL() string { return c.baseURL }

// Execute performs the request once. It never retries and never interprets
// the status code beyond 2xx vs. everything else.
func (c *Client) Execute(ctx context.Context, r Request) Result {
	u := c.baseURL + r.Path
	if len(r.Query) > 0 {
		u += "?" + r.Query.Encode()
	}

	var body io.Reader
	if r.Body != nil {
		b, err := json.Marshal(r.Body)
		if err != nil {
			return Result{Err: fmt.Errorf("encode request body: %w", err)}
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, r.Method, u, body)
	if err != nil {
		return Result{Err: err}
	}

	resp, err := c.c.Do(req)
	if err != nil {
		return Result{Err: err}
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{StatusCode: resp.StatusCode, Err: fmt.Errorf("read response body: %w", err)}
	}
	return Result{StatusCode: resp.StatusCode, Body: b}
}
