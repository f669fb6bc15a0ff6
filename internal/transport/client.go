// Package transport provides the shared HTTP client used by data sources
// and the enrichment API. It carries a polite User-Agent, optional session
// headers and cookies captured from a HAR file, and request authentication.
package transport

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/civicdatadog/civicmap/pkg/constants"
	"github.com/civicdatadog/civicmap/pkg/errors"
)

// Client wraps http.Client with session state and authentication.
type Client struct {
	http      *http.Client
	auth      Authenticator
	userAgent string
	headers   map[string]string
	cookies   map[string]string
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.http.Timeout = d
	}
}

// WithAuth sets the request authenticator.
func WithAuth(auth Authenticator) Option {
	return func(c *Client) {
		c.auth = auth
	}
}

// WithUserAgent overrides the default User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// WithHeaders sets session headers applied to every request.
func WithHeaders(headers map[string]string) Option {
	return func(c *Client) {
		c.headers = headers
	}
}

// WithCookies sets session cookies applied to every request.
func WithCookies(cookies map[string]string) Option {
	return func(c *Client) {
		c.cookies = cookies
	}
}

// New creates a transport client.
func New(opts ...Option) *Client {
	c := &Client{
		http:      &http.Client{Timeout: constants.DefaultHTTPTimeout},
		auth:      NoAuth{},
		userAgent: constants.DefaultUserAgent,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Do performs an HTTP request with session state and auth applied.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	for name, value := range c.headers {
		if req.Header.Get(name) == "" {
			req.Header.Set(name, value)
		}
	}
	for name, value := range c.cookies {
		req.AddCookie(&http.Cookie{Name: name, Value: value})
	}
	c.auth.Apply(req)

	return c.http.Do(req)
}

// Get performs a GET request and returns the response.
func (c *Client) Get(ctx context.Context, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, errors.WrapIO("create", "GET "+rawURL, err)
	}
	return c.Do(req)
}

// GetBody performs a GET request and returns the response body as a
// string, checking the status code.
func (c *Client) GetBody(ctx context.Context, source, rawURL string) (string, error) {
	resp, err := c.Get(ctx, rawURL)
	if err != nil {
		return "", errors.WrapAPI(source, 0, err)
	}
	return readBody(source, rawURL, resp)
}

// PostForm performs a form POST and returns the response body as a
// string, checking the status code.
func (c *Client) PostForm(ctx context.Context, source, rawURL string, form url.Values) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", errors.WrapIO("create", "POST "+rawURL, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.Do(req)
	if err != nil {
		return "", errors.WrapAPI(source, 0, err)
	}
	return readBody(source, rawURL, resp)
}

// Request performs an arbitrary request (method and body as captured from
// a HAR file) and returns the response body as a string.
func (c *Client) Request(ctx context.Context, source, method, rawURL, body string) (string, error) {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, rawURL, reader)
	if err != nil {
		return "", errors.WrapIO("create", method+" "+rawURL, err)
	}

	resp, err := c.Do(req)
	if err != nil {
		return "", errors.WrapAPI(source, 0, err)
	}
	return readBody(source, rawURL, resp)
}

func readBody(source, endpoint string, resp *http.Response) (string, error) {
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errors.WrapIO("read", endpoint, err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", &errors.APIError{
			Source:     source,
			StatusCode: resp.StatusCode,
			Endpoint:   endpoint,
			Message:    resp.Status,
		}
	}
	return string(data), nil
}
