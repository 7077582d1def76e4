// Package apiclient builds and issues requests against the travel backend's
// REST surface. It owns the error taxonomy the rest of the module maps
// responses through; callers decide how each failure degrades.
package apiclient

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

	"github.com/google/uuid"
)

const httpTimeout = 10 * time.Second

// maxErrorBody caps how much of a failed response body is kept for the error.
const maxErrorBody = 4 << 10

// TokenSource supplies the current bearer token, or "" when there is no
// authenticated session. *session.Manager satisfies this interface.
type TokenSource interface {
	Token() string
}

// TokenSourceFunc adapts a plain function to a TokenSource.
type TokenSourceFunc func() string

// Token returns f().
func (f TokenSourceFunc) Token() string { return f() }

// Client issues JSON requests against a single configured base URL, injecting
// an Authorization header whenever a token is available.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenSource
}

// New constructs a Client with a 10-second timeout transport.
func New(baseURL string, tokens TokenSource) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: httpTimeout},
		tokens:  tokens,
	}
}

// NewRequest builds a request with a JSON body, a correlation ID, and a
// bearer header when the token source currently holds one.
func (c *Client) NewRequest(ctx context.Context, method, path string, query url.Values, body any) (*http.Request, error) {
	endpoint := c.baseURL + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var payload io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshaling body for %s %s: %w", method, path, err)
		}
		payload = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, payload)
	if err != nil {
		return nil, fmt.Errorf("creating request for %s %s: %w", method, path, err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if c.tokens != nil {
		if token := c.tokens.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	return req, nil
}

// do issues req and decodes a 2xx JSON response into dst (when non-nil).
// Transport failures map to *NetworkError, non-2xx responses to *HTTPError.
func (c *Client) do(req *http.Request, dst any) error {
	op := req.Method + " " + req.URL.Path

	resp, err := c.http.Do(req)
	if err != nil {
		return &NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &HTTPError{Status: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	if dst == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("decoding response from %s: %w", op, err)
	}
	return nil
}

// Get issues a GET against path and decodes the response into dst.
func (c *Client) Get(ctx context.Context, path string, query url.Values, dst any) error {
	req, err := c.NewRequest(ctx, http.MethodGet, path, query, nil)
	if err != nil {
		return err
	}
	return c.do(req, dst)
}

// Post issues a POST with a JSON body and decodes the response into dst
// (pass nil to discard it).
func (c *Client) Post(ctx context.Context, path string, query url.Values, body, dst any) error {
	req, err := c.NewRequest(ctx, http.MethodPost, path, query, body)
	if err != nil {
		return err
	}
	return c.do(req, dst)
}

// Put issues a PUT with a JSON body and decodes the response into dst
// (pass nil to discard it).
func (c *Client) Put(ctx context.Context, path string, body, dst any) error {
	req, err := c.NewRequest(ctx, http.MethodPut, path, nil, body)
	if err != nil {
		return err
	}
	return c.do(req, dst)
}

// Delete issues a DELETE against path, discarding any response body.
func (c *Client) Delete(ctx context.Context, path string) error {
	req, err := c.NewRequest(ctx, http.MethodDelete, path, nil, nil)
	if err != nil {
		return err
	}
	return c.do(req, nil)
}
