package portal

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"maestro/internal/services"
)

// HTTPDoer describes the HTTP client used by the portal client.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// TokenSource supplies the current bearer token, or "" when the caller
// is not authenticated yet.
type TokenSource func() string

// Client talks to the mentor portal backend.
type Client struct {
	baseURL    string
	httpClient HTTPDoer
	token      TokenSource
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client HTTPDoer) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithTokenSource installs the bearer token supplier. Requests carry an
// Authorization header only while the source returns a non-empty token.
func WithTokenSource(source TokenSource) Option {
	return func(c *Client) {
		if source != nil {
			c.token = source
		}
	}
}

// New creates a portal client rooted at baseURL.
func New(baseURL string, timeout time.Duration, opts ...Option) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, services.Wrap(services.ErrValidation, "portal", "new", "base url required", nil)
	}
	parsed, err := url.Parse(baseURL)
	if err != nil || !parsed.IsAbs() || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return nil, services.Wrap(services.ErrValidation, "portal", "new", fmt.Sprintf("base url %q must be absolute http(s)", baseURL), nil)
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	client := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		token:      func() string { return "" },
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// BaseURL returns the normalized backend root.
func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, services.Wrap(services.ErrTransport, "portal", "request", "build request", err)
	}
	req.Header.Set("Accept", "application/json")
	if token := c.token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	requestID, ok := services.RequestIDFromContext(ctx)
	if !ok {
		requestID = uuid.NewString()
	}
	req.Header.Set("X-Request-ID", requestID)
	return req, nil
}

// getJSON issues a GET and decodes the response body into out.
func (c *Client) getJSON(ctx context.Context, operation, path string, out any) error {
	req, err := c.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	return c.doJSON(operation, req, out)
}

// postJSON issues a POST with a JSON body and decodes the response into out.
func (c *Client) postJSON(ctx context.Context, operation, path string, body, out any) error {
	return c.sendJSON(ctx, http.MethodPost, operation, path, body, out)
}

// patchJSON issues a PATCH with a JSON body and decodes the response into out.
func (c *Client) patchJSON(ctx context.Context, operation, path string, body, out any) error {
	return c.sendJSON(ctx, http.MethodPatch, operation, path, body, out)
}

func (c *Client) sendJSON(ctx context.Context, method, operation, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return services.Wrap(services.ErrValidation, "portal", operation, "encode request body", err)
		}
		reader = bytes.NewReader(encoded)
	}
	req, err := c.newRequest(ctx, method, path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.doJSON(operation, req, out)
}

func (c *Client) doJSON(operation string, req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		marker := services.ErrTransport
		if errors.Is(err, context.DeadlineExceeded) {
			marker = services.ErrTimeout
		}
		return services.Wrap(marker, "portal", operation, "execute request", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return c.statusError(operation, resp)
	}
	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := decodeBody(resp.Body, out); err != nil {
		return services.Wrap(services.ErrValidation, "portal", operation, "decode response", err)
	}
	return nil
}

// statusError maps an HTTP error response to a typed service error,
// preserving the backend's detail message when one is present.
func (c *Client) statusError(operation string, resp *http.Response) error {
	detail := errorDetail(resp.Body)
	message := fmt.Sprintf("backend returned %d", resp.StatusCode)
	if detail != "" {
		message = fmt.Sprintf("backend returned %d: %s", resp.StatusCode, detail)
	}
	marker := services.ErrTransport
	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		marker = services.ErrAuth
	case resp.StatusCode == http.StatusNotFound:
		marker = services.ErrNotFound
	case resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnprocessableEntity:
		marker = services.ErrValidation
	case resp.StatusCode >= http.StatusInternalServerError:
		marker = services.ErrTransient
	}
	return services.Wrap(marker, "portal", operation, message, nil)
}

// errorDetail extracts the human-readable message from an error body.
// The backend emits {"detail": "..."}; some handlers use {"message"}.
func errorDetail(body io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(body, 8<<10))
	if err != nil || len(raw) == 0 {
		return ""
	}
	var envelope struct {
		Detail  json.RawMessage `json:"detail"`
		Message string          `json:"message"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return strings.TrimSpace(string(raw))
	}
	if len(envelope.Detail) > 0 {
		var text string
		if err := json.Unmarshal(envelope.Detail, &text); err == nil {
			return text
		}
		return string(envelope.Detail)
	}
	return envelope.Message
}
