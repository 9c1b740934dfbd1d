// ABOUTME: Shared HTTP client for the Stockpilot API with transparent auth
// ABOUTME: Attaches bearer tokens and recovers from 401s via one bound refresh + retry

package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/stockpilot/stockpilot-go/models"
)

// Binding carries the three callbacks supplied by the session owner at
// startup. The transport layer holds only these function pointers and never
// depends on the session package directly.
type Binding struct {
	GetAccessToken func() string
	SetAccessToken func(token string)
	Refresh        func(ctx context.Context) (string, error)
}

// Client is the single shared HTTP client for all backend calls.
// Requests carry the in-memory access token unless marked skipAuth, and
// cookies (including the server-held httpOnly refresh token) ride along
// through the attached jar.
type Client struct {
	baseURL    string
	httpClient *http.Client

	mu   sync.RWMutex
	auth Binding
}

// New creates a client for the given base URL. The jar may be nil for
// callers that manage cookies themselves (tests mostly); timeout zero
// means the 30s default.
func New(baseURL string, jar http.CookieJar, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
			Jar:     jar,
		},
	}
}

// BindAuth installs the session callbacks. Until bound, requests go out
// without credentials and 401 responses are returned as-is.
func (c *Client) BindAuth(b Binding) {
	c.mu.Lock()
	c.auth = b
	c.mu.Unlock()
}

func (c *Client) binding() Binding {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.auth
}

// BaseURL returns the configured API base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

type requestOptions struct {
	skipAuth bool
	headers  http.Header
}

// RequestOption customizes a single request.
type RequestOption func(*requestOptions)

// SkipAuth marks a request as exempt from both the bearer header and the
// 401 refresh+retry flow. Used by the login, refresh, and logout calls
// themselves, which must never recurse into the interceptor.
func SkipAuth() RequestOption {
	return func(o *requestOptions) { o.skipAuth = true }
}

// WithHeader adds a header to the request (e.g. the X-CSRF-TOKEN pair for
// refresh and logout).
func WithHeader(key, value string) RequestOption {
	return func(o *requestOptions) {
		if o.headers == nil {
			o.headers = http.Header{}
		}
		o.headers.Set(key, value)
	}
}

// Get performs a GET request and decodes the JSON response into out.
func (c *Client) Get(ctx context.Context, path string, out any, opts ...RequestOption) error {
	return c.Do(ctx, http.MethodGet, path, nil, out, opts...)
}

// Post performs a POST request with a JSON body and decodes the response into out.
func (c *Client) Post(ctx context.Context, path string, body, out any, opts ...RequestOption) error {
	return c.Do(ctx, http.MethodPost, path, body, out, opts...)
}

// Do performs an API request. body (if non-nil) is sent as JSON; out (if
// non-nil) receives the decoded JSON response.
//
// On a 401 for a non-skipAuth request, Do calls the bound refresh exactly
// once and resends the identical request with the new token. The refresh
// itself is single-flight inside the session manager, so any number of
// concurrent 401s collapse into one network call and share its outcome.
// A request is never retried twice.
func (c *Client) Do(ctx context.Context, method, path string, body, out any, opts ...RequestOption) error {
	var o requestOptions
	for _, opt := range opts {
		opt(&o)
	}

	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
	}

	auth := c.binding()

	token := ""
	if !o.skipAuth && auth.GetAccessToken != nil {
		token = auth.GetAccessToken()
	}

	resp, err := c.send(ctx, method, path, payload, token, o.headers)
	if err != nil {
		return err
	}

	if resp.StatusCode < 300 {
		return decodeBody(resp, out)
	}

	apiErr := decodeError(resp)

	// 401 recovery: only for authenticated requests, only once.
	if resp.StatusCode != http.StatusUnauthorized || o.skipAuth || auth.Refresh == nil {
		return apiErr
	}

	slog.Debug("Request unauthorized, attempting token refresh", "method", method, "path", path)

	newToken, refreshErr := auth.Refresh(ctx)
	if refreshErr != nil || newToken == "" {
		slog.Debug("Token refresh failed, surfacing original 401", "path", path, "error", refreshErr)
		return &UnauthorizedError{Err: apiErr}
	}

	retryResp, err := c.send(ctx, method, path, payload, newToken, o.headers)
	if err != nil {
		return err
	}

	if retryResp.StatusCode < 300 {
		slog.Debug("Request succeeded after refresh", "method", method, "path", path)
		return decodeBody(retryResp, out)
	}

	retryErr := decodeError(retryResp)
	if retryResp.StatusCode == http.StatusUnauthorized {
		return &UnauthorizedError{RetryExhausted: true, Err: retryErr}
	}
	return retryErr
}

// send builds and executes a single request attempt.
func (c *Client) send(ctx context.Context, method, path string, payload []byte, token string, headers http.Header) (*http.Response, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for key, values := range headers {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() == context.Canceled {
			return nil, fmt.Errorf("request canceled")
		}
		if ctx.Err() == context.DeadlineExceeded {
			return nil, fmt.Errorf("request timed out")
		}
		return nil, fmt.Errorf("cannot connect to backend at %s: %w", c.baseURL, err)
	}

	return resp, nil
}

// decodeBody decodes a success response into out and closes the body.
func decodeBody(resp *http.Response, out any) error {
	defer resp.Body.Close()

	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("invalid response from backend: %w", err)
	}
	return nil
}

// decodeError reads an error payload into an APIError and closes the body.
func decodeError(resp *http.Response) *APIError {
	defer resp.Body.Close()

	var errResp models.ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&errResp); err != nil {
		return &APIError{Status: resp.StatusCode}
	}
	return &APIError{Status: resp.StatusCode, Message: errResp.Error}
}
