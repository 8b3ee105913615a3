// Package api is the REST client for the notes backend. Every endpoint
// answers with a {data, error} envelope; the client unwraps it into typed
// results or one of TransportError, ServerError and ParseError.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/nhle/notekeeper/internal/logger"
)

// apiPrefix is appended to every configured base URL.
const apiPrefix = "/api/v1"

// Options configures a Client.
type Options struct {
	// BaseURL is the backend root (e.g. http://localhost:8085).
	BaseURL string

	// NotesBaseURL and TagsBaseURL override BaseURL for the note and tag
	// endpoints. Empty means BaseURL.
	NotesBaseURL string
	TagsBaseURL  string

	// Token is sent as a Bearer token when non-empty.
	Token string

	Timeout time.Duration

	// MaxRetries bounds retries on HTTP 429. Zero disables retrying.
	MaxRetries int

	// HTTPClient replaces the default client, mainly for tests.
	HTTPClient *http.Client
}

// Client is a thin HTTP client for the notes REST API. It handles Bearer
// token authentication, the response envelope, and optional retry with
// exponential backoff on HTTP 429.
type Client struct {
	baseURL    string
	notesURL   string
	tagsURL    string
	token      string
	httpClient *http.Client
	maxRetries int
}

// envelope is the shape of every backend response.
type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error json.RawMessage `json:"error,omitempty"`
}

// NewClient creates a new API client.
func NewClient(opts Options) *Client {
	base := joinBase(opts.BaseURL)
	notes, tags := base, base
	if opts.NotesBaseURL != "" {
		notes = joinBase(opts.NotesBaseURL)
	}
	if opts.TagsBaseURL != "" {
		tags = joinBase(opts.TagsBaseURL)
	}

	hc := opts.HTTPClient
	if hc == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		hc = &http.Client{Timeout: timeout}
	}

	return &Client{
		baseURL:    base,
		notesURL:   notes,
		tagsURL:    tags,
		token:      opts.Token,
		httpClient: hc,
		maxRetries: max(opts.MaxRetries, 0),
	}
}

func joinBase(raw string) string {
	base := strings.TrimRight(raw, "/")
	if strings.HasSuffix(base, apiPrefix) {
		return base
	}
	return base + apiPrefix
}

// do is the core HTTP method: it builds the request, handles auth, 429
// backoff, and unwraps the envelope into result (which may be nil).
func (c *Client) do(
	ctx context.Context,
	method string,
	base string,
	path string,
	body interface{},
	result interface{},
) error {
	url := base + path
	log := logger.Log(ctx)

	var payload []byte
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request body: %w", err)
		}
		payload = data
	}

	requestID, ok := logger.GetRequestID(ctx)
	if !ok {
		requestID = logger.GenerateRequestID()
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		var bodyReader io.Reader
		if payload != nil {
			bodyReader = bytes.NewReader(payload)
		}

		req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
		if err != nil {
			return fmt.Errorf("creating request: %w", err)
		}

		if c.token != "" {
			req.Header.Set("Authorization", "Bearer "+c.token)
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("X-Request-ID", requestID)
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		started := time.Now()
		resp, err := c.httpClient.Do(req)
		if err != nil {
			log.Warn(ctx, "api request failed",
				zap.String("method", method), zap.String("path", path), zap.Error(err))
			return &TransportError{Method: method, Path: path, Err: err}
		}

		respBody, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			return &TransportError{Method: method, Path: path, Err: readErr}
		}

		log.Debug(ctx, "api request",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.Duration("elapsed", time.Since(started)),
		)

		if resp.StatusCode == http.StatusTooManyRequests && attempt < c.maxRetries {
			waitDuration := retryAfterDuration(resp, attempt)
			lastErr = &ServerError{
				Method: method, Path: path,
				Status: resp.StatusCode, Message: "rate limited",
			}

			select {
			case <-ctx.Done():
				return &TransportError{Method: method, Path: path, Err: ctx.Err()}
			case <-time.After(waitDuration):
				continue
			}
		}

		return decodeResponse(method, path, resp.StatusCode, respBody, result)
	}

	return fmt.Errorf("max retries (%d) exceeded: %w", c.maxRetries, lastErr)
}

// decodeResponse unwraps the {data, error} envelope.
func decodeResponse(method, path string, status int, body []byte, result interface{}) error {
	ok := status >= 200 && status < 300

	if len(bytes.TrimSpace(body)) == 0 {
		if !ok {
			return &ServerError{Method: method, Path: path, Status: status, Message: http.StatusText(status)}
		}
		return nil
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		if !ok {
			return &ServerError{Method: method, Path: path, Status: status, Message: truncate(string(body), 200)}
		}
		return &ParseError{Method: method, Path: path, Body: truncate(string(body), 200), Err: err}
	}

	if msg := errorMessage(env.Error); msg != "" {
		if ok {
			status = http.StatusBadRequest
		}
		return &ServerError{Method: method, Path: path, Status: status, Message: msg}
	}
	if !ok {
		return &ServerError{Method: method, Path: path, Status: status, Message: http.StatusText(status)}
	}

	if result == nil || isNull(env.Data) {
		return nil
	}
	if err := json.Unmarshal(env.Data, result); err != nil {
		return &ParseError{Method: method, Path: path, Body: truncate(string(env.Data), 200), Err: err}
	}
	return nil
}

// errorMessage reads the envelope error field, which is usually a string
// but may be an object.
func errorMessage(raw json.RawMessage) string {
	if isNull(raw) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var obj struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil && obj.Message != "" {
		return obj.Message
	}
	return string(raw)
}

// decodeEntity decodes an entity from a mutation's data field. Mutations
// may answer with a status string, a count or nothing at all; only a JSON
// object is decoded and ok is false otherwise.
func decodeEntity(method, path string, raw json.RawMessage, v interface{}) (ok bool, err error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return false, nil
	}
	if err := json.Unmarshal(trimmed, v); err != nil {
		return false, &ParseError{Method: method, Path: path, Body: truncate(string(trimmed), 200), Err: err}
	}
	return true, nil
}

func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// retryAfterDuration reads the Retry-After header and computes a wait
// duration. Falls back to exponential backoff if the header is missing.
func retryAfterDuration(resp *http.Response, attempt int) time.Duration {
	if header := resp.Header.Get("Retry-After"); header != "" {
		if seconds, err := strconv.Atoi(header); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}

	// Exponential backoff: 1s, 2s, 4s, ...
	backoff := time.Duration(1<<uint(attempt)) * time.Second
	if backoff > 30*time.Second {
		backoff = 30 * time.Second
	}
	return backoff
}
