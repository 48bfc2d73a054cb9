package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// maxBodyBytes bounds how much of a response is read.
const maxBodyBytes = 8 << 20

// Options configures a Client.
type Options struct {
	BaseURL string
	Token   string
	Timeout time.Duration
	// RequestsPerSecond throttles outbound calls; zero means unlimited.
	RequestsPerSecond float64
	Logger            *slog.Logger
	// HTTPClient overrides the default client; Timeout is ignored when set.
	HTTPClient *http.Client
}

// Request is a single call to the server-management API.
type Request struct {
	Method string
	Path   string // relative to the base URL, e.g. "/server/"
	Query  url.Values
	Body   any // JSON-encoded when non-nil
	// ID is sent as X-Request-ID; one is generated when empty.
	ID string
}

// Client performs one HTTP round trip per call against the upstream API.
// It holds no mutable state and is safe for concurrent use.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	limiter *rate.Limiter
	logger  *slog.Logger
}

// New creates a Client. The base URL and token are fixed for its lifetime.
func New(opts Options) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("parsing base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("base url %q must be absolute", opts.BaseURL)
	}

	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: opts.Timeout}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	c := &Client{
		baseURL: base,
		token:   opts.Token,
		http:    hc,
		logger:  logger,
	}
	if opts.RequestsPerSecond > 0 {
		burst := int(opts.RequestsPerSecond)
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), burst)
	}
	return c, nil
}

// ServerPath builds "/server/{name}/{action}" with the name path-escaped.
func ServerPath(name, action string) string {
	p := "/server/" + url.PathEscape(name)
	if action != "" {
		p += "/" + action
	}
	return p
}

// Do sends the request and returns the decoded JSON body. Every failure is
// reported as a *TransportError.
func (c *Client) Do(ctx context.Context, r Request) (json.RawMessage, error) {
	op := r.Method + " " + r.Path

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, &TransportError{Op: op, Message: "waiting for rate limiter", Err: err}
		}
	}

	target := c.baseURL + r.Path
	if len(r.Query) > 0 {
		target += "?" + r.Query.Encode()
	}

	var body io.Reader
	if r.Body != nil {
		data, err := json.Marshal(r.Body)
		if err != nil {
			return nil, &TransportError{Op: op, Message: "encoding request body", Err: err}
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, r.Method, target, body)
	if err != nil {
		return nil, &TransportError{Op: op, Message: "building request", Err: err}
	}

	id := r.ID
	if id == "" {
		id = uuid.NewString()
	}
	if c.token != "" {
		req.Header.Set("Authorization", c.token)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", id)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug("upstream request failed", "op", op, "request_id", id, "error", err)
		return nil, &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &TransportError{Op: op, Message: "reading response body", Err: err}
	}

	c.logger.Debug("upstream request",
		"op", op,
		"status", resp.StatusCode,
		"bytes", len(data),
		"duration", time.Since(start),
		"request_id", id,
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &TransportError{
			Op:      op,
			Message: fmt.Sprintf("unexpected status %d: %s", resp.StatusCode, snippet(data)),
		}
	}

	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, &TransportError{Op: op, Message: "empty response body"}
	}
	if !json.Valid(data) {
		return nil, &TransportError{Op: op, Message: "decoding response: invalid JSON: " + snippet(data)}
	}
	return json.RawMessage(data), nil
}

// snippet shortens a body for inclusion in error messages.
func snippet(b []byte) string {
	const max = 200
	s := strings.TrimSpace(string(b))
	if s == "" {
		return "(empty body)"
	}
	if len(s) > max {
		return s[:max] + "..."
	}
	return s
}
