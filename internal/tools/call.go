package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/bdubs00/mcga-mcp/internal/upstream"
)

// Call carries one tool invocation: its arguments, the upstream client and
// the request id used for correlation.
type Call struct {
	Tool      string
	RequestID string

	args   map[string]any
	client *upstream.Client
	now    func() time.Time
}

// String returns a required string argument. Empty strings are accepted.
func (c *Call) String(name string) (string, error) {
	v, ok := c.args[name]
	if !ok || v == nil {
		return "", fmt.Errorf("missing required argument %q", name)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("argument %q must be a string", name)
	}
	return s, nil
}

// OptionalString returns a string argument or "" when it is absent.
func (c *Call) OptionalString(name string) string {
	s, _ := c.args[name].(string)
	return strings.TrimSpace(s)
}

// Server returns the non-blank server_name argument.
func (c *Call) Server() (string, error) {
	name, err := c.String(ParamServerName)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(name) == "" {
		return "", fmt.Errorf("argument %q must not be blank", ParamServerName)
	}
	return name, nil
}

// Int returns a required integral argument. JSON numbers arrive as float64;
// fractional values are rejected.
func (c *Call) Int(name string) (int64, error) {
	v, ok := c.args[name]
	if !ok || v == nil {
		return 0, fmt.Errorf("missing required argument %q", name)
	}
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case int:
		return int64(n), nil
	case int64:
		return n, nil
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, fmt.Errorf("argument %q must be an integer, got %s", name, n)
		}
		return i, nil
	default:
		return 0, fmt.Errorf("argument %q must be an integer", name)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) || math.Abs(f) > 1<<53 {
		return 0, fmt.Errorf("argument %q must be an integer, got %v", name, f)
	}
	return int64(f), nil
}

// fetch performs the round trip and normalizes the envelope. raw is the
// decoded body before unwrapping; it is nil when the transport failed.
func (c *Call) fetch(ctx context.Context, method, path string, query url.Values) (payload, raw json.RawMessage, err error) {
	raw, err = c.client.Do(ctx, upstream.Request{
		Method: method,
		Path:   path,
		Query:  query,
		ID:     c.RequestID,
	})
	if err != nil {
		return nil, nil, err
	}
	payload, err = upstream.Normalize(raw)
	if err != nil {
		return nil, raw, err
	}
	return payload, raw, nil
}

func itoa(n int64) string {
	return strconv.FormatInt(n, 10)
}
