package audit

import (
	"encoding/json"
	"io"
	"strings"
	"sync"
	"time"
)

// Logger writes structured JSON audit events, one per line.
type Logger struct {
	mu     sync.Mutex
	writer io.Writer
}

// New creates a Logger that writes to the given writer.
func New(w io.Writer) *Logger {
	return &Logger{writer: w}
}

// Outcomes recorded for a tool call.
const (
	OutcomeOK     = "ok"
	OutcomeError  = "error"
	OutcomeDenied = "denied"
)

// ToolCallEvent represents a tool invocation audit record.
type ToolCallEvent struct {
	Tool       string         `json:"tool"`
	RequestID  string         `json:"request_id,omitempty"`
	Arguments  map[string]any `json:"arguments"`
	Decision   string         `json:"decision"`
	Rule       int            `json:"matched_rule"`
	Reason     string         `json:"reason,omitempty"`
	Outcome    string         `json:"outcome"`
	Error      string         `json:"error,omitempty"`
	DurationMs int64          `json:"duration_ms,omitempty"`
}

// LogToolCall records a tool invocation event. Arguments are redacted
// before they are written.
func (l *Logger) LogToolCall(e ToolCallEvent) {
	record := map[string]any{
		"timestamp":    time.Now().UTC().Format(time.RFC3339),
		"event":        "tool_call",
		"tool":         e.Tool,
		"arguments":    RedactSecrets(e.Arguments),
		"decision":     e.Decision,
		"matched_rule": e.Rule,
		"outcome":      e.Outcome,
	}
	if e.RequestID != "" {
		record["request_id"] = e.RequestID
	}
	if e.Reason != "" {
		record["reason"] = e.Reason
	}
	if e.Error != "" {
		record["error"] = e.Error
	}
	if e.DurationMs > 0 {
		record["duration_ms"] = e.DurationMs
	}
	l.write(record)
}

// LogStartup records a server startup event.
func (l *Logger) LogStartup(baseURL, configPath string, tools int) {
	record := map[string]any{
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"event":     "startup",
		"upstream":  baseURL,
		"tools":     tools,
	}
	if configPath != "" {
		record["config_file"] = configPath
	}
	l.write(record)
}

// LogShutdown records a server shutdown event.
func (l *Logger) LogShutdown(reason string) {
	l.write(map[string]any{
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"event":     "shutdown",
		"reason":    reason,
	})
}

func (l *Logger) write(record map[string]any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	data, err := json.Marshal(record)
	if err != nil {
		return
	}
	data = append(data, '\n')
	l.writer.Write(data)
}

const redacted = "[REDACTED]"

var sensitiveWords = []string{"password", "secret", "token"}

func sensitive(name string) bool {
	name = strings.ToLower(name)
	for _, w := range sensitiveWords {
		if strings.Contains(name, w) {
			return true
		}
	}
	return false
}

// RedactSecrets hides argument values that look like credentials: any
// argument whose name is sensitive, and the value of a property update
// whose key is sensitive (e.g. rcon.password). Returns a new map; does not
// modify the original.
func RedactSecrets(args map[string]any) map[string]any {
	out := make(map[string]any, len(args))
	for k, v := range args {
		if sensitive(k) {
			v = redacted
		}
		out[k] = v
	}
	if key, ok := args["key"].(string); ok && sensitive(key) {
		if _, exists := out["value"]; exists {
			out["value"] = redacted
		}
	}
	return out
}
