package audit

import (
	"bytes"
	"encoding/json"
	"strings"
	"sync"
	"testing"
)

func TestLogToolCall(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf)

	logger.LogToolCall(ToolCallEvent{
		Tool:       "start_server",
		RequestID:  "req-1",
		Arguments:  map[string]any{"server_name": "lobby"},
		Decision:   "allow",
		Rule:       -1,
		Outcome:    OutcomeOK,
		DurationMs: 12,
	})

	var event map[string]any
	if err := json.NewDecoder(&buf).Decode(&event); err != nil {
		t.Fatalf("failed to decode log output: %v", err)
	}

	if event["event"] != "tool_call" {
		t.Errorf("event = %q, want %q", event["event"], "tool_call")
	}
	if event["tool"] != "start_server" {
		t.Errorf("tool = %q, want %q", event["tool"], "start_server")
	}
	if event["decision"] != "allow" {
		t.Errorf("decision = %q, want %q", event["decision"], "allow")
	}
	if event["outcome"] != OutcomeOK {
		t.Errorf("outcome = %q, want %q", event["outcome"], OutcomeOK)
	}
	if event["request_id"] != "req-1" {
		t.Errorf("request_id = %q, want %q", event["request_id"], "req-1")
	}
	if event["duration_ms"] != float64(12) {
		t.Errorf("duration_ms = %v, want 12", event["duration_ms"])
	}
	if _, ok := event["timestamp"]; !ok {
		t.Error("missing timestamp field")
	}
	if _, ok := event["error"]; ok {
		t.Error("error field should be omitted on success")
	}
}

func TestLogDenied(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf)

	logger.LogToolCall(ToolCallEvent{
		Tool:      "stop_server",
		Arguments: map[string]any{"server_name": "prod-1"},
		Decision:  "deny",
		Rule:      0,
		Reason:    "denied by rule 0",
		Outcome:   OutcomeDenied,
	})

	var event map[string]any
	if err := json.NewDecoder(&buf).Decode(&event); err != nil {
		t.Fatalf("failed to decode log output: %v", err)
	}
	if event["decision"] != "deny" {
		t.Errorf("decision = %q, want %q", event["decision"], "deny")
	}
	if event["reason"] != "denied by rule 0" {
		t.Errorf("reason = %q, want %q", event["reason"], "denied by rule 0")
	}
	if event["outcome"] != OutcomeDenied {
		t.Errorf("outcome = %q, want %q", event["outcome"], OutcomeDenied)
	}
}

func TestLogStartupShutdown(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf)

	logger.LogStartup("http://127.0.0.1:8080", "/etc/mcga.yaml", 13)
	logger.LogShutdown("stdin closed")

	dec := json.NewDecoder(&buf)
	var start, stop map[string]any
	if err := dec.Decode(&start); err != nil {
		t.Fatalf("failed to decode startup: %v", err)
	}
	if err := dec.Decode(&stop); err != nil {
		t.Fatalf("failed to decode shutdown: %v", err)
	}
	if start["event"] != "startup" || start["upstream"] != "http://127.0.0.1:8080" {
		t.Errorf("startup = %v", start)
	}
	if start["config_file"] != "/etc/mcga.yaml" || start["tools"] != float64(13) {
		t.Errorf("startup = %v", start)
	}
	if stop["event"] != "shutdown" || stop["reason"] != "stdin closed" {
		t.Errorf("shutdown = %v", stop)
	}
}

func TestRedactSecrets(t *testing.T) {
	args := map[string]any{
		"server_name": "lobby",
		"key":         "rcon.password",
		"value":       "hunter2",
	}
	got := RedactSecrets(args)
	if got["value"] != redacted {
		t.Errorf("value = %v, want redacted", got["value"])
	}
	if got["server_name"] != "lobby" || got["key"] != "rcon.password" {
		t.Errorf("non-secret values were modified: %v", got)
	}
	if args["value"] != "hunter2" {
		t.Error("original map was modified")
	}

	got = RedactSecrets(map[string]any{"key": "motd", "value": "hello", "api_token": "abc"})
	if got["value"] != "hello" {
		t.Errorf("value = %v, want unchanged", got["value"])
	}
	if got["api_token"] != redacted {
		t.Errorf("api_token = %v, want redacted", got["api_token"])
	}
}

func TestConcurrentWrites(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			logger.LogToolCall(ToolCallEvent{Tool: "list_servers", Decision: "allow", Rule: -1, Outcome: OutcomeOK})
		}()
	}
	wg.Wait()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 20 {
		t.Fatalf("lines = %d, want 20", len(lines))
	}
	for _, line := range lines {
		if !json.Valid([]byte(line)) {
			t.Errorf("invalid line: %s", line)
		}
	}
}
