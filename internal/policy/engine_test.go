package policy

import (
	"strings"
	"testing"

	"github.com/bdubs00/mcga-mcp/internal/config"
)

func TestEvaluateDefaultDeny(t *testing.T) {
	engine := NewEngine(config.ToolPolicy{Default: "deny"})
	d := engine.Evaluate("stop_server", map[string]any{"server_name": "lobby"})
	if d.Allow {
		t.Error("expected deny for unmatched tool")
	}
	if d.MatchedRule != -1 {
		t.Errorf("matched_rule = %d, want -1", d.MatchedRule)
	}
}

func TestEvaluateEmptyDefaultAllows(t *testing.T) {
	engine := NewEngine(config.ToolPolicy{})
	if d := engine.Evaluate("list_servers", nil); !d.Allow {
		t.Errorf("expected allow, got %+v", d)
	}
}

func TestEvaluateToolGlob(t *testing.T) {
	engine := NewEngine(config.ToolPolicy{
		Default: "deny",
		Rules: []config.Rule{
			{Tool: "list_*", Allow: true},
			{Tool: "get_*", Allow: true},
		},
	})
	for _, tool := range []string{"list_servers", "list_server_properties", "get_chest_info"} {
		if d := engine.Evaluate(tool, nil); !d.Allow {
			t.Errorf("%s: expected allow", tool)
		}
	}
	if d := engine.Evaluate("stop_server", nil); d.Allow {
		t.Error("stop_server: expected deny")
	}
	d := engine.Evaluate("get_system_overhead", nil)
	if d.MatchedRule != 1 {
		t.Errorf("matched_rule = %d, want 1", d.MatchedRule)
	}
}

func TestEvaluateWhenClauseMatches(t *testing.T) {
	engine := NewEngine(config.ToolPolicy{
		Default: "allow",
		Rules: []config.Rule{
			{Tool: "stop_server", Allow: false, When: map[string]string{"server_name": "prod-*"}},
		},
	})

	d := engine.Evaluate("stop_server", map[string]any{"server_name": "prod-survival"})
	if d.Allow {
		t.Error("expected deny for production server")
	}
	if !strings.Contains(d.Denial("stop_server"), "denied by rule 0") {
		t.Errorf("denial = %q", d.Denial("stop_server"))
	}

	d = engine.Evaluate("stop_server", map[string]any{"server_name": "test-survival"})
	if !d.Allow {
		t.Error("expected allow for non-matching server")
	}

	d = engine.Evaluate("stop_server", map[string]any{})
	if !d.Allow {
		t.Error("a when clause on a missing argument should not match")
	}
}

func TestEvaluateFirstMatchWins(t *testing.T) {
	engine := NewEngine(config.ToolPolicy{
		Default: "deny",
		Rules: []config.Rule{
			{Tool: "send_command*", Allow: false, When: map[string]string{"command": "stop*"}},
			{Tool: "send_command*", Allow: true},
		},
	})

	d := engine.Evaluate("send_command_rcon", map[string]any{"server_name": "lobby", "command": "stop"})
	if d.Allow {
		t.Error("expected deny from first matching rule")
	}
	if d.MatchedRule != 0 {
		t.Errorf("matched_rule = %d, want 0", d.MatchedRule)
	}

	d = engine.Evaluate("send_command_rcon", map[string]any{"server_name": "lobby", "command": "list"})
	if !d.Allow {
		t.Error("expected allow from second rule")
	}
	if d.MatchedRule != 1 {
		t.Errorf("matched_rule = %d, want 1", d.MatchedRule)
	}
}

func TestEvaluateNumericArgument(t *testing.T) {
	engine := NewEngine(config.ToolPolicy{
		Default: "allow",
		Rules: []config.Rule{
			{Tool: "get_chest_info", Allow: false, When: map[string]string{"y1": "-*"}},
		},
	})
	if d := engine.Evaluate("get_chest_info", map[string]any{"y1": float64(-64)}); d.Allow {
		t.Error("expected deny for negative y1")
	}
	if d := engine.Evaluate("get_chest_info", map[string]any{"y1": float64(64)}); !d.Allow {
		t.Error("expected allow for positive y1")
	}
}

func TestEvaluateMultipleWhenClauses(t *testing.T) {
	engine := NewEngine(config.ToolPolicy{
		Default: "deny",
		Rules: []config.Rule{
			{
				Tool:  "update_server_property",
				Allow: true,
				When:  map[string]string{"server_name": "test-*", "key": "motd"},
			},
		},
	})

	d := engine.Evaluate("update_server_property", map[string]any{"server_name": "test-1", "key": "motd", "value": "hi"})
	if !d.Allow {
		t.Error("expected allow when all when clauses match")
	}

	d = engine.Evaluate("update_server_property", map[string]any{"server_name": "test-1", "key": "pvp", "value": "true"})
	if d.Allow {
		t.Error("expected deny when one when clause fails")
	}
}

func TestExposed(t *testing.T) {
	engine := NewEngine(config.ToolPolicy{
		Default: "deny",
		Rules: []config.Rule{
			{Tool: "stop_server", Allow: false},
			{Tool: "*_server", Allow: true},
			{Tool: "load_map", Allow: false, When: map[string]string{"server_name": "prod-*"}},
		},
	})
	tests := []struct {
		tool string
		want bool
	}{
		{"start_server", true},
		{"stop_server", false},
		{"load_map", false},
		{"list_servers", false},
	}
	for _, tt := range tests {
		if got := engine.Exposed(tt.tool); got != tt.want {
			t.Errorf("Exposed(%q) = %v, want %v", tt.tool, got, tt.want)
		}
	}

	open := NewEngine(config.ToolPolicy{
		Default: "allow",
		Rules:   []config.Rule{{Tool: "load_map", Allow: false, When: map[string]string{"server_name": "prod-*"}}},
	})
	if !open.Exposed("load_map") {
		t.Error("conditionally denied tool should stay exposed under default allow")
	}
}
