package policy

import (
	"testing"

	"github.com/bdubs00/mcga-mcp/internal/config"
)

func TestGlobMatch(t *testing.T) {
	tests := []struct {
		pattern string
		value   string
		want    bool
	}{
		{"list_*", "list_servers", true},
		{"list_*", "list_server_properties", true},
		{"list_*", "get_server_status", false},
		{"*_server", "start_server", true},
		{"*_server", "stop_server", true},
		{"*_server", "backup_server_now", false},
		{"prod-*", "prod-survival", true},
		{"prod-*", "test-survival", false},
		{"{start,stop}_server", "stop_server", true},
		{"send_command*", "send_command_rcon", true},
		{"exact-match", "exact-match", true},
		{"exact-match", "not-a-match", false},
		{"[unclosed", "[unclosed", false},
	}
	for _, tt := range tests {
		t.Run(tt.pattern+"_"+tt.value, func(t *testing.T) {
			got := GlobMatch(tt.pattern, tt.value)
			if got != tt.want {
				t.Errorf("GlobMatch(%q, %q) = %v, want %v", tt.pattern, tt.value, got, tt.want)
			}
		})
	}
}

func TestCheckPatterns(t *testing.T) {
	ok := config.ToolPolicy{Rules: []config.Rule{
		{Tool: "stop_*", When: map[string]string{"server_name": "prod-*"}},
	}}
	if err := CheckPatterns(ok); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	badTool := config.ToolPolicy{Rules: []config.Rule{{Tool: "[unclosed"}}}
	if err := CheckPatterns(badTool); err == nil {
		t.Error("expected error for malformed tool pattern")
	}

	badWhen := config.ToolPolicy{Rules: []config.Rule{
		{Tool: "load_map", When: map[string]string{"map_name": "[x"}},
	}}
	if err := CheckPatterns(badWhen); err == nil {
		t.Error("expected error for malformed when pattern")
	}
}
