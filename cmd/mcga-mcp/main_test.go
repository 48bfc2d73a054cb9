package main

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"debug", slog.LevelDebug, false},
		{"INFO", slog.LevelInfo, false},
		{"warn", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"chatty", 0, true},
	}
	for _, tt := range tests {
		got, err := parseLevel(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestDescribeToken(t *testing.T) {
	tests := map[string]string{
		"":                            "none",
		"env:SERVER_MANAGEMENT_TOKEN": "env:SERVER_MANAGEMENT_TOKEN",
		"vault:secret/mcga#token":     "vault:secret/mcga#token",
		"hunter2":                     "literal",
	}
	for in, want := range tests {
		if got := describeToken(in); got != want {
			t.Errorf("describeToken(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestPrintCatalog(t *testing.T) {
	var buf bytes.Buffer
	printCatalog(&buf)
	out := buf.String()
	for _, want := range []string{
		"list_servers (read)",
		"stop_server (write)",
		"server_name string, required",
		"file_name string, optional",
		"x1 integer, required",
		"resource server://stats",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("catalog missing %q\n%s", want, out)
		}
	}
}
