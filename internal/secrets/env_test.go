package secrets

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"testing"

	"github.com/bdubs00/mcga-mcp/internal/config"
)

func TestEnvProviderFromEnv(t *testing.T) {
	t.Setenv("TEST_SECRET_VALUE", "hunter2")

	p := NewEnvProvider()
	val, err := p.Fetch("TEST_SECRET_VALUE")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if val != "hunter2" {
		t.Errorf("got %q, want %q", val, "hunter2")
	}
}

func TestEnvProviderMissing(t *testing.T) {
	os.Unsetenv("NONEXISTENT_VAR")
	p := NewEnvProvider()
	_, err := p.Fetch("NONEXISTENT_VAR")
	if err == nil {
		t.Fatal("expected error for missing env var")
	}
}

func TestResolveWithProviders(t *testing.T) {
	t.Setenv("MY_TOKEN", "abc123")

	providers := map[string]Provider{
		"env": NewEnvProvider(),
	}

	token, err := ResolveValue("env:MY_TOKEN", providers)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if token != "abc123" {
		t.Errorf("token = %q, want %q", token, "abc123")
	}
}

func TestResolveValueLiteral(t *testing.T) {
	tests := []string{"plain-token", "Bearer abc", "weird:prefix:token", ""}
	for _, ref := range tests {
		t.Run(ref, func(t *testing.T) {
			got, err := ResolveValue(ref, map[string]Provider{})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != ref {
				t.Errorf("got %q, want %q", got, ref)
			}
		})
	}
}

func TestResolveUnregisteredProvider(t *testing.T) {
	_, err := ResolveValue("vault:secret/mcga#token", map[string]Provider{})
	var unknown *UnknownProviderError
	if !errors.As(err, &unknown) {
		t.Fatalf("expected UnknownProviderError, got %v", err)
	}
	if unknown.Prefix != "vault" {
		t.Errorf("prefix = %q, want %q", unknown.Prefix, "vault")
	}
}

func TestResolveFetchError(t *testing.T) {
	os.Unsetenv("MCGA_MISSING_TOKEN")
	providers := map[string]Provider{"env": NewEnvProvider()}
	_, err := ResolveValue("env:MCGA_MISSING_TOKEN", providers)
	var fetchErr *FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("expected FetchError, got %v", err)
	}
	if errors.Unwrap(fetchErr) == nil {
		t.Error("FetchError should wrap the provider error")
	}
}

func TestEnvProviderBlank(t *testing.T) {
	p := &EnvProvider{lookup: func(string) (string, bool) { return "  ", true }}
	if _, err := p.Fetch("BLANK"); err == nil {
		t.Fatal("expected error for blank env var")
	}
	if _, err := p.Fetch(" "); err == nil {
		t.Fatal("expected error for empty name")
	}
}

func TestUpstreamTokenFromEnv(t *testing.T) {
	t.Setenv("MCGA_TEST_TOKEN", "tok-123")
	cfg := &config.Config{Upstream: config.Upstream{Token: "env:MCGA_TEST_TOKEN"}}

	token, err := UpstreamToken(context.Background(), cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if token != "tok-123" {
		t.Errorf("token = %q, want %q", token, "tok-123")
	}
}
