package secrets

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bdubs00/mcga-mcp/internal/config"
)

// UpstreamToken resolves the configured upstream token reference once. Vault
// is only contacted when a vault section is configured.
func UpstreamToken(ctx context.Context, cfg *config.Config, logger *slog.Logger) (string, error) {
	providers := map[string]Provider{
		"env": NewEnvProvider(),
	}
	if cfg.Vault != nil {
		vp, err := NewVaultProvider(ctx, *cfg.Vault, logger)
		if err != nil {
			return "", err
		}
		providers["vault"] = vp
	}

	token, err := ResolveValue(cfg.Upstream.Token, providers)
	if err != nil {
		return "", fmt.Errorf("resolving upstream token: %w", err)
	}
	if token == "" {
		logger.Warn("no upstream token configured; requests will be sent without Authorization")
	}
	return token, nil
}
