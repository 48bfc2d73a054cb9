package secrets

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"

	vaultapi "github.com/hashicorp/vault/api"
	approle "github.com/hashicorp/vault/api/auth/approle"

	"github.com/bdubs00/mcga-mcp/internal/config"
)

// VaultProvider reads the upstream token from HashiCorp Vault. It is used
// once at startup, so the login token is never renewed.
type VaultProvider struct {
	client *vaultapi.Client
	ctx    context.Context
}

// NewVaultProvider connects to Vault and logs in with the configured method.
func NewVaultProvider(ctx context.Context, cfg config.VaultConfig, logger *slog.Logger) (*VaultProvider, error) {
	vaultCfg := vaultapi.DefaultConfig()
	vaultCfg.Address = cfg.Address

	hc, err := vaultHTTPClient(cfg.TLS, logger, cfg.Address)
	if err != nil {
		return nil, err
	}
	if hc != nil {
		vaultCfg.HttpClient = hc
	}

	client, err := vaultapi.NewClient(vaultCfg)
	if err != nil {
		return nil, fmt.Errorf("creating vault client: %w", err)
	}
	if err := login(ctx, client, cfg.Auth); err != nil {
		return nil, fmt.Errorf("vault authentication: %w", err)
	}
	logger.Debug("vault login succeeded", "address", cfg.Address, "method", cfg.Auth.Method)

	return &VaultProvider{client: client, ctx: ctx}, nil
}

// vaultHTTPClient returns nil when the default transport will do.
func vaultHTTPClient(t config.TLSConfig, logger *slog.Logger, address string) (*http.Client, error) {
	if t.CACert == "" && !t.SkipVerify {
		return nil, nil
	}
	tlsCfg := &tls.Config{InsecureSkipVerify: t.SkipVerify}
	if t.SkipVerify {
		logger.Warn("vault TLS verification disabled", "address", address)
	}
	if t.CACert != "" {
		pem, err := os.ReadFile(t.CACert)
		if err != nil {
			return nil, fmt.Errorf("reading vault CA cert: %w", err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(pem) {
			return nil, fmt.Errorf("vault CA cert %s: no certificates found", t.CACert)
		}
		tlsCfg.RootCAs = pool
	}
	return &http.Client{Transport: &http.Transport{TLSClientConfig: tlsCfg}}, nil
}

func login(ctx context.Context, client *vaultapi.Client, auth config.AuthConfig) error {
	switch auth.Method {
	case "token":
		// The client picks VAULT_TOKEN up from the environment.
		if client.Token() == "" {
			return fmt.Errorf("VAULT_TOKEN environment variable not set")
		}
		return nil

	case "approle":
		roleID, err := readTrimmed(auth.RoleIDPath)
		if err != nil {
			return fmt.Errorf("reading role_id: %w", err)
		}
		secretID, err := readTrimmed(auth.SecretIDPath)
		if err != nil {
			return fmt.Errorf("reading secret_id: %w", err)
		}
		method, err := approle.NewAppRoleAuth(roleID, &approle.SecretID{FromString: secretID})
		if err != nil {
			return fmt.Errorf("creating approle auth: %w", err)
		}
		if _, err := client.Auth().Login(ctx, method); err != nil {
			return fmt.Errorf("approle login: %w", err)
		}
		return nil

	default:
		return fmt.Errorf("unsupported auth method: %q", auth.Method)
	}
}

func readTrimmed(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// Fetch resolves "path#field", e.g. "secret/data/mcga#token". Both KV v1 and
// KV v2 layouts are accepted. The field must hold a non-empty string.
func (p *VaultProvider) Fetch(reference string) (string, error) {
	path, field, ok := strings.Cut(reference, "#")
	if !ok || path == "" || field == "" {
		return "", fmt.Errorf("invalid vault reference %q: expected path#field", reference)
	}

	secret, err := p.client.Logical().ReadWithContext(p.ctx, path)
	if err != nil {
		return "", fmt.Errorf("reading vault path %q: %w", path, err)
	}
	if secret == nil || secret.Data == nil {
		return "", fmt.Errorf("no secret found at vault path %q", path)
	}

	fields := secret.Data
	if inner, ok := fields["data"].(map[string]any); ok {
		fields = inner
	}
	raw, ok := fields[field]
	if !ok {
		return "", fmt.Errorf("field %q not found at vault path %q", field, path)
	}
	val, ok := raw.(string)
	if !ok || strings.TrimSpace(val) == "" {
		return "", fmt.Errorf("field %q at vault path %q is not a non-empty string", field, path)
	}
	return val, nil
}
