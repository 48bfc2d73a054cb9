package config

import "time"

// Config is the top-level mcga-mcp.yaml structure.
type Config struct {
	Upstream Upstream     `yaml:"upstream"`
	Vault    *VaultConfig `yaml:"vault,omitempty" validate:"omitempty"`
	Tools    ToolPolicy   `yaml:"tools,omitempty"`
}

// Upstream describes the server-management API that tools are forwarded to.
type Upstream struct {
	BaseURL string `yaml:"base_url" validate:"required,url"`
	// Token is a secret reference: "env:NAME", "vault:path#field" or a literal.
	Token             string        `yaml:"token,omitempty"`
	Timeout           time.Duration `yaml:"timeout,omitempty" validate:"gte=0"`
	RequestsPerSecond float64       `yaml:"requests_per_second,omitempty" validate:"gte=0"`
}

// VaultConfig holds Vault connection and auth settings.
type VaultConfig struct {
	Address string     `yaml:"address" validate:"required,url"`
	TLS     TLSConfig  `yaml:"tls,omitempty"`
	Auth    AuthConfig `yaml:"auth"`
}

type TLSConfig struct {
	CACert     string `yaml:"ca_cert,omitempty"`
	SkipVerify bool   `yaml:"skip_verify,omitempty"`
}

type AuthConfig struct {
	Method       string `yaml:"method" validate:"oneof=token approle"`
	RoleIDPath   string `yaml:"role_id_path,omitempty"`
	SecretIDPath string `yaml:"secret_id_path,omitempty"`
}

// ToolPolicy decides which tools an agent may call.
type ToolPolicy struct {
	Default string `yaml:"default,omitempty" validate:"omitempty,oneof=allow deny"`
	Rules   []Rule `yaml:"rules,omitempty" validate:"dive"`
}

// Rule defines a single policy rule for a tool. Tool is a glob pattern.
type Rule struct {
	Tool  string            `yaml:"tool" validate:"required"`
	Allow bool              `yaml:"allow"`
	When  map[string]string `yaml:"when,omitempty"`
}
