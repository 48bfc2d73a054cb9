package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment variables understood by the loader. They fill any field the
// config file leaves empty.
const (
	EnvBaseURL = "SERVER_MANAGEMENT_BASE_URL"
	EnvToken   = "SERVER_MANAGEMENT_TOKEN"
)

const (
	DefaultTimeout = 30 * time.Second
	DefaultPolicy  = "allow"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

// Load builds the process configuration. envFile, when set, is loaded into
// the environment first; path, when set, is parsed as YAML. Environment
// variables then fill the gaps and defaults are applied before validation.
func Load(path, envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("loading env file: %w", err)
		}
	}

	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
	}

	applyEnv(&cfg)
	applyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func applyEnv(cfg *Config) {
	if cfg.Upstream.BaseURL == "" {
		cfg.Upstream.BaseURL = os.Getenv(EnvBaseURL)
	}
	if cfg.Upstream.Token == "" && strings.TrimSpace(os.Getenv(EnvToken)) != "" {
		cfg.Upstream.Token = "env:" + EnvToken
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Upstream.Timeout == 0 {
		cfg.Upstream.Timeout = DefaultTimeout
	}
	if cfg.Tools.Default == "" {
		cfg.Tools.Default = DefaultPolicy
	}
}

// Validate checks that a Config has all required fields and valid values.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("%s: failed %q check (value %v)", fe.Namespace(), fe.Tag(), fe.Value())
		}
		return err
	}

	u, err := url.Parse(cfg.Upstream.BaseURL)
	if err != nil {
		return fmt.Errorf("upstream.base_url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("upstream.base_url: scheme must be http or https, got %q", u.Scheme)
	}

	if cfg.Vault != nil && cfg.Vault.Auth.Method == "approle" {
		if cfg.Vault.Auth.RoleIDPath == "" || cfg.Vault.Auth.SecretIDPath == "" {
			return fmt.Errorf("vault.auth: approle requires role_id_path and secret_id_path")
		}
	}
	if strings.HasPrefix(cfg.Upstream.Token, "vault:") && cfg.Vault == nil {
		return fmt.Errorf("upstream.token: vault reference requires a vault section")
	}

	for i, rule := range cfg.Tools.Rules {
		if strings.TrimSpace(rule.Tool) == "" {
			return fmt.Errorf("tools: rule %d: missing required field: tool", i)
		}
	}
	return nil
}
