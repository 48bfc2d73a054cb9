package secrets

import (
	"fmt"
	"os"
	"strings"
)

// EnvProvider resolves "env:" references such as "env:SERVER_MANAGEMENT_TOKEN".
type EnvProvider struct {
	lookup func(string) (string, bool)
}

// NewEnvProvider creates a provider that reads from the process environment.
func NewEnvProvider() *EnvProvider {
	return &EnvProvider{lookup: os.LookupEnv}
}

// Fetch reads the named environment variable. A variable that is set but
// blank is treated as missing.
func (p *EnvProvider) Fetch(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("empty environment variable name")
	}
	val, ok := p.lookup(name)
	if !ok {
		return "", fmt.Errorf("environment variable %q not set", name)
	}
	if strings.TrimSpace(val) == "" {
		return "", fmt.Errorf("environment variable %q is empty", name)
	}
	return val, nil
}
