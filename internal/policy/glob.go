package policy

import (
	"fmt"

	"github.com/bdubs00/mcga-mcp/internal/config"
	"github.com/bmatcuk/doublestar/v4"
)

// GlobMatch checks if a value matches a glob pattern. An invalid pattern
// matches nothing.
func GlobMatch(pattern, value string) bool {
	matched, err := doublestar.Match(pattern, value)
	if err != nil {
		return false
	}
	return matched
}

// CheckPatterns rejects rules whose tool or when patterns are malformed.
func CheckPatterns(p config.ToolPolicy) error {
	for i, rule := range p.Rules {
		if !doublestar.ValidatePattern(rule.Tool) {
			return fmt.Errorf("tools: rule %d: invalid tool pattern %q", i, rule.Tool)
		}
		for key, pattern := range rule.When {
			if !doublestar.ValidatePattern(pattern) {
				return fmt.Errorf("tools: rule %d: invalid pattern %q for %s", i, pattern, key)
			}
		}
	}
	return nil
}
