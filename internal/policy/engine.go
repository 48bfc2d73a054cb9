package policy

import (
	"fmt"

	"github.com/bdubs00/mcga-mcp/internal/config"
)

// Engine evaluates tool calls against the configured tool policy.
type Engine struct {
	policy config.ToolPolicy
}

// NewEngine creates a policy engine. An empty default means allow.
func NewEngine(policy config.ToolPolicy) *Engine {
	if policy.Default == "" {
		policy.Default = config.DefaultPolicy
	}
	return &Engine{policy: policy}
}

// Evaluate checks whether a tool call with the given arguments is allowed.
// Rule tool names are globs. Rules are evaluated top-down; first match wins.
func (e *Engine) Evaluate(tool string, arguments map[string]any) Decision {
	for i, rule := range e.policy.Rules {
		if !GlobMatch(rule.Tool, tool) {
			continue
		}
		if e.matchWhen(rule.When, arguments) {
			reason := fmt.Sprintf("matched rule %d", i)
			if !rule.Allow {
				reason = fmt.Sprintf("denied by rule %d", i)
			}
			return Decision{
				Allow:       rule.Allow,
				MatchedRule: i,
				Reason:      reason,
			}
		}
	}

	return Decision{
		Allow:       e.policy.Default == "allow",
		MatchedRule: -1,
		Reason:      "no matching rule, using default: " + e.policy.Default,
	}
}

// Exposed reports whether a tool can be allowed for some arguments. Tools
// that every call would be denied for are left out of the tool list.
func (e *Engine) Exposed(tool string) bool {
	for _, rule := range e.policy.Rules {
		if !GlobMatch(rule.Tool, tool) {
			continue
		}
		if rule.Allow {
			return true
		}
		if len(rule.When) == 0 {
			return false
		}
	}
	return e.policy.Default == "allow"
}

// matchWhen checks if all 'when' clauses match the given arguments.
// All clauses must match (AND logic). Each clause is a glob pattern
// matched against the string representation of the argument value.
func (e *Engine) matchWhen(when map[string]string, arguments map[string]any) bool {
	for key, pattern := range when {
		val, ok := arguments[key]
		if !ok {
			return false
		}
		if !GlobMatch(pattern, fmt.Sprintf("%v", val)) {
			return false
		}
	}
	return true
}
