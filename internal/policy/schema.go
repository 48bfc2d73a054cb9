package policy

import "fmt"

// Decision is the result of a policy evaluation.
type Decision struct {
	Allow       bool
	MatchedRule int    // index of the matched rule, -1 if the default was used
	Reason      string // human-readable explanation
}

// Denial is the tool output for a call the policy refused.
func (d Decision) Denial(tool string) string {
	return fmt.Sprintf("%s denied by policy: %s", tool, d.Reason)
}
