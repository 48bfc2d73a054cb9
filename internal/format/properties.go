package format

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Properties renders a server.properties map as "key = value" lines, sorted
// by key.
func Properties(payload json.RawMessage, server string) (string, error) {
	var wrapped struct {
		Properties map[string]json.RawMessage `json:"properties"`
	}
	if err := json.Unmarshal(payload, &wrapped); err != nil {
		return "", fmt.Errorf("properties: %w", err)
	}
	if len(wrapped.Properties) == 0 {
		return fmt.Sprintf("No properties found for server '%s'.", server), nil
	}

	keys := make([]string, 0, len(wrapped.Properties))
	for k := range wrapped.Properties {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	lines := make([]string, 0, len(keys)+1)
	lines = append(lines, fmt.Sprintf("Properties of server '%s':", server))
	for _, k := range keys {
		v := wrapped.Properties[k]
		value := ""
		if len(v) > 0 && string(v) != "null" {
			value = text(v)
		}
		lines = append(lines, fmt.Sprintf("  %s = %s", k, value))
	}
	return strings.Join(lines, "\n"), nil
}
