package format

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// renderRecord renders one record, turning a failure or panic into an inline
// marker so sibling records are unaffected.
func renderRecord(raw json.RawMessage, render func(json.RawMessage) (string, error)) (out string) {
	defer func() {
		if r := recover(); r != nil {
			out = parseErrorMarker(fmt.Errorf("%v", r))
		}
	}()
	s, err := render(raw)
	if err != nil {
		return parseErrorMarker(err)
	}
	return s
}

func parseErrorMarker(err error) string {
	return fmt.Sprintf("[parse error: %v]", err)
}

// decodeObject unmarshals a JSON object, rejecting null and non-objects.
func decodeObject(raw json.RawMessage, v any) error {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return fmt.Errorf("expected object, got %s", preview(trimmed))
	}
	return json.Unmarshal(trimmed, v)
}

// member returns the named field of a JSON object, skipping null values.
func member(raw json.RawMessage, name string) (json.RawMessage, bool) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, false
	}
	v, ok := obj[name]
	if !ok || bytes.Equal(bytes.TrimSpace(v), []byte("null")) {
		return nil, false
	}
	return v, true
}

// compact serialises a payload on one line, falling back to the raw text.
func compact(raw json.RawMessage) string {
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(bytes.TrimSpace(raw))
	}
	return buf.String()
}

// text renders a JSON scalar for display: strings unquoted, everything else
// as compact JSON.
func text(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return compact(raw)
}

func preview(b []byte) string {
	const max = 40
	if len(b) == 0 {
		return "nothing"
	}
	if len(b) > max {
		return string(b[:max]) + "..."
	}
	return string(b)
}
