package upstream

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Envelope response codes used by the service's ActionResult wrapper.
const (
	codeKnownError   = -1
	codeUnknownError = -2
)

// Normalize extracts the payload from a decoded response body.
//
// An error field at the top level or inside data, or a failure responseCode,
// yields an *UpstreamError. Otherwise the payload is the structured value
// under data when present, and the whole body when the endpoint does not
// wrap its result.
func Normalize(raw json.RawMessage) (json.RawMessage, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(raw, &top); err != nil {
		// Arrays and scalars carry no envelope.
		return raw, nil
	}

	if msg, ok := errorField(top); ok {
		return nil, &UpstreamError{Message: msg}
	}

	if code, ok := intField(top, "responseCode"); ok && (code == codeKnownError || code == codeUnknownError) {
		msg, _ := stringField(top, "errorMessage")
		if msg == "" {
			msg = fmt.Sprintf("request rejected (responseCode %d", code)
			if errCode, ok := intField(top, "errorCode"); ok {
				msg += fmt.Sprintf(", errorCode %d", errCode)
			}
			msg += ")"
		}
		return nil, &UpstreamError{Message: msg, Code: code}
	}

	data, ok := top["data"]
	if !ok || !isStructured(data) {
		return raw, nil
	}

	var inner map[string]json.RawMessage
	if err := json.Unmarshal(data, &inner); err == nil {
		if msg, ok := errorField(inner); ok {
			return nil, &UpstreamError{Message: msg}
		}
	}
	return data, nil
}

func errorField(obj map[string]json.RawMessage) (string, bool) {
	v, ok := obj["error"]
	if !ok || isNull(v) {
		return "", false
	}
	var s string
	if err := json.Unmarshal(v, &s); err == nil {
		if strings.TrimSpace(s) == "" {
			return "unknown error", true
		}
		return s, true
	}
	return string(bytes.TrimSpace(v)), true
}

func stringField(obj map[string]json.RawMessage, name string) (string, bool) {
	v, ok := obj[name]
	if !ok {
		return "", false
	}
	var s string
	if err := json.Unmarshal(v, &s); err != nil {
		return "", false
	}
	return s, true
}

func intField(obj map[string]json.RawMessage, name string) (int, bool) {
	v, ok := obj[name]
	if !ok {
		return 0, false
	}
	var n int
	if err := json.Unmarshal(v, &n); err != nil {
		return 0, false
	}
	return n, true
}

func isStructured(v json.RawMessage) bool {
	v = bytes.TrimSpace(v)
	return len(v) > 0 && (v[0] == '{' || v[0] == '[')
}

func isNull(v json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(v), []byte("null"))
}
