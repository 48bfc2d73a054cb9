package upstream

import "fmt"

// TransportError covers every failure to obtain a decodable response:
// connection problems, timeouts, non-2xx statuses and invalid bodies.
type TransportError struct {
	Op      string // "METHOD /path"
	Message string
	Err     error
}

func (e *TransportError) Error() string {
	switch {
	case e.Message != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Message, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	default:
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// UpstreamError is a well-formed response in which the service reports a
// failure, e.g. "server must be stopped before loading a map".
type UpstreamError struct {
	Message string
	// Code is the envelope responseCode when the failure came from it, else 0.
	Code int
}

func (e *UpstreamError) Error() string {
	return e.Message
}
