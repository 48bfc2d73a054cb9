package format

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Server mirrors one entry of the upstream server list.
type Server struct {
	Name      *string `json:"serverName"`
	Status    *string `json:"serverStatus"`
	JarName   *string `json:"serverJarName"`
	JvmParams *string `json:"serverJvmParams"`
}

// NoServers is returned when the upstream list is empty.
const NoServers = "No servers available."

const (
	listRule   = "=================================================="
	statusRule = "======================"
	statsRule  = "========================================"
)

// StatusLabel maps the upstream status to its display form. The upstream
// only sends "running" and "stopped"; anything else is unknown.
func StatusLabel(status *string) string {
	if status == nil {
		return Unknown
	}
	switch *status {
	case "running":
		return "running"
	case "stopped":
		return "stopped"
	default:
		return Unknown
	}
}

// ServerRecords extracts the raw server entries from a /server/ payload.
func ServerRecords(payload json.RawMessage) ([]json.RawMessage, error) {
	var wrapped struct {
		Servers []json.RawMessage `json:"servers"`
	}
	if err := json.Unmarshal(payload, &wrapped); err == nil {
		return wrapped.Servers, nil
	}
	// Some deployments return the list without the "servers" key.
	var bare []json.RawMessage
	if err := json.Unmarshal(payload, &bare); err == nil {
		return bare, nil
	}
	return nil, fmt.Errorf("server list: unexpected payload %s", preview(payload))
}

func decodeServer(raw json.RawMessage) (Server, error) {
	var s Server
	if err := decodeObject(raw, &s); err != nil {
		return Server{}, err
	}
	return s, nil
}

// ServerList renders one block per server.
func ServerList(payload json.RawMessage) (string, error) {
	records, err := ServerRecords(payload)
	if err != nil {
		return "", err
	}
	if len(records) == 0 {
		return NoServers, nil
	}

	blocks := make([]string, 0, len(records))
	for _, raw := range records {
		blocks = append(blocks, renderRecord(raw, func(raw json.RawMessage) (string, error) {
			s, err := decodeServer(raw)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("Server name: %s\nStatus: %s\nJAR file: %s\nJVM params: %s",
				or(s.Name, Unknown), StatusLabel(s.Status), or(s.JarName, Unknown), or(s.JvmParams, "none")), nil
		}))
	}

	var b strings.Builder
	b.WriteString(listRule + "\n")
	b.WriteString(strings.Join(blocks, "\n\n"))
	b.WriteString("\n" + listRule)
	return b.String(), nil
}

// ServerStatus renders the status block of the named server, or a not-found
// message when no entry carries that name.
func ServerStatus(payload json.RawMessage, name string) (string, error) {
	records, err := ServerRecords(payload)
	if err != nil {
		return "", err
	}
	for _, raw := range records {
		if serverName(raw) != name {
			continue
		}
		return renderRecord(raw, statusBlock), nil
	}
	return NotFound(name), nil
}

// serverName reads only the name of a server entry, so an entry whose other
// fields are malformed still matches.
func serverName(raw json.RawMessage) string {
	var s struct {
		Name *string `json:"serverName"`
	}
	if err := decodeObject(raw, &s); err != nil || s.Name == nil {
		return ""
	}
	return *s.Name
}

func statusBlock(raw json.RawMessage) (string, error) {
	s, err := decodeServer(raw)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	b.WriteString("Server status report\n")
	b.WriteString(statusRule + "\n")
	fmt.Fprintf(&b, "Name: %s\n", or(s.Name, Unknown))
	fmt.Fprintf(&b, "Status: %s\n", StatusLabel(s.Status))
	fmt.Fprintf(&b, "JAR file: %s\n", or(s.JarName, Unknown))
	fmt.Fprintf(&b, "JVM params: %s\n", or(s.JvmParams, "none"))
	b.WriteString(statusRule)
	return b.String(), nil
}

// NotFound is the get_server_status answer for an unknown name.
func NotFound(name string) string {
	return fmt.Sprintf("Server '%s' not found.", name)
}

// ServerStats counts servers by status, stamped with the read time.
func ServerStats(payload json.RawMessage, now time.Time) (string, error) {
	records, err := ServerRecords(payload)
	if err != nil {
		return "", err
	}
	var running, stopped, other int
	for _, raw := range records {
		s, err := decodeServer(raw)
		if err != nil {
			other++
			continue
		}
		switch StatusLabel(s.Status) {
		case "running":
			running++
		case "stopped":
			stopped++
		default:
			other++
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Server statistics (updated %s)\n", now.Local().Format(TimeLayout))
	b.WriteString(statsRule + "\n")
	fmt.Fprintf(&b, "Total servers: %d\n", len(records))
	fmt.Fprintf(&b, "Running: %d\n", running)
	fmt.Fprintf(&b, "Stopped: %d\n", stopped)
	if other > 0 {
		fmt.Fprintf(&b, "Unknown: %d\n", other)
	}
	b.WriteString(statsRule)
	return b.String(), nil
}

func or(s *string, def string) string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return def
	}
	return *s
}
