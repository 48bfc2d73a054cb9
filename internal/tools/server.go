package tools

import (
	"github.com/mark3labs/mcp-go/server"
)

// ServerName is reported to MCP clients during initialization.
const ServerName = "mcga-mcp"

// NewServer creates the MCP server and registers the catalog on it.
func NewServer(version string, r *Registry) (*server.MCPServer, []string) {
	s := server.NewMCPServer(ServerName, version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithRecovery(),
		server.WithLogging(),
	)
	return s, r.Register(s)
}
