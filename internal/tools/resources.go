package tools

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/bdubs00/mcga-mcp/internal/format"
)

// StatsURI names the read-only server statistics resource.
const StatsURI = "server://stats"

func statsResource() mcp.Resource {
	return mcp.NewResource(StatsURI, "server_stats",
		mcp.WithResourceDescription("Count of servers by status, stamped with the read time"),
		mcp.WithMIMEType("text/plain"),
	)
}

// ReadStats serves the stats resource. Upstream failures are reported in
// the text rather than as a protocol error.
func (r *Registry) ReadStats(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	call := &Call{Tool: "server_stats", RequestID: uuid.NewString(), client: r.client, now: r.now}
	text, err := serverStats(ctx, call)
	if err != nil {
		r.logger.Warn("reading server stats failed", "request_id", call.RequestID, "error", err)
		text = format.Failure("server_stats", err)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      StatsURI,
			MIMEType: "text/plain",
			Text:     text,
		},
	}, nil
}

func serverStats(ctx context.Context, c *Call) (string, error) {
	payload, _, err := c.fetch(ctx, http.MethodGet, "/server/", nil)
	if err != nil {
		return "", err
	}
	return format.ServerStats(payload, c.now())
}
