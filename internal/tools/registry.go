package tools

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/bdubs00/mcga-mcp/internal/audit"
	"github.com/bdubs00/mcga-mcp/internal/format"
	"github.com/bdubs00/mcga-mcp/internal/policy"
	"github.com/bdubs00/mcga-mcp/internal/upstream"
)

// Kind is the JSON type of a tool parameter.
type Kind int

const (
	KindString Kind = iota
	KindInteger
)

func (k Kind) String() string {
	if k == KindInteger {
		return "integer"
	}
	return "string"
}

// Param describes one tool argument.
type Param struct {
	Name        string
	Kind        Kind
	Required    bool
	Description string
}

// RunFunc performs a tool call and returns its text. Errors are rendered by
// the registry.
type RunFunc func(ctx context.Context, c *Call) (string, error)

// Spec declares a tool once for both MCP registration and CLI listing.
type Spec struct {
	Name        string
	Description string
	Params      []Param
	Mutating    bool
	Run         RunFunc
}

// Tool builds the MCP tool definition.
func (s Spec) Tool() mcp.Tool {
	opts := []mcp.ToolOption{
		mcp.WithDescription(s.Description),
		mcp.WithReadOnlyHintAnnotation(!s.Mutating),
		mcp.WithDestructiveHintAnnotation(s.Mutating),
		mcp.WithOpenWorldHintAnnotation(true),
	}
	for _, p := range s.Params {
		popts := []mcp.PropertyOption{mcp.Description(p.Description)}
		if p.Required {
			popts = append(popts, mcp.Required())
		}
		switch p.Kind {
		case KindInteger:
			opts = append(opts, mcp.WithNumber(p.Name, popts...))
		default:
			opts = append(opts, mcp.WithString(p.Name, popts...))
		}
	}
	return mcp.NewTool(s.Name, opts...)
}

// Options configures a Registry.
type Options struct {
	Client *upstream.Client
	// Engine gates calls; nil allows everything.
	Engine *policy.Engine
	// Audit receives one event per call; nil disables auditing.
	Audit  *audit.Logger
	Logger *slog.Logger
	// DryRun evaluates and records policy decisions but runs every call.
	DryRun bool
	// Now is the clock used for read timestamps; defaults to time.Now.
	Now func() time.Time
}

// Registry binds the tool catalog to an upstream client, a policy engine and
// an audit log.
type Registry struct {
	client *upstream.Client
	engine *policy.Engine
	audit  *audit.Logger
	logger *slog.Logger
	dryRun bool
	now    func() time.Time
	specs  []Spec
}

// New creates a Registry over the full tool catalog.
func New(opts Options) *Registry {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Registry{
		client: opts.Client,
		engine: opts.Engine,
		audit:  opts.Audit,
		logger: logger,
		dryRun: opts.DryRun,
		now:    now,
		specs:  Catalog(),
	}
}

// Lookup returns the Spec with the given name.
func (r *Registry) Lookup(name string) (Spec, bool) {
	for _, s := range r.specs {
		if s.Name == name {
			return s, true
		}
	}
	return Spec{}, false
}

// Register adds every tool the policy can allow, plus the stats resource,
// to s. It returns the names of the registered tools.
func (r *Registry) Register(s *server.MCPServer) []string {
	var names []string
	for _, spec := range r.specs {
		if r.engine != nil && !r.dryRun && !r.engine.Exposed(spec.Name) {
			r.logger.Info("tool hidden by policy", "tool", spec.Name)
			continue
		}
		s.AddTool(spec.Tool(), r.Handler(spec))
		names = append(names, spec.Name)
	}
	s.AddResource(statsResource(), r.ReadStats)
	return names
}

// Handler wraps a spec with the policy gate, auditing and failure rendering.
// Failures are returned as error-flagged text results, never as Go errors.
func (r *Registry) Handler(spec Spec) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := req.GetArguments()
		start := time.Now()

		event := audit.ToolCallEvent{
			Tool:      spec.Name,
			Arguments: args,
			Decision:  "allow",
			Rule:      -1,
		}
		if r.engine != nil {
			decision := r.engine.Evaluate(spec.Name, args)
			event.Rule = decision.MatchedRule
			event.Reason = decision.Reason
			if !decision.Allow {
				event.Decision = "deny"
				if !r.dryRun {
					event.Outcome = audit.OutcomeDenied
					r.record(event)
					r.logger.Warn("tool call denied", "tool", spec.Name, "reason", decision.Reason)
					return mcp.NewToolResultError(decision.Denial(spec.Name)), nil
				}
				r.logger.Warn("dry run: tool call would be denied", "tool", spec.Name, "reason", decision.Reason)
			}
		}

		call := &Call{
			Tool:      spec.Name,
			RequestID: uuid.NewString(),
			args:      args,
			client:    r.client,
			now:       r.now,
		}
		event.RequestID = call.RequestID

		text, err := r.run(ctx, spec, call)
		event.DurationMs = time.Since(start).Milliseconds()
		if err != nil {
			event.Outcome = audit.OutcomeError
			event.Error = err.Error()
			r.record(event)
			r.logger.Warn("tool call failed", "tool", spec.Name, "request_id", call.RequestID, "error", err)
			return mcp.NewToolResultError(format.Failure(spec.Name, err)), nil
		}

		event.Outcome = audit.OutcomeOK
		r.record(event)
		r.logger.Debug("tool call", "tool", spec.Name, "request_id", call.RequestID, "duration_ms", event.DurationMs)
		return mcp.NewToolResultText(text), nil
	}
}

func (r *Registry) run(ctx context.Context, spec Spec, call *Call) (text string, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("internal error: %v", p)
		}
	}()
	return spec.Run(ctx, call)
}

func (r *Registry) record(e audit.ToolCallEvent) {
	if r.audit != nil {
		r.audit.LogToolCall(e)
	}
}
