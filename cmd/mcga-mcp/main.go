package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/bdubs00/mcga-mcp/internal/audit"
	"github.com/bdubs00/mcga-mcp/internal/config"
	"github.com/bdubs00/mcga-mcp/internal/policy"
	"github.com/bdubs00/mcga-mcp/internal/secrets"
	"github.com/bdubs00/mcga-mcp/internal/tools"
	"github.com/bdubs00/mcga-mcp/internal/upstream"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "v0.1.0"

var (
	configPath string
	envFile    string
	auditLog   string
	logLevel   string
	dryRun     bool
)

func main() {
	root := &cobra.Command{
		Use:           "mcga-mcp",
		Short:         "MCP tool server for the Minecraft server-management API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the tools over stdio",
		RunE:  runServe,
	}
	serveCmd.Flags().StringVar(&configPath, "config", "", "path to config file (optional; environment is used otherwise)")
	serveCmd.Flags().StringVar(&envFile, "env-file", "", "path to a .env file loaded before the config")
	serveCmd.Flags().StringVar(&auditLog, "audit-log", "", "path to audit log file (default: stderr)")
	serveCmd.Flags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	serveCmd.Flags().BoolVar(&dryRun, "dry-run", false, "evaluate the tool policy but run all calls")

	validateCmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate the configuration",
		RunE:  runValidate,
	}
	validateCmd.Flags().StringVar(&configPath, "config", "", "path to config file")
	validateCmd.Flags().StringVar(&envFile, "env-file", "", "path to a .env file loaded before the config")

	toolsCmd := &cobra.Command{
		Use:   "tools",
		Short: "List the tools this server exposes",
		Run: func(cmd *cobra.Command, args []string) {
			printCatalog(cmd.OutOrStdout())
		},
	}

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "mcga-mcp "+version)
		},
	}

	root.AddCommand(serveCmd, validateCmd, toolsCmd, versionCmd)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	level, err := parseLevel(logLevel)
	if err != nil {
		return err
	}
	// stdout carries the MCP transport.
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	token, err := secrets.UpstreamToken(ctx, cfg, logger)
	if err != nil {
		return err
	}

	client, err := upstream.New(upstream.Options{
		BaseURL:           cfg.Upstream.BaseURL,
		Token:             token,
		Timeout:           cfg.Upstream.Timeout,
		RequestsPerSecond: cfg.Upstream.RequestsPerSecond,
		Logger:            logger,
	})
	if err != nil {
		return err
	}

	var auditWriter io.Writer = os.Stderr
	if auditLog != "" {
		f, err := os.OpenFile(auditLog, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
		if err != nil {
			return fmt.Errorf("opening audit log: %w", err)
		}
		defer f.Close()
		auditWriter = f
	}
	auditLogger := audit.New(auditWriter)

	registry := tools.New(tools.Options{
		Client: client,
		Engine: policy.NewEngine(cfg.Tools),
		Audit:  auditLogger,
		Logger: logger,
		DryRun: dryRun,
	})
	s, names := tools.NewServer(version, registry)

	auditLogger.LogStartup(cfg.Upstream.BaseURL, configPath, len(names))
	logger.Info("serving over stdio", "upstream", cfg.Upstream.BaseURL, "tools", len(names), "dry_run", dryRun)

	err = server.ServeStdio(s, server.WithErrorLogger(slog.NewLogLogger(logger.Handler(), slog.LevelError)))
	reason := "stdin closed"
	if ctx.Err() != nil {
		reason = "signal"
	}
	if err != nil {
		reason = err.Error()
	}
	auditLogger.LogShutdown(reason)
	return err
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "configuration is valid")
	fmt.Fprintf(out, "  upstream: %s (timeout %s)\n", cfg.Upstream.BaseURL, cfg.Upstream.Timeout)
	if cfg.Upstream.RequestsPerSecond > 0 {
		fmt.Fprintf(out, "  rate limit: %.2f req/s\n", cfg.Upstream.RequestsPerSecond)
	}
	fmt.Fprintf(out, "  token: %s\n", describeToken(cfg.Upstream.Token))
	fmt.Fprintf(out, "  tool policy: default %s, %d rule(s)\n", cfg.Tools.Default, len(cfg.Tools.Rules))

	engine := policy.NewEngine(cfg.Tools)
	for _, spec := range tools.Catalog() {
		if !engine.Exposed(spec.Name) {
			fmt.Fprintf(out, "  hidden: %s\n", spec.Name)
		}
	}
	return nil
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath, envFile)
	if err != nil {
		return nil, err
	}
	if err := policy.CheckPatterns(cfg.Tools); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// describeToken names the token source without revealing a literal value.
func describeToken(ref string) string {
	switch {
	case ref == "":
		return "none"
	case strings.HasPrefix(ref, "env:"), strings.HasPrefix(ref, "vault:"):
		return ref
	default:
		return "literal"
	}
}

func printCatalog(w io.Writer) {
	for _, spec := range tools.Catalog() {
		kind := "read"
		if spec.Mutating {
			kind = "write"
		}
		fmt.Fprintf(w, "%s (%s)\n  %s\n", spec.Name, kind, spec.Description)
		for _, p := range spec.Params {
			req := "optional"
			if p.Required {
				req = "required"
			}
			fmt.Fprintf(w, "    %s %s, %s: %s\n", p.Name, p.Kind, req, p.Description)
		}
	}
	fmt.Fprintf(w, "resource %s\n", tools.StatsURI)
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("invalid log level %q", s)
	}
	return level, nil
}
