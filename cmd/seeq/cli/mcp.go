package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/seeqdb/seeq/internal/mcp"
)

func newMCPCmd() *cobra.Command {
	var (
		transport string
		addr      string
	)

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start the MCP server for AI agents",
		Long: `Start a Model Context Protocol server exposing the conversion pipeline as
tools: seeq_ask (natural language to executed SQL), seeq_schema (the schema
context), and seeq_suggestions (example questions). Stdio transport is for
clients that launch seeq as a subprocess; http serves remote clients.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMCP(transport, addr)
		},
	}

	cmd.Flags().StringVarP(&transport, "transport", "t", "stdio", "Transport: stdio or http")
	cmd.Flags().StringVar(&addr, "addr", ":3001", "Listen address for http transport")

	return cmd
}

func runMCP(transport, addr string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	// Stdio transport owns stdout, so logs always go to stderr via slog.
	logger := newLogger(cfg.Logging, false)

	p, err := buildPipeline(cfg, logger)
	if err != nil {
		return err
	}
	defer p.Close()

	srv := mcp.NewMCPServer(p.converter, p.suggester, p.cache, logger)

	switch transport {
	case "stdio":
		return srv.ServeStdio()
	case "http":
		return srv.ServeHTTP(addr)
	default:
		return fmt.Errorf("unsupported transport %q (use stdio or http)", transport)
	}
}
