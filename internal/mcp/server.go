// Package mcp exposes the conversion pipeline over the Model Context
// Protocol, so AI agents can ask questions of the database in natural
// language and inspect the schema context behind the answers.
package mcp

import (
	"context"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/seeqdb/seeq/internal/model"
)

// Converter runs the conversion loop for one question.
type Converter interface {
	Convert(ctx context.Context, question string) (*model.ConversionSession, error)
}

// Suggester derives example questions from the schema context.
type Suggester interface {
	Suggestions(ctx context.Context, limit int) ([]string, error)
}

// SchemaProvider supplies the cached schema context.
type SchemaProvider interface {
	Context(ctx context.Context) (*model.SchemaContext, error)
}

// MCPServer wraps the mcp-go server with the seeq tools.
type MCPServer struct {
	converter Converter
	suggester Suggester
	schema    SchemaProvider
	logger    *slog.Logger
	server    *server.MCPServer
}

// NewMCPServer creates an MCPServer pre-loaded with the seeq tools. The
// returned server is ready to serve over stdio or HTTP.
func NewMCPServer(converter Converter, suggester Suggester, schema SchemaProvider, logger *slog.Logger) *MCPServer {
	s := &MCPServer{
		converter: converter,
		suggester: suggester,
		schema:    schema,
		logger:    logger,
	}

	mcpServer := server.NewMCPServer(
		"Seeq Natural Language SQL",
		"0.1.0",
		server.WithToolCapabilities(true),
	)
	s.registerTools(mcpServer)
	s.server = mcpServer
	return s
}

// Server returns the underlying mcp-go server instance, useful for tests.
func (s *MCPServer) Server() *server.MCPServer {
	return s.server
}

// ServeStdio starts the MCP server in stdio mode, the integration path
// for clients that launch the server as a subprocess.
func (s *MCPServer) ServeStdio() error {
	s.logger.Info("starting MCP server in stdio mode")
	return server.ServeStdio(s.server)
}

// ServeHTTP starts the MCP server in Streamable HTTP mode on the given
// address.
func (s *MCPServer) ServeHTTP(addr string) error {
	httpServer := server.NewStreamableHTTPServer(s.server)
	s.logger.Info("MCP HTTP server starting", "addr", addr)
	return httpServer.Start(addr)
}

func readOnlyAnnotation() mcp.ToolAnnotation {
	return mcp.ToolAnnotation{ReadOnlyHint: boolPtr(true)}
}

func boolPtr(b bool) *bool { return &b }
