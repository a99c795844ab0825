package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// registerTools registers the seeq MCP tools on the given server.
func (s *MCPServer) registerTools(srv *server.MCPServer) {

	srv.AddTool(
		mcp.NewTool("seeq_ask",
			mcp.WithDescription(
				"Convert a natural language question into SQL, execute it against "+
					"the configured database, and return the rows. The answer includes "+
					"the generated SQL, a verification status, and the full attempt "+
					"history. Only read-only SQL is ever executed.",
			),
			mcp.WithToolAnnotation(readOnlyAnnotation()),
			mcp.WithString("question",
				mcp.Required(),
				mcp.Description("The question to answer, e.g. \"total sales per region\""),
			),
		),
		s.handleAsk,
	)

	srv.AddTool(
		mcp.NewTool("seeq_schema",
			mcp.WithDescription(
				"Return the schema context: every table with its columns, row "+
					"counts, sample rows, distinct category values, and date ranges. "+
					"Use this to see what questions the data can answer.",
			),
			mcp.WithToolAnnotation(readOnlyAnnotation()),
		),
		s.handleSchema,
	)

	srv.AddTool(
		mcp.NewTool("seeq_suggestions",
			mcp.WithDescription(
				"Return example natural language questions derived from the actual "+
					"schema and data, covering raw retrieval, aggregation, category "+
					"filters, and date filters.",
			),
			mcp.WithToolAnnotation(readOnlyAnnotation()),
		),
		s.handleSuggestions,
	)
}

func (s *MCPServer) handleAsk(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	question, err := request.RequireString("question")
	if err != nil {
		return toolError("missing required parameter %q", "question")
	}

	session, err := s.converter.Convert(ctx, question)
	if err != nil {
		return toolError("conversion failed: %v", err)
	}

	out := map[string]any{
		"sql":      session.FinalSQL,
		"status":   session.Status,
		"verified": session.Status.Verified(),
		"attempts": len(session.Attempts),
	}
	if session.Result != nil {
		out["columns"] = session.Result.Columns
		out["rows"] = session.Result.RowMaps()
		out["row_count"] = session.Result.RowCount()
	}
	return successJSON(out)
}

func (s *MCPServer) handleSchema(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sc, err := s.schema.Context(ctx)
	if err != nil {
		return toolError("schema context unavailable: %v", err)
	}
	return mcp.NewToolResultText(sc.Text), nil
}

func (s *MCPServer) handleSuggestions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	suggestions, err := s.suggester.Suggestions(ctx, 10)
	if err != nil {
		return toolError("suggestions unavailable: %v", err)
	}
	return successJSON(map[string]any{"suggestions": suggestions})
}

// successJSON marshals data to JSON and returns it as a tool result.
func successJSON(data any) (*mcp.CallToolResult, error) {
	b, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal tool response: %w", err)
	}
	return mcp.NewToolResultText(string(b)), nil
}

// toolError returns a tool-level error result. These are visible to the
// calling agent so it can self-correct; they do not end the MCP session.
func toolError(format string, args ...any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultError(fmt.Sprintf(format, args...)), nil
}
