package mcp

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/roivaz/sql-transpiler-mcp/internal/db"
	"github.com/roivaz/sql-transpiler-mcp/internal/logging"
)

const (
	ServerName    = "SQL-Transpiler"
	ServerVersion = "1.0.0"

	ToolDialects   = "Dialects"
	ToolTranspiler = "Transpiler"
)

type ToolAdapter interface {
	ToolAdapter(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error)
}

type Server struct {
	MCP *server.MCPServer
	DB  *db.Database
	log logging.Logger
}

func toolDefinitions() map[string]mcp.Tool {
	return map[string]mcp.Tool{
		ToolDialects: mcp.NewTool(ToolDialects,
			mcp.WithDescription("List all available SQL dialects supported by sqlglot."),
		),
		ToolTranspiler: mcp.NewTool(ToolTranspiler,
			mcp.WithDescription("Transpile SQL queries from one dialect to another using sqlglot. "+
				"First, run the Dialects tool to check if both the source and target dialects are supported."),
			mcp.WithString("sql_query",
				mcp.Required(),
				mcp.Description("The SQL query to transpile."),
			),
			mcp.WithString("from_dialect",
				mcp.Required(),
				mcp.Description("The dialect of the input SQL query."),
			),
			mcp.WithString("to_dialect",
				mcp.Required(),
				mcp.Description("The target dialect for the output SQL query."),
			),
		),
	}
}

func New(cfg Config) *Server {
	mcpServer := server.NewMCPServer(
		ServerName,
		ServerVersion,
		server.WithToolCapabilities(false),
		server.WithInstructions(cfg.Instructions),
		server.WithRecovery(),
	)

	definitions := toolDefinitions()
	for name, adapter := range cfg.ToolAdapters {
		tool, ok := definitions[name]
		if !ok {
			cfg.Log.Info("no tool definition for adapter, skipping", "tool", name)
			continue
		}
		mcpServer.AddTool(tool, adapter.ToolAdapter)
	}

	return &Server{
		MCP: mcpServer,
		DB:  cfg.Database,
		log: cfg.Log,
	}
}

// Serve runs the stdio protocol loop until in is exhausted or ctx is done.
func (s *Server) Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	if s == nil || s.MCP == nil {
		return fmt.Errorf("MCP server is not configured")
	}
	stdio := server.NewStdioServer(s.MCP)
	stdio.SetErrorLogger(s.log.WithName("stdio").StdLogger())

	s.log.Info("serving MCP on stdio", "server", ServerName, "version", ServerVersion)
	if err := stdio.Listen(ctx, in, out); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("serve MCP: %w", err)
	}
	return nil
}

func (s *Server) Close() {
	if s.DB != nil {
		if err := s.DB.Close(); err != nil {
			s.log.Error(err, "error closing database")
		}
	}
}
