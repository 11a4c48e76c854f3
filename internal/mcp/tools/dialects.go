package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/roivaz/sql-transpiler-mcp/internal/logging"
	"github.com/roivaz/sql-transpiler-mcp/internal/mcp/tools/types"
	"github.com/roivaz/sql-transpiler-mcp/internal/transpiler"
)

// DialectsHandler serves the Dialects tool. LoadErr is the error, if any,
// from reading the registry at startup.
type DialectsHandler struct {
	Registry transpiler.Registry
	LoadErr  error
	Log      logging.Logger
}

func (h *DialectsHandler) ToolAdapter(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	env := ListDialects(h.Registry, h.LoadErr)
	h.Log.Debug("dialects listed", "total", h.Registry.Len(), "failed", env.Failed())
	return toolResult(env), nil
}

// ListDialects reports every known dialect and how many there are.
func ListDialects(reg transpiler.Registry, loadErr error) types.Envelope {
	if loadErr != nil {
		return types.Failure(types.DialectsError{
			Dialects: []string{},
			Total:    0,
			Error:    loadErr.Error(),
		})
	}
	return types.Success(types.DialectsResponse{
		Dialects:      reg,
		TotalDialects: reg.Len(),
	})
}
