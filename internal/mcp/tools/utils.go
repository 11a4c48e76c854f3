package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/roivaz/sql-transpiler-mcp/internal/mcp/tools/types"
)

func stringArgument(req mcp.CallToolRequest, name string) (string, error) {
	value, ok := req.GetArguments()[name].(string)
	if !ok {
		return "", fmt.Errorf("%s parameter is required", name)
	}
	return value, nil
}

// toolResult carries the envelope both as structured content and as its JSON
// text for clients that only read text content.
func toolResult(env types.Envelope) *mcp.CallToolResult {
	result := mcp.NewToolResultStructured(env, string(mustMarshal(env)))
	result.IsError = env.Failed()
	return result
}

func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}

func mustMarshal(v interface{}) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return b
}
