package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/roivaz/sql-transpiler-mcp/internal/mcp/tools/types"
	"github.com/roivaz/sql-transpiler-mcp/internal/transpiler"
)

// Parse checks that sql is syntactically valid in dialect without
// transpiling it. Failures use the same shapes as Transpile.
func Parse(ctx context.Context, engine transpiler.Engine, reg transpiler.Registry, sql, dialect string) types.Envelope {
	if unsupported := unsupportedDialects(reg, map[string]string{"dialect": dialect}); len(unsupported) > 0 {
		return types.Failure(types.UnsupportedDialectsError{
			SupportedDialects:   reg,
			UnsupportedDialects: unsupported,
		})
	}

	err := engine.Parse(ctx, sql, strings.ToLower(dialect))
	switch {
	case err == nil:
		return types.Success(types.ParseResponse{Valid: true, Dialect: dialect})
	case transpiler.IsParseError(err):
		return types.Failure(types.ParseFailure{
			Message:     fmt.Sprintf(parseFailureMessage, dialect),
			Details:     err.Error(),
			FromDialect: dialect,
		})
	default:
		return types.Failure(types.UnexpectedFailure{
			Message: unexpectedFailureMessage,
			Details: err.Error(),
		})
	}
}
