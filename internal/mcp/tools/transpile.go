package tools

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/roivaz/sql-transpiler-mcp/internal/logging"
	"github.com/roivaz/sql-transpiler-mcp/internal/mcp/tools/types"
	"github.com/roivaz/sql-transpiler-mcp/internal/transpiler"
)

const (
	parseFailureMessage      = "Failed to parse the SQL query. Your %s query may have syntax errors."
	unexpectedFailureMessage = "An unexpected error occurred during transpilation."
)

type TranspileHandler struct {
	Engine   transpiler.Engine
	Registry transpiler.Registry
	Recorder Recorder
	Timeout  time.Duration
	Log      logging.Logger
}

func (h *TranspileHandler) ToolAdapter(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sql, err := stringArgument(req, "sql_query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	from, err := stringArgument(req, "from_dialect")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	to, err := stringArgument(req, "to_dialect")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	callCtx, cancel := withTimeout(ctx, h.Timeout)
	defer cancel()

	start := time.Now()
	env, outcome := Transpile(callCtx, h.Engine, h.Registry, sql, from, to)
	elapsed := time.Since(start)

	log := h.Log.WithValues("from", from, "to", to, "outcome", outcome, "duration", elapsed)
	if outcome == types.OutcomeSuccess {
		log.Debug("transpiled query")
	} else {
		log.Info("transpile failed")
	}

	if h.Recorder != nil {
		event := newTranspileEvent(env, outcome, sql, from, to, start, elapsed)
		if err := h.Recorder.Record(ctx, event); err != nil {
			h.Log.Error(err, "record transpile event failed")
		}
	}

	return toolResult(env), nil
}

// Transpile checks both dialects against reg and, when they are known, asks
// engine to rewrite sql. Only the first statement the engine returns is kept,
// and an empty first statement is a parse failure.
// Dialects are lowercased for the engine but echoed as given.
func Transpile(ctx context.Context, engine transpiler.Engine, reg transpiler.Registry, sql, from, to string) (types.Envelope, types.Outcome) {
	unsupported := unsupportedDialects(reg, map[string]string{
		"from_dialect": from,
		"to_dialect":   to,
	})
	if len(unsupported) > 0 {
		return types.Failure(types.UnsupportedDialectsError{
			SupportedDialects:   reg,
			UnsupportedDialects: unsupported,
		}), types.OutcomeUnsupportedDialect
	}

	results, err := engine.Transpile(ctx, sql, strings.ToLower(from), strings.ToLower(to))
	switch {
	case err != nil:
	case len(results) == 0:
		err = transpiler.ErrEmptyResult
	case results[0] == "":
		// the first statement parsed to nothing, as for "" or ";"
		err = &transpiler.ParseError{Message: fmt.Sprintf("No expression was parsed from '%s'", sql)}
	}
	switch {
	case err == nil:
		return types.Success(types.TranspileResponse{
			TranspiledSQL: results[0],
			FromDialect:   from,
			ToDialect:     to,
		}), types.OutcomeSuccess
	case transpiler.IsParseError(err):
		return types.Failure(types.ParseFailure{
			Message:     fmt.Sprintf(parseFailureMessage, from),
			Details:     err.Error(),
			FromDialect: from,
			ToDialect:   to,
		}), types.OutcomeParseError
	default:
		return types.Failure(types.UnexpectedFailure{
			Message: unexpectedFailureMessage,
			Details: err.Error(),
		}), types.OutcomeError
	}
}

// unsupportedDialects returns one message per parameter whose dialect is not
// in reg. Every parameter is checked.
func unsupportedDialects(reg transpiler.Registry, params map[string]string) map[string]string {
	unsupported := make(map[string]string)
	for param, dialect := range params {
		if !reg.Has(dialect) {
			unsupported[param] = fmt.Sprintf("Unsupported dialect: %s.", dialect)
		}
	}
	return unsupported
}

func newTranspileEvent(env types.Envelope, outcome types.Outcome, sql, from, to string, start time.Time, elapsed time.Duration) types.TranspileEvent {
	event := types.TranspileEvent{
		CreatedAt:   start.UTC(),
		FromDialect: from,
		ToDialect:   to,
		Outcome:     outcome,
		SQLQuery:    sql,
		DurationMS:  elapsed.Milliseconds(),
	}
	if payload, ok := env.Response.(types.TranspileResponse); ok {
		event.TranspiledSQL = &payload.TranspiledSQL
	}
	var details string
	switch payload := env.Error.(type) {
	case types.ParseFailure:
		details = payload.Details
	case types.UnexpectedFailure:
		details = payload.Details
	case types.UnsupportedDialectsError:
		parts := make([]string, 0, len(payload.UnsupportedDialects))
		for _, param := range []string{"from_dialect", "to_dialect"} {
			if msg, ok := payload.UnsupportedDialects[param]; ok {
				parts = append(parts, param+": "+msg)
			}
		}
		details = strings.Join(parts, "; ")
	}
	if details != "" {
		event.ErrorDetails = &details
	}
	return event
}
