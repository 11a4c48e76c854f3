package tools

import (
	"context"
	"strings"

	"github.com/roivaz/sql-transpiler-mcp/internal/mcp/tools/types"
	"github.com/roivaz/sql-transpiler-mcp/internal/transpiler"
)

type transpileCall struct {
	SQL, Read, Write string
}

// fakeEngine implements transpiler.Engine with canned answers.
type fakeEngine struct {
	registry transpiler.Registry
	results  []string
	err      error
	parseErr error

	transpileCalls []transpileCall
	parseCalls     []transpileCall
}

func (f *fakeEngine) Dialects(context.Context) (transpiler.Registry, error) {
	return f.registry, nil
}

func (f *fakeEngine) Parse(_ context.Context, sql, read string) error {
	f.parseCalls = append(f.parseCalls, transpileCall{SQL: sql, Read: read})
	return f.parseErr
}

func (f *fakeEngine) Transpile(_ context.Context, sql, read, write string) ([]string, error) {
	f.transpileCalls = append(f.transpileCalls, transpileCall{SQL: sql, Read: read, Write: write})
	if f.err != nil {
		return nil, f.err
	}
	return f.results, nil
}

// tsqlEngine mimics the TOP → LIMIT rewrite for a single known query.
type tsqlEngine struct{}

func (tsqlEngine) Dialects(context.Context) (transpiler.Registry, error) { return testRegistry(), nil }
func (tsqlEngine) Parse(context.Context, string, string) error         { return nil }
func (tsqlEngine) Transpile(_ context.Context, sql, read, write string) ([]string, error) {
	if read == "tsql" && write == "postgres" && strings.HasPrefix(sql, "SELECT TOP 1 ") {
		return []string{"SELECT " + strings.TrimPrefix(sql, "SELECT TOP 1 ") + " LIMIT 1"}, nil
	}
	return []string{sql}, nil
}

func testRegistry() transpiler.Registry {
	return transpiler.NewRegistry(map[string]string{
		"tsql":     "TSQL",
		"postgres": "Postgres",
		"mysql":    "MySQL",
		"bigquery": "BigQuery",
	})
}

type recordingRecorder struct {
	events []types.TranspileEvent
	err    error
}

func (r *recordingRecorder) Record(_ context.Context, event types.TranspileEvent) error {
	r.events = append(r.events, event)
	return r.err
}
