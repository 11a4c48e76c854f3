package tools

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/go-logr/logr"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/roivaz/sql-transpiler-mcp/internal/logging"
	"github.com/roivaz/sql-transpiler-mcp/internal/mcp/tools/types"
	"github.com/roivaz/sql-transpiler-mcp/internal/transpiler"
)

func newCallToolRequest(name string, args map[string]any) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
}

func TestTranspileExample(t *testing.T) {
	env, outcome := Transpile(context.Background(), tsqlEngine{}, testRegistry(), "SELECT TOP 1 * FROM t", "tsql", "postgres")
	if outcome != types.OutcomeSuccess {
		t.Fatalf("expected success, got %s", outcome)
	}
	resp, ok := env.Response.(types.TranspileResponse)
	if !ok {
		t.Fatalf("expected TranspileResponse, got %T", env.Response)
	}
	want := types.TranspileResponse{TranspiledSQL: "SELECT * FROM t LIMIT 1", FromDialect: "tsql", ToDialect: "postgres"}
	if resp != want {
		t.Fatalf("got %+v, want %+v", resp, want)
	}
	if env.Error != nil {
		t.Fatalf("success envelope must not carry an error")
	}
}

func TestTranspileUnsupportedDialects(t *testing.T) {
	tests := []struct {
		name string
		from string
		to   string
		want map[string]string
	}{
		{
			name: "unknown source",
			from: "bogus",
			to:   "postgres",
			want: map[string]string{"from_dialect": "Unsupported dialect: bogus."},
		},
		{
			name: "unknown target",
			from: "tsql",
			to:   "nosql",
			want: map[string]string{"to_dialect": "Unsupported dialect: nosql."},
		},
		{
			name: "both unknown",
			from: "bogus",
			to:   "",
			want: map[string]string{
				"from_dialect": "Unsupported dialect: bogus.",
				"to_dialect":   "Unsupported dialect: .",
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := &fakeEngine{results: []string{"unused"}}
			env, outcome := Transpile(context.Background(), engine, testRegistry(), "SELECT *", tt.from, tt.to)

			if outcome != types.OutcomeUnsupportedDialect {
				t.Fatalf("expected unsupported outcome, got %s", outcome)
			}
			if len(engine.transpileCalls) != 0 {
				t.Fatalf("engine must not be called for unsupported dialects")
			}
			failure, ok := env.Error.(types.UnsupportedDialectsError)
			if !ok {
				t.Fatalf("expected UnsupportedDialectsError, got %T", env.Error)
			}
			if len(failure.UnsupportedDialects) != len(tt.want) {
				t.Fatalf("got %v, want %v", failure.UnsupportedDialects, tt.want)
			}
			for param, msg := range tt.want {
				if failure.UnsupportedDialects[param] != msg {
					t.Fatalf("%s: got %q, want %q", param, failure.UnsupportedDialects[param], msg)
				}
			}
			if failure.SupportedDialects.Len() != testRegistry().Len() {
				t.Fatalf("expected the full registry in the failure")
			}
			if env.Response != nil {
				t.Fatalf("failure envelope must not carry a response")
			}
		})
	}
}

func TestTranspileUnsupportedJSONShape(t *testing.T) {
	env, _ := Transpile(context.Background(), &fakeEngine{}, transpiler.NewRegistry(map[string]string{"postgres": "Postgres"}), "SELECT *", "bogus", "postgres")
	data, err := json.Marshal(env)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"error":{"supported_dialects":{"postgres":"Postgres"},"unsupported_dialects":{"from_dialect":"Unsupported dialect: bogus."}}}`
	if string(data) != want {
		t.Fatalf("got %s\nwant %s", data, want)
	}
}

func TestTranspileLowercasesForEngineButEchoesInput(t *testing.T) {
	engine := &fakeEngine{results: []string{"SELECT 1"}}
	env, outcome := Transpile(context.Background(), engine, testRegistry(), "SELECT 1", "TSQL", "Postgres")
	if outcome != types.OutcomeSuccess {
		t.Fatalf("expected success, got %s", outcome)
	}
	if len(engine.transpileCalls) != 1 {
		t.Fatalf("expected one engine call, got %d", len(engine.transpileCalls))
	}
	call := engine.transpileCalls[0]
	if call.Read != "tsql" || call.Write != "postgres" {
		t.Fatalf("engine should receive lowercase dialects, got %+v", call)
	}
	resp := env.Response.(types.TranspileResponse)
	if resp.FromDialect != "TSQL" || resp.ToDialect != "Postgres" {
		t.Fatalf("dialects should be echoed verbatim, got %+v", resp)
	}
}

func TestTranspileKeepsFirstCandidate(t *testing.T) {
	engine := &fakeEngine{results: []string{"SELECT 1", "SELECT 2"}}
	env, _ := Transpile(context.Background(), engine, testRegistry(), "SELECT 1; SELECT 2", "mysql", "postgres")
	if got := env.Response.(types.TranspileResponse).TranspiledSQL; got != "SELECT 1" {
		t.Fatalf("expected first candidate, got %q", got)
	}
}

func TestTranspileParseError(t *testing.T) {
	engine := &fakeEngine{err: &transpiler.ParseError{Message: "Expecting ). Line 1, Col: 9."}}
	env, outcome := Transpile(context.Background(), engine, testRegistry(), "SELECT (1", "MySQL", "postgres")
	if outcome != types.OutcomeParseError {
		t.Fatalf("expected parse error outcome, got %s", outcome)
	}
	failure, ok := env.Error.(types.ParseFailure)
	if !ok {
		t.Fatalf("expected ParseFailure, got %T", env.Error)
	}
	if failure.Message != "Failed to parse the SQL query. Your MySQL query may have syntax errors." {
		t.Fatalf("unexpected message %q", failure.Message)
	}
	if !strings.Contains(failure.Message, "MySQL") || failure.Details == "" {
		t.Fatalf("message must name the source dialect and details must be set: %+v", failure)
	}
	if failure.FromDialect != "MySQL" || failure.ToDialect != "postgres" {
		t.Fatalf("unexpected dialects %+v", failure)
	}
}

func TestTranspileWrappedParseError(t *testing.T) {
	wrapped := errors.Join(errors.New("sqlglot transpile"), &transpiler.ParseError{Message: "bad token"})
	env, outcome := Transpile(context.Background(), &fakeEngine{err: wrapped}, testRegistry(), "SELEC", "mysql", "postgres")
	if outcome != types.OutcomeParseError {
		t.Fatalf("wrapped parse errors should be recognised, got %s", outcome)
	}
	if _, ok := env.Error.(types.ParseFailure); !ok {
		t.Fatalf("expected ParseFailure, got %T", env.Error)
	}
}

func TestTranspileWithoutStatementIsParseError(t *testing.T) {
	tests := []struct {
		name   string
		sql    string
		engine *fakeEngine
	}{
		{name: "empty first candidate", sql: "", engine: &fakeEngine{results: []string{""}}},
		{name: "leading semicolon", sql: "; SELECT 1", engine: &fakeEngine{results: []string{"", "SELECT 1"}}},
		{name: "engine parse error", sql: "", engine: &fakeEngine{err: &transpiler.ParseError{Message: "No expression was parsed from ''"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env, outcome := Transpile(context.Background(), tt.engine, testRegistry(), tt.sql, "mysql", "postgres")
			if outcome != types.OutcomeParseError {
				t.Fatalf("expected parse error outcome, got %s", outcome)
			}
			failure, ok := env.Error.(types.ParseFailure)
			if !ok {
				t.Fatalf("expected ParseFailure, got %T", env.Error)
			}
			if !strings.HasPrefix(failure.Details, "No expression was parsed from") {
				t.Fatalf("unexpected details %q", failure.Details)
			}
			if failure.FromDialect != "mysql" || failure.ToDialect != "postgres" {
				t.Fatalf("unexpected dialects %+v", failure)
			}
		})
	}
}

func TestTranspileUnexpectedError(t *testing.T) {
	tests := []struct {
		name    string
		engine  *fakeEngine
		details string
	}{
		{name: "engine failure", engine: &fakeEngine{err: errors.New("Unsupported conversion")}, details: "Unsupported conversion"},
		{name: "empty result", engine: &fakeEngine{results: nil}, details: transpiler.ErrEmptyResult.Error()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env, outcome := Transpile(context.Background(), tt.engine, testRegistry(), "SELECT 1", "mysql", "postgres")
			if outcome != types.OutcomeError {
				t.Fatalf("expected error outcome, got %s", outcome)
			}
			failure, ok := env.Error.(types.UnexpectedFailure)
			if !ok {
				t.Fatalf("expected UnexpectedFailure, got %T", env.Error)
			}
			if failure.Message != "An unexpected error occurred during transpilation." {
				t.Fatalf("unexpected message %q", failure.Message)
			}
			if failure.Details != tt.details {
				t.Fatalf("details = %q, want %q", failure.Details, tt.details)
			}
		})
	}
}

func TestTranspileIsIdempotent(t *testing.T) {
	reg := testRegistry()
	first, _ := Transpile(context.Background(), tsqlEngine{}, reg, "SELECT TOP 1 * FROM t", "tsql", "postgres")
	second, _ := Transpile(context.Background(), tsqlEngine{}, reg, "SELECT TOP 1 * FROM t", "tsql", "postgres")
	if first.Response.(types.TranspileResponse).TranspiledSQL != second.Response.(types.TranspileResponse).TranspiledSQL {
		t.Fatalf("identical calls should produce identical SQL")
	}
}

func TestTranspileHandlerRequiresArguments(t *testing.T) {
	engine := &fakeEngine{results: []string{"SELECT 1"}}
	handler := &TranspileHandler{Engine: engine, Registry: testRegistry(), Log: logging.New(logr.Discard())}

	tests := []struct {
		name string
		args map[string]any
		want string
	}{
		{name: "missing sql", args: map[string]any{"from_dialect": "mysql", "to_dialect": "postgres"}, want: "sql_query parameter is required"},
		{name: "non-string from", args: map[string]any{"sql_query": "SELECT 1", "from_dialect": 3, "to_dialect": "postgres"}, want: "from_dialect parameter is required"},
		{name: "missing to", args: map[string]any{"sql_query": "SELECT 1", "from_dialect": "mysql"}, want: "to_dialect parameter is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := handler.ToolAdapter(context.Background(), newCallToolRequest("Transpiler", tt.args))
			if err != nil {
				t.Fatalf("expected nil error, got %v", err)
			}
			if result == nil || !result.IsError {
				t.Fatalf("expected error result")
			}
			text, ok := result.Content[0].(mcp.TextContent)
			if !ok || text.Text != tt.want {
				t.Fatalf("unexpected content %+v", result.Content)
			}
		})
	}
	if len(engine.transpileCalls) != 0 {
		t.Fatalf("engine must not be called on invalid arguments")
	}
}

func TestTranspileHandlerSuccessResult(t *testing.T) {
	recorder := &recordingRecorder{}
	handler := &TranspileHandler{
		Engine:   tsqlEngine{},
		Registry: testRegistry(),
		Recorder: recorder,
		Timeout:  time.Second,
		Log:      logging.New(logr.Discard()),
	}

	result, err := handler.ToolAdapter(context.Background(), newCallToolRequest("Transpiler", map[string]any{
		"sql_query":    "SELECT TOP 1 * FROM t",
		"from_dialect": "tsql",
		"to_dialect":   "postgres",
	}))
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if result.IsError {
		t.Fatalf("expected success result")
	}
	env, ok := result.StructuredContent.(types.Envelope)
	if !ok {
		t.Fatalf("expected Envelope, got %T", result.StructuredContent)
	}
	if env.Response.(types.TranspileResponse).TranspiledSQL != "SELECT * FROM t LIMIT 1" {
		t.Fatalf("unexpected structured content %+v", env)
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("expected text content, got %T", result.Content[0])
	}
	want := `{"response":{"transpiled_sql":"SELECT * FROM t LIMIT 1","from_dialect":"tsql","to_dialect":"postgres"}}`
	if text.Text != want {
		t.Fatalf("text = %s, want %s", text.Text, want)
	}

	if len(recorder.events) != 1 {
		t.Fatalf("expected one recorded event, got %d", len(recorder.events))
	}
	event := recorder.events[0]
	if event.Outcome != types.OutcomeSuccess || event.TranspiledSQL == nil || *event.TranspiledSQL != "SELECT * FROM t LIMIT 1" {
		t.Fatalf("unexpected event %+v", event)
	}
	if event.ErrorDetails != nil {
		t.Fatalf("success event should not carry error details")
	}
}

func TestTranspileHandlerFailureResult(t *testing.T) {
	recorder := &recordingRecorder{err: errors.New("database down")}
	handler := &TranspileHandler{
		Engine:   &fakeEngine{},
		Registry: testRegistry(),
		Recorder: recorder,
		Log:      logging.New(logr.Discard()),
	}

	result, err := handler.ToolAdapter(context.Background(), newCallToolRequest("Transpiler", map[string]any{
		"sql_query":    "SELECT *",
		"from_dialect": "bogus",
		"to_dialect":   "postgres",
	}))
	if err != nil {
		t.Fatalf("recorder failures must not surface, got %v", err)
	}
	if !result.IsError {
		t.Fatalf("expected error result for failure envelope")
	}
	if _, ok := result.StructuredContent.(types.Envelope).Error.(types.UnsupportedDialectsError); !ok {
		t.Fatalf("unexpected structured content %+v", result.StructuredContent)
	}
	event := recorder.events[0]
	if event.Outcome != types.OutcomeUnsupportedDialect {
		t.Fatalf("unexpected outcome %s", event.Outcome)
	}
	if event.ErrorDetails == nil || *event.ErrorDetails != "from_dialect: Unsupported dialect: bogus." {
		t.Fatalf("unexpected details %v", event.ErrorDetails)
	}
}

func TestTranspileHandlerEmptyQuery(t *testing.T) {
	engine := &fakeEngine{results: []string{""}}
	handler := &TranspileHandler{Engine: engine, Registry: testRegistry(), Log: logging.New(logr.Discard())}

	result, err := handler.ToolAdapter(context.Background(), newCallToolRequest("Transpiler", map[string]any{
		"sql_query":    "",
		"from_dialect": "mysql",
		"to_dialect":   "postgres",
	}))
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if len(engine.transpileCalls) != 1 || engine.transpileCalls[0].SQL != "" {
		t.Fatalf("empty query should reach the engine, calls %+v", engine.transpileCalls)
	}
	if !result.IsError {
		t.Fatalf("expected error result for empty query")
	}
	failure, ok := result.StructuredContent.(types.Envelope).Error.(types.ParseFailure)
	if !ok {
		t.Fatalf("unexpected structured content %+v", result.StructuredContent)
	}
	if failure.Details != "No expression was parsed from ''" {
		t.Fatalf("unexpected details %q", failure.Details)
	}
}

// slowEngine blocks until its context is done.
type slowEngine struct{ fakeEngine }

func (s *slowEngine) Transpile(ctx context.Context, sql, read, write string) ([]string, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestTranspileHandlerTimeout(t *testing.T) {
	handler := &TranspileHandler{
		Engine:   &slowEngine{},
		Registry: testRegistry(),
		Timeout:  20 * time.Millisecond,
		Log:      logging.New(logr.Discard()),
	}

	result, err := handler.ToolAdapter(context.Background(), newCallToolRequest("Transpiler", map[string]any{
		"sql_query":    "SELECT 1",
		"from_dialect": "mysql",
		"to_dialect":   "postgres",
	}))
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	failure, ok := result.StructuredContent.(types.Envelope).Error.(types.UnexpectedFailure)
	if !ok {
		t.Fatalf("timeout should map to an unexpected failure, got %+v", result.StructuredContent)
	}
	if failure.Details != context.DeadlineExceeded.Error() {
		t.Fatalf("unexpected details %q", failure.Details)
	}
}
