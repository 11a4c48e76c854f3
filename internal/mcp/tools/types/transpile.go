package types

import (
	"time"

	"github.com/roivaz/sql-transpiler-mcp/internal/transpiler"
)

type TranspileResponse struct {
	TranspiledSQL string `json:"transpiled_sql"`
	FromDialect   string `json:"from_dialect"`
	ToDialect     string `json:"to_dialect"`
}

type UnsupportedDialectsError struct {
	SupportedDialects   transpiler.Registry `json:"supported_dialects"`
	UnsupportedDialects map[string]string   `json:"unsupported_dialects"`
}

type ParseFailure struct {
	Message     string `json:"message"`
	Details     string `json:"details"`
	FromDialect string `json:"from_dialect"`
	ToDialect   string `json:"to_dialect,omitempty"`
}

type UnexpectedFailure struct {
	Message string `json:"message"`
	Details string `json:"details"`
}

type ParseResponse struct {
	Valid   bool   `json:"valid"`
	Dialect string `json:"dialect"`
}

// Outcome classifies a transpile call for logs and history.
type Outcome string

const (
	OutcomeSuccess            Outcome = "success"
	OutcomeUnsupportedDialect Outcome = "unsupported_dialect"
	OutcomeParseError         Outcome = "parse_error"
	OutcomeError              Outcome = "error"
)

// TranspileEvent is one recorded Transpiler call.
type TranspileEvent struct {
	ID            int64     `json:"id,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	FromDialect   string    `json:"from_dialect"`
	ToDialect     string    `json:"to_dialect"`
	Outcome       Outcome   `json:"outcome"`
	SQLQuery      string    `json:"sql_query"`
	TranspiledSQL *string   `json:"transpiled_sql,omitempty"`
	ErrorDetails  *string   `json:"error_details,omitempty"`
	DurationMS    int64     `json:"duration_ms"`
}
