package db

import (
	"time"

	"github.com/uptrace/bun"
)

// TranspileEvent is one row of the transpile history.
type TranspileEvent struct {
	bun.BaseModel `bun:"table:transpile_events"`

	ID            int64     `bun:"id,pk,autoincrement"`
	CreatedAt     time.Time `bun:"created_at,nullzero,notnull,default:now()"`
	FromDialect   string    `bun:"from_dialect"`
	ToDialect     string    `bun:"to_dialect"`
	Outcome       string    `bun:"outcome"`
	SQLQuery      string    `bun:"sql_query"`
	TranspiledSQL *string   `bun:"transpiled_sql"`
	ErrorDetails  *string   `bun:"error_details"`
	DurationMS    int64     `bun:"duration_ms"`
}
