package types

import "github.com/roivaz/sql-transpiler-mcp/internal/transpiler"

type DialectsResponse struct {
	Dialects      transpiler.Registry `json:"dialects"`
	TotalDialects int                 `json:"total_dialects"`
}

// DialectsError keeps the "total" key used by existing clients rather than
// "total_dialects".
type DialectsError struct {
	Dialects []string `json:"dialects"`
	Total    int      `json:"total"`
	Error    string   `json:"error"`
}
