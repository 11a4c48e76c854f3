package tools

import (
	"context"

	"github.com/roivaz/sql-transpiler-mcp/internal/mcp/tools/types"
)

// Recorder stores a history entry for each Transpiler call.
type Recorder interface {
	Record(ctx context.Context, event types.TranspileEvent) error
}

// NopRecorder discards events. It is used when no history database is configured.
type NopRecorder struct{}

func (NopRecorder) Record(context.Context, types.TranspileEvent) error { return nil }
