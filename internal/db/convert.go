package db

import (
	"github.com/roivaz/sql-transpiler-mcp/internal/mcp/tools/types"
)

func fromEvent(event types.TranspileEvent) TranspileEvent {
	return TranspileEvent{
		CreatedAt:     event.CreatedAt,
		FromDialect:   event.FromDialect,
		ToDialect:     event.ToDialect,
		Outcome:       string(event.Outcome),
		SQLQuery:      event.SQLQuery,
		TranspiledSQL: event.TranspiledSQL,
		ErrorDetails:  event.ErrorDetails,
		DurationMS:    event.DurationMS,
	}
}

func ToEvent(entity TranspileEvent) types.TranspileEvent {
	return types.TranspileEvent{
		ID:            entity.ID,
		CreatedAt:     entity.CreatedAt,
		FromDialect:   entity.FromDialect,
		ToDialect:     entity.ToDialect,
		Outcome:       types.Outcome(entity.Outcome),
		SQLQuery:      entity.SQLQuery,
		TranspiledSQL: entity.TranspiledSQL,
		ErrorDetails:  entity.ErrorDetails,
		DurationMS:    entity.DurationMS,
	}
}
