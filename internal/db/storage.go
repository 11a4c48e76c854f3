package db

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"

	"github.com/roivaz/sql-transpiler-mcp/internal/mcp/tools/types"
)

const defaultRecentLimit = 20

// EventRepository stores and reads transpile history.
type EventRepository struct {
	db *bun.DB
}

func NewEventRepository(database *Database) *EventRepository {
	return &EventRepository{db: database.Bun()}
}

func (r *EventRepository) Record(ctx context.Context, event types.TranspileEvent) error {
	row := fromEvent(event)
	if _, err := r.db.NewInsert().Model(&row).Exec(ctx); err != nil {
		return fmt.Errorf("insert transpile event: %w", err)
	}
	return nil
}

// Recent returns the newest events first.
func (r *EventRepository) Recent(ctx context.Context, limit int) ([]types.TranspileEvent, error) {
	if limit <= 0 {
		limit = defaultRecentLimit
	}
	var rows []TranspileEvent
	err := r.db.NewSelect().Model(&rows).
		OrderExpr("created_at DESC, id DESC").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("select transpile events: %w", err)
	}
	events := make([]types.TranspileEvent, 0, len(rows))
	for _, row := range rows {
		events = append(events, ToEvent(row))
	}
	return events, nil
}

func (r *EventRepository) CountByOutcome(ctx context.Context) (map[string]int, error) {
	var rows []struct {
		Outcome string `bun:"outcome"`
		Count   int    `bun:"count"`
	}
	err := r.db.NewSelect().Model((*TranspileEvent)(nil)).
		Column("outcome").
		ColumnExpr("count(*) AS count").
		Group("outcome").
		Scan(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("count transpile events: %w", err)
	}
	counts := make(map[string]int, len(rows))
	for _, row := range rows {
		counts[row.Outcome] = row.Count
	}
	return counts, nil
}
