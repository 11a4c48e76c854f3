package mcp

import (
	"context"
	"fmt"

	"github.com/roivaz/sql-transpiler-mcp/internal/config"
	"github.com/roivaz/sql-transpiler-mcp/internal/db"
	dbmigrate "github.com/roivaz/sql-transpiler-mcp/internal/db/migrate"
	"github.com/roivaz/sql-transpiler-mcp/internal/instructions"
	"github.com/roivaz/sql-transpiler-mcp/internal/logging"
	"github.com/roivaz/sql-transpiler-mcp/internal/mcp/tools"
	"github.com/roivaz/sql-transpiler-mcp/internal/transpiler"
)

type Config struct {
	Instructions string
	ToolAdapters map[string]ToolAdapter
	Database     *db.Database
	Log          logging.Logger
}

// DefaultConfig wires the tools from the process configuration. The dialect
// registry is read once here; if that fails the server still starts and the
// Dialects tool reports the failure.
func DefaultConfig(ctx context.Context) (Config, error) {
	log := logging.New(logging.NewZap(config.LogLevel()))

	engine := transpiler.NewSQLGlot(transpiler.SQLGlotConfig{
		PythonPath: config.PythonPath(),
		Logger:     log.WithName("sqlglot"),
	})

	loadCtx, cancel := ctx, context.CancelFunc(func() {})
	if timeout := config.TranspileTimeout(); timeout > 0 {
		loadCtx, cancel = context.WithTimeout(ctx, timeout)
	}
	registry, loadErr := transpiler.LoadRegistry(loadCtx, engine)
	cancel()
	if loadErr != nil {
		log.Error(loadErr, "dialect registry unavailable, every dialect will be rejected")
	} else {
		log.Info("dialect registry loaded", "total", registry.Len())
	}

	var recorder tools.Recorder = tools.NopRecorder{}
	var database *db.Database
	if config.HistoryEnabled() {
		var err error
		database, err = db.Open(ctx, db.Config{DSN: config.PostgresURL(), Debug: config.DBDebug()})
		if err != nil {
			return Config{}, fmt.Errorf("open history database: %w", err)
		}
		if err := dbmigrate.EnsureCurrent(ctx, database.Bun(), config.DBAutoMigrate()); err != nil {
			_ = database.Close()
			return Config{}, fmt.Errorf("history schema: %w", err)
		}
		recorder = db.NewEventRepository(database)
		log.Info("transpile history enabled")
	}

	toolLog := log.WithName("tools")
	return Config{
		Instructions: instructions.Load(config.InstructionsPath()),
		ToolAdapters: map[string]ToolAdapter{
			ToolDialects: &tools.DialectsHandler{
				Registry: registry,
				LoadErr:  loadErr,
				Log:      toolLog.WithValues("tool", ToolDialects),
			},
			ToolTranspiler: &tools.TranspileHandler{
				Engine:   engine,
				Registry: registry,
				Recorder: recorder,
				Timeout:  config.TranspileTimeout(),
				Log:      toolLog.WithValues("tool", ToolTranspiler),
			},
		},
		Database: database,
		Log:      log,
	}, nil
}
