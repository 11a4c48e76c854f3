package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roivaz/sql-transpiler-mcp/internal/config"
	"github.com/roivaz/sql-transpiler-mcp/internal/mcp"
)

func main() {
	root := &cobra.Command{
		Use:           "sql-transpiler-mcp",
		Short:         "MCP server exposing SQL dialect transpilation over stdio",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          run,
	}

	root.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	root.PersistentFlags().String("instructions-path", "", "Instructions document overriding the bundled one")
	root.PersistentFlags().String("python-path", "python3", "Python interpreter with sqlglot installed")
	root.PersistentFlags().Duration("transpile-timeout", 0, "Timeout for each transpiler call (default 30s)")
	root.PersistentFlags().String("postgres-url", "", "Postgres connection URL for transpile history (optional)")
	root.PersistentFlags().Bool("db-debug", false, "Log history database queries")

	config.Init(root)

	if err := root.Execute(); err != nil {
		log.Fatalf("sql-transpiler-mcp: %v", err)
	}
}

func run(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := mcp.DefaultConfig(ctx)
	if err != nil {
		return err
	}
	srv := mcp.New(cfg)
	defer srv.Close()

	return srv.Serve(ctx, os.Stdin, os.Stdout)
}
