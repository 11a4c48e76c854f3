package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"sigs.k8s.io/yaml"

	"github.com/roivaz/sql-transpiler-mcp/internal/config"
	"github.com/roivaz/sql-transpiler-mcp/internal/db"
	"github.com/roivaz/sql-transpiler-mcp/internal/logging"
	"github.com/roivaz/sql-transpiler-mcp/internal/mcp/tools"
	"github.com/roivaz/sql-transpiler-mcp/internal/mcp/tools/types"
	"github.com/roivaz/sql-transpiler-mcp/internal/transpiler"
)

// errFailed makes the process exit non-zero after a failure envelope has
// already been printed.
var errFailed = errors.New("request failed")

var rootCmd = &cobra.Command{
	Use:           "transpile",
	Short:         "Run the SQL transpiler tools from the command line",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var dialectsCmd = &cobra.Command{
	Use:   "dialects",
	Short: "List the dialects sqlglot supports",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := callContext(cmd.Context())
		defer cancel()
		reg, err := transpiler.LoadRegistry(ctx, newEngine())
		return printEnvelope(cmd, tools.ListDialects(reg, err))
	},
}

var runCmd = &cobra.Command{
	Use:   "run [SQL | -]",
	Short: "Transpile a query from one dialect to another",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		from, _ := cmd.Flags().GetString("from")
		to, _ := cmd.Flags().GetString("to")
		sql, err := readSQL(cmd, args)
		if err != nil {
			return err
		}

		ctx, cancel := callContext(cmd.Context())
		defer cancel()
		engine := newEngine()
		reg, err := transpiler.LoadRegistry(ctx, engine)
		if err != nil {
			return printEnvelope(cmd, tools.ListDialects(reg, err))
		}
		env, _ := tools.Transpile(ctx, engine, reg, sql, from, to)
		return printEnvelope(cmd, env)
	},
}

var parseCmd = &cobra.Command{
	Use:   "parse [SQL | -]",
	Short: "Check that a query parses in the given dialect",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dialect, _ := cmd.Flags().GetString("dialect")
		sql, err := readSQL(cmd, args)
		if err != nil {
			return err
		}

		ctx, cancel := callContext(cmd.Context())
		defer cancel()
		engine := newEngine()
		reg, err := transpiler.LoadRegistry(ctx, engine)
		if err != nil {
			return printEnvelope(cmd, tools.ListDialects(reg, err))
		}
		return printEnvelope(cmd, tools.Parse(ctx, engine, reg, sql, dialect))
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent transpile calls recorded by the server",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !config.HistoryEnabled() {
			return errors.New("postgres_url must be set to read history")
		}
		limit, _ := cmd.Flags().GetInt("limit")

		database, err := db.Open(cmd.Context(), db.Config{DSN: config.PostgresURL(), Debug: config.DBDebug()})
		if err != nil {
			return err
		}
		defer database.Close()

		repo := db.NewEventRepository(database)
		events, err := repo.Recent(cmd.Context(), limit)
		if err != nil {
			return err
		}
		counts, err := repo.CountByOutcome(cmd.Context())
		if err != nil {
			return err
		}
		return printEnvelope(cmd, types.Success(struct {
			Events   []types.TranspileEvent `json:"events"`
			Outcomes map[string]int         `json:"outcomes"`
		}{Events: events, Outcomes: counts}))
	},
}

func main() {
	rootCmd.PersistentFlags().StringP("output", "o", "json", "Output format (json, yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("python-path", "python3", "Python interpreter with sqlglot installed")
	rootCmd.PersistentFlags().Duration("transpile-timeout", 0, "Timeout for each transpiler call (default 30s)")
	rootCmd.PersistentFlags().String("postgres-url", "", "Postgres connection URL for transpile history")

	runCmd.Flags().String("from", "", "Dialect of the input query")
	runCmd.Flags().String("to", "", "Target dialect")
	_ = runCmd.MarkFlagRequired("from")
	_ = runCmd.MarkFlagRequired("to")
	parseCmd.Flags().String("dialect", "", "Dialect of the query")
	_ = parseCmd.MarkFlagRequired("dialect")
	historyCmd.Flags().Int("limit", 20, "Number of events to show")

	rootCmd.AddCommand(dialectsCmd, runCmd, parseCmd, historyCmd)
	config.Init(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errFailed) {
			fmt.Fprintf(os.Stderr, "transpile: %v\n", err)
		}
		os.Exit(1)
	}
}

func newEngine() transpiler.Engine {
	return transpiler.NewSQLGlot(transpiler.SQLGlotConfig{
		PythonPath: config.PythonPath(),
		Logger:     logging.New(logging.NewZap(config.LogLevel())).WithName("sqlglot"),
	})
}

func callContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	if timeout := config.TranspileTimeout(); timeout > 0 {
		return context.WithTimeout(parent, timeout)
	}
	return context.WithCancel(parent)
}

// readSQL takes the query from the single argument, or from stdin when the
// argument is "-" or missing.
func readSQL(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 1 && args[0] != "-" {
		return args[0], nil
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("read query from stdin: %w", err)
	}
	sql := strings.TrimSpace(string(data))
	if sql == "" {
		return "", errors.New("no SQL query given")
	}
	return sql, nil
}

func printEnvelope(cmd *cobra.Command, env types.Envelope) error {
	format, _ := cmd.Flags().GetString("output")
	out, err := render(env, format)
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), out)
	if env.Failed() {
		return errFailed
	}
	return nil
}

func render(env types.Envelope, format string) (string, error) {
	switch strings.ToLower(format) {
	case "", "json":
		data, err := json.MarshalIndent(env, "", "  ")
		if err != nil {
			return "", err
		}
		return string(data) + "\n", nil
	case "yaml", "yml":
		data, err := yaml.Marshal(env)
		if err != nil {
			return "", err
		}
		return string(data), nil
	default:
		return "", fmt.Errorf("unknown output format %q (want json or yaml)", format)
	}
}
