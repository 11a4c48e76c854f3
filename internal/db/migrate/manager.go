package dbmigrate

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"

	"github.com/roivaz/sql-transpiler-mcp/internal/db/migrations"
)

type Manager struct {
	migrator *migrate.Migrator
}

// NewManager uses the migrations embedded in the binary.
func NewManager(db *bun.DB) (*Manager, error) {
	return NewManagerWithFS(db, migrations.FS)
}

func NewManagerWithFS(db *bun.DB, fsys fs.FS) (*Manager, error) {
	if db == nil {
		return nil, errors.New("database is required")
	}
	if fsys == nil {
		return nil, errors.New("migrations filesystem is required")
	}

	discovered := migrate.NewMigrations()
	if err := discovered.Discover(fsys); err != nil {
		return nil, fmt.Errorf("discover migrations: %w", err)
	}

	return &Manager{migrator: migrate.NewMigrator(db, discovered)}, nil
}

// NewManagerFromDir reads migrations from a directory on disk instead of the
// embedded set.
func NewManagerFromDir(db *bun.DB, dir string) (*Manager, error) {
	if dir == "" {
		return NewManager(db)
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve migrations dir: %w", err)
	}
	return NewManagerWithFS(db, os.DirFS(abs))
}

func (m *Manager) Init(ctx context.Context) error {
	return m.migrator.Init(ctx)
}

func (m *Manager) MigrateUp(ctx context.Context) error {
	if _, err := m.migrator.Migrate(ctx); err != nil {
		return err
	}
	return nil
}

// MigrateDownSteps rolls back the last steps migration groups, or every group
// when steps is 0. Bun rolls back a whole group at a time, so one step undoes
// every migration applied by the same `migrate up`.
func (m *Manager) MigrateDownSteps(ctx context.Context, steps int) error {
	if steps < 0 {
		return errors.New("steps must be >= 0")
	}

	status, err := m.migrator.MigrationsWithStatus(ctx)
	if err != nil {
		return err
	}

	groups := appliedGroups(status, "")
	if groups == 0 {
		return nil
	}

	count := steps
	if steps == 0 || steps > groups {
		count = groups
	}

	for i := 0; i < count; i++ {
		if _, err := m.migrator.Rollback(ctx); err != nil {
			return err
		}
	}

	return nil
}

// MigrateDownTo rolls back groups until no migration newer than target is
// applied. A group that also holds target or older migrations is rolled back
// whole.
func (m *Manager) MigrateDownTo(ctx context.Context, target string) error {
	if target == "" {
		return errors.New("target version is required")
	}

	status, err := m.migrator.MigrationsWithStatus(ctx)
	if err != nil {
		return err
	}

	found := false
	for _, mig := range status {
		if mig.Name == target {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("migration %s not found", target)
	}

	steps := appliedGroups(status, target)
	if steps == 0 {
		return nil
	}

	return m.MigrateDownSteps(ctx, steps)
}

// appliedGroups counts the distinct groups of applied migrations named after
// the given one. An empty after counts every applied group.
func appliedGroups(status migrate.MigrationSlice, after string) int {
	seen := make(map[int64]struct{})
	for _, mig := range status.Applied() {
		if mig.Name > after {
			seen[mig.GroupID] = struct{}{}
		}
	}
	return len(seen)
}

func (m *Manager) Status(ctx context.Context) (migrate.MigrationSlice, error) {
	return m.migrator.MigrationsWithStatus(ctx)
}

// Pending lists migrations not yet applied as "<name>_<comment>".
func (m *Manager) Pending(ctx context.Context) ([]string, error) {
	status, err := m.Status(ctx)
	if err != nil {
		return nil, err
	}
	var pending []string
	for _, mig := range status {
		if !mig.IsApplied() {
			pending = append(pending, fmt.Sprintf("%s_%s", mig.Name, mig.Comment))
		}
	}
	return pending, nil
}
