// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package migration wraps golang-migrate for the schema under data/migrations.
//
// The API server applies pending migrations on startup; mangactl exposes the
// same runner for operators, including a bounded rollback.
package migration

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	// pgx5 driver registers the "pgx5" scheme for golang-migrate.
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	// file source reads .sql files from disk.
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// Runner applies schema migrations from a directory to one database.
type Runner struct {
	sourceURL   string
	databaseURL string
	logger      *slog.Logger
}

// NewRunner builds a runner for the given DSN and migrations directory.
func NewRunner(dsn, migrationsPath string, logger *slog.Logger) *Runner {
	return &Runner{
		sourceURL:   "file://" + migrationsPath,
		databaseURL: ToPgx5DSN(dsn),
		logger:      logger,
	}
}

// Up applies all pending migrations. No pending migrations is not an error.
func (runner *Runner) Up() error {
	return runner.with(func(migrator *migrate.Migrate, from uint) error {
		runner.logger.Info("migration_started", slog.Uint64("current_version", uint64(from)))
		return migrator.Up()
	})
}

// Down rolls back the given number of migrations.
func (runner *Runner) Down(steps int) error {
	if steps < 1 {
		return fmt.Errorf("migration: steps must be positive, got %d", steps)
	}
	return runner.with(func(migrator *migrate.Migrate, from uint) error {
		runner.logger.Info("migration_rollback_started",
			slog.Uint64("current_version", uint64(from)),
			slog.Int("steps", steps),
		)
		return migrator.Steps(-steps)
	})
}

// Version reports the applied schema version and whether it is dirty.
// A database without any applied migration reports version 0.
func (runner *Runner) Version() (uint, bool, error) {
	var (
		version uint
		dirty   bool
	)
	err := runner.open(func(migrator *migrate.Migrate) error {
		var err error
		version, dirty, err = migrator.Version()
		if errors.Is(err, migrate.ErrNilVersion) {
			return nil
		}
		return err
	})
	return version, dirty, err
}

func (runner *Runner) with(step func(*migrate.Migrate, uint) error) error {
	return runner.open(func(migrator *migrate.Migrate) error {
		currentVersion, isDirty, err := migrator.Version()
		if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
			return fmt.Errorf("migration: failed to get current version: %w", err)
		}
		if isDirty {
			return fmt.Errorf("migration: database is in a dirty state at version %d (manual intervention required)", currentVersion)
		}

		if err := step(migrator, currentVersion); err != nil {
			if errors.Is(err, migrate.ErrNoChange) {
				runner.logger.Info("migration_already_up_to_date")
				return nil
			}
			return fmt.Errorf("migration: apply failed: %w", err)
		}

		newVersion, _, _ := migrator.Version()
		runner.logger.Info("migration_successful",
			slog.Uint64("from_version", uint64(currentVersion)),
			slog.Uint64("to_version", uint64(newVersion)),
		)
		return nil
	})
}

func (runner *Runner) open(use func(*migrate.Migrate) error) error {
	migrator, err := migrate.New(runner.sourceURL, runner.databaseURL)
	if err != nil {
		return fmt.Errorf("migration: failed to initialize: %w", err)
	}
	defer func() {
		sourceError, dbError := migrator.Close()
		if sourceError != nil {
			runner.logger.Error("migration_source_close_failed", slog.Any("error", sourceError))
		}
		if dbError != nil {
			runner.logger.Error("migration_db_close_failed", slog.Any("error", dbError))
		}
	}()

	migrator.Log = &migrateLogger{logger: runner.logger}
	return use(migrator)
}

// ToPgx5DSN rewrites postgres:// and postgresql:// URLs to the pgx5:// scheme
// the golang-migrate pgx/v5 driver registers.
func ToPgx5DSN(dsn string) string {
	for _, prefix := range []string{"postgres://", "postgresql://"} {
		if strings.HasPrefix(dsn, prefix) {
			return "pgx5://" + strings.TrimPrefix(dsn, prefix)
		}
	}
	return dsn
}

// migrateLogger adapts golang-migrate's logger interface to slog.
type migrateLogger struct {
	logger *slog.Logger
}

// Printf implements migrate.Logger.
func (l *migrateLogger) Printf(format string, args ...any) {
	l.logger.Debug(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

// Verbose implements migrate.Logger.
func (l *migrateLogger) Verbose() bool {
	return l.logger.Enabled(context.Background(), slog.LevelDebug)
}
