// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package database

import (
	"context"
	"database/sql"
	"embed"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

func prepare() error {
	goose.SetBaseFS(embedMigrations)
	goose.SetLogger(goose.NopLogger())
	return goose.SetDialect("sqlite3")
}

// RunMigrations runs all pending goose migrations.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	if err := prepare(); err != nil {
		return err
	}
	return goose.UpContext(ctx, db, "migrations")
}

// MigrateDown rolls back the last migration.
func MigrateDown(ctx context.Context, db *sql.DB) error {
	if err := prepare(); err != nil {
		return err
	}
	return goose.DownContext(ctx, db, "migrations")
}

// Version returns the current schema version.
func Version(ctx context.Context, db *sql.DB) (int64, error) {
	if err := prepare(); err != nil {
		return 0, err
	}
	return goose.GetDBVersionContext(ctx, db)
}
