package store

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"

	"bluewitness-api/core/utils"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/postgres/*.sql migrations/sqlite/*.sql
var migrationsFS embed.FS

func ApplyMigrations(ctx context.Context, db *sql.DB, logger *utils.Logger) error {
	dialect := DialectOf(db)
	dir := "migrations/postgres"
	gooseDialect := goose.DialectPostgres
	if dialect == DialectSQLite {
		dir = "migrations/sqlite"
		gooseDialect = goose.DialectSQLite3
	}
	fsys, err := fs.Sub(migrationsFS, dir)
	if err != nil {
		return fmt.Errorf("migrations fs: %w", err)
	}
	provider, err := goose.NewProvider(gooseDialect, db, fsys)
	if err != nil {
		return fmt.Errorf("goose provider: %w", err)
	}
	if logger != nil {
		logger.Printf("applying %s migrations", dialect)
	}
	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	for _, res := range results {
		if logger != nil && res != nil && res.Source != nil {
			logger.Printf("migration %d applied (%s) in %s", res.Source.Version, res.Source.Path, res.Duration)
		}
	}
	version, err := provider.GetDBVersion(ctx)
	if err != nil {
		return fmt.Errorf("goose version: %w", err)
	}
	if logger != nil {
		logger.Printf("schema at version %d", version)
	}
	return nil
}
