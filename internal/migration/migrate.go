package migration

import (
	"context"
	"database/sql"
	"embed"
	"io/fs"

	"github.com/pkg/errors"
	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog"
)

// Embed SQL files from the local migrations folder
//
//go:embed migrations/*.sql
var embeddedMigrations embed.FS

// Dialect maps a configured database driver name to the goose dialect.
func Dialect(driver string) (goose.Dialect, error) {
	switch driver {
	case "postgres":
		return goose.DialectPostgres, nil
	case "sqlite":
		return goose.DialectSQLite3, nil
	default:
		return "", errors.Errorf("unsupported database driver %q", driver)
	}
}

// RunMigrations applies every pending embedded migration to db.
func RunMigrations(ctx context.Context, db *sql.DB, driver string, logger zerolog.Logger) error {
	dialect, err := Dialect(driver)
	if err != nil {
		return err
	}

	fsys, err := fs.Sub(embeddedMigrations, "migrations")
	if err != nil {
		return errors.Wrap(err, "open embedded migrations")
	}

	provider, err := goose.NewProvider(dialect, db, fsys)
	if err != nil {
		return errors.Wrap(err, "create migration provider")
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return errors.Wrap(err, "apply migrations")
	}

	log := logger.With().Str("component", "migration").Logger()
	for _, res := range results {
		log.Info().
			Int64("version", res.Source.Version).
			Str("file", res.Source.Path).
			Dur("took", res.Duration).
			Msg("migration applied")
	}
	log.Info().Int("applied", len(results)).Msg("Migrations completed successfully")
	return nil
}
