package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mehmetcc/resirent/internal/config"
	"github.com/mehmetcc/resirent/migrations"
	"github.com/pressly/goose/v3"
	goosedb "github.com/pressly/goose/v3/database"
	"go.uber.org/zap"
)

// Migrate applies the embedded slot table migrations. It is safe to call on
// an up-to-date database.
func Migrate(ctx context.Context, db *sql.DB, driver string, logger *zap.Logger) error {
	dialect, err := dialectFor(driver)
	if err != nil {
		return err
	}

	provider, err := goose.NewProvider(dialect, db, migrations.FS)
	if err != nil {
		return fmt.Errorf("database: goose provider: %w", err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("database: migrate up: %w", err)
	}
	for _, r := range results {
		logger.Info("migration applied",
			zap.Int64("version", r.Source.Version),
			zap.Duration("took", r.Duration),
		)
	}
	return nil
}

func dialectFor(driver string) (goosedb.Dialect, error) {
	switch driver {
	case config.DriverPostgres:
		return goosedb.DialectPostgres, nil
	case config.DriverSQLite:
		return goosedb.DialectSQLite3, nil
	default:
		return "", fmt.Errorf("database: driver %q has no migrations", driver)
	}
}
