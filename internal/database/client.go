package database

import (
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/mehmetcc/resirent/internal/config"
	_ "modernc.org/sqlite"
)

// Init opens the session database for the configured driver.
func Init(cfg *config.StorageConfig) (*sql.DB, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("SESSION_DSN is not set")
	}

	var driverName string
	switch cfg.Driver {
	case config.DriverPostgres:
		driverName = "pgx"
	case config.DriverSQLite:
		driverName = "sqlite"
	default:
		return nil, fmt.Errorf("database: driver %q has no database", cfg.Driver)
	}

	db, err := sql.Open(driverName, cfg.DSN)
	if err != nil {
		return nil, err
	}
	if cfg.Driver == config.DriverSQLite {
		// sqlite serialises writers; one connection also keeps :memory: databases shared
		db.SetMaxOpenConns(1)
	}
	return db, nil
}
