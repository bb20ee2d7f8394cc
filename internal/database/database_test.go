package database

import (
	"context"
	"testing"

	"github.com/mehmetcc/resirent/internal/config"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestInit_Rejects(t *testing.T) {
	t.Parallel()

	_, err := Init(&config.StorageConfig{Driver: config.DriverSQLite})
	require.Error(t, err)

	_, err = Init(&config.StorageConfig{Driver: config.DriverMemory, DSN: "x"})
	require.Error(t, err)
}

func TestMigrate_UnknownDriver(t *testing.T) {
	t.Parallel()

	require.Error(t, Migrate(context.Background(), nil, config.DriverMemory, zap.NewNop()))
}

func TestMigrate_SQLite(t *testing.T) {
	db, err := Init(&config.StorageConfig{Driver: config.DriverSQLite, DSN: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, Migrate(context.Background(), db, config.DriverSQLite, zap.NewNop()))
	// idempotent
	require.NoError(t, Migrate(context.Background(), db, config.DriverSQLite, zap.NewNop()))

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM session_slots`).Scan(&n))
	require.Zero(t, n)
}
