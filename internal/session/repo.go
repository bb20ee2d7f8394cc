package session

import (
	"context"
	"database/sql"
	"errors"

	"github.com/mehmetcc/resirent/internal/config"
	"go.uber.org/zap"
)

type queries struct {
	load   string
	upsert string
	delete string
}

var (
	postgresQueries = queries{
		load: `SELECT slot_value FROM session_slots WHERE slot_key = $1`,
		upsert: `
			INSERT INTO session_slots (slot_key, slot_value, updated_at)
			VALUES ($1, $2, CURRENT_TIMESTAMP)
			ON CONFLICT (slot_key) DO UPDATE
			SET slot_value = EXCLUDED.slot_value, updated_at = CURRENT_TIMESTAMP
			`,
		delete: `DELETE FROM session_slots WHERE slot_key = $1`,
	}
	sqliteQueries = queries{
		load: `SELECT slot_value FROM session_slots WHERE slot_key = ?`,
		upsert: `
			INSERT INTO session_slots (slot_key, slot_value, updated_at)
			VALUES (?, ?, CURRENT_TIMESTAMP)
			ON CONFLICT (slot_key) DO UPDATE
			SET slot_value = excluded.slot_value, updated_at = CURRENT_TIMESTAMP
			`,
		delete: `DELETE FROM session_slots WHERE slot_key = ?`,
	}
)

// SQLStorage keeps slots in the session_slots table created by the
// migrations package.
type SQLStorage struct {
	db     *sql.DB
	q      queries
	logger *zap.Logger
}

func NewSQLStorage(db *sql.DB, driver string, logger *zap.Logger) *SQLStorage {
	q := sqliteQueries
	if driver == config.DriverPostgres {
		q = postgresQueries
	}
	return &SQLStorage{db: db, q: q, logger: logger}
}

func (s *SQLStorage) Load(ctx context.Context, key string) ([]byte, error) {
	var value string
	err := s.db.QueryRowContext(ctx, s.q.load, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSlotEmpty
	}
	if err != nil {
		s.logger.Error("failed to load session slot", zap.String("key", key), zap.Error(err))
		return nil, err
	}
	return []byte(value), nil
}

func (s *SQLStorage) Save(ctx context.Context, key string, value []byte) error {
	if _, err := s.db.ExecContext(ctx, s.q.upsert, key, string(value)); err != nil {
		s.logger.Error("failed to save session slot", zap.String("key", key), zap.Error(err))
		return err
	}
	return nil
}

func (s *SQLStorage) Delete(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, s.q.delete, key)
	if err != nil {
		s.logger.Error("failed to delete session slot", zap.String("key", key), zap.Error(err))
	}
	return err
}

func (s *SQLStorage) Close() error {
	return s.db.Close()
}
