package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"flightcast/apperr"

	"github.com/charmbracelet/log"
	_ "github.com/lib/pq"
)

// PostgresStore keeps entries in a cache_entries table. The quota is enforced
// on the summed octet length of keys and values.
type PostgresStore struct {
	db    *sql.DB
	quota int64
}

// OpenPostgresStore connects, waits for the database to come up and migrates.
func OpenPostgresStore(ctx context.Context, dsn string, quota int64, logger *log.Logger) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	// The database may take a moment to accept connections
	for i := 0; i < 5; i++ {
		if err = db.PingContext(ctx); err == nil {
			break
		}
		logger.Warn("waiting for database", "attempt", i+1, "err", err)
		select {
		case <-ctx.Done():
			_ = db.Close()
			return nil, ctx.Err()
		case <-time.After(time.Second):
		}
	}
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to database after retries: %w", err)
	}

	s := &PostgresStore{db: db, quota: quota}
	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	logger.Debug("cache database connected and migrated")
	return s, nil
}

// ─── Migrations ───────────────────────────────────────────────────────────────

func (s *PostgresStore) migrate(ctx context.Context) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS cache_entries (
			key        TEXT PRIMARY KEY,
			value      TEXT NOT NULL,
			updated_at TIMESTAMPTZ DEFAULT NOW()
		)`,
	}

	for _, m := range migrations {
		if _, err := s.db.ExecContext(ctx, m); err != nil {
			return fmt.Errorf("migration failed: %w\nSQL: %s", err, m)
		}
	}
	return nil
}

// ─── CRUD ─────────────────────────────────────────────────────────────────────

func (s *PostgresStore) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM cache_entries WHERE key = $1`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

func (s *PostgresStore) Set(ctx context.Context, key, value string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if s.quota > 0 {
		// Serialize writers so concurrent sets cannot both pass the quota check
		if _, err := tx.ExecContext(ctx, `LOCK TABLE cache_entries IN SHARE ROW EXCLUSIVE MODE`); err != nil {
			return err
		}
		var used int64
		err := tx.QueryRowContext(ctx, `
			SELECT COALESCE(SUM(octet_length(key) + octet_length(value)), 0)
			FROM cache_entries WHERE key <> $1`, key).Scan(&used)
		if err != nil {
			return err
		}
		if used+int64(len(key)+len(value)) > s.quota {
			return apperr.Quota("failed to set "+key, ErrQuotaExceeded)
		}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO cache_entries (key, value, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`,
		key, value)
	if err != nil {
		return err
	}
	return tx.Commit()
}

func (s *PostgresStore) Clear(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM cache_entries`)
	return err
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}
