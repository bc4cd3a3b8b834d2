// internal/common/database/postgres.go
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"khetmitra-workers/internal/common/config"

	_ "github.com/lib/pq"
)

// farmerProfilesDDL creates the table backing session.ProfileRepository.
const farmerProfilesDDL = `
CREATE TABLE IF NOT EXISTS farmer_profiles (
	session_id  TEXT PRIMARY KEY,
	name        TEXT NOT NULL DEFAULT '',
	location    TEXT NOT NULL DEFAULT '',
	crops       TEXT[] NOT NULL DEFAULT '{}',
	farm_size   TEXT NOT NULL DEFAULT '',
	language    TEXT NOT NULL DEFAULT 'en',
	updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
)`

type PostgresClient struct {
	DB *sql.DB
}

func NewPostgres(cfg config.PostgresConfig) (*PostgresClient, error) {
	db, err := sql.Open("postgres", cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxConnections)
	db.SetMaxIdleConns(cfg.MaxIdle)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)

	return &PostgresClient{DB: db}, nil
}

func (c *PostgresClient) Ping(ctx context.Context) error {
	if err := c.DB.PingContext(ctx); err != nil {
		return fmt.Errorf("postgres ping failed: %w", err)
	}
	return nil
}

// EnsureSchema creates the tables the workers write to.
func (c *PostgresClient) EnsureSchema(ctx context.Context) error {
	if _, err := c.DB.ExecContext(ctx, farmerProfilesDDL); err != nil {
		return fmt.Errorf("create farmer_profiles: %w", err)
	}
	return nil
}

func (c *PostgresClient) Close() error {
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}
