// Package store owns process-level connections: Postgres, Redis, and the
// schema migrator.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// DB wraps the Postgres pool. The workload is six small per-category tables
// queried by owner, so the pool stays deliberately modest.
type DB struct {
	Client *sql.DB
}

// NewDB opens the pool and verifies reachability before returning.
func NewDB(ctx context.Context, connString string, maxConns int) (*DB, error) {
	if maxConns <= 0 {
		maxConns = 8
	}
	db, err := sql.Open("pgx", connString)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(maxConns)
	db.SetMaxIdleConns(maxConns / 2)
	db.SetConnMaxIdleTime(5 * time.Minute)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &DB{Client: db}, nil
}

// Close releases the pool.
func (d *DB) Close() error {
	if d == nil || d.Client == nil {
		return nil
	}
	return d.Client.Close()
}
